package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultEngineConfig_Valid(t *testing.T) {
	cfg := DefaultEngineConfig()
	require.NoError(t, cfg.Validate())
	assert.GreaterOrEqual(t, cfg.TopK, cfg.MaxResults)
}

func TestEngineConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*EngineConfig)
	}{
		{"zero max results", func(c *EngineConfig) { c.MaxResults = 0 }},
		{"min above max", func(c *EngineConfig) { c.MinResults = c.MaxResults + 1 }},
		{"top k below max", func(c *EngineConfig) { c.TopK = c.MaxResults - 1 }},
		{"min score above 100", func(c *EngineConfig) { c.MinScore = 101 }},
		{"positive penalty", func(c *EngineConfig) { c.Weights.ThemePenalty = 5 }},
		{"negative bonus", func(c *EngineConfig) { c.Weights.BudgetGood = -1 }},
		{"budget multiplier below one", func(c *EngineConfig) { c.Strict.BudgetMultiplier = 0.9 }},
		{"relaxed tighter than strict", func(c *EngineConfig) { c.Relaxed.BudgetMultiplier = 1.2 }},
		{"hard window inside slack", func(c *EngineConfig) { c.DurationHardDays = 2 }},
		{"mid above high", func(c *EngineConfig) { c.MidScoreThreshold = 80 }},
		{"unnamed profile", func(c *EngineConfig) { c.Relaxed.Name = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultEngineConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestProfiles(t *testing.T) {
	s := StrictProfile(1.3)
	assert.False(t, s.Relaxed)
	assert.True(t, s.FilterTripType)
	assert.Equal(t, 1, s.DifficultyTolerance)
	assert.Zero(t, s.MonthWindow)

	r := RelaxedProfile(1.5)
	assert.True(t, r.Relaxed)
	assert.False(t, r.FilterTripType)
	assert.True(t, r.ExpandCountries)
	assert.Equal(t, 2, r.DifficultyTolerance)
	assert.Equal(t, 2, r.MonthWindow)
}
