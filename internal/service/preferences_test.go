package service

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiva/tripmatch/pkg/geo"
)

func TestNormalizePreferences_Empty(t *testing.T) {
	for _, raw := range []map[string]any{nil, {}} {
		p := NormalizePreferences(raw)
		assert.Empty(t, p.CountryIDs)
		assert.Empty(t, p.Continents)
		assert.Empty(t, p.ThemeIDs)
		assert.Nil(t, p.PreferredTypeID)
		assert.Nil(t, p.Budget)
		assert.Nil(t, p.Difficulty)
		assert.Nil(t, p.Year)
		assert.Nil(t, p.Month)
		assert.Nil(t, p.StartDate)
		assert.Equal(t, DefaultMinDuration, p.MinDuration)
		assert.Equal(t, DefaultMaxDuration, p.MaxDuration)
	}
}

func TestNormalizePreferences_FullJSONShape(t *testing.T) {
	p := NormalizePreferences(map[string]any{
		KeySelectedCountries:  []any{1.0, 2.0, 2.0},
		KeySelectedContinents: []any{"North America", "EUROPE", "Atlantis"},
		KeyPreferredTypeID:    3.0,
		KeyPreferredThemeIDs:  []any{10.0, 11.0},
		KeyMinDuration:        7.0,
		KeyMaxDuration:        14.0,
		KeyBudget:             2500.0,
		KeyDifficulty:         3.0,
		KeyYear:               2026.0,
		KeyMonth:              "08",
	})

	assert.Equal(t, []int64{1, 2}, p.CountryIDs)
	assert.Equal(t, []geo.Continent{geo.NorthAndCentralAmerica, geo.Europe}, p.Continents)
	require.NotNil(t, p.PreferredTypeID)
	assert.Equal(t, int64(3), *p.PreferredTypeID)
	assert.Equal(t, []int64{10, 11}, p.ThemeIDs)
	assert.Equal(t, 7, p.MinDuration)
	assert.Equal(t, 14, p.MaxDuration)
	assert.Equal(t, 2500.0, *p.Budget)
	assert.Equal(t, 3, *p.Difficulty)
	assert.Equal(t, 2026, *p.Year)
	assert.Equal(t, 8, *p.Month)
}

func TestNormalizePreferences_QueryStringShape(t *testing.T) {
	p := NormalizePreferences(map[string]any{
		KeySelectedCountries: []string{"1", "2"},
		KeyPreferredThemeIDs: "10, 11,12,13",
		KeyBudget:            "$2,500",
		KeyYear:              "all",
		KeyMonth:             "ALL",
	})

	assert.Equal(t, []int64{1, 2}, p.CountryIDs)
	assert.Equal(t, []int64{10, 11, 12}, p.ThemeIDs, "themes are truncated to three")
	assert.Equal(t, 2500.0, *p.Budget)
	assert.Nil(t, p.Year)
	assert.Nil(t, p.Month)
}

func TestNormalizePreferences_MalformedFieldsBecomeAbsent(t *testing.T) {
	p := NormalizePreferences(map[string]any{
		KeySelectedCountries:  map[string]any{"a": 1},
		KeySelectedContinents: 42,
		KeyPreferredTypeID:    "abc",
		KeyPreferredThemeIDs:  []any{"x", -1.0, 0.0, true, 1.5},
		KeyMinDuration:        "ten",
		KeyMaxDuration:        -3.0,
		KeyBudget:             math.Inf(1),
		KeyDifficulty:         9.0,
		KeyYear:               "20x6",
		KeyMonth:              13.0,
		KeyStartDate:          "not-a-date",
	})

	assert.Empty(t, p.CountryIDs)
	assert.Empty(t, p.Continents)
	assert.Nil(t, p.PreferredTypeID)
	assert.Empty(t, p.ThemeIDs)
	assert.Equal(t, DefaultMinDuration, p.MinDuration)
	assert.Equal(t, DefaultMaxDuration, p.MaxDuration)
	assert.Nil(t, p.Budget)
	assert.Nil(t, p.Difficulty)
	assert.Nil(t, p.Year)
	assert.Nil(t, p.Month)
	assert.Nil(t, p.StartDate)
}

func TestNormalizePreferences_Budget(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want *float64
	}{
		{"number", 1500.0, ptrTo(1500.0)},
		{"int", 1500, ptrTo(1500.0)},
		{"string", "1500.50", ptrTo(1500.5)},
		{"zero", 0.0, nil},
		{"negative", -10.0, nil},
		{"nan", math.NaN(), nil},
		{"bool", true, nil},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NormalizePreferences(map[string]any{KeyBudget: tt.in})
			assert.Equal(t, tt.want, p.Budget)
		})
	}
}

func TestNormalizePreferences_SwapsReversedDuration(t *testing.T) {
	p := NormalizePreferences(map[string]any{KeyMinDuration: 14, KeyMaxDuration: 7})
	assert.Equal(t, 7, p.MinDuration)
	assert.Equal(t, 14, p.MaxDuration)
}

func TestNormalizePreferences_StartDateOnlyWithoutYearOrMonth(t *testing.T) {
	p := NormalizePreferences(map[string]any{KeyStartDate: "2026-05-01"})
	require.NotNil(t, p.StartDate)
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), *p.StartDate)

	p = NormalizePreferences(map[string]any{KeyStartDate: "2026-05-01T10:00:00Z", KeyMonth: 6})
	assert.Nil(t, p.StartDate)
	assert.Equal(t, 6, *p.Month)
}

func TestNormalizePreferences_ContinentVariants(t *testing.T) {
	p := NormalizePreferences(map[string]any{
		KeySelectedContinents: []string{"south america", "Antarctica", "SOUTH_AMERICA"},
	})
	assert.Equal(t, []geo.Continent{geo.SouthAmerica, geo.Antarctica}, p.Continents)
}

func TestNormalizePreferences_IntegerSlices(t *testing.T) {
	p := NormalizePreferences(map[string]any{KeySelectedCountries: []int{4}})
	assert.Equal(t, []int64{4}, p.CountryIDs)

	p = NormalizePreferences(map[string]any{KeySelectedCountries: 7})
	assert.Equal(t, []int64{7}, p.CountryIDs)
}

func TestNormalizePreferences_BigintIDs(t *testing.T) {
	big := float64(int64(1) << 40)
	p := NormalizePreferences(map[string]any{
		KeySelectedCountries: []any{big, "3000000000"},
		KeyPreferredTypeID:   float64(1 << 53),
		KeyPreferredThemeIDs: []any{math.Pow(2, 54)},
	})
	assert.Equal(t, []int64{1 << 40, 3000000000}, p.CountryIDs)
	require.NotNil(t, p.PreferredTypeID)
	assert.Equal(t, int64(1<<53), *p.PreferredTypeID)
	assert.Empty(t, p.ThemeIDs, "beyond the exact float range")
}
