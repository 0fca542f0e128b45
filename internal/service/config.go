package service

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ─── Scoring Weights ────────────────────────────────────────

// Weights is the additive scoring table. Bonuses are positive, penalties
// negative; the sum is clamped to [0, 100]. Field names double as keys in
// an optional weights file.
type Weights struct {
	BaseScore           float64 `mapstructure:"base_score" validate:"gte=0,lte=100"`
	RelaxedPenalty      float64 `mapstructure:"relaxed_penalty" validate:"lte=0"`
	RelaxedTypeMismatch float64 `mapstructure:"relaxed_type_mismatch" validate:"lte=0"`

	ThemeFull    float64 `mapstructure:"theme_full" validate:"gte=0"`
	ThemePartial float64 `mapstructure:"theme_partial" validate:"gte=0"`
	ThemePenalty float64 `mapstructure:"theme_penalty" validate:"lte=0"`

	DifficultyPerfect float64 `mapstructure:"difficulty_perfect" validate:"gte=0"`

	DurationIdeal float64 `mapstructure:"duration_ideal" validate:"gte=0"`
	DurationGood  float64 `mapstructure:"duration_good" validate:"gte=0"`

	BudgetPerfect    float64 `mapstructure:"budget_perfect" validate:"gte=0"`
	BudgetGood       float64 `mapstructure:"budget_good" validate:"gte=0"`
	BudgetAcceptable float64 `mapstructure:"budget_acceptable" validate:"gte=0"`

	StatusGuaranteed float64 `mapstructure:"status_guaranteed" validate:"gte=0"`
	StatusLastPlaces float64 `mapstructure:"status_last_places" validate:"gte=0"`
	DepartingSoon    float64 `mapstructure:"departing_soon" validate:"gte=0"`

	GeoDirectCountry float64 `mapstructure:"geo_direct_country" validate:"gte=0"`
	GeoContinent     float64 `mapstructure:"geo_continent" validate:"gte=0"`
}

// DefaultWeights returns the 100-point scheme:
// theme 25, difficulty 15, duration 12, budget 12, business 22, geo 13.
func DefaultWeights() Weights {
	return Weights{
		BaseScore:           25,
		RelaxedPenalty:      -20,
		RelaxedTypeMismatch: -10,

		ThemeFull:    25,
		ThemePartial: 12,
		ThemePenalty: -15,

		DifficultyPerfect: 15,

		DurationIdeal: 12,
		DurationGood:  8,

		BudgetPerfect:    12,
		BudgetGood:       8,
		BudgetAcceptable: 5,

		StatusGuaranteed: 7,
		StatusLastPlaces: 15,
		DepartingSoon:    7,

		GeoDirectCountry: 13,
		GeoContinent:     5,
	}
}

// ─── Strictness Profiles ────────────────────────────────────

// StrictnessProfile describes how wide one search tier casts its net.
type StrictnessProfile struct {
	Name string `validate:"required"`

	// Relaxed switches the scorer to relaxed mode (base penalty, type mismatch penalty).
	Relaxed bool

	DifficultyTolerance int     `validate:"gte=0,lte=4"`
	BudgetMultiplier    float64 `validate:"gte=1"`

	// MonthWindow widens a month constraint by ±N months (0 = exact month).
	MonthWindow int `validate:"gte=0,lte=5"`

	// FilterTripType keeps the preferred trip type as a hard filter.
	FilterTripType bool

	// ExpandCountries widens selected countries to their whole continent.
	ExpandCountries bool
}

// StrictProfile is the primary search tier.
func StrictProfile(budgetMultiplier float64) StrictnessProfile {
	return StrictnessProfile{
		Name:                "strict",
		DifficultyTolerance: 1,
		BudgetMultiplier:    budgetMultiplier,
		FilterTripType:      true,
	}
}

// RelaxedProfile is the fallback tier used to top up thin strict results.
func RelaxedProfile(budgetMultiplier float64) StrictnessProfile {
	return StrictnessProfile{
		Name:                "relaxed",
		Relaxed:             true,
		DifficultyTolerance: 2,
		BudgetMultiplier:    budgetMultiplier,
		MonthWindow:         2,
		ExpandCountries:     true,
	}
}

// ─── Engine Configuration ───────────────────────────────────

// EngineConfig holds every tunable of the recommendation pipeline.
type EngineConfig struct {
	Weights Weights

	Strict  StrictnessProfile
	Relaxed StrictnessProfile

	// MaxResults caps primary + relaxed results.
	MaxResults int `validate:"gte=1,lte=100"`
	// MinResults triggers the relaxed tier when strict results fall below it.
	MinResults int `validate:"gte=0,ltefield=MaxResults"`
	// MinScore drops strict candidates scoring below it.
	MinScore float64 `validate:"gte=0,lte=100"`
	// TopK bounds the ranker's working set.
	TopK int `validate:"gtefield=MaxResults"`

	DepartingSoonDays int `validate:"gte=0"`
	DurationSlackDays int `validate:"gte=0"`
	DurationHardDays  int `validate:"gtefield=DurationSlackDays"`

	BudgetGoodRatio       float64 `validate:"gte=1"`
	BudgetAcceptableRatio float64 `validate:"gtefield=BudgetGoodRatio"`

	HighScoreThreshold float64 `validate:"gte=0,lte=100"`
	MidScoreThreshold  float64 `validate:"gte=0,ltefield=HighScoreThreshold"`
}

// DefaultEngineConfig returns the production defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Weights:               DefaultWeights(),
		Strict:                StrictProfile(1.3),
		Relaxed:               RelaxedProfile(1.5),
		MaxResults:            10,
		MinResults:            5,
		MinScore:              30,
		TopK:                  30,
		DepartingSoonDays:     30,
		DurationSlackDays:     4,
		DurationHardDays:      7,
		BudgetGoodRatio:       1.1,
		BudgetAcceptableRatio: 1.2,
		HighScoreThreshold:    70,
		MidScoreThreshold:     50,
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validate rejects configurations the pipeline cannot run with.
func (c *EngineConfig) Validate() error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("engine config: %w", err)
	}
	if c.Relaxed.BudgetMultiplier < c.Strict.BudgetMultiplier {
		return fmt.Errorf("engine config: relaxed budget multiplier %.2f is below strict %.2f",
			c.Relaxed.BudgetMultiplier, c.Strict.BudgetMultiplier)
	}
	return nil
}
