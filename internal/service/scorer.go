package service

import (
	"fmt"
	"math"

	"github.com/shiva/tripmatch/internal/model"
	"github.com/shiva/tripmatch/pkg/geo"
)

// ─── Score bounds ───────────────────────────────────────────

const (
	MinMatchScore = 0.0
	MaxMatchScore = 100.0
)

// ─── Scorer ─────────────────────────────────────────────────

// Scorer computes a 0–100 match score and display reasons for one
// occurrence against one preference set.
//
// Scoring is additive from a base score:
//
//	themes      ≥2 overlaps full, 1 partial, 0 penalty (only when themes were picked)
//	difficulty  exact match bonus
//	duration    ideal inside [min,max], good inside ±slack, REJECT outside ±hard
//	budget      ≤budget perfect, ≤×1.1 good, ≤×1.2 acceptable
//	business    guaranteed / last places status, departing soon
//	geography   direct country match, else continent match
//
// Relaxed mode starts from base + relaxed penalty and additionally penalizes
// a trip type that differs from the requested one.
type Scorer struct {
	weights Weights
	cfg     EngineConfig
}

// NewScorer creates a scorer from the engine configuration.
func NewScorer(cfg EngineConfig) *Scorer {
	return &Scorer{weights: cfg.Weights, cfg: cfg}
}

// scoreCard accumulates contributions and their reasons in evaluation order.
type scoreCard struct {
	total   float64
	reasons []string
}

func (c *scoreCard) add(points float64, reason string) {
	c.total += points
	if reason != "" {
		c.reasons = append(c.reasons, reason)
	}
}

// Score returns the clamped score and reasons. ok is false when the
// occurrence must be rejected outright (duration far outside the window).
func (s *Scorer) Score(
	o *model.TripOccurrence,
	p model.Preferences,
	sctx model.SearchContext,
	relaxed bool,
) (score float64, reasons []string, ok bool) {
	w := s.weights
	t := o.Template
	card := &scoreCard{total: w.BaseScore, reasons: make([]string, 0, 8)}

	if relaxed {
		card.add(w.RelaxedPenalty, "Similar trip from an expanded search")
		if p.PreferredTypeID != nil && t.TripTypeID() != *p.PreferredTypeID {
			card.add(w.RelaxedTypeMismatch, "Different trip style than requested")
		}
	}

	// ── Themes ──────────────────────────────────────────
	if len(p.ThemeIDs) > 0 {
		switch overlap := themeOverlap(p.ThemeIDs, t.TagIDs()); {
		case overlap >= 2:
			card.add(w.ThemeFull, fmt.Sprintf("Matches %d of your interests", overlap))
		case overlap == 1:
			card.add(w.ThemePartial, "Matches one of your interests")
		default:
			card.add(w.ThemePenalty, "No matching themes")
		}
	}

	// ── Difficulty ──────────────────────────────────────
	if p.Difficulty != nil && t.DifficultyLevel == *p.Difficulty {
		card.add(w.DifficultyPerfect, "Perfect difficulty level")
	}

	// ── Duration (soft hard-filter) ─────────────────────
	days := o.DurationDays()
	switch {
	case days >= p.MinDuration && days <= p.MaxDuration:
		card.add(w.DurationIdeal, fmt.Sprintf("Ideal duration (%d days)", days))
	case days >= p.MinDuration-s.cfg.DurationSlackDays && days <= p.MaxDuration+s.cfg.DurationSlackDays:
		card.add(w.DurationGood, fmt.Sprintf("Good duration (%d days)", days))
	case days < p.MinDuration-s.cfg.DurationHardDays || days > p.MaxDuration+s.cfg.DurationHardDays:
		return 0, nil, false
	}

	// ── Budget ──────────────────────────────────────────
	if p.Budget != nil {
		price := o.EffectivePrice()
		switch {
		case price <= *p.Budget:
			card.add(w.BudgetPerfect, "Within your budget")
		case price <= *p.Budget*s.cfg.BudgetGoodRatio:
			card.add(w.BudgetGood, "Slightly above your budget")
		case price <= *p.Budget*s.cfg.BudgetAcceptableRatio:
			card.add(w.BudgetAcceptable, "Close to your budget")
		}
	}

	// ── Status & urgency ────────────────────────────────
	switch o.Status {
	case model.StatusGuaranteed:
		card.add(w.StatusGuaranteed, "Guaranteed departure")
	case model.StatusLastPlaces:
		card.add(w.StatusLastPlaces, "Last places available")
	}
	if until := model.DaysBetween(sctx.Today, o.StartDate); until >= 0 && until <= s.cfg.DepartingSoonDays {
		card.add(w.DepartingSoon, "Departing soon")
	}

	// ── Geography bonus ─────────────────────────────────
	switch geoMatch(t, p) {
	case geoDirect:
		card.add(w.GeoDirectCountry, "Destination you selected")
	case geoContinent:
		card.add(w.GeoContinent, "On a continent you selected")
	}

	return clampScore(card.total), card.reasons, true
}

// ─── Helpers ────────────────────────────────────────────────

func themeOverlap(wanted, have []int64) int {
	set := make(map[int64]bool, len(have))
	for _, id := range have {
		set[id] = true
	}
	n := 0
	for _, id := range wanted {
		if set[id] {
			n++
		}
	}
	return n
}

type geoLevel int

const (
	geoNone geoLevel = iota
	geoContinent
	geoDirect
)

// geoMatch grades the template's countries against the selection. A pick of
// the Antarctica continent counts as a direct hit on the Antarctica country.
func geoMatch(t *model.TripTemplate, p model.Preferences) geoLevel {
	if !p.HasGeography() {
		return geoNone
	}
	best := geoNone
	for _, c := range t.AllCountries() {
		for _, id := range p.CountryIDs {
			if c.ID == id {
				return geoDirect
			}
		}
		for _, want := range p.Continents {
			if c.Continent != want {
				continue
			}
			if want == geo.Antarctica {
				return geoDirect
			}
			best = geoContinent
		}
	}
	return best
}

func clampScore(v float64) float64 {
	return math.Max(MinMatchScore, math.Min(MaxMatchScore, v))
}
