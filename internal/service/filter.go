package service

import (
	"time"

	"github.com/shiva/tripmatch/internal/model"
)

// ─── Candidate Query Builder ────────────────────────────────

// BuildCandidateFilter translates preferences into the hard filters of one
// search tier. The strict profile keeps every constraint exact; the relaxed
// profile drops the trip type filter, widens difficulty, budget and dates,
// and grows a country selection to its continent.
func BuildCandidateFilter(p model.Preferences, sctx model.SearchContext, profile StrictnessProfile) model.CandidateFilter {
	f := model.CandidateFilter{
		Today: model.DateOnly(sctx.Today),
	}

	if sctx.IsPrivateGroups {
		f.ExemptTypeID = sctx.PrivateGroupsTypeID
	}

	if profile.FilterTripType && p.PreferredTypeID != nil {
		f.TripTypeID = *p.PreferredTypeID
	}

	if p.Difficulty != nil {
		f.DifficultyMin = max(MinDifficulty, *p.Difficulty-profile.DifficultyTolerance)
		f.DifficultyMax = min(MaxDifficulty, *p.Difficulty+profile.DifficultyTolerance)
	}

	if p.Budget != nil {
		ceiling := *p.Budget * profile.BudgetMultiplier
		f.MaxPrice = &ceiling
	}

	f.CountryIDs = p.CountryIDs
	f.Continents = p.Continents
	if profile.ExpandCountries && len(p.CountryIDs) > 0 {
		f.ContinentsOfCountries = p.CountryIDs
	}

	applyDateFilter(&f, p, profile.MonthWindow)
	return f
}

// applyDateFilter sets the year/month constraints. Year and month are
// independent: a month without a year matches that month in every year.
func applyDateFilter(f *model.CandidateFilter, p model.Preferences, window int) {
	switch {
	case p.Year == nil && p.Month == nil:
		if p.StartDate != nil {
			from := model.DateOnly(*p.StartDate)
			f.StartFrom = &from
		}

	case window == 0:
		if p.Year != nil {
			f.Year = *p.Year
		}
		if p.Month != nil {
			f.Months = []int{*p.Month}
		}

	case p.Year != nil && p.Month != nil:
		anchor := time.Date(*p.Year, time.Month(*p.Month), 1, 0, 0, 0, 0, time.UTC)
		from := anchor.AddDate(0, -window, 0)
		before := anchor.AddDate(0, window+1, 0)
		f.StartFrom, f.StartBefore = &from, &before

	case p.Month != nil:
		f.Months = MonthWindow(*p.Month, window)

	default:
		jan := time.Date(*p.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		from := jan.AddDate(0, -window, 0)
		before := jan.AddDate(1, window, 0)
		f.StartFrom, f.StartBefore = &from, &before
	}
}

// MonthWindow returns the months within ±window of month, wrapping around
// the year: MonthWindow(12, 2) = [10 11 12 1 2].
func MonthWindow(month, window int) []int {
	out := make([]int, 0, 2*window+1)
	for d := -window; d <= window; d++ {
		m := ((month-1+d)%12+12)%12 + 1
		out = append(out, m)
	}
	return out
}
