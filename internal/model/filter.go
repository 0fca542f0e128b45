package model

import (
	"time"

	"github.com/shiva/tripmatch/pkg/geo"
)

// CandidateFilter is the storage-neutral set of hard filters for one search
// tier. The repository renders it to SQL; Match evaluates the same predicate
// in memory. Zero values mean "no constraint".
type CandidateFilter struct {
	Today time.Time

	// ExemptTypeID marks a trip type whose occurrences skip the
	// spots_left / future-date availability check (Private Groups searches).
	// The exemption is per type, not per request: private departures are
	// booked on demand, while other trips a relaxed search pulls in still
	// need open spots and a future start.
	ExemptTypeID int64

	TripTypeID    int64
	DifficultyMin int
	DifficultyMax int
	MaxPrice      *float64

	// Geography is an OR across the three lists. ContinentsOfCountries
	// widens a country selection to the continents those countries sit on.
	CountryIDs            []int64
	Continents            []geo.Continent
	ContinentsOfCountries []int64

	// Year and Months constrain extract(year|month from start_date)
	// independently. StartFrom is inclusive, StartBefore exclusive.
	Year        int
	Months      []int
	StartFrom   *time.Time
	StartBefore *time.Time
}

// HasGeography reports whether any geography predicate is active.
func (f *CandidateFilter) HasGeography() bool {
	return len(f.CountryIDs) > 0 || len(f.Continents) > 0 || len(f.ContinentsOfCountries) > 0
}

// ContinentLookup resolves a country id to its continent.
type ContinentLookup func(countryID int64) (geo.Continent, bool)

// Match reports whether the occurrence passes every hard filter.
func (f *CandidateFilter) Match(o *TripOccurrence, continentOf ContinentLookup) bool {
	t := o.Template
	if t == nil || !t.IsActive || !o.Status.Bookable() {
		return false
	}

	exempt := f.ExemptTypeID != 0 && t.TripTypeID() == f.ExemptTypeID
	if !exempt && (o.SpotsLeft <= 0 || DateOnly(o.StartDate).Before(DateOnly(f.Today))) {
		return false
	}

	if f.TripTypeID != 0 && t.TripTypeID() != f.TripTypeID {
		return false
	}
	if f.DifficultyMin != 0 && t.DifficultyLevel < f.DifficultyMin {
		return false
	}
	if f.DifficultyMax != 0 && t.DifficultyLevel > f.DifficultyMax {
		return false
	}
	if f.MaxPrice != nil && o.EffectivePrice() > *f.MaxPrice {
		return false
	}

	if f.HasGeography() && !f.matchGeography(t, continentOf) {
		return false
	}

	start := DateOnly(o.StartDate)
	if f.Year != 0 && start.Year() != f.Year {
		return false
	}
	if len(f.Months) > 0 && !containsInt(f.Months, int(start.Month())) {
		return false
	}
	if f.StartFrom != nil && start.Before(DateOnly(*f.StartFrom)) {
		return false
	}
	if f.StartBefore != nil && !start.Before(DateOnly(*f.StartBefore)) {
		return false
	}
	return true
}

func (f *CandidateFilter) matchGeography(t *TripTemplate, continentOf ContinentLookup) bool {
	wide := make(map[geo.Continent]bool, len(f.ContinentsOfCountries))
	if continentOf != nil {
		for _, id := range f.ContinentsOfCountries {
			if c, ok := continentOf(id); ok {
				wide[c] = true
			}
		}
	}
	for _, c := range t.AllCountries() {
		if containsInt64(f.CountryIDs, c.ID) || wide[c.Continent] {
			return true
		}
		for _, want := range f.Continents {
			if c.Continent == want {
				return true
			}
		}
	}
	return false
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func containsInt64(xs []int64, v int64) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
