package model

import (
	"time"

	"github.com/shiva/tripmatch/pkg/geo"
)

// Preferences is the canonical, validated form of a user's search input.
// Nil pointers and empty slices mean "no constraint".
type Preferences struct {
	CountryIDs      []int64         `json:"selected_countries"`
	Continents      []geo.Continent `json:"selected_continents"`
	PreferredTypeID *int64          `json:"preferred_type_id,omitempty"`
	ThemeIDs        []int64         `json:"preferred_theme_ids"`
	MinDuration     int             `json:"min_duration"`
	MaxDuration     int             `json:"max_duration"`
	Budget          *float64        `json:"budget,omitempty"`
	Difficulty      *int            `json:"difficulty,omitempty"`
	Year            *int            `json:"year,omitempty"`
	Month           *int            `json:"month,omitempty"`
	StartDate       *time.Time      `json:"start_date,omitempty"`
}

// HasGeography reports whether any country or continent was selected.
func (p *Preferences) HasGeography() bool {
	return len(p.CountryIDs) > 0 || len(p.Continents) > 0
}

// SearchContext carries the per-request facts resolved alongside the preferences.
type SearchContext struct {
	Today time.Time `json:"today"`

	// PrivateGroupsTypeID is 0 when the Private Groups type could not be resolved.
	PrivateGroupsTypeID int64 `json:"private_groups_type_id"`
	IsPrivateGroups     bool  `json:"is_private_groups"`
}
