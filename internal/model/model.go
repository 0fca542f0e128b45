// Package model contains domain models for the trip recommendation service.
// These structs map to the trip catalog tables (countries, trip_types, tags,
// trip_templates, trip_occurrences) read by the repository layer.
package model

import (
	"time"

	"github.com/shiva/tripmatch/pkg/geo"
)

// ─── Enums ──────────────────────────────────────────────────

type OccurrenceStatus string

const (
	StatusOpen       OccurrenceStatus = "Open"
	StatusGuaranteed OccurrenceStatus = "Guaranteed"
	StatusLastPlaces OccurrenceStatus = "Last Places"
	StatusFull       OccurrenceStatus = "Full"
	StatusCancelled  OccurrenceStatus = "Cancelled"
)

// Bookable reports whether the status still accepts bookings.
func (s OccurrenceStatus) Bookable() bool {
	return s != StatusFull && s != StatusCancelled
}

// UnbookableStatuses lists the statuses excluded by every search.
var UnbookableStatuses = []OccurrenceStatus{StatusCancelled, StatusFull}

// ─── Reference data ─────────────────────────────────────────

// Country maps to the `countries` table.
type Country struct {
	ID            int64         `json:"id"`
	Name          string        `json:"name"`
	NameLocalized string        `json:"name_localized,omitempty"`
	Continent     geo.Continent `json:"continent"`
}

// TripType maps to the `trip_types` table (a template's single "style").
type TripType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Tag maps to the `tags` table (a theme a template can carry many of).
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Guide maps to the `guides` table.
type Guide struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ─── Catalog ────────────────────────────────────────────────

// TripTemplate maps to the `trip_templates` table with its reference rows joined.
type TripTemplate struct {
	ID                    int64     `json:"id"`
	CompanyID             int64     `json:"company_id"`
	Title                 string    `json:"title"`
	TitleLocalized        string    `json:"title_localized,omitempty"`
	Description           string    `json:"description"`
	DescriptionLocalized  string    `json:"description_localized,omitempty"`
	ImageURL              string    `json:"image_url,omitempty"`
	BasePrice             float64   `json:"base_price"`
	SingleSupplementPrice *float64  `json:"single_supplement_price,omitempty"`
	TypicalDurationDays   int       `json:"typical_duration_days"`
	DefaultMaxCapacity    int       `json:"default_max_capacity"`
	DifficultyLevel       int       `json:"difficulty_level"`
	TripType              *TripType `json:"trip_type,omitempty"`
	PrimaryCountry        *Country  `json:"primary_country,omitempty"`
	Countries             []Country `json:"countries"`
	Tags                  []Tag     `json:"tags"`
	IsActive              bool      `json:"is_active"`
}

// TripTypeID returns the template's type id, or 0 when unclassified.
func (t *TripTemplate) TripTypeID() int64 {
	if t.TripType == nil {
		return 0
	}
	return t.TripType.ID
}

// AllCountries returns the primary country followed by the associated
// countries, without duplicates.
func (t *TripTemplate) AllCountries() []Country {
	out := make([]Country, 0, len(t.Countries)+1)
	seen := make(map[int64]bool, len(t.Countries)+1)
	if t.PrimaryCountry != nil {
		out = append(out, *t.PrimaryCountry)
		seen[t.PrimaryCountry.ID] = true
	}
	for _, c := range t.Countries {
		if !seen[c.ID] {
			seen[c.ID] = true
			out = append(out, c)
		}
	}
	return out
}

// TagIDs returns the ids of the template's theme tags.
func (t *TripTemplate) TagIDs() []int64 {
	ids := make([]int64, len(t.Tags))
	for i, tag := range t.Tags {
		ids[i] = tag.ID
	}
	return ids
}

// TripOccurrence maps to the `trip_occurrences` table: one scheduled
// departure of a template. Template is always populated by the repository.
type TripOccurrence struct {
	ID                       int64            `json:"id"`
	TemplateID               int64            `json:"template_id"`
	Template                 *TripTemplate    `json:"template"`
	StartDate                time.Time        `json:"start_date"`
	EndDate                  time.Time        `json:"end_date"`
	PriceOverride            *float64         `json:"price_override,omitempty"`
	SingleSupplementOverride *float64         `json:"single_supplement_override,omitempty"`
	MaxCapacityOverride      *int             `json:"max_capacity_override,omitempty"`
	SpotsLeft                int              `json:"spots_left"`
	Status                   OccurrenceStatus `json:"status"`
	Guide                    *Guide           `json:"guide,omitempty"`
}

// EffectivePrice falls back from the occurrence override to the template base price.
func (o *TripOccurrence) EffectivePrice() float64 {
	if o.PriceOverride != nil {
		return *o.PriceOverride
	}
	return o.Template.BasePrice
}

// EffectiveMaxCapacity falls back from the occurrence override to the template default.
func (o *TripOccurrence) EffectiveMaxCapacity() int {
	if o.MaxCapacityOverride != nil {
		return *o.MaxCapacityOverride
	}
	return o.Template.DefaultMaxCapacity
}

// EffectiveSingleSupplement returns nil when neither occurrence nor template sets one.
func (o *TripOccurrence) EffectiveSingleSupplement() *float64 {
	if o.SingleSupplementOverride != nil {
		return o.SingleSupplementOverride
	}
	return o.Template.SingleSupplementPrice
}

// DurationDays is end_date − start_date in whole days.
func (o *TripOccurrence) DurationDays() int {
	return DaysBetween(o.StartDate, o.EndDate)
}

// ─── Date helpers ───────────────────────────────────────────

// DateOnly truncates t to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}
