// Package repository contains the PostgreSQL and Redis data access layer.
package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shiva/tripmatch/internal/model"
	"github.com/shiva/tripmatch/pkg/geo"
)

// DBTX is the subset of pgxpool.Pool the repositories need.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TripRepository reads bookable trip occurrences from the catalog.
type TripRepository struct {
	db DBTX
}

// NewTripRepository creates a new trip repository.
func NewTripRepository(db DBTX) *TripRepository {
	return &TripRepository{db: db}
}

// ─── Query building ─────────────────────────────────────────

// argList collects positional arguments and hands out their placeholders.
type argList []any

func (a *argList) add(v any) string {
	*a = append(*a, v)
	return fmt.Sprintf("$%d", len(*a))
}

// candidateSelect eagerly joins everything the scorer and the view need so
// one round trip serves a whole search tier.
const candidateSelect = `
	SELECT
		o.id, o.template_id, o.start_date, o.end_date,
		o.price_override::float8, o.single_supplement_override::float8,
		o.max_capacity_override, o.spots_left, o.status,
		g.id, g.name,
		t.id, t.company_id, t.title, COALESCE(t.title_localized, ''),
		COALESCE(t.description, ''), COALESCE(t.description_localized, ''),
		COALESCE(t.image_url, ''), t.base_price::float8,
		t.single_supplement_price::float8, t.typical_duration_days,
		t.default_max_capacity, t.difficulty_level, t.is_active,
		tt.id, tt.name,
		pc.id, pc.name, pc.name_localized, pc.continent,
		tg.ids, tg.names,
		ac.ids, ac.names, ac.names_localized, ac.continents
	FROM trip_occurrences o
	JOIN trip_templates t   ON t.id = o.template_id
	LEFT JOIN trip_types tt ON tt.id = t.trip_type_id
	LEFT JOIN countries pc  ON pc.id = t.primary_country_id
	LEFT JOIN guides g      ON g.id = o.guide_id
	LEFT JOIN LATERAL (
		SELECT COALESCE(array_agg(x.id ORDER BY x.id), '{}')   AS ids,
		       COALESCE(array_agg(x.name ORDER BY x.id), '{}') AS names
		FROM template_tags tt2
		JOIN tags x ON x.id = tt2.tag_id
		WHERE tt2.template_id = t.id
	) tg ON TRUE
	LEFT JOIN LATERAL (
		SELECT COALESCE(array_agg(x.id ORDER BY x.id), '{}')                            AS ids,
		       COALESCE(array_agg(x.name ORDER BY x.id), '{}')                          AS names,
		       COALESCE(array_agg(COALESCE(x.name_localized, '') ORDER BY x.id), '{}') AS names_localized,
		       COALESCE(array_agg(x.continent ORDER BY x.id), '{}')                     AS continents
		FROM template_countries tc
		JOIN countries x ON x.id = tc.country_id
		WHERE tc.template_id = t.id
	) ac ON TRUE`

// BuildCandidateQuery renders a filter to a single SQL statement.
//
// Every predicate is parameterized. Ordering is by start date then id so the
// result is stable for a given snapshot.
func BuildCandidateQuery(f model.CandidateFilter) (string, []any) {
	var args argList
	where := []string{
		"t.is_active",
		"o.status <> ALL(" + args.add(statusStrings(model.UnbookableStatuses)) + ")",
	}

	// ── Availability ────────────────────────────────────
	today := args.add(model.DateOnly(f.Today))
	available := "(o.spots_left > 0 AND o.start_date >= " + today + ")"
	if f.ExemptTypeID != 0 {
		available = "(t.trip_type_id = " + args.add(f.ExemptTypeID) + " OR " + available + ")"
	}
	where = append(where, available)

	// ── Type, difficulty, price ─────────────────────────
	if f.TripTypeID != 0 {
		where = append(where, "t.trip_type_id = "+args.add(f.TripTypeID))
	}
	if f.DifficultyMin != 0 {
		where = append(where, "t.difficulty_level >= "+args.add(f.DifficultyMin))
	}
	if f.DifficultyMax != 0 {
		where = append(where, "t.difficulty_level <= "+args.add(f.DifficultyMax))
	}
	if f.MaxPrice != nil {
		where = append(where, "COALESCE(o.price_override, t.base_price) <= "+args.add(*f.MaxPrice))
	}

	// ── Geography ───────────────────────────────────────
	if f.HasGeography() {
		var geoOr []string
		if len(f.CountryIDs) > 0 {
			geoOr = append(geoOr, "gc.id = ANY("+args.add(f.CountryIDs)+")")
		}
		if len(f.Continents) > 0 {
			geoOr = append(geoOr, "gc.continent = ANY("+args.add(geo.Strings(f.Continents))+")")
		}
		if len(f.ContinentsOfCountries) > 0 {
			geoOr = append(geoOr,
				"gc.continent IN (SELECT continent FROM countries WHERE id = ANY("+args.add(f.ContinentsOfCountries)+"))")
		}
		where = append(where, `EXISTS (
		SELECT 1 FROM countries gc
		WHERE (gc.id = t.primary_country_id
		       OR gc.id IN (SELECT tc.country_id FROM template_countries tc WHERE tc.template_id = t.id))
		  AND (`+strings.Join(geoOr, " OR ")+`))`)
	}

	// ── Dates ───────────────────────────────────────────
	if f.Year != 0 {
		where = append(where, "EXTRACT(YEAR FROM o.start_date)::int = "+args.add(f.Year))
	}
	if len(f.Months) > 0 {
		where = append(where, "EXTRACT(MONTH FROM o.start_date)::int = ANY("+args.add(f.Months)+")")
	}
	if f.StartFrom != nil {
		where = append(where, "o.start_date >= "+args.add(model.DateOnly(*f.StartFrom)))
	}
	if f.StartBefore != nil {
		where = append(where, "o.start_date < "+args.add(model.DateOnly(*f.StartBefore)))
	}

	sql := candidateSelect + "\n\tWHERE " + strings.Join(where, "\n\t  AND ") + "\n\tORDER BY o.start_date, o.id"
	return sql, args
}

const baselineQuery = `
	SELECT COUNT(*)
	FROM trip_occurrences o
	JOIN trip_templates t ON t.id = o.template_id
	WHERE t.is_active
	  AND o.status <> ALL($1)
	  AND o.spots_left > 0
	  AND o.start_date >= $2`

// ─── Reads ──────────────────────────────────────────────────

// FindCandidates returns every occurrence passing the filter with its
// template, reference rows, tags and countries populated.
func (r *TripRepository) FindCandidates(ctx context.Context, f model.CandidateFilter) ([]model.TripOccurrence, error) {
	sql, args := BuildCandidateQuery(f)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var out []model.TripOccurrence
	for rows.Next() {
		o, err := scanOccurrence(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return out, nil
}

// CountBaseline counts active, bookable occurrences with spots left that
// depart on or after today.
func (r *TripRepository) CountBaseline(ctx context.Context, today time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, baselineQuery,
		statusStrings(model.UnbookableStatuses), model.DateOnly(today),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count baseline: %w", err)
	}
	return n, nil
}

// ─── Scanning ───────────────────────────────────────────────

func scanOccurrence(row pgx.Row) (model.TripOccurrence, error) {
	var (
		o      model.TripOccurrence
		t      model.TripTemplate
		status string

		guideID   *int64
		guideName *string
		typeID    *int64
		typeName  *string

		pcID        *int64
		pcName      *string
		pcLocalized *string
		pcContinent *string

		tagIDs   []int64
		tagNames []string

		acIDs        []int64
		acNames      []string
		acLocalized  []string
		acContinents []string
	)

	err := row.Scan(
		&o.ID, &o.TemplateID, &o.StartDate, &o.EndDate,
		&o.PriceOverride, &o.SingleSupplementOverride,
		&o.MaxCapacityOverride, &o.SpotsLeft, &status,
		&guideID, &guideName,
		&t.ID, &t.CompanyID, &t.Title, &t.TitleLocalized,
		&t.Description, &t.DescriptionLocalized,
		&t.ImageURL, &t.BasePrice,
		&t.SingleSupplementPrice, &t.TypicalDurationDays,
		&t.DefaultMaxCapacity, &t.DifficultyLevel, &t.IsActive,
		&typeID, &typeName,
		&pcID, &pcName, &pcLocalized, &pcContinent,
		&tagIDs, &tagNames,
		&acIDs, &acNames, &acLocalized, &acContinents,
	)
	if err != nil {
		return model.TripOccurrence{}, err
	}

	o.Status = model.OccurrenceStatus(status)
	o.StartDate = model.DateOnly(o.StartDate)
	o.EndDate = model.DateOnly(o.EndDate)

	if guideID != nil {
		o.Guide = &model.Guide{ID: *guideID, Name: deref(guideName)}
	}
	if typeID != nil {
		t.TripType = &model.TripType{ID: *typeID, Name: deref(typeName)}
	}
	if pcID != nil {
		t.PrimaryCountry = &model.Country{
			ID:            *pcID,
			Name:          deref(pcName),
			NameLocalized: deref(pcLocalized),
			Continent:     geo.FromColumn(deref(pcContinent)),
		}
	}

	t.Tags = make([]model.Tag, 0, len(tagIDs))
	for i, id := range tagIDs {
		t.Tags = append(t.Tags, model.Tag{ID: id, Name: at(tagNames, i)})
	}
	t.Countries = make([]model.Country, 0, len(acIDs))
	for i, id := range acIDs {
		t.Countries = append(t.Countries, model.Country{
			ID:            id,
			Name:          at(acNames, i),
			NameLocalized: at(acLocalized, i),
			Continent:     geo.FromColumn(at(acContinents, i)),
		})
	}

	o.Template = &t
	return o, nil
}

func statusStrings(ss []model.OccurrenceStatus) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = string(s)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func at(xs []string, i int) string {
	if i < len(xs) {
		return xs[i]
	}
	return ""
}
