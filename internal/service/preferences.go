package service

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/shiva/tripmatch/internal/model"
	"github.com/shiva/tripmatch/pkg/geo"
)

// ─── Intake limits ──────────────────────────────────────────

const (
	// MaxThemes is the most themes a search scores against; extras are dropped.
	MaxThemes = 3

	// DefaultMinDuration and DefaultMaxDuration form the no-op duration window.
	DefaultMinDuration = 0
	DefaultMaxDuration = 999

	MinDifficulty = 1
	MaxDifficulty = 5

	minYear = 1900
	maxYear = 2999

	// allSentinel means "no constraint" for year and month.
	allSentinel = "all"
)

// Raw preference keys accepted from the calling layer.
const (
	KeySelectedCountries  = "selected_countries"
	KeySelectedContinents = "selected_continents"
	KeyPreferredTypeID    = "preferred_type_id"
	KeyPreferredThemeIDs  = "preferred_theme_ids"
	KeyMinDuration        = "min_duration"
	KeyMaxDuration        = "max_duration"
	KeyBudget             = "budget"
	KeyDifficulty         = "difficulty"
	KeyYear               = "year"
	KeyMonth              = "month"
	KeyStartDate          = "start_date"
)

// ─── Normalizer ─────────────────────────────────────────────

// NormalizePreferences turns raw request input into canonical preferences.
//
// It never fails: a malformed optional field is treated as absent, so a
// garbage request degrades to a wider search instead of an error.
func NormalizePreferences(raw map[string]any) model.Preferences {
	p := model.Preferences{
		CountryIDs:  parseIDList(raw[KeySelectedCountries], 0),
		Continents:  parseContinents(raw[KeySelectedContinents]),
		ThemeIDs:    parseIDList(raw[KeyPreferredThemeIDs], MaxThemes),
		MinDuration: DefaultMinDuration,
		MaxDuration: DefaultMaxDuration,
	}

	if id, ok := toInt64(raw[KeyPreferredTypeID]); ok && id > 0 {
		p.PreferredTypeID = &id
	}

	if n, ok := toInt(raw[KeyMinDuration]); ok && n >= 0 {
		p.MinDuration = n
	}
	if n, ok := toInt(raw[KeyMaxDuration]); ok && n >= 0 {
		p.MaxDuration = n
	}
	if p.MinDuration > p.MaxDuration {
		p.MinDuration, p.MaxDuration = p.MaxDuration, p.MinDuration
	}

	if b, ok := toFloat(raw[KeyBudget]); ok && b > 0 {
		p.Budget = &b
	}
	if d, ok := toInt(raw[KeyDifficulty]); ok && d >= MinDifficulty && d <= MaxDifficulty {
		p.Difficulty = &d
	}

	if y, ok := parseYearOrMonth(raw[KeyYear], minYear, maxYear); ok {
		p.Year = &y
	}
	if m, ok := parseYearOrMonth(raw[KeyMonth], 1, 12); ok {
		p.Month = &m
	}
	if p.Year == nil && p.Month == nil {
		if d, ok := parseDate(raw[KeyStartDate]); ok {
			p.StartDate = &d
		}
	}

	return p
}

// ─── Field parsers ──────────────────────────────────────────

func parseYearOrMonth(v any, lo, hi int) (int, bool) {
	if s, ok := v.(string); ok && strings.EqualFold(strings.TrimSpace(s), allSentinel) {
		return 0, false
	}
	n, ok := toInt(v)
	if !ok || n < lo || n > hi {
		return 0, false
	}
	return n, true
}

func parseDate(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return model.DateOnly(t), true
		}
	}
	return time.Time{}, false
}

// parseIDList accepts a list, a single value or a comma separated string.
// Invalid and non-positive ids are dropped, duplicates removed, order kept.
// limit <= 0 means unlimited.
func parseIDList(v any, limit int) []int64 {
	var out []int64
	seen := make(map[int64]bool)
	for _, item := range toList(v) {
		id, ok := toInt64(item)
		if !ok || id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func parseContinents(v any) []geo.Continent {
	var out []geo.Continent
	seen := make(map[geo.Continent]bool)
	for _, item := range toList(v) {
		name, ok := item.(string)
		if !ok {
			continue
		}
		c, ok := geo.ParseContinent(name)
		if !ok || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// ─── Lenient casting ────────────────────────────────────────

func toList(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return expandCommaLists(out)
	case string:
		return expandCommaLists([]any{t})
	case bool, map[string]any:
		return nil
	}
	if ss, err := cast.ToStringSliceE(v); err == nil {
		out := make([]any, len(ss))
		for i, s := range ss {
			out[i] = s
		}
		return out
	}
	return []any{v}
}

// expandCommaLists splits "1,2,3" style entries (query strings) into items.
func expandCommaLists(items []any) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok || !strings.Contains(s, ",") {
			out = append(out, item)
			continue
		}
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// maxExactInt is the largest integer a JSON number (float64) holds exactly.
const maxExactInt = 1 << 53

// toInt64 accepts integral values within the float64 exact range, so bigint
// ids decoded from JSON survive.
func toInt64(v any) (int64, bool) {
	f, ok := toFloat(v)
	if !ok || f != math.Trunc(f) || math.Abs(f) > maxExactInt {
		return 0, false
	}
	return int64(f), true
}

func toInt(v any) (int, bool) {
	n, ok := toInt64(v)
	return int(n), ok
}

// toFloat parses numbers and numeric strings. Booleans, NaN and infinities
// are rejected. Strings are parsed in base 10 so "07" reads as 7.
func toFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case nil, bool:
		return 0, false
	case string:
		s := strings.TrimSpace(t)
		s = strings.TrimPrefix(s, "$")
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		parsed, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, false
		}
		f = parsed
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
