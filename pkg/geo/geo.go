// Package geo provides the continent catalog used for destination matching.
//
// Countries are stored with an internal continent key (e.g. AFRICA). Users pick
// continents by their display name ("North America"), so every lookup goes
// through ParseContinent, which is forgiving about case, spacing and aliases.
package geo

import "strings"

// Continent is the internal key stored on the countries table.
type Continent string

const (
	Africa                 Continent = "AFRICA"
	Asia                   Continent = "ASIA"
	Europe                 Continent = "EUROPE"
	NorthAndCentralAmerica Continent = "NORTH_AND_CENTRAL_AMERICA"
	SouthAmerica           Continent = "SOUTH_AMERICA"
	Oceania                Continent = "OCEANIA"

	// Antarctica is both a continent and a destination in its own right:
	// the catalog carries a single "Antarctica" country on this continent.
	Antarctica Continent = "ANTARCTICA"
)

// ─── Known keys ─────────────────────────────────────────────

var known = map[Continent]bool{
	Africa:                 true,
	Asia:                   true,
	Europe:                 true,
	NorthAndCentralAmerica: true,
	SouthAmerica:           true,
	Oceania:                true,
	Antarctica:             true,
}

// aliases maps normalized user-facing names to continent keys.
var aliases = map[string]Continent{
	"africa":                    Africa,
	"asia":                      Asia,
	"europe":                    Europe,
	"north america":             NorthAndCentralAmerica,
	"central america":           NorthAndCentralAmerica,
	"north & central america":   NorthAndCentralAmerica,
	"north and central america": NorthAndCentralAmerica,
	"south america":             SouthAmerica,
	"latin america":             SouthAmerica,
	"oceania":                   Oceania,
	"australia":                 Oceania,
	"australia & oceania":       Oceania,
	"antarctica":                Antarctica,
}

// ─── Lookup ─────────────────────────────────────────────────

// ParseContinent resolves a user-facing continent name or an internal key.
// Unknown input reports false; callers drop it.
func ParseContinent(name string) (Continent, bool) {
	key := strings.Join(strings.Fields(strings.ToLower(name)), " ")
	if key == "" {
		return "", false
	}
	if c, ok := aliases[key]; ok {
		return c, true
	}
	c := Continent(strings.ToUpper(strings.ReplaceAll(key, " ", "_")))
	if known[c] {
		return c, true
	}
	return "", false
}

// Valid reports whether c is a known continent key.
func (c Continent) Valid() bool {
	return known[c]
}

// FromColumn converts a stored countries.continent value to a key. Known
// keys pass through; anything else goes through ParseContinent, and values
// that still do not resolve are kept verbatim so they never match a filter.
func FromColumn(s string) Continent {
	if c := Continent(s); c.Valid() {
		return c
	}
	if c, ok := ParseContinent(s); ok {
		return c
	}
	return Continent(s)
}

// Strings converts continent keys to plain strings (for SQL array args).
func Strings(cs []Continent) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c)
	}
	return out
}
