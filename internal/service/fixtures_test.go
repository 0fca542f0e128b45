package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shiva/tripmatch/internal/model"
	"github.com/shiva/tripmatch/pkg/geo"
)

// ─── Reference data ─────────────────────────────────────────

var testToday = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

var (
	france     = model.Country{ID: 1, Name: "France", Continent: geo.Europe}
	italy      = model.Country{ID: 2, Name: "Italy", Continent: geo.Europe}
	japan      = model.Country{ID: 3, Name: "Japan", Continent: geo.Asia}
	antarctica = model.Country{ID: 4, Name: "Antarctica", Continent: geo.Antarctica}
	tunisia    = model.Country{ID: 5, Name: "Tunisia", Continent: geo.Africa}
	peru       = model.Country{ID: 6, Name: "Peru", Continent: geo.SouthAmerica}

	allCountries = []model.Country{france, italy, japan, antarctica, tunisia, peru}
)

var (
	hiking        = model.TripType{ID: 1, Name: "Hiking"}
	culture       = model.TripType{ID: 2, Name: "Culture"}
	safari        = model.TripType{ID: 3, Name: "African Safari"}
	privateGroups = model.TripType{ID: 9, Name: "Private Groups"}
)

var (
	mountains = model.Tag{ID: 10, Name: "Mountains"}
	food      = model.Tag{ID: 11, Name: "Food"}
	history   = model.Tag{ID: 12, Name: "History"}
	wildlife  = model.Tag{ID: 13, Name: "Wildlife"}
)

// ─── Occurrence builder ─────────────────────────────────────

type tripOpt func(*model.TripOccurrence)

// newTrip builds an active, open Hiking trip in France departing 60 days
// after testToday for 10 days at 1000 with difficulty 3 and 5 spots left.
func newTrip(id int64, opts ...tripOpt) model.TripOccurrence {
	fr := france
	ht := hiking
	start := testToday.AddDate(0, 0, 60)
	o := model.TripOccurrence{
		ID:         id,
		TemplateID: id,
		StartDate:  start,
		EndDate:    start.AddDate(0, 0, 10),
		SpotsLeft:  5,
		Status:     model.StatusOpen,
		Template: &model.TripTemplate{
			ID:                  id,
			CompanyID:           1,
			Title:               "Trip",
			BasePrice:           1000,
			TypicalDurationDays: 10,
			DefaultMaxCapacity:  12,
			DifficultyLevel:     3,
			TripType:            &ht,
			PrimaryCountry:      &fr,
			IsActive:            true,
		},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func startingOn(d time.Time) tripOpt {
	return func(o *model.TripOccurrence) {
		days := o.DurationDays()
		o.StartDate = d
		o.EndDate = d.AddDate(0, 0, days)
	}
}

func lasting(days int) tripOpt {
	return func(o *model.TripOccurrence) { o.EndDate = o.StartDate.AddDate(0, 0, days) }
}

func priced(p float64) tripOpt {
	return func(o *model.TripOccurrence) { o.Template.BasePrice = p }
}

func difficulty(d int) tripOpt {
	return func(o *model.TripOccurrence) { o.Template.DifficultyLevel = d }
}

func ofType(tt model.TripType) tripOpt {
	return func(o *model.TripOccurrence) { o.Template.TripType = &tt }
}

func inCountry(c model.Country) tripOpt {
	return func(o *model.TripOccurrence) { o.Template.PrimaryCountry = &c }
}

func alsoVisiting(cs ...model.Country) tripOpt {
	return func(o *model.TripOccurrence) { o.Template.Countries = append(o.Template.Countries, cs...) }
}

func tagged(tags ...model.Tag) tripOpt {
	return func(o *model.TripOccurrence) { o.Template.Tags = tags }
}

func withStatus(s model.OccurrenceStatus) tripOpt {
	return func(o *model.TripOccurrence) { o.Status = s }
}

func spots(n int) tripOpt {
	return func(o *model.TripOccurrence) { o.SpotsLeft = n }
}

func inactive() tripOpt {
	return func(o *model.TripOccurrence) { o.Template.IsActive = false }
}

// ─── In-memory store ────────────────────────────────────────

// memStore evaluates filters with CandidateFilter.Match, mirroring what the
// SQL renderer does.
type memStore struct {
	mu       sync.Mutex
	trips    []model.TripOccurrence
	findErr  error
	countErr error
	failOn   int // fail the Nth FindCandidates call (1-based); 0 = first when findErr set
	filters  []model.CandidateFilter
	results  [][]int64
}

func newMemStore(trips ...model.TripOccurrence) *memStore {
	return &memStore{trips: trips}
}

func continentLookup(id int64) (geo.Continent, bool) {
	for _, c := range allCountries {
		if c.ID == id {
			return c.Continent, true
		}
	}
	return "", false
}

func (s *memStore) FindCandidates(_ context.Context, f model.CandidateFilter) ([]model.TripOccurrence, error) {
	s.mu.Lock()
	s.filters = append(s.filters, f)
	call := len(s.filters)
	s.mu.Unlock()

	if s.findErr != nil && (s.failOn == 0 || s.failOn == call) {
		return nil, s.findErr
	}

	var out []model.TripOccurrence
	for i := range s.trips {
		if f.Match(&s.trips[i], continentLookup) {
			out = append(out, s.trips[i])
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})

	got := make([]int64, len(out))
	for i := range out {
		got[i] = out[i].ID
	}
	s.mu.Lock()
	s.results = append(s.results, got)
	s.mu.Unlock()
	return out, nil
}

func (s *memStore) CountBaseline(_ context.Context, today time.Time) (int, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	base := model.CandidateFilter{Today: today}
	n := 0
	for i := range s.trips {
		if base.Match(&s.trips[i], continentLookup) {
			n++
		}
	}
	return n, nil
}

// returnedIDs reports the ids the n-th successful FindCandidates call
// returned (0-based).
func (s *memStore) returnedIDs(n int) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results[n]
}

func (s *memStore) callsAnswered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

func (s *memStore) findCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.filters)
}

// fakeTypes resolves the Private Groups type id.
type fakeTypes struct {
	id  int64
	err error
}

func (f fakeTypes) PrivateGroupsTypeID(context.Context) (int64, error) {
	return f.id, f.err
}

func fixedClock() time.Time { return testToday.Add(9 * time.Hour) }

func ptrTo[T any](v T) *T { return &v }
