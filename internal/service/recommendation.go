// Package service contains the core business logic for trip recommendations.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shiva/tripmatch/internal/metrics"
	"github.com/shiva/tripmatch/internal/model"
)

// ─── Errors ─────────────────────────────────────────────────

var (
	// ErrStoreUnavailable wraps every data-store read failure. It is never
	// retried here; the caller decides what to tell the user.
	ErrStoreUnavailable = errors.New("trip store unavailable")
)

// ─── Collaborators ──────────────────────────────────────────

// CandidateStore is the read side of the trip catalog.
type CandidateStore interface {
	// FindCandidates returns occurrences passing every hard filter, with the
	// template, type, countries, tags and guide already joined.
	FindCandidates(ctx context.Context, f model.CandidateFilter) ([]model.TripOccurrence, error)

	// CountBaseline counts occurrences that are active, bookable, have spots
	// left and depart on or after today.
	CountBaseline(ctx context.Context, today time.Time) (int, error)
}

// TripTypeResolver looks up the Private Groups trip type id.
type TripTypeResolver interface {
	PrivateGroupsTypeID(ctx context.Context) (int64, error)
}

// ─── Result ─────────────────────────────────────────────────

// ScoreThresholds lets clients color-code scores.
type ScoreThresholds struct {
	High float64 `json:"high"`
	Mid  float64 `json:"mid"`
}

// RecommendationResult is the full response payload.
type RecommendationResult struct {
	PrimaryTrips      []model.OccurrenceView `json:"primary_trips"`
	RelaxedTrips      []model.OccurrenceView `json:"relaxed_trips"`
	PrimaryCount      int                    `json:"primary_count"`
	RelaxedCount      int                    `json:"relaxed_count"`
	HasRelaxedResults bool                   `json:"has_relaxed_results"`
	TotalCandidates   int                    `json:"total_candidates"`
	TotalTripsInDB    int                    `json:"total_trips_in_db"`
	ScoreThresholds   ScoreThresholds        `json:"score_thresholds"`
}

// ─── RecommendationEngine ───────────────────────────────────

// RecommendationEngine implements the filter → score → rank pipeline with a
// relaxed top-up tier.
//
// Pipeline:
//
//  1. NORMALIZE: raw input → Preferences (bad fields become "absent").
//  2. FETCH: strict hard filters rendered to one store query.
//  3. SCORE: additive 0–100 score per candidate; duration outliers rejected.
//  4. RANK: drop below MinScore, keep top MaxResults (bounded heap).
//  5. TOP-UP: if fewer than MinResults, run the relaxed tier for the gap.
//
// The engine holds no per-request state and is safe for concurrent use.
// Output depends only on the store snapshot, the input and today's date.
type RecommendationEngine struct {
	store   CandidateStore
	types   TripTypeResolver
	scorer  *Scorer
	relaxed *RelaxedSearch
	cfg     EngineConfig
	now     func() time.Time
	log     *zap.Logger
}

// Option customizes a RecommendationEngine.
type Option func(*RecommendationEngine)

// WithClock overrides the source of "today".
func WithClock(now func() time.Time) Option {
	return func(e *RecommendationEngine) { e.now = now }
}

// NewRecommendationEngine validates cfg and wires the pipeline.
func NewRecommendationEngine(
	store CandidateStore,
	types TripTypeResolver,
	cfg EngineConfig,
	log *zap.Logger,
	opts ...Option,
) (*RecommendationEngine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("recommend")

	scorer := NewScorer(cfg)
	e := &RecommendationEngine{
		store:   store,
		types:   types,
		scorer:  scorer,
		relaxed: NewRelaxedSearch(store, scorer, cfg, log.Named("relaxed")),
		cfg:     cfg,
		now:     time.Now,
		log:     log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// GetRecommendations runs the full pipeline for one request.
//
// Only data-store failures are returned as errors; they wrap
// ErrStoreUnavailable. Malformed input and empty results are not errors.
func (e *RecommendationEngine) GetRecommendations(ctx context.Context, raw map[string]any) (*RecommendationResult, error) {
	start := time.Now()
	defer func() { metrics.RecommendDuration.Observe(time.Since(start).Seconds()) }()

	result, err := e.recommend(ctx, raw)
	switch {
	case err != nil:
		metrics.RecommendRequests.WithLabelValues(metrics.OutcomeError).Inc()
		e.log.Error("recommendation failed", zap.Error(err))
		return nil, err
	case result.PrimaryCount+result.RelaxedCount == 0:
		metrics.RecommendRequests.WithLabelValues(metrics.OutcomeEmpty).Inc()
	default:
		metrics.RecommendRequests.WithLabelValues(metrics.OutcomeOK).Inc()
	}

	e.log.Info("recommendation complete",
		zap.Int("primary", result.PrimaryCount),
		zap.Int("relaxed", result.RelaxedCount),
		zap.Int("candidates", result.TotalCandidates),
		zap.Duration("latency", time.Since(start)),
	)
	return result, nil
}

func (e *RecommendationEngine) recommend(ctx context.Context, raw map[string]any) (*RecommendationResult, error) {
	// ── Step 1: Normalize ───────────────────────────────
	prefs := NormalizePreferences(raw)
	sctx := e.searchContext(ctx, prefs)

	e.log.Debug("normalized preferences",
		zap.Int64s("countries", prefs.CountryIDs),
		zap.Int64s("themes", prefs.ThemeIDs),
		zap.Bool("private_groups", sctx.IsPrivateGroups),
	)

	// ── Step 2: FETCH strict candidates ─────────────────
	filter := BuildCandidateFilter(prefs, sctx, e.cfg.Strict)
	candidates, err := e.store.FindCandidates(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: strict candidates: %w", ErrStoreUnavailable, err)
	}
	metrics.RecommendCandidates.WithLabelValues(metrics.TierStrict).Observe(float64(len(candidates)))

	// ── Step 3 + 4: SCORE & RANK ────────────────────────
	scored := e.scoreAll(candidates, prefs, sctx)
	primary, included := NewRanker(e.cfg.MinScore, e.cfg.TopK, e.cfg.MaxResults).Select(scored)

	// ── Step 5: Relaxed top-up ──────────────────────────
	var relaxed []ScoredOccurrence
	if e.relaxed.ShouldRun(len(primary)) {
		relaxed, err = e.relaxed.TopUp(ctx, prefs, sctx, len(primary), included)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
	}

	total, err := e.store.CountBaseline(ctx, sctx.Today)
	if err != nil {
		return nil, fmt.Errorf("%w: baseline count: %w", ErrStoreUnavailable, err)
	}

	return &RecommendationResult{
		PrimaryTrips:      toViews(primary, false),
		RelaxedTrips:      toViews(relaxed, true),
		PrimaryCount:      len(primary),
		RelaxedCount:      len(relaxed),
		HasRelaxedResults: len(relaxed) > 0,
		TotalCandidates:   len(candidates),
		TotalTripsInDB:    total,
		ScoreThresholds: ScoreThresholds{
			High: e.cfg.HighScoreThreshold,
			Mid:  e.cfg.MidScoreThreshold,
		},
	}, nil
}

// searchContext resolves today and the Private Groups flag. A failed
// lookup only means the availability exemption is off for this request.
func (e *RecommendationEngine) searchContext(ctx context.Context, p model.Preferences) model.SearchContext {
	sctx := model.SearchContext{Today: model.DateOnly(e.now())}
	if e.types == nil {
		return sctx
	}

	id, err := e.types.PrivateGroupsTypeID(ctx)
	if err != nil {
		metrics.PrivateGroupsLookupFailures.Inc()
		e.log.Warn("private groups lookup failed; treating search as regular", zap.Error(err))
		return sctx
	}
	sctx.PrivateGroupsTypeID = id
	sctx.IsPrivateGroups = p.PreferredTypeID != nil && *p.PreferredTypeID == id
	return sctx
}

func (e *RecommendationEngine) scoreAll(
	candidates []model.TripOccurrence,
	p model.Preferences,
	sctx model.SearchContext,
) []ScoredOccurrence {
	scored := make([]ScoredOccurrence, 0, len(candidates))
	for i := range candidates {
		o := &candidates[i]
		score, reasons, ok := e.scorer.Score(o, p, sctx, e.cfg.Strict.Relaxed)
		if !ok {
			continue
		}
		scored = append(scored, ScoredOccurrence{Occurrence: o, Score: score, Reasons: reasons})
	}
	return scored
}

func toViews(items []ScoredOccurrence, relaxed bool) []model.OccurrenceView {
	views := make([]model.OccurrenceView, 0, len(items))
	for _, it := range items {
		v := model.NewOccurrenceView(it.Occurrence)
		v.MatchScore = it.Score
		v.MatchDetails = it.Reasons
		v.IsRelaxed = relaxed
		views = append(views, v)
	}
	return views
}
