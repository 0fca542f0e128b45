package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/shiva/tripmatch/internal/metrics"
	"github.com/shiva/tripmatch/internal/model"
)

// ─── Relaxed-Search Orchestrator ────────────────────────────

// RelaxedSearch tops up a thin strict result list with candidates from a
// wider query. It only ever fills the gap up to MaxResults and never returns
// an occurrence the strict tier already included.
type RelaxedSearch struct {
	store  CandidateStore
	scorer *Scorer
	cfg    EngineConfig
	log    *zap.Logger
}

// NewRelaxedSearch creates the relaxed tier orchestrator.
func NewRelaxedSearch(store CandidateStore, scorer *Scorer, cfg EngineConfig, log *zap.Logger) *RelaxedSearch {
	return &RelaxedSearch{store: store, scorer: scorer, cfg: cfg, log: log}
}

// ShouldRun reports whether strictCount results leave room for a top-up.
// This is a "too few" trigger, not a "none" trigger.
func (r *RelaxedSearch) ShouldRun(strictCount int) bool {
	return strictCount < r.cfg.MinResults && strictCount < r.cfg.MaxResults
}

// TopUp runs the relaxed tier and returns at most MaxResults − strictCount
// results, ordered like the strict tier.
func (r *RelaxedSearch) TopUp(
	ctx context.Context,
	p model.Preferences,
	sctx model.SearchContext,
	strictCount int,
	exclude map[int64]bool,
) ([]ScoredOccurrence, error) {
	need := r.cfg.MaxResults - strictCount
	if need <= 0 {
		return nil, nil
	}

	filter := BuildCandidateFilter(p, sctx, r.cfg.Relaxed)
	candidates, err := r.store.FindCandidates(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("relaxed candidates: %w", err)
	}
	metrics.RelaxedSearches.Inc()
	metrics.RecommendCandidates.WithLabelValues(metrics.TierRelaxed).Observe(float64(len(candidates)))

	scored := make([]ScoredOccurrence, 0, len(candidates))
	rejected := 0
	for i := range candidates {
		o := &candidates[i]
		if exclude[o.ID] {
			continue
		}
		score, reasons, ok := r.scorer.Score(o, p, sctx, r.cfg.Relaxed.Relaxed)
		if !ok {
			rejected++
			continue
		}
		scored = append(scored, ScoredOccurrence{Occurrence: o, Score: score, Reasons: reasons})
	}

	out, _ := NewRanker(MinMatchScore, r.cfg.TopK, need).Select(scored)

	r.log.Debug("relaxed search complete",
		zap.Int("candidates", len(candidates)),
		zap.Int("rejected", rejected),
		zap.Int("needed", need),
		zap.Int("returned", len(out)),
	)
	return out, nil
}
