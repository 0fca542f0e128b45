package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/shiva/tripmatch/internal/middleware"
	"github.com/shiva/tripmatch/internal/service"
)

// maxBodyBytes caps the preference payload.
const maxBodyBytes = 64 << 10

// Recommender is implemented by *service.RecommendationEngine.
type Recommender interface {
	GetRecommendations(ctx context.Context, raw map[string]any) (*service.RecommendationResult, error)
}

// RecommendationHandler serves trip recommendations.
type RecommendationHandler struct {
	engine  Recommender
	timeout time.Duration
	log     *zap.Logger
}

// NewRecommendationHandler creates a new handler. timeout <= 0 disables the
// per-request deadline.
func NewRecommendationHandler(engine Recommender, timeout time.Duration, log *zap.Logger) *RecommendationHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &RecommendationHandler{engine: engine, timeout: timeout, log: log.Named("handler")}
}

// Recommend handles POST /api/v1/recommendations
//
// Request body: a JSON object of raw preferences, e.g.
//
//	{
//	  "selected_countries": [12, 40],
//	  "selected_continents": ["Europe"],
//	  "preferred_theme_ids": [3, 7],
//	  "min_duration": 7, "max_duration": 14,
//	  "budget": 2500, "difficulty": 3,
//	  "year": 2026, "month": "all"
//	}
//
// An empty body means "no preferences". Malformed fields are ignored.
func (h *RecommendationHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	raw := map[string]any{}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be a JSON object")
		return
	}
	if raw == nil {
		raw = map[string]any{}
	}
	h.respond(w, r, raw)
}

// RecommendQuery handles GET /api/v1/recommendations
//
// Accepts the same keys as the POST body as query parameters. Lists may be
// repeated (?selected_countries=1&selected_countries=2) or comma separated.
func (h *RecommendationHandler) RecommendQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	raw := make(map[string]any, len(q))
	for k, vs := range q {
		switch len(vs) {
		case 0:
		case 1:
			raw[k] = vs[0]
		default:
			raw[k] = vs
		}
	}
	h.respond(w, r, raw)
}

func (h *RecommendationHandler) respond(w http.ResponseWriter, r *http.Request, raw map[string]any) {
	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	result, err := h.engine.GetRecommendations(ctx, raw)
	if err != nil {
		h.log.Error("recommendation error",
			zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
			zap.Error(err),
		)
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusGatewayTimeout, "timeout", "recommendation took too long")
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}
