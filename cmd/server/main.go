package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shiva/tripmatch/config"
	"github.com/shiva/tripmatch/internal/handler"
	"github.com/shiva/tripmatch/internal/middleware"
	"github.com/shiva/tripmatch/internal/repository"
	"github.com/shiva/tripmatch/internal/service"
	"github.com/shiva/tripmatch/pkg/cache"
	"github.com/shiva/tripmatch/pkg/db"
	"github.com/shiva/tripmatch/pkg/logger"
)

func main() {
	// ── Load configuration ──────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx := context.Background()

	engineCfg, err := engineConfig(cfg.Recommend)
	if err != nil {
		return err
	}

	// ── Connect to PostgreSQL ───────────────────────────
	pgPool, err := db.NewPostgresPool(ctx, cfg.Postgres, zlog)
	if err != nil {
		return err
	}
	defer pgPool.Close()
	zlog.Info("postgres connected", zap.String("db", cfg.Postgres.DBName))

	// ── Connect to Redis ────────────────────────────────
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis, zlog)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	// ── Initialize layers ───────────────────────────────
	tripRepo := repository.NewTripRepository(pgPool)
	typeRepo := repository.NewTripTypeRepository(
		pgPool, redisClient, cfg.Recommend.PrivateGroupsLabel, cfg.Recommend.TypeCacheTTL,
	)

	engine, err := service.NewRecommendationEngine(tripRepo, typeRepo, engineCfg, zlog)
	if err != nil {
		return err
	}
	recHandler := handler.NewRecommendationHandler(engine, cfg.Recommend.Timeout, zlog)

	// ── Setup router ────────────────────────────────────
	router := mux.NewRouter()

	router.HandleFunc("/health", healthHandler(pgPool, redisClient)).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/recommendations", recHandler.Recommend).Methods(http.MethodPost)
	api.HandleFunc("/recommendations", recHandler.RecommendQuery).Methods(http.MethodGet)

	router.Use(middleware.RequestID, middleware.RequestLogger(zlog), middleware.Recoverer(zlog))
	root := middleware.CORS(router)

	// ── Start HTTP server ───────────────────────────────
	srv := &http.Server{
		Addr:         cfg.Server.ServerAddr(),
		Handler:      root,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server listening", zap.String("addr", cfg.Server.ServerAddr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// ── Graceful shutdown ───────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	zlog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	zlog.Info("server gracefully stopped")
	return nil
}

// engineConfig layers env tunables and the optional weights file over the
// engine defaults.
func engineConfig(rc config.RecommendConfig) (service.EngineConfig, error) {
	ec := service.DefaultEngineConfig()
	ec.MaxResults = rc.MaxResults
	ec.MinResults = rc.MinResults
	ec.MinScore = rc.MinScore
	ec.TopK = rc.TopK
	ec.DepartingSoonDays = rc.DepartingSoonDays
	ec.Strict = service.StrictProfile(rc.StrictBudgetMultiplier)
	ec.Relaxed = service.RelaxedProfile(rc.RelaxedBudgetMultiplier)

	if err := config.LoadOverrides(rc.WeightsFile, &ec.Weights); err != nil {
		return ec, err
	}
	return ec, ec.Validate()
}

// HealthResponse represents the /health endpoint response.
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// healthHandler returns an HTTP handler that checks PG and Redis connectivity.
func healthHandler(pg db.Pinger, rdb redis.Cmdable) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:   "ok",
			Services: make(map[string]string),
		}

		if err := db.HealthCheck(r.Context(), pg); err != nil {
			resp.Status = "degraded"
			resp.Services["postgres"] = "unhealthy"
		} else {
			resp.Services["postgres"] = "healthy"
		}

		if err := cache.HealthCheck(r.Context(), rdb); err != nil {
			resp.Status = "degraded"
			resp.Services["redis"] = "unhealthy"
		} else {
			resp.Services["redis"] = "healthy"
		}

		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
