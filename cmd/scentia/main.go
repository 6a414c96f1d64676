package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/aromatch/scentia/internal/config"
	"github.com/aromatch/scentia/internal/db"
	dbRedis "github.com/aromatch/scentia/internal/db/redis"
	dbSqlite "github.com/aromatch/scentia/internal/db/sqlite"
	"github.com/aromatch/scentia/internal/domain"
	logpkg "github.com/aromatch/scentia/internal/logger"
	"github.com/aromatch/scentia/internal/metrics"
	"github.com/aromatch/scentia/internal/repository/embcache"
	productrepo "github.com/aromatch/scentia/internal/repository/product"
	chiTransport "github.com/aromatch/scentia/internal/transport/chi"
	openaiProv "github.com/aromatch/scentia/internal/transport/openai"
	extractuc "github.com/aromatch/scentia/internal/usecase/extract"
	healthuc "github.com/aromatch/scentia/internal/usecase/health"
	rankuc "github.com/aromatch/scentia/internal/usecase/rank"
	recommenduc "github.com/aromatch/scentia/internal/usecase/recommend"
	"github.com/aromatch/scentia/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting scentia API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("catalog_path", cfg.Database.Path),
	)

	// Open the product catalog
	catalog, err := dbSqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to open catalog database", zap.Error(err))
	}
	defer catalog.Close()

	ctx := context.Background()
	if err := dbSqlite.WaitForReady(ctx, catalog, 10*time.Second); err != nil {
		logger.Fatal("Catalog database not ready", zap.Error(err))
	}
	logger.Info("Connected to catalog database")

	// Register model metrics explicitly (no init())
	metrics.RegisterModelMetrics()

	// Optional embedding cache
	var kv db.KV
	if len(cfg.Cache.Addrs) > 0 {
		kv, err = dbRedis.New(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache client", zap.Error(err))
		}
		defer kv.Close()

		if err := kv.Ping(ctx); err != nil {
			logger.Warn("Embedding cache unreachable, continuing without it", zap.Error(err))
			kv = nil
		}
	}

	embedder := buildEmbedder(cfg, kv, logger)
	generator := openaiProv.NewGenerator(&openaiProv.GeneratorConfig{
		APIKey:  cfg.Generator.APIKey,
		BaseURL: cfg.Generator.BaseURL,
		Model:   cfg.Generator.Model,
		Logger:  logger,
	})
	logger.Info("Model providers created",
		zap.String("generator_model", cfg.Generator.Model),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.Bool("embedding_cache", kv != nil),
	)

	// Repositories and use case services
	products := productrepo.New(catalog)

	extractSvc := extractuc.New(generator, time.Duration(cfg.Generator.TimeoutSec)*time.Second, logger)
	rankSvc := rankuc.New(embedder, time.Duration(cfg.Embedding.TimeoutSec)*time.Second, logger)
	recommendSvc := recommenduc.New(extractSvc, products, rankSvc, cfg.Search.DefaultTopK, cfg.Search.MaxTopK)
	healthSvc := healthuc.New(catalog, newProviderChecker(embedder), generator)

	server := chiTransport.NewServer(recommendSvc, products, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildEmbedder assembles the embedder chain: OpenAI provider, wrapped in
// the KV cache when one is configured.
func buildEmbedder(cfg config.Config, kv db.KV, logger *zap.Logger) domain.Embedder {
	base := openaiProv.NewEmbedder(&openaiProv.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})

	if kv == nil {
		return base
	}

	ttl := time.Duration(cfg.Cache.TTLHours) * time.Hour
	return embcache.New(base, kv, ttl, metrics.EmbeddingCacheTotal, logger)
}

// providerChecker adapts a domain.Embedder to health.ProviderChecker.
type providerChecker struct {
	embedder domain.Embedder
}

func newProviderChecker(embedder domain.Embedder) *providerChecker {
	return &providerChecker{embedder: embedder}
}

func (p *providerChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := p.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
