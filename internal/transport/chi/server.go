// Package chi exposes the recommendation pipeline over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/aromatch/scentia/internal/domain"
	"github.com/aromatch/scentia/internal/logger"
	"github.com/aromatch/scentia/internal/usecase/health"
	"github.com/aromatch/scentia/internal/usecase/recommend"
)

// Machine-readable error codes returned alongside HTTP statuses.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeExtractionFailed = "extraction_failed"
	codeGenerationError  = "generation_provider_error"
	codeEmbeddingError   = "embedding_provider_error"
	codeInternalError    = "internal_error"
)

// maxQueryLen caps raw query text before it reaches the pipeline.
const maxQueryLen = 2000

// Recommender runs the natural-language search pipeline.
type Recommender interface {
	Search(ctx context.Context, rawQuery string, limit int) (recommend.Recommendation, error)
}

// CatalogSearcher serves the plain description search.
type CatalogSearcher interface {
	FindByDescription(ctx context.Context, contains string, minRate *float64) ([]domain.Product, error)
}

// HealthService aggregates readiness checks.
type HealthService interface {
	Check(ctx context.Context) health.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server holds the HTTP handlers.
type Server struct {
	recommender   Recommender
	catalog       CatalogSearcher
	health        HealthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(recommender Recommender, catalog CatalogSearcher, healthSvc HealthService, logger *zap.Logger) *Server {
	s := &Server{
		recommender: recommender,
		catalog:     catalog,
		health:      healthSvc,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrExtractionFailed, http.StatusUnprocessableEntity, codeExtractionFailed),
		sentinelHandler(domain.ErrGenerationProviderError, http.StatusBadGateway, codeGenerationError),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingError),
	}
	return s
}

// Register mounts all routes on the given router.
func (s *Server) Register(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Post("/products/search", s.handleProductSearch)
	})
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// handleSearch handles POST /api/v1/search: the one
// natural-language-query operation. An empty result list is a valid
// "no candidates" outcome, not an error.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Query == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "query is required")
		return
	}
	if len(req.Query) > maxQueryLen {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "query too long")
		return
	}
	if req.Limit < 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "limit must not be negative")
		return
	}

	rec, err := s.recommender.Search(r.Context(), req.Query, req.Limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

type productSearchRequest struct {
	Category string   `json:"category"`
	MinRate  *float64 `json:"min_rate"`
}

// handleProductSearch handles POST /api/v1/products/search: plain
// substring lookup over descriptions. A catalog failure degrades to an
// empty list, matching the pipeline's fail-soft policy.
func (s *Server) handleProductSearch(w http.ResponseWriter, r *http.Request) {
	var req productSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	products, err := s.catalog.FindByDescription(r.Context(), req.Category, req.MinRate)
	if err != nil {
		logger.FromContext(r.Context()).Error("product search failed", zap.Error(err))
		products = nil
	}

	items := make([]productItem, 0, len(products))
	for _, p := range products {
		items = append(items, productItem{
			ID:           p.ID,
			Name:         p.Name,
			Description:  p.Description,
			PositiveRate: p.PositiveRate,
		})
	}

	writeJSON(w, http.StatusOK, items)
}

type productItem struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	PositiveRate float64 `json:"positive_rate"`
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != health.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// --- error plumbing ---

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// sentinelHandler maps one domain sentinel to an HTTP status and code.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}

	logger.FromContext(r.Context()).Error("unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
