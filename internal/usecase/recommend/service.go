// Package recommend wires extraction, predicate building, candidate
// retrieval, and hybrid ranking into the per-request pipeline.
package recommend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aromatch/scentia/internal/domain"
	"github.com/aromatch/scentia/internal/domain/predicate"
	"github.com/aromatch/scentia/internal/domain/query"
	"github.com/aromatch/scentia/internal/logger"
)

// Recommendation is the pipeline outcome: the extracted attribute set
// plus the ranked results. An empty Results slice is the explicit
// "no candidates" outcome, distinct from an error.
type Recommendation struct {
	Attributes query.Attributes      `json:"attributes"`
	Results    []domain.RankedResult `json:"results"`
}

// Service runs the query-understanding-to-ranking pipeline. It holds no
// per-request state; concurrent invocations are independent.
type Service struct {
	extractor  Extractor
	candidates CandidateFinder
	ranker     Ranker
	topK       int
	maxTopK    int
}

// New creates the pipeline orchestrator. topK is the default result
// count when the caller does not ask for one; maxTopK caps what the
// caller may ask for.
func New(extractor Extractor, candidates CandidateFinder, ranker Ranker, topK, maxTopK int) *Service {
	return &Service{
		extractor:  extractor,
		candidates: candidates,
		ranker:     ranker,
		topK:       topK,
		maxTopK:    maxTopK,
	}
}

// Search runs one request through the pipeline. Extraction failure is
// the only error surfaced to the caller; a data-store failure is logged
// and absorbed into the empty result.
func (s *Service) Search(ctx context.Context, rawQuery string, limit int) (Recommendation, error) {
	log := logger.FromContext(ctx)

	extraction, err := s.extractor.Extract(ctx, rawQuery)
	if err != nil {
		return Recommendation{}, fmt.Errorf("extract attributes: %w", err)
	}

	pred := predicate.Build(extraction.Attributes)
	log.Debug("predicate built",
		zap.Int("clauses", len(pred.Clauses())),
		zap.Int("params", len(pred.Params())),
	)

	rec := Recommendation{
		Attributes: extraction.Attributes,
		Results:    []domain.RankedResult{},
	}

	candidates, err := s.candidates.FindByPredicate(ctx, pred)
	if err != nil {
		// Fail-soft: a catalog error degrades to "no candidates"
		// rather than failing the request.
		log.Error("candidate fetch failed", zap.Error(err))
		return rec, nil
	}

	log.Debug("candidates fetched", zap.Int("count", len(candidates)))
	if len(candidates) == 0 {
		return rec, nil
	}

	results, err := s.ranker.Rank(ctx, extraction.Normalized, candidates, s.clampLimit(limit))
	if err != nil {
		return Recommendation{}, fmt.Errorf("rank candidates: %w", err)
	}

	rec.Results = results
	return rec, nil
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return s.topK
	}
	if limit > s.maxTopK {
		return s.maxTopK
	}
	return limit
}
