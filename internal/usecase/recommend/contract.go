package recommend

import (
	"context"

	"github.com/aromatch/scentia/internal/domain"
	"github.com/aromatch/scentia/internal/domain/predicate"
	"github.com/aromatch/scentia/internal/usecase/extract"
)

// Extractor turns a raw query into structured attributes.
type Extractor interface {
	Extract(ctx context.Context, raw string) (extract.Extraction, error)
}

// CandidateFinder fetches catalog rows matching a filter predicate.
type CandidateFinder interface {
	FindByPredicate(ctx context.Context, pred predicate.Predicate) ([]domain.Product, error)
}

// Ranker orders candidates for a query and truncates to k.
type Ranker interface {
	Rank(ctx context.Context, queryText string, candidates []domain.Product, k int) ([]domain.RankedResult, error)
}
