// Package rank orders candidate products by fusing semantic similarity
// with the stored positive-feedback rate.
package rank

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/aromatch/scentia/internal/domain"
)

// Fusion weights. Design constants, not user-configurable.
const (
	similarityWeight   = 0.7
	positiveRateWeight = 0.3
)

// Service computes the hybrid ranking over a candidate set.
type Service struct {
	embedder domain.Embedder
	timeout  time.Duration
	logger   *zap.Logger
}

// New creates a ranking service. timeout bounds the embedding calls for
// one request.
func New(embedder domain.Embedder, timeout time.Duration, logger *zap.Logger) *Service {
	return &Service{embedder: embedder, timeout: timeout, logger: logger}
}

// Rank embeds the query and the candidate descriptions, fuses cosine
// similarity with positive rate, and returns the top k results in
// descending final-score order (stable: ties keep candidate order).
//
// An empty candidate set returns an empty result without touching the
// embedding provider. If the provider fails, ranking degrades to the
// positive-feedback signal alone rather than failing the request.
func (s *Service) Rank(
	ctx context.Context, queryText string, candidates []domain.Product, k int,
) ([]domain.RankedResult, error) {
	if len(candidates) == 0 {
		return []domain.RankedResult{}, nil
	}

	similarities, err := s.similarities(ctx, queryText, candidates)
	if err != nil {
		s.logger.Warn("embedding unavailable, ranking by positive rate only", zap.Error(err))
		similarities = make([]float64, len(candidates))
	}

	results := make([]domain.RankedResult, len(candidates))
	for i, p := range candidates {
		results[i] = domain.RankedResult{
			ID:           p.ID,
			Name:         p.Name,
			Description:  p.Description,
			PositiveRate: p.PositiveRate,
			Similarity:   similarities[i],
			FinalScore:   similarities[i]*similarityWeight + p.PositiveRate*positiveRateWeight,
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})

	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// similarities returns one cosine similarity per candidate, zipped back
// by position. Descriptions go through one batched call when the
// provider supports it.
func (s *Service) similarities(
	ctx context.Context, queryText string, candidates []domain.Product,
) ([]float64, error) {
	embCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	queryRes, err := s.embedder.Embed(embCtx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	descriptions := make([]string, len(candidates))
	for i, p := range candidates {
		descriptions[i] = p.Description
	}

	var batch domain.BatchEmbeddingResult
	if be, ok := s.embedder.(domain.BatchEmbedder); ok {
		batch, err = be.BatchEmbed(embCtx, descriptions)
	} else {
		batch, err = domain.BatchFallback(embCtx, s.embedder, descriptions)
	}
	if err != nil {
		return nil, fmt.Errorf("embed descriptions: %w", err)
	}
	if len(batch.Embeddings) != len(candidates) {
		return nil, fmt.Errorf(
			"got %d description vectors for %d candidates: %w",
			len(batch.Embeddings), len(candidates), domain.ErrEmbeddingProviderError,
		)
	}

	out := make([]float64, len(candidates))
	for i, vec := range batch.Embeddings {
		out[i] = cosineSimilarity(queryRes.Embedding, vec)
	}
	return out, nil
}

// cosineSimilarity computes cos(a, b) with float64 accumulation.
// Mismatched or zero-magnitude vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
