package rank

import (
	"context"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/aromatch/scentia/internal/domain"
)

// --- Mocks ---

// mockEmbedder hands out fixed vectors per text, batching included.
type mockEmbedder struct {
	vectors    map[string][]float32
	err        error
	embedCalls int
	batchCalls int
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.embedCalls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vectors[text]}, nil
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchCalls++
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = m.vectors[text]
	}
	return domain.BatchEmbeddingResult{Embeddings: out}, nil
}

func newTestService(e domain.Embedder) *Service {
	return New(e, time.Second, zap.NewNop())
}

func almostEqual(a, b float64) bool {
	// Mock vectors pass through float32, so allow its precision loss.
	return math.Abs(a-b) < 1e-6
}

// --- Tests ---

func TestRank_FusesSimilarityAndPositiveRate(t *testing.T) {
	// A: similarity 0.8, positive rate 0.2 -> 0.8*0.7 + 0.2*0.3 = 0.62
	// B: similarity 0.6, positive rate 0.8 -> 0.6*0.7 + 0.8*0.3 = 0.66
	emb := &mockEmbedder{vectors: map[string][]float32{
		"fresh citrus": {1, 0},
		"desc a":       {0.8, 0.6},
		"desc b":       {0.6, 0.8},
	}}
	svc := newTestService(emb)

	candidates := []domain.Product{
		{ID: 1, Name: "A", Description: "desc a", PositiveRate: 0.2},
		{ID: 2, Name: "B", Description: "desc b", PositiveRate: 0.8},
	}

	results, err := svc.Rank(context.Background(), "fresh citrus", candidates, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].Name != "B" || results[1].Name != "A" {
		t.Fatalf("order = [%s %s], want [B A]", results[0].Name, results[1].Name)
	}
	if !almostEqual(results[0].FinalScore, 0.66) {
		t.Errorf("B final score = %v, want 0.66", results[0].FinalScore)
	}
	if !almostEqual(results[1].FinalScore, 0.62) {
		t.Errorf("A final score = %v, want 0.62", results[1].FinalScore)
	}
	if !almostEqual(results[1].Similarity, 0.8) {
		t.Errorf("A similarity = %v, want 0.8", results[1].Similarity)
	}
}

func TestRank_EmptyCandidatesSkipsProvider(t *testing.T) {
	emb := &mockEmbedder{}
	svc := newTestService(emb)

	results, err := svc.Rank(context.Background(), "anything", nil, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0", len(results))
	}
	if emb.embedCalls != 0 || emb.batchCalls != 0 {
		t.Error("embedding provider must not be called for an empty candidate set")
	}
}

func TestRank_TruncatesToK(t *testing.T) {
	emb := &mockEmbedder{vectors: map[string][]float32{}}
	svc := newTestService(emb)

	candidates := make([]domain.Product, 8)
	for i := range candidates {
		candidates[i] = domain.Product{
			ID:           int64(i + 1),
			Description:  "d",
			PositiveRate: float64(i) / 10,
		}
	}

	results, err := svc.Rank(context.Background(), "q", candidates, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	// Zero-length vectors score 0 similarity, so positive rate decides.
	if results[0].ID != 8 || results[1].ID != 7 || results[2].ID != 6 {
		t.Errorf("top ids = [%d %d %d], want [8 7 6]",
			results[0].ID, results[1].ID, results[2].ID)
	}
}

func TestRank_KZeroKeepsAll(t *testing.T) {
	emb := &mockEmbedder{vectors: map[string][]float32{}}
	svc := newTestService(emb)

	candidates := []domain.Product{{ID: 1}, {ID: 2}, {ID: 3}}
	results, err := svc.Rank(context.Background(), "q", candidates, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("len(results) = %d, want 3", len(results))
	}
}

func TestRank_StableOnTies(t *testing.T) {
	emb := &mockEmbedder{vectors: map[string][]float32{}}
	svc := newTestService(emb)

	candidates := []domain.Product{
		{ID: 1, PositiveRate: 0.5},
		{ID: 2, PositiveRate: 0.5},
		{ID: 3, PositiveRate: 0.5},
	}

	results, err := svc.Rank(context.Background(), "q", candidates, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, want := range []int64{1, 2, 3} {
		if results[i].ID != want {
			t.Fatalf("ties not stable: got order %v", results)
		}
	}
}

func TestRank_DegradesOnProviderError(t *testing.T) {
	emb := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	svc := newTestService(emb)

	candidates := []domain.Product{
		{ID: 1, Name: "low", PositiveRate: 0.1},
		{ID: 2, Name: "high", PositiveRate: 0.9},
	}

	results, err := svc.Rank(context.Background(), "q", candidates, 5)
	if err != nil {
		t.Fatalf("degraded ranking must not fail the request, got %v", err)
	}
	if results[0].Name != "high" {
		t.Errorf("top result = %s, want high (positive rate only)", results[0].Name)
	}
	if !almostEqual(results[0].FinalScore, 0.9*0.3) {
		t.Errorf("final score = %v, want %v", results[0].FinalScore, 0.9*0.3)
	}
	if results[0].Similarity != 0 {
		t.Errorf("similarity = %v, want 0 on degrade", results[0].Similarity)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"length mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if !almostEqual(got, tt.want) {
				t.Errorf("cosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}
