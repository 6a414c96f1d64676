package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/aromatch/scentia/internal/domain"
	"github.com/aromatch/scentia/internal/domain/predicate"
	"github.com/aromatch/scentia/internal/domain/query"
	"github.com/aromatch/scentia/internal/usecase/extract"
)

// --- Mocks ---

type mockExtractor struct {
	extraction extract.Extraction
	err        error
}

func (m *mockExtractor) Extract(_ context.Context, _ string) (extract.Extraction, error) {
	return m.extraction, m.err
}

type mockFinder struct {
	products []domain.Product
	err      error
	lastPred predicate.Predicate
	calls    int
}

func (m *mockFinder) FindByPredicate(_ context.Context, pred predicate.Predicate) ([]domain.Product, error) {
	m.calls++
	m.lastPred = pred
	return m.products, m.err
}

type mockRanker struct {
	results []domain.RankedResult
	err     error
	lastK   int
	calls   int
}

func (m *mockRanker) Rank(_ context.Context, _ string, _ []domain.Product, k int) ([]domain.RankedResult, error) {
	m.calls++
	m.lastK = k
	return m.results, m.err
}

func strPtr(s string) *string { return &s }

// --- Tests ---

func TestSearch_FullPipeline(t *testing.T) {
	attrs := query.Attributes{
		Category:  query.CategoryPerfume,
		Longevity: strPtr("long lasting"),
		Sillage:   strPtr("strong"),
		Seasons:   []string{"winter"},
		Times:     []string{"night"},
	}
	extractor := &mockExtractor{extraction: extract.Extraction{
		Normalized: "looking long lasting floral perfume strong projection best winter nights",
		Attributes: attrs,
	}}
	finder := &mockFinder{products: []domain.Product{
		{ID: 1, Name: "A", PositiveRate: 0.2},
		{ID: 2, Name: "B", PositiveRate: 0.8},
	}}
	ranker := &mockRanker{results: []domain.RankedResult{
		{ID: 2, Name: "B", FinalScore: 0.66},
		{ID: 1, Name: "A", FinalScore: 0.62},
	}}

	svc := New(extractor, finder, ranker, 5, 50)

	rec, err := svc.Search(context.Background(), "some raw query", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Attributes.Longevity == nil || *rec.Attributes.Longevity != "long lasting" {
		t.Errorf("attributes not propagated: %+v", rec.Attributes)
	}
	if len(rec.Results) != 2 || rec.Results[0].Name != "B" {
		t.Errorf("results = %+v, want ranked [B A]", rec.Results)
	}
	// longevity + sillage + season + time = 4 clauses
	if got := len(finder.lastPred.Clauses()); got != 4 {
		t.Errorf("predicate clauses = %d, want 4", got)
	}
	if ranker.lastK != 5 {
		t.Errorf("rank k = %d, want default 5", ranker.lastK)
	}
}

func TestSearch_ExtractionFailurePropagates(t *testing.T) {
	extractor := &mockExtractor{err: domain.ErrExtractionFailed}
	finder := &mockFinder{}
	ranker := &mockRanker{}
	svc := New(extractor, finder, ranker, 5, 50)

	_, err := svc.Search(context.Background(), "q", 0)
	if !errors.Is(err, domain.ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
	if finder.calls != 0 || ranker.calls != 0 {
		t.Error("pipeline must stop at extraction failure")
	}
}

func TestSearch_StoreErrorFailsSoft(t *testing.T) {
	extractor := &mockExtractor{extraction: extract.Extraction{
		Attributes: query.Attributes{Gender: strPtr("female")},
	}}
	finder := &mockFinder{err: errors.New("catalog unavailable")}
	ranker := &mockRanker{}
	svc := New(extractor, finder, ranker, 5, 50)

	rec, err := svc.Search(context.Background(), "q", 0)
	if err != nil {
		t.Fatalf("store failure must not fail the request, got %v", err)
	}
	if rec.Results == nil || len(rec.Results) != 0 {
		t.Errorf("Results = %v, want empty non-nil slice", rec.Results)
	}
	if rec.Attributes.Gender == nil {
		t.Error("extracted attributes must still be returned")
	}
	if ranker.calls != 0 {
		t.Error("ranker must not run without candidates")
	}
}

func TestSearch_NoCandidates(t *testing.T) {
	extractor := &mockExtractor{}
	finder := &mockFinder{products: nil}
	ranker := &mockRanker{}
	svc := New(extractor, finder, ranker, 5, 50)

	rec, err := svc.Search(context.Background(), "q", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Results == nil || len(rec.Results) != 0 {
		t.Errorf("Results = %v, want empty non-nil slice", rec.Results)
	}
	if ranker.calls != 0 {
		t.Error("ranker must not run for an empty candidate set")
	}
}

func TestSearch_RankerErrorPropagates(t *testing.T) {
	extractor := &mockExtractor{}
	finder := &mockFinder{products: []domain.Product{{ID: 1}}}
	ranker := &mockRanker{err: domain.ErrEmbeddingProviderError}
	svc := New(extractor, finder, ranker, 5, 50)

	_, err := svc.Search(context.Background(), "q", 0)
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ranker error, got %v", err)
	}
}

func TestSearch_LimitClamping(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"zero uses default", 0, 5},
		{"negative uses default", -3, 5},
		{"within cap passes through", 12, 12},
		{"above cap clamps", 500, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := &mockExtractor{}
			finder := &mockFinder{products: []domain.Product{{ID: 1}}}
			ranker := &mockRanker{}
			svc := New(extractor, finder, ranker, 5, 50)

			if _, err := svc.Search(context.Background(), "q", tt.limit); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ranker.lastK != tt.want {
				t.Errorf("rank k = %d, want %d", ranker.lastK, tt.want)
			}
		})
	}
}
