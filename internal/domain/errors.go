package domain

import "errors"

var (
	// ErrExtractionFailed signals a malformed or unparseable model reply.
	// It is client-visible and never retried.
	ErrExtractionFailed = errors.New("attribute extraction failed")
	// ErrGenerationProviderError signals a text-generation provider failure.
	ErrGenerationProviderError = errors.New("generation provider error")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
)
