package extract

import "context"

// Generator is the text-generation contract consumed by the extractor.
// The reply is an opaque text blob with no guaranteed structure.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
