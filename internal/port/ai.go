package port

import "context"

// EmbeddingProvider turns text into a fixed-dimension vector. Implementations
// retry transient failures internally; a returned error is final.
type EmbeddingProvider interface {
	// Embed generates the embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the vector length this provider produces.
	Dimension() int
}

// GenerationProvider turns a prompt into a natural-language answer. No retry:
// a generation failure surfaces to the caller immediately.
type GenerationProvider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
