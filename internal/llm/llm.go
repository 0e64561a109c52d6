package llm

import "context"

// Embedder converts text to vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// Chat is a single-turn completion against a system and user prompt.
type Chat interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
