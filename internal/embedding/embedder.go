// Package embedding generates vector embeddings for memory storage and
// retrieval.
package embedding

import "context"

// Embedder turns text into fixed-dimension vectors.
type Embedder interface {
	// Embed generates an embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Model returns the name of the embedding model being used.
	Model() string

	// Dimension returns the embedding vector dimension. Must match the
	// HNSW index dimension in the memory schema.
	Dimension() int
}
