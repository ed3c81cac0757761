package rag

import (
	"context"

	"github.com/leadforge/assessment-backend/internal/entity"
)

// ChunkIndex is the vector index holding embedded document chunks.
type ChunkIndex interface {
	AddChunks(ctx context.Context, chunks []entity.DocumentChunk) error
	Search(ctx context.Context, tenantID string, vector []float32, limit int, minScore float32) ([]entity.ScoredChunk, error)
}

// EmbeddingConnector converts text into fixed-dimension vectors.
type EmbeddingConnector interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatConnector generates a completion for a system+user message pair.
type ChatConnector interface {
	Answer(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
