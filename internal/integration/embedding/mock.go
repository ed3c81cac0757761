package embedding

import (
	"context"

	"github.com/leadforge/assessment-backend/internal/vectorstore"
	"go.uber.org/zap"
)

// MockConnector produces deterministic pseudo-random embeddings derived from
// the input text, so similar inputs are only "similar" when identical. Used
// when ENABLE_MOCKS is set and throughout the tests.
type MockConnector struct {
	dimensions int
	logger     *zap.Logger
}

func NewMockConnector(dimensions int, logger *zap.Logger) *MockConnector {
	return &MockConnector{
		dimensions: dimensions,
		logger:     logger,
	}
}

func (m *MockConnector) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return m.vectorFor(text), nil
}

func (m *MockConnector) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = m.vectorFor(text)
	}
	return vectors, nil
}

// vectorFor seeds an LCG from the text so the same input always yields the
// same unit vector.
func (m *MockConnector) vectorFor(text string) []float32 {
	var seed uint64
	for _, r := range text {
		seed = seed*31 + uint64(r)
	}

	vector := make([]float32, m.dimensions)
	for i := range vector {
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%2000)/1000.0 - 1.0
	}

	return vectorstore.Normalize(vector)
}
