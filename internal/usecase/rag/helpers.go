package rag

import (
	"fmt"
	"math"
	"strings"

	"github.com/leadforge/assessment-backend/internal/entity"
)

// round3 converts a similarity score to the three-decimal confidence
// exposed by the API.
func round3(v float32) float64 {
	return math.Round(float64(v)*1000) / 1000
}

// dedupSources collects the distinct source file names of the hits,
// preserving relevance order.
func dedupSources(hits []entity.ScoredChunk) []string {
	seen := make(map[string]struct{}, len(hits))
	sources := make([]string, 0, len(hits))

	for _, hit := range hits {
		if _, ok := seen[hit.Chunk.Source]; ok {
			continue
		}
		seen[hit.Chunk.Source] = struct{}{}
		sources = append(sources, hit.Chunk.Source)
	}

	return sources
}

// formatHistory renders stored messages for the prompt. The repository
// returns newest first, the prompt wants chronological order.
func formatHistory(messages []*entity.ChatMessage) string {
	if len(messages) == 0 {
		return "No previous messages."
	}

	lines := make([]string, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		lines = append(lines, fmt.Sprintf("%s: %s", messages[i].Role, messages[i].Content))
	}

	return strings.Join(lines, "\n")
}

func joinChunks(hits []entity.ScoredChunk) string {
	parts := make([]string, 0, len(hits))
	for _, hit := range hits {
		parts = append(parts, hit.Chunk.Content)
	}

	return strings.Join(parts, "\n\n")
}
