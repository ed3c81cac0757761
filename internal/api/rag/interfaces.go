package rag

import (
	"context"

	"github.com/leadforge/assessment-backend/internal/entity"
)

type RagUsecase interface {
	Ingest(ctx context.Context, tenantID string) (*entity.IngestResult, error)
	Answer(ctx context.Context, req entity.ChatRequest) (*entity.AnswerResult, error)
}
