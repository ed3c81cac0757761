package workflow

import (
	"context"

	"github.com/leadforge/assessment-backend/internal/entity"
)

type WorkflowUsecase interface {
	ProcessLead(ctx context.Context, rawInput []byte) (*entity.WorkflowResult, error)
	GetLead(ctx context.Context, id string) (*entity.LeadRecord, error)
}
