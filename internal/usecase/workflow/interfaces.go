package workflow

import (
	"context"

	"github.com/leadforge/assessment-backend/internal/entity"
)

// LLMConnector runs the three model-backed steps of lead processing.
type LLMConnector interface {
	Model() string
	ClassifyIntent(ctx context.Context, rawLead []byte) (*entity.IntentClassification, *entity.TokenUsage, error)
	ExtractFields(ctx context.Context, rawLead []byte) (*entity.LeadFields, *entity.TokenUsage, error)
	GenerateReply(ctx context.Context, intent entity.LeadIntent, fieldsJSON []byte) (string, *entity.TokenUsage, error)
}
