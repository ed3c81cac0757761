package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/leadforge/assessment-backend/internal/entity"
	"go.uber.org/zap"
)

// MockConnector is a deterministic stand-in for the chat-completion provider,
// used when ENABLE_MOCKS is set.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Model() string {
	return "mock-chat"
}

func (m *MockConnector) Answer(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctxzap.Info(ctx, "[MOCK] generating chat answer")

	// The system prompt embeds the retrieved context; echo its first line so
	// the answer visibly depends on grounding.
	if _, after, ok := strings.Cut(systemPrompt, "Context:"); ok {
		for _, line := range strings.Split(after, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if strings.HasPrefix(line, "Previous conversation:") {
				break
			}
			return fmt.Sprintf("According to our documents: %s", line), nil
		}
	}

	return "I don't have information about that in our company documents.", nil
}

var mockEmailPattern = regexp.MustCompile(`[\w.-]+@[\w.-]+`)

func (m *MockConnector) ClassifyIntent(ctx context.Context, rawLead []byte) (*entity.IntentClassification, *entity.TokenUsage, error) {
	ctxzap.Info(ctx, "[MOCK] classifying lead intent")

	text := strings.ToLower(string(rawLead))
	result := &entity.IntentClassification{Intent: entity.LeadIntentUnknown, Confidence: 0.5}

	switch {
	case strings.Contains(text, "buy") || strings.Contains(text, "price") || strings.Contains(text, "demo"):
		result.Intent = entity.LeadIntentSales
		result.Confidence = 0.92
	case strings.Contains(text, "help") || strings.Contains(text, "issue") || strings.Contains(text, "broken"):
		result.Intent = entity.LeadIntentSupport
		result.Confidence = 0.9
	case strings.Contains(text, "partner") || strings.Contains(text, "integrate"):
		result.Intent = entity.LeadIntentPartnership
		result.Confidence = 0.85
	}

	return result, &entity.TokenUsage{In: 42, Out: 12}, nil
}

func (m *MockConnector) ExtractFields(ctx context.Context, rawLead []byte) (*entity.LeadFields, *entity.TokenUsage, error) {
	ctxzap.Info(ctx, "[MOCK] extracting lead fields")

	fields := &entity.LeadFields{}
	if match := mockEmailPattern.FindString(string(rawLead)); match != "" {
		fields.Email = &match
	}

	return fields, &entity.TokenUsage{In: 42, Out: 24}, nil
}

func (m *MockConnector) GenerateReply(ctx context.Context, intent entity.LeadIntent, fieldsJSON []byte) (string, *entity.TokenUsage, error) {
	ctxzap.Info(ctx, "[MOCK] generating lead reply")

	return fmt.Sprintf("Thanks for reaching out! We have routed your %s request and will be in touch shortly.", intent),
		&entity.TokenUsage{In: 30, Out: 20}, nil
}
