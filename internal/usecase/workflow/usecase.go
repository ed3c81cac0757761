package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/leadforge/assessment-backend/internal/entity"
	"github.com/leadforge/assessment-backend/internal/pkg/logger"
	"github.com/leadforge/assessment-backend/internal/repository"
)

// minIntentConfidence is the floor below which a classification is not
// trusted and the lead is routed as unknown.
const minIntentConfidence = 0.7

const (
	stepClassifyIntent = "classify_intent"
	stepExtractFields  = "extract_fields"
	stepGenerateReply  = "generate_reply"
)

// Usecase runs the lead intake workflow: classify, extract, reply, persist.
type Usecase struct {
	llm   LLMConnector
	leads repository.LeadRepository
}

func NewUsecase(llm LLMConnector, leads repository.LeadRepository) *Usecase {
	return &Usecase{
		llm:   llm,
		leads: leads,
	}
}

// ProcessLead runs the full workflow for one raw lead payload. A failed
// classification or reply step persists the lead as failed and surfaces the
// error; a failed extraction step degrades to pattern-based extraction and
// marks the lead as fallback. Every model call is recorded as a step log.
func (u *Usecase) ProcessLead(ctx context.Context, rawInput []byte) (*entity.WorkflowResult, error) {
	if len(rawInput) == 0 || !json.Valid(rawInput) {
		return nil, fmt.Errorf("%w: lead payload must be valid JSON", entity.ErrValidation)
	}

	requestID := uuid.New().String()
	ctx = logger.WithRequestID(ctx, requestID)

	var steps []entity.StepLog

	start := time.Now()
	classification, usage, err := u.llm.ClassifyIntent(ctx, rawInput)
	steps = append(steps, u.stepLog(stepClassifyIntent, start, usage, err))
	if err != nil {
		u.persistFailure(ctx, rawInput, requestID, steps, err)
		return nil, err
	}

	intent := classification.Intent
	confidence := classification.Confidence
	if confidence < minIntentConfidence {
		ctxzap.Info(ctx, "intent confidence below threshold, routing as unknown",
			zap.String("intent", string(classification.Intent)),
			zap.Float64("confidence", confidence))
		intent = entity.LeadIntentUnknown
	}

	status := entity.LeadStatusProcessed

	start = time.Now()
	fields, usage, err := u.llm.ExtractFields(ctx, rawInput)
	steps = append(steps, u.stepLog(stepExtractFields, start, usage, err))
	if err != nil {
		ctxzap.Warn(ctx, "field extraction failed, falling back to pattern matching", zap.Error(err))
		fields = &entity.LeadFields{}
		status = entity.LeadStatusFallback
	}

	// The model must not fabricate emails, so a null one is expected; recover
	// it from the raw payload whenever it is missing, not just on step failure.
	if fields.Email == nil {
		if match := emailPattern.FindString(string(rawInput)); match != "" {
			ctxzap.Info(ctx, "email recovered from raw payload")
			fields.Email = &match
		}
	}

	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode extracted fields: %w", err)
	}

	start = time.Now()
	reply, usage, err := u.llm.GenerateReply(ctx, intent, fieldsJSON)
	steps = append(steps, u.stepLog(stepGenerateReply, start, usage, err))
	if err != nil {
		u.persistFailure(ctx, rawInput, requestID, steps, err)
		return nil, err
	}

	created, err := u.leads.CreateLeadWithSteps(ctx, entity.LeadRecord{
		RawInput:        rawInput,
		Intent:          intent,
		Confidence:      confidence,
		ExtractedFields: fieldsJSON,
		AIResponse:      &reply,
		Status:          status,
		RequestID:       requestID,
	}, steps)
	if err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "lead processed",
		zap.String("lead_id", created.ID),
		zap.String("intent", string(intent)),
		zap.String("status", string(status)))

	return &entity.WorkflowResult{
		LeadID:          created.ID,
		Intent:          intent,
		Confidence:      confidence,
		ExtractedFields: *fields,
		AIResponse:      reply,
		Status:          status,
		ExecutionTrace:  traceFromSteps(requestID, steps),
	}, nil
}

// GetLead returns a previously processed lead by its identifier.
func (u *Usecase) GetLead(ctx context.Context, id string) (*entity.LeadRecord, error) {
	return u.leads.GetLead(ctx, id)
}

func (u *Usecase) stepLog(name string, start time.Time, usage *entity.TokenUsage, err error) entity.StepLog {
	step := entity.StepLog{
		StepName:   name,
		LLMModel:   u.llm.Model(),
		DurationMS: float64(time.Since(start).Microseconds()) / 1000,
		Success:    err == nil,
	}
	if usage != nil {
		step.TokensIn = usage.In
		step.TokensOut = usage.Out
	}
	if err != nil {
		msg := err.Error()
		step.Error = &msg
	}
	return step
}

// persistFailure records the lead as failed together with whatever step logs
// were collected before the workflow stopped. Persistence errors here are
// logged, not returned: the caller already has the workflow error.
func (u *Usecase) persistFailure(ctx context.Context, rawInput []byte, requestID string, steps []entity.StepLog, cause error) {
	trace, err := json.Marshal(map[string]string{"error": cause.Error()})
	if err != nil {
		trace = []byte(`{"error": "unencodable workflow error"}`)
	}

	_, err = u.leads.CreateLeadWithSteps(ctx, entity.LeadRecord{
		RawInput:        rawInput,
		Intent:          entity.LeadIntentUnknown,
		ExtractedFields: []byte("{}"),
		Status:          entity.LeadStatusFailed,
		RequestID:       requestID,
		ErrorTrace:      trace,
	}, steps)
	if err != nil {
		ctxzap.Error(ctx, "persisting failed lead", zap.Error(err))
	}
}
