package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadforge/assessment-backend/internal/entity"
)

type stubLLM struct {
	classification *entity.IntentClassification
	classifyErr    error
	fields         *entity.LeadFields
	extractErr     error
	reply          string
	replyErr       error
}

func (s *stubLLM) Model() string { return "stub-model" }

func (s *stubLLM) ClassifyIntent(_ context.Context, _ []byte) (*entity.IntentClassification, *entity.TokenUsage, error) {
	if s.classifyErr != nil {
		return nil, &entity.TokenUsage{}, s.classifyErr
	}
	return s.classification, &entity.TokenUsage{In: 40, Out: 10}, nil
}

func (s *stubLLM) ExtractFields(_ context.Context, _ []byte) (*entity.LeadFields, *entity.TokenUsage, error) {
	if s.extractErr != nil {
		return nil, &entity.TokenUsage{}, s.extractErr
	}
	return s.fields, &entity.TokenUsage{In: 40, Out: 20}, nil
}

func (s *stubLLM) GenerateReply(_ context.Context, _ entity.LeadIntent, _ []byte) (string, *entity.TokenUsage, error) {
	if s.replyErr != nil {
		return "", &entity.TokenUsage{}, s.replyErr
	}
	return s.reply, &entity.TokenUsage{In: 30, Out: 25}, nil
}

type memoryLeadRepo struct {
	leads map[string]*entity.LeadRecord
	steps map[string][]entity.StepLog
}

func newMemoryLeadRepo() *memoryLeadRepo {
	return &memoryLeadRepo{
		leads: make(map[string]*entity.LeadRecord),
		steps: make(map[string][]entity.StepLog),
	}
}

func (r *memoryLeadRepo) CreateLeadWithSteps(_ context.Context, lead entity.LeadRecord, steps []entity.StepLog) (*entity.LeadRecord, error) {
	lead.ID = uuid.New().String()
	stored := lead
	r.leads[lead.ID] = &stored
	r.steps[lead.ID] = steps
	return &stored, nil
}

func (r *memoryLeadRepo) GetLead(_ context.Context, id string) (*entity.LeadRecord, error) {
	lead, ok := r.leads[id]
	if !ok {
		return nil, fmt.Errorf("%w: lead %s", entity.ErrNotFound, id)
	}
	return lead, nil
}

func strPtr(s string) *string { return &s }

var rawLead = []byte(`{"message": "I want to buy 100 seats", "email": "jane@acme.io"}`)

func TestProcessLead_HappyPath(t *testing.T) {
	llm := &stubLLM{
		classification: &entity.IntentClassification{Intent: entity.LeadIntentSales, Confidence: 0.92},
		fields:         &entity.LeadFields{Email: strPtr("jane@acme.io"), Company: strPtr("Acme")},
		reply:          "Thanks, our sales team will reach out.",
	}
	repo := newMemoryLeadRepo()
	uc := NewUsecase(llm, repo)

	result, err := uc.ProcessLead(context.Background(), rawLead)
	require.NoError(t, err)

	assert.Equal(t, entity.LeadIntentSales, result.Intent)
	assert.Equal(t, 0.92, result.Confidence)
	assert.Equal(t, entity.LeadStatusProcessed, result.Status)
	assert.Equal(t, llm.reply, result.AIResponse)
	require.NotNil(t, result.ExtractedFields.Email)
	assert.Equal(t, "jane@acme.io", *result.ExtractedFields.Email)

	lead, err := uc.GetLead(context.Background(), result.LeadID)
	require.NoError(t, err)
	assert.Equal(t, entity.LeadIntentSales, lead.Intent)
	assert.Equal(t, entity.LeadStatusProcessed, lead.Status)
	assert.JSONEq(t, string(rawLead), string(lead.RawInput))

	steps := repo.steps[result.LeadID]
	require.Len(t, steps, 3)
	for _, step := range steps {
		assert.True(t, step.Success)
		assert.Equal(t, "stub-model", step.LLMModel)
	}
	assert.Equal(t, stepClassifyIntent, steps[0].StepName)
	assert.Equal(t, stepExtractFields, steps[1].StepName)
	assert.Equal(t, stepGenerateReply, steps[2].StepName)

	trace := result.ExecutionTrace
	assert.NotEmpty(t, trace["request_id"])
	assert.Len(t, trace["steps"], 3)
}

func TestProcessLead_LowConfidenceRoutesUnknown(t *testing.T) {
	llm := &stubLLM{
		classification: &entity.IntentClassification{Intent: entity.LeadIntentSales, Confidence: 0.5},
		fields:         &entity.LeadFields{},
		reply:          "Thanks for your message.",
	}
	repo := newMemoryLeadRepo()
	uc := NewUsecase(llm, repo)

	result, err := uc.ProcessLead(context.Background(), rawLead)
	require.NoError(t, err)

	assert.Equal(t, entity.LeadIntentUnknown, result.Intent)
	assert.Equal(t, 0.5, result.Confidence, "the model's confidence is kept even when the intent is overridden")

	lead, err := uc.GetLead(context.Background(), result.LeadID)
	require.NoError(t, err)
	assert.Equal(t, entity.LeadIntentUnknown, lead.Intent)
}

func TestProcessLead_ExtractionFallback(t *testing.T) {
	llm := &stubLLM{
		classification: &entity.IntentClassification{Intent: entity.LeadIntentSales, Confidence: 0.9},
		extractErr:     fmt.Errorf("%w: malformed output", entity.ErrSchemaDecode),
		reply:          "Thanks for your message.",
	}
	repo := newMemoryLeadRepo()
	uc := NewUsecase(llm, repo)

	result, err := uc.ProcessLead(context.Background(), rawLead)
	require.NoError(t, err, "extraction failure degrades, it does not abort")

	assert.Equal(t, entity.LeadStatusFallback, result.Status)
	require.NotNil(t, result.ExtractedFields.Email)
	assert.Equal(t, "jane@acme.io", *result.ExtractedFields.Email, "email recovered from the raw payload")
	assert.Nil(t, result.ExtractedFields.Name)

	steps := repo.steps[result.LeadID]
	require.Len(t, steps, 3)
	assert.False(t, steps[1].Success)
	require.NotNil(t, steps[1].Error)
}

func TestProcessLead_NullEmailRecoveredOnSuccessfulExtraction(t *testing.T) {
	llm := &stubLLM{
		classification: &entity.IntentClassification{Intent: entity.LeadIntentSales, Confidence: 0.9},
		fields:         &entity.LeadFields{Company: strPtr("Acme")},
		reply:          "Thanks for your message.",
	}
	repo := newMemoryLeadRepo()
	uc := NewUsecase(llm, repo)

	result, err := uc.ProcessLead(context.Background(), rawLead)
	require.NoError(t, err)

	// Extraction succeeded but left the email null; the regex fallback still
	// fills it from the raw payload.
	require.NotNil(t, result.ExtractedFields.Email)
	assert.Equal(t, "jane@acme.io", *result.ExtractedFields.Email)
	require.NotNil(t, result.ExtractedFields.Company)
	assert.Equal(t, "Acme", *result.ExtractedFields.Company)
	assert.Equal(t, entity.LeadStatusProcessed, result.Status, "a successful step does not degrade the status")

	lead, err := uc.GetLead(context.Background(), result.LeadID)
	require.NoError(t, err)

	var persisted entity.LeadFields
	require.NoError(t, json.Unmarshal(lead.ExtractedFields, &persisted))
	require.NotNil(t, persisted.Email)
	assert.Equal(t, "jane@acme.io", *persisted.Email)
}

func TestProcessLead_ClassificationFailure(t *testing.T) {
	llm := &stubLLM{
		classifyErr: fmt.Errorf("%w: upstream timeout", entity.ErrProvider),
	}
	repo := newMemoryLeadRepo()
	uc := NewUsecase(llm, repo)

	_, err := uc.ProcessLead(context.Background(), rawLead)
	require.ErrorIs(t, err, entity.ErrProvider)

	// The failed lead is still recorded with its error trace.
	require.Len(t, repo.leads, 1)
	for _, lead := range repo.leads {
		assert.Equal(t, entity.LeadStatusFailed, lead.Status)
		assert.Equal(t, entity.LeadIntentUnknown, lead.Intent)

		var trace map[string]string
		require.NoError(t, json.Unmarshal(lead.ErrorTrace, &trace))
		assert.Contains(t, trace["error"], "upstream timeout")

		require.Len(t, repo.steps[lead.ID], 1)
		assert.False(t, repo.steps[lead.ID][0].Success)
	}
}

func TestProcessLead_ReplyFailure(t *testing.T) {
	llm := &stubLLM{
		classification: &entity.IntentClassification{Intent: entity.LeadIntentSupport, Confidence: 0.9},
		fields:         &entity.LeadFields{},
		replyErr:       fmt.Errorf("%w: upstream unavailable", entity.ErrProvider),
	}
	repo := newMemoryLeadRepo()
	uc := NewUsecase(llm, repo)

	_, err := uc.ProcessLead(context.Background(), rawLead)
	require.ErrorIs(t, err, entity.ErrProvider)

	require.Len(t, repo.leads, 1)
	for _, lead := range repo.leads {
		assert.Equal(t, entity.LeadStatusFailed, lead.Status)
		require.Len(t, repo.steps[lead.ID], 3)
	}
}

func TestProcessLead_RejectsInvalidPayload(t *testing.T) {
	repo := newMemoryLeadRepo()
	uc := NewUsecase(&stubLLM{}, repo)

	for _, payload := range [][]byte{nil, []byte(""), []byte("{not json")} {
		_, err := uc.ProcessLead(context.Background(), payload)
		assert.ErrorIs(t, err, entity.ErrValidation)
	}

	assert.Empty(t, repo.leads, "invalid payloads are not persisted")
}
