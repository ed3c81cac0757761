package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadforge/assessment-backend/internal/entity"
	"github.com/leadforge/assessment-backend/internal/pkg/response"
)

type stubUsecase struct {
	lastRaw    []byte
	processErr error
	lead       *entity.LeadRecord
	leadErr    error
}

func (s *stubUsecase) ProcessLead(_ context.Context, rawInput []byte) (*entity.WorkflowResult, error) {
	s.lastRaw = rawInput
	if s.processErr != nil {
		return nil, s.processErr
	}
	return &entity.WorkflowResult{
		LeadID:     "7b5a0a30-0000-4000-8000-000000000000",
		Intent:     entity.LeadIntentSales,
		Confidence: 0.92,
		AIResponse: "Thanks!",
		Status:     entity.LeadStatusProcessed,
	}, nil
}

func (s *stubUsecase) GetLead(_ context.Context, _ string) (*entity.LeadRecord, error) {
	return s.lead, s.leadErr
}

func newTestRouter(uc WorkflowUsecase) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(uc))
	return r
}

func TestCreateLead_PassesRawBodyThrough(t *testing.T) {
	uc := &stubUsecase{}
	router := newTestRouter(uc)

	payload := `{"message": "I want a demo", "email": "jane@acme.io"}`
	req := httptest.NewRequest(http.MethodPost, "/api/workflow/leads", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, payload, string(uc.lastRaw))

	var result entity.WorkflowResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, entity.LeadIntentSales, result.Intent)
	assert.Equal(t, entity.LeadStatusProcessed, result.Status)
}

func TestCreateLead_EmptyBody(t *testing.T) {
	router := newTestRouter(&stubUsecase{})

	req := httptest.NewRequest(http.MethodPost, "/api/workflow/leads", strings.NewReader(""))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateLead_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"provider failure", fmt.Errorf("%w: upstream timeout", entity.ErrProvider), http.StatusBadGateway, "LLM_ERROR"},
		{"schema decode failure", fmt.Errorf("%w: retries exhausted", entity.ErrSchemaDecode), http.StatusBadGateway, "LLM_ERROR"},
		{"validation failure", fmt.Errorf("%w: bad payload", entity.ErrValidation), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"storage failure", fmt.Errorf("%w: connection refused", entity.ErrStorage), http.StatusInternalServerError, "DB_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&stubUsecase{processErr: tc.err})

			req := httptest.NewRequest(http.MethodPost, "/api/workflow/leads", strings.NewReader(`{"x":1}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)

			var envelope response.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
			assert.Equal(t, tc.wantCode, envelope.Error)

			// The wrapped cause stays in the logs; the envelope carries only
			// the fixed per-code message.
			detail, ok := envelope.Detail.(string)
			require.True(t, ok)
			assert.NotContains(t, detail, "upstream")
			assert.NotContains(t, detail, "connection refused")
			assert.NotContains(t, detail, "retries exhausted")
		})
	}
}

func TestGetLead_NotFound(t *testing.T) {
	uc := &stubUsecase{leadErr: fmt.Errorf("%w: lead abc", entity.ErrNotFound)}
	router := newTestRouter(uc)

	req := httptest.NewRequest(http.MethodGet, "/api/workflow/leads/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetLead_Found(t *testing.T) {
	uc := &stubUsecase{lead: &entity.LeadRecord{
		ID:     "7b5a0a30-0000-4000-8000-000000000000",
		Intent: entity.LeadIntentSupport,
		Status: entity.LeadStatusProcessed,
	}}
	router := newTestRouter(uc)

	req := httptest.NewRequest(http.MethodGet, "/api/workflow/leads/7b5a0a30-0000-4000-8000-000000000000", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var lead entity.LeadRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lead))
	assert.Equal(t, entity.LeadIntentSupport, lead.Intent)
}
