package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadforge/assessment-backend/internal/entity"
	"github.com/leadforge/assessment-backend/internal/pkg/response"
)

type stubUsecase struct {
	lastIngestTenant string
	lastChatReq      entity.ChatRequest
	answerErr        error
}

func (s *stubUsecase) Ingest(_ context.Context, tenantID string) (*entity.IngestResult, error) {
	s.lastIngestTenant = tenantID
	return &entity.IngestResult{Status: "ok", ChunksIngested: 12, TenantID: tenantID}, nil
}

func (s *stubUsecase) Answer(_ context.Context, req entity.ChatRequest) (*entity.AnswerResult, error) {
	s.lastChatReq = req
	if s.answerErr != nil {
		return nil, s.answerErr
	}
	return &entity.AnswerResult{
		Answer:     "Grounded answer.",
		Confidence: 0.87,
		Sources:    []string{"policy.md"},
	}, nil
}

func newTestRouter(uc RagUsecase) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(uc, "acme-corp"))
	return r
}

func TestChat_MissingQuery(t *testing.T) {
	router := newTestRouter(&stubUsecase{})

	req := httptest.NewRequest(http.MethodPost, "/api/rag/chat", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var envelope struct {
		Error  string                `json:"error"`
		Detail []response.FieldError `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error)
	require.Len(t, envelope.Detail, 1)
	assert.Equal(t, []string{"body", "query"}, envelope.Detail[0].Loc)
}

func TestChat_DefaultsApplied(t *testing.T) {
	uc := &stubUsecase{}
	router := newTestRouter(uc)

	req := httptest.NewRequest(http.MethodPost, "/api/rag/chat",
		strings.NewReader(`{"query": "What do we sell?"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "acme-corp", uc.lastChatReq.TenantID, "tenant falls back to the default")
	_, err := uuid.Parse(uc.lastChatReq.SessionID)
	assert.NoError(t, err, "a session id is generated when none is given")

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, uc.lastChatReq.SessionID, body["session_id"], "the generated session id is echoed")
	assert.Equal(t, "Grounded answer.", body["answer"])
}

func TestChat_QueryParamsFillMissingBodyFields(t *testing.T) {
	uc := &stubUsecase{}
	router := newTestRouter(uc)

	sessionID := uuid.New().String()
	target := "/api/rag/chat?query=ignored&tenant_id=globex&session_id=" + sessionID
	req := httptest.NewRequest(http.MethodPost, target,
		strings.NewReader(`{"query": "from body"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "from body", uc.lastChatReq.Query, "body values win over query params")
	assert.Equal(t, "globex", uc.lastChatReq.TenantID)
	assert.Equal(t, sessionID, uc.lastChatReq.SessionID)
}

func TestChat_InvalidSessionID(t *testing.T) {
	router := newTestRouter(&stubUsecase{})

	req := httptest.NewRequest(http.MethodPost, "/api/rag/chat",
		strings.NewReader(`{"query": "q", "session_id": "not-a-uuid"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestChat_ProviderErrorMapsToBadGateway(t *testing.T) {
	uc := &stubUsecase{answerErr: fmt.Errorf("%w: upstream timeout", entity.ErrProvider)}
	router := newTestRouter(uc)

	req := httptest.NewRequest(http.MethodPost, "/api/rag/chat",
		strings.NewReader(`{"query": "q"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var envelope response.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "LLM_ERROR", envelope.Error)

	detail, ok := envelope.Detail.(string)
	require.True(t, ok)
	assert.NotContains(t, detail, "upstream timeout", "internal error text must not reach the caller")
}

func TestIngest_DefaultTenant(t *testing.T) {
	uc := &stubUsecase{}
	router := newTestRouter(uc)

	req := httptest.NewRequest(http.MethodPost, "/api/rag/ingest", strings.NewReader(""))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "acme-corp", uc.lastIngestTenant)

	var result entity.IngestResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 12, result.ChunksIngested)
}
