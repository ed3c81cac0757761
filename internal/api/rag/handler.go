package rag

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/leadforge/assessment-backend/internal/entity"
	"github.com/leadforge/assessment-backend/internal/pkg/logger"
	"github.com/leadforge/assessment-backend/internal/pkg/response"
)

type Handler struct {
	usecase       RagUsecase
	defaultTenant string
}

func NewHandler(usecase RagUsecase, defaultTenant string) *Handler {
	return &Handler{
		usecase:       usecase,
		defaultTenant: defaultTenant,
	}
}

// chatResponse echoes the session identifier so clients that let the server
// pick one can keep the conversation going.
type chatResponse struct {
	Answer     string   `json:"answer"`
	Confidence float64  `json:"confidence"`
	Sources    []string `json:"sources"`
	Refusal    bool     `json:"refusal"`
	SessionID  string   `json:"session_id"`
}

// Ingest handles POST /api/rag/ingest
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Ingest")

	var req entity.IngestRequest
	if r.Body != nil {
		// The body is optional; a decode failure just means defaults apply.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.TenantID == "" {
		req.TenantID = h.defaultTenant
	}

	result, err := h.usecase.Ingest(ctx, req.TenantID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, result)
}

// Chat handles POST /api/rag/chat. Parameters are read from the JSON body
// first, then from the query string for anything the body left out.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Chat")

	var req entity.ChatRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	params := r.URL.Query()
	if req.Query == "" {
		req.Query = params.Get("query")
	}
	if req.TenantID == "" {
		req.TenantID = params.Get("tenant_id")
	}
	if req.SessionID == "" {
		req.SessionID = params.Get("session_id")
	}

	if req.Query == "" {
		response.ValidationError(w, response.FieldError{
			Loc:  []string{"body", "query"},
			Msg:  "Field required",
			Type: "missing",
		})
		return
	}

	if req.TenantID == "" {
		req.TenantID = h.defaultTenant
	}
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	} else if _, err := uuid.Parse(req.SessionID); err != nil {
		response.ValidationError(w, response.FieldError{
			Loc:  []string{"body", "session_id"},
			Msg:  "Invalid UUID",
			Type: "uuid_parsing",
		})
		return
	}

	result, err := h.usecase.Answer(ctx, req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, chatResponse{
		Answer:     result.Answer,
		Confidence: result.Confidence,
		Sources:    result.Sources,
		Refusal:    result.Refusal,
		SessionID:  req.SessionID,
	})
}

// handleUsecaseError maps the error taxonomy to a status and a fixed detail
// message. The cause is logged; internal error text never reaches the caller.
func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	ctxzap.Error(ctx, "request failed", zap.Error(err))

	switch code := entity.ErrorCode(err); code {
	case "LLM_ERROR":
		response.Error(w, http.StatusBadGateway, code, "language model provider request failed")
	case "VALIDATION_ERROR":
		response.Error(w, http.StatusBadRequest, code, "invalid request")
	case "NOT_FOUND":
		response.Error(w, http.StatusNotFound, code, "resource not found")
	default:
		response.Error(w, http.StatusInternalServerError, code, "internal server error")
	}
}
