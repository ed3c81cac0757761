package workflow

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/leadforge/assessment-backend/internal/entity"
	"github.com/leadforge/assessment-backend/internal/pkg/logger"
	"github.com/leadforge/assessment-backend/internal/pkg/response"
)

// maxLeadBodySize caps inbound lead payloads at 1 MiB.
const maxLeadBodySize = 1 << 20

type Handler struct {
	usecase WorkflowUsecase
}

func NewHandler(usecase WorkflowUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// CreateLead handles POST /api/workflow/leads. The body is passed to the
// workflow as-is; its shape is up to the lead source.
func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CreateLead")

	rawInput, err := io.ReadAll(io.LimitReader(r.Body, maxLeadBodySize))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "unreadable request body")
		return
	}

	if len(rawInput) == 0 {
		response.ValidationError(w, response.FieldError{
			Loc:  []string{"body"},
			Msg:  "Field required",
			Type: "missing",
		})
		return
	}

	result, err := h.usecase.ProcessLead(ctx, rawInput)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, result)
}

// GetLead handles GET /api/workflow/leads/{lead_id}
func (h *Handler) GetLead(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "lead_id")
	ctx := logger.AddFields(r.Context(),
		zap.String("lead_id", leadID),
		zap.String("action", "GetLead"),
	)

	lead, err := h.usecase.GetLead(ctx, leadID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, lead)
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
