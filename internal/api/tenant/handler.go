package tenant

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/leadforge/assessment-backend/internal/entity"
	"github.com/leadforge/assessment-backend/internal/pkg/logger"
	"github.com/leadforge/assessment-backend/internal/pkg/response"
)

type Handler struct {
	usecase TenantUsecase
}

func NewHandler(usecase TenantUsecase) *Handler {
	return &Handler{usecase: usecase}
}

type createTenantRequest struct {
	Slug     string          `json:"slug"`
	Name     string          `json:"name"`
	Settings json.RawMessage `json:"settings"`
}

type addConnectionRequest struct {
	Platform     string     `json:"platform"`
	AccountID    string     `json:"account_id"`
	AccessToken  string     `json:"access_token"`
	RefreshToken *string    `json:"refresh_token"`
	ExpiresAt    *time.Time `json:"expires_at"`
}

// CreateTenant handles POST /api/tenants
func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CreateTenant")

	var req createTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body")
		return
	}

	created, err := h.usecase.CreateTenant(ctx, entity.Tenant{
		Slug:     req.Slug,
		Name:     req.Name,
		Settings: req.Settings,
	})
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Created(w, created)
}

// GetTenant handles GET /api/tenants/{slug}
func (h *Handler) GetTenant(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	ctx := logger.AddFields(r.Context(),
		zap.String("tenant_slug", slug),
		zap.String("action", "GetTenant"),
	)

	tenant, err := h.usecase.GetTenant(ctx, slug)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, tenant)
}

// ListTenants handles GET /api/tenants
func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListTenants")

	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	tenants, err := h.usecase.ListTenants(ctx, skip, limit)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, map[string]any{"tenants": tenants})
}

// AddConnection handles POST /api/tenants/{slug}/connections
func (h *Handler) AddConnection(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	ctx := logger.AddFields(r.Context(),
		zap.String("tenant_slug", slug),
		zap.String("action", "AddConnection"),
	)

	var req addConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body")
		return
	}

	created, err := h.usecase.AddConnection(ctx, slug, entity.SocialConnection{
		Platform:     req.Platform,
		AccountID:    req.AccountID,
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		ExpiresAt:    req.ExpiresAt,
	})
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Created(w, created)
}

// ListConnections handles GET /api/tenants/{slug}/connections
func (h *Handler) ListConnections(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	ctx := logger.AddFields(r.Context(),
		zap.String("tenant_slug", slug),
		zap.String("action", "ListConnections"),
	)

	conns, err := h.usecase.ListConnections(ctx, slug)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, map[string]any{"connections": conns})
}

// handleUsecaseError maps the error taxonomy to a status and a fixed detail
// message. The cause is logged; internal error text never reaches the caller.
func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	ctxzap.Error(ctx, "request failed", zap.Error(err))

	switch code := entity.ErrorCode(err); code {
	case "VALIDATION_ERROR":
		response.Error(w, http.StatusBadRequest, code, "invalid request")
	case "NOT_FOUND":
		response.Error(w, http.StatusNotFound, code, "resource not found")
	default:
		response.Error(w, http.StatusInternalServerError, code, "internal server error")
	}
}
