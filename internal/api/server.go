package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/leadforge/assessment-backend/internal/api/middleware"
	ragapi "github.com/leadforge/assessment-backend/internal/api/rag"
	tenantapi "github.com/leadforge/assessment-backend/internal/api/tenant"
	workflowapi "github.com/leadforge/assessment-backend/internal/api/workflow"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(
	ragHandler *ragapi.Handler,
	workflowHandler *workflowapi.Handler,
	tenantHandler *tenantapi.Handler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)                 // Recover from panics
	r.Use(chimiddleware.RequestID)                 // Add request ID
	r.Use(middleware.Logger(logger))               // Log requests
	r.Use(middleware.CORS)                         // Handle CORS
	r.Use(chimiddleware.Timeout(60 * time.Second)) // Default timeout

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Register routes
	ragapi.RegisterRoutes(r, ragHandler)
	workflowapi.RegisterRoutes(r, workflowHandler)
	tenantapi.RegisterRoutes(r, tenantHandler)

	return r
}
