package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/leadforge/assessment-backend/internal/api"
	ragapi "github.com/leadforge/assessment-backend/internal/api/rag"
	tenantapi "github.com/leadforge/assessment-backend/internal/api/tenant"
	workflowapi "github.com/leadforge/assessment-backend/internal/api/workflow"
	"github.com/leadforge/assessment-backend/internal/config"
	"github.com/leadforge/assessment-backend/internal/integration/embedding"
	"github.com/leadforge/assessment-backend/internal/integration/llm"
	"github.com/leadforge/assessment-backend/internal/repository"
	"github.com/leadforge/assessment-backend/internal/usecase/rag"
	"github.com/leadforge/assessment-backend/internal/usecase/tenant"
	"github.com/leadforge/assessment-backend/internal/usecase/workflow"
	"github.com/leadforge/assessment-backend/internal/vectorstore"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	// Setup database connection
	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	// Run database migrations
	logger.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Open the vector index
	backend, err := vectorstore.OpenBackend(cfg.VectorIndexPath, false, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open vector index backend: %w", err)
	}

	index, err := vectorstore.NewIndex(backend, logger)
	if err != nil {
		backend.Close()
		db.Close()
		return nil, fmt.Errorf("create vector index: %w", err)
	}
	logger.Info("Vector index opened", zap.String("path", cfg.VectorIndexPath))

	// Initialize repositories
	chatMessageRepo := repository.NewChatMessagePostgres(db)
	leadRepo := repository.NewLeadPostgres(db)
	tenantRepo := repository.NewTenantPostgres(db)
	connectionRepo := repository.NewSocialConnectionPostgres(db)
	logger.Info("Repositories initialized")

	// Initialize external service connectors (with mock support)
	var embeddingConnector rag.EmbeddingConnector
	var chatConnector rag.ChatConnector
	var llmConnector workflow.LLMConnector

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		embeddingConnector = embedding.NewMockConnector(cfg.ProviderCfg.EmbeddingDimensions, logger)
		mockLLM := llm.NewMockConnector(logger)
		chatConnector = mockLLM
		llmConnector = mockLLM
	} else {
		logger.Info("Using real connectors for external services")
		embeddingConnector, err = embedding.NewConnector(cfg.ProviderCfg, logger)
		if err != nil {
			index.Close()
			backend.Close()
			db.Close()
			return nil, fmt.Errorf("create embedding connector: %w", err)
		}

		realLLM, err := llm.NewConnector(cfg.ProviderCfg, logger)
		if err != nil {
			index.Close()
			backend.Close()
			db.Close()
			return nil, fmt.Errorf("create llm connector: %w", err)
		}
		chatConnector = realLLM
		llmConnector = realLLM
	}

	// Initialize use cases
	ragUC := rag.NewUsecase(index, embeddingConnector, chatConnector, chatMessageRepo, cfg.DocsPath)
	workflowUC := workflow.NewUsecase(llmConnector, leadRepo)
	tenantUC := tenant.NewUsecase(tenantRepo, connectionRepo)
	logger.Info("Use cases initialized")

	// Setup API handlers
	ragHandler := ragapi.NewHandler(ragUC, cfg.DefaultTenant)
	workflowHandler := workflowapi.NewHandler(workflowUC)
	tenantHandler := tenantapi.NewHandler(tenantUC)
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(ragHandler, workflowHandler, tenantHandler, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server:  server,
		db:      db,
		index:   index,
		backend: backend,
		logger:  logger,
	}, nil
}
