package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	pkgretry "github.com/leadforge/assessment-backend/internal/pkg/retry"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8000"`

	// Database configuration
	DatabaseURL         string        `env:"DATABASE_URL,notEmpty"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// LLM / embedding provider configuration
	ProviderCfg ProviderConfig `envPrefix:"OPENAI_"`

	// RAG configuration
	VectorIndexPath string `env:"VECTOR_INDEX_PATH" envDefault:"data/vector_index"`
	DocsPath        string `env:"DOCS_PATH" envDefault:"data/uploads/company_docs"`
	DefaultTenant   string `env:"DEFAULT_TENANT" envDefault:"acme-corp"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

// ProviderConfig holds configuration for the OpenAI-compatible provider used
// for both chat completions and embeddings.
type ProviderConfig struct {
	HTTPClientConfig

	APIKey              string          `env:"API_KEY"`
	BaseURL             string          `env:"BASE_URL" envDefault:"https://api.openai.com/v1"`
	ChatModel           string          `env:"CHAT_MODEL" envDefault:"gpt-4o-mini"`
	EmbeddingModel      string          `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	EmbeddingDimensions int             `env:"EMBEDDING_DIMENSIONS" envDefault:"1536"`
	QueryCacheTTL       time.Duration   `env:"QUERY_CACHE_TTL" envDefault:"5m"`
	Retry               pkgretry.Config `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"60s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"60s"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	if !cfg.EnableMocks && cfg.ProviderCfg.APIKey == "" {
		errors = append(errors, "OPENAI_API_KEY must be set when ENABLE_MOCKS is false")
	}

	if cfg.ProviderCfg.EmbeddingDimensions < 1 || cfg.ProviderCfg.EmbeddingDimensions > 8192 {
		errors = append(errors, fmt.Sprintf("OPENAI_EMBEDDING_DIMENSIONS must be between 1 and 8192, got %d", cfg.ProviderCfg.EmbeddingDimensions))
	}

	if cfg.ProviderCfg.Retry.Attempts < 1 || cfg.ProviderCfg.Retry.Attempts > 10 {
		errors = append(errors, fmt.Sprintf("OPENAI_RETRY_ATTEMPTS must be between 1 and 10, got %d", cfg.ProviderCfg.Retry.Attempts))
	}

	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
