package embedding

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/leadforge/assessment-backend/internal/config"
	"github.com/leadforge/assessment-backend/internal/entity"
	"github.com/leadforge/assessment-backend/internal/integration/common"
	gocache "github.com/patrickmn/go-cache"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// Connector converts text into fixed-dimension vectors using an
// OpenAI-compatible embedding API. Query embeddings are cached with a short
// TTL so a repeated identical query skips the provider round-trip; answers
// themselves are never cached.
type Connector struct {
	embedder   embeddings.Embedder
	queryCache *gocache.Cache
	logger     *zap.Logger
}

func NewConnector(cfg config.ProviderConfig, logger *zap.Logger) (*Connector, error) {
	client, err := openai.New(
		openai.WithToken(cfg.APIKey),
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithEmbeddingModel(cfg.EmbeddingModel),
		openai.WithHTTPClient(common.NewProviderClient(cfg.HTTPClientConfig)),
	)
	if err != nil {
		return nil, fmt.Errorf("create embedding client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	return &Connector{
		embedder:   embedder,
		queryCache: gocache.New(cfg.QueryCacheTTL, 2*cfg.QueryCacheTTL),
		logger:     logger,
	}, nil
}

// EmbedQuery embeds a single search query.
func (c *Connector) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := c.queryCache.Get(text); ok {
		ctxzap.Debug(ctx, "query embedding cache hit")
		return cached.([]float32), nil
	}

	vector, err := c.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", entity.ErrProvider, err)
	}

	c.queryCache.Set(text, vector, gocache.DefaultExpiration)
	return vector, nil
}

// EmbedDocuments embeds a batch of chunk texts.
func (c *Connector) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	ctxzap.Debug(ctx, "embedding documents", zap.Int("count", len(texts)))

	vectors, err := c.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: embed documents: %v", entity.ErrProvider, err)
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: embedder returned %d vectors for %d texts",
			entity.ErrProvider, len(vectors), len(texts))
	}

	return vectors, nil
}
