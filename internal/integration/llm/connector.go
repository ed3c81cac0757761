package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/leadforge/assessment-backend/internal/config"
	"github.com/leadforge/assessment-backend/internal/entity"
	"github.com/leadforge/assessment-backend/internal/integration/common"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// Connector wraps an OpenAI-compatible chat-completion API. All generation
// runs at temperature 0; calls are retried per the configured policy, except
// for input validation failures which surface immediately.
type Connector struct {
	client       llms.Model
	model        string
	retryOptions []retry.Option
	logger       *zap.Logger
}

func NewConnector(cfg config.ProviderConfig, logger *zap.Logger) (*Connector, error) {
	client, err := openai.New(
		openai.WithToken(cfg.APIKey),
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.ChatModel),
		openai.WithHTTPClient(common.NewProviderClient(cfg.HTTPClientConfig)),
	)
	if err != nil {
		return nil, fmt.Errorf("create chat client: %w", err)
	}

	return &Connector{
		client:       client,
		model:        cfg.ChatModel,
		retryOptions: cfg.Retry.ToRetryOptions(isRetryable),
		logger:       logger,
	}, nil
}

// isRetryable keeps the retry budget for provider-side failures. Malformed
// output is worth another sample; a validation error of our own input is not.
func isRetryable(err error) bool {
	return !errors.Is(err, entity.ErrValidation)
}

// Model returns the configured chat model name, recorded in step logs.
func (c *Connector) Model() string {
	return c.model
}

// Answer generates a completion for a system+user message pair and returns
// the trimmed text.
func (c *Connector) Answer(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	text, _, err := c.generate(ctx, systemPrompt, userPrompt)
	return text, err
}

// ClassifyIntent classifies a raw lead payload into the intent enum with a
// confidence score.
func (c *Connector) ClassifyIntent(ctx context.Context, rawLead []byte) (*entity.IntentClassification, *entity.TokenUsage, error) {
	var result entity.IntentClassification
	usage, err := c.generateStructured(ctx, intentPrompt, string(rawLead), &result)
	if err != nil {
		return nil, usage, err
	}
	return &result, usage, nil
}

// ExtractFields extracts structured lead fields from a raw lead payload.
func (c *Connector) ExtractFields(ctx context.Context, rawLead []byte) (*entity.LeadFields, *entity.TokenUsage, error) {
	var result entity.LeadFields
	usage, err := c.generateStructured(ctx, extractionPrompt, string(rawLead), &result)
	if err != nil {
		return nil, usage, err
	}
	return &result, usage, nil
}

// GenerateReply writes a short reply grounded only in the classified intent
// and the extracted fields.
func (c *Connector) GenerateReply(ctx context.Context, intent entity.LeadIntent, fieldsJSON []byte) (string, *entity.TokenUsage, error) {
	promptContext := fmt.Sprintf("Intent: %s\nFields: %s", intent, fieldsJSON)
	return c.generate(ctx, replyPrompt, promptContext)
}

func (c *Connector) generate(ctx context.Context, systemPrompt, userPrompt string, opts ...llms.CallOption) (string, *entity.TokenUsage, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(userPrompt)},
		},
	}
	opts = append(opts, llms.WithTemperature(0.0))

	usage := &entity.TokenUsage{}
	text, err := retry.DoWithData(func() (string, error) {
		response, err := c.client.GenerateContent(ctx, content, opts...)
		if err != nil {
			return "", fmt.Errorf("%w: chat completion: %v", entity.ErrProvider, err)
		}

		if len(response.Choices) == 0 {
			return "", fmt.Errorf("%w: chat completion returned no choices", entity.ErrProvider)
		}

		choice := response.Choices[0]
		usage.In, usage.Out = tokenCounts(choice)

		return strings.TrimSpace(choice.Content), nil
	}, append(c.retryOptions, retry.Context(ctx))...)
	if err != nil {
		ctxzap.Error(ctx, "chat completion failed", zap.String("model", c.model), zap.Error(err))
		return "", usage, err
	}

	return text, usage, nil
}

// generateStructured runs a JSON-mode completion and decodes the result into
// out, which must implement Validate. Decode failures count against the same
// retry budget as provider failures.
func (c *Connector) generateStructured(ctx context.Context, systemPrompt, userInput string, out interface{ Validate() error }) (*entity.TokenUsage, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(userInput)},
		},
	}

	usage := &entity.TokenUsage{}
	err := retry.Do(func() error {
		response, err := c.client.GenerateContent(ctx, content,
			llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			return fmt.Errorf("%w: structured completion: %v", entity.ErrProvider, err)
		}

		if len(response.Choices) == 0 {
			return fmt.Errorf("%w: structured completion returned no choices", entity.ErrProvider)
		}

		choice := response.Choices[0]
		usage.In, usage.Out = tokenCounts(choice)

		if err := decodeStructured(choice.Content, out); err != nil {
			ctxzap.Warn(ctx, "structured output did not conform to schema",
				zap.String("model", c.model),
				zap.Error(err),
			)
			return err
		}

		return nil
	}, append(c.retryOptions, retry.Context(ctx))...)
	if err != nil {
		ctxzap.Error(ctx, "structured call failed", zap.String("model", c.model), zap.Error(err))
		return usage, err
	}

	ctxzap.Info(ctx, "structured call succeeded",
		zap.String("model", c.model),
		zap.Int("tokens_in", usage.In),
		zap.Int("tokens_out", usage.Out),
	)

	return usage, nil
}

// tokenCounts pulls usage numbers out of the provider's generation info.
func tokenCounts(choice *llms.ContentChoice) (in, out int) {
	if choice.GenerationInfo == nil {
		return 0, 0
	}
	if v, ok := choice.GenerationInfo["PromptTokens"].(int); ok {
		in = v
	}
	if v, ok := choice.GenerationInfo["CompletionTokens"].(int); ok {
		out = v
	}
	return in, out
}
