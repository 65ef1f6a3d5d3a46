package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nidrosoft/rizzer-sub001/internal/request"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the reference model; pricing constants follow it
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout bounds one completion call
	DefaultTimeout = 60 * time.Second

	// GenerationTemperature favors varied suggestions across runs
	GenerationTemperature = 0.8
	// GenerationMaxTokens caps completion length
	GenerationMaxTokens = 1500
)

// OpenAIClient implements CompletionClient with the OpenAI chat API
type OpenAIClient struct {
	client    openai.Client
	model     string
	timeout   time.Duration
	logger    *zap.Logger
	debugMode bool
}

// OpenAIConfig configures NewOpenAIClient. Zero values fall back to defaults.
type OpenAIConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	Timeout   time.Duration
	DebugMode bool
}

// NewOpenAIClient creates a client with SDK retries disabled; a failed call
// is surfaced once and retried by the next scheduled run.
func NewOpenAIClient(cfg OpenAIConfig, logger *zap.Logger) *OpenAIClient {
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenAIBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		option.WithMaxRetries(0),
	)

	return &OpenAIClient{
		client:    client,
		model:     cfg.Model,
		timeout:   cfg.Timeout,
		logger:    logger,
		debugMode: cfg.DebugMode,
	}
}

// Model returns the configured model name
func (c *OpenAIClient) Model() string {
	return c.model
}

// Generate requests one JSON-mode completion
func (c *OpenAIClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (*RawModelResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
		Temperature: openai.Float(GenerationTemperature),
		MaxTokens:   openai.Int(GenerationMaxTokens),
	}

	profileID := ProfileIDFromContext(ctx)
	batchID := BatchIDFromContext(ctx)

	if c.debugMode {
		c.logger.Debug("llm_api_request",
			zap.String("operation", "generate_gift_suggestions"),
			zap.String("model", c.model),
			zap.Int("prompt_length", len(userPrompt)),
			zap.String("prompt_preview", SanitizePrompt(userPrompt, true)),
			zap.String("profile_id", profileID),
			zap.String("generation_batch_id", batchID),
			zap.String("request_id", request.RequestIDFromContext(ctx)),
		)
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)
	if err != nil {
		upErr := toUpstreamError(err)
		c.logger.Warn("llm_api_error",
			zap.String("operation", "generate_gift_suggestions"),
			zap.String("model", c.model),
			zap.Int("status_code", upErr.StatusCode),
			zap.String("status_class", StatusClass(upErr)),
			zap.Error(err),
			zap.String("profile_id", profileID),
			zap.String("generation_batch_id", batchID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
		return nil, upErr
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyCompletion
	}

	content := resp.Choices[0].Message.Content
	if c.debugMode {
		c.logger.Debug("llm_api_response",
			zap.String("operation", "generate_gift_suggestions"),
			zap.String("model", resp.Model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, true)),
			zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
			zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
			zap.String("profile_id", profileID),
			zap.String("generation_batch_id", batchID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	model := resp.Model
	if model == "" {
		model = c.model
	}
	return &RawModelResponse{
		Content:          content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		Model:            model,
	}, nil
}

// toUpstreamError keeps the status code and the raw response body of an SDK
// error so callers can log exactly what the provider said.
func toUpstreamError(err error) *UpstreamError {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		body := apiErr.RawJSON()
		if body == "" {
			body = apiErr.Message
		}
		return &UpstreamError{StatusCode: apiErr.StatusCode, Body: body, Err: err}
	}
	return &UpstreamError{Err: fmt.Errorf("completion request: %w", err)}
}
