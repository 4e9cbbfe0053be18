package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"career-booster/internal/llm"
	"career-booster/internal/shared/metrics"
	"career-booster/internal/shared/telemetry"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
)

// Generator implements llm.Generator using an OpenAI-compatible Chat Completions endpoint.
type Generator struct {
	client *openaisdk.Client
	model  string
}

// Options configures a Generator.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// NewGenerator constructs a generator. A model name meant for another provider falls back to the default.
// SDK retries are off; llm.WithRetry owns retrying.
func NewGenerator(opts Options) (*Generator, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" || strings.HasPrefix(strings.ToLower(model), "gemini") {
		model = defaultModel
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	client := openaisdk.NewClient(
		option.WithAPIKey(strings.TrimSpace(opts.APIKey)),
		option.WithBaseURL(baseURL+"/"),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		option.WithMaxRetries(0),
	)
	return &Generator{client: &client, model: model}, nil
}

// Generate sends prompt as a single user message and returns the reply text.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	out, err := g.generate(ctx, prompt)
	failed := err != nil && !errors.Is(err, llm.ErrEmptyResponse)
	metrics.ObserveLLMCall(float64(time.Since(start).Microseconds())/1000.0, failed)
	if failed {
		telemetry.Warn("llm.generate.failed", map[string]any{
			"provider": "openai",
			"model":    g.model,
			"error":    err,
		})
	}
	return out, err
}

func (g *Generator) generate(ctx context.Context, prompt string) (string, error) {
	params := openaisdk.ChatCompletionNewParams{
		Model: shared.ChatModel(g.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.UserMessage(prompt),
		},
	}
	if !isGPT5(g.model) {
		params.Temperature = openaisdk.Float(0.7)
	}

	completion, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openaisdk.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("openai http status %d: %w", apiErr.StatusCode, err)
		}
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", fmt.Errorf("openai request timeout: %w", err)
		}
		return "", fmt.Errorf("openai request: %w", err)
	}

	telemetry.Debug("llm.usage", map[string]any{
		"provider":          "openai",
		"model":             g.model,
		"prompt_tokens":     completion.Usage.PromptTokens,
		"completion_tokens": completion.Usage.CompletionTokens,
		"total_tokens":      completion.Usage.TotalTokens,
	})
	if len(completion.Choices) == 0 {
		return "", llm.ErrEmptyResponse
	}

	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return "", llm.ErrEmptyResponse
	}
	return content, nil
}

// Model returns the model name requests are sent to.
func (g *Generator) Model() string {
	return g.model
}

// gpt-5 models reject a non-default temperature.
func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}

var _ llm.Generator = (*Generator)(nil)
