package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sashabaranov/go-openai"

	"github.com/koopa0/crossref/internal/log"
)

// Completer produces the next assistant turn for a transcript. The engine
// treats any error as the completion service being unreachable and aborts
// the run.
type Completer interface {
	Complete(ctx context.Context, messages []openai.ChatCompletionMessage, tools []openai.Tool) (openai.ChatCompletionMessage, error)
}

// OpenAICompleter drives an OpenAI-compatible chat completion endpoint.
// One request per Complete call, no retry; the model decides per turn
// whether to call tools.
type OpenAICompleter struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      log.Logger
}

// CompleterConfig configures an OpenAICompleter. APIKey and Model are
// required; BaseURL overrides the endpoint for compatible services.
type CompleterConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
	Logger      log.Logger
}

// NewOpenAICompleter creates a completion driver.
func NewOpenAICompleter(cfg CompleterConfig) (*OpenAICompleter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAICompleter{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      cfg.Logger,
	}, nil
}

// Complete requests the next assistant message for the transcript.
func (o *OpenAICompleter) Complete(ctx context.Context, messages []openai.ChatCompletionMessage, tools []openai.Tool) (openai.ChatCompletionMessage, error) {
	req := openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    messages,
		Temperature: o.temperature,
	}
	if len(tools) > 0 {
		req.Tools = tools
		req.ToolChoice = "auto"
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return openai.ChatCompletionMessage{}, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return openai.ChatCompletionMessage{}, fmt.Errorf("completion returned no choices")
	}

	msg := resp.Choices[0].Message
	o.logger.Debug("completion received",
		"finish_reason", resp.Choices[0].FinishReason,
		"tool_calls", len(msg.ToolCalls),
	)
	return msg, nil
}
