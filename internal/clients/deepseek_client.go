package clients

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	deepSeekRequestTimeout = 30 * time.Second // Timeout for individual DeepSeek API requests
)

// DeepSeekClient talks to the OpenAI-compatible DeepSeek chat API.
type DeepSeekClient struct {
	Client *openai.Client
	Model  string
}

func NewDeepSeekClient(apiKey, baseURL, model string) *DeepSeekClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	config.HTTPClient = &http.Client{
		Timeout: deepSeekRequestTimeout,
	}

	slog.Info("[DeepSeekClient] DeepSeek client initialized",
		slog.String("base_url", config.BaseURL),
		slog.String("model", model),
		slog.Duration("timeout", deepSeekRequestTimeout))

	return &DeepSeekClient{
		Client: openai.NewClientWithConfig(config),
		Model:  model,
	}
}

func (d *DeepSeekClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if req.Model == "" {
		req.Model = d.Model
	}
	return d.Client.CreateChatCompletion(ctx, req)
}

// HealthCheck reports whether the models endpoint answers.
func (d *DeepSeekClient) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := d.Client.ListModels(ctx); err != nil {
		slog.Warn("[DeepSeekClient] Health check failed",
			slog.String("error", err.Error()))
		return false
	}
	return true
}
