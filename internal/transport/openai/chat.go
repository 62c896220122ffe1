package openai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/pitchlens/pitchlens/internal/domain"
)

// ChatClient is a chat completion provider using the OpenAI-compatible API.
// The analysis generator and the quality judge share it with different model
// configurations.
type ChatClient struct {
	client *openai.Client
	logger *zap.Logger
}

// NewChatClient creates an OpenAI-compatible chat completion client.
// baseURL may point at any compatible gateway (OpenAI, OpenRouter, Nebius).
func NewChatClient(apiKey, baseURL string, logger *zap.Logger) *ChatClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &ChatClient{client: openai.NewClientWithConfig(cfg), logger: logger}
}

// Complete implements domain.Completer.
func (c *ChatClient) Complete(
	ctx context.Context, systemPrompt, userPrompt string, cfg domain.ModelConfig,
) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userPrompt,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       cfg.Model,
		Messages:    messages,
		MaxTokens:   cfg.MaxOutputTokens,
		Temperature: cfg.Temperature,
	})
	if err != nil {
		return "", parseChatError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response: %w", domain.ErrCompletionProviderError)
	}

	c.logger.Debug("Chat completion finished",
		zap.String("model", cfg.Model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	return resp.Choices[0].Message.Content, nil
}

func parseChatError(err error) error {
	wrap := domain.ErrCompletionProviderError

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("completion API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("completion API error %d: %s: %w", reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	return fmt.Errorf("completion request failed: %w", wrap)
}
