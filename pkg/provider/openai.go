package provider

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"surveyor/pkg/config"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient speaks the chat completions API. DeepSeek, xAI and other
// compatible endpoints are reached through base_url.
type OpenAIClient struct {
	name   string
	model  string
	client *openai.Client
}

// NewOpenAIClient creates an OpenAI compatible client
func NewOpenAIClient(cfg config.ProviderConfig) *OpenAIClient {
	clientConfig := openai.DefaultConfig(cfg.APIKey())
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &OpenAIClient{
		name:   cfg.Name,
		model:  cfg.Model,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

// Name returns the provider name
func (c *OpenAIClient) Name() string {
	return c.name
}

// Invoke sends the system prompt, the conversation so far and the item prompt
func (c *OpenAIClient) Invoke(ctx context.Context, req Request) (*Completion, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Context)+2)
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	for _, turn := range req.Context {
		role := openai.ChatMessageRoleUser
		if turn.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	temperature := req.Temperature
	if temperature == 0 {
		// the request field is omitempty, a literal 0 would fall back to the server default
		temperature = math.SmallestNonzeroFloat32
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   req.MaxTokens,
	})
	latency := time.Since(start)
	if err != nil {
		return nil, classifyOpenAIError(c.name, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("%s: %w", c.name, ErrEmptyCompletion)
	}

	promptTokens := resp.Usage.PromptTokens
	return &Completion{
		Text:         resp.Choices[0].Message.Content,
		Latency:      latency,
		PromptTokens: &promptTokens,
	}, nil
}

func classifyOpenAIError(name string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%s: %w: %s", name, ErrRateLimited, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%s: %w", name, ErrRateLimited)
	}
	return fmt.Errorf("%s: failed to create completion: %w", name, err)
}
