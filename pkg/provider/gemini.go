package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"surveyor/pkg/config"

	"google.golang.org/genai"
)

// GeminiClient calls Gemini through the genai SDK
type GeminiClient struct {
	name   string
	model  string
	client *genai.Client
}

// NewGeminiClient creates a Gemini client
func NewGeminiClient(ctx context.Context, cfg config.ProviderConfig) (*GeminiClient, error) {
	apiKey := cfg.APIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("provider %s: gemini API key is required (%s)", cfg.Name, cfg.APIKeyEnv)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("provider %s: failed to create genai client: %w", cfg.Name, err)
	}
	return &GeminiClient{name: cfg.Name, model: cfg.Model, client: client}, nil
}

// Name returns the provider name
func (c *GeminiClient) Name() string {
	return c.name
}

// Invoke sends the conversation with the system prompt as system instruction
func (c *GeminiClient) Invoke(ctx context.Context, req Request) (*Completion, error) {
	contents := make([]*genai.Content, 0, len(req.Context)+1)
	for _, turn := range req.Context {
		role := genai.Role(genai.RoleUser)
		if turn.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(req.Prompt, genai.RoleUser))

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		Temperature:       genai.Ptr(req.Temperature),
		MaxOutputTokens:   int32(req.MaxTokens),
	})
	latency := time.Since(start)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%s: %w: %s", c.name, ErrRateLimited, apiErr.Message)
		}
		return nil, fmt.Errorf("%s: failed to generate content: %w", c.name, err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("%s: %w", c.name, ErrEmptyCompletion)
	}

	completion := &Completion{Text: text, Latency: latency}
	if resp.UsageMetadata != nil {
		tokens := int(resp.UsageMetadata.PromptTokenCount)
		completion.PromptTokens = &tokens
	}
	return completion, nil
}
