package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"surveyor/pkg/config"
)

var (
	// ErrRateLimited the provider rejected the call for exceeding its quota
	ErrRateLimited = errors.New("provider rate limited")
	// ErrEmptyCompletion the provider answered without any text
	ErrEmptyCompletion = errors.New("provider returned an empty completion")
)

// Role speaker of a conversation turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn one earlier message of a longitudinal conversation
type Turn struct {
	Role    Role
	Content string
}

// Request one item prompt. Context is empty in cross-sectional mode.
type Request struct {
	System      string
	Prompt      string
	Context     []Turn
	MaxTokens   int
	Temperature float32
}

// Completion the provider's answer
type Completion struct {
	Text         string
	Latency      time.Duration
	PromptTokens *int
}

// Client invokes one configured LLM provider
type Client interface {
	Name() string
	Invoke(ctx context.Context, req Request) (*Completion, error)
}

// New builds a client for a provider configuration
func New(cfg config.ProviderConfig) (Client, error) {
	switch cfg.Kind {
	case "openai":
		return NewOpenAIClient(cfg), nil
	case "gemini":
		return NewGeminiClient(context.Background(), cfg)
	default:
		return nil, fmt.Errorf("unsupported provider kind %q for %s", cfg.Kind, cfg.Name)
	}
}

// NewAll builds a client per configured provider keyed by provider name
func NewAll(providers []config.ProviderConfig) (map[string]Client, error) {
	clients := make(map[string]Client, len(providers))
	for _, p := range providers {
		c, err := New(p)
		if err != nil {
			return nil, err
		}
		clients[p.Name] = c
	}
	return clients, nil
}
