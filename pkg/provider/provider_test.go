package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"surveyor/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature *float32 `json:"temperature"`
}

func newOpenAIServer(t *testing.T, handler func(w http.ResponseWriter, req chatRequest)) *OpenAIClient {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		handler(w, req)
	}))
	t.Cleanup(server.Close)

	return NewOpenAIClient(config.ProviderConfig{Name: "deepseek", Kind: "openai", Model: "deepseek-chat", BaseURL: server.URL})
}

func TestOpenAIClient_Invoke(t *testing.T) {
	var got chatRequest
	client := newOpenAIServer(t, func(w http.ResponseWriter, req chatRequest) {
		got = req
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"4"}}],"usage":{"prompt_tokens":57,"completion_tokens":1}}`))
	})

	completion, err := client.Invoke(context.Background(), Request{
		System:    "You have these traits",
		Prompt:    "Statement: \"I am reserved\"",
		Context:   []Turn{{Role: RoleUser, Content: "q1"}, {Role: RoleAssistant, Content: "3"}},
		MaxTokens: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, "4", completion.Text)
	require.NotNil(t, completion.PromptTokens)
	assert.Equal(t, 57, *completion.PromptTokens)

	assert.Equal(t, "deepseek-chat", got.Model)
	assert.Equal(t, 10, got.MaxTokens)
	require.Len(t, got.Messages, 4)
	roles := []string{got.Messages[0].Role, got.Messages[1].Role, got.Messages[2].Role, got.Messages[3].Role}
	assert.Equal(t, []string{"system", "user", "assistant", "user"}, roles)
	assert.Equal(t, "Statement: \"I am reserved\"", got.Messages[3].Content)

	// a zero temperature is still sent instead of being omitted
	require.NotNil(t, got.Temperature)
	assert.InDelta(t, 0, *got.Temperature, 1e-6)
}

func TestOpenAIClient_RateLimited(t *testing.T) {
	client := newOpenAIServer(t, func(w http.ResponseWriter, _ chatRequest) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit_exceeded"}}`))
	})

	_, err := client.Invoke(context.Background(), Request{System: "s", Prompt: "p"})
	assert.True(t, errors.Is(err, ErrRateLimited), "got %v", err)
}

func TestOpenAIClient_EmptyCompletion(t *testing.T) {
	client := newOpenAIServer(t, func(w http.ResponseWriter, _ chatRequest) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := client.Invoke(context.Background(), Request{System: "s", Prompt: "p"})
	assert.True(t, errors.Is(err, ErrEmptyCompletion))
}

func TestNew(t *testing.T) {
	c, err := New(config.ProviderConfig{Name: "xai", Kind: "openai", Model: "grok"})
	require.NoError(t, err)
	assert.Equal(t, "xai", c.Name())

	_, err = New(config.ProviderConfig{Name: "gemini", Kind: "gemini", APIKeyEnv: "SURVEYOR_TEST_UNSET_KEY"})
	assert.Error(t, err)

	_, err = New(config.ProviderConfig{Name: "x", Kind: "smoke-signals"})
	assert.Error(t, err)
}
