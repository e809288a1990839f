package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/clinicflow/roteiros/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-mini",
  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "🎯 Slide 1 - Você sabia?"}}],
  "usage": {"prompt_tokens": 12, "completion_tokens": 8, "total_tokens": 20}
}`

func TestRegistered(t *testing.T) {
	assert.Contains(t, llm.ListProviders(), "openai")
	assert.Contains(t, llm.ListProviders(), "openrouter")
	assert.NotEmpty(t, llm.GetSupportedModelsForProvider("openrouter"))
}

func TestInitializeRequiresKey(t *testing.T) {
	_, err := llm.GetProvider("openai", map[string]string{})
	assert.Error(t, err)
}

func TestCompleteText(t *testing.T) {
	var got map[string]interface{}
	var auth, title string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		auth = r.Header.Get("Authorization")
		title = r.Header.Get("X-Title")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completionBody)
	}))
	defer server.Close()

	provider, err := llm.GetProvider("openrouter", map[string]string{
		"api_key":       "or-key",
		"base_url":      server.URL + "/v1",
		"default_model": "openai/gpt-4o-mini",
		"max_retries":   "0",
	})
	require.NoError(t, err)
	assert.Equal(t, "OpenRouter", provider.GetName())

	resp, err := provider.CompleteText(context.Background(), llm.CompletionRequest{
		SystemPrompt: "Você é roteirista.",
		Prompt:       "Crie um carrossel.",
		MaxTokens:    500,
		Temperature:  0.7,
	})
	require.NoError(t, err)

	assert.Equal(t, "🎯 Slide 1 - Você sabia?", resp.Text)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, 20, resp.TokensUsed)
	assert.Equal(t, 12, resp.PromptTokens)
	assert.Equal(t, "OpenRouter", resp.ProviderName)

	assert.Equal(t, "Bearer or-key", auth)
	assert.Equal(t, "Roteiros", title)
	assert.Equal(t, "openai/gpt-4o-mini", got["model"])
	messages := got["messages"].([]interface{})
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])
}

func TestCompleteTextServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "bad key"}}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	provider, err := llm.GetProvider("openai", map[string]string{
		"api_key":     "sk-bad",
		"base_url":    server.URL,
		"max_retries": "0",
	})
	require.NoError(t, err)

	_, err = provider.CompleteText(context.Background(), llm.CompletionRequest{Prompt: "oi"})
	assert.Error(t, err)
}
