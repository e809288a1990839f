// internal/llm/providers/openai/openai.go
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/clinicflow/roteiros/internal/llm"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

func init() {
	llm.Register("openai", func() llm.Provider {
		return &Provider{
			name:              "OpenAI",
			defaultModel:      "gpt-4o-mini",
			recommendedModels: []string{"gpt-4o-mini", "gpt-4o", "gpt-4.1-mini", "gpt-4.1"},
		}
	})
	// OpenRouter speaks the same chat-completions protocol behind another base URL.
	llm.Register("openrouter", func() llm.Provider {
		return &Provider{
			name:         "OpenRouter",
			baseURL:      openRouterBaseURL,
			defaultModel: "openai/gpt-4o-mini",
			recommendedModels: []string{
				"openai/gpt-4o-mini",
				"anthropic/claude-3.5-haiku",
				"google/gemini-2.0-flash-001",
				"meta-llama/llama-3.3-70b-instruct",
			},
			openRouter: true,
		}
	})
}

// Provider calls a chat-completions endpoint through the official SDK.
type Provider struct {
	name              string
	baseURL           string
	defaultModel      string
	recommendedModels []string
	openRouter        bool

	client openai.Client
}

func (p *Provider) Initialize(config map[string]string) error {
	apiKey := strings.TrimSpace(config["api_key"])
	if apiKey == "" {
		return fmt.Errorf("%s API key not provided", p.name)
	}

	if model := strings.TrimSpace(config["default_model"]); model != "" {
		p.defaultModel = model
	}
	if baseURL := strings.TrimSpace(config["base_url"]); baseURL != "" {
		p.baseURL = baseURL
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if p.baseURL != "" {
		opts = append(opts, option.WithBaseURL(p.baseURL))
	}
	if p.openRouter {
		opts = append(opts,
			option.WithHeader("HTTP-Referer", valueOr(config["http_referer"], "https://roteiros.local")),
			option.WithHeader("X-Title", valueOr(config["app_name"], "Roteiros")),
		)
	}
	if config["max_retries"] == "0" {
		opts = append(opts, option.WithMaxRetries(0))
	}

	p.client = openai.NewClient(opts...)
	return nil
}

func (p *Provider) GetName() string {
	return p.name
}

func (p *Provider) GetSupportedModels() []string {
	return p.recommendedModels
}

func (p *Provider) CompleteText(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    model,
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(float64(req.Temperature))
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%s completion failed: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New(p.name + " returned no choices")
	}

	choice := resp.Choices[0]
	return &llm.CompletionResponse{
		Text:         choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		TokensUsed:   int(resp.Usage.TotalTokens),
		PromptTokens: int(resp.Usage.PromptTokens),
		OutputTokens: int(resp.Usage.CompletionTokens),
		ModelName:    resp.Model,
		ProviderName: p.name,
	}, nil
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
