package rewrite

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Well-known OpenAI-compatible chat completion endpoints.
const (
	GroqEndpoint       = "https://api.groq.com/openai/v1/chat/completions"
	OpenRouterEndpoint = "https://openrouter.ai/api/v1/chat/completions"
	OpenAIEndpoint     = "https://api.openai.com/v1/chat/completions"
)

// ChatConfig configures an OpenAI-compatible provider.
type ChatConfig struct {
	Name      string
	Endpoint  string
	Model     string
	APIKey    string
	MaxTokens int
}

// ChatProvider talks to any OpenAI-compatible /chat/completions API
// (OpenAI, Groq, OpenRouter).
type ChatProvider struct {
	cfg        ChatConfig
	httpClient *http.Client
}

var _ Provider = (*ChatProvider)(nil)

// NewChatProvider builds a provider from configuration.
func NewChatProvider(cfg ChatConfig) *ChatProvider {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	return &ChatProvider{
		cfg: cfg,
		// the engine applies the real per-provider deadline through ctx
		httpClient: newHTTPClient(2 * time.Minute),
	}
}

func (c *ChatProvider) Name() string {
	return c.cfg.Name
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate posts the rewrite prompt and returns the first choice.
func (c *ChatProvider) Generate(ctx context.Context, title, content string) (string, error) {
	if c.cfg.APIKey == "" || c.cfg.Endpoint == "" || c.cfg.Model == "" {
		return "", &ProviderError{Provider: c.cfg.Name, Kind: KindNotConfigured}
	}

	req := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(title, content)},
		},
		Temperature: 0.7,
		MaxTokens:   c.cfg.MaxTokens,
	}

	var resp chatResponse
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	if err := postJSON(ctx, c.httpClient, c.cfg.Name, c.cfg.Endpoint, headers, req, &resp); err != nil {
		return "", err
	}

	var text string
	if len(resp.Choices) > 0 {
		text = resp.Choices[0].Message.Content
	}
	return checkLength(c.cfg.Name, strings.TrimSpace(text))
}
