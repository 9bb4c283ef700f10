package rewrite

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GeminiBaseURL is the Generative Language API root.
const GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiConfig configures the Gemini provider.
type GeminiConfig struct {
	BaseURL string
	Model   string
	APIKey  string
}

// GeminiProvider calls models/{model}:generateContent.
type GeminiProvider struct {
	cfg        GeminiConfig
	httpClient *http.Client
}

var _ Provider = (*GeminiProvider)(nil)

func NewGeminiProvider(cfg GeminiConfig) *GeminiProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = GeminiBaseURL
	}
	return &GeminiProvider{cfg: cfg, httpClient: newHTTPClient(2 * time.Minute)}
}

func (g *GeminiProvider) Name() string {
	return "gemini"
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  map[string]any  `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *GeminiProvider) Generate(ctx context.Context, title, content string) (string, error) {
	if g.cfg.APIKey == "" || g.cfg.Model == "" {
		return "", &ProviderError{Provider: g.Name(), Kind: KindNotConfigured}
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimSuffix(g.cfg.BaseURL, "/"), url.PathEscape(g.cfg.Model), url.QueryEscape(g.cfg.APIKey))

	req := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: systemPrompt}}},
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: buildPrompt(title, content)}}},
		},
		GenerationConfig: map[string]any{"temperature": 0.7, "maxOutputTokens": 2048},
	}

	var resp geminiResponse
	if err := postJSON(ctx, g.httpClient, g.Name(), endpoint, nil, req, &resp); err != nil {
		return "", err
	}

	var b strings.Builder
	if len(resp.Candidates) > 0 {
		for _, p := range resp.Candidates[0].Content.Parts {
			b.WriteString(p.Text)
		}
	}
	return checkLength(g.Name(), b.String())
}
