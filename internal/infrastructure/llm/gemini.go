package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ContentPipeline/internal/config"
	"ContentPipeline/internal/rewrite"
)

// GeminiProvider rewrites text through the Gemini generateContent API.
type GeminiProvider struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ rewrite.Provider = (*GeminiProvider)(nil)

// NewGeminiProvider builds a provider from configuration.
func NewGeminiProvider(cfg config.GeminiConfig, timeout time.Duration) *GeminiProvider {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GeminiProvider{
		endpoint:   strings.TrimSuffix(cfg.Endpoint, "/"),
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name identifies the provider inside the registry.
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Rewrite posts the styled prompt and extracts the single candidate text.
func (p *GeminiProvider) Rewrite(ctx context.Context, text, style string) (string, error) {
	if p.apiKey == "" || p.endpoint == "" || p.model == "" {
		return "", rewrite.NewError(rewrite.KindProviderFailure, p.Name(), fmt.Errorf("gemini provider misconfigured"))
	}

	body, err := json.Marshal(map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": rewritePrompt(text, style)}}},
		},
	})
	if err != nil {
		return "", rewrite.NewError(rewrite.KindProviderFailure, p.Name(), fmt.Errorf("marshal payload: %w", err))
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.endpoint, p.model, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", rewrite.NewError(rewrite.KindProviderFailure, p.Name(), fmt.Errorf("new request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", rewrite.NewError(rewrite.KindProviderFailure, p.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", rewrite.NewError(rewrite.KindProviderFailure, p.Name(),
			fmt.Errorf("gemini error %s: %s", resp.Status, strings.TrimSpace(string(payload))))
	}

	var decoded struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", rewrite.NewError(rewrite.KindProviderFailure, p.Name(), fmt.Errorf("decode response: %w", err))
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", rewrite.NewError(rewrite.KindProviderFailure, p.Name(), fmt.Errorf("response contains no candidates"))
	}

	return decoded.Candidates[0].Content.Parts[0].Text, nil
}
