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

// OpenAIProvider rewrites text through OpenAI-compatible chat completion APIs.
type OpenAIProvider struct {
	endpoint   string
	model      string
	apiKey     string
	maxTokens  int
	httpClient *http.Client
}

var _ rewrite.Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider builds a provider from configuration.
func NewOpenAIProvider(cfg config.OpenAIConfig, timeout time.Duration) *OpenAIProvider {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIProvider{
		endpoint:   cfg.Endpoint,
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		maxTokens:  cfg.MaxTokens,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name identifies the provider inside the registry.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Rewrite posts the styled prompt and extracts the single completion text.
func (p *OpenAIProvider) Rewrite(ctx context.Context, text, style string) (string, error) {
	if p.apiKey == "" || p.endpoint == "" || p.model == "" {
		return "", rewrite.NewError(rewrite.KindProviderFailure, p.Name(), fmt.Errorf("openai provider misconfigured"))
	}

	body, err := json.Marshal(map[string]any{
		"model": p.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": rewritePrompt(text, style)},
		},
		"max_tokens":  p.maxTokens,
		"temperature": 0.7,
	})
	if err != nil {
		return "", rewrite.NewError(rewrite.KindProviderFailure, p.Name(), fmt.Errorf("marshal payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", rewrite.NewError(rewrite.KindProviderFailure, p.Name(), fmt.Errorf("new request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", rewrite.NewError(rewrite.KindProviderFailure, p.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", rewrite.NewError(rewrite.KindProviderFailure, p.Name(),
			fmt.Errorf("openai error %s: %s", resp.Status, strings.TrimSpace(string(payload))))
	}

	var decoded struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", rewrite.NewError(rewrite.KindProviderFailure, p.Name(), fmt.Errorf("decode response: %w", err))
	}
	if len(decoded.Choices) == 0 {
		return "", rewrite.NewError(rewrite.KindProviderFailure, p.Name(), fmt.Errorf("response contains no choices"))
	}

	return decoded.Choices[0].Message.Content, nil
}
