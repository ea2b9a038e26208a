// Package openrouter 透過 OpenRouter 的 chat completions API 取得替代建議
package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/kaushick2000/cookmate-backend/internal/core/ai"
	"github.com/kaushick2000/cookmate-backend/internal/core/ai/provider"
	"github.com/kaushick2000/cookmate-backend/internal/core/substitution"
	"github.com/kaushick2000/cookmate-backend/internal/pkg/common"
)

const (
	// ProviderName 提供者名稱
	ProviderName = "openrouter"

	defaultBaseURL = "https://openrouter.ai/api/v1"
	temperature    = 0.3
)

// ErrEmptyResponse 回應中沒有任何選擇
var ErrEmptyResponse = errors.New("no choices in OpenRouter response")

// Client OpenRouter API 客戶端
type Client struct {
	config provider.Config
	client *resty.Client
}

// NewClient 創建 OpenRouter 客戶端
func NewClient(cfg provider.Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("HTTP-Referer", "https://cookmate.app").
		SetHeader("X-Title", "CookMate")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &Client{config: cfg, client: client}
}

// HTTPClient 底層 resty 客戶端，測試時用於掛載 httpmock
func (c *Client) HTTPClient() *resty.Client {
	return c.client
}

// Name 實作 provider.Provider
func (c *Client) Name() string {
	return ProviderName
}

// Suggest 實作 provider.Provider
func (c *Client) Suggest(ctx context.Context, ingredient string) ([]substitution.Substitution, error) {
	content, err := c.complete(ctx, ai.SubstitutionPrompt(ingredient))
	if err != nil {
		return nil, err
	}
	subs := ai.ParseSubstitutions(content)
	common.LogDebug("OpenRouter 回應解析完成",
		zap.String("ingredient", ingredient),
		zap.Int("count", len(subs)),
	)
	return subs, nil
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	req := ai.ChatRequest{
		Model: c.config.Model,
		Messages: []ai.ChatMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens:   c.config.MaxTokens,
		Temperature: temperature,
	}

	// 發送請求
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("OpenRouter API returned %d: %s", resp.StatusCode(), resp.String())
	}

	// 解析回應
	var result ai.ChatResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse OpenRouter response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	common.LogDebug("OpenRouter 用量",
		zap.Int("prompt_tokens", result.Usage.PromptTokens),
		zap.Int("completion_tokens", result.Usage.CompletionTokens),
	)
	return result.Content(), nil
}

// Close 實作 provider.Provider
func (c *Client) Close() error {
	return nil
}
