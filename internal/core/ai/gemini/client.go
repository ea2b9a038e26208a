// Package gemini 透過 Google Gemini 取得替代建議
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/kaushick2000/cookmate-backend/internal/core/ai"
	"github.com/kaushick2000/cookmate-backend/internal/core/ai/provider"
	"github.com/kaushick2000/cookmate-backend/internal/core/substitution"
)

// ProviderName 提供者名稱
const ProviderName = "gemini"

const defaultModel = "gemini-1.5-flash"

// ErrEmptyResponse Gemini 沒有回傳任何文字
var ErrEmptyResponse = errors.New("empty response from Gemini")

// generator 產生文字回應，測試時替換
type generator interface {
	generate(ctx context.Context, prompt string) (string, error)
}

type modelGenerator struct {
	model *genai.GenerativeModel
}

func (g modelGenerator) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("unexpected response format from Gemini: %w", ErrEmptyResponse)
	}
	return sb.String(), nil
}

// Client Gemini 客戶端
type Client struct {
	client *genai.Client
	gen    generator
}

// NewClient 創建 Gemini 客戶端
func NewClient(ctx context.Context, cfg provider.Config) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	name := cfg.Model
	if name == "" {
		name = defaultModel
	}
	model := client.GenerativeModel(name)
	model.SetTemperature(0.3)
	if cfg.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(cfg.MaxTokens))
	}

	return &Client{client: client, gen: modelGenerator{model: model}}, nil
}

// Name 實作 provider.Provider
func (c *Client) Name() string {
	return ProviderName
}

// Suggest 實作 provider.Provider
func (c *Client) Suggest(ctx context.Context, ingredient string) ([]substitution.Substitution, error) {
	text, err := c.gen.generate(ctx, ai.SubstitutionPrompt(ingredient))
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	return ai.ParseSubstitutions(text), nil
}

// Close 實作 provider.Provider
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
