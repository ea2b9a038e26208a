package provider

import (
	"context"
	"time"

	"github.com/kaushick2000/cookmate-backend/internal/core/substitution"
)

// Provider 定義 AI 提供者介面
type Provider interface {
	// Name 提供者名稱，用於日誌與指標
	Name() string

	// Suggest 取得食材替代建議，沒有建議時回傳空清單
	Suggest(ctx context.Context, ingredient string) ([]substitution.Substitution, error)

	// Close 關閉提供者連接
	Close() error
}

// Config 定義 AI 提供者配置
type Config struct {
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
	BaseURL   string
}
