// Package cache 快取 AI 替代建議，以正規化後的食材名稱為鍵
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/kaushick2000/cookmate-backend/internal/core/substitution"
)

const keyPrefix = "ai:substitution:"

// Store AI 結果快取
type Store interface {
	// Get 未命中時 found 為 false 且 err 為 nil
	Get(ctx context.Context, ingredient string) (subs []substitution.Substitution, found bool, err error)
	// Set 空清單不寫入
	Set(ctx context.Context, ingredient string, subs []substitution.Substitution) error
	Backend() string
	Close() error
}

// generateKey 生成緩存鍵
func generateKey(ingredient string) string {
	hash := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(ingredient))))
	return keyPrefix + hex.EncodeToString(hash[:])
}
