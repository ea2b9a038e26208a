package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kaushick2000/cookmate-backend/internal/pkg/common"
)

const checkTimeout = 2 * time.Second

// Check 依賴檢查，回傳 nil 表示正常
type Check func(ctx context.Context) error

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Version    string            `json:"version"`
	AIProvider string            `json:"ai_provider"`
	Components map[string]string `json:"components,omitempty"`
	Runtime    RuntimeStatus     `json:"runtime"`
}

// RuntimeStatus 執行期資訊
type RuntimeStatus struct {
	Goroutines int    `json:"goroutines"`
	Alloc      uint64 `json:"alloc"`
	Sys        uint64 `json:"sys"`
	NumGC      uint32 `json:"num_gc"`
}

// Handler 健康檢查處理器
type Handler struct {
	version    string
	aiProvider string
	checks     map[string]Check
}

// NewHandler 創建健康檢查處理器，aiProvider 為空表示只使用規則替代
func NewHandler(version, aiProvider string, checks map[string]Check) *Handler {
	if aiProvider == "" {
		aiProvider = "none"
	}
	return &Handler{version: version, aiProvider: aiProvider, checks: checks}
}

// runChecks 執行所有依賴檢查
func (h *Handler) runChecks(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	results := make(map[string]string, len(h.checks))
	healthy := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			common.LogWarn("依賴檢查失敗", zap.String("component", name), zap.Error(err))
			results[name] = "down"
			healthy = false
			continue
		}
		results[name] = "up"
	}
	return results, healthy
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	components, healthy := h.runChecks(c.Request.Context())

	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:     "ok",
		Timestamp:  time.Now(),
		Version:    h.version,
		AIProvider: h.aiProvider,
		Components: components,
		Runtime: RuntimeStatus{
			Goroutines: runtime.NumGoroutine(),
			Alloc:      m.Alloc,
			Sys:        m.Sys,
			NumGC:      m.NumGC,
		},
	}

	status := http.StatusOK
	if !healthy {
		response.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, response)
}

// ReadinessCheck 就緒檢查處理器
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if _, healthy := h.runChecks(c.Request.Context()); !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
