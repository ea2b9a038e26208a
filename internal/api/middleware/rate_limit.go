package middleware

import (
	"fmt"
	"math"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kaushick2000/cookmate-backend/internal/pkg/common"
)

// RateLimiter 以用戶端為單位的令牌桶限流器，閒置的限流器會被清除
type RateLimiter struct {
	interval time.Duration
	burst    int
	limiters *gocache.Cache
}

// NewRateLimiter 創建新的限流器，每個用戶端在 window 內最多 requests 次
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	idle := max(window*2, time.Minute)
	return &RateLimiter{
		interval: window / time.Duration(requests),
		burst:    requests,
		limiters: gocache.New(idle, idle),
	}
}

// Allow 檢查是否允許請求
func (rl *RateLimiter) Allow(key string) bool {
	return rl.limiter(key).Allow()
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	if v, ok := rl.limiters.Get(key); ok {
		rl.limiters.SetDefault(key, v)
		return v.(*rate.Limiter)
	}
	l := rate.NewLimiter(rate.Every(rl.interval), rl.burst)
	// 並發時以先寫入者為準
	if err := rl.limiters.Add(key, l, gocache.DefaultExpiration); err != nil {
		if v, ok := rl.limiters.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return l
}

// retryAfter 下一個令牌可用前需等待的秒數
func (rl *RateLimiter) retryAfter() int {
	return int(math.Ceil(rl.interval.Seconds()))
}

// RateLimit 限流中間件，以 X-User-ID 或用戶端 IP 區分
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(UserIDHeader)
		if key == "" {
			key = c.ClientIP()
		}

		if !limiter.Allow(key) {
			common.LogInfo("Rate limit exceeded",
				zap.String("client", key),
				zap.String("path", c.Request.URL.Path),
			)

			c.Header("Retry-After", fmt.Sprintf("%d", limiter.retryAfter()))
			c.AbortWithStatusJSON(common.ErrTooManyRequests.Status, common.ErrTooManyRequests.ToResponse(false))
			return
		}

		c.Next()
	}
}
