// Package api 組裝 gin 路由與中間件
package api

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kaushick2000/cookmate-backend/internal/api/handlers"
	"github.com/kaushick2000/cookmate-backend/internal/api/handlers/health"
	"github.com/kaushick2000/cookmate-backend/internal/api/middleware"
	"github.com/kaushick2000/cookmate-backend/internal/core/recipe"
	"github.com/kaushick2000/cookmate-backend/internal/core/recommendation"
	"github.com/kaushick2000/cookmate-backend/internal/core/shopping"
	"github.com/kaushick2000/cookmate-backend/internal/core/substitution"
	"github.com/kaushick2000/cookmate-backend/internal/infrastructure/config"
	"github.com/kaushick2000/cookmate-backend/internal/infrastructure/metrics"
	"github.com/kaushick2000/cookmate-backend/internal/pkg/common"
)

// 超時設置
const timeoutDuration = 30 * time.Second

// Dependencies 路由需要的服務
type Dependencies struct {
	Config     *config.Config
	Builder    *shopping.Builder
	Resolver   *substitution.Resolver
	Engine     *recommendation.Engine
	Activity   recipe.ActivityStore
	Metrics    *metrics.Metrics
	AIProvider string
	Checks     map[string]health.Check
}

// SetupRouter 設置路由
func SetupRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// JSON 請求體不接受未知欄位
	binding.EnableDecoderDisallowUnknownFields = true

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery(cfg.App.Debug))
	router.Use(requestid.New()) // 自動生成請求 ID
	router.Use(middleware.Logger())
	if deps.Metrics != nil {
		router.Use(middleware.Metrics(deps.Metrics))
	}

	// CORS 設置
	router.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	router.Use(requestTimeout(timeoutDuration))

	// 健康檢查路由
	healthHandler := health.NewHandler(cfg.App.Version, deps.AIProvider, deps.Checks)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	shoppingHandler := handlers.NewShoppingHandler(deps.Builder, deps.Metrics, cfg.App.Debug)
	substitutionHandler := handlers.NewSubstitutionHandler(deps.Resolver, deps.Metrics, cfg.App.Debug)
	recommendationHandler := handlers.NewRecommendationHandler(deps.Engine, cfg.Recommendation, deps.Metrics, cfg.App.Debug)
	activityHandler := handlers.NewActivityHandler(deps.Activity, cfg.App.Debug)

	// API 路由組
	api := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)))
	}
	{
		shoppingGroup := api.Group("/shopping-lists")
		{
			shoppingGroup.POST("/from-recipes", shoppingHandler.FromRecipes)
			shoppingGroup.POST("/from-meal-plans", shoppingHandler.FromMealPlans)
		}

		substitutionGroup := api.Group("/substitutions")
		{
			substitutionGroup.GET("", substitutionHandler.Suggest)
			substitutionGroup.POST("/batch", substitutionHandler.SuggestBatch)
		}

		api.GET("/recommendations", recommendationHandler.Recommend)

		if deps.Activity != nil {
			recipeGroup := api.Group("/recipes/:id")
			{
				recipeGroup.POST("/views", activityHandler.RecordView)
				recipeGroup.POST("/favorites", activityHandler.AddFavorite)
			}
			api.POST("/meal-plans", activityHandler.CreateMealPlan)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.String("ai_provider", deps.AIProvider),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router
}

// requestTimeout 設置請求超時，處理器尚未回應時回傳超時錯誤
func requestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeout),
			)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, common.ErrRequestTimeout.ToResponse(false))
		}
	}
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", common.RequestIDHeader, middleware.UserIDHeader},
		ExposeHeaders: []string{"Content-Length", common.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
