package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kaushick2000/cookmate-backend/internal/core/recipe"
	"github.com/kaushick2000/cookmate-backend/internal/core/recommendation"
	"github.com/kaushick2000/cookmate-backend/internal/infrastructure/config"
	"github.com/kaushick2000/cookmate-backend/internal/infrastructure/metrics"
)

// RecommendationResponse 推薦響應
type RecommendationResponse struct {
	Type    recommendation.Kind `json:"type"`
	Recipes []recipe.Recipe     `json:"recipes"`
	Count   int                 `json:"count"`
}

// RecommendationHandler 推薦處理器
type RecommendationHandler struct {
	engine  *recommendation.Engine
	limits  config.RecommendationConfig
	metrics *metrics.Metrics
	debug   bool
}

// NewRecommendationHandler 創建推薦處理器
func NewRecommendationHandler(engine *recommendation.Engine, limits config.RecommendationConfig, m *metrics.Metrics, debug bool) *RecommendationHandler {
	return &RecommendationHandler{engine: engine, limits: limits, metrics: m, debug: debug}
}

// RecommendationQuery 推薦查詢參數，布林篩選未指定時為 nil
type RecommendationQuery struct {
	Type         string `form:"type"`
	Limit        *int   `form:"limit" binding:"omitempty,min=1"`
	CuisineType  string `form:"cuisine_type"`
	MealType     string `form:"meal_type"`
	IsVegetarian *bool  `form:"is_vegetarian"`
	IsVegan      *bool  `form:"is_vegan"`
	IsGlutenFree *bool  `form:"is_gluten_free"`
	IsDairyFree  *bool  `form:"is_dairy_free"`
}

// Filters 轉為推薦引擎的篩選條件
func (q RecommendationQuery) Filters() recommendation.Filters {
	f := recommendation.Filters{
		IsVegetarian: q.IsVegetarian,
		IsVegan:      q.IsVegan,
		IsGlutenFree: q.IsGlutenFree,
		IsDairyFree:  q.IsDairyFree,
	}
	if q.CuisineType != "" {
		f.CuisineType = &q.CuisineType
	}
	if q.MealType != "" {
		f.MealType = &q.MealType
	}
	return f
}

// Recommend GET /recommendations
func (h *RecommendationHandler) Recommend(c *gin.Context) {
	var q RecommendationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, bindError(err), h.debug)
		return
	}
	kind := recommendation.ParseKind(q.Type)

	// 未指定時使用預設值，超過上限時截斷
	limit := h.limits.DefaultLimit
	if q.Limit != nil {
		limit = min(*q.Limit, h.limits.MaxLimit)
	}

	recipes, err := h.engine.Recommend(c.Request.Context(), kind, userID(c), q.Filters(), limit)
	h.metrics.RecordRecommendation(string(kind), err)
	if err != nil {
		respondError(c, err, h.debug)
		return
	}

	c.JSON(http.StatusOK, RecommendationResponse{Type: kind, Recipes: recipes, Count: len(recipes)})
}
