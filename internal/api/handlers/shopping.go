package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kaushick2000/cookmate-backend/internal/core/shopping"
	"github.com/kaushick2000/cookmate-backend/internal/infrastructure/metrics"
	"github.com/kaushick2000/cookmate-backend/internal/pkg/common"
)

const dateLayout = "2006-01-02"

// FromRecipesRequest 以指定食譜產生購物清單
type FromRecipesRequest struct {
	RecipeIDs []int64 `json:"recipe_ids" binding:"required,min=1"`
}

// FromMealPlansRequest 以進行中的餐點計畫產生購物清單，as_of 預設為今天
type FromMealPlansRequest struct {
	AsOf string `json:"as_of,omitempty" binding:"omitempty,datetime=2006-01-02"`
}

// ShoppingListResponse 購物清單響應
type ShoppingListResponse struct {
	Items      []shopping.Item `json:"items"`
	TotalItems int             `json:"total_items"`
}

// ShoppingHandler 購物清單處理器
type ShoppingHandler struct {
	builder *shopping.Builder
	metrics *metrics.Metrics
	now     func() time.Time
	debug   bool
}

// NewShoppingHandler 創建購物清單處理器
func NewShoppingHandler(builder *shopping.Builder, m *metrics.Metrics, debug bool) *ShoppingHandler {
	return &ShoppingHandler{
		builder: builder,
		metrics: m,
		now:     time.Now,
		debug:   debug,
	}
}

// FromRecipes POST /shopping-lists/from-recipes
func (h *ShoppingHandler) FromRecipes(c *gin.Context) {
	var req FromRecipesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err), h.debug)
		return
	}

	items, err := h.builder.BuildFromRecipes(c.Request.Context(), req.RecipeIDs)
	h.metrics.RecordShoppingList("recipes", len(items), err)
	if err != nil {
		respondError(c, err, h.debug)
		return
	}

	common.LogInfo("購物清單已產生",
		zap.Int("recipes", len(req.RecipeIDs)),
		zap.Int("items", len(items)),
		zap.String("request_id", common.RequestID(c)),
	)
	c.JSON(http.StatusOK, ShoppingListResponse{Items: items, TotalItems: len(items)})
}

// FromMealPlans POST /shopping-lists/from-meal-plans
func (h *ShoppingHandler) FromMealPlans(c *gin.Context) {
	user := userID(c)
	if user == "" {
		respondError(c, common.ErrUnauthorized, h.debug)
		return
	}

	// 允許空的請求體
	var req FromMealPlansRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, bindError(err), h.debug)
		return
	}

	asOf := h.now()
	if req.AsOf != "" {
		parsed, err := time.Parse(dateLayout, req.AsOf)
		if err != nil {
			respondError(c, common.ErrInvalidRequest.Wrap(err), h.debug)
			return
		}
		asOf = parsed
	}

	items, err := h.builder.BuildFromMealPlans(c.Request.Context(), user, asOf)
	h.metrics.RecordShoppingList("meal_plans", len(items), err)
	if err != nil {
		respondError(c, err, h.debug)
		return
	}

	common.LogInfo("購物清單已產生",
		zap.String("user_id", user),
		zap.String("as_of", asOf.Format(dateLayout)),
		zap.Int("items", len(items)),
	)
	c.JSON(http.StatusOK, ShoppingListResponse{Items: items, TotalItems: len(items)})
}
