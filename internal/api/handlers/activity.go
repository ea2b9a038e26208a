package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kaushick2000/cookmate-backend/internal/core/recipe"
	"github.com/kaushick2000/cookmate-backend/internal/pkg/common"
)

// RecipeURI 路徑中的食譜 ID
type RecipeURI struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// MealPlanEntryRequest 餐點計畫中的一筆安排，servings 未指定時為 1
type MealPlanEntryRequest struct {
	RecipeID    int64  `json:"recipe_id" binding:"required,min=1"`
	PlannedDate string `json:"planned_date" binding:"required,datetime=2006-01-02"`
	Servings    int    `json:"servings" binding:"omitempty,min=1"`
}

// CreateMealPlanRequest 建立餐點計畫請求
type CreateMealPlanRequest struct {
	Name      string                 `json:"name" binding:"max=100"`
	StartDate string                 `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string                 `json:"end_date" binding:"required,datetime=2006-01-02"`
	Entries   []MealPlanEntryRequest `json:"entries" binding:"required,min=1,dive"`
}

// ActivityResponse 活動寫入結果
type ActivityResponse struct {
	RecipeID int64  `json:"recipe_id"`
	Status   string `json:"status"`
}

// MealPlanResponse 建立餐點計畫結果
type MealPlanResponse struct {
	ID      int64 `json:"id"`
	Entries int   `json:"entries"`
}

// ActivityHandler 瀏覽、收藏與餐點計畫寫入處理器
type ActivityHandler struct {
	store recipe.ActivityStore
	now   func() time.Time
	debug bool
}

// NewActivityHandler 創建活動處理器
func NewActivityHandler(store recipe.ActivityStore, debug bool) *ActivityHandler {
	return &ActivityHandler{store: store, now: time.Now, debug: debug}
}

// RecordView POST /recipes/:id/views，未登入時只增加瀏覽次數
func (h *ActivityHandler) RecordView(c *gin.Context) {
	var uri RecipeURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondError(c, bindError(err), h.debug)
		return
	}

	if err := h.store.RecordView(c.Request.Context(), userID(c), uri.ID, h.now()); err != nil {
		respondError(c, err, h.debug)
		return
	}
	c.JSON(http.StatusOK, ActivityResponse{RecipeID: uri.ID, Status: "recorded"})
}

// AddFavorite POST /recipes/:id/favorites
func (h *ActivityHandler) AddFavorite(c *gin.Context) {
	user := userID(c)
	if user == "" {
		respondError(c, common.ErrUnauthorized, h.debug)
		return
	}
	var uri RecipeURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondError(c, bindError(err), h.debug)
		return
	}

	if err := h.store.AddFavorite(c.Request.Context(), user, uri.ID); err != nil {
		respondError(c, err, h.debug)
		return
	}
	c.JSON(http.StatusOK, ActivityResponse{RecipeID: uri.ID, Status: "favorited"})
}

// CreateMealPlan POST /meal-plans
func (h *ActivityHandler) CreateMealPlan(c *gin.Context) {
	user := userID(c)
	if user == "" {
		respondError(c, common.ErrUnauthorized, h.debug)
		return
	}
	var req CreateMealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err), h.debug)
		return
	}

	// 格式已由 binding 驗證
	plan := recipe.MealPlan{
		UserID:    user,
		Name:      req.Name,
		StartDate: parseValidatedDate(req.StartDate),
		EndDate:   parseValidatedDate(req.EndDate),
		Entries:   make([]recipe.MealPlanEntry, 0, len(req.Entries)),
	}
	for _, e := range req.Entries {
		plan.Entries = append(plan.Entries, recipe.MealPlanEntry{
			RecipeID:          e.RecipeID,
			PlannedDate:       parseValidatedDate(e.PlannedDate),
			RequestedServings: max(e.Servings, 1),
		})
	}

	id, err := h.store.SaveMealPlan(c.Request.Context(), plan)
	if err != nil {
		respondError(c, err, h.debug)
		return
	}

	common.LogInfo("餐點計畫已建立",
		zap.String("user_id", user),
		zap.Int64("meal_plan_id", id),
		zap.Int("entries", len(plan.Entries)),
	)
	c.JSON(http.StatusCreated, MealPlanResponse{ID: id, Entries: len(plan.Entries)})
}

func parseValidatedDate(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}
