package recipe

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound 食譜不存在
	ErrNotFound = errors.New("recipe not found")
	// ErrInvalidMealPlan 餐點計畫的日期區間不合法
	ErrInvalidMealPlan = errors.New("meal plan ends before it starts")
)

// RecipeStore 食譜讀取介面
type RecipeStore interface {
	// FindByID 找不到時回傳 ErrNotFound
	FindByID(ctx context.Context, id int64) (*Recipe, error)
	All(ctx context.Context) ([]Recipe, error)
	// TopRated 依平均評分由高到低
	TopRated(ctx context.Context, limit int) ([]Recipe, error)
	ByCreatedDesc(ctx context.Context, limit int) ([]Recipe, error)
}

// ViewHistoryStore 瀏覽紀錄讀取介面
type ViewHistoryStore interface {
	// RecentFor 依最近瀏覽時間由新到舊
	RecentFor(ctx context.Context, userID string, limit int) ([]Recipe, error)
	IDsFor(ctx context.Context, userID string) (IDSet, error)
}

// FavoriteStore 收藏讀取介面
type FavoriteStore interface {
	ListFor(ctx context.Context, userID string, limit int) ([]Recipe, error)
	IDsFor(ctx context.Context, userID string) (IDSet, error)
}

// MealPlanStore 餐點計畫讀取介面
type MealPlanStore interface {
	// ActiveEntriesFor 回傳日期區間包含 date 的計畫內所有項目
	ActiveEntriesFor(ctx context.Context, userID string, date time.Time) ([]MealPlanEntry, error)
}

// ActivityStore 使用者活動寫入介面
type ActivityStore interface {
	// RecordView 增加瀏覽次數，userID 不為空時一併寫入瀏覽紀錄
	RecordView(ctx context.Context, userID string, recipeID int64, at time.Time) error
	// AddFavorite 重複收藏不會出錯
	AddFavorite(ctx context.Context, userID string, recipeID int64) error
	// SaveMealPlan 回傳計畫 ID
	SaveMealPlan(ctx context.Context, plan MealPlan) (int64, error)
}
