package recipe

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ingredient 食材
type Ingredient struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"` // 僅用於購物清單分組
}

// RecipeIngredient 食譜中的一行食材，Quantity 為 nil 表示未標示份量
type RecipeIngredient struct {
	Ingredient Ingredient       `json:"ingredient"`
	Quantity   *decimal.Decimal `json:"quantity,omitempty"`
	Unit       string           `json:"unit,omitempty"`
	Notes      string           `json:"notes,omitempty"`
}

// Recipe 食譜
type Recipe struct {
	ID            int64              `json:"id"`
	Title         string             `json:"title"`
	CuisineType   string             `json:"cuisine_type,omitempty"`
	MealType      string             `json:"meal_type,omitempty"`
	BaseServings  int                `json:"servings"`
	AverageRating float64            `json:"average_rating"`
	TotalReviews  int                `json:"total_reviews"`
	ViewCount     int                `json:"view_count"`
	CreatedAt     time.Time          `json:"created_at"`
	IsVegetarian  bool               `json:"is_vegetarian"`
	IsVegan       bool               `json:"is_vegan"`
	IsGlutenFree  bool               `json:"is_gluten_free"`
	IsDairyFree   bool               `json:"is_dairy_free"`
	Ingredients   []RecipeIngredient `json:"ingredients,omitempty"`
}

// DefaultServings 未設定份量時的預設值
const DefaultServings = 4

// MealPlanEntry 餐點計畫中的一筆安排
type MealPlanEntry struct {
	RecipeID          int64     `json:"recipe_id"`
	PlannedDate       time.Time `json:"planned_date"`
	RequestedServings int       `json:"servings"`
}

// MealPlan 使用者的餐點計畫，StartDate 與 EndDate 皆包含在內
type MealPlan struct {
	UserID    string          `json:"user_id"`
	Name      string          `json:"name,omitempty"`
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
	Entries   []MealPlanEntry `json:"entries"`
}

// IDSet 食譜 ID 集合
type IDSet map[int64]struct{}

// Has 檢查是否包含
func (s IDSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// Add 加入 ID
func (s IDSet) Add(ids ...int64) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

// Qty 方便建立份量指標
func Qty(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
