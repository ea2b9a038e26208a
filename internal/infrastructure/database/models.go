package database

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecipeModel recipes 資料表
type RecipeModel struct {
	ID            int64   `gorm:"primaryKey"`
	Title         string  `gorm:"size:255;not null"`
	CuisineType   string  `gorm:"size:64;index"`
	MealType      string  `gorm:"size:64;index"`
	Servings      int     `gorm:"default:4"`
	AverageRating float64 `gorm:"index"`
	TotalReviews  int
	ViewCount     int
	IsVegetarian  bool
	IsVegan       bool
	IsGlutenFree  bool
	IsDairyFree   bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Ingredients   []RecipeIngredientModel `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

func (RecipeModel) TableName() string { return "recipes" }

// IngredientModel ingredients 資料表
type IngredientModel struct {
	ID       int64  `gorm:"primaryKey"`
	Name     string `gorm:"size:255;uniqueIndex;not null"`
	Category string `gorm:"size:64"`
}

func (IngredientModel) TableName() string { return "ingredients" }

// RecipeIngredientModel recipe_ingredients 資料表
type RecipeIngredientModel struct {
	ID           int64 `gorm:"primaryKey"`
	RecipeID     int64 `gorm:"index;not null"`
	IngredientID int64 `gorm:"not null"`
	Ingredient   IngredientModel
	Position     int
	Quantity     decimal.NullDecimal `gorm:"type:decimal(12,3)"`
	Unit         string              `gorm:"size:32"`
	Notes        string              `gorm:"size:255"`
}

func (RecipeIngredientModel) TableName() string { return "recipe_ingredients" }

// MealPlanModel meal_plans 資料表
type MealPlanModel struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    string    `gorm:"size:64;index;not null"`
	Name      string    `gorm:"size:255"`
	StartDate time.Time `gorm:"index"`
	EndDate   time.Time `gorm:"index"`
	CreatedAt time.Time
	Entries   []MealPlanRecipeModel `gorm:"foreignKey:MealPlanID;constraint:OnDelete:CASCADE"`
}

func (MealPlanModel) TableName() string { return "meal_plans" }

// MealPlanRecipeModel meal_plan_recipes 資料表
type MealPlanRecipeModel struct {
	ID          int64 `gorm:"primaryKey"`
	MealPlanID  int64 `gorm:"index;not null"`
	RecipeID    int64 `gorm:"index;not null"`
	PlannedDate time.Time
	Servings    int `gorm:"default:1"`
}

func (MealPlanRecipeModel) TableName() string { return "meal_plan_recipes" }

// FavoriteModel favorites 資料表
type FavoriteModel struct {
	ID        int64  `gorm:"primaryKey"`
	UserID    string `gorm:"size:64;uniqueIndex:idx_favorite_user_recipe;not null"`
	RecipeID  int64  `gorm:"uniqueIndex:idx_favorite_user_recipe;not null"`
	CreatedAt time.Time
}

func (FavoriteModel) TableName() string { return "favorites" }

// RecentlyViewedModel recently_viewed 資料表
type RecentlyViewedModel struct {
	ID       int64     `gorm:"primaryKey"`
	UserID   string    `gorm:"size:64;index:idx_viewed_user_time;not null"`
	RecipeID int64     `gorm:"not null"`
	ViewedAt time.Time `gorm:"index:idx_viewed_user_time"`
}

func (RecentlyViewedModel) TableName() string { return "recently_viewed" }

// allModels 需要自動遷移的模型
func allModels() []any {
	return []any{
		&RecipeModel{},
		&IngredientModel{},
		&RecipeIngredientModel{},
		&MealPlanModel{},
		&MealPlanRecipeModel{},
		&FavoriteModel{},
		&RecentlyViewedModel{},
	}
}
