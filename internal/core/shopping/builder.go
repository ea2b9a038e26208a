package shopping

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kaushick2000/cookmate-backend/internal/core/ingredient"
	"github.com/kaushick2000/cookmate-backend/internal/core/recipe"
	"github.com/kaushick2000/cookmate-backend/internal/pkg/common"
)

// ErrNoActiveMealPlans 指定日期沒有進行中的餐點計畫
var ErrNoActiveMealPlans = errors.New("no active meal plans")

// scalePlaces 份量倍率保留的小數位數
const scalePlaces = 2

// Builder 購物清單產生器
type Builder struct {
	recipes   recipe.RecipeStore
	mealPlans recipe.MealPlanStore
}

// NewBuilder 創建購物清單產生器
func NewBuilder(recipes recipe.RecipeStore, mealPlans recipe.MealPlanStore) *Builder {
	return &Builder{
		recipes:   recipes,
		mealPlans: mealPlans,
	}
}

// BuildFromRecipes 依食譜原始份量產生購物清單，任何一個食譜不存在即失敗
func (b *Builder) BuildFromRecipes(ctx context.Context, recipeIDs []int64) ([]Item, error) {
	var records []Record
	for _, id := range recipeIDs {
		r, err := b.findRecipe(ctx, id)
		if err != nil {
			return nil, err
		}
		records = appendRecords(records, r, decimal.Decimal{}, false)
	}

	items := Aggregate(records)
	common.LogDebug("購物清單已產生",
		zap.Int("recipes", len(recipeIDs)),
		zap.Int("items", len(items)),
	)
	return items, nil
}

// BuildFromMealPlans 依進行中的餐點計畫產生購物清單。
// 同一食譜的所有項目份量先加總，再以 總份量/食譜份量 縮放食材數量。
func (b *Builder) BuildFromMealPlans(ctx context.Context, userID string, asOf time.Time) ([]Item, error) {
	entries, err := b.mealPlans.ActiveEntriesFor(ctx, userID, asOf)
	if err != nil {
		return nil, fmt.Errorf("load meal plan entries: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrNoActiveMealPlans
	}

	order, servings := groupServings(entries)

	var records []Record
	for _, id := range order {
		r, err := b.findRecipe(ctx, id)
		if err != nil {
			return nil, err
		}
		scale := ServingScale(servings[id], r.BaseServings)
		common.LogDebug("食譜份量倍率",
			zap.Int64("recipe_id", id),
			zap.Int("servings", servings[id]),
			zap.String("scale", scale.String()),
		)
		records = appendRecords(records, r, scale, true)
	}

	items := Aggregate(records)
	common.LogDebug("餐點計畫購物清單已產生",
		zap.String("user_id", userID),
		zap.Int("entries", len(entries)),
		zap.Int("recipes", len(order)),
		zap.Int("items", len(items)),
	)
	return items, nil
}

// ServingScale 計算份量倍率，四捨五入到兩位小數。小於 1 的份量視為 1。
func ServingScale(requested, base int) decimal.Decimal {
	if requested < 1 {
		requested = 1
	}
	if base < 1 {
		base = 1
	}
	return decimal.NewFromInt(int64(requested)).DivRound(decimal.NewFromInt(int64(base)), scalePlaces)
}

func (b *Builder) findRecipe(ctx context.Context, id int64) (*recipe.Recipe, error) {
	r, err := b.recipes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, recipe.ErrNotFound) {
			return nil, fmt.Errorf("recipe %d: %w", id, recipe.ErrNotFound)
		}
		return nil, fmt.Errorf("load recipe %d: %w", id, err)
	}
	return r, nil
}

// groupServings 依食譜 ID 加總份量，回傳首次出現順序
func groupServings(entries []recipe.MealPlanEntry) ([]int64, map[int64]int) {
	order := make([]int64, 0, len(entries))
	servings := make(map[int64]int, len(entries))
	for _, e := range entries {
		s := e.RequestedServings
		if s < 1 {
			s = 1
		}
		if _, ok := servings[e.RecipeID]; !ok {
			order = append(order, e.RecipeID)
		}
		servings[e.RecipeID] += s
	}
	return order, servings
}

func appendRecords(records []Record, r *recipe.Recipe, scale decimal.Decimal, scaled bool) []Record {
	for _, line := range r.Ingredients {
		rec := Record{
			Key:      ingredient.Normalize(line.Ingredient.Name),
			Unit:     line.Unit,
			Category: line.Ingredient.Category,
			Source:   r.Title,
		}
		if line.Quantity != nil {
			q := *line.Quantity
			if scaled {
				q = q.Mul(scale)
			}
			rec.Quantity = &q
		}
		records = append(records, rec)
	}
	return records
}
