package database

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kaushick2000/cookmate-backend/internal/core/recipe"
)

var (
	_ recipe.RecipeStore   = (*Store)(nil)
	_ recipe.MealPlanStore = (*Store)(nil)
	_ recipe.ActivityStore = (*Store)(nil)
)

// Store 實作 recipe 套件定義的讀取與活動寫入介面
type Store struct {
	db *gorm.DB
}

// NewStore 創建資料庫儲存
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) withRecipeLines(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Preload("Ingredients.Ingredient")
}

// FindByID 找不到時回傳 recipe.ErrNotFound
func (s *Store) FindByID(ctx context.Context, id int64) (*recipe.Recipe, error) {
	var m RecipeModel
	err := s.withRecipeLines(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, recipe.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find recipe %d: %w", id, err)
	}
	r := toRecipe(m)
	return &r, nil
}

// All 所有食譜，依 ID 排序
func (s *Store) All(ctx context.Context) ([]recipe.Recipe, error) {
	var models []RecipeModel
	if err := s.withRecipeLines(ctx).Order("id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return toRecipes(models), nil
}

// TopRated 依平均評分由高到低
func (s *Store) TopRated(ctx context.Context, limit int) ([]recipe.Recipe, error) {
	return s.ordered(ctx, "average_rating DESC, id ASC", limit)
}

// ByCreatedDesc 依建立時間由新到舊
func (s *Store) ByCreatedDesc(ctx context.Context, limit int) ([]recipe.Recipe, error) {
	return s.ordered(ctx, "created_at DESC, id DESC", limit)
}

func (s *Store) ordered(ctx context.Context, order string, limit int) ([]recipe.Recipe, error) {
	if limit <= 0 {
		return []recipe.Recipe{}, nil
	}
	var models []RecipeModel
	if err := s.withRecipeLines(ctx).Order(order).Limit(limit).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return toRecipes(models), nil
}

// byIDs 依傳入順序回傳食譜，已刪除的食譜略過
func (s *Store) byIDs(ctx context.Context, ids []int64) ([]recipe.Recipe, error) {
	if len(ids) == 0 {
		return []recipe.Recipe{}, nil
	}
	var models []RecipeModel
	if err := s.withRecipeLines(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("load recipes: %w", err)
	}
	index := make(map[int64]RecipeModel, len(models))
	for _, m := range models {
		index[m.ID] = m
	}
	out := make([]recipe.Recipe, 0, len(ids))
	for _, id := range ids {
		if m, ok := index[id]; ok {
			out = append(out, toRecipe(m))
		}
	}
	return out, nil
}

// ActiveEntriesFor 日期區間包含 date 的計畫中所有項目
func (s *Store) ActiveEntriesFor(ctx context.Context, userID string, date time.Time) ([]recipe.MealPlanEntry, error) {
	day := dateOnly(date)
	var rows []MealPlanRecipeModel
	err := s.db.WithContext(ctx).
		Joins("JOIN meal_plans ON meal_plans.id = meal_plan_recipes.meal_plan_id").
		Where("meal_plans.user_id = ? AND meal_plans.start_date <= ? AND meal_plans.end_date >= ?", userID, day, day).
		Order("meal_plan_recipes.planned_date ASC, meal_plan_recipes.id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load active meal plans: %w", err)
	}
	entries := make([]recipe.MealPlanEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, recipe.MealPlanEntry{
			RecipeID:          r.RecipeID,
			PlannedDate:       r.PlannedDate,
			RequestedServings: r.Servings,
		})
	}
	return entries, nil
}

// Views 瀏覽紀錄
func (s *Store) Views() *ViewStore { return &ViewStore{store: s} }

// Favorites 收藏
func (s *Store) Favorites() *FavoriteStore { return &FavoriteStore{store: s} }

// ViewStore 實作 recipe.ViewHistoryStore
type ViewStore struct {
	store *Store
}

// RecentFor 最近瀏覽的食譜，同一食譜多次瀏覽會重複出現
func (v *ViewStore) RecentFor(ctx context.Context, userID string, limit int) ([]recipe.Recipe, error) {
	if limit <= 0 {
		return []recipe.Recipe{}, nil
	}
	var ids []int64
	err := v.store.db.WithContext(ctx).Model(&RecentlyViewedModel{}).
		Where("user_id = ?", userID).
		Order("viewed_at DESC, id DESC").
		Limit(limit).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("load recent views: %w", err)
	}
	return v.store.byIDs(ctx, ids)
}

func (v *ViewStore) IDsFor(ctx context.Context, userID string) (recipe.IDSet, error) {
	return v.store.idSet(ctx, &RecentlyViewedModel{}, userID)
}

// FavoriteStore 實作 recipe.FavoriteStore
type FavoriteStore struct {
	store *Store
}

// ListFor 收藏的食譜，最新收藏在前
func (f *FavoriteStore) ListFor(ctx context.Context, userID string, limit int) ([]recipe.Recipe, error) {
	if limit <= 0 {
		return []recipe.Recipe{}, nil
	}
	var ids []int64
	err := f.store.db.WithContext(ctx).Model(&FavoriteModel{}).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}
	return f.store.byIDs(ctx, ids)
}

func (f *FavoriteStore) IDsFor(ctx context.Context, userID string) (recipe.IDSet, error) {
	return f.store.idSet(ctx, &FavoriteModel{}, userID)
}

func (s *Store) idSet(ctx context.Context, model any, userID string) (recipe.IDSet, error) {
	var ids []int64
	err := s.db.WithContext(ctx).Model(model).
		Where("user_id = ?", userID).
		Distinct().
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("load recipe ids: %w", err)
	}
	set := make(recipe.IDSet, len(ids))
	set.Add(ids...)
	return set, nil
}

// SaveRecipe 新增食譜，食材依名稱（不分大小寫）共用
func (s *Store) SaveRecipe(ctx context.Context, r *recipe.Recipe) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := RecipeModel{
			ID:            r.ID,
			Title:         r.Title,
			CuisineType:   r.CuisineType,
			MealType:      r.MealType,
			Servings:      r.BaseServings,
			AverageRating: r.AverageRating,
			TotalReviews:  r.TotalReviews,
			ViewCount:     r.ViewCount,
			IsVegetarian:  r.IsVegetarian,
			IsVegan:       r.IsVegan,
			IsGlutenFree:  r.IsGlutenFree,
			IsDairyFree:   r.IsDairyFree,
			CreatedAt:     r.CreatedAt,
		}
		if m.Servings <= 0 {
			m.Servings = recipe.DefaultServings
		}
		if err := tx.Omit("Ingredients").Create(&m).Error; err != nil {
			return fmt.Errorf("create recipe: %w", err)
		}

		for i, line := range r.Ingredients {
			ing, err := findOrCreateIngredient(tx, line.Ingredient)
			if err != nil {
				return err
			}
			row := RecipeIngredientModel{
				RecipeID:     m.ID,
				IngredientID: ing.ID,
				Position:     i,
				Unit:         line.Unit,
				Notes:        line.Notes,
			}
			if line.Quantity != nil {
				row.Quantity = decimal.NewNullDecimal(*line.Quantity)
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("create recipe ingredient: %w", err)
			}
		}

		r.ID = m.ID
		r.BaseServings = m.Servings
		r.CreatedAt = m.CreatedAt
		return nil
	})
}

func findOrCreateIngredient(tx *gorm.DB, in recipe.Ingredient) (IngredientModel, error) {
	name := strings.TrimSpace(in.Name)
	var ing IngredientModel
	err := tx.Where("LOWER(name) = LOWER(?)", name).First(&ing).Error
	if err == nil {
		return ing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return ing, fmt.Errorf("find ingredient %q: %w", name, err)
	}
	ing = IngredientModel{Name: name, Category: in.Category}
	if err := tx.Create(&ing).Error; err != nil {
		return ing, fmt.Errorf("create ingredient %q: %w", name, err)
	}
	return ing, nil
}

// RecordView 紀錄瀏覽並增加瀏覽次數
func (s *Store) RecordView(ctx context.Context, userID string, recipeID int64, at time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&RecipeModel{}).Where("id = ?", recipeID).
			UpdateColumn("view_count", gorm.Expr("view_count + 1"))
		if res.Error != nil {
			return fmt.Errorf("increment view count: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return recipe.ErrNotFound
		}
		if userID == "" {
			return nil
		}
		view := RecentlyViewedModel{UserID: userID, RecipeID: recipeID, ViewedAt: at.UTC()}
		if err := tx.Create(&view).Error; err != nil {
			return fmt.Errorf("record view: %w", err)
		}
		return nil
	})
}

// AddFavorite 新增收藏，重複收藏不會出錯
func (s *Store) AddFavorite(ctx context.Context, userID string, recipeID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireRecipes(tx, recipeID); err != nil {
			return err
		}
		fav := FavoriteModel{UserID: userID, RecipeID: recipeID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&fav).Error; err != nil {
			return fmt.Errorf("add favorite: %w", err)
		}
		return nil
	})
}

// SaveMealPlan 儲存餐點計畫與其項目，回傳計畫 ID
func (s *Store) SaveMealPlan(ctx context.Context, plan recipe.MealPlan) (int64, error) {
	if plan.EndDate.Before(plan.StartDate) {
		return 0, recipe.ErrInvalidMealPlan
	}
	m := MealPlanModel{
		UserID:    plan.UserID,
		Name:      plan.Name,
		StartDate: dateOnly(plan.StartDate),
		EndDate:   dateOnly(plan.EndDate),
	}
	recipeIDs := make([]int64, 0, len(plan.Entries))
	for _, e := range plan.Entries {
		servings := e.RequestedServings
		if servings <= 0 {
			servings = 1
		}
		m.Entries = append(m.Entries, MealPlanRecipeModel{
			RecipeID:    e.RecipeID,
			PlannedDate: dateOnly(e.PlannedDate),
			Servings:    servings,
		})
		recipeIDs = append(recipeIDs, e.RecipeID)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireRecipes(tx, recipeIDs...); err != nil {
			return err
		}
		if err := tx.Create(&m).Error; err != nil {
			return fmt.Errorf("create meal plan: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return m.ID, nil
}

// requireRecipes 任一食譜不存在時回傳 recipe.ErrNotFound
func requireRecipes(tx *gorm.DB, ids ...int64) error {
	want := make(recipe.IDSet, len(ids))
	want.Add(ids...)
	if len(want) == 0 {
		return nil
	}
	var count int64
	if err := tx.Model(&RecipeModel{}).Where("id IN ?", slices.Collect(maps.Keys(want))).Count(&count).Error; err != nil {
		return fmt.Errorf("check recipes: %w", err)
	}
	if int(count) != len(want) {
		return recipe.ErrNotFound
	}
	return nil
}

func toRecipes(models []RecipeModel) []recipe.Recipe {
	out := make([]recipe.Recipe, 0, len(models))
	for _, m := range models {
		out = append(out, toRecipe(m))
	}
	return out
}

func toRecipe(m RecipeModel) recipe.Recipe {
	r := recipe.Recipe{
		ID:            m.ID,
		Title:         m.Title,
		CuisineType:   m.CuisineType,
		MealType:      m.MealType,
		BaseServings:  m.Servings,
		AverageRating: m.AverageRating,
		TotalReviews:  m.TotalReviews,
		ViewCount:     m.ViewCount,
		CreatedAt:     m.CreatedAt,
		IsVegetarian:  m.IsVegetarian,
		IsVegan:       m.IsVegan,
		IsGlutenFree:  m.IsGlutenFree,
		IsDairyFree:   m.IsDairyFree,
	}
	for _, line := range m.Ingredients {
		ri := recipe.RecipeIngredient{
			Ingredient: recipe.Ingredient{Name: line.Ingredient.Name, Category: line.Ingredient.Category},
			Unit:       line.Unit,
			Notes:      line.Notes,
		}
		if line.Quantity.Valid {
			q := line.Quantity.Decimal
			ri.Quantity = &q
		}
		r.Ingredients = append(r.Ingredients, ri)
	}
	return r
}
