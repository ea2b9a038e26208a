// Package recommendation 依瀏覽紀錄、收藏、偏好與熱門度推薦食譜
package recommendation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kaushick2000/cookmate-backend/internal/core/recipe"
	"github.com/kaushick2000/cookmate-backend/internal/pkg/common"
)

// Kind 推薦類型
type Kind string

const (
	KindPersonalized Kind = "personalized"
	KindHistory      Kind = "history"
	KindPreferences  Kind = "preferences"
	KindTrending     Kind = "trending"
)

// ParseKind 解析推薦類型，未知或空字串視為 personalized
func ParseKind(s string) Kind {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindHistory, KindPreferences, KindTrending:
		return k
	default:
		return KindPersonalized
	}
}

const (
	minPersonalSignals = 5
	minTopRated        = 20
)

// Filters 偏好條件，nil 表示不篩選該欄位
type Filters struct {
	CuisineType  *string `json:"cuisine_type,omitempty"`
	MealType     *string `json:"meal_type,omitempty"`
	IsVegetarian *bool   `json:"is_vegetarian,omitempty"`
	IsVegan      *bool   `json:"is_vegan,omitempty"`
	IsGlutenFree *bool   `json:"is_gluten_free,omitempty"`
	IsDairyFree  *bool   `json:"is_dairy_free,omitempty"`
}

// Match 所有條件皆成立
func (f Filters) Match(r recipe.Recipe) bool {
	if f.CuisineType != nil && !strings.EqualFold(r.CuisineType, *f.CuisineType) {
		return false
	}
	if f.MealType != nil && !strings.EqualFold(r.MealType, *f.MealType) {
		return false
	}
	if f.IsVegetarian != nil && r.IsVegetarian != *f.IsVegetarian {
		return false
	}
	if f.IsVegan != nil && r.IsVegan != *f.IsVegan {
		return false
	}
	if f.IsGlutenFree != nil && r.IsGlutenFree != *f.IsGlutenFree {
		return false
	}
	if f.IsDairyFree != nil && r.IsDairyFree != *f.IsDairyFree {
		return false
	}
	return true
}

// Option 設定 Engine
type Option func(*Engine)

// WithClock 指定時間來源
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// Engine 推薦引擎，只讀取資料不修改
type Engine struct {
	recipes   recipe.RecipeStore
	views     recipe.ViewHistoryStore
	favorites recipe.FavoriteStore
	now       func() time.Time
}

// NewEngine 創建推薦引擎
func NewEngine(recipes recipe.RecipeStore, views recipe.ViewHistoryStore, favorites recipe.FavoriteStore, opts ...Option) *Engine {
	e := &Engine{
		recipes:   recipes,
		views:     views,
		favorites: favorites,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recommend 依類型分派，userID 為空字串表示未登入
func (e *Engine) Recommend(ctx context.Context, kind Kind, userID string, filters Filters, limit int) ([]recipe.Recipe, error) {
	common.LogDebug("產生推薦",
		zap.String("kind", string(kind)),
		zap.Bool("authenticated", userID != ""),
		zap.Int("limit", limit),
	)
	switch kind {
	case KindHistory:
		return e.ByHistory(ctx, userID, limit)
	case KindPreferences:
		return e.ByPreferences(ctx, userID, filters, limit)
	case KindTrending:
		return e.Trending(ctx, limit)
	default:
		return e.Personalized(ctx, userID, limit)
	}
}

// Personalized 最近瀏覽、收藏、高評分依序合併後去重
func (e *Engine) Personalized(ctx context.Context, userID string, limit int) ([]recipe.Recipe, error) {
	if limit <= 0 {
		return []recipe.Recipe{}, nil
	}

	var candidates []recipe.Recipe
	if userID != "" {
		fetch := max(limit/2, minPersonalSignals)

		viewed, err := e.views.RecentFor(ctx, userID, fetch)
		if err != nil {
			return nil, fmt.Errorf("load recent views: %w", err)
		}
		favorites, err := e.favorites.ListFor(ctx, userID, fetch)
		if err != nil {
			return nil, fmt.Errorf("load favorites: %w", err)
		}
		candidates = append(candidates, viewed...)
		candidates = append(candidates, favorites...)
	}

	top, err := e.recipes.TopRated(ctx, max(limit, minTopRated))
	if err != nil {
		return nil, fmt.Errorf("load top rated: %w", err)
	}
	candidates = append(candidates, top...)

	return truncate(DedupPreserveOrder(candidates), limit), nil
}

// ByHistory 以瀏覽紀錄為主，不足時以相同菜系或餐別的高評分食譜補足
func (e *Engine) ByHistory(ctx context.Context, userID string, limit int) ([]recipe.Recipe, error) {
	if limit <= 0 {
		return []recipe.Recipe{}, nil
	}
	if userID == "" {
		return e.topRated(ctx, limit)
	}

	viewed, err := e.views.RecentFor(ctx, userID, 2*limit)
	if err != nil {
		return nil, fmt.Errorf("load recent views: %w", err)
	}
	selected := truncate(DedupPreserveOrder(viewed), limit)
	if len(selected) == 0 {
		return e.topRated(ctx, limit)
	}
	if len(selected) == limit {
		return selected, nil
	}

	seen := make(recipe.IDSet, len(selected))
	cuisines := make(map[string]struct{})
	mealTypes := make(map[string]struct{})
	for _, r := range selected {
		seen.Add(r.ID)
		if r.CuisineType != "" {
			cuisines[r.CuisineType] = struct{}{}
		}
		if r.MealType != "" {
			mealTypes[r.MealType] = struct{}{}
		}
	}
	matchAll := len(cuisines) == 0 && len(mealTypes) == 0

	all, err := e.recipes.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	var similar []recipe.Recipe
	for _, r := range all {
		if seen.Has(r.ID) {
			continue
		}
		_, cuisineHit := cuisines[r.CuisineType]
		_, mealHit := mealTypes[r.MealType]
		if matchAll || cuisineHit || mealHit {
			similar = append(similar, r)
		}
	}
	sortByRating(similar)

	out := append(selected, truncate(similar, limit-len(selected))...)
	return DedupPreserveOrder(out), nil
}

// ByPreferences 依偏好條件篩選未看過也未收藏的食譜，沒有結果時改用高評分食譜
func (e *Engine) ByPreferences(ctx context.Context, userID string, filters Filters, limit int) ([]recipe.Recipe, error) {
	if limit <= 0 {
		return []recipe.Recipe{}, nil
	}

	excluded := make(recipe.IDSet)
	if userID != "" {
		viewed, err := e.views.IDsFor(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load viewed ids: %w", err)
		}
		favorites, err := e.favorites.IDsFor(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load favorite ids: %w", err)
		}
		for id := range viewed {
			excluded.Add(id)
		}
		for id := range favorites {
			excluded.Add(id)
		}
	}

	all, err := e.recipes.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	var matched []recipe.Recipe
	for _, r := range all {
		if excluded.Has(r.ID) || !filters.Match(r) {
			continue
		}
		matched = append(matched, r)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].AverageRating != matched[j].AverageRating {
			return matched[i].AverageRating > matched[j].AverageRating
		}
		return matched[i].ViewCount > matched[j].ViewCount
	})
	if len(matched) > 0 {
		return truncate(DedupPreserveOrder(matched), limit), nil
	}

	common.LogDebug("偏好推薦沒有結果，改用高評分食譜", zap.String("user_id", userID))
	top, err := e.recipes.TopRated(ctx, limit+len(excluded))
	if err != nil {
		return nil, fmt.Errorf("load top rated: %w", err)
	}
	fallback := make([]recipe.Recipe, 0, limit)
	for _, r := range DedupPreserveOrder(top) {
		if excluded.Has(r.ID) {
			continue
		}
		fallback = append(fallback, r)
	}
	return truncate(fallback, limit), nil
}

// Trending 依熱門分數排序
func (e *Engine) Trending(ctx context.Context, limit int) ([]recipe.Recipe, error) {
	if limit <= 0 {
		return []recipe.Recipe{}, nil
	}

	all, err := e.recipes.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	all = DedupPreserveOrder(all)

	now := e.now()
	scores := make(map[int64]float64, len(all))
	for _, r := range all {
		scores[r.ID] = TrendingScore(r, now)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return scores[all[i].ID] > scores[all[j].ID]
	})
	return truncate(all, limit), nil
}

func (e *Engine) topRated(ctx context.Context, limit int) ([]recipe.Recipe, error) {
	top, err := e.recipes.TopRated(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load top rated: %w", err)
	}
	return truncate(DedupPreserveOrder(top), limit), nil
}

func sortByRating(list []recipe.Recipe) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].AverageRating > list[j].AverageRating
	})
}

func truncate(list []recipe.Recipe, limit int) []recipe.Recipe {
	if limit <= 0 {
		return []recipe.Recipe{}
	}
	if len(list) > limit {
		return list[:limit]
	}
	if list == nil {
		return []recipe.Recipe{}
	}
	return list
}
