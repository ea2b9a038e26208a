// Package recipetest 提供測試用的記憶體儲存
package recipetest

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/kaushick2000/cookmate-backend/internal/core/recipe"
)

// ErrInjected 用於模擬儲存層故障
var ErrInjected = errors.New("injected store failure")

// MealPlan 記憶體中的餐點計畫
type MealPlan = recipe.MealPlan

var (
	_ recipe.RecipeStore   = (*Store)(nil)
	_ recipe.MealPlanStore = (*Store)(nil)
	_ recipe.ActivityStore = (*Store)(nil)
)

// Store 實作所有食譜相關介面的記憶體儲存
type Store struct {
	mu        sync.RWMutex
	recipes   []recipe.Recipe
	views     map[string][]int64 // 由新到舊
	favorites map[string][]int64
	plans     []MealPlan

	// Fail 不為 nil 時所有讀取與寫入回傳此錯誤
	Fail error
}

// NewStore 創建記憶體儲存
func NewStore(recipes ...recipe.Recipe) *Store {
	return &Store{
		recipes:   recipes,
		views:     make(map[string][]int64),
		favorites: make(map[string][]int64),
	}
}

// AddRecipe 新增食譜
func (s *Store) AddRecipe(r recipe.Recipe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipes = append(s.recipes, r)
}

// View 紀錄瀏覽，越晚呼叫越新；重複瀏覽會保留多筆
func (s *Store) View(userID string, ids ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.views[userID] = append([]int64{id}, s.views[userID]...)
	}
}

// Favorite 新增收藏，越晚呼叫越新
func (s *Store) Favorite(userID string, ids ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.favorites[userID] = append([]int64{id}, s.favorites[userID]...)
	}
}

// AddMealPlan 新增餐點計畫
func (s *Store) AddMealPlan(p MealPlan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans = append(s.plans, p)
}

// RecordView 增加瀏覽次數，userID 不為空時寫入瀏覽紀錄
func (s *Store) RecordView(_ context.Context, userID string, recipeID int64, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	i := s.indexOf(recipeID)
	if i < 0 {
		return recipe.ErrNotFound
	}
	s.recipes[i].ViewCount++
	if userID != "" {
		s.views[userID] = append([]int64{recipeID}, s.views[userID]...)
	}
	return nil
}

// AddFavorite 新增收藏，重複收藏不會出錯
func (s *Store) AddFavorite(_ context.Context, userID string, recipeID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	if s.indexOf(recipeID) < 0 {
		return recipe.ErrNotFound
	}
	if slices.Contains(s.favorites[userID], recipeID) {
		return nil
	}
	s.favorites[userID] = append([]int64{recipeID}, s.favorites[userID]...)
	return nil
}

// SaveMealPlan 新增餐點計畫，回傳從 1 開始的計畫 ID
func (s *Store) SaveMealPlan(_ context.Context, p recipe.MealPlan) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return 0, s.Fail
	}
	if p.EndDate.Before(p.StartDate) {
		return 0, recipe.ErrInvalidMealPlan
	}
	for _, e := range p.Entries {
		if s.indexOf(e.RecipeID) < 0 {
			return 0, recipe.ErrNotFound
		}
	}
	s.plans = append(s.plans, p)
	return int64(len(s.plans)), nil
}

func (s *Store) indexOf(id int64) int {
	return slices.IndexFunc(s.recipes, func(r recipe.Recipe) bool { return r.ID == id })
}

func (s *Store) FindByID(_ context.Context, id int64) (*recipe.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	for i := range s.recipes {
		if s.recipes[i].ID == id {
			r := s.recipes[i]
			return &r, nil
		}
	}
	return nil, recipe.ErrNotFound
}

func (s *Store) All(_ context.Context) ([]recipe.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	return append([]recipe.Recipe(nil), s.recipes...), nil
}

func (s *Store) TopRated(ctx context.Context, limit int) ([]recipe.Recipe, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].AverageRating > all[j].AverageRating })
	return truncate(all, limit), nil
}

func (s *Store) ByCreatedDesc(ctx context.Context, limit int) ([]recipe.Recipe, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return truncate(all, limit), nil
}

func (s *Store) RecentFor(_ context.Context, userID string, limit int) ([]recipe.Recipe, error) {
	return s.resolve(s.views, userID, limit)
}

func (s *Store) ListFor(_ context.Context, userID string, limit int) ([]recipe.Recipe, error) {
	return s.resolve(s.favorites, userID, limit)
}

// ViewedIDs 瀏覽過的食譜 ID
func (s *Store) ViewedIDs(_ context.Context, userID string) (recipe.IDSet, error) {
	return s.ids(s.views, userID)
}

// FavoriteIDs 收藏的食譜 ID
func (s *Store) FavoriteIDs(_ context.Context, userID string) (recipe.IDSet, error) {
	return s.ids(s.favorites, userID)
}

func (s *Store) ActiveEntriesFor(_ context.Context, userID string, date time.Time) ([]recipe.MealPlanEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	var out []recipe.MealPlanEntry
	for _, p := range s.plans {
		if p.UserID != userID || date.Before(p.StartDate) || date.After(p.EndDate) {
			continue
		}
		out = append(out, p.Entries...)
	}
	return out, nil
}

// Views 以 ViewHistoryStore 介面提供瀏覽紀錄
func (s *Store) Views() recipe.ViewHistoryStore { return viewStore{s} }

// Favorites 以 FavoriteStore 介面提供收藏
func (s *Store) Favorites() recipe.FavoriteStore { return favoriteStore{s} }

type viewStore struct{ *Store }

func (v viewStore) IDsFor(ctx context.Context, userID string) (recipe.IDSet, error) {
	return v.ViewedIDs(ctx, userID)
}

type favoriteStore struct{ *Store }

func (f favoriteStore) IDsFor(ctx context.Context, userID string) (recipe.IDSet, error) {
	return f.FavoriteIDs(ctx, userID)
}

func (s *Store) resolve(src map[string][]int64, userID string, limit int) ([]recipe.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	var out []recipe.Recipe
	for _, id := range src[userID] {
		if len(out) >= limit {
			break
		}
		for i := range s.recipes {
			if s.recipes[i].ID == id {
				out = append(out, s.recipes[i])
				break
			}
		}
	}
	return out, nil
}

func (s *Store) ids(src map[string][]int64, userID string) (recipe.IDSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	set := make(recipe.IDSet)
	set.Add(src[userID]...)
	return set, nil
}

func truncate(list []recipe.Recipe, limit int) []recipe.Recipe {
	if limit < 0 {
		limit = 0
	}
	if len(list) > limit {
		return list[:limit]
	}
	return list
}
