package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaushick2000/cookmate-backend/internal/core/recipe"
	"github.com/kaushick2000/cookmate-backend/internal/infrastructure/config"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(config.DatabaseConfig{
		Driver:      config.DriverSQLite,
		DSN:         filepath.Join(t.TempDir(), "test.db"),
		AutoMigrate: true,
	}, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	return NewStore(db)
}

func saveRecipe(t *testing.T, s *Store, r recipe.Recipe) recipe.Recipe {
	t.Helper()
	require.NoError(t, s.SaveRecipe(context.Background(), &r))
	return r
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "mysql", DSN: "x"}, false)
	assert.Error(t, err)
}

func TestSaveAndFindRecipe(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	saved := saveRecipe(t, s, recipe.Recipe{
		Title:        "Pancakes",
		BaseServings: 2,
		IsVegetarian: true,
		Ingredients: []recipe.RecipeIngredient{
			{Ingredient: recipe.Ingredient{Name: "Flour", Category: "baking"}, Quantity: recipe.Qty("1.5"), Unit: "cup"},
			{Ingredient: recipe.Ingredient{Name: "Salt"}, Unit: "pinch"},
		},
	})
	require.NotZero(t, saved.ID)

	got, err := s.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pancakes", got.Title)
	assert.Equal(t, 2, got.BaseServings)
	assert.True(t, got.IsVegetarian)
	require.Len(t, got.Ingredients, 2)
	assert.Equal(t, "Flour", got.Ingredients[0].Ingredient.Name)
	assert.Equal(t, "baking", got.Ingredients[0].Ingredient.Category)
	require.NotNil(t, got.Ingredients[0].Quantity)
	assert.True(t, got.Ingredients[0].Quantity.Equal(*recipe.Qty("1.5")))
	assert.Nil(t, got.Ingredients[1].Quantity)
	assert.Equal(t, "pinch", got.Ingredients[1].Unit)
}

func TestSaveRecipeSharesIngredients(t *testing.T) {
	s := openTestStore(t)
	saveRecipe(t, s, recipe.Recipe{Title: "A", Ingredients: []recipe.RecipeIngredient{{Ingredient: recipe.Ingredient{Name: "Egg"}}}})
	saveRecipe(t, s, recipe.Recipe{Title: "B", Ingredients: []recipe.RecipeIngredient{{Ingredient: recipe.Ingredient{Name: "egg"}}}})

	var count int64
	require.NoError(t, s.db.Model(&IngredientModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSaveRecipeDefaultsServings(t *testing.T) {
	s := openTestStore(t)
	saved := saveRecipe(t, s, recipe.Recipe{Title: "Soup"})
	assert.Equal(t, recipe.DefaultServings, saved.BaseServings)
}

func TestFindByIDNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.FindByID(context.Background(), 404)
	assert.ErrorIs(t, err, recipe.ErrNotFound)
}

func TestOrderedQueries(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	low := saveRecipe(t, s, recipe.Recipe{Title: "low", AverageRating: 2, CreatedAt: base.Add(48 * time.Hour)})
	high := saveRecipe(t, s, recipe.Recipe{Title: "high", AverageRating: 5, CreatedAt: base})
	mid := saveRecipe(t, s, recipe.Recipe{Title: "mid", AverageRating: 3.5, CreatedAt: base.Add(24 * time.Hour)})

	top, err := s.TopRated(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{high.ID, mid.ID}, ids(top))

	newest, err := s.ByCreatedDesc(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{low.ID, mid.ID, high.ID}, ids(newest))

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := s.TopRated(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestViewsAndFavorites(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	a := saveRecipe(t, s, recipe.Recipe{Title: "a"})
	b := saveRecipe(t, s, recipe.Recipe{Title: "b"})

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.RecordView(ctx, "u1", a.ID, now))
	require.NoError(t, s.RecordView(ctx, "u1", b.ID, now.Add(time.Minute)))
	require.NoError(t, s.RecordView(ctx, "", a.ID, now))
	assert.ErrorIs(t, s.RecordView(ctx, "u1", 999, now), recipe.ErrNotFound)

	recent, err := s.Views().RecentFor(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID, a.ID}, ids(recent))

	got, err := s.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ViewCount)

	viewed, err := s.Views().IDsFor(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, viewed.Has(a.ID))
	assert.True(t, viewed.Has(b.ID))

	require.NoError(t, s.AddFavorite(ctx, "u1", b.ID))
	require.NoError(t, s.AddFavorite(ctx, "u1", b.ID))
	assert.ErrorIs(t, s.AddFavorite(ctx, "u1", 999), recipe.ErrNotFound)
	favs, err := s.Favorites().ListFor(ctx, "u1", 5)
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID}, ids(favs))

	favIDs, err := s.Favorites().IDsFor(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, favIDs)
}

func TestActiveEntriesFor(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	r := saveRecipe(t, s, recipe.Recipe{Title: "stew"})
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	_, err := s.SaveMealPlan(ctx, recipe.MealPlan{
		UserID:    "u1",
		Name:      "week",
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 6),
		Entries: []recipe.MealPlanEntry{
			{RecipeID: r.ID, PlannedDate: start.AddDate(0, 0, 1), RequestedServings: 6},
			{RecipeID: r.ID, PlannedDate: start, RequestedServings: 0},
		},
	})
	require.NoError(t, err)

	entries, err := s.ActiveEntriesFor(ctx, "u1", start.Add(15*time.Hour))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].RequestedServings)
	assert.Equal(t, 6, entries[1].RequestedServings)

	outside, err := s.ActiveEntriesFor(ctx, "u1", start.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Empty(t, outside)

	other, err := s.ActiveEntriesFor(ctx, "u2", start)
	require.NoError(t, err)
	assert.Empty(t, other)

	_, err = s.SaveMealPlan(ctx, recipe.MealPlan{UserID: "u1", StartDate: start, EndDate: start.AddDate(0, 0, -1)})
	assert.ErrorIs(t, err, recipe.ErrInvalidMealPlan)

	_, err = s.SaveMealPlan(ctx, recipe.MealPlan{
		UserID:    "u3",
		StartDate: start,
		EndDate:   start,
		Entries:   []recipe.MealPlanEntry{{RecipeID: 999, PlannedDate: start}},
	})
	assert.ErrorIs(t, err, recipe.ErrNotFound)
	none, err := s.ActiveEntriesFor(ctx, "u3", start)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func ids(rs []recipe.Recipe) []int64 {
	out := make([]int64, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}
