package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaushick2000/cookmate-backend/internal/api/handlers"
	"github.com/kaushick2000/cookmate-backend/internal/api/handlers/health"
	"github.com/kaushick2000/cookmate-backend/internal/core/recipe"
	"github.com/kaushick2000/cookmate-backend/internal/core/recipe/recipetest"
	"github.com/kaushick2000/cookmate-backend/internal/core/recommendation"
	"github.com/kaushick2000/cookmate-backend/internal/core/shopping"
	"github.com/kaushick2000/cookmate-backend/internal/core/substitution"
	"github.com/kaushick2000/cookmate-backend/internal/infrastructure/config"
	"github.com/kaushick2000/cookmate-backend/internal/infrastructure/metrics"
	"github.com/kaushick2000/cookmate-backend/internal/pkg/common"
)

type stubSuggester struct {
	subs []substitution.Substitution
}

func (s stubSuggester) Suggest(context.Context, string) ([]substitution.Substitution, error) {
	return s.subs, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App:            config.AppConfig{Version: "test", Debug: false},
		Server:         config.ServerConfig{MaxBodyBytes: 1 << 16, AllowedOrigins: []string{"*"}},
		RateLimit:      config.RateLimitConfig{Enabled: true, Requests: 1000, Window: time.Minute},
		Recommendation: config.RecommendationConfig{DefaultLimit: 2, MaxLimit: 3},
	}
}

func testStore() *recipetest.Store {
	store := recipetest.NewStore(
		recipe.Recipe{
			ID: 1, Title: "Pancakes", BaseServings: 4, AverageRating: 4.5, IsVegetarian: true,
			Ingredients: []recipe.RecipeIngredient{
				{Ingredient: recipe.Ingredient{Name: "Flour"}, Quantity: recipe.Qty("2"), Unit: "cup"},
				{Ingredient: recipe.Ingredient{Name: "Milk"}, Quantity: recipe.Qty("1"), Unit: "cup"},
			},
		},
		recipe.Recipe{
			ID: 2, Title: "Crepes", BaseServings: 2, AverageRating: 3.9, IsVegetarian: true,
			Ingredients: []recipe.RecipeIngredient{
				{Ingredient: recipe.Ingredient{Name: "flour"}, Quantity: recipe.Qty("1"), Unit: "cup"},
			},
		},
		recipe.Recipe{ID: 3, Title: "Steak", BaseServings: 2, AverageRating: 4.8, CuisineType: "American"},
	)
	store.AddMealPlan(recipetest.MealPlan{
		UserID:    "u1",
		StartDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC),
		Entries: []recipe.MealPlanEntry{
			{RecipeID: 1, PlannedDate: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), RequestedServings: 8},
		},
	})
	return store
}

func setup(t *testing.T, store *recipetest.Store) (*gin.Engine, *metrics.Metrics) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)

	router := SetupRouter(Dependencies{
		Config:     testConfig(),
		Builder:    shopping.NewBuilder(store, store),
		Resolver:   substitution.NewResolver(substitution.WithSuggester(stubSuggester{subs: []substitution.Substitution{{Ingredient: "Tamari", Ratio: "1:1", Note: "gluten free"}}}, time.Second)),
		Engine:     recommendation.NewEngine(store, store.Views(), store.Favorites()),
		Activity:   store,
		Metrics:    m,
		AIProvider: "stub",
		Checks:     map[string]health.Check{"database": func(context.Context) error { return nil }},
	})
	return router, m
}

func perform(r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestShoppingListFromRecipes(t *testing.T) {
	r, _ := setup(t, testStore())

	w := perform(r, http.MethodPost, "/api/v1/shopping-lists/from-recipes", gin.H{"recipe_ids": []int64{1, 2}}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[handlers.ShoppingListResponse](t, w)
	assert.Equal(t, 2, resp.TotalItems)
	for _, it := range resp.Items {
		if it.Name == "flour" {
			assert.Equal(t, "3", it.Quantity.String())
			assert.Equal(t, []string{"Pancakes", "Crepes"}, it.Sources)
		}
	}
}

func TestShoppingListFromRecipesErrors(t *testing.T) {
	r, _ := setup(t, testStore())

	w := perform(r, http.MethodPost, "/api/v1/shopping-lists/from-recipes", gin.H{"recipe_ids": []int64{1, 99}}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, common.ErrCodeRecipeNotFound, decode[common.ErrorResponse](t, w).Code)

	w = perform(r, http.MethodPost, "/api/v1/shopping-lists/from-recipes", gin.H{"recipe_ids": []int64{}}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(r, http.MethodPost, "/api/v1/shopping-lists/from-recipes", gin.H{"ids": []int64{1}}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShoppingListFromMealPlans(t *testing.T) {
	r, _ := setup(t, testStore())
	user := map[string]string{"X-User-ID": "u1"}

	w := perform(r, http.MethodPost, "/api/v1/shopping-lists/from-meal-plans", gin.H{"as_of": "2024-06-03"}, user)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[handlers.ShoppingListResponse](t, w)
	require.Len(t, resp.Items, 2)
	for _, it := range resp.Items {
		if it.Name == "flour" {
			assert.Equal(t, "4", it.Quantity.String())
		}
	}

	w = perform(r, http.MethodPost, "/api/v1/shopping-lists/from-meal-plans", gin.H{"as_of": "2024-07-01"}, user)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, common.ErrCodeNoActiveMealPlans, decode[common.ErrorResponse](t, w).Code)

	w = perform(r, http.MethodPost, "/api/v1/shopping-lists/from-meal-plans", gin.H{"as_of": "06/03/2024"}, user)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(r, http.MethodPost, "/api/v1/shopping-lists/from-meal-plans", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestShoppingListStoreFailure(t *testing.T) {
	store := testStore()
	store.Fail = recipetest.ErrInjected
	r, _ := setup(t, store)

	w := perform(r, http.MethodPost, "/api/v1/shopping-lists/from-recipes", gin.H{"recipe_ids": []int64{1}}, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "injected")
}

func TestSubstitutions(t *testing.T) {
	r, _ := setup(t, testStore())

	w := perform(r, http.MethodGet, "/api/v1/substitutions?ingredient=Butter", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[handlers.SubstitutionResponse](t, w)
	assert.Equal(t, substitution.SourceRuleBased, resp.Source)
	assert.Equal(t, "Olive Oil", resp.Substitutions[0].Ingredient)

	w = perform(r, http.MethodGet, "/api/v1/substitutions?ingredient=soy+sauce&use_ai=true", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[handlers.SubstitutionResponse](t, w)
	assert.Equal(t, substitution.SourceAI, resp.Source)

	w = perform(r, http.MethodGet, "/api/v1/substitutions?ingredient=unobtainium", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[handlers.SubstitutionResponse](t, w)
	assert.Equal(t, substitution.SourceNone, resp.Source)
	assert.NotNil(t, resp.Substitutions)

	w = perform(r, http.MethodGet, "/api/v1/substitutions?ingredient=%20", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, common.ErrCodeIngredientRequired, decode[common.ErrorResponse](t, w).Code)

	w = perform(r, http.MethodGet, "/api/v1/substitutions?ingredient=milk&use_ai=maybe", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubstitutionsBatch(t *testing.T) {
	r, _ := setup(t, testStore())

	w := perform(r, http.MethodPost, "/api/v1/substitutions/batch",
		gin.H{"ingredients": []string{"milk", "eggs", "milk"}, "use_ai": false}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[handlers.BatchSubstitutionResponse](t, w)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "milk", resp.Results[0].Ingredient)
	assert.Equal(t, "eggs", resp.Results[1].Ingredient)

	w = perform(r, http.MethodPost, "/api/v1/substitutions/batch", gin.H{"ingredients": []string{}}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, common.ErrCodeIngredientRequired, decode[common.ErrorResponse](t, w).Code)

	w = perform(r, http.MethodPost, "/api/v1/substitutions/batch", gin.H{"use_ai": true}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, common.ErrCodeIngredientRequired, decode[common.ErrorResponse](t, w).Code)

	tooMany := make([]string, 51)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("item %d", i)
	}
	w = perform(r, http.MethodPost, "/api/v1/substitutions/batch", gin.H{"ingredients": tooMany}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, common.ErrCodeInvalidRequest, decode[common.ErrorResponse](t, w).Code)

	w = perform(r, http.MethodPost, "/api/v1/substitutions/batch", gin.H{"ingredients": []string{"milk"}, "useAI": true}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, common.ErrCodeInvalidRequest, decode[common.ErrorResponse](t, w).Code)
}

func TestRecommendations(t *testing.T) {
	r, _ := setup(t, testStore())

	w := perform(r, http.MethodGet, "/api/v1/recommendations?type=trending", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[handlers.RecommendationResponse](t, w)
	assert.Equal(t, recommendation.KindTrending, resp.Type)
	assert.Equal(t, 2, resp.Count)

	w = perform(r, http.MethodGet, "/api/v1/recommendations?type=bogus&limit=50", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[handlers.RecommendationResponse](t, w)
	assert.Equal(t, recommendation.KindPersonalized, resp.Type)
	assert.Equal(t, 3, resp.Count)

	w = perform(r, http.MethodGet, "/api/v1/recommendations?type=preferences&is_vegetarian=true&limit=3", nil, map[string]string{"X-User-ID": "u9"})
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[handlers.RecommendationResponse](t, w)
	require.Equal(t, 2, resp.Count)
	for _, rec := range resp.Recipes {
		assert.True(t, rec.IsVegetarian)
	}

	w = perform(r, http.MethodGet, "/api/v1/recommendations?limit=-1", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(r, http.MethodGet, "/api/v1/recommendations?limit=0", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(r, http.MethodGet, "/api/v1/recommendations?limit=ten", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, common.ErrCodeInvalidRequest, decode[common.ErrorResponse](t, w).Code)

	w = perform(r, http.MethodGet, "/api/v1/recommendations?is_vegan=sometimes", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(r, http.MethodGet, "/api/v1/recommendations?type=preferences&cuisine_type=american&is_vegetarian=false", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[handlers.RecommendationResponse](t, w)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, int64(3), resp.Recipes[0].ID)
}

func TestRecordViewAndFavorite(t *testing.T) {
	store := testStore()
	r, _ := setup(t, store)
	user := map[string]string{"X-User-ID": "u7"}

	w := perform(r, http.MethodPost, "/api/v1/recipes/2/views", nil, user)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = perform(r, http.MethodPost, "/api/v1/recipes/2/views", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	got, err := store.FindByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ViewCount)

	w = perform(r, http.MethodPost, "/api/v1/recipes/3/favorites", nil, user)
	require.Equal(t, http.StatusOK, w.Code)
	w = perform(r, http.MethodPost, "/api/v1/recipes/3/favorites", nil, user)
	require.Equal(t, http.StatusOK, w.Code)

	// 瀏覽與收藏會影響個人化推薦
	w = perform(r, http.MethodGet, "/api/v1/recommendations?type=history&limit=1", nil, user)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[handlers.RecommendationResponse](t, w)
	require.Len(t, resp.Recipes, 1)
	assert.Equal(t, int64(2), resp.Recipes[0].ID)

	favs, err := store.Favorites().IDsFor(context.Background(), "u7")
	require.NoError(t, err)
	assert.Len(t, favs, 1)
	assert.True(t, favs.Has(3))
}

func TestRecordViewAndFavoriteErrors(t *testing.T) {
	r, _ := setup(t, testStore())
	user := map[string]string{"X-User-ID": "u7"}

	w := perform(r, http.MethodPost, "/api/v1/recipes/99/views", nil, user)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, common.ErrCodeRecipeNotFound, decode[common.ErrorResponse](t, w).Code)

	w = perform(r, http.MethodPost, "/api/v1/recipes/abc/views", nil, user)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(r, http.MethodPost, "/api/v1/recipes/0/favorites", nil, user)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(r, http.MethodPost, "/api/v1/recipes/1/favorites", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(r, http.MethodPost, "/api/v1/recipes/99/favorites", nil, user)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateMealPlan(t *testing.T) {
	r, _ := setup(t, testStore())
	user := map[string]string{"X-User-ID": "u5"}

	w := perform(r, http.MethodPost, "/api/v1/meal-plans", gin.H{
		"name":       "weekend",
		"start_date": "2024-08-03",
		"end_date":   "2024-08-04",
		"entries": []gin.H{
			{"recipe_id": 2, "planned_date": "2024-08-03", "servings": 4},
			{"recipe_id": 2, "planned_date": "2024-08-04"},
		},
	}, user)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[handlers.MealPlanResponse](t, w)
	assert.Positive(t, created.ID)
	assert.Equal(t, 2, created.Entries)

	// Crepes 基準 2 人份，兩筆共 5 人份，倍率 2.5
	w = perform(r, http.MethodPost, "/api/v1/shopping-lists/from-meal-plans", gin.H{"as_of": "2024-08-03"}, user)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[handlers.ShoppingListResponse](t, w)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "flour", resp.Items[0].Name)
	assert.Equal(t, "2.5", resp.Items[0].Quantity.String())
}

func TestCreateMealPlanValidation(t *testing.T) {
	r, _ := setup(t, testStore())
	user := map[string]string{"X-User-ID": "u5"}
	entry := []gin.H{{"recipe_id": 1, "planned_date": "2024-08-03"}}

	cases := []struct {
		name   string
		body   gin.H
		status int
	}{
		{"missing dates", gin.H{"entries": entry}, http.StatusBadRequest},
		{"bad date format", gin.H{"start_date": "08/03/2024", "end_date": "2024-08-04", "entries": entry}, http.StatusBadRequest},
		{"no entries", gin.H{"start_date": "2024-08-03", "end_date": "2024-08-04", "entries": []gin.H{}}, http.StatusBadRequest},
		{"entry without recipe", gin.H{"start_date": "2024-08-03", "end_date": "2024-08-04", "entries": []gin.H{{"planned_date": "2024-08-03"}}}, http.StatusBadRequest},
		{"ends before start", gin.H{"start_date": "2024-08-04", "end_date": "2024-08-03", "entries": entry}, http.StatusBadRequest},
		{"unknown field", gin.H{"start_date": "2024-08-03", "end_date": "2024-08-04", "entries": entry, "owner": "x"}, http.StatusBadRequest},
		{"unknown recipe", gin.H{"start_date": "2024-08-03", "end_date": "2024-08-04", "entries": []gin.H{{"recipe_id": 99, "planned_date": "2024-08-03"}}}, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := perform(r, http.MethodPost, "/api/v1/meal-plans", tc.body, user)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
		})
	}

	w := perform(r, http.MethodPost, "/api/v1/meal-plans", gin.H{"start_date": "2024-08-03", "end_date": "2024-08-04", "entries": entry}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	r, _ := setup(t, testStore())

	w := perform(r, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ai_provider":"stub"`)

	perform(r, http.MethodGet, "/api/v1/substitutions?ingredient=milk", nil, nil)
	w = perform(r, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `cookmate_substitutions_total{source="rule-based"} 1`)
	assert.Contains(t, w.Body.String(), "cookmate_http_requests_total")
}

func TestRequestIDIsEchoed(t *testing.T) {
	r, _ := setup(t, testStore())

	w := perform(r, http.MethodGet, "/live", nil, map[string]string{"X-Request-ID": "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))

	w = perform(r, http.MethodGet, "/live", nil, nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
