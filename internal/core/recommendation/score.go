package recommendation

import (
	"math"
	"time"

	"github.com/kaushick2000/cookmate-backend/internal/core/recipe"
)

// DedupPreserveOrder 依 ID 去重，保留第一次出現的食譜
func DedupPreserveOrder(recipes []recipe.Recipe) []recipe.Recipe {
	seen := make(recipe.IDSet, len(recipes))
	out := make([]recipe.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if seen.Has(r.ID) {
			continue
		}
		seen.Add(r.ID)
		out = append(out, r)
	}
	return out
}

// DaysSinceCreation 建立至今的完整天數，至少為 1；沒有建立時間時為 1
func DaysSinceCreation(createdAt, now time.Time) int64 {
	if createdAt.IsZero() {
		return 1
	}
	days := int64(now.Sub(createdAt) / (24 * time.Hour))
	if days < 1 {
		return 1
	}
	return days
}

// TrendingScore rating*reviews*views*recency/days，recency = max(1, 30/days)
func TrendingScore(r recipe.Recipe, now time.Time) float64 {
	days := float64(DaysSinceCreation(r.CreatedAt, now))
	recency := math.Max(1.0, 30.0/days)
	return r.AverageRating * float64(r.TotalReviews) * float64(r.ViewCount) * recency / days
}
