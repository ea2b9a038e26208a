package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kaushick2000/cookmate-backend/internal/core/recipe"
	"github.com/kaushick2000/cookmate-backend/internal/infrastructure/config"
	"github.com/kaushick2000/cookmate-backend/internal/infrastructure/database"
	"github.com/kaushick2000/cookmate-backend/internal/pkg/common"
)

// seedFixture 匯入檔格式，meal_plans 內的 recipe_id 指向同一檔案或資料庫中已有的食譜
type seedFixture struct {
	Recipes   []recipe.Recipe   `json:"recipes"`
	MealPlans []recipe.MealPlan `json:"meal_plans"`
}

func seedCommand(opts *config.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <fixture.json>",
		Short: "Load recipes and meal plans from a JSON fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			defer common.Sync()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			var fixture seedFixture
			if err := common.DecodeJSON(f, &fixture); err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}

			db, err := database.Open(cfg.Database, cfg.App.Debug)
			if err != nil {
				return err
			}
			defer database.Close(db)

			ctx := cmd.Context()
			store := database.NewStore(db)
			for i := range fixture.Recipes {
				if err := store.SaveRecipe(ctx, &fixture.Recipes[i]); err != nil {
					return fmt.Errorf("recipe %q: %w", fixture.Recipes[i].Title, err)
				}
			}
			for _, plan := range fixture.MealPlans {
				if _, err := store.SaveMealPlan(ctx, plan); err != nil {
					return fmt.Errorf("meal plan %q for %s: %w", plan.Name, plan.UserID, err)
				}
			}

			common.LogInfo("匯入完成",
				zap.Int("recipes", len(fixture.Recipes)),
				zap.Int("meal_plans", len(fixture.MealPlans)),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d recipes, %d meal plans\n", len(fixture.Recipes), len(fixture.MealPlans))
			return nil
		},
	}
}
