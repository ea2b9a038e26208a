package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kaushick2000/cookmate-backend/internal/infrastructure/config"
	"github.com/kaushick2000/cookmate-backend/internal/infrastructure/database"
	"github.com/kaushick2000/cookmate-backend/internal/pkg/common"
)

func migrateCommand(opts *config.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			defer common.Sync()

			dbCfg := cfg.Database
			dbCfg.AutoMigrate = false
			db, err := database.Open(dbCfg, cfg.App.Debug)
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.Migrate(db); err != nil {
				return err
			}
			common.LogInfo("資料表已更新", zap.String("driver", cfg.Database.Driver))
			fmt.Fprintln(cmd.OutOrStdout(), "migration complete")
			return nil
		},
	}
}
