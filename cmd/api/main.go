package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kaushick2000/cookmate-backend/internal/infrastructure/config"
	"github.com/kaushick2000/cookmate-backend/internal/pkg/common"
)

func main() {
	if err := rootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	var opts config.Options

	root := &cobra.Command{
		Use:           "cookmate",
		Short:         "CookMate shopping list, substitution and recommendation service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "Path to .env file (ignored when missing)")
	root.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "Optional config file (yaml, json or toml)")

	root.AddCommand(serveCommand(&opts))
	root.AddCommand(substituteCommand(&opts))
	root.AddCommand(migrateCommand(&opts))
	root.AddCommand(seedCommand(&opts))
	return root
}

// loadConfig 載入設定並初始化 logger
func loadConfig(opts *config.Options) (*config.Config, error) {
	cfg, err := config.LoadConfig(*opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(common.LoggerOptions{
		Level:   cfg.Log.Level,
		File:    cfg.Log.File,
		Service: cfg.App.Name,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}
