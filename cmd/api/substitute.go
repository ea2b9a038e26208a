package main

import (
	"fmt"

	"github.com/spf13/cobra"

	aiservice "github.com/kaushick2000/cookmate-backend/internal/core/ai/service"
	"github.com/kaushick2000/cookmate-backend/internal/infrastructure/config"
	"github.com/kaushick2000/cookmate-backend/internal/pkg/common"
)

func substituteCommand(opts *config.Options) *cobra.Command {
	var useAI bool

	cmd := &cobra.Command{
		Use:   "substitute [ingredient...]",
		Short: "Print substitution suggestions for one or more ingredients",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			defer common.Sync()

			ctx := cmd.Context()

			var ai *aiservice.Service
			if useAI {
				if ai, err = aiservice.NewService(ctx, cfg, nil); err != nil {
					return err
				}
				if ai != nil {
					defer ai.Close()
				}
			}

			results := newResolver(cfg, ai).SuggestAll(ctx, args, useAI)
			out, err := common.ToJSONIndent(results)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&useAI, "ai", false, "Ask the configured AI provider as well")
	return cmd
}
