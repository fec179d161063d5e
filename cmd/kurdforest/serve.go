package main

import (
	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/app"
)

func newServeCommand(resolve configResolver) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolve(cmd)
			if err != nil {
				return err
			}

			application, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return application.Run()
		},
	}
}

func newMigrateCommand(resolve configResolver) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolve(cmd)
			if err != nil {
				return err
			}

			db, err := app.OpenStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			app.NewLogger(cfg).Info("database migrations applied successfully", "driver", cfg.DatabaseDriver)
			return nil
		},
	}
}
