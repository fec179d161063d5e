package main

import (
	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/app"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	app.LoadDotEnv()
	base := app.LoadConfig()

	rootCmd := &cobra.Command{
		Use:           "kurdforest",
		Short:         "KurdForest movie and TV watchlist service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path (YAML)")
	app.BindFlags(rootCmd.PersistentFlags(), base)

	// resolve layers the config file and flags over the environment
	resolve := func(cmd *cobra.Command) (app.Config, error) {
		return app.Resolve(base, configFlag, cmd.Flags())
	}

	rootCmd.AddCommand(newServeCommand(resolve))
	rootCmd.AddCommand(newMigrateCommand(resolve))
	rootCmd.AddCommand(newWatchlistCommand(resolve))

	return rootCmd
}

type configResolver func(cmd *cobra.Command) (app.Config, error)
