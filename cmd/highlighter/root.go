package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/RaufunNazin/Highlighter/internal/config"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var apiURLFlag string
	var dataDirFlag string
	var logLevelFlag string

	ctx := newCommandContext(&configFlag, &apiURLFlag, &dataDirFlag, &logLevelFlag)

	rootCmd := &cobra.Command{
		Use:           "highlighter",
		Short:         "Client for the video highlight pipeline",
		Version:       fmt.Sprintf("%s (built %s, commit %s)", config.Version, config.BuildTime, config.GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env file is not an error.
			_ = godotenv.Load()
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "Remote service base URL")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Local data directory")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newLoginCommand(ctx))
	rootCmd.AddCommand(newRegisterCommand(ctx))
	rootCmd.AddCommand(newLogoutCommand(ctx))
	rootCmd.AddCommand(newWhoamiCommand(ctx))
	rootCmd.AddCommand(newGenerateCommand(ctx))
	rootCmd.AddCommand(newSegmentsCommand(ctx))
	rootCmd.AddCommand(newCreateCommand(ctx))
	rootCmd.AddCommand(newFetchCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newServeCommand(ctx))

	return rootCmd
}
