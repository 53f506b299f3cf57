package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nekogravitycat/league-admin-backend/internal/config"
	"github.com/nekogravitycat/league-admin-backend/internal/pkg/logger"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "leaguectl",
	Short:         "League admin maintenance tool",
	Long:          `leaguectl runs database migrations and offline roster exports against the league database.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		return logger.Init(cfg.LogLevel, cfg.AppEnv)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
