// Package cmd wires the command-line surface around the sync pipeline.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mealpad/recipesync/internal/config"
	"github.com/mealpad/recipesync/internal/logging"
)

var (
	cfgFile string
	cfg     config.Config
	logger  *zap.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipesync",
		Short: "Sync recipes from the web and from photos into a Notion database.",
		Long: `recipesync extracts Schema.org recipe markup from web pages (falling back
to a headless browser for client-rendered sites) or structured data from
recipe photos, normalizes it, and upserts it into a Notion database, one
page per recipe.`,
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			logger, err = logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			return nil
		},

		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a config file (optional; environment variables are always read)")

	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newPhotoCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
