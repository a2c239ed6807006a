package main

import (
	"log/slog"
	"os"

	"fnsearch/internal/gateway/config"
	"fnsearch/internal/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger

	rootCmd = &cobra.Command{
		Use:           "scrape",
		Short:         "Mirror published Elm packages and index their exported functions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()
			loaded, err := config.LoadFile(configPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				loaded.Log.Level = logLevel
			}
			cfg = loaded
			logger = logging.Setup(cmd.ErrOrStderr(), logging.ParseLevel(cfg.Log.Level), cfg.Log.Color)
			return nil
		},
	}

	syncCmd = &cobra.Command{
		Use:   "sync",
		Short: "Clone or update every catalog package and index it",
		Args:  cobra.NoArgs,
		RunE:  runSync,
	}

	parseCmd = &cobra.Command{
		Use:   "parse [file.elm]",
		Short: "Print the resolved exports of one Elm module as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runParse,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		Args:  cobra.NoArgs,
		RunE:  runMigrate,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("FNSEARCH_CONFIG"), "TOML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	syncCmd.Flags().StringVarP(&syncOpts.cacheDir, "cache-dir", "d", "", "directory for repositories to be cached in")
	syncCmd.Flags().IntVarP(&syncOpts.workers, "workers", "w", 0, "concurrent git processes")
	syncCmd.Flags().StringSliceVar(&syncOpts.only, "only", nil, "index only these packages (author/name)")
	syncCmd.Flags().StringVar(&syncOpts.notify, "notify", "", "API base URL to ask for an index refresh when done")

	rootCmd.AddCommand(syncCmd, parseCmd, migrateCmd)
}
