package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/oscardel13/calorie-tracker/config"
	"github.com/oscardel13/calorie-tracker/utils"
)

var (
	verbose bool
	envFile string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "caltrack",
	Short: "Weekly calorie and macro tracker",
	Long: `caltrack tracks calories, carbs, protein and fiber against weekly goals.

It serves the tracker's JSON API and moves the store in and out as JSON.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnvFile(envFile); err != nil {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
		cfg = config.Load()

		level := cfg.LogLevel
		if verbose {
			level = zapcore.DebugLevel.String()
		}
		var err error
		logger, err = utils.NewLogger(level)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Environment file to load")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(allowanceCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
