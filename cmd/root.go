package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizlab/internal/config"
	"github.com/abhisek/quizlab/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "quizlab",
	Short: "AI quiz generation, grading and progress analytics",
	Long: "Quizlab generates quizzes with an LLM, grades submissions with fuzzy and\n" +
		"semantic matching, and coaches learners on their weak topics.",
	SilenceUsage: true,
}

// Execute runs the root command until it returns or the process receives
// SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ./config/config.yaml or ./config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides storage settings)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads configuration, letting --db (highest priority) switch
// storage to a SQLite file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		if err := store.EnsureDir(p); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
		cfg.Storage = store.Config{Driver: store.DriverSQLite, DSN: p}
	}
	return cfg, nil
}
