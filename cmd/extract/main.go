package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"devisflow/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "extract [files...]",
	Short: "Extract structured data from bedding quotes and invoices",
	Long:  "Reads PDF quotes, asks an LLM backend for a structured record and prints the batch result as JSON.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if _, err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
