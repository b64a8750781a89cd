package main

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"devisflow/internal/app"
	"devisflow/internal/domain"
	"devisflow/internal/progress"
	"devisflow/internal/service"
)

var (
	summaryProvider string
	summaryAPIKey   string
)

var summaryCmd = &cobra.Command{
	Use:   "summary <file>",
	Short: "Print a business summary of one document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := app.Build(ctx, cfg, zap.L())
		if err != nil {
			return err
		}
		defer a.Close()

		files, err := readFiles(args)
		if err != nil {
			return err
		}

		logs := progress.NewLogBook(cfg.Log.BufferSize, zap.L())
		res, err := a.Service.Summarize(ctx, domain.SummaryRequest{
			UserID:    batchUser,
			RequestID: uuid.New().String(),
			File:      files[0],
			Provider:  domain.ProviderID(summaryProvider),
			APIKey:    summaryAPIKey,
		}, service.Tracker{Logs: logs})
		if err != nil {
			return fmt.Errorf("summarize: %w", err)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the enabled LLM backends",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.Build(cmd.Context(), cfg, zap.L())
		if err != nil {
			return err
		}
		defer a.Close()

		for _, s := range a.Gateway.Providers() {
			key := "no key"
			if s.RequiresKey {
				key = "key required"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-12s %-8s %s\n", s.ID, s.Label, s.Kind, key)
		}
		return nil
	},
}

func init() {
	summaryCmd.Flags().StringVar(&summaryProvider, "provider", string(domain.ProviderLocal), "LLM backend")
	summaryCmd.Flags().StringVar(&summaryAPIKey, "api-key", "", "API key for the backend")
	rootCmd.AddCommand(summaryCmd, providersCmd)
}
