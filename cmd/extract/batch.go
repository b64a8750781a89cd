package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"devisflow/internal/app"
	"devisflow/internal/domain"
	"devisflow/internal/progress"
	"devisflow/internal/service"
)

var (
	batchProvider string
	batchEnrich   bool
	batchSummary  bool
	batchAPIKey   string
	batchDemo     bool
	batchUser     string
)

func init() {
	f := rootCmd.Flags()
	f.StringVar(&batchProvider, "provider", string(domain.ProviderLocal), "LLM backend (openrouter, openai, anthropic, mistral, ollama, local)")
	f.BoolVar(&batchEnrich, "enrich", false, "send the text to the LLM backend")
	f.BoolVar(&batchSummary, "summary", false, "also request a summary for each file")
	f.StringVar(&batchAPIKey, "api-key", "", "API key for the backend (defaults to the configured key)")
	f.BoolVar(&batchDemo, "demo", false, "replace unrecognized documents with sample text")
	rootCmd.PersistentFlags().StringVar(&batchUser, "user", "cli", "user id for stored credentials and archive keys")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if batchDemo {
		cfg.Pipeline.DemoMode = true
	}

	a, err := app.Build(ctx, cfg, zap.L())
	if err != nil {
		return err
	}
	defer a.Close()

	files, err := readFiles(args)
	if err != nil {
		return err
	}

	req := domain.ExtractionRequest{
		UserID:      batchUser,
		RequestID:   uuid.New().String(),
		Files:       files,
		Provider:    domain.ProviderID(batchProvider),
		APIKey:      batchAPIKey,
		Enrich:      batchEnrich,
		WithSummary: batchSummary,
	}

	logs := progress.NewLogBook(cfg.Log.BufferSize, zap.L())
	result, err := a.Service.ProcessBatch(ctx, req, service.Tracker{Logs: logs})
	if err != nil {
		return fmt.Errorf("process batch: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("%d of %d file(s) failed", len(result.Errors), len(files))
	}
	return nil
}

func readFiles(paths []string) ([]domain.UploadedFile, error) {
	files := make([]domain.UploadedFile, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		files = append(files, domain.UploadedFile{
			Name:        filepath.Base(p),
			ContentType: "application/pdf",
			Data:        data,
		})
	}
	return files, nil
}
