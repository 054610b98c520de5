package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ahrav/go-prompteval/internal/aggregation"
	"github.com/ahrav/go-prompteval/internal/config"
	"github.com/ahrav/go-prompteval/internal/domain"
	"github.com/ahrav/go-prompteval/internal/experiment"
	"github.com/ahrav/go-prompteval/internal/llm"
	"github.com/ahrav/go-prompteval/internal/llm/providers"
	"github.com/ahrav/go-prompteval/internal/pipeline"
	"github.com/ahrav/go-prompteval/internal/score"
	"github.com/ahrav/go-prompteval/internal/store"
)

func newRunCmd() *cobra.Command {
	var (
		providerOverride string
		outputOverride   string
		redactPrompts    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute the full technique sweep and persist the results",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if providerOverride != "" {
				cfg.Providers = []string{providerOverride}
			}
			if outputOverride != "" {
				cfg.Output = outputOverride
			}

			creds, err := config.LoadCredentials()
			if err != nil {
				return err
			}
			if err := cfg.Validate(creds); err != nil {
				return err
			}

			techniques, err := cfg.ParsedTechniques()
			if err != nil {
				return err
			}
			cases := experiment.ExpandCases(cfg.Domains, techniques)

			logger := slog.Default()
			logger.Info("starting sweep",
				"cases", len(cases),
				"providers", cfg.Providers,
				"concurrency", cfg.Concurrency)

			multi := len(cfg.Providers) > 1
			var summaries []providerSummary
			for _, provider := range cfg.Providers {
				client, err := buildClient(provider, cfg, creds, logger, redactPrompts)
				if err != nil {
					return err
				}

				extractor, err := score.NewExtractor(logger)
				if err != nil {
					return err
				}
				executor := pipeline.NewExecutor(client, extractor, cfg.StageTimeout(), logger)

				path := outputPath(cfg.Output, provider, multi)
				sink := &documentSink{
					store:    store.NewFileStore(path),
					provider: provider,
					model:    cfg.Model(provider),
				}

				orch := experiment.NewOrchestrator(executor, sink, cfg.Concurrency, logger)
				records, err := orch.Run(cmd.Context(), cases)
				if err != nil {
					return fmt.Errorf("provider %s: %w", provider, err)
				}
				summaries = append(summaries, providerSummary{provider: provider, records: records, path: path})
			}

			out := cmd.OutOrStdout()
			for _, ps := range summaries {
				if multi {
					fmt.Fprintf(out, "\n=== %s (%s) ===\n", ps.provider, ps.path)
				}
				aggregation.Summarize(ps.records).WriteTable(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&providerOverride, "provider", "p", "", "run against a single provider, overriding the configured list")
	cmd.Flags().StringVarP(&outputOverride, "output", "o", "", "override the output document path")
	cmd.Flags().BoolVar(&redactPrompts, "redact-prompts", false, "omit prompt text from debug logs")
	return cmd
}

type providerSummary struct {
	provider string
	records  []domain.Record
	path     string
}

// documentSink persists a record sequence as one run document.
type documentSink struct {
	store    *store.FileStore
	provider string
	model    string
}

func (s *documentSink) Persist(records []domain.Record) error {
	return s.store.Save(&store.Document{
		RunID:     uuid.NewString(),
		Provider:  s.provider,
		Model:     s.model,
		CreatedAt: time.Now().UTC(),
		Records:   records,
	})
}

func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

// buildClient assembles the provider adapter with retry and logging
// decorators, innermost first.
func buildClient(provider string, cfg *config.Config, creds config.Credentials, logger *slog.Logger, redactPrompts bool) (llm.Client, error) {
	client, err := providers.New(provider, providers.Config{
		APIKey: creds.Key(provider),
		Model:  cfg.Model(provider),
	})
	if err != nil {
		return nil, err
	}
	client, err = llm.WithRetry(client, llm.DefaultRetryConfig(cfg.Retries), logger)
	if err != nil {
		return nil, err
	}
	return llm.WithLogging(client, logger, redactPrompts), nil
}

// outputPath suffixes the provider name when a sweep spans several providers
// so each run document lands in its own file.
func outputPath(base, provider string, multi bool) string {
	if !multi {
		return base
	}
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "_" + provider + ext
}
