package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mealpad/recipesync/internal/batch"
	"github.com/mealpad/recipesync/internal/fetcher"
	"github.com/mealpad/recipesync/internal/metrics"
	"github.com/mealpad/recipesync/internal/review"
	"github.com/mealpad/recipesync/internal/schema"
	"github.com/mealpad/recipesync/internal/store"
	"github.com/mealpad/recipesync/internal/store/notion"
)

func newSyncCmd() *cobra.Command {
	var (
		urlFile      string
		validateOnly bool
		overwrite    bool
		batchSize    int
	)

	cmd := &cobra.Command{
		Use:   "sync [urls...]",
		Short: "Extract recipes from URLs and sync them into the database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			urls := args
			if urlFile != "" {
				fromFile, err := batch.ReadURLFile(urlFile)
				if err != nil {
					return err
				}
				urls = append(urls, fromFile...)
			}
			if len(urls) == 0 {
				return fmt.Errorf("no URLs given: pass them as arguments or via --file")
			}

			if batchSize > 0 {
				cfg.Batch.Size = batchSize
			}

			storeClient, err := notion.NewClient(notionConfig(), logger)
			if err != nil {
				return err
			}

			if cfg.Metrics.Addr != "" {
				srv := metrics.NewServer(cfg.Metrics.Addr, logger)
				srv.Start()
				defer func() {
					ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
					defer cancel()
					_ = srv.Shutdown(ctx)
				}()
			}

			fetchCfg := fetcher.Config{
				UserAgent:          cfg.Fetch.UserAgent,
				Timeout:            cfg.FetchTimeout(),
				RenderTimeout:      cfg.RenderTimeout(),
				RenderPollInterval: time.Duration(cfg.Fetch.RenderPollMs) * time.Millisecond,
			}
			tiered := fetcher.NewTiered(
				fetcher.NewStaticFetcher(fetchCfg, logger),
				fetcher.NewChromedpRenderer(fetchCfg, logger),
				logger,
			)

			orchestrator := batch.New(
				tiered,
				schema.NewExtractor(logger),
				storeClient,
				review.NewStatic(overwrite),
				batch.Config{
					BatchSize:    cfg.Batch.Size,
					BatchDelay:   cfg.BatchDelay(),
					ValidateOnly: validateOnly,
				},
				logger,
			)

			result := orchestrator.Run(cmd.Context(), urls)
			if len(result.Failed) > 0 {
				return fmt.Errorf("%d of %d URLs failed", len(result.Failed), result.Total())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&urlFile, "file", "", "file with one URL per line")
	cmd.Flags().BoolVar(&validateOnly, "validate-only", false, "extract and validate without writing to the store")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace recipes that already exist in the database")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "URLs processed concurrently per batch (defaults from config)")

	return cmd
}

func notionConfig() notion.Config {
	return notion.Config{
		Token:      cfg.Notion.Token,
		DatabaseID: cfg.Notion.DatabaseID,
		Retry: store.RetryPolicy{
			MaxAttempts: cfg.Notion.MaxRetries,
			BaseDelay:   time.Duration(cfg.Notion.BackoffBaseMs) * time.Millisecond,
			MaxDelay:    time.Duration(cfg.Notion.BackoffMaxMs) * time.Millisecond,
		},
		DeletePause:    time.Duration(cfg.Notion.DeletePauseMs) * time.Millisecond,
		AppendPause:    time.Duration(cfg.Notion.AppendPauseMs) * time.Millisecond,
		CallsPerSecond: cfg.Notion.CallsPerSecond,
	}
}
