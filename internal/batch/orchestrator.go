// Package batch drives many source URLs through the
// fetch-extract-transform-review-sync pipeline in bounded-concurrency
// batches, isolating failures per URL.
package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mealpad/recipesync/internal/metrics"
	"github.com/mealpad/recipesync/internal/recipe"
	"github.com/mealpad/recipesync/internal/schema"
)

// Skip reasons surfaced in the batch report.
const (
	ReasonAlreadyExists = "Recipe already exists"
	ReasonUserCancelled = "User cancelled"
)

// Config controls batching behavior.
type Config struct {
	// BatchSize is the number of URLs processed concurrently (default 5).
	BatchSize int
	// BatchDelay is the pause between consecutive batches (default 1s),
	// the sole backpressure against the remote store.
	BatchDelay time.Duration
	// ValidateOnly stops after a successful extraction without writing to
	// the store.
	ValidateOnly bool
}

// Orchestrator runs the end-to-end pipeline for a set of source URLs.
type Orchestrator struct {
	fetcher   recipe.Fetcher
	extractor *schema.Extractor
	store     recipe.Store
	reviewer  recipe.Reviewer
	cfg       Config
	logger    *zap.Logger
}

// New constructs an Orchestrator. A nil logger disables logging.
func New(
	fetcher recipe.Fetcher,
	extractor *schema.Extractor,
	store recipe.Store,
	reviewer recipe.Reviewer,
	cfg Config,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	if cfg.BatchDelay <= 0 {
		cfg.BatchDelay = time.Second
	}
	return &Orchestrator{
		fetcher:   fetcher,
		extractor: extractor,
		store:     store,
		reviewer:  reviewer,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run processes every URL exactly once and returns the tri-state report.
// URLs are partitioned into consecutive batches of the configured size;
// within a batch they run concurrently, across batches strictly
// sequentially.
func (o *Orchestrator) Run(ctx context.Context, urls []string) *Result {
	result := &Result{RunID: uuid.NewString()}
	// Interactive review does not scale past a single item.
	interactive := len(urls) == 1

	o.logger.Info("batch run starting",
		zap.String("run_id", result.RunID),
		zap.Int("urls", len(urls)),
		zap.Int("batch_size", o.cfg.BatchSize),
		zap.Bool("validate_only", o.cfg.ValidateOnly),
	)

	for start := 0; start < len(urls); start += o.cfg.BatchSize {
		end := start + o.cfg.BatchSize
		if end > len(urls) {
			end = len(urls)
		}
		var wg sync.WaitGroup
		for _, url := range urls[start:end] {
			wg.Add(1)
			go func(url string) {
				defer wg.Done()
				o.processURL(ctx, url, interactive, result)
			}(url)
		}
		wg.Wait()

		if end < len(urls) {
			select {
			case <-time.After(o.cfg.BatchDelay):
			case <-ctx.Done():
			}
		}
	}

	result.Log(o.logger)
	return result
}

// processURL runs one URL's pipeline. Every error, including panics, is
// absorbed at this boundary so sibling URLs are never affected.
func (o *Orchestrator) processURL(ctx context.Context, url string, interactive bool, result *Result) {
	defer func() {
		if rec := recover(); rec != nil {
			o.logger.Error("pipeline panic",
				zap.String("url", url), zap.Any("panic", rec))
			o.fail(result, url, fmt.Sprintf("panic: %v", rec))
		}
	}()

	existingID, err := o.store.FindByURL(ctx, url)
	if err != nil {
		o.fail(result, url, err.Error())
		return
	}
	if existingID != "" {
		overwrite, err := o.reviewer.ConfirmOverwrite(ctx, url)
		if err != nil {
			o.fail(result, url, err.Error())
			return
		}
		if !overwrite {
			o.skip(result, url, ReasonAlreadyExists)
			return
		}
	}

	rec, err := o.extractRecipe(ctx, url)
	if err != nil {
		o.fail(result, url, err.Error())
		return
	}

	if o.cfg.ValidateOnly {
		o.succeed(result, url, "")
		return
	}

	if interactive {
		reviewed, err := o.reviewer.Review(ctx, rec)
		if err != nil {
			o.fail(result, url, err.Error())
			return
		}
		if reviewed == nil {
			o.skip(result, url, ReasonUserCancelled)
			return
		}
		rec = reviewed
	}

	id, err := o.sync(ctx, existingID, rec)
	if err != nil {
		o.fail(result, url, err.Error())
		return
	}
	o.succeed(result, url, id)
}

// extractRecipe covers fetch, extraction, and transformation of the
// top-ranked candidate.
func (o *Orchestrator) extractRecipe(ctx context.Context, url string) (*recipe.Recipe, error) {
	page, err := o.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	tier := "static"
	if page.UsedHeadless {
		tier = "headless"
		metrics.ObserveEscalation()
	}
	metrics.ObserveFetch(tier, page.Duration.Seconds())

	candidates, err := o.extractor.Extract(page.Body, url)
	if err != nil {
		return nil, err
	}
	metrics.ObserveCandidates(len(candidates))
	return schema.Transform(candidates[0], url), nil
}

func (o *Orchestrator) sync(ctx context.Context, existingID string, rec *recipe.Recipe) (string, error) {
	if existingID != "" {
		if err := o.store.Update(ctx, existingID, rec); err != nil {
			metrics.ObserveStoreCall("update", "error")
			return "", err
		}
		metrics.ObserveStoreCall("update", "ok")
		return existingID, nil
	}
	id, err := o.store.Create(ctx, rec)
	if err != nil {
		metrics.ObserveStoreCall("create", "error")
		return "", err
	}
	metrics.ObserveStoreCall("create", "ok")
	return id, nil
}

func (o *Orchestrator) succeed(result *Result, url, id string) {
	metrics.ObserveOutcome("succeeded")
	o.logger.Debug("url succeeded", zap.String("url", url), zap.String("recipe_id", id))
	result.addSuccess(url, id)
}

func (o *Orchestrator) fail(result *Result, url, errText string) {
	metrics.ObserveOutcome("failed")
	o.logger.Warn("url failed", zap.String("url", url), zap.String("error", errText))
	result.addFailure(url, errText)
}

func (o *Orchestrator) skip(result *Result, url, reason string) {
	metrics.ObserveOutcome("skipped")
	o.logger.Info("url skipped", zap.String("url", url), zap.String("reason", reason))
	result.addSkip(url, reason)
}
