// Package fetcher resolves URLs to HTML with a two-tier strategy: a fast
// static fetch, escalating to a scripted browser render only when the static
// result does not expose recipe markup.
package fetcher

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mealpad/recipesync/internal/recipe"
)

// Config controls both fetch tiers.
type Config struct {
	UserAgent          string
	Timeout            time.Duration
	RenderTimeout      time.Duration
	RenderPollInterval time.Duration
}

// Renderer is the tier-2 scripted-browser fetch.
type Renderer interface {
	Render(ctx context.Context, rawURL string) (recipe.Page, error)
}

// Tiered implements recipe.Fetcher. Tier-1 failures are a signal to try the
// renderer, not a fatal error; only tier-2 failure is surfaced to the
// caller.
type Tiered struct {
	static   recipe.Fetcher
	renderer Renderer
	logger   *zap.Logger
}

// NewTiered composes the static fetcher and the renderer.
func NewTiered(static recipe.Fetcher, renderer Renderer, logger *zap.Logger) *Tiered {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tiered{
		static:   static,
		renderer: renderer,
		logger:   logger,
	}
}

// Fetch returns HTML in which recipe markup, if the page has any, is
// observable.
func (t *Tiered) Fetch(ctx context.Context, rawURL string) (recipe.Page, error) {
	page, err := t.static.Fetch(ctx, rawURL)
	if err == nil && page.StatusCode < 400 && HasRecipeMarkup(page.Body) {
		return page, nil
	}
	if err != nil {
		t.logger.Debug("static fetch failed, escalating to renderer",
			zap.String("url", rawURL), zap.Error(err))
	} else {
		t.logger.Debug("static fetch lacked recipe markup, escalating to renderer",
			zap.String("url", rawURL), zap.Int("status", page.StatusCode))
	}

	rendered, renderErr := t.renderer.Render(ctx, rawURL)
	if renderErr != nil {
		return recipe.Page{}, &recipe.FetchError{URL: rawURL, Err: renderErr}
	}
	return rendered, nil
}
