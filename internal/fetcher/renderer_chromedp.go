package fetcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/mealpad/recipesync/internal/recipe"
)

// ChromedpRenderer resolves client-rendered pages by driving headless Chrome
// via chromedp. Each Render launches and tears down its own browser: the
// instance is a scoped, single-use resource, never shared across concurrent
// escalations.
type ChromedpRenderer struct {
	userAgent    string
	timeout      time.Duration
	pollInterval time.Duration
	logger       *zap.Logger
}

// NewChromedpRenderer creates a renderer using the provided configuration.
func NewChromedpRenderer(cfg Config, logger *zap.Logger) *ChromedpRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	poll := cfg.RenderPollInterval
	if poll <= 0 {
		poll = 250 * time.Millisecond
	}
	timeout := cfg.RenderTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ChromedpRenderer{
		userAgent:    cfg.UserAgent,
		timeout:      timeout,
		pollInterval: poll,
		logger:       logger,
	}
}

// Render navigates to the URL, waits for network quiescence, then polls the
// live DOM (bounded by the configured timeout) until recipe markup appears
// before extracting the rendered HTML.
func (r *ChromedpRenderer) Render(ctx context.Context, rawURL string) (recipe.Page, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.UserAgent(r.userAgent),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	taskCtx, cancelTask := context.WithTimeout(browserCtx, r.timeout)
	defer cancelTask()

	start := time.Now()
	meta := newResponseMeta()
	r.recordResponse(browserCtx, meta)

	if err := chromedp.Run(taskCtx,
		network.Enable(),
		emulation.SetUserAgentOverride(r.userAgent),
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return recipe.Page{}, fmt.Errorf("chromedp navigate: %w", err)
	}

	html, err := r.awaitRecipeMarkup(taskCtx, rawURL)
	if err != nil {
		return recipe.Page{}, err
	}

	return recipe.Page{
		URL:          rawURL,
		FinalURL:     meta.finalURL(rawURL),
		StatusCode:   meta.statusCode,
		Body:         []byte(html),
		UsedHeadless: true,
		Duration:     time.Since(start),
	}, nil
}

// awaitRecipeMarkup snapshots the DOM until markup appears or the task
// deadline expires.
func (r *ChromedpRenderer) awaitRecipeMarkup(ctx context.Context, rawURL string) (string, error) {
	var html string
	for {
		if err := chromedp.Run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
			return "", fmt.Errorf("chromedp snapshot: %w", err)
		}
		if HasRecipeMarkup([]byte(html)) {
			return html, nil
		}
		select {
		case <-ctx.Done():
			r.logger.Debug("render wait expired without recipe markup",
				zap.String("url", rawURL))
			return "", fmt.Errorf("recipe markup did not appear within %s: %w", r.timeout, ctx.Err())
		case <-time.After(r.pollInterval):
		}
	}
}

type responseMeta struct {
	once       sync.Once
	statusCode int
	url        string
}

func newResponseMeta() *responseMeta {
	return &responseMeta{}
}

func (m *responseMeta) finalURL(raw string) string {
	if m.url == "" {
		return raw
	}
	return m.url
}

func (r *ChromedpRenderer) recordResponse(browserCtx context.Context, meta *responseMeta) {
	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		resp, ok := ev.(*network.EventResponseReceived)
		if !ok || resp.Type != network.ResourceTypeDocument {
			return
		}
		meta.once.Do(func() {
			meta.statusCode = int(resp.Response.Status)
			meta.url = resp.Response.URL
		})
	})
}
