package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/mealpad/recipesync/internal/recipe"
)

// StaticFetcher performs the tier-1 static fetch using the Colly collector.
type StaticFetcher struct {
	baseCollector *colly.Collector
	logger        *zap.Logger
}

// NewStaticFetcher constructs a configured Colly-based fetcher.
func NewStaticFetcher(cfg Config, logger *zap.Logger) *StaticFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.IgnoreRobotsTxt(),
	)
	base.AllowURLRevisit = true
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
		ForceAttemptHTTP2:     true,
	})
	base.SetRequestTimeout(cfg.Timeout)

	return &StaticFetcher{
		baseCollector: base,
		logger:        logger,
	}
}

// Fetch retrieves a page via the configured Colly collector.
func (f *StaticFetcher) Fetch(ctx context.Context, rawURL string) (recipe.Page, error) {
	collector := f.baseCollector.Clone()
	resultCh := make(chan staticResult, 1)
	var once sync.Once
	send := func(res staticResult) {
		once.Do(func() {
			resultCh <- res
		})
	}

	start := time.Now()
	collector.OnResponse(func(r *colly.Response) {
		page := recipe.Page{
			URL:        rawURL,
			FinalURL:   r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       append([]byte{}, r.Body...),
			Duration:   time.Since(start),
		}
		send(staticResult{page: page})
	})
	collector.OnError(func(r *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown colly error")
		}
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		send(staticResult{err: fmt.Errorf("static fetch (status %d): %w", status, err)})
	})

	if err := collector.Visit(rawURL); err != nil {
		return recipe.Page{}, fmt.Errorf("static visit: %w", err)
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		if err := ctx.Err(); err != nil {
			return recipe.Page{}, err
		}
		return res.page, res.err
	default:
		return recipe.Page{}, errors.New("static fetch produced no result")
	}
}

type staticResult struct {
	page recipe.Page
	err  error
}
