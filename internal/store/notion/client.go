// Package notion syncs canonical recipes into a Notion database, one page
// per recipe, keyed by the source URL property.
package notion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jomei/notionapi"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mealpad/recipesync/internal/recipe"
	"github.com/mealpad/recipesync/internal/store"
)

// ErrEmptyName rejects records whose canonical name is blank.
var ErrEmptyName = errors.New("recipe name is empty")

// Service interfaces mirror the notionapi client methods the Client uses,
// so tests can substitute fakes.
type databaseService interface {
	Query(ctx context.Context, id notionapi.DatabaseID, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
}

type pageService interface {
	Create(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error)
	Update(ctx context.Context, id notionapi.PageID, req *notionapi.PageUpdateRequest) (*notionapi.Page, error)
}

type blockService interface {
	GetChildren(ctx context.Context, id notionapi.BlockID, pagination *notionapi.Pagination) (*notionapi.GetChildrenResponse, error)
	AppendChildren(ctx context.Context, id notionapi.BlockID, req *notionapi.AppendBlockChildrenRequest) (*notionapi.AppendBlockChildrenResponse, error)
	Delete(ctx context.Context, id notionapi.BlockID) (notionapi.Block, error)
}

// Config controls the Notion sync client.
type Config struct {
	Token       string
	DatabaseID  string
	Retry       store.RetryPolicy
	DeletePause time.Duration
	AppendPause time.Duration
	// CallsPerSecond bounds outbound API calls; <= 0 disables limiting.
	CallsPerSecond float64
}

// Client implements recipe.Store against the Notion API.
type Client struct {
	databases   databaseService
	pages       pageService
	blocks      blockService
	databaseID  notionapi.DatabaseID
	retry       store.RetryPolicy
	deletePause time.Duration
	appendPause time.Duration
	limiter     *rate.Limiter
	logger      *zap.Logger
}

// NewClient builds a Client from configuration.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("notion.token is required")
	}
	if cfg.DatabaseID == "" {
		return nil, fmt.Errorf("notion.database_id is required")
	}
	api := notionapi.NewClient(notionapi.Token(cfg.Token))
	return newClient(cfg, api.Database, api.Page, api.Block, logger), nil
}

// newClient wires explicit services (exercised directly by tests).
func newClient(cfg Config, databases databaseService, pages pageService, blocks blockService, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = store.DefaultRetryPolicy()
	}
	if cfg.DeletePause <= 0 {
		cfg.DeletePause = 350 * time.Millisecond
	}
	if cfg.AppendPause <= 0 {
		cfg.AppendPause = 500 * time.Millisecond
	}
	var limiter *rate.Limiter
	if cfg.CallsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.CallsPerSecond), 1)
	}
	return &Client{
		databases:   databases,
		pages:       pages,
		blocks:      blocks,
		databaseID:  notionapi.DatabaseID(cfg.DatabaseID),
		retry:       cfg.Retry,
		deletePause: cfg.DeletePause,
		appendPause: cfg.AppendPause,
		limiter:     limiter,
		logger:      logger,
	}
}

// FindByURL returns the page id whose URL property exactly matches url, or
// "" when no page exists. Store-side errors are wrapped and returned, never
// swallowed.
func (c *Client) FindByURL(ctx context.Context, url string) (string, error) {
	if err := c.waitBudget(ctx); err != nil {
		return "", err
	}
	resp, err := c.databases.Query(ctx, c.databaseID, &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: propURL,
			RichText: &notionapi.TextFilterCondition{Equals: url},
		},
		PageSize: 1,
	})
	if err != nil {
		return "", fmt.Errorf("query by url: %w", err)
	}
	if len(resp.Results) == 0 {
		return "", nil
	}
	return string(resp.Results[0].ID), nil
}

// Create inserts a new page with the full property set and content body.
func (c *Client) Create(ctx context.Context, r *recipe.Recipe) (string, error) {
	if !r.HasName() {
		return "", ErrEmptyName
	}
	var id string
	err := c.retry.Do(ctx, c.logger, func(ctx context.Context) error {
		if err := c.waitBudget(ctx); err != nil {
			return err
		}
		page, err := c.pages.Create(ctx, &notionapi.PageCreateRequest{
			Parent: notionapi.Parent{
				Type:       notionapi.ParentTypeDatabaseID,
				DatabaseID: c.databaseID,
			},
			Properties: buildProperties(r),
			Children:   contentBlocks(r),
		})
		if err != nil {
			return fmt.Errorf("create page: %w", err)
		}
		id = string(page.ID)
		return nil
	}, isConflictClass)
	if err != nil {
		return "", err
	}
	c.logger.Info("created recipe page",
		zap.String("page_id", id),
		zap.String("url", r.URL),
	)
	return id, nil
}

// Update replaces a page's properties atomically, then replaces its content.
// The retry policy wraps the property update and the content replacement
// independently, so a conflict while replacing content never re-runs the
// property update.
func (c *Client) Update(ctx context.Context, id string, r *recipe.Recipe) error {
	if !r.HasName() {
		return ErrEmptyName
	}
	err := c.retry.Do(ctx, c.logger, func(ctx context.Context) error {
		if err := c.waitBudget(ctx); err != nil {
			return err
		}
		_, err := c.pages.Update(ctx, notionapi.PageID(id), &notionapi.PageUpdateRequest{
			Properties: buildProperties(r),
		})
		if err != nil {
			return fmt.Errorf("update properties: %w", err)
		}
		return nil
	}, isConflictClass)
	if err != nil {
		return err
	}
	if err := c.replaceContent(ctx, id, r); err != nil {
		return err
	}
	c.logger.Info("updated recipe page",
		zap.String("page_id", id),
		zap.String("url", r.URL),
	)
	return nil
}

// replaceContent rebuilds the page body. The new body is built fully in
// memory first; delete-then-append runs as one retried unit, and a cursor of
// already-deleted block ids makes retry re-entry idempotent (a conflict
// mid-delete does not re-delete or double-append).
func (c *Client) replaceContent(ctx context.Context, id string, r *recipe.Recipe) error {
	body := contentBlocks(r)
	deleted := make(map[notionapi.BlockID]struct{})

	return c.retry.Do(ctx, c.logger, func(ctx context.Context) error {
		existing, err := c.listChildren(ctx, id)
		if err != nil {
			return err
		}
		for _, blockID := range existing {
			if _, done := deleted[blockID]; done {
				continue
			}
			if err := c.waitBudget(ctx); err != nil {
				return err
			}
			if _, err := c.blocks.Delete(ctx, blockID); err != nil {
				return fmt.Errorf("delete block %s: %w", blockID, err)
			}
			deleted[blockID] = struct{}{}
			if err := sleepCtx(ctx, c.deletePause); err != nil {
				return err
			}
		}
		if err := sleepCtx(ctx, c.appendPause); err != nil {
			return err
		}
		if err := c.waitBudget(ctx); err != nil {
			return err
		}
		if _, err := c.blocks.AppendChildren(ctx, notionapi.BlockID(id), &notionapi.AppendBlockChildrenRequest{
			Children: body,
		}); err != nil {
			return fmt.Errorf("append content: %w", err)
		}
		return nil
	}, isConflictClass)
}

// AttachImage appends an inline image block referencing a base64 data URL,
// used by the photo ingestion path.
func (c *Client) AttachImage(ctx context.Context, id string, dataURL string) error {
	return c.retry.Do(ctx, c.logger, func(ctx context.Context) error {
		if err := c.waitBudget(ctx); err != nil {
			return err
		}
		if _, err := c.blocks.AppendChildren(ctx, notionapi.BlockID(id), &notionapi.AppendBlockChildrenRequest{
			Children: []notionapi.Block{imageBlock(dataURL)},
		}); err != nil {
			return fmt.Errorf("append image: %w", err)
		}
		return nil
	}, isConflictClass)
}

// listChildren paginates through every existing content block under id.
func (c *Client) listChildren(ctx context.Context, id string) ([]notionapi.BlockID, error) {
	var ids []notionapi.BlockID
	cursor := notionapi.Cursor("")
	for {
		if err := c.waitBudget(ctx); err != nil {
			return nil, err
		}
		resp, err := c.blocks.GetChildren(ctx, notionapi.BlockID(id), &notionapi.Pagination{
			StartCursor: cursor,
			PageSize:    100,
		})
		if err != nil {
			return nil, fmt.Errorf("list blocks: %w", err)
		}
		for _, block := range resp.Results {
			ids = append(ids, block.GetID())
		}
		if !resp.HasMore {
			return ids, nil
		}
		cursor = notionapi.Cursor(resp.NextCursor)
	}
}

func (c *Client) waitBudget(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("store rate limit: %w", err)
	}
	return nil
}

// isConflictClass classifies store errors that indicate a transient
// concurrent-modification or throttling race; only these drive retries.
func isConflictClass(err error) bool {
	var apiErr *notionapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Code {
	case "conflict_error", "rate_limited":
		return true
	}
	return apiErr.Status == 409 || apiErr.Status == 429
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return fmt.Errorf("pause: %w", ctx.Err())
	}
}
