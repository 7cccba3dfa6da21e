package recipe

import "context"

// Fetcher resolves a URL to HTML such that recipe markup, when present, is
// observable in the returned body.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Page, error)
}

// Store performs idempotent upserts against the remote structured store,
// keyed by source URL.
type Store interface {
	// FindByURL returns the store id of the record whose URL property
	// exactly matches url, or "" when no record exists.
	FindByURL(ctx context.Context, url string) (string, error)
	// Create inserts a new record and returns its store id.
	Create(ctx context.Context, r *Recipe) (string, error)
	// Update replaces properties and content of an existing record.
	Update(ctx context.Context, id string, r *Recipe) error
}

// Reviewer is the human-in-the-loop collaborator. Both calls may block
// indefinitely on user input.
type Reviewer interface {
	// ConfirmOverwrite asks whether an existing record for url should be
	// replaced.
	ConfirmOverwrite(ctx context.Context, url string) (bool, error)
	// Review presents a recipe for inspection and editing. A nil recipe
	// with a nil error means the user cancelled.
	Review(ctx context.Context, r *Recipe) (*Recipe, error)
}
