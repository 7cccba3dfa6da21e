package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealpad/recipesync/internal/recipe"
	"github.com/mealpad/recipesync/internal/schema"
)

func recipePage(url string) recipe.Page {
	body := fmt.Sprintf(`<html><head><script type="application/ld+json">
		{"@context":"https://schema.org","@type":"Recipe","name":"Recipe for %s",
		 "recipeIngredient":["thing"],"recipeInstructions":["do it"]}
	</script></head><body></body></html>`, url)
	return recipe.Page{URL: url, StatusCode: 200, Body: []byte(body)}
}

// memFetcher serves canned pages and tracks peak concurrency.
type memFetcher struct {
	mu       sync.Mutex
	failing  map[string]error
	inFlight int
	peak     int
	calls    map[string]int
}

func newMemFetcher() *memFetcher {
	return &memFetcher{failing: map[string]error{}, calls: map[string]int{}}
}

func (f *memFetcher) Fetch(_ context.Context, rawURL string) (recipe.Page, error) {
	f.mu.Lock()
	f.calls[rawURL]++
	f.inFlight++
	if f.inFlight > f.peak {
		f.peak = f.inFlight
	}
	f.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	f.mu.Lock()
	f.inFlight--
	err := f.failing[rawURL]
	f.mu.Unlock()

	if err != nil {
		return recipe.Page{}, err
	}
	return recipePage(rawURL), nil
}

// memStore is an in-memory recipe.Store.
type memStore struct {
	mu        sync.Mutex
	existing  map[string]string
	created   []*recipe.Recipe
	updated   map[string]*recipe.Recipe
	createErr error
	findErr   error
	nextID    int
	panicOn   string
}

func newMemStore() *memStore {
	return &memStore{existing: map[string]string{}, updated: map[string]*recipe.Recipe{}}
}

func (s *memStore) FindByURL(_ context.Context, url string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return "", s.findErr
	}
	return s.existing[url], nil
}

func (s *memStore) Create(_ context.Context, r *recipe.Recipe) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.panicOn != "" && r.URL == s.panicOn {
		panic("store exploded")
	}
	if s.createErr != nil {
		return "", s.createErr
	}
	s.nextID++
	s.created = append(s.created, r)
	return fmt.Sprintf("id-%d", s.nextID), nil
}

func (s *memStore) Update(_ context.Context, id string, r *recipe.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updated[id] = r
	return nil
}

func (s *memStore) writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.created) + len(s.updated)
}

// scriptedReviewer answers overwrite prompts and review passes.
type scriptedReviewer struct {
	mu            sync.Mutex
	overwrite     bool
	cancel        bool
	edit          func(*recipe.Recipe) *recipe.Recipe
	confirmCalls  int
	reviewCalls   int
	confirmedURLs []string
}

func (r *scriptedReviewer) ConfirmOverwrite(_ context.Context, url string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.confirmCalls++
	r.confirmedURLs = append(r.confirmedURLs, url)
	return r.overwrite, nil
}

func (r *scriptedReviewer) Review(_ context.Context, rec *recipe.Recipe) (*recipe.Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reviewCalls++
	if r.cancel {
		return nil, nil
	}
	if r.edit != nil {
		return r.edit(rec), nil
	}
	return rec, nil
}

func testOrchestrator(f recipe.Fetcher, s recipe.Store, r recipe.Reviewer, cfg Config) *Orchestrator {
	if cfg.BatchDelay == 0 {
		cfg.BatchDelay = 10 * time.Millisecond
	}
	return New(f, schema.NewExtractor(nil), s, r, cfg, nil)
}

func urlList(n int) []string {
	urls := make([]string, 0, n)
	for i := 0; i < n; i++ {
		urls = append(urls, fmt.Sprintf("https://example.com/r/%d", i))
	}
	return urls
}

func TestRun_EveryURLExactlyOnceWithBoundedConcurrency(t *testing.T) {
	fetcher := newMemFetcher()
	store := newMemStore()
	o := testOrchestrator(fetcher, store, &scriptedReviewer{}, Config{BatchSize: 5})

	urls := urlList(7)
	result := o.Run(context.Background(), urls)

	require.NotEmpty(t, result.RunID)
	assert.Equal(t, 7, result.Total())
	assert.Len(t, result.Succeeded, 7)

	for _, url := range urls {
		assert.Equal(t, 1, fetcher.calls[url], url)
	}
	assert.LessOrEqual(t, fetcher.peak, 5)
	assert.Len(t, store.created, 7)
}

func TestRun_ExistingURLDeclinedIsSkipped(t *testing.T) {
	fetcher := newMemFetcher()
	store := newMemStore()
	store.existing["https://example.com/r/0"] = "page-0"
	reviewer := &scriptedReviewer{overwrite: false}
	o := testOrchestrator(fetcher, store, reviewer, Config{BatchSize: 5})

	result := o.Run(context.Background(), []string{"https://example.com/r/0", "https://example.com/r/1"})

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, ReasonAlreadyExists, result.Skipped[0].Reason)
	assert.Len(t, result.Succeeded, 1)
	// The declined URL must not be fetched or written.
	assert.Zero(t, fetcher.calls["https://example.com/r/0"])
	assert.Equal(t, 1, store.writes())
}

func TestRun_ExistingURLAcceptedIsUpdatedNotCreated(t *testing.T) {
	store := newMemStore()
	store.existing["https://example.com/r/0"] = "page-0"
	o := testOrchestrator(newMemFetcher(), store, &scriptedReviewer{overwrite: true}, Config{})

	result := o.Run(context.Background(), []string{"https://example.com/r/0", "https://example.com/r/1"})

	require.Len(t, result.Succeeded, 2)
	assert.Len(t, store.created, 1)
	require.Contains(t, store.updated, "page-0")

	ids := map[string]string{}
	for _, s := range result.Succeeded {
		ids[s.URL] = s.RecipeID
	}
	assert.Equal(t, "page-0", ids["https://example.com/r/0"])
}

func TestRun_ValidateOnlyNeverWrites(t *testing.T) {
	store := newMemStore()
	o := testOrchestrator(newMemFetcher(), store, &scriptedReviewer{}, Config{ValidateOnly: true})

	result := o.Run(context.Background(), urlList(3))

	require.Len(t, result.Succeeded, 3)
	for _, s := range result.Succeeded {
		assert.Empty(t, s.RecipeID)
	}
	assert.Zero(t, store.writes())
}

func TestRun_FailureIsIsolatedPerURL(t *testing.T) {
	fetcher := newMemFetcher()
	fetcher.failing["https://example.com/r/1"] = errors.New("origin unreachable")
	o := testOrchestrator(fetcher, newMemStore(), &scriptedReviewer{}, Config{})

	result := o.Run(context.Background(), urlList(3))

	assert.Len(t, result.Succeeded, 2)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "https://example.com/r/1", result.Failed[0].URL)
	assert.Contains(t, result.Failed[0].Error, "origin unreachable")
}

func TestRun_PanicRecordedAsFailure(t *testing.T) {
	store := newMemStore()
	store.panicOn = "https://example.com/r/1"
	o := testOrchestrator(newMemFetcher(), store, &scriptedReviewer{}, Config{})

	result := o.Run(context.Background(), urlList(3))

	assert.Len(t, result.Succeeded, 2)
	require.Len(t, result.Failed, 1)
	assert.Contains(t, result.Failed[0].Error, "panic")
}

func TestRun_SingleURLCancelledReview(t *testing.T) {
	store := newMemStore()
	o := testOrchestrator(newMemFetcher(), store, &scriptedReviewer{cancel: true}, Config{})

	result := o.Run(context.Background(), []string{"https://example.com/r/0"})

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, ReasonUserCancelled, result.Skipped[0].Reason)
	assert.Zero(t, store.writes())
}

func TestRun_SingleURLReviewEditIsStored(t *testing.T) {
	store := newMemStore()
	reviewer := &scriptedReviewer{edit: func(r *recipe.Recipe) *recipe.Recipe {
		edited := *r
		edited.Name = "Edited Name"
		return &edited
	}}
	o := testOrchestrator(newMemFetcher(), store, reviewer, Config{})

	result := o.Run(context.Background(), []string{"https://example.com/r/0"})

	require.Len(t, result.Succeeded, 1)
	require.Len(t, store.created, 1)
	assert.Equal(t, "Edited Name", store.created[0].Name)
}

func TestRun_MultipleURLsSkipInteractiveReview(t *testing.T) {
	reviewer := &scriptedReviewer{cancel: true}
	o := testOrchestrator(newMemFetcher(), newMemStore(), reviewer, Config{})

	result := o.Run(context.Background(), urlList(2))

	// cancel=true would skip both if review ran; it must not run.
	assert.Len(t, result.Succeeded, 2)
	assert.Zero(t, reviewer.reviewCalls)
}

func TestRun_NoRecipeMarkupFails(t *testing.T) {
	fetcher := &plainPageFetcher{}
	o := testOrchestrator(fetcher, newMemStore(), &scriptedReviewer{}, Config{})

	result := o.Run(context.Background(), []string{"https://example.com/article"})

	require.Len(t, result.Failed, 1)
	assert.Contains(t, result.Failed[0].Error, "no recipe schema")
}

func TestRun_StoreLookupErrorFails(t *testing.T) {
	store := newMemStore()
	store.findErr = errors.New("store unavailable")
	o := testOrchestrator(newMemFetcher(), store, &scriptedReviewer{}, Config{})

	result := o.Run(context.Background(), []string{"https://example.com/r/0"})

	require.Len(t, result.Failed, 1)
	assert.Contains(t, result.Failed[0].Error, "store unavailable")
}

type plainPageFetcher struct{}

func (plainPageFetcher) Fetch(_ context.Context, rawURL string) (recipe.Page, error) {
	return recipe.Page{URL: rawURL, StatusCode: 200, Body: []byte("<html><body>article</body></html>")}, nil
}
