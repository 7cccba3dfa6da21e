package batch

import (
	"sync"

	"go.uber.org/zap"
)

// Success records one synced URL and the store id it resolved to.
type Success struct {
	URL      string
	RecipeID string
}

// Failure records one URL whose pipeline raised an error.
type Failure struct {
	URL   string
	Error string
}

// Skip records one URL deliberately not processed.
type Skip struct {
	URL    string
	Reason string
}

// Result is the tri-state report of a batch run. It is built incrementally
// while the run executes and is immutable once Run returns; it is a
// process-local report, never persisted.
type Result struct {
	RunID string

	mu        sync.Mutex
	Succeeded []Success
	Failed    []Failure
	Skipped   []Skip
}

func (r *Result) addSuccess(url, recipeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Succeeded = append(r.Succeeded, Success{URL: url, RecipeID: recipeID})
}

func (r *Result) addFailure(url, errText string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failed = append(r.Failed, Failure{URL: url, Error: errText})
}

func (r *Result) addSkip(url, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Skipped = append(r.Skipped, Skip{URL: url, Reason: reason})
}

// Total returns how many URLs the run covered.
func (r *Result) Total() int {
	return len(r.Succeeded) + len(r.Failed) + len(r.Skipped)
}

// Log reports aggregate counts and enumerates every failed URL with its
// error message.
func (r *Result) Log(logger *zap.Logger) {
	if logger == nil {
		return
	}
	logger.Info("batch run complete",
		zap.String("run_id", r.RunID),
		zap.Int("succeeded", len(r.Succeeded)),
		zap.Int("failed", len(r.Failed)),
		zap.Int("skipped", len(r.Skipped)),
	)
	for _, f := range r.Failed {
		logger.Error("url failed",
			zap.String("run_id", r.RunID),
			zap.String("url", f.URL),
			zap.String("error", f.Error),
		)
	}
	for _, s := range r.Skipped {
		logger.Info("url skipped",
			zap.String("run_id", r.RunID),
			zap.String("url", s.URL),
			zap.String("reason", s.Reason),
		)
	}
}
