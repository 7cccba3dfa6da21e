// Package review provides non-interactive implementations of the reviewer
// collaborator. The interactive prompt surface lives outside this module;
// batch runs and tests use the static policy here.
package review

import (
	"context"

	"github.com/mealpad/recipesync/internal/recipe"
)

// Static answers the overwrite question with a fixed policy and passes
// recipes through review unchanged.
type Static struct {
	Overwrite bool
}

// NewStatic builds a Static reviewer.
func NewStatic(overwrite bool) *Static {
	return &Static{Overwrite: overwrite}
}

// ConfirmOverwrite returns the configured answer.
func (s *Static) ConfirmOverwrite(_ context.Context, _ string) (bool, error) {
	return s.Overwrite, nil
}

// Review approves the recipe as-is.
func (s *Static) Review(_ context.Context, r *recipe.Recipe) (*recipe.Recipe, error) {
	return r, nil
}
