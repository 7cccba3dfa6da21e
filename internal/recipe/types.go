// Package recipe defines core types shared across subsystems.
package recipe

import (
	"strings"
	"time"
)

// Recipe is the canonical, normalized record every subsystem reads and
// writes. Optional string fields are empty when the source did not supply
// them.
type Recipe struct {
	Name         string        `json:"name"`
	Ingredients  []string      `json:"ingredients"`
	Instructions []Instruction `json:"instructions"`
	CuisineType  string        `json:"cuisineType,omitempty"`
	PrepTime     string        `json:"prepTime,omitempty"`
	CookTime     string        `json:"cookTime,omitempty"`
	TotalTime    string        `json:"totalTime,omitempty"`
	RecipeYield  string        `json:"recipeYield,omitempty"`
	Description  string        `json:"description,omitempty"`
	Category     string        `json:"category,omitempty"`
	Keywords     []string      `json:"keywords,omitempty"`
	Notes        string        `json:"notes,omitempty"`
	URL          string        `json:"url,omitempty"`
	Source       *Source       `json:"source,omitempty"`
}

// Instruction is one ordered preparation step.
type Instruction struct {
	Text string `json:"text"`
}

// Source records the provenance of an extracted recipe. RawSchema holds the
// structured-data entity the record was derived from and is never mutated
// after creation.
type Source struct {
	URL        string         `json:"url"`
	SchemaType string         `json:"schemaType"`
	RawSchema  map[string]any `json:"rawSchema"`
}

// HasName reports whether the recipe carries a non-blank name. Extraction
// never fails on a missing name, but store sync rejects records without one.
func (r *Recipe) HasName() bool {
	return r != nil && strings.TrimSpace(r.Name) != ""
}

// Page is the result of resolving a URL to HTML.
type Page struct {
	URL          string
	FinalURL     string
	StatusCode   int
	Body         []byte
	UsedHeadless bool
	Duration     time.Duration
}
