// Package schema locates, scores, and transforms Schema.org recipe markup
// embedded in HTML documents.
package schema

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/mealpad/recipesync/internal/recipe"
)

const recipeType = "Recipe"

// Candidate is one parsed, type-checked structured-data block considered for
// becoming a recipe. Entity is the effective recipe entity after any @graph
// unwrap.
type Candidate struct {
	Entity map[string]any
	Score  int
}

// Extractor finds recipe-typed JSON-LD candidates in HTML documents.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor builds an Extractor. A nil logger disables logging.
func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Extract returns the qualifying candidates in a document ranked by
// completeness, best first. It fails with *recipe.NoSchemaFoundError when
// none qualify.
func (e *Extractor) Extract(html []byte, pageURL string) ([]Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, &recipe.NoSchemaFoundError{URL: pageURL, HTMLLen: len(html)}
	}

	blocks := 0
	var candidates []Candidate
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		blocks++
		var raw any
		// A malformed block must not abort the whole extraction.
		if err := json.Unmarshal([]byte(sel.Text()), &raw); err != nil {
			e.logger.Debug("skipping malformed json-ld block",
				zap.String("url", pageURL), zap.Error(err))
			return
		}
		entity, ok := qualify(raw)
		if !ok {
			return
		}
		candidates = append(candidates, Candidate{
			Entity: entity,
			Score:  scoreCandidate(entity),
		})
	})

	if len(candidates) == 0 {
		return nil, &recipe.NoSchemaFoundError{
			URL:          pageURL,
			HTMLLen:      len(html),
			JSONLDBlocks: blocks,
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	e.logger.Debug("extracted recipe candidates",
		zap.String("url", pageURL),
		zap.Int("blocks", blocks),
		zap.Int("candidates", len(candidates)),
		zap.Int("top_score", candidates[0].Score),
	)
	return candidates, nil
}

// qualify checks a parsed JSON-LD value against the candidate rules: a
// schema.org context, a Recipe type (possibly inside @graph), a name, and at
// least one of recipeIngredient or recipeInstructions.
func qualify(raw any) (map[string]any, bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, false
	}
	if !isSchemaOrgContext(obj["@context"]) {
		return nil, false
	}

	entity := obj
	if graph, ok := obj["@graph"].([]any); ok {
		entity = nil
		for _, node := range graph {
			m, ok := node.(map[string]any)
			if !ok {
				continue
			}
			if typeIncludes(m["@type"], recipeType) {
				entity = m
				break
			}
		}
		if entity == nil {
			return nil, false
		}
	}

	if !typeIncludes(entity["@type"], recipeType) {
		return nil, false
	}
	if _, ok := entity["name"]; !ok {
		return nil, false
	}
	_, hasIngredients := entity["recipeIngredient"]
	_, hasInstructions := entity["recipeInstructions"]
	if !hasIngredients && !hasInstructions {
		return nil, false
	}
	return entity, true
}

func isSchemaOrgContext(v any) bool {
	switch t := v.(type) {
	case string:
		return strings.Contains(t, "schema.org")
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.Contains(s, "schema.org") {
				return true
			}
		}
	}
	return false
}

// scoreCandidate rewards markup completeness so that pages embedding several
// recipe schemas (e.g. "related recipes" widgets) resolve to the richest one.
func scoreCandidate(entity map[string]any) int {
	score := 0
	for _, key := range []string{"name", "recipeIngredient", "recipeInstructions"} {
		if present(entity[key]) {
			score += 10
		}
	}
	for _, key := range []string{"recipeCuisine", "prepTime", "cookTime", "recipeYield"} {
		if present(entity[key]) {
			score += 2
		}
	}
	for _, key := range []string{"description", "author"} {
		if present(entity[key]) {
			score++
		}
	}
	score += lengthBonus(entity["recipeIngredient"])
	score += lengthBonus(entity["recipeInstructions"])
	return score
}

func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	default:
		return true
	}
}

// lengthBonus grants up to 5 extra points for list length.
func lengthBonus(v any) int {
	list, ok := v.([]any)
	if !ok {
		return 0
	}
	if len(list) > 5 {
		return 5
	}
	return len(list)
}
