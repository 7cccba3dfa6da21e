package schema

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealpad/recipesync/internal/recipe"
)

func htmlWithBlocks(blocks ...string) []byte {
	page := "<html><head>"
	for _, b := range blocks {
		page += fmt.Sprintf(`<script type="application/ld+json">%s</script>`, b)
	}
	page += "</head><body><h1>Dinner</h1></body></html>"
	return []byte(page)
}

func TestExtract_NoBlocks(t *testing.T) {
	extractor := NewExtractor(nil)

	_, err := extractor.Extract([]byte("<html><body>just text</body></html>"), "https://example.com/r")

	var notFound *recipe.NoSchemaFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "https://example.com/r", notFound.URL)
	assert.Equal(t, 0, notFound.JSONLDBlocks)
	assert.Greater(t, notFound.HTMLLen, 0)
}

func TestExtract_MalformedBlockIsSkipped(t *testing.T) {
	html := htmlWithBlocks(
		`{this is not json`,
		`{"@context":"https://schema.org","@type":"Recipe","name":"Soup","recipeIngredient":["water"]}`,
	)
	extractor := NewExtractor(nil)

	candidates, err := extractor.Extract(html, "https://example.com/soup")

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Soup", candidates[0].Entity["name"])
}

func TestExtract_NonRecipeBlocksDoNotQualify(t *testing.T) {
	html := htmlWithBlocks(
		`{"@context":"https://schema.org","@type":"WebSite","name":"My Blog"}`,
		`{"@context":"https://schema.org","@type":"Recipe","name":"NoContent"}`,
	)
	extractor := NewExtractor(nil)

	_, err := extractor.Extract(html, "https://example.com/none")

	var notFound *recipe.NoSchemaFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, 2, notFound.JSONLDBlocks)
}

func TestExtract_SingleCandidate(t *testing.T) {
	html := htmlWithBlocks(
		`{"@context":"http://schema.org","@type":"Recipe","name":"Pasta","recipeIngredient":["pasta","salt"],"recipeInstructions":["Boil","Drain"]}`,
	)
	extractor := NewExtractor(nil)

	candidates, err := extractor.Extract(html, "https://example.com/pasta")

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Pasta", candidates[0].Entity["name"])
}

func TestExtract_RanksMoreCompleteCandidateFirst(t *testing.T) {
	sparse := `{"@context":"https://schema.org","@type":"Recipe","name":"Related","recipeIngredient":["thing"]}`
	rich := `{"@context":"https://schema.org","@type":"Recipe","name":"Main","recipeIngredient":["a","b","c"],` +
		`"recipeInstructions":["1","2","3"],"recipeCuisine":"Italian","prepTime":"PT10M","cookTime":"PT20M",` +
		`"recipeYield":"4","description":"Good","author":"Chef"}`
	extractor := NewExtractor(nil)

	// Sparse block first in document order; ranking must still prefer the
	// richer one.
	candidates, err := extractor.Extract(htmlWithBlocks(sparse, rich), "https://example.com/two")

	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "Main", candidates[0].Entity["name"])
	assert.Equal(t, "Related", candidates[1].Entity["name"])
	assert.Greater(t, candidates[0].Score, candidates[1].Score)
}

func TestExtract_GraphUnwrap(t *testing.T) {
	html := htmlWithBlocks(
		`{"@context":"https://schema.org","@graph":[` +
			`{"@type":"WebPage","name":"Page"},` +
			`{"@type":["Recipe","Thing"],"name":"Graph Recipe","recipeInstructions":["Mix"]}` +
			`]}`,
	)
	extractor := NewExtractor(nil)

	candidates, err := extractor.Extract(html, "https://example.com/graph")

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Graph Recipe", candidates[0].Entity["name"])
}

func TestExtract_RejectsForeignContext(t *testing.T) {
	html := htmlWithBlocks(
		`{"@context":"https://example.org/vocab","@type":"Recipe","name":"X","recipeIngredient":["y"]}`,
	)
	extractor := NewExtractor(nil)

	_, err := extractor.Extract(html, "https://example.com/ctx")

	var notFound *recipe.NoSchemaFoundError
	require.True(t, errors.As(err, &notFound))
}

func TestScoreCandidate_MonotonicInCompleteness(t *testing.T) {
	base := map[string]any{
		"name":             "A",
		"recipeIngredient": []any{"x"},
	}
	richer := map[string]any{
		"name":               "A",
		"recipeIngredient":   []any{"x"},
		"recipeInstructions": []any{"s1", "s2"},
		"prepTime":           "PT5M",
	}
	assert.Greater(t, scoreCandidate(richer), scoreCandidate(base))
}

func TestLengthBonus_Capped(t *testing.T) {
	long := []any{"1", "2", "3", "4", "5", "6", "7", "8"}
	assert.Equal(t, 5, lengthBonus(long))
	assert.Equal(t, 2, lengthBonus([]any{"1", "2"}))
	assert.Equal(t, 0, lengthBonus("scalar"))
}
