package notion

import (
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealpad/recipesync/internal/recipe"
)

func TestBuildProperties_FullRecord(t *testing.T) {
	props := buildProperties(&recipe.Recipe{
		Name:        "Pho",
		URL:         "https://example.com/pho",
		CuisineType: "Vietnamese",
		Category:    "Dinner",
		Keywords:    []string{"soup", "noodles"},
		PrepTime:    "PT20M",
		CookTime:    "PT1H30M",
		TotalTime:   "PT1H50M",
		RecipeYield: "4 servings",
		Notes:       "Char the onion first.",
		Description: "Hanoi-style beef noodle soup.",
	})

	title, ok := props[propName].(notionapi.TitleProperty)
	require.True(t, ok)
	require.Len(t, title.Title, 1)
	assert.Equal(t, "Pho", title.Title[0].Text.Content)

	urlProp, ok := props[propURL].(notionapi.URLProperty)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/pho", urlProp.URL)

	cuisine, ok := props[propCuisine].(notionapi.SelectProperty)
	require.True(t, ok)
	assert.Equal(t, "Vietnamese", cuisine.Select.Name)

	tags, ok := props[propTags].(notionapi.MultiSelectProperty)
	require.True(t, ok)
	require.Len(t, tags.MultiSelect, 2)
	assert.Equal(t, "soup", tags.MultiSelect[0].Name)

	prep, ok := props[propPrepTime].(notionapi.NumberProperty)
	require.True(t, ok)
	assert.Equal(t, float64(20), prep.Number)

	cook, ok := props[propCookTime].(notionapi.NumberProperty)
	require.True(t, ok)
	assert.Equal(t, float64(90), cook.Number)

	assert.Contains(t, props, propTotalTime)
	assert.Contains(t, props, propServings)
	assert.Contains(t, props, propNotes)
	assert.Contains(t, props, propDescription)
}

func TestBuildProperties_AbsentFieldsOmitted(t *testing.T) {
	props := buildProperties(&recipe.Recipe{Name: "Toast"})

	assert.Contains(t, props, propName)
	assert.NotContains(t, props, propURL)
	assert.NotContains(t, props, propCuisine)
	assert.NotContains(t, props, propCategory)
	assert.NotContains(t, props, propTags)
	assert.NotContains(t, props, propPrepTime)
	assert.NotContains(t, props, propCookTime)
	assert.NotContains(t, props, propNotes)
	assert.NotContains(t, props, propDescription)
}

func TestBuildProperties_UnparseableTimeOmitted(t *testing.T) {
	props := buildProperties(&recipe.Recipe{
		Name:     "Stew",
		PrepTime: "a while",
		CookTime: "45 min",
	})

	assert.NotContains(t, props, propPrepTime)
	cook, ok := props[propCookTime].(notionapi.NumberProperty)
	require.True(t, ok)
	assert.Equal(t, float64(45), cook.Number)
}
