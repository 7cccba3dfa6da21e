package notion

import (
	"github.com/jomei/notionapi"

	"github.com/mealpad/recipesync/internal/recipe"
	"github.com/mealpad/recipesync/internal/store"
)

// Fixed property schema of the recipe database.
const (
	propName        = "Name"
	propURL         = "URL"
	propCuisine     = "Cuisine Type"
	propCategory    = "Category"
	propTags        = "Tags"
	propPrepTime    = "Prep Time"
	propCookTime    = "Cook Time"
	propTotalTime   = "Total Time"
	propServings    = "Servings"
	propNotes       = "Notes"
	propDescription = "Description"
)

// buildProperties maps the canonical fields onto the database's fixed
// property schema. Absent optional fields are omitted so existing values are
// not cleared with empty ones.
func buildProperties(r *recipe.Recipe) notionapi.Properties {
	props := notionapi.Properties{
		propName: notionapi.TitleProperty{
			Title: richText(r.Name),
		},
	}
	if r.URL != "" {
		props[propURL] = notionapi.URLProperty{URL: r.URL}
	}
	if r.CuisineType != "" {
		props[propCuisine] = notionapi.SelectProperty{
			Select: notionapi.Option{Name: r.CuisineType},
		}
	}
	if r.Category != "" {
		props[propCategory] = notionapi.SelectProperty{
			Select: notionapi.Option{Name: r.Category},
		}
	}
	if len(r.Keywords) > 0 {
		options := make([]notionapi.Option, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			options = append(options, notionapi.Option{Name: kw})
		}
		props[propTags] = notionapi.MultiSelectProperty{MultiSelect: options}
	}
	if minutes, ok := store.ParseMinutes(r.PrepTime); ok {
		props[propPrepTime] = notionapi.NumberProperty{Number: float64(minutes)}
	}
	if minutes, ok := store.ParseMinutes(r.CookTime); ok {
		props[propCookTime] = notionapi.NumberProperty{Number: float64(minutes)}
	}
	if r.TotalTime != "" {
		props[propTotalTime] = notionapi.RichTextProperty{RichText: richText(r.TotalTime)}
	}
	if r.RecipeYield != "" {
		props[propServings] = notionapi.RichTextProperty{RichText: richText(r.RecipeYield)}
	}
	if r.Notes != "" {
		props[propNotes] = notionapi.RichTextProperty{RichText: richText(r.Notes)}
	}
	if r.Description != "" {
		props[propDescription] = notionapi.RichTextProperty{RichText: richText(r.Description)}
	}
	return props
}

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{
		{Text: &notionapi.Text{Content: s}},
	}
}
