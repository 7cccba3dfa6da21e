package schema

import (
	"fmt"

	"github.com/mealpad/recipesync/internal/recipe"
)

// Transform converts one qualifying candidate into the canonical recipe
// model. It is a pure function: no I/O, and the same candidate always yields
// a field-wise equal result.
//
// The provenance RawSchema retains the post-@graph-unwrap entity, i.e. the
// exact object that was scored and transformed.
func Transform(c Candidate, pageURL string) *recipe.Recipe {
	entity := c.Entity

	r := &recipe.Recipe{
		Name:         firstString(entity["name"]),
		Ingredients:  stringList(entity["recipeIngredient"]),
		Instructions: instructions(entity["recipeInstructions"]),
		CuisineType:  firstString(entity["recipeCuisine"]),
		PrepTime:     firstString(entity["prepTime"]),
		CookTime:     firstString(entity["cookTime"]),
		TotalTime:    firstString(entity["totalTime"]),
		RecipeYield:  firstString(entity["recipeYield"]),
		Description:  firstString(entity["description"]),
		URL:          pageURL,
		Source: &recipe.Source{
			URL:        pageURL,
			SchemaType: schemaType(entity["@type"]),
			RawSchema:  entity,
		},
	}

	categories := stringList(entity["recipeCategory"])
	if len(categories) > 0 {
		r.Category = categories[0]
	}

	r.Keywords = splitKeywords(entity["keywords"])
	// Overflow categories fold into keywords rather than being discarded.
	if len(categories) > 1 {
		r.Keywords = append(r.Keywords, categories[1:]...)
	}

	if r.Ingredients == nil {
		r.Ingredients = []string{}
	}
	if r.Instructions == nil {
		r.Instructions = []recipe.Instruction{}
	}
	return r
}

// instructions accepts the three shapes recipeInstructions appears in: a
// plain string, an array of strings, and an array of {text: ...} objects.
// Any other object shape is stringified. Step order is preserved.
func instructions(v any) []recipe.Instruction {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if t == "" {
			return nil
		}
		return []recipe.Instruction{{Text: t}}
	case []any:
		out := make([]recipe.Instruction, 0, len(t))
		for _, item := range t {
			out = append(out, instructionStep(item))
		}
		return out
	default:
		return []recipe.Instruction{{Text: fmt.Sprint(t)}}
	}
}

func instructionStep(item any) recipe.Instruction {
	switch t := item.(type) {
	case string:
		return recipe.Instruction{Text: t}
	case map[string]any:
		if text, ok := t["text"].(string); ok {
			return recipe.Instruction{Text: text}
		}
		return recipe.Instruction{Text: fmt.Sprint(t)}
	default:
		return recipe.Instruction{Text: fmt.Sprint(t)}
	}
}

// schemaType resolves the provenance type label: array forms prefer the
// "Recipe" element and fall back to the literal; scalars pass through.
func schemaType(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s == recipeType {
				return s
			}
		}
		return recipeType
	default:
		return recipeType
	}
}
