package vision

import (
	"encoding/json"
	"strings"

	"github.com/mealpad/recipesync/internal/recipe"
)

// ParsedRecipe is the shape the inference service is asked to produce. It is
// shape-compatible with the canonical model.
type ParsedRecipe struct {
	Name         string   `json:"name"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	CuisineType  string   `json:"cuisineType"`
	PrepTime     string   `json:"prepTime"`
	CookTime     string   `json:"cookTime"`
	TotalTime    string   `json:"totalTime"`
	RecipeYield  string   `json:"recipeYield"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	Keywords     []string `json:"keywords"`
}

// Recipe converts the parsed shape into the canonical model.
func (p *ParsedRecipe) Recipe() *recipe.Recipe {
	steps := make([]recipe.Instruction, 0, len(p.Instructions))
	for _, s := range p.Instructions {
		steps = append(steps, recipe.Instruction{Text: s})
	}
	ingredients := p.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	return &recipe.Recipe{
		Name:         p.Name,
		Ingredients:  ingredients,
		Instructions: steps,
		CuisineType:  p.CuisineType,
		PrepTime:     p.PrepTime,
		CookTime:     p.CookTime,
		TotalTime:    p.TotalTime,
		RecipeYield:  p.RecipeYield,
		Description:  p.Description,
		Category:     p.Category,
		Keywords:     p.Keywords,
	}
}

// ParseResponse recovers a JSON object from the inference response text.
// Models occasionally wrap the object in prose or code fences; the first
// balanced object is decoded. Fails with *recipe.ParsingError when no valid
// object is recoverable.
func ParseResponse(text string) (*ParsedRecipe, error) {
	raw := extractJSONObject(text)
	if raw == "" {
		return nil, &recipe.ParsingError{Detail: "no JSON object in response"}
	}
	var parsed ParsedRecipe
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, &recipe.ParsingError{Detail: err.Error()}
	}
	if parsed.Name == "" && len(parsed.Ingredients) == 0 && len(parsed.Instructions) == 0 {
		return nil, &recipe.ParsingError{Detail: "JSON object contains no recipe fields"}
	}
	return &parsed, nil
}

// extractJSONObject returns the first balanced {...} span, respecting
// strings and escapes.
func extractJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
