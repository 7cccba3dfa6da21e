package fetcher

import (
	"bytes"
	"encoding/json"

	"github.com/PuerkitoBio/goquery"
)

// HasRecipeMarkup reports whether the HTML contains any JSON-LD block whose
// declared type is or includes "Recipe". This is a cheap pre-check used to
// decide fetch escalation; full candidate validation happens in the schema
// package.
func HasRecipeMarkup(html []byte) bool {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return false
	}
	found := false
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var raw any
		if err := json.Unmarshal([]byte(sel.Text()), &raw); err != nil {
			return true
		}
		if declaresRecipe(raw) {
			found = true
			return false
		}
		return true
	})
	return found
}

func declaresRecipe(raw any) bool {
	obj, ok := raw.(map[string]any)
	if !ok {
		return false
	}
	if typeIsRecipe(obj["@type"]) {
		return true
	}
	graph, ok := obj["@graph"].([]any)
	if !ok {
		return false
	}
	for _, node := range graph {
		if m, ok := node.(map[string]any); ok && typeIsRecipe(m["@type"]) {
			return true
		}
	}
	return false
}

func typeIsRecipe(v any) bool {
	switch t := v.(type) {
	case string:
		return t == "Recipe"
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s == "Recipe" {
				return true
			}
		}
	}
	return false
}
