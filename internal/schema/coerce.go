package schema

import (
	"fmt"
	"regexp"
	"strings"
)

var commaSplit = regexp.MustCompile(`,\s*`)

// firstString coerces a scalar-or-array field to its first string value.
// Returns "" when the field is absent, empty, or not text-like.
func firstString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		if len(t) == 0 {
			return ""
		}
		return firstString(t[0])
	default:
		return fmt.Sprint(t)
	}
}

// stringList coerces a scalar-or-array field to a string slice, wrapping
// scalars as a single element and preserving order.
func stringList(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := firstString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{fmt.Sprint(t)}
	}
}

// splitKeywords turns a raw keywords field into an ordered list. A single
// comma-separated string is split; an array is used as-is.
func splitKeywords(v any) []string {
	s, ok := v.(string)
	if !ok {
		return stringList(v)
	}
	parts := commaSplit.Split(s, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// typeIncludes reports whether a schema @type value is, or includes, want.
func typeIncludes(v any, want string) bool {
	switch t := v.(type) {
	case string:
		return t == want
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}
