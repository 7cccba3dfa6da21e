package recipe

import "fmt"

// NoSchemaFoundError indicates a document yielded zero qualifying recipe
// schema blocks. It carries diagnostic context for pages where a recipe is
// visible to humans but not machine-readable.
type NoSchemaFoundError struct {
	URL          string
	HTMLLen      int
	JSONLDBlocks int
}

func (e *NoSchemaFoundError) Error() string {
	return fmt.Sprintf("no recipe schema found at %s (html %d bytes, %d json-ld blocks)",
		e.URL, e.HTMLLen, e.JSONLDBlocks)
}

// InvalidSchemaError indicates a candidate that passed selection but could
// not be transformed.
type InvalidSchemaError struct {
	Reason string
}

func (e *InvalidSchemaError) Error() string {
	return fmt.Sprintf("invalid recipe schema: %s", e.Reason)
}

// FetchError indicates both fetch tiers failed for a URL.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParsingError indicates a collaborator response that should contain a JSON
// object did not yield one.
type ParsingError struct {
	Detail string
}

func (e *ParsingError) Error() string {
	return fmt.Sprintf("parse response: %s", e.Detail)
}
