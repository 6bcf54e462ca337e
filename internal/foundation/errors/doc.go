// Package errors provides classified error primitives used across contentpipe.
//
// A ClassifiedError carries a category (config, parse, transform, store, ...),
// a severity and a small context map, and wraps an optional cause so that
// errors.Is and errors.As keep working through it.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryParse, "invalid frontmatter").
//		WithContext("id", file.ID).
//		Build()
//
// The pipeline core never wraps collaborator errors; classification happens
// at the edges (parsers, transformers, sinks, config loading, the CLI).
package errors
