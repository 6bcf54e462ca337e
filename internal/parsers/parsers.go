// Package parsers provides the built-in content.Parser implementations:
// Markdown (with YAML frontmatter), YAML, JSON, CSV and HTML.
package parsers

import (
	"git.home.luguber.info/inful/contentpipe/internal/content"
	"git.home.luguber.info/inful/contentpipe/internal/foundation/errors"
)

// merge copies fields into p without touching the universal id field. Keys
// already present in p win unless overwrite is set.
func merge(p content.Parsed, fields map[string]any, overwrite bool) {
	for k, v := range fields {
		if k == content.KeyID {
			continue
		}
		if _, exists := p[k]; exists && !overwrite {
			continue
		}
		p[k] = v
	}
}

func parseError(err error, parser, id, msg string) error {
	return errors.WrapError(err, errors.CategoryParse, msg).
		WithContext("parser", parser).
		WithContext("id", id).
		Build()
}
