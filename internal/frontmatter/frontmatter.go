// Package frontmatter splits YAML frontmatter from a document body and decodes it.
package frontmatter

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// ErrNotMapping is returned when the frontmatter decodes to something other
// than a mapping (a list or a bare scalar).
var ErrNotMapping = errors.New("yaml frontmatter is not a mapping")

// Split separates `---` delimited frontmatter from the body. LF and CRLF line
// endings are both accepted. If the document does not open with a delimiter
// line, had is false and body is the whole input.
func Split(raw string) (fm string, body string, had bool, err error) {
	nl := "\n"
	if strings.HasPrefix(raw, "---\r\n") {
		nl = "\r\n"
	} else if !strings.HasPrefix(raw, "---\n") {
		return "", raw, false, nil
	}

	rest := raw[len("---"+nl):]
	if after, ok := strings.CutPrefix(rest, "---"+nl); ok {
		return "", after, true, nil
	}
	if rest == "---" {
		return "", "", true, nil
	}

	closing := nl + "---" + nl
	idx := strings.Index(rest, closing)
	if idx < 0 {
		// A closing delimiter at EOF without trailing newline.
		if strings.HasSuffix(rest, nl+"---") {
			return rest[:len(rest)-len("---")], "", true, nil
		}
		return "", "", false, ErrMissingClosingDelimiter
	}
	return rest[:idx+len(nl)], rest[idx+len(closing):], true, nil
}

// Decode parses raw YAML frontmatter (without delimiters) into a map. Empty
// input yields an empty, non-nil map.
func Decode(fm string) (map[string]any, error) {
	if strings.TrimSpace(fm) == "" {
		return map[string]any{}, nil
	}
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(fm), &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return map[string]any{}, nil
	}
	if node.Content[0].Kind != yaml.MappingNode {
		return nil, ErrNotMapping
	}
	var fields map[string]any
	if err := node.Decode(&fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return map[string]any{}, nil
	}
	for k, v := range fields {
		fields[k] = NormalizeValue(v)
	}
	return fields, nil
}

// Parse splits raw and decodes its frontmatter.
func Parse(raw string) (fields map[string]any, body string, err error) {
	fm, body, _, err := Split(raw)
	if err != nil {
		return nil, "", err
	}
	fields, err = Decode(fm)
	if err != nil {
		return nil, "", fmt.Errorf("decode frontmatter: %w", err)
	}
	return fields, body, nil
}
