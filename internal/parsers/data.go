package parsers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/contentpipe/internal/content"
	"git.home.luguber.info/inful/contentpipe/internal/frontmatter"
)

// YAML parses a single YAML document. A mapping is merged into the record at
// top level; any other value (a list or a scalar) is stored under body.
type YAML struct{}

func (YAML) Name() string { return "yaml" }

func (y YAML) Parse(_ context.Context, id, raw string) (content.Parsed, error) {
	out := content.Parsed{content.KeyID: id}
	if strings.TrimSpace(raw) == "" {
		return out, nil
	}
	var doc any
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, parseError(err, y.Name(), id, "invalid yaml")
	}
	return placeDocument(out, doc), nil
}

// JSON parses a single JSON value with the same placement rules as YAML.
// Numbers are kept as json.Number so large integers survive unchanged.
type JSON struct{}

func (JSON) Name() string { return "json" }

func (j JSON) Parse(_ context.Context, id, raw string) (content.Parsed, error) {
	out := content.Parsed{content.KeyID: id}
	if strings.TrimSpace(raw) == "" {
		return out, nil
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, parseError(err, j.Name(), id, "invalid json")
	}
	if err := dec.Decode(new(any)); !errors.Is(err, io.EOF) {
		return nil, parseError(errTrailingData, j.Name(), id, "invalid json")
	}
	return placeDocument(out, doc), nil
}

var errTrailingData = errors.New("unexpected data after top-level value")

func placeDocument(out content.Parsed, doc any) content.Parsed {
	switch v := frontmatter.NormalizeValue(doc).(type) {
	case map[string]any:
		merge(out, v, true)
	case nil:
	default:
		out[content.KeyBody] = v
	}
	return out
}
