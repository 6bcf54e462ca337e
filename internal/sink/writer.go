package sink

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/contentpipe/internal/content"
	"git.home.luguber.info/inful/contentpipe/internal/foundation/errors"
)

// Writer formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type encoder interface {
	Encode(v any) error
}

// Writer encodes records to an io.Writer, one JSON document per line or one
// YAML document per record.
type Writer struct {
	mu     sync.Mutex
	format string
	enc    encoder
	yenc   *yaml.Encoder
}

// NewWriter creates a stream sink. Unknown formats are a validation error.
func NewWriter(w io.Writer, format string) (*Writer, error) {
	s := &Writer{format: format}
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		s.enc = enc
	case FormatYAML:
		s.yenc = yaml.NewEncoder(w)
		s.yenc.SetIndent(2)
		s.enc = s.yenc
	default:
		return nil, errors.ValidationError("unsupported output format").
			WithContext("format", format).
			Build()
	}
	return s, nil
}

func (s *Writer) Name() string { return "writer:" + s.format }

func (s *Writer) Write(_ context.Context, rec content.Parsed) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(rec); err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "encode record").
			WithContext("id", rec.ID()).
			Build()
	}
	return nil
}

// Close flushes the YAML stream. The underlying writer is left open.
func (s *Writer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.yenc != nil {
		return s.yenc.Close()
	}
	return nil
}
