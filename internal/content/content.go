// Package content defines the values that flow through the parse pipeline:
// the raw File handed in by a caller, the Parsed record handed back, and the
// Parser and Transformer capabilities that turn one into the other.
package content

import (
	"context"
	"path"
)

// Field names with a fixed meaning across every parser.
const (
	KeyID   = "id"
	KeyBody = "body"
)

// File is a raw content file. Before-parse listeners receive a *File and may
// rewrite either field; the pipeline reads the fields only after they return.
type File struct {
	ID      string `json:"id" yaml:"id"`
	Content string `json:"content" yaml:"content"`
}

// Extension returns the dispatch key for the file.
func (f *File) Extension() string {
	return Extension(f.ID)
}

// Extension derives the lookup key for an identifier: the suffix starting at the
// last dot of the final slash-separated element, e.g. ".md". The result is used
// verbatim, so ".MD" and ".md" are different keys.
func Extension(id string) string {
	return path.Ext(id)
}

// Parsed is the structured result of parsing a File. Only KeyID has a universal
// contract; every other field belongs to whichever parser or transformer set it.
type Parsed map[string]any

// ID returns the identifier field, or "" when it is missing or not a string.
func (p Parsed) ID() string {
	id, _ := p[KeyID].(string)
	return id
}

// Body returns the body field when it holds a string.
func (p Parsed) Body() (string, bool) {
	body, ok := p[KeyBody].(string)
	return body, ok
}

// Clone returns a shallow copy. Transformers use it to return a new value
// instead of mutating the one they were handed.
func (p Parsed) Clone() Parsed {
	if p == nil {
		return nil
	}
	out := make(Parsed, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Fallback is the record produced when no parser handles an extension: the
// identifier and the untouched raw content.
func Fallback(f *File) Parsed {
	return Parsed{
		KeyID:   f.ID,
		KeyBody: f.Content,
	}
}

// Parser converts raw text into a Parsed record for one extension.
type Parser interface {
	Name() string
	Parse(ctx context.Context, id, content string) (Parsed, error)
}

// Transformer maps one Parsed record to another.
type Transformer interface {
	Name() string
	Transform(ctx context.Context, p Parsed) (Parsed, error)
}

// ParserFunc adapts a plain function to the Parser interface.
type ParserFunc struct {
	ID string
	Fn func(ctx context.Context, id, content string) (Parsed, error)
}

func (f ParserFunc) Name() string { return f.ID }

func (f ParserFunc) Parse(ctx context.Context, id, content string) (Parsed, error) {
	return f.Fn(ctx, id, content)
}

// TransformerFunc adapts a plain function to the Transformer interface.
type TransformerFunc struct {
	ID string
	Fn func(ctx context.Context, p Parsed) (Parsed, error)
}

func (f TransformerFunc) Name() string { return f.ID }

func (f TransformerFunc) Transform(ctx context.Context, p Parsed) (Parsed, error) {
	return f.Fn(ctx, p)
}
