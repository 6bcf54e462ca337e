// Package registry holds the extension-keyed lookup tables the pipeline
// dispatches on. A Builder collects registrations at startup; Build freezes them
// into read-only Parsers and Transformers values that are safe for concurrent use
// without locking.
package registry

import (
	"fmt"
	"sort"
	"strings"

	"git.home.luguber.info/inful/contentpipe/internal/content"
	"git.home.luguber.info/inful/contentpipe/internal/foundation/errors"
)

// Builder accumulates parser and transformer registrations.
type Builder struct {
	parsers      map[string]content.Parser
	transformers map[string][]entry
	seq          int
	errs         []string
}

type entry struct {
	t        content.Transformer
	priority int
	seq      int
}

// NewBuilder creates an empty registry builder.
func NewBuilder() *Builder {
	return &Builder{
		parsers:      make(map[string]content.Parser),
		transformers: make(map[string][]entry),
	}
}

// Parser registers p for each extension. Registering a second parser for an
// extension is an error reported by Build.
func (b *Builder) Parser(p content.Parser, extensions ...string) *Builder {
	if p == nil {
		b.errs = append(b.errs, "cannot register nil parser")
		return b
	}
	if len(extensions) == 0 {
		b.errs = append(b.errs, fmt.Sprintf("parser %s registered without extensions", p.Name()))
	}
	for _, ext := range extensions {
		if !validExtension(ext) {
			b.errs = append(b.errs, fmt.Sprintf("parser %s: invalid extension %q", p.Name(), ext))
			continue
		}
		if existing, ok := b.parsers[ext]; ok {
			b.errs = append(b.errs, fmt.Sprintf("extension %s already handled by parser %s", ext, existing.Name()))
			continue
		}
		b.parsers[ext] = p
	}
	return b
}

// Transformer registers t for each extension with a priority. Lower priorities
// run first; equal priorities run in name order, then registration order.
func (b *Builder) Transformer(t content.Transformer, priority int, extensions ...string) *Builder {
	if t == nil {
		b.errs = append(b.errs, "cannot register nil transformer")
		return b
	}
	if len(extensions) == 0 {
		b.errs = append(b.errs, fmt.Sprintf("transformer %s registered without extensions", t.Name()))
	}
	for _, ext := range extensions {
		if !validExtension(ext) {
			b.errs = append(b.errs, fmt.Sprintf("transformer %s: invalid extension %q", t.Name(), ext))
			continue
		}
		b.seq++
		b.transformers[ext] = append(b.transformers[ext], entry{t: t, priority: priority, seq: b.seq})
	}
	return b
}

// Build validates the registrations and returns the frozen registries.
func (b *Builder) Build() (*Parsers, *Transformers, error) {
	if len(b.errs) > 0 {
		return nil, nil, errors.ValidationError("invalid registry").
			WithContext("problems", strings.Join(b.errs, "; ")).
			Build()
	}

	parsers := &Parsers{byExt: make(map[string]content.Parser, len(b.parsers))}
	for ext, p := range b.parsers {
		parsers.byExt[ext] = p
	}

	transformers := &Transformers{byExt: make(map[string][]content.Transformer, len(b.transformers))}
	for ext, entries := range b.transformers {
		sorted := append([]entry(nil), entries...)
		sort.SliceStable(sorted, func(i, j int) bool {
			if sorted[i].priority != sorted[j].priority {
				return sorted[i].priority < sorted[j].priority
			}
			if sorted[i].t.Name() != sorted[j].t.Name() {
				return sorted[i].t.Name() < sorted[j].t.Name()
			}
			return sorted[i].seq < sorted[j].seq
		})
		chain := make([]content.Transformer, len(sorted))
		for i, e := range sorted {
			chain[i] = e.t
		}
		transformers.byExt[ext] = chain
	}
	return parsers, transformers, nil
}

func validExtension(ext string) bool {
	return len(ext) > 1 && strings.HasPrefix(ext, ".") && !strings.ContainsAny(ext, "/\\")
}

// Parsers resolves an extension to at most one parser.
type Parsers struct {
	byExt map[string]content.Parser
}

// Get returns the parser registered for ext. A missing parser is a normal outcome.
func (r *Parsers) Get(ext string) (content.Parser, bool) {
	if r == nil {
		return nil, false
	}
	p, ok := r.byExt[ext]
	return p, ok
}

// Extensions lists the registered extensions in sorted order.
func (r *Parsers) Extensions() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Transformers resolves an extension to its ordered transformer chain.
type Transformers struct {
	byExt map[string][]content.Transformer
}

// Get returns a copy of the chain for ext, in execution order. The slice is
// empty, never an error, when nothing is registered.
func (r *Transformers) Get(ext string) []content.Transformer {
	if r == nil {
		return nil
	}
	chain := r.byExt[ext]
	if len(chain) == 0 {
		return nil
	}
	return append([]content.Transformer(nil), chain...)
}

// Extensions lists the extensions that have at least one transformer.
func (r *Transformers) Extensions() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
