// Package pipeline turns a raw content file into a parsed record: it routes the
// file to a parser by extension, folds the extension's transformer chain over
// the result and brackets the work with the before/after-parse hooks.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/contentpipe/internal/content"
	"git.home.luguber.info/inful/contentpipe/internal/hooks"
	"git.home.luguber.info/inful/contentpipe/internal/logfields"
	"git.home.luguber.info/inful/contentpipe/internal/metrics"
)

// ParserSource resolves an extension to at most one parser.
type ParserSource interface {
	Get(ext string) (content.Parser, bool)
}

// TransformerSource resolves an extension to its ordered transformer chain.
type TransformerSource interface {
	Get(ext string) []content.Transformer
}

// HookCaller invokes every listener of a named hook and returns once all of
// them have completed.
type HookCaller interface {
	CallHook(ctx context.Context, name string, payload any) error
}

// Pipeline is safe for concurrent use as long as its sources are read-only,
// which the registry package guarantees.
type Pipeline struct {
	parsers      ParserSource
	transformers TransformerSource
	hooks        HookCaller
	logger       *slog.Logger
	recorder     metrics.Recorder
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for the unsupported-extension warning and
// debug tracing.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.recorder = r
		}
	}
}

// New creates a pipeline over the given collaborators. A nil hook caller
// behaves like a dispatcher with no listeners.
func New(parsers ParserSource, transformers TransformerSource, hookCaller HookCaller, opts ...Option) *Pipeline {
	if hookCaller == nil {
		hookCaller = hooks.NewDispatcher(nil)
	}
	p := &Pipeline{
		parsers:      parsers,
		transformers: transformers,
		hooks:        hookCaller,
		logger:       slog.Default(),
		recorder:     metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseContent parses one file.
//
// Listeners of hooks.BeforeParse receive a *content.File and may rewrite it;
// the extension, the parser input and the fallback record all use the
// rewritten values. When no parser handles the extension a warning is logged
// and {id, body} is returned as-is: no transformers run and hooks.AfterParse
// is not called. Otherwise the parser output is passed through each
// transformer in registry order, one at a time, and the final value is handed
// to hooks.AfterParse before being returned.
//
// Parser and transformer errors are returned unchanged, with no partial result.
// The context is passed through to collaborators; ParseContent itself never
// stops early because of it.
func (p *Pipeline) ParseContent(ctx context.Context, id, raw string) (content.Parsed, error) {
	start := time.Now()

	file := &content.File{ID: id, Content: raw}
	if err := p.hooks.CallHook(ctx, hooks.BeforeParse, file); err != nil {
		return nil, err
	}

	ext := file.Extension()
	parser, ok := p.parsers.Get(ext)
	if !ok {
		p.logger.Warn("extension not supported, falling back to raw content for "+file.ID,
			logfields.ID(file.ID), logfields.Extension(ext))
		p.recorder.IncOutcome(ext, metrics.OutcomeFallback)
		return content.Fallback(file), nil
	}

	parsed, err := parser.Parse(ctx, file.ID, file.Content)
	if err != nil {
		p.recorder.IncOutcome(ext, metrics.OutcomeFailed)
		return nil, err
	}

	result := parsed
	for _, t := range p.transformers.Get(ext) {
		input := result
		if input == nil {
			input = parsed
		}
		next, err := t.Transform(ctx, input)
		if err != nil {
			p.logger.Debug("Transformer failed",
				logfields.ID(file.ID), logfields.Transformer(t.Name()), logfields.Error(err))
			p.recorder.IncTransformFailure(t.Name())
			p.recorder.IncOutcome(ext, metrics.OutcomeFailed)
			return nil, err
		}
		result = next
	}

	if err := p.hooks.CallHook(ctx, hooks.AfterParse, result); err != nil {
		return nil, err
	}

	p.recorder.ObserveParseDuration(ext, time.Since(start))
	p.recorder.IncOutcome(ext, metrics.OutcomeParsed)
	p.logger.Debug("Parsed content",
		logfields.ID(file.ID), logfields.Parser(parser.Name()),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
	return result, nil
}
