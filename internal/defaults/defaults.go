// Package defaults assembles the built-in parsers, transformers and hook
// dispatcher from configuration.
package defaults

import (
	"log/slog"
	"slices"
	"sort"
	"strings"

	"git.home.luguber.info/inful/contentpipe/internal/config"
	"git.home.luguber.info/inful/contentpipe/internal/content"
	"git.home.luguber.info/inful/contentpipe/internal/foundation/errors"
	"git.home.luguber.info/inful/contentpipe/internal/hooks"
	"git.home.luguber.info/inful/contentpipe/internal/logfields"
	"git.home.luguber.info/inful/contentpipe/internal/metrics"
	"git.home.luguber.info/inful/contentpipe/internal/parsers"
	"git.home.luguber.info/inful/contentpipe/internal/pipeline"
	"git.home.luguber.info/inful/contentpipe/internal/registry"
	"git.home.luguber.info/inful/contentpipe/internal/transformers"
)

// Extensions handled by the built-in parsers.
var (
	MarkdownExtensions = []string{".md", ".markdown"}
	YAMLExtensions     = []string{".yaml", ".yml"}
	JSONExtensions     = []string{".json"}
	CSVExtensions      = []string{".csv"}
	HTMLExtensions     = []string{".html", ".htm"}
)

type builtinTransformer struct {
	t          content.Transformer
	priority   int
	extensions []string
}

func builtinTransformers() []builtinTransformer {
	all := slices.Concat(MarkdownExtensions, YAMLExtensions, JSONExtensions, CSVExtensions, HTMLExtensions)
	return []builtinTransformer{
		{transformers.PathMeta{}, 10, all},
		{transformers.StripHTMLComments{}, 20, MarkdownExtensions},
		{transformers.UID{}, 30, MarkdownExtensions},
		{transformers.Fingerprint{}, 90, MarkdownExtensions},
	}
}

// TransformerNames lists the built-in transformer names in priority order.
func TransformerNames() []string {
	specs := builtinTransformers()
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.t.Name()
	}
	return names
}

// Components bundles the frozen registries and the hook dispatcher.
type Components struct {
	Parsers      *registry.Parsers
	Transformers *registry.Transformers
	Hooks        *hooks.Dispatcher
	logger       *slog.Logger
}

// Build registers the built-in parsers and every transformer not disabled in
// cfg. Naming an unknown transformer in cfg is a configuration error.
func Build(cfg *config.Config, logger *slog.Logger) (*Components, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	disabled, err := disabledSet(cfg.Transformers.Disabled)
	if err != nil {
		return nil, err
	}

	md := parsers.DefaultMarkdownOptions()
	if cfg.Markdown.TOCDepth > 0 {
		md.TOCDepth = cfg.Markdown.TOCDepth
	}
	if cfg.Markdown.Unsafe != nil {
		md.Unsafe = *cfg.Markdown.Unsafe
	}
	if cfg.Markdown.GFM != nil {
		md.GFM = *cfg.Markdown.GFM
	}

	b := registry.NewBuilder().
		Parser(parsers.NewMarkdown(md), MarkdownExtensions...).
		Parser(parsers.YAML{}, YAMLExtensions...).
		Parser(parsers.JSON{}, JSONExtensions...).
		Parser(parsers.CSV{}, CSVExtensions...).
		Parser(parsers.HTML{}, HTMLExtensions...)

	for _, s := range builtinTransformers() {
		if disabled[s.t.Name()] {
			logger.Debug("Transformer disabled", logfields.Transformer(s.t.Name()))
			continue
		}
		b.Transformer(s.t, s.priority, s.extensions...)
	}

	ps, ts, err := b.Build()
	if err != nil {
		return nil, err
	}
	return &Components{
		Parsers:      ps,
		Transformers: ts,
		Hooks:        hooks.NewDispatcher(logger),
		logger:       logger,
	}, nil
}

// Pipeline returns an orchestrator over the components.
func (c *Components) Pipeline(recorder metrics.Recorder) *pipeline.Pipeline {
	return pipeline.New(c.Parsers, c.Transformers, c.Hooks,
		pipeline.WithLogger(c.logger),
		pipeline.WithRecorder(recorder))
}

// Chain describes the parser and transformer chain for one extension.
type Chain struct {
	Extension    string   `json:"extension"`
	Parser       string   `json:"parser,omitempty"`
	Transformers []string `json:"transformers"`
}

// Chains lists every extension known to either registry, sorted.
func (c *Components) Chains() []Chain {
	seen := make(map[string]struct{})
	for _, ext := range c.Parsers.Extensions() {
		seen[ext] = struct{}{}
	}
	for _, ext := range c.Transformers.Extensions() {
		seen[ext] = struct{}{}
	}
	exts := make([]string, 0, len(seen))
	for ext := range seen {
		exts = append(exts, ext)
	}
	sort.Strings(exts)

	chains := make([]Chain, 0, len(exts))
	for _, ext := range exts {
		ch := Chain{Extension: ext, Transformers: []string{}}
		if p, ok := c.Parsers.Get(ext); ok {
			ch.Parser = p.Name()
		}
		for _, t := range c.Transformers.Get(ext) {
			ch.Transformers = append(ch.Transformers, t.Name())
		}
		chains = append(chains, ch)
	}
	return chains
}

func disabledSet(names []string) (map[string]bool, error) {
	known := TransformerNames()
	set := make(map[string]bool, len(names))
	var unknown []string
	for _, n := range names {
		if !slices.Contains(known, n) {
			unknown = append(unknown, n)
			continue
		}
		set[n] = true
	}
	if len(unknown) > 0 {
		return nil, errors.ConfigError("unknown transformer in transformers.disabled").
			WithContext("unknown", strings.Join(unknown, ", ")).
			WithContext("known", strings.Join(known, ", ")).
			Build()
	}
	return set, nil
}
