package parsers

import (
	"bytes"
	"context"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	"git.home.luguber.info/inful/contentpipe/internal/content"
	"git.home.luguber.info/inful/contentpipe/internal/frontmatter"
)

// MoreMarker separates the excerpt from the rest of a Markdown body.
const MoreMarker = "<!--more-->"

// MarkdownOptions controls Markdown rendering.
type MarkdownOptions struct {
	// TOCDepth is the deepest heading level listed in the toc field. Headings
	// from level 2 down to TOCDepth are included.
	TOCDepth int
	// Unsafe renders raw HTML embedded in the Markdown instead of omitting it.
	Unsafe bool
	// GFM enables tables, strikethrough, autolinks and task lists.
	GFM bool
}

// DefaultMarkdownOptions returns the options used when none are configured.
func DefaultMarkdownOptions() MarkdownOptions {
	return MarkdownOptions{TOCDepth: 3, Unsafe: true, GFM: true}
}

// TOCEntry is one heading listed in a document's table of contents.
type TOCEntry struct {
	ID    string `json:"id" yaml:"id"`
	Depth int    `json:"depth" yaml:"depth"`
	Text  string `json:"text" yaml:"text"`
}

// Link is a link-like construct found in a Markdown body.
type Link struct {
	Kind        string `json:"kind" yaml:"kind"`
	Destination string `json:"destination" yaml:"destination"`
}

// Link kinds.
const (
	LinkKindInline              = "inline"
	LinkKindImage               = "image"
	LinkKindAuto                = "auto"
	LinkKindReferenceDefinition = "reference_definition"
)

// Markdown parses Markdown documents with optional YAML frontmatter.
//
// Output fields: id, body (rendered HTML), title, description, toc, links,
// excerpt (only when the body contains MoreMarker) and every frontmatter key.
// Frontmatter title and description take precedence over the derived ones.
type Markdown struct {
	opts MarkdownOptions
	md   goldmark.Markdown
}

// NewMarkdown creates a Markdown parser. The goldmark instance is built once
// and shared across concurrent Parse calls.
func NewMarkdown(opts MarkdownOptions) *Markdown {
	if opts.TOCDepth <= 0 {
		opts.TOCDepth = DefaultMarkdownOptions().TOCDepth
	}
	var exts []goldmark.Extender
	if opts.GFM {
		exts = append(exts, extension.GFM)
	}
	var rendererOpts []renderer.Option
	if opts.Unsafe {
		rendererOpts = append(rendererOpts, html.WithUnsafe())
	}
	md := goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(rendererOpts...),
	)
	return &Markdown{opts: opts, md: md}
}

func (m *Markdown) Name() string { return "markdown" }

// Parse implements content.Parser.
func (m *Markdown) Parse(_ context.Context, id, raw string) (content.Parsed, error) {
	fields, body, err := frontmatter.Parse(raw)
	if err != nil {
		return nil, parseError(err, m.Name(), id, "invalid frontmatter")
	}

	src := []byte(body)
	pctx := parser.NewContext()
	doc := m.md.Parser().Parse(text.NewReader(src), parser.WithContext(pctx))

	var rendered bytes.Buffer
	if err := m.md.Renderer().Render(&rendered, src, doc); err != nil {
		return nil, parseError(err, m.Name(), id, "render markdown")
	}

	info := m.inspect(doc, src)
	info.links = append(info.links, referenceLinks(pctx)...)

	out := content.Parsed{
		content.KeyID:   id,
		content.KeyBody: rendered.String(),
		"title":         info.title,
		"description":   info.description,
		"toc":           info.toc,
		"links":         info.links,
	}

	if before, _, found := strings.Cut(body, MoreMarker); found {
		var excerpt bytes.Buffer
		if err := m.md.Convert([]byte(before), &excerpt); err != nil {
			return nil, parseError(err, m.Name(), id, "render excerpt")
		}
		out["excerpt"] = excerpt.String()
	}

	// Frontmatter overrides derived fields except the body.
	delete(fields, content.KeyBody)
	merge(out, fields, true)
	return out, nil
}

type docInfo struct {
	title       string
	description string
	toc         []TOCEntry
	links       []Link
}

func (m *Markdown) inspect(doc gmast.Node, src []byte) docInfo {
	info := docInfo{toc: []TOCEntry{}, links: []Link{}}
	_ = gmast.Walk(doc, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.Heading:
			txt := nodeText(node, src)
			if node.Level == 1 && info.title == "" {
				info.title = txt
			}
			if node.Level >= 2 && node.Level <= m.opts.TOCDepth {
				info.toc = append(info.toc, TOCEntry{ID: headingID(node), Depth: node.Level, Text: txt})
			}
		case *gmast.Paragraph:
			if info.description == "" {
				info.description = nodeText(node, src)
			}
		case *gmast.AutoLink:
			info.links = append(info.links, Link{Kind: LinkKindAuto, Destination: string(node.URL(src))})
		case *gmast.Image:
			info.links = append(info.links, Link{Kind: LinkKindImage, Destination: string(node.Destination)})
		case *gmast.Link:
			info.links = append(info.links, Link{Kind: LinkKindInline, Destination: string(node.Destination)})
		}
		return gmast.WalkContinue, nil
	})
	return info
}

// referenceLinks lists reference definitions, which goldmark keeps in the
// parse context rather than the AST.
func referenceLinks(pctx parser.Context) []Link {
	refs := pctx.References()
	sort.Slice(refs, func(i, j int) bool {
		return string(refs[i].Label()) < string(refs[j].Label())
	})
	out := make([]Link, 0, len(refs))
	for _, ref := range refs {
		out = append(out, Link{Kind: LinkKindReferenceDefinition, Destination: string(ref.Destination())})
	}
	return out
}

func headingID(h *gmast.Heading) string {
	v, ok := h.AttributeString("id")
	if !ok {
		return ""
	}
	switch id := v.(type) {
	case []byte:
		return string(id)
	case string:
		return id
	}
	return ""
}

// nodeText concatenates the literal text below n.
func nodeText(n gmast.Node, src []byte) string {
	var sb strings.Builder
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			sb.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *gmast.String:
			sb.Write(t.Value)
		}
		return gmast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
