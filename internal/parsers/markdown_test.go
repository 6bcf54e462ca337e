package parsers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/contentpipe/internal/content"
	"git.home.luguber.info/inful/contentpipe/internal/foundation/errors"
)

const guide = `---
title: Install Guide
tags: [setup]
---
# Installing

Get started with the [CLI](https://example.com/cli) quickly.

<!--more-->

## Requirements

![diagram](img/arch.png)

### Go toolchain

#### Deep heading

See [the docs][docs].

[docs]: https://example.com/docs
`

func TestMarkdown_ParseDocument(t *testing.T) {
	got, err := NewMarkdown(DefaultMarkdownOptions()).Parse(context.Background(), "/guide/install.md", guide)
	require.NoError(t, err)

	assert.Equal(t, "/guide/install.md", got.ID())
	assert.Equal(t, "Install Guide", got["title"], "frontmatter title wins over first h1")
	assert.Equal(t, "Get started with the CLI quickly.", got["description"])
	assert.Equal(t, []any{"setup"}, got["tags"])

	body, ok := got.Body()
	require.True(t, ok)
	assert.Contains(t, body, `<h1 id="installing">Installing</h1>`)
	assert.Contains(t, body, `<h2 id="requirements">Requirements</h2>`)

	assert.Equal(t, []TOCEntry{
		{ID: "requirements", Depth: 2, Text: "Requirements"},
		{ID: "go-toolchain", Depth: 3, Text: "Go toolchain"},
	}, got["toc"])

	assert.Equal(t, []Link{
		{Kind: LinkKindInline, Destination: "https://example.com/cli"},
		{Kind: LinkKindImage, Destination: "img/arch.png"},
		{Kind: LinkKindInline, Destination: "https://example.com/docs"},
		{Kind: LinkKindReferenceDefinition, Destination: "https://example.com/docs"},
	}, got["links"])

	excerpt, ok := got["excerpt"].(string)
	require.True(t, ok)
	assert.Contains(t, excerpt, "Installing")
	assert.NotContains(t, excerpt, "Requirements")
}

func TestMarkdown_TitleFromFirstHeadingWithoutFrontmatter(t *testing.T) {
	got, err := NewMarkdown(DefaultMarkdownOptions()).Parse(context.Background(), "/a.md", "# Hi")
	require.NoError(t, err)

	assert.Equal(t, "Hi", got["title"])
	assert.Equal(t, "", got["description"])
	assert.NotContains(t, got, "excerpt")
	assert.Equal(t, []TOCEntry{}, got["toc"])
}

func TestMarkdown_FrontmatterCannotReplaceIDOrBody(t *testing.T) {
	got, err := NewMarkdown(DefaultMarkdownOptions()).
		Parse(context.Background(), "/a.md", "---\nid: other\nbody: nope\n---\ntext\n")
	require.NoError(t, err)
	assert.Equal(t, "/a.md", got.ID())
	assert.Contains(t, got[content.KeyBody], "<p>text</p>")
}

func TestMarkdown_FrontmatterWithIntegerKeysEncodesAsJSON(t *testing.T) {
	got, err := NewMarkdown(DefaultMarkdownOptions()).
		Parse(context.Background(), "/a.md", "---\nmap: {1: one}\n---\ntext\n")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"1": "one"}, got["map"])

	_, err = json.Marshal(got)
	require.NoError(t, err)
}

func TestMarkdown_Options(t *testing.T) {
	src := "| a | b |\n|---|---|\n| 1 | 2 |\n\n<div>raw</div>\n\n## Two\n\n### Three\n"

	gfm, err := NewMarkdown(MarkdownOptions{TOCDepth: 2, GFM: true, Unsafe: true}).Parse(context.Background(), "/t.md", src)
	require.NoError(t, err)
	assert.Contains(t, gfm[content.KeyBody], "<table>")
	assert.Contains(t, gfm[content.KeyBody], "<div>raw</div>")
	assert.Len(t, gfm["toc"], 1)

	plain, err := NewMarkdown(MarkdownOptions{}).Parse(context.Background(), "/t.md", src)
	require.NoError(t, err)
	assert.NotContains(t, plain[content.KeyBody], "<table>")
	assert.Contains(t, plain[content.KeyBody], "raw HTML omitted")
	assert.Len(t, plain["toc"], 2, "zero depth falls back to the default")
}

func TestMarkdown_InvalidFrontmatterIsParseError(t *testing.T) {
	_, err := NewMarkdown(DefaultMarkdownOptions()).Parse(context.Background(), "/bad.md", "---\ntitle: x\n")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryParse))

	classified, ok := errors.AsClassified(err)
	require.True(t, ok)
	id, _ := classified.Context().GetString("id")
	assert.Equal(t, "/bad.md", id)
}
