package registry

import (
	"context"
	"testing"

	"git.home.luguber.info/inful/contentpipe/internal/content"
	"git.home.luguber.info/inful/contentpipe/internal/foundation/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parser(name string) content.Parser {
	return content.ParserFunc{ID: name, Fn: func(_ context.Context, id, c string) (content.Parsed, error) {
		return content.Parsed{content.KeyID: id, content.KeyBody: c}, nil
	}}
}

func transformer(name string) content.Transformer {
	return content.TransformerFunc{ID: name, Fn: func(_ context.Context, p content.Parsed) (content.Parsed, error) {
		return p, nil
	}}
}

func names(ts []content.Transformer) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Name()
	}
	return out
}

func TestParsers_Get(t *testing.T) {
	md := parser("markdown")
	parsers, _, err := NewBuilder().Parser(md, ".md", ".markdown").Build()
	require.NoError(t, err)

	got, ok := parsers.Get(".md")
	require.True(t, ok)
	assert.Equal(t, "markdown", got.Name())

	_, ok = parsers.Get(".MD")
	assert.False(t, ok, "lookup is case-sensitive")

	_, ok = parsers.Get(".txt")
	assert.False(t, ok)

	assert.Equal(t, []string{".markdown", ".md"}, parsers.Extensions())
}

func TestBuilder_DuplicateParserRejected(t *testing.T) {
	_, _, err := NewBuilder().
		Parser(parser("a"), ".md").
		Parser(parser("b"), ".md").
		Build()
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	assert.Contains(t, err.Error(), "invalid registry")
}

func TestBuilder_InvalidExtensions(t *testing.T) {
	tests := []struct {
		name string
		ext  string
	}{
		{"missing dot", "md"},
		{"dot only", "."},
		{"path separator", "./md"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NewBuilder().Parser(parser("p"), tt.ext).Build()
			require.Error(t, err)
		})
	}

	_, _, err := NewBuilder().Transformer(nil, 0, ".md").Build()
	require.Error(t, err)
}

func TestTransformers_OrderByPriorityThenName(t *testing.T) {
	_, chains, err := NewBuilder().
		Transformer(transformer("uid"), 20, ".md").
		Transformer(transformer("path-meta"), 10, ".md", ".yaml").
		Transformer(transformer("fingerprint"), 20, ".md").
		Build()
	require.NoError(t, err)

	assert.Equal(t, []string{"path-meta", "fingerprint", "uid"}, names(chains.Get(".md")))
	assert.Equal(t, []string{"path-meta"}, names(chains.Get(".yaml")))
	assert.Empty(t, chains.Get(".json"))
	assert.Equal(t, []string{".md", ".yaml"}, chains.Extensions())
}

func TestTransformers_SameNameKeepsRegistrationOrder(t *testing.T) {
	first := transformer("step")
	second := content.TransformerFunc{ID: "step", Fn: func(_ context.Context, p content.Parsed) (content.Parsed, error) {
		return content.Parsed{"second": true}, nil
	}}
	_, chains, err := NewBuilder().
		Transformer(first, 0, ".md").
		Transformer(second, 0, ".md").
		Build()
	require.NoError(t, err)

	chain := chains.Get(".md")
	require.Len(t, chain, 2)
	out, err := chain[1].Transform(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, true, out["second"])
}

func TestTransformers_GetReturnsCopy(t *testing.T) {
	_, chains, err := NewBuilder().
		Transformer(transformer("a"), 0, ".md").
		Transformer(transformer("b"), 1, ".md").
		Build()
	require.NoError(t, err)

	chain := chains.Get(".md")
	chain[0] = transformer("mutated")

	assert.Equal(t, []string{"a", "b"}, names(chains.Get(".md")))
}

func TestNilRegistries(t *testing.T) {
	var p *Parsers
	var tr *Transformers
	_, ok := p.Get(".md")
	assert.False(t, ok)
	assert.Nil(t, tr.Get(".md"))
	assert.Nil(t, p.Extensions())
}
