package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifiedError_Builder(t *testing.T) {
	cause := stderrors.New("yaml: line 2: mapping values are not allowed")
	err := WrapError(cause, CategoryParse, "invalid frontmatter").
		WithContext("id", "/a.md").
		Build()

	assert.Equal(t, CategoryParse, err.Category())
	assert.Equal(t, SeverityError, err.Severity())
	assert.Equal(t, "invalid frontmatter", err.Message())
	assert.True(t, stderrors.Is(err, cause))

	id, ok := err.Context().GetString("id")
	require.True(t, ok)
	assert.Equal(t, "/a.md", id)
	assert.Equal(t, "[parse:error] invalid frontmatter: yaml: line 2: mapping values are not allowed", err.Error())
}

func TestClassifiedError_WithContextDoesNotMutateOriginal(t *testing.T) {
	base := ConfigError("bad value").Build()
	derived := base.WithContext("field", "logging.level")

	_, ok := base.Context().Get("field")
	assert.False(t, ok)
	v, ok := derived.Context().GetString("field")
	assert.True(t, ok)
	assert.Equal(t, "logging.level", v)
	assert.True(t, derived.IsFatal())
}

func TestAsClassified_FindsWrappedError(t *testing.T) {
	inner := StoreError("upsert failed").Build()
	wrapped := fmt.Errorf("sink sqlite: %w", inner)

	got, ok := AsClassified(wrapped)
	require.True(t, ok)
	assert.Same(t, inner, got)
	assert.True(t, HasCategory(wrapped, CategoryStore))
	assert.Equal(t, CategoryInternal, GetCategory(stderrors.New("plain")))
}

func TestClassifiedError_IsMatchesCategoryAndMessage(t *testing.T) {
	a := ParseError("unterminated frontmatter").Build()
	b := ParseError("unterminated frontmatter").WithContext("id", "/b.md").Build()
	c := NewError(CategoryTransform, "unterminated frontmatter").Build()

	assert.True(t, stderrors.Is(a, b))
	assert.False(t, stderrors.Is(a, c))
}

func TestCLIErrorAdapter_ExitCodes(t *testing.T) {
	a := NewCLIErrorAdapter(false, nil)
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", stderrors.New("x"), 1},
		{"validation", ValidationError("x").Build(), 2},
		{"config", ConfigError("x").Build(), 7},
		{"store", StoreError("x").Build(), 8},
		{"messaging", NewError(CategoryMessaging, "x").Build(), 8},
		{"parse", ParseError("x").Build(), 11},
		{"filesystem", NewError(CategoryFileSystem, "x").Build(), 11},
		{"transform", NewError(CategoryTransform, "x").Build(), 11},
		{"internal", NewError(CategoryInternal, "x").Fatal().Build(), 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatAndLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	a := NewCLIErrorAdapter(false, logger)

	err := WrapError(stderrors.New("permission denied"), CategoryFileSystem, "read file").
		WithContext("path", "docs/a.md").
		Warning().
		Build()

	assert.Equal(t, "Error: read file: permission denied", a.FormatError(err))
	assert.Equal(t, "", a.FormatError(nil))

	a.Log(err)
	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "category=filesystem")
	assert.Contains(t, out, "path=docs/a.md")

	verbose := NewCLIErrorAdapter(true, logger)
	assert.Equal(t, "Error: "+err.Error(), verbose.FormatError(err))
}
