package transformers

import (
	"context"
	"path"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"git.home.luguber.info/inful/contentpipe/internal/content"
)

// Fields set by PathMeta.
const (
	KeyPath      = "path"
	KeyDraft     = "draft"
	KeyPartial   = "partial"
	KeyExtension = "extension"
)

var orderPrefix = regexp.MustCompile(`^\d+\.`)

// PathMeta derives routing metadata from the record's id:
//
//   - path: the id without extension, each segment slugified and stripped of
//     an ordering prefix such as "01.", with a trailing "index" dropped
//   - draft: the file name ends in ".draft" (or the record already says so)
//   - partial: some segment starts with "_"
//   - extension: the id's extension
//
// A path already present in the record, e.g. from frontmatter, is kept.
type PathMeta struct{}

func (PathMeta) Name() string { return NamePathMeta }

func (PathMeta) Transform(_ context.Context, in content.Parsed) (content.Parsed, error) {
	out := in.Clone()
	id := in.ID()
	ext := content.Extension(id)
	stem := strings.TrimSuffix(id, ext)

	draft := false
	if trimmed, ok := strings.CutSuffix(stem, ".draft"); ok {
		draft = true
		stem = trimmed
	}
	if existing, ok := in[KeyDraft].(bool); ok && existing {
		draft = true
	}

	partial := false
	var segments []string
	for _, seg := range strings.Split(stem, "/") {
		if seg == "" {
			continue
		}
		if strings.HasPrefix(seg, "_") {
			partial = true
		}
		if s := Slugify(orderPrefix.ReplaceAllString(seg, "")); s != "" {
			segments = append(segments, s)
		}
	}
	if n := len(segments); n > 0 && segments[n-1] == "index" {
		segments = segments[:n-1]
	}

	if p, ok := in[KeyPath].(string); !ok || p == "" {
		out[KeyPath] = path.Join(append([]string{"/"}, segments...)...)
	}
	out[KeyDraft] = draft
	out[KeyPartial] = partial
	out[KeyExtension] = ext
	return out, nil
}

// Slugify lowercases s, folds accented letters to their base form and joins
// runs of letters and digits with single dashes.
func Slugify(s string) string {
	// Chained transformers carry state, so each call builds its own.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, s)
	if err != nil {
		folded = s
	}

	var sb strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			pendingDash = false
			sb.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return sb.String()
}
