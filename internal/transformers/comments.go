package transformers

import (
	"context"
	"regexp"

	"git.home.luguber.info/inful/contentpipe/internal/content"
)

var htmlComment = regexp.MustCompile(`(?s)<!--.*?-->\n?`)

// StripHTMLComments removes HTML comments from a string body. Records whose
// body is not a string pass through unchanged.
type StripHTMLComments struct{}

func (StripHTMLComments) Name() string { return NameStripHTMLComments }

func (StripHTMLComments) Transform(_ context.Context, in content.Parsed) (content.Parsed, error) {
	body, ok := in.Body()
	if !ok {
		return in, nil
	}
	out := in.Clone()
	out[content.KeyBody] = htmlComment.ReplaceAllString(body, "")
	return out, nil
}
