package transformers

import (
	"context"
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/contentpipe/internal/content"
	"git.home.luguber.info/inful/contentpipe/internal/foundation/errors"
	"git.home.luguber.info/inful/contentpipe/internal/frontmatter"
)

// Fields excluded from the fingerprint because they are derived from it or
// change without the content changing.
var fingerprintExcluded = map[string]struct{}{
	mdfp.FingerprintField: {},
	content.KeyBody:       {},
	"lastmod":             {},
	KeyUID:                {},
}

// Fingerprint stores a content fingerprint under mdfp.FingerprintField. The
// hash covers the body and every other field except the excluded ones, with
// fields serialized as sorted YAML.
type Fingerprint struct{}

func (Fingerprint) Name() string { return NameFingerprint }

func (Fingerprint) Transform(_ context.Context, in content.Parsed) (content.Parsed, error) {
	fields := make(map[string]any, len(in))
	for k, v := range in {
		if _, skip := fingerprintExcluded[k]; skip {
			continue
		}
		fields[k] = v
	}
	serialized, err := frontmatter.Serialize(fields)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryTransform, "serialize fields").
			WithContext("transformer", NameFingerprint).
			WithContext("id", in.ID()).
			Build()
	}

	body, _ := in.Body()
	out := in.Clone()
	out[mdfp.FingerprintField] = mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(serialized), "\n"), body)
	return out, nil
}
