package transformers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/contentpipe/internal/content"
	"git.home.luguber.info/inful/contentpipe/internal/foundation/errors"
)

// KeyUID is the field UID fills in.
const KeyUID = "uid"

// uidNamespace scopes UIDs generated from ids.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("contentpipe:uid"))

// UID keeps a uid already set on the record (normally from frontmatter) and
// otherwise derives a stable name-based UUID from the id, so reparsing the same
// file yields the same uid.
type UID struct{}

func (UID) Name() string { return NameUID }

func (UID) Transform(_ context.Context, in content.Parsed) (content.Parsed, error) {
	if v, ok := in[KeyUID]; ok && v != nil && strings.TrimSpace(fmt.Sprint(v)) != "" {
		return in, nil
	}
	id := in.ID()
	if id == "" {
		return nil, errors.NewError(errors.CategoryTransform, "record has no id").
			WithContext("transformer", NameUID).
			Build()
	}
	out := in.Clone()
	out[KeyUID] = uuid.NewSHA1(uidNamespace, []byte(id)).String()
	return out, nil
}
