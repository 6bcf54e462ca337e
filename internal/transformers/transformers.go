// Package transformers provides the built-in content.Transformer
// implementations. Each returns a new record and leaves its input untouched.
package transformers

// Names of the built-in transformers, as used in configuration.
const (
	NamePathMeta          = "path-meta"
	NameStripHTMLComments = "strip-html-comments"
	NameUID               = "uid"
	NameFingerprint       = "fingerprint"
)
