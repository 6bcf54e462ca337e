package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyID          = "id"
	KeyExtension   = "extension"
	KeyParser      = "parser"
	KeyTransformer = "transformer"
	KeyHook        = "hook"
	KeyListener    = "listener"
	KeyRunID       = "run_id"
	KeyPath        = "path"
	KeySink        = "sink"
	KeyDurationMS  = "duration_ms"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func ID(id string) slog.Attr            { return slog.String(KeyID, id) }
func Extension(ext string) slog.Attr    { return slog.String(KeyExtension, ext) }
func Parser(name string) slog.Attr      { return slog.String(KeyParser, name) }
func Transformer(name string) slog.Attr { return slog.String(KeyTransformer, name) }
func Hook(name string) slog.Attr        { return slog.String(KeyHook, name) }
func Listener(index int) slog.Attr      { return slog.Int(KeyListener, index) }
func RunID(id string) slog.Attr         { return slog.String(KeyRunID, id) }
func Path(p string) slog.Attr           { return slog.String(KeyPath, p) }
func Sink(name string) slog.Attr        { return slog.String(KeySink, name) }
func DurationMS(ms float64) slog.Attr   { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
