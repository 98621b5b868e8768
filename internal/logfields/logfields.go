package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyRecipe     = "recipe"
	KeyStep       = "step"
	KeyCommand    = "command"
	KeyExitCode   = "exit_code"
	KeyStatus     = "status"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyPage       = "page"
	KeyCount      = "count"
	KeyURL        = "url"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Recipe(name string) slog.Attr    { return slog.String(KeyRecipe, name) }
func Step(name string) slog.Attr      { return slog.String(KeyStep, name) }
func Command(cmd string) slog.Attr    { return slog.String(KeyCommand, cmd) }
func ExitCode(code int) slog.Attr     { return slog.Int(KeyExitCode, code) }
func Status(s string) slog.Attr       { return slog.String(KeyStatus, s) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Page(id string) slog.Attr        { return slog.String(KeyPage, id) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
