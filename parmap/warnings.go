package parmap

import "github.com/utkarsh5026/parmap/internal/warn"

// Warning is an advisory message about a call that still ran: a pool that
// could not be created, or an option spelled the deprecated way.
type Warning = warn.Warning

// WarningCategory classifies a Warning.
type WarningCategory = warn.Category

const (
	RuntimeWarning     = warn.Runtime
	DeprecationWarning = warn.Deprecation
)

// SetWarningHandler routes warnings to h and returns the previous handler.
// By default warnings are logged through slog.Default at WARN level; a nil h
// restores that. h may be called from any goroutine.
func SetWarningHandler(h func(Warning)) func(Warning) {
	return warn.SetHandler(h)
}
