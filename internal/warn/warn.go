// Package warn is the advisory channel for conditions that do not stop a call:
// a pool that could not be created, or an option spelled the deprecated way.
// Warnings never replace returned errors.
package warn

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	mapset "github.com/deckarep/golang-set/v2"
)

// Category classifies a Warning.
type Category int

const (
	// Runtime marks a recoverable condition met while running a call.
	Runtime Category = iota
	// Deprecation marks use of an option spelling that will be removed.
	Deprecation
)

func (c Category) String() string {
	switch c {
	case Runtime:
		return "runtime"
	case Deprecation:
		return "deprecation"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Warning is a single advisory message.
type Warning struct {
	Category Category
	Message  string
}

func (w Warning) String() string {
	return w.Category.String() + ": " + w.Message
}

// Handler receives emitted warnings. It may be called from any goroutine.
type Handler func(Warning)

var (
	handler atomic.Pointer[Handler]

	// warned holds every key passed to Once for the life of the process.
	warned = NewRegistry()
)

// Registry remembers which keys have already produced a warning.
type Registry struct {
	seen mapset.Set[string]
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{seen: mapset.NewSet[string]()}
}

// Once emits w only the first time key is seen by r and reports whether it
// did.
func (r *Registry) Once(key string, w Warning) bool {
	if !r.seen.Add(key) {
		return false
	}
	Emit(w)
	return true
}

// LogHandler writes warnings to slog.Default at WARN level.
func LogHandler(w Warning) {
	slog.Default().Warn(w.Message, slog.String("category", w.Category.String()))
}

// SetHandler installs h as the destination for warnings and returns the
// previous handler. A nil h restores LogHandler.
func SetHandler(h Handler) Handler {
	var next *Handler
	if h != nil {
		next = &h
	}
	prev := handler.Swap(next)
	if prev == nil {
		return LogHandler
	}
	return *prev
}

// Emit delivers w to the current handler.
func Emit(w Warning) {
	if h := handler.Load(); h != nil {
		(*h)(w)
		return
	}
	LogHandler(w)
}

// Runtimef emits a Runtime warning.
func Runtimef(format string, args ...any) {
	Emit(Warning{Category: Runtime, Message: fmt.Sprintf(format, args...)})
}

// Once emits w only the first time key is seen by this process and reports
// whether it did.
func Once(key string, w Warning) bool {
	return warned.Once(key, w)
}
