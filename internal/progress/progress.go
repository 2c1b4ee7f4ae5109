// Package progress draws completion bars and feeds them from an in-flight
// batch by sampling how many items it has left.
package progress

import (
	"context"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// DefaultInterval is how often Track samples a batch.
const DefaultInterval = 2 * time.Second

// Bar is the part of a progress bar Track drives.
type Bar interface {
	Add(n int) error
	Finish() error
}

// Source is an in-flight batch whose progress can be sampled.
type Source interface {
	Ready() bool
	Wait(timeout time.Duration) bool
	Remaining() (int, bool)
}

// New returns a bar for total items writing to w. A negative total draws a
// spinner for inputs of unknown length.
func New(total int, w io.Writer, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("items"),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			_, _ = io.WriteString(w, "\n")
		}),
	)
}

// Track advances bar by the number of items src completed between samples
// until src is ready, sleeping in src.Wait between samples. While src cannot
// report a remaining count yet, Track keeps waiting; once src is ready the
// bar is filled and finished. When ctx ends, Track returns and leaves the bar
// where it is. The batch itself is unaffected either way.
func Track(ctx context.Context, src Source, bar Bar, total int, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	remaining := total
	for {
		if src.Ready() {
			if remaining > 0 {
				_ = bar.Add(remaining)
			}
			_ = bar.Finish()
			return
		}
		if ctx.Err() != nil {
			return
		}

		if now, ok := src.Remaining(); ok {
			if done := remaining - now; done > 0 {
				_ = bar.Add(done)
				remaining = now
			}
		}

		src.Wait(interval)
	}
}
