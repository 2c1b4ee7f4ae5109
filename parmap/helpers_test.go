package parmap

import (
	"context"
	"sync"
	"testing"

	"github.com/utkarsh5026/parmap/internal/warn"
	"github.com/utkarsh5026/parmap/pool"
)

// recorder collects warnings for the duration of a test. Tests using it
// must not run in parallel with each other.
type recorder struct {
	mu  sync.Mutex
	got []Warning
}

func recordWarnings(t *testing.T) *recorder {
	t.Helper()
	r := &recorder{}
	prev := SetWarningHandler(func(w Warning) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.got = append(r.got, w)
	})
	t.Cleanup(func() { SetWarningHandler(prev) })
	return r
}

// freshDeprecations starts the test with no deprecated spelling seen yet,
// so once-per-process warnings can be counted on every run.
func freshDeprecations(t *testing.T) {
	t.Helper()
	prev := warnOnce
	warnOnce = warn.NewRegistry().Once
	t.Cleanup(func() { warnOnce = prev })
}

func (r *recorder) of(c WarningCategory) []Warning {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Warning
	for _, w := range r.got {
		if w.Category == c {
			out = append(out, w)
		}
	}
	return out
}

func newTestPool(t *testing.T, workers int) *pool.Pool {
	t.Helper()
	p, err := pool.New(pool.WithWorkerCount(workers))
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	t.Cleanup(p.Terminate)
	return p
}

func seqOf(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	return items
}

// square returns the square of its single int argument.
func square(ctx context.Context, c Call) (int, error) {
	x := Arg[int](c, 0)
	return x * x, nil
}

// addKw computes x + a + b with keyword defaults a=0, b=1.
func addKw(ctx context.Context, c Call) (int, error) {
	return Arg[int](c, 0) + KwargOr(c, "a", 0) + KwargOr(c, "b", 1), nil
}

// sumArgs adds every positional argument.
func sumArgs(ctx context.Context, c Call) (int, error) {
	total := 0
	for i := range c.Args {
		total += Arg[int](c, i)
	}
	return total, nil
}
