package pool

import (
	"context"
	"errors"
	"fmt"
	"runtime"
)

var (
	// ErrInvalidWorkerCount is returned by New for a worker count below one.
	ErrInvalidWorkerCount = errors.New("number of workers must be at least 1")

	// ErrPoolClosed is returned when submitting to a closed or terminated pool.
	ErrPoolClosed = errors.New("pool not running")

	// ErrPoolRunning is returned by Join on a pool that was never closed.
	ErrPoolRunning = errors.New("pool is still running")

	// ErrTimeout is returned by AsyncResult.Get when the wait timed out.
	ErrTimeout = errors.New("timed out waiting for results")

	// ErrTerminated fails batches that were unfinished when the pool was terminated.
	ErrTerminated = errors.New("pool terminated before the batch completed")
)

// PanicError is the error a batch fails with when a ProcessFunc panics.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("worker panic: %v\nstack trace:\n%s", e.Value, e.Stack)
}

// Unwrap exposes a panic value that is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func newPanicError(r any) *PanicError {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	return &PanicError{Value: r, Stack: buf[:n]}
}

// DefaultChunkSize splits n items into roughly four chunks per worker,
// rounding up so the last chunk absorbs the remainder. It never returns
// less than one, and returns one when the worker count is unknown (< 1).
//
// For example, 100 items on 4 workers gives chunks of 7 (16 slices of 6 would
// leave 4 items over).
func DefaultChunkSize(n, workers int) int {
	if workers < 1 || n < 1 {
		return 1
	}

	slices := workers * 4
	size := n / slices
	if n%slices != 0 {
		size++
	}
	return max(size, 1)
}

// processWithRecovery runs fn on item, converting a panic into a *PanicError
// so one item cannot crash a worker.
func processWithRecovery[T, R any](
	ctx context.Context,
	fn ProcessFunc[T, R],
	item T,
) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(r)
		}
	}()

	return fn(ctx, item)
}
