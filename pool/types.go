package pool

import (
	"context"
	"time"

	"github.com/utkarsh5026/parmap/internal/types"
)

// ProcessFunc defines how a single work item is processed.
// It takes a context for cancellation control and an item of type T, returning a result of type R.
// A non-nil error fails the whole batch the item belongs to.
//
// Type parameters:
//   - T: The type of input item to be processed
//   - R: The type of result produced after processing
type ProcessFunc[T any, R any] func(ctx context.Context, item T) (R, error)

// SubmitOptions tunes a single MapAsync submission.
type SubmitOptions[R any] struct {
	// ChunkSize is the number of items handed to a worker at once.
	// Zero or negative picks DefaultChunkSize.
	ChunkSize int

	// SizeHint is the number of items, or a negative value when unknown.
	// With an unknown size and automatic chunking the items are collected
	// before the first chunk is queued.
	SizeHint int

	// OnSuccess is called by the pool with the ordered results once the
	// batch completes without error.
	OnSuccess func([]R)

	// OnError is called by the pool with the first error of a failed batch.
	OnError func(error)
}

// AsyncResult is the handle of a submitted batch.
type AsyncResult[R any] struct {
	future    *types.Future[[]R, uint64]
	remaining func() (int, bool)
	total     func() (int, bool)
}

// Ready reports whether the batch has finished, without blocking.
func (r *AsyncResult[R]) Ready() bool {
	return r.future.IsReady()
}

// Done returns a channel that is closed when the batch finishes.
func (r *AsyncResult[R]) Done() <-chan struct{} {
	return r.future.Done()
}

// Wait blocks until the batch finishes or timeout elapses and reports
// whether it finished. A timeout of zero or less waits indefinitely.
func (r *AsyncResult[R]) Wait(timeout time.Duration) bool {
	if timeout <= 0 {
		<-r.future.Done()
		return true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-r.future.Done():
		return true
	case <-timer.C:
		return false
	}
}

// Get waits up to timeout for the batch (zero or less waits indefinitely)
// and returns the results in input order, or the first error a worker hit.
// If the batch is still running when timeout elapses, Get returns
// ErrTimeout and may be called again later.
func (r *AsyncResult[R]) Get(timeout time.Duration) ([]R, error) {
	if !r.Wait(timeout) {
		return nil, ErrTimeout
	}
	values, _, err := r.future.Get()
	if err != nil {
		return nil, err
	}
	return values, nil
}

// Successful reports whether the batch finished without error. It is false
// while the batch is still running.
func (r *AsyncResult[R]) Successful() bool {
	_, _, err, ready := r.future.TryGet()
	return ready && err == nil
}

// Remaining returns the number of items not yet processed. The count is best
// effort: ok is false while the total number of items is still unknown.
func (r *AsyncResult[R]) Remaining() (n int, ok bool) {
	return r.remaining()
}

// Total returns the number of items in the batch; ok is false until the
// producer has seen the end of an input of unknown length.
func (r *AsyncResult[R]) Total() (n int, ok bool) {
	return r.total()
}
