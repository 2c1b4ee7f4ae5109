package types

import (
	"context"
	"sync"
)

// Result is the settled outcome held by a Future: a value, the key that
// identifies what produced it, and any error.
type Result[R any, K comparable] struct {
	Value R
	Key   K
	Error error
}

// Future is a single-assignment cell that is settled once and read any
// number of times, from any number of goroutines.
//
// The producer settles it with Complete; readers block on Get, bound the wait
// with GetWithContext, or poll with TryGet and IsReady.
type Future[R any, K comparable] struct {
	done  chan struct{}
	once  sync.Once
	value Result[R, K]
}

// NewFuture returns an unsettled Future.
func NewFuture[R any, K comparable]() *Future[R, K] {
	return &Future[R, K]{
		done: make(chan struct{}),
	}
}

// Complete settles the future. Only the first call has an effect; later calls
// report false.
func (f *Future[R, K]) Complete(value R, key K, err error) (settled bool) {
	f.once.Do(func() {
		f.value = Result[R, K]{Value: value, Key: key, Error: err}
		close(f.done)
		settled = true
	})
	return settled
}

// Get blocks until the future is settled and returns its value, key and error.
// Every call returns the same outcome.
func (f *Future[R, K]) Get() (R, K, error) {
	<-f.done
	return f.value.Value, f.value.Key, f.value.Error
}

// GetWithContext is Get bounded by ctx. When ctx ends first it returns zero
// values and ctx.Err(); the future stays readable afterwards.
func (f *Future[R, K]) GetWithContext(ctx context.Context) (R, K, error) {
	select {
	case <-f.done:
	case <-ctx.Done():
		var zeroR R
		var zeroK K
		return zeroR, zeroK, ctx.Err()
	}
	return f.value.Value, f.value.Key, f.value.Error
}

// TryGet returns the outcome without blocking. ready is false if the future
// has not been settled yet.
func (f *Future[R, K]) TryGet() (value R, key K, err error, ready bool) {
	select {
	case <-f.done:
	default:
		return value, key, nil, false
	}
	return f.value.Value, f.value.Key, f.value.Error, true
}

// Done returns a channel that is closed once the outcome is settled.
func (f *Future[R, K]) Done() <-chan struct{} {
	return f.done
}

// IsReady reports whether the future has been settled.
func (f *Future[R, K]) IsReady() bool {
	_, _, _, ready := f.TryGet()
	return ready
}
