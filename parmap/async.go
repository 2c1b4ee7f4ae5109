package parmap

import (
	"context"
	"errors"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/utkarsh5026/parmap/pool"
)

// AsyncResult is the handle returned by MapAsync and friends.
//
// A handle for a serial run is complete from the start. A handle for a
// parallel run owns the pool created for it, if any, and shuts that pool
// down once: by joining it the first time completion is observed (Ready,
// Wait, Get or Join), or by terminating it (Terminate, or Close before
// completion). A pool passed with WithPool is never shut down by the handle.
type AsyncResult[R any] struct {
	res    *pool.AsyncResult[R] // nil for a serial run
	values []R
	err    error

	pool   *pool.Pool // owned pool, nil otherwise
	cancel context.CancelFunc
	stop   func() bool // unregisters the watch on the caller's context

	mu       sync.Mutex
	shutdown bool
	joinErr  error
}

// MapAsync starts Map without waiting for it. The returned error reports an
// invalid option only; failures of fn are returned by Get.
//
// WithProgress is accepted and ignored.
func MapAsync[T, R any](ctx context.Context, fn Func[R], items []T, opts ...Option) (*AsyncResult[R], error) {
	return submit(ctx, mapShape[T](), fn, source[T]{seq: slices.Values(items), n: len(items)}, opts)
}

// StarMapAsync starts StarMap without waiting for it.
func StarMapAsync[T, R any](ctx context.Context, fn Func[R], tuples [][]T, opts ...Option) (*AsyncResult[R], error) {
	return submit(ctx, starMapShape[T](), fn, source[[]T]{seq: slices.Values(tuples), n: len(tuples)}, opts)
}

// MapSeqAsync starts MapSeq without waiting for it.
func MapSeqAsync[T, R any](ctx context.Context, fn Func[R], items iter.Seq[T], opts ...Option) (*AsyncResult[R], error) {
	return submit(ctx, mapShape[T](), fn, source[T]{seq: items, n: -1}, opts)
}

// StarMapSeqAsync starts StarMapSeq without waiting for it.
func StarMapSeqAsync[T, R any](ctx context.Context, fn Func[R], tuples iter.Seq[[]T], opts ...Option) (*AsyncResult[R], error) {
	return submit(ctx, starMapShape[T](), fn, source[[]T]{seq: tuples, n: -1}, opts)
}

func submit[T, R any](ctx context.Context, s shape[T], fn Func[R], src source[T], opts []Option) (*AsyncResult[R], error) {
	cfg, err := newConfig(opts, true)
	if err != nil {
		return nil, err
	}
	onSuccess, err := successCallback[R](cfg)
	if err != nil {
		return nil, err
	}
	cfg.progress = false

	parallel, p, owns := cfg.acquire()
	if !parallel {
		values, err := runSerial(ctx, s, fn, src, cfg)
		return &AsyncResult[R]{values: values, err: err, shutdown: true}, nil
	}

	callCtx, cancel := context.WithCancel(ctx)
	res, err := pool.MapAsync(p, bind(callCtx, s, fn, cfg.args, cfg.kwargs), src.seq, pool.SubmitOptions[R]{
		ChunkSize: cfg.chunkSize,
		SizeHint:  src.n,
		OnSuccess: onSuccess,
		OnError:   cfg.errorCallback,
	})
	if err != nil {
		cancel()
		if owns {
			p.Terminate()
		}
		return nil, err
	}

	a := &AsyncResult[R]{res: res, cancel: cancel}
	if owns {
		a.pool = p
		p.Close()
	}
	a.mu.Lock()
	a.stop = context.AfterFunc(ctx, func() {
		if !res.Ready() {
			a.Terminate()
		}
	})
	a.mu.Unlock()
	return a, nil
}

// Ready reports whether the call has finished, without blocking.
func (a *AsyncResult[R]) Ready() bool {
	if a.res == nil {
		return true
	}
	if !a.res.Ready() {
		return false
	}
	a.finish(false)
	return true
}

// Wait blocks until the call finishes or timeout elapses and reports whether
// it finished. A timeout of zero or less waits indefinitely.
func (a *AsyncResult[R]) Wait(timeout time.Duration) bool {
	if a.res == nil {
		return true
	}
	if !a.res.Wait(timeout) {
		return false
	}
	a.finish(false)
	return true
}

// Get waits up to timeout (zero or less waits indefinitely) and returns what
// the synchronous call would have: the results in input order, or the first
// error. It returns pool.ErrTimeout if the call is still running, in which
// case Get may be called again. Once the call has finished, every Get
// returns the same values.
func (a *AsyncResult[R]) Get(timeout time.Duration) ([]R, error) {
	if a.res == nil {
		return a.values, a.err
	}

	values, err := a.res.Get(timeout)
	if errors.Is(err, pool.ErrTimeout) {
		return nil, err
	}
	if joinErr := a.finish(false); joinErr != nil && err == nil {
		return nil, joinErr
	}
	return values, err
}

// Successful reports whether the call finished without error. It is false
// while the call is running.
func (a *AsyncResult[R]) Successful() bool {
	if a.res == nil {
		return a.err == nil
	}
	return a.res.Successful()
}

// Join waits for the call to finish and for the pool created for it to shut
// down.
func (a *AsyncResult[R]) Join() error {
	if a.res == nil {
		return nil
	}
	a.res.Wait(0)
	return a.finish(false)
}

// Terminate stops the call. Work still running sees its context canceled,
// and an owned pool is terminated, failing the call with pool.ErrTerminated.
// It does nothing once the call has finished.
func (a *AsyncResult[R]) Terminate() {
	if a.res == nil {
		return
	}
	a.finish(true)
}

// Close releases the handle for use with defer: it terminates the call if it
// is still running and otherwise shuts down the owned pool normally.
func (a *AsyncResult[R]) Close() {
	if a.res == nil {
		return
	}
	a.finish(!a.res.Ready())
}

// finish shuts the owned pool down exactly once, joining it or terminating
// it, and releases the call's context along with the watch on the caller's.
func (a *AsyncResult[R]) finish(terminate bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.shutdown {
		return a.joinErr
	}
	a.shutdown = true

	if a.stop != nil {
		a.stop()
	}
	// Pool first, so the batch fails with pool.ErrTerminated.
	defer a.cancel()
	if a.pool != nil {
		if terminate {
			a.pool.Terminate()
		} else {
			a.joinErr = a.pool.Join()
		}
	}
	return a.joinErr
}
