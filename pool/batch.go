package pool

import (
	"context"
	"iter"
	"slices"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/utkarsh5026/parmap/internal/types"
)

// batch tracks one MapAsync submission: the chunks in flight, the per-chunk
// outputs waiting to be stitched back together, and the first failure.
//
// Type parameters:
//   - T: The item type
//   - R: The result type
type batch[T, R any] struct {
	id        uint64
	pool      *Pool
	fn        ProcessFunc[T, R]
	chunkSize int
	onSuccess func([]R)
	onError   func(error)

	mu         sync.Mutex
	parts      [][]R // outputs by chunk index
	pending    int   // chunks queued or running
	produced   bool  // every chunk has been queued
	total      int
	totalKnown bool
	completed  int
	err        error

	failed atomic.Bool
	once   sync.Once
	result *AsyncResult[R]
}

// chunk is a contiguous run of items processed by a single worker.
type chunk[T, R any] struct {
	b     *batch[T, R]
	index int
	items []T
}

func newBatch[T, R any](id uint64, p *Pool, fn ProcessFunc[T, R], opts SubmitOptions[R]) *batch[T, R] {
	b := &batch[T, R]{
		id:        id,
		pool:      p,
		fn:        fn,
		chunkSize: opts.ChunkSize,
		onSuccess: opts.OnSuccess,
		onError:   opts.OnError,
	}
	// A known size is visible to Remaining before MapAsync returns.
	if opts.SizeHint >= 0 {
		b.total, b.totalKnown = opts.SizeHint, true
	}
	b.result = &AsyncResult[R]{
		future:    types.NewFuture[[]R, uint64](),
		remaining: b.remaining,
		total:     b.totalCount,
	}
	return b
}

// produce walks items, queueing a chunk each time chunkSize items have been
// gathered. It runs on its own goroutine and holds one of the pool's
// producer slots until it returns.
func (b *batch[T, R]) produce(items iter.Seq[T], sizeHint int) {
	defer b.pool.producers.Done()
	defer func() {
		if r := recover(); r != nil {
			b.abort(newPanicError(r))
		}
	}()

	chunkSize := b.chunkSize
	if chunkSize <= 0 {
		if sizeHint < 0 {
			collected := slices.Collect(items)
			sizeHint = len(collected)
			items = slices.Values(collected)

			b.mu.Lock()
			b.total, b.totalKnown = sizeHint, true
			b.mu.Unlock()
		}
		chunkSize = DefaultChunkSize(sizeHint, b.pool.workers)
	}

	ctx := b.pool.ctx
	index, count := 0, 0
	terminated := false
	buf := make([]T, 0, chunkSize)

	send := func() bool {
		b.mu.Lock()
		b.pending++
		b.parts = append(b.parts, nil)
		b.mu.Unlock()

		select {
		case b.pool.chunks <- &chunk[T, R]{b: b, index: index, items: buf}:
			index++
			buf = make([]T, 0, chunkSize)
			return true
		case <-ctx.Done():
			b.mu.Lock()
			b.pending--
			b.mu.Unlock()
			terminated = true
			return false
		}
	}

	stopped := false
	for item := range items {
		if b.failed.Load() {
			stopped = true
			break
		}
		buf = append(buf, item)
		count++
		if len(buf) == chunkSize && !send() {
			stopped = true
			break
		}
	}
	if !stopped && len(buf) > 0 {
		send()
	}

	if terminated {
		b.mu.Lock()
		b.produced = true
		b.mu.Unlock()
		b.abort(ErrTerminated)
		return
	}

	b.mu.Lock()
	b.produced = true
	if !stopped {
		b.total, b.totalKnown = count, true
	}
	finished := b.pending == 0
	b.mu.Unlock()

	debugLog("batch %d produced %d chunks (%d items)", b.id, index, count)
	if finished {
		b.settle()
	}
}

func (c *chunk[T, R]) run(ctx context.Context, limiter *rate.Limiter) {
	b := c.b
	if b.failed.Load() {
		b.finishChunk(c.index, nil, len(c.items), nil)
		return
	}

	fail := func(err error) {
		if ctx.Err() != nil {
			err = ErrTerminated
		}
		b.finishChunk(c.index, nil, len(c.items), err)
	}

	out := make([]R, 0, len(c.items))
	for _, item := range c.items {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				fail(err)
				return
			}
		}

		r, err := processWithRecovery(ctx, b.fn, item)
		if err != nil {
			fail(err)
			return
		}
		out = append(out, r)
	}

	b.finishChunk(c.index, out, len(c.items), nil)
}

func (b *batch[T, R]) finishChunk(index int, out []R, n int, err error) {
	b.mu.Lock()
	b.pending--
	b.completed += n
	switch {
	case err != nil && b.err == nil:
		b.err = err
		b.failed.Store(true)
		debugLog("batch %d failed in chunk %d: %v", b.id, index, err)
	case err == nil:
		b.parts[index] = out
	}
	finished := b.produced && b.pending == 0
	b.mu.Unlock()

	if finished {
		b.settle()
	}
}

// abort fails the batch immediately, whatever is still queued.
func (b *batch[T, R]) abort(err error) {
	b.mu.Lock()
	if b.err == nil {
		b.err = err
	}
	b.failed.Store(true)
	b.mu.Unlock()

	b.settle()
}

func (b *batch[T, R]) remaining() (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.totalKnown {
		return 0, false
	}
	return max(b.total-b.completed, 0), true
}

func (b *batch[T, R]) totalCount() (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total, b.totalKnown
}

// settle publishes the outcome exactly once, running the callbacks before
// the result becomes visible to waiters.
func (b *batch[T, R]) settle() {
	b.once.Do(func() {
		b.pool.forget(b.id)

		b.mu.Lock()
		err := b.err
		parts := b.parts
		total := b.total
		b.mu.Unlock()

		if err != nil {
			if b.onError != nil {
				b.onError(err)
			}
			b.result.future.Complete(nil, b.id, err)
			return
		}

		values := make([]R, 0, total)
		for _, part := range parts {
			values = append(values, part...)
		}
		if b.onSuccess != nil {
			b.onSuccess(values)
		}
		b.result.future.Complete(values, b.id, nil)
	})
}
