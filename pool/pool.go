package pool

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/utkarsh5026/parmap/internal/cpu"
)

// Pool is a fixed-size set of worker goroutines that execute submitted
// batches chunk by chunk.
//
// A Pool starts its workers in New and keeps them until it is shut down.
// Shutdown is either graceful (Close, then Join) or forced (Terminate).
// Batches submitted to the same pool share its workers; batches submitted to
// different pools run independently of each other.
type Pool struct {
	workers     int
	rateLimiter *rate.Limiter
	pinWorkers  bool

	chunks chan runner
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	closed    bool
	batches   map[uint64]aborter
	producers sync.WaitGroup
	closeOnce sync.Once
	nextBatch atomic.Uint64

	done chan struct{} // closed once every worker has exited
}

// runner is one queued unit of work: a chunk of a batch.
type runner interface {
	run(ctx context.Context, limiter *rate.Limiter)
}

// aborter is a batch that can be failed from outside, used by Terminate.
type aborter interface {
	abort(err error)
}

// New creates a pool and starts its workers.
//
// Default configuration:
//   - workerCount: CPUs available to the process (affinity aware)
//   - taskBuffer: equal to workerCount
//
// It returns ErrInvalidWorkerCount if WithWorkerCount was given a value below one.
//
// Example:
//
//	p, err := pool.New(pool.WithWorkerCount(4))
//	if err != nil {
//	    return err
//	}
//	defer p.Terminate()
func New(opts ...Option) (*Pool, error) {
	cfg := &config{
		workerCount: cpu.DefaultWorkers(),
		taskBuffer:  -1, // Will be set to workerCount if not specified
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.workerCount < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidWorkerCount, cfg.workerCount)
	}
	if cfg.taskBuffer < 0 {
		cfg.taskBuffer = cfg.workerCount
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		workers:     cfg.workerCount,
		rateLimiter: cfg.rateLimiter,
		pinWorkers:  cfg.pinWorkers,
		chunks:      make(chan runner, cfg.taskBuffer),
		ctx:         ctx,
		cancel:      cancel,
		batches:     make(map[uint64]aborter),
		done:        make(chan struct{}),
	}

	var g errgroup.Group
	for i := range p.workers {
		g.Go(func() error {
			return p.worker(i)
		})
	}

	go func() {
		_ = g.Wait()
		debugLog("all %d workers exited", p.workers)
		close(p.done)
		cancel()
	}()

	return p, nil
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.workers
}

// Close stops the pool from accepting new batches. Batches already submitted
// run to completion, after which the workers exit. Close is idempotent.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	go func() {
		p.producers.Wait()
		p.closeChunks()
	}()
}

// Join waits for every worker to exit. The pool must have been closed or
// terminated first, otherwise Join returns ErrPoolRunning.
func (p *Pool) Join() error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()

	if !closed {
		return ErrPoolRunning
	}
	<-p.done
	return nil
}

// Terminate stops the workers without finishing queued work. Every batch
// that has not completed fails with ErrTerminated. Terminate returns once
// all workers have exited and is idempotent.
func (p *Pool) Terminate() {
	p.mu.Lock()
	p.closed = true
	pending := make([]aborter, 0, len(p.batches))
	for _, b := range p.batches {
		pending = append(pending, b)
	}
	p.mu.Unlock()

	p.cancel()
	for _, b := range pending {
		b.abort(ErrTerminated)
	}

	p.producers.Wait()
	p.closeChunks()
	<-p.done
}

func (p *Pool) closeChunks() {
	p.closeOnce.Do(func() {
		close(p.chunks)
	})
}

// register reserves a batch id and a producer slot, failing once the pool
// no longer accepts work.
func (p *Pool) register(newBatch func(id uint64) aborter) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPoolClosed
	}

	id := p.nextBatch.Add(1)
	p.batches[id] = newBatch(id)
	p.producers.Add(1)
	return nil
}

func (p *Pool) forget(id uint64) {
	p.mu.Lock()
	delete(p.batches, id)
	p.mu.Unlock()
}

// MapAsync submits fn over items as one batch and returns immediately.
//
// Items are grouped into chunks of opts.ChunkSize (computed with
// DefaultChunkSize when zero); each chunk is handed to one worker, which
// processes it in order. The returned result yields the outputs in input
// order or the first error any worker hit. After a failure, chunks of the
// batch that have not started are skipped.
//
// It returns ErrPoolClosed if the pool was closed or terminated.
func MapAsync[T, R any](
	p *Pool,
	fn ProcessFunc[T, R],
	items iter.Seq[T],
	opts SubmitOptions[R],
) (*AsyncResult[R], error) {
	var b *batch[T, R]
	err := p.register(func(id uint64) aborter {
		b = newBatch(id, p, fn, opts)
		return b
	})
	if err != nil {
		return nil, err
	}

	debugLog("batch %d submitted: size hint %d, chunk size %d", b.id, opts.SizeHint, opts.ChunkSize)
	go b.produce(items, opts.SizeHint)
	return b.result, nil
}

// Map is MapAsync followed by Get.
func Map[T, R any](p *Pool, fn ProcessFunc[T, R], items []T, chunkSize int) ([]R, error) {
	res, err := MapAsync(p, fn, slices.Values(items), SubmitOptions[R]{
		ChunkSize: chunkSize,
		SizeHint:  len(items),
	})
	if err != nil {
		return nil, err
	}
	return res.Get(0)
}

func (p *Pool) worker(id int) error {
	if p.pinWorkers {
		defer cpu.SetupWorkerAffinity(id)()
	}

	for {
		select {
		case <-p.ctx.Done():
			return p.ctx.Err()

		case c, ok := <-p.chunks:
			if !ok {
				return nil
			}
			c.run(p.ctx, p.rateLimiter)
		}
	}
}
