// Package pool is the worker-pool engine behind parmap: a fixed set of
// worker goroutines that process batches of items in chunks and hand back
// ordered results.
//
// # Basic Usage
//
//	p, err := pool.New(pool.WithWorkerCount(4))
//	if err != nil {
//	    return err
//	}
//	results, err := pool.Map(p, func(ctx context.Context, n int) (int, error) {
//	    return n * 2, nil
//	}, []int{1, 2, 3, 4}, 0)
//	p.Close()
//	_ = p.Join()
//
// # Batches and Chunks
//
// MapAsync submits one batch and returns an AsyncResult immediately. The
// batch is cut into chunks of SubmitOptions.ChunkSize items; a worker takes
// a whole chunk and processes it in order. When the chunk size is left at
// zero, DefaultChunkSize picks about four chunks per worker.
//
// Results come back in input order regardless of which worker finished
// first. A batch fails as a whole: the first error (or recovered panic,
// reported as *PanicError) is returned from AsyncResult.Get and no partial
// results are exposed. Chunks of a failed batch that have not started are
// skipped. Nothing is retried.
//
//	res, err := pool.MapAsync(p, fn, slices.Values(items), pool.SubmitOptions[int]{
//	    SizeHint:  len(items),
//	    OnSuccess: func(r []int) { log.Printf("%d results", len(r)) },
//	})
//	for !res.Wait(time.Second) {
//	    n, _ := res.Remaining()
//	    log.Printf("%d items left", n)
//	}
//	values, err := res.Get(0)
//
// # Lifecycle
//
// Workers start in New. Close stops new submissions and lets queued work
// finish; Join then waits for the workers to exit. Terminate cancels the
// context passed to every ProcessFunc, fails unfinished batches with
// ErrTerminated and waits for the workers. A ProcessFunc that ignores its
// context delays Terminate until it returns.
//
// # Configuration Options
//
//   - WithWorkerCount(n): number of workers (default: CPUs available to the process)
//   - WithTaskBuffer(n): chunks queued ahead of the workers (default: worker count)
//   - WithRateLimit(itemsPerSecond, burst): throttle item starts across all workers
//   - WithCPUPinning(true): lock each worker to a thread pinned to a core
//
// Build with -tags debug to trace batches on stderr.
package pool
