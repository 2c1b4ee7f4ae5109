// Package parmap applies a function to every element of a list, or to every
// tuple of a list of tuples, on a pool of worker goroutines, and returns the
// results in input order.
//
// # Basic Usage
//
//	square := func(ctx context.Context, c parmap.Call) (int, error) {
//	    x := parmap.Arg[int](c, 0)
//	    return x * x, nil
//	}
//	squares, err := parmap.Map(ctx, square, []int{1, 2, 3, 4})
//
// Target functions receive a Call holding the positional arguments (the item
// followed by any WithArgs values) and the keyword arguments. StarMap
// splices each tuple into the positional arguments instead:
//
//	parmap.StarMap(ctx, fn, parmap.Product(xs, ys), parmap.WithArgs(a, b))
//
// is the parallel form of
//
//	for _, x := range xs { for _, y := range ys { fn(x, y, a, b) } }
//
// # Asynchronous Calls
//
// MapAsync and StarMapAsync return at once with an AsyncResult. Get waits
// for the results, Ready and Wait poll for them, and Close (for defer)
// terminates a call that is still running.
//
//	res, err := parmap.MapAsync(ctx, fn, items)
//	if err != nil {
//	    return err
//	}
//	defer res.Close()
//	values, err := res.Get(0)
//
// # Options
//
//   - WithParallel(false): run serially on the calling goroutine
//   - WithWorkers(n): size of the pool created for the call
//   - WithPool(p): run on an existing *pool.Pool, never shut down by the call
//   - WithChunkSize(n): items per worker hand-off (default: about four chunks per worker)
//   - WithProgress(true): draw a progress bar (synchronous calls only)
//   - WithCallback, WithErrorCallback: called by the pool when a parallel call finishes
//
// The same options can be given as keyword arguments, which is convenient
// when they are forwarded from elsewhere: pm_parallel, pm_processes, pm_pool
// and pm_chunksize for every call, pm_pbar for Map and StarMap, and
// pm_callback and pm_error_callback for the Async forms. These keys never
// reach the target function. Keys of the other kind of call are ordinary
// keyword arguments, so a synchronous call forwards pm_callback untouched.
// The older spellings parallel, processes, pool, chunksize, parmap_progress
// (synchronous), callback and error_callback (asynchronous) still work, log a
// deprecation warning the first time each is used, and take precedence over
// the pm_ spelling.
//
// # Serial Fallback
//
// When the pool for a call cannot be created (for example a worker count
// below one), the call emits a RuntimeWarning and runs serially. Its
// results are the same either way. See SetWarningHandler.
package parmap
