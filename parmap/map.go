package parmap

import (
	"context"
	"errors"
	"iter"
	"slices"

	"github.com/utkarsh5026/parmap/internal/progress"
	"github.com/utkarsh5026/parmap/pool"
)

// Map calls fn once per item and returns the results in input order. Each
// call receives the item as its first positional argument, followed by any
// WithArgs values, and the keyword arguments given with WithKwargs.
//
// By default the items are processed on a pool created for this call and
// shut down before Map returns. If the pool cannot be created, Map warns and
// processes the items serially instead.
//
// The first error returned by fn (or a panic, as *pool.PanicError) fails the
// whole call; no partial results are returned.
//
// Example:
//
//	add := func(ctx context.Context, c parmap.Call) (int, error) {
//	    return parmap.Arg[int](c, 0) + parmap.Arg[int](c, 1), nil
//	}
//	sums, err := parmap.Map(ctx, add, []int{1, 2, 3}, parmap.WithArgs(10))
//	// sums == [11 12 13]
func Map[T, R any](ctx context.Context, fn Func[R], items []T, opts ...Option) ([]R, error) {
	return dispatch(ctx, mapShape[T](), fn, source[T]{seq: slices.Values(items), n: len(items)}, opts)
}

// StarMap is Map for tuples: the elements of each tuple are spliced into the
// positional arguments, ahead of any WithArgs values.
//
//	parmap.StarMap(ctx, fn, [][]int{{1, 2}, {3, 4}})
//
// calls fn with Args [1 2] and then [3 4].
func StarMap[T, R any](ctx context.Context, fn Func[R], tuples [][]T, opts ...Option) ([]R, error) {
	return dispatch(ctx, starMapShape[T](), fn, source[[]T]{seq: slices.Values(tuples), n: len(tuples)}, opts)
}

// MapSeq is Map over a sequence of unknown length. Progress is not shown for
// parallel runs since the total is not known up front.
func MapSeq[T, R any](ctx context.Context, fn Func[R], items iter.Seq[T], opts ...Option) ([]R, error) {
	return dispatch(ctx, mapShape[T](), fn, source[T]{seq: items, n: -1}, opts)
}

// StarMapSeq is StarMap over a sequence of unknown length.
func StarMapSeq[T, R any](ctx context.Context, fn Func[R], tuples iter.Seq[[]T], opts ...Option) ([]R, error) {
	return dispatch(ctx, starMapShape[T](), fn, source[[]T]{seq: tuples, n: -1}, opts)
}

func dispatch[T, R any](ctx context.Context, s shape[T], fn Func[R], src source[T], opts []Option) ([]R, error) {
	cfg, err := newConfig(opts, false)
	if err != nil {
		return nil, err
	}
	onSuccess, err := successCallback[R](cfg)
	if err != nil {
		return nil, err
	}

	parallel, p, owns := cfg.acquire()
	if !parallel {
		return runSerial(ctx, s, fn, src, cfg)
	}
	return runParallel(ctx, s, fn, src, cfg, p, owns, onSuccess)
}

// runSerial processes the items one by one on the calling goroutine.
func runSerial[T, R any](ctx context.Context, s shape[T], fn Func[R], src source[T], cfg *config) ([]R, error) {
	var bar progress.Bar
	if cfg.progress && src.n != 0 {
		bar = progress.New(src.n, cfg.progressWriter, s.kind.String())
	}

	out := make([]R, 0, max(src.n, 0))
	for item := range src.seq {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := invoke(ctx, s, fn, item, cfg.args, cfg.kwargs)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}
	return out, nil
}

// runParallel submits the items as one batch and waits for it. An owned pool
// is closed as soon as the batch is queued and joined before returning; it is
// terminated instead when ctx ends first.
func runParallel[T, R any](
	ctx context.Context,
	s shape[T],
	fn Func[R],
	src source[T],
	cfg *config,
	p *pool.Pool,
	owns bool,
	onSuccess func([]R),
) (values []R, err error) {
	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	res, err := pool.MapAsync(p, bind(callCtx, s, fn, cfg.args, cfg.kwargs), src.seq, pool.SubmitOptions[R]{
		ChunkSize: cfg.chunkSize,
		SizeHint:  src.n,
		OnSuccess: onSuccess,
		OnError:   cfg.errorCallback,
	})
	if err != nil {
		if owns {
			p.Terminate()
		}
		return nil, err
	}

	if owns {
		p.Close()
		defer func() {
			if ctx.Err() != nil && !res.Ready() {
				p.Terminate()
				return
			}
			if joinErr := p.Join(); joinErr != nil && err == nil {
				values, err = nil, errors.Join(err, joinErr)
			}
		}()
	}

	if cfg.progress && src.n > 0 {
		bar := progress.New(src.n, cfg.progressWriter, s.kind.String())
		progress.Track(ctx, res, bar, src.n, cfg.progressInterval)
	}

	return await(ctx, res)
}

// await waits for res or for ctx to end, whichever comes first.
func await[R any](ctx context.Context, res *pool.AsyncResult[R]) ([]R, error) {
	select {
	case <-res.Done():
		return res.Get(0)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
