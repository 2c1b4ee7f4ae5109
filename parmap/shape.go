package parmap

import (
	"context"
	"iter"
	"maps"
	"runtime/debug"

	"github.com/samber/lo"

	"github.com/utkarsh5026/parmap/pool"
)

type shapeKind uint8

const (
	shapeMap shapeKind = iota
	shapeStarMap
)

func (k shapeKind) String() string {
	if k == shapeStarMap {
		return "starmap"
	}
	return "map"
}

// shape says how a work item becomes the leading positional arguments of a
// call: map puts the item first, starmap splices the tuple.
type shape[T any] struct {
	kind shapeKind
	lead func(item T) []any
}

func mapShape[T any]() shape[T] {
	return shape[T]{
		kind: shapeMap,
		lead: func(item T) []any { return []any{item} },
	}
}

func starMapShape[T any]() shape[[]T] {
	return shape[[]T]{
		kind: shapeStarMap,
		lead: lo.ToAnySlice[T],
	}
}

// source is the input of one dispatch. n is the number of items, or -1 when
// the sequence cannot report it.
type source[T any] struct {
	seq iter.Seq[T]
	n   int
}

// invoke calls fn for one item with the extra arguments appended and its own
// copy of kw. A panic in fn comes back as a *pool.PanicError.
func invoke[T, R any](
	ctx context.Context,
	s shape[T],
	fn Func[R],
	item T,
	extra []any,
	kw Kwargs,
) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &pool.PanicError{Value: r, Stack: debug.Stack()}
		}
	}()

	lead := s.lead(item)
	args := make([]any, 0, len(lead)+len(extra))
	args = append(args, lead...)
	args = append(args, extra...)

	return fn(ctx, Call{Args: args, Kwargs: maps.Clone(kw)})
}

// bind turns fn into a pool.ProcessFunc over items of this shape. Calls see
// a context that ends when either ctx or the pool's own context does, so a
// handle can cancel its batch on a pool it does not own.
func bind[T, R any](ctx context.Context, s shape[T], fn Func[R], extra []any, kw Kwargs) pool.ProcessFunc[T, R] {
	return func(poolCtx context.Context, item T) (R, error) {
		callCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		stop := context.AfterFunc(poolCtx, cancel)
		defer stop()

		return invoke(callCtx, s, fn, item, extra, kw)
	}
}
