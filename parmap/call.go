package parmap

import (
	"context"
	"fmt"
)

// Kwargs holds keyword arguments. Keys spelled like options (pm_parallel,
// pm_processes, ...) configure the call; every other key is forwarded to the
// target function.
type Kwargs map[string]any

// Call is what a target function receives for one work item: the positional
// arguments (the item, or the spliced tuple, followed by the extra arguments)
// and the keyword arguments shared by every call.
//
// Each invocation gets its own Args slice and Kwargs map.
type Call struct {
	Args   []any
	Kwargs Kwargs
}

// Func is a target function for Map and friends.
type Func[R any] func(ctx context.Context, c Call) (R, error)

// Arg returns positional argument i converted to T. It panics if the
// argument is missing or of another type; inside a dispatch the panic
// surfaces as a *pool.PanicError from the call.
func Arg[T any](c Call, i int) T {
	if i < 0 || i >= len(c.Args) {
		panic(fmt.Sprintf("parmap: argument %d requested, call has %d", i, len(c.Args)))
	}
	v, ok := c.Args[i].(T)
	if !ok {
		var zero T
		panic(fmt.Sprintf("parmap: argument %d is %T, not %T", i, c.Args[i], zero))
	}
	return v
}

// KwargOr returns keyword argument name converted to T, or def when the call
// has no such keyword. It panics if the keyword holds another type.
func KwargOr[T any](c Call, name string, def T) T {
	raw, ok := c.Kwargs[name]
	if !ok {
		return def
	}
	v, ok := raw.(T)
	if !ok {
		panic(fmt.Sprintf("parmap: keyword %q is %T, not %T", name, raw, def))
	}
	return v
}

// Product returns every combination taking one element from each list, in
// the order nested loops would produce them. The result feeds StarMap:
//
//	parmap.StarMap(ctx, f, parmap.Product(xs, ys), parmap.WithArgs(a, b))
//
// is the parallel form of
//
//	for _, x := range xs { for _, y := range ys { f(x, y, a, b) } }
func Product[T any](lists ...[]T) [][]T {
	if len(lists) == 0 {
		return nil
	}

	total := 1
	for _, l := range lists {
		total *= len(l)
	}
	out := make([][]T, 0, total)
	if total == 0 {
		return out
	}

	idx := make([]int, len(lists))
	for {
		tuple := make([]T, len(lists))
		for i, l := range lists {
			tuple[i] = l[idx[i]]
		}
		out = append(out, tuple)

		// Odometer increment, last list fastest.
		i := len(lists) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(lists[i]) {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return out
		}
	}
}
