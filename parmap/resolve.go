package parmap

import (
	"fmt"
	"slices"

	"github.com/utkarsh5026/parmap/internal/warn"
	"github.com/utkarsh5026/parmap/pool"
)

// Keyword spellings of the options.
const (
	keyParallel      = "pm_parallel"
	keyChunkSize     = "pm_chunksize"
	keyPool          = "pm_pool"
	keyProcesses     = "pm_processes"
	keyProgress      = "pm_pbar"
	keyCallback      = "pm_callback"
	keyErrorCallback = "pm_error_callback"
)

// optionKey pairs an option's keyword with its deprecated spelling.
type optionKey struct {
	name, alias string
}

var commonKeys = []optionKey{
	{keyParallel, "parallel"},
	{keyChunkSize, "chunksize"},
	{keyPool, "pool"},
	{keyProcesses, "processes"},
}

// Keywords recognized by each kind of call, in the order they are applied.
// Synchronous calls take the progress option; asynchronous calls take the
// callbacks. Any other keyword, including those of the other kind, is
// forwarded to the target function.
var (
	syncKeys  = slices.Concat(commonKeys, []optionKey{{keyProgress, "parmap_progress"}})
	asyncKeys = slices.Concat(commonKeys, []optionKey{{keyCallback, "callback"}, {keyErrorCallback, "error_callback"}})
)

// warnOnce reports a deprecated spelling the first time this process sees
// it.
var warnOnce = warn.Once

// applyKwargs pulls option keys out of kw and forwards the rest. Current
// spellings are applied first and deprecated ones after, so a deprecated
// spelling wins when both are given.
func (c *config) applyKwargs(kw Kwargs) {
	keys := syncKeys
	if c.async {
		keys = asyncKeys
	}

	for _, k := range keys {
		if v, ok := kw[k.name]; ok {
			c.applyKey(k.name, v)
		}
	}
	for _, k := range keys {
		v, ok := kw[k.alias]
		if !ok {
			continue
		}
		warnOnce("parmap.deprecated."+k.alias, warn.Warning{
			Category: warn.Deprecation,
			Message:  fmt.Sprintf("Argument '%s' is deprecated. Use %s instead", k.alias, k.name),
		})
		c.applyKey(k.name, v)
	}

	for k, v := range kw {
		recognized := slices.ContainsFunc(keys, func(o optionKey) bool {
			return o.name == k || o.alias == k
		})
		if !recognized {
			c.kwargs[k] = v
		}
	}
}

func (c *config) applyKey(key string, v any) {
	switch key {
	case keyParallel:
		b, ok := v.(bool)
		if !ok {
			c.fail(&OptionError{Name: key, Value: v, Reason: "must be a bool"})
			return
		}
		c.parallel = b

	case keyChunkSize:
		switch n := v.(type) {
		case nil:
			c.chunkSize = 0
		case int:
			WithChunkSize(n)(c)
		default:
			c.fail(&OptionError{Name: key, Value: v, Reason: "must be an int or nil"})
		}

	case keyPool:
		switch p := v.(type) {
		case nil:
			c.pool = nil
		case *pool.Pool:
			c.pool = p
		default:
			c.fail(&OptionError{Name: key, Value: v, Reason: "must be a *pool.Pool or nil"})
		}

	case keyProcesses:
		switch n := v.(type) {
		case nil:
			c.workers, c.workersSet, c.invalidWorkers = 0, false, nil
		case int:
			WithWorkers(n)(c)
		default:
			// Not an option error: like a negative count, it only means no
			// pool can be created.
			c.workersSet = false
			c.invalidWorkers = v
		}

	case keyProgress:
		b, ok := v.(bool)
		if !ok {
			c.fail(&OptionError{Name: key, Value: v, Reason: "must be a bool"})
			return
		}
		c.progress = b

	case keyCallback:
		c.callback = v

	case keyErrorCallback:
		switch fn := v.(type) {
		case nil:
			c.errorCallback = nil
		case func(error):
			c.errorCallback = fn
		default:
			c.fail(&OptionError{Name: key, Value: v, Reason: "must be a func(error)"})
		}
	}
}

// acquire decides whether the call runs in parallel and on which pool.
// owns is true only when the pool was created here, in which case the
// caller of acquire must shut it down. A pool that cannot be created is
// reported as a warning and the call runs serially.
func (c *config) acquire() (parallel bool, p *pool.Pool, owns bool) {
	if !c.parallel {
		return false, nil, false
	}
	if c.pool != nil {
		return true, c.pool, false
	}

	if c.invalidWorkers != nil {
		warn.Runtimef("parmap: cannot create pool with %v workers (%T), running serially",
			c.invalidWorkers, c.invalidWorkers)
		return false, nil, false
	}

	opts := slices.Clone(c.poolOpts)
	if c.workersSet {
		opts = append(opts, pool.WithWorkerCount(c.workers))
	}

	p, err := pool.New(opts...)
	if err != nil {
		warn.Runtimef("parmap: cannot create pool: %v, running serially", err)
		return false, nil, false
	}
	return true, p, true
}
