package parmap

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/utkarsh5026/parmap/internal/progress"
	"github.com/utkarsh5026/parmap/pool"
)

// ErrInvalidOption is wrapped by every *OptionError.
var ErrInvalidOption = errors.New("parmap: invalid option")

// OptionError reports a recognized option given a value it cannot take.
type OptionError struct {
	Name   string
	Value  any
	Reason string
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("parmap: option %s=%v (%T): %s", e.Name, e.Value, e.Value, e.Reason)
}

func (e *OptionError) Unwrap() error {
	return ErrInvalidOption
}

// Option configures a single Map, StarMap or async call.
type Option func(*config)

// config is the resolved configuration of one call. It is built fresh for
// every call and never shared.
type config struct {
	async     bool // keyword set of MapAsync and friends
	parallel  bool
	chunkSize int // 0 = automatic

	pool           *pool.Pool
	poolOpts       []pool.Option
	workers        int
	workersSet     bool
	invalidWorkers any // a worker count of the wrong type, reported when the pool is created

	progress         bool
	progressInterval time.Duration
	progressWriter   io.Writer

	args   []any
	kwargs Kwargs

	callback      any // func([]R), checked once R is known
	errorCallback func(error)

	err error // first invalid option
}

func newConfig(opts []Option, async bool) (*config, error) {
	cfg := &config{
		async:            async,
		parallel:         true,
		progressInterval: progress.DefaultInterval,
		progressWriter:   os.Stderr,
		kwargs:           Kwargs{},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.err != nil {
		return nil, cfg.err
	}
	return cfg, nil
}

func (c *config) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

// WithParallel turns parallel execution on or off. When off, items are
// processed one after another on the calling goroutine. Default: on.
func WithParallel(parallel bool) Option {
	return func(c *config) {
		c.parallel = parallel
	}
}

// WithChunkSize sets how many items a worker takes at a time. Zero picks a
// size giving each worker about four chunks.
func WithChunkSize(size int) Option {
	return func(c *config) {
		if size < 0 {
			c.fail(&OptionError{Name: "chunk size", Value: size, Reason: "must not be negative"})
			return
		}
		c.chunkSize = size
	}
}

// WithPool runs the call on an existing pool. The call never closes, joins or
// terminates it; the caller keeps ownership. A nil pool restores the default
// of creating one per call.
func WithPool(p *pool.Pool) Option {
	return func(c *config) {
		c.pool = p
	}
}

// WithWorkers sets the size of the pool created for the call. It has no
// effect together with WithPool. A count below one cannot create a pool: the
// call warns and runs serially.
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
		c.workersSet = true
		c.invalidWorkers = nil
	}
}

// WithPoolOptions passes extra options (rate limit, CPU pinning, task buffer)
// to the pool created for the call.
func WithPoolOptions(opts ...pool.Option) Option {
	return func(c *config) {
		c.poolOpts = append(c.poolOpts, opts...)
	}
}

// WithProgress shows a progress bar while the call runs. Asynchronous calls
// accept and ignore it. Enabling it never changes the results.
func WithProgress(show bool) Option {
	return func(c *config) {
		c.progress = show
	}
}

// WithProgressInterval sets how often a parallel call samples its progress.
// Default: 2s.
func WithProgressInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.progressInterval = d
		}
	}
}

// WithProgressWriter sets where the progress bar is drawn. Default: stderr.
func WithProgressWriter(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.progressWriter = w
		}
	}
}

// WithArgs appends extra positional arguments passed to every call after
// the item.
func WithArgs(args ...any) Option {
	return func(c *config) {
		c.args = append(c.args, args...)
	}
}

// WithKwargs adds keyword arguments. Keys naming options configure the call
// (see the package documentation); all others reach the target function.
func WithKwargs(kw Kwargs) Option {
	return func(c *config) {
		c.applyKwargs(kw)
	}
}

// WithKwarg adds a single keyword argument, like WithKwargs.
func WithKwarg(name string, value any) Option {
	return WithKwargs(Kwargs{name: value})
}

// WithCallback registers fn to be called by the pool with the ordered results
// when a parallel batch succeeds. It is not called for serial runs.
func WithCallback[R any](fn func([]R)) Option {
	return func(c *config) {
		c.callback = fn
	}
}

// WithErrorCallback registers fn to be called by the pool with the first
// error of a failed parallel batch. It is not called for serial runs.
func WithErrorCallback(fn func(error)) Option {
	return func(c *config) {
		c.errorCallback = fn
	}
}

// successCallback returns the callback typed for R, checking a value that
// arrived untyped through Kwargs.
func successCallback[R any](c *config) (func([]R), error) {
	if c.callback == nil {
		return nil, nil
	}
	fn, ok := c.callback.(func([]R))
	if !ok {
		var want func([]R)
		return nil, &OptionError{
			Name:   keyCallback,
			Value:  c.callback,
			Reason: fmt.Sprintf("callback must be %T", want),
		}
	}
	return fn, nil
}
