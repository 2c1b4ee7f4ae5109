package pool

import (
	"golang.org/x/time/rate"
)

// Option is a functional option for configuring a Pool.
type Option func(*config)

type config struct {
	workerCount int
	taskBuffer  int
	rateLimiter *rate.Limiter
	pinWorkers  bool
}

// WithWorkerCount sets the number of worker goroutines. New rejects counts
// below one with ErrInvalidWorkerCount. If not specified, the count of CPUs
// available to the process is used.
func WithWorkerCount(count int) Option {
	return func(cfg *config) {
		cfg.workerCount = count
	}
}

// WithTaskBuffer sets how many chunks may sit queued ahead of the workers.
// If not specified, defaults to the number of workers.
func WithTaskBuffer(size int) Option {
	return func(cfg *config) {
		if size >= 0 {
			cfg.taskBuffer = size
		}
	}
}

// WithRateLimit caps how many work items all workers together start per
// second. burst is the number of items that may start back to back.
// If not specified, no rate limiting is applied.
//
// Example:
//
//	WithRateLimit(10, 5) // 10 items/sec with bursts of 5
func WithRateLimit(itemsPerSecond float64, burst int) Option {
	return func(cfg *config) {
		if itemsPerSecond > 0 && burst > 0 {
			cfg.rateLimiter = rate.NewLimiter(rate.Limit(itemsPerSecond), burst)
		}
	}
}

// WithCPUPinning locks each worker to its own OS thread and, where the
// platform allows, pins that thread to a core.
func WithCPUPinning(enabled bool) Option {
	return func(cfg *config) {
		cfg.pinWorkers = enabled
	}
}
