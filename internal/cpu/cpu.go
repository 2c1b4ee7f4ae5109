// Package cpu reports how many workers a host can usefully run and pins
// worker goroutines to cores on platforms that support it.
package cpu

import "runtime"

// DefaultWorkers returns the worker count used when a pool is created without
// an explicit size: the number of CPUs this process may run on, capped by
// GOMAXPROCS.
func DefaultWorkers() int {
	return max(min(available(), runtime.GOMAXPROCS(0)), 1)
}
