//go:build !linux && !darwin && !windows

package cpu

import "runtime"

func available() int {
	return runtime.NumCPU()
}

// SetupWorkerAffinity locks the goroutine to an OS thread; pinning is not
// supported on this platform.
func SetupWorkerAffinity(workerID int) func() {
	runtime.LockOSThread()

	return func() {
		runtime.UnlockOSThread()
	}
}
