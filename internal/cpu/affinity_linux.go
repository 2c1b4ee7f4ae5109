//go:build linux

package cpu

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// maxCPUs is the number of CPUs a unix.CPUSet can describe.
const maxCPUs = 1024

// available counts the CPUs in the affinity mask of the calling thread, which
// is smaller than runtime.NumCPU inside restricted cgroups or under taskset.
func available() int {
	var mask unix.CPUSet
	if err := unix.SchedGetaffinity(0, &mask); err != nil {
		return runtime.NumCPU()
	}
	if n := mask.Count(); n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// nthCPU returns the n-th CPU set in mask, wrapping n around the number of
// CPUs in it. ok is false for an empty mask.
func nthCPU(mask *unix.CPUSet, n int) (cpuID int, ok bool) {
	count := mask.Count()
	if count == 0 {
		return 0, false
	}
	n = ((n % count) + count) % count
	for i := range maxCPUs {
		if !mask.IsSet(i) {
			continue
		}
		if n == 0 {
			return i, true
		}
		n--
	}
	return 0, false
}

// pinToCore pins the current OS thread to one CPU of allowed, chosen by
// workerID. Must be called after runtime.LockOSThread().
func pinToCore(allowed *unix.CPUSet, workerID int) error {
	cpuID, ok := nthCPU(allowed, workerID)
	if !ok {
		return unix.EINVAL
	}

	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpuID)

	return unix.SchedSetaffinity(0, &mask) // 0 = current thread
}

// SetupWorkerAffinity locks the goroutine to an OS thread and pins that
// thread to one of the CPUs it may run on, chosen by workerID. The returned
// func restores the thread's previous mask before unlocking it. If the mask
// cannot be restored the thread stays locked, so the runtime discards it when
// the goroutine exits.
func SetupWorkerAffinity(workerID int) func() {
	runtime.LockOSThread()

	var prev unix.CPUSet
	if err := unix.SchedGetaffinity(0, &prev); err != nil {
		return runtime.UnlockOSThread
	}
	if err := pinToCore(&prev, workerID); err != nil {
		return runtime.UnlockOSThread
	}

	return func() {
		if err := unix.SchedSetaffinity(0, &prev); err != nil {
			return
		}
		runtime.UnlockOSThread()
	}
}
