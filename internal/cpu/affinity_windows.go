//go:build windows

package cpu

import (
	"math/bits"
	"runtime"
	"syscall"
	"unsafe"
)

var (
	kernel32               = syscall.NewLazyDLL("kernel32.dll")
	setThreadAffinityMask  = kernel32.NewProc("SetThreadAffinityMask")
	getCurrentThread       = kernel32.NewProc("GetCurrentThread")
	getCurrentProcess      = kernel32.NewProc("GetCurrentProcess")
	getProcessAffinityMask = kernel32.NewProc("GetProcessAffinityMask")
)

func available() int {
	if mask, ok := processMask(); ok {
		return bits.OnesCount(uint(mask))
	}
	return runtime.NumCPU()
}

// processMask returns the CPUs this process may run on, bit N for CPU N.
func processMask() (uintptr, bool) {
	process, _, _ := getCurrentProcess.Call()
	var procMask, sysMask uintptr
	ok, _, _ := getProcessAffinityMask.Call(process,
		uintptr(unsafe.Pointer(&procMask)), uintptr(unsafe.Pointer(&sysMask)))
	return procMask, ok != 0 && procMask != 0
}

// nthCPU returns the bit of the n-th CPU set in mask, wrapping n around the
// number of CPUs in it.
func nthCPU(mask uintptr, n int) uintptr {
	count := bits.OnesCount(uint(mask))
	n = ((n % count) + count) % count
	for ; n > 0; n-- {
		mask &= mask - 1
	}
	return mask & -mask
}

// SetupWorkerAffinity locks the goroutine to an OS thread and pins that
// thread to one of the CPUs the process may run on, chosen by workerID. The
// returned func restores the thread's previous mask before unlocking it.
func SetupWorkerAffinity(workerID int) func() {
	runtime.LockOSThread()

	allowed, ok := processMask()
	if !ok {
		return runtime.UnlockOSThread
	}

	thread, _, _ := getCurrentThread.Call()
	prev, _, _ := setThreadAffinityMask.Call(thread, nthCPU(allowed, workerID))
	if prev == 0 {
		return runtime.UnlockOSThread
	}

	return func() {
		if r, _, _ := setThreadAffinityMask.Call(thread, prev); r == 0 {
			return
		}
		runtime.UnlockOSThread()
	}
}
