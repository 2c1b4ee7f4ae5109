package benchmarks

import (
	"context"
	"time"

	"github.com/utkarsh5026/parmap/parmap"
)

// cpuBoundWork simulates a CPU-intensive operation
func cpuBoundWork(iterations int) func(ctx context.Context, task int) (int, error) {
	return func(ctx context.Context, task int) (int, error) {
		result := 0
		for i := range iterations {
			result += i * task
		}
		return result, nil
	}
}

// ioBoundWork simulates an I/O operation with a delay
func ioBoundWork(delay time.Duration) func(ctx context.Context, task int) (int, error) {
	return func(ctx context.Context, task int) (int, error) {
		select {
		case <-time.After(delay):
			return task * 2, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

// asCall adapts a pool-style function to a parmap target.
func asCall(fn func(ctx context.Context, task int) (int, error)) parmap.Func[int] {
	return func(ctx context.Context, c parmap.Call) (int, error) {
		return fn(ctx, parmap.Arg[int](c, 0))
	}
}

func makeTasks(n int) []int {
	tasks := make([]int, n)
	for i := range tasks {
		tasks[i] = i
	}
	return tasks
}

func reportThroughput(elapsedNs int64, n, taskCount int) float64 {
	nsPerOp := float64(elapsedNs) / float64(n)
	return float64(taskCount) / nsPerOp * 1e9
}
