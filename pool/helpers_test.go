package pool

import "testing"

// newTestPool creates a pool that is terminated when the test ends.
func newTestPool(t *testing.T, opts ...Option) *Pool {
	t.Helper()
	p, err := New(opts...)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	t.Cleanup(p.Terminate)
	return p
}

func seqOf(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	return items
}
