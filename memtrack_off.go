//go:build !fastrow_memtrack

package fastrow

// Allocation tracking is compiled out by default; these stubs inline to
// nothing.

func memAdd(int64)     {}
func memRelease(int64) {}

// MemStats returns zeros when allocation tracking is compiled out.
func MemStats() (current, peak int64) {
	return 0, 0
}
