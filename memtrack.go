//go:build fastrow_memtrack

package fastrow

import "sync/atomic"

// Optional allocation tracking, compiled in with -tags fastrow_memtrack.
// Counts are approximate diagnostics: adds use plain atomic increments and
// the peak is maintained with a CAS loop; monotonic ordering suffices.

var (
	memCurrent atomic.Int64
	memPeak    atomic.Int64
)

func memAdd(n int64) {
	cur := memCurrent.Add(n)
	for {
		peak := memPeak.Load()
		if cur <= peak || memPeak.CompareAndSwap(peak, cur) {
			return
		}
	}
}

func memRelease(n int64) {
	memCurrent.Add(-n)
}

// MemStats returns the currently tracked byte count and the historical peak.
func MemStats() (current, peak int64) {
	return memCurrent.Load(), memPeak.Load()
}
