//go:build !(goexperiment.simd && amd64)

package fastrow

import "bytes"

// Portable scanner kernels. bytes.IndexByte and bytes.Count are the
// assembly-optimized standard library search routines, so single-byte
// searches need no dedicated vector path here; the multi-target searches
// fall back to the shared scalar kernels.

// findByteIndex returns the index of the first occurrence of b in data, or -1.
func findByteIndex(data []byte, b byte) int {
	return bytes.IndexByte(data, b)
}

// countByte returns the number of occurrences of b in data.
func countByte(data []byte, b byte) int {
	return bytes.Count(data, []byte{b})
}

// findAnyOfThree returns the index of the first occurrence of a, b, or c in
// data, or -1.
func findAnyOfThree(data []byte, a, b, c byte) int {
	return findAnyOfThreeScalar(data, a, b, c)
}

// findAnyOf returns the index of the first byte of data that is a member of
// the target class, or -1. targets lists the class members (at most 10:
// eight separator first bytes plus the two newline bytes); table is the same
// class as a lookup table.
func findAnyOf(data []byte, _ []byte, table *[256]bool) int {
	return findAnyOfScalar(data, table)
}
