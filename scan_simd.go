//go:build goexperiment.simd && amd64

package fastrow

import (
	"bytes"
	"math/bits"
	"simd/archsimd"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// =============================================================================
// AVX-512 CPU Detection and Fallback
// =============================================================================
//
// NOTE: The simd/archsimd package in Go 1.26 is an experimental feature
// enabled via GOEXPERIMENT=simd. The archsimd.Int8x32.Equal().ToBits() method
// internally uses the VPMOVB2M instruction (AVX-512BW), which raises SIGILL
// on CPUs without AVX-512 support, so every vector path below is gated on the
// runtime feature check and falls back to the scalar kernels.
//
// TODO: Replace golang.org/x/sys/cpu usage with an official archsimd feature
// API once the package provides one.
//
// =============================================================================

// useAVX512 indicates whether AVX-512 instructions are available at runtime.
// Set once at init time and used to dispatch to the vector implementations.
//
// NOTE: All three feature flags are required:
//   - AVX512F: Foundation 512-bit vector operations
//   - AVX512BW: Byte/word granularity operations (ToBits() uses VPMOVB2M)
//   - AVX512VL: 128/256-bit vector support with AVX-512 instructions
var useAVX512 bool

const (
	// scanVectorWidth is the number of bytes processed per SIMD iteration.
	scanVectorWidth = 32

	// scanMinThreshold is the minimum data size for the vector path to be
	// beneficial; shorter inputs go straight to the scalar kernels.
	scanMinThreshold = 32
)

func init() {
	useAVX512 = cpu.X86.HasAVX512F && cpu.X86.HasAVX512BW && cpu.X86.HasAVX512VL
}

// shouldUseSIMD reports whether the vector path should be used for dataLen
// bytes. This centralizes the eligibility check used across the kernels.
func shouldUseSIMD(dataLen int) bool {
	return useAVX512 && dataLen >= scanMinThreshold
}

// loadChunk loads scanVectorWidth bytes starting at data[i].
// Precondition: i+scanVectorWidth <= len(data).
func loadChunk(data []byte, i int) archsimd.Int8x32 {
	return archsimd.LoadInt8x32((*[scanVectorWidth]int8)(unsafe.Pointer(&data[i])))
}

// findByteIndex returns the index of the first occurrence of b in data, or -1.
func findByteIndex(data []byte, b byte) int {
	if !shouldUseSIMD(len(data)) {
		return bytes.IndexByte(data, b)
	}
	cmp := archsimd.BroadcastInt8x32(int8(b))
	i := 0
	for i+scanVectorWidth <= len(data) {
		mask := loadChunk(data, i).Equal(cmp).ToBits()
		if mask != 0 {
			return i + bits.TrailingZeros32(mask)
		}
		i += scanVectorWidth
	}
	if j := bytes.IndexByte(data[i:], b); j >= 0 {
		return i + j
	}
	return -1
}

// countByte returns the number of occurrences of b in data, accumulating the
// popcount of the per-chunk comparison masks.
func countByte(data []byte, b byte) int {
	if !shouldUseSIMD(len(data)) {
		return bytes.Count(data, []byte{b})
	}
	cmp := archsimd.BroadcastInt8x32(int8(b))
	n := 0
	i := 0
	for i+scanVectorWidth <= len(data) {
		n += bits.OnesCount32(loadChunk(data, i).Equal(cmp).ToBits())
		i += scanVectorWidth
	}
	return n + bytes.Count(data[i:], []byte{b})
}

// findAnyOfThree returns the index of the first occurrence of a, b, or c in
// data, or -1. Three broadcast compares per chunk, masks ORed, lowest set bit
// wins; the tail goes through the scalar kernel.
func findAnyOfThree(data []byte, a, b, c byte) int {
	if !shouldUseSIMD(len(data)) {
		return findAnyOfThreeScalar(data, a, b, c)
	}
	cmpA := archsimd.BroadcastInt8x32(int8(a))
	cmpB := archsimd.BroadcastInt8x32(int8(b))
	cmpC := archsimd.BroadcastInt8x32(int8(c))
	i := 0
	for i+scanVectorWidth <= len(data) {
		chunk := loadChunk(data, i)
		mask := chunk.Equal(cmpA).ToBits() | chunk.Equal(cmpB).ToBits() | chunk.Equal(cmpC).ToBits()
		if mask != 0 {
			return i + bits.TrailingZeros32(mask)
		}
		i += scanVectorWidth
	}
	if j := findAnyOfThreeScalar(data[i:], a, b, c); j >= 0 {
		return i + j
	}
	return -1
}

// findAnyOf returns the index of the first byte of data that is a member of
// the target class, or -1. One broadcast compare per target (at most 10:
// eight separator first bytes plus the two newline bytes), masks ORed.
func findAnyOf(data []byte, targets []byte, table *[256]bool) int {
	if !shouldUseSIMD(len(data)) {
		return findAnyOfScalar(data, table)
	}
	cmps := make([]archsimd.Int8x32, len(targets))
	for t, b := range targets {
		cmps[t] = archsimd.BroadcastInt8x32(int8(b))
	}
	i := 0
	for i+scanVectorWidth <= len(data) {
		chunk := loadChunk(data, i)
		var mask uint32
		for _, cmp := range cmps {
			mask |= chunk.Equal(cmp).ToBits()
		}
		if mask != 0 {
			return i + bits.TrailingZeros32(mask)
		}
		i += scanVectorWidth
	}
	if j := findAnyOfScalar(data[i:], table); j >= 0 {
		return i + j
	}
	return -1
}
