package fastrow

import "bytes"

// =============================================================================
// Byte-Class Scanning
// =============================================================================
//
// The scanner is specialized to small byte classes: the structural characters
// of a CSV stream (separator bytes, newline bytes, escape bytes). Each
// primitive has a vectorized implementation in scan_simd.go (32 bytes per
// iteration, AVX-512 gated) and a portable implementation in scan_portable.go;
// the scalar kernels below serve as the shared epilogue for partial chunks.
//
// =============================================================================

// delimKind distinguishes the two boundary kinds findNextDelimiter reports.
type delimKind uint8

const (
	delimSeparator delimKind = iota
	delimNewline
)

// delimiter describes the next field or row boundary in a scanned slice.
// pos is relative to the slice handed to findNextDelimiter.
type delimiter struct {
	pos    int
	length int
	kind   delimKind
}

// findNextDelimiter locates the next boundary in data: a separator match or a
// newline. A \r immediately followed by \n is one newline of length 2; a bare
// \r or \n is a newline of length 1. At a position where both a separator and
// a newline could match, the separator wins, mirroring the engine's
// post-field ordering.
func findNextDelimiter(data []byte, cfg *Config) (delimiter, bool) {
	if cfg.singleSep {
		return findNextDelimiterFast(data, cfg.sepByte)
	}
	return findNextDelimiterGeneral(data, cfg)
}

// findNextDelimiterFast is the single-byte-separator path: one three-target
// scan with no candidate verification.
func findNextDelimiterFast(data []byte, sep byte) (delimiter, bool) {
	i := findAnyOfThree(data, sep, '\n', '\r')
	if i < 0 {
		return delimiter{}, false
	}
	switch data[i] {
	case sep:
		return delimiter{pos: i, length: 1, kind: delimSeparator}, true
	case '\r':
		if i+1 < len(data) && data[i+1] == '\n' {
			return delimiter{pos: i, length: 2, kind: delimNewline}, true
		}
		return delimiter{pos: i, length: 1, kind: delimNewline}, true
	default: // '\n'
		return delimiter{pos: i, length: 1, kind: delimNewline}, true
	}
}

// findNextDelimiterGeneral scans for any separator first byte or a newline
// byte, verifies the full separator pattern at each candidate, and advances
// past candidates that fail verification.
func findNextDelimiterGeneral(data []byte, cfg *Config) (delimiter, bool) {
	pos := 0
	for pos < len(data) {
		i := findAnyOf(data[pos:], cfg.scanTargets, &cfg.scanTable)
		if i < 0 {
			return delimiter{}, false
		}
		abs := pos + i
		if n, ok := cfg.MatchSeparatorAt(data, abs); ok {
			return delimiter{pos: abs, length: n, kind: delimSeparator}, true
		}
		switch data[abs] {
		case '\r':
			if abs+1 < len(data) && data[abs+1] == '\n' {
				return delimiter{pos: abs, length: 2, kind: delimNewline}, true
			}
			return delimiter{pos: abs, length: 1, kind: delimNewline}, true
		case '\n':
			return delimiter{pos: abs, length: 1, kind: delimNewline}, true
		}
		pos = abs + 1
	}
	return delimiter{}, false
}

// findPattern returns the index of the first occurrence of pattern in data,
// or -1. It filters candidates with a single-byte search on pattern[0] and
// verifies the remaining bytes; on mismatch it advances one byte and repeats.
func findPattern(data, pattern []byte) int {
	if len(pattern) == 0 {
		return -1
	}
	if len(pattern) == 1 {
		return findByteIndex(data, pattern[0])
	}
	pos := 0
	for {
		i := findByteIndex(data[pos:], pattern[0])
		if i < 0 {
			return -1
		}
		abs := pos + i
		if abs+len(pattern) > len(data) {
			return -1
		}
		if bytes.Equal(data[abs:abs+len(pattern)], pattern) {
			return abs
		}
		pos = abs + 1
	}
}

// =============================================================================
// Scalar Kernels (shared epilogue)
// =============================================================================

// findAnyOfThreeScalar is the scalar three-target search.
func findAnyOfThreeScalar(data []byte, a, b, c byte) int {
	for i, d := range data {
		if d == a || d == b || d == c {
			return i
		}
	}
	return -1
}

// findAnyOfScalar is the scalar byte-class search over the precomputed table.
func findAnyOfScalar(data []byte, table *[256]bool) int {
	for i, d := range data {
		if table[d] {
			return i
		}
	}
	return -1
}
