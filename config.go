package fastrow

import (
	"bytes"
	"errors"
	"fmt"
)

// Configuration limits for separator and escape patterns.
const (
	// MaxSeparators is the maximum number of separator patterns a Config accepts.
	MaxSeparators = 8

	// MaxPatternLen is the maximum byte length of a single separator or escape pattern.
	MaxPatternLen = 16
)

// Sentinel errors returned by [NewConfig].
var (
	ErrNoSeparators    = errors.New("separator list is empty")
	ErrTooManyPatterns = errors.New("too many separator patterns")
	ErrPatternLength   = errors.New("pattern length out of range")
)

// Config is the parsed, validated representation of the separator patterns
// and the escape pattern. It is immutable once built and safe for concurrent
// use by any number of parses.
type Config struct {
	separators [][]byte
	escape     []byte

	// Fast-path predicates precomputed at construction.
	singleSep bool
	sepByte   byte
	singleEsc bool
	escByte   byte

	// firstBytes holds the deduplicated first bytes of all separators,
	// used as the scanner prefilter on the general path.
	firstBytes []byte

	// scanTargets is firstBytes plus the newline bytes, and scanTable is
	// the same set as a byte-class lookup table for the scalar scan path.
	scanTargets []byte
	scanTable   [256]bool
}

// NewConfig builds a Config from up to [MaxSeparators] separator patterns and
// one escape pattern. Patterns are copied; the caller's slices are not
// retained. Construction fails if the separator list is empty or too long,
// or if any separator or the escape is zero-length or longer than
// [MaxPatternLen] bytes.
func NewConfig(separators [][]byte, escape []byte) (*Config, error) {
	if len(separators) == 0 {
		return nil, ErrNoSeparators
	}
	if len(separators) > MaxSeparators {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyPatterns, len(separators), MaxSeparators)
	}
	for i, sep := range separators {
		if len(sep) == 0 || len(sep) > MaxPatternLen {
			return nil, fmt.Errorf("%w: separator %d has %d bytes", ErrPatternLength, i, len(sep))
		}
	}
	if len(escape) == 0 || len(escape) > MaxPatternLen {
		return nil, fmt.Errorf("%w: escape has %d bytes", ErrPatternLength, len(escape))
	}

	c := &Config{
		separators: make([][]byte, len(separators)),
		escape:     append([]byte(nil), escape...),
	}
	for i, sep := range separators {
		c.separators[i] = append([]byte(nil), sep...)
	}

	c.singleSep = len(separators) == 1 && len(separators[0]) == 1
	if c.singleSep {
		c.sepByte = separators[0][0]
	}
	c.singleEsc = len(escape) == 1
	if c.singleEsc {
		c.escByte = escape[0]
	}

	for _, sep := range c.separators {
		b := sep[0]
		if !c.scanTable[b] {
			c.firstBytes = append(c.firstBytes, b)
			c.scanTable[b] = true
		}
	}
	c.scanTargets = append([]byte(nil), c.firstBytes...)
	for _, nl := range []byte{'\n', '\r'} {
		if !c.scanTable[nl] {
			c.scanTargets = append(c.scanTargets, nl)
			c.scanTable[nl] = true
		}
	}

	return c, nil
}

// DefaultConfig returns the RFC 4180 configuration: a single comma separator
// and a double-quote escape.
func DefaultConfig() *Config {
	cfg, err := NewConfig([][]byte{{','}}, []byte{'"'})
	if err != nil {
		panic("fastrow: default config: " + err.Error())
	}
	return cfg
}

// DecodeSeparators decodes the length-prefixed separator wire format
// <count:u8><len1:u8><bytes1><len2:u8><bytes2>... with 1 <= count <= 8 and
// 1 <= len <= 16. It reports ok=false when any bound is violated, bytes are
// truncated, or trailing bytes remain; callers then fall back to the default
// single-comma configuration.
func DecodeSeparators(raw []byte) (separators [][]byte, ok bool) {
	if len(raw) < 1 {
		return nil, false
	}
	count := int(raw[0])
	if count < 1 || count > MaxSeparators {
		return nil, false
	}
	pos := 1
	separators = make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		if pos >= len(raw) {
			return nil, false
		}
		n := int(raw[pos])
		pos++
		if n < 1 || n > MaxPatternLen || pos+n > len(raw) {
			return nil, false
		}
		separators = append(separators, append([]byte(nil), raw[pos:pos+n]...))
		pos += n
	}
	if pos != len(raw) {
		return nil, false
	}
	return separators, true
}

// NewConfigFromWire builds a Config from a wire-encoded separator list and a
// raw escape pattern. An undecodable separator encoding falls back to the
// default single comma; the escape pattern is validated as usual.
func NewConfigFromWire(raw, escape []byte) (*Config, error) {
	seps, ok := DecodeSeparators(raw)
	if !ok {
		seps = [][]byte{{','}}
	}
	return NewConfig(seps, escape)
}

// MatchSeparatorAt reports whether any separator pattern matches input at
// pos, returning the matched pattern's length. Patterns are tried in the
// order supplied to [NewConfig]; the first match wins, which is the
// deterministic tie-break when two patterns share a prefix.
func (c *Config) MatchSeparatorAt(input []byte, pos int) (int, bool) {
	if c.singleSep {
		if pos < len(input) && input[pos] == c.sepByte {
			return 1, true
		}
		return 0, false
	}
	for _, sep := range c.separators {
		if pos+len(sep) <= len(input) && bytes.Equal(input[pos:pos+len(sep)], sep) {
			return len(sep), true
		}
	}
	return 0, false
}

// MatchEscapeAt reports whether the escape pattern matches input at pos,
// returning the pattern length.
func (c *Config) MatchEscapeAt(input []byte, pos int) (int, bool) {
	if c.singleEsc {
		if pos < len(input) && input[pos] == c.escByte {
			return 1, true
		}
		return 0, false
	}
	if pos+len(c.escape) <= len(input) && bytes.Equal(input[pos:pos+len(c.escape)], c.escape) {
		return len(c.escape), true
	}
	return 0, false
}

// IsSingleByteSep reports whether the config has exactly one single-byte
// separator, enabling the scanner fast path.
func (c *Config) IsSingleByteSep() bool { return c.singleSep }

// SepByte returns the separator byte for the single-byte fast path.
// Only meaningful when IsSingleByteSep reports true.
func (c *Config) SepByte() byte { return c.sepByte }

// IsSingleByteEsc reports whether the escape pattern is a single byte.
func (c *Config) IsSingleByteEsc() bool { return c.singleEsc }

// EscByte returns the escape byte for the single-byte fast path.
// Only meaningful when IsSingleByteEsc reports true.
func (c *Config) EscByte() byte { return c.escByte }

// Escape returns the escape pattern. The returned slice must not be modified.
func (c *Config) Escape() []byte { return c.escape }

// Separators returns the separator patterns in match order. The returned
// slices must not be modified.
func (c *Config) Separators() [][]byte { return c.separators }

// SeparatorFirstBytes returns the deduplicated first bytes of all separator
// patterns (at most [MaxSeparators] entries).
func (c *Config) SeparatorFirstBytes() []byte { return c.firstBytes }
