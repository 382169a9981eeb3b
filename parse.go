// Package fastrow is the parsing core of a high-throughput CSV library: a
// byte-stream tokenizer with SIMD-accelerated delimiter scanning, RFC 4180
// quote handling, multi-pattern separators, multi-byte escape sequences, and
// a streaming mode that processes unbounded input in bounded memory.
//
// One generic engine drives four output strategies: owned copies ([Parse],
// [ParseStrings]), zero-copy sub-slices ([ParseSlices]), chunked parsing with
// a last-row offset ([ParseChunk]), and parallel whole-input parsing
// ([ParseParallel]). [Streamer] and [Reader] feed the same engine
// incrementally.
//
// The engine never aborts mid-stream: structural errors (unterminated
// quotes, stray escape characters, collector overflow) surface as a
// [ParseError] alongside the rows that parsed cleanly before the fault.
package fastrow

// Parse tokenizes data and returns the rows as owned byte values. Rows may
// be ragged. On a structural error the rows collected before the fault are
// returned together with a [ParseError].
func Parse(data []byte, cfg *Config) ([][][]byte, error) {
	var em copyEmitter
	ParseWith(data, cfg, &em)
	return em.finish()
}

// ParseSlices tokenizes data with the zero-copy strategy: fields that need
// no decoding alias data directly, fields with doubled escape sequences are
// returned as owned decoded values. The caller must keep data alive while
// any returned field is in use.
func ParseSlices(data []byte, cfg *Config) ([][][]byte, error) {
	var em sliceEmitter
	ParseWith(data, cfg, &em)
	return em.finish()
}

// ParseChunk tokenizes data like [Parse] and additionally returns the byte
// offset just past the last completed row (0 when no row completed).
func ParseChunk(data []byte, cfg *Config) ([][][]byte, int, error) {
	var em chunkEmitter
	ParseWith(data, cfg, &em)
	return em.finishChunk()
}

// ParseStrings tokenizes data and returns each row as a []string. Each row's
// fields are accumulated into one buffer and converted with a single string
// allocation, then sliced per field.
func ParseStrings(data []byte, cfg *Config) ([][]string, error) {
	rows, err := Parse(data, cfg)
	if len(rows) == 0 {
		return nil, err
	}
	out := make([][]string, len(rows))
	var ends []int
	for i, row := range rows {
		total := 0
		for _, f := range row {
			total += len(f)
		}
		buf := make([]byte, 0, total)
		ends = ends[:0]
		for _, f := range row {
			buf = append(buf, f...)
			ends = append(ends, len(buf))
		}
		s := string(buf)
		rec := make([]string, len(row))
		prev := 0
		for j, end := range ends {
			rec[j] = s[prev:end]
			prev = end
		}
		out[i] = rec
	}
	return out, err
}
