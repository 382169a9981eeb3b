package fastrow

// =============================================================================
// Streaming Coordinator
// =============================================================================
//
// The Streamer accepts input in arbitrary chunks, finds the last safe split
// point (the highest offset just past an unquoted newline), runs the engine
// over the complete-row prefix, and retains the suffix for the next feed.
// At rest the buffer is either empty or the continuation of a row not yet
// terminated by an unquoted newline, so separator and escape sequences split
// across chunk boundaries are never cut apart. A CRLF whose \r ends a chunk
// is cut at the \r; the \n that then opens the next chunk is dropped.
//
// =============================================================================

// defaultFeedSizeHint pre-sizes the retained buffer on first use.
const defaultFeedSizeHint = 64 * 1024

// Streamer is the stateful wrapper over the engine for chunked input. A
// Streamer is exclusive to one logical owner; concurrent Feed calls on the
// same Streamer are undefined.
type Streamer struct {
	cfg *Config
	buf []byte
	em  copyEmitter

	// MaxRowSize bounds the retained buffer: when a feed would start with
	// the buffer already past this size, the feed fails with ErrBufferLimit.
	// The retained suffix is always a single unterminated row, so this guard
	// bounds memory when a quoted field never closes. Zero means no limit.
	MaxRowSize int

	// pendingCR is set when a dispatched prefix ended with a bare \r: a \n
	// at the start of the next chunk is the second half of a split CRLF and
	// must not open a new (empty) row.
	pendingCR bool

	// offset is the number of input bytes already consumed ahead of the
	// retained buffer; error positions are rebased onto the full input.
	offset int

	// fault latches the first structural error so a stream, like a single
	// parse, never emits rows past the fault.
	fault error
}

// NewStreamer returns a Streamer that tokenizes with cfg.
func NewStreamer(cfg *Config) *Streamer {
	return &Streamer{cfg: cfg}
}

// Feed appends chunk to the retained buffer, parses the longest
// complete-row prefix, and returns its rows. A nil row slice with a nil
// error means no row boundary has been seen yet.
func (s *Streamer) Feed(chunk []byte) ([][][]byte, error) {
	if s.fault != nil {
		return nil, s.fault
	}
	if s.MaxRowSize > 0 && len(s.buf) > s.MaxRowSize {
		return nil, &ParseError{Pos: -1, Err: ErrBufferLimit}
	}
	if s.pendingCR && len(chunk) > 0 {
		if len(s.buf) == 0 && chunk[0] == '\n' {
			chunk = chunk[1:]
			s.offset++
		}
		s.pendingCR = false
	}
	if s.buf == nil && len(chunk) > 0 {
		s.buf = make([]byte, 0, max(defaultFeedSizeHint, len(chunk)))
		memAdd(int64(cap(s.buf)))
	}
	oldCap := cap(s.buf)
	s.buf = append(s.buf, chunk...)
	if c := cap(s.buf); c != oldCap {
		memAdd(int64(c - oldCap))
	}

	cut := lastCompleteRowBoundary(s.buf, s.cfg)
	if cut == 0 {
		return nil, nil
	}
	s.pendingCR = cut == len(s.buf) && s.buf[cut-1] == '\r'

	rows, err := s.runEngine(s.buf[:cut])
	s.offset += cut
	n := copy(s.buf, s.buf[cut:])
	s.buf = s.buf[:n]
	return rows, err
}

// Finalize parses whatever remains in the buffer, clears it, and returns the
// resulting rows. An unterminated quoted field surfaces here as a partial
// result.
func (s *Streamer) Finalize() ([][][]byte, error) {
	s.pendingCR = false
	if s.fault != nil {
		s.buf = s.buf[:0]
		return nil, s.fault
	}
	if len(s.buf) == 0 {
		return nil, nil
	}
	rows, err := s.runEngine(s.buf)
	s.offset += len(s.buf)
	s.buf = s.buf[:0]
	return rows, err
}

// Status returns the retained buffer length and whether any bytes are
// pending.
func (s *Streamer) Status() (int, bool) {
	return len(s.buf), len(s.buf) > 0
}

// Reset drops the retained buffer and any recorded state so the Streamer can
// be reused for a new input.
func (s *Streamer) Reset() {
	memRelease(int64(cap(s.buf)))
	s.buf = nil
	s.pendingCR = false
	s.offset = 0
	s.fault = nil
	s.em.reset()
}

// runEngine parses data with the reusable copying emitter; the returned rows
// own their bytes, so data may be compacted immediately after. Structural
// errors are rebased onto full-input offsets and latched.
func (s *Streamer) runEngine(data []byte) ([][][]byte, error) {
	s.em.reset()
	ParseWith(data, s.cfg, &s.em)
	rows, err := s.em.finish()
	if err != nil {
		if pe, ok := err.(*ParseError); ok && pe.Pos >= 0 {
			err = &ParseError{Pos: pe.Pos + s.offset, Err: pe.Err}
		}
		s.fault = err
	}
	return rows, err
}

// =============================================================================
// Quote-Aware Boundary Detection
// =============================================================================

// lastCompleteRowBoundary returns the highest offset in buf just past an
// unquoted newline, or 0 when no complete row is present.
func lastCompleteRowBoundary(buf []byte, cfg *Config) int {
	cut := 0
	visitRowBoundaries(buf, cfg, func(c int) bool {
		cut = c
		return true
	})
	return cut
}

// visitRowBoundaries walks buf left to right with a single in-quotes flag
// and invokes fn at each offset just past an unquoted newline. A doubled
// escape inside quotes is inner content (skip both); any other escape
// occurrence toggles the flag. fn returns false to stop the walk.
func visitRowBoundaries(buf []byte, cfg *Config, fn func(int) bool) {
	inQuotes := false
	i := 0
	for i < len(buf) {
		if k, ok := cfg.MatchEscapeAt(buf, i); ok {
			if inQuotes {
				if _, doubled := cfg.MatchEscapeAt(buf, i+k); doubled {
					i += 2 * k
					continue
				}
			}
			inQuotes = !inQuotes
			i += k
			continue
		}
		if !inQuotes {
			if nl := newlineLenAt(buf, i); nl > 0 {
				i += nl
				if !fn(i) {
					return
				}
				continue
			}
		}
		i++
	}
}
