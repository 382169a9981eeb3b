package fastrow

// unescapeScratchSize is the scoped buffer used to decode quoted fields in
// the common case; fields longer than this fall back to a scoped heap buffer
// sized to the raw length.
const unescapeScratchSize = 64 * 1024

// copyEmitter materializes every field as an owned byte value and appends
// completed rows to the row collector. It is the backing strategy for
// [Parse], the chunk emitter, and the streaming coordinator.
type copyEmitter struct {
	faultTracker
	rows    rowCollector
	cur     [][]byte
	scratch []byte
}

func (e *copyEmitter) OnField(input []byte, start, end int, needsUnescape bool, cfg *Config) {
	if e.failed {
		return
	}
	raw := input[start:end]
	var val []byte
	switch {
	case !needsUnescape:
		val = append(make([]byte, 0, len(raw)), raw...)
	case len(raw) <= unescapeScratchSize:
		if e.scratch == nil {
			e.scratch = make([]byte, 0, unescapeScratchSize)
		}
		dec := unescapeInto(e.scratch[:0], raw, cfg.escape)
		val = append(make([]byte, 0, len(dec)), dec...)
	default:
		memAdd(int64(len(raw)))
		dec := unescapeInto(make([]byte, 0, len(raw)), raw, cfg.escape)
		val = append(make([]byte, 0, len(dec)), dec...)
		memRelease(int64(len(raw)))
	}
	e.cur = append(e.cur, val)
}

func (e *copyEmitter) OnRowEnd(int) {
	if e.failed {
		e.cur = nil
		return
	}
	e.rows.append(e.cur)
	e.cur = nil
}

// finish returns the collected rows and the partial-result error, if any.
// A structural fault takes precedence over a collector overflow.
func (e *copyEmitter) finish() ([][][]byte, error) {
	rows := e.rows.finish()
	if err := e.fault(); err != nil {
		return rows, err
	}
	if e.rows.overflowed {
		return rows, &ParseError{Pos: -1, Err: ErrCollectorOverflow}
	}
	return rows, nil
}

// reset prepares the emitter for another parse, keeping the unescape scratch.
func (e *copyEmitter) reset() {
	e.faultTracker = faultTracker{}
	e.rows.reset()
	e.cur = nil
}
