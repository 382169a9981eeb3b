package fastrow

// sliceEmitter records fields as sub-slices of the input buffer, copying
// nothing for fields that need no decoding. Fields containing doubled escape
// sequences are decoded into owned byte values. The caller must keep the
// input buffer alive for as long as any returned field references it.
type sliceEmitter struct {
	faultTracker
	rows rowCollector
	cur  [][]byte
}

func (e *sliceEmitter) OnField(input []byte, start, end int, needsUnescape bool, cfg *Config) {
	if e.failed {
		return
	}
	if !needsUnescape {
		e.cur = append(e.cur, input[start:end:end])
		return
	}
	raw := input[start:end]
	e.cur = append(e.cur, unescapeInto(make([]byte, 0, len(raw)), raw, cfg.escape))
}

func (e *sliceEmitter) OnRowEnd(int) {
	if e.failed {
		e.cur = nil
		return
	}
	e.rows.append(e.cur)
	e.cur = nil
}

func (e *sliceEmitter) finish() ([][][]byte, error) {
	rows := e.rows.finish()
	if err := e.fault(); err != nil {
		return rows, err
	}
	if e.rows.overflowed {
		return rows, &ParseError{Pos: -1, Err: ErrCollectorOverflow}
	}
	return rows, nil
}
