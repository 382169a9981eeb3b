package fastrow

// chunkEmitter is the copying emitter plus tracking of the byte offset at
// which the last completed row ended. The offset stays 0 when no row
// completes, and stops advancing once a structural fault drops rows.
type chunkEmitter struct {
	copyEmitter
	lastRowEnd int
}

func (e *chunkEmitter) OnRowEnd(end int) {
	e.copyEmitter.OnRowEnd(end)
	if !e.failed && !e.rows.overflowed {
		e.lastRowEnd = end
	}
}

func (e *chunkEmitter) finishChunk() ([][][]byte, int, error) {
	rows, err := e.finish()
	return rows, e.lastRowEnd, err
}
