package fastrow

import "io"

// defaultChunkSize is the read size the Reader hands to the streaming
// coordinator per fill.
const defaultChunkSize = 64 * 1024

// Reader adapts an io.Reader to row-at-a-time parsing through the streaming
// coordinator, so arbitrarily large inputs parse in bounded memory.
//
// The exported fields may be changed before the first call to Read or
// ReadAll.
type Reader struct {
	// ChunkSize is the read size per fill. Defaults to 64 KiB.
	ChunkSize int

	// MaxRowSize is forwarded to the Streamer's back-pressure guard.
	// Zero means no limit.
	MaxRowSize int

	r     io.Reader
	s     *Streamer
	chunk []byte

	queue [][][]byte
	qi    int
	err   error
	done  bool
}

// NewReader returns a Reader that tokenizes r with cfg.
func NewReader(r io.Reader, cfg *Config) *Reader {
	return &Reader{
		ChunkSize: defaultChunkSize,
		r:         r,
		s:         NewStreamer(cfg),
	}
}

// Read returns the next row. Rows already parsed are drained before any
// pending error is surfaced; at end of input Read returns io.EOF.
func (r *Reader) Read() ([][]byte, error) {
	for r.qi >= len(r.queue) {
		if r.err != nil {
			return nil, r.err
		}
		if r.done {
			return nil, io.EOF
		}
		r.fill()
	}
	row := r.queue[r.qi]
	r.qi++
	return row, nil
}

// ReadAll reads the remaining rows until end of input. Like the standard
// csv reader, a successful ReadAll returns err == nil, not io.EOF.
func (r *Reader) ReadAll() ([][][]byte, error) {
	var rows [][][]byte
	for {
		row, err := r.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
}

// fill feeds one chunk into the streamer and queues whatever rows complete.
func (r *Reader) fill() {
	if r.chunk == nil {
		size := r.ChunkSize
		if size <= 0 {
			size = defaultChunkSize
		}
		r.chunk = make([]byte, size)
	}
	r.s.MaxRowSize = r.MaxRowSize

	r.queue = nil
	r.qi = 0

	n, err := r.r.Read(r.chunk)
	if n > 0 {
		rows, perr := r.s.Feed(r.chunk[:n])
		r.queue = rows
		if perr != nil {
			r.err = perr
		}
	}
	switch {
	case err == io.EOF:
		rows, perr := r.s.Finalize()
		r.queue = append(r.queue, rows...)
		if perr != nil && r.err == nil {
			r.err = perr
		}
		r.done = true
	case err != nil:
		if r.err == nil {
			r.err = err
		}
		r.done = true
	}
}
