package fastrow

// Emitter is the sink the parse engine drives. The engine invokes OnField
// once per field and OnRowEnd once per row, both strictly in input order;
// every OnField of a row precedes that row's OnRowEnd. Field byte ranges
// always satisfy start <= end <= len(input).
//
// OnRowEnd receives the byte offset just past the row's terminating newline
// (len(input) when the row ends at EOF); emitters that don't track offsets
// ignore it.
//
// The error hooks record structural problems without stopping the parse:
// the engine always runs to end of input and the emitter decides how to
// surface partial results.
type Emitter interface {
	OnField(input []byte, start, end int, needsUnescape bool, cfg *Config)
	OnRowEnd(end int)
	OnUnterminatedQuote()
	OnMidFieldEscape(pos int)
}

// faultTracker records the first structural error observed during a parse.
// The concrete emitters embed it; once failed is set they drop the current
// row and everything after it, so rows collected before the fault survive as
// the partial result.
type faultTracker struct {
	failed bool
	errPos int
	reason error
}

func (f *faultTracker) OnUnterminatedQuote() {
	if !f.failed {
		f.failed = true
		f.reason = ErrUnterminatedEscape
		f.errPos = -1
	}
}

func (f *faultTracker) OnMidFieldEscape(pos int) {
	if !f.failed {
		f.failed = true
		f.reason = ErrUnexpectedEscape
		f.errPos = pos
	}
}

// fault returns the recorded error wrapped in a ParseError, or nil.
func (f *faultTracker) fault() error {
	if !f.failed {
		return nil
	}
	return &ParseError{Pos: f.errPos, Err: f.reason}
}
