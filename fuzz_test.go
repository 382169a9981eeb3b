package fastrow

import (
	"errors"
	"reflect"
	"testing"
)

// FuzzParseConsistency cross-checks the copying emitter, the slicing
// emitter, and the streaming coordinator over arbitrary inputs and chunk
// partitions. The seed corpus covers the structural alphabet
// {a, ',', '"', '\n', '\r', '|'}.
func FuzzParseConsistency(f *testing.F) {
	seeds := []string{
		"",
		"a,b,c\n1,2,3\n",
		`"hello, world","he said ""hi"""` + "\n",
		"\"line1\nline2\",x\n",
		`"unterminated,x` + "\n",
		"a\"b,c\n",
		"a,b\r\nc,d\r\n",
		"\r\n\r\n",
		"a|b,c|d\n",
		`""""` + "\n",
		",,,\n",
		"\ra\r",
	}
	for _, seed := range seeds {
		f.Add(seed, 3)
	}

	f.Fuzz(func(t *testing.T, input string, step int) {
		if len(input) > 1<<12 {
			t.Skip()
		}
		data := []byte(input)
		cfg := DefaultConfig()

		wantRows, wantErr := Parse(data, cfg)
		want := rowsToStrings(wantRows)

		// The slicing emitter must agree field for field.
		sliced, slicedErr := ParseSlices(data, cfg)
		if !reflect.DeepEqual(want, rowsToStrings(sliced)) {
			t.Fatalf("slice mismatch:\ncopy=%q\nslice=%q\ninput=%q", want, rowsToStrings(sliced), input)
		}
		if !sameParseFault(wantErr, slicedErr) {
			t.Fatalf("slice error mismatch: %v vs %v, input=%q", wantErr, slicedErr, input)
		}

		// Streaming over an arbitrary partition must agree as well.
		if step <= 0 {
			step = 1
		}
		s := NewStreamer(cfg)
		var got [][][]byte
		var gotErr error
		for pos := 0; pos < len(data); pos += step {
			end := pos + step
			if end > len(data) {
				end = len(data)
			}
			rows, err := s.Feed(data[pos:end])
			got = append(got, rows...)
			if err != nil && gotErr == nil {
				gotErr = err
			}
		}
		rows, err := s.Finalize()
		got = append(got, rows...)
		if err != nil && gotErr == nil {
			gotErr = err
		}

		if !reflect.DeepEqual(want, rowsToStrings(got)) {
			t.Fatalf("stream mismatch (step=%d):\nparse=%q\nstream=%q\ninput=%q", step, want, rowsToStrings(got), input)
		}
		if !sameParseFault(wantErr, gotErr) {
			t.Fatalf("stream error mismatch (step=%d): %v vs %v, input=%q", step, wantErr, gotErr, input)
		}
	})
}

// sameParseFault compares two parse outcomes by sentinel reason and, when
// both carry one, position.
func sameParseFault(a, b error) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	if a == nil {
		return true
	}
	for _, sentinel := range []error{ErrUnterminatedEscape, ErrUnexpectedEscape, ErrCollectorOverflow, ErrBufferLimit} {
		if errors.Is(a, sentinel) != errors.Is(b, sentinel) {
			return false
		}
	}
	var pa, pb *ParseError
	if errors.As(a, &pa) && errors.As(b, &pb) {
		return pa.Pos == pb.Pos
	}
	return true
}

// FuzzUnescapeNeverGrows checks the decoder's buffer-sizing contract.
func FuzzUnescapeNeverGrows(f *testing.F) {
	f.Add(`a""b`, `"`)
	f.Add("x####y", "##")
	f.Fuzz(func(t *testing.T, src, esc string) {
		if len(esc) == 0 || len(esc) > MaxPatternLen || len(src) > 1<<12 {
			t.Skip()
		}
		got := unescapeInto(nil, []byte(src), []byte(esc))
		if len(got) > len(src) {
			t.Fatalf("decoded grew: %d > %d (src=%q esc=%q)", len(got), len(src), src, esc)
		}
	})
}
