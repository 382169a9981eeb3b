package fastrow

// =============================================================================
// Parse Engine
// =============================================================================
//
// The engine walks the input in field/row units, driving an Emitter. It uses
// a two-state machine for quoted regions:
//
//   UNQUOTED  ---(escape)-->  QUOTED
//   QUOTED    ---(escape)-->  UNQUOTED
//
// When QUOTED:
//   - Separators and newlines are field content
//   - A doubled escape pattern is a literal escape (needsUnescape is set)
//   - A single escape pattern closes the field
//
// When UNQUOTED:
//   - Separators and newlines delimit fields and rows
//   - An escape pattern anywhere in the field span is a structural error
//
// The engine never stops early: structural problems are reported through the
// Emitter's error hooks and the walk continues to end of input, so callers
// always get the rows that parsed cleanly.
//
// The field sequence, as (start, end, needsUnescape) triples, depends only on
// the input and the config, never on the Emitter.
//
// =============================================================================

// ParseWith runs the engine over input, invoking em for each field and each
// completed row. It is generic over the Emitter so the per-field calls
// monomorphize for the built-in emitters.
//
// When the last byte is an unquoted newline, no trailing empty row is
// emitted; when input ends mid-field, the final field and row are still
// emitted. Empty input emits nothing. Ragged rows are not an error.
func ParseWith[E Emitter](input []byte, cfg *Config, em E) {
	if len(input) == 0 {
		return
	}
	pos := 0
	for {
	fields:
		for {
			if k, ok := cfg.MatchEscapeAt(input, pos); ok {
				pos = scanQuotedField(input, cfg, pos, k, em)
			} else {
				pos = scanUnquotedField(input, cfg, pos, em)
			}

			// Post-field: decide whether the row continues, ends, or the
			// byte under pos is stray content after a closing escape.
			for {
				if pos >= len(input) {
					break fields
				}
				if n, ok := cfg.MatchSeparatorAt(input, pos); ok {
					pos += n
					continue fields
				}
				if nl := newlineLenAt(input, pos); nl > 0 {
					pos += nl
					break fields
				}
				em.OnMidFieldEscape(pos)
				d, ok := findNextDelimiter(input[pos:], cfg)
				if !ok {
					pos = len(input)
					break fields
				}
				pos += d.pos
			}
		}
		em.OnRowEnd(pos)
		if pos >= len(input) {
			return
		}
	}
}

// scanQuotedField consumes a quoted field whose opening escape of length k
// starts at openPos. It returns the position just past the closing escape
// (or len(input) when the quote never closes, reported via the error hook).
func scanQuotedField[E Emitter](input []byte, cfg *Config, openPos, k int, em E) int {
	pos := openPos + k
	contentStart := pos
	needsUnescape := false
	for {
		i := findPattern(input[pos:], cfg.escape)
		if i < 0 {
			em.OnUnterminatedQuote()
			pos = len(input)
			break
		}
		abs := pos + i
		if _, ok := cfg.MatchEscapeAt(input, abs+k); ok {
			// Doubled escape: literal content, stays inside the field.
			needsUnescape = true
			pos = abs + 2*k
			continue
		}
		pos = abs + k
		break
	}
	contentEnd := pos - k
	if contentEnd < contentStart {
		contentEnd = contentStart
	}
	em.OnField(input, contentStart, contentEnd, needsUnescape, cfg)
	return pos
}

// scanUnquotedField consumes an unquoted field starting at start and returns
// the position of the delimiter that ended it (or len(input)). Any escape
// pattern inside the span is a structural error.
func scanUnquotedField[E Emitter](input []byte, cfg *Config, start int, em E) int {
	end := len(input)
	if d, ok := findNextDelimiter(input[start:], cfg); ok {
		end = start + d.pos
	}
	if i := findEscapeIn(input[start:end], cfg); i >= 0 {
		em.OnMidFieldEscape(start + i)
	}
	em.OnField(input, start, end, false, cfg)
	return end
}

// findEscapeIn returns the index of the first escape-pattern occurrence in
// span, or -1.
func findEscapeIn(span []byte, cfg *Config) int {
	if cfg.singleEsc {
		return findByteIndex(span, cfg.escByte)
	}
	return findPattern(span, cfg.escape)
}

// newlineLenAt returns the length of the newline at pos (2 for \r\n, 1 for a
// bare \r or \n), or 0 when the byte at pos is not a newline byte.
// A lone \r is accepted as a row terminator.
func newlineLenAt(input []byte, pos int) int {
	switch input[pos] {
	case '\n':
		return 1
	case '\r':
		if pos+1 < len(input) && input[pos+1] == '\n' {
			return 2
		}
		return 1
	}
	return 0
}
