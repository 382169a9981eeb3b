package metric

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastrow/fastrow"
)

func TestParserMetrics_Register(t *testing.T) {
	m := NewParserMetrics("test")
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))

	// Double registration must fail, proving everything landed in the registry.
	assert.Error(t, m.Register(reg))
}

func TestParserMetrics_ObserveRows(t *testing.T) {
	m := NewParserMetrics("")
	rows := [][][]byte{
		{[]byte("a"), []byte("b")},
		{[]byte("c")},
	}
	m.ObserveRows(rows)
	m.ObserveRows(nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RowsParsed))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.FieldsParsed))
}

func TestParserMetrics_ObserveBytesAndBacklog(t *testing.T) {
	m := NewParserMetrics("")
	m.ObserveBytes(128)
	m.ObserveBytes(64)
	m.SetBacklog(17)

	assert.Equal(t, 192.0, testutil.ToFloat64(m.BytesParsed))
	assert.Equal(t, 17.0, testutil.ToFloat64(m.StreamBacklog))
}

func TestParserMetrics_ObserveError(t *testing.T) {
	m := NewParserMetrics("")
	m.ObserveError(nil)
	m.ObserveError(&fastrow.ParseError{Pos: -1, Err: fastrow.ErrUnterminatedEscape})
	m.ObserveError(&fastrow.ParseError{Pos: 4, Err: fastrow.ErrUnexpectedEscape})
	m.ObserveError(&fastrow.ParseError{Pos: -1, Err: fastrow.ErrCollectorOverflow})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ParseErrors.WithLabelValues("unterminated_escape")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ParseErrors.WithLabelValues("unexpected_escape")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ParseErrors.WithLabelValues("oom")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ParseErrors.WithLabelValues("buffer_limit")))
}

func TestParserMetrics_EndToEnd(t *testing.T) {
	m := NewParserMetrics("")
	s := fastrow.NewStreamer(fastrow.DefaultConfig())

	chunk := []byte("a,b\nc,d\n")
	m.ObserveBytes(len(chunk))
	rows, err := s.Feed(chunk)
	require.NoError(t, err)
	m.ObserveRows(rows)
	backlog, _ := s.Status()
	m.SetBacklog(backlog)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RowsParsed))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.FieldsParsed))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.BytesParsed))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.StreamBacklog))
}
