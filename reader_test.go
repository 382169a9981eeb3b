package fastrow

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_RowAtATime(t *testing.T) {
	r := NewReader(strings.NewReader("a,b\nc,d\ne,f\n"), DefaultConfig())

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		rec := make([]string, len(row))
		for i, f := range row {
			rec[i] = string(f)
		}
		rows = append(rows, rec)
	}
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e", "f"}}, rows)

	// Read past EOF keeps returning io.EOF.
	_, err := r.Read()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReader_SmallChunks(t *testing.T) {
	// A 3-byte chunk size forces every boundary kind to split across reads.
	input := "\"quoted,field\",plain\r\nsecond,\"line\nbreak\"\n"
	r := NewReader(strings.NewReader(input), DefaultConfig())
	r.ChunkSize = 3

	rows, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"quoted,field", "plain"},
		{"second", "line\nbreak"},
	}, rowsToStrings(rows))
}

func TestReader_MatchesParse(t *testing.T) {
	inputs := []string{
		"",
		"a\n",
		"a,b,c\n1,2,3\n",
		`"he said ""hi""",x` + "\n",
		"no,trailing,newline",
	}
	for _, input := range inputs {
		want, werr := Parse([]byte(input), DefaultConfig())
		require.NoError(t, werr)

		r := NewReader(strings.NewReader(input), DefaultConfig())
		r.ChunkSize = 2
		rows, err := r.ReadAll()
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, rowsToStrings(want), rowsToStrings(rows), "input %q", input)
	}
}

func TestReader_DrainsRowsBeforeError(t *testing.T) {
	// The clean first row must come out before the fault surfaces.
	input := "good,row\nbad\"row\n"
	r := NewReader(strings.NewReader(input), DefaultConfig())

	row, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, "good", string(row[0]))

	_, err = r.Read()
	require.ErrorIs(t, err, ErrUnexpectedEscape)
}

func TestReader_MaxRowSize(t *testing.T) {
	input := `"never closes ` + strings.Repeat("x", 1024)
	r := NewReader(strings.NewReader(input), DefaultConfig())
	r.ChunkSize = 64
	r.MaxRowSize = 128

	_, err := r.ReadAll()
	require.ErrorIs(t, err, ErrBufferLimit)
}

func TestReader_UnderlyingError(t *testing.T) {
	r := NewReader(io.MultiReader(strings.NewReader("a,b\n"), iotestErrReader{}), DefaultConfig())
	rows, err := r.ReadAll()
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
	assert.Equal(t, [][]string{{"a", "b"}}, rowsToStrings(rows))
}

// iotestErrReader fails on first read with a non-EOF error.
type iotestErrReader struct{}

func (iotestErrReader) Read([]byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}

func TestReader_LargeInputBoundedQueue(t *testing.T) {
	var buf bytes.Buffer
	for i := 0; i < 5000; i++ {
		buf.WriteString("col1,col2,col3\n")
	}
	r := NewReader(&buf, DefaultConfig())
	r.ChunkSize = 512

	n := 0
	for {
		_, err := r.Read()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		n++
	}
	assert.Equal(t, 5000, n)
}
