package dataset

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/kshedden/datareader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(t *testing.T, name string, data interface{}, missing []bool) *datareader.Series {
	t.Helper()
	s, err := datareader.NewSeries(name, data, missing)
	require.NoError(t, err)
	return s
}

// chunkSource replays prepared chunks and counts Read calls.
type chunkSource struct {
	chunks [][]*datareader.Series
	errs   []error
	calls  int
}

func (c *chunkSource) Read(n int) ([]*datareader.Series, error) {
	i := c.calls
	c.calls++
	if i >= len(c.chunks) {
		return nil, io.EOF
	}
	var err error
	if i < len(c.errs) {
		err = c.errs[i]
	}
	return c.chunks[i], err
}

func twoColumns() *Table {
	return &Table{Columns: []*Column{{Name: "AGE"}, {Name: "NAME"}}}
}

func TestAppendSeries_FloatsMapNaNToMissing(t *testing.T) {
	t.Parallel()

	col := &Column{Name: "AGE", Kind: KindText}
	s := series(t, "AGE", []float64{14, math.NaN(), 13}, []bool{false, false, true})

	require.NoError(t, appendSeries(col, s, true))

	assert.Equal(t, KindNumber, col.Kind)
	assert.Equal(t, 14.0, col.Numbers[0])
	assert.Equal(t, []bool{false, true, true}, col.Missing)
}

func TestAppendSeries_StringsUseMissingMask(t *testing.T) {
	t.Parallel()

	col := &Column{Name: "NAME", Kind: KindText}
	s := series(t, "NAME", []string{"Alfred", "", "Alice"}, []bool{false, true, false})

	require.NoError(t, appendSeries(col, s, true))

	assert.Equal(t, KindText, col.Kind)
	assert.Equal(t, []string{"Alfred", "", "Alice"}, col.Texts)
	assert.Equal(t, []bool{false, true, false}, col.Missing)
}

func TestAppendSeries_WithoutMaskNothingMissing(t *testing.T) {
	t.Parallel()

	col := &Column{Name: "NAME", Kind: KindText}

	require.NoError(t, appendSeries(col, series(t, "NAME", []string{"a", "b"}, nil), true))

	assert.Equal(t, []bool{false, false}, col.Missing)
}

func TestAppendSeries_TypeChangeBetweenChunks(t *testing.T) {
	t.Parallel()

	col := &Column{Name: "AGE", Kind: KindText}
	require.NoError(t, appendSeries(col, series(t, "AGE", []float64{1}, nil), true))

	err := appendSeries(col, series(t, "AGE", []string{"x"}, nil), false)

	assert.ErrorContains(t, err, `column "AGE" changed type between chunks`)
}

func TestAppendSeries_UnsupportedSeriesType(t *testing.T) {
	t.Parallel()

	col := &Column{Name: "SEEN", Kind: KindText}
	s := series(t, "SEEN", []int64{1}, nil)

	err := appendSeries(col, s, true)

	assert.ErrorContains(t, err, `column "SEEN" has unsupported series type`)
}

func TestReadChunks_StopsAtShortChunk(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	src := &chunkSource{chunks: [][]*datareader.Series{
		{series(t, "AGE", []float64{1, 2}, nil), series(t, "NAME", []string{"a", "b"}, nil)},
		{series(t, "AGE", []float64{math.NaN()}, nil), series(t, "NAME", []string{"c"}, nil)},
		{series(t, "AGE", []float64{9}, nil), series(t, "NAME", []string{"never"}, nil)},
	}}
	table := twoColumns()

	// --- Act ---
	err := readChunks(table, src, 2)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
	assert.Equal(t, 3, table.Rows)
	assert.Equal(t, []string{"a", "b", "c"}, table.Columns[1].Texts)
	assert.Equal(t, []bool{false, false, true}, table.Columns[0].Missing)
	assert.NoError(t, table.Validate())
}

func TestReadChunks_FullChunkThenEOF(t *testing.T) {
	t.Parallel()

	src := &chunkSource{chunks: [][]*datareader.Series{
		{series(t, "AGE", []float64{1, 2}, nil), series(t, "NAME", []string{"a", "b"}, nil)},
	}}
	table := twoColumns()

	require.NoError(t, readChunks(table, src, 2))

	assert.Equal(t, 2, src.calls)
	assert.Equal(t, 2, table.Rows)
}

func TestReadChunks_EOFWithData(t *testing.T) {
	t.Parallel()

	src := &chunkSource{
		chunks: [][]*datareader.Series{
			{series(t, "AGE", []float64{1, 2}, nil), series(t, "NAME", []string{"a", "b"}, nil)},
		},
		errs: []error{io.EOF},
	}
	table := twoColumns()

	require.NoError(t, readChunks(table, src, 2))

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, 2, table.Rows)
}

func TestReadChunks_Errors(t *testing.T) {
	t.Parallel()

	t.Run("decoder error", func(t *testing.T) {
		src := &chunkSource{
			chunks: [][]*datareader.Series{nil},
			errs:   []error{errors.New("bad page")},
		}

		err := readChunks(twoColumns(), src, 2)

		assert.ErrorContains(t, err, "failed to read rows 0+: bad page")
	})

	t.Run("column count mismatch", func(t *testing.T) {
		src := &chunkSource{chunks: [][]*datareader.Series{
			{series(t, "AGE", []float64{1}, nil)},
		}}

		err := readChunks(twoColumns(), src, 2)

		assert.ErrorContains(t, err, "decoder returned 1 series for 2 columns")
	})

	t.Run("type change in later chunk", func(t *testing.T) {
		src := &chunkSource{chunks: [][]*datareader.Series{
			{series(t, "AGE", []float64{1, 2}, nil), series(t, "NAME", []string{"a", "b"}, nil)},
			{series(t, "AGE", []string{"x"}, nil), series(t, "NAME", []string{"c"}, nil)},
		}}

		err := readChunks(twoColumns(), src, 2)

		assert.ErrorContains(t, err, "changed type between chunks")
	})
}
