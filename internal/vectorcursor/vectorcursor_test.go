package vectorcursor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkilian/scanengine/internal/selector"
	"github.com/arkilian/scanengine/pkg/segment"
)

func TestTimeSearch_FindsFirstGE(t *testing.T) {
	ts := func(row uint32) int64 { return int64(row) * 10 }
	assert.Equal(t, 3, timeSearch(ts, 25, 0, 10))
	assert.Equal(t, 0, timeSearch(ts, 0, 0, 10))
	assert.Equal(t, 10, timeSearch(ts, 1000, 0, 10))
}

func TestTimeSearch_Duplicates(t *testing.T) {
	values := []int64{0, 10, 10, 10, 20}
	ts := func(row uint32) int64 { return values[row] }
	assert.Equal(t, 1, timeSearch(ts, 10, 0, 5))
	assert.Equal(t, 4, timeSearch(ts, 20, 0, 5))
}

type longReader struct{ values []int64 }

func (r longReader) ValueType() segment.ValueType       { return segment.TypeLong }
func (r longReader) ReadObject(row uint32) any           { return r.values[row] }
func (r longReader) ReadLong(row uint32) (int64, bool)   { return r.values[row], true }
func (r longReader) ReadDouble(row uint32) (float64, bool) { return float64(r.values[row]), true }
func (r longReader) ReadFloat(row uint32) (float32, bool)  { return float32(r.values[row]), true }

func TestVectorCursor_NoFilterBatchesWholeRange(t *testing.T) {
	values := []int64{0, 1, 2, 3, 4}
	ts := func(row uint32) int64 { return int64(row) * 3600000 }
	readers := map[string]selector.PhysicalColumnReader{"LONG": longReader{values: values}}

	vc, err := New(segment.FilterBundle{}, 5, segment.Eternity, ts, nil, segment.VirtualColumns{}, readers, 2, nil)
	require.NoError(t, err)

	var got []int64
	for !vc.IsDone() {
		sel := vc.ColumnSelectorFactory().MakeLongVectorSelector("LONG")
		got = append(got, sel.LongVector()[:sel.CurrentVectorSize()]...)
		require.NoError(t, vc.Advance())
	}
	assert.Equal(t, []int64{0, 1, 2, 3, 4}, got)
}
