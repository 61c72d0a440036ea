package testsegment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkilian/scanengine/internal/cursor"
	"github.com/arkilian/scanengine/internal/filterbundle"
	"github.com/arkilian/scanengine/internal/rowoffset"
	"github.com/arkilian/scanengine/pkg/segment"
)

func buildDemoSegment() *Segment {
	return NewBuilder(segment.Eternity, []int64{0, hour, 2 * hour, 3 * hour}).
		WithLongMetric("count", []int64{10, 20, 30, 40}).
		WithStringDimension("city", []string{"nyc", "sf", "nyc", "la"}).
		Build()
}

func openHolder(t *testing.T, seg *Segment, spec segment.CursorBuildSpec) *cursor.Holder {
	t.Helper()
	h, err := cursor.New(seg, spec, seg.Timestamps(), &rowoffset.Canceled{})
	require.NoError(t, err)
	return h
}

func drainCity(t *testing.T, c *cursor.ScalarCursor) []any {
	t.Helper()
	var out []any
	for !c.IsDone() {
		out = append(out, c.ColumnSelectorFactory().MakeObjectSelector("city").GetObject())
		require.NoError(t, c.Advance())
	}
	return out
}

func TestColumnarSegment_NoFilterReadsEveryRowInOrder(t *testing.T) {
	seg := buildDemoSegment()
	h := openHolder(t, seg, segment.CursorBuildSpec{Interval: segment.Eternity})
	defer h.Close()

	c, err := h.AsCursor()
	require.NoError(t, err)

	assert.Equal(t, []any{"nyc", "sf", "nyc", "la"}, drainCity(t, c))
}

func TestColumnarSegment_EqualityFilterUsesBitmapIndex(t *testing.T) {
	seg := buildDemoSegment()
	filter := filterbundle.EqualityFilter{Column: "city", Target: "nyc"}
	h := openHolder(t, seg, segment.CursorBuildSpec{Interval: segment.Eternity, Filter: filter})
	defer h.Close()

	c, err := h.AsCursor()
	require.NoError(t, err)

	var counts []any
	for !c.IsDone() {
		counts = append(counts, c.ColumnSelectorFactory().MakeLongSelector("count").GetLong())
		require.NoError(t, c.Advance())
	}
	assert.Equal(t, []any{int64(10), int64(30)}, counts)
}

func TestColumnarSegment_DescendingOrderingReversesRows(t *testing.T) {
	seg := buildDemoSegment()
	spec := segment.CursorBuildSpec{
		Interval:          segment.Eternity,
		PreferredOrdering: []segment.OrderByColumn{{Column: segment.TimeColumn, Direction: segment.Descending}},
	}
	h := openHolder(t, seg, spec)
	defer h.Close()

	c, err := h.AsCursor()
	require.NoError(t, err)

	assert.Equal(t, []any{"la", "nyc", "sf", "nyc"}, drainCity(t, c))
}

func TestColumnarSegment_IntervalExcludesRowsOutsideBounds(t *testing.T) {
	seg := buildDemoSegment()
	h := openHolder(t, seg, segment.CursorBuildSpec{Interval: segment.Interval{Start: hour, End: 2 * hour}})
	defer h.Close()

	c, err := h.AsCursor()
	require.NoError(t, err)

	assert.Equal(t, []any{"sf"}, drainCity(t, c))
}

func TestColumnarSegment_CloseIsIdempotentAndReleasesColumns(t *testing.T) {
	seg := buildDemoSegment()
	h := openHolder(t, seg, segment.CursorBuildSpec{Interval: segment.Eternity})

	_, err := h.AsCursor()
	require.NoError(t, err)

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())

	_, err = h.AsCursor()
	assert.Error(t, err)
}

func TestColumnarSegment_CanVectorizeWithoutFilterOrDescending(t *testing.T) {
	seg := buildDemoSegment()
	h := openHolder(t, seg, segment.CursorBuildSpec{Interval: segment.Eternity})
	defer h.Close()

	assert.True(t, h.CanVectorize())

	vc, err := h.AsVectorCursor()
	require.NoError(t, err)
	assert.NotNil(t, vc)
}
