package testsegment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkilian/scanengine/internal/filterbundle"
	"github.com/arkilian/scanengine/internal/granularity"
	"github.com/arkilian/scanengine/internal/virtualcol"
	"github.com/arkilian/scanengine/pkg/segment"
)

// walkLong drains a cursor, reading the LONG column through a dimension
// selector on each row: dimension access always yields the decimal text of
// the underlying value regardless of the column's declared type, which is
// what a "read string column" scenario over a LONG-typed column means.
func walkLong(t *testing.T, c interface {
	IsDone() bool
	Advance() error
	ColumnSelectorFactory() segment.ColumnSelectorFactory
}) []any {
	t.Helper()
	var out []any
	for !c.IsDone() {
		out = append(out, c.ColumnSelectorFactory().MakeDimensionSelector(LongColumnName).GetObject())
		require.NoError(t, c.Advance())
	}
	return out
}

func TestRowAdapter_NoFilterReadsEveryRowInOrder(t *testing.T) {
	adapter, seq := NewIntAdapter(0, 1, 2)
	cursor, err := adapter.MakeCursor(segment.Eternity, nil, segment.VirtualColumns{}, false)
	require.NoError(t, err)

	got := walkLong(t, cursor)
	assert.Equal(t, []any{"0", "1", "2"}, got)

	cursor.Release()
	assert.Equal(t, 1, seq.CloseCalls())
}

func TestRowAdapter_EqualityFilterCoercesNumericTarget(t *testing.T) {
	adapter, _ := NewIntAdapter(0, 1, 2)
	filter := filterbundle.EqualityFilter{Column: LongColumnName, Target: "1.0"}
	cursor, err := adapter.MakeCursor(segment.Eternity, filter, segment.VirtualColumns{}, false)
	require.NoError(t, err)

	assert.Equal(t, []any{"1"}, walkLong(t, cursor))
}

func TestRowAdapter_FilteredAscendingScanMaterializesTwice(t *testing.T) {
	adapter, seq := NewIntAdapter(0, 1, 2)
	filter := filterbundle.EqualityFilter{Column: LongColumnName, Target: "1"}
	cursor, err := adapter.MakeCursor(segment.Eternity, filter, segment.VirtualColumns{}, false)
	require.NoError(t, err)

	assert.Equal(t, []any{"1"}, walkLong(t, cursor))

	cursor.Release()
	assert.Equal(t, 2, seq.MaterializeCalls())
	assert.Equal(t, 2, seq.CloseCalls())
}

func TestRowAdapter_FilteredDescendingScanMaterializesOnce(t *testing.T) {
	adapter, seq := NewIntAdapter(0, 1, 2)
	filter := filterbundle.EqualityFilter{Column: LongColumnName, Target: "1"}
	cursor, err := adapter.MakeCursor(segment.Eternity, filter, segment.VirtualColumns{}, true)
	require.NoError(t, err)

	assert.Equal(t, []any{"1"}, walkLong(t, cursor))

	cursor.Release()
	assert.Equal(t, 1, seq.MaterializeCalls())
	assert.Equal(t, 1, seq.CloseCalls())
}

func TestRowAdapter_FilterOnMissingColumnMatchesNullTarget(t *testing.T) {
	adapter, _ := NewIntAdapter(0, 1)
	filter := filterbundle.EqualityFilter{Column: "nonexistent", TargetIsNull: true}
	cursor, err := adapter.MakeCursor(segment.Eternity, filter, segment.VirtualColumns{}, false)
	require.NoError(t, err)

	assert.Equal(t, []any{"0", "1"}, walkLong(t, cursor))
}

func TestRowAdapter_FilterOnVirtualColumnNarrowsRows(t *testing.T) {
	adapter, _ := NewIntAdapter(0, 1)
	vc := virtualcol.NewFuncVirtualColumn("vc", segment.TypeLong, []string{LongColumnName},
		func(factory segment.ColumnSelectorFactory, row uint32) any {
			v := factory.MakeLongSelector(LongColumnName)
			if v.IsNull() {
				return nil
			}
			return v.GetLong() + 1
		})
	vcs := segment.NewVirtualColumns([]segment.VirtualColumn{vc})
	filter := filterbundle.EqualityFilter{Column: "vc", Target: "2"}

	cursor, err := adapter.MakeCursor(segment.Eternity, filter, vcs, false)
	require.NoError(t, err)

	assert.Equal(t, []any{"1"}, walkLong(t, cursor))
}

func TestRowAdapter_DescendingHourGranularityBucketsRows(t *testing.T) {
	adapter, _ := NewIntAdapter(0, 1, 1, 2, 3)
	bound := segment.Interval{Start: hour, End: 3 * hour}
	cursor, err := adapter.MakeCursor(bound, nil, segment.VirtualColumns{}, true)
	require.NoError(t, err)

	gz := granularity.New(cursor, granularity.Hour, bound, true)

	var buckets []int64
	var values []any
	for !gz.IsDone() {
		buckets = append(buckets, gz.BucketStart())
		values = append(values, cursor.ColumnSelectorFactory().MakeDimensionSelector(LongColumnName).GetObject())
		require.NoError(t, gz.AdvanceWithinBucket(false))
	}

	assert.Equal(t, []int64{2 * hour, hour, hour}, buckets)
	assert.Equal(t, []any{"2", "1", "1"}, values)
}

func TestRowAdapter_DescendingOrderingReversesRows(t *testing.T) {
	adapter, _ := NewIntAdapter(0, 1, 2)
	cursor, err := adapter.MakeCursor(segment.Eternity, nil, segment.VirtualColumns{}, true)
	require.NoError(t, err)

	assert.Equal(t, []any{"2", "1", "0"}, walkLong(t, cursor))
}

func TestRowAdapter_IntervalOutsideDataExcludesAllRows(t *testing.T) {
	adapter, _ := NewIntAdapter(0, 1, 2)
	future := segment.Interval{Start: 30 * 365 * 24 * hour, End: 30*365*24*hour + 24*hour}
	cursor, err := adapter.MakeCursor(future, nil, segment.VirtualColumns{}, false)
	require.NoError(t, err)

	assert.Empty(t, walkLong(t, cursor))
}
