package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkilian/scanengine/internal/filterbundle"
	"github.com/arkilian/scanengine/internal/testsegment"
	"github.com/arkilian/scanengine/pkg/segment"
)

func demoSegment() segment.Segment {
	hour := int64(3600_000)
	return testsegment.NewBuilder(segment.Eternity, []int64{0, hour, 2 * hour}).
		WithLongMetric("count", []int64{5, 6, 7}).
		WithStringDimension("city", []string{"nyc", "sf", "nyc"}).
		Build()
}

func TestScan_NoFilterReturnsEveryRow(t *testing.T) {
	rows, vectorized, err := Scan(demoSegment(), segment.CursorBuildSpec{Interval: segment.Eternity}, false, nil)
	require.NoError(t, err)
	assert.False(t, vectorized)
	require.Len(t, rows, 3)
	assert.Equal(t, "nyc", rows[0]["city"])
	assert.Equal(t, int64(6), rows[1]["count"])
}

func TestScan_EqualityFilterNarrowsRows(t *testing.T) {
	filter := filterbundle.EqualityFilter{Column: "city", Target: "nyc"}
	rows, _, err := Scan(demoSegment(), segment.CursorBuildSpec{Interval: segment.Eternity, Filter: filter}, false, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, "nyc", r["city"])
	}
}

func TestScan_VectorizeUsesVectorCursorWhenEligible(t *testing.T) {
	rows, vectorized, err := Scan(demoSegment(), segment.CursorBuildSpec{Interval: segment.Eternity}, true, nil)
	require.NoError(t, err)
	assert.True(t, vectorized)
	assert.Len(t, rows, 3)
	assert.Equal(t, "sf", rows[1]["city"])
}
