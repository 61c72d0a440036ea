package granularity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkilian/scanengine/pkg/segment"
)

// stubCursor is a minimal TimeOrderedCursor over parallel timestamp/value
// slices, already filtered and ordered the way a real scalar cursor would
// present rows within a query interval.
type stubCursor struct {
	timestamps []int64
	values     []string
	pos        int
}

func (s *stubCursor) Advance() error {
	s.pos++
	return nil
}
func (s *stubCursor) AdvanceUninterruptibly() { s.pos++ }
func (s *stubCursor) IsDone() bool            { return s.pos >= len(s.timestamps) }
func (s *stubCursor) CurrentTimestamp() int64 { return s.timestamps[s.pos] }
func (s *stubCursor) CurrentValue() string    { return s.values[s.pos] }

const hour = int64(Hour)

func TestGranularity_TruncateAndBucket(t *testing.T) {
	assert.Equal(t, int64(0), Hour.Truncate(0))
	assert.Equal(t, hour, Hour.Truncate(hour+1))
	assert.Equal(t, hour, Hour.Truncate(2*hour-1))
	assert.Equal(t, -hour, Hour.Truncate(-1))

	b := Hour.Bucket(hour + 500)
	assert.Equal(t, segment.Interval{Start: hour, End: 2 * hour}, b)
}

// TestGranularizer_DescendingGroupsRowsByHour reproduces the record set
// [0,1,1,2,3] over interval 1970-01-01T01/PT2H descending HOUR: each
// record's own integer value is both its __time (in hours) and its LONG
// string, so the interval keeps the two records valued 1 and the one
// valued 2, walked newest-first with the tied hour-1 pair in row order.
func TestGranularizer_DescendingGroupsRowsByHour(t *testing.T) {
	cursor := &stubCursor{
		timestamps: []int64{2 * hour, hour, hour},
		values:     []string{"2", "1", "1"},
	}
	bound := segment.Interval{Start: hour, End: 3 * hour}

	gz := New(cursor, Hour, bound, true)

	var gotBuckets []int64
	var gotValues []string
	for !gz.IsDone() {
		gotBuckets = append(gotBuckets, gz.BucketStart())
		gotValues = append(gotValues, cursor.CurrentValue())
		require.NoError(t, gz.AdvanceWithinBucket(false))
	}

	assert.Equal(t, []int64{2 * hour, hour, hour}, gotBuckets)
	assert.Equal(t, []string{"2", "1", "1"}, gotValues)
}

func TestGranularizer_AdvanceToBucketSkipsEmptyBuckets(t *testing.T) {
	cursor := &stubCursor{
		timestamps: []int64{0, 3 * hour},
		values:     []string{"a", "b"},
	}
	bound := segment.Interval{Start: 0, End: 4 * hour}
	gz := New(cursor, Hour, bound, false)

	require.NoError(t, gz.AdvanceToBucket(hour))
	assert.Equal(t, 3*hour, gz.BucketStart())
	assert.Equal(t, "b", cursor.CurrentValue())
}

func TestGranularizer_BucketsDescendingOrder(t *testing.T) {
	cursor := &stubCursor{timestamps: []int64{hour}, values: []string{"x"}}
	bound := segment.Interval{Start: 0, End: 3 * hour}
	gz := New(cursor, Hour, bound, true)

	buckets := gz.Buckets()
	assert.Equal(t, []segment.Interval{
		{Start: 2 * hour, End: 3 * hour},
		{Start: hour, End: 2 * hour},
		{Start: 0, End: hour},
	}, buckets)
}

func TestGranularizer_EmptyBoundHasNoBuckets(t *testing.T) {
	cursor := &stubCursor{}
	gz := New(cursor, Hour, segment.Interval{Start: 5, End: 5}, false)
	assert.Nil(t, gz.Buckets())
	assert.True(t, gz.IsDone())
}
