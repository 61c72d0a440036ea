package testsegment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkilian/scanengine/pkg/segment"
)

func TestComplexColumn_RoundTripsThroughSnappy(t *testing.T) {
	type sketch struct{ n int }
	raw := [][]byte{[]byte("sketch-a"), nil, []byte("sketch-c")}
	col := NewComplexColumn(raw, func(b []byte) any { return sketch{n: len(b)} })

	assert.Equal(t, segment.TypeComplex, col.ValueType())
	assert.Equal(t, sketch{n: len("sketch-a")}, col.ReadObject(0))
	assert.Nil(t, col.ReadObject(1))
	assert.Equal(t, sketch{n: len("sketch-c")}, col.ReadObject(2))

	_, ok := col.ReadLong(0)
	assert.False(t, ok)
}

func TestColumnarSegment_ComplexColumnReadsThroughCursor(t *testing.T) {
	seg := NewBuilder(segment.Eternity, []int64{0, hour}).
		WithComplexMetric("blob", [][]byte{[]byte("first"), []byte("second")}, nil).
		Build()

	h := openHolder(t, seg, segment.CursorBuildSpec{Interval: segment.Eternity})
	defer h.Close()

	c, err := h.AsCursor()
	require.NoError(t, err)

	var got []any
	for !c.IsDone() {
		got = append(got, c.ColumnSelectorFactory().MakeObjectSelector("blob").GetObject())
		require.NoError(t, c.Advance())
	}
	assert.Equal(t, []any{[]byte("first"), []byte("second")}, got)
}
