package rowoffset

import (
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(o interface {
	Current() uint32
	WithinBounds() bool
	Advance()
}) []uint32 {
	var out []uint32
	for o.WithinBounds() {
		out = append(out, o.Current())
		o.Advance()
	}
	return out
}

func TestAscending(t *testing.T) {
	o := NewAscending(5)
	assert.Equal(t, []uint32{0, 1, 2, 3, 4}, drain(o))
}

func TestDescending(t *testing.T) {
	o := NewDescending(5)
	assert.Equal(t, []uint32{4, 3, 2, 1, 0}, drain(o))
}

func TestDescending_Empty(t *testing.T) {
	o := NewDescending(0)
	assert.False(t, o.WithinBounds())
}

func TestAscending_ResetMatchesConstruction(t *testing.T) {
	o := NewAscending(3)
	drain(o)
	o.Reset()
	assert.Equal(t, []uint32{0, 1, 2}, drain(o))
}

func TestBitmapOffset_Ascending(t *testing.T) {
	bm := roaring.New()
	bm.AddMany([]uint32{1, 3, 4})
	o := NewBitmapOffset(bm, false)
	assert.Equal(t, []uint32{1, 3, 4}, drain(o))
}

func TestBitmapOffset_Descending(t *testing.T) {
	bm := roaring.New()
	bm.AddMany([]uint32{1, 3, 4})
	o := NewBitmapOffset(bm, true)
	assert.Equal(t, []uint32{4, 3, 1}, drain(o))
}

type evenMatcher struct{ o *Ascending }

func (m evenMatcher) Matches() bool { return m.o.Current()%2 == 0 }

func TestFilteredOffset_SkipsToMatch(t *testing.T) {
	inner := NewAscending(6)
	fo := NewFilteredOffset(inner, evenMatcher{inner}, nil)
	assert.Equal(t, []uint32{0, 2, 4}, drain(fo))
}

func TestFilteredOffset_Interruption(t *testing.T) {
	inner := NewAscending(5000)
	cancel := &Canceled{}
	never := constMatcher{matches: false}
	go func() {}() // no-op: cancellation is observed synchronously in this test
	cancel.Set()
	fo := NewFilteredOffset(inner, never, cancel)
	require.True(t, fo.Interrupted())
	assert.False(t, fo.WithinBounds())
}

type constMatcher struct{ matches bool }

func (m constMatcher) Matches() bool { return m.matches }

func TestTimestampCheckingOffset_Ascending(t *testing.T) {
	ts := func(row uint32) int64 { return int64(row) * 100 }
	inner := NewAscending(10)
	tco := NewTimestampCheckingOffset(inner, ts, 350, DirAscending, false)
	assert.Equal(t, []uint32{0, 1, 2, 3}, drain(tco))
}

func TestTimestampCheckingOffset_Descending(t *testing.T) {
	ts := func(row uint32) int64 { return int64(row) * 100 }
	inner := NewDescending(10)
	tco := NewTimestampCheckingOffset(inner, ts, 350, DirDescending, false)
	assert.Equal(t, []uint32{9, 8, 7, 6, 5, 4}, drain(tco))
}

func TestTimestampCheckingOffset_AllWithinSkipsCheck(t *testing.T) {
	ts := func(row uint32) int64 { return 999999 }
	inner := NewAscending(3)
	tco := NewTimestampCheckingOffset(inner, ts, 0, DirAscending, true)
	assert.Equal(t, []uint32{0, 1, 2}, drain(tco))
}
