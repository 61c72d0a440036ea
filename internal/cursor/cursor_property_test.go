package cursor_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/arkilian/scanengine/internal/cursor"
	"github.com/arkilian/scanengine/internal/rowoffset"
	"github.com/arkilian/scanengine/internal/testsegment"
	"github.com/arkilian/scanengine/pkg/segment"
)

const hourMs = int64(3600_000)

func buildSegment(counts []int64) *testsegment.Segment {
	timestamps := make([]int64, len(counts))
	for i := range timestamps {
		timestamps[i] = int64(i) * hourMs
	}
	return testsegment.NewBuilder(segment.Eternity, timestamps).
		WithLongMetric("count", counts).
		Build()
}

func drainScalarCounts(t *testing.T, h *cursor.Holder) []int64 {
	t.Helper()
	c, err := h.AsCursor()
	if err != nil {
		t.Fatal(err)
	}
	var out []int64
	for !c.IsDone() {
		out = append(out, c.ColumnSelectorFactory().MakeLongSelector("count").GetLong())
		if err := c.Advance(); err != nil {
			t.Fatal(err)
		}
	}
	return out
}

func drainVectorCounts(t *testing.T, h *cursor.Holder) []int64 {
	t.Helper()
	vc, err := h.AsVectorCursor()
	if err != nil {
		t.Fatal(err)
	}
	var out []int64
	for !vc.IsDone() {
		factory := vc.ColumnSelectorFactory()
		sel := factory.MakeLongVectorSelector("count")
		values := sel.LongVector()
		size := vc.CurrentVectorSize()
		out = append(out, values[:size]...)
		if err := vc.Advance(); err != nil {
			t.Fatal(err)
		}
	}
	return out
}

func TestProperty_ScalarAndVectorCursorsAgreeOnRowOrder(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 60
	properties := gopter.NewProperties(parameters)

	properties.Property("a filter-free, ascending scan reads identical values scalar and vector", prop.ForAll(
		func(counts []int64) bool {
			if len(counts) == 0 {
				return true
			}
			seg := buildSegment(counts)
			spec := segment.CursorBuildSpec{Interval: segment.Eternity}

			scalarHolder, err := cursor.New(seg, spec, seg.Timestamps(), &rowoffset.Canceled{})
			if err != nil {
				t.Fatal(err)
			}
			defer scalarHolder.Close()
			scalarOut := drainScalarCounts(t, scalarHolder)

			vectorHolder, err := cursor.New(seg, spec, seg.Timestamps(), &rowoffset.Canceled{})
			if err != nil {
				t.Fatal(err)
			}
			defer vectorHolder.Close()
			if !vectorHolder.CanVectorize() {
				return true
			}
			vectorOut := drainVectorCounts(t, vectorHolder)

			if len(scalarOut) != len(vectorOut) {
				return false
			}
			for i := range scalarOut {
				if scalarOut[i] != vectorOut[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(20, gen.Int64Range(-1000, 1000)),
	))

	properties.TestingRun(t)
}

func TestProperty_ResetReturnsCursorToItsFirstRow(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 60
	properties := gopter.NewProperties(parameters)

	properties.Property("Reset after any number of advances reproduces the original scan", prop.ForAll(
		func(counts []int64, steps int) bool {
			if len(counts) == 0 {
				return true
			}
			seg := buildSegment(counts)
			spec := segment.CursorBuildSpec{Interval: segment.Eternity}
			h, err := cursor.New(seg, spec, seg.Timestamps(), &rowoffset.Canceled{})
			if err != nil {
				t.Fatal(err)
			}
			defer h.Close()

			c, err := h.AsCursor()
			if err != nil {
				t.Fatal(err)
			}

			var first []int64
			for !c.IsDone() {
				first = append(first, c.ColumnSelectorFactory().MakeLongSelector("count").GetLong())
				if err := c.Advance(); err != nil {
					t.Fatal(err)
				}
			}

			for i := 0; i < steps%(len(counts)+1); i++ {
				c.Advance()
			}
			c.Reset()

			var second []int64
			for !c.IsDone() {
				second = append(second, c.ColumnSelectorFactory().MakeLongSelector("count").GetLong())
				if err := c.Advance(); err != nil {
					t.Fatal(err)
				}
			}

			if len(first) != len(second) {
				return false
			}
			for i := range first {
				if first[i] != second[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(10, gen.Int64Range(-1000, 1000)),
		gen.IntRange(0, 50),
	))

	properties.TestingRun(t)
}
