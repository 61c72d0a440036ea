package vectorcursor

import (
	"github.com/arkilian/scanengine/internal/columncache"
	"github.com/arkilian/scanengine/internal/errorsx"
	"github.com/arkilian/scanengine/internal/rowoffset"
	"github.com/arkilian/scanengine/internal/selector"
	"github.com/arkilian/scanengine/pkg/segment"
)

// VectorCursor is the fixed-width batch cursor.
type VectorCursor struct {
	base           vectorOffset
	matcher        segment.VectorValueMatcher
	lazy           *lazyFactory
	readers        map[string]selector.PhysicalColumnReader
	virtualColumns segment.VirtualColumns
	cancel         *rowoffset.Canceled

	currentRows []uint32
	factory     segment.VectorColumnSelectorFactory
	maxSize     int
	interrupted bool
}

// New runs the four construction steps and returns a
// ready-to-iterate vector cursor.
func New(
	bundle segment.FilterBundle,
	numRows int,
	interval segment.Interval,
	timestamps TimestampReader,
	cache *columncache.Cache,
	virtualColumns segment.VirtualColumns,
	readers map[string]selector.PhysicalColumnReader,
	vectorSize int,
	cancel *rowoffset.Canceled,
) (*VectorCursor, error) {
	// Step 1: binary-search the [start, end) row range for the interval.
	start := timeSearch(timestamps, interval.Start, 0, numRows)
	end := timeSearch(timestamps, interval.End, 0, numRows)
	if end < start {
		end = start
	}

	// Step 2: build the base vector offset.
	var base vectorOffset
	if bundle.Index != nil {
		base = newBitmapVectorOffset(vectorSize, bundle.Index.Bitmap, start, end)
	} else {
		base = newNoFilterVectorOffset(vectorSize, start, end)
	}

	vc := &VectorCursor{base: base, readers: readers, virtualColumns: virtualColumns, cancel: cancel, maxSize: vectorSize}

	// Step 3 & 4: a vector matcher, if required, evaluates against the
	// unfiltered window via lazy (bound fresh per window); the final
	// factory exposed to the caller is bound to the filtered row set.
	if bundle.MatcherBundle != nil {
		vc.lazy = newLazyFactory(readers, virtualColumns)
		vc.matcher = bundle.MatcherBundle.VectorMatcher(vc.lazy)
	}

	vc.fill()
	return vc, nil
}

// lazyFactory defers row-index binding so the same VectorValueMatcher
// instance can be re-evaluated against each successive window without
// rebuilding it.
type lazyFactory struct {
	readers        map[string]selector.PhysicalColumnReader
	virtualColumns segment.VirtualColumns
	rows           []uint32
}

func newLazyFactory(readers map[string]selector.PhysicalColumnReader, virtualColumns segment.VirtualColumns) *lazyFactory {
	return &lazyFactory{readers: readers, virtualColumns: virtualColumns}
}

func (f *lazyFactory) bind(rows []uint32) { f.rows = rows }

func (f *lazyFactory) ColumnCapabilities(name string) *segment.ColumnCapabilities {
	return newWindowFactory(f.rows, f.readers, f.virtualColumns).ColumnCapabilities(name)
}
func (f *lazyFactory) MakeFloatVectorSelector(name string) segment.FloatVectorSelector {
	return newWindowFactory(f.rows, f.readers, f.virtualColumns).MakeFloatVectorSelector(name)
}
func (f *lazyFactory) MakeDoubleVectorSelector(name string) segment.DoubleVectorSelector {
	return newWindowFactory(f.rows, f.readers, f.virtualColumns).MakeDoubleVectorSelector(name)
}
func (f *lazyFactory) MakeLongVectorSelector(name string) segment.LongVectorSelector {
	return newWindowFactory(f.rows, f.readers, f.virtualColumns).MakeLongVectorSelector(name)
}
func (f *lazyFactory) MakeObjectVectorSelector(name string) segment.ObjectVectorSelector {
	return newWindowFactory(f.rows, f.readers, f.virtualColumns).MakeObjectVectorSelector(name)
}

func (c *VectorCursor) fill() {
	if c.base.Done() {
		c.currentRows = nil
		c.factory = newWindowFactory(nil, c.readers, c.virtualColumns)
		return
	}
	window := c.base.RowIndices()

	if c.matcher == nil {
		c.currentRows = window
		c.factory = newWindowFactory(window, c.readers, c.virtualColumns)
		return
	}

	c.lazy.bind(window)
	mask := c.matcher.Match(&segment.VectorMask{Size: len(window)})

	var filtered []uint32
	if mask == nil || mask.Selected == nil {
		filtered = window
	} else {
		filtered = make([]uint32, 0, len(mask.Selected))
		for _, i := range mask.Selected {
			filtered = append(filtered, window[i])
		}
	}
	c.currentRows = filtered
	c.factory = newWindowFactory(filtered, c.readers, c.virtualColumns)
}

// CurrentVectorSize returns the number of rows in the current window
// after filtering.
func (c *VectorCursor) CurrentVectorSize() int { return len(c.currentRows) }

// MaxVectorSize returns the configured vector_size.
func (c *VectorCursor) MaxVectorSize() int { return c.maxSize }

// IsDone reports whether the cursor is exhausted.
func (c *VectorCursor) IsDone() bool {
	return c.interrupted || (c.base.Done() && len(c.currentRows) == 0)
}

// Advance moves to the next window. Like the scalar cursor, it is the
// only operation that observes cooperative cancellation.
func (c *VectorCursor) Advance() error {
	if c.interrupted {
		return nil
	}
	if c.cancel.IsSet() {
		c.interrupted = true
		return errorsx.ExecutionErrorf(errorsx.CodeInterrupted, "vector cursor advance interrupted")
	}
	c.base.Advance()
	c.fill()
	return nil
}

// Reset returns the cursor to its state at construction.
func (c *VectorCursor) Reset() {
	c.interrupted = false
	c.base.Reset()
	c.fill()
}

// ColumnSelectorFactory returns the vector selector factory bound to the
// current window.
func (c *VectorCursor) ColumnSelectorFactory() segment.VectorColumnSelectorFactory {
	return c.factory
}
