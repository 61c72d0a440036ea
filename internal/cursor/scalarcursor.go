// Package cursor implements the scalar cursor and the
// columnar cursor holder that selects between scalar and
// vector cursors and owns the column cache, filter bundle, and closer for
// the scan's lifetime.
package cursor

import (
	"log"

	"github.com/arkilian/scanengine/internal/columncache"
	"github.com/arkilian/scanengine/internal/errorsx"
	"github.com/arkilian/scanengine/internal/filterbundle"
	"github.com/arkilian/scanengine/internal/rowoffset"
	"github.com/arkilian/scanengine/internal/selector"
	"github.com/arkilian/scanengine/pkg/segment"
)

// TimestampReader reads the millisecond __time value for a row index,
// against the base offset's addressing, independent of how the physical
// time column is encoded.
type TimestampReader func(row uint32) int64

// Resources is the set of values CursorHolder computes once and shares
// between AsCursor, AsVectorCursor, and CanVectorize, mirroring the
// memoized CursorResources the scalar/vector construction paths both read
// from in the source this design is grounded on.
type Resources struct {
	FilterBundle  segment.FilterBundle
	MinDataTs     int64
	MaxDataTs     int64
	HasMatcher    bool
	HasIndex      bool
}

// BuildResources computes the filter bundle and data timestamp bounds once.
// minDataTs/maxDataTs come from the first and last row of the timestamp
// column; numRows == 0 yields MinDataTs 1 and MaxDataTs 0, and the segment
// then has no rows for any timestamp check to admit.
func BuildResources(filter segment.Filter, biSelector segment.BitmapIndexSelector, resultFactory segment.BitmapResultFactory, numRows int, timestamps TimestampReader, metrics segment.QueryMetrics, predicateFreq segment.PredicateRecorder) Resources {
	bundle := filterbundle.Build(filter, biSelector, resultFactory, numRows, 0, false, metrics, predicateFreq)

	var minTs, maxTs int64
	if numRows > 0 {
		minTs = timestamps(0)
		maxTs = timestamps(uint32(numRows - 1))
	} else {
		minTs, maxTs = 1, 0
	}

	return Resources{
		FilterBundle: bundle,
		MinDataTs:    minTs,
		MaxDataTs:    maxTs,
		HasMatcher:   bundle.MatcherBundle != nil,
		HasIndex:     bundle.Index != nil,
	}
}

// ScalarCursor is the row-at-a-time cursor.
type ScalarCursor struct {
	offset     segment.Offset
	factory    segment.ColumnSelectorFactory
	cancel     *rowoffset.Canceled
	timestamps TimestampReader

	interrupted bool
}

// NewScalarCursor runs the five construction steps and
// returns a ready-to-iterate cursor. filterIsNonNil distinguishes "no
// filter at all" from "a filter that produced neither an index nor a
// matcher" for SelectBaseOffset's case 4.
func NewScalarCursor(
	res Resources,
	filterIsNonNil bool,
	numRows int,
	interval segment.Interval,
	descending bool,
	timestamps TimestampReader,
	cache *columncache.Cache,
	virtualColumns segment.VirtualColumns,
	readers map[string]selector.PhysicalColumnReader,
	cancel *rowoffset.Canceled,
	debug bool,
	nullPolicy segment.NullPolicy,
) (*ScalarCursor, error) {
	// Step 2: choose base offset via the five-case filter partitioning
	// policy (cases 1-4; case 5 is applied in step 5 below, after the
	// interval and timestamp wrapping that must sit between them).
	base, err := filterbundle.SelectBaseOffset(res.FilterBundle, filterIsNonNil, numRows, descending)
	if err != nil {
		return nil, err
	}

	// Step 3: skip rows outside the query interval before wrapping.
	if descending {
		for base.WithinBounds() && timestamps(base.Current()) >= interval.End {
			base.Advance()
		}
	} else {
		lowerBound := interval.Start
		if res.MinDataTs > lowerBound {
			lowerBound = res.MinDataTs
		}
		for base.WithinBounds() && timestamps(base.Current()) < lowerBound {
			base.Advance()
		}
	}

	// Step 4: wrap with the timestamp-checking bound.
	var tco segment.Offset
	if descending {
		allWithin := res.MinDataTs >= interval.Start
		tco = rowoffset.NewTimestampCheckingOffset(base, timestamps, interval.Start, rowoffset.DirDescending, allWithin)
	} else {
		allWithin := res.MaxDataTs < interval.End
		tco = rowoffset.NewTimestampCheckingOffset(base, timestamps, interval.End, rowoffset.DirAscending, allWithin)
	}

	// Step 5: clone to separate the cursor offset from a matcher-driven
	// filter offset, then wrap with FilteredOffset if a matcher is needed.
	cursorOffset := tco.Clone()
	factory := selector.NewWithNullPolicy(cursorOffset, cache, virtualColumns, readers, nullPolicy)

	if res.HasMatcher {
		if debug {
			log.Printf("cursor: filter partitioning via matcher for interval %+v", interval)
		}
		cursorOffset = filterbundle.WrapWithMatcher(cursorOffset, res.FilterBundle, factory, cancel)
		factory = selector.NewWithNullPolicy(cursorOffset, cache, virtualColumns, readers, nullPolicy)
	}

	return &ScalarCursor{offset: cursorOffset, factory: factory, cancel: cancel, timestamps: timestamps}, nil
}

// Advance moves to the next row. It is the only operation that observes
// cooperative cancellation: if cancel is set, it fails with
// ExecutionError::Interrupted and leaves the cursor IsDone.
func (c *ScalarCursor) Advance() error {
	if c.interrupted {
		return nil
	}
	if c.cancel.IsSet() {
		c.interrupted = true
		return errorsx.ExecutionErrorf(errorsx.CodeInterrupted, "cursor advance interrupted")
	}
	c.offset.Advance()
	return nil
}

// AdvanceUninterruptibly advances without observing cancellation, for
// contexts that must not raise.
func (c *ScalarCursor) AdvanceUninterruptibly() {
	c.offset.Advance()
}

// IsDone reports whether the cursor is exhausted.
func (c *ScalarCursor) IsDone() bool {
	return c.interrupted || !c.offset.WithinBounds()
}

// Reset returns the cursor to its state at construction.
func (c *ScalarCursor) Reset() {
	c.interrupted = false
	c.offset.Reset()
}

// ColumnSelectorFactory returns the factory bound to this cursor's offset.
func (c *ScalarCursor) ColumnSelectorFactory() segment.ColumnSelectorFactory {
	return c.factory
}

// CurrentTimestamp returns the __time value of the row the cursor is
// currently positioned at. Callers must check IsDone first.
func (c *ScalarCursor) CurrentTimestamp() int64 {
	return c.timestamps(c.offset.Current())
}
