// Package rowoffset implements the offset primitives: mutable
// cursors over [0, N) with ascending, descending, bitmap-backed, and
// filtered variants, plus a timestamp-checking wrapper. This follows the
// tagged-variant-by-composition approach in place of
// deep inheritance: each variant is a small concrete type implementing the
// same Offset interface, and TimestampCheckingOffset wraps another Offset
// rather than subclassing it.
package rowoffset

import (
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/arkilian/scanengine/pkg/segment"
)

// Ascending starts at 0 and advances by +1, bounded by current < n.
type Ascending struct {
	n       uint32
	current uint32
}

// NewAscending builds an Ascending offset over [0, n).
func NewAscending(n int) *Ascending {
	return &Ascending{n: uint32(n), current: 0}
}

func (o *Ascending) Current() uint32      { return o.current }
func (o *Ascending) WithinBounds() bool   { return o.current < o.n }
func (o *Ascending) Advance()             { o.current++ }
func (o *Ascending) Reset()               { o.current = 0 }
func (o *Ascending) Clone() segment.Offset { return &Ascending{n: o.n, current: o.current} }

// Descending starts at n-1 and advances by -1. To avoid underflow at the
// boundary, WithinBounds is tracked with a separate flag once current would
// go negative, rather than relying on unsigned wraparound.
type Descending struct {
	n         uint32
	current   uint32
	exhausted bool
}

// NewDescending builds a Descending offset over [0, n).
func NewDescending(n int) *Descending {
	if n <= 0 {
		return &Descending{n: 0, exhausted: true}
	}
	return &Descending{n: uint32(n), current: uint32(n - 1)}
}

func (o *Descending) Current() uint32    { return o.current }
func (o *Descending) WithinBounds() bool { return !o.exhausted }

func (o *Descending) Advance() {
	if o.current == 0 {
		o.exhausted = true
		return
	}
	o.current--
}

func (o *Descending) Reset() {
	o.exhausted = o.n == 0
	if o.n > 0 {
		o.current = o.n - 1
	}
}

func (o *Descending) Clone() segment.Offset {
	return &Descending{n: o.n, current: o.current, exhausted: o.exhausted}
}

// BitmapOffset yields the set bits of bitmap in numeric order (ascending)
// or reverse numeric order (descending).
type BitmapOffset struct {
	bitmap     *roaring.Bitmap
	descending bool
	values     []uint32
	pos        int
}

// NewBitmapOffset builds a BitmapOffset over bitmap's set bits.
func NewBitmapOffset(bitmap *roaring.Bitmap, descending bool) *BitmapOffset {
	values := bitmap.ToArray()
	if descending {
		for i, j := 0, len(values)-1; i < j; i, j = i+1, j-1 {
			values[i], values[j] = values[j], values[i]
		}
	}
	return &BitmapOffset{bitmap: bitmap, descending: descending, values: values, pos: 0}
}

func (o *BitmapOffset) Current() uint32    { return o.values[o.pos] }
func (o *BitmapOffset) WithinBounds() bool { return o.pos < len(o.values) }
func (o *BitmapOffset) Advance()           { o.pos++ }
func (o *BitmapOffset) Reset()             { o.pos = 0 }

func (o *BitmapOffset) Clone() segment.Offset {
	return &BitmapOffset{bitmap: o.bitmap, descending: o.descending, values: o.values, pos: o.pos}
}

// ValueMatcherOffset is the minimal matcher contract FilteredOffset drives:
// a predicate over the row the wrapped offset currently addresses.
type ValueMatcherOffset interface {
	Matches() bool
}

// pollInterval bounds how often FilteredOffset.Advance checks the
// cancellation flag, satisfying an "at least every K rows,
// K <= 1024" requirement.
const pollInterval = 1024

// Canceled is a cooperative cancellation flag polled by FilteredOffset and
// by cursors during advance. It is safe for concurrent use by the single
// consumer thread and whatever signals cancellation (e.g. a context done
// channel observed elsewhere and translated into a Set call).
type Canceled struct {
	flag atomic.Bool
}

func (c *Canceled) Set()        { c.flag.Store(true) }
func (c *Canceled) IsSet() bool { return c != nil && c.flag.Load() }

// FilteredOffset wraps inner and drives it forward, on construction and on
// every Advance, until matcher.Matches() or exhaustion. Advance is
// interruptible: it polls cancel at least every pollInterval rows and, on
// cancellation, stops the skip and reports itself exhausted (WithinBounds
// false), so a row not yet confirmed as a match is never exposed.
type FilteredOffset struct {
	inner   segment.Offset
	matcher ValueMatcherOffset
	cancel  *Canceled

	interrupted bool
}

// NewFilteredOffset builds a FilteredOffset, immediately skipping inner
// forward to the first matching row (or exhaustion).
func NewFilteredOffset(inner segment.Offset, matcher ValueMatcherOffset, cancel *Canceled) *FilteredOffset {
	fo := &FilteredOffset{inner: inner, matcher: matcher, cancel: cancel}
	fo.skipToMatch()
	return fo
}

func (o *FilteredOffset) skipToMatch() {
	rowsChecked := 0
	for o.inner.WithinBounds() {
		if o.matcher.Matches() {
			return
		}
		o.inner.Advance()
		rowsChecked++
		if rowsChecked%pollInterval == 0 && o.cancel.IsSet() {
			o.interrupted = true
			return
		}
	}
}

func (o *FilteredOffset) Current() uint32 { return o.inner.Current() }

// WithinBounds is false once exhausted or once an interrupted skip leaves
// the offset without having reached a confirmed match.
func (o *FilteredOffset) WithinBounds() bool {
	return !o.interrupted && o.inner.WithinBounds()
}

// Interrupted reports whether the last skip was cut short by cancellation.
func (o *FilteredOffset) Interrupted() bool { return o.interrupted }

func (o *FilteredOffset) Advance() {
	if o.interrupted {
		return
	}
	o.inner.Advance()
	o.skipToMatch()
}

func (o *FilteredOffset) Reset() {
	o.inner.Reset()
	o.interrupted = false
	o.skipToMatch()
}

func (o *FilteredOffset) Clone() segment.Offset {
	return &FilteredOffset{inner: o.inner.Clone(), matcher: o.matcher, cancel: o.cancel, interrupted: o.interrupted}
}

// Direction distinguishes ascending from descending iteration for
// TimestampCheckingOffset.
type Direction int

const (
	DirAscending Direction = iota
	DirDescending
)

// TimestampCheckingOffset augments inner's WithinBounds with a time bound
// check against timestamps[current]. When allWithin is true (the data
// interval is known to lie entirely inside the query interval) the check
// is skipped entirely.
type TimestampCheckingOffset struct {
	inner      segment.Offset
	timestamps func(row uint32) int64
	limit      int64
	direction  Direction
	allWithin  bool
}

// NewTimestampCheckingOffset builds the wrapper. Ascending requires
// timestamps[current] < limit; descending requires timestamps[current] >= limit.
func NewTimestampCheckingOffset(inner segment.Offset, timestamps func(row uint32) int64, limit int64, direction Direction, allWithin bool) *TimestampCheckingOffset {
	return &TimestampCheckingOffset{inner: inner, timestamps: timestamps, limit: limit, direction: direction, allWithin: allWithin}
}

func (o *TimestampCheckingOffset) Current() uint32 { return o.inner.Current() }

func (o *TimestampCheckingOffset) WithinBounds() bool {
	if !o.inner.WithinBounds() {
		return false
	}
	if o.allWithin {
		return true
	}
	ts := o.timestamps(o.inner.Current())
	if o.direction == DirAscending {
		return ts < o.limit
	}
	return ts >= o.limit
}

func (o *TimestampCheckingOffset) Advance() { o.inner.Advance() }
func (o *TimestampCheckingOffset) Reset()   { o.inner.Reset() }

func (o *TimestampCheckingOffset) Clone() segment.Offset {
	return &TimestampCheckingOffset{
		inner:      o.inner.Clone(),
		timestamps: o.timestamps,
		limit:      o.limit,
		direction:  o.direction,
		allWithin:  o.allWithin,
	}
}
