// Package granularity groups a time-ordered cursor into bucket intervals,
// truncating __time to multiples of a fixed width.
package granularity

import (
	"github.com/arkilian/scanengine/pkg/segment"
)

// Granularity is a bucket width in milliseconds.
type Granularity int64

const (
	Millisecond Granularity = 1
	Second      Granularity = 1000
	Minute      Granularity = 60 * Second
	Hour        Granularity = 60 * Minute
	Day         Granularity = 24 * Hour
)

// Truncate returns the start of the bucket containing ts, flooring toward
// negative infinity for negative timestamps rather than toward zero.
func (g Granularity) Truncate(ts int64) int64 {
	width := int64(g)
	m := ts % width
	if m < 0 {
		m += width
	}
	return ts - m
}

// Bucket returns the half-open [start, start+g) interval containing ts.
func (g Granularity) Bucket(ts int64) segment.Interval {
	start := g.Truncate(ts)
	return segment.Interval{Start: start, End: start + int64(g)}
}

// TimeOrderedCursor is the minimal contract Granularizer drives: a
// row-at-a-time cursor that can report the __time of the row it is
// currently positioned at. ScalarCursor and AdapterCursor both satisfy it.
type TimeOrderedCursor interface {
	Advance() error
	AdvanceUninterruptibly()
	IsDone() bool
	CurrentTimestamp() int64
}

// Granularizer slices a TimeOrderedCursor into bucket intervals of width g,
// walking in the cursor's own direction; within a bucket the cursor's row
// order is preserved untouched.
type Granularizer struct {
	cursor     TimeOrderedCursor
	g          Granularity
	bound      segment.Interval
	descending bool

	currentBucket segment.Interval
	done          bool
}

// New builds a Granularizer over cursor, immediately syncing bucket_start
// to the cursor's first row.
func New(cursor TimeOrderedCursor, g Granularity, bound segment.Interval, descending bool) *Granularizer {
	gz := &Granularizer{cursor: cursor, g: g, bound: bound, descending: descending}
	gz.syncBucket()
	return gz
}

func (gz *Granularizer) syncBucket() {
	if gz.cursor.IsDone() {
		gz.done = true
		return
	}
	gz.currentBucket = gz.g.Bucket(gz.cursor.CurrentTimestamp())
}

// IsDone reports whether the underlying cursor is exhausted.
func (gz *Granularizer) IsDone() bool { return gz.done }

// BucketStart returns the start of the bucket the cursor is currently
// positioned within. Callers must check IsDone first.
func (gz *Granularizer) BucketStart() int64 { return gz.currentBucket.Start }

// CurrentBucket returns the full bucket interval the cursor is currently
// positioned within.
func (gz *Granularizer) CurrentBucket() segment.Interval { return gz.currentBucket }

// AdvanceWithinBucket moves the underlying cursor forward one row, for the
// common case of consuming every row of the current bucket in turn. It
// does not itself check that the new row is still in the same bucket;
// callers drive that by comparing BucketStart before and after.
func (gz *Granularizer) AdvanceWithinBucket(uninterruptibly bool) error {
	if gz.done {
		return nil
	}
	if uninterruptibly {
		gz.cursor.AdvanceUninterruptibly()
	} else if err := gz.cursor.Advance(); err != nil {
		return err
	}
	gz.syncBucket()
	return nil
}

// AdvanceToBucket repositions the cursor at the first row belonging to
// target (a bucket start, in iteration direction) or, if target's bucket
// holds no rows, at the first row past it. This lets a caller drive a
// bucket sequence independent of which buckets the data actually
// populates: buckets with no matching rows are simply skipped over.
func (gz *Granularizer) AdvanceToBucket(target int64) error {
	for !gz.cursor.IsDone() {
		cur := gz.g.Truncate(gz.cursor.CurrentTimestamp())
		if gz.descending {
			if cur <= target {
				break
			}
		} else if cur >= target {
			break
		}
		if err := gz.cursor.Advance(); err != nil {
			return err
		}
	}
	gz.syncBucket()
	return nil
}

// Buckets returns the full, contiguous sequence of granularity buckets
// covering bound, in iteration direction, regardless of which buckets the
// cursor's data actually populates.
func (gz *Granularizer) Buckets() []segment.Interval {
	if gz.bound.IsEmpty() {
		return nil
	}
	width := int64(gz.g)
	start := gz.g.Truncate(gz.bound.Start)
	last := gz.g.Truncate(gz.bound.End - 1)

	var out []segment.Interval
	for b := start; b <= last; b += width {
		out = append(out, segment.Interval{Start: b, End: b + width})
	}
	if gz.descending {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}
