// Package vectorcursor implements the vector cursor:
// fixed-width batch iteration sharing the scalar cursor's filter/time
// machinery, gated by can_vectorize.
package vectorcursor

import "math"

// TimestampReader reads the millisecond __time value for an absolute row
// index.
type TimestampReader func(row uint32) int64

// timeSearch finds the smallest index in [lo, hi) with ts(i) >= target.
// It binary-searches for target-1 and then linearly probes forward for
// the first index >= target, which stays correct for duplicate/dense
// timestamp clusters and is empirically faster than a single binary
// search at those clusters. Returns hi when no such index exists.
func timeSearch(ts TimestampReader, target int64, lo, hi int) int {
	if lo >= hi {
		return hi
	}
	// target-1 wraps around for math.MinInt64 (Eternity's start), so the
	// binary search starts from target itself in that case.
	probe := target - 1
	if target == math.MinInt64 {
		probe = target
	}
	idx := lowerBound(ts, probe, lo, hi)
	for idx < hi && ts(uint32(idx)) < target {
		idx++
	}
	return idx
}

// lowerBound finds the smallest index in [lo, hi) with ts(i) >= target,
// returning hi if none exists.
func lowerBound(ts TimestampReader, target int64, lo, hi int) int {
	for lo < hi {
		mid := lo + (hi-lo)/2
		if ts(uint32(mid)) < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
