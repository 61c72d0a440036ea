// Package filterbundle implements the (index?, matcher?)
// pair a filter produces, and the holder's offset-selection policy over it.
package filterbundle

import (
	"time"

	"github.com/arkilian/scanengine/internal/errorsx"
	"github.com/arkilian/scanengine/internal/rowoffset"
	"github.com/arkilian/scanengine/pkg/segment"
)

// columnReferencer is the optional interface a Filter implements to report
// which columns it tests, for predicateFreq's bookkeeping.
type columnReferencer interface {
	ReferencedColumns() []string
}

// Build resolves spec into a FilterBundle, timing bitmap construction and
// reporting it (plus pre-filtered row count) to metrics if supplied, and
// recording every column the filter references against predicateFreq if
// supplied. A nil filter yields an empty FilterBundle (neither index nor
// matcher), which SelectOffset treats as case 4.
func Build(filter segment.Filter, selector segment.BitmapIndexSelector, resultFactory segment.BitmapResultFactory, numRows, appliedRowsSoFar int, cnfAlreadyApplied bool, metrics segment.QueryMetrics, predicateFreq segment.PredicateRecorder) segment.FilterBundle {
	if filter == nil {
		return segment.FilterBundle{}
	}

	if predicateFreq != nil {
		if cr, ok := filter.(columnReferencer); ok {
			for _, col := range cr.ReferencedColumns() {
				predicateFreq.Record(col)
			}
		}
	}

	start := time.Now()
	bundle := filter.MakeFilterBundle(selector, resultFactory, numRows, appliedRowsSoFar, cnfAlreadyApplied)
	elapsed := time.Since(start)

	if metrics != nil {
		metrics.ReportBitmapConstructionTime(elapsed.Nanoseconds())
		if bundle.Index != nil {
			metrics.ReportPreFilteredRows(int(bundle.Index.Bitmap.GetCardinality()))
			metrics.FilterBundleInfo(bundle.Index.DebugInfo)
		}
	}
	return bundle
}

// SelectOffset applies the five-case policy to choose and wrap a base
// offset over [0, numRows) given a FilterBundle and whether the caller's
// scalar matcher is needed (scalarFactory must be non-nil when a matcher
// bundle is present and is used to bind it). It is SelectBaseOffset
// (cases 1-4) followed by WrapWithMatcher (case 5); production callers
// that need to interleave interval/timestamp wrapping between the two
// (see cursor.NewScalarCursor) call those two halves directly instead.
func SelectOffset(bundle segment.FilterBundle, filterIsNonNil bool, numRows int, descending bool, scalarFactory segment.ColumnSelectorFactory, cancel *rowoffset.Canceled) (segment.Offset, error) {
	base, err := SelectBaseOffset(bundle, filterIsNonNil, numRows, descending)
	if err != nil {
		return nil, err
	}
	return WrapWithMatcher(base, bundle, scalarFactory, cancel), nil
}

// SelectBaseOffset applies cases 1-4 of the five-case filter partitioning
// policy: an index drives a bitmap offset, a matcher with no index falls
// back to a full range scan for the matcher to filter, no filter at all is
// also a full range scan, and a non-nil filter that produced neither an
// index nor a matcher is unmatchable.
func SelectBaseOffset(bundle segment.FilterBundle, filterIsNonNil bool, numRows int, descending bool) (segment.Offset, error) {
	hasIndex := bundle.Index != nil
	hasMatcher := bundle.MatcherBundle != nil

	switch {
	case hasIndex:
		return rowoffset.NewBitmapOffset(bundle.Index.Bitmap, descending), nil
	case hasMatcher:
		return fullRangeOffset(numRows, descending), nil
	case filterIsNonNil:
		return nil, errorsx.ExecutionErrorf(errorsx.CodeUnmatchableFilter, "filter produced neither a bitmap index nor a matcher")
	default:
		return fullRangeOffset(numRows, descending), nil
	}
}

// WrapWithMatcher applies case 5: when bundle carries a matcher, it wraps
// base in a FilteredOffset bound to scalarFactory; otherwise base is
// returned unchanged.
func WrapWithMatcher(base segment.Offset, bundle segment.FilterBundle, scalarFactory segment.ColumnSelectorFactory, cancel *rowoffset.Canceled) segment.Offset {
	if bundle.MatcherBundle == nil {
		return base
	}
	matcher := bundle.MatcherBundle.Matcher(scalarFactory)
	return rowoffset.NewFilteredOffset(base, matcherAdapter{matcher}, cancel)
}

func fullRangeOffset(numRows int, descending bool) segment.Offset {
	if descending {
		return rowoffset.NewDescending(numRows)
	}
	return rowoffset.NewAscending(numRows)
}

type matcherAdapter struct {
	m segment.ValueMatcher
}

func (a matcherAdapter) Matches() bool { return a.m.Matches() }
