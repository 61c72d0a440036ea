package filterbundle

import (
	"strconv"

	"github.com/arkilian/scanengine/pkg/segment"
)

// EqualityFilter is a minimal concrete Filter: column == target.
// A numeric column value and a numeric-looking target compare by parsed
// value (so a LONG column holding 1 matches a target of "1.0"), otherwise
// comparison falls back to the value's decimal text. TargetIsNull selects
// IS NULL instead of an equality target, matching a filter against a
// column that does not exist anywhere (which always reads as null).
// Expression parsing and boolean composition belong to the query layer
// this core treats as an external collaborator; this filter exists so the
// core is testable end to end without one.
type EqualityFilter struct {
	Column       string
	Target       string
	TargetIsNull bool
}

var _ segment.Filter = EqualityFilter{}

func (f EqualityFilter) MakeFilterBundle(selector segment.BitmapIndexSelector, resultFactory segment.BitmapResultFactory, totalRows, appliedRowsSoFar int, cnfAlreadyApplied bool) segment.FilterBundle {
	if f.TargetIsNull {
		return segment.FilterBundle{MatcherBundle: equalityMatcherBundle{f: f}}
	}
	if supplier, ok := selector.IndexSupplier(f.Column); ok {
		if bm := supplier.ForValue(f.Target); bm != nil {
			return segment.FilterBundle{
				Index: resultFactory.Wrap(bm, "equality("+f.Column+"="+f.Target+")"),
			}
		}
		// The index proves the target is absent from the column's dictionary,
		// but a full bitmap result still requires walking it once to produce
		// an empty one; a bloom probe over the same dictionary lets the
		// matcher reject every row without ever touching the selector.
		if dvs, ok := supplier.(distinctValueSource); ok {
			return segment.FilterBundle{MatcherBundle: equalityMatcherBundle{f: f, probe: BuildBloomProbe(dvs.DistinctValues())}}
		}
	}
	return segment.FilterBundle{MatcherBundle: equalityMatcherBundle{f: f}}
}

func (f EqualityFilter) MakeMatcher(factory segment.ColumnSelectorFactory) segment.ValueMatcher {
	return equalityMatcher{selector: factory.MakeObjectSelector(f.Column), target: f.Target, targetIsNull: f.TargetIsNull}
}

func (f EqualityFilter) MakeVectorMatcher(factory segment.VectorColumnSelectorFactory) segment.VectorValueMatcher {
	return equalityVectorMatcher{selector: factory.MakeObjectVectorSelector(f.Column), target: f.Target, targetIsNull: f.TargetIsNull}
}

func (f EqualityFilter) CanVectorizeMatcher(signature segment.RowSignature) bool {
	return true
}

// ReferencedColumns reports the column this filter tests, for Build's
// predicate-frequency recording.
func (f EqualityFilter) ReferencedColumns() []string {
	return []string{f.Column}
}

// equalityMatcherBundle is the matcher fallback for an equality filter that
// couldn't resolve to a direct index lookup. probe, when set, gates the
// scalar matcher behind a bloom existence check built from the column's
// already-resident dictionary; it is nil whenever no such dictionary was
// available (TargetIsNull, or a column with no index at all).
type equalityMatcherBundle struct {
	f     EqualityFilter
	probe *BloomProbe
}

func (b equalityMatcherBundle) Matcher(factory segment.ColumnSelectorFactory) segment.ValueMatcher {
	if b.probe != nil {
		return GatedEqualityMatcher{Probe: b.probe, Target: b.f.Target, Selector: factory.MakeObjectSelector(b.f.Column)}
	}
	return b.f.MakeMatcher(factory)
}

func (b equalityMatcherBundle) VectorMatcher(factory segment.VectorColumnSelectorFactory) segment.VectorValueMatcher {
	return b.f.MakeVectorMatcher(factory)
}

func (b equalityMatcherBundle) CanVectorize() bool { return true }

type equalityMatcher struct {
	selector     segment.ObjectColumnSelector
	target       string
	targetIsNull bool
}

func (m equalityMatcher) Matches() bool {
	return valuesEqual(m.selector.GetObject(), m.target, m.targetIsNull)
}

type equalityVectorMatcher struct {
	selector     segment.ObjectVectorSelector
	target       string
	targetIsNull bool
}

func (m equalityVectorMatcher) Match(mask *segment.VectorMask) *segment.VectorMask {
	values := m.selector.ObjectVector()
	size := m.selector.CurrentVectorSize()

	var selected []int
	if mask == nil || mask.Selected == nil {
		for i := 0; i < size; i++ {
			if valuesEqual(values[i], m.target, m.targetIsNull) {
				selected = append(selected, i)
			}
		}
	} else {
		for _, i := range mask.Selected {
			if i < size && valuesEqual(values[i], m.target, m.targetIsNull) {
				selected = append(selected, i)
			}
		}
	}
	return &segment.VectorMask{Size: size, Selected: selected}
}

// valuesEqual matches v against target the way a numeric-aware equality
// filter does: a numeric value and a numeric-looking target compare by
// parsed value (so 1 matches "1.0"), otherwise comparison falls back to
// v's decimal text form.
func valuesEqual(v any, target string, targetIsNull bool) bool {
	if targetIsNull {
		return v == nil
	}
	if v == nil {
		return false
	}
	if vf, ok := numericValue(v); ok {
		if tf, err := strconv.ParseFloat(target, 64); err == nil {
			return vf == tf
		}
	}
	return objectToText(v) == target
}

func numericValue(v any) (float64, bool) {
	switch t := v.(type) {
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case float32:
		return float64(t), true
	default:
		return 0, false
	}
}

func objectToText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32)
	default:
		return ""
	}
}
