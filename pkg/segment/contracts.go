package segment

import "github.com/RoaringBitmap/roaring/v2"

// Offset is a mutable position into [0, N) with direction and skip
// semantics. current is defined only while within_bounds holds; after
// Reset, state equals construction.
type Offset interface {
	Current() uint32
	WithinBounds() bool
	Advance()
	Reset()
	Clone() Offset
}

// ColumnSelectorFactory binds (name, offset) to per-row value readers.
// Concrete scalar selector types are defined by internal/selector; this
// interface is the seam virtual columns and filters bind against.
type ColumnSelectorFactory interface {
	MakeFloatSelector(name string) FloatColumnSelector
	MakeDoubleSelector(name string) DoubleColumnSelector
	MakeLongSelector(name string) LongColumnSelector
	MakeObjectSelector(name string) ObjectColumnSelector
	MakeDimensionSelector(name string) DimensionSelector
	ColumnCapabilities(name string) *ColumnCapabilities
}

// VectorColumnSelectorFactory is the vectorized counterpart, binding names
// to fixed-capacity buffers over the current vector window.
type VectorColumnSelectorFactory interface {
	MakeFloatVectorSelector(name string) FloatVectorSelector
	MakeDoubleVectorSelector(name string) DoubleVectorSelector
	MakeLongVectorSelector(name string) LongVectorSelector
	MakeObjectVectorSelector(name string) ObjectVectorSelector
	ColumnCapabilities(name string) *ColumnCapabilities
}

// FloatColumnSelector, DoubleColumnSelector, LongColumnSelector expose
// get_TYPE/is_null reads against the offset's current row.
type FloatColumnSelector interface {
	GetFloat() float32
	IsNull() bool
}

type DoubleColumnSelector interface {
	GetDouble() float64
	IsNull() bool
}

type LongColumnSelector interface {
	GetLong() int64
	IsNull() bool
}

// ObjectColumnSelector returns an arbitrary value, possibly nil.
type ObjectColumnSelector interface {
	GetObject() any
}

// DimensionSelector is the string-dimension selector. GetObject returns a
// single string, a []string, or nil.
type DimensionSelector interface {
	GetObject() any
	IsNull() bool
}

// FloatVectorSelector and friends expose a buffer valid for
// [0, CurrentVectorSize()).
type FloatVectorSelector interface {
	FloatVector() []float32
	NullVector() []bool
	CurrentVectorSize() int
}

type DoubleVectorSelector interface {
	DoubleVector() []float64
	NullVector() []bool
	CurrentVectorSize() int
}

type LongVectorSelector interface {
	LongVector() []int64
	NullVector() []bool
	CurrentVectorSize() int
}

type ObjectVectorSelector interface {
	ObjectVector() []any
	CurrentVectorSize() int
}

// ValueMatcher evaluates a predicate against the row currently addressed
// by the offset a selector factory is bound to.
type ValueMatcher interface {
	Matches() bool
}

// VectorValueMatcher evaluates a predicate over a vector window, returning
// the subset of [0, mask.Size) rows (within an existing
// selection mask) that match.
type VectorValueMatcher interface {
	Match(mask *VectorMask) *VectorMask
}

// VectorMask names the active rows within a vector window, either all of
// [0, size) or a selected subset of row offsets into it.
type VectorMask struct {
	Size     int
	Selected []int // nil means all rows [0, Size) are selected
}

// BitmapHolder pairs a bitmap with debug info describing how it was built,
// for filter bundle construction.
type BitmapHolder struct {
	Bitmap    *roaring.Bitmap
	DebugInfo string
}

// MatcherBundle produces a (scalar, vector) matcher pair against a supplied
// selector factory, deferring binding until the cursor knows its final
// factory.
type MatcherBundle interface {
	Matcher(factory ColumnSelectorFactory) ValueMatcher
	VectorMatcher(factory VectorColumnSelectorFactory) VectorValueMatcher
	CanVectorize() bool
}

// FilterBundle is the (index?, matcher_bundle?) pair a Filter produces.
type FilterBundle struct {
	Index         *BitmapHolder
	MatcherBundle MatcherBundle
}

// BitmapIndexSelector is the contract a Filter uses to look up indexes; it
// is a deliberate boundary ("filter index construction beyond
// the BitmapIndexSelector contract" is out of scope).
type BitmapIndexSelector interface {
	BitmapFactory() BitmapFactory
	IndexSupplier(column string) (BitmapIndexSupplier, bool)
	NumRows() int
}

// Filter is an opaque predicate tree. Concrete filters (equality, range,
// and/or/not composition) live outside this core; only the contract they
// must satisfy is defined here.
type Filter interface {
	MakeFilterBundle(selector BitmapIndexSelector, resultFactory BitmapResultFactory, totalRows, appliedRowsSoFar int, cnfAlreadyApplied bool) FilterBundle
	MakeMatcher(factory ColumnSelectorFactory) ValueMatcher
	MakeVectorMatcher(factory VectorColumnSelectorFactory) VectorValueMatcher
	CanVectorizeMatcher(signature RowSignature) bool
}

// BitmapResultFactory wraps a raw bitmap with result-specific bookkeeping
// (e.g. construction time) before it is attached to a FilterBundle.
type BitmapResultFactory interface {
	Wrap(bitmap *roaring.Bitmap, debugInfo string) *BitmapHolder
}

// ColumnInspector is a read-only view of physical and previously declared
// virtual columns, used by a virtual column to answer capability queries
// about its inputs without forcing an open.
type ColumnInspector interface {
	ColumnCapabilities(name string) *ColumnCapabilities
	RowSignature() RowSignature
}

// VirtualColumn is a derived column computed lazily per row from other
// columns visible through the same factory.
type VirtualColumn interface {
	Name() string
	Capabilities(inspector ColumnInspector) *ColumnCapabilities
	MakeScalarSelector(factory ColumnSelectorFactory, offset Offset) any
	MakeVectorSelector(factory VectorColumnSelectorFactory) any
	CanVectorize(inspector ColumnInspector) bool
}

// QueryMetrics is the optional side-effect sink a CursorBuildSpec may carry.
// report_segment_rows/report_bitmap_construction_time/report_pre_filtered_rows
// and filter_bundle are all present on the original metrics contract this
// core's source draws from, not only the calls used directly here.
type QueryMetrics interface {
	Vectorized(vectorized bool)
	ReportSegmentRows(n int)
	ReportBitmapConstructionTime(ns int64)
	ReportPreFilteredRows(n int)
	FilterBundleInfo(info string)
}

// PredicateRecorder counts how often a column is referenced by a filter
// across scans, for a caller driving automated index-creation decisions
// from observed query shape rather than per-scan counters.
type PredicateRecorder interface {
	Record(column string)
}
