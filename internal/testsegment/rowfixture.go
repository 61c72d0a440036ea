package testsegment

import (
	"time"

	"github.com/arkilian/scanengine/internal/rowadapter"
	"github.com/arkilian/scanengine/pkg/segment"
)

// LongColumnName is the declared LONG column of the integer row fixture.
const LongColumnName = "LONG"

// IntRowSignature declares float/double/long/string/complex/unknown columns
// over the same underlying integer record, one column per declared type.
func IntRowSignature() segment.RowSignature {
	return segment.NewRowSignature([]segment.ColumnSignature{
		{Name: "FLOAT", Type: segment.TypeFloat, TypeKnown: true},
		{Name: "DOUBLE", Type: segment.TypeDouble, TypeKnown: true},
		{Name: LongColumnName, Type: segment.TypeLong, TypeKnown: true},
		{Name: "STRING", Type: segment.TypeString, TypeKnown: true},
		{Name: "COMPLEX", Type: segment.TypeComplex, TypeKnown: true},
		{Name: "UNKNOWN", TypeKnown: false},
	})
}

// hour is the bucket width the integer fixture's timestamp function uses:
// record value i is reported at i whole hours since epoch.
const hour = int64(time.Hour / time.Millisecond)

// intTimestampFn maps record i to i hours since epoch.
func intTimestampFn(i int) int64 { return int64(i) * hour }

// intColumnFn returns the per-record accessor for name: every declared
// column reads the same underlying integer, it is only the conversion at
// selector construction time (see rowadapter's conversion table) that makes
// them differ by declared type. COMPLEX reads as nil; every other name,
// UNKNOWN included, reads as the record itself, which the conversion table
// leaves as-is for the UNKNOWN column.
func intColumnFn(name string) func(int) any {
	switch name {
	case "COMPLEX":
		return func(i int) any { return nil }
	default:
		return func(i int) any { return i }
	}
}

// NewIntAdapter builds the row-based adapter fixture over records, grounded
// in the same construction Druid's RowBasedStorageAdapterTest uses: each
// record's own integer value serves as both its __time (in whole hours) and
// its value under every declared column. sequence is returned alongside the
// adapter so tests can assert on its close-call bookkeeping.
func NewIntAdapter(records ...int) (*rowadapter.Adapter[int], *rowadapter.SliceSequence[int]) {
	seq := &rowadapter.SliceSequence[int]{Records: records}
	adapter := rowadapter.New(seq, IntRowSignature(), intTimestampFn, intColumnFn)
	return adapter, seq
}
