package rowadapter

import (
	"strconv"

	"github.com/arkilian/scanengine/pkg/segment"
)

// recordFactory implements segment.ColumnSelectorFactory by reading the
// record currently at pos and converting column_fn(name)(record) to the
// declared target type per the conversion table below. It also implements
// segment.Offset over its own pos, so it can serve as the offset a virtual
// column's MakeScalarSelector binds against.
type recordFactory[T any] struct {
	adapter        *Adapter[T]
	records        []T
	pos            int
	virtualColumns segment.VirtualColumns
}

func newRecordFactory[T any](adapter *Adapter[T], records []T, pos int, virtualColumns segment.VirtualColumns) *recordFactory[T] {
	return &recordFactory[T]{adapter: adapter, records: records, pos: pos, virtualColumns: virtualColumns}
}

// --- segment.Offset, so virtual columns can bind against this factory ---

func (f *recordFactory[T]) Current() uint32    { return uint32(f.pos) }
func (f *recordFactory[T]) WithinBounds() bool { return f.pos < len(f.records) }
func (f *recordFactory[T]) Advance()           { f.pos++ }
func (f *recordFactory[T]) Reset()             { f.pos = 0 }
func (f *recordFactory[T]) Clone() segment.Offset {
	clone := *f
	return &clone
}

func (f *recordFactory[T]) currentValue(name string) any {
	if f.pos >= len(f.records) {
		return nil
	}
	if !f.adapter.signature.Contains(name) {
		return nil
	}
	accessor := f.adapter.columnFn(name)
	if accessor == nil {
		return nil
	}
	return accessor(f.records[f.pos])
}

func (f *recordFactory[T]) ColumnCapabilities(name string) *segment.ColumnCapabilities {
	if vc, ok := f.virtualColumns.Get(name); ok {
		return vc.Capabilities(recordInspector[T]{f: f})
	}
	t, known := f.adapter.signature.ColumnType(name)
	if !known {
		return nil
	}
	return &segment.ColumnCapabilities{Type: t, HasMultipleValues: segment.No}
}

// recordInspector adapts a recordFactory into a segment.ColumnInspector for
// capability queries virtual columns issue about their inputs.
type recordInspector[T any] struct{ f *recordFactory[T] }

func (i recordInspector[T]) ColumnCapabilities(name string) *segment.ColumnCapabilities {
	return i.f.ColumnCapabilities(name)
}

func (i recordInspector[T]) RowSignature() segment.RowSignature {
	return i.f.adapter.signature
}

// convertFloat implements the float row of the conversion table: a cast
// of a non-null value, null otherwise.
func convertFloat(v any) (float32, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float32:
		return n, true
	case float64:
		return float32(n), true
	case int64:
		return float32(n), true
	case int:
		return float32(n), true
	default:
		return 0, false
	}
}

func convertDouble(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func convertLong(v any) (int64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case float32:
		return int64(n), true
	default:
		return 0, false
	}
}

// convertString is "decimal text of N" for non-null values: the decimal
// text of a number, or the value's own string form.
func convertString(v any) (string, bool) {
	switch n := v.(type) {
	case nil:
		return "", false
	case string:
		return n, true
	case int64:
		return strconv.FormatInt(n, 10), true
	case int:
		return strconv.Itoa(n), true
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32), true
	default:
		return "", false
	}
}

func (f *recordFactory[T]) MakeFloatSelector(name string) segment.FloatColumnSelector {
	if vc, ok := f.virtualColumns.Get(name); ok {
		if s, ok := vc.MakeScalarSelector(f, f).(segment.FloatColumnSelector); ok {
			return s
		}
	}
	return recordScalarSelector[float32]{f: f, name: name, convert: convertFloat}
}

func (f *recordFactory[T]) MakeDoubleSelector(name string) segment.DoubleColumnSelector {
	if vc, ok := f.virtualColumns.Get(name); ok {
		if s, ok := vc.MakeScalarSelector(f, f).(segment.DoubleColumnSelector); ok {
			return s
		}
	}
	return recordScalarSelector[float64]{f: f, name: name, convert: convertDouble}
}

func (f *recordFactory[T]) MakeLongSelector(name string) segment.LongColumnSelector {
	if vc, ok := f.virtualColumns.Get(name); ok {
		if s, ok := vc.MakeScalarSelector(f, f).(segment.LongColumnSelector); ok {
			return s
		}
	}
	return recordScalarSelector[int64]{f: f, name: name, convert: convertLong}
}

// valueSource is the non-generic seam recordScalarSelector binds against:
// Go generics cannot let a selector parameterized only by its numeric
// result type hold a *recordFactory[T] for an arbitrary record type T, so
// the selector depends on this narrow interface instead.
type valueSource interface {
	currentValue(name string) any
}

// MakeObjectSelector returns the declared type's conversion when the
// signature knows name's type; complex always converts to null, and
// unknown returns the original object unconverted. A virtual column of
// this name takes priority over the declared physical conversion.
func (f *recordFactory[T]) MakeObjectSelector(name string) segment.ObjectColumnSelector {
	if vc, ok := f.virtualColumns.Get(name); ok {
		if s, ok := vc.MakeScalarSelector(f, f).(segment.ObjectColumnSelector); ok {
			return s
		}
	}
	t, known := f.adapter.signature.ColumnType(name)
	return recordObjectSelector[T]{f: f, name: name, declaredType: t, typeKnown: known}
}

func (f *recordFactory[T]) MakeDimensionSelector(name string) segment.DimensionSelector {
	if vc, ok := f.virtualColumns.Get(name); ok {
		if s, ok := vc.MakeScalarSelector(f, f).(segment.DimensionSelector); ok {
			return s
		}
	}
	return recordDimensionSelector[T]{f: f, name: name}
}

type recordScalarSelector[N any] struct {
	f       valueSource
	name    string
	convert func(any) (N, bool)
}

func (s recordScalarSelector[N]) get() N {
	v, _ := s.convert(s.f.currentValue(s.name))
	return v
}

func (s recordScalarSelector[N]) IsNull() bool {
	_, ok := s.convert(s.f.currentValue(s.name))
	return !ok
}

func (s recordScalarSelector[N]) GetFloat() float32 {
	return any(s.get()).(float32)
}

func (s recordScalarSelector[N]) GetDouble() float64 {
	return any(s.get()).(float64)
}

func (s recordScalarSelector[N]) GetLong() int64 {
	return any(s.get()).(int64)
}

type recordObjectSelector[T any] struct {
	f            *recordFactory[T]
	name         string
	declaredType segment.ValueType
	typeKnown    bool
}

func (s recordObjectSelector[T]) GetObject() any {
	raw := s.f.currentValue(s.name)
	if !s.typeKnown {
		return raw
	}
	switch s.declaredType {
	case segment.TypeComplex:
		return nil
	case segment.TypeFloat:
		v, ok := convertFloat(raw)
		if !ok {
			return nil
		}
		return v
	case segment.TypeDouble:
		v, ok := convertDouble(raw)
		if !ok {
			return nil
		}
		return v
	case segment.TypeLong:
		v, ok := convertLong(raw)
		if !ok {
			return nil
		}
		return v
	case segment.TypeString:
		v, ok := convertString(raw)
		if !ok {
			return nil
		}
		return v
	default: // unknown: original object
		return raw
	}
}

type recordDimensionSelector[T any] struct {
	f    *recordFactory[T]
	name string
}

func (s recordDimensionSelector[T]) GetObject() any {
	v, ok := convertString(s.f.currentValue(s.name))
	if !ok {
		return nil
	}
	return v
}

func (s recordDimensionSelector[T]) IsNull() bool {
	_, ok := convertString(s.f.currentValue(s.name))
	return !ok
}
