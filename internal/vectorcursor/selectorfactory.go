package vectorcursor

import (
	"github.com/arkilian/scanengine/internal/selector"
	"github.com/arkilian/scanengine/pkg/segment"
)

// windowFactory implements segment.VectorColumnSelectorFactory over a fixed
// set of absolute row indices, filling buffers by calling the same
// PhysicalColumnReader the scalar selector factory uses, one row at a
// time. This is a batch-of-scalar-reads vectorization rather than a
// natively columnar one; the cursor-level contract (fixed-width buffers
// valid until the next Advance) is what the cursor contract actually specifies.
//
// Name resolution mirrors selector.Factory: virtual columns first, then
// physical readers, then an all-null buffer sized to the window. A name
// absent from readers never panics.
type windowFactory struct {
	rowIndices     []uint32
	readers        map[string]selector.PhysicalColumnReader
	virtualColumns segment.VirtualColumns
}

func newWindowFactory(rowIndices []uint32, readers map[string]selector.PhysicalColumnReader, virtualColumns segment.VirtualColumns) *windowFactory {
	return &windowFactory{rowIndices: rowIndices, readers: readers, virtualColumns: virtualColumns}
}

func (f *windowFactory) ColumnCapabilities(name string) *segment.ColumnCapabilities {
	if vc, ok := f.virtualColumns.Get(name); ok {
		return vc.Capabilities(vectorInspector{f})
	}
	r, ok := f.readers[name]
	if !ok {
		return nil
	}
	return &segment.ColumnCapabilities{Type: r.ValueType(), HasMultipleValues: segment.No}
}

func (f *windowFactory) MakeFloatVectorSelector(name string) segment.FloatVectorSelector {
	if vc, ok := f.virtualColumns.Get(name); ok {
		if s, ok := vc.MakeVectorSelector(f).(segment.FloatVectorSelector); ok {
			return s
		}
	}
	r, ok := f.readers[name]
	if !ok {
		return nullFloatVector{size: len(f.rowIndices)}
	}
	values := make([]float32, len(f.rowIndices))
	nulls := make([]bool, len(f.rowIndices))
	for i, row := range f.rowIndices {
		v, ok := r.ReadFloat(row)
		values[i] = v
		nulls[i] = !ok
	}
	return &vectorBuffer[float32]{values: values, nulls: nulls}
}

func (f *windowFactory) MakeDoubleVectorSelector(name string) segment.DoubleVectorSelector {
	if vc, ok := f.virtualColumns.Get(name); ok {
		if s, ok := vc.MakeVectorSelector(f).(segment.DoubleVectorSelector); ok {
			return s
		}
	}
	r, ok := f.readers[name]
	if !ok {
		return nullDoubleVector{size: len(f.rowIndices)}
	}
	values := make([]float64, len(f.rowIndices))
	nulls := make([]bool, len(f.rowIndices))
	for i, row := range f.rowIndices {
		v, ok := r.ReadDouble(row)
		values[i] = v
		nulls[i] = !ok
	}
	return &vectorBuffer[float64]{values: values, nulls: nulls}
}

func (f *windowFactory) MakeLongVectorSelector(name string) segment.LongVectorSelector {
	if vc, ok := f.virtualColumns.Get(name); ok {
		if s, ok := vc.MakeVectorSelector(f).(segment.LongVectorSelector); ok {
			return s
		}
	}
	r, ok := f.readers[name]
	if !ok {
		return nullLongVector{size: len(f.rowIndices)}
	}
	values := make([]int64, len(f.rowIndices))
	nulls := make([]bool, len(f.rowIndices))
	for i, row := range f.rowIndices {
		v, ok := r.ReadLong(row)
		values[i] = v
		nulls[i] = !ok
	}
	return &vectorBuffer[int64]{values: values, nulls: nulls}
}

func (f *windowFactory) MakeObjectVectorSelector(name string) segment.ObjectVectorSelector {
	if vc, ok := f.virtualColumns.Get(name); ok {
		if s, ok := vc.MakeVectorSelector(f).(segment.ObjectVectorSelector); ok {
			return s
		}
	}
	r, ok := f.readers[name]
	values := make([]any, len(f.rowIndices))
	if ok {
		for i, row := range f.rowIndices {
			values[i] = r.ReadObject(row)
		}
	}
	return &objectVectorBuffer{values: values}
}

// vectorInspector adapts a windowFactory into a segment.ColumnInspector for
// capability queries virtual columns issue about their inputs.
type vectorInspector struct{ f *windowFactory }

func (i vectorInspector) ColumnCapabilities(name string) *segment.ColumnCapabilities {
	return i.f.ColumnCapabilities(name)
}

func (i vectorInspector) RowSignature() segment.RowSignature {
	cols := make([]segment.ColumnSignature, 0, len(i.f.readers))
	for name, r := range i.f.readers {
		cols = append(cols, segment.ColumnSignature{Name: name, Type: r.ValueType(), TypeKnown: true})
	}
	return segment.NewRowSignature(cols)
}

// allNull returns a NullVector of size with every entry true.
func allNull(size int) []bool {
	nulls := make([]bool, size)
	for i := range nulls {
		nulls[i] = true
	}
	return nulls
}

// nullFloatVector, nullDoubleVector, nullLongVector are all-null buffers of
// the window's size, returned when a name resolves to neither a virtual nor
// a physical column.
type nullFloatVector struct{ size int }

func (b nullFloatVector) FloatVector() []float32  { return make([]float32, b.size) }
func (b nullFloatVector) NullVector() []bool      { return allNull(b.size) }
func (b nullFloatVector) CurrentVectorSize() int  { return b.size }

type nullDoubleVector struct{ size int }

func (b nullDoubleVector) DoubleVector() []float64 { return make([]float64, b.size) }
func (b nullDoubleVector) NullVector() []bool       { return allNull(b.size) }
func (b nullDoubleVector) CurrentVectorSize() int   { return b.size }

type nullLongVector struct{ size int }

func (b nullLongVector) LongVector() []int64    { return make([]int64, b.size) }
func (b nullLongVector) NullVector() []bool     { return allNull(b.size) }
func (b nullLongVector) CurrentVectorSize() int { return b.size }

type vectorBuffer[T any] struct {
	values []T
	nulls  []bool
}

func (b *vectorBuffer[T]) NullVector() []bool      { return b.nulls }
func (b *vectorBuffer[T]) CurrentVectorSize() int  { return len(b.values) }

func (b *vectorBuffer[T]) FloatVector() []float32 {
	if v, ok := any(b.values).([]float32); ok {
		return v
	}
	return nil
}

func (b *vectorBuffer[T]) DoubleVector() []float64 {
	if v, ok := any(b.values).([]float64); ok {
		return v
	}
	return nil
}

func (b *vectorBuffer[T]) LongVector() []int64 {
	if v, ok := any(b.values).([]int64); ok {
		return v
	}
	return nil
}

type objectVectorBuffer struct {
	values []any
}

func (b *objectVectorBuffer) ObjectVector() []any     { return b.values }
func (b *objectVectorBuffer) CurrentVectorSize() int  { return len(b.values) }
