// Package selector implements the column selector factory:
// binding (name, offset) to per-row value readers, with the name
// resolution order virtual columns first, then physical columns, then a
// null selector. A name that resolves nowhere is a null selector, never an
// error; this preserves the "filter on nonexistent column equals null"
// behavior.
package selector

import (
	"github.com/arkilian/scanengine/internal/columncache"
	"github.com/arkilian/scanengine/internal/errorsx"
	"github.com/arkilian/scanengine/pkg/segment"
)

// PhysicalColumnReader reads a typed value for the row at a given integer
// row index out of an opened physical column. Concrete column formats
// (dictionary-encoded strings, fixed-width numerics) implement this; the
// factory only needs read-by-row-index, not the storage layout.
type PhysicalColumnReader interface {
	ValueType() segment.ValueType
	ReadObject(row uint32) any
	ReadLong(row uint32) (int64, bool)
	ReadDouble(row uint32) (float64, bool)
	ReadFloat(row uint32) (float32, bool)
}

// Factory implements segment.ColumnSelectorFactory. It resolves a name
// against a virtual column registry first, then against the segment's
// physical columns (via the cache), then falls back to a null selector.
type Factory struct {
	offset         segment.Offset
	cache          *columncache.Cache
	virtualColumns segment.VirtualColumns
	readers        map[string]PhysicalColumnReader
	resolving      map[string]bool // cycle guard while resolving virtual columns
	nullPolicy     segment.NullPolicy
}

// OpenReaders opens each named physical column through cache, once per
// name, and returns a PhysicalColumnReader for every one whose opened
// BaseColumn implements the reader contract itself. A name missing from
// the segment, or whose BaseColumn does not implement PhysicalColumnReader,
// is silently omitted: resolution falls through to a null selector, same
// as a column that was never listed.
func OpenReaders(cache *columncache.Cache, names []string) (map[string]PhysicalColumnReader, error) {
	readers := make(map[string]PhysicalColumnReader, len(names))
	for _, name := range names {
		col, err := cache.Get(name)
		if err != nil {
			return nil, err
		}
		if col == nil {
			continue
		}
		if r, ok := col.(PhysicalColumnReader); ok {
			readers[name] = r
		}
	}
	return readers, nil
}

// New builds a Factory bound to offset, reading physical columns through
// cache and resolving derived columns against virtualColumns, with
// null-handling under NullPolicySQLCompatible.
func New(offset segment.Offset, cache *columncache.Cache, virtualColumns segment.VirtualColumns, readers map[string]PhysicalColumnReader) *Factory {
	return NewWithNullPolicy(offset, cache, virtualColumns, readers, segment.NullPolicySQLCompatible)
}

// NewWithNullPolicy builds a Factory the way New does, with an explicit
// NullPolicy governing how a name that resolves to neither a virtual nor a
// physical column is folded.
func NewWithNullPolicy(offset segment.Offset, cache *columncache.Cache, virtualColumns segment.VirtualColumns, readers map[string]PhysicalColumnReader, nullPolicy segment.NullPolicy) *Factory {
	return &Factory{
		offset:         offset,
		cache:          cache,
		virtualColumns: virtualColumns,
		readers:        readers,
		resolving:      make(map[string]bool),
		nullPolicy:     nullPolicy,
	}
}

func (f *Factory) ColumnCapabilities(name string) *segment.ColumnCapabilities {
	if vc, ok := f.virtualColumns.Get(name); ok {
		return vc.Capabilities(inspectorOf(f))
	}
	if r, ok := f.readers[name]; ok {
		return &segment.ColumnCapabilities{Type: r.ValueType(), HasMultipleValues: segment.No}
	}
	return nil
}

// resolvePhysical returns name's reader, opening it through the cache on
// first use if it was not already preloaded into f.readers. The opened
// reader is memoized back into f.readers so a later lookup for the same
// name is a map hit, not a second cache.Get.
func (f *Factory) resolvePhysical(name string) (PhysicalColumnReader, bool) {
	if r, ok := f.readers[name]; ok {
		return r, true
	}
	if f.cache == nil {
		return nil, false
	}
	col, err := f.cache.Get(name)
	if err != nil || col == nil {
		return nil, false
	}
	r, ok := col.(PhysicalColumnReader)
	if !ok {
		return nil, false
	}
	f.readers[name] = r
	return r, true
}

// enterResolving marks name as being resolved through a virtual column's
// MakeScalarSelector, panicking with InvariantViolation if name is already
// being resolved higher up the call stack. A virtual column's expression can
// reference another virtual column by name through the same factory, and
// internal/virtualcol validates the reference graph up front, but this guard
// catches a cycle that slips past that validation (or a future caller that
// builds a Factory directly) before it recurses forever.
func (f *Factory) enterResolving(name string) {
	if f.resolving[name] {
		errorsx.InvariantViolation("virtual column %q resolves cyclically through itself", name)
	}
	f.resolving[name] = true
}

func (f *Factory) exitResolving(name string) {
	delete(f.resolving, name)
}

func (f *Factory) MakeFloatSelector(name string) segment.FloatColumnSelector {
	if vc, ok := f.virtualColumns.Get(name); ok {
		f.enterResolving(name)
		defer f.exitResolving(name)
		if s, ok := vc.MakeScalarSelector(f, f.offset).(segment.FloatColumnSelector); ok {
			return s
		}
	}
	if r, ok := f.resolvePhysical(name); ok {
		return &floatReaderSelector{offset: f.offset, reader: r}
	}
	return missingFloatSelector{legacy: f.nullPolicy == segment.NullPolicyLegacy}
}

func (f *Factory) MakeDoubleSelector(name string) segment.DoubleColumnSelector {
	if vc, ok := f.virtualColumns.Get(name); ok {
		f.enterResolving(name)
		defer f.exitResolving(name)
		if s, ok := vc.MakeScalarSelector(f, f.offset).(segment.DoubleColumnSelector); ok {
			return s
		}
	}
	if r, ok := f.resolvePhysical(name); ok {
		return &doubleReaderSelector{offset: f.offset, reader: r}
	}
	return missingDoubleSelector{legacy: f.nullPolicy == segment.NullPolicyLegacy}
}

func (f *Factory) MakeLongSelector(name string) segment.LongColumnSelector {
	if vc, ok := f.virtualColumns.Get(name); ok {
		f.enterResolving(name)
		defer f.exitResolving(name)
		if s, ok := vc.MakeScalarSelector(f, f.offset).(segment.LongColumnSelector); ok {
			return s
		}
	}
	if r, ok := f.resolvePhysical(name); ok {
		return &longReaderSelector{offset: f.offset, reader: r}
	}
	return missingLongSelector{legacy: f.nullPolicy == segment.NullPolicyLegacy}
}

func (f *Factory) MakeObjectSelector(name string) segment.ObjectColumnSelector {
	if vc, ok := f.virtualColumns.Get(name); ok {
		f.enterResolving(name)
		defer f.exitResolving(name)
		if s, ok := vc.MakeScalarSelector(f, f.offset).(segment.ObjectColumnSelector); ok {
			return s
		}
	}
	if r, ok := f.resolvePhysical(name); ok {
		return &objectReaderSelector{offset: f.offset, reader: r}
	}
	return nullObjectSelector{}
}

func (f *Factory) MakeDimensionSelector(name string) segment.DimensionSelector {
	if vc, ok := f.virtualColumns.Get(name); ok {
		f.enterResolving(name)
		defer f.exitResolving(name)
		if s, ok := vc.MakeScalarSelector(f, f.offset).(segment.DimensionSelector); ok {
			return s
		}
	}
	if r, ok := f.resolvePhysical(name); ok {
		return &objectReaderSelector{offset: f.offset, reader: r}
	}
	return missingDimensionSelector{legacy: f.nullPolicy == segment.NullPolicyLegacy}
}

// --- physical readers bound to the factory's offset ---

type floatReaderSelector struct {
	offset segment.Offset
	reader PhysicalColumnReader
}

func (s *floatReaderSelector) GetFloat() float32 {
	v, _ := s.reader.ReadFloat(s.offset.Current())
	return v
}
func (s *floatReaderSelector) IsNull() bool {
	_, ok := s.reader.ReadFloat(s.offset.Current())
	return !ok
}

type doubleReaderSelector struct {
	offset segment.Offset
	reader PhysicalColumnReader
}

func (s *doubleReaderSelector) GetDouble() float64 {
	v, _ := s.reader.ReadDouble(s.offset.Current())
	return v
}
func (s *doubleReaderSelector) IsNull() bool {
	_, ok := s.reader.ReadDouble(s.offset.Current())
	return !ok
}

type longReaderSelector struct {
	offset segment.Offset
	reader PhysicalColumnReader
}

func (s *longReaderSelector) GetLong() int64 {
	v, _ := s.reader.ReadLong(s.offset.Current())
	return v
}
func (s *longReaderSelector) IsNull() bool {
	_, ok := s.reader.ReadLong(s.offset.Current())
	return !ok
}

type objectReaderSelector struct {
	offset segment.Offset
	reader PhysicalColumnReader
}

func (s *objectReaderSelector) GetObject() any {
	return s.reader.ReadObject(s.offset.Current())
}
func (s *objectReaderSelector) IsNull() bool {
	return s.reader.ReadObject(s.offset.Current()) == nil
}

// --- selectors returned when a name resolves nowhere ---
//
// Under NullPolicySQLCompatible (legacy == false) these report a
// distinguishable null: IsNull() true, value the type's zero. Under
// NullPolicyLegacy they instead fold straight to the type's zero value with
// IsNull() false, matching the source's pre-SQL-compatibility behavior for a
// missing column.

type missingFloatSelector struct{ legacy bool }

func (s missingFloatSelector) GetFloat() float32 { return 0 }
func (s missingFloatSelector) IsNull() bool      { return !s.legacy }

type missingDoubleSelector struct{ legacy bool }

func (s missingDoubleSelector) GetDouble() float64 { return 0 }
func (s missingDoubleSelector) IsNull() bool       { return !s.legacy }

type missingLongSelector struct{ legacy bool }

func (s missingLongSelector) GetLong() int64 { return 0 }
func (s missingLongSelector) IsNull() bool   { return !s.legacy }

type missingDimensionSelector struct{ legacy bool }

func (s missingDimensionSelector) GetObject() any {
	if s.legacy {
		return ""
	}
	return nil
}
func (s missingDimensionSelector) IsNull() bool { return !s.legacy }

type nullObjectSelector struct{}

func (nullObjectSelector) GetObject() any { return nil }
func (nullObjectSelector) IsNull() bool   { return true }

// inspector adapts a Factory into a segment.ColumnInspector for capability
// queries virtual columns issue about their inputs.
type inspector struct{ f *Factory }

func inspectorOf(f *Factory) segment.ColumnInspector { return inspector{f: f} }

func (i inspector) ColumnCapabilities(name string) *segment.ColumnCapabilities {
	return i.f.ColumnCapabilities(name)
}

func (i inspector) RowSignature() segment.RowSignature {
	cols := make([]segment.ColumnSignature, 0, len(i.f.readers))
	for name, r := range i.f.readers {
		cols = append(cols, segment.ColumnSignature{Name: name, Type: r.ValueType(), TypeKnown: true})
	}
	return segment.NewRowSignature(cols)
}
