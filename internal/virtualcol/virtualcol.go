// Package virtualcol implements derived columns computed
// lazily per row from other columns visible through the same selector
// factory, with cycle detection over cross-references between virtual
// columns.
package virtualcol

import (
	"github.com/arkilian/scanengine/internal/errorsx"
	"github.com/arkilian/scanengine/pkg/segment"
)

// DependencySource is implemented by virtual columns that reference other
// columns by name, so the registry can walk the reference graph and detect
// cycles before any row is read.
type DependencySource interface {
	Dependencies() []string
}

// ValidateNoCycles walks every declared virtual column's dependency edges
// and fails with errorsx.CodeCyclicVirtualColumn if any cycle exists,
// including a self-reference.
func ValidateNoCycles(vcs segment.VirtualColumns) error {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int)

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return errorsx.ConfigErrorf(errorsx.CodeCyclicVirtualColumn, "cycle detected among virtual columns: %v", append(path, name))
		}
		vc, ok := vcs.Get(name)
		if !ok {
			return nil // not a virtual column; physical columns can't cycle
		}
		state[name] = visiting
		if deps, ok := vc.(DependencySource); ok {
			for _, dep := range deps.Dependencies() {
				if err := visit(dep, append(path, name)); err != nil {
					return err
				}
			}
		}
		state[name] = done
		return nil
	}

	for _, name := range vcs.Names() {
		if err := visit(name, nil); err != nil {
			return err
		}
	}
	return nil
}

// FuncVirtualColumn is a virtual column evaluated by a plain Go closure
// over a row's already-resolved inputs, rather than a parsed expression
// language. Expression parsing belongs to the query layer this core
// treats as an external collaborator.
type FuncVirtualColumn struct {
	name       string
	outputType segment.ValueType
	deps       []string
	eval       func(factory segment.ColumnSelectorFactory, row uint32) any
	vectorizable bool
}

// NewFuncVirtualColumn builds a FuncVirtualColumn. deps names the physical
// or virtual columns eval reads, used only for cycle detection.
func NewFuncVirtualColumn(name string, outputType segment.ValueType, deps []string, eval func(factory segment.ColumnSelectorFactory, row uint32) any) *FuncVirtualColumn {
	return &FuncVirtualColumn{name: name, outputType: outputType, deps: deps, eval: eval}
}

// WithVectorizable marks the column as reporting CanVectorize() == true.
// Most closures over scalar selectors cannot vectorize; only mark this
// when MakeVectorSelector is actually implemented meaningfully.
func (vc *FuncVirtualColumn) WithVectorizable(v bool) *FuncVirtualColumn {
	vc.vectorizable = v
	return vc
}

func (vc *FuncVirtualColumn) Name() string          { return vc.name }
func (vc *FuncVirtualColumn) Dependencies() []string { return vc.deps }

func (vc *FuncVirtualColumn) Capabilities(inspector segment.ColumnInspector) *segment.ColumnCapabilities {
	return &segment.ColumnCapabilities{Type: vc.outputType, HasMultipleValues: segment.No}
}

func (vc *FuncVirtualColumn) CanVectorize(inspector segment.ColumnInspector) bool {
	return vc.vectorizable
}

// MakeScalarSelector returns a selector of the appropriate arity for
// outputType, lazily invoking eval per row. Values are never materialized
// ahead of time.
func (vc *FuncVirtualColumn) MakeScalarSelector(factory segment.ColumnSelectorFactory, offset segment.Offset) any {
	switch vc.outputType {
	case segment.TypeLong:
		return &funcLongSelector{vc: vc, factory: factory, offset: offset}
	case segment.TypeFloat:
		return &funcFloatSelector{vc: vc, factory: factory, offset: offset}
	case segment.TypeDouble:
		return &funcDoubleSelector{vc: vc, factory: factory, offset: offset}
	default:
		return &funcObjectSelector{vc: vc, factory: factory, offset: offset}
	}
}

// MakeVectorSelector has no default implementation: vectorized virtual
// columns require eval to operate over a whole window, which a per-row
// closure cannot provide. Callers that need vectorization must supply a
// column whose CanVectorize() (and hence gating) is false, or implement
// segment.VirtualColumn directly with a real vector selector.
func (vc *FuncVirtualColumn) MakeVectorSelector(factory segment.VectorColumnSelectorFactory) any {
	return nil
}

type funcLongSelector struct {
	vc      *FuncVirtualColumn
	factory segment.ColumnSelectorFactory
	offset  segment.Offset
}

func (s *funcLongSelector) GetLong() int64 {
	v := s.vc.eval(s.factory, s.offset.Current())
	if n, ok := v.(int64); ok {
		return n
	}
	return 0
}
func (s *funcLongSelector) IsNull() bool {
	return s.vc.eval(s.factory, s.offset.Current()) == nil
}

// GetObject lets a long-typed virtual column also serve callers that read
// through the generic object selector (e.g. an equality filter), rather
// than only through the typed long selector.
func (s *funcLongSelector) GetObject() any {
	return s.vc.eval(s.factory, s.offset.Current())
}

type funcFloatSelector struct {
	vc      *FuncVirtualColumn
	factory segment.ColumnSelectorFactory
	offset  segment.Offset
}

func (s *funcFloatSelector) GetFloat() float32 {
	v := s.vc.eval(s.factory, s.offset.Current())
	if n, ok := v.(float32); ok {
		return n
	}
	return 0
}
func (s *funcFloatSelector) IsNull() bool {
	return s.vc.eval(s.factory, s.offset.Current()) == nil
}
func (s *funcFloatSelector) GetObject() any {
	return s.vc.eval(s.factory, s.offset.Current())
}

type funcDoubleSelector struct {
	vc      *FuncVirtualColumn
	factory segment.ColumnSelectorFactory
	offset  segment.Offset
}

func (s *funcDoubleSelector) GetDouble() float64 {
	v := s.vc.eval(s.factory, s.offset.Current())
	if n, ok := v.(float64); ok {
		return n
	}
	return 0
}
func (s *funcDoubleSelector) IsNull() bool {
	return s.vc.eval(s.factory, s.offset.Current()) == nil
}
func (s *funcDoubleSelector) GetObject() any {
	return s.vc.eval(s.factory, s.offset.Current())
}

type funcObjectSelector struct {
	vc      *FuncVirtualColumn
	factory segment.ColumnSelectorFactory
	offset  segment.Offset
}

func (s *funcObjectSelector) GetObject() any {
	return s.vc.eval(s.factory, s.offset.Current())
}
func (s *funcObjectSelector) IsNull() bool {
	return s.vc.eval(s.factory, s.offset.Current()) == nil
}
