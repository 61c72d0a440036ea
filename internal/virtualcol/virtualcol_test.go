package virtualcol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkilian/scanengine/internal/errorsx"
	"github.com/arkilian/scanengine/pkg/segment"
)

func TestValidateNoCycles_NoCycle(t *testing.T) {
	a := NewFuncVirtualColumn("a", segment.TypeLong, []string{"LONG"}, nil)
	b := NewFuncVirtualColumn("b", segment.TypeLong, []string{"a"}, nil)
	vcs := segment.NewVirtualColumns([]segment.VirtualColumn{a, b})
	require.NoError(t, ValidateNoCycles(vcs))
}

func TestValidateNoCycles_DirectCycle(t *testing.T) {
	a := NewFuncVirtualColumn("a", segment.TypeLong, []string{"b"}, nil)
	b := NewFuncVirtualColumn("b", segment.TypeLong, []string{"a"}, nil)
	vcs := segment.NewVirtualColumns([]segment.VirtualColumn{a, b})

	err := ValidateNoCycles(vcs)
	require.Error(t, err)
	assert.True(t, errorsx.Is(err, errorsx.CategoryConfig, errorsx.CodeCyclicVirtualColumn))
}

func TestValidateNoCycles_SelfReference(t *testing.T) {
	a := NewFuncVirtualColumn("a", segment.TypeLong, []string{"a"}, nil)
	vcs := segment.NewVirtualColumns([]segment.VirtualColumn{a})

	err := ValidateNoCycles(vcs)
	require.Error(t, err)
}

func TestFuncVirtualColumn_EvaluatesLazilyPerRow(t *testing.T) {
	calls := 0
	vc := NewFuncVirtualColumn("vc", segment.TypeLong, []string{"LONG"}, func(factory segment.ColumnSelectorFactory, row uint32) any {
		calls++
		return factory.MakeLongSelector("LONG").GetLong() + 1
	})

	sel := vc.MakeScalarSelector(stubFactory{}, stubOffset{current: 0}).(segment.LongColumnSelector)
	assert.Equal(t, 0, calls)
	assert.Equal(t, int64(2), sel.GetLong())
	assert.Equal(t, 1, calls)
}

type stubOffset struct{ current uint32 }

func (o stubOffset) Current() uint32       { return o.current }
func (o stubOffset) WithinBounds() bool    { return true }
func (o stubOffset) Advance()              {}
func (o stubOffset) Reset()                {}
func (o stubOffset) Clone() segment.Offset { return o }

type stubFactory struct{}

func (stubFactory) MakeFloatSelector(name string) segment.FloatColumnSelector { return nil }
func (stubFactory) MakeDoubleSelector(name string) segment.DoubleColumnSelector { return nil }
func (stubFactory) MakeLongSelector(name string) segment.LongColumnSelector {
	return stubLongSelector{}
}
func (stubFactory) MakeObjectSelector(name string) segment.ObjectColumnSelector { return nil }
func (stubFactory) MakeDimensionSelector(name string) segment.DimensionSelector { return nil }
func (stubFactory) ColumnCapabilities(name string) *segment.ColumnCapabilities  { return nil }

type stubLongSelector struct{}

func (stubLongSelector) GetLong() int64 { return 1 }
func (stubLongSelector) IsNull() bool   { return false }
