package columncache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkilian/scanengine/pkg/segment"
)

type fakeColumn struct {
	closeErr error
	closed   bool
}

func (f *fakeColumn) Close() error {
	f.closed = true
	return f.closeErr
}

type fakeHolder struct {
	col     *fakeColumn
	openErr error
	opens   int
}

func (h *fakeHolder) Capabilities() *segment.ColumnCapabilities { return nil }
func (h *fakeHolder) Open() (segment.BaseColumn, error) {
	h.opens++
	if h.openErr != nil {
		return nil, h.openErr
	}
	return h.col, nil
}
func (h *fakeHolder) IndexSupplier() (segment.BitmapIndexSupplier, bool) { return nil, false }

type fakeSegment struct {
	columns map[string]*fakeHolder
}

func (s *fakeSegment) Interval() segment.Interval          { return segment.Eternity }
func (s *fakeSegment) NumRows() int                         { return 0 }
func (s *fakeSegment) AvailableDimensions() []string        { return nil }
func (s *fakeSegment) AvailableMetrics() []string            { return nil }
func (s *fakeSegment) BitmapFactory() segment.BitmapFactory  { return nil }
func (s *fakeSegment) Metadata() (any, error)                { return nil, nil }
func (s *fakeSegment) Column(name string) (segment.ColumnHolder, bool) {
	h, ok := s.columns[name]
	if !ok {
		return nil, false
	}
	return h, true
}

func TestCache_OpensOnce(t *testing.T) {
	h := &fakeHolder{col: &fakeColumn{}}
	seg := &fakeSegment{columns: map[string]*fakeHolder{"a": h}}
	closer := NewCloser()
	cache := New(seg, closer)

	_, err := cache.Get("a")
	require.NoError(t, err)
	_, err = cache.Get("a")
	require.NoError(t, err)

	assert.Equal(t, 1, h.opens)
}

func TestCache_MissingColumnReturnsNilNotError(t *testing.T) {
	seg := &fakeSegment{columns: map[string]*fakeHolder{}}
	cache := New(seg, NewCloser())

	col, err := cache.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, col)
}

func TestCache_FailedOpenLeavesNoPartialEntry(t *testing.T) {
	h := &fakeHolder{openErr: errors.New("boom")}
	seg := &fakeSegment{columns: map[string]*fakeHolder{"a": h}}
	cache := New(seg, NewCloser())

	_, err := cache.Get("a")
	require.Error(t, err)
	assert.NotContains(t, cache.opened, "a")
}

func TestCloser_CoalescesFirstErrorSuppressesRest(t *testing.T) {
	c1 := &fakeColumn{closeErr: errors.New("first")}
	c2 := &fakeColumn{closeErr: errors.New("second")}
	closer := NewCloser()
	closer.Register(c1)
	closer.Register(c2)

	// Resources are released in reverse registration order, so c2 is closed
	// first and its error is the one reported.
	err := closer.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "second")
	assert.True(t, c1.closed)
	assert.True(t, c2.closed)
}

func TestCloser_IdempotentClose(t *testing.T) {
	closer := NewCloser()
	closer.Register(&fakeColumn{})
	require.NoError(t, closer.Close())
	require.NoError(t, closer.Close())
}
