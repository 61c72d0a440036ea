// Package testsegment provides small, in-memory fixtures for exercising the
// cursor holder and the row-based adapter without a real storage format:
// a columnar Segment backed by plain Go slices, and a row-adapter fixture
// reproducing Druid's integer-record test segment, where each record's own
// value serves as both its __time (in whole hours) and its LONG column text.
package testsegment

import (
	"sort"
	"strconv"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/golang/snappy"
	"github.com/google/uuid"

	"github.com/arkilian/scanengine/internal/selector"
	"github.com/arkilian/scanengine/pkg/segment"
)

// LongColumn is a fixed-width, dictionary-free numeric column.
type LongColumn struct {
	id     string
	values []int64
	nulls  []bool
}

// NewLongColumn builds a LongColumn with no null rows.
func NewLongColumn(values []int64) *LongColumn {
	return &LongColumn{id: uuid.NewString(), values: values}
}

func (c *LongColumn) Close() error { return nil }

func (c *LongColumn) ValueType() segment.ValueType { return segment.TypeLong }

func (c *LongColumn) ReadObject(row uint32) any {
	v, ok := c.ReadLong(row)
	if !ok {
		return nil
	}
	return v
}

func (c *LongColumn) ReadLong(row uint32) (int64, bool) {
	if int(row) >= len(c.values) || (c.nulls != nil && c.nulls[row]) {
		return 0, false
	}
	return c.values[row], true
}

func (c *LongColumn) ReadDouble(row uint32) (float64, bool) {
	v, ok := c.ReadLong(row)
	return float64(v), ok
}

func (c *LongColumn) ReadFloat(row uint32) (float32, bool) {
	v, ok := c.ReadLong(row)
	return float32(v), ok
}

// StringColumn is a dictionary-encoded single-valued string column, with an
// optional bitmap index built eagerly over its distinct values.
type StringColumn struct {
	id     string
	values []string
	nulls  []bool
	index  map[string]*roaring.Bitmap
}

// NewStringColumn builds a StringColumn and its equality bitmap index.
func NewStringColumn(values []string) *StringColumn {
	c := &StringColumn{id: uuid.NewString(), values: values, index: make(map[string]*roaring.Bitmap)}
	for i, v := range values {
		bm, ok := c.index[v]
		if !ok {
			bm = roaring.New()
			c.index[v] = bm
		}
		bm.Add(uint32(i))
	}
	return c
}

func (c *StringColumn) Close() error { return nil }

func (c *StringColumn) ValueType() segment.ValueType { return segment.TypeString }

func (c *StringColumn) ReadObject(row uint32) any {
	if int(row) >= len(c.values) || (c.nulls != nil && c.nulls[row]) {
		return nil
	}
	return c.values[row]
}

func (c *StringColumn) ReadLong(row uint32) (int64, bool) {
	s, ok := c.stringAt(row)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}

func (c *StringColumn) ReadDouble(row uint32) (float64, bool) {
	s, ok := c.stringAt(row)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

func (c *StringColumn) ReadFloat(row uint32) (float32, bool) {
	f, ok := c.ReadDouble(row)
	return float32(f), ok
}

func (c *StringColumn) stringAt(row uint32) (string, bool) {
	if int(row) >= len(c.values) || (c.nulls != nil && c.nulls[row]) {
		return "", false
	}
	return c.values[row], true
}

// ForValue implements segment.BitmapIndexSupplier.
func (c *StringColumn) ForValue(value string) *roaring.Bitmap {
	bm, ok := c.index[value]
	if !ok {
		return nil
	}
	return bm
}

// DistinctValues returns the column's dictionary keys. A dictionary-encoded
// column already holds its full distinct-value set in memory as part of the
// encoding, so this costs nothing beyond the map walk.
func (c *StringColumn) DistinctValues() []string {
	values := make([]string, 0, len(c.index))
	for v := range c.index {
		values = append(values, v)
	}
	return values
}

// ComplexColumn is a single-valued column of opaque payloads (the complex
// type's stand-in: sketches, nested objects, anything that isn't a plain
// number or string) stored Snappy-compressed and decoded once per read.
// Real complex columns decompress a block at a time rather than a value at
// a time; this fixture decompresses per row, which is the simplest thing
// that satisfies PhysicalColumnReader without a block-boundary format to
// imitate.
type ComplexColumn struct {
	id      string
	values  [][]byte // snappy.Encode output, one per row; nil means null
	decoded func([]byte) any
}

// NewComplexColumn builds a ComplexColumn, Snappy-compressing each raw
// payload in raw. decoded turns a decompressed
// payload back into the value ReadObject should return.
func NewComplexColumn(raw [][]byte, decoded func([]byte) any) *ComplexColumn {
	values := make([][]byte, len(raw))
	for i, v := range raw {
		if v == nil {
			continue
		}
		values[i] = snappy.Encode(nil, v)
	}
	return &ComplexColumn{id: uuid.NewString(), values: values, decoded: decoded}
}

func (c *ComplexColumn) Close() error { return nil }

func (c *ComplexColumn) ValueType() segment.ValueType { return segment.TypeComplex }

func (c *ComplexColumn) ReadObject(row uint32) any {
	if int(row) >= len(c.values) || c.values[row] == nil {
		return nil
	}
	raw, err := snappy.Decode(nil, c.values[row])
	if err != nil {
		return nil
	}
	if c.decoded == nil {
		return raw
	}
	return c.decoded(raw)
}

// ReadLong, ReadDouble, ReadFloat are unsupported for complex values:
// a complex payload has no numeric coercion, matching converter.go's
// TypeComplex case in the row-based adapter.
func (c *ComplexColumn) ReadLong(row uint32) (int64, bool)     { return 0, false }
func (c *ComplexColumn) ReadDouble(row uint32) (float64, bool) { return 0, false }
func (c *ComplexColumn) ReadFloat(row uint32) (float32, bool)  { return 0, false }

// columnHolder adapts an already-built column into segment.ColumnHolder.
// Open always returns the same instance: these fixtures have no backing
// storage to open lazily, only a value already held in memory.
type columnHolder struct {
	capabilities *segment.ColumnCapabilities
	col          segment.BaseColumn
	indexer      segment.BitmapIndexSupplier
}

func (h columnHolder) Capabilities() *segment.ColumnCapabilities { return h.capabilities }
func (h columnHolder) Open() (segment.BaseColumn, error)          { return h.col, nil }
func (h columnHolder) IndexSupplier() (segment.BitmapIndexSupplier, bool) {
	if h.indexer == nil {
		return nil, false
	}
	return h.indexer, true
}

// Segment is a minimal in-memory, row-addressable columnar segment.
// __time must be supplied as its own LongColumn; AvailableDimensions and
// AvailableMetrics are assigned at construction by the caller, matching the
// way real segments separate the two by schema rather than column type.
type Segment struct {
	interval   segment.Interval
	numRows    int
	timeCol    *LongColumn
	dimensions []string
	metrics    []string
	columns    map[string]columnHolder
}

// Builder assembles a Segment column by column.
type Builder struct {
	seg *Segment
}

// NewBuilder starts a Segment spanning interval with len(time) rows, whose
// __time column is time.
func NewBuilder(interval segment.Interval, time []int64) *Builder {
	return &Builder{seg: &Segment{
		interval: interval,
		numRows:  len(time),
		timeCol:  NewLongColumn(time),
		columns:  make(map[string]columnHolder),
	}}
}

// WithLongMetric adds a numeric metric column.
func (b *Builder) WithLongMetric(name string, values []int64) *Builder {
	col := NewLongColumn(values)
	b.seg.columns[name] = columnHolder{
		capabilities: &segment.ColumnCapabilities{Type: segment.TypeLong, HasMultipleValues: segment.No},
		col:          col,
	}
	b.seg.metrics = append(b.seg.metrics, name)
	return b
}

// WithStringDimension adds a dictionary-encoded string dimension, indexed
// for equality lookups.
func (b *Builder) WithStringDimension(name string, values []string) *Builder {
	col := NewStringColumn(values)
	b.seg.columns[name] = columnHolder{
		capabilities: &segment.ColumnCapabilities{Type: segment.TypeString, HasMultipleValues: segment.No, HasBitmapIndex: true, DictionaryEncoded: true},
		col:          col,
		indexer:      col,
	}
	b.seg.dimensions = append(b.seg.dimensions, name)
	return b
}

// WithComplexMetric adds a Snappy-compressed opaque-payload column. decoded
// turns a decompressed payload back into the value reads should return; nil
// returns the raw decompressed bytes unchanged.
func (b *Builder) WithComplexMetric(name string, raw [][]byte, decoded func([]byte) any) *Builder {
	col := NewComplexColumn(raw, decoded)
	b.seg.columns[name] = columnHolder{
		capabilities: &segment.ColumnCapabilities{Type: segment.TypeComplex, HasMultipleValues: segment.No},
		col:          col,
	}
	b.seg.metrics = append(b.seg.metrics, name)
	return b
}

// Build returns the assembled Segment.
func (b *Builder) Build() *Segment {
	sort.Strings(b.seg.dimensions)
	sort.Strings(b.seg.metrics)
	return b.seg
}

func (s *Segment) Interval() segment.Interval   { return s.interval }
func (s *Segment) NumRows() int                 { return s.numRows }
func (s *Segment) AvailableDimensions() []string { return s.dimensions }
func (s *Segment) AvailableMetrics() []string    { return s.metrics }
func (s *Segment) BitmapFactory() segment.BitmapFactory { return roaringBitmapFactory{} }

func (s *Segment) Metadata() (any, error) { return nil, nil }

func (s *Segment) Column(name string) (segment.ColumnHolder, bool) {
	if name == segment.TimeColumn {
		return columnHolder{
			capabilities: &segment.ColumnCapabilities{Type: segment.TypeLong, HasMultipleValues: segment.No},
			col:          s.timeCol,
		}, true
	}
	h, ok := s.columns[name]
	return h, ok
}

// Timestamps returns a cursor.TimestampReader-shaped function reading the
// segment's own __time column directly, with no intervening selector.
func (s *Segment) Timestamps() func(row uint32) int64 {
	return func(row uint32) int64 {
		v, _ := s.timeCol.ReadLong(row)
		return v
	}
}

var _ selector.PhysicalColumnReader = (*LongColumn)(nil)
var _ selector.PhysicalColumnReader = (*StringColumn)(nil)
var _ selector.PhysicalColumnReader = (*ComplexColumn)(nil)
var _ segment.BitmapIndexSupplier = (*StringColumn)(nil)

// roaringBitmapFactory is the straightforward roaring-backed
// segment.BitmapFactory: no caching, no precomputed complements.
type roaringBitmapFactory struct{}

func (roaringBitmapFactory) Empty() *roaring.Bitmap { return roaring.New() }

func (roaringBitmapFactory) Complement(b *roaring.Bitmap, numRows int) *roaring.Bitmap {
	full := roaring.New()
	full.AddRange(0, uint64(numRows))
	return roaring.AndNot(full, b)
}

func (roaringBitmapFactory) Union(bitmaps ...*roaring.Bitmap) *roaring.Bitmap {
	return roaring.FastOr(bitmaps...)
}

func (roaringBitmapFactory) Intersection(bitmaps ...*roaring.Bitmap) *roaring.Bitmap {
	if len(bitmaps) == 0 {
		return roaring.New()
	}
	out := bitmaps[0].Clone()
	for _, b := range bitmaps[1:] {
		out.And(b)
	}
	return out
}
