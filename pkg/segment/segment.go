package segment

import (
	"io"

	"github.com/RoaringBitmap/roaring/v2"
)

// TimeColumn is the name of the always-present, monotone non-decreasing,
// single-valued numeric time column every segment carries.
const TimeColumn = "__time"

// BaseColumn is a handle to an opened physical column. Closing it releases
// whatever resources backed the open (file handles, decompression buffers).
type BaseColumn interface {
	io.Closer
}

// BitmapIndexSupplier produces a bitmap of rows matching a value, for
// columns that carry a bitmap index.
type BitmapIndexSupplier interface {
	// ForValue returns the bitmap of rows equal to value, or nil if the
	// value is not present in the column's dictionary.
	ForValue(value string) *roaring.Bitmap
}

// ColumnHolder is a named column's entry point: its capabilities, an opener,
// and an optional bitmap-index supplier.
type ColumnHolder interface {
	Capabilities() *ColumnCapabilities
	Open() (BaseColumn, error)
	IndexSupplier() (BitmapIndexSupplier, bool)
}

// Segment is an immutable, row-addressable columnar segment. Rows are
// addressed by the half-open integer range [0, NumRows()).
type Segment interface {
	Interval() Interval
	NumRows() int
	AvailableDimensions() []string
	AvailableMetrics() []string
	Column(name string) (ColumnHolder, bool)
	BitmapFactory() BitmapFactory
	// Metadata returns segment-level metadata, or an error if the segment
	// cannot supply it.
	Metadata() (any, error)
}

// BitmapFactory constructs and combines bitmaps for a segment's row space.
type BitmapFactory interface {
	Empty() *roaring.Bitmap
	Complement(b *roaring.Bitmap, numRows int) *roaring.Bitmap
	Union(bitmaps ...*roaring.Bitmap) *roaring.Bitmap
	Intersection(bitmaps ...*roaring.Bitmap) *roaring.Bitmap
}
