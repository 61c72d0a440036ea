package filterbundle

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/arkilian/scanengine/pkg/segment"
)

// SimpleResultFactory wraps raw bitmaps with no additional bookkeeping
// beyond the debug string the caller supplies.
type SimpleResultFactory struct{}

func (SimpleResultFactory) Wrap(bitmap *roaring.Bitmap, debugInfo string) *segment.BitmapHolder {
	return &segment.BitmapHolder{Bitmap: bitmap, DebugInfo: debugInfo}
}

// SegmentBitmapIndexSelector adapts a segment.Segment into the
// BitmapIndexSelector contract a Filter drives to look up indexes.
type SegmentBitmapIndexSelector struct {
	Seg segment.Segment
}

func (s SegmentBitmapIndexSelector) BitmapFactory() segment.BitmapFactory {
	return s.Seg.BitmapFactory()
}

func (s SegmentBitmapIndexSelector) IndexSupplier(column string) (segment.BitmapIndexSupplier, bool) {
	holder, ok := s.Seg.Column(column)
	if !ok {
		return nil, false
	}
	return holder.IndexSupplier()
}

func (s SegmentBitmapIndexSelector) NumRows() int {
	return s.Seg.NumRows()
}
