package vectorcursor

import (
	"github.com/arkilian/scanengine/internal/selector"
	"github.com/arkilian/scanengine/pkg/segment"
)

// readerInspector implements segment.ColumnInspector over a fixed set of
// physical column readers, for vectorization gating queries that only
// need type/capability information, not actual row data.
type readerInspector struct {
	readers map[string]selector.PhysicalColumnReader
}

// NewInspector builds a ColumnInspector over readers.
func NewInspector(readers map[string]selector.PhysicalColumnReader) segment.ColumnInspector {
	return readerInspector{readers: readers}
}

func (i readerInspector) ColumnCapabilities(name string) *segment.ColumnCapabilities {
	r, ok := i.readers[name]
	if !ok {
		return nil
	}
	return &segment.ColumnCapabilities{Type: r.ValueType(), HasMultipleValues: segment.No}
}

func (i readerInspector) RowSignature() segment.RowSignature {
	cols := make([]segment.ColumnSignature, 0, len(i.readers))
	for name, r := range i.readers {
		cols = append(cols, segment.ColumnSignature{Name: name, Type: r.ValueType(), TypeKnown: true})
	}
	return segment.NewRowSignature(cols)
}
