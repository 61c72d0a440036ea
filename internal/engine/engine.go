// Package engine wires the cursor holder into a single call a caller (the
// scanctl binary, or a test) can use without touching columncache, selector,
// or rowoffset directly: build a holder, pick scalar or vector iteration,
// drain it into plain rows, and close it on every exit path.
package engine

import (
	"github.com/arkilian/scanengine/internal/cursor"
	"github.com/arkilian/scanengine/internal/rowoffset"
	"github.com/arkilian/scanengine/pkg/segment"
)

// Row is one scanned record, keyed by column name plus "__time".
type Row map[string]any

// Scan runs make_cursor_holder -> as_cursor (or as_vector_cursor, if
// vectorize is requested and the holder reports CanVectorize) over seg
// under spec, draining every matching row before returning. cancel may be
// nil; a non-nil *rowoffset.Canceled lets a caller interrupt a long scan
// from another goroutine.
func Scan(seg segment.Segment, spec segment.CursorBuildSpec, vectorize bool, cancel *rowoffset.Canceled) ([]Row, bool, error) {
	holder, err := cursor.New(seg, spec, timestampReaderOf(seg), cancel)
	if err != nil {
		return nil, false, err
	}
	defer holder.Close()

	columns := append(append([]string{}, seg.AvailableDimensions()...), seg.AvailableMetrics()...)
	for _, name := range spec.VirtualColumns.Names() {
		columns = append(columns, name)
	}

	if vectorize && holder.CanVectorize() {
		rows, err := scanVector(holder, columns)
		return rows, true, err
	}
	rows, err := scanScalar(holder, columns)
	return rows, false, err
}

func scanScalar(holder *cursor.Holder, columns []string) ([]Row, error) {
	c, err := holder.AsCursor()
	if err != nil {
		return nil, err
	}

	var rows []Row
	for !c.IsDone() {
		row := Row{"__time": c.CurrentTimestamp()}
		factory := c.ColumnSelectorFactory()
		for _, name := range columns {
			row[name] = factory.MakeObjectSelector(name).GetObject()
		}
		rows = append(rows, row)
		if err := c.Advance(); err != nil {
			return rows, err
		}
	}
	return rows, nil
}

// scanVector drains the vector cursor window by window. The vector selector
// factory contract (segment.VectorColumnSelectorFactory) has no timestamp
// vector of its own, since __time is a cursor-level concept, not a column,
// so vector rows carry only the requested columns, unlike scanScalar's rows.
func scanVector(holder *cursor.Holder, columns []string) ([]Row, error) {
	vc, err := holder.AsVectorCursor()
	if err != nil {
		return nil, err
	}

	var rows []Row
	for !vc.IsDone() {
		factory := vc.ColumnSelectorFactory()
		size := vc.CurrentVectorSize()
		objectVectors := make(map[string][]any, len(columns))
		for _, name := range columns {
			objectVectors[name] = factory.MakeObjectVectorSelector(name).ObjectVector()
		}
		for i := 0; i < size; i++ {
			row := make(Row, len(columns))
			for _, name := range columns {
				row[name] = objectVectors[name][i]
			}
			rows = append(rows, row)
		}
		if err := vc.Advance(); err != nil {
			return rows, err
		}
	}
	return rows, nil
}

func timestampReaderOf(seg segment.Segment) cursor.TimestampReader {
	if src, ok := seg.(interface{ Timestamps() func(row uint32) int64 }); ok {
		return src.Timestamps()
	}
	col, ok := seg.Column(segment.TimeColumn)
	if !ok {
		return func(uint32) int64 { return 0 }
	}
	base, err := col.Open()
	if err != nil {
		return func(uint32) int64 { return 0 }
	}
	reader, ok := base.(interface{ ReadLong(row uint32) (int64, bool) })
	if !ok {
		return func(uint32) int64 { return 0 }
	}
	return func(row uint32) int64 {
		v, _ := reader.ReadLong(row)
		return v
	}
}
