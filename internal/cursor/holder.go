package cursor

import (
	"github.com/arkilian/scanengine/internal/columncache"
	"github.com/arkilian/scanengine/internal/errorsx"
	"github.com/arkilian/scanengine/internal/filterbundle"
	"github.com/arkilian/scanengine/internal/rowoffset"
	"github.com/arkilian/scanengine/internal/selector"
	"github.com/arkilian/scanengine/internal/vectorcursor"
	"github.com/arkilian/scanengine/internal/virtualcol"
	"github.com/arkilian/scanengine/pkg/segment"
)

type holderState int

const (
	stateReady holderState = iota
	stateClosed
)

// Holder is the columnar cursor holder: it owns the shared
// column cache, the closer, and the resolved resources (filter bundle,
// timestamp bounds), computed once and reused across AsCursor and
// AsVectorCursor calls.
type Holder struct {
	seg            segment.Segment
	spec           segment.CursorBuildSpec
	descending     bool
	cache          *columncache.Cache
	closer         *columncache.Closer
	readers        map[string]selector.PhysicalColumnReader
	timestamps     TimestampReader
	resources      Resources
	cancel         *rowoffset.Canceled

	state holderState
}

// New builds a Holder in the READY state, running BuildResources exactly
// once. Every physical column the segment declares (dimensions and metrics)
// is opened through the holder's own cache, so it is registered with the
// holder's own closer and released on Close regardless of which columns the
// filter/virtual columns/result set end up touching. timestamps reads the
// row's __time value.
func New(seg segment.Segment, spec segment.CursorBuildSpec, timestamps TimestampReader, cancel *rowoffset.Canceled) (*Holder, error) {
	for _, ob := range spec.PreferredOrdering {
		if ob.Column != segment.TimeColumn {
			return nil, errorsx.ConfigErrorf(errorsx.CodeUnsupportedOrdering, "preferred ordering on %q is not supported; only __time is honored", ob.Column)
		}
	}

	closer := columncache.NewCloser()
	cache := columncache.New(seg, closer)

	names := append(append([]string{}, seg.AvailableDimensions()...), seg.AvailableMetrics()...)
	readers, err := selector.OpenReaders(cache, names)
	if err != nil {
		closer.Close()
		return nil, err
	}

	if err := validateVirtualColumnNames(spec.VirtualColumns, readers); err != nil {
		closer.Close()
		return nil, err
	}
	if err := virtualcol.ValidateNoCycles(spec.VirtualColumns); err != nil {
		closer.Close()
		return nil, err
	}

	descending := false
	for _, ob := range spec.PreferredOrdering {
		if ob.Column == segment.TimeColumn && ob.Direction == segment.Descending {
			descending = true
		}
	}

	biSelector := filterbundle.SegmentBitmapIndexSelector{Seg: seg}
	resources := BuildResources(spec.Filter, biSelector, filterbundle.SimpleResultFactory{}, seg.NumRows(), timestamps, spec.QueryMetrics, spec.PredicateFrequency)

	if spec.QueryMetrics != nil {
		spec.QueryMetrics.ReportSegmentRows(seg.NumRows())
	}

	return &Holder{
		seg:        seg,
		spec:       spec,
		descending: descending,
		cache:      cache,
		closer:     closer,
		readers:    readers,
		timestamps: timestamps,
		resources:  resources,
		cancel:     cancel,
		state:      stateReady,
	}, nil
}

func validateVirtualColumnNames(vcs segment.VirtualColumns, readers map[string]selector.PhysicalColumnReader) error {
	for _, name := range vcs.Names() {
		if _, physical := readers[name]; physical {
			errorsx.InvariantViolation("virtual column %q shadows a physical column", name)
		}
	}
	return nil
}

// CanVectorize reports whether AsVectorCursor is available: no descending
// ordering, every virtual column and aggregator reports can_vectorize, and
// the filter (if any) exposes a vector matcher.
func (h *Holder) CanVectorize() bool {
	if h.descending {
		return false
	}
	inspector := vectorcursor.NewInspector(h.readers)
	for _, name := range h.spec.VirtualColumns.Names() {
		vc, _ := h.spec.VirtualColumns.Get(name)
		mode := h.spec.QueryContext.VectorizeVirtualColumns
		if !mode.ShouldVectorize(vc.CanVectorize(inspector)) {
			return false
		}
	}
	for _, agg := range h.spec.Aggregators {
		if !agg.CanVectorize(inspector) {
			return false
		}
	}
	if h.spec.Filter != nil && !h.resources.HasIndex {
		if h.resources.MatcherBundle() == nil || !h.resources.MatcherBundle().CanVectorize() {
			return false
		}
	}
	return true
}

// AsCursor returns a fresh scalar cursor. Multiple calls are allowed; each
// yields an independent cursor sharing this holder's resources.
func (h *Holder) AsCursor() (*ScalarCursor, error) {
	if h.state == stateClosed {
		return nil, errorsx.ExecutionErrorf(errorsx.CodeInterrupted, "cursor holder is closed")
	}
	vectorSize := h.spec.QueryContext.VectorSize
	_ = vectorSize // scalar cursors don't batch; vector_size only matters to AsVectorCursor
	return NewScalarCursor(h.resources, h.spec.Filter != nil, h.seg.NumRows(), effectiveInterval(h.spec, h.seg), h.descending, h.timestamps, h.cache, h.spec.VirtualColumns, h.readers, h.cancel, isDebug(h.spec), h.spec.QueryContext.NullPolicy)
}

// AsVectorCursor returns a fresh vector cursor. It fails with
// ExecutionError::NotVectorizable if CanVectorize() is false.
func (h *Holder) AsVectorCursor() (*vectorcursor.VectorCursor, error) {
	if h.state == stateClosed {
		return nil, errorsx.ExecutionErrorf(errorsx.CodeInterrupted, "cursor holder is closed")
	}
	if !h.CanVectorize() {
		return nil, errorsx.ExecutionErrorf(errorsx.CodeNotVectorizable, "cursor holder cannot be vectorized for this spec")
	}
	vectorSize := h.spec.QueryContext.VectorSize
	if vectorSize <= 0 {
		vectorSize = 512
	}
	return vectorcursor.New(h.resources.FilterBundle, h.seg.NumRows(), effectiveInterval(h.spec, h.seg), vectorcursor.TimestampReader(h.timestamps), h.cache, h.spec.VirtualColumns, h.readers, vectorSize, h.cancel)
}

// Ordering reports the effective ordering this holder will honor.
func (h *Holder) Ordering() segment.OrderByColumn {
	dir := segment.Ascending
	if h.descending {
		dir = segment.Descending
	}
	return segment.OrderByColumn{Column: segment.TimeColumn, Direction: dir}
}

// Close releases every registered resource exactly once. Repeated calls
// are a no-op.
func (h *Holder) Close() error {
	h.state = stateClosed
	return h.closer.Close()
}

func effectiveInterval(spec segment.CursorBuildSpec, seg segment.Segment) segment.Interval {
	iv := spec.Interval
	if iv == (segment.Interval{}) {
		return segment.Eternity
	}
	return iv
}

func isDebug(spec segment.CursorBuildSpec) bool {
	return spec.QueryContext.Debug
}

// MatcherBundle exposes the resolved matcher bundle, if any, for gating
// decisions made outside the construction path.
func (r Resources) MatcherBundle() segment.MatcherBundle {
	return r.FilterBundle.MatcherBundle
}
