// Package metrics provides the QueryMetrics sink the cursor holder reports
// filter-bundle construction and row-count side effects to.
package metrics

import (
	"sort"
	"sync"

	"github.com/arkilian/scanengine/pkg/segment"
)

// Sink implements segment.QueryMetrics, accumulating counters a caller can
// inspect after a scan completes. Recording never affects emitted rows
// a run with a nil sink and one with a Sink
// attached emit identical rows.
type Sink struct {
	mu sync.Mutex

	vectorized                bool
	vectorizedSet              bool
	segmentRows                int64
	bitmapConstructionTimeNs   int64
	preFilteredRows            int64
	filterBundleInfos          []string
}

// NewSink creates an empty metrics sink.
func NewSink() *Sink {
	return &Sink{}
}

func (s *Sink) Vectorized(vectorized bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectorized = vectorized
	s.vectorizedSet = true
}

func (s *Sink) ReportSegmentRows(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.segmentRows += int64(n)
}

func (s *Sink) ReportBitmapConstructionTime(ns int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bitmapConstructionTimeNs += ns
}

func (s *Sink) ReportPreFilteredRows(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preFilteredRows += int64(n)
}

func (s *Sink) FilterBundleInfo(info string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filterBundleInfos = append(s.filterBundleInfos, info)
}

// Snapshot is a point-in-time copy of the sink's counters, safe to read
// without holding the sink's lock.
type Snapshot struct {
	Vectorized              bool
	VectorizedReported      bool
	SegmentRows             int64
	BitmapConstructionTime  int64
	PreFilteredRows         int64
	FilterBundleInfos       []string
}

// Snapshot returns a copy of the current counters.
func (s *Sink) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	infos := make([]string, len(s.filterBundleInfos))
	copy(infos, s.filterBundleInfos)
	return Snapshot{
		Vectorized:             s.vectorized,
		VectorizedReported:     s.vectorizedSet,
		SegmentRows:            s.segmentRows,
		BitmapConstructionTime: s.bitmapConstructionTimeNs,
		PreFilteredRows:        s.preFilteredRows,
		FilterBundleInfos:      infos,
	}
}

var _ segment.QueryMetrics = (*Sink)(nil)

// PredicateFrequency tracks how often a column is referenced by a filter
// across many scans, for callers that want to drive automated index
// creation decisions from observed query shape rather than per-scan counters.
type PredicateFrequency struct {
	mu   sync.RWMutex
	freq map[string]int64
}

// NewPredicateFrequency creates an empty frequency tracker.
func NewPredicateFrequency() *PredicateFrequency {
	return &PredicateFrequency{freq: make(map[string]int64)}
}

// Record increments the count for column.
func (p *PredicateFrequency) Record(column string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.freq[column]++
}

// ColumnCount pairs a column name with its observed frequency.
type ColumnCount struct {
	Column string
	Count  int64
}

// Top returns the n most frequently referenced columns, descending.
func (p *PredicateFrequency) Top(n int) []ColumnCount {
	p.mu.RLock()
	defer p.mu.RUnlock()

	counts := make([]ColumnCount, 0, len(p.freq))
	for col, c := range p.freq {
		counts = append(counts, ColumnCount{Column: col, Count: c})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	if n > len(counts) {
		n = len(counts)
	}
	return counts[:n]
}
