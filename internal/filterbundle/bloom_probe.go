package filterbundle

import (
	"github.com/arkilian/scanengine/internal/bloom"
	"github.com/arkilian/scanengine/pkg/segment"
)

// BloomProbe is a cheap existence check ahead of full matcher evaluation
// for equality-style predicates: a column-level bloom filter that can
// rule out a value without touching the column's selector at all. It
// never produces false negatives, so a probe miss is authoritative and a
// probe hit falls through to the real matcher.
type BloomProbe struct {
	filter *bloom.BloomFilter
}

// BuildBloomProbe populates a BloomProbe from every distinct value a
// physical column reader reports, for use as a pre-filter ahead of the
// column's real equality matcher.
func BuildBloomProbe(values []string) *BloomProbe {
	f := bloom.NewWithEstimates(len(values), 0.01)
	for _, v := range values {
		f.Add([]byte(v))
	}
	return &BloomProbe{filter: f}
}

// MightContain reports whether value could be present. false is
// authoritative; true requires confirmation from the real matcher.
func (p *BloomProbe) MightContain(value string) bool {
	if p == nil || p.filter == nil {
		return true
	}
	return p.filter.Contains([]byte(value))
}

// GatedEqualityMatcher wraps a scalar equality matcher with a bloom probe:
// Matches() short-circuits to false without reading the selector when the
// probe proves the target value is absent.
type GatedEqualityMatcher struct {
	Probe    *BloomProbe
	Target   string
	Selector segment.ObjectColumnSelector
}

func (m GatedEqualityMatcher) Matches() bool {
	if !m.Probe.MightContain(m.Target) {
		return false
	}
	return valuesEqual(m.Selector.GetObject(), m.Target, false)
}

// distinctValueSource is optionally implemented by a BitmapIndexSupplier
// whose dictionary already resides in memory, letting MakeFilterBundle
// build a probe without a dedicated column scan.
type distinctValueSource interface {
	DistinctValues() []string
}
