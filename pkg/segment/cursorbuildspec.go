package segment

// OrderingDirection is the direction a cursor iterates time in.
type OrderingDirection int

const (
	Ascending OrderingDirection = iota
	Descending
)

// OrderByColumn is one entry of a CursorBuildSpec's preferred_ordering.
// Only a time-column entry is honored by this core; cursor.New rejects an
// entry on any other column with CodeUnsupportedOrdering.
type OrderByColumn struct {
	Column    string
	Direction OrderingDirection
}

// VectorizeVirtualColumns mirrors the query_context.vectorize_virtual_columns
// option: force, auto, or false.
type VectorizeVirtualColumns int

const (
	VectorizeAuto VectorizeVirtualColumns = iota
	VectorizeForce
	VectorizeOff
)

// ShouldVectorize applies this mode to a virtual-column-reported
// can_vectorize result.
func (m VectorizeVirtualColumns) ShouldVectorize(virtualColumnsCanVectorize bool) bool {
	switch m {
	case VectorizeForce:
		return true
	case VectorizeOff:
		return false
	default:
		return virtualColumnsCanVectorize
	}
}

// NullPolicy controls how a selector that resolves to neither a virtual nor
// a physical column folds that absence: to a distinguishable SQL NULL, or to
// the requested type's zero value.
type NullPolicy int

const (
	// NullPolicySQLCompatible returns a null selector (is_null() true, value
	// the type's zero) for a name that resolves nowhere.
	NullPolicySQLCompatible NullPolicy = iota
	// NullPolicyLegacy folds a name that resolves nowhere into the
	// requested type's zero value with is_null() false, matching the
	// source's pre-SQL-compatibility default-value behavior.
	NullPolicyLegacy
)

// QueryContext holds the subset of query_context this core recognizes.
type QueryContext struct {
	VectorSize              int
	VectorizeVirtualColumns VectorizeVirtualColumns
	NullPolicy              NullPolicy

	// Debug gates the cursor holder's filter-partitioning trace log.
	Debug bool
}

// VirtualColumns is the set of derived column definitions keyed by name.
type VirtualColumns struct {
	byName map[string]VirtualColumn
	order  []string
}

// NewVirtualColumns builds a registry from a column list. It does not
// itself detect cycles; internal/virtualcol.ValidateNoCycles does that by
// walking the reference graph the columns' declared dependencies induce.
func NewVirtualColumns(columns []VirtualColumn) VirtualColumns {
	byName := make(map[string]VirtualColumn, len(columns))
	order := make([]string, 0, len(columns))
	for _, vc := range columns {
		byName[vc.Name()] = vc
		order = append(order, vc.Name())
	}
	return VirtualColumns{byName: byName, order: order}
}

// Get returns the virtual column named name, if any.
func (vcs VirtualColumns) Get(name string) (VirtualColumn, bool) {
	vc, ok := vcs.byName[name]
	return vc, ok
}

// Exists reports whether a virtual column named name is declared.
func (vcs VirtualColumns) Exists(name string) bool {
	_, ok := vcs.byName[name]
	return ok
}

// Names returns the declared virtual column names in declaration order.
func (vcs VirtualColumns) Names() []string {
	return vcs.order
}

// CursorBuildSpec is the record a caller hands to make_cursor_holder.
type CursorBuildSpec struct {
	Interval           Interval
	Filter             Filter // nil means no filter
	VirtualColumns     VirtualColumns
	PreferredOrdering  []OrderByColumn
	QueryContext       QueryContext
	Aggregators        []Aggregator // nil/empty means no gating from aggregators
	QueryMetrics       QueryMetrics // nil means no metrics sink

	// PredicateFrequency, if set, is told every column this spec's filter
	// references, for a caller tracking filter shape across many scans.
	PredicateFrequency PredicateRecorder
}

// Aggregator is the vectorization-gate-only contract aggregators expose to
// this core; aggregation itself is an external collaborator.
type Aggregator interface {
	CanVectorize(inspector ColumnInspector) bool
}

// DefaultQueryContext returns the standard query_context defaults:
// vector_size 512, vectorize_virtual_columns auto.
func DefaultQueryContext() QueryContext {
	return QueryContext{VectorSize: 512, VectorizeVirtualColumns: VectorizeAuto}
}
