// Package columncache implements the open-once, holder-lifetime-scoped
// column handle cache, with a coalesce-first-error close pattern for
// releasing every opened column exactly once.
package columncache

import (
	"sync"

	"github.com/arkilian/scanengine/internal/errorsx"
	"github.com/arkilian/scanengine/pkg/segment"
)

// Cache is a per-holder map of name -> opened column handle. It is
// single-threaded from the holder's perspective: no internal locking is
// used beyond what callers already serialize through the holder.
type Cache struct {
	seg     segment.Segment
	opened  map[string]segment.BaseColumn
	closer  *Closer
}

// New builds a Cache bound to seg, registering every column it opens with
// closer so the holder releases them on close.
func New(seg segment.Segment, closer *Closer) *Cache {
	return &Cache{seg: seg, opened: make(map[string]segment.BaseColumn), closer: closer}
}

// Get opens name's column if absent and memoizes the handle. A failed open
// leaves the cache without a partial entry for name.
func (c *Cache) Get(name string) (segment.BaseColumn, error) {
	if col, ok := c.opened[name]; ok {
		return col, nil
	}
	holder, ok := c.seg.Column(name)
	if !ok {
		return nil, nil
	}
	col, err := holder.Open()
	if err != nil {
		return nil, err
	}
	c.opened[name] = col
	c.closer.Register(col)
	return col, nil
}

// Holder returns the ColumnHolder for name without opening it, or false if
// no such column exists on the segment.
func (c *Cache) Holder(name string) (segment.ColumnHolder, bool) {
	return c.seg.Column(name)
}

// Closer coalesces close errors from every resource registered with it:
// the first failure is reported, later failures during the same close are
// suppressed, per the CloseFailed coalescing requirement.
type Closer struct {
	mu        sync.Mutex
	resources []closeable
	closed    bool
}

type closeable interface{ Close() error }

// NewCloser creates an empty Closer.
func NewCloser() *Closer {
	return &Closer{}
}

// Register adds a resource to be released, in reverse registration order,
// when Close is called.
func (c *Closer) Register(r closeable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resources = append(c.resources, r)
}

// Close releases every registered resource in reverse order of
// acquisition. Repeated calls are a no-op (idempotent).
func (c *Closer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	var first error
	for i := len(c.resources) - 1; i >= 0; i-- {
		if err := c.resources[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	c.resources = nil
	if first != nil {
		return errorsx.WrapExecutionErrorf(errorsx.CodeCloseFailed, first, "closer failed while releasing resources")
	}
	return nil
}

// Closed reports whether Close has already run.
func (c *Closer) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
