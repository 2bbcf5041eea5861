package catalog

import (
	"context"

	"github.com/Noop27/lesson-store/domain/lesson"
	protocols "github.com/Noop27/lesson-store/protocols"
)

func NewCache(catalogGateway protocols.CatalogGateway) *Cache {
	return &Cache{
		catalogGateway: catalogGateway,
		index:          make(map[lesson.ID]*lesson.Lesson),
		baseline:       make(map[lesson.ID]int),
	}
}

// Cache holds the last-fetched lesson list. Space values are mutated
// locally by the cart reconciler between refreshes; baseline keeps the
// server-reported space per lesson so reconciliation stays checkable.
type Cache struct {
	catalogGateway protocols.CatalogGateway
	lessons        []lesson.Lesson
	index          map[lesson.ID]*lesson.Lesson
	baseline       map[lesson.ID]int
	filter         protocols.Filter
}

// Refresh replaces the whole cached list from a catalog search. On
// failure the cache is cleared, not left stale, and the error is
// returned for user-visible reporting. No retry.
func (c *Cache) Refresh(ctx context.Context, filter protocols.Filter) error {
	c.filter = filter

	found, err := c.catalogGateway.Search(ctx, filter)
	if err != nil {
		c.lessons = nil
		c.index = make(map[lesson.ID]*lesson.Lesson)
		c.baseline = make(map[lesson.ID]int)
		return err
	}

	// Copy into cache-owned storage: AdjustSpace mutates entries in
	// place, and the gateway may serve later searches from the same
	// backing array.
	c.lessons = append(make([]lesson.Lesson, 0, len(found)), found...)
	c.index = make(map[lesson.ID]*lesson.Lesson, len(found))
	c.baseline = make(map[lesson.ID]int, len(found))
	for i := range c.lessons {
		entry := &c.lessons[i]
		c.index[entry.ID] = entry
		c.baseline[entry.ID] = entry.Space
	}
	return nil
}

// Lessons returns a snapshot copy in the server's response order.
func (c *Cache) Lessons() []lesson.Lesson {
	snapshot := make([]lesson.Lesson, len(c.lessons))
	copy(snapshot, c.lessons)
	return snapshot
}

func (c *Cache) Get(id lesson.ID) (lesson.Lesson, bool) {
	entry, ok := c.index[id]
	if !ok {
		return lesson.Lesson{}, false
	}
	return *entry, true
}

// AdjustSpace applies a local reservation delta to one cached lesson.
// Callers guard the never-below-zero invariant; unknown ids are a no-op.
func (c *Cache) AdjustSpace(id lesson.ID, delta int) bool {
	entry, ok := c.index[id]
	if !ok {
		return false
	}
	entry.Space += delta
	return true
}

// Baseline is the space last reported by the server for the lesson.
func (c *Cache) Baseline(id lesson.ID) (int, bool) {
	space, ok := c.baseline[id]
	return space, ok
}

// Filter is the last requested filter, used to re-refresh after an
// order so the user keeps their view.
func (c *Cache) Filter() protocols.Filter {
	return c.filter
}
