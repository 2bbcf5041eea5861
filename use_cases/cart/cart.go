package cart

import (
	"errors"

	"github.com/Noop27/lesson-store/domain/lesson"
	"github.com/Noop27/lesson-store/use_cases/catalog"
)

var (
	ErrUnknownLesson = errors.New("invalid lesson")
	ErrSoldOut       = errors.New("sold out")
)

func NewReconciler(cache *catalog.Cache) *Reconciler {
	return &Reconciler{
		cache:      cache,
		quantities: make(map[lesson.ID]int),
	}
}

// Reconciler owns the cart quantity map and keeps it in lockstep with
// the catalog cache: every unit added decrements the cached space, every
// unit removed hands it back. No server round-trip is involved; the
// invariant cartQuantity + cache.Space == server baseline holds between
// refreshes.
type Reconciler struct {
	cache      *catalog.Cache
	quantities map[lesson.ID]int
}

// Add reserves one unit. Unknown lessons and sold-out lessons are
// rejected without mutating either structure.
func (r *Reconciler) Add(id lesson.ID) error {
	current, ok := r.cache.Get(id)
	if !ok {
		return ErrUnknownLesson
	}
	if current.Space <= 0 {
		return ErrSoldOut
	}
	r.cache.AdjustSpace(id, -1)
	r.quantities[id]++
	return nil
}

// Remove takes up to count units out of the cart and compensates the
// cache by the amount actually removed. Removing more than the cart
// holds removes what is there; an entry that reaches zero is deleted.
// An absent id is a no-op.
func (r *Reconciler) Remove(id lesson.ID, count int) int {
	held := r.quantities[id]
	if held == 0 || count <= 0 {
		return 0
	}
	removed := count
	if removed > held {
		removed = held
	}
	if held == removed {
		delete(r.quantities, id)
	} else {
		r.quantities[id] = held - removed
	}
	r.cache.AdjustSpace(id, removed)
	return removed
}

// Clear empties the cart without touching cached space values. Used
// after a confirmed order: the server already applied the decrement, so
// local counts stay stale until the next refresh.
func (r *Reconciler) Clear() {
	r.quantities = make(map[lesson.ID]int)
}

func (r *Reconciler) Quantity(id lesson.ID) int {
	return r.quantities[id]
}

// Detail joins the cart against the catalog cache, in catalog order.
// Lines whose lesson no longer resolves are dropped from the view but
// kept in the store.
func (r *Reconciler) Detail() []lesson.CartLine {
	lines := make([]lesson.CartLine, 0, len(r.quantities))
	for _, entry := range r.cache.Lessons() {
		quantity, ok := r.quantities[entry.ID]
		if !ok {
			continue
		}
		lines = append(lines, lesson.CartLine{
			ID:       entry.ID,
			Topic:    entry.Topic,
			Price:    entry.Price,
			Quantity: quantity,
		})
	}
	return lines
}

// Total is recomputed from the derived lines on every call.
func (r *Reconciler) Total() float64 {
	var total float64
	for _, line := range r.Detail() {
		total += line.Subtotal()
	}
	return total
}
