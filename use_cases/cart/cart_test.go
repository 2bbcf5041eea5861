package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/Noop27/lesson-store/domain/lesson"
	protocols "github.com/Noop27/lesson-store/protocols"
	"github.com/Noop27/lesson-store/use_cases/catalog"
)

type mockCatalogGateway struct {
	searchResult []lesson.Lesson
	searchErr    error
}

func (m *mockCatalogGateway) Search(ctx context.Context, filter protocols.Filter) ([]lesson.Lesson, error) {
	return m.searchResult, m.searchErr
}

func newTestCache(t *testing.T, lessons []lesson.Lesson) *catalog.Cache {
	t.Helper()
	cache := catalog.NewCache(&mockCatalogGateway{searchResult: lessons})
	if err := cache.Refresh(context.Background(), protocols.Filter{}); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	return cache
}

func TestAddDecrementsSpace(t *testing.T) {
	cache := newTestCache(t, []lesson.Lesson{{ID: "L1", Topic: "Math", Price: 10, Space: 5}})
	rec := NewReconciler(cache)

	if err := rec.Add("L1"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if rec.Quantity("L1") != 1 {
		t.Fatalf("expected quantity 1, got %d", rec.Quantity("L1"))
	}
	got, _ := cache.Get("L1")
	if got.Space != 4 {
		t.Fatalf("expected space 4, got %d", got.Space)
	}
}

func TestAddSoldOutRejectsWithoutMutation(t *testing.T) {
	cache := newTestCache(t, []lesson.Lesson{{ID: "L1", Space: 0}})
	rec := NewReconciler(cache)

	err := rec.Add("L1")
	if !errors.Is(err, ErrSoldOut) {
		t.Fatalf("expected ErrSoldOut, got %v", err)
	}
	if rec.Quantity("L1") != 0 {
		t.Fatalf("cart must be untouched, got %d", rec.Quantity("L1"))
	}
	got, _ := cache.Get("L1")
	if got.Space != 0 {
		t.Fatalf("cache must be untouched, got %d", got.Space)
	}
}

func TestAddUnknownLessonRejects(t *testing.T) {
	cache := newTestCache(t, nil)
	rec := NewReconciler(cache)

	if err := rec.Add("ghost"); !errors.Is(err, ErrUnknownLesson) {
		t.Fatalf("expected ErrUnknownLesson, got %v", err)
	}
}

func TestAddUntilSoldOut(t *testing.T) {
	cache := newTestCache(t, []lesson.Lesson{{ID: "L1", Space: 2}})
	rec := NewReconciler(cache)

	if err := rec.Add("L1"); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := rec.Add("L1"); err != nil {
		t.Fatalf("second add: %v", err)
	}
	if err := rec.Add("L1"); !errors.Is(err, ErrSoldOut) {
		t.Fatalf("expected ErrSoldOut on third add, got %v", err)
	}
	got, _ := cache.Get("L1")
	if got.Space != 0 || rec.Quantity("L1") != 2 {
		t.Fatalf("unexpected state: space=%d qty=%d", got.Space, rec.Quantity("L1"))
	}
}

func TestRemoveCompensatesSpace(t *testing.T) {
	cache := newTestCache(t, []lesson.Lesson{{ID: "L1", Space: 5}})
	rec := NewReconciler(cache)
	_ = rec.Add("L1")
	_ = rec.Add("L1")
	_ = rec.Add("L1")

	removed := rec.Remove("L1", 2)
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if rec.Quantity("L1") != 1 {
		t.Fatalf("expected quantity 1, got %d", rec.Quantity("L1"))
	}
	got, _ := cache.Get("L1")
	if got.Space != 4 {
		t.Fatalf("expected space 4, got %d", got.Space)
	}
}

func TestRemoveMoreThanHeldFloorsAtZero(t *testing.T) {
	cache := newTestCache(t, []lesson.Lesson{{ID: "L1", Space: 5}})
	rec := NewReconciler(cache)
	_ = rec.Add("L1")
	_ = rec.Add("L1")

	removed := rec.Remove("L1", 10)
	if removed != 2 {
		t.Fatalf("expected exactly 2 removed, got %d", removed)
	}
	if rec.Quantity("L1") != 0 {
		t.Fatalf("expected quantity 0, got %d", rec.Quantity("L1"))
	}
	if len(rec.Detail()) != 0 {
		t.Fatalf("zero-quantity entry must be deleted, got %+v", rec.Detail())
	}
	got, _ := cache.Get("L1")
	if got.Space != 5 {
		t.Fatalf("expected space restored to 5, got %d", got.Space)
	}
}

func TestRemoveAbsentIsNoOp(t *testing.T) {
	cache := newTestCache(t, []lesson.Lesson{{ID: "L1", Space: 5}})
	rec := NewReconciler(cache)

	if removed := rec.Remove("L1", 1); removed != 0 {
		t.Fatalf("expected no-op, got %d removed", removed)
	}
	got, _ := cache.Get("L1")
	if got.Space != 5 {
		t.Fatalf("cache must be untouched, got %d", got.Space)
	}
}

// For any sequence of add/remove calls, cart quantity plus cached space
// must equal the server-reported baseline, until the next refresh.
func TestReconciliationInvariantHolds(t *testing.T) {
	cache := newTestCache(t, []lesson.Lesson{{ID: "L1", Space: 7}})
	rec := NewReconciler(cache)

	steps := []struct {
		op    string
		count int
	}{
		{"add", 0}, {"add", 0}, {"remove", 1}, {"add", 0}, {"add", 0},
		{"remove", 2}, {"add", 0}, {"remove", 99}, {"add", 0},
	}
	for i, step := range steps {
		if step.op == "add" {
			_ = rec.Add("L1")
		} else {
			rec.Remove("L1", step.count)
		}
		got, _ := cache.Get("L1")
		baseline, _ := cache.Baseline("L1")
		if rec.Quantity("L1")+got.Space != baseline {
			t.Fatalf("step %d: invariant broken: qty=%d space=%d baseline=%d",
				i, rec.Quantity("L1"), got.Space, baseline)
		}
	}
}

func TestClearKeepsCacheValues(t *testing.T) {
	cache := newTestCache(t, []lesson.Lesson{{ID: "L1", Space: 5}})
	rec := NewReconciler(cache)
	_ = rec.Add("L1")
	_ = rec.Add("L1")

	rec.Clear()
	if rec.Quantity("L1") != 0 {
		t.Fatalf("expected empty cart, got %d", rec.Quantity("L1"))
	}
	got, _ := cache.Get("L1")
	if got.Space != 3 {
		t.Fatalf("clear must not compensate space, got %d", got.Space)
	}
}

func TestDetailDropsUnresolvableLines(t *testing.T) {
	gateway := &mockCatalogGateway{searchResult: []lesson.Lesson{
		{ID: "L1", Topic: "Math", Price: 10, Space: 5},
		{ID: "L2", Topic: "Art", Price: 7.5, Space: 5},
	}}
	cache := catalog.NewCache(gateway)
	_ = cache.Refresh(context.Background(), protocols.Filter{})
	rec := NewReconciler(cache)
	_ = rec.Add("L1")
	_ = rec.Add("L2")

	// A narrower search drops L2 from the cache; the cart keeps it.
	gateway.searchResult = []lesson.Lesson{{ID: "L1", Topic: "Math", Price: 10, Space: 5}}
	_ = cache.Refresh(context.Background(), protocols.Filter{Search: "math"})

	lines := rec.Detail()
	if len(lines) != 1 || lines[0].ID != "L1" {
		t.Fatalf("expected only L1 in view, got %+v", lines)
	}
	if rec.Quantity("L2") != 1 {
		t.Fatalf("L2 must stay in the store, got %d", rec.Quantity("L2"))
	}
}

func TestTotalRecomputedFromDerivedLines(t *testing.T) {
	cache := newTestCache(t, []lesson.Lesson{
		{ID: "L1", Topic: "Math", Price: 10, Space: 5},
		{ID: "L2", Topic: "Art", Price: 2.5, Space: 5},
	})
	rec := NewReconciler(cache)
	_ = rec.Add("L1")
	_ = rec.Add("L1")
	_ = rec.Add("L2")

	if rec.Total() != 22.5 {
		t.Fatalf("expected 22.5, got %v", rec.Total())
	}
	rec.Remove("L2", 1)
	if rec.Total() != 20 {
		t.Fatalf("expected 20 after removal, got %v", rec.Total())
	}
}
