package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/Noop27/lesson-store/domain/lesson"
	infra "github.com/Noop27/lesson-store/infra"
	"github.com/Noop27/lesson-store/infra/events"
	"github.com/Noop27/lesson-store/infra/gateways"
	"github.com/Noop27/lesson-store/infra/metrics"
	protocols "github.com/Noop27/lesson-store/protocols"
)

type mockCatalogGateway struct {
	lessons []lesson.Lesson
}

func (m *mockCatalogGateway) Search(ctx context.Context, filter protocols.Filter) ([]lesson.Lesson, error) {
	return m.lessons, nil
}

type mockOrderGateway struct{}

func (m *mockOrderGateway) Create(ctx context.Context, order protocols.Order) (*protocols.PlacedOrder, error) {
	return &protocols.PlacedOrder{ID: "order-1"}, nil
}

type mockInventoryGateway struct{}

func (m *mockInventoryGateway) DecrementSpace(ctx context.Context, id lesson.ID, quantity int) error {
	return nil
}

func newTestRouter(lessons []lesson.Lesson) *gin.Engine {
	gin.SetMode(gin.TestMode)
	deps := serverDeps{
		catalogGateway:   &mockCatalogGateway{lessons: lessons},
		orderGateway:     &mockOrderGateway{},
		inventoryGateway: &mockInventoryGateway{},
		submitLock:       gateways.NewSubmitLockMemory(),
		publisher:        events.NewNopPublisher(),
	}
	return newRouter(deps, zap.NewNop(), "")
}

func TestTransportStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{infra.NewTimeoutError("slow upstream"), http.StatusGatewayTimeout},
		{infra.NewNetworkError("upstream 503"), http.StatusBadGateway},
		{fmt.Errorf("create order: %w", infra.ErrNetwork), http.StatusBadGateway},
		{errors.New("decode failure"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := transportStatus(tc.err); got != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, got)
		}
	}
}

func TestRemoveOutcomeMetricDistinguishesNoop(t *testing.T) {
	r := newTestRouter([]lesson.Lesson{{ID: "L1", Topic: "Math", Price: 10, Space: 5}})

	recorder := httptest.NewRecorder()
	r.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/lessons", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d", recorder.Code)
	}
	cookies := recorder.Result().Cookies()

	noopBefore := testutil.ToFloat64(metrics.CartMutations.WithLabelValues("remove", "noop"))
	okBefore := testutil.ToFloat64(metrics.CartMutations.WithLabelValues("remove", "ok"))

	// L1 is not in the cart, so this removal is a no-op.
	recorder = httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodDelete, "/cart/L1", nil)
	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}
	r.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusOK {
		t.Fatalf("remove: expected 200, got %d", recorder.Code)
	}

	noop := testutil.ToFloat64(metrics.CartMutations.WithLabelValues("remove", "noop"))
	ok := testutil.ToFloat64(metrics.CartMutations.WithLabelValues("remove", "ok"))
	if noop-noopBefore != 1 {
		t.Fatalf("expected one noop removal recorded, got delta %v", noop-noopBefore)
	}
	if ok-okBefore != 0 {
		t.Fatalf("no-op removal must not count as ok, got delta %v", ok-okBefore)
	}

	// Add one unit, remove it: this one counts as ok.
	recorder = httptest.NewRecorder()
	request = httptest.NewRequest(http.MethodPost, "/cart/L1", nil)
	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}
	r.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusOK {
		t.Fatalf("add: expected 200, got %d", recorder.Code)
	}

	recorder = httptest.NewRecorder()
	request = httptest.NewRequest(http.MethodDelete, "/cart/L1", nil)
	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}
	r.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusOK {
		t.Fatalf("remove: expected 200, got %d", recorder.Code)
	}

	ok = testutil.ToFloat64(metrics.CartMutations.WithLabelValues("remove", "ok"))
	if ok-okBefore != 1 {
		t.Fatalf("expected one ok removal recorded, got delta %v", ok-okBefore)
	}
}
