package checkout

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	protocols "github.com/Noop27/lesson-store/protocols"
	"github.com/Noop27/lesson-store/use_cases/cart"
	"github.com/Noop27/lesson-store/use_cases/catalog"
)

var (
	ErrInvalidName    = errors.New("name is required and must be letters and spaces only")
	ErrInvalidPhone   = errors.New("phone is required and must be digits only")
	ErrEmptyCart      = errors.New("cart is empty")
	ErrSubmitInFlight = errors.New("a submission is already in progress")

	namePattern  = regexp.MustCompile(`^[A-Za-z]+( [A-Za-z]+)*$`)
	phonePattern = regexp.MustCompile(`^[0-9]+$`)
)

func NewCheckout(
	reconciler *cart.Reconciler,
	cache *catalog.Cache,
	orderGateway protocols.OrderGateway,
	inventoryGateway protocols.InventoryGateway,
	submitLock protocols.SubmitLockGateway,
	events protocols.EventPublisher,
	logger *zap.Logger,
) *Checkout {
	return &Checkout{
		reconciler:       reconciler,
		cache:            cache,
		orderGateway:     orderGateway,
		inventoryGateway: inventoryGateway,
		submitLock:       submitLock,
		events:           events,
		logger:           logger,
	}
}

type Checkout struct {
	reconciler       *cart.Reconciler
	cache            *catalog.Cache
	orderGateway     protocols.OrderGateway
	inventoryGateway protocols.InventoryGateway
	submitLock       protocols.SubmitLockGateway
	events           protocols.EventPublisher
	logger           *zap.Logger
}

type Input struct {
	SessionID string
	Name      string
	Phone     string
}

type Output struct {
	OrderID       string
	Total         float64
	DriftWarnings int
}

// Submit drives the two-phase submission: create the order, then
// propagate the consumed inventory line by line. Phase 1 failure aborts
// everything and leaves the cart intact. Phase 2 failures never fail the
// order; they are aggregated into operator warnings and corrected by the
// next catalog refresh.
func (c *Checkout) Submit(ctx context.Context, input Input) (Output, error) {
	if !namePattern.MatchString(strings.TrimSpace(input.Name)) {
		return Output{}, ErrInvalidName
	}
	if !phonePattern.MatchString(strings.TrimSpace(input.Phone)) {
		return Output{}, ErrInvalidPhone
	}
	lines := c.reconciler.Detail()
	if len(lines) == 0 {
		return Output{}, ErrEmptyCart
	}

	acquired, err := c.submitLock.Acquire(ctx, input.SessionID)
	if err != nil {
		return Output{}, fmt.Errorf("acquire submit lock: %w", err)
	}
	if !acquired {
		return Output{}, ErrSubmitInFlight
	}
	defer func() {
		if err := c.submitLock.Release(context.WithoutCancel(ctx), input.SessionID); err != nil {
			c.logger.Warn("failed to release submit lock", zap.Error(err))
		}
	}()

	order := protocols.Order{
		Name:    strings.TrimSpace(input.Name),
		Phone:   strings.TrimSpace(input.Phone),
		Lessons: make([]protocols.OrderLine, 0, len(lines)),
	}
	for _, line := range lines {
		order.Lessons = append(order.Lessons, protocols.OrderLine{
			ID:       line.ID,
			Topic:    line.Topic,
			Quantity: line.Quantity,
			Price:    line.Price,
		})
		order.Total += line.Subtotal()
	}

	placed, err := c.orderGateway.Create(ctx, order)
	if err != nil {
		return Output{}, fmt.Errorf("create order: %w", err)
	}

	// The order has committed; propagation runs to completion even if
	// the request context is cancelled underneath it.
	settledCtx := context.WithoutCancel(ctx)
	warnings := 0
	for _, result := range c.propagate(settledCtx, order.Lessons) {
		if result.Err == nil {
			continue
		}
		warnings++
		c.logger.Warn("inventory propagation failed, space will drift until next refresh",
			zap.String("order_id", placed.ID),
			zap.String("lesson_id", result.ID.String()),
			zap.Int("quantity", result.Quantity),
			zap.Error(result.Err))
		if err := c.events.InventoryDrift(settledCtx, protocols.InventoryDriftEvent{
			OrderID:  placed.ID,
			LessonID: result.ID,
			Quantity: result.Quantity,
			Reason:   result.Err.Error(),
		}); err != nil {
			c.logger.Warn("failed to publish inventory drift event", zap.Error(err))
		}
	}

	c.reconciler.Clear()
	if err := c.events.OrderPlaced(settledCtx, protocols.OrderPlacedEvent{
		OrderID: placed.ID,
		Total:   order.Total,
		Lines:   len(order.Lessons),
	}); err != nil {
		c.logger.Warn("failed to publish order placed event", zap.Error(err))
	}
	if err := c.cache.Refresh(settledCtx, c.cache.Filter()); err != nil {
		c.logger.Warn("catalog refresh after order failed", zap.Error(err))
	}

	return Output{OrderID: placed.ID, Total: order.Total, DriftWarnings: warnings}, nil
}

// propagate issues one inventory decrement per order line, all at once,
// and joins when every call has settled. It never short-circuits: each
// line gets its own result so partial failure is reported precisely.
func (c *Checkout) propagate(ctx context.Context, lines []protocols.OrderLine) []protocols.PropagationResult {
	results := make([]protocols.PropagationResult, len(lines))
	var wg sync.WaitGroup
	for i, line := range lines {
		wg.Add(1)
		go func(i int, line protocols.OrderLine) {
			defer wg.Done()
			err := c.inventoryGateway.DecrementSpace(ctx, line.ID, line.Quantity)
			results[i] = protocols.PropagationResult{ID: line.ID, Quantity: line.Quantity, Err: err}
		}(i, line)
	}
	wg.Wait()
	return results
}
