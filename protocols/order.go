package protocols

import (
	"context"

	"github.com/Noop27/lesson-store/domain/lesson"
)

type OrderLine struct {
	ID       lesson.ID `json:"id"`
	Topic    string    `json:"topic"`
	Quantity int       `json:"quantity"`
	Price    float64   `json:"price"`
}

// Order is the outbound payload. Total is recomputed from the derived
// cart at submission time, never cached.
type Order struct {
	Name    string      `json:"name"`
	Phone   string      `json:"phone"`
	Lessons []OrderLine `json:"lessons"`
	Total   float64     `json:"total"`
}

type PlacedOrder struct {
	ID string
}

type OrderGateway interface {
	Create(ctx context.Context, order Order) (*PlacedOrder, error)
}

type InventoryGateway interface {
	DecrementSpace(ctx context.Context, id lesson.ID, quantity int) error
}

// PropagationResult is the outcome of one inventory decrement in the
// second submission phase. The join collects one per order line so
// partial failure can be reported precisely.
type PropagationResult struct {
	ID       lesson.ID
	Quantity int
	Err      error
}
