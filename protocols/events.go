package protocols

import (
	"context"

	"github.com/Noop27/lesson-store/domain/lesson"
)

type OrderPlacedEvent struct {
	OrderID string  `json:"orderId"`
	Total   float64 `json:"total"`
	Lines   int     `json:"lines"`
}

// InventoryDriftEvent records one order line whose inventory decrement
// failed after the order itself committed. The drift is corrected by the
// next catalog refresh; the event exists for operators.
type InventoryDriftEvent struct {
	OrderID  string    `json:"orderId"`
	LessonID lesson.ID `json:"lessonId"`
	Quantity int       `json:"quantity"`
	Reason   string    `json:"reason"`
}

type EventPublisher interface {
	OrderPlaced(ctx context.Context, event OrderPlacedEvent) error
	InventoryDrift(ctx context.Context, event InventoryDriftEvent) error
}
