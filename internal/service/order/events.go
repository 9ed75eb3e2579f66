package order

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Additional-Code/pastry/internal/entity"
)

// Event types published on the orders topic.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderDeleted       = "order.deleted"
)

// Event is the envelope for every order lifecycle message.
type Event struct {
	Type       string        `json:"type"`
	OrderID    int64         `json:"order_id"`
	CustomerID int64         `json:"customer_id,omitempty"`
	Status     entity.Status `json:"status,omitempty"`
	Items      int           `json:"items,omitempty"`
	TotalPrice int64         `json:"total_price,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

func newOrderCreatedEvent(order *entity.Order) Event {
	return Event{
		Type:       EventOrderCreated,
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Status:     order.Status,
		Items:      len(order.Items),
		TotalPrice: order.TotalPrice,
		OccurredAt: time.Now().UTC(),
	}
}

func newOrderStatusChangedEvent(id int64, status entity.Status) Event {
	return Event{
		Type:       EventOrderStatusChanged,
		OrderID:    id,
		Status:     status,
		OccurredAt: time.Now().UTC(),
	}
}

func newOrderDeletedEvent(id int64) Event {
	return Event{
		Type:       EventOrderDeleted,
		OrderID:    id,
		OccurredAt: time.Now().UTC(),
	}
}

// publishEvent emits asynchronously observable lifecycle facts. Publish
// failures are logged and swallowed; the local write has already committed.
func (s *Service) publishEvent(ctx context.Context, event Event) {
	if !s.messaging.enabled || s.publisher == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal order event", zap.String("type", event.Type), zap.Error(err))
		return
	}
	key := []byte(fmt.Sprintf("order-%d", event.OrderID))
	if err := s.publisher.Publish(ctx, key, payload); err != nil {
		s.logger.Error("publish order event", zap.String("type", event.Type), zap.Error(err))
	}
}
