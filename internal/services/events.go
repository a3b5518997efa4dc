package services

import (
	"log/slog"
	"time"

	"marketplace/internal/models"
)

// EventPublisher delivers domain events to the message broker.
type EventPublisher interface {
	Publish(event models.Event) error
}

// publishEvent is best effort: a broker failure never fails the request that caused it.
func publishEvent(p EventPublisher, typ models.EventType, productID, userID string) {
	if p == nil {
		return
	}
	event := models.Event{
		Type:       typ,
		ProductID:  productID,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	}
	if err := p.Publish(event); err != nil {
		slog.Warn("failed to publish event",
			slog.String("type", string(typ)),
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}
}
