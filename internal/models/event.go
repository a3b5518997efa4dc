package models

import "time"

// EventType names a domain event published to the message broker.
type EventType string

const (
	EventProductCreated  EventType = "product.created"
	EventProductUpdated  EventType = "product.updated"
	EventProductDeleted  EventType = "product.deleted"
	EventFavoriteAdded   EventType = "favorite.added"
	EventFavoriteRemoved EventType = "favorite.removed"
)

// Event is the JSON body published for every catalog or favorites mutation.
type Event struct {
	Type       EventType `json:"type"`
	ProductID  string    `json:"product_id"`
	UserID     string    `json:"user_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
