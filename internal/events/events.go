// Package events publishes domain events to RabbitMQ.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Routing keys on the events exchange.
const (
	FriendRequestSent     = "friend.request_sent"
	FriendRequestAnswered = "friend.request_answered"
	MessageSent           = "message.sent"
	ListingCreated        = "housing.listing_created"
	ListingDeleted        = "housing.listing_deleted"
	ApplicationSubmitted  = "housing.application_submitted"
	ApplicationDecided    = "housing.application_decided"
)

// Envelope wraps every published payload.
type Envelope struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

func NewEnvelope(eventType string, payload any) Envelope {
	return Envelope{
		ID:         uuid.New(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}
