package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/vedran77/habyx/internal/domain"
)

// Notifier pushes real-time events to connected clients.
type Notifier interface {
	NotifyFriendRequest(f *domain.Friend)
	NotifyFriendResponse(f *domain.Friend)
	NotifyNewMessage(msg *domain.Message)
	NotifyApplication(app *domain.HousingApplication, ownerID uuid.UUID)
	NotifyApplicationDecided(app *domain.HousingApplication)
}

// Publisher emits domain events to the message broker.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// publish is fire-and-forget: a broker failure never fails the request.
// Publishers are expected to return without waiting on the broker.
func publish(ctx context.Context, p Publisher, routingKey string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, routingKey, payload); err != nil {
		slog.WarnContext(ctx, "event publish failed", "routing_key", routingKey, "err", err)
	}
}
