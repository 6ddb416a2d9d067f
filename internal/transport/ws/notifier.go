package ws

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/vedran77/habyx/internal/domain"
)

// HubNotifier implements service.Notifier using the WebSocket Hub.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyFriendRequest(f *domain.Friend) {
	n.send(f.AddresseeID, EventTypeFriendRequest, f)
}

func (n *HubNotifier) NotifyFriendResponse(f *domain.Friend) {
	n.send(f.RequesterID, EventTypeFriendResponse, f)
}

func (n *HubNotifier) NotifyNewMessage(msg *domain.Message) {
	n.send(msg.ReceiverID, EventTypeMessageNew, msg)
}

func (n *HubNotifier) NotifyApplication(app *domain.HousingApplication, ownerID uuid.UUID) {
	n.send(ownerID, EventTypeApplicationNew, app)
}

func (n *HubNotifier) NotifyApplicationDecided(app *domain.HousingApplication) {
	n.send(app.ApplicantID, EventTypeApplicationDecided, app)
}

func (n *HubNotifier) send(userID uuid.UUID, eventType string, payload any) {
	evt, err := NewEvent(eventType, payload)
	if err != nil {
		slog.Error("ws notifier: marshal error", "type", eventType, "err", err)
		return
	}
	n.hub.BroadcastToUser(userID, evt)
}
