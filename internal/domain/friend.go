package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type FriendStatus string

const (
	FriendPending  FriendStatus = "Pending"
	FriendAccepted FriendStatus = "Accepted"
	FriendRejected FriendStatus = "Rejected"
)

// ParseFriendStatus matches case-insensitively against the known statuses.
func ParseFriendStatus(s string) (FriendStatus, error) {
	switch {
	case strings.EqualFold(s, string(FriendPending)):
		return FriendPending, nil
	case strings.EqualFold(s, string(FriendAccepted)):
		return FriendAccepted, nil
	case strings.EqualFold(s, string(FriendRejected)):
		return FriendRejected, nil
	}
	return "", fmt.Errorf("unknown friend status %q", s)
}

// CanTransition reports whether a record in status s may move to next.
// Only Pending records change, and only to a terminal status.
func (s FriendStatus) CanTransition(next FriendStatus) bool {
	switch s {
	case FriendPending:
		return next == FriendAccepted || next == FriendRejected
	case FriendAccepted, FriendRejected:
		return false
	}
	return false
}

func (s *FriendStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseFriendStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

type Friend struct {
	ID          uuid.UUID    `json:"id"`
	RequesterID uuid.UUID    `json:"requester_id"`
	AddresseeID uuid.UUID    `json:"addressee_id"`
	Status      FriendStatus `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   *time.Time   `json:"updated_at,omitempty"`
	// Joined fields
	Requester *UserSummary `json:"requester,omitempty"`
	Addressee *UserSummary `json:"addressee,omitempty"`
}

// Involves reports whether userID is either party of the relationship.
func (f *Friend) Involves(userID uuid.UUID) bool {
	return f.RequesterID == userID || f.AddresseeID == userID
}
