package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/habyx/internal/domain"
	"github.com/vedran77/habyx/internal/events"
	"github.com/vedran77/habyx/internal/repository"
)

var (
	ErrCannotRequestSelf    = errors.New("cannot send a friend request to yourself")
	ErrRequestAlreadyExists = errors.New("friend request already exists")
	ErrRequestNotFound      = errors.New("friend request not found")
	ErrNotAddressee         = errors.New("only the addressee can respond to this request")
	ErrNotParticipant       = errors.New("you are not part of this friendship")
	ErrInvalidStatus        = errors.New("status must be Accepted or Rejected")
	ErrRequestNotPending    = errors.New("friend request has already been answered")
)

type FriendService struct {
	friendRepo repository.FriendRepository
	userRepo   repository.UserRepository
	notifier   Notifier
	publisher  Publisher
}

func NewFriendService(friendRepo repository.FriendRepository, userRepo repository.UserRepository) *FriendService {
	return &FriendService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
	}
}

func (s *FriendService) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *FriendService) SetPublisher(p Publisher) {
	s.publisher = p
}

// ListFriends returns accepted friendships where the user is either party.
func (s *FriendService) ListFriends(ctx context.Context, userID uuid.UUID) ([]domain.Friend, error) {
	friends, err := s.friendRepo.ListAccepted(ctx, userID)
	if err != nil {
		return nil, err
	}
	if friends == nil {
		friends = []domain.Friend{}
	}
	return friends, nil
}

// ListPending returns requests waiting for the user's answer.
func (s *FriendService) ListPending(ctx context.Context, userID uuid.UUID) ([]domain.Friend, error) {
	reqs, err := s.friendRepo.ListPending(ctx, userID)
	if err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []domain.Friend{}
	}
	return reqs, nil
}

// SendRequest creates a Pending request unless the pair already has a record
// in either direction.
func (s *FriendService) SendRequest(ctx context.Context, userID, targetID uuid.UUID) (*domain.Friend, error) {
	if userID == targetID {
		return nil, ErrCannotRequestSelf
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if target == nil {
		return nil, ErrUserNotFound
	}

	existing, err := s.friendRepo.GetByPair(ctx, userID, targetID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrRequestAlreadyExists
	}

	req := &domain.Friend{
		ID:          uuid.New(),
		RequesterID: userID,
		AddresseeID: targetID,
		Status:      domain.FriendPending,
		CreatedAt:   time.Now(),
	}

	if err := s.friendRepo.Create(ctx, req); err != nil {
		// A concurrent request for the same pair lost the race on the pair index.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrRequestAlreadyExists
		}
		return nil, fmt.Errorf("creating friend request: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyFriendRequest(req)
	}
	publish(ctx, s.publisher, events.FriendRequestSent, req)

	return req, nil
}

// Respond accepts or rejects a pending request addressed to the user.
func (s *FriendService) Respond(ctx context.Context, userID, requestID uuid.UUID, status domain.FriendStatus) error {
	if status != domain.FriendAccepted && status != domain.FriendRejected {
		return ErrInvalidStatus
	}

	req, err := s.friendRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req == nil {
		return ErrRequestNotFound
	}
	if req.AddresseeID != userID {
		return ErrNotAddressee
	}
	if !req.Status.CanTransition(status) {
		return ErrRequestNotPending
	}

	now := time.Now()
	if err := s.friendRepo.UpdateStatus(ctx, requestID, status, now); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return ErrRequestNotPending
		}
		return fmt.Errorf("updating friend request: %w", err)
	}
	req.Status = status
	req.UpdatedAt = &now

	if s.notifier != nil {
		s.notifier.NotifyFriendResponse(req)
	}
	publish(ctx, s.publisher, events.FriendRequestAnswered, req)

	return nil
}

// Remove deletes a relationship in any status. Either party may do so.
func (s *FriendService) Remove(ctx context.Context, userID, friendID uuid.UUID) error {
	f, err := s.friendRepo.GetByID(ctx, friendID)
	if err != nil {
		return err
	}
	if f == nil {
		return ErrRequestNotFound
	}
	if !f.Involves(userID) {
		return ErrNotParticipant
	}

	return s.friendRepo.Delete(ctx, friendID)
}
