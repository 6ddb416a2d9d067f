package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/habyx/internal/domain"
)

var (
	// ErrDuplicate is returned when a write violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrForeignKey is returned when a write references a missing row.
	ErrForeignKey = errors.New("referenced record does not exist")
	// ErrStaleState is returned when a conditional update finds the row
	// no longer in the expected state.
	ErrStaleState = errors.New("record state changed")
)

// Lookups return (nil, nil) when no row matches.

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByRefreshTokenHash(ctx context.Context, hash string) (*domain.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	SetRefreshToken(ctx context.Context, id uuid.UUID, hash *string, expiresAt *time.Time) error
	// RotateRefreshToken swaps oldHash for newHash. It returns ErrStaleState
	// when the stored hash is no longer oldHash.
	RotateRefreshToken(ctx context.Context, id uuid.UUID, oldHash, newHash string, expiresAt time.Time) error
	SetProfileImage(ctx context.Context, id uuid.UUID, url *string) error
}

type FriendRepository interface {
	Create(ctx context.Context, friend *domain.Friend) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Friend, error)
	// GetByPair matches the unordered pair {a, b} in either direction.
	GetByPair(ctx context.Context, a, b uuid.UUID) (*domain.Friend, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.FriendStatus, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListAccepted(ctx context.Context, userID uuid.UUID) ([]domain.Friend, error)
	ListPending(ctx context.Context, addresseeID uuid.UUID) ([]domain.Friend, error)
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	ListConversation(ctx context.Context, userA, userB uuid.UUID, before *uuid.UUID, limit int) ([]domain.Message, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	CountUnread(ctx context.Context, receiverID uuid.UUID) (int, error)
}

type HousingRepository interface {
	Create(ctx context.Context, listing *domain.HousingListing) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.HousingListing, error)
	List(ctx context.Context) ([]domain.HousingListing, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.HousingApplication) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.HousingApplication, error)
	ListByListing(ctx context.Context, listingID uuid.UUID) ([]domain.HousingApplication, error)
	ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]domain.HousingApplication, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ApplicationStatus) error
}
