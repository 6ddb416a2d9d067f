package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/habyx/internal/domain"
	"github.com/vedran77/habyx/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken          = errors.New("email already exists")
	ErrInvalidCreds        = errors.New("invalid email or password")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrUserNotFound        = errors.New("user not found")
)

type AuthService struct {
	userRepo   repository.UserRepository
	tokens     *TokenService
	bcryptCost int
	refreshTTL time.Duration
}

func NewAuthService(userRepo repository.UserRepository, tokens *TokenService, bcryptCost int, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		refreshTTL: refreshTTL,
	}
}

type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenPair struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := normalizeEmail(input.Email)

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		slog.InfoContext(ctx, "registration rejected", "email", email, "reason", "email exists")
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			slog.InfoContext(ctx, "registration rejected", "email", email, "reason", "email exists")
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	slog.InfoContext(ctx, "user registered", "email", email, "user_id", user.ID)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*TokenPair, error) {
	email := normalizeEmail(input.Email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		slog.InfoContext(ctx, "login failed", "email", email, "reason", "unknown email")
		return nil, ErrInvalidCreds
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		slog.InfoContext(ctx, "login failed", "email", email, "reason", "bad password")
		return nil, ErrInvalidCreds
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		return nil, fmt.Errorf("updating last login: %w", err)
	}

	pair, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "login succeeded", "email", email, "user_id", user.ID)
	return pair, nil
}

// Refresh rotates the refresh token. The presented token stops working.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}

	oldHash := hashRefreshToken(refreshToken)
	user, err := s.userRepo.GetByRefreshTokenHash(ctx, oldHash)
	if err != nil {
		return nil, err
	}
	if user == nil || user.RefreshTokenExpiresAt == nil || time.Now().After(*user.RefreshTokenExpiresAt) {
		return nil, ErrInvalidRefreshToken
	}

	pair, hash, expiresAt, err := s.newTokenPair(user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.RotateRefreshToken(ctx, user.ID, oldHash, hash, expiresAt); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			slog.InfoContext(ctx, "refresh rejected", "user_id", user.ID, "reason", "token already rotated")
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("rotating refresh token: %w", err)
	}
	return pair, nil
}

func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.userRepo.SetRefreshToken(ctx, userID, nil, nil)
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) issueTokens(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	pair, hash, refreshExpires, err := s.newTokenPair(userID)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SetRefreshToken(ctx, userID, &hash, &refreshExpires); err != nil {
		return nil, fmt.Errorf("storing refresh token: %w", err)
	}
	return pair, nil
}

// newTokenPair mints an access token and a refresh token. The caller stores
// the returned refresh hash and expiry.
func (s *AuthService) newTokenPair(userID uuid.UUID) (*TokenPair, string, time.Time, error) {
	access, expiresAt, err := s.tokens.Issue(userID)
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("generating token: %w", err)
	}

	refresh, hash, err := newRefreshToken()
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("generating refresh token: %w", err)
	}

	pair := &TokenPair{Token: access, RefreshToken: refresh, ExpiresAt: expiresAt}
	return pair, hash, time.Now().Add(s.refreshTTL), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
