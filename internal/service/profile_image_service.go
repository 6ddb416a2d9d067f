package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/vedran77/habyx/internal/repository"
)

var (
	ErrEmptyFile    = errors.New("no file uploaded")
	ErrNotImage     = errors.New("file must be an image")
	ErrFileTooLarge = errors.New("file is too large")
)

// BlobStore stores image objects and hands back their public URL.
type BlobStore interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error)
	// Delete removes the object that url points to.
	Delete(ctx context.Context, url string) error
}

type ProfileImageService struct {
	userRepo repository.UserRepository
	blobs    BlobStore
	maxBytes int64
}

func NewProfileImageService(userRepo repository.UserRepository, blobs BlobStore, maxBytes int64) *ProfileImageService {
	return &ProfileImageService{
		userRepo: userRepo,
		blobs:    blobs,
		maxBytes: maxBytes,
	}
}

type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Upload stores a new profile image and replaces the user's previous one.
func (s *ProfileImageService) Upload(ctx context.Context, userID uuid.UUID, in ImageUpload) (string, error) {
	if in.Size <= 0 || in.Body == nil {
		return "", ErrEmptyFile
	}
	if !strings.HasPrefix(strings.ToLower(in.ContentType), "image/") {
		return "", ErrNotImage
	}
	if s.maxBytes > 0 && in.Size > s.maxBytes {
		return "", ErrFileTooLarge
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}

	name := fmt.Sprintf("profile_%s_%s%s", userID, uuid.New(), strings.ToLower(filepath.Ext(in.Filename)))
	url, err := s.blobs.Upload(ctx, name, in.ContentType, in.Body)
	if err != nil {
		return "", fmt.Errorf("uploading image: %w", err)
	}

	if user.ProfileImageURL != nil && *user.ProfileImageURL != "" {
		if err := s.blobs.Delete(ctx, *user.ProfileImageURL); err != nil {
			slog.WarnContext(ctx, "deleting previous profile image failed",
				"user_id", userID, "url", *user.ProfileImageURL, "err", err)
		}
	}

	if err := s.userRepo.SetProfileImage(ctx, userID, &url); err != nil {
		if delErr := s.blobs.Delete(ctx, url); delErr != nil {
			slog.WarnContext(ctx, "cleaning up orphaned profile image failed", "url", url, "err", delErr)
		}
		return "", fmt.Errorf("saving profile image: %w", err)
	}

	return url, nil
}

// Delete removes the user's profile image, if any.
func (s *ProfileImageService) Delete(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.ProfileImageURL == nil || *user.ProfileImageURL == "" {
		return nil
	}

	if err := s.blobs.Delete(ctx, *user.ProfileImageURL); err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}
	return s.userRepo.SetProfileImage(ctx, userID, nil)
}
