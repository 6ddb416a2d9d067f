package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/habyx/internal/domain"
	"github.com/vedran77/habyx/internal/repository"
)

const userColumns = `id, email, first_name, last_name, password_hash, profile_image_url,
	email_verified, refresh_token_hash, refresh_token_expires_at, created_at, updated_at, last_login_at`

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, first_name, last_name, password_hash, email_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Email, user.FirstName, user.LastName,
		user.PasswordHash, user.EmailVerified, user.CreatedAt, user.UpdatedAt,
	)
	return mapErr(err)
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.scanUser(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(ctx, "SELECT "+userColumns+" FROM users WHERE LOWER(email) = LOWER($1)", email)
}

func (r *UserRepo) GetByRefreshTokenHash(ctx context.Context, hash string) (*domain.User, error) {
	return r.scanUser(ctx, "SELECT "+userColumns+" FROM users WHERE refresh_token_hash = $1", hash)
}

func (r *UserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_login_at = $1 WHERE id = $2`, at, id)
	return err
}

func (r *UserRepo) SetRefreshToken(ctx context.Context, id uuid.UUID, hash *string, expiresAt *time.Time) error {
	query := `UPDATE users SET refresh_token_hash = $1, refresh_token_expires_at = $2 WHERE id = $3`
	_, err := r.pool.Exec(ctx, query, hash, expiresAt, id)
	return mapErr(err)
}

func (r *UserRepo) RotateRefreshToken(ctx context.Context, id uuid.UUID, oldHash, newHash string, expiresAt time.Time) error {
	query := `UPDATE users SET refresh_token_hash = $1, refresh_token_expires_at = $2
		WHERE id = $3 AND refresh_token_hash = $4`
	tag, err := r.pool.Exec(ctx, query, newHash, expiresAt, id, oldHash)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrStaleState
	}
	return nil
}

func (r *UserRepo) SetProfileImage(ctx context.Context, id uuid.UUID, url *string) error {
	query := `UPDATE users SET profile_image_url = $1, updated_at = $2 WHERE id = $3`
	_, err := r.pool.Exec(ctx, query, url, time.Now(), id)
	return err
}

func (r *UserRepo) scanUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName,
		&u.PasswordHash, &u.ProfileImageURL, &u.EmailVerified,
		&u.RefreshTokenHash, &u.RefreshTokenExpiresAt,
		&u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
