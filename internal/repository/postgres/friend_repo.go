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

const friendJoinedSelect = `
	SELECT f.id, f.requester_id, f.addressee_id, f.status, f.created_at, f.updated_at,
		r.id, r.email, r.first_name, r.last_name, r.profile_image_url,
		a.id, a.email, a.first_name, a.last_name, a.profile_image_url
	FROM friends f
	JOIN users r ON f.requester_id = r.id
	JOIN users a ON f.addressee_id = a.id`

type FriendRepo struct {
	pool *pgxpool.Pool
}

func NewFriendRepo(pool *pgxpool.Pool) *FriendRepo {
	return &FriendRepo{pool: pool}
}

func (r *FriendRepo) Create(ctx context.Context, f *domain.Friend) error {
	query := `
		INSERT INTO friends (id, requester_id, addressee_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query, f.ID, f.RequesterID, f.AddresseeID, f.Status, f.CreatedAt)
	return mapErr(err)
}

func (r *FriendRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Friend, error) {
	query := `
		SELECT id, requester_id, addressee_id, status, created_at, updated_at
		FROM friends
		WHERE id = $1`
	return r.scanFriend(ctx, query, id)
}

func (r *FriendRepo) GetByPair(ctx context.Context, a, b uuid.UUID) (*domain.Friend, error) {
	query := `
		SELECT id, requester_id, addressee_id, status, created_at, updated_at
		FROM friends
		WHERE (requester_id = $1 AND addressee_id = $2)
			OR (requester_id = $2 AND addressee_id = $1)`
	return r.scanFriend(ctx, query, a, b)
}

func (r *FriendRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.FriendStatus, at time.Time) error {
	query := `UPDATE friends SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	tag, err := r.pool.Exec(ctx, query, status, at, id, domain.FriendPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrStaleState
	}
	return nil
}

func (r *FriendRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM friends WHERE id = $1`, id)
	return err
}

func (r *FriendRepo) ListAccepted(ctx context.Context, userID uuid.UUID) ([]domain.Friend, error) {
	query := friendJoinedSelect + `
		WHERE (f.requester_id = $1 OR f.addressee_id = $1) AND f.status = $2
		ORDER BY f.updated_at DESC NULLS LAST, f.created_at DESC`
	return r.listJoined(ctx, query, userID, domain.FriendAccepted)
}

func (r *FriendRepo) ListPending(ctx context.Context, addresseeID uuid.UUID) ([]domain.Friend, error) {
	query := friendJoinedSelect + `
		WHERE f.addressee_id = $1 AND f.status = $2
		ORDER BY f.created_at DESC`
	return r.listJoined(ctx, query, addresseeID, domain.FriendPending)
}

func (r *FriendRepo) scanFriend(ctx context.Context, query string, args ...any) (*domain.Friend, error) {
	var f domain.Friend
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&f.ID, &f.RequesterID, &f.AddresseeID, &f.Status, &f.CreatedAt, &f.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FriendRepo) listJoined(ctx context.Context, query string, args ...any) ([]domain.Friend, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var friends []domain.Friend
	for rows.Next() {
		var (
			f         domain.Friend
			req, addr domain.UserSummary
		)
		if err := rows.Scan(
			&f.ID, &f.RequesterID, &f.AddresseeID, &f.Status, &f.CreatedAt, &f.UpdatedAt,
			&req.ID, &req.Email, &req.FirstName, &req.LastName, &req.ProfileImageURL,
			&addr.ID, &addr.Email, &addr.FirstName, &addr.LastName, &addr.ProfileImageURL,
		); err != nil {
			return nil, err
		}
		f.Requester = &req
		f.Addressee = &addr
		friends = append(friends, f)
	}
	return friends, rows.Err()
}
