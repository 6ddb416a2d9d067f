package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/habyx/internal/domain"
	"github.com/vedran77/habyx/internal/repository"
)

type ApplicationRepo struct {
	pool *pgxpool.Pool
}

func NewApplicationRepo(pool *pgxpool.Pool) *ApplicationRepo {
	return &ApplicationRepo{pool: pool}
}

func (r *ApplicationRepo) Create(ctx context.Context, app *domain.HousingApplication) error {
	query := `
		INSERT INTO housing_applications (id, listing_id, applicant_id, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query,
		app.ID, app.ListingID, app.ApplicantID, app.Message, app.Status, app.CreatedAt,
	)
	return mapErr(err)
}

func (r *ApplicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.HousingApplication, error) {
	query := `
		SELECT id, listing_id, applicant_id, message, status, created_at
		FROM housing_applications
		WHERE id = $1`
	var app domain.HousingApplication
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&app.ID, &app.ListingID, &app.ApplicantID, &app.Message, &app.Status, &app.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepo) ListByListing(ctx context.Context, listingID uuid.UUID) ([]domain.HousingApplication, error) {
	query := `
		SELECT a.id, a.listing_id, a.applicant_id, a.message, a.status, a.created_at,
			u.id, u.email, u.first_name, u.last_name, u.profile_image_url
		FROM housing_applications a
		JOIN users u ON a.applicant_id = u.id
		WHERE a.listing_id = $1
		ORDER BY a.created_at ASC`

	rows, err := r.pool.Query(ctx, query, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []domain.HousingApplication
	for rows.Next() {
		var (
			app       domain.HousingApplication
			applicant domain.UserSummary
		)
		if err := rows.Scan(
			&app.ID, &app.ListingID, &app.ApplicantID, &app.Message, &app.Status, &app.CreatedAt,
			&applicant.ID, &applicant.Email, &applicant.FirstName, &applicant.LastName, &applicant.ProfileImageURL,
		); err != nil {
			return nil, err
		}
		app.Applicant = &applicant
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func (r *ApplicationRepo) ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]domain.HousingApplication, error) {
	query := `
		SELECT a.id, a.listing_id, a.applicant_id, a.message, a.status, a.created_at, l.title
		FROM housing_applications a
		JOIN housing_listings l ON a.listing_id = l.id
		WHERE a.applicant_id = $1
		ORDER BY a.created_at DESC`

	rows, err := r.pool.Query(ctx, query, applicantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []domain.HousingApplication
	for rows.Next() {
		var app domain.HousingApplication
		if err := rows.Scan(
			&app.ID, &app.ListingID, &app.ApplicantID, &app.Message, &app.Status, &app.CreatedAt, &app.ListingTitle,
		); err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func (r *ApplicationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ApplicationStatus) error {
	query := `UPDATE housing_applications SET status = $1 WHERE id = $2 AND status = $3`
	tag, err := r.pool.Exec(ctx, query, status, id, domain.ApplicationPending)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrStaleState
	}
	return nil
}
