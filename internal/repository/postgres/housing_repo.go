package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/habyx/internal/domain"
)

const listingColumns = `id, owner_id, title, description, price, location, bedrooms, bathrooms,
	is_available, available_from, has_wifi, has_parking, is_furnished, utilities_included,
	image_urls, created_at, updated_at`

type HousingRepo struct {
	pool *pgxpool.Pool
}

func NewHousingRepo(pool *pgxpool.Pool) *HousingRepo {
	return &HousingRepo{pool: pool}
}

func (r *HousingRepo) Create(ctx context.Context, l *domain.HousingListing) error {
	query := `
		INSERT INTO housing_listings (` + listingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	images := l.ImageURLs
	if images == nil {
		images = []string{}
	}

	_, err := r.pool.Exec(ctx, query,
		l.ID, l.OwnerID, l.Title, l.Description, l.Price, l.Location, l.Bedrooms, l.Bathrooms,
		l.IsAvailable, l.AvailableFrom, l.HasWifi, l.HasParking, l.IsFurnished, l.UtilitiesIncluded,
		images, l.CreatedAt, l.UpdatedAt,
	)
	return mapErr(err)
}

func (r *HousingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.HousingListing, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+listingColumns+` FROM housing_listings WHERE id = $1`, id)
	l, err := scanListing(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *HousingRepo) List(ctx context.Context) ([]domain.HousingListing, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+listingColumns+` FROM housing_listings ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []domain.HousingListing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}
	return listings, rows.Err()
}

func (r *HousingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM housing_listings WHERE id = $1`, id)
	return err
}

func scanListing(row pgx.Row) (*domain.HousingListing, error) {
	var l domain.HousingListing
	err := row.Scan(
		&l.ID, &l.OwnerID, &l.Title, &l.Description, &l.Price, &l.Location, &l.Bedrooms, &l.Bathrooms,
		&l.IsAvailable, &l.AvailableFrom, &l.HasWifi, &l.HasParking, &l.IsFurnished, &l.UtilitiesIncluded,
		&l.ImageURLs, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
