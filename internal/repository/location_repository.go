package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
)

type LocationRepository interface {
	// Create inserts the share and emits a change-feed notification on the
	// given channel inside the same transaction, so watchers never see an
	// ID they cannot read back.
	Create(ctx context.Context, loc *domain.DonorLocation, channel string) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.DonorLocation, error)
	GetLatestForDonor(ctx context.Context, donorID *uuid.UUID, phoneVariants []string, cutoff time.Time) (*domain.DonorLocation, error)
	ListByRequest(ctx context.Context, requestID uuid.UUID, cutoff time.Time) ([]domain.DonorLocation, error)
	ListByHospital(ctx context.Context, hospitalID uuid.UUID, cutoff time.Time) ([]domain.DonorLocation, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteForDonor(ctx context.Context, donorID *uuid.UUID, phoneVariants []string) (int64, error)
	CountLive(ctx context.Context, cutoff time.Time) (int64, error)
}

type locationRepository struct {
	db *sqlx.DB
}

func NewLocationRepository(db *sqlx.DB) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) Create(ctx context.Context, loc *domain.DonorLocation, channel string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO donor_locations (id, donor_id, request_id, donor_name, phone, latitude, longitude, address, token, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`

	err = tx.QueryRowxContext(ctx, query,
		loc.ID, loc.DonorID, loc.RequestID, loc.DonorName, loc.Phone,
		loc.Latitude, loc.Longitude, loc.Address, loc.Token, loc.RecordedAt,
	).Scan(&loc.CreatedAt)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `SELECT pg_notify($1, $2)`, channel, loc.ID.String()); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *locationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.DonorLocation, error) {
	var loc domain.DonorLocation
	query := `SELECT * FROM donor_locations WHERE id = $1`

	err := r.db.GetContext(ctx, &loc, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// GetLatestForDonor returns the donor's newest share not older than cutoff,
// matching by donor ID when known and by phone digits otherwise. Recording
// time falls back to insert time when the client sent none.
func (r *locationRepository) GetLatestForDonor(ctx context.Context, donorID *uuid.UUID, phoneVariants []string, cutoff time.Time) (*domain.DonorLocation, error) {
	if donorID == nil && len(phoneVariants) == 0 {
		return nil, nil
	}

	var loc domain.DonorLocation
	query := `
		SELECT * FROM donor_locations
		WHERE (($1::uuid IS NOT NULL AND donor_id = $1)
		    OR regexp_replace(phone, '[^0-9]', '', 'g') = ANY($2))
		  AND COALESCE(recorded_at, created_at) >= $3
		ORDER BY COALESCE(recorded_at, created_at) DESC
		LIMIT 1`

	err := r.db.GetContext(ctx, &loc, query, donorID, pq.Array(phoneVariants), cutoff)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *locationRepository) ListByRequest(ctx context.Context, requestID uuid.UUID, cutoff time.Time) ([]domain.DonorLocation, error) {
	query := `
		SELECT DISTINCT ON (phone) * FROM donor_locations
		WHERE request_id = $1 AND COALESCE(recorded_at, created_at) >= $2
		ORDER BY phone, COALESCE(recorded_at, created_at) DESC`

	var locations []domain.DonorLocation
	err := r.db.SelectContext(ctx, &locations, query, requestID, cutoff)
	return locations, err
}

func (r *locationRepository) ListByHospital(ctx context.Context, hospitalID uuid.UUID, cutoff time.Time) ([]domain.DonorLocation, error) {
	query := `
		SELECT DISTINCT ON (dl.phone) dl.* FROM donor_locations dl
		JOIN blood_requests br ON br.id = dl.request_id
		WHERE br.hospital_id = $1 AND COALESCE(dl.recorded_at, dl.created_at) >= $2
		ORDER BY dl.phone, COALESCE(dl.recorded_at, dl.created_at) DESC`

	var locations []domain.DonorLocation
	err := r.db.SelectContext(ctx, &locations, query, hospitalID, cutoff)
	return locations, err
}

func (r *locationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM donor_locations WHERE id = $1`, id)
	return err
}

// DeleteForDonor removes every share attributable to the donor. The engine
// calls this once a donation is confirmed so the donor drops off live maps.
func (r *locationRepository) DeleteForDonor(ctx context.Context, donorID *uuid.UUID, phoneVariants []string) (int64, error) {
	if donorID == nil && len(phoneVariants) == 0 {
		return 0, nil
	}

	query := `
		DELETE FROM donor_locations
		WHERE ($1::uuid IS NOT NULL AND donor_id = $1)
		   OR regexp_replace(phone, '[^0-9]', '', 'g') = ANY($2)`

	res, err := r.db.ExecContext(ctx, query, donorID, pq.Array(phoneVariants))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *locationRepository) CountLive(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	query := `
		SELECT COUNT(DISTINCT phone) FROM donor_locations
		WHERE COALESCE(recorded_at, created_at) >= $1`
	err := r.db.GetContext(ctx, &count, query, cutoff)
	return count, err
}
