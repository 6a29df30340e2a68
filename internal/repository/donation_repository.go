package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
)

type DonationRepository interface {
	Create(ctx context.Context, donation *domain.Donation) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Donation, error)
	// ExistsCompleted reports whether the donor already has a completed
	// donation on record, matched by ID or by phone digits.
	ExistsCompleted(ctx context.Context, donorID *uuid.UUID, phoneVariants []string) (bool, error)
	List(ctx context.Context, hospitalID *uuid.UUID, params domain.PaginationParams) ([]domain.Donation, int64, error)
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]domain.Donation, error)
	CountSince(ctx context.Context, hospitalID *uuid.UUID, since time.Time) (int64, error)
	CountCompleted(ctx context.Context, hospitalID *uuid.UUID) (int64, error)
}

type donationRepository struct {
	db *sqlx.DB
}

func NewDonationRepository(db *sqlx.DB) DonationRepository {
	return &donationRepository{db: db}
}

func (r *donationRepository) Create(ctx context.Context, donation *domain.Donation) error {
	query := `
		INSERT INTO donations (id, donor_id, request_id, hospital_id, donor_name, phone, blood_group, status, latitude, longitude, address, confirmed_by, donated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		donation.ID, donation.DonorID, donation.RequestID, donation.HospitalID,
		donation.DonorName, donation.Phone, donation.BloodGroup, donation.Status,
		donation.Latitude, donation.Longitude, donation.Address, donation.ConfirmedBy,
		donation.DonatedAt,
	).Scan(&donation.CreatedAt)
}

func (r *donationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Donation, error) {
	var donation domain.Donation
	query := `SELECT * FROM donations WHERE id = $1`

	err := r.db.GetContext(ctx, &donation, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *donationRepository) ExistsCompleted(ctx context.Context, donorID *uuid.UUID, phoneVariants []string) (bool, error) {
	if donorID == nil && len(phoneVariants) == 0 {
		return false, nil
	}

	var exists bool
	query := `
		SELECT EXISTS(
			SELECT 1 FROM donations
			WHERE status = 'completed'
			  AND (($1::uuid IS NOT NULL AND donor_id = $1)
			    OR regexp_replace(phone, '[^0-9]', '', 'g') = ANY($2))
		)`

	err := r.db.GetContext(ctx, &exists, query, donorID, pq.Array(phoneVariants))
	return exists, err
}

func (r *donationRepository) List(ctx context.Context, hospitalID *uuid.UUID, params domain.PaginationParams) ([]domain.Donation, int64, error) {
	params.Validate()

	where := ""
	args := []interface{}{}
	if hospitalID != nil {
		args = append(args, *hospitalID)
		where = ` WHERE hospital_id = $1`
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM donations`+where, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT * FROM donations%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, params.PageSize, params.Offset())

	var donations []domain.Donation
	err := r.db.SelectContext(ctx, &donations, query, args...)
	return donations, total, err
}

func (r *donationRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]domain.Donation, error) {
	query := `SELECT * FROM donations WHERE request_id = $1 ORDER BY created_at DESC`

	var donations []domain.Donation
	err := r.db.SelectContext(ctx, &donations, query, requestID)
	return donations, err
}

func (r *donationRepository) CountSince(ctx context.Context, hospitalID *uuid.UUID, since time.Time) (int64, error) {
	var count int64
	if hospitalID != nil {
		query := `SELECT COUNT(*) FROM donations WHERE hospital_id = $1 AND status = 'completed' AND created_at >= $2`
		err := r.db.GetContext(ctx, &count, query, *hospitalID, since)
		return count, err
	}
	query := `SELECT COUNT(*) FROM donations WHERE status = 'completed' AND created_at >= $1`
	err := r.db.GetContext(ctx, &count, query, since)
	return count, err
}

func (r *donationRepository) CountCompleted(ctx context.Context, hospitalID *uuid.UUID) (int64, error) {
	var count int64
	if hospitalID != nil {
		query := `SELECT COUNT(*) FROM donations WHERE hospital_id = $1 AND status = 'completed'`
		err := r.db.GetContext(ctx, &count, query, *hospitalID)
		return count, err
	}
	query := `SELECT COUNT(*) FROM donations WHERE status = 'completed'`
	err := r.db.GetContext(ctx, &count, query)
	return count, err
}
