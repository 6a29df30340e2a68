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

type DonorRepository interface {
	Create(ctx context.Context, donor *domain.Donor) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Donor, error)
	GetByPhoneVariants(ctx context.Context, variants []string) (*domain.Donor, error)
	GetByNameInsensitive(ctx context.Context, name string) (*domain.Donor, error)
	Update(ctx context.Context, donor *domain.Donor) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params domain.PaginationParams, search string, bloodGroup *domain.BloodGroup) ([]domain.Donor, int64, error)
	FindEligible(ctx context.Context, group domain.BloodGroup, limit int) ([]domain.Donor, error)
	StampDonation(ctx context.Context, id uuid.UUID, at time.Time) error
	CountAvailable(ctx context.Context) (int64, error)
	ExistsByPhone(ctx context.Context, normalized string) (bool, error)
}

type donorRepository struct {
	db *sqlx.DB
}

func NewDonorRepository(db *sqlx.DB) DonorRepository {
	return &donorRepository{db: db}
}

func (r *donorRepository) Create(ctx context.Context, donor *domain.Donor) error {
	query := `
		INSERT INTO donors (id, full_name, phone, blood_group, email, city, date_of_birth, last_donation_at, is_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		donor.ID, donor.FullName, donor.Phone, donor.BloodGroup, donor.Email,
		donor.City, donor.DateOfBirth, donor.LastDonationAt, donor.IsAvailable,
	).Scan(&donor.CreatedAt, &donor.UpdatedAt)
}

func (r *donorRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Donor, error) {
	var donor domain.Donor
	query := `SELECT * FROM donors WHERE id = $1 AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &donor, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &donor, nil
}

// GetByPhoneVariants matches on digits only so that stored numbers with or
// without a country prefix still resolve against any of the submitted
// variants. Newest profile wins when several share a number.
func (r *donorRepository) GetByPhoneVariants(ctx context.Context, variants []string) (*domain.Donor, error) {
	if len(variants) == 0 {
		return nil, nil
	}

	var donor domain.Donor
	query := `
		SELECT * FROM donors
		WHERE regexp_replace(phone, '[^0-9]', '', 'g') = ANY($1)
		  AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1`

	err := r.db.GetContext(ctx, &donor, query, pq.Array(variants))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &donor, nil
}

func (r *donorRepository) GetByNameInsensitive(ctx context.Context, name string) (*domain.Donor, error) {
	var donor domain.Donor
	query := `
		SELECT * FROM donors
		WHERE LOWER(full_name) = LOWER($1) AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1`

	err := r.db.GetContext(ctx, &donor, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &donor, nil
}

func (r *donorRepository) Update(ctx context.Context, donor *domain.Donor) error {
	query := `
		UPDATE donors
		SET full_name = $2, phone = $3, blood_group = $4, email = $5, city = $6,
		    date_of_birth = $7, last_donation_at = $8, is_available = $9, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		donor.ID, donor.FullName, donor.Phone, donor.BloodGroup, donor.Email,
		donor.City, donor.DateOfBirth, donor.LastDonationAt, donor.IsAvailable,
	).Scan(&donor.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrDonorNotFound
	}
	return err
}

func (r *donorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE donors SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *donorRepository) List(ctx context.Context, params domain.PaginationParams, search string, bloodGroup *domain.BloodGroup) ([]domain.Donor, int64, error) {
	params.Validate()

	where := ` WHERE deleted_at IS NULL`
	args := []interface{}{}
	if search != "" {
		args = append(args, "%"+search+"%")
		where += fmt.Sprintf(` AND (full_name ILIKE $%d OR phone ILIKE $%d OR city ILIKE $%d)`, len(args), len(args), len(args))
	}
	if bloodGroup != nil {
		args = append(args, *bloodGroup)
		where += fmt.Sprintf(` AND blood_group = $%d`, len(args))
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM donors`+where, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT * FROM donors%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, params.PageSize, params.Offset())

	var donors []domain.Donor
	err := r.db.SelectContext(ctx, &donors, query, args...)
	return donors, total, err
}

// FindEligible returns available donors of the given group who are past the
// 90-day donation gap, most recently registered first, for invite fan-out.
func (r *donorRepository) FindEligible(ctx context.Context, group domain.BloodGroup, limit int) ([]domain.Donor, error) {
	query := `
		SELECT * FROM donors
		WHERE blood_group = $1
		  AND is_available = TRUE
		  AND (last_donation_at IS NULL OR last_donation_at < NOW() - INTERVAL '90 days')
		  AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2`

	var donors []domain.Donor
	err := r.db.SelectContext(ctx, &donors, query, group, limit)
	return donors, err
}

func (r *donorRepository) StampDonation(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE donors SET last_donation_at = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, at)
	return err
}

func (r *donorRepository) CountAvailable(ctx context.Context) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM donors WHERE is_available = TRUE AND deleted_at IS NULL`
	err := r.db.GetContext(ctx, &count, query)
	return count, err
}

func (r *donorRepository) ExistsByPhone(ctx context.Context, normalized string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS(
			SELECT 1 FROM donors
			WHERE regexp_replace(phone, '[^0-9]', '', 'g') = $1 AND deleted_at IS NULL
		)`
	err := r.db.GetContext(ctx, &exists, query, normalized)
	return exists, err
}
