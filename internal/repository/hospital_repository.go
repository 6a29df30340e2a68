package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
)

type HospitalRepository interface {
	Create(ctx context.Context, hospital *domain.Hospital) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Hospital, error)
	GetByName(ctx context.Context, name string) (*domain.Hospital, error)
	Update(ctx context.Context, hospital *domain.Hospital) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params domain.PaginationParams, search string) ([]domain.Hospital, int64, error)
	SetVerified(ctx context.Context, id uuid.UUID, verified bool) error
	// EnsureWalkIn returns the placeholder hospital that owns requests
	// opened on behalf of walk-in donors, creating it on first use.
	EnsureWalkIn(ctx context.Context) (*domain.Hospital, error)
}

type hospitalRepository struct {
	db *sqlx.DB
}

func NewHospitalRepository(db *sqlx.DB) HospitalRepository {
	return &hospitalRepository{db: db}
}

func (r *hospitalRepository) Create(ctx context.Context, hospital *domain.Hospital) error {
	query := `
		INSERT INTO hospitals (id, name, address, city, phone, email, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		hospital.ID, hospital.Name, hospital.Address, hospital.City, hospital.Phone,
		hospital.Email, hospital.IsVerified,
	).Scan(&hospital.CreatedAt, &hospital.UpdatedAt)
}

func (r *hospitalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Hospital, error) {
	var hospital domain.Hospital
	query := `SELECT * FROM hospitals WHERE id = $1 AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &hospital, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &hospital, nil
}

func (r *hospitalRepository) GetByName(ctx context.Context, name string) (*domain.Hospital, error) {
	var hospital domain.Hospital
	query := `SELECT * FROM hospitals WHERE LOWER(name) = LOWER($1) AND deleted_at IS NULL LIMIT 1`

	err := r.db.GetContext(ctx, &hospital, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &hospital, nil
}

func (r *hospitalRepository) Update(ctx context.Context, hospital *domain.Hospital) error {
	query := `
		UPDATE hospitals
		SET name = $2, address = $3, city = $4, phone = $5, email = $6, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		hospital.ID, hospital.Name, hospital.Address, hospital.City, hospital.Phone,
		hospital.Email,
	).Scan(&hospital.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrHospitalNotFound
	}
	return err
}

func (r *hospitalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE hospitals SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *hospitalRepository) List(ctx context.Context, params domain.PaginationParams, search string) ([]domain.Hospital, int64, error) {
	params.Validate()

	where := ` WHERE deleted_at IS NULL`
	args := []interface{}{}
	if search != "" {
		args = append(args, "%"+search+"%")
		where += ` AND (name ILIKE $1 OR city ILIKE $1)`
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM hospitals`+where, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT * FROM hospitals%s
		ORDER BY name ASC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, params.PageSize, params.Offset())

	var hospitals []domain.Hospital
	err := r.db.SelectContext(ctx, &hospitals, query, args...)
	return hospitals, total, err
}

func (r *hospitalRepository) SetVerified(ctx context.Context, id uuid.UUID, verified bool) error {
	query := `UPDATE hospitals SET is_verified = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, id, verified)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrHospitalNotFound
	}
	return nil
}

func (r *hospitalRepository) EnsureWalkIn(ctx context.Context) (*domain.Hospital, error) {
	existing, err := r.GetByName(ctx, domain.WalkInHospitalName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	hospital := &domain.Hospital{
		ID:         uuid.New(),
		Name:       domain.WalkInHospitalName,
		IsVerified: true,
	}
	if err := r.Create(ctx, hospital); err != nil {
		// Lost a race with another creator: read theirs back.
		if raced, getErr := r.GetByName(ctx, domain.WalkInHospitalName); getErr == nil && raced != nil {
			return raced, nil
		}
		return nil, err
	}
	return hospital, nil
}
