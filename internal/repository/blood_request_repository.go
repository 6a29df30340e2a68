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

// BloodGroupDemand is one row of the per-group demand aggregate.
type BloodGroupDemand struct {
	BloodGroup   domain.BloodGroup `db:"blood_group" json:"blood_group"`
	OpenRequests int64             `db:"open_requests" json:"open_requests"`
	UnitsLeft    int64             `db:"units_left" json:"units_left"`
}

type BloodRequestRepository interface {
	Create(ctx context.Context, req *domain.BloodRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.BloodRequest, error)
	Update(ctx context.Context, req *domain.BloodRequest) error
	List(ctx context.Context, hospitalID *uuid.UUID, status *domain.RequestStatus, bloodGroup *domain.BloodGroup, params domain.PaginationParams) ([]domain.BloodRequest, int64, error)
	FindNewestActiveByBloodGroup(ctx context.Context, group domain.BloodGroup) (*domain.BloodRequest, error)

	// ReserveUnit is the single linearization point of the fulfillment
	// pipeline: one conditional increment, guarded by status, capacity and
	// (for tokenized submissions) membership in the active token set. When
	// the increment reaches the quota the same statement promotes the
	// request to fulfilled and clears its tokens. A non-applied result
	// means the guard failed and nothing was written.
	ReserveUnit(ctx context.Context, id uuid.UUID, token domain.SubmissionToken) (*domain.ReservationResult, error)

	AppendToken(ctx context.Context, id uuid.UUID, token string) (bool, error)
	MarkCancelled(ctx context.Context, id uuid.UUID) (bool, error)
	MarkExpired(ctx context.Context, id uuid.UUID) (bool, error)
	ExpireOverdue(ctx context.Context) ([]domain.BloodRequest, error)

	CountByStatus(ctx context.Context, hospitalID *uuid.UUID, status domain.RequestStatus) (int64, error)
	OutstandingUnits(ctx context.Context, hospitalID *uuid.UUID) (needed int64, confirmed int64, err error)
	DemandByBloodGroup(ctx context.Context) ([]BloodGroupDemand, error)
}

type bloodRequestRepository struct {
	db *sqlx.DB
}

func NewBloodRequestRepository(db *sqlx.DB) BloodRequestRepository {
	return &bloodRequestRepository{db: db}
}

func (r *bloodRequestRepository) Create(ctx context.Context, req *domain.BloodRequest) error {
	query := `
		INSERT INTO blood_requests (id, hospital_id, blood_group, quantity, confirmed_units, status, urgency, notes, required_by, active_tokens, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		req.ID, req.HospitalID, req.BloodGroup, req.Quantity, req.ConfirmedUnits,
		req.Status, req.Urgency, req.Notes, req.RequiredBy, req.ActiveTokens, req.CreatedBy,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
}

func (r *bloodRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.BloodRequest, error) {
	var req domain.BloodRequest
	query := `SELECT * FROM blood_requests WHERE id = $1`

	err := r.db.GetContext(ctx, &req, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *bloodRequestRepository) Update(ctx context.Context, req *domain.BloodRequest) error {
	query := `
		UPDATE blood_requests
		SET quantity = $2, urgency = $3, notes = $4, required_by = $5, updated_at = NOW()
		WHERE id = $1 AND status = 'active'
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		req.ID, req.Quantity, req.Urgency, req.Notes, req.RequiredBy,
	).Scan(&req.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrRequestClosed
	}
	return err
}

func (r *bloodRequestRepository) List(ctx context.Context, hospitalID *uuid.UUID, status *domain.RequestStatus, bloodGroup *domain.BloodGroup, params domain.PaginationParams) ([]domain.BloodRequest, int64, error) {
	params.Validate()

	where := ""
	args := []interface{}{}
	if hospitalID != nil {
		args = append(args, *hospitalID)
		where += fmt.Sprintf(" AND hospital_id = $%d", len(args))
	}
	if status != nil {
		args = append(args, *status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if bloodGroup != nil {
		args = append(args, *bloodGroup)
		where += fmt.Sprintf(" AND blood_group = $%d", len(args))
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM blood_requests WHERE 1=1` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT * FROM blood_requests
		WHERE 1=1%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, params.PageSize, params.Offset())

	var requests []domain.BloodRequest
	err := r.db.SelectContext(ctx, &requests, query, args...)
	return requests, total, err
}

func (r *bloodRequestRepository) FindNewestActiveByBloodGroup(ctx context.Context, group domain.BloodGroup) (*domain.BloodRequest, error) {
	var req domain.BloodRequest
	query := `
		SELECT * FROM blood_requests
		WHERE status = 'active' AND blood_group = $1
		ORDER BY created_at DESC
		LIMIT 1`

	err := r.db.GetContext(ctx, &req, query, group)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *bloodRequestRepository) ReserveUnit(ctx context.Context, id uuid.UUID, token domain.SubmissionToken) (*domain.ReservationResult, error) {
	query := `
		UPDATE blood_requests SET
			confirmed_units = confirmed_units + 1,
			status          = CASE WHEN confirmed_units + 1 >= quantity THEN 'fulfilled' ELSE status END,
			fulfilled_at    = CASE WHEN confirmed_units + 1 >= quantity THEN NOW() ELSE fulfilled_at END,
			active_tokens   = CASE WHEN confirmed_units + 1 >= quantity THEN '{}' ELSE active_tokens END,
			updated_at      = NOW()
		WHERE id = $1
		  AND status = 'active'
		  AND confirmed_units < quantity
		  AND ($2 OR $3 = ANY(active_tokens))
		RETURNING confirmed_units, status`

	result := &domain.ReservationResult{}
	err := r.db.QueryRowxContext(ctx, query, id, token.IsDirect(), token.Token()).
		Scan(&result.ConfirmedUnits, &result.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.ReservationResult{Applied: false}, nil
	}
	if err != nil {
		return nil, err
	}
	result.Applied = true
	return result, nil
}

func (r *bloodRequestRepository) AppendToken(ctx context.Context, id uuid.UUID, token string) (bool, error) {
	query := `
		UPDATE blood_requests
		SET active_tokens = array_append(active_tokens, $2), updated_at = NOW()
		WHERE id = $1 AND status = 'active'`

	res, err := r.db.ExecContext(ctx, query, id, token)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *bloodRequestRepository) MarkCancelled(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.transition(ctx, id, domain.RequestCancelled)
}

func (r *bloodRequestRepository) MarkExpired(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.transition(ctx, id, domain.RequestExpired)
}

// transition moves an active request to a terminal state and empties its
// token set. The counter is left untouched: terminal states freeze it.
func (r *bloodRequestRepository) transition(ctx context.Context, id uuid.UUID, status domain.RequestStatus) (bool, error) {
	query := `
		UPDATE blood_requests
		SET status = $2, active_tokens = '{}', updated_at = NOW()
		WHERE id = $1 AND status = 'active'`

	res, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *bloodRequestRepository) ExpireOverdue(ctx context.Context) ([]domain.BloodRequest, error) {
	query := `
		UPDATE blood_requests
		SET status = 'expired', active_tokens = '{}', updated_at = NOW()
		WHERE status = 'active' AND required_by < NOW()
		RETURNING *`

	var expired []domain.BloodRequest
	err := r.db.SelectContext(ctx, &expired, query)
	return expired, err
}

func (r *bloodRequestRepository) CountByStatus(ctx context.Context, hospitalID *uuid.UUID, status domain.RequestStatus) (int64, error) {
	var count int64
	if hospitalID != nil {
		query := `SELECT COUNT(*) FROM blood_requests WHERE hospital_id = $1 AND status = $2`
		err := r.db.GetContext(ctx, &count, query, *hospitalID, status)
		return count, err
	}
	query := `SELECT COUNT(*) FROM blood_requests WHERE status = $1`
	err := r.db.GetContext(ctx, &count, query, status)
	return count, err
}

func (r *bloodRequestRepository) OutstandingUnits(ctx context.Context, hospitalID *uuid.UUID) (int64, int64, error) {
	row := struct {
		Needed    int64 `db:"needed"`
		Confirmed int64 `db:"confirmed"`
	}{}

	if hospitalID != nil {
		query := `
			SELECT COALESCE(SUM(quantity), 0) AS needed, COALESCE(SUM(confirmed_units), 0) AS confirmed
			FROM blood_requests WHERE hospital_id = $1 AND status = 'active'`
		if err := r.db.GetContext(ctx, &row, query, *hospitalID); err != nil {
			return 0, 0, err
		}
		return row.Needed, row.Confirmed, nil
	}

	query := `
		SELECT COALESCE(SUM(quantity), 0) AS needed, COALESCE(SUM(confirmed_units), 0) AS confirmed
		FROM blood_requests WHERE status = 'active'`
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return 0, 0, err
	}
	return row.Needed, row.Confirmed, nil
}

func (r *bloodRequestRepository) DemandByBloodGroup(ctx context.Context) ([]BloodGroupDemand, error) {
	query := `
		SELECT blood_group,
		       COUNT(*) AS open_requests,
		       COALESCE(SUM(quantity - confirmed_units), 0) AS units_left
		FROM blood_requests
		WHERE status = 'active'
		GROUP BY blood_group
		ORDER BY units_left DESC`

	var demand []BloodGroupDemand
	err := r.db.SelectContext(ctx, &demand, query)
	return demand, err
}
