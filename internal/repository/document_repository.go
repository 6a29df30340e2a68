package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.VerificationDocument) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.VerificationDocument, error)
	ListByHospital(ctx context.Context, hospitalID uuid.UUID) ([]domain.VerificationDocument, error)
	ListPending(ctx context.Context, params domain.PaginationParams) ([]domain.VerificationDocument, int64, error)
	SetStatus(ctx context.Context, id uuid.UUID, status domain.DocumentStatus, reviewedBy uuid.UUID, reviewedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type documentRepository struct {
	db *sqlx.DB
}

func NewDocumentRepository(db *sqlx.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *domain.VerificationDocument) error {
	query := `
		INSERT INTO verification_documents (id, hospital_id, uploaded_by, file_name, file_size, mime_type, storage_path, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		doc.ID, doc.HospitalID, doc.UploadedBy, doc.FileName, doc.FileSize,
		doc.MimeType, doc.StoragePath, doc.Status,
	).Scan(&doc.CreatedAt)
}

func (r *documentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.VerificationDocument, error) {
	var doc domain.VerificationDocument
	query := `SELECT * FROM verification_documents WHERE id = $1`

	err := r.db.GetContext(ctx, &doc, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) ListByHospital(ctx context.Context, hospitalID uuid.UUID) ([]domain.VerificationDocument, error) {
	query := `SELECT * FROM verification_documents WHERE hospital_id = $1 ORDER BY created_at DESC`

	var docs []domain.VerificationDocument
	err := r.db.SelectContext(ctx, &docs, query, hospitalID)
	return docs, err
}

func (r *documentRepository) ListPending(ctx context.Context, params domain.PaginationParams) ([]domain.VerificationDocument, int64, error) {
	params.Validate()

	var total int64
	countQuery := `SELECT COUNT(*) FROM verification_documents WHERE status = 'pending'`
	if err := r.db.GetContext(ctx, &total, countQuery); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT * FROM verification_documents
		WHERE status = 'pending'
		ORDER BY created_at ASC
		LIMIT $1 OFFSET $2`

	var docs []domain.VerificationDocument
	err := r.db.SelectContext(ctx, &docs, query, params.PageSize, params.Offset())
	return docs, total, err
}

func (r *documentRepository) SetStatus(ctx context.Context, id uuid.UUID, status domain.DocumentStatus, reviewedBy uuid.UUID, reviewedAt time.Time) error {
	query := `
		UPDATE verification_documents
		SET status = $2, reviewed_by = $3, reviewed_at = $4
		WHERE id = $1 AND status = 'pending'`

	res, err := r.db.ExecContext(ctx, query, id, status, reviewedBy, reviewedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *documentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM verification_documents WHERE id = $1`, id)
	return err
}
