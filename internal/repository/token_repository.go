package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
)

type TokenRepository interface {
	Create(ctx context.Context, token *domain.ResponseToken) error
	GetByToken(ctx context.Context, token string) (*domain.ResponseToken, error)
	// MarkUsed consumes the token. It reports false when the token was
	// already consumed, which callers treat as a position update rather
	// than a first response.
	MarkUsed(ctx context.Context, token string) (bool, error)
}

type tokenRepository struct {
	db *sqlx.DB
}

func NewTokenRepository(db *sqlx.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, token *domain.ResponseToken) error {
	query := `
		INSERT INTO response_tokens (id, token, donor_id, request_id, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		token.ID, token.Token, token.DonorID, token.RequestID, token.ExpiresAt,
	).Scan(&token.CreatedAt)
}

func (r *tokenRepository) GetByToken(ctx context.Context, token string) (*domain.ResponseToken, error) {
	var rt domain.ResponseToken
	query := `SELECT * FROM response_tokens WHERE token = $1`

	err := r.db.GetContext(ctx, &rt, query, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *tokenRepository) MarkUsed(ctx context.Context, token string) (bool, error) {
	query := `
		UPDATE response_tokens
		SET is_used = TRUE, used_at = NOW()
		WHERE token = $1 AND is_used = FALSE`

	res, err := r.db.ExecContext(ctx, query, token)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
