package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
)

type SettingRepository interface {
	Get(ctx context.Context, key string) (*domain.Setting, error)
	Upsert(ctx context.Context, setting *domain.Setting) error
	List(ctx context.Context) ([]domain.Setting, error)
}

type settingRepository struct {
	db *sqlx.DB
}

func NewSettingRepository(db *sqlx.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) Get(ctx context.Context, key string) (*domain.Setting, error) {
	var setting domain.Setting
	query := `SELECT * FROM settings WHERE key = $1`

	err := r.db.GetContext(ctx, &setting, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *settingRepository) Upsert(ctx context.Context, setting *domain.Setting) error {
	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = NOW()
		RETURNING updated_at`

	return r.db.QueryRowxContext(ctx, query, setting.Key, setting.Value).
		Scan(&setting.UpdatedAt)
}

func (r *settingRepository) List(ctx context.Context) ([]domain.Setting, error) {
	var settings []domain.Setting
	query := `SELECT * FROM settings ORDER BY key ASC`
	err := r.db.SelectContext(ctx, &settings, query)
	return settings, err
}
