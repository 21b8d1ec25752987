package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/savoria-catering/apiserver/types"
)

// SettingRepository handles persistence for site settings.
type SettingRepository struct {
	db *sql.DB
}

func NewSettingRepository(db *sql.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

func (r *SettingRepository) List(ctx context.Context) ([]types.Setting, error) {
	const query = `
		SELECT key, value, updated_at
		FROM settings
		ORDER BY key`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make([]types.Setting, 0)
	for rows.Next() {
		var setting types.Setting
		if err := rows.Scan(&setting.Key, &setting.Value, &setting.UpdatedAt); err != nil {
			return nil, err
		}
		settings = append(settings, setting)
	}
	return settings, rows.Err()
}

func (r *SettingRepository) Get(ctx context.Context, key string) (types.Setting, error) {
	const query = `
		SELECT key, value, updated_at
		FROM settings
		WHERE key = $1`
	var setting types.Setting
	err := r.db.QueryRowContext(ctx, query, key).Scan(&setting.Key, &setting.Value, &setting.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Setting{}, ErrNotFound
		}
		return types.Setting{}, err
	}
	return setting, nil
}

// Upsert inserts the setting or replaces its value if the key exists.
func (r *SettingRepository) Upsert(ctx context.Context, setting types.Setting) (types.Setting, error) {
	setting.UpdatedAt = time.Now()

	const query = `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, setting.Key, setting.Value, setting.UpdatedAt); err != nil {
		return types.Setting{}, err
	}
	return setting, nil
}

func (r *SettingRepository) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM settings WHERE key = $1`
	result, err := r.db.ExecContext(ctx, query, key)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
