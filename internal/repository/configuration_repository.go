package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/contest-seating-api/internal/models"
)

// ConfigurationRepository stores the contest settings table.
type ConfigurationRepository struct {
	db *sqlx.DB
}

// NewConfigurationRepository constructs the repository.
func NewConfigurationRepository(db *sqlx.DB) *ConfigurationRepository {
	return &ConfigurationRepository{db: db}
}

const configurationColumns = `key, value, type, description, updated_by, updated_at`

const upsertSettingQuery = `INSERT INTO configurations (` + configurationColumns + `)
VALUES (:key, :value, :type, :description, :updated_by, :updated_at)
ON CONFLICT (key) DO UPDATE SET
        value = EXCLUDED.value,
        type = EXCLUDED.type,
        description = COALESCE(EXCLUDED.description, configurations.description),
        updated_by = EXCLUDED.updated_by,
        updated_at = EXCLUDED.updated_at`

// ListAll returns every stored setting ordered by key.
func (r *ConfigurationRepository) ListAll(ctx context.Context) ([]models.Configuration, error) {
	var settings []models.Configuration
	if err := r.db.SelectContext(ctx, &settings, `SELECT `+configurationColumns+` FROM configurations ORDER BY key ASC`); err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return settings, nil
}

// ListByKeys returns the stored settings among keys. Missing keys are simply absent.
func (r *ConfigurationRepository) ListByKeys(ctx context.Context, keys []string) ([]models.Configuration, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+configurationColumns+` FROM configurations WHERE key IN (?) ORDER BY key ASC`, keys)
	if err != nil {
		return nil, fmt.Errorf("build settings query: %w", err)
	}
	var settings []models.Configuration
	if err := r.db.SelectContext(ctx, &settings, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list settings by key: %w", err)
	}
	return settings, nil
}

// Get fetches one setting, returning sql.ErrNoRows when it has never been stored.
func (r *ConfigurationRepository) Get(ctx context.Context, key string) (*models.Configuration, error) {
	var setting models.Configuration
	if err := r.db.GetContext(ctx, &setting, `SELECT `+configurationColumns+` FROM configurations WHERE key = $1`, key); err != nil {
		return nil, err
	}
	return &setting, nil
}

// Upsert stores one setting.
func (r *ConfigurationRepository) Upsert(ctx context.Context, setting *models.Configuration) error {
	setting.UpdatedAt = time.Now().UTC()
	if _, err := r.db.NamedExecContext(ctx, upsertSettingQuery, setting); err != nil {
		return fmt.Errorf("store setting %s: %w", setting.Key, err)
	}
	return nil
}

// BulkUpsert stores several settings atomically, so the registration window
// never flips without its message.
func (r *ConfigurationRepository) BulkUpsert(ctx context.Context, settings []models.Configuration) (err error) {
	if len(settings) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin settings update: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for i := range settings {
		settings[i].UpdatedAt = now
		if _, err = tx.NamedExecContext(ctx, upsertSettingQuery, settings[i]); err != nil {
			return fmt.Errorf("store setting %s: %w", settings[i].Key, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit settings update: %w", err)
	}
	return nil
}
