package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"seo-writer/internal/domain"
	"seo-writer/internal/repository"
)

const createSettingsTable = `
CREATE TABLE IF NOT EXISTS settings (
	id VARCHAR(36) PRIMARY KEY,
	user_id VARCHAR(36) NOT NULL UNIQUE,
	store_url TEXT NOT NULL,
	store_token VARCHAR(255) NOT NULL,
	brand_name VARCHAR(100) NOT NULL,
	business_type VARCHAR(100) NOT NULL,
	brand_guidelines TEXT NOT NULL,
	content_type VARCHAR(50) NOT NULL,
	created_at %[1]s NOT NULL,
	updated_at %[1]s NOT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id)
)`

type SettingsRepository struct {
	db *DB
}

func NewSettingsRepository(db *DB) repository.SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, fmt.Sprintf(createSettingsTable, r.db.dialect.Timestamp)); err != nil {
		return fmt.Errorf("create settings table: %w", err)
	}
	return r.db.widenToText(ctx, "settings", "store_url", false)
}

func (r *SettingsRepository) GetByUser(ctx context.Context, userID string) (*domain.Settings, error) {
	row := r.db.queryRowContext(ctx, `
SELECT id, user_id, store_url, store_token, brand_name, business_type, brand_guidelines, content_type, created_at, updated_at
FROM settings
WHERE user_id = ?`,
		userID,
	)

	var s domain.Settings
	if err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.StoreURL,
		&s.StoreToken,
		&s.BrandName,
		&s.BusinessType,
		&s.BrandGuidelines,
		&s.ContentType,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("settings: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan settings: %w", err)
	}
	return &s, nil
}

func (r *SettingsRepository) Create(ctx context.Context, s *domain.Settings) error {
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now

	_, err := r.db.execContext(ctx, `
INSERT INTO settings (id, user_id, store_url, store_token, brand_name, business_type, brand_guidelines, content_type, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID,
		s.UserID,
		s.StoreURL,
		s.StoreToken,
		s.BrandName,
		s.BusinessType,
		s.BrandGuidelines,
		s.ContentType,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert settings for %s: %w", s.UserID, repository.ErrConflict)
		}
		return fmt.Errorf("insert settings: %w", err)
	}
	return nil
}

func (r *SettingsRepository) Update(ctx context.Context, s *domain.Settings) error {
	s.UpdatedAt = time.Now().UTC()
	res, err := r.db.execContext(ctx, `
UPDATE settings
SET store_url=?, store_token=?, brand_name=?, business_type=?, brand_guidelines=?, content_type=?, updated_at=?
WHERE user_id=?`,
		s.StoreURL,
		s.StoreToken,
		s.BrandName,
		s.BusinessType,
		s.BrandGuidelines,
		s.ContentType,
		s.UpdatedAt,
		s.UserID,
	)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("settings update rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("settings: %w", repository.ErrNotFound)
	}
	return nil
}
