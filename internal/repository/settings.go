package repository

import (
	"context"

	"seo-writer/internal/domain"
)

// SettingsRepository persists the per-user brand configuration.
type SettingsRepository interface {
	Init(ctx context.Context) error
	GetByUser(ctx context.Context, userID string) (*domain.Settings, error)
	Create(ctx context.Context, settings *domain.Settings) error
	Update(ctx context.Context, settings *domain.Settings) error
}
