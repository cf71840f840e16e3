package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"seo-writer/internal/domain"
	"seo-writer/internal/repository"
)

// SettingsService manages the per-user brand configuration.
type SettingsService interface {
	Get(ctx context.Context, userID string) (*domain.Settings, error)
	Upsert(ctx context.Context, userID string, update domain.SettingsUpdate) (*domain.Settings, error)
}

type settingsService struct {
	settings repository.SettingsRepository
}

func NewSettingsService(settings repository.SettingsRepository) SettingsService {
	return &settingsService{settings: settings}
}

func (s *settingsService) Get(ctx context.Context, userID string) (*domain.Settings, error) {
	return s.settings.GetByUser(ctx, userID)
}

// Upsert creates the settings on first use and otherwise merges only the
// supplied fields. Re-submitting identical values leaves the row untouched.
func (s *settingsService) Upsert(ctx context.Context, userID string, update domain.SettingsUpdate) (*domain.Settings, error) {
	if update.Empty() {
		return nil, invalid("no settings provided")
	}

	current, err := s.settings.GetByUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		created := &domain.Settings{ID: uuid.NewString(), UserID: userID}
		update.Apply(created)
		if err := s.settings.Create(ctx, created); err != nil {
			return nil, err
		}
		return created, nil
	}

	if !update.Apply(current) {
		return current, nil
	}
	if err := s.settings.Update(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}
