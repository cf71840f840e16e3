package sqlstore

import (
	"context"
	"fmt"
)

// Migrate creates or upgrades every table. Order matters: settings and
// articles reference users.
func Migrate(ctx context.Context, db *DB) error {
	steps := []struct {
		name string
		init func(context.Context) error
	}{
		{"users", NewUserRepository(db).Init},
		{"settings", NewSettingsRepository(db).Init},
		{"articles", NewArticleRepository(db).Init},
	}
	for _, step := range steps {
		if err := step.init(ctx); err != nil {
			return fmt.Errorf("init %s repository: %w", step.name, err)
		}
	}
	return nil
}
