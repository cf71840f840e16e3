package repository

import (
	"context"
	"time"

	"seo-writer/internal/domain"
)

// ArticleRepository exposes persistence operations for generated articles.
// Every read and write is scoped to the owning user.
type ArticleRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, article *domain.Article) error
	Get(ctx context.Context, userID, id string) (*domain.Article, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Article, error)
	// MarkPublished flips an unpublished article to published. It reports
	// false, leaving the row untouched, when the article was already published.
	MarkPublished(ctx context.Context, userID, id, publishURL string, publishedAt time.Time) (bool, error)
}
