// Package publisher pushes generated articles to where readers see them and
// reports the resulting URL.
package publisher

import (
	"context"
	"strings"

	"github.com/gosimple/slug"

	"seo-writer/internal/domain"
)

// Publisher publishes an article and returns its public URL. settings is nil
// when the owner never configured a storefront.
type Publisher interface {
	Publish(ctx context.Context, settings *domain.Settings, article domain.Article) (string, error)
}

// DefaultStoreURL stands in for the storefront until one is configured.
const DefaultStoreURL = "https://your-shop.myshopify.com"

// StaticPublisher does not call the storefront. It derives the blog URL the
// article would live at from the store URL and the keyword.
type StaticPublisher struct{}

func (StaticPublisher) Publish(_ context.Context, settings *domain.Settings, article domain.Article) (string, error) {
	base := DefaultStoreURL
	if settings != nil && strings.TrimSpace(settings.StoreURL) != "" {
		base = strings.TrimSpace(settings.StoreURL)
		if !strings.Contains(base, "://") {
			base = "https://" + base
		}
	}
	return strings.TrimRight(base, "/") + "/blogs/news/" + articleSlug(article), nil
}

// MaxSlugLength bounds the keyword part of generated URLs and object keys.
const MaxSlugLength = 80

func articleSlug(article domain.Article) string {
	s := slug.Make(article.Keyword)
	if len(s) > MaxSlugLength {
		s = s[:MaxSlugLength]
		if i := strings.LastIndexByte(s, '-'); i > MaxSlugLength/2 {
			s = s[:i]
		}
		s = strings.Trim(s, "-")
	}
	if s == "" {
		return strings.ToLower(article.ID)
	}
	return s
}

var _ Publisher = StaticPublisher{}
