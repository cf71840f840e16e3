package publisher

import (
	"context"
	"fmt"
	"path"
	"strings"

	"seo-writer/internal/domain"
	"seo-writer/internal/storage"
)

// S3Publisher archives the article HTML in object storage and returns the
// public URL (or the s3:// location when no public base URL is configured).
type S3Publisher struct {
	store         storage.Service
	bucket        string
	keyPrefix     string
	publicBaseURL string
}

func NewS3Publisher(store storage.Service, bucket, keyPrefix, publicBaseURL string) *S3Publisher {
	return &S3Publisher{
		store:         store,
		bucket:        bucket,
		keyPrefix:     strings.Trim(keyPrefix, "/"),
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (p *S3Publisher) Publish(ctx context.Context, _ *domain.Settings, article domain.Article) (string, error) {
	key := path.Join(p.keyPrefix, article.UserID, fmt.Sprintf("%s-%s.html", articleSlug(article), strings.ToLower(article.ID)))

	location, err := p.store.PutObject(ctx, storage.Object{
		Bucket:      p.bucket,
		Key:         key,
		ContentType: "text/html; charset=utf-8",
		Body:        strings.NewReader(article.HTMLContent()),
	})
	if err != nil {
		return "", fmt.Errorf("archive article: %w", err)
	}

	if p.publicBaseURL != "" {
		return p.publicBaseURL + "/" + key, nil
	}
	return location, nil
}

var _ Publisher = (*S3Publisher)(nil)
