// Package events announces article lifecycle changes to other systems.
package events

import (
	"context"
	"time"
)

// Routing keys.
const (
	ArticleGenerated = "article.generated"
	ArticlePublished = "article.published"
)

// ArticleEvent is the payload of every article lifecycle event.
type ArticleEvent struct {
	Type       string    `json:"type"`
	ArticleID  string    `json:"article_id"`
	UserID     string    `json:"user_id"`
	Keyword    string    `json:"keyword"`
	PublishURL string    `json:"publish_url,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers events. Delivery is best effort: callers log failures
// and carry on.
type Publisher interface {
	Publish(ctx context.Context, event ArticleEvent) error
	Close() error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ArticleEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }
