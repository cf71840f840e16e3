package domain

import "time"

// Article is a generated piece of content owned by a single user.
// Content is immutable after creation; only the publish state changes.
type Article struct {
	ID          string
	UserID      string
	Keyword     string
	Content     string
	Research    string
	Published   bool
	PublishURL  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	PublishedAt *time.Time
}

// HTMLContent returns the rendered body. The model already answers in HTML,
// so it is the stored content as-is.
func (a Article) HTMLContent() string {
	return a.Content
}
