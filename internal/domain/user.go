package domain

import "time"

// SubscriptionFree is the tier assigned to newly registered users.
const SubscriptionFree = "free"

// User represents an authenticated account owning settings and articles.
type User struct {
	ID                 string
	Email              string
	PasswordHash       string
	SubscriptionStatus string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
