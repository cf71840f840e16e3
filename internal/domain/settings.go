package domain

import (
	"strings"
	"time"
)

// Settings holds the brand configuration that steers article generation.
type Settings struct {
	ID              string
	UserID          string
	StoreURL        string
	StoreToken      string
	BrandName       string
	BusinessType    string
	BrandGuidelines string
	ContentType     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SettingsUpdate carries a partial settings change. Nil fields are left untouched.
type SettingsUpdate struct {
	StoreURL        *string
	StoreToken      *string
	BrandName       *string
	BusinessType    *string
	BrandGuidelines *string
	ContentType     *string
}

// Empty reports whether the update carries no fields at all.
func (u SettingsUpdate) Empty() bool {
	return u.StoreURL == nil && u.StoreToken == nil && u.BrandName == nil &&
		u.BusinessType == nil && u.BrandGuidelines == nil && u.ContentType == nil
}

// Apply merges the supplied fields into s and reports whether any value changed.
func (u SettingsUpdate) Apply(s *Settings) bool {
	changed := false
	set := func(dst *string, src *string) {
		if src == nil || *dst == *src {
			return
		}
		*dst = *src
		changed = true
	}
	set(&s.StoreURL, u.StoreURL)
	set(&s.StoreToken, u.StoreToken)
	set(&s.BrandName, u.BrandName)
	set(&s.BusinessType, u.BusinessType)
	set(&s.BrandGuidelines, u.BrandGuidelines)
	set(&s.ContentType, u.ContentType)
	return changed
}

// MissingForGeneration lists the fields generation needs that are still blank.
func (s Settings) MissingForGeneration() []string {
	var missing []string
	check := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	check("brand_name", s.BrandName)
	check("business_type", s.BusinessType)
	check("content_type", s.ContentType)
	check("brand_guidelines", s.BrandGuidelines)
	return missing
}
