package profile

import (
	"time"
)

const DefaultRating = 1000

// Profile is the per-account record shown around the app. It shares its
// primary key with the owning account. Avatar URLs point at the public object
// store and are always written as a pair.
type Profile struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	FullName       string    `json:"full_name"`
	AvatarURL      *string   `json:"avatar_url"`
	AvatarThumbURL *string   `json:"avatar_thumb_url"`
	Rating         int       `json:"rating"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DisplayName returns the full name, falling back to the username.
func (p *Profile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Username
}
