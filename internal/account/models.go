package account

import (
	"time"
)

// Account is the authenticated principal. Roles are never stored here; they
// are derived at session bootstrap from the account's email.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
