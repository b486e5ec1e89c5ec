// Package entity contains the core business objects of the accounts service.
package entity

import (
	"time"
)

// User is the sole persisted entity: one account, identified externally by its email.
type User struct {
	ID           int64     // Store-assigned identifier, never reused.
	Email        string    // Unique login identifier; not updatable.
	PasswordHash string    // Opaque hasher output; never the plaintext.
	FirstName    string    // Required at creation, updatable.
	LastName     string    // Required at creation, updatable.
	CreatedAt    time.Time // Set once by the store on insert.
	UpdatedAt    time.Time // Set on insert and refreshed on every mutation.
}

// Profile returns the outward view of the user, which never carries the password hash.
func (u *User) Profile() *Profile {
	if u == nil {
		return nil
	}

	return &Profile{
		ID:             u.ID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		AccountCreated: u.CreatedAt,
		AccountUpdated: u.UpdatedAt,
	}
}

// Apply merges the present fields of the update into the user and stamps UpdatedAt.
// Absent fields keep their current values.
func (u *User) Apply(update UserUpdate, now time.Time) {
	if update.FirstName != nil {
		u.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		u.LastName = *update.LastName
	}
	if update.PasswordHash != nil {
		u.PasswordHash = *update.PasswordHash
	}

	if now.Before(u.CreatedAt) {
		now = u.CreatedAt
	}
	u.UpdatedAt = now
}

// UserUpdate is the store-level merge patch. A nil field is absent and left unchanged.
type UserUpdate struct {
	FirstName    *string
	LastName     *string
	PasswordHash *string
}
