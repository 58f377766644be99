// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a registered account.
//
// Username is the login handle and is unique across all users. Name is the
// optional display name users pick on the settings page; pages fall back to
// Username while it is empty.
//
// PasswordHash is the full bcrypt output (salt and cost included). The json
// tag keeps it out of any serialized form.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Username     string    `json:"username"  db:"username"`
	Name         string    `json:"name"      db:"name"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// DisplayName returns Name, or Username when no display name is set.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
