// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account. Email is the sole login identifier —
// there is no separate username.
//
// WHY IS THE STORED EMAIL "NORMALIZED"?
// Only the domain portion of an email is case-insensitive per the mail RFCs,
// so we lowercase just the domain before storing ("TEST@EXAMPLE.COM" →
// "TEST@example.com"). Uniqueness is enforced on this normalized form, and
// login lookups normalize the input the same way. The local part is kept
// exactly as the user typed it.
//
// PasswordHash holds a bcrypt hash (salt embedded); the plaintext password is
// never persisted and the hash is never serialized — note the json:"-" tag.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"` // normalized: domain lowercased
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"` // display name, may be empty
	IsActive     bool      `json:"-"`    // defaults true; inactive users cannot authenticate
	IsStaff      bool      `json:"-"`
	IsSuperuser  bool      `json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}
