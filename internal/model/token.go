package model

import "time"

// AuthToken is an opaque bearer token bound 1:1 to a user.
//
// The Key is 40 hex characters of cryptographically random data — it carries
// no claims and means nothing on its own. Every request that presents it
// costs one server-side lookup, which is exactly the point: the token can be
// revoked by deleting the row, unlike a self-contained signed token.
//
// At most one live token exists per user: issuing is found-or-create, so
// logging in twice returns the same key rather than rotating it.
type AuthToken struct {
	Key       string    `json:"token"`
	UserID    string    `json:"-"`
	CreatedAt time.Time `json:"-"`
}
