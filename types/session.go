package types

import "time"

// Session is a server-persisted record binding a bearer token to a user for
// a bounded time window. A session is valid only while the expiry has not
// passed and the owning user is still active.
type Session struct {
	// ID is the opaque unique identifier of the session (a UUID).
	ID string `json:"id" db:"id"`

	// UserID is the owning user. Deleting the user cascades to its sessions.
	UserID int `json:"user_id" db:"user_id"`

	// Token is the signed bearer credential presented by clients. Unique.
	Token string `json:"token" db:"token"`

	// ExpiresAt is the instant after which the session is no longer valid.
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`

	// CreatedAt is the timestamp when the session was issued.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
