package types

import "time"

// Roles assignable to a user account.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
	RoleClient   = "client"
)

// User represents an account in the system.
// It contains identity, role, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Email is the user's unique login address, stored case-sensitively.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// FirstName is the user's given name.
	FirstName string `json:"first_name" db:"first_name"`

	// LastName is the user's family name.
	LastName string `json:"last_name" db:"last_name"`

	// Phone is the user's contact phone number.
	Phone string `json:"phone" db:"phone"`

	// AvatarURL points at the user's profile image.
	AvatarURL string `json:"avatar_url" db:"avatar_url"`

	// Role indicates the user's authorization level within the system:
	// "admin", "employee", or "client".
	Role string `json:"role" db:"role"`

	// Active marks whether the account may authenticate. Deactivation is
	// the removal path; accounts are never hard-deleted.
	Active bool `json:"active" db:"active"`

	// MustChangePassword forces a password change on next sign-in when set.
	// Cleared by a successful password change.
	MustChangePassword bool `json:"must_change_password" db:"must_change_password"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
