package types

import "time"

// Reservation statuses.
const (
	ReservationStatusPending  = "pending"
	ReservationStatusApproved = "approved"
	ReservationStatusDeclined = "declined"
)

// Reservation is a tasting or consultation request submitted by a client.
type Reservation struct {
	ID            int       `json:"id" db:"id"`
	UserID        int       `json:"user_id" db:"user_id"`
	Name          string    `json:"name" db:"name"`
	Email         string    `json:"email" db:"email"`
	Phone         string    `json:"phone" db:"phone"`
	RequestedDate time.Time `json:"requested_date" db:"requested_date"`
	PartySize     int       `json:"party_size" db:"party_size"`
	Message       string    `json:"message" db:"message"`
	Status        string    `json:"status" db:"status"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
