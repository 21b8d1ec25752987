package types

import "time"

// Setting is a key/value pair consumed by the marketing site (opening hours,
// social links, hero copy, and so on).
type Setting struct {
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
