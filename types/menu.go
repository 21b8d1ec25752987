package types

import "time"

// MenuCategory groups menu items on the public menu.
type MenuCategory struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// MenuItem is a dish or service offered by the catering company.
type MenuItem struct {
	ID          int    `json:"id" db:"id"`
	CategoryID  int    `json:"category_id" db:"category_id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`

	// PriceCents is the unit price in the smallest currency unit.
	PriceCents int64 `json:"price_cents" db:"price_cents"`

	ImageURL  string    `json:"image_url" db:"image_url"`
	Tags      []string  `json:"tags" db:"tags"`
	Available bool      `json:"available" db:"available"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
