package types

import "time"

// Order statuses. An admin may move an order to any known status.
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusInProgress = "in_progress"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Order is a catering order placed by a client.
type Order struct {
	ID     int    `json:"id" db:"id"`
	UserID int    `json:"user_id" db:"user_id"`
	Status string `json:"status" db:"status"`

	// EventDate is when the catered event takes place.
	EventDate time.Time `json:"event_date" db:"event_date"`

	Address   string `json:"address" db:"address"`
	Headcount int    `json:"headcount" db:"headcount"`
	Notes     string `json:"notes" db:"notes"`

	// TotalCents is computed server-side from the stored item prices at
	// order time.
	TotalCents int64 `json:"total_cents" db:"total_cents"`

	Items     []OrderItem `json:"items" db:"items"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

// OrderItem is a single line of an order. UnitPriceCents snapshots the menu
// price at order time.
type OrderItem struct {
	ID             int    `json:"id" db:"id"`
	OrderID        int    `json:"order_id" db:"order_id"`
	MenuItemID     int    `json:"menu_item_id" db:"menu_item_id"`
	Name           string `json:"name" db:"name"`
	Quantity       int    `json:"quantity" db:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents" db:"unit_price_cents"`
}
