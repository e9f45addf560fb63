package entity

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const (
	BookingStatusPending   = "PENDING"
	BookingStatusCancelled = "CANCELLED"
)

// TicketClass is the stock and price record for one ticket tier of one
// event. (event_id, class_name) is unique and available_quantity never
// goes below zero.
type TicketClass struct {
	ID                int64        `db:"id"`
	EventID           int64        `db:"event_id"`
	ClassName         string       `db:"class_name"`
	UnitPrice         float64      `db:"unit_price"`
	AvailableQuantity int          `db:"available_quantity"`
	CreatedAt         time.Time    `db:"created_at"`
	UpdatedAt         sql.NullTime `db:"updated_at"`
}

// Booking freezes the total price at booking time. Rows are never
// deleted; cancellation only flips the status.
type Booking struct {
	ID         uuid.UUID      `db:"id"`
	CustomerID int64          `db:"customer_id"`
	EventID    int64          `db:"event_id"`
	ClassName  string         `db:"class_name"`
	Quantity   int            `db:"quantity"`
	TotalPrice float64        `db:"total_price"`
	Status     string         `db:"status"`
	TaskID     sql.NullString `db:"task_id"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  sql.NullTime   `db:"updated_at"`
}
