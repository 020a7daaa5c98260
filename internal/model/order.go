package model

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Order is a fuel purchase order for a station tank. It is read-only to the
// dispatch subsystem; only the Notified flag is flipped after a successful
// notification.
type Order struct {
	ID            uuid.UUID   `db:"id" json:"id"`
	StationID     uuid.UUID   `db:"station_id" json:"station_id"`
	TankID        uuid.UUID   `db:"tank_id" json:"tank_id"`
	ProductType   string      `db:"product_type" json:"product_type"`
	Quantity      float64     `db:"quantity" json:"quantity"`
	Status        OrderStatus `db:"status" json:"status"`
	ScheduledDate *time.Time  `db:"scheduled_date" json:"scheduled_date,omitempty"`
	Notes         string      `db:"notes" json:"notes,omitempty"`
	Notified      bool        `db:"notified" json:"notified"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`
}
