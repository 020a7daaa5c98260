package model

import (
	"time"

	"github.com/google/uuid"
)

// Station is a fuel station (posto) that receives orders.
type Station struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CNPJ      string    `db:"cnpj" json:"cnpj"`
	Address   string    `db:"address" json:"address"`
	City      string    `db:"city" json:"city"`
	State     string    `db:"state" json:"state"`
	Phone     string    `db:"phone" json:"phone"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// UnidentifiedStation is the placeholder used when an order references a
// station the lookup cannot resolve. Aggregation must tolerate orphaned
// orders instead of failing.
func UnidentifiedStation(id uuid.UUID) *Station {
	return &Station{
		ID:   id,
		Name: "Posto não identificado",
	}
}
