package model

import (
	"time"

	"github.com/google/uuid"
)

// TankReading is a water-level measurement reported for a tank.
type TankReading struct {
	TankID        uuid.UUID `json:"tank_id"`
	StationID     uuid.UUID `json:"station_id"`
	TankLabel     string    `json:"tank_label"`
	ProductType   string    `json:"product_type"`
	WaterQuantity float64   `json:"water_quantity"`
	MeasuredAt    time.Time `json:"measured_at"`
}

// WaterAlert is one affected tank inside an inspection alert. Field names
// follow the wire contract consumed by the dashboard integrations.
type WaterAlert struct {
	Cliente        string    `json:"cliente"`
	Unidade        string    `json:"unidade"`
	Tanque         string    `json:"tanque"`
	Produto        string    `json:"produto"`
	QuantidadeAgua float64   `json:"quantidade_agua"`
	DataMedicao    time.Time `json:"data_medicao"`
}

// InspectionAlert groups the water alerts detected in one inspection run.
type InspectionAlert struct {
	ID          uuid.UUID    `json:"id"`
	Description string       `json:"description"`
	Severity    string       `json:"severity"`
	Alerts      []WaterAlert `json:"alertas"`
}
