package inspection

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/config"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/model"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/service/aggregate"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/service/dispatch"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/pkg/logger"
)

type Service struct {
	stations   aggregate.StationLookup
	dispatcher *dispatch.Service
	cfg        config.InspectionConfig
	logger     *logger.Logger
}

func NewService(
	stations aggregate.StationLookup,
	dispatcher *dispatch.Service,
	cfg config.InspectionConfig,
	logger *logger.Logger,
) *Service {
	if cfg.WaterThreshold <= 0 {
		cfg.WaterThreshold = 2.0
	}
	if cfg.CriticalThreshold <= cfg.WaterThreshold {
		cfg.CriticalThreshold = cfg.WaterThreshold * 5
	}
	return &Service{
		stations:   stations,
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     logger,
	}
}

// ReportWaterReadings turns water-level readings into an inspection alert
// and dispatches it. Readings at or below the threshold are dropped; when
// none remain, no dispatch happens at all.
func (s *Service) ReportWaterReadings(ctx context.Context, readings []model.TankReading) (*model.InspectionAlert, []*model.DispatchResult, error) {
	affected := make([]model.TankReading, 0, len(readings))
	stationIDs := make([]uuid.UUID, 0, len(readings))
	seen := make(map[uuid.UUID]bool)
	for _, reading := range readings {
		if reading.WaterQuantity <= s.cfg.WaterThreshold {
			continue
		}
		affected = append(affected, reading)
		if !seen[reading.StationID] {
			seen[reading.StationID] = true
			stationIDs = append(stationIDs, reading.StationID)
		}
	}
	if len(affected) == 0 {
		return nil, nil, nil
	}

	stations, err := s.stations.GetByIDs(ctx, stationIDs)
	if err != nil {
		s.logger.Error(err, "station lookup failed for inspection alert")
		stations = map[uuid.UUID]*model.Station{}
	}

	severity := "warning"
	alerts := make([]model.WaterAlert, 0, len(affected))
	for _, reading := range affected {
		station := stations[reading.StationID]
		if station == nil {
			station = model.UnidentifiedStation(reading.StationID)
		}
		if reading.WaterQuantity > s.cfg.CriticalThreshold {
			severity = "critical"
		}
		alerts = append(alerts, model.WaterAlert{
			Cliente:        station.Name,
			Unidade:        station.City,
			Tanque:         reading.TankLabel,
			Produto:        reading.ProductType,
			QuantidadeAgua: reading.WaterQuantity,
			DataMedicao:    reading.MeasuredAt,
		})
	}

	alert := &model.InspectionAlert{
		ID:          uuid.New(),
		Description: fmt.Sprintf("Água detectada em %d tanque(s)", len(alerts)),
		Severity:    severity,
		Alerts:      alerts,
	}

	results := s.dispatcher.DispatchEvent(ctx, model.EventInspectionAlert, alert, alert.ID.String())
	return alert, results, nil
}
