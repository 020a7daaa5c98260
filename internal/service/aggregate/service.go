package aggregate

import (
	"context"

	"github.com/google/uuid"

	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/model"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/pkg/logger"
)

// StationLookup resolves station metadata for a set of ids.
type StationLookup interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Station, error)
}

type Service struct {
	stations StationLookup
	logger   *logger.Logger
}

func NewService(stations StationLookup, logger *logger.Logger) *Service {
	return &Service{
		stations: stations,
		logger:   logger,
	}
}

// Aggregate groups orders by destination station and sums quantities per
// fuel type, producing one group per station plus a grand summary.
//
// Groups follow first-seen station order and fuel totals follow insertion
// order, so the output is deterministic for a given input order. Every
// input order lands in exactly one group; a station the lookup cannot
// resolve gets a placeholder instead of failing the run.
func (s *Service) Aggregate(ctx context.Context, orders []*model.Order) ([]*model.AggregatedGroup, *model.AggregationSummary, error) {
	summary := &model.AggregationSummary{FuelTotals: model.NewFuelTotals()}
	if len(orders) == 0 {
		return nil, summary, nil
	}

	stationIDs := make([]uuid.UUID, 0, len(orders))
	seen := make(map[uuid.UUID]bool, len(orders))
	for _, order := range orders {
		if !seen[order.StationID] {
			seen[order.StationID] = true
			stationIDs = append(stationIDs, order.StationID)
		}
	}

	stations, err := s.stations.GetByIDs(ctx, stationIDs)
	if err != nil {
		// Orphaned orders must still aggregate; fall back to
		// placeholder stations for the whole set.
		s.logger.Error(err, "station lookup failed, using placeholders")
		stations = map[uuid.UUID]*model.Station{}
	}

	var groups []*model.AggregatedGroup
	byStation := make(map[uuid.UUID]*model.AggregatedGroup, len(stationIDs))

	for _, order := range orders {
		group, ok := byStation[order.StationID]
		if !ok {
			station := stations[order.StationID]
			if station == nil {
				s.logger.Warn("order references unknown station",
					"order_id", order.ID.String(),
					"station_id", order.StationID.String())
				station = model.UnidentifiedStation(order.StationID)
			}
			group = &model.AggregatedGroup{
				Station:    station,
				FuelTotals: model.NewFuelTotals(),
			}
			byStation[order.StationID] = group
			groups = append(groups, group)
			summary.TotalStations++
		}

		group.Orders = append(group.Orders, order)
		group.FuelTotals.Add(order.ProductType, order.Quantity)

		summary.TotalOrders++
		summary.FuelTotals.Add(order.ProductType, order.Quantity)
	}

	return groups, summary, nil
}
