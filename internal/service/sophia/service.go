// Package sophia implements the bulk procurement-AI send: pending orders
// are aggregated per station into a single combined payload before one
// dispatch per configured sophia target.
package sophia

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/model"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/repository"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/service/aggregate"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/service/dispatch"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/pkg/logger"
)

// SendReport is what the caller gets back from a bulk send.
type SendReport struct {
	Orders   int                     `json:"orders"`
	Stations int                     `json:"stations"`
	Results  []*model.DispatchResult `json:"results"`
}

type Service struct {
	orders     repository.OrderRepository
	aggregator *aggregate.Service
	dispatcher *dispatch.Service
	batchSize  int
	logger     *logger.Logger
}

func NewService(
	orders repository.OrderRepository,
	aggregator *aggregate.Service,
	dispatcher *dispatch.Service,
	batchSize int,
	logger *logger.Logger,
) *Service {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Service{
		orders:     orders,
		aggregator: aggregator,
		dispatcher: dispatcher,
		batchSize:  batchSize,
		logger:     logger,
	}
}

// SendPendingOrders aggregates the unnotified pending orders and
// dispatches one combined payload to every sophia target. Orders are
// marked notified only when at least one target accepted the payload.
func (s *Service) SendPendingOrders(ctx context.Context) (*SendReport, error) {
	orders, err := s.orders.ListPendingUnnotified(ctx, s.batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending orders: %w", err)
	}

	report := &SendReport{Orders: len(orders)}
	if len(orders) == 0 {
		return report, nil
	}

	groups, summary, err := s.aggregator.Aggregate(ctx, orders)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate orders: %w", err)
	}
	report.Stations = summary.TotalStations

	data := &dispatch.SophiaOrderData{Groups: groups, Summary: summary}
	batchID := uuid.New().String()

	report.Results = s.dispatcher.DispatchEvent(ctx, model.EventSophiaAIOrder, data, batchID)

	delivered := false
	for _, r := range report.Results {
		if r.Delivered {
			delivered = true
			break
		}
	}
	if delivered {
		ids := make([]uuid.UUID, 0, len(orders))
		for _, order := range orders {
			ids = append(ids, order.ID)
		}
		if err := s.orders.MarkNotified(ctx, ids); err != nil {
			s.logger.Error(err, "failed to mark orders notified", "batch", batchID)
		}
	}

	return report, nil
}
