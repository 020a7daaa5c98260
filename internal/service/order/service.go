package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/model"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/repository"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/service/dispatch"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/pkg/logger"
)

type Servicer interface {
	CreateOrder(ctx context.Context, order *model.Order) error
	CreateOrders(ctx context.Context, orders []*model.Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error)
}

type Service struct {
	repo       repository.OrderRepository
	dispatcher *dispatch.Service
	logger     *logger.Logger
}

func NewService(repo repository.OrderRepository, dispatcher *dispatch.Service, logger *logger.Logger) *Service {
	return &Service{
		repo:       repo,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// CreateOrder persists the order and then triggers notification in the
// background. The caller never waits on delivery, and a failed
// notification never rolls the order back.
func (s *Service) CreateOrder(ctx context.Context, order *model.Order) error {
	if err := s.validateOrder(order); err != nil {
		return fmt.Errorf("invalid order: %w", err)
	}

	order.ID = uuid.New()
	order.Status = model.OrderStatusPending
	order.Notified = false
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()

	if err := s.repo.Create(ctx, order); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	go s.notifyOrders(context.Background(), []*model.Order{order})
	return nil
}

// CreateOrders commits every row first, then dispatches all notifications
// as one detached unit of work.
func (s *Service) CreateOrders(ctx context.Context, orders []*model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	for _, order := range orders {
		if err := s.validateOrder(order); err != nil {
			return fmt.Errorf("invalid order: %w", err)
		}
		order.ID = uuid.New()
		order.Status = model.OrderStatusPending
		order.Notified = false
		order.CreatedAt = time.Now()
		order.UpdatedAt = time.Now()
	}

	if err := s.repo.CreateBatch(ctx, orders); err != nil {
		return fmt.Errorf("failed to create orders: %w", err)
	}

	go s.notifyOrders(context.Background(), orders)
	return nil
}

func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return s.repo.Get(ctx, id)
}

// notifyOrders dispatches order_placed for each order and flips the
// notified flag on the ones at least one target accepted.
func (s *Service) notifyOrders(ctx context.Context, orders []*model.Order) {
	var notified []uuid.UUID
	for _, order := range orders {
		results := s.dispatcher.DispatchEvent(ctx, model.EventOrderPlaced, order, order.ID.String())

		delivered := false
		for _, r := range results {
			if r.Delivered {
				delivered = true
				break
			}
		}
		if delivered {
			notified = append(notified, order.ID)
		}
	}

	if len(notified) == 0 {
		return
	}
	if err := s.repo.MarkNotified(ctx, notified); err != nil {
		s.logger.Error(err, "failed to mark orders notified", "count", len(notified))
	}
}

func (s *Service) validateOrder(order *model.Order) error {
	if order.StationID == uuid.Nil {
		return fmt.Errorf("station ID is required")
	}
	if order.TankID == uuid.Nil {
		return fmt.Errorf("tank ID is required")
	}
	if order.ProductType == "" {
		return fmt.Errorf("product type is required")
	}
	if order.Quantity < 0 {
		return fmt.Errorf("quantity cannot be negative")
	}
	return nil
}
