package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/model"
)

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	CreateBatch(ctx context.Context, orders []*model.Order) error
	Get(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListPendingUnnotified(ctx context.Context, limit int) ([]*model.Order, error)
	MarkNotified(ctx context.Context, ids []uuid.UUID) error
}

type StationRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Station, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Station, error)
}

type ContactRepository interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]*model.Contact, error)
	List(ctx context.Context) ([]*model.Contact, error)
}

type WebhookTargetRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.WebhookTarget, error)
	List(ctx context.Context) ([]*model.WebhookTarget, error)
	ListByEventType(ctx context.Context, eventType model.EventType) ([]*model.WebhookTarget, error)
}

// DeliveryLogFilter narrows delivery log listings.
type DeliveryLogFilter struct {
	TargetID  *uuid.UUID
	EventType model.EventType
	Limit     int
}

type DeliveryLogRepository interface {
	Create(ctx context.Context, attempt *model.DeliveryAttempt) error
	List(ctx context.Context, filter DeliveryLogFilter) ([]*model.DeliveryAttempt, error)
}
