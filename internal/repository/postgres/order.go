package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/model"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/repository"
	apperrors "github.com/matt11seven/fuelogic-enterprise-control-sub000/pkg/errors"
)

type orderRepository struct {
	BaseRepository
}

func NewOrderRepository(base BaseRepository) repository.OrderRepository {
	return &orderRepository{base}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	query := `
		INSERT INTO orders (
			id, station_id, tank_id, product_type, quantity, status,
			scheduled_date, notes, notified, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		order.ID,
		order.StationID,
		order.TankID,
		order.ProductType,
		order.Quantity,
		order.Status,
		order.ScheduledDate,
		order.Notes,
		order.Notified,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// CreateBatch inserts all orders in one transaction so that bulk creation
// commits fully before any notification fires.
func (r *orderRepository) CreateBatch(ctx context.Context, orders []*model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO orders (
				id, station_id, tank_id, product_type, quantity, status,
				scheduled_date, notes, notified, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`
		for _, order := range orders {
			if _, err := tx.ExecContext(ctx, query,
				order.ID,
				order.StationID,
				order.TankID,
				order.ProductType,
				order.Quantity,
				order.Status,
				order.ScheduledDate,
				order.Notes,
				order.Notified,
				order.CreatedAt,
				order.UpdatedAt,
			); err != nil {
				return fmt.Errorf("failed to create order %s: %w", order.ID, err)
			}
		}
		return nil
	})
}

func (r *orderRepository) Get(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `
		SELECT id, station_id, tank_id, product_type, quantity, status,
			scheduled_date, notes, notified, created_at, updated_at
		FROM orders
		WHERE id = $1
	`
	var order model.Order
	if err := r.db.GetContext(ctx, &order, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("order", err)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

func (r *orderRepository) ListPendingUnnotified(ctx context.Context, limit int) ([]*model.Order, error) {
	query := `
		SELECT id, station_id, tank_id, product_type, quantity, status,
			scheduled_date, notes, notified, created_at, updated_at
		FROM orders
		WHERE status = $1 AND notified = false
		ORDER BY created_at ASC
		LIMIT $2
	`
	var orders []*model.Order
	err := r.db.SelectContext(ctx, &orders, query, model.OrderStatusPending, limit)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list unnotified orders: %w", err)
	}
	return orders, nil
}

func (r *orderRepository) MarkNotified(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	query := `
		UPDATE orders
		SET notified = true, updated_at = $1
		WHERE id = ANY($2)
	`
	if _, err := r.db.ExecContext(ctx, query, time.Now(), pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to mark orders notified: %w", err)
	}
	return nil
}
