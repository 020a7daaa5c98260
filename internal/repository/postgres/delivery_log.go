package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/model"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/repository"
)

type deliveryLogRepository struct {
	BaseRepository
}

func NewDeliveryLogRepository(base BaseRepository) repository.DeliveryLogRepository {
	return &deliveryLogRepository{base}
}

// Create appends one attempt row. Rows are immutable; there is no update
// or delete path on purpose.
func (r *deliveryLogRepository) Create(ctx context.Context, attempt *model.DeliveryAttempt) error {
	query := `
		INSERT INTO delivery_attempts (
			id, target_id, recipient, reference_id, event_type,
			attempt_number, success, status_code, request_body,
			response_body, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		attempt.ID,
		attempt.TargetID,
		attempt.Recipient,
		attempt.ReferenceID,
		attempt.EventType,
		attempt.AttemptNumber,
		attempt.Success,
		attempt.StatusCode,
		attempt.RequestBody,
		attempt.ResponseBody,
		attempt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create delivery attempt: %w", err)
	}
	return nil
}

func (r *deliveryLogRepository) List(ctx context.Context, filter repository.DeliveryLogFilter) ([]*model.DeliveryAttempt, error) {
	query := `
		SELECT id, target_id, recipient, reference_id, event_type,
			attempt_number, success, status_code, request_body,
			response_body, created_at
		FROM delivery_attempts
		WHERE 1=1
	`
	args := []interface{}{}
	n := 0

	if filter.TargetID != nil {
		n++
		query += " AND target_id = $" + strconv.Itoa(n)
		args = append(args, *filter.TargetID)
	}
	if filter.EventType != "" {
		n++
		query += " AND event_type = $" + strconv.Itoa(n)
		args = append(args, filter.EventType)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	n++
	query += " ORDER BY created_at DESC LIMIT $" + strconv.Itoa(n)
	args = append(args, limit)

	var attempts []*model.DeliveryAttempt
	if err := r.db.SelectContext(ctx, &attempts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list delivery attempts: %w", err)
	}
	return attempts, nil
}
