package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/model"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/repository"
	apperrors "github.com/matt11seven/fuelogic-enterprise-control-sub000/pkg/errors"
)

type webhookTargetRepository struct {
	BaseRepository
}

func NewWebhookTargetRepository(base BaseRepository) repository.WebhookTargetRepository {
	return &webhookTargetRepository{base}
}

const webhookColumns = `
	id, name, event_type, kind, url, method, headers,
	auth_kind, auth_username, auth_password, auth_token,
	timeout_seconds, max_attempts, retry_delay_seconds,
	recipients, active, created_at, updated_at
`

func (r *webhookTargetRepository) Get(ctx context.Context, id uuid.UUID) (*model.WebhookTarget, error) {
	query := `SELECT ` + webhookColumns + ` FROM webhook_targets WHERE id = $1`

	var target model.WebhookTarget
	if err := r.db.GetContext(ctx, &target, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("webhook target", err)
		}
		return nil, fmt.Errorf("failed to get webhook target: %w", err)
	}
	return &target, nil
}

func (r *webhookTargetRepository) List(ctx context.Context) ([]*model.WebhookTarget, error) {
	query := `SELECT ` + webhookColumns + ` FROM webhook_targets ORDER BY created_at ASC`

	var targets []*model.WebhookTarget
	if err := r.db.SelectContext(ctx, &targets, query); err != nil {
		return nil, fmt.Errorf("failed to list webhook targets: %w", err)
	}
	return targets, nil
}

func (r *webhookTargetRepository) ListByEventType(ctx context.Context, eventType model.EventType) ([]*model.WebhookTarget, error) {
	query := `SELECT ` + webhookColumns + ` FROM webhook_targets WHERE event_type = $1 AND active = true ORDER BY created_at ASC`

	var targets []*model.WebhookTarget
	if err := r.db.SelectContext(ctx, &targets, query, eventType); err != nil {
		return nil, fmt.Errorf("failed to list webhook targets for %s: %w", eventType, err)
	}
	return targets, nil
}
