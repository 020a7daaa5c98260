package postgres

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/model"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/repository"
)

type contactRepository struct {
	BaseRepository
}

func NewContactRepository(base BaseRepository) repository.ContactRepository {
	return &contactRepository{base}
}

func (r *contactRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*model.Contact, error) {
	result := make(map[string]*model.Contact, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := `
		SELECT id, name, phone, email, active, created_at, updated_at
		FROM contacts
		WHERE id = ANY($1)
	`
	var contacts []*model.Contact
	if err := r.db.SelectContext(ctx, &contacts, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to get contacts: %w", err)
	}

	for _, c := range contacts {
		result[c.ID] = c
	}
	return result, nil
}

func (r *contactRepository) List(ctx context.Context) ([]*model.Contact, error) {
	query := `
		SELECT id, name, phone, email, active, created_at, updated_at
		FROM contacts
		ORDER BY name ASC
	`
	var contacts []*model.Contact
	if err := r.db.SelectContext(ctx, &contacts, query); err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}
