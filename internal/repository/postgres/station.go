package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/model"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/repository"
	apperrors "github.com/matt11seven/fuelogic-enterprise-control-sub000/pkg/errors"
)

type stationRepository struct {
	BaseRepository
}

func NewStationRepository(base BaseRepository) repository.StationRepository {
	return &stationRepository{base}
}

func (r *stationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Station, error) {
	query := `
		SELECT id, name, cnpj, address, city, state, phone, status, created_at, updated_at
		FROM stations
		WHERE id = $1
	`
	var station model.Station
	if err := r.db.GetContext(ctx, &station, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("station", err)
		}
		return nil, fmt.Errorf("failed to get station: %w", err)
	}
	return &station, nil
}

func (r *stationRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Station, error) {
	result := make(map[uuid.UUID]*model.Station, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := `
		SELECT id, name, cnpj, address, city, state, phone, status, created_at, updated_at
		FROM stations
		WHERE id = ANY($1)
	`
	var stations []*model.Station
	if err := r.db.SelectContext(ctx, &stations, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to get stations: %w", err)
	}

	for _, s := range stations {
		result[s.ID] = s
	}
	return result, nil
}
