// Package worker contains the background order scanner: a safety net that
// re-dispatches order_placed for orders whose inline notification never
// landed (process crash, every target down).
package worker

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

type ScannerConfig struct {
	BatchSize    int
	PollInterval time.Duration
	// MinOrderAge keeps the scanner from racing the inline
	// notification fired right after order creation.
	MinOrderAge time.Duration
}

type Scanner struct {
	orders     repository.OrderRepository
	dispatcher *dispatch.Service
	config     ScannerConfig
	logger     *logger.Logger
}

func NewScanner(
	orders repository.OrderRepository,
	dispatcher *dispatch.Service,
	config ScannerConfig,
	logger *logger.Logger,
) (*Scanner, error) {
	if config.BatchSize <= 0 {
		return nil, fmt.Errorf("BatchSize must be greater than 0")
	}
	if config.PollInterval <= 0 {
		return nil, fmt.Errorf("PollInterval must be greater than 0")
	}
	return &Scanner{
		orders:     orders,
		dispatcher: dispatcher,
		config:     config,
		logger:     logger,
	}, nil
}

func (s *Scanner) Start(ctx context.Context) {
	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	s.logger.Info("Starting order notification scanner")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Shutting down order notification scanner")
			return
		case <-ticker.C:
			if err := s.processBatch(ctx); err != nil {
				s.logger.Error(err, "Failed to process batch")
			}
		}
	}
}

func (s *Scanner) processBatch(ctx context.Context) error {
	orders, err := s.orders.ListPendingUnnotified(ctx, s.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to list unnotified orders: %w", err)
	}

	cutoff := time.Now().Add(-s.config.MinOrderAge)
	var notified []uuid.UUID
	for _, order := range orders {
		if order.CreatedAt.After(cutoff) {
			continue
		}

		results := s.dispatcher.DispatchEvent(ctx, model.EventOrderPlaced, order, order.ID.String())
		for _, r := range results {
			if r.Delivered {
				notified = append(notified, order.ID)
				break
			}
		}
	}

	if len(notified) == 0 {
		return nil
	}
	if err := s.orders.MarkNotified(ctx, notified); err != nil {
		return fmt.Errorf("failed to mark orders notified: %w", err)
	}

	s.logger.Info("Notified stale orders", "count", len(notified))
	return nil
}
