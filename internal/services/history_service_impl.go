package services

import (
	"context"
	"fmt"
	"time"

	"github.com/beamlak/srts/internal/config"
	"github.com/beamlak/srts/internal/metrics"
	"github.com/beamlak/srts/internal/models"
	"github.com/beamlak/srts/internal/reporting"
	"github.com/beamlak/srts/internal/storage"
)

// DefaultHistoryService implements HistoryService over a HistoryStore
type DefaultHistoryService struct {
	store storage.HistoryStore
	now   func() time.Time
}

// NewHistoryService creates a history service; nil now means time.Now
func NewHistoryService(store storage.HistoryStore, now func() time.Time) HistoryService {
	if now == nil {
		now = time.Now
	}
	return &DefaultHistoryService{store: store, now: now}
}

// List returns all history records, newest first
func (s *DefaultHistoryService) List(ctx context.Context) ([]models.HistoryRecord, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		logger := config.GetLogger()
		logger.Error().Err(err).Msg("Failed to list history")
		reporting.CaptureError(ctx, err, map[string]string{"component": "history", "op": "list"})
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return records, nil
}

// Append records a completed download
func (s *DefaultHistoryService) Append(ctx context.Context, req models.AppendHistoryRequest) (*models.HistoryRecord, error) {
	if err := req.Validate(); err != nil {
		metrics.HistoryAppendsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	rec := req.Record(s.now().UTC())
	if err := s.store.Insert(ctx, rec); err != nil {
		metrics.HistoryAppendsTotal.WithLabelValues("error").Inc()
		logger := config.GetLogger()
		logger.Error().Err(err).Str("title", rec.Title).Msg("Failed to append history")
		reporting.CaptureError(ctx, err, map[string]string{"component": "history", "op": "append"})
		return nil, fmt.Errorf("failed to append history: %w", err)
	}

	metrics.HistoryAppendsTotal.WithLabelValues("success").Inc()
	logger := config.GetLogger()
	logger.Debug().Int64("id", rec.ID).Str("title", rec.Title).Msg("Appended history record")
	return rec, nil
}
