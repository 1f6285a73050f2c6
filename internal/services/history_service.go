package services

import (
	"context"

	"github.com/beamlak/srts/internal/models"
)

// HistoryService defines the interface for the persisted download history
type HistoryService interface {
	// List returns every record, newest first.
	List(ctx context.Context) ([]models.HistoryRecord, error)

	// Append validates req, stamps it with the current time and persists it.
	Append(ctx context.Context, req models.AppendHistoryRequest) (*models.HistoryRecord, error)
}
