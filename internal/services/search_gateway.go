package services

import (
	"context"

	"github.com/beamlak/srts/internal/models"
)

// SearchGateway defines the interface for turning a free-text query into subtitle results
type SearchGateway interface {
	// Search returns normalized results for query. It only fails for a blank query:
	// any upstream failure is answered with placeholder results instead.
	Search(ctx context.Context, query string) ([]models.SubtitleResult, error)
}
