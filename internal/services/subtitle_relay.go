package services

import (
	"context"

	"github.com/beamlak/srts/internal/models"
)

// SubtitleRelay defines the interface for proxying remote subtitle files to the browser
type SubtitleRelay interface {
	// Download fetches req.URL and returns the subtitle file ready to be saved.
	// Archives are unpacked to their first subtitle entry and text is converted to UTF-8.
	Download(ctx context.Context, req models.DownloadRequest) (*models.DownloadResult, error)
}
