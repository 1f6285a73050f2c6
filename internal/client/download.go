package client

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/beamlak/srts/internal/apperrors"
	"github.com/beamlak/srts/internal/config"
	"github.com/beamlak/srts/internal/models"
)

// Fetch downloads a subtitle file. Bodies larger than the configured maximum are rejected.
func (c *client) Fetch(ctx context.Context, rawURL string) (*models.DownloadResult, error) {
	logger := config.GetLogger()

	req, err := c.newRequest(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &apperrors.ErrSubtitleResourceNotFound{URL: rawURL}
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &apperrors.ErrUpstreamStatus{URL: rawURL, StatusCode: resp.StatusCode}
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, c.maxDownload+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(content)) > c.maxDownload {
		return nil, fmt.Errorf("subtitle file exceeds %d bytes", c.maxDownload)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	logger.Debug().
		Str("url", rawURL).
		Str("contentType", contentType).
		Int("size", len(content)).
		Msg("Fetched subtitle file")

	return &models.DownloadResult{
		Content:     content,
		ContentType: contentType,
	}, nil
}
