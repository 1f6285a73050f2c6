package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/beamlak/srts/internal/apperrors"
	"github.com/beamlak/srts/internal/config"
	"github.com/beamlak/srts/internal/models"
)

// SearchByQuery queries the index search endpoint "<base>/search/query-<query>"
func (c *client) SearchByQuery(ctx context.Context, query string) ([]models.IndexItem, error) {
	logger := config.GetLogger()

	endpoint := strings.TrimRight(c.baseURL, "/") + "/search/query-" + url.PathEscape(query)
	logger.Debug().Str("query", query).Str("url", endpoint).Msg("Searching subtitle index")

	req, err := c.newRequest(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query subtitle index: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &apperrors.ErrUpstreamStatus{URL: endpoint, StatusCode: resp.StatusCode}
	}

	var items []models.IndexItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, &apperrors.ErrUpstreamPayload{URL: endpoint, Err: err}
	}

	logger.Info().Str("query", query).Int("count", len(items)).Msg("Subtitle index search completed")
	return items, nil
}
