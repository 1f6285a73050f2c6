package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/beamlak/srts/internal/config"
	"github.com/beamlak/srts/internal/models"
)

// defaultMaxDownloadSize caps relayed files when no limit is configured.
const defaultMaxDownloadSize = 10 << 20

// Client defines the interface for talking to the external subtitle index and download hosts
type Client interface {
	// SearchByQuery looks up subtitle entries whose title matches the free-text query.
	SearchByQuery(ctx context.Context, query string) ([]models.IndexItem, error)

	// Fetch downloads the raw bytes stored at an absolute subtitle URL.
	Fetch(ctx context.Context, rawURL string) (*models.DownloadResult, error)
}

// client implements the Client interface
type client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	maxDownload int64
}

// NewClient creates a new client instance with proxy configuration if provided
func NewClient(cfg *config.Config) Client {
	timeout := config.ParseDuration(cfg.ClientTimeout, 30*time.Second)

	// Clone DefaultTransport to keep its pooling, HTTP/2 and dial timeouts
	baseTransport := http.DefaultTransport.(*http.Transport).Clone()

	if cfg.ProxyConnectionString != "" {
		proxyURL, err := url.Parse(cfg.ProxyConnectionString)
		if err != nil {
			logger := config.GetLogger()
			logger.Warn().Err(err).Str("proxy", cfg.ProxyConnectionString).Msg("Invalid proxy URL, continuing without proxy")
		} else {
			baseTransport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}

	maxDownload := cfg.Download.MaxSize
	if maxDownload <= 0 {
		maxDownload = defaultMaxDownloadSize
	}

	return &client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: newCompressionTransport(baseTransport),
		},
		baseURL:     cfg.Index.BaseURL,
		userAgent:   userAgent,
		maxDownload: maxDownload,
	}
}

func (c *client) newRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}
