package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/beamlak/srts/internal/apperrors"
	"github.com/beamlak/srts/internal/cache"
	"github.com/beamlak/srts/internal/client"
	"github.com/beamlak/srts/internal/config"
	"github.com/beamlak/srts/internal/metrics"
	"github.com/beamlak/srts/internal/models"
	"github.com/beamlak/srts/internal/reporting"
)

const (
	defaultRelayMaxSize = 10 << 20
	defaultFileName     = "subtitle.srt"
)

// RelayOptions configures a DefaultSubtitleRelay
type RelayOptions struct {
	// AllowedHosts restricts download URLs to these hosts and their subdomains. Empty allows any host.
	AllowedHosts []string
	// MaxSize caps the size of extracted archive entries.
	MaxSize int64
}

// DefaultSubtitleRelay implements SubtitleRelay with an optional response cache
type DefaultSubtitleRelay struct {
	client       client.Client
	cache        cache.Cache
	allowedHosts []string
	maxSize      int64
}

// cachedFile is the cache representation of a processed download.
type cachedFile struct {
	FileName string `json:"fileName"`
	Content  []byte `json:"content"`
}

// NewSubtitleRelay creates a relay; c may be nil to disable caching
func NewSubtitleRelay(httpClient client.Client, c cache.Cache, opts RelayOptions) SubtitleRelay {
	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = defaultRelayMaxSize
	}
	hosts := make([]string, 0, len(opts.AllowedHosts))
	for _, h := range opts.AllowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			hosts = append(hosts, h)
		}
	}
	return &DefaultSubtitleRelay{
		client:       httpClient,
		cache:        c,
		allowedHosts: hosts,
		maxSize:      maxSize,
	}
}

// Download relays the subtitle file at req.URL
func (r *DefaultSubtitleRelay) Download(ctx context.Context, req models.DownloadRequest) (*models.DownloadResult, error) {
	logger := config.GetLogger()

	target, err := r.validateURL(req.URL)
	if err != nil {
		return nil, err
	}

	key := cacheKey(target.String())
	if cached, ok := r.fromCache(ctx, key); ok {
		metrics.SubtitleDownloadsTotal.WithLabelValues("cached").Inc()
		logger.Debug().Str("url", target.String()).Msg("Serving subtitle from cache")
		return buildResult(req.FileName, cached.FileName, target, cached.Content), nil
	}

	fetched, err := r.client.Fetch(ctx, target.String())
	if err != nil {
		metrics.SubtitleDownloadsTotal.WithLabelValues("error").Inc()
		if !errors.Is(err, &apperrors.ErrSubtitleResourceNotFound{}) {
			reporting.CaptureError(ctx, err, map[string]string{"component": "relay"})
		}
		logger.Error().Err(err).Str("url", target.String()).Msg("Failed to fetch subtitle")
		return nil, fmt.Errorf("failed to fetch subtitle: %w", err)
	}

	entryName, content, err := r.process(fetched)
	if err != nil {
		metrics.SubtitleDownloadsTotal.WithLabelValues("error").Inc()
		reporting.CaptureError(ctx, err, map[string]string{"component": "relay"})
		logger.Error().Err(err).Str("url", target.String()).Msg("Failed to process subtitle")
		return nil, err
	}

	r.toCache(ctx, key, cachedFile{FileName: entryName, Content: content})
	metrics.SubtitleDownloadsTotal.WithLabelValues("success").Inc()

	result := buildResult(req.FileName, entryName, target, content)
	logger.Info().
		Str("url", target.String()).
		Str("filename", result.Filename).
		Int("size", len(result.Content)).
		Msg("Relayed subtitle")
	return result, nil
}

// process unpacks archives and converts the payload to UTF-8.
// The returned name is the archive entry name, empty for plain files.
func (r *DefaultSubtitleRelay) process(fetched *models.DownloadResult) (string, []byte, error) {
	name, data, isArchive, err := extractSubtitle(fetched.Content, r.maxSize)
	if err != nil {
		return "", nil, err
	}
	if isArchive {
		return name, data, nil
	}

	// Charset parameters describe the upstream body, so they only apply to plain files.
	data, err = toUTF8(fetched.Content, fetched.ContentType)
	if err != nil {
		return "", nil, err
	}
	return name, data, nil
}

func (r *DefaultSubtitleRelay) validateURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, apperrors.ErrURLRequired
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return nil, apperrors.ErrInvalidURL
	}
	if !r.hostAllowed(strings.ToLower(u.Hostname())) {
		return nil, apperrors.ErrInvalidURL
	}
	return u, nil
}

func (r *DefaultSubtitleRelay) hostAllowed(host string) bool {
	if len(r.allowedHosts) == 0 {
		return true
	}
	for _, allowed := range r.allowedHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}

func (r *DefaultSubtitleRelay) fromCache(ctx context.Context, key string) (cachedFile, bool) {
	var entry cachedFile
	if r.cache == nil {
		return entry, false
	}
	raw, ok := r.cache.Get(ctx, key)
	if !ok {
		return entry, false
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		logger := config.GetLogger()
		logger.Warn().Err(err).Str("key", key).Msg("Discarding unreadable cache entry")
		return entry, false
	}
	return entry, true
}

func (r *DefaultSubtitleRelay) toCache(ctx context.Context, key string, entry cachedFile) {
	if r.cache == nil {
		return
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return
	}
	r.cache.Set(ctx, key, raw)
}

func cacheKey(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:])
}

// buildResult picks the file name in order: requested name, archive entry name, URL base name.
func buildResult(requested, entryName string, target *url.URL, content []byte) *models.DownloadResult {
	filename := strings.TrimSpace(requested)
	if filename == "" {
		filename = entryName
	}
	if filename == "" {
		filename = fileNameFromURL(target)
	}
	return &models.DownloadResult{
		Filename:    filename,
		Content:     content,
		ContentType: getContentTypeFromFilename(filename),
	}
}

func fileNameFromURL(u *url.URL) string {
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return defaultFileName
	}
	if !isSubtitleFile(base) {
		return base + ".srt"
	}
	return base
}
