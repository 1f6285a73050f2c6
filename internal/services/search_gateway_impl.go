package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/fallback"

	"github.com/beamlak/srts/internal/apperrors"
	"github.com/beamlak/srts/internal/client"
	"github.com/beamlak/srts/internal/config"
	"github.com/beamlak/srts/internal/metrics"
	"github.com/beamlak/srts/internal/models"
	"github.com/beamlak/srts/internal/reporting"
)

// Fallback causes, used as the "reason" label of subtitle_search_fallbacks_total.
const (
	FallbackReasonNetwork  = "network"
	FallbackReasonStatus   = "status"
	FallbackReasonDecode   = "decode"
	FallbackReasonEmpty    = "empty"
	FallbackReasonCanceled = "canceled"
)

// placeholderLanguages are the labels of the static results served when the index is unavailable.
var placeholderLanguages = []string{"English", "Spanish"}

// DefaultSearchGateway implements SearchGateway on top of the subtitle index client
type DefaultSearchGateway struct {
	client          client.Client
	downloadBaseURL string
	now             func() time.Time
}

// NewSearchGateway creates a gateway that synthesizes download URLs under downloadBaseURL.
// now supplies the calendar year of placeholder results; nil means time.Now.
func NewSearchGateway(c client.Client, downloadBaseURL string, now func() time.Time) SearchGateway {
	if now == nil {
		now = time.Now
	}
	return &DefaultSearchGateway{
		client:          c,
		downloadBaseURL: strings.TrimRight(downloadBaseURL, "/"),
		now:             now,
	}
}

// Search looks the query up in the index and falls back to placeholder results on any failure
func (g *DefaultSearchGateway) Search(ctx context.Context, query string) ([]models.SubtitleResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.ErrQueryRequired
	}

	placeholder := fallback.NewWithFunc(func(exec failsafe.Execution[[]models.SubtitleResult]) ([]models.SubtitleResult, error) {
		g.recordFallback(ctx, query, exec.LastError())
		return PlaceholderResults(query, g.now()), nil
	})

	results, err := failsafe.With[[]models.SubtitleResult](placeholder).
		WithContext(ctx).
		Get(func() ([]models.SubtitleResult, error) {
			return g.lookup(ctx, query)
		})
	if err != nil {
		// The executor gave up before the fallback ran, typically on a canceled context.
		cause := err
		if ctxErr := ctx.Err(); ctxErr != nil {
			cause = ctxErr
		}
		g.recordFallback(ctx, query, cause)
		return PlaceholderResults(query, g.now()), nil
	}
	return results, nil
}

func (g *DefaultSearchGateway) lookup(ctx context.Context, query string) ([]models.SubtitleResult, error) {
	items, err := g.client.SearchByQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperrors.ErrNoResults
	}

	results := make([]models.SubtitleResult, 0, len(items))
	for _, item := range items {
		results = append(results, g.convert(item))
	}

	metrics.SearchesTotal.WithLabelValues("live").Inc()
	return results, nil
}

func (g *DefaultSearchGateway) convert(item models.IndexItem) models.SubtitleResult {
	attrs := item.Attributes

	var year *int
	if attrs.Year > 0 {
		y := attrs.Year
		year = &y
	}

	// The download endpoint is keyed by file id; entries without files fall back to the entry id.
	fileRef := item.ID
	fileName := ""
	if len(attrs.Files) > 0 {
		fileRef = strconv.FormatInt(attrs.Files[0].FileID, 10)
		fileName = attrs.Files[0].FileName
	}
	if fileName == "" {
		fileName = models.SubtitleFileName(attrs.Title, year, attrs.Language)
	}

	return models.SubtitleResult{
		ID:          item.ID,
		Title:       attrs.Title,
		Year:        year,
		Language:    attrs.Language,
		DownloadURL: g.downloadBaseURL + "/" + fileRef,
		FileName:    fileName,
	}
}

func (g *DefaultSearchGateway) recordFallback(ctx context.Context, query string, cause error) {
	reason := FallbackReason(cause)

	logger := config.GetLogger()
	logger.Warn().
		Err(cause).
		Str("query", query).
		Str("reason", reason).
		Msg("Subtitle index lookup failed, serving placeholder results")

	metrics.SearchFallbacksTotal.WithLabelValues(reason).Inc()
	metrics.SearchesTotal.WithLabelValues("fallback").Inc()
	reporting.CaptureError(ctx, cause, map[string]string{
		"component": "search_gateway",
		"reason":    reason,
	})
}

// FallbackReason classifies the failure that triggered a placeholder response
func FallbackReason(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrNoResults):
		return FallbackReasonEmpty
	case errors.Is(err, &apperrors.ErrUpstreamStatus{}):
		return FallbackReasonStatus
	case errors.Is(err, &apperrors.ErrUpstreamPayload{}):
		return FallbackReasonDecode
	case errors.Is(err, context.Canceled):
		return FallbackReasonCanceled
	default:
		return FallbackReasonNetwork
	}
}

// PlaceholderResults builds the static results served when the index cannot answer
func PlaceholderResults(query string, now time.Time) []models.SubtitleResult {
	year := now.Year()
	results := make([]models.SubtitleResult, 0, len(placeholderLanguages))
	for i, language := range placeholderLanguages {
		n := strconv.Itoa(i + 1)
		y := year
		results = append(results, models.SubtitleResult{
			ID:          "mock-" + n,
			Title:       query,
			Year:        &y,
			Language:    language,
			DownloadURL: "https://example.com/subtitle" + n + ".srt",
			FileName:    models.SubtitleFileName(query, &y, language),
		})
	}
	return results
}
