package api

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/beamlak/srts/internal/apperrors"
	"github.com/beamlak/srts/internal/config"
	"github.com/beamlak/srts/internal/models"
)

// Static messages returned for server-side failures
const (
	msgFetchHistoryFailed = "Failed to fetch history"
	msgSaveHistoryFailed  = "Failed to save to history"
	msgDownloadFailed     = "Failed to download subtitle"
	msgSubtitleNotFound   = "Subtitle not found"
	msgUnavailable        = "Service unavailable"
)

// server holds the HTTP handlers
type server struct {
	deps   Dependencies
	logger zerolog.Logger
}

func newServer(deps Dependencies) *server {
	return &server{
		deps:   deps,
		logger: config.GetLogger(),
	}
}

// searchSubtitles handles GET /api/subtitles/search
func (s *server) searchSubtitles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	s.logger.Debug().Str("query", query).Msg("Search called")

	results, err := s.deps.Search.Search(r.Context(), query)
	if err != nil {
		if v, ok := apperrors.IsValidation(err); ok {
			jsonError(w, v.Message, http.StatusBadRequest)
			return
		}
		// The gateway answers every valid query; anything else is unexpected.
		s.logger.Error().Err(err).Str("query", query).Msg("Search failed")
		jsonError(w, msgUnavailable, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, results)
}

// listHistory handles GET /api/subtitles/history
func (s *server) listHistory(w http.ResponseWriter, r *http.Request) {
	records, err := s.deps.History.List(r.Context())
	if err != nil {
		jsonError(w, msgFetchHistoryFailed, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// appendHistory handles POST /api/subtitles/history
func (s *server) appendHistory(w http.ResponseWriter, r *http.Request) {
	var req models.AppendHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Debug().Err(err).Msg("Rejected malformed history body")
		jsonError(w, apperrors.ErrMissingFields.Message, http.StatusBadRequest)
		return
	}

	rec, err := s.deps.History.Append(r.Context(), req)
	if err != nil {
		if v, ok := apperrors.IsValidation(err); ok {
			jsonError(w, v.Message, http.StatusBadRequest)
			return
		}
		jsonError(w, msgSaveHistoryFailed, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// downloadSubtitle handles GET /api/subtitles/download
func (s *server) downloadSubtitle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := s.deps.Relay.Download(r.Context(), models.DownloadRequest{
		URL:      q.Get("url"),
		FileName: q.Get("fileName"),
	})
	if err != nil {
		if v, ok := apperrors.IsValidation(err); ok {
			jsonError(w, v.Message, http.StatusBadRequest)
			return
		}
		if errors.Is(err, &apperrors.ErrSubtitleResourceNotFound{}) {
			jsonError(w, msgSubtitleNotFound, http.StatusNotFound)
			return
		}
		jsonError(w, msgDownloadFailed, http.StatusBadGateway)
		return
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": result.Filename})
	if disposition == "" {
		disposition = "attachment"
	}
	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Content); err != nil {
		s.logger.Warn().Err(err).Str("filename", result.Filename).Msg("Failed to write subtitle to client")
	}
}

// healthz handles GET /healthz
func (s *server) healthz(w http.ResponseWriter, r *http.Request) {
	if s.deps.Health != nil {
		if err := s.deps.Health.Ping(r.Context()); err != nil {
			s.logger.Error().Err(err).Msg("Health check failed")
			jsonError(w, msgUnavailable, http.StatusServiceUnavailable)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
