package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/beamlak/srts/internal/apperrors"
)

// HistoryRecord is a persisted record of a completed download
type HistoryRecord struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Year        *int      `json:"year" db:"year"`
	Language    string    `json:"language" db:"language"`
	DownloadURL string    `json:"downloadUrl" db:"download_url"`
	FileName    string    `json:"fileName" db:"file_name"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// OptionalYear is a release year decoded from loosely typed input.
// Numbers and numeric strings holding a positive whole year are accepted;
// null, missing and anything else decode to an absent year without failing the enclosing document.
type OptionalYear struct {
	Value *int
}

// UnmarshalJSON implements json.Unmarshaler.
func (y *OptionalYear) UnmarshalJSON(data []byte) error {
	y.Value = ParseYear(data)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (y OptionalYear) MarshalJSON() ([]byte, error) {
	if y.Value == nil {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(*y.Value)), nil
}

// ParseYear decodes a raw JSON value into a year, failing closed to nil.
func ParseYear(raw []byte) *int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	text := string(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		text = strings.TrimSpace(s)
	}

	n, err := strconv.Atoi(text)
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

// AppendHistoryRequest is the body accepted when recording a download
type AppendHistoryRequest struct {
	Title       string       `json:"title"`
	Year        OptionalYear `json:"year"`
	Language    string       `json:"language"`
	DownloadURL string       `json:"downloadUrl"`
	FileName    string       `json:"fileName"`
}

// Validate checks that every required field is present.
func (r *AppendHistoryRequest) Validate() error {
	for _, field := range []string{r.Title, r.Language, r.DownloadURL, r.FileName} {
		if strings.TrimSpace(field) == "" {
			return apperrors.ErrMissingFields
		}
	}
	return nil
}

// Record converts the request into a HistoryRecord stamped with createdAt.
func (r *AppendHistoryRequest) Record(createdAt time.Time) *HistoryRecord {
	return &HistoryRecord{
		Title:       r.Title,
		Year:        r.Year.Value,
		Language:    r.Language,
		DownloadURL: r.DownloadURL,
		FileName:    r.FileName,
		CreatedAt:   createdAt,
	}
}
