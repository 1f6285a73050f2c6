package models

import (
	"regexp"
	"strconv"
	"strings"
)

// IndexFile is a file attached to a subtitle entry of the external index
type IndexFile struct {
	FileName string `json:"file_name"`
	FileID   int64  `json:"file_id"`
}

// IndexAttributes holds the descriptive part of an index entry
type IndexAttributes struct {
	Title         string      `json:"title"`
	Year          int         `json:"year,omitempty"`
	Language      string      `json:"language"`
	Files         []IndexFile `json:"files"`
	DownloadCount int         `json:"download_count"`
}

// IndexItem represents the raw subtitle entry returned by the external subtitle index
type IndexItem struct {
	ID         string          `json:"id"`
	Attributes IndexAttributes `json:"attributes"`
}

// SubtitleResult represents a normalized search result shown to the user
type SubtitleResult struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Year        *int   `json:"year,omitempty"`
	Language    string `json:"language"`
	DownloadURL string `json:"downloadUrl"`
	FileName    string `json:"fileName"`
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// ReplaceWhitespace replaces every run of whitespace in s with filler.
func ReplaceWhitespace(s, filler string) string {
	return whitespaceRun.ReplaceAllString(s, filler)
}

// SubtitleFileName builds "<title>[.<year>].<language>.srt" with whitespace runs replaced by dots.
func SubtitleFileName(title string, year *int, language string) string {
	parts := []string{title}
	if year != nil {
		parts = append(parts, strconv.Itoa(*year))
	}
	parts = append(parts, language, "srt")
	return ReplaceWhitespace(strings.Join(parts, "."), ".")
}
