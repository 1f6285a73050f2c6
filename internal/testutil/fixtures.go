package testutil

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/beamlak/srts/internal/models"
)

// IndexItemOptions describes one entry of a fake subtitle index response
type IndexItemOptions struct {
	ID       string
	Title    string
	Year     int
	Language string
	FileID   int64  // 0 means the entry has no files
	FileName string // may be empty while FileID is set
}

// IndexSearchJSON renders a subtitle index search response body for the given entries.
// This is a test helper and should not be used in production code.
func IndexSearchJSON(t *testing.T, items ...IndexItemOptions) []byte {
	t.Helper()

	out := make([]models.IndexItem, 0, len(items))
	for _, opt := range items {
		item := models.IndexItem{
			ID: opt.ID,
			Attributes: models.IndexAttributes{
				Title:    opt.Title,
				Year:     opt.Year,
				Language: opt.Language,
				Files:    []models.IndexFile{},
			},
		}
		if opt.FileID != 0 {
			item.Attributes.Files = append(item.Attributes.Files, models.IndexFile{FileID: opt.FileID, FileName: opt.FileName})
		}
		out = append(out, item)
	}

	data, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal index fixture: %v", err)
	}
	return data
}

// ArchiveFile is one entry written by BuildZip
type ArchiveFile struct {
	Name    string
	Content string
}

// BuildZip creates an in-memory ZIP archive holding files in order.
// This is a test helper and should not be used in production code.
func BuildZip(t *testing.T, files ...ArchiveFile) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f.Name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", f.Name, err)
		}
		if _, err := w.Write([]byte(f.Content)); err != nil {
			t.Fatalf("write zip entry %s: %v", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

// SampleSRT is a minimal SubRip document used as download payload in tests.
const SampleSRT = "1\n00:00:01,000 --> 00:00:02,000\nHello\n"

// IntPtr is a helper for creating *int values in tests
func IntPtr(v int) *int {
	return &v
}
