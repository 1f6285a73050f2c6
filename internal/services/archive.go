package services

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/nwaples/rardecode/v2"

	"github.com/beamlak/srts/internal/config"
)

var (
	zipMagic  = []byte("PK\x03\x04")
	rarMagic  = []byte("Rar!\x1a\x07")
	gzipMagic = []byte{0x1f, 0x8b}
)

// errNoSubtitleInArchive is returned when an archive holds no subtitle file.
var errNoSubtitleInArchive = errors.New("archive contains no subtitle file")

// archiveKind reports the archive format of content, or "" for plain files.
func archiveKind(content []byte) string {
	switch {
	case bytes.HasPrefix(content, zipMagic):
		return "zip"
	case bytes.HasPrefix(content, rarMagic):
		return "rar"
	case bytes.HasPrefix(content, gzipMagic):
		return "gzip"
	default:
		return ""
	}
}

// extractSubtitle unpacks the first subtitle file from an archive.
// ok is false when content is not an archive; the caller then uses it as is.
func extractSubtitle(content []byte, maxSize int64) (name string, data []byte, ok bool, err error) {
	kind := archiveKind(content)
	if kind == "" {
		return "", nil, false, nil
	}

	logger := config.GetLogger()
	logger.Debug().Str("format", kind).Int("size", len(content)).Msg("Extracting subtitle from archive")

	switch kind {
	case "zip":
		name, data, err = extractFromZip(content, maxSize)
	case "rar":
		name, data, err = extractFromRar(content, maxSize)
	case "gzip":
		name, data, err = extractFromGzip(content, maxSize)
	}
	if err != nil {
		return "", nil, true, fmt.Errorf("failed to extract %s archive: %w", kind, err)
	}
	return name, data, true, nil
}

func extractFromZip(content []byte, maxSize int64) (string, []byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", nil, err
	}
	for _, file := range zr.File {
		if file.FileInfo().IsDir() || !isSubtitleFile(file.Name) {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", nil, fmt.Errorf("failed to open %s: %w", file.Name, err)
		}
		data, err := readLimited(rc, maxSize)
		rc.Close()
		if err != nil {
			return "", nil, fmt.Errorf("failed to read %s: %w", file.Name, err)
		}
		return filepath.Base(file.Name), data, nil
	}
	return "", nil, errNoSubtitleInArchive
}

func extractFromRar(content []byte, maxSize int64) (string, []byte, error) {
	rr, err := rardecode.NewReader(bytes.NewReader(content))
	if err != nil {
		return "", nil, err
	}
	for {
		header, err := rr.Next()
		if errors.Is(err, io.EOF) {
			return "", nil, errNoSubtitleInArchive
		}
		if err != nil {
			return "", nil, err
		}
		if header.IsDir || !isSubtitleFile(header.Name) {
			continue
		}
		data, err := readLimited(rr, maxSize)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read %s: %w", header.Name, err)
		}
		return filepath.Base(header.Name), data, nil
	}
}

func extractFromGzip(content []byte, maxSize int64) (string, []byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(content))
	if err != nil {
		return "", nil, err
	}
	defer gr.Close()

	data, err := readLimited(gr, maxSize)
	if err != nil {
		return "", nil, err
	}
	// A gzip stream holds a single file; its recorded name is optional.
	if gr.Name == "" {
		return "", data, nil
	}
	return filepath.Base(gr.Name), data, nil
}

func readLimited(r io.Reader, maxSize int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("extracted file exceeds %d bytes", maxSize)
	}
	return data, nil
}

func isSubtitleFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".srt", ".ass", ".ssa", ".vtt", ".sub":
		return true
	}
	return false
}

func getContentTypeFromFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".srt":
		return "application/x-subrip"
	case ".ass", ".ssa":
		return "application/x-ass"
	case ".vtt":
		return "text/vtt"
	case ".sub":
		return "application/x-sub"
	case ".zip":
		return "application/zip"
	default:
		return "application/octet-stream"
	}
}
