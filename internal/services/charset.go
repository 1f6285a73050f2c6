package services

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"strings"

	"golang.org/x/net/html/charset"
)

// toUTF8 converts content to UTF-8 when contentType declares another charset.
// Content without a declared charset, or declared as UTF-8, is returned unchanged.
func toUTF8(content []byte, contentType string) ([]byte, error) {
	label := declaredCharset(contentType)
	if label == "" || isUTF8Label(label) {
		return content, nil
	}

	r, err := charset.NewReaderLabel(label, bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	converted, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to convert from %s: %w", label, err)
	}
	return converted, nil
}

func declaredCharset(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(params["charset"])
}

func isUTF8Label(label string) bool {
	switch strings.ToLower(label) {
	case "utf-8", "utf8", "unicode-1-1-utf-8":
		return true
	}
	return false
}
