package models

// DownloadRequest represents a request to relay a remote subtitle file
type DownloadRequest struct {
	URL      string // Absolute http(s) URL of the subtitle file
	FileName string // Suggested file name for the browser save dialog
}

// DownloadResult represents the result of a subtitle download
type DownloadResult struct {
	Filename    string // Name of the subtitle file
	Content     []byte // Content of the subtitle file
	ContentType string // MIME type (e.g., "application/x-subrip", "application/zip")
}
