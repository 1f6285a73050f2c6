package apperrors

import (
	"errors"
	"fmt"
)

// ErrValidation represents a client input error. Message is the static text returned to the caller.
type ErrValidation struct {
	Message string
}

// Error implements the error interface.
func (e *ErrValidation) Error() string {
	return e.Message
}

// Is allows for error checking with errors.Is().
// A bare *ErrValidation target matches any validation error; a target with a message matches that message only.
func (e *ErrValidation) Is(target error) bool {
	t, ok := target.(*ErrValidation)
	if !ok {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

var (
	// ErrQueryRequired is returned when the search query is absent or blank.
	ErrQueryRequired = &ErrValidation{Message: "Query parameter is required"}

	// ErrMissingFields is returned when a history entry lacks a required field.
	ErrMissingFields = &ErrValidation{Message: "Missing required fields"}

	// ErrURLRequired is returned when the download relay is called without a url.
	ErrURLRequired = &ErrValidation{Message: "URL parameter is required"}

	// ErrInvalidURL is returned when the download url is not an allowed absolute http(s) URL.
	ErrInvalidURL = &ErrValidation{Message: "Invalid download URL"}
)

// IsValidation reports whether err is a client input error and returns it.
func IsValidation(err error) (*ErrValidation, bool) {
	var v *ErrValidation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// ErrUpstreamStatus is returned when a remote service answers with a non-2xx status.
type ErrUpstreamStatus struct {
	URL        string
	StatusCode int
}

// Error implements the error interface.
func (e *ErrUpstreamStatus) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.StatusCode, e.URL)
}

// Is allows for error checking with errors.Is().
func (e *ErrUpstreamStatus) Is(target error) bool {
	_, ok := target.(*ErrUpstreamStatus)
	return ok
}

// ErrUpstreamPayload is returned when a remote response body cannot be decoded.
type ErrUpstreamPayload struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *ErrUpstreamPayload) Error() string {
	return fmt.Sprintf("malformed payload from %s: %v", e.URL, e.Err)
}

// Unwrap returns the decoding error.
func (e *ErrUpstreamPayload) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrUpstreamPayload) Is(target error) bool {
	_, ok := target.(*ErrUpstreamPayload)
	return ok
}

// ErrSubtitleResourceNotFound is returned when the subtitle download URL returns HTTP 404.
type ErrSubtitleResourceNotFound struct {
	URL string
}

// Error implements the error interface.
func (e *ErrSubtitleResourceNotFound) Error() string {
	return fmt.Sprintf("subtitle resource not found at URL: %s", e.URL)
}

// Is allows for error checking with errors.Is().
func (e *ErrSubtitleResourceNotFound) Is(target error) bool {
	_, ok := target.(*ErrSubtitleResourceNotFound)
	return ok
}

// ErrNoResults is returned when the subtitle index answers successfully with an empty result set.
var ErrNoResults = errors.New("subtitle index returned no results")
