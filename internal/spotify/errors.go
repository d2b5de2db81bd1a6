package spotify

import (
	"fmt"
)

// ErrTransport indicates the request to Spotify could not complete:
// DNS failure, refused connection, timeout or a cancelled context.
type ErrTransport struct {
	Endpoint string
	Cause    error
}

func (e *ErrTransport) Error() string {
	return fmt.Sprintf("spotify %s: request failed: %v", e.Endpoint, e.Cause)
}

func (e *ErrTransport) Unwrap() error { return e.Cause }

// ErrProviderRequest indicates Spotify answered with a non-2xx status.
// Body holds the raw response text.
type ErrProviderRequest struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *ErrProviderRequest) Error() string {
	return fmt.Sprintf("spotify %s: status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// ErrDataShape indicates the response body was not valid JSON or a required
// field was missing or had the wrong type. Field is the JSON path of the
// offending value when known.
type ErrDataShape struct {
	Endpoint string
	Field    string
	Cause    error
}

func (e *ErrDataShape) Error() string {
	if _, ok := e.Cause.(*missingFieldError); ok {
		return fmt.Sprintf("spotify %s: missing required field %s", e.Endpoint, e.Field)
	}
	if e.Field != "" {
		return fmt.Sprintf("spotify %s: invalid field %s: %v", e.Endpoint, e.Field, e.Cause)
	}
	return fmt.Sprintf("spotify %s: malformed response: %v", e.Endpoint, e.Cause)
}

func (e *ErrDataShape) Unwrap() error { return e.Cause }

// missingFieldError is returned by the mappers; the client wraps it into an
// ErrDataShape carrying the endpoint.
type missingFieldError struct {
	path string
}

func (m *missingFieldError) Error() string {
	return "missing required field " + m.path
}

func missing(path string) error {
	return &missingFieldError{path: path}
}
