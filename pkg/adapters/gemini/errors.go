package gemini

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey is returned before any request when no key is configured.
	ErrMissingAPIKey = errors.New("gemini: API key not configured")

	// ErrNoInlineData is returned when a response carries no media part.
	ErrNoInlineData = errors.New("gemini: response contains no inline data")
)

// APIError is a non-200 response from the service.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	return fmt.Sprintf("gemini: HTTP %d: %s", e.Status, body)
}
