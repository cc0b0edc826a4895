package apiclient

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse wraps every payload the client could not interpret.
var ErrMalformedResponse = errors.New("malformed API response")

const fallbackMessage = "API request failed"

// APIError is a response the server rejected, either by status or by an
// explicit success:false envelope.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// IsStatus reports whether err is an APIError carrying status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedResponse, fmt.Sprintf(format, args...))
}
