package service

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

var (
	// ErrNetwork marks requests that never produced a response.
	ErrNetwork = errors.New("cinema api unreachable")
	// ErrNotFound marks 404 responses.
	ErrNotFound = errors.New("cinema api entity not found")
	// ErrConflict marks 409 responses. The backend does not report every
	// unavailable seat this way, so callers must not rely on it.
	ErrConflict = errors.New("cinema api conflict")
)

// APIError is returned when the cinema API responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Status     string
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	if e == nil {
		return "cinema api error"
	}
	if e.Body == "" {
		return fmt.Sprintf("cinema api error: %s", e.Status)
	}
	return fmt.Sprintf("cinema api error: %s: %s", e.Status, e.Body)
}

func markStatus(apiErr *APIError) error {
	switch apiErr.StatusCode {
	case http.StatusNotFound:
		return errors.Mark(apiErr, ErrNotFound)
	case http.StatusConflict:
		return errors.Mark(apiErr, ErrConflict)
	default:
		return apiErr
	}
}

// IsNotFound reports whether the error represents a 404 from the API.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether the error represents a 409 from the API.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsNetwork reports whether the request failed before any response arrived.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// IsFetchError reports whether err is a transport failure or a non-2xx
// response, as opposed to a local or decoding error.
func IsFetchError(err error) bool {
	if err == nil {
		return false
	}
	if IsNetwork(err) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
