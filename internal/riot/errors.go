package riot

import (
	"errors"
	"fmt"
)

// ErrUnknownRegion is returned by NewClient for a region outside the fixed
// platform-host table. This is a configuration error raised before any
// network call.
var ErrUnknownRegion = errors.New("unknown region")

// APIError is an upstream failure: either the response body carried the
// nested status marker, or the transport call itself failed. It is never
// swallowed at this layer.
type APIError struct {
	// Endpoint is the named endpoint that failed (e.g. "match-summary").
	Endpoint string
	// StatusCode is the upstream status code when the error marker was
	// present; zero for pure transport failures.
	StatusCode int
	// Message is the upstream status message, if any.
	Message string
	// Err is the underlying transport error, if any.
	Err error
}

// Error implements the error interface
func (e *APIError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s :: failed :: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s :: failed :: status %d", e.Endpoint, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s :: failed :: %v", e.Endpoint, e.Err)
	default:
		return fmt.Sprintf("%s :: failed", e.Endpoint)
	}
}

// Unwrap implements the error unwrapping interface
func (e *APIError) Unwrap() error {
	return e.Err
}

func newUpstreamError(endpoint string, statusCode int, message string) *APIError {
	return &APIError{Endpoint: endpoint, StatusCode: statusCode, Message: message}
}

func newTransportError(endpoint string, err error) *APIError {
	return &APIError{Endpoint: endpoint, Err: err}
}
