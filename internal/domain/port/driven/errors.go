package driven

import (
	"errors"
	"fmt"
)

// ErrUserNotFound indicates the requested GitHub account does not exist.
// Adapters wrap it with the username; match with errors.Is.
var ErrUserNotFound = errors.New("user not found")

// UpstreamError is any GitHub failure other than a missing user: a non-2xx
// response, a transport failure, or a GraphQL error list. StatusCode is zero
// when no HTTP status was observed.
type UpstreamError struct {
	StatusCode int
	Message    string
	Err        error
}

// Error implements error.
func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("github api error: %d: %s", e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("github api error: %d", e.StatusCode)
	case e.Message != "":
		return "github api error: " + e.Message
	case e.Err != nil:
		return "github api error: " + e.Err.Error()
	default:
		return "github api error"
	}
}

// Unwrap returns the underlying cause, if any.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}
