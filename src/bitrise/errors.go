package bitrise

import (
	"errors"
	"fmt"
)

// ErrMissingToken is returned when a request would be made without a
// configured API token. It is detected before any network activity.
var ErrMissingToken = errors.New("bitrise API token is not configured")

// RemoteError reports a non-success HTTP status from the Bitrise API. The
// response body is carried verbatim; callers decide how to react.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("bitrise API request failed with status %d: %s", e.StatusCode, e.Body)
}

// TransportError reports that the network call itself failed (DNS, TLS,
// connection reset). No HTTP status exists in this case.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("bitrise API request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// CancelledError reports that the invocation was cancelled by the caller.
// OutcomeUnknown is true when cancellation happened after the request may
// have left the process, so the remote action's completion state is unknown
// (relevant for non-idempotent operations such as triggering a build).
type CancelledError struct {
	OutcomeUnknown bool
	Err            error
}

func (e *CancelledError) Error() string {
	if e.OutcomeUnknown {
		return "request cancelled; remote outcome unknown"
	}
	return "request cancelled before it was sent"
}

func (e *CancelledError) Unwrap() error {
	return e.Err
}
