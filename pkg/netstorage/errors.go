package netstorage

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrNotFound indicates the addressed object or directory does not exist
	ErrNotFound = errors.New("netstorage: not found")

	// ErrUploadFailed indicates an upload could not be completed
	ErrUploadFailed = errors.New("netstorage: upload failed")

	// ErrMalformedResponse indicates a response body could not be parsed
	ErrMalformedResponse = errors.New("netstorage: malformed response")

	// ErrTransport indicates a network failure or an unexpected HTTP status
	ErrTransport = errors.New("netstorage: transport error")

	// ErrUnknownAction is returned for verbs outside the supported action set
	ErrUnknownAction = errors.New("netstorage: unknown action")

	// ErrMissingCredential is returned when signing without a key name or secret
	ErrMissingCredential = errors.New("netstorage: missing credential")

	// ErrInvalidSignature is returned when a received signature does not verify
	ErrInvalidSignature = errors.New("netstorage: invalid signature")

	// ErrInvalidConfig indicates the client configuration is incomplete
	ErrInvalidConfig = errors.New("netstorage: invalid config")
)

// RequestError describes a failed storage operation.
type RequestError struct {
	Op         string
	Path       Path
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("netstorage %s %q: status %d: %v", e.Op, e.Path.String(), e.StatusCode, e.Err)
	}
	return fmt.Sprintf("netstorage %s %q: %v", e.Op, e.Path.String(), e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err means the target does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
