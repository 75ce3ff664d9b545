package apiclient

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse marks a response that decoded but lacked required fields.
var ErrMalformedResponse = errors.New("malformed response")

// FailureError is an application-reported failure: the API answered with
// success=false. Message is the server's text and may be empty.
type FailureError struct {
	Message string
}

func (e *FailureError) Error() string {
	if e.Message == "" {
		return "request rejected by server"
	}
	return e.Message
}

// TransportError covers everything that prevented a usable envelope: network
// errors, non-JSON bodies and responses missing required fields. HTTP status
// codes are not distinguished.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsFailure reports whether err is an application-reported failure.
func IsFailure(err error) bool {
	var fe *FailureError
	return errors.As(err, &fe)
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// Describe picks the text shown to the user for a failed call: the server's
// own message when it sent one, fallback for a bare success=false, and
// transportMessage for anything else.
func Describe(err error, fallback, transportMessage string) string {
	var fe *FailureError
	if errors.As(err, &fe) {
		if fe.Message != "" {
			return fe.Message
		}
		return fallback
	}
	return transportMessage
}
