// Package apierr: error defines the typed error returned by every failed
// VaultSens call. It captures the HTTP status, the classified Kind, the best
// available human-readable message, the decoded response payload (when the
// server sent JSON) and the raw response body.
// The original *http.Response is kept for headers/status, but its Body is
// already fully consumed by the caller (do not read it again).
package apierr

import (
	"errors"
	"net/http"
)

// MissingCredentialsMessage is the message of the error returned when a call
// is attempted without an API key and secret.
const MissingCredentialsMessage = "API key and secret are required"

// APIError represents one failed VaultSens operation: a non-2xx response,
// a transport failure, or a local precondition failure. It is built once at
// the point where the failure is observed and is not modified afterwards.
type APIError struct {
	// Status is the HTTP status code (e.g., 403, 413). Transport failures
	// use 500; local argument errors use 0.
	Status int

	// Kind is the classified business error. Never empty.
	Kind Kind

	// Message is the server-provided message when the body carried one,
	// otherwise transport-level text.
	Message string

	// Reason is the short "error" string some responses include
	// (e.g., "Forbidden"). Optional.
	Reason string

	// Payload is the decoded JSON body. Nil when the server did not send JSON.
	Payload any

	// Raw is the trimmed raw response body.
	Raw string

	// Resp is the original HTTP response for access to headers.
	// The body has already been fully read/consumed upstream; do not read it.
	Resp *http.Response

	err error
}

// Error implements the error interface.
// It prefers Message; when empty, it falls back to the canonical HTTP
// status text for Status.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.Status)
}

// Unwrap returns the underlying transport or local cause, if any.
func (e *APIError) Unwrap() error {
	return e.err
}

// New classifies (status, message) with c and returns the resulting error.
// A nil c means DefaultClassifier.
func New(status int, message string, payload any, c Classifier) *APIError {
	return &APIError{
		Status:  status,
		Kind:    classify(c, status, message),
		Message: message,
		Payload: payload,
	}
}

// MissingCredentials is the error for calls made without an API key/secret.
func MissingCredentials() *APIError {
	return &APIError{
		Status:  http.StatusUnauthorized,
		Kind:    KindUnauthorized,
		Message: MissingCredentialsMessage,
	}
}

// FromTransport wraps a failure where no response was received at all
// (DNS, refused connection, TLS, canceled context). Status is 500 by
// convention and the message is the transport's own text.
func FromTransport(err error, c Classifier) *APIError {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	e := New(http.StatusInternalServerError, msg, nil, c)
	e.err = err
	return e
}

// Local wraps an argument or I/O failure detected before any request was
// sent. Status is 0 and Kind is KindUnknown.
func Local(err error) *APIError {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &APIError{
		Kind:    KindUnknown,
		Message: msg,
		err:     err,
	}
}

// KindOf returns the Kind carried by err, or KindUnknown when err does not
// wrap an *APIError.
func KindOf(err error) Kind {
	var ae *APIError
	if errors.As(err, &ae) && ae.Kind != "" {
		return ae.Kind
	}
	return KindUnknown
}

// IsKind reports whether err wraps an *APIError of any of the given kinds.
func IsKind(err error, kinds ...Kind) bool {
	var ae *APIError
	if !errors.As(err, &ae) {
		return false
	}
	for _, k := range kinds {
		if ae.Kind == k {
			return true
		}
	}
	return false
}

func classify(c Classifier, status int, message string) Kind {
	if c == nil {
		c = DefaultClassifier
	}
	k := c.Classify(status, message)
	if !k.Valid() {
		return KindUnknown
	}
	return k
}
