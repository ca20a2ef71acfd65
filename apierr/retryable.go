package apierr

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"syscall"
)

// IsTransient reports whether err looks like a temporary failure that a
// caller may choose to repeat. The client itself never retries.
// Order is IMPORTANT.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	// Real network timeouts from the net stack (dial/read/TLS).
	var op *net.OpError
	if errors.As(err, &op) && op.Timeout() {
		return true
	}

	// The caller's own budget ran out or it gave up: not transient.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var hasTimeout interface{ Timeout() bool }
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return true
	}

	// Flaky transport / short reads.
	if errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	var ae *APIError
	if errors.As(err, &ae) && ae.err == nil {
		switch ae.Status {
		case http.StatusRequestTimeout, // 408
			http.StatusTooManyRequests,     // 429
			http.StatusBadGateway,          // 502
			http.StatusServiceUnavailable,  // 503
			http.StatusGatewayTimeout:      // 504
			return true
		}
	}

	return false
}
