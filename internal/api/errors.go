package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a gateway failure for the caller.
type Kind int

const (
	// KindNetwork covers transport failures, timeouts and 5xx responses.
	KindNetwork Kind = iota
	// KindValidation is a 4xx rejection carrying a server-provided message.
	KindValidation
	// KindConflict is a stale optimistic-concurrency version (409).
	KindConflict
	// KindNotFound means the entity was deleted concurrently (404).
	KindNotFound
	// KindUnauthorized is a 401; the session is no longer valid.
	KindUnauthorized
)

// Error is a failed gateway operation. Detail carries the server's error
// envelope message when one was provided.
type Error struct {
	Kind       Kind
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return "request failed"
}

func kindForStatus(code int) Kind {
	switch code {
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	}
	if code >= 400 && code < 500 {
		return KindValidation
	}
	return KindNetwork
}

// Message extracts the server-provided message from err, falling back to
// the given generic message for network and unclassified failures.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

// IsKind reports whether err is a gateway error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// IsConflict reports a stale-version rejection.
func IsConflict(err error) bool { return IsKind(err, KindConflict) }

// IsNotFound reports a concurrently-deleted entity.
func IsNotFound(err error) bool { return IsKind(err, KindNotFound) }

// IsUnauthorized reports an invalid session.
func IsUnauthorized(err error) bool { return IsKind(err, KindUnauthorized) }
