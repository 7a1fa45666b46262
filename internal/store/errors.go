package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound    = errors.New("store: record not found")
	ErrConflict    = errors.New("store: conflicting record")
	ErrInvalid     = errors.New("store: invalid record")
	ErrUnavailable = errors.New("store: temporarily unavailable")
)

// Kind classifies an error for retry decisions and HTTP responses.
type Kind string

const (
	KindNotFound    Kind = "not_found"
	KindConflict    Kind = "conflict"
	KindInvalid     Kind = "invalid"
	KindCanceled    Kind = "canceled"
	KindUnavailable Kind = "unavailable"
	KindUnknown     Kind = "unknown"
)

// KindOf maps err onto a Kind. Nil errors have no kind.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrInvalid):
		return KindInvalid
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.Is(err, ErrUnavailable):
		return KindUnavailable
	default:
		return KindUnknown
	}
}

// Describe reduces err to the {kind, message} shape used by retry
// classification.
func Describe(err error) map[string]any {
	if err == nil {
		return map[string]any{"kind": "", "message": ""}
	}
	return map[string]any{"kind": string(KindOf(err)), "message": err.Error()}
}
