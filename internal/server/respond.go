package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/l0p7/innkeeper/internal/store"
)

// statusClientClosedRequest is the de facto status for a request whose
// caller went away before the answer was ready.
const statusClientClosedRequest = 499

const maxBodyBytes = 1 << 20

// statusFor maps an error's kind onto an HTTP status.
func statusFor(err error) int {
	switch store.KindOf(err) {
	case store.KindNotFound:
		return http.StatusNotFound
	case store.KindConflict:
		return http.StatusConflict
	case store.KindInvalid:
		return http.StatusBadRequest
	case store.KindCanceled:
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusServiceUnavailable
		}
		return statusClientClosedRequest
	case store.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.requestLogger(r).Error("response encode failed", slog.Any("error", err))
	}
}

// writeError emits {"error": message}. Server-side failures are logged with
// the request's correlation id; client errors are not.
func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.requestLogger(r).Error("request failed",
			slog.String("kind", string(store.KindOf(err))),
			slog.Any("error", err),
		)
	}
	h.writeJSON(w, r, status, map[string]any{"error": err.Error()})
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: request body: %v", store.ErrInvalid, err)
	}
	return nil
}

// parseTime accepts RFC 3339 timestamps and bare dates (midnight UTC).
func parseTime(name, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: query parameter %q is required", store.ErrInvalid, name)
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: query parameter %q must be a date or RFC 3339 time", store.ErrInvalid, name)
	}
	return t, nil
}

// parseRange reads ?from=&to=. ok is false when neither is present.
func parseRange(r *http.Request) (from, to time.Time, ok bool, err error) {
	query := r.URL.Query()
	if query.Get("from") == "" && query.Get("to") == "" {
		return time.Time{}, time.Time{}, false, nil
	}
	if from, err = parseTime("from", query.Get("from")); err != nil {
		return time.Time{}, time.Time{}, true, err
	}
	if to, err = parseTime("to", query.Get("to")); err != nil {
		return time.Time{}, time.Time{}, true, err
	}
	return from, to, true, nil
}
