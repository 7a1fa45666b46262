// Package records implements the guest-house operations on top of the record
// store. Every read goes through the gateway's cache and every write through
// its retrying, cache-clearing write path.
package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/l0p7/innkeeper/internal/gateway"
	"github.com/l0p7/innkeeper/internal/store"
	"github.com/l0p7/innkeeper/internal/templates"
)

const (
	defaultDueDays           = 14
	defaultValidDays         = 30
	defaultNumberTemplate    = `INV-{{ .Issued | date "2006" }}-{{ printf "%05d" .Sequence }}`
	defaultQuotationTemplate = `Q-{{ .Issued | date "2006-01" }}-{{ printf "%04d" .Sequence }}`
)

// Options wires a Service. Store and Gateway are required.
type Options struct {
	Store   store.Store
	Gateway *gateway.Gateway
	// NumberTemplate renders invoice numbers from NumberData. Nil selects
	// INV-<year>-<sequence padded to five digits>.
	NumberTemplate *templates.Template
	// QuotationTemplate renders quotation numbers from NumberData with
	// Sequence restarting every month. Nil selects Q-<year>-<month>-<sequence>.
	QuotationTemplate  *templates.Template
	DueDays            int
	QuotationValidDays int
	Now                func() time.Time
}

// NumberData is the context handed to the invoice and quotation number
// templates. BookingID is empty for quotations.
type NumberData struct {
	Issued    time.Time
	Year      int
	Month     int
	Sequence  int
	BookingID string
	GuestID   string
}

type Service struct {
	logger            *slog.Logger
	store             store.Store
	gateway           *gateway.Gateway
	numberTemplate    *templates.Template
	quotationTemplate *templates.Template
	dueDays           int
	validDays         int
	now               func() time.Time
}

func NewService(logger *slog.Logger, opts Options) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Store == nil {
		return nil, errors.New("records: store required")
	}
	if opts.Gateway == nil {
		return nil, errors.New("records: gateway required")
	}
	numberTemplate, err := orDefault(opts.NumberTemplate, "invoice-number", defaultNumberTemplate)
	if err != nil {
		return nil, err
	}
	quotationTemplate, err := orDefault(opts.QuotationTemplate, "quotation-number", defaultQuotationTemplate)
	if err != nil {
		return nil, err
	}
	dueDays := opts.DueDays
	if dueDays < 0 {
		dueDays = defaultDueDays
	}
	validDays := opts.QuotationValidDays
	if validDays <= 0 {
		validDays = defaultValidDays
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		logger:            logger.With(slog.String("agent", "records")),
		store:             opts.Store,
		gateway:           opts.Gateway,
		numberTemplate:    numberTemplate,
		quotationTemplate: quotationTemplate,
		dueDays:           dueDays,
		validDays:         validDays,
		now:               now,
	}, nil
}

func orDefault(tmpl *templates.Template, name, source string) (*templates.Template, error) {
	if tmpl != nil {
		return tmpl, nil
	}
	compiled, err := templates.NewRenderer(nil).CompileInline(name, source)
	if err != nil {
		return nil, fmt.Errorf("records: default %s template: %w", name, err)
	}
	return compiled, nil
}

// DefaultOptions fills the invoice and quotation terms with the house defaults.
func DefaultOptions(st store.Store, gw *gateway.Gateway) Options {
	return Options{Store: st, Gateway: gw, DueDays: defaultDueDays, QuotationValidDays: defaultValidDays}
}

// Ping checks the record store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// CachedEntries reports how many reads are currently cached.
func (s *Service) CachedEntries(ctx context.Context) (int64, error) {
	return s.gateway.Size(ctx)
}

func read[T any](ctx context.Context, s *Service, key string, op gateway.Op[T]) (T, error) {
	value, err := gateway.Read(ctx, s.gateway, key, op)
	if err != nil {
		s.logger.DebugContext(ctx, "read failed", slog.String("key", key), slog.Any("error", err))
	}
	return value, err
}

// write runs op through the gateway. A failed cache clear after a committed
// write is logged and the committed value returned; the TTL bounds how long
// the stale entries can be served.
func write[T any](ctx context.Context, s *Service, action string, op gateway.Op[T]) (T, error) {
	value, err := gateway.Write(ctx, s.gateway, op)
	switch {
	case err == nil:
		s.logger.DebugContext(ctx, "record written", slog.String("action", action))
		return value, nil
	case errors.Is(err, gateway.ErrInvalidation):
		s.logger.WarnContext(ctx, "record written but cache not cleared",
			slog.String("action", action),
			slog.Any("error", err),
		)
		return value, nil
	default:
		s.logger.InfoContext(ctx, "write failed",
			slog.String("action", action),
			slog.String("kind", string(store.KindOf(err))),
			slog.Any("error", err),
		)
		var zero T
		return zero, err
	}
}

// deleted adapts a delete call to the gateway's value-returning Op.
func deleted(fn func(ctx context.Context) error) gateway.Op[struct{}] {
	return func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	}
}

func key(collection string, parts ...string) string {
	return collection + ":" + strings.Join(parts, ":")
}

func rangeKey(collection, qualifier string, from, to time.Time) string {
	return key(collection, qualifier, from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
}

func checkRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return fmt.Errorf("%w: from and to are required", store.ErrInvalid)
	}
	if to.Before(from) {
		return fmt.Errorf("%w: range ends before it starts", store.ErrInvalid)
	}
	return nil
}
