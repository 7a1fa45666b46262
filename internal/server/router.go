package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/l0p7/innkeeper/internal/metrics"
	"github.com/l0p7/innkeeper/internal/records"
)

// HandlerOptions configures the API handler. Records is required.
type HandlerOptions struct {
	Records           *records.Service
	Metrics           *metrics.Recorder
	CorrelationHeader string
	Now               func() time.Time
}

type handler struct {
	logger            *slog.Logger
	records           *records.Service
	metrics           *metrics.Recorder
	correlationHeader string
	now               func() time.Time
}

type correlationKey struct{}

// NewHandler builds the JSON API over the records service.
func NewHandler(logger *slog.Logger, opts HandlerOptions) (http.Handler, error) {
	if opts.Records == nil {
		return nil, errors.New("server: records service required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	h := &handler{
		logger:            logger.With(slog.String("agent", "http")),
		records:           opts.Records,
		metrics:           opts.Metrics,
		correlationHeader: strings.TrimSpace(opts.CorrelationHeader),
		now:               now,
	}

	mux := http.NewServeMux()
	route := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, h.instrument(pattern, fn))
	}

	route("GET /rooms", h.listRooms)
	route("POST /rooms", h.createRoom)
	route("GET /rooms/available", h.availableRooms)
	route("GET /rooms/board", h.roomBoard)
	route("GET /rooms/{id}", h.getRoom)
	route("PUT /rooms/{id}", h.updateRoom)
	route("DELETE /rooms/{id}", h.deleteRoom)
	route("PATCH /rooms/{id}/status", h.setRoomStatus)
	route("GET /rooms/{id}/quote", h.quoteRoom)

	route("GET /guests", h.listGuests)
	route("POST /guests", h.createGuest)
	route("GET /guests/{id}", h.getGuest)
	route("PUT /guests/{id}", h.updateGuest)
	route("DELETE /guests/{id}", h.deleteGuest)
	route("GET /guests/{id}/quotations", h.guestQuotations)

	route("GET /bookings", h.listBookings)
	route("POST /bookings", h.createBooking)
	route("GET /bookings/{id}", h.getBooking)
	route("PUT /bookings/{id}", h.updateBooking)
	route("DELETE /bookings/{id}", h.deleteBooking)
	route("POST /bookings/{id}/confirm", h.confirmBooking)
	route("POST /bookings/{id}/check-in", h.checkIn)
	route("POST /bookings/{id}/check-out", h.checkOut)
	route("POST /bookings/{id}/cancel", h.cancelBooking)
	route("GET /bookings/{id}/invoices", h.bookingInvoices)

	route("GET /invoices", h.listInvoices)
	route("POST /invoices", h.createInvoice)
	route("GET /invoices/{id}", h.getInvoice)
	route("PUT /invoices/{id}", h.updateInvoice)
	route("DELETE /invoices/{id}", h.deleteInvoice)
	route("PATCH /invoices/{id}/status", h.setInvoiceStatus)

	route("GET /quotations", h.listQuotations)
	route("POST /quotations", h.createQuotation)
	route("GET /quotations/{id}", h.getQuotation)
	route("PUT /quotations/{id}", h.updateQuotation)
	route("DELETE /quotations/{id}", h.deleteQuotation)
	route("PATCH /quotations/{id}/status", h.setQuotationStatus)

	route("GET /expenses", h.listExpenses)
	route("POST /expenses", h.createExpense)
	route("GET /expenses/{id}", h.getExpense)
	route("PUT /expenses/{id}", h.updateExpense)
	route("DELETE /expenses/{id}", h.deleteExpense)

	route("GET /tasks", h.listTasks)
	route("POST /tasks", h.createTask)
	route("GET /tasks/stats", h.taskStats)
	route("GET /tasks/{id}", h.getTask)
	route("PUT /tasks/{id}", h.updateTask)
	route("DELETE /tasks/{id}", h.deleteTask)

	route("GET /housekeeping/cleaning-tasks", h.listCleaningTasks)
	route("POST /housekeeping/cleaning-tasks", h.createCleaningTask)
	route("GET /housekeeping/cleaning-tasks/{id}", h.getCleaningTask)
	route("PUT /housekeeping/cleaning-tasks/{id}", h.updateCleaningTask)
	route("DELETE /housekeeping/cleaning-tasks/{id}", h.deleteCleaningTask)
	route("GET /housekeeping/inventory", h.listInventory)
	route("POST /housekeeping/inventory", h.createInventoryItem)
	route("GET /housekeeping/inventory/{id}", h.getInventoryItem)
	route("PUT /housekeeping/inventory/{id}", h.updateInventoryItem)
	route("DELETE /housekeeping/inventory/{id}", h.deleteInventoryItem)
	route("GET /housekeeping/staff", h.listStaff)
	route("POST /housekeeping/staff", h.createStaffMember)
	route("GET /housekeeping/staff/{id}", h.getStaffMember)
	route("PUT /housekeeping/staff/{id}", h.updateStaffMember)
	route("DELETE /housekeeping/staff/{id}", h.deleteStaffMember)

	route("GET /settings", h.getSettings)
	route("PUT /settings", h.updateSettings)
	route("GET /settings/tax", h.calculateTax)

	route("GET /reports/financial", h.financialReport)
	route("GET /dashboard", h.dashboard)
	route("GET /healthz", h.health)
	mux.Handle("GET /metrics", opts.Metrics.Handler())

	return mux, nil
}

// instrument tags the request with a correlation id, echoes it on the
// response, and records route metrics once the handler returns.
func (h *handler) instrument(pattern string, next http.Handler) http.Handler {
	_, path, found := strings.Cut(pattern, " ")
	if !found {
		path = pattern
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := h.now()
		id := h.correlationID(r)
		if h.correlationHeader != "" {
			w.Header().Set(h.correlationHeader, id)
		}
		r = r.WithContext(context.WithValue(r.Context(), correlationKey{}, id))
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		elapsed := h.now().Sub(start)
		h.metrics.ObserveHTTP(path, r.Method, rec.status, elapsed)
		h.requestLogger(r).Debug("request served",
			slog.String("method", r.Method),
			slog.String("route", path),
			slog.Int("status", rec.status),
			slog.Duration("latency", elapsed),
		)
	})
}

func (h *handler) correlationID(r *http.Request) string {
	if h.correlationHeader != "" {
		if candidate := strings.TrimSpace(r.Header.Get(h.correlationHeader)); candidate != "" {
			return candidate
		}
	}
	return uuid.NewString()
}

func (h *handler) requestLogger(r *http.Request) *slog.Logger {
	if id, ok := r.Context().Value(correlationKey{}).(string); ok {
		return h.logger.With(slog.String("correlation_id", id))
	}
	return h.logger
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status = status
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
