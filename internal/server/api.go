package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/l0p7/innkeeper/internal/records"
	"github.com/l0p7/innkeeper/internal/store"
)

type statusChange[S ~string] struct {
	Status S `json:"status"`
}

// rooms

func (h *handler) listRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.records.Rooms(r.Context())
	h.reply(w, r, http.StatusOK, rooms, err)
}

func (h *handler) availableRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.records.AvailableRooms(r.Context())
	h.reply(w, r, http.StatusOK, rooms, err)
}

func (h *handler) roomBoard(w http.ResponseWriter, r *http.Request) {
	board, err := h.records.RoomBoard(r.Context())
	h.reply(w, r, http.StatusOK, board, err)
}

func (h *handler) getRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.records.Room(r.Context(), r.PathValue("id"))
	h.reply(w, r, http.StatusOK, room, err)
}

func (h *handler) createRoom(w http.ResponseWriter, r *http.Request) {
	var room store.Room
	if err := decodeBody(r, &room); err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.records.CreateRoom(r.Context(), room)
	h.reply(w, r, http.StatusCreated, created, err)
}

func (h *handler) updateRoom(w http.ResponseWriter, r *http.Request) {
	var room store.Room
	if err := decodeBody(r, &room); err != nil {
		h.writeError(w, r, err)
		return
	}
	room.ID = r.PathValue("id")
	updated, err := h.records.UpdateRoom(r.Context(), room)
	h.reply(w, r, http.StatusOK, updated, err)
}

func (h *handler) setRoomStatus(w http.ResponseWriter, r *http.Request) {
	var change statusChange[store.RoomStatus]
	if err := decodeBody(r, &change); err != nil {
		h.writeError(w, r, err)
		return
	}
	room, err := h.records.SetRoomStatus(r.Context(), r.PathValue("id"), change.Status)
	h.reply(w, r, http.StatusOK, room, err)
}

func (h *handler) deleteRoom(w http.ResponseWriter, r *http.Request) {
	h.replyDeleted(w, r, h.records.DeleteRoom(r.Context(), r.PathValue("id")))
}

func (h *handler) quoteRoom(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	checkIn, err := parseTime("check_in", query.Get("check_in"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	checkOut, err := parseTime("check_out", query.Get("check_out"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	quote, err := h.records.Quote(r.Context(), r.PathValue("id"), checkIn, checkOut)
	h.reply(w, r, http.StatusOK, quote, err)
}

// guests

func (h *handler) listGuests(w http.ResponseWriter, r *http.Request) {
	guests, err := h.records.Guests(r.Context())
	h.reply(w, r, http.StatusOK, guests, err)
}

func (h *handler) getGuest(w http.ResponseWriter, r *http.Request) {
	guest, err := h.records.Guest(r.Context(), r.PathValue("id"))
	h.reply(w, r, http.StatusOK, guest, err)
}

func (h *handler) createGuest(w http.ResponseWriter, r *http.Request) {
	var guest store.Guest
	if err := decodeBody(r, &guest); err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.records.CreateGuest(r.Context(), guest)
	h.reply(w, r, http.StatusCreated, created, err)
}

func (h *handler) updateGuest(w http.ResponseWriter, r *http.Request) {
	var guest store.Guest
	if err := decodeBody(r, &guest); err != nil {
		h.writeError(w, r, err)
		return
	}
	guest.ID = r.PathValue("id")
	updated, err := h.records.UpdateGuest(r.Context(), guest)
	h.reply(w, r, http.StatusOK, updated, err)
}

func (h *handler) deleteGuest(w http.ResponseWriter, r *http.Request) {
	h.replyDeleted(w, r, h.records.DeleteGuest(r.Context(), r.PathValue("id")))
}

// bookings

// listBookings serves the whole list, ?on= for one calendar day, or
// ?from=&to= for a range.
func (h *handler) listBookings(w http.ResponseWriter, r *http.Request) {
	if on := r.URL.Query().Get("on"); on != "" {
		day, err := parseTime("on", on)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		bookings, err := h.records.BookingsOn(r.Context(), day)
		h.reply(w, r, http.StatusOK, bookings, err)
		return
	}
	from, to, ranged, err := parseRange(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var bookings []store.Booking
	if ranged {
		bookings, err = h.records.BookingsBetween(r.Context(), from, to)
	} else {
		bookings, err = h.records.Bookings(r.Context())
	}
	h.reply(w, r, http.StatusOK, bookings, err)
}

func (h *handler) getBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.records.Booking(r.Context(), r.PathValue("id"))
	h.reply(w, r, http.StatusOK, booking, err)
}

func (h *handler) createBooking(w http.ResponseWriter, r *http.Request) {
	var booking store.Booking
	if err := decodeBody(r, &booking); err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.records.CreateBooking(r.Context(), booking)
	h.reply(w, r, http.StatusCreated, created, err)
}

func (h *handler) updateBooking(w http.ResponseWriter, r *http.Request) {
	var booking store.Booking
	if err := decodeBody(r, &booking); err != nil {
		h.writeError(w, r, err)
		return
	}
	booking.ID = r.PathValue("id")
	updated, err := h.records.UpdateBooking(r.Context(), booking)
	h.reply(w, r, http.StatusOK, updated, err)
}

func (h *handler) deleteBooking(w http.ResponseWriter, r *http.Request) {
	h.replyDeleted(w, r, h.records.DeleteBooking(r.Context(), r.PathValue("id")))
}

func (h *handler) confirmBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.records.ConfirmBooking(r.Context(), r.PathValue("id"))
	h.reply(w, r, http.StatusOK, booking, err)
}

func (h *handler) checkIn(w http.ResponseWriter, r *http.Request) {
	booking, err := h.records.CheckIn(r.Context(), r.PathValue("id"))
	h.reply(w, r, http.StatusOK, booking, err)
}

func (h *handler) checkOut(w http.ResponseWriter, r *http.Request) {
	booking, err := h.records.CheckOut(r.Context(), r.PathValue("id"))
	h.reply(w, r, http.StatusOK, booking, err)
}

func (h *handler) cancelBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.records.CancelBooking(r.Context(), r.PathValue("id"))
	h.reply(w, r, http.StatusOK, booking, err)
}

func (h *handler) bookingInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.records.InvoicesForBooking(r.Context(), r.PathValue("id"))
	h.reply(w, r, http.StatusOK, invoices, err)
}

// invoices

func (h *handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.records.Invoices(r.Context())
	h.reply(w, r, http.StatusOK, invoices, err)
}

func (h *handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.records.Invoice(r.Context(), r.PathValue("id"))
	h.reply(w, r, http.StatusOK, invoice, err)
}

func (h *handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req records.InvoiceRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.records.CreateInvoice(r.Context(), req)
	h.reply(w, r, http.StatusCreated, created, err)
}

func (h *handler) updateInvoice(w http.ResponseWriter, r *http.Request) {
	var invoice store.Invoice
	if err := decodeBody(r, &invoice); err != nil {
		h.writeError(w, r, err)
		return
	}
	invoice.ID = r.PathValue("id")
	updated, err := h.records.UpdateInvoice(r.Context(), invoice)
	h.reply(w, r, http.StatusOK, updated, err)
}

func (h *handler) setInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	var change statusChange[store.InvoiceStatus]
	if err := decodeBody(r, &change); err != nil {
		h.writeError(w, r, err)
		return
	}
	invoice, err := h.records.SetInvoiceStatus(r.Context(), r.PathValue("id"), change.Status)
	h.reply(w, r, http.StatusOK, invoice, err)
}

func (h *handler) deleteInvoice(w http.ResponseWriter, r *http.Request) {
	h.replyDeleted(w, r, h.records.DeleteInvoice(r.Context(), r.PathValue("id")))
}

// expenses

func (h *handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	from, to, ranged, err := parseRange(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var expenses []store.Expense
	if ranged {
		expenses, err = h.records.ExpensesBetween(r.Context(), from, to)
	} else {
		expenses, err = h.records.Expenses(r.Context())
	}
	h.reply(w, r, http.StatusOK, expenses, err)
}

func (h *handler) getExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := h.records.Expense(r.Context(), r.PathValue("id"))
	h.reply(w, r, http.StatusOK, expense, err)
}

func (h *handler) createExpense(w http.ResponseWriter, r *http.Request) {
	var expense store.Expense
	if err := decodeBody(r, &expense); err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.records.CreateExpense(r.Context(), expense)
	h.reply(w, r, http.StatusCreated, created, err)
}

func (h *handler) updateExpense(w http.ResponseWriter, r *http.Request) {
	var expense store.Expense
	if err := decodeBody(r, &expense); err != nil {
		h.writeError(w, r, err)
		return
	}
	expense.ID = r.PathValue("id")
	updated, err := h.records.UpdateExpense(r.Context(), expense)
	h.reply(w, r, http.StatusOK, updated, err)
}

func (h *handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	h.replyDeleted(w, r, h.records.DeleteExpense(r.Context(), r.PathValue("id")))
}

// reports

func (h *handler) financialReport(w http.ResponseWriter, r *http.Request) {
	from, to, ranged, err := parseRange(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !ranged {
		h.writeError(w, r, fmt.Errorf("%w: from and to are required", store.ErrInvalid))
		return
	}
	report, err := h.records.FinancialReport(r.Context(), from, to)
	h.reply(w, r, http.StatusOK, report, err)
}

func (h *handler) dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.records.Dashboard(r.Context())
	h.reply(w, r, http.StatusOK, stats, err)
}

// health reports cached entries and whether the record store answers.
func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	entries, err := h.records.CachedEntries(r.Context())
	if err != nil {
		h.requestLogger(r).Error("cache size query failed", slog.Any("error", err))
		entries = 0
	}
	payload := map[string]any{
		"status":       "ok",
		"cacheEntries": entries,
		"observedAt":   h.now().UTC().Format(time.RFC3339),
	}
	status := http.StatusOK
	if err := h.records.Ping(r.Context()); err != nil {
		h.requestLogger(r).Warn("record store ping failed", slog.Any("error", err))
		payload["status"] = "degraded"
		payload["store"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, r, status, payload)
}

func (h *handler) reply(w http.ResponseWriter, r *http.Request, status int, payload any, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, status, payload)
}

func (h *handler) replyDeleted(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
