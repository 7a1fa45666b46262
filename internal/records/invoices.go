package records

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/l0p7/innkeeper/internal/store"
	"github.com/l0p7/innkeeper/internal/templates"
)

// InvoiceRequest describes an invoice to issue for a booking. Without items a
// single accommodation line is billed from the room rate. A zero Date means
// today.
type InvoiceRequest struct {
	BookingID string              `json:"booking_id"`
	Date      time.Time           `json:"date"`
	Items     []store.LineItem    `json:"items"`
	Status    store.InvoiceStatus `json:"status"`
}

func (s *Service) Invoices(ctx context.Context) ([]store.Invoice, error) {
	return read(ctx, s, key("invoices", "all"), s.store.ListInvoices)
}

func (s *Service) Invoice(ctx context.Context, id string) (store.Invoice, error) {
	return read(ctx, s, key("invoices", id), func(ctx context.Context) (store.Invoice, error) {
		return s.store.GetInvoice(ctx, id)
	})
}

func (s *Service) InvoicesForBooking(ctx context.Context, bookingID string) ([]store.Invoice, error) {
	return read(ctx, s, key("invoices", "booking", bookingID), func(ctx context.Context) ([]store.Invoice, error) {
		return s.store.ListInvoicesByBooking(ctx, bookingID)
	})
}

// CreateInvoice numbers, prices and stores a new invoice. The sequence is
// taken inside the write so a retried attempt picks a fresh number.
func (s *Service) CreateInvoice(ctx context.Context, req InvoiceRequest) (store.Invoice, error) {
	if strings.TrimSpace(req.BookingID) == "" {
		return store.Invoice{}, fmt.Errorf("%w: booking is required", store.ErrInvalid)
	}
	issued := req.Date
	if issued.IsZero() {
		issued = s.now()
	}
	status := req.Status
	if status == "" {
		status = store.InvoiceDraft
	}
	return write(ctx, s, "create invoice", func(ctx context.Context) (store.Invoice, error) {
		booking, err := s.store.GetBooking(ctx, req.BookingID)
		if err != nil {
			return store.Invoice{}, err
		}
		items := req.Items
		if len(items) == 0 {
			room, err := s.store.GetRoom(ctx, booking.RoomID)
			if err != nil {
				return store.Invoice{}, err
			}
			items = []store.LineItem{accommodationItem(room, booking)}
		}
		sequence, err := s.store.NextInvoiceSequence(ctx, issued.Year())
		if err != nil {
			return store.Invoice{}, err
		}
		number, err := renderNumber(s.numberTemplate, "invoice", NumberData{
			Issued:    issued,
			Year:      issued.Year(),
			Month:     int(issued.Month()),
			Sequence:  sequence,
			BookingID: booking.ID,
			GuestID:   booking.GuestID,
		})
		if err != nil {
			return store.Invoice{}, err
		}
		settings, err := s.houseSettings(ctx)
		if err != nil {
			return store.Invoice{}, err
		}
		priced, subtotal, tax, total := PriceItems(items, settings)
		return s.store.CreateInvoice(ctx, store.Invoice{
			Number:    number,
			Year:      issued.Year(),
			Sequence:  sequence,
			BookingID: booking.ID,
			GuestID:   booking.GuestID,
			Date:      issued,
			DueDate:   issued.AddDate(0, 0, s.dueDays),
			Items:     priced,
			Subtotal:  subtotal,
			Tax:       tax,
			Total:     total,
			Status:    status,
		})
	})
}

// UpdateInvoice re-prices the invoice from its items under the current tax rule.
func (s *Service) UpdateInvoice(ctx context.Context, invoice store.Invoice) (store.Invoice, error) {
	return write(ctx, s, "update invoice", func(ctx context.Context) (store.Invoice, error) {
		settings, err := s.houseSettings(ctx)
		if err != nil {
			return store.Invoice{}, err
		}
		invoice.Items, invoice.Subtotal, invoice.Tax, invoice.Total = PriceItems(invoice.Items, settings)
		return s.store.UpdateInvoice(ctx, invoice)
	})
}

func (s *Service) SetInvoiceStatus(ctx context.Context, id string, status store.InvoiceStatus) (store.Invoice, error) {
	return write(ctx, s, "set invoice status", func(ctx context.Context) (store.Invoice, error) {
		invoice, err := s.store.GetInvoice(ctx, id)
		if err != nil {
			return store.Invoice{}, err
		}
		invoice.Status = status
		return s.store.UpdateInvoice(ctx, invoice)
	})
}

func (s *Service) DeleteInvoice(ctx context.Context, id string) error {
	_, err := write(ctx, s, "delete invoice", deleted(func(ctx context.Context) error {
		return s.store.DeleteInvoice(ctx, id)
	}))
	return err
}

func renderNumber(tmpl *templates.Template, what string, data NumberData) (string, error) {
	rendered, err := tmpl.Render(data)
	if err != nil {
		return "", fmt.Errorf("records: render %s number: %w", what, err)
	}
	number := strings.TrimSpace(rendered)
	if number == "" {
		return "", fmt.Errorf("%w: %s number template rendered nothing", store.ErrInvalid, what)
	}
	return number, nil
}

func accommodationItem(room store.Room, booking store.Booking) store.LineItem {
	nights := Nights(booking.CheckIn, booking.CheckOut)
	return store.LineItem{
		Description: fmt.Sprintf("Room %s, %d night(s) from %s", room.RoomNumber, nights, booking.CheckIn.Format(time.DateOnly)),
		Quantity:    float64(nights),
		UnitPrice:   room.PricePerNight,
		Total:       StayTotal(room.PricePerNight, nights),
	}
}
