package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/l0p7/innkeeper/internal/store"
)

const invoiceColumns = `id, number, year, sequence, booking_id, guest_id, date, due_date,
       items, subtotal, tax, total, status, created_at, updated_at`

func scanInvoice(row rowScanner) (store.Invoice, error) {
	var (
		invoice   store.Invoice
		date      int64
		dueDate   int64
		items     string
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(
		&invoice.ID,
		&invoice.Number,
		&invoice.Year,
		&invoice.Sequence,
		&invoice.BookingID,
		&invoice.GuestID,
		&date,
		&dueDate,
		&items,
		&invoice.Subtotal,
		&invoice.Tax,
		&invoice.Total,
		&invoice.Status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return store.Invoice{}, err
	}
	invoice.Items = []store.LineItem{}
	if items != "" {
		if err := json.Unmarshal([]byte(items), &invoice.Items); err != nil {
			return store.Invoice{}, fmt.Errorf("decode invoice items: %w", err)
		}
	}
	invoice.Date = fromMillis(date)
	invoice.DueDate = fromMillis(dueDate)
	invoice.CreatedAt = fromMillis(createdAt)
	invoice.UpdatedAt = fromMillis(updatedAt)
	return invoice, nil
}

// ListInvoices returns every invoice, newest first.
func (s *Store) ListInvoices(ctx context.Context) ([]store.Invoice, error) {
	return queryAll(ctx, s, "list invoices", scanInvoice,
		`SELECT `+invoiceColumns+` FROM invoices ORDER BY date DESC, number DESC`)
}

// ListInvoicesByBooking returns the invoices billed against one booking, newest first.
func (s *Store) ListInvoicesByBooking(ctx context.Context, bookingID string) ([]store.Invoice, error) {
	if err := requireID(bookingID); err != nil {
		return nil, err
	}
	return queryAll(ctx, s, "list invoices by booking", scanInvoice,
		`SELECT `+invoiceColumns+` FROM invoices WHERE booking_id = ? ORDER BY date DESC, number DESC`,
		bookingID)
}

// GetInvoice returns one invoice by id.
func (s *Store) GetInvoice(ctx context.Context, id string) (store.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return store.Invoice{}, err
	}
	if err := requireID(id); err != nil {
		return store.Invoice{}, err
	}
	invoice, err := scanInvoice(s.sqlDB.QueryRowContext(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`, id))
	if err != nil {
		return store.Invoice{}, translate("get invoice", err)
	}
	return invoice, nil
}

// NextInvoiceSequence returns one past the highest sequence issued in year.
func (s *Store) NextInvoiceSequence(ctx context.Context, year int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var next int
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sequence), 0) + 1 FROM invoices WHERE year = ?`, year,
	).Scan(&next)
	if err != nil {
		return 0, translate("next invoice sequence", err)
	}
	return next, nil
}

// CreateInvoice inserts invoice with a fresh id. A reused number or
// (year, sequence) pair is a conflict.
func (s *Store) CreateInvoice(ctx context.Context, invoice store.Invoice) (store.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return store.Invoice{}, err
	}
	invoice.Number = strings.TrimSpace(invoice.Number)
	if err := invoice.Validate(); err != nil {
		return store.Invoice{}, err
	}
	items, err := encodeJSON(invoice.Items)
	if err != nil {
		return store.Invoice{}, fmt.Errorf("sqlite: encode invoice items: %w", err)
	}
	invoice.ID = s.newID()
	invoice.CreatedAt = s.now()
	invoice.UpdatedAt = invoice.CreatedAt

	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO invoices (`+invoiceColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		invoice.ID,
		invoice.Number,
		invoice.Year,
		invoice.Sequence,
		invoice.BookingID,
		invoice.GuestID,
		toMillis(invoice.Date),
		toMillis(invoice.DueDate),
		items,
		invoice.Subtotal,
		invoice.Tax,
		invoice.Total,
		string(invoice.Status),
		toMillis(invoice.CreatedAt),
		toMillis(invoice.UpdatedAt),
	)
	if err != nil {
		return store.Invoice{}, translate("create invoice", err)
	}
	return s.GetInvoice(ctx, invoice.ID)
}

// UpdateInvoice replaces the billable fields of the invoice with invoice.ID.
// Number, year and sequence are fixed at creation.
func (s *Store) UpdateInvoice(ctx context.Context, invoice store.Invoice) (store.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return store.Invoice{}, err
	}
	if err := requireID(invoice.ID); err != nil {
		return store.Invoice{}, err
	}
	if err := invoice.Validate(); err != nil {
		return store.Invoice{}, err
	}
	items, err := encodeJSON(invoice.Items)
	if err != nil {
		return store.Invoice{}, fmt.Errorf("sqlite: encode invoice items: %w", err)
	}
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE invoices
		    SET booking_id = ?, guest_id = ?, date = ?, due_date = ?, items = ?,
		        subtotal = ?, tax = ?, total = ?, status = ?, updated_at = ?
		  WHERE id = ?`,
		invoice.BookingID,
		invoice.GuestID,
		toMillis(invoice.Date),
		toMillis(invoice.DueDate),
		items,
		invoice.Subtotal,
		invoice.Tax,
		invoice.Total,
		string(invoice.Status),
		toMillis(s.now()),
		invoice.ID,
	)
	if err != nil {
		return store.Invoice{}, translate("update invoice", err)
	}
	if err := expectOne("update invoice", res); err != nil {
		return store.Invoice{}, err
	}
	return s.GetInvoice(ctx, invoice.ID)
}

// DeleteInvoice removes the invoice.
func (s *Store) DeleteInvoice(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := requireID(id); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM invoices WHERE id = ?`, id)
	if err != nil {
		return translate("delete invoice", err)
	}
	return expectOne("delete invoice", res)
}
