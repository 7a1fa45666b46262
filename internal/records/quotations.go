package records

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/l0p7/innkeeper/internal/store"
)

// QuotationRequest describes a quotation to issue to a guest. A zero Date
// means today and a zero ValidUntil means the configured validity period
// after Date.
type QuotationRequest struct {
	GuestID    string                `json:"guest_id"`
	Date       time.Time             `json:"date"`
	ValidUntil time.Time             `json:"valid_until"`
	Items      []store.LineItem      `json:"items"`
	Status     store.QuotationStatus `json:"status"`
	Notes      string                `json:"notes"`
}

func (s *Service) Quotations(ctx context.Context) ([]store.Quotation, error) {
	return read(ctx, s, key("quotations", "all"), s.store.ListQuotations)
}

func (s *Service) Quotation(ctx context.Context, id string) (store.Quotation, error) {
	return read(ctx, s, key("quotations", id), func(ctx context.Context) (store.Quotation, error) {
		return s.store.GetQuotation(ctx, id)
	})
}

func (s *Service) QuotationsForGuest(ctx context.Context, guestID string) ([]store.Quotation, error) {
	return read(ctx, s, key("quotations", "guest", guestID), func(ctx context.Context) ([]store.Quotation, error) {
		return s.store.ListQuotationsByGuest(ctx, guestID)
	})
}

// CreateQuotation numbers, prices and stores a new quotation. Numbers restart
// every month; the sequence is taken inside the write so a retried attempt
// picks a fresh one.
func (s *Service) CreateQuotation(ctx context.Context, req QuotationRequest) (store.Quotation, error) {
	if strings.TrimSpace(req.GuestID) == "" {
		return store.Quotation{}, fmt.Errorf("%w: guest is required", store.ErrInvalid)
	}
	if len(req.Items) == 0 {
		return store.Quotation{}, fmt.Errorf("%w: quotation needs at least one item", store.ErrInvalid)
	}
	issued := req.Date
	if issued.IsZero() {
		issued = s.now()
	}
	validUntil := req.ValidUntil
	if validUntil.IsZero() {
		validUntil = issued.AddDate(0, 0, s.validDays)
	}
	status := req.Status
	if status == "" {
		status = store.QuotationDraft
	}
	return write(ctx, s, "create quotation", func(ctx context.Context) (store.Quotation, error) {
		guest, err := s.store.GetGuest(ctx, req.GuestID)
		if err != nil {
			return store.Quotation{}, err
		}
		year, month := issued.Year(), int(issued.Month())
		sequence, err := s.store.NextQuotationSequence(ctx, year, month)
		if err != nil {
			return store.Quotation{}, err
		}
		number, err := renderNumber(s.quotationTemplate, "quotation", NumberData{
			Issued:   issued,
			Year:     year,
			Month:    month,
			Sequence: sequence,
			GuestID:  guest.ID,
		})
		if err != nil {
			return store.Quotation{}, err
		}
		settings, err := s.houseSettings(ctx)
		if err != nil {
			return store.Quotation{}, err
		}
		priced, subtotal, tax, total := PriceItems(req.Items, settings)
		return s.store.CreateQuotation(ctx, store.Quotation{
			Number:     number,
			Year:       year,
			Month:      month,
			Sequence:   sequence,
			GuestID:    guest.ID,
			Date:       issued,
			ValidUntil: validUntil,
			Items:      priced,
			Subtotal:   subtotal,
			Tax:        tax,
			Amount:     total,
			Status:     status,
			Notes:      req.Notes,
		})
	})
}

// UpdateQuotation re-prices the quotation from its items under the current
// tax rule. Its number never changes.
func (s *Service) UpdateQuotation(ctx context.Context, quotation store.Quotation) (store.Quotation, error) {
	return write(ctx, s, "update quotation", func(ctx context.Context) (store.Quotation, error) {
		current, err := s.store.GetQuotation(ctx, quotation.ID)
		if err != nil {
			return store.Quotation{}, err
		}
		quotation.Number, quotation.Year, quotation.Month, quotation.Sequence = current.Number, current.Year, current.Month, current.Sequence
		if quotation.Status == "" {
			quotation.Status = current.Status
		}
		settings, err := s.houseSettings(ctx)
		if err != nil {
			return store.Quotation{}, err
		}
		quotation.Items, quotation.Subtotal, quotation.Tax, quotation.Amount = PriceItems(quotation.Items, settings)
		return s.store.UpdateQuotation(ctx, quotation)
	})
}

func (s *Service) SetQuotationStatus(ctx context.Context, id string, status store.QuotationStatus) (store.Quotation, error) {
	return write(ctx, s, "set quotation status", func(ctx context.Context) (store.Quotation, error) {
		quotation, err := s.store.GetQuotation(ctx, id)
		if err != nil {
			return store.Quotation{}, err
		}
		quotation.Status = status
		return s.store.UpdateQuotation(ctx, quotation)
	})
}

func (s *Service) DeleteQuotation(ctx context.Context, id string) error {
	_, err := write(ctx, s, "delete quotation", deleted(func(ctx context.Context) error {
		return s.store.DeleteQuotation(ctx, id)
	}))
	return err
}
