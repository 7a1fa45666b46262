package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/l0p7/innkeeper/internal/store"
)

const quotationColumns = `id, number, year, month, sequence, guest_id, date, valid_until,
       subtotal, tax, amount, status, notes, created_at, updated_at`

func scanQuotation(row rowScanner) (store.Quotation, error) {
	var (
		quotation  store.Quotation
		date       int64
		validUntil int64
		createdAt  int64
		updatedAt  int64
	)
	err := row.Scan(
		&quotation.ID,
		&quotation.Number,
		&quotation.Year,
		&quotation.Month,
		&quotation.Sequence,
		&quotation.GuestID,
		&date,
		&validUntil,
		&quotation.Subtotal,
		&quotation.Tax,
		&quotation.Amount,
		&quotation.Status,
		&quotation.Notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return store.Quotation{}, err
	}
	quotation.Items = []store.LineItem{}
	quotation.Date = fromMillis(date)
	quotation.ValidUntil = fromMillis(validUntil)
	quotation.CreatedAt = fromMillis(createdAt)
	quotation.UpdatedAt = fromMillis(updatedAt)
	return quotation, nil
}

// ListQuotations returns every quotation, newest first.
func (s *Store) ListQuotations(ctx context.Context) ([]store.Quotation, error) {
	quotations, err := queryAll(ctx, s, "list quotations", scanQuotation,
		`SELECT `+quotationColumns+` FROM quotations ORDER BY date DESC, number DESC`)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, quotations)
}

// ListQuotationsByGuest returns the quotations issued to one guest, newest first.
func (s *Store) ListQuotationsByGuest(ctx context.Context, guestID string) ([]store.Quotation, error) {
	if err := requireID(guestID); err != nil {
		return nil, err
	}
	quotations, err := queryAll(ctx, s, "list quotations by guest", scanQuotation,
		`SELECT `+quotationColumns+` FROM quotations WHERE guest_id = ? ORDER BY date DESC, number DESC`,
		guestID)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, quotations)
}

// GetQuotation returns one quotation with its items.
func (s *Store) GetQuotation(ctx context.Context, id string) (store.Quotation, error) {
	if err := ctx.Err(); err != nil {
		return store.Quotation{}, err
	}
	if err := requireID(id); err != nil {
		return store.Quotation{}, err
	}
	quotation, err := scanQuotation(s.sqlDB.QueryRowContext(ctx, `SELECT `+quotationColumns+` FROM quotations WHERE id = ?`, id))
	if err != nil {
		return store.Quotation{}, translate("get quotation", err)
	}
	loaded, err := s.withItems(ctx, []store.Quotation{quotation})
	if err != nil {
		return store.Quotation{}, err
	}
	return loaded[0], nil
}

type quotationItem struct {
	quotationID string
	item        store.LineItem
}

func scanQuotationItem(row rowScanner) (quotationItem, error) {
	var out quotationItem
	err := row.Scan(&out.quotationID, &out.item.Description, &out.item.Quantity, &out.item.UnitPrice, &out.item.Total)
	return out, err
}

// withItems attaches line items, in position order, to each quotation.
func (s *Store) withItems(ctx context.Context, quotations []store.Quotation) ([]store.Quotation, error) {
	if len(quotations) == 0 {
		return quotations, nil
	}
	ids := make([]any, len(quotations))
	index := make(map[string]int, len(quotations))
	for i, q := range quotations {
		ids[i] = q.ID
		index[q.ID] = i
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	items, err := queryAll(ctx, s, "list quotation items", scanQuotationItem,
		`SELECT quotation_id, description, quantity, unit_price, total
		   FROM quotation_items
		  WHERE quotation_id IN (`+placeholders+`)
		  ORDER BY quotation_id, position`,
		ids...)
	if err != nil {
		return nil, err
	}
	for _, row := range items {
		i := index[row.quotationID]
		quotations[i].Items = append(quotations[i].Items, row.item)
	}
	return quotations, nil
}

// NextQuotationSequence returns one past the highest sequence issued in the month.
func (s *Store) NextQuotationSequence(ctx context.Context, year, month int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var next int
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sequence), 0) + 1 FROM quotations WHERE year = ? AND month = ?`, year, month,
	).Scan(&next)
	if err != nil {
		return 0, translate("next quotation sequence", err)
	}
	return next, nil
}

// CreateQuotation inserts quotation and its items in one transaction. A
// reused number or (year, month, sequence) is a conflict.
func (s *Store) CreateQuotation(ctx context.Context, quotation store.Quotation) (store.Quotation, error) {
	if err := ctx.Err(); err != nil {
		return store.Quotation{}, err
	}
	quotation.Number = strings.TrimSpace(quotation.Number)
	if err := quotation.Validate(); err != nil {
		return store.Quotation{}, err
	}
	quotation.ID = s.newID()
	quotation.CreatedAt = s.now()
	quotation.UpdatedAt = quotation.CreatedAt

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return store.Quotation{}, translate("create quotation", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO quotations (`+quotationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		quotation.ID,
		quotation.Number,
		quotation.Year,
		quotation.Month,
		quotation.Sequence,
		quotation.GuestID,
		toMillis(quotation.Date),
		toMillis(quotation.ValidUntil),
		quotation.Subtotal,
		quotation.Tax,
		quotation.Amount,
		string(quotation.Status),
		quotation.Notes,
		toMillis(quotation.CreatedAt),
		toMillis(quotation.UpdatedAt),
	)
	if err != nil {
		return store.Quotation{}, translate("create quotation", err)
	}
	if err := insertQuotationItems(ctx, tx, quotation.ID, quotation.Items); err != nil {
		return store.Quotation{}, err
	}
	if err := tx.Commit(); err != nil {
		return store.Quotation{}, translate("create quotation", err)
	}
	return s.GetQuotation(ctx, quotation.ID)
}

// UpdateQuotation replaces the quotation's terms and items. Number, year,
// month and sequence are fixed at creation.
func (s *Store) UpdateQuotation(ctx context.Context, quotation store.Quotation) (store.Quotation, error) {
	if err := ctx.Err(); err != nil {
		return store.Quotation{}, err
	}
	if err := requireID(quotation.ID); err != nil {
		return store.Quotation{}, err
	}
	if err := quotation.Validate(); err != nil {
		return store.Quotation{}, err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return store.Quotation{}, translate("update quotation", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE quotations
		    SET guest_id = ?, date = ?, valid_until = ?, subtotal = ?, tax = ?,
		        amount = ?, status = ?, notes = ?, updated_at = ?
		  WHERE id = ?`,
		quotation.GuestID,
		toMillis(quotation.Date),
		toMillis(quotation.ValidUntil),
		quotation.Subtotal,
		quotation.Tax,
		quotation.Amount,
		string(quotation.Status),
		quotation.Notes,
		toMillis(s.now()),
		quotation.ID,
	)
	if err != nil {
		return store.Quotation{}, translate("update quotation", err)
	}
	if err := expectOne("update quotation", res); err != nil {
		return store.Quotation{}, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM quotation_items WHERE quotation_id = ?`, quotation.ID); err != nil {
		return store.Quotation{}, translate("update quotation items", err)
	}
	if err := insertQuotationItems(ctx, tx, quotation.ID, quotation.Items); err != nil {
		return store.Quotation{}, err
	}
	if err := tx.Commit(); err != nil {
		return store.Quotation{}, translate("update quotation", err)
	}
	return s.GetQuotation(ctx, quotation.ID)
}

func insertQuotationItems(ctx context.Context, tx *sql.Tx, quotationID string, items []store.LineItem) error {
	for position, item := range items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO quotation_items (quotation_id, position, description, quantity, unit_price, total)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			quotationID, position, item.Description, item.Quantity, item.UnitPrice, item.Total)
		if err != nil {
			return translate("insert quotation item", err)
		}
	}
	return nil
}

// DeleteQuotation removes the quotation; its items go with it.
func (s *Store) DeleteQuotation(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := requireID(id); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM quotations WHERE id = ?`, id)
	if err != nil {
		return translate("delete quotation", err)
	}
	return expectOne("delete quotation", res)
}
