package sqlite

import (
	"context"
	"strings"

	"github.com/l0p7/innkeeper/internal/store"
)

const guestColumns = `id, first_name, last_name, email, phone, id_type, id_number,
       address, nationality, notes, created_at, updated_at`

func scanGuest(row rowScanner) (store.Guest, error) {
	var (
		guest     store.Guest
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(
		&guest.ID,
		&guest.FirstName,
		&guest.LastName,
		&guest.Email,
		&guest.Phone,
		&guest.IDType,
		&guest.IDNumber,
		&guest.Address,
		&guest.Nationality,
		&guest.Notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return store.Guest{}, err
	}
	guest.CreatedAt = fromMillis(createdAt)
	guest.UpdatedAt = fromMillis(updatedAt)
	return guest, nil
}

func normalizeGuest(guest store.Guest) store.Guest {
	guest.FirstName = strings.TrimSpace(guest.FirstName)
	guest.LastName = strings.TrimSpace(guest.LastName)
	guest.Email = strings.TrimSpace(guest.Email)
	guest.Phone = strings.TrimSpace(guest.Phone)
	return guest
}

// ListGuests returns every guest ordered by last then first name.
func (s *Store) ListGuests(ctx context.Context) ([]store.Guest, error) {
	return queryAll(ctx, s, "list guests", scanGuest,
		`SELECT `+guestColumns+` FROM guests ORDER BY last_name, first_name, id`)
}

// GetGuest returns one guest by id.
func (s *Store) GetGuest(ctx context.Context, id string) (store.Guest, error) {
	if err := ctx.Err(); err != nil {
		return store.Guest{}, err
	}
	if err := requireID(id); err != nil {
		return store.Guest{}, err
	}
	guest, err := scanGuest(s.sqlDB.QueryRowContext(ctx, `SELECT `+guestColumns+` FROM guests WHERE id = ?`, id))
	if err != nil {
		return store.Guest{}, translate("get guest", err)
	}
	return guest, nil
}

// CreateGuest inserts guest with a fresh id.
func (s *Store) CreateGuest(ctx context.Context, guest store.Guest) (store.Guest, error) {
	if err := ctx.Err(); err != nil {
		return store.Guest{}, err
	}
	guest = normalizeGuest(guest)
	if err := guest.Validate(); err != nil {
		return store.Guest{}, err
	}
	guest.ID = s.newID()
	guest.CreatedAt = s.now()
	guest.UpdatedAt = guest.CreatedAt

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO guests (`+guestColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		guest.ID,
		guest.FirstName,
		guest.LastName,
		guest.Email,
		guest.Phone,
		guest.IDType,
		guest.IDNumber,
		guest.Address,
		guest.Nationality,
		guest.Notes,
		toMillis(guest.CreatedAt),
		toMillis(guest.UpdatedAt),
	)
	if err != nil {
		return store.Guest{}, translate("create guest", err)
	}
	return s.GetGuest(ctx, guest.ID)
}

// UpdateGuest replaces every mutable field of the guest with guest.ID.
func (s *Store) UpdateGuest(ctx context.Context, guest store.Guest) (store.Guest, error) {
	if err := ctx.Err(); err != nil {
		return store.Guest{}, err
	}
	if err := requireID(guest.ID); err != nil {
		return store.Guest{}, err
	}
	guest = normalizeGuest(guest)
	if err := guest.Validate(); err != nil {
		return store.Guest{}, err
	}
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE guests
		    SET first_name = ?, last_name = ?, email = ?, phone = ?, id_type = ?,
		        id_number = ?, address = ?, nationality = ?, notes = ?, updated_at = ?
		  WHERE id = ?`,
		guest.FirstName,
		guest.LastName,
		guest.Email,
		guest.Phone,
		guest.IDType,
		guest.IDNumber,
		guest.Address,
		guest.Nationality,
		guest.Notes,
		toMillis(s.now()),
		guest.ID,
	)
	if err != nil {
		return store.Guest{}, translate("update guest", err)
	}
	if err := expectOne("update guest", res); err != nil {
		return store.Guest{}, err
	}
	return s.GetGuest(ctx, guest.ID)
}

// DeleteGuest removes the guest. Guests referenced by bookings cannot be deleted.
func (s *Store) DeleteGuest(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := requireID(id); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM guests WHERE id = ?`, id)
	if err != nil {
		return translate("delete guest", err)
	}
	return expectOne("delete guest", res)
}
