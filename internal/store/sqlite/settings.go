package sqlite

import (
	"context"

	"github.com/l0p7/innkeeper/internal/store"
)

const settingsColumns = `id, hotel_name, currency, check_in_time, check_out_time, contact_email,
       contact_phone, address, tax_rate, tax_type, tax_name, booking_terms,
       cancellation_policy, created_at, updated_at`

func scanSettings(row rowScanner) (store.HotelSettings, error) {
	var (
		settings  store.HotelSettings
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(
		&settings.ID,
		&settings.HotelName,
		&settings.Currency,
		&settings.CheckInTime,
		&settings.CheckOutTime,
		&settings.ContactEmail,
		&settings.ContactPhone,
		&settings.Address,
		&settings.TaxRate,
		&settings.TaxType,
		&settings.TaxName,
		&settings.BookingTerms,
		&settings.CancellationPolicy,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return store.HotelSettings{}, err
	}
	settings.CreatedAt = fromMillis(createdAt)
	settings.UpdatedAt = fromMillis(updatedAt)
	return settings, nil
}

// GetSettings returns the hotel settings row.
func (s *Store) GetSettings(ctx context.Context) (store.HotelSettings, error) {
	if err := ctx.Err(); err != nil {
		return store.HotelSettings{}, err
	}
	settings, err := scanSettings(s.sqlDB.QueryRowContext(ctx,
		`SELECT `+settingsColumns+` FROM hotel_settings WHERE id = ?`, store.SettingsID))
	if err != nil {
		return store.HotelSettings{}, translate("get settings", err)
	}
	return settings, nil
}

// InitSettings writes defaults when no settings row exists yet. Existing
// settings are left alone.
func (s *Store) InitSettings(ctx context.Context, defaults store.HotelSettings) (store.HotelSettings, error) {
	return s.putSettings(ctx, "init settings", defaults, `ON CONFLICT (id) DO NOTHING`)
}

// SaveSettings creates or replaces the settings row, keeping its creation time.
func (s *Store) SaveSettings(ctx context.Context, settings store.HotelSettings) (store.HotelSettings, error) {
	return s.putSettings(ctx, "save settings", settings, `ON CONFLICT (id) DO UPDATE SET
	    hotel_name = excluded.hotel_name,
	    currency = excluded.currency,
	    check_in_time = excluded.check_in_time,
	    check_out_time = excluded.check_out_time,
	    contact_email = excluded.contact_email,
	    contact_phone = excluded.contact_phone,
	    address = excluded.address,
	    tax_rate = excluded.tax_rate,
	    tax_type = excluded.tax_type,
	    tax_name = excluded.tax_name,
	    booking_terms = excluded.booking_terms,
	    cancellation_policy = excluded.cancellation_policy,
	    updated_at = excluded.updated_at`)
}

func (s *Store) putSettings(ctx context.Context, op string, settings store.HotelSettings, onConflict string) (store.HotelSettings, error) {
	if err := ctx.Err(); err != nil {
		return store.HotelSettings{}, err
	}
	if err := settings.Validate(); err != nil {
		return store.HotelSettings{}, err
	}
	now := toMillis(s.now())
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO hotel_settings (`+settingsColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) `+onConflict,
		store.SettingsID,
		settings.HotelName,
		settings.Currency,
		settings.CheckInTime,
		settings.CheckOutTime,
		settings.ContactEmail,
		settings.ContactPhone,
		settings.Address,
		settings.TaxRate,
		string(settings.TaxType),
		settings.TaxName,
		settings.BookingTerms,
		settings.CancellationPolicy,
		now,
		now,
	)
	if err != nil {
		return store.HotelSettings{}, translate(op, err)
	}
	return s.GetSettings(ctx)
}
