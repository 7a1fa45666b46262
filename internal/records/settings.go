package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/l0p7/innkeeper/internal/store"
)

// Settings returns the hotel settings, or the house defaults when none have
// been saved yet.
func (s *Service) Settings(ctx context.Context) (store.HotelSettings, error) {
	return read(ctx, s, key("settings", "hotel"), s.houseSettings)
}

// InitializeSettings stores the house defaults unless settings already exist,
// and returns whatever is stored.
func (s *Service) InitializeSettings(ctx context.Context) (store.HotelSettings, error) {
	return write(ctx, s, "initialize settings", func(ctx context.Context) (store.HotelSettings, error) {
		return s.store.InitSettings(ctx, store.DefaultHotelSettings())
	})
}

func (s *Service) UpdateSettings(ctx context.Context, settings store.HotelSettings) (store.HotelSettings, error) {
	settings.ID = store.SettingsID
	if err := settings.Validate(); err != nil {
		return store.HotelSettings{}, err
	}
	return write(ctx, s, "update settings", func(ctx context.Context) (store.HotelSettings, error) {
		return s.store.SaveSettings(ctx, settings)
	})
}

// CalculateTax prices the tax due on amount under the current settings.
func (s *Service) CalculateTax(ctx context.Context, amount float64) (TaxCharge, error) {
	if amount < 0 {
		return TaxCharge{}, fmt.Errorf("%w: amount must not be negative", store.ErrInvalid)
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return TaxCharge{}, err
	}
	return TaxFor(settings, amount), nil
}

// houseSettings reads the settings straight from the store. Write ops use it
// so pricing never depends on a cached copy.
func (s *Service) houseSettings(ctx context.Context) (store.HotelSettings, error) {
	settings, err := s.store.GetSettings(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return store.DefaultHotelSettings(), nil
	}
	return settings, err
}
