package records

import (
	"context"

	"github.com/l0p7/innkeeper/internal/store"
)

func (s *Service) Guests(ctx context.Context) ([]store.Guest, error) {
	return read(ctx, s, key("guests", "all"), s.store.ListGuests)
}

func (s *Service) Guest(ctx context.Context, id string) (store.Guest, error) {
	return read(ctx, s, key("guests", id), func(ctx context.Context) (store.Guest, error) {
		return s.store.GetGuest(ctx, id)
	})
}

func (s *Service) CreateGuest(ctx context.Context, guest store.Guest) (store.Guest, error) {
	return write(ctx, s, "create guest", func(ctx context.Context) (store.Guest, error) {
		return s.store.CreateGuest(ctx, guest)
	})
}

func (s *Service) UpdateGuest(ctx context.Context, guest store.Guest) (store.Guest, error) {
	return write(ctx, s, "update guest", func(ctx context.Context) (store.Guest, error) {
		return s.store.UpdateGuest(ctx, guest)
	})
}

func (s *Service) DeleteGuest(ctx context.Context, id string) error {
	_, err := write(ctx, s, "delete guest", deleted(func(ctx context.Context) error {
		return s.store.DeleteGuest(ctx, id)
	}))
	return err
}
