package records

import (
	"context"
	"fmt"
	"time"

	"github.com/l0p7/innkeeper/internal/store"
)

func (s *Service) Bookings(ctx context.Context) ([]store.Booking, error) {
	return read(ctx, s, key("bookings", "all"), s.store.ListBookings)
}

func (s *Service) Booking(ctx context.Context, id string) (store.Booking, error) {
	return read(ctx, s, key("bookings", id), func(ctx context.Context) (store.Booking, error) {
		return s.store.GetBooking(ctx, id)
	})
}

// BookingsBetween returns bookings whose stay touches [from, to].
func (s *Service) BookingsBetween(ctx context.Context, from, to time.Time) ([]store.Booking, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	return read(ctx, s, rangeKey("bookings", "between", from, to), func(ctx context.Context) ([]store.Booking, error) {
		return s.store.ListBookingsBetween(ctx, from, to)
	})
}

// BookingsOn returns the calendar entries for one instant: bookings with
// checkIn <= day <= checkOut.
func (s *Service) BookingsOn(ctx context.Context, day time.Time) ([]store.Booking, error) {
	return s.BookingsBetween(ctx, day, day)
}

// CreateBooking records a stay. An unset total is priced from the room rate,
// unset statuses default to pending, and a stay that overlaps another live
// booking of the same room is a conflict.
func (s *Service) CreateBooking(ctx context.Context, booking store.Booking) (store.Booking, error) {
	if booking.Status == "" {
		booking.Status = store.BookingPending
	}
	if booking.PaymentStatus == "" {
		booking.PaymentStatus = store.PaymentPending
	}
	if booking.NumberOfGuests == 0 {
		booking.NumberOfGuests = 1
	}
	if err := booking.Validate(); err != nil {
		return store.Booking{}, err
	}
	return write(ctx, s, "create booking", func(ctx context.Context) (store.Booking, error) {
		prepared, err := s.prepareBooking(ctx, booking)
		if err != nil {
			return store.Booking{}, err
		}
		return s.store.CreateBooking(ctx, prepared)
	})
}

// UpdateBooking edits the stay, guests, price and payment of a booking. An
// empty status keeps the current one; a different status is a conflict, since
// status only moves through ConfirmBooking, CheckIn, CheckOut and CancelBooking.
func (s *Service) UpdateBooking(ctx context.Context, booking store.Booking) (store.Booking, error) {
	check := booking
	if check.Status == "" {
		check.Status = store.BookingPending
	}
	if check.PaymentStatus == "" {
		check.PaymentStatus = store.PaymentPending
	}
	if err := check.Validate(); err != nil {
		return store.Booking{}, err
	}
	return write(ctx, s, "update booking", func(ctx context.Context) (store.Booking, error) {
		current, err := s.store.GetBooking(ctx, booking.ID)
		if err != nil {
			return store.Booking{}, err
		}
		switch booking.Status {
		case "":
			booking.Status = current.Status
		case current.Status:
		default:
			return store.Booking{}, fmt.Errorf("%w: booking %s is %s; use the confirm, check-in, check-out or cancel action to change it",
				store.ErrConflict, booking.ID, current.Status)
		}
		if booking.PaymentStatus == "" {
			booking.PaymentStatus = current.PaymentStatus
		}
		prepared, err := s.prepareBooking(ctx, booking)
		if err != nil {
			return store.Booking{}, err
		}
		return s.store.UpdateBooking(ctx, prepared)
	})
}

// ConfirmBooking confirms a pending booking.
func (s *Service) ConfirmBooking(ctx context.Context, id string) (store.Booking, error) {
	return s.transition(ctx, "confirm booking", id, store.BookingConfirmed, "")
}

// CheckIn marks the booking checked in and the room occupied.
func (s *Service) CheckIn(ctx context.Context, id string) (store.Booking, error) {
	return s.transition(ctx, "check in", id, store.BookingCheckedIn, store.RoomOccupied)
}

// CheckOut marks the booking checked out and sends the room to cleaning.
func (s *Service) CheckOut(ctx context.Context, id string) (store.Booking, error) {
	return s.transition(ctx, "check out", id, store.BookingCheckedOut, store.RoomCleaning)
}

// CancelBooking cancels the booking and leaves the room untouched.
func (s *Service) CancelBooking(ctx context.Context, id string) (store.Booking, error) {
	return s.transition(ctx, "cancel booking", id, store.BookingCancelled, "")
}

func (s *Service) DeleteBooking(ctx context.Context, id string) error {
	_, err := write(ctx, s, "delete booking", deleted(func(ctx context.Context) error {
		return s.store.DeleteBooking(ctx, id)
	}))
	return err
}

var allowedTransitions = map[store.BookingStatus][]store.BookingStatus{
	store.BookingPending:   {store.BookingConfirmed, store.BookingCheckedIn, store.BookingCancelled},
	store.BookingConfirmed: {store.BookingCheckedIn, store.BookingCancelled},
	store.BookingCheckedIn: {store.BookingCheckedOut},
}

func canTransition(from, to store.BookingStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// transition moves the booking to next and, when roomStatus is set, its room
// to roomStatus in one store transaction. A booking already in next was moved
// by an earlier attempt together with its room, so it is returned unchanged.
func (s *Service) transition(ctx context.Context, action, id string, next store.BookingStatus, roomStatus store.RoomStatus) (store.Booking, error) {
	return write(ctx, s, action, func(ctx context.Context) (store.Booking, error) {
		booking, err := s.store.GetBooking(ctx, id)
		if err != nil {
			return store.Booking{}, err
		}
		if booking.Status == next {
			return booking, nil
		}
		if !canTransition(booking.Status, next) {
			return store.Booking{}, fmt.Errorf("%w: booking %s cannot move from %s to %s", store.ErrConflict, id, booking.Status, next)
		}
		return s.store.TransitionBooking(ctx, id, next, roomStatus)
	})
}

// prepareBooking prices the stay when no total was given and rejects overlaps
// with other live bookings of the room. Back-to-back stays do not overlap.
func (s *Service) prepareBooking(ctx context.Context, booking store.Booking) (store.Booking, error) {
	room, err := s.store.GetRoom(ctx, booking.RoomID)
	if err != nil {
		return store.Booking{}, err
	}
	if room.Capacity > 0 && booking.NumberOfGuests > room.Capacity {
		return store.Booking{}, fmt.Errorf("%w: room %s sleeps %d, booking has %d guests", store.ErrInvalid, room.RoomNumber, room.Capacity, booking.NumberOfGuests)
	}
	if booking.TotalAmount == 0 {
		booking.TotalAmount = quoteFor(room, booking.CheckIn, booking.CheckOut).Total
	}
	if booking.Status == store.BookingCancelled {
		return booking, nil
	}
	existing, err := s.store.ListBookingsBetween(ctx, booking.CheckIn, booking.CheckOut)
	if err != nil {
		return store.Booking{}, err
	}
	for _, other := range existing {
		if other.ID == booking.ID || other.RoomID != booking.RoomID || !holdsRoom(other.Status) {
			continue
		}
		if other.CheckIn.Before(booking.CheckOut) && other.CheckOut.After(booking.CheckIn) {
			return store.Booking{}, fmt.Errorf("%w: room %s already booked from %s to %s", store.ErrConflict,
				room.RoomNumber, other.CheckIn.Format(time.DateOnly), other.CheckOut.Format(time.DateOnly))
		}
	}
	return booking, nil
}

func holdsRoom(status store.BookingStatus) bool {
	switch status {
	case store.BookingPending, store.BookingConfirmed, store.BookingCheckedIn:
		return true
	default:
		return false
	}
}
