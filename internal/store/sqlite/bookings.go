package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/l0p7/innkeeper/internal/store"
)

const bookingColumns = `id, room_id, guest_id, check_in, check_out, status, payment_status,
       number_of_guests, total_amount, special_requests, created_at, updated_at`

func scanBooking(row rowScanner) (store.Booking, error) {
	var (
		booking   store.Booking
		checkIn   int64
		checkOut  int64
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(
		&booking.ID,
		&booking.RoomID,
		&booking.GuestID,
		&checkIn,
		&checkOut,
		&booking.Status,
		&booking.PaymentStatus,
		&booking.NumberOfGuests,
		&booking.TotalAmount,
		&booking.SpecialRequests,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return store.Booking{}, err
	}
	booking.CheckIn = fromMillis(checkIn)
	booking.CheckOut = fromMillis(checkOut)
	booking.CreatedAt = fromMillis(createdAt)
	booking.UpdatedAt = fromMillis(updatedAt)
	return booking, nil
}

// ListBookings returns every booking, latest check-in first.
func (s *Store) ListBookings(ctx context.Context) ([]store.Booking, error) {
	return queryAll(ctx, s, "list bookings", scanBooking,
		`SELECT `+bookingColumns+` FROM bookings ORDER BY check_in DESC, id`)
}

// ListBookingsBetween returns bookings whose stay touches [from, to], ordered
// by check-in.
func (s *Store) ListBookingsBetween(ctx context.Context, from, to time.Time) ([]store.Booking, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end is before its start", store.ErrInvalid)
	}
	return queryAll(ctx, s, "list bookings between", scanBooking,
		`SELECT `+bookingColumns+`
		   FROM bookings
		  WHERE check_in <= ? AND check_out >= ?
		  ORDER BY check_in, id`,
		toMillis(to), toMillis(from))
}

// GetBooking returns one booking by id.
func (s *Store) GetBooking(ctx context.Context, id string) (store.Booking, error) {
	if err := ctx.Err(); err != nil {
		return store.Booking{}, err
	}
	if err := requireID(id); err != nil {
		return store.Booking{}, err
	}
	booking, err := scanBooking(s.sqlDB.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	if err != nil {
		return store.Booking{}, translate("get booking", err)
	}
	return booking, nil
}

// CreateBooking inserts booking with a fresh id. The room and guest must exist.
func (s *Store) CreateBooking(ctx context.Context, booking store.Booking) (store.Booking, error) {
	if err := ctx.Err(); err != nil {
		return store.Booking{}, err
	}
	if err := booking.Validate(); err != nil {
		return store.Booking{}, err
	}
	booking.ID = s.newID()
	booking.CreatedAt = s.now()
	booking.UpdatedAt = booking.CreatedAt

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO bookings (`+bookingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		booking.ID,
		booking.RoomID,
		booking.GuestID,
		toMillis(booking.CheckIn),
		toMillis(booking.CheckOut),
		string(booking.Status),
		string(booking.PaymentStatus),
		booking.NumberOfGuests,
		booking.TotalAmount,
		booking.SpecialRequests,
		toMillis(booking.CreatedAt),
		toMillis(booking.UpdatedAt),
	)
	if err != nil {
		return store.Booking{}, translate("create booking", err)
	}
	return s.GetBooking(ctx, booking.ID)
}

// UpdateBooking replaces every mutable field of the booking with booking.ID.
func (s *Store) UpdateBooking(ctx context.Context, booking store.Booking) (store.Booking, error) {
	if err := ctx.Err(); err != nil {
		return store.Booking{}, err
	}
	if err := requireID(booking.ID); err != nil {
		return store.Booking{}, err
	}
	if err := booking.Validate(); err != nil {
		return store.Booking{}, err
	}
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE bookings
		    SET room_id = ?, guest_id = ?, check_in = ?, check_out = ?, status = ?,
		        payment_status = ?, number_of_guests = ?, total_amount = ?,
		        special_requests = ?, updated_at = ?
		  WHERE id = ?`,
		booking.RoomID,
		booking.GuestID,
		toMillis(booking.CheckIn),
		toMillis(booking.CheckOut),
		string(booking.Status),
		string(booking.PaymentStatus),
		booking.NumberOfGuests,
		booking.TotalAmount,
		booking.SpecialRequests,
		toMillis(s.now()),
		booking.ID,
	)
	if err != nil {
		return store.Booking{}, translate("update booking", err)
	}
	if err := expectOne("update booking", res); err != nil {
		return store.Booking{}, err
	}
	return s.GetBooking(ctx, booking.ID)
}

// TransitionBooking moves the booking to status and, when roomStatus is set,
// the booked room to roomStatus. Both rows change or neither does.
func (s *Store) TransitionBooking(ctx context.Context, id string, status store.BookingStatus, roomStatus store.RoomStatus) (store.Booking, error) {
	if err := ctx.Err(); err != nil {
		return store.Booking{}, err
	}
	if err := requireID(id); err != nil {
		return store.Booking{}, err
	}
	if err := status.Validate(); err != nil {
		return store.Booking{}, err
	}
	if roomStatus != "" {
		if err := roomStatus.Validate(); err != nil {
			return store.Booking{}, err
		}
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return store.Booking{}, translate("transition booking", err)
	}
	defer func() { _ = tx.Rollback() }()

	updatedAt := toMillis(s.now())
	res, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), updatedAt, id)
	if err != nil {
		return store.Booking{}, translate("transition booking", err)
	}
	if err := expectOne("transition booking", res); err != nil {
		return store.Booking{}, err
	}
	if roomStatus != "" {
		res, err = tx.ExecContext(ctx,
			`UPDATE rooms SET status = ?, updated_at = ?
			  WHERE id = (SELECT room_id FROM bookings WHERE id = ?)`,
			string(roomStatus), updatedAt, id)
		if err != nil {
			return store.Booking{}, translate("transition booking room", err)
		}
		if err := expectOne("transition booking room", res); err != nil {
			return store.Booking{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return store.Booking{}, translate("transition booking", err)
	}
	return s.GetBooking(ctx, id)
}

// DeleteBooking removes the booking. Bookings with invoices cannot be deleted.
func (s *Store) DeleteBooking(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := requireID(id); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return translate("delete booking", err)
	}
	return expectOne("delete booking", res)
}
