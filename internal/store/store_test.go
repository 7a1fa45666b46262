package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{err: nil, want: ""},
		{err: fmt.Errorf("sqlite: get room: %w", ErrNotFound), want: KindNotFound},
		{err: fmt.Errorf("wrap: %w", ErrConflict), want: KindConflict},
		{err: invalidf("bad"), want: KindInvalid},
		{err: fmt.Errorf("op: %w", context.Canceled), want: KindCanceled},
		{err: context.DeadlineExceeded, want: KindCanceled},
		{err: fmt.Errorf("sqlite: %w: database is locked", ErrUnavailable), want: KindUnavailable},
		{err: errors.New("disk I/O error"), want: KindUnknown},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, KindOf(tc.err), "err=%v", tc.err)
	}
}

func TestDescribe(t *testing.T) {
	err := fmt.Errorf("sqlite: get guest: %w", ErrNotFound)
	require.Equal(t, map[string]any{"kind": "not_found", "message": err.Error()}, Describe(err))
	require.Equal(t, map[string]any{"kind": "", "message": ""}, Describe(nil))
}

func TestBookingOverlapsIsInclusive(t *testing.T) {
	in := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	out := in.AddDate(0, 0, 3)
	b := Booking{CheckIn: in, CheckOut: out}

	require.True(t, b.Overlaps(out, out), "check-out day counts as occupied")
	require.True(t, b.Overlaps(in, in), "check-in day counts as occupied")
	require.True(t, b.Overlaps(in.AddDate(0, 0, -5), in.AddDate(0, 0, 20)))
	require.False(t, b.Overlaps(out.Add(time.Hour), out.AddDate(0, 0, 1)))
	require.False(t, b.Overlaps(in.AddDate(0, 0, -2), in.Add(-time.Hour)))
}

func TestValidate(t *testing.T) {
	in := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, Room{RoomNumber: "1", RoomType: RoomSingle, Status: RoomAvailable, Capacity: 1}.Validate())
	require.ErrorIs(t, Room{RoomNumber: "1", RoomType: RoomSingle, Capacity: 1}.Validate(), ErrInvalid)

	require.NoError(t, Guest{FirstName: "A", LastName: "B"}.Validate())
	require.ErrorIs(t, Guest{FirstName: "A"}.Validate(), ErrInvalid)

	booking := Booking{
		RoomID: "r", GuestID: "g", CheckIn: in, CheckOut: in.AddDate(0, 0, 1),
		Status: BookingConfirmed, PaymentStatus: PaymentPaid, NumberOfGuests: 2,
	}
	require.NoError(t, booking.Validate())
	booking.PaymentStatus = "owed"
	require.ErrorIs(t, booking.Validate(), ErrInvalid)

	invoice := Invoice{
		Number: "INV-1", BookingID: "b", GuestID: "g", Date: in, Status: InvoiceDraft,
		Items: []LineItem{{Description: "Night", Quantity: 1, UnitPrice: 10, Total: 10}},
	}
	require.NoError(t, invoice.Validate())
	invoice.Items = nil
	require.ErrorIs(t, invoice.Validate(), ErrInvalid)

	require.NoError(t, Expense{Date: in, Category: "food", Amount: 5, Status: ExpensePaid}.Validate())
	require.ErrorIs(t, Expense{Date: in, Category: "food", Amount: -1, Status: ExpensePaid}.Validate(), ErrInvalid)
}
