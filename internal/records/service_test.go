package records

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/l0p7/innkeeper/internal/gateway"
	"github.com/l0p7/innkeeper/internal/gateway/cache"
	"github.com/l0p7/innkeeper/internal/store"
	"github.com/l0p7/innkeeper/internal/store/sqlite"
	"github.com/l0p7/innkeeper/internal/templates"
	"github.com/stretchr/testify/require"
)

// countingStore counts calls to selected methods and can fail them on demand.
type countingStore struct {
	store.Store

	mu    sync.Mutex
	calls map[string]int
	fail  map[string][]error
	lost  map[string]int
}

func newCountingStore(inner store.Store) *countingStore {
	return &countingStore{Store: inner, calls: map[string]int{}, fail: map[string][]error{}, lost: map[string]int{}}
}

func (c *countingStore) hit(method string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[method]++
	if queued := c.fail[method]; len(queued) > 0 {
		c.fail[method] = queued[1:]
		return queued[0]
	}
	return nil
}

func (c *countingStore) count(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

func (c *countingStore) failNext(method string, errs ...error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fail[method] = append(c.fail[method], errs...)
}

// loseReplies makes the next n calls to method succeed in the store but
// report an unavailable error to the caller.
func (c *countingStore) loseReplies(method string, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lost[method] += n
}

func (c *countingStore) replyLost(method string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lost[method] == 0 {
		return false
	}
	c.lost[method]--
	return true
}

func (c *countingStore) TransitionBooking(ctx context.Context, id string, status store.BookingStatus, roomStatus store.RoomStatus) (store.Booking, error) {
	if err := c.hit("TransitionBooking"); err != nil {
		return store.Booking{}, err
	}
	booking, err := c.Store.TransitionBooking(ctx, id, status, roomStatus)
	if err == nil && c.replyLost("TransitionBooking") {
		return store.Booking{}, fmt.Errorf("%w: connection reset after commit", store.ErrUnavailable)
	}
	return booking, err
}

func (c *countingStore) ListRooms(ctx context.Context) ([]store.Room, error) {
	if err := c.hit("ListRooms"); err != nil {
		return nil, err
	}
	return c.Store.ListRooms(ctx)
}

func (c *countingStore) CreateGuest(ctx context.Context, guest store.Guest) (store.Guest, error) {
	if err := c.hit("CreateGuest"); err != nil {
		return store.Guest{}, err
	}
	return c.Store.CreateGuest(ctx, guest)
}

// clearFailingCache is a memory cache whose Clear always fails.
type clearFailingCache struct {
	inner cache.Store
}

func (c clearFailingCache) Lookup(ctx context.Context, key string) (cache.Entry, bool, error) {
	return c.inner.Lookup(ctx, key)
}

func (c clearFailingCache) Store(ctx context.Context, key string, entry cache.Entry) error {
	return c.inner.Store(ctx, key, entry)
}

func (c clearFailingCache) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, key)
}

func (c clearFailingCache) Clear(context.Context) error {
	return errors.New("cache unreachable")
}

func (c clearFailingCache) Size(ctx context.Context) (int64, error) {
	return c.inner.Size(ctx)
}

func (c clearFailingCache) Close(ctx context.Context) error {
	return c.inner.Close(ctx)
}

func day(d int) time.Time {
	return time.Date(2024, time.June, d, 0, 0, 0, 0, time.UTC)
}

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, st.Close()) })
	return st
}

type fixture struct {
	svc   *Service
	store *countingStore
	gw    *gateway.Gateway
}

func newFixture(t *testing.T, now time.Time, tweak ...func(*Options, *gateway.Options)) fixture {
	t.Helper()
	counting := newCountingStore(openStore(t))
	gwOpts := gateway.Options{Policy: gateway.Policy{MaxRetries: 3, BaseDelay: 0, TTL: time.Minute}}
	settings := store.DefaultHotelSettings()
	settings.TaxRate = 10
	_, err := counting.SaveSettings(context.Background(), settings)
	require.NoError(t, err)
	opts := Options{Store: counting, DueDays: 14, QuotationValidDays: 30, Now: func() time.Time { return now }}
	for _, fn := range tweak {
		fn(&opts, &gwOpts)
	}
	gw := gateway.New(gwOpts)
	t.Cleanup(func() { _ = gw.Close(context.Background()) })
	opts.Gateway = gw
	svc, err := NewService(nil, opts)
	require.NoError(t, err)
	return fixture{svc: svc, store: counting, gw: gw}
}

func (f fixture) room(t *testing.T, number string, price float64) store.Room {
	t.Helper()
	room, err := f.svc.CreateRoom(context.Background(), store.Room{
		RoomNumber:    number,
		RoomType:      store.RoomDouble,
		PricePerNight: price,
		Capacity:      2,
	})
	require.NoError(t, err)
	return room
}

func (f fixture) guest(t *testing.T) store.Guest {
	t.Helper()
	guest, err := f.svc.CreateGuest(context.Background(), store.Guest{FirstName: "Ada", LastName: "Lovelace"})
	require.NoError(t, err)
	return guest
}

func (f fixture) booking(t *testing.T, room store.Room, guest store.Guest, in, out time.Time, status store.BookingStatus) store.Booking {
	t.Helper()
	booking, err := f.svc.CreateBooking(context.Background(), store.Booking{
		RoomID:   room.ID,
		GuestID:  guest.ID,
		CheckIn:  in,
		CheckOut: out,
		Status:   status,
	})
	require.NoError(t, err)
	return booking
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(nil, Options{})
	require.Error(t, err)

	_, err = NewService(nil, Options{Store: openStore(t)})
	require.Error(t, err)

	gw := gateway.New(gateway.Options{})
	svc, err := NewService(nil, Options{Store: openStore(t), Gateway: gw, DueDays: -1})
	require.NoError(t, err)
	require.Equal(t, defaultDueDays, svc.dueDays)
	require.Equal(t, defaultValidDays, svc.validDays)
}

func TestNights(t *testing.T) {
	base := day(10)
	tests := []struct {
		name string
		out  time.Time
		want int
	}{
		{name: "exact day", out: base.Add(24 * time.Hour), want: 1},
		{name: "part day rounds up", out: base.Add(25 * time.Hour), want: 2},
		{name: "same instant", out: base, want: 0},
		{name: "inverted", out: base.Add(-time.Hour), want: 0},
		{name: "afternoon to morning", out: day(13).Add(11 * time.Hour), want: 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Nights(base, tc.out))
		})
	}
	require.Equal(t, 360.0, StayTotal(120, 3))
	require.Zero(t, StayTotal(120, 0))
}

func TestPriceItems(t *testing.T) {
	settings := store.DefaultHotelSettings()
	settings.TaxRate = 10
	items, subtotal, tax, total := PriceItems([]store.LineItem{
		{Description: "Room", Quantity: 2, UnitPrice: 100, Total: 1},
		{Description: "Minibar", Quantity: 3, UnitPrice: 4.5},
	}, settings)
	require.Equal(t, 200.0, items[0].Total)
	require.Equal(t, 13.5, items[1].Total)
	require.Equal(t, 213.5, subtotal)
	require.Equal(t, 21.35, tax)
	require.Equal(t, 234.85, total)

	settings.TaxType = store.TaxFixed
	settings.TaxRate = 25
	_, subtotal, tax, total = PriceItems([]store.LineItem{{Description: "Room", Quantity: 1, UnitPrice: 100}}, settings)
	require.Equal(t, 100.0, subtotal)
	require.Equal(t, 25.0, tax)
	require.Equal(t, 125.0, total)
}

func TestTaxFor(t *testing.T) {
	percent := store.HotelSettings{TaxRate: 14, TaxType: store.TaxPercentage, TaxName: "VAT"}
	fixed := store.HotelSettings{TaxRate: 30, TaxType: store.TaxFixed, TaxName: "Levy"}
	tests := []struct {
		name     string
		settings store.HotelSettings
		amount   float64
		want     float64
	}{
		{name: "percentage", settings: percent, amount: 250, want: 35},
		{name: "percentage rounds to cents", settings: percent, amount: 10.01, want: 1.4},
		{name: "fixed", settings: fixed, amount: 250, want: 30},
		{name: "fixed on nothing", settings: fixed, amount: 0, want: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			charge := TaxFor(tc.settings, tc.amount)
			require.Equal(t, tc.want, charge.Amount)
			require.Equal(t, tc.settings.TaxName, charge.Name)
			require.Equal(t, tc.settings.TaxType, charge.Type)
		})
	}
}

func TestReadsAreCachedUntilAWrite(t *testing.T) {
	f := newFixture(t, day(1))
	ctx := context.Background()
	f.room(t, "101", 80)

	first, err := f.svc.Rooms(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	_, err = f.svc.Rooms(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, f.store.count("ListRooms"))

	f.room(t, "102", 90)
	rooms, err := f.svc.Rooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	require.Equal(t, 2, f.store.count("ListRooms"))
}

func TestTransientWriteFailureIsRetried(t *testing.T) {
	f := newFixture(t, day(1))
	f.store.failNext("CreateGuest", fmt.Errorf("%w: database is locked", store.ErrUnavailable))

	guest := f.guest(t)
	require.NotEmpty(t, guest.ID)
	require.Equal(t, 2, f.store.count("CreateGuest"))
}

func TestNonRetryableFailureStopsAtOneAttempt(t *testing.T) {
	f := newFixture(t, day(1), func(_ *Options, gw *gateway.Options) {
		gw.IsRetryable = func(err error) bool { return store.KindOf(err) == store.KindUnavailable }
	})
	f.store.failNext("CreateGuest", fmt.Errorf("%w: duplicate", store.ErrConflict))

	_, err := f.svc.CreateGuest(context.Background(), store.Guest{FirstName: "A", LastName: "B"})
	require.ErrorIs(t, err, store.ErrConflict)
	require.Equal(t, 1, f.store.count("CreateGuest"))
}

func TestWriteToleratesInvalidationFailure(t *testing.T) {
	f := newFixture(t, day(1), func(_ *Options, gw *gateway.Options) {
		gw.Cache = clearFailingCache{inner: cache.NewMemory()}
	})

	room := f.room(t, "101", 80)
	require.NotEmpty(t, room.ID)
}

func TestCreateBookingPricesStay(t *testing.T) {
	f := newFixture(t, day(1))
	room := f.room(t, "101", 120)
	guest := f.guest(t)

	in := day(10).Add(14 * time.Hour)
	out := day(13).Add(11 * time.Hour)
	booking := f.booking(t, room, guest, in, out, "")

	require.Equal(t, 360.0, booking.TotalAmount)
	require.Equal(t, store.BookingPending, booking.Status)
	require.Equal(t, store.PaymentPending, booking.PaymentStatus)
	require.Equal(t, 1, booking.NumberOfGuests)

	quote, err := f.svc.Quote(context.Background(), room.ID, in, out)
	require.NoError(t, err)
	require.Equal(t, 3, quote.Nights)
	require.Equal(t, 360.0, quote.Total)
}

func TestCreateBookingRejectsOverlap(t *testing.T) {
	f := newFixture(t, day(1))
	ctx := context.Background()
	room := f.room(t, "101", 100)
	guest := f.guest(t)

	first := f.booking(t, room, guest, day(10), day(13), store.BookingConfirmed)

	_, err := f.svc.CreateBooking(ctx, store.Booking{RoomID: room.ID, GuestID: guest.ID, CheckIn: day(12), CheckOut: day(15)})
	require.ErrorIs(t, err, store.ErrConflict)

	f.booking(t, room, guest, day(13), day(15), "")

	_, err = f.svc.CreateBooking(ctx, store.Booking{RoomID: room.ID, GuestID: guest.ID, CheckIn: day(20), CheckOut: day(21), NumberOfGuests: 5})
	require.ErrorIs(t, err, store.ErrInvalid)

	_, err = f.svc.CancelBooking(ctx, first.ID)
	require.NoError(t, err)
	f.booking(t, room, guest, day(11), day(12), "")
}

func TestBookingLifecycleMovesRoom(t *testing.T) {
	f := newFixture(t, day(1))
	ctx := context.Background()
	room := f.room(t, "101", 100)
	guest := f.guest(t)
	booking := f.booking(t, room, guest, day(10), day(12), store.BookingConfirmed)

	_, err := f.svc.CheckOut(ctx, booking.ID)
	require.ErrorIs(t, err, store.ErrConflict)

	checkedIn, err := f.svc.CheckIn(ctx, booking.ID)
	require.NoError(t, err)
	require.Equal(t, store.BookingCheckedIn, checkedIn.Status)
	got, err := f.svc.Room(ctx, room.ID)
	require.NoError(t, err)
	require.Equal(t, store.RoomOccupied, got.Status)

	checkedOut, err := f.svc.CheckOut(ctx, booking.ID)
	require.NoError(t, err)
	require.Equal(t, store.BookingCheckedOut, checkedOut.Status)
	got, err = f.svc.Room(ctx, room.ID)
	require.NoError(t, err)
	require.Equal(t, store.RoomCleaning, got.Status)

	board, err := f.svc.RoomBoard(ctx)
	require.NoError(t, err)
	require.Len(t, board, len(store.RoomStatuses))
	for _, column := range board {
		if column.Status == store.RoomCleaning {
			require.Len(t, column.Rooms, 1)
			continue
		}
		require.Empty(t, column.Rooms)
	}
}

func TestCalendarUsesInclusiveOverlap(t *testing.T) {
	f := newFixture(t, day(1))
	ctx := context.Background()
	room := f.room(t, "101", 100)
	guest := f.guest(t)
	f.booking(t, room, guest, day(10), day(12), "")

	for _, d := range []int{10, 11, 12} {
		on, err := f.svc.BookingsOn(ctx, day(d))
		require.NoError(t, err)
		require.Len(t, on, 1, "day %d", d)
	}
	on, err := f.svc.BookingsOn(ctx, day(13))
	require.NoError(t, err)
	require.Empty(t, on)

	_, err = f.svc.BookingsBetween(ctx, day(12), day(10))
	require.ErrorIs(t, err, store.ErrInvalid)
}

func TestCreateInvoiceNumbersAndPrices(t *testing.T) {
	issued := day(12).Add(9 * time.Hour)
	f := newFixture(t, issued)
	ctx := context.Background()
	room := f.room(t, "101", 100)
	guest := f.guest(t)
	booking := f.booking(t, room, guest, day(10), day(12), "")

	first, err := f.svc.CreateInvoice(ctx, InvoiceRequest{BookingID: booking.ID})
	require.NoError(t, err)
	require.Equal(t, "INV-2024-00001", first.Number)
	require.Equal(t, guest.ID, first.GuestID)
	require.Len(t, first.Items, 1)
	require.Equal(t, 2.0, first.Items[0].Quantity)
	require.Equal(t, 200.0, first.Subtotal)
	require.Equal(t, 20.0, first.Tax)
	require.Equal(t, 220.0, first.Total)
	require.Equal(t, store.InvoiceDraft, first.Status)
	require.True(t, first.DueDate.Equal(issued.AddDate(0, 0, 14)), "due %s", first.DueDate)

	second, err := f.svc.CreateInvoice(ctx, InvoiceRequest{
		BookingID: booking.ID,
		Items:     []store.LineItem{{Description: "Minibar", Quantity: 3, UnitPrice: 4.5}},
		Status:    store.InvoiceSent,
	})
	require.NoError(t, err)
	require.Equal(t, "INV-2024-00002", second.Number)
	require.Equal(t, 14.85, second.Total)

	forBooking, err := f.svc.InvoicesForBooking(ctx, booking.ID)
	require.NoError(t, err)
	require.Len(t, forBooking, 2)

	paid, err := f.svc.SetInvoiceStatus(ctx, second.ID, store.InvoicePaid)
	require.NoError(t, err)
	require.Equal(t, store.InvoicePaid, paid.Status)

	_, err = f.svc.CreateInvoice(ctx, InvoiceRequest{BookingID: "missing"})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateInvoiceUsesConfiguredTemplate(t *testing.T) {
	tmpl, err := templates.NewRenderer(nil).CompileInline("number", "{{ .Year }}/{{ .Sequence }}")
	require.NoError(t, err)
	f := newFixture(t, day(12), func(o *Options, _ *gateway.Options) { o.NumberTemplate = tmpl })
	room := f.room(t, "101", 100)
	booking := f.booking(t, room, f.guest(t), day(10), day(12), "")

	invoice, err := f.svc.CreateInvoice(context.Background(), InvoiceRequest{BookingID: booking.ID})
	require.NoError(t, err)
	require.Equal(t, "2024/1", invoice.Number)
}

func TestFinancialReport(t *testing.T) {
	f := newFixture(t, day(1))
	ctx := context.Background()
	roomA := f.room(t, "101", 100)
	roomB := f.room(t, "102", 100)
	guest := f.guest(t)

	counted := f.booking(t, roomA, guest, day(2), day(4), store.BookingConfirmed)
	cancelled := f.booking(t, roomA, guest, day(5), day(6), "")
	_, err := f.svc.CancelBooking(ctx, cancelled.ID)
	require.NoError(t, err)
	f.booking(t, roomB, guest, day(9), day(12), "")

	for _, e := range []store.Expense{
		{Date: day(3), Category: "food", Amount: 30},
		{Date: day(4), Category: "food", Amount: 20.5},
		{Date: day(5), Category: "repairs", Amount: 100},
		{Date: day(20), Category: "repairs", Amount: 999},
	} {
		_, err := f.svc.CreateExpense(ctx, e)
		require.NoError(t, err)
	}
	_, err = f.svc.CreateInvoice(ctx, InvoiceRequest{BookingID: counted.ID, Date: day(5), Status: store.InvoiceSent})
	require.NoError(t, err)
	_, err = f.svc.CreateInvoice(ctx, InvoiceRequest{BookingID: counted.ID, Date: day(6), Status: store.InvoicePaid})
	require.NoError(t, err)

	report, err := f.svc.FinancialReport(ctx, day(1), day(11))
	require.NoError(t, err)
	require.Equal(t, 1, report.Bookings)
	require.Equal(t, 200.0, report.Revenue)
	require.Equal(t, 150.5, report.Expenses)
	require.Equal(t, map[string]float64{"food": 50.5, "repairs": 100}, report.ExpensesByCategory)
	require.Equal(t, 49.5, report.Profit)
	require.Equal(t, 220.0, report.PendingPayments)
	require.InDelta(t, 10.0, report.OccupancyRate, 0.0001)
}

func TestFinancialReportWithoutRooms(t *testing.T) {
	f := newFixture(t, day(1))
	report, err := f.svc.FinancialReport(context.Background(), day(1), day(30))
	require.NoError(t, err)
	require.Zero(t, report.OccupancyRate)
	require.Empty(t, report.ExpensesByCategory)
}

func TestDashboard(t *testing.T) {
	today := day(10).Add(8 * time.Hour)
	f := newFixture(t, today)
	ctx := context.Background()
	roomA := f.room(t, "101", 100)
	roomB := f.room(t, "102", 100)
	guest := f.guest(t)

	leaving := f.booking(t, roomA, guest, day(8), day(10), store.BookingConfirmed)
	arriving := f.booking(t, roomB, guest, day(10), day(12), "")
	_, err := f.svc.CheckIn(ctx, arriving.ID)
	require.NoError(t, err)
	_, err = f.svc.CreateInvoice(ctx, InvoiceRequest{BookingID: leaving.ID, Status: store.InvoiceSent})
	require.NoError(t, err)

	stats, err := f.svc.Dashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, "2024-06-10", stats.Date)
	require.Equal(t, 2, stats.TotalRooms)
	require.Equal(t, 1, stats.RoomsByStatus[store.RoomOccupied])
	require.Equal(t, 1, stats.RoomsByStatus[store.RoomAvailable])
	require.Equal(t, 0, stats.RoomsByStatus[store.RoomMaintenance])
	require.InDelta(t, 50.0, stats.OccupancyRate, 0.0001)
	require.Equal(t, 1, stats.TotalGuests)
	require.Equal(t, 2, stats.ActiveBookings)
	require.Equal(t, 1, stats.CheckInsToday)
	require.Equal(t, 1, stats.CheckOutsToday)
	require.Equal(t, 1, stats.PendingInvoices)

	size, err := f.svc.CachedEntries(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, size)
}

func TestDeletesClearCachedRecords(t *testing.T) {
	f := newFixture(t, day(1))
	ctx := context.Background()
	room := f.room(t, "101", 100)

	_, err := f.svc.Room(ctx, room.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteRoom(ctx, room.ID))

	_, err = f.svc.Room(ctx, room.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCheckInRetryMovesRoomAfterFailedAttempt(t *testing.T) {
	f := newFixture(t, day(1))
	ctx := context.Background()
	room := f.room(t, "101", 100)
	booking := f.booking(t, room, f.guest(t), day(10), day(12), store.BookingConfirmed)
	f.store.failNext("TransitionBooking", fmt.Errorf("%w: database is locked", store.ErrUnavailable))

	checkedIn, err := f.svc.CheckIn(ctx, booking.ID)
	require.NoError(t, err)
	require.Equal(t, store.BookingCheckedIn, checkedIn.Status)
	require.Equal(t, 2, f.store.count("TransitionBooking"))

	got, err := f.svc.Room(ctx, room.ID)
	require.NoError(t, err)
	require.Equal(t, store.RoomOccupied, got.Status)
}

func TestCheckInRetryAfterLostCommitKeepsRoomOccupied(t *testing.T) {
	f := newFixture(t, day(1))
	ctx := context.Background()
	room := f.room(t, "101", 100)
	booking := f.booking(t, room, f.guest(t), day(10), day(12), store.BookingConfirmed)
	f.store.loseReplies("TransitionBooking", 1)

	checkedIn, err := f.svc.CheckIn(ctx, booking.ID)
	require.NoError(t, err)
	require.Equal(t, store.BookingCheckedIn, checkedIn.Status)
	require.Equal(t, 1, f.store.count("TransitionBooking"))

	got, err := f.svc.Room(ctx, room.ID)
	require.NoError(t, err)
	require.Equal(t, store.RoomOccupied, got.Status)
}

func TestUpdateBookingLeavesStatusToTransitions(t *testing.T) {
	f := newFixture(t, day(1))
	ctx := context.Background()
	room := f.room(t, "101", 100)
	guest := f.guest(t)
	booking := f.booking(t, room, guest, day(10), day(12), "")

	edit := booking
	edit.Status = ""
	edit.PaymentStatus = ""
	edit.NumberOfGuests = 2
	updated, err := f.svc.UpdateBooking(ctx, edit)
	require.NoError(t, err)
	require.Equal(t, store.BookingPending, updated.Status)
	require.Equal(t, store.PaymentPending, updated.PaymentStatus)
	require.Equal(t, 2, updated.NumberOfGuests)

	edit.Status = store.BookingCheckedIn
	_, err = f.svc.UpdateBooking(ctx, edit)
	require.ErrorIs(t, err, store.ErrConflict)
	got, err := f.svc.Room(ctx, room.ID)
	require.NoError(t, err)
	require.Equal(t, store.RoomAvailable, got.Status)

	edit.Status = "teleported"
	_, err = f.svc.UpdateBooking(ctx, edit)
	require.ErrorIs(t, err, store.ErrInvalid)

	confirmed, err := f.svc.ConfirmBooking(ctx, booking.ID)
	require.NoError(t, err)
	require.Equal(t, store.BookingConfirmed, confirmed.Status)

	edit.Status = store.BookingConfirmed
	edit.NumberOfGuests = 1
	updated, err = f.svc.UpdateBooking(ctx, edit)
	require.NoError(t, err)
	require.Equal(t, store.BookingConfirmed, updated.Status)

	_, err = f.svc.ConfirmBooking(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSettingsDriveTax(t *testing.T) {
	f := newFixture(t, day(1))
	ctx := context.Background()

	charge, err := f.svc.CalculateTax(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, 10.0, charge.Amount)
	require.Equal(t, store.TaxPercentage, charge.Type)

	initialized, err := f.svc.InitializeSettings(ctx)
	require.NoError(t, err)
	require.Equal(t, 10.0, initialized.TaxRate)

	settings, err := f.svc.Settings(ctx)
	require.NoError(t, err)
	settings.TaxType = store.TaxFixed
	settings.TaxRate = 25
	_, err = f.svc.UpdateSettings(ctx, settings)
	require.NoError(t, err)

	charge, err = f.svc.CalculateTax(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, 25.0, charge.Amount)

	room := f.room(t, "101", 100)
	booking := f.booking(t, room, f.guest(t), day(10), day(12), "")
	invoice, err := f.svc.CreateInvoice(ctx, InvoiceRequest{BookingID: booking.ID})
	require.NoError(t, err)
	require.Equal(t, 25.0, invoice.Tax)
	require.Equal(t, 225.0, invoice.Total)

	_, err = f.svc.CalculateTax(ctx, -1)
	require.ErrorIs(t, err, store.ErrInvalid)

	settings.CheckInTime = "2pm"
	_, err = f.svc.UpdateSettings(ctx, settings)
	require.ErrorIs(t, err, store.ErrInvalid)
}

func TestSettingsFallBackToDefaults(t *testing.T) {
	gw := gateway.New(gateway.Options{Policy: gateway.Policy{TTL: time.Minute}})
	t.Cleanup(func() { _ = gw.Close(context.Background()) })
	svc, err := NewService(nil, DefaultOptions(openStore(t), gw))
	require.NoError(t, err)
	ctx := context.Background()

	settings, err := svc.Settings(ctx)
	require.NoError(t, err)
	require.Equal(t, store.DefaultHotelSettings().TaxRate, settings.TaxRate)

	stored, err := svc.InitializeSettings(ctx)
	require.NoError(t, err)
	require.Equal(t, "Sexhebe Guest House", stored.HotelName)
	require.False(t, stored.CreatedAt.IsZero())
}

func TestCreateQuotationNumbersMonthly(t *testing.T) {
	issued := day(3).Add(10 * time.Hour)
	f := newFixture(t, issued)
	ctx := context.Background()
	guest := f.guest(t)
	items := []store.LineItem{{Description: "Double room, 2 nights", Quantity: 2, UnitPrice: 450}}

	first, err := f.svc.CreateQuotation(ctx, QuotationRequest{GuestID: guest.ID, Items: items})
	require.NoError(t, err)
	require.Equal(t, "Q-2024-06-0001", first.Number)
	require.Equal(t, store.QuotationDraft, first.Status)
	require.Equal(t, 900.0, first.Subtotal)
	require.Equal(t, 90.0, first.Tax)
	require.Equal(t, 990.0, first.Amount)
	require.True(t, first.ValidUntil.Equal(issued.AddDate(0, 0, 30)), "valid until %s", first.ValidUntil)

	second, err := f.svc.CreateQuotation(ctx, QuotationRequest{GuestID: guest.ID, Items: items})
	require.NoError(t, err)
	require.Equal(t, "Q-2024-06-0002", second.Number)

	july, err := f.svc.CreateQuotation(ctx, QuotationRequest{GuestID: guest.ID, Date: issued.AddDate(0, 1, 0), Items: items})
	require.NoError(t, err)
	require.Equal(t, "Q-2024-07-0001", july.Number)

	forGuest, err := f.svc.QuotationsForGuest(ctx, guest.ID)
	require.NoError(t, err)
	require.Len(t, forGuest, 3)

	first.Items = append(first.Items, store.LineItem{Description: "Breakfast", Quantity: 2, UnitPrice: 50})
	first.Number = "tampered"
	first.Status = ""
	updated, err := f.svc.UpdateQuotation(ctx, first)
	require.NoError(t, err)
	require.Equal(t, "Q-2024-06-0001", updated.Number)
	require.Equal(t, store.QuotationDraft, updated.Status)
	require.Equal(t, 1000.0, updated.Subtotal)
	require.Equal(t, 1100.0, updated.Amount)

	accepted, err := f.svc.SetQuotationStatus(ctx, second.ID, store.QuotationAccepted)
	require.NoError(t, err)
	require.Equal(t, store.QuotationAccepted, accepted.Status)

	require.NoError(t, f.svc.DeleteQuotation(ctx, july.ID))
	_, err = f.svc.Quotation(ctx, july.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = f.svc.CreateQuotation(ctx, QuotationRequest{GuestID: "missing", Items: items})
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = f.svc.CreateQuotation(ctx, QuotationRequest{GuestID: guest.ID})
	require.ErrorIs(t, err, store.ErrInvalid)
}

func TestTasksFilterSearchAndCount(t *testing.T) {
	f := newFixture(t, day(1))
	ctx := context.Background()

	leak, err := f.svc.CreateTask(ctx, store.Task{Title: "Fix leaking tap", Description: "Room 101", Category: store.CategoryMaintenance})
	require.NoError(t, err)
	require.Equal(t, store.PriorityMedium, leak.Priority)
	require.Equal(t, store.WorkPending, leak.Status)

	general, err := f.svc.CreateTask(ctx, store.Task{Title: "Call supplier"})
	require.NoError(t, err)
	require.Equal(t, store.CategoryGeneral, general.Category)

	_, err = f.svc.CreateTask(ctx, store.Task{Title: "Paint hall", Priority: "urgent"})
	require.ErrorIs(t, err, store.ErrInvalid)

	maintenance, err := f.svc.Tasks(ctx, store.CategoryMaintenance)
	require.NoError(t, err)
	require.Len(t, maintenance, 1)
	all, err := f.svc.Tasks(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	found, err := f.svc.SearchTasks(ctx, "LEAKING")
	require.NoError(t, err)
	require.Len(t, found, 1)
	_, err = f.svc.SearchTasks(ctx, "  ")
	require.ErrorIs(t, err, store.ErrInvalid)

	leak.Status = store.WorkCompleted
	_, err = f.svc.UpdateTask(ctx, leak)
	require.NoError(t, err)

	stats, err := f.svc.TaskStats(ctx)
	require.NoError(t, err)
	require.Equal(t, TaskStats{Total: 2, Pending: 1, Completed: 1}, stats)

	require.NoError(t, f.svc.DeleteTask(ctx, general.ID))
	stats, err = f.svc.TaskStats(ctx)
	require.NoError(t, err)
	require.Equal(t, TaskStats{Total: 1, Completed: 1}, stats)
}

func TestHousekeeping(t *testing.T) {
	f := newFixture(t, day(1))
	ctx := context.Background()

	cleaning, err := f.svc.CreateCleaningTask(ctx, store.CleaningTask{Name: "Turn down 101", AssignedStaff: []string{"Mpho"}})
	require.NoError(t, err)
	require.Equal(t, store.WorkPending, cleaning.Status)

	for _, item := range []store.InventoryItem{
		{Name: "Soap", Quantity: 3, Unit: "box", ReorderPoint: 5},
		{Name: "Towels", Quantity: 40, Unit: "piece", ReorderPoint: 10},
	} {
		_, err := f.svc.CreateInventoryItem(ctx, item)
		require.NoError(t, err)
	}
	low, err := f.svc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	require.Equal(t, "Soap", low[0].Name)

	soap := low[0]
	soap.Quantity = 12
	_, err = f.svc.UpdateInventoryItem(ctx, soap)
	require.NoError(t, err)
	low, err = f.svc.LowStock(ctx)
	require.NoError(t, err)
	require.Empty(t, low)

	member, err := f.svc.CreateStaffMember(ctx, store.StaffMember{FirstName: "Mpho", LastName: "Kgosi", Shift: store.ShiftMorning})
	require.NoError(t, err)
	require.Equal(t, store.StaffAvailable, member.Status)
	require.NotNil(t, member.AssignedRooms)

	morning, err := f.svc.Staff(ctx, store.ShiftMorning)
	require.NoError(t, err)
	require.Len(t, morning, 1)
	night, err := f.svc.Staff(ctx, store.ShiftNight)
	require.NoError(t, err)
	require.Empty(t, night)

	require.NoError(t, f.svc.DeleteStaffMember(ctx, member.ID))
	_, err = f.svc.StaffMember(ctx, member.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}
