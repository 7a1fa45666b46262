package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/l0p7/innkeeper/internal/store"
)

func TestTransitionBookingMovesBookingAndRoom(t *testing.T) {
	s := openTempStore(t)
	ctx := context.Background()
	room := seedRoom(t, s, "101", store.RoomAvailable)
	booking := seedBooking(t, s, room, seedGuest(t, s, "Ada", "Lovelace"), day(10), day(12))

	moved, err := s.TransitionBooking(ctx, booking.ID, store.BookingCheckedIn, store.RoomOccupied)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if moved.Status != store.BookingCheckedIn {
		t.Fatalf("booking status = %s, want checked_in", moved.Status)
	}
	gotRoom, err := s.GetRoom(ctx, room.ID)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if gotRoom.Status != store.RoomOccupied {
		t.Fatalf("room status = %s, want occupied", gotRoom.Status)
	}

	cancelled, err := s.TransitionBooking(ctx, booking.ID, store.BookingCancelled, "")
	if err != nil {
		t.Fatalf("transition without room: %v", err)
	}
	if cancelled.Status != store.BookingCancelled {
		t.Fatalf("booking status = %s, want cancelled", cancelled.Status)
	}

	if _, err := s.TransitionBooking(ctx, "missing", store.BookingCheckedIn, store.RoomOccupied); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing booking err = %v, want ErrNotFound", err)
	}
	if _, err := s.TransitionBooking(ctx, booking.ID, "teleported", ""); !errors.Is(err, store.ErrInvalid) {
		t.Fatalf("bad status err = %v, want ErrInvalid", err)
	}
	if _, err := s.TransitionBooking(ctx, booking.ID, store.BookingCheckedOut, "flooded"); !errors.Is(err, store.ErrInvalid) {
		t.Fatalf("bad room status err = %v, want ErrInvalid", err)
	}
}

func TestTransitionBookingIsAtomic(t *testing.T) {
	s := openTempStore(t)
	ctx := context.Background()
	room := seedRoom(t, s, "101", store.RoomAvailable)
	booking := seedBooking(t, s, room, seedGuest(t, s, "Ada", "Lovelace"), day(10), day(12))

	_, err := s.sqlDB.ExecContext(ctx, `CREATE TRIGGER rooms_frozen BEFORE UPDATE OF status ON rooms
BEGIN
    SELECT RAISE(ABORT, 'rooms are frozen');
END`)
	if err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	if _, err := s.TransitionBooking(ctx, booking.ID, store.BookingCheckedIn, store.RoomOccupied); err == nil {
		t.Fatalf("expected room update to fail")
	}
	got, err := s.GetBooking(ctx, booking.ID)
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if got.Status != booking.Status {
		t.Fatalf("booking status = %s after failed transition, want %s", got.Status, booking.Status)
	}
}

func TestQuotationItemsAndNumbering(t *testing.T) {
	s := openTempStore(t)
	ctx := context.Background()
	guest := seedGuest(t, s, "Grace", "Hopper")
	other := seedGuest(t, s, "Alan", "Turing")

	next, err := s.NextQuotationSequence(ctx, 2024, 6)
	if err != nil || next != 1 {
		t.Fatalf("first sequence = %d, %v", next, err)
	}

	items := []store.LineItem{
		{Description: "Double room", Quantity: 2, UnitPrice: 450, Total: 900},
		{Description: "Airport transfer", Quantity: 1, UnitPrice: 120, Total: 120},
	}
	quotation := store.Quotation{
		Number:     "Q-2024-06-0001",
		Year:       2024,
		Month:      6,
		Sequence:   1,
		GuestID:    guest.ID,
		Date:       day(3),
		ValidUntil: day(30),
		Items:      items,
		Subtotal:   1020,
		Tax:        142.8,
		Amount:     1162.8,
		Status:     store.QuotationDraft,
	}
	created, err := s.CreateQuotation(ctx, quotation)
	if err != nil {
		t.Fatalf("create quotation: %v", err)
	}
	if diff := cmp.Diff(items, created.Items); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.CreateQuotation(ctx, quotation); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("reused number err = %v, want ErrConflict", err)
	}
	next, err = s.NextQuotationSequence(ctx, 2024, 6)
	if err != nil || next != 2 {
		t.Fatalf("june sequence = %d, %v", next, err)
	}
	next, err = s.NextQuotationSequence(ctx, 2024, 7)
	if err != nil || next != 1 {
		t.Fatalf("july sequence = %d, %v", next, err)
	}

	created.Items = []store.LineItem{{Description: "Suite", Quantity: 1, UnitPrice: 800, Total: 800}}
	created.Status = store.QuotationSent
	updated, err := s.UpdateQuotation(ctx, created)
	if err != nil {
		t.Fatalf("update quotation: %v", err)
	}
	if len(updated.Items) != 1 || updated.Items[0].Description != "Suite" {
		t.Fatalf("items not replaced: %+v", updated.Items)
	}
	if updated.Number != quotation.Number {
		t.Fatalf("number changed to %s", updated.Number)
	}

	mine, err := s.ListQuotationsByGuest(ctx, guest.ID)
	if err != nil || len(mine) != 1 || len(mine[0].Items) != 1 {
		t.Fatalf("by guest = %+v, %v", mine, err)
	}
	theirs, err := s.ListQuotationsByGuest(ctx, other.ID)
	if err != nil || len(theirs) != 0 {
		t.Fatalf("other guest = %+v, %v", theirs, err)
	}

	if err := s.DeleteQuotation(ctx, created.ID); err != nil {
		t.Fatalf("delete quotation: %v", err)
	}
	var orphans int
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(1) FROM quotation_items`).Scan(&orphans); err != nil {
		t.Fatalf("count items: %v", err)
	}
	if orphans != 0 {
		t.Fatalf("%d quotation items survived their quotation", orphans)
	}
}

func TestTaskFiltersAndSearch(t *testing.T) {
	s := openTempStore(t)
	ctx := context.Background()
	due := day(15)
	for _, task := range []store.Task{
		{Title: "Fix leaking tap", Description: "Room 101 bathroom", Priority: store.PriorityHigh, Status: store.WorkPending, Category: store.CategoryMaintenance, DueDate: due},
		{Title: "Restock towels", Priority: store.PriorityLow, Status: store.WorkInProgress, Category: store.CategoryHousekeeping},
		{Title: "Order 100% cotton sheets", Priority: store.PriorityMedium, Status: store.WorkCompleted, Category: store.CategoryHousekeeping},
	} {
		if _, err := s.CreateTask(ctx, task); err != nil {
			t.Fatalf("create task %q: %v", task.Title, err)
		}
	}

	housekeeping, err := s.ListTasksByCategory(ctx, store.CategoryHousekeeping)
	if err != nil || len(housekeeping) != 2 {
		t.Fatalf("housekeeping tasks = %d, %v", len(housekeeping), err)
	}
	if _, err := s.ListTasksByCategory(ctx, "gardening"); !errors.Is(err, store.ErrInvalid) {
		t.Fatalf("unknown category err = %v, want ErrInvalid", err)
	}

	found, err := s.SearchTasks(ctx, "BATHROOM")
	if err != nil || len(found) != 1 || found[0].Title != "Fix leaking tap" {
		t.Fatalf("search by description = %+v, %v", found, err)
	}
	if !found[0].DueDate.Equal(due) {
		t.Fatalf("due date = %s, want %s", found[0].DueDate, due)
	}
	literal, err := s.SearchTasks(ctx, "100%")
	if err != nil || len(literal) != 1 {
		t.Fatalf("literal percent search = %+v, %v", literal, err)
	}
	wildcard, err := s.SearchTasks(ctx, "%")
	if err != nil || len(wildcard) != 1 {
		t.Fatalf("percent must not act as a wildcard: %d, %v", len(wildcard), err)
	}

	restock := housekeeping[0]
	restock.Status = store.WorkCompleted
	restock.DueDate = time.Time{}
	updated, err := s.UpdateTask(ctx, restock)
	if err != nil || updated.Status != store.WorkCompleted || !updated.DueDate.IsZero() {
		t.Fatalf("update task = %+v, %v", updated, err)
	}
	if err := s.DeleteTask(ctx, updated.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if err := s.DeleteTask(ctx, updated.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestHousekeepingRecords(t *testing.T) {
	s := openTempStore(t)
	ctx := context.Background()

	cleaning, err := s.CreateCleaningTask(ctx, store.CleaningTask{Name: "Deep clean 101", Status: store.WorkPending})
	if err != nil {
		t.Fatalf("create cleaning task: %v", err)
	}
	if cleaning.AssignedStaff == nil || len(cleaning.AssignedStaff) != 0 {
		t.Fatalf("assigned staff = %#v, want empty list", cleaning.AssignedStaff)
	}
	cleaning.AssignedStaff = []string{"Mpho", "Neo"}
	cleaning.Status = store.WorkInProgress
	cleaning, err = s.UpdateCleaningTask(ctx, cleaning)
	if err != nil {
		t.Fatalf("update cleaning task: %v", err)
	}
	if diff := cmp.Diff([]string{"Mpho", "Neo"}, cleaning.AssignedStaff); diff != "" {
		t.Fatalf("assigned staff mismatch (-want +got):\n%s", diff)
	}

	soap, err := s.CreateInventoryItem(ctx, store.InventoryItem{Name: "Soap", Quantity: 4, Unit: "box", ReorderPoint: 5})
	if err != nil {
		t.Fatalf("create inventory item: %v", err)
	}
	if !soap.NeedsReorder() {
		t.Fatalf("soap at %d with reorder point %d should need reordering", soap.Quantity, soap.ReorderPoint)
	}
	if _, err := s.CreateInventoryItem(ctx, store.InventoryItem{Name: "Soap", Quantity: 1}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("duplicate item err = %v, want ErrConflict", err)
	}
	soap.Quantity = 20
	if soap, err = s.UpdateInventoryItem(ctx, soap); err != nil || soap.NeedsReorder() {
		t.Fatalf("restocked soap = %+v, %v", soap, err)
	}

	for _, member := range []store.StaffMember{
		{FirstName: "Mpho", LastName: "Kgosi", Shift: store.ShiftMorning, Status: store.StaffAvailable, AssignedRooms: []string{"101", "102"}},
		{FirstName: "Neo", LastName: "Dube", Shift: store.ShiftNight, Status: store.StaffOffDuty},
	} {
		if _, err := s.CreateStaffMember(ctx, member); err != nil {
			t.Fatalf("create staff %s: %v", member.FirstName, err)
		}
	}
	morning, err := s.ListStaffByShift(ctx, store.ShiftMorning)
	if err != nil || len(morning) != 1 {
		t.Fatalf("morning shift = %+v, %v", morning, err)
	}
	if diff := cmp.Diff([]string{"101", "102"}, morning[0].AssignedRooms); diff != "" {
		t.Fatalf("assigned rooms mismatch (-want +got):\n%s", diff)
	}
	all, err := s.ListStaff(ctx)
	if err != nil || len(all) != 2 || all[0].LastName != "Dube" {
		t.Fatalf("rota = %+v, %v", all, err)
	}
	if err := s.DeleteStaffMember(ctx, morning[0].ID); err != nil {
		t.Fatalf("delete staff: %v", err)
	}
	if err := s.DeleteInventoryItem(ctx, soap.ID); err != nil {
		t.Fatalf("delete inventory item: %v", err)
	}
	if err := s.DeleteCleaningTask(ctx, cleaning.ID); err != nil {
		t.Fatalf("delete cleaning task: %v", err)
	}
}

func TestSettingsInitAndSave(t *testing.T) {
	s := openTempStore(t)
	ctx := context.Background()
	first := time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return first }

	if _, err := s.GetSettings(ctx); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("uninitialised settings err = %v, want ErrNotFound", err)
	}
	initial, err := s.InitSettings(ctx, store.DefaultHotelSettings())
	if err != nil {
		t.Fatalf("init settings: %v", err)
	}
	if initial.TaxRate != 14 || initial.TaxType != store.TaxPercentage || initial.Currency != "BWP" {
		t.Fatalf("defaults not stored: %+v", initial)
	}

	s.now = func() time.Time { return first.Add(time.Hour) }
	changed := initial
	changed.TaxType = store.TaxFixed
	changed.TaxRate = 25
	saved, err := s.SaveSettings(ctx, changed)
	if err != nil {
		t.Fatalf("save settings: %v", err)
	}
	if !saved.CreatedAt.Equal(first) || !saved.UpdatedAt.Equal(first.Add(time.Hour)) {
		t.Fatalf("timestamps = %s / %s", saved.CreatedAt, saved.UpdatedAt)
	}

	again, err := s.InitSettings(ctx, store.DefaultHotelSettings())
	if err != nil {
		t.Fatalf("re-init settings: %v", err)
	}
	if again.TaxType != store.TaxFixed || again.TaxRate != 25 {
		t.Fatalf("init overwrote saved settings: %+v", again)
	}

	changed.TaxType = store.TaxPercentage
	changed.TaxRate = 140
	if _, err := s.SaveSettings(ctx, changed); !errors.Is(err, store.ErrInvalid) {
		t.Fatalf("tax over 100%% err = %v, want ErrInvalid", err)
	}
}
