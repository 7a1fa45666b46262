// Package store defines the records kept by the guest house and the
// persistence contract the gateway calls into.
package store

import (
	"context"
	"time"
)

type RoomStore interface {
	// ListRooms returns every room ordered by room number.
	ListRooms(ctx context.Context) ([]Room, error)
	ListRoomsByStatus(ctx context.Context, status RoomStatus) ([]Room, error)
	GetRoom(ctx context.Context, id string) (Room, error)
	CreateRoom(ctx context.Context, room Room) (Room, error)
	UpdateRoom(ctx context.Context, room Room) (Room, error)
	UpdateRoomStatus(ctx context.Context, id string, status RoomStatus) (Room, error)
	DeleteRoom(ctx context.Context, id string) error
}

type GuestStore interface {
	// ListGuests returns every guest ordered by last then first name.
	ListGuests(ctx context.Context) ([]Guest, error)
	GetGuest(ctx context.Context, id string) (Guest, error)
	CreateGuest(ctx context.Context, guest Guest) (Guest, error)
	UpdateGuest(ctx context.Context, guest Guest) (Guest, error)
	DeleteGuest(ctx context.Context, id string) error
}

type BookingStore interface {
	// ListBookings returns every booking, latest check-in first.
	ListBookings(ctx context.Context) ([]Booking, error)
	// ListBookingsBetween returns bookings whose stay touches [from, to].
	ListBookingsBetween(ctx context.Context, from, to time.Time) ([]Booking, error)
	GetBooking(ctx context.Context, id string) (Booking, error)
	CreateBooking(ctx context.Context, booking Booking) (Booking, error)
	UpdateBooking(ctx context.Context, booking Booking) (Booking, error)
	// TransitionBooking sets the booking's status and, when roomStatus is not
	// empty, its room's status in one transaction.
	TransitionBooking(ctx context.Context, id string, status BookingStatus, roomStatus RoomStatus) (Booking, error)
	DeleteBooking(ctx context.Context, id string) error
}

type InvoiceStore interface {
	// ListInvoices returns every invoice, newest first.
	ListInvoices(ctx context.Context) ([]Invoice, error)
	ListInvoicesByBooking(ctx context.Context, bookingID string) ([]Invoice, error)
	GetInvoice(ctx context.Context, id string) (Invoice, error)
	// NextInvoiceSequence returns one past the highest sequence issued in year.
	NextInvoiceSequence(ctx context.Context, year int) (int, error)
	CreateInvoice(ctx context.Context, invoice Invoice) (Invoice, error)
	UpdateInvoice(ctx context.Context, invoice Invoice) (Invoice, error)
	DeleteInvoice(ctx context.Context, id string) error
}

type QuotationStore interface {
	// ListQuotations returns every quotation, newest first.
	ListQuotations(ctx context.Context) ([]Quotation, error)
	ListQuotationsByGuest(ctx context.Context, guestID string) ([]Quotation, error)
	GetQuotation(ctx context.Context, id string) (Quotation, error)
	// NextQuotationSequence returns one past the highest sequence issued in
	// the month.
	NextQuotationSequence(ctx context.Context, year, month int) (int, error)
	CreateQuotation(ctx context.Context, quotation Quotation) (Quotation, error)
	UpdateQuotation(ctx context.Context, quotation Quotation) (Quotation, error)
	DeleteQuotation(ctx context.Context, id string) error
}

type TaskStore interface {
	// ListTasks returns every task, newest first.
	ListTasks(ctx context.Context) ([]Task, error)
	ListTasksByCategory(ctx context.Context, category TaskCategory) ([]Task, error)
	// SearchTasks matches query against title and description, ignoring case.
	SearchTasks(ctx context.Context, query string) ([]Task, error)
	GetTask(ctx context.Context, id string) (Task, error)
	CreateTask(ctx context.Context, task Task) (Task, error)
	UpdateTask(ctx context.Context, task Task) (Task, error)
	DeleteTask(ctx context.Context, id string) error
}

type HousekeepingStore interface {
	ListCleaningTasks(ctx context.Context) ([]CleaningTask, error)
	GetCleaningTask(ctx context.Context, id string) (CleaningTask, error)
	CreateCleaningTask(ctx context.Context, task CleaningTask) (CleaningTask, error)
	UpdateCleaningTask(ctx context.Context, task CleaningTask) (CleaningTask, error)
	DeleteCleaningTask(ctx context.Context, id string) error

	// ListInventory returns every stocked item ordered by name.
	ListInventory(ctx context.Context) ([]InventoryItem, error)
	GetInventoryItem(ctx context.Context, id string) (InventoryItem, error)
	CreateInventoryItem(ctx context.Context, item InventoryItem) (InventoryItem, error)
	UpdateInventoryItem(ctx context.Context, item InventoryItem) (InventoryItem, error)
	DeleteInventoryItem(ctx context.Context, id string) error

	// ListStaff returns the rota ordered by last then first name.
	ListStaff(ctx context.Context) ([]StaffMember, error)
	ListStaffByShift(ctx context.Context, shift Shift) ([]StaffMember, error)
	GetStaffMember(ctx context.Context, id string) (StaffMember, error)
	CreateStaffMember(ctx context.Context, member StaffMember) (StaffMember, error)
	UpdateStaffMember(ctx context.Context, member StaffMember) (StaffMember, error)
	DeleteStaffMember(ctx context.Context, id string) error
}

type SettingsStore interface {
	// GetSettings returns ErrNotFound until settings have been initialised.
	GetSettings(ctx context.Context) (HotelSettings, error)
	// InitSettings stores defaults unless settings exist and returns what is
	// stored afterwards.
	InitSettings(ctx context.Context, defaults HotelSettings) (HotelSettings, error)
	// SaveSettings creates or replaces the settings row.
	SaveSettings(ctx context.Context, settings HotelSettings) (HotelSettings, error)
}

type ExpenseStore interface {
	// ListExpenses returns every expense, newest first.
	ListExpenses(ctx context.Context) ([]Expense, error)
	// ListExpensesBetween returns expenses dated within [from, to].
	ListExpensesBetween(ctx context.Context, from, to time.Time) ([]Expense, error)
	GetExpense(ctx context.Context, id string) (Expense, error)
	CreateExpense(ctx context.Context, expense Expense) (Expense, error)
	UpdateExpense(ctx context.Context, expense Expense) (Expense, error)
	DeleteExpense(ctx context.Context, id string) error
}

// Store is the full record store. Create assigns ID and timestamps; Update
// keeps CreatedAt and refreshes UpdatedAt.
type Store interface {
	RoomStore
	GuestStore
	BookingStore
	InvoiceStore
	QuotationStore
	ExpenseStore
	TaskStore
	HousekeepingStore
	SettingsStore
	Ping(ctx context.Context) error
	Close() error
}
