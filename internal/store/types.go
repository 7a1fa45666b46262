package store

import (
	"fmt"
	"strings"
	"time"
)

type RoomType string

const (
	RoomSingle RoomType = "single"
	RoomDouble RoomType = "double"
	RoomSuite  RoomType = "suite"
	RoomDeluxe RoomType = "deluxe"
)

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomOccupied    RoomStatus = "occupied"
	RoomCleaning    RoomStatus = "cleaning"
	RoomMaintenance RoomStatus = "maintenance"
)

// RoomStatuses lists every status in display order.
var RoomStatuses = []RoomStatus{RoomAvailable, RoomOccupied, RoomCleaning, RoomMaintenance}

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingCheckedIn  BookingStatus = "checked_in"
	BookingCheckedOut BookingStatus = "checked_out"
	BookingCancelled  BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPartial  PaymentStatus = "partial"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoiceSent    InvoiceStatus = "sent"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
)

type QuotationStatus string

const (
	QuotationDraft    QuotationStatus = "draft"
	QuotationSent     QuotationStatus = "sent"
	QuotationAccepted QuotationStatus = "accepted"
	QuotationRejected QuotationStatus = "rejected"
	QuotationExpired  QuotationStatus = "expired"
)

type ExpenseStatus string

const (
	ExpensePending ExpenseStatus = "pending"
	ExpensePaid    ExpenseStatus = "paid"
)

// Room is one lettable unit.
type Room struct {
	ID            string     `json:"id"`
	RoomNumber    string     `json:"room_number"`
	RoomType      RoomType   `json:"room_type"`
	Status        RoomStatus `json:"status"`
	FloorNumber   int        `json:"floor_number"`
	PricePerNight float64    `json:"price_per_night"`
	Capacity      int        `json:"capacity"`
	Amenities     []string   `json:"amenities"`
	Description   string     `json:"description,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (r Room) Validate() error {
	if strings.TrimSpace(r.RoomNumber) == "" {
		return invalidf("room number is required")
	}
	switch r.RoomType {
	case RoomSingle, RoomDouble, RoomSuite, RoomDeluxe:
	default:
		return invalidf("unknown room type %q", r.RoomType)
	}
	if err := r.Status.Validate(); err != nil {
		return err
	}
	if r.PricePerNight < 0 {
		return invalidf("price per night must not be negative")
	}
	if r.Capacity <= 0 {
		return invalidf("capacity must be at least 1")
	}
	return nil
}

func (s RoomStatus) Validate() error {
	switch s {
	case RoomAvailable, RoomOccupied, RoomCleaning, RoomMaintenance:
		return nil
	}
	return invalidf("unknown room status %q", s)
}

// Guest is a person who stays or has stayed.
type Guest struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	IDType      string    `json:"id_type,omitempty"`
	IDNumber    string    `json:"id_number,omitempty"`
	Address     string    `json:"address,omitempty"`
	Nationality string    `json:"nationality,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (g Guest) Validate() error {
	if strings.TrimSpace(g.FirstName) == "" || strings.TrimSpace(g.LastName) == "" {
		return invalidf("first and last name are required")
	}
	if g.Email != "" && !strings.Contains(g.Email, "@") {
		return invalidf("email %q is not valid", g.Email)
	}
	return nil
}

// Booking reserves a room for a guest over [CheckIn, CheckOut].
type Booking struct {
	ID              string        `json:"id"`
	RoomID          string        `json:"room_id"`
	GuestID         string        `json:"guest_id"`
	CheckIn         time.Time     `json:"check_in"`
	CheckOut        time.Time     `json:"check_out"`
	Status          BookingStatus `json:"status"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	NumberOfGuests  int           `json:"number_of_guests"`
	TotalAmount     float64       `json:"total_amount"`
	SpecialRequests string        `json:"special_requests,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (b Booking) Validate() error {
	if b.RoomID == "" || b.GuestID == "" {
		return invalidf("room and guest are required")
	}
	if b.CheckIn.IsZero() || b.CheckOut.IsZero() {
		return invalidf("check-in and check-out are required")
	}
	if !b.CheckOut.After(b.CheckIn) {
		return invalidf("check-out must be after check-in")
	}
	if err := b.Status.Validate(); err != nil {
		return err
	}
	switch b.PaymentStatus {
	case PaymentPending, PaymentPartial, PaymentPaid, PaymentRefunded:
	default:
		return invalidf("unknown payment status %q", b.PaymentStatus)
	}
	if b.NumberOfGuests <= 0 {
		return invalidf("number of guests must be at least 1")
	}
	return nil
}

func (s BookingStatus) Validate() error {
	switch s {
	case BookingPending, BookingConfirmed, BookingCheckedIn, BookingCheckedOut, BookingCancelled:
		return nil
	}
	return invalidf("unknown booking status %q", s)
}

// Overlaps reports whether the stay touches [from, to], both ends inclusive.
func (b Booking) Overlaps(from, to time.Time) bool {
	return !b.CheckIn.After(to) && !b.CheckOut.Before(from)
}

// LineItem is one billed or quoted line. Total is quantity times unit price.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

// Invoice bills a booking. Number is unique and derived from Year and Sequence.
type Invoice struct {
	ID        string        `json:"id"`
	Number    string        `json:"number"`
	Year      int           `json:"year"`
	Sequence  int           `json:"sequence"`
	BookingID string        `json:"booking_id"`
	GuestID   string        `json:"guest_id"`
	Date      time.Time     `json:"date"`
	DueDate   time.Time     `json:"due_date"`
	Items     []LineItem    `json:"items"`
	Subtotal  float64       `json:"subtotal"`
	Tax       float64       `json:"tax"`
	Total     float64       `json:"total"`
	Status    InvoiceStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (i Invoice) Validate() error {
	if strings.TrimSpace(i.Number) == "" {
		return invalidf("invoice number is required")
	}
	if i.BookingID == "" || i.GuestID == "" {
		return invalidf("booking and guest are required")
	}
	if i.Date.IsZero() {
		return invalidf("invoice date is required")
	}
	if len(i.Items) == 0 {
		return invalidf("invoice needs at least one item")
	}
	if err := validateItems("invoice", i.Items); err != nil {
		return err
	}
	switch i.Status {
	case InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceOverdue:
	default:
		return invalidf("unknown invoice status %q", i.Status)
	}
	return nil
}

// Quotation prices a prospective stay or service for a guest. Number is unique
// and derived from Year, Month and Sequence; sequences restart every month.
type Quotation struct {
	ID         string          `json:"id"`
	Number     string          `json:"number"`
	Year       int             `json:"year"`
	Month      int             `json:"month"`
	Sequence   int             `json:"sequence"`
	GuestID    string          `json:"guest_id"`
	Date       time.Time       `json:"date"`
	ValidUntil time.Time       `json:"valid_until"`
	Items      []LineItem      `json:"items"`
	Subtotal   float64         `json:"subtotal"`
	Tax        float64         `json:"tax"`
	Amount     float64         `json:"amount"`
	Status     QuotationStatus `json:"status"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (q Quotation) Validate() error {
	if strings.TrimSpace(q.Number) == "" {
		return invalidf("quotation number is required")
	}
	if q.GuestID == "" {
		return invalidf("guest is required")
	}
	if q.Date.IsZero() {
		return invalidf("quotation date is required")
	}
	if !q.ValidUntil.IsZero() && q.ValidUntil.Before(q.Date) {
		return invalidf("quotation cannot expire before it is issued")
	}
	if len(q.Items) == 0 {
		return invalidf("quotation needs at least one item")
	}
	if err := validateItems("quotation", q.Items); err != nil {
		return err
	}
	switch q.Status {
	case QuotationDraft, QuotationSent, QuotationAccepted, QuotationRejected, QuotationExpired:
	default:
		return invalidf("unknown quotation status %q", q.Status)
	}
	return nil
}

func validateItems(kind string, items []LineItem) error {
	for _, item := range items {
		if strings.TrimSpace(item.Description) == "" {
			return invalidf("%s item description is required", kind)
		}
		if item.Quantity <= 0 {
			return invalidf("%s item quantity must be positive", kind)
		}
		if item.UnitPrice < 0 {
			return invalidf("%s item unit price must not be negative", kind)
		}
	}
	return nil
}

// Expense is money spent running the house.
type Expense struct {
	ID            string        `json:"id"`
	Date          time.Time     `json:"date"`
	Category      string        `json:"category"`
	Description   string        `json:"description"`
	Amount        float64       `json:"amount"`
	PaymentMethod string        `json:"payment_method"`
	Status        ExpenseStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (e Expense) Validate() error {
	if e.Date.IsZero() {
		return invalidf("expense date is required")
	}
	if strings.TrimSpace(e.Category) == "" {
		return invalidf("expense category is required")
	}
	if e.Amount < 0 {
		return invalidf("expense amount must not be negative")
	}
	switch e.Status {
	case ExpensePending, ExpensePaid:
	default:
		return invalidf("unknown expense status %q", e.Status)
	}
	return nil
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}
