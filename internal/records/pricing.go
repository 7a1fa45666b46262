package records

import (
	"math"
	"time"

	"github.com/l0p7/innkeeper/internal/store"
)

// Nights counts billable nights between check-in and check-out. Any part of a
// day is billed as a whole night; an empty or inverted stay is zero.
func Nights(checkIn, checkOut time.Time) int {
	span := checkOut.Sub(checkIn)
	if span <= 0 {
		return 0
	}
	return int(math.Ceil(span.Hours() / 24))
}

// StayTotal prices a stay at the room's nightly rate.
func StayTotal(pricePerNight float64, nights int) float64 {
	if nights <= 0 {
		return 0
	}
	return roundCents(pricePerNight * float64(nights))
}

// Quote is the price of a prospective stay.
type Quote struct {
	RoomID        string    `json:"room_id"`
	CheckIn       time.Time `json:"check_in"`
	CheckOut      time.Time `json:"check_out"`
	Nights        int       `json:"nights"`
	PricePerNight float64   `json:"price_per_night"`
	Total         float64   `json:"total"`
}

func quoteFor(room store.Room, checkIn, checkOut time.Time) Quote {
	nights := Nights(checkIn, checkOut)
	return Quote{
		RoomID:        room.ID,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		Nights:        nights,
		PricePerNight: room.PricePerNight,
		Total:         StayTotal(room.PricePerNight, nights),
	}
}

// TaxCharge is the tax due on an amount under the house tax rule.
type TaxCharge struct {
	Amount float64       `json:"amount"`
	Rate   float64       `json:"rate"`
	Type   store.TaxType `json:"type"`
	Name   string        `json:"name"`
}

// TaxFor applies the settings' tax rule to amount. A percentage rate scales
// with the amount; a fixed rate is charged once on any positive amount.
func TaxFor(settings store.HotelSettings, amount float64) TaxCharge {
	charge := TaxCharge{Rate: settings.TaxRate, Type: settings.TaxType, Name: settings.TaxName}
	switch settings.TaxType {
	case store.TaxFixed:
		if amount > 0 {
			charge.Amount = roundCents(settings.TaxRate)
		}
	default:
		charge.Amount = roundCents(amount * settings.TaxRate / 100)
	}
	return charge
}

// PriceItems derives item totals, subtotal, tax and grand total. Item totals
// are recomputed from quantity and unit price.
func PriceItems(items []store.LineItem, settings store.HotelSettings) (priced []store.LineItem, subtotal, tax, total float64) {
	priced = make([]store.LineItem, len(items))
	for i, item := range items {
		item.Total = roundCents(item.Quantity * item.UnitPrice)
		priced[i] = item
		subtotal += item.Total
	}
	subtotal = roundCents(subtotal)
	tax = TaxFor(settings, subtotal).Amount
	return priced, subtotal, tax, roundCents(subtotal + tax)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
