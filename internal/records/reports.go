package records

import (
	"context"
	"math"
	"time"

	"github.com/l0p7/innkeeper/internal/store"
)

// FinancialReport summarises money and occupancy over a period.
type FinancialReport struct {
	From               time.Time          `json:"from"`
	To                 time.Time          `json:"to"`
	Bookings           int                `json:"bookings"`
	Revenue            float64            `json:"revenue"`
	Expenses           float64            `json:"expenses"`
	ExpensesByCategory map[string]float64 `json:"expenses_by_category"`
	Profit             float64            `json:"profit"`
	PendingPayments    float64            `json:"pending_payments"`
	OccupancyRate      float64            `json:"occupancy_rate"`
}

// DashboardStats is the front-desk summary for the current day.
type DashboardStats struct {
	Date            string                   `json:"date"`
	TotalRooms      int                      `json:"total_rooms"`
	RoomsByStatus   map[store.RoomStatus]int `json:"rooms_by_status"`
	OccupancyRate   float64                  `json:"occupancy_rate"`
	TotalGuests     int                      `json:"total_guests"`
	ActiveBookings  int                      `json:"active_bookings"`
	CheckInsToday   int                      `json:"check_ins_today"`
	CheckOutsToday  int                      `json:"check_outs_today"`
	PendingInvoices int                      `json:"pending_invoices"`
}

// FinancialReport counts bookings that start and end inside [from, to],
// cancelled ones excluded. Pending payments are sent or overdue invoices
// dated in the period. Occupancy is booked room-nights over the nights
// available across every room.
func (s *Service) FinancialReport(ctx context.Context, from, to time.Time) (FinancialReport, error) {
	if err := checkRange(from, to); err != nil {
		return FinancialReport{}, err
	}
	return read(ctx, s, rangeKey("reports", "financial", from, to), func(ctx context.Context) (FinancialReport, error) {
		bookings, err := s.store.ListBookingsBetween(ctx, from, to)
		if err != nil {
			return FinancialReport{}, err
		}
		expenses, err := s.store.ListExpensesBetween(ctx, from, to)
		if err != nil {
			return FinancialReport{}, err
		}
		invoices, err := s.store.ListInvoices(ctx)
		if err != nil {
			return FinancialReport{}, err
		}
		rooms, err := s.store.ListRooms(ctx)
		if err != nil {
			return FinancialReport{}, err
		}

		report := FinancialReport{From: from, To: to, ExpensesByCategory: map[string]float64{}}
		occupiedNights := 0
		for _, b := range bookings {
			if b.Status == store.BookingCancelled || b.CheckIn.Before(from) || b.CheckOut.After(to) {
				continue
			}
			report.Bookings++
			report.Revenue += b.TotalAmount
			occupiedNights += Nights(b.CheckIn, b.CheckOut)
		}
		for _, e := range expenses {
			report.Expenses += e.Amount
			report.ExpensesByCategory[e.Category] = roundCents(report.ExpensesByCategory[e.Category] + e.Amount)
		}
		for _, inv := range invoices {
			if inv.Date.Before(from) || inv.Date.After(to) {
				continue
			}
			if inv.Status == store.InvoiceSent || inv.Status == store.InvoiceOverdue {
				report.PendingPayments += inv.Total
			}
		}
		report.Revenue = roundCents(report.Revenue)
		report.Expenses = roundCents(report.Expenses)
		report.PendingPayments = roundCents(report.PendingPayments)
		report.Profit = roundCents(report.Revenue - report.Expenses)

		days := int(math.Ceil(to.Sub(from).Hours() / 24))
		if capacity := len(rooms) * days; capacity > 0 {
			report.OccupancyRate = float64(occupiedNights) / float64(capacity) * 100
		}
		return report, nil
	})
}

// Dashboard reports the room board counts and today's arrivals and
// departures. The cache key carries the date so a new day starts fresh.
func (s *Service) Dashboard(ctx context.Context) (DashboardStats, error) {
	today := s.now()
	date := today.Format(time.DateOnly)
	return read(ctx, s, key("dashboard", "stats", date), func(ctx context.Context) (DashboardStats, error) {
		rooms, err := s.store.ListRooms(ctx)
		if err != nil {
			return DashboardStats{}, err
		}
		guests, err := s.store.ListGuests(ctx)
		if err != nil {
			return DashboardStats{}, err
		}
		bookings, err := s.store.ListBookings(ctx)
		if err != nil {
			return DashboardStats{}, err
		}
		invoices, err := s.store.ListInvoices(ctx)
		if err != nil {
			return DashboardStats{}, err
		}

		stats := DashboardStats{
			Date:          date,
			TotalRooms:    len(rooms),
			TotalGuests:   len(guests),
			RoomsByStatus: make(map[store.RoomStatus]int, len(store.RoomStatuses)),
		}
		for _, status := range store.RoomStatuses {
			stats.RoomsByStatus[status] = 0
		}
		for _, room := range rooms {
			stats.RoomsByStatus[room.Status]++
		}
		if stats.TotalRooms > 0 {
			stats.OccupancyRate = float64(stats.RoomsByStatus[store.RoomOccupied]) / float64(stats.TotalRooms) * 100
		}
		for _, b := range bookings {
			switch b.Status {
			case store.BookingConfirmed, store.BookingCheckedIn:
				stats.ActiveBookings++
			}
			if b.Status == store.BookingCancelled {
				continue
			}
			if sameDay(b.CheckIn, today) {
				stats.CheckInsToday++
			}
			if sameDay(b.CheckOut, today) {
				stats.CheckOutsToday++
			}
		}
		for _, inv := range invoices {
			if inv.Status == store.InvoiceSent || inv.Status == store.InvoiceOverdue {
				stats.PendingInvoices++
			}
		}
		return stats, nil
	})
}

func sameDay(t, day time.Time) bool {
	t = t.In(day.Location())
	y1, m1, d1 := t.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
