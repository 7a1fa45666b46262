package store

import (
	"strings"
	"time"
)

// SettingsID is the key of the single hotel settings row.
const SettingsID = "1"

type TaxType string

const (
	TaxPercentage TaxType = "percentage"
	TaxFixed      TaxType = "fixed"
)

// HotelSettings holds house-wide details and the tax rule applied to invoices
// and quotations. TaxRate is a percentage or a flat amount depending on TaxType.
type HotelSettings struct {
	ID                 string    `json:"id"`
	HotelName          string    `json:"hotel_name"`
	Currency           string    `json:"currency"`
	CheckInTime        string    `json:"check_in_time"`
	CheckOutTime       string    `json:"check_out_time"`
	ContactEmail       string    `json:"contact_email"`
	ContactPhone       string    `json:"contact_phone"`
	Address            string    `json:"address"`
	TaxRate            float64   `json:"tax_rate"`
	TaxType            TaxType   `json:"tax_type"`
	TaxName            string    `json:"tax_name"`
	BookingTerms       string    `json:"booking_terms"`
	CancellationPolicy string    `json:"cancellation_policy"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// DefaultHotelSettings is written on first start.
func DefaultHotelSettings() HotelSettings {
	return HotelSettings{
		ID:           SettingsID,
		HotelName:    "Sexhebe Guest House",
		Currency:     "BWP",
		CheckInTime:  "14:00",
		CheckOutTime: "11:00",
		TaxRate:      14,
		TaxType:      TaxPercentage,
		TaxName:      "VAT/Levy",
	}
}

func (s HotelSettings) Validate() error {
	if strings.TrimSpace(s.HotelName) == "" {
		return invalidf("hotel name is required")
	}
	if strings.TrimSpace(s.Currency) == "" {
		return invalidf("currency is required")
	}
	for _, clock := range []string{s.CheckInTime, s.CheckOutTime} {
		if _, err := time.Parse("15:04", clock); err != nil {
			return invalidf("time %q must be HH:MM", clock)
		}
	}
	if s.ContactEmail != "" && !strings.Contains(s.ContactEmail, "@") {
		return invalidf("contact email %q is not valid", s.ContactEmail)
	}
	if s.TaxRate < 0 {
		return invalidf("tax rate must not be negative")
	}
	switch s.TaxType {
	case TaxPercentage:
		if s.TaxRate > 100 {
			return invalidf("tax percentage must not exceed 100")
		}
	case TaxFixed:
	default:
		return invalidf("unknown tax type %q", s.TaxType)
	}
	return nil
}
