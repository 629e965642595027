package pricing

import (
	"fmt"
	"time"
)

// BookingTerms is the part of a persisted booking the engine prices against.
// BilledHours is the number of hours already charged; zero means derive it
// from the span.
type BookingTerms struct {
	StartTime   time.Time
	EndTime     time.Time
	TotalPrice  Money
	BilledHours int64
}

// bookedHours is the hour count TotalPrice was charged for. The hourly rate is
// back-derived from it so a later change of the bike's listed rate does not
// leak into an existing booking.
func (t BookingTerms) bookedHours() (int64, error) {
	span := TimeSpan{Start: t.StartTime, End: t.EndTime}
	if err := span.Validate(); err != nil {
		return 0, err
	}
	if t.TotalPrice < 0 {
		return 0, fmt.Errorf("%w: booking total %s is negative", ErrInvalidRate, t.TotalPrice)
	}
	if t.BilledHours > 0 {
		return t.BilledHours, nil
	}
	return BillableHours(span.Length()), nil
}

// HourlyRate is TotalPrice spread over the booked hours, rounded to the paisa.
func (t BookingTerms) HourlyRate() (Money, error) {
	h, err := t.bookedHours()
	if err != nil {
		return 0, err
	}
	return mulDiv(t.TotalPrice, 1, h), nil
}

// Extension is the cost of pushing a booking's end time later.
type Extension struct {
	AdditionalHours int64 `json:"additional_hours"`
	HourlyRate      Money `json:"hourly_rate"`
	AdditionalCost  Money `json:"additional_cost"`
	NewTotalPrice   Money `json:"new_total_price"`
	NewBilledHours  int64 `json:"new_billed_hours"`
}

// PriceExtension prices only the added window, rounded up to whole hours, at
// the booking's own back-derived rate.
func PriceExtension(terms BookingTerms, newEnd time.Time) (Extension, error) {
	booked, err := terms.bookedHours()
	if err != nil {
		return Extension{}, err
	}
	if !newEnd.After(terms.EndTime) {
		return Extension{}, fmt.Errorf("%w: current end %s, requested %s",
			ErrInvalidExtension, terms.EndTime.Format(time.RFC3339), newEnd.Format(time.RFC3339))
	}

	added := ceilHours(newEnd.Sub(terms.EndTime))
	cost := mulDiv(terms.TotalPrice, added, booked)
	return Extension{
		AdditionalHours: added,
		HourlyRate:      mulDiv(terms.TotalPrice, 1, booked),
		AdditionalCost:  cost,
		NewTotalPrice:   terms.TotalPrice + cost,
		NewBilledHours:  booked + added,
	}, nil
}
