package pricing

import "fmt"

// RateSheet is the hourly rate of a single bike.
type RateSheet struct {
	HourlyRate Money
}

// Validate rejects negative rates.
func (r RateSheet) Validate() error {
	if r.HourlyRate < 0 {
		return fmt.Errorf("%w: got %s", ErrInvalidRate, r.HourlyRate)
	}
	return nil
}

// CalculatePrice prices a span at the given rate using BillableHours.
func CalculatePrice(span TimeSpan, rates RateSheet) (Money, error) {
	if err := span.Validate(); err != nil {
		return 0, err
	}
	if err := rates.Validate(); err != nil {
		return 0, err
	}
	return Money(BillableHours(span.Length())) * rates.HourlyRate, nil
}
