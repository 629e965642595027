package pricing

import (
	"fmt"
	"time"
)

// BreakdownLine is one display row of a price estimate.
type BreakdownLine struct {
	Description string `json:"description"`
	Rate        string `json:"rate"`
	Amount      Money  `json:"amount"`
}

// PriceEstimate is what the booking screens render before confirmation.
type PriceEstimate struct {
	Price             Money           `json:"price"`
	BillableHours     int64           `json:"billable_hours"`
	FormattedDuration string          `json:"formatted_duration"`
	Lines             []BreakdownLine `json:"lines"`
}

// Estimate prices a span and splits the total into display lines. The lines
// are cut from the same billable hour count as CalculatePrice, so they always
// sum to Price.
func Estimate(span TimeSpan, rates RateSheet) (PriceEstimate, error) {
	price, err := CalculatePrice(span, rates)
	if err != nil {
		return PriceEstimate{}, err
	}
	d, err := CalculateDuration(span)
	if err != nil {
		return PriceEstimate{}, err
	}

	length := span.Length()
	whole := int64(length / time.Hour)
	partial := length % time.Hour
	rate := fmt.Sprintf("%s/hr", rates.HourlyRate)

	var lines []BreakdownLine
	switch {
	case whole == 0:
		lines = append(lines, BreakdownLine{
			Description: "1 hour (minimum charge)",
			Rate:        rate,
			Amount:      rates.HourlyRate,
		})
	default:
		lines = append(lines, BreakdownLine{
			Description: hoursLabel(whole),
			Rate:        rate,
			Amount:      Money(whole) * rates.HourlyRate,
		})
		if partial > 0 {
			lines = append(lines, BreakdownLine{
				Description: partialLabel(partial),
				Rate:        rate,
				Amount:      rates.HourlyRate,
			})
		}
	}

	return PriceEstimate{
		Price:             price,
		BillableHours:     BillableHours(length),
		FormattedDuration: d.Format(),
		Lines:             lines,
	}, nil
}

func hoursLabel(n int64) string {
	if n == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", n)
}

func partialLabel(d time.Duration) string {
	m := int64(d / time.Minute)
	if m == 0 {
		return "Partial hour (<1 min, billed as 1 hour)"
	}
	return fmt.Sprintf("Partial hour (%d min, billed as 1 hour)", m)
}
