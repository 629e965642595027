// Package receipt renders the customer-facing breakdown of a booking: the
// rental charge, how the deposit is split, what is still due and, once the
// bike is back, how the return was settled.
package receipt

import (
	"fmt"
	"strings"
	"time"

	"bikerental-backend/internal/domain"
	"bikerental-backend/internal/pricing"
)

const timeLayout = "02 Jan 2006 15:04"

type Line struct {
	Label  string        `json:"label"`
	Amount pricing.Money `json:"amount"`
	Indent bool          `json:"indent,omitempty"`
}

type Receipt struct {
	Reference  string `json:"reference"`
	BikeID     int32  `json:"bike_id"`
	Period     string `json:"period"`
	Status     string `json:"status"`
	Lines      []Line `json:"lines"`
	Settlement []Line `json:"settlement,omitempty"`
	ReturnNote string `json:"return_note,omitempty"`

	AdjustmentNote string `json:"adjustment_note,omitempty"`
}

var outcomeLabels = map[string]string{
	string(pricing.OutcomeOnTime):       "on time",
	string(pricing.OutcomeEarlyReturn):  "early return",
	string(pricing.OutcomeLateReturn):   "late return",
	string(pricing.OutcomeManualReview): "awaiting review",
}

// Build assembles the receipt from the booking's own price snapshot, so a
// later policy change never alters an issued receipt.
func Build(b *domain.Booking) (*Receipt, error) {
	split, err := pricing.Apportion(pricing.DepositPolicy{
		DepositAmount: b.DepositAmount,
		PlatformFee:   b.PlatformFee,
	}, b.TotalPrice)
	if err != nil {
		return nil, err
	}
	rate, err := b.Terms().HourlyRate()
	if err != nil {
		return nil, err
	}
	hours := b.BilledHours
	if hours == 0 {
		hours = pricing.BillableHours(b.EndTime.Sub(b.StartTime))
	}

	dur, err := pricing.CalculateDuration(pricing.TimeSpan{Start: b.StartTime, End: b.EndTime})
	if err != nil {
		return nil, err
	}

	r := &Receipt{
		Reference: b.Reference,
		BikeID:    b.BikeID,
		Period: fmt.Sprintf("%s to %s (%s)",
			b.StartTime.UTC().Format(timeLayout), b.EndTime.UTC().Format(timeLayout), dur.Format()),
		Status: string(b.Status),
		Lines: []Line{
			{Label: fmt.Sprintf("Rental (%s @ %s/hr)", hourLabel(hours), rate), Amount: b.TotalPrice},
			{Label: "Deposit paid", Amount: split.DepositAmount},
			{Label: "Platform fee", Amount: split.PlatformFee, Indent: true},
			{Label: "Owner share", Amount: split.OwnerShare, Indent: true},
			balanceLine("Balance due at return", split.BalanceDueAtReturn),
		},
	}

	if b.ActualEndTime != nil && b.AdjustedPrice != nil {
		r.ReturnNote = returnNote(*b.ActualEndTime, b.SettlementOutcome)
		r.Settlement = append(r.Settlement, Line{Label: "Adjusted price", Amount: *b.AdjustedPrice})
		if b.AdjustmentPercent != nil {
			r.AdjustmentNote = fmt.Sprintf("Adjusted price includes an admin adjustment of %+.2f%%", *b.AdjustmentPercent)
		}
		if b.RefundAmount > 0 {
			r.Settlement = append(r.Settlement, Line{Label: "Refund", Amount: b.RefundAmount})
		}
		if b.AdditionalCharges > 0 {
			r.Settlement = append(r.Settlement, Line{Label: "Additional charge", Amount: b.AdditionalCharges})
		}
		r.Settlement = append(r.Settlement, balanceLine("Settled at return", *b.AdjustedPrice-split.OwnerShare))
	}
	return r, nil
}

func balanceLine(label string, amount pricing.Money) Line {
	if amount < 0 {
		return Line{Label: "Owed to you", Amount: -amount}
	}
	return Line{Label: label, Amount: amount}
}

func returnNote(at time.Time, outcome string) string {
	note := "Returned " + at.UTC().Format(timeLayout)
	if label, ok := outcomeLabels[outcome]; ok {
		note += " (" + label + ")"
	}
	return note
}

func hourLabel(h int64) string {
	if h == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", h)
}

// Text renders the receipt as fixed-width plain text for email and download.
func (r *Receipt) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Booking %s\n", r.Reference)
	fmt.Fprintf(&sb, "Bike #%d\n", r.BikeID)
	fmt.Fprintf(&sb, "%s\n", r.Period)
	fmt.Fprintf(&sb, "Status: %s\n\n", r.Status)
	writeLines(&sb, r.Lines)
	if r.ReturnNote != "" {
		fmt.Fprintf(&sb, "\n%s\n", r.ReturnNote)
		writeLines(&sb, r.Settlement)
		if r.AdjustmentNote != "" {
			fmt.Fprintf(&sb, "%s\n", r.AdjustmentNote)
		}
	}
	return sb.String()
}

func writeLines(sb *strings.Builder, lines []Line) {
	for _, l := range lines {
		label := l.Label
		if l.Indent {
			label = "  " + label
		}
		fmt.Fprintf(sb, "%-40s %12s\n", label, l.Amount)
	}
}
