// Package report exports settled bookings to an xlsx workbook for the
// finance team.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"bikerental-backend/internal/domain"
	"bikerental-backend/internal/pricing"
)

const sheetName = "Settlements"

var columns = []string{
	"Booking ID", "Reference", "Bike ID", "User ID", "Start", "Booked End", "Returned",
	"Outcome", "Total Price (₹)", "Adjusted Price (₹)", "Refund (₹)", "Additional Charge (₹)",
	"Deposit (₹)", "Platform Fee (₹)", "Owner Share (₹)", "Adjustment %",
}

// Totals sums the money columns of a report.
type Totals struct {
	Bookings          int
	TotalPrice        pricing.Money
	AdjustedPrice     pricing.Money
	Refunds           pricing.Money
	AdditionalCharges pricing.Money
	PlatformFees      pricing.Money
}

// SettlementReport builds the workbook in memory.
type SettlementReport struct {
	file *excelize.File
	row  int
	tot  Totals
}

func rupees(m pricing.Money) float64 {
	return float64(m.Paise()) / 100
}

// NewSettlementReport writes the header row of a report covering [from, to).
func NewSettlementReport(from, to time.Time) (*SettlementReport, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}
	r := &SettlementReport{file: f, row: 1}

	title := fmt.Sprintf("Settlements %s to %s", from.UTC().Format("2006-01-02"), to.UTC().Format("2006-01-02"))
	if err := f.SetCellValue(sheetName, "A1", title); err != nil {
		return nil, err
	}
	r.row = 3
	if err := r.writeRow(toAny(columns)); err != nil {
		return nil, err
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		start, _ := excelize.CoordinatesToCellName(1, 3)
		end, _ := excelize.CoordinatesToCellName(len(columns), 3)
		_ = f.SetCellStyle(sheetName, start, end, style)
	}
	return r, nil
}

func toAny(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

func (r *SettlementReport) writeRow(values []any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, r.row)
		if err != nil {
			return err
		}
		if err := r.file.SetCellValue(sheetName, cell, v); err != nil {
			return fmt.Errorf("set %s: %w", cell, err)
		}
	}
	r.row++
	return nil
}

// Add appends one settled booking.
func (r *SettlementReport) Add(b domain.Booking) error {
	var returned any = ""
	if b.ActualEndTime != nil {
		returned = b.ActualEndTime.UTC().Format(time.RFC3339)
	}
	adjusted := b.TotalPrice
	if b.AdjustedPrice != nil {
		adjusted = *b.AdjustedPrice
	}
	var pct any = ""
	if b.AdjustmentPercent != nil {
		pct = *b.AdjustmentPercent
	}

	err := r.writeRow([]any{
		b.ID, b.Reference, b.BikeID, b.UserID,
		b.StartTime.UTC().Format(time.RFC3339), b.EndTime.UTC().Format(time.RFC3339), returned,
		b.SettlementOutcome, rupees(b.TotalPrice), rupees(adjusted), rupees(b.RefundAmount), rupees(b.AdditionalCharges),
		rupees(b.DepositAmount), rupees(b.PlatformFee), rupees(b.OwnerShare), pct,
	})
	if err != nil {
		return err
	}

	r.tot.Bookings++
	r.tot.TotalPrice += b.TotalPrice
	r.tot.AdjustedPrice += adjusted
	r.tot.Refunds += b.RefundAmount
	r.tot.AdditionalCharges += b.AdditionalCharges
	r.tot.PlatformFees += b.PlatformFee
	return nil
}

// Totals returns the running sums of the rows added so far.
func (r *SettlementReport) Totals() Totals {
	return r.tot
}

func (r *SettlementReport) writeTotals() error {
	r.row++
	return r.writeRow([]any{
		"Total", fmt.Sprintf("%d bookings", r.tot.Bookings), "", "", "", "", "", "",
		rupees(r.tot.TotalPrice), rupees(r.tot.AdjustedPrice), rupees(r.tot.Refunds), rupees(r.tot.AdditionalCharges),
		"", rupees(r.tot.PlatformFees),
	})
}

// Write finishes the workbook with a totals row and streams it out.
func (r *SettlementReport) Write(w io.Writer) error {
	if err := r.writeTotals(); err != nil {
		return err
	}
	return r.file.Write(w)
}

// Close releases resources.
func (r *SettlementReport) Close() error {
	return r.file.Close()
}

// Build is a convenience that writes a full report for the given bookings.
func Build(w io.Writer, from, to time.Time, bookings []domain.Booking) (Totals, error) {
	r, err := NewSettlementReport(from, to)
	if err != nil {
		return Totals{}, err
	}
	defer r.Close()

	for _, b := range bookings {
		if err := r.Add(b); err != nil {
			return Totals{}, err
		}
	}
	if err := r.Write(w); err != nil {
		return Totals{}, err
	}
	return r.Totals(), nil
}
