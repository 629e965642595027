package pricing

import (
	"fmt"
	"math"
	"time"
)

// OutcomeKind names a settlement regime.
type OutcomeKind string

const (
	OutcomeOnTime       OutcomeKind = "ON_TIME"
	OutcomeEarlyReturn  OutcomeKind = "EARLY_RETURN"
	OutcomeLateReturn   OutcomeKind = "LATE_RETURN"
	OutcomeManualReview OutcomeKind = "MANUAL_REVIEW"
)

// Outcome is the closed set of settlement regimes: OnTime, EarlyReturn,
// LateReturn and ManualReview. Callers switch on the concrete type.
type Outcome interface {
	Kind() OutcomeKind
	isOutcome()
}

// OnTime is a return within the grace window of the booked end.
type OnTime struct{}

// EarlyReturn is a return before the booked end, re-priced on actual usage.
type EarlyReturn struct {
	ActualHours int64
	Refund      Money
}

// LateReturn is a return past the grace window, charged at a tier multiplier.
type LateReturn struct {
	Tier         LateTier
	Overage      time.Duration
	OverageHours int64
	Charge       Money
}

// ManualReview is a return so late it cannot be told apart from a vehicle
// that was never returned. It is not priced automatically.
type ManualReview struct {
	Overage time.Duration
}

func (OnTime) Kind() OutcomeKind       { return OutcomeOnTime }
func (EarlyReturn) Kind() OutcomeKind  { return OutcomeEarlyReturn }
func (LateReturn) Kind() OutcomeKind   { return OutcomeLateReturn }
func (ManualReview) Kind() OutcomeKind { return OutcomeManualReview }

func (OnTime) isOutcome()       {}
func (EarlyReturn) isOutcome()  {}
func (LateReturn) isOutcome()   {}
func (ManualReview) isOutcome() {}

// SettlementResult holds the amounts written back to the booking. At most one
// of RefundAmount and AdditionalChargeAmount is non-zero.
type SettlementResult struct {
	AdjustedPrice          Money `json:"adjusted_price"`
	RefundAmount           Money `json:"refund_amount"`
	AdditionalChargeAmount Money `json:"additional_charge_amount"`
}

// Settlement is the outcome of a return together with its amounts.
type Settlement struct {
	Outcome Outcome
	SettlementResult
}

// SettleOptions carries the admin-only overrides. AdjustmentPercent scales an
// early-return price by (1 + pct/100); nil means no override.
// ResolveManualReview prices a return past ManualReviewAfter at the last late
// tier instead of reporting ManualReview. It is only set once an admin has
// looked at the booking.
type SettleOptions struct {
	AdjustmentPercent   *float64
	ResolveManualReview bool
}

// Settle reconciles a booking against its actual return time.
func Settle(policy RentalPolicyConfig, terms BookingTerms, actualEnd time.Time, opts SettleOptions) (Settlement, error) {
	if err := policy.Validate(); err != nil {
		return Settlement{}, err
	}
	booked, err := terms.bookedHours()
	if err != nil {
		return Settlement{}, err
	}
	if actualEnd.Before(terms.StartTime) {
		return Settlement{}, fmt.Errorf("%w: return at %s is before pickup at %s",
			ErrInvalidSettlement, actualEnd.Format(time.RFC3339), terms.StartTime.Format(time.RFC3339))
	}
	if opts.AdjustmentPercent != nil && *opts.AdjustmentPercent < -100 {
		return Settlement{}, fmt.Errorf("%w: adjustment %.2f%% is below -100%%", ErrInvalidSettlement, *opts.AdjustmentPercent)
	}

	total := terms.TotalPrice
	unchanged := SettlementResult{AdjustedPrice: total}

	delta := actualEnd.Sub(terms.EndTime)
	if delta < 0 {
		// grace only shields an early return that would not drop a billed hour
		if -delta > policy.GracePeriod || BillableHours(actualEnd.Sub(terms.StartTime)) < booked {
			return settleEarly(terms, booked, actualEnd, opts), nil
		}
		return Settlement{Outcome: OnTime{}, SettlementResult: unchanged}, nil
	}

	late := ClassifyLateness(policy, terms.EndTime, actualEnd)
	switch {
	case late.WithinGrace:
		return Settlement{Outcome: OnTime{}, SettlementResult: unchanged}, nil
	case late.ManualReview && !opts.ResolveManualReview:
		return Settlement{Outcome: ManualReview{Overage: late.Overage}, SettlementResult: unchanged}, nil
	case late.ManualReview:
		late.Tier = policy.LateTiers[len(policy.LateTiers)-1]
	}

	// hours already paid for past the booked end are not billed again
	paidThrough := terms.StartTime.Add(time.Duration(booked) * time.Hour)
	if paidThrough.Before(terms.EndTime) {
		paidThrough = terms.EndTime
	}
	if !actualEnd.After(paidThrough) {
		return Settlement{Outcome: OnTime{}, SettlementResult: unchanged}, nil
	}
	overageHours := ceilHours(actualEnd.Sub(paidThrough))
	charge := mulDiv(total, overageHours*late.Tier.MultiplierPercent, booked*100)
	return Settlement{
		Outcome: LateReturn{
			Tier:         late.Tier,
			Overage:      late.Overage,
			OverageHours: overageHours,
			Charge:       charge,
		},
		SettlementResult: SettlementResult{
			AdjustedPrice:          total + charge,
			AdditionalChargeAmount: charge,
		},
	}, nil
}

func settleEarly(terms BookingTerms, booked int64, actualEnd time.Time, opts SettleOptions) Settlement {
	total := terms.TotalPrice
	actualHours := BillableHours(actualEnd.Sub(terms.StartTime))
	adjusted := mulDiv(total, actualHours, booked)
	if opts.AdjustmentPercent != nil {
		bp := int64(math.Round(*opts.AdjustmentPercent * 100))
		adjusted = mulDiv(adjusted, 10000+bp, 10000)
	}

	res := SettlementResult{AdjustedPrice: adjusted}
	if adjusted < total {
		res.RefundAmount = total - adjusted
	} else {
		// an admin surcharge can push the price past what was paid
		res.AdditionalChargeAmount = adjusted - total
	}
	return Settlement{
		Outcome:          EarlyReturn{ActualHours: actualHours, Refund: res.RefundAmount},
		SettlementResult: res,
	}
}
