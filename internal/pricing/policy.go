package pricing

import (
	"fmt"
	"time"
)

// LateTier is a penalty band for returns later than the booked end time.
// A tier covers overages up to and including UpTo.
type LateTier struct {
	Name              string
	UpTo              time.Duration
	MultiplierPercent int64 // 150 = 1.5x the hourly rate
}

// RentalPolicyConfig holds every business constant the engine needs. It is
// passed explicitly into each call and never read from global state.
type RentalPolicyConfig struct {
	Deposit           DepositPolicy
	GracePeriod       time.Duration
	LateTiers         []LateTier
	ManualReviewAfter time.Duration
}

// DefaultPolicy returns the standard ₹42 deposit / ₹2 platform fee policy with
// a 15 minute grace window and 1.5x / 2x late tiers.
func DefaultPolicy() RentalPolicyConfig {
	return RentalPolicyConfig{
		Deposit: DepositPolicy{
			DepositAmount: Rupees(42),
			PlatformFee:   Rupees(2),
		},
		GracePeriod: 15 * time.Minute,
		LateTiers: []LateTier{
			{Name: "standard", UpTo: 2 * time.Hour, MultiplierPercent: 150},
			{Name: "severe", UpTo: 5 * time.Hour, MultiplierPercent: 200},
		},
		ManualReviewAfter: 5 * time.Hour,
	}
}

// Validate checks the deposit invariant and the shape of the late tier table.
func (p RentalPolicyConfig) Validate() error {
	if err := p.Deposit.Validate(); err != nil {
		return err
	}
	if p.GracePeriod < 0 {
		return fmt.Errorf("%w: grace period cannot be negative", ErrInvalidPolicy)
	}
	if len(p.LateTiers) == 0 {
		return fmt.Errorf("%w: at least one late tier is required", ErrInvalidPolicy)
	}
	prev := p.GracePeriod
	for _, t := range p.LateTiers {
		if t.UpTo <= prev {
			return fmt.Errorf("%w: late tier %q must end after %s", ErrInvalidPolicy, t.Name, prev)
		}
		if t.MultiplierPercent < 100 {
			return fmt.Errorf("%w: late tier %q multiplier %d%% is below 100%%", ErrInvalidPolicy, t.Name, t.MultiplierPercent)
		}
		prev = t.UpTo
	}
	if p.ManualReviewAfter < prev {
		return fmt.Errorf("%w: manual review threshold %s is inside the tier table", ErrInvalidPolicy, p.ManualReviewAfter)
	}
	return nil
}

// Lateness describes how late a return is relative to the booked end.
type Lateness struct {
	Overage      time.Duration
	WithinGrace  bool
	ManualReview bool
	Tier         LateTier // zero when WithinGrace or ManualReview
}

// ClassifyLateness picks the late tier for a vehicle returned (or still out) at
// the given instant. Early and on-grace returns report WithinGrace.
func ClassifyLateness(policy RentalPolicyConfig, end, at time.Time) Lateness {
	overage := at.Sub(end)
	if overage <= policy.GracePeriod {
		if overage < 0 {
			overage = 0
		}
		return Lateness{Overage: overage, WithinGrace: true}
	}
	if overage > policy.ManualReviewAfter || len(policy.LateTiers) == 0 {
		return Lateness{Overage: overage, ManualReview: true}
	}
	for _, t := range policy.LateTiers {
		if overage <= t.UpTo {
			return Lateness{Overage: overage, Tier: t}
		}
	}
	// between the last tier and the manual review threshold
	return Lateness{Overage: overage, Tier: policy.LateTiers[len(policy.LateTiers)-1]}
}
