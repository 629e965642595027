package pricing

import "fmt"

// DepositPolicy is the fixed upfront deposit and the platform's cut of it.
type DepositPolicy struct {
	DepositAmount Money
	PlatformFee   Money
}

// Validate enforces DepositAmount > PlatformFee >= 0.
func (p DepositPolicy) Validate() error {
	if p.PlatformFee < 0 {
		return fmt.Errorf("%w: platform fee %s is negative", ErrInvalidPolicy, p.PlatformFee)
	}
	if p.DepositAmount <= p.PlatformFee {
		return fmt.Errorf("%w: deposit %s must exceed platform fee %s", ErrInvalidPolicy, p.DepositAmount, p.PlatformFee)
	}
	return nil
}

// OwnerShare is the part of the deposit passed on to the bike owner.
func (p DepositPolicy) OwnerShare() Money {
	return p.DepositAmount - p.PlatformFee
}

// DepositSplit is the apportioned deposit for one booking.
type DepositSplit struct {
	DepositAmount      Money `json:"deposit_amount"`
	OwnerShare         Money `json:"owner_share"`
	PlatformFee        Money `json:"platform_fee"`
	BalanceDueAtReturn Money `json:"balance_due_at_return"`
}

// Apportion splits the deposit and computes what is still owed at return.
// BalanceDueAtReturn is negative when the rental costs less than the owner
// share; that difference is owed back to the renter.
func Apportion(policy DepositPolicy, totalPrice Money) (DepositSplit, error) {
	if err := policy.Validate(); err != nil {
		return DepositSplit{}, err
	}
	owner := policy.OwnerShare()
	return DepositSplit{
		DepositAmount:      policy.DepositAmount,
		OwnerShare:         owner,
		PlatformFee:        policy.PlatformFee,
		BalanceDueAtReturn: totalPrice - owner,
	}, nil
}
