package pricing

import (
	"fmt"
	"math"
)

// Money is an amount in paise (1/100 of a rupee).
type Money int64

// Rupees converts whole rupees to Money.
func Rupees(r int64) Money {
	return Money(r * 100)
}

// RupeesFloat converts a rupee amount such as 42.5 to Money, rounded to
// the nearest paisa.
func RupeesFloat(r float64) Money {
	return Money(math.Round(r * 100))
}

// Paise returns the raw amount in paise.
func (m Money) Paise() int64 {
	return int64(m)
}

// String renders the amount as ₹1234.50, without digit grouping.
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s₹%d.%02d", sign, v/100, v%100)
}

// mulDiv returns m*num/den rounded half away from zero. den must be positive.
func mulDiv(m Money, num, den int64) Money {
	p := int64(m) * num
	q := p / den
	r := p % den
	if r < 0 {
		r = -r
	}
	if 2*r >= den {
		if p < 0 {
			q--
		} else {
			q++
		}
	}
	return Money(q)
}
