package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func span(d time.Duration) TimeSpan {
	return TimeSpan{Start: base, End: base.Add(d)}
}

func TestCalculateDuration(t *testing.T) {
	t.Run("Hours and minutes", func(t *testing.T) {
		d, err := CalculateDuration(span(2*time.Hour + 30*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, int64(9_000_000), d.TotalMillis)
		assert.Equal(t, int64(2), d.Hours)
		assert.Equal(t, int64(30), d.Minutes)
		assert.InDelta(t, 2.5, d.FractionalHours, 1e-9)
		assert.Equal(t, "2h 30m", d.Format())
	})

	t.Run("Under an hour", func(t *testing.T) {
		d, err := CalculateDuration(span(45 * time.Minute))
		require.NoError(t, err)
		assert.Equal(t, int64(0), d.Hours)
		assert.Equal(t, "45 min", d.Format())
	})

	t.Run("Exactly on the hour", func(t *testing.T) {
		d, err := CalculateDuration(span(3 * time.Hour))
		require.NoError(t, err)
		assert.Equal(t, "3h", d.Format())
	})

	t.Run("Hours and minutes agree with total", func(t *testing.T) {
		for _, m := range []int{1, 59, 60, 61, 119, 600, 1441} {
			d, err := CalculateDuration(span(time.Duration(m) * time.Minute))
			require.NoError(t, err)
			assert.Equal(t, d.TotalMillis/60000, d.Hours*60+d.Minutes)
		}
	})

	t.Run("End equal to start", func(t *testing.T) {
		_, err := CalculateDuration(span(0))
		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("End before start", func(t *testing.T) {
		_, err := CalculateDuration(span(-time.Hour))
		assert.ErrorIs(t, err, ErrInvalidRange)
	})
}

func TestBillableHours(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want int64
	}{
		{time.Second, 1},
		{30 * time.Minute, 1},
		{time.Hour, 1},
		{61 * time.Minute, 2},
		{2 * time.Hour, 2},
		{2*time.Hour + time.Millisecond, 3},
		{0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.d.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, BillableHours(tt.d))
		})
	}
}

func TestCalculatePrice(t *testing.T) {
	rate := RateSheet{HourlyRate: Rupees(80)}

	t.Run("Ceiling policy: 61 minutes bills as 2 hours", func(t *testing.T) {
		price, err := CalculatePrice(span(61*time.Minute), rate)
		require.NoError(t, err)
		assert.Equal(t, Rupees(160), price)
	})

	t.Run("Minimum charge for anything up to an hour", func(t *testing.T) {
		for _, d := range []time.Duration{time.Millisecond, time.Minute, 20 * time.Minute, time.Hour} {
			price, err := CalculatePrice(span(d), rate)
			require.NoError(t, err)
			assert.Equal(t, rate.HourlyRate, price, "duration %s", d)
		}
	})

	t.Run("Monotonic in end time", func(t *testing.T) {
		prev := Money(0)
		for m := 1; m <= 24*60; m += 7 {
			price, err := CalculatePrice(span(time.Duration(m)*time.Minute), rate)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, int64(price), int64(prev), "minute %d", m)
			prev = price
		}
	})

	t.Run("Zero rate is allowed", func(t *testing.T) {
		price, err := CalculatePrice(span(3*time.Hour), RateSheet{})
		require.NoError(t, err)
		assert.Equal(t, Money(0), price)
	})

	t.Run("Negative rate", func(t *testing.T) {
		_, err := CalculatePrice(span(time.Hour), RateSheet{HourlyRate: -1})
		assert.ErrorIs(t, err, ErrInvalidRate)
	})

	t.Run("Invalid range propagates", func(t *testing.T) {
		_, err := CalculatePrice(span(-time.Minute), rate)
		assert.ErrorIs(t, err, ErrInvalidRange)
	})
}

func TestEstimate(t *testing.T) {
	rate := RateSheet{HourlyRate: Rupees(80)}

	sum := func(lines []BreakdownLine) Money {
		var s Money
		for _, l := range lines {
			s += l.Amount
		}
		return s
	}

	t.Run("Short span is one minimum-charge line", func(t *testing.T) {
		est, err := Estimate(span(20*time.Minute), rate)
		require.NoError(t, err)
		require.Len(t, est.Lines, 1)
		assert.Equal(t, "1 hour (minimum charge)", est.Lines[0].Description)
		assert.Equal(t, "₹80.00/hr", est.Lines[0].Rate)
		assert.Equal(t, Rupees(80), est.Price)
		assert.Equal(t, "20 min", est.FormattedDuration)
	})

	t.Run("Whole hours", func(t *testing.T) {
		est, err := Estimate(span(2*time.Hour), rate)
		require.NoError(t, err)
		require.Len(t, est.Lines, 1)
		assert.Equal(t, "2 hours", est.Lines[0].Description)
		assert.Equal(t, Rupees(160), est.Lines[0].Amount)
		assert.Equal(t, int64(2), est.BillableHours)
	})

	t.Run("Partial hour gets its own line", func(t *testing.T) {
		est, err := Estimate(span(2*time.Hour+30*time.Minute), rate)
		require.NoError(t, err)
		require.Len(t, est.Lines, 2)
		assert.Equal(t, "2 hours", est.Lines[0].Description)
		assert.Equal(t, "Partial hour (30 min, billed as 1 hour)", est.Lines[1].Description)
		assert.Equal(t, Rupees(240), est.Price)
		assert.Equal(t, "2h 30m", est.FormattedDuration)
	})

	t.Run("Lines always sum to price", func(t *testing.T) {
		for m := 1; m <= 10*60; m += 13 {
			s := span(time.Duration(m) * time.Minute)
			est, err := Estimate(s, rate)
			require.NoError(t, err)
			price, err := CalculatePrice(s, rate)
			require.NoError(t, err)
			assert.Equal(t, price, est.Price)
			assert.Equal(t, est.Price, sum(est.Lines), "minute %d", m)
		}
	})

	t.Run("Errors propagate", func(t *testing.T) {
		_, err := Estimate(span(0), rate)
		assert.ErrorIs(t, err, ErrInvalidRange)
		_, err = Estimate(span(time.Hour), RateSheet{HourlyRate: -100})
		assert.ErrorIs(t, err, ErrInvalidRate)
	})
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "₹160.00", Rupees(160).String())
	assert.Equal(t, "₹0.05", Money(5).String())
	assert.Equal(t, "-₹20.50", Money(-2050).String())
}

func TestMulDivRounding(t *testing.T) {
	assert.Equal(t, Money(33), mulDiv(100, 1, 3))
	assert.Equal(t, Money(67), mulDiv(200, 1, 3))
	assert.Equal(t, Money(5), mulDiv(9, 1, 2))
	assert.Equal(t, Money(-5), mulDiv(-9, 1, 2))
}
