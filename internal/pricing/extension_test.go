package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func terms(hours int, total Money) BookingTerms {
	return BookingTerms{
		StartTime:  base,
		EndTime:    base.Add(time.Duration(hours) * time.Hour),
		TotalPrice: total,
	}
}

func TestPriceExtension(t *testing.T) {
	t.Run("Scenario B: 45 minutes on a 2 hour ₹160 booking", func(t *testing.T) {
		bk := terms(2, Rupees(160))
		ext, err := PriceExtension(bk, bk.EndTime.Add(45*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, int64(1), ext.AdditionalHours)
		assert.Equal(t, Rupees(80), ext.HourlyRate)
		assert.Equal(t, Rupees(80), ext.AdditionalCost)
		assert.Equal(t, Rupees(240), ext.NewTotalPrice)
		assert.Equal(t, int64(3), ext.NewBilledHours)
	})

	t.Run("Only the increment is rounded up", func(t *testing.T) {
		bk := terms(2, Rupees(160))
		ext, err := PriceExtension(bk, bk.EndTime.Add(61*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, int64(2), ext.AdditionalHours)
		assert.Equal(t, Rupees(160), ext.AdditionalCost)
	})

	t.Run("Rate comes from the booking, not a new listing price", func(t *testing.T) {
		// booked at ₹50/hr for 4 hours
		bk := terms(4, Rupees(200))
		ext, err := PriceExtension(bk, bk.EndTime.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, Rupees(50), ext.AdditionalCost)
	})

	t.Run("Billed hours survive a second extension", func(t *testing.T) {
		// 90 min booking billed as 2 hours at ₹80
		bk := BookingTerms{StartTime: base, EndTime: base.Add(90 * time.Minute), TotalPrice: Rupees(160)}
		first, err := PriceExtension(bk, bk.EndTime.Add(15*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, Rupees(240), first.NewTotalPrice)

		bk.EndTime = bk.EndTime.Add(15 * time.Minute)
		bk.TotalPrice = first.NewTotalPrice
		bk.BilledHours = first.NewBilledHours

		second, err := PriceExtension(bk, bk.EndTime.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, Rupees(80), second.HourlyRate)
		assert.Equal(t, Rupees(320), second.NewTotalPrice)
	})

	t.Run("New end not after current end", func(t *testing.T) {
		bk := terms(2, Rupees(160))
		_, err := PriceExtension(bk, bk.EndTime)
		assert.ErrorIs(t, err, ErrInvalidExtension)
		_, err = PriceExtension(bk, bk.EndTime.Add(-time.Minute))
		assert.ErrorIs(t, err, ErrInvalidExtension)
	})

	t.Run("Broken booking terms", func(t *testing.T) {
		bk := BookingTerms{StartTime: base, EndTime: base, TotalPrice: Rupees(80)}
		_, err := PriceExtension(bk, base.Add(time.Hour))
		assert.ErrorIs(t, err, ErrInvalidRange)
	})
}
