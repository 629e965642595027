package pricing

import (
	"fmt"
	"time"
)

// TimeSpan is a rental window. End must be strictly after Start.
type TimeSpan struct {
	Start time.Time
	End   time.Time
}

// Validate rejects empty and inverted spans.
func (s TimeSpan) Validate() error {
	if !s.End.After(s.Start) {
		return fmt.Errorf("%w: start %s, end %s", ErrInvalidRange, s.Start.Format(time.RFC3339), s.End.Format(time.RFC3339))
	}
	return nil
}

// Length returns End - Start.
func (s TimeSpan) Length() time.Duration {
	return s.End.Sub(s.Start)
}

// Duration is the structured length of a TimeSpan.
type Duration struct {
	TotalMillis     int64
	Hours           int64
	Minutes         int64
	FractionalHours float64
}

// CalculateDuration converts a span into whole hours, leftover minutes and
// unrounded fractional hours.
func CalculateDuration(span TimeSpan) (Duration, error) {
	if err := span.Validate(); err != nil {
		return Duration{}, err
	}
	const (
		msPerHour   = int64(time.Hour / time.Millisecond)
		msPerMinute = int64(time.Minute / time.Millisecond)
	)
	total := span.Length().Milliseconds()
	return Duration{
		TotalMillis:     total,
		Hours:           total / msPerHour,
		Minutes:         (total % msPerHour) / msPerMinute,
		FractionalHours: float64(total) / float64(msPerHour),
	}, nil
}

// Format renders the duration for display: "2h 30m", "2h" or "45 min".
func (d Duration) Format() string {
	switch {
	case d.Hours == 0:
		return fmt.Sprintf("%d min", d.Minutes)
	case d.Minutes == 0:
		return fmt.Sprintf("%dh", d.Hours)
	default:
		return fmt.Sprintf("%dh %dm", d.Hours, d.Minutes)
	}
}

// BillableHours applies the billing policy: whole hours rounded up, never
// fewer than one. Every money calculation in the engine goes through here.
func BillableHours(d time.Duration) int64 {
	h := ceilHours(d)
	if h < 1 {
		return 1
	}
	return h
}

func ceilHours(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	h := int64(d / time.Hour)
	if d%time.Hour != 0 {
		h++
	}
	return h
}
