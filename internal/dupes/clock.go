package dupes

import "time"

// TimeProvider provides the current time for run timing.
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider implements TimeProvider using time.Now.
type RealTimeProvider struct{}

// Now returns the current time.
func (RealTimeProvider) Now() time.Time {
	return time.Now()
}

// FixedTimeProvider returns the same instant, advanced by Step on every call.
type FixedTimeProvider struct {
	At   time.Time
	Step time.Duration
}

// Now returns At and then moves it forward by Step.
func (f *FixedTimeProvider) Now() time.Time {
	now := f.At
	f.At = f.At.Add(f.Step)

	return now
}
