package inbox

import "time"

// Timer is a cancellable scheduled call.
type Timer interface {
	// Stop prevents the call from running. It reports whether it did so;
	// stopping twice is harmless.
	Stop() bool
}

// Scheduler runs fn once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// RealScheduler is backed by time.AfterFunc.
type RealScheduler struct{}

// AfterFunc implements Scheduler.
func (RealScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
