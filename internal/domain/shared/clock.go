package shared

import "time"

// Clock abstracts time for components whose behavior depends on it,
// such as TTL caches. Production code uses SystemClock; tests inject
// a fixed or advancing clock.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock implementation of Clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now calls the underlying function.
func (f ClockFunc) Now() time.Time {
	return f()
}
