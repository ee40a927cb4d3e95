package tracker

import "time"

// Clock is the wall clock used for timestamps and elapsed time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
