package core

import "time"

// clockEpoch anchors the millisecond counter. Monotonic because
// time.Since uses the monotonic clock reading.
var clockEpoch = time.Now()

// NowMS returns milliseconds since process start as a uint32, wrapping at
// 2^32 (about 49.7 days). Interval arithmetic across the wrap must use
// ElapsedMS, not a signed subtraction.
func NowMS() uint32 {
	return uint32(time.Since(clockEpoch) / time.Millisecond)
}

// ElapsedMS returns the interval from one NowMS reading to a later one.
// Unsigned-difference arithmetic keeps the result correct when the counter
// wrapped between the two readings.
func ElapsedMS(from, to uint32) uint32 {
	return to - from
}
