// Package goid derives a stable identity for the calling goroutine.
//
// The mutex contract requires that only the acquiring context may release,
// checked by the layer itself rather than delegated to the host runtime.
// Go does not expose goroutine identity, so the owner token is parsed from
// the first line of the runtime stack header ("goroutine N [running]:").
// The parse costs one small stack dump per Take/Give, which is acceptable
// on a lock acquisition path.
package goid

import "runtime"

// Current returns the numeric ID of the calling goroutine.
func Current() uint64 {
	b := make([]byte, 64)
	b = b[:runtime.Stack(b, false)]
	var id uint64
	for i := len("goroutine "); i < len(b); i++ {
		if b[i] >= '0' && b[i] <= '9' {
			id = id*10 + uint64(b[i]-'0')
		} else {
			break
		}
	}
	return id
}
