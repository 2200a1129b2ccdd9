package store

import "time"

// Clock supplies the current time to the timed stores. The default
// implementation uses time.Now; tests inject a fake to control expiry.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return realClock{} }
