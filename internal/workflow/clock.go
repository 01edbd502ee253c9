package workflow

import "time"

// Clock supplies "now" for all time-window checks. Injected so tests can pin
// time.
type Clock interface {
	Now() time.Time
}

// SystemClock returns a Clock backed by time.Now in UTC.
func SystemClock() Clock { return systemClock{} }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock returns a Clock that always reports t. Test helper.
func FixedClock(t time.Time) Clock { return fixedClock{t} }

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }
