package extraction

import "time"

// Clock supplies the current instant. The orchestrator reads it exactly
// once per extraction and threads the value through both passes, so a
// call straddling midnight cannot produce inconsistent day judgments.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

// FixedClock returns a Clock pinned to t. Intended for tests.
func FixedClock(t time.Time) Clock { return fixedClock(t) }

type fixedClock time.Time

func (f fixedClock) Now() time.Time { return time.Time(f) }
