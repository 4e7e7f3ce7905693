package canonical

import "time"

// Meta is the request-scoped metadata supplied by the Runtime API for one
// invocation. The deadline is informational; nothing here enforces it.
type Meta struct {
	RequestID   string
	FunctionARN string
	Deadline    time.Time
	TraceID     string
}

// RemainingTime is the time left before the deadline at now, never negative.
// A zero deadline yields zero.
func (m Meta) RemainingTime(now time.Time) time.Duration {
	if m.Deadline.IsZero() {
		return 0
	}
	if d := m.Deadline.Sub(now); d > 0 {
		return d
	}
	return 0
}

// RemainingMillis is RemainingTime in whole milliseconds from time.Now.
func (m Meta) RemainingMillis() int64 {
	return m.RemainingTime(time.Now()).Milliseconds()
}
