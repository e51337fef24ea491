package repo

import "time"

// Scheduler runs delayed callbacks on behalf of a session.
// Every scheduled callback is cancellable, and StopAll must prevent any
// not-yet-started callback from running, so a torn-down session is never
// mutated by a late timer.
type Scheduler interface {
	// Schedule runs fn after d. Returns a handle for Cancel.
	Schedule(d time.Duration, fn func()) int64

	// Cancel stops a single scheduled callback if it has not fired yet
	Cancel(id int64)

	// StopAll cancels every outstanding callback and rejects new ones
	StopAll()
}
