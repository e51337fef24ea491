package data

import (
	"testing"
	"time"
)

func TestScheduler_ScheduleFires(t *testing.T) {
	sched := NewScheduler()
	defer sched.StopAll()

	fired := make(chan struct{})
	id := sched.Schedule(5*time.Millisecond, func() { close(fired) })
	if id == 0 {
		t.Fatal("Expected a non-zero timer handle")
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected the callback to fire")
	}
}

func TestScheduler_Cancel(t *testing.T) {
	sched := NewScheduler()
	defer sched.StopAll()

	fired := make(chan struct{})
	id := sched.Schedule(20*time.Millisecond, func() { close(fired) })
	sched.Cancel(id)

	select {
	case <-fired:
		t.Fatal("Expected the cancelled callback not to fire")
	case <-time.After(100 * time.Millisecond):
	}

	// Cancelling an unknown or already-cancelled handle is a no-op
	sched.Cancel(id)
	sched.Cancel(999)
}

func TestScheduler_StopAll(t *testing.T) {
	sched := NewScheduler()

	fired := make(chan struct{}, 2)
	sched.Schedule(20*time.Millisecond, func() { fired <- struct{}{} })
	sched.Schedule(30*time.Millisecond, func() { fired <- struct{}{} })
	sched.StopAll()

	// Nothing outstanding may run, and new work is rejected
	if id := sched.Schedule(time.Millisecond, func() { fired <- struct{}{} }); id != 0 {
		t.Error("Expected Schedule to reject work after StopAll")
	}

	select {
	case <-fired:
		t.Fatal("Expected no callback after StopAll")
	case <-time.After(100 * time.Millisecond):
	}
}
