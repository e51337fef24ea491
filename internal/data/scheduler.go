package data

import (
	"sync"
	"time"

	"github.com/bradyshelf/solofoodies-chat-prototype/internal/biz/repo"
)

// timerScheduler implements repo.Scheduler over time.AfterFunc.
// Each session gets its own instance so StopAll at teardown only touches
// that session's timers.
type timerScheduler struct {
	mu      sync.Mutex
	nextID  int64
	timers  map[int64]*time.Timer
	stopped bool
}

// NewScheduler creates a wall-clock scheduler
func NewScheduler() repo.Scheduler {
	return &timerScheduler{timers: make(map[int64]*time.Timer)}
}

// Schedule runs fn after d unless cancelled first
func (s *timerScheduler) Schedule(d time.Duration, fn func()) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return 0
	}

	s.nextID++
	id := s.nextID
	s.timers[id] = time.AfterFunc(d, func() {
		// Re-check under the lock: the timer may have raced StopAll
		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			return
		}
		delete(s.timers, id)
		s.mu.Unlock()

		fn()
	})
	return id
}

// Cancel stops a single timer
func (s *timerScheduler) Cancel(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

// StopAll cancels every outstanding timer and rejects new ones
func (s *timerScheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}
