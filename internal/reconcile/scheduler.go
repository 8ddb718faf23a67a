package reconcile

import (
	"sync"
	"time"
)

const DefaultDebounce = 100 * time.Millisecond

// Scheduler coalesces reconciliation triggers. Every Trigger restarts a quiet
// timer; when it elapses the fire callback runs once with the OR of the full
// flags seen since the last fire. A trigger that lands while a pass is running
// (between Begin and End) is held back and arms exactly one follow-up when
// the pass ends.
type Scheduler struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	seq     uint64
	full    bool
	running bool
	pending bool
	fire    func(full bool)
}

func NewScheduler(delay time.Duration, fire func(full bool)) *Scheduler {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if fire == nil {
		fire = func(bool) {}
	}
	return &Scheduler{delay: delay, fire: fire}
}

func (s *Scheduler) Trigger(full bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.full = s.full || full
	if s.running {
		s.pending = true
		return
	}
	s.armLocked()
}

func (s *Scheduler) armLocked() {
	s.seq++
	seq := s.seq
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() {
		full, ok := func() (bool, bool) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if seq != s.seq {
				return false, false
			}
			s.timer = nil
			if s.running {
				s.pending = true
				return false, false
			}
			full := s.full
			s.full = false
			return full, true
		}()
		if !ok {
			return
		}
		s.fire(full)
	})
}

// Begin marks a pass as running. It returns false when one already is.
func (s *Scheduler) Begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

// End marks the running pass as finished and arms the deferred follow-up,
// if any.
func (s *Scheduler) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	if s.pending {
		s.pending = false
		s.armLocked()
	}
}

// Run executes pass between Begin and End. It reports false without calling
// pass when another pass is in progress.
func (s *Scheduler) Run(pass func()) bool {
	if !s.Begin() {
		return false
	}
	defer s.End()
	pass()
	return true
}

// Cancel drops any pending or deferred trigger.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.pending = false
	s.full = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Pending reports whether a fire is scheduled or deferred.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil || s.pending
}

func (s *Scheduler) Delay() time.Duration {
	return s.delay
}
