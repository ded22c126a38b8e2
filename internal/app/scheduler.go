package app

import (
	"sync"
	"time"
)

// Scheduler drives the per-question countdown. The engine owns it and calls
// Start/Stop explicitly on state transitions, so a session leaving
// in-progress can never be ticked by a leftover timer.
type Scheduler interface {
	// Start begins delivering ticks at the given interval. A second Start
	// replaces the previous schedule.
	Start(interval time.Duration, tick func())
	// Stop cancels tick delivery. Safe to call repeatedly.
	Stop()
}

// SchedulerFactory builds one scheduler per quiz session.
type SchedulerFactory func() Scheduler

// TickerScheduler is the production Scheduler backed by a time.Ticker.
type TickerScheduler struct {
	mu   sync.Mutex
	stop chan struct{}
}

func NewTickerScheduler() *TickerScheduler {
	return &TickerScheduler{}
}

func (s *TickerScheduler) Start(interval time.Duration, tick func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()

	stop := make(chan struct{})
	s.stop = stop
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				tick()
			case <-stop:
				return
			}
		}
	}()
}

func (s *TickerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *TickerScheduler) stopLocked() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}
