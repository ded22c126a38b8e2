package app

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTickerSchedulerDeliversTicks(t *testing.T) {
	sched := NewTickerScheduler()
	var ticks atomic.Int64
	sched.Start(5*time.Millisecond, func() { ticks.Add(1) })

	deadline := time.Now().Add(2 * time.Second)
	for ticks.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if ticks.Load() < 3 {
		t.Fatalf("expected at least 3 ticks, got %d", ticks.Load())
	}

	sched.Stop()
	time.Sleep(20 * time.Millisecond) // let an in-flight tick land
	settled := ticks.Load()
	time.Sleep(50 * time.Millisecond)
	if got := ticks.Load(); got != settled {
		t.Fatalf("ticks continued after stop: %d -> %d", settled, got)
	}

	// Stop is idempotent.
	sched.Stop()
}

func TestTickerSchedulerRestartReplacesSchedule(t *testing.T) {
	sched := NewTickerScheduler()
	var first, second atomic.Int64
	sched.Start(5*time.Millisecond, func() { first.Add(1) })
	sched.Start(5*time.Millisecond, func() { second.Add(1) })
	defer sched.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for second.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if second.Load() < 2 {
		t.Fatalf("replacement schedule never ticked")
	}

	time.Sleep(20 * time.Millisecond)
	settled := first.Load()
	time.Sleep(50 * time.Millisecond)
	if got := first.Load(); got != settled {
		t.Fatalf("first schedule still ticking after replacement: %d -> %d", settled, got)
	}
}
