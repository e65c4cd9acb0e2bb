// Package debounce provides a cancellable single-pending-task trigger.
//
// Arming the trigger (re)starts a quiet-period timer; the task runs only
// once the timer expires without another arm. A continuous stream of arms
// postpones the task indefinitely (debounce, not throttle).
package debounce

import (
	"sync"
	"time"
)

// Trigger coalesces bursts of arm calls into a single task invocation.
type Trigger struct {
	mu      sync.Mutex
	quiet   time.Duration
	task    func()
	timer   *time.Timer
	stopped bool
}

// New creates a trigger that runs task after quiet elapses since the last Arm.
func New(quiet time.Duration, task func()) *Trigger {
	return &Trigger{quiet: quiet, task: task}
}

// Arm schedules the task after the quiet period, restarting the timer if one
// is already pending. Returns true when a pending run was coalesced.
func (t *Trigger) Arm() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return false
	}
	coalesced := false
	if t.timer != nil {
		t.timer.Stop()
		coalesced = true
	}
	t.timer = time.AfterFunc(t.quiet, func() {
		t.mu.Lock()
		t.timer = nil
		stopped := t.stopped
		t.mu.Unlock()
		if !stopped {
			t.task()
		}
	})
	return coalesced
}

// Disarm cancels a pending run without stopping the trigger.
func (t *Trigger) Disarm() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// Stop disarms and prevents any future runs.
func (t *Trigger) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// Pending reports whether a run is currently scheduled.
func (t *Trigger) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}
