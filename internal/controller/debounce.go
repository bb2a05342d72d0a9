package controller

import (
	"sync"
	"time"
)

// DefaultDebounce is the idle interval before a pending write
// commits.
const DefaultDebounce = 500 * time.Millisecond

// Debouncer coalesces rapid keystrokes into one commit: each Set
// re-arms the timer with the latest commit, which fires at most once
// per idle interval. Immediate controls (increment/decrement buttons)
// call Flush to commit through the same path without waiting.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending func()
}

// NewDebouncer creates a Debouncer; a non-positive delay falls back
// to DefaultDebounce.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay}
}

// Set replaces the pending commit and re-arms the timer.
func (d *Debouncer) Set(commit func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = commit
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

// Flush commits the pending write immediately, if any.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	commit := d.pending
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	if commit != nil {
		commit()
	}
}

// Stop discards the pending write without committing.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	commit := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	if commit != nil {
		commit()
	}
}
