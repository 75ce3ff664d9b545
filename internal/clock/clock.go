// Package clock runs periodic tasks scoped to a view's lifetime.
package clock

import (
	"context"
	"sync"
	"time"
)

// Start calls fn on every tick until ctx is done or the returned stop func is
// called. stop is idempotent and returns only once the loop has exited, so no
// tick is delivered after it returns.
func Start(ctx context.Context, interval time.Duration, fn func(time.Time)) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				fn(t)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}

// Display is a clock face updated by a ticker.
type Display struct {
	mu  sync.RWMutex
	now time.Time
}

// NewDisplay starts at t.
func NewDisplay(t time.Time) *Display {
	return &Display{now: t}
}

// Set updates the displayed time.
func (d *Display) Set(t time.Time) {
	d.mu.Lock()
	d.now = t
	d.mu.Unlock()
}

// Now returns the displayed time.
func (d *Display) Now() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.now
}

// Format renders the time as hh:mm:ss AM/PM.
func (d *Display) Format() string {
	return d.Now().Format("03:04:05 PM")
}
