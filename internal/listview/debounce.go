package listview

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period before a typed query is applied.
const DefaultDelay = 200 * time.Millisecond

// Debouncer keeps a live value, updated on every Set, and an applied value
// that follows it once Set has not been called for the configured delay.
type Debouncer[V any] struct {
	mu      sync.Mutex
	delay   time.Duration
	live    V
	applied V
	timer   *time.Timer
	seq     uint64
	onApply func(V)
}

// NewDebouncer returns a debouncer starting at initial. onApply, if non-nil,
// runs after every application, outside the debouncer's lock.
func NewDebouncer[V any](delay time.Duration, initial V, onApply func(V)) *Debouncer[V] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer[V]{delay: delay, live: initial, applied: initial, onApply: onApply}
}

// Set updates the live value and restarts the quiet period.
func (d *Debouncer[V]) Set(v V) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.live = v
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(seq) })
}

func (d *Debouncer[V]) fire(seq uint64) {
	d.mu.Lock()
	if seq != d.seq {
		// superseded by a later Set, Flush or Stop
		d.mu.Unlock()
		return
	}
	v := d.apply()
	d.mu.Unlock()
	if d.onApply != nil {
		d.onApply(v)
	}
}

// apply must be called with mu held.
func (d *Debouncer[V]) apply() V {
	d.applied = d.live
	d.timer = nil
	return d.applied
}

func (d *Debouncer[V]) Live() V {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.live
}

func (d *Debouncer[V]) Applied() V {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.applied
}

// Pending reports whether a Set is waiting out its quiet period.
func (d *Debouncer[V]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Flush applies the live value now and cancels the pending timer.
func (d *Debouncer[V]) Flush() {
	d.mu.Lock()
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
	}
	v := d.apply()
	d.mu.Unlock()
	if d.onApply != nil {
		d.onApply(v)
	}
}

// Stop cancels a pending application; the live value is kept.
func (d *Debouncer[V]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
