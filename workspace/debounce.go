package workspace

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of calls per key into one call made after
// the key has been quiet for the delay. The last function triggered for a
// key wins.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	pending map[string]func()
	wg      sync.WaitGroup
	stopped bool
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		timers:  make(map[string]*time.Timer),
		pending: make(map[string]func()),
	}
}

// Trigger schedules fn for key, replacing anything pending for it. A
// non-positive delay runs fn immediately.
func (d *Debouncer) Trigger(key string, fn func()) {
	if d.delay <= 0 {
		fn()
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending[key] = fn
	if t, ok := d.timers[key]; ok && t.Stop() {
		t.Reset(d.delay)
		return
	}
	d.wg.Add(1)
	d.timers[key] = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.fire(key)
	})
}

func (d *Debouncer) fire(key string) {
	d.mu.Lock()
	fn := d.pending[key]
	delete(d.pending, key)
	delete(d.timers, key)
	d.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Flush runs the pending call for key now, if any.
func (d *Debouncer) Flush(key string) {
	d.mu.Lock()
	fn := d.pending[key]
	delete(d.pending, key)
	if t, ok := d.timers[key]; ok && t.Stop() {
		delete(d.timers, key)
		d.wg.Done()
	}
	d.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Cancel drops the pending call for key.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.pending, key)
	if t, ok := d.timers[key]; ok && t.Stop() {
		delete(d.timers, key)
		d.wg.Done()
	}
}

// Pending returns the number of keys waiting to fire.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Stop cancels every pending call and waits for running ones to return.
// Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	for key, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, key)
	}
	clear(d.pending)
	d.mu.Unlock()
	d.wg.Wait()
}
