// Package autosave debounces draft saves: each new draft for a key replaces
// the pending one and restarts the delay, and only the last draft is saved
// once the key has been quiet for the whole delay.
package autosave

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period before a draft is saved.
const DefaultDelay = 3000 * time.Millisecond

// Debouncer runs at most one pending save per key.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*entry
	seq     uint64
	wg      sync.WaitGroup
	stopped bool
}

type entry struct {
	timer *time.Timer
	gen   uint64
}

func New(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay, pending: map[string]*entry{}}
}

// Schedule replaces any pending save of key with fn. It reports false after
// Stop.
func (d *Debouncer) Schedule(key string, fn func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return false
	}
	if e, ok := d.pending[key]; ok {
		if e.timer.Stop() {
			d.wg.Done()
		}
	}
	d.seq++
	gen := d.seq
	e := &entry{gen: gen}
	d.wg.Add(1)
	e.timer = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.mu.Lock()
		cur, ok := d.pending[key]
		if !ok || cur.gen != gen {
			d.mu.Unlock()
			return
		}
		delete(d.pending, key)
		d.mu.Unlock()
		fn()
	})
	d.pending[key] = e
	return true
}

// Cancel drops the pending save of key, as when an editor is closed. It
// reports whether a save was pending.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.pending[key]
	if !ok {
		return false
	}
	delete(d.pending, key)
	if e.timer.Stop() {
		d.wg.Done()
	}
	return true
}

// Pending reports whether a save of key is waiting.
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}

// Stop cancels every pending save and waits for saves already running.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	for key, e := range d.pending {
		if e.timer.Stop() {
			d.wg.Done()
		}
		delete(d.pending, key)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
