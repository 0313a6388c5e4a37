package search

import (
	"sync"
	"time"
)

// Debouncer откладывает вызов до паузы во вводе. Каждый Trigger отменяет
// отложенный вызов и запускает таймер заново.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	fn    func(value string)
	timer *time.Timer
	gen   uint64
}

func NewDebouncer(delay time.Duration, fn func(value string)) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger планирует вызов fn(value) через delay.
func (d *Debouncer) Trigger(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		current := gen == d.gen
		d.mu.Unlock()
		if current {
			d.fn(value)
		}
	})
}

// Stop отменяет отложенный вызов.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}
