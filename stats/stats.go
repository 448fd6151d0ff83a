// Package stats provides atomic counters surfaced by the diagnostics
// pretty-printer (vm.Print).
package stats

import "sync/atomic"

// Counter is a named, atomically-updated count. The zero value is ready
// to use.
type Counter struct {
	name string
	n    int64
}

// NewCounter returns a Counter with the given diagnostic name.
func NewCounter(name string) *Counter {
	return &Counter{name: name}
}

// Inc increments the counter by one.
func (c *Counter) Inc() {
	atomic.AddInt64(&c.n, 1)
}

// Add increments the counter by delta.
func (c *Counter) Add(delta int64) {
	atomic.AddInt64(&c.n, delta)
}

// Load returns the current value.
func (c *Counter) Load() int64 {
	return atomic.LoadInt64(&c.n)
}

// Name returns the counter's diagnostic label.
func (c *Counter) Name() string {
	return c.name
}
