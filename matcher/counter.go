package matcher

import "sync/atomic"

// ProgressCounter counts evaluated comparisons. It is safe for concurrent use
// and only ever read for progress display.
type ProgressCounter struct {
	val atomic.Int64
}

// NewProgressCounter creates a counter starting at zero
func NewProgressCounter() *ProgressCounter {
	return &ProgressCounter{}
}

// Increment adds by to the counter
func (c *ProgressCounter) Increment(by int64) {
	c.val.Add(by)
}

// Value returns the current count
func (c *ProgressCounter) Value() int64 {
	return c.val.Load()
}

// Reset sets the counter back to zero
func (c *ProgressCounter) Reset() {
	c.val.Store(0)
}
