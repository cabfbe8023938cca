package calls

import "sync/atomic"

// Counter tallies outbound API calls for a run. Clients increment it; the job
// runner snapshots it into the audit log. Safe for concurrent use; nil-safe.
type Counter struct {
	n atomic.Int64
}

func NewCounter() *Counter {
	return &Counter{}
}

func (c *Counter) Inc() {
	c.Add(1)
}

func (c *Counter) Add(n int64) {
	if c == nil || n == 0 {
		return
	}
	c.n.Add(n)
}

func (c *Counter) Total() int64 {
	if c == nil {
		return 0
	}
	return c.n.Load()
}

func (c *Counter) Reset() {
	if c == nil {
		return
	}
	c.n.Store(0)
}
