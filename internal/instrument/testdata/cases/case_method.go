package method

import a "example.com/ann"

var _ a.Marker

type Counter struct {
	n int
}

// Reset drops the counter.
//
// @a.Debug
func (c *Counter) Reset(int, string) {
	c.n = 0
}

// @a.Debug
func (c *Counter) Add(delta int) {
	if delta == 0 {
		return
	}
	c.n += delta
}

// @a.Other
func (c *Counter) Value() int {
	return c.n
}
