// Package counter provides an integer counter over [0, max] that wraps
// around at both ends.
package counter

import "math"

// Count is the counter's value type.
type Count = uint64

// Counter is a value in [0, max]. Every mutation leaves it in range.
type Counter struct {
	value Count
	max   Count
}

// New returns a counter at 0 that wraps after max.
func New(max Count) *Counter {
	return &Counter{max: max}
}

// NewAt returns a counter that wraps after max, starting at initial
// reduced modulo max+1.
func NewAt(max, initial Count) *Counter {
	c := New(max)
	c.Set(initial)
	return c
}

// ForBits returns the largest value representable in n bits.
// n is clamped to [0, 64].
func ForBits(n int) Count {
	switch {
	case n <= 0:
		return 0
	case n >= 64:
		return math.MaxUint64
	}
	return 1<<uint(n) - 1
}

// Value returns the current count.
func (c *Counter) Value() Count { return c.value }

// Max returns the largest value the counter holds before wrapping.
func (c *Counter) Max() Count { return c.max }

// Increment advances the counter, wrapping from max to 0.
func (c *Counter) Increment() Count {
	if c.value == c.max {
		c.value = 0
	} else {
		c.value++
	}
	return c.value
}

// Decrement steps the counter back, wrapping from 0 to max.
func (c *Counter) Decrement() Count {
	if c.value == 0 {
		c.value = c.max
	} else {
		c.value--
	}
	return c.value
}

// Apply replaces the value with f(value) modulo max+1.
func (c *Counter) Apply(f func(Count) Count) Count {
	c.value = c.wrap(f(c.value))
	return c.value
}

// Set replaces the value with v modulo max+1.
func (c *Counter) Set(v Count) Count {
	return c.Apply(func(Count) Count { return v })
}

func (c *Counter) wrap(v Count) Count {
	// max+1 overflows to 0 when every Count is in range.
	if c.max == math.MaxUint64 {
		return v
	}
	return v % (c.max + 1)
}
