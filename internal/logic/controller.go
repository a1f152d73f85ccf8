package logic

import (
	"fmt"

	"github.com/de1soc/pushbutton-demo/internal/counter"
)

// Controller reacts to push-button transitions by mutating a wrapped
// counter. It acts only when the decoded button state changes, and after a
// chord it waits for every button to be released before acting again.
type Controller struct {
	counter  *counter.Counter
	previous Button
	counts   EventCounts
}

// NewController creates a controller driving c. The previous button state
// starts as ButtonNone.
func NewController(c *counter.Counter) *Controller {
	return &Controller{
		counter:  c,
		previous: ButtonNone,
	}
}

// Step processes one poll of the button register.
//
// readSwitches is only called when a chord is dispatched. If it fails the
// step is abandoned without changing any state, so the chord is retried on
// the next poll.
func (c *Controller) Step(buttons uint32, readSwitches func() (uint32, error)) (Result, error) {
	current := Decode(buttons)

	waitForRelease := c.previous == ButtonMultiple && current != ButtonNone
	noChange := current == c.previous
	if waitForRelease || noChange {
		c.counts.Skipped++
		return Result{Button: current, Skipped: true}, nil
	}

	res := Result{Button: current}
	switch current {
	case ButtonNone:
		c.counts.Release++
	case Button0:
		c.counter.Increment()
		c.counts.Increment++
	case Button1:
		c.counter.Decrement()
		c.counts.Decrement++
	case Button2:
		c.counter.Apply(func(v counter.Count) counter.Count { return v >> 1 })
		c.counts.ShiftRight++
	case Button3:
		c.counter.Apply(func(v counter.Count) counter.Count { return v << 1 })
		c.counts.ShiftLeft++
	case ButtonMultiple:
		sw, err := readSwitches()
		if err != nil {
			return Result{Button: current, Skipped: true}, fmt.Errorf("read switches: %w", err)
		}
		c.counter.Set(counter.Count(sw))
		c.counts.Chord++
		res.Switches = sw
		res.Exit = sw == SwitchExitSentinel
	}

	res.LEDs = uint32(c.counter.Value())
	c.previous = current
	return res, nil
}

// Previous returns the button state of the last dispatched step.
func (c *Controller) Previous() Button {
	return c.previous
}

// Counter returns the counter driven by the controller.
func (c *Controller) Counter() *counter.Counter {
	return c.counter
}

// Counts returns a copy of the dispatch counters.
func (c *Controller) Counts() EventCounts {
	return c.counts
}
