// Package logic contains the pure push-button state machine.
// This package has NO hardware dependencies (no mmio, GPIO, OS, or time.Sleep).
// Register values are passed in and LED values are returned.
package logic

// Button is the logical state of the push buttons during one poll.
type Button string

const (
	ButtonNone     Button = "NONE"
	Button0        Button = "KEY0"
	Button1        Button = "KEY1"
	Button2        Button = "KEY2"
	Button3        Button = "KEY3"
	ButtonMultiple Button = "MULTIPLE"
)

// SwitchExitSentinel is the switch state that, read during a multi-button
// chord, ends the loop.
const SwitchExitSentinel uint32 = 0

// Result describes what one Step decided.
type Result struct {
	// Button is the decoded state of this poll.
	Button Button
	// Skipped is true when the debounce gate suppressed dispatch.
	// No LED write should follow a skipped step.
	Skipped bool
	// LEDs is the counter value to write to the LED register.
	LEDs uint32
	// Switches is the switch register read during a chord.
	Switches uint32
	// Exit is true when the loop should stop after writing LEDs.
	Exit bool
}

// EventCounts tracks the number of dispatched actions since startup.
type EventCounts struct {
	Increment  int
	Decrement  int
	ShiftRight int
	ShiftLeft  int
	Chord      int
	Release    int
	Skipped    int
}
