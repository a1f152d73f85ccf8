package board

import "errors"

// FakeBank is a test double that returns scripted register values and
// records LED writes.
type FakeBank struct {
	// Buttons contains scripted button register values.
	// Each call to ReadButtons consumes the next one.
	Buttons []Register

	// Switches contains scripted switch register values.
	// Each call to ReadSwitches consumes the next one.
	Switches []Register

	// LEDs records every value passed to WriteLEDs.
	LEDs []Register

	// ButtonReads and SwitchReads count successful reads.
	ButtonReads int
	SwitchReads int

	// ReadError, if set, is returned by ReadButtons and ReadSwitches.
	ReadError error

	// WriteError, if set, is returned by WriteLEDs.
	WriteError error

	// Closed tracks if Close was called.
	Closed bool

	buttonIndex int
	switchIndex int
}

// NewFakeBank creates a FakeBank with the given button and switch samples.
func NewFakeBank(buttons, switches []Register) *FakeBank {
	return &FakeBank{Buttons: buttons, Switches: switches}
}

// ReadButtons returns the next scripted button value.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeBank) ReadButtons() (Register, error) {
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	if len(f.Buttons) == 0 {
		return 0, errors.New("no button samples configured")
	}
	v := f.Buttons[f.buttonIndex]
	if f.buttonIndex < len(f.Buttons)-1 {
		f.buttonIndex++
	}
	f.ButtonReads++
	return v, nil
}

// ReadSwitches returns the next scripted switch value.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeBank) ReadSwitches() (Register, error) {
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	if len(f.Switches) == 0 {
		return 0, errors.New("no switch samples configured")
	}
	v := f.Switches[f.switchIndex]
	if f.switchIndex < len(f.Switches)-1 {
		f.switchIndex++
	}
	f.SwitchReads++
	return v, nil
}

// WriteLEDs records v.
func (f *FakeBank) WriteLEDs(v Register) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.LEDs = append(f.LEDs, v)
	return nil
}

// LastLEDs returns the most recent LED write, or 0 if none.
func (f *FakeBank) LastLEDs() Register {
	if len(f.LEDs) == 0 {
		return 0
	}
	return f.LEDs[len(f.LEDs)-1]
}

// Close marks the bank as closed.
func (f *FakeBank) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds the samples and clears recorded writes.
func (f *FakeBank) Reset() {
	f.buttonIndex = 0
	f.switchIndex = 0
	f.ButtonReads = 0
	f.SwitchReads = 0
	f.LEDs = nil
	f.Closed = false
}
