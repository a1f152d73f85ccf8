//go:build !linux

package board

import (
	"errors"
	"fmt"
)

// errNoLineDevice is returned by every LineBank operation off Linux, where
// there is no GPIO character device to request key, switch and LED lines from.
var errNoLineDevice = errors.New("board: key/switch/LED lines need the Linux GPIO character device; use -backend=mem or -backend=sim")

// LineBank stands in for the GPIO line backend on platforms without
// /dev/gpiochip*. It can never be opened.
type LineBank struct{}

// NewLineBank checks cfg so flag mistakes are still reported, then fails
// with errNoLineDevice.
func NewLineBank(cfg LineConfig) (*LineBank, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w (chip %s)", errNoLineDevice, cfg.Chip)
}

func (b *LineBank) ReadSwitches() (Register, error) { return 0, errNoLineDevice }
func (b *LineBank) ReadButtons() (Register, error)  { return 0, errNoLineDevice }
func (b *LineBank) WriteLEDs(Register) error        { return errNoLineDevice }

// Close has no lines to release.
func (b *LineBank) Close() error { return nil }
