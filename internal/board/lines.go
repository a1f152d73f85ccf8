//go:build linux

package board

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// LineBank maps buttons, switches and LEDs onto GPIO character device lines.
// Line i of each group is bit i of the corresponding register.
type LineBank struct {
	chip     *gpiocdev.Chip
	keys     *gpiocdev.Lines
	switches *gpiocdev.Lines
	leds     *gpiocdev.Lines

	keyVals []int
	swVals  []int
	ledVals []int
}

// NewLineBank requests the configured lines on cfg.Chip.
// Keys are active-low inputs with pull-up so a pressed button reads as 1.
func NewLineBank(cfg LineConfig) (*LineBank, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	chip, err := gpiocdev.NewChip(cfg.Chip, gpiocdev.WithConsumer(cfg.consumer()))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", cfg.Chip, err)
	}
	b := &LineBank{chip: chip}

	b.keys, err = chip.RequestLines(cfg.Keys, gpiocdev.AsInput, gpiocdev.AsActiveLow, gpiocdev.WithPullUp)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("request key lines %v: %w", cfg.Keys, err)
	}
	b.switches, err = chip.RequestLines(cfg.Switches, gpiocdev.AsInput)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("request switch lines %v: %w", cfg.Switches, err)
	}
	b.leds, err = chip.RequestLines(cfg.LEDs, gpiocdev.AsOutput())
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("request LED lines %v: %w", cfg.LEDs, err)
	}

	b.keyVals = make([]int, len(cfg.Keys))
	b.swVals = make([]int, len(cfg.Switches))
	b.ledVals = make([]int, len(cfg.LEDs))
	return b, nil
}

// ReadSwitches packs the switch line levels into a register.
func (b *LineBank) ReadSwitches() (Register, error) {
	if err := b.switches.Values(b.swVals); err != nil {
		return 0, fmt.Errorf("read switch lines: %w", err)
	}
	return pack(b.swVals), nil
}

// ReadButtons packs the key line levels into a register.
func (b *LineBank) ReadButtons() (Register, error) {
	if err := b.keys.Values(b.keyVals); err != nil {
		return 0, fmt.Errorf("read key lines: %w", err)
	}
	return pack(b.keyVals), nil
}

// WriteLEDs drives LED line i from bit i of v. Bits beyond the configured
// lines are ignored.
func (b *LineBank) WriteLEDs(v Register) error {
	unpack(v, b.ledVals)
	if err := b.leds.SetValues(b.ledVals); err != nil {
		return fmt.Errorf("write LED lines: %w", err)
	}
	return nil
}

// Close turns the LEDs off and releases all lines and the chip.
func (b *LineBank) Close() error {
	var errs []error

	if b.leds != nil {
		if err := b.leds.SetValues(make([]int, len(b.ledVals))); err != nil {
			errs = append(errs, fmt.Errorf("clear LED lines: %w", err))
		}
		if err := b.leds.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close LED lines: %w", err))
		}
		b.leds = nil
	}
	if b.switches != nil {
		if err := b.switches.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close switch lines: %w", err))
		}
		b.switches = nil
	}
	if b.keys != nil {
		if err := b.keys.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close key lines: %w", err))
		}
		b.keys = nil
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		b.chip = nil
	}

	return errors.Join(errs...)
}
