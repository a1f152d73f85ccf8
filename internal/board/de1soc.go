package board

import (
	"fmt"

	"github.com/de1soc/pushbutton-demo/internal/mmio"
)

// DE1SoC is the register bank behind the lightweight bridge.
// Once constructed its reads and writes cannot fail.
type DE1SoC struct {
	mem  *mmio.Mapping
	leds mmio.Reg32
	sw   mmio.Reg32
	key  mmio.Reg32
}

// NewDE1SoC returns a bank over an existing mapping of the lightweight
// bridge. The caller keeps ownership of m.
func NewDE1SoC(m *mmio.Mapping) (*DE1SoC, error) {
	leds, err := m.Register32(LEDROffset)
	if err != nil {
		return nil, fmt.Errorf("LEDR register: %w", err)
	}
	sw, err := m.Register32(SWOffset)
	if err != nil {
		return nil, fmt.Errorf("SW register: %w", err)
	}
	key, err := m.Register32(KEYOffset)
	if err != nil {
		return nil, fmt.Errorf("KEY register: %w", err)
	}
	return &DE1SoC{mem: m, leds: leds, sw: sw, key: key}, nil
}

// ReadSwitches returns the slide switch register.
func (d *DE1SoC) ReadSwitches() (Register, error) {
	return Register(d.sw.Load()), nil
}

// ReadButtons returns the push button register.
func (d *DE1SoC) ReadButtons() (Register, error) {
	return Register(d.key.Load()), nil
}

// WriteLEDs drives the red LEDs.
func (d *DE1SoC) WriteLEDs(v Register) error {
	d.leds.Store(uint32(v))
	return nil
}

// LEDs returns the value last written to the LED register.
func (d *DE1SoC) LEDs() Register {
	return Register(d.leds.Load())
}

// ReadRegister reads the 32-bit word at offset within the bridge window.
func (d *DE1SoC) ReadRegister(offset uintptr) (Register, error) {
	r, err := d.mem.Register32(offset)
	if err != nil {
		return 0, err
	}
	return Register(r.Load()), nil
}

// Close is a no-op. The mapping belongs to whoever opened it.
func (d *DE1SoC) Close() error {
	return nil
}
