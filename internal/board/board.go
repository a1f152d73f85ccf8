// Package board provides access to the DE1-SoC push buttons, slide switches
// and red LEDs as 32-bit registers.
// The memory-mapped implementation talks to the FPGA through /dev/mem.
// The line implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package board

// Register is a 32-bit device register value. Bit i corresponds to
// button, switch or LED i.
type Register uint32

// Bank reads and writes the board's I/O registers.
type Bank interface {
	// ReadSwitches returns the slide switch register.
	ReadSwitches() (Register, error)

	// ReadButtons returns the push button register. A set bit means pressed.
	ReadButtons() (Register, error)

	// WriteLEDs drives the LED register.
	WriteLEDs(v Register) error

	// Close releases the underlying device.
	Close() error
}

// DE1-SoC lightweight HPS-to-FPGA bridge memory map.
const (
	LWBridgeBase = 0xFF200000
	LWBridgeSpan = 0x00005000

	LEDROffset = 0x00000000 // red LEDs
	SWOffset   = 0x00000040 // slide switches
	KEYOffset  = 0x00000050 // push buttons
)

// Peripheral counts on the DE1-SoC.
const (
	LEDCount    = 10
	SwitchCount = 10
	KeyCount    = 4
)
