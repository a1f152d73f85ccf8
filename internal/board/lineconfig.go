package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// registerBits is the number of lines that fit in one Register.
const registerBits = 32

// DefaultChip is the gpiochip used when none is configured.
const DefaultChip = "gpiochip0"

// LineConfig selects the GPIO lines backing each register.
type LineConfig struct {
	Chip     string
	Keys     []int // exactly KeyCount lines
	Switches []int
	LEDs     []int
	Consumer string // label shown by gpioinfo; defaults to "pushbutton-demo"
}

// Validate checks the line counts and that no line is used twice.
func (c LineConfig) Validate() error {
	if c.Chip == "" {
		return errors.New("board: gpio chip not set")
	}
	if len(c.Keys) != KeyCount {
		return fmt.Errorf("board: need %d key lines, got %d", KeyCount, len(c.Keys))
	}
	if len(c.Switches) == 0 || len(c.Switches) > registerBits {
		return fmt.Errorf("board: need 1-%d switch lines, got %d", registerBits, len(c.Switches))
	}
	if len(c.LEDs) == 0 || len(c.LEDs) > registerBits {
		return fmt.Errorf("board: need 1-%d LED lines, got %d", registerBits, len(c.LEDs))
	}

	seen := make(map[int]bool)
	for _, group := range [][]int{c.Keys, c.Switches, c.LEDs} {
		for _, line := range group {
			if line < 0 {
				return fmt.Errorf("board: invalid line %d", line)
			}
			if seen[line] {
				return fmt.Errorf("board: line %d used more than once", line)
			}
			seen[line] = true
		}
	}
	return nil
}

func (c LineConfig) consumer() string {
	if c.Consumer == "" {
		return "pushbutton-demo"
	}
	return c.Consumer
}

// ParseLines parses a comma-separated list of line offsets, e.g. "5,6,13,19".
// An empty string yields an empty list.
func ParseLines(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	lines := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("parse line %q: %w", p, err)
		}
		lines = append(lines, n)
	}
	return lines, nil
}

// pack sets bit i of the result for every non-zero vals[i].
func pack(vals []int) Register {
	var r Register
	for i, v := range vals {
		if v != 0 {
			r |= 1 << uint(i)
		}
	}
	return r
}

// unpack writes bit i of r into vals[i].
func unpack(r Register, vals []int) {
	for i := range vals {
		vals[i] = int(r>>uint(i)) & 1
	}
}
