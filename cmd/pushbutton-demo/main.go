// Command pushbutton-demo drives the DE1-SoC LEDs from its push buttons.
//
// KEY0 increments the LED counter, KEY1 decrements it, KEY2 and KEY3 shift
// it right and left. Pressing two or more keys loads the slide switches
// into the counter; doing so with every switch off exits.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/de1soc/pushbutton-demo/internal/board"
	"github.com/de1soc/pushbutton-demo/internal/counter"
	"github.com/de1soc/pushbutton-demo/internal/logic"
	"github.com/de1soc/pushbutton-demo/internal/mmio"
)

// Backends selectable with -backend.
const (
	backendMem  = "mem"
	backendGPIO = "gpio"
	backendSim  = "sim"
)

type config struct {
	backend     string
	memDevice   string
	poll        time.Duration
	leds        int
	initial     uint64
	gpioChip    string
	keyLines    string
	switchLines string
	ledLines    string
	printState  bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.backend, "backend", backendMem, "register backend: mem (/dev/mem), gpio (GPIO character device) or sim (in-process memory)")
	flag.StringVar(&cfg.memDevice, "mem", mmio.DefaultDevice, "physical memory device for the mem backend")
	flag.DurationVar(&cfg.poll, "poll", time.Millisecond, "button polling interval")
	flag.IntVar(&cfg.leds, "leds", board.LEDCount, "number of LEDs for the mem and sim backends")
	flag.Uint64Var(&cfg.initial, "initial", 0, "initial counter value")
	flag.StringVar(&cfg.gpioChip, "gpio-chip", board.DefaultChip, "gpiochip for the gpio backend")
	flag.StringVar(&cfg.keyLines, "key-lines", "5,6,13,19", "KEY0-KEY3 line offsets for the gpio backend")
	flag.StringVar(&cfg.switchLines, "switch-lines", "12,16,20,21", "switch line offsets for the gpio backend")
	flag.StringVar(&cfg.ledLines, "led-lines", "17,18,22,23,24,25,26,27", "LED line offsets for the gpio backend (sets the LED count)")
	flag.BoolVar(&cfg.printState, "print-state", false, "Print current register state and exit")
	flag.Parse()

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func (c config) validate() error {
	if c.poll <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", c.poll)
	}
	switch c.backend {
	case backendMem, backendSim:
		if c.leds < 1 || c.leds > 32 {
			return fmt.Errorf("leds must be between 1 and 32, got %d", c.leds)
		}
	case backendGPIO:
	default:
		return fmt.Errorf("unknown backend %q", c.backend)
	}
	return nil
}

func run(cfg config) error {
	if err := cfg.validate(); err != nil {
		return err
	}

	if cfg.backend == backendMem {
		return mmio.With(cfg.memDevice, board.LWBridgeBase, board.LWBridgeSpan, func(m *mmio.Mapping) error {
			d, err := board.NewDE1SoC(m)
			if err != nil {
				return fmt.Errorf("init %s backend: %w", cfg.backend, err)
			}
			return drive(cfg, d, cfg.leds)
		})
	}

	bank, ledCount, err := openBank(cfg)
	if err != nil {
		return fmt.Errorf("init %s backend: %w", cfg.backend, err)
	}
	defer func() {
		if err := bank.Close(); err != nil {
			log.Printf("close %s backend: %v", cfg.backend, err)
		}
	}()
	return drive(cfg, bank, ledCount)
}

// drive runs the demo, or prints the registers with -print-state, on an
// open bank. The caller releases the bank.
func drive(cfg config, bank board.Bank, ledCount int) error {
	if cfg.printState {
		return printState(os.Stdout, bank)
	}

	ctrl := logic.NewController(counter.NewAt(counter.ForBits(ledCount), cfg.initial))

	log.Printf("started: backend=%s poll=%v leds=%d initial=%d", cfg.backend, cfg.poll, ledCount, ctrl.Counter().Value())

	ticker := time.NewTicker(cfg.poll)
	defer ticker.Stop()

	err := runLoop(bank, ctrl, ticker.C)

	n := ctrl.Counts()
	log.Printf("stopped: inc=%d dec=%d shr=%d shl=%d chord=%d release=%d skipped=%d",
		n.Increment, n.Decrement, n.ShiftRight, n.ShiftLeft, n.Chord, n.Release, n.Skipped)
	return err
}

// openBank opens the sim or gpio backend and returns it with its LED count.
// The mem backend is scoped by mmio.With in run.
func openBank(cfg config) (board.Bank, int, error) {
	switch cfg.backend {
	case backendSim:
		d, err := board.NewDE1SoC(mmio.NewMemory(board.LWBridgeBase, board.LWBridgeSpan))
		if err != nil {
			return nil, 0, err
		}
		return d, cfg.leds, nil

	case backendGPIO:
		lc, err := lineConfig(cfg)
		if err != nil {
			return nil, 0, err
		}
		b, err := board.NewLineBank(lc)
		if err != nil {
			return nil, 0, err
		}
		return b, len(lc.LEDs), nil
	}
	return nil, 0, fmt.Errorf("backend %q cannot be opened as a bank", cfg.backend)
}

func lineConfig(cfg config) (board.LineConfig, error) {
	keys, err := board.ParseLines(cfg.keyLines)
	if err != nil {
		return board.LineConfig{}, fmt.Errorf("key-lines: %w", err)
	}
	switches, err := board.ParseLines(cfg.switchLines)
	if err != nil {
		return board.LineConfig{}, fmt.Errorf("switch-lines: %w", err)
	}
	leds, err := board.ParseLines(cfg.ledLines)
	if err != nil {
		return board.LineConfig{}, fmt.Errorf("led-lines: %w", err)
	}
	lc := board.LineConfig{
		Chip:     cfg.gpioChip,
		Keys:     keys,
		Switches: switches,
		LEDs:     leds,
	}
	return lc, lc.Validate()
}

// ledReader is implemented by banks that can read back the LED register.
type ledReader interface {
	LEDs() board.Register
}

func printState(w io.Writer, bank board.Bank) error {
	sw, err := bank.ReadSwitches()
	if err != nil {
		return fmt.Errorf("read switches: %w", err)
	}
	keys, err := bank.ReadButtons()
	if err != nil {
		return fmt.Errorf("read buttons: %w", err)
	}
	fmt.Fprintf(w, "SW: 0x%03x, KEY: 0x%x (%s)", uint32(sw), uint32(keys), logic.Decode(uint32(keys)))
	if lr, ok := bank.(ledReader); ok {
		fmt.Fprintf(w, ", LEDR: 0x%03x", uint32(lr.LEDs()))
	}
	fmt.Fprintln(w)
	return nil
}

var errTickerStopped = errors.New("poll ticker stopped")

// runLoop polls the buttons once straight away and then once per tick until
// a chord is made with every switch off. Nothing interrupts it between ticks.
func runLoop(bank board.Bank, ctrl *logic.Controller, tick <-chan time.Time) error {
	readSwitches := func() (uint32, error) {
		sw, err := bank.ReadSwitches()
		return uint32(sw), err
	}

	// poll runs one iteration and reports whether the exit chord was seen.
	poll := func() bool {
		keys, err := bank.ReadButtons()
		if err != nil {
			log.Printf("button read error: %v", err)
			return false
		}

		res, err := ctrl.Step(uint32(keys), readSwitches)
		if err != nil {
			log.Printf("step error: %v", err)
			return false
		}
		if res.Skipped {
			return false
		}

		if res.Button != logic.ButtonNone {
			log.Printf("button: %s leds=%#x", res.Button, res.LEDs)
		}
		if err := bank.WriteLEDs(board.Register(res.LEDs)); err != nil {
			log.Printf("LED write error: %v", err)
		}

		if res.Exit {
			log.Printf("exit chord: switches=%#x", res.Switches)
			return true
		}
		return false
	}

	if poll() {
		return nil
	}
	for range tick {
		if poll() {
			return nil
		}
	}
	return errTickerStopped
}
