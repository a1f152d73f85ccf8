package main

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/de1soc/pushbutton-demo/internal/board"
	"github.com/de1soc/pushbutton-demo/internal/counter"
	"github.com/de1soc/pushbutton-demo/internal/logic"
	"github.com/de1soc/pushbutton-demo/internal/mmio"
)

const (
	key0  board.Register = 1 << 0
	key1  board.Register = 1 << 1
	key2  board.Register = 1 << 2
	key3  board.Register = 1 << 3
	chord board.Register = key0 | key3
)

// ticks returns a closed channel holding n ticks. runLoop polls once before
// the first tick, so it sees exactly n+1 polls before the channel drains.
func ticks(n int) <-chan time.Time {
	ch := make(chan time.Time, n)
	for i := 0; i < n; i++ {
		ch <- time.Time{}
	}
	close(ch)
	return ch
}

// faultBank wraps a FakeBank and fails ReadButtons for a range of calls.
type faultBank struct {
	*board.FakeBank
	call       int
	faultStart int // first call index that returns error (inclusive)
	faultEnd   int // last call index that returns error (exclusive)
}

func (b *faultBank) ReadButtons() (board.Register, error) {
	i := b.call
	b.call++
	if i >= b.faultStart && i < b.faultEnd {
		return 0, errors.New("bus fault")
	}
	return b.FakeBank.ReadButtons()
}

func baseConfig() config {
	return config{
		backend:     backendSim,
		memDevice:   mmio.DefaultDevice,
		poll:        time.Millisecond,
		leds:        board.LEDCount,
		gpioChip:    board.DefaultChip,
		keyLines:    "5,6,13,19",
		switchLines: "12,16,20,21",
		ledLines:    "17,18,22,23",
	}
}

func TestConfigValidate(t *testing.T) {
	if err := baseConfig().validate(); err != nil {
		t.Fatalf("base config: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*config)
	}{
		{"zero poll", func(c *config) { c.poll = 0 }},
		{"negative poll", func(c *config) { c.poll = -time.Millisecond }},
		{"no leds", func(c *config) { c.leds = 0 }},
		{"too many leds", func(c *config) { c.leds = 33 }},
		{"unknown backend", func(c *config) { c.backend = "spi" }},
	}
	for _, tc := range cases {
		c := baseConfig()
		tc.mutate(&c)
		if err := c.validate(); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}

	c := baseConfig()
	c.backend = backendGPIO
	c.leds = 0
	if err := c.validate(); err != nil {
		t.Errorf("gpio backend ignores -leds: %v", err)
	}
}

func TestLineConfigFromFlags(t *testing.T) {
	lc, err := lineConfig(baseConfig())
	if err != nil {
		t.Fatalf("lineConfig: %v", err)
	}
	if lc.Chip != board.DefaultChip {
		t.Errorf("Chip: got %q", lc.Chip)
	}
	if len(lc.Keys) != 4 || len(lc.Switches) != 4 || len(lc.LEDs) != 4 {
		t.Errorf("line counts: got keys=%d switches=%d leds=%d", len(lc.Keys), len(lc.Switches), len(lc.LEDs))
	}

	c := baseConfig()
	c.keyLines = "5,6"
	if _, err := lineConfig(c); err == nil {
		t.Error("expected error for two key lines")
	}
	c = baseConfig()
	c.ledLines = "a"
	if _, err := lineConfig(c); err == nil {
		t.Error("expected error for bad led-lines")
	}
}

func TestRunMemBackendMappingFailure(t *testing.T) {
	c := baseConfig()
	c.backend = backendMem
	c.memDevice = "/nonexistent/mem"

	err := run(c)
	var me *mmio.MappingError
	if !errors.As(err, &me) {
		t.Fatalf("expected *mmio.MappingError, got %T: %v", err, err)
	}
}

func TestOpenBankLeavesMemToRun(t *testing.T) {
	c := baseConfig()
	c.backend = backendMem
	if _, _, err := openBank(c); err == nil {
		t.Error("openBank(mem): expected error, the mapping is scoped by run")
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	c := baseConfig()
	c.poll = 0
	if err := run(c); err == nil {
		t.Error("expected error")
	}
}

func TestOpenBankSim(t *testing.T) {
	c := baseConfig()
	c.leds = 4
	bank, n, err := openBank(c)
	if err != nil {
		t.Fatalf("openBank: %v", err)
	}
	defer bank.Close()
	if n != 4 {
		t.Errorf("led count: got %d, want 4", n)
	}
	if _, ok := bank.(*board.DE1SoC); !ok {
		t.Errorf("sim backend: got %T, want *board.DE1SoC", bank)
	}
}

func TestPrintState(t *testing.T) {
	m := mmio.NewMemory(board.LWBridgeBase, board.LWBridgeSpan)
	d, err := board.NewDE1SoC(m)
	if err != nil {
		t.Fatalf("NewDE1SoC: %v", err)
	}
	sw, _ := m.Register32(board.SWOffset)
	sw.Store(0x2A5)
	key, _ := m.Register32(board.KEYOffset)
	key.Store(0b0010)
	d.WriteLEDs(0x00F)

	var buf bytes.Buffer
	if err := printState(&buf, d); err != nil {
		t.Fatalf("printState: %v", err)
	}
	want := "SW: 0x2a5, KEY: 0x2 (KEY1), LEDR: 0x00f\n"
	if buf.String() != want {
		t.Errorf("output: got %q, want %q", buf.String(), want)
	}
}

func TestPrintStateWithoutLEDReadback(t *testing.T) {
	bank := board.NewFakeBank([]board.Register{chord}, []board.Register{0})
	var buf bytes.Buffer
	if err := printState(&buf, bank); err != nil {
		t.Fatalf("printState: %v", err)
	}
	if got := buf.String(); got != "SW: 0x000, KEY: 0x9 (MULTIPLE)\n" {
		t.Errorf("output: got %q", got)
	}
}

func TestPrintStateReadError(t *testing.T) {
	bank := board.NewFakeBank([]board.Register{0}, []board.Register{0})
	bank.ReadError = errors.New("bus fault")
	if err := printState(&bytes.Buffer{}, bank); err == nil {
		t.Error("expected error")
	}
}

// --- runLoop tests ---

func TestRunLoopIncrementDecrementScenario(t *testing.T) {
	bank := board.NewFakeBank([]board.Register{key0, key0, 0, key1}, []board.Register{0x3FF})
	ctrl := logic.NewController(counter.NewAt(15, 15))

	err := runLoop(bank, ctrl, ticks(3))
	if !errors.Is(err, errTickerStopped) {
		t.Fatalf("runLoop: got %v, want errTickerStopped", err)
	}

	want := []board.Register{0, 0, 15}
	if len(bank.LEDs) != len(want) {
		t.Fatalf("LED writes: got %v, want %v", bank.LEDs, want)
	}
	for i := range want {
		if bank.LEDs[i] != want[i] {
			t.Errorf("write %d: got %d, want %d", i, bank.LEDs[i], want[i])
		}
	}
	if bank.SwitchReads != 0 {
		t.Errorf("switch reads: got %d, want 0", bank.SwitchReads)
	}
}

func TestRunLoopShifts(t *testing.T) {
	bank := board.NewFakeBank([]board.Register{key3, 0, key3, 0, key2}, nil)
	ctrl := logic.NewController(counter.NewAt(counter.ForBits(board.LEDCount), 0x201))

	runLoop(bank, ctrl, ticks(4))

	// 0x201<<1 wraps to 0x002, then 0x004, then >>1 to 0x002.
	want := []board.Register{0x002, 0x002, 0x004, 0x004, 0x002}
	if len(bank.LEDs) != len(want) {
		t.Fatalf("LED writes: got %#v, want %#v", bank.LEDs, want)
	}
	for i := range want {
		if bank.LEDs[i] != want[i] {
			t.Errorf("write %d: got %#x, want %#x", i, bank.LEDs[i], want[i])
		}
	}
}

func TestRunLoopExitsOnChordWithSwitchesOff(t *testing.T) {
	bank := board.NewFakeBank([]board.Register{chord, key0}, []board.Register{0})
	ctrl := logic.NewController(counter.NewAt(15, 9))

	err := runLoop(bank, ctrl, ticks(10))
	if err != nil {
		t.Fatalf("runLoop: got %v, want nil", err)
	}
	if bank.ButtonReads != 1 {
		t.Errorf("button reads: got %d, want 1 (no reads after exit)", bank.ButtonReads)
	}
	if len(bank.LEDs) != 1 || bank.LEDs[0] != 0 {
		t.Errorf("LED writes: got %v, want [0]", bank.LEDs)
	}
}

func TestRunLoopChordLoadsSwitchesThenExits(t *testing.T) {
	buttons := []board.Register{chord, chord, key0, 0, chord}
	bank := board.NewFakeBank(buttons, []board.Register{0x0A, 0})
	ctrl := logic.NewController(counter.New(15))

	err := runLoop(bank, ctrl, ticks(len(buttons)-1))
	if err != nil {
		t.Fatalf("runLoop: got %v, want nil", err)
	}

	// chord loads 0xA; held chord and KEY0 before release are ignored;
	// release writes 0xA again; second chord reads 0 and exits.
	want := []board.Register{0x0A, 0x0A, 0}
	if len(bank.LEDs) != len(want) {
		t.Fatalf("LED writes: got %v, want %v", bank.LEDs, want)
	}
	for i := range want {
		if bank.LEDs[i] != want[i] {
			t.Errorf("write %d: got %#x, want %#x", i, bank.LEDs[i], want[i])
		}
	}
	if bank.SwitchReads != 2 {
		t.Errorf("switch reads: got %d, want 2", bank.SwitchReads)
	}
}

func TestRunLoopButtonReadError(t *testing.T) {
	// Calls 1 and 2 fail; the loop keeps polling.
	bank := &faultBank{
		FakeBank:   board.NewFakeBank([]board.Register{key0, 0, key0}, nil),
		faultStart: 1,
		faultEnd:   3,
	}
	ctrl := logic.NewController(counter.New(15))

	err := runLoop(bank, ctrl, ticks(5))
	if !errors.Is(err, errTickerStopped) {
		t.Fatalf("runLoop: got %v", err)
	}
	if ctrl.Counter().Value() != 2 {
		t.Errorf("counter: got %d, want 2", ctrl.Counter().Value())
	}
}

func TestRunLoopSwitchReadErrorRetriesChord(t *testing.T) {
	bank := board.NewFakeBank([]board.Register{chord}, []board.Register{5})
	ctrl := logic.NewController(counter.New(15))

	// The first chord poll fails to read the switches.
	failing := &switchFaultBank{FakeBank: bank, failures: 1}
	err := runLoop(failing, ctrl, ticks(1))
	if !errors.Is(err, errTickerStopped) {
		t.Fatalf("runLoop: got %v", err)
	}
	if len(bank.LEDs) != 1 || bank.LEDs[0] != 5 {
		t.Errorf("LED writes: got %v, want [5]", bank.LEDs)
	}
}

// switchFaultBank fails the first n ReadSwitches calls.
type switchFaultBank struct {
	*board.FakeBank
	failures int
}

func (b *switchFaultBank) ReadSwitches() (board.Register, error) {
	if b.failures > 0 {
		b.failures--
		return 0, errors.New("switch fault")
	}
	return b.FakeBank.ReadSwitches()
}

func TestRunLoopLEDWriteErrorStillExits(t *testing.T) {
	bank := board.NewFakeBank([]board.Register{chord}, []board.Register{0})
	bank.WriteError = errors.New("write fault")
	ctrl := logic.NewController(counter.New(15))

	if err := runLoop(bank, ctrl, ticks(3)); err != nil {
		t.Fatalf("runLoop: got %v, want nil", err)
	}
}

func TestRunLoopPollsBeforeFirstTick(t *testing.T) {
	bank := board.NewFakeBank([]board.Register{key0}, nil)
	ctrl := logic.NewController(counter.New(15))

	err := runLoop(bank, ctrl, ticks(0))
	if !errors.Is(err, errTickerStopped) {
		t.Fatalf("runLoop: got %v, want errTickerStopped", err)
	}
	if bank.ButtonReads != 1 {
		t.Errorf("button reads: got %d, want 1", bank.ButtonReads)
	}
	if len(bank.LEDs) != 1 || bank.LEDs[0] != 1 {
		t.Errorf("LED writes: got %v, want [1]", bank.LEDs)
	}
}

func TestRunLoopExitsWithoutWaitingForTick(t *testing.T) {
	bank := board.NewFakeBank([]board.Register{chord}, []board.Register{0})
	ctrl := logic.NewController(counter.New(15))

	// Nothing is ever sent on tick, so only the first poll can run.
	errCh := make(chan error, 1)
	go func() {
		errCh <- runLoop(bank, ctrl, make(chan time.Time))
	}()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("runLoop: got %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runLoop waited for a tick before the first poll")
	}
}

// scriptedKeys plays the FPGA side of the KEY register: every button read
// first stores the next scripted value into the register.
type scriptedKeys struct {
	*board.DE1SoC
	key    mmio.Reg32
	script []uint32
}

func (s *scriptedKeys) ReadButtons() (board.Register, error) {
	if len(s.script) > 0 {
		s.key.Store(s.script[0])
		s.script = s.script[1:]
	}
	return s.DE1SoC.ReadButtons()
}

func TestRunLoopAgainstSimulatedRegisters(t *testing.T) {
	m := mmio.NewMemory(board.LWBridgeBase, board.LWBridgeSpan)
	d, err := board.NewDE1SoC(m)
	if err != nil {
		t.Fatalf("NewDE1SoC: %v", err)
	}
	key, err := m.Register32(board.KEYOffset)
	if err != nil {
		t.Fatalf("Register32(KEY): %v", err)
	}
	ctrl := logic.NewController(counter.New(counter.ForBits(board.LEDCount)))

	// Switches read 0, so the final chord exits.
	script := []uint32{uint32(key0), 0, uint32(key0), 0, uint32(key1), uint32(chord)}
	bank := &scriptedKeys{DE1SoC: d, key: key, script: script}

	if err := runLoop(bank, ctrl, ticks(len(script)-1)); err != nil {
		t.Fatalf("runLoop: %v", err)
	}
	if len(bank.script) != 0 {
		t.Errorf("unread samples: %v", bank.script)
	}
	if got := d.LEDs(); got != 0 {
		t.Errorf("LEDR after exit: got %#x, want 0", got)
	}
	if n := ctrl.Counts(); n.Increment != 2 || n.Decrement != 1 || n.Chord != 1 {
		t.Errorf("counts: got %+v", n)
	}
}
