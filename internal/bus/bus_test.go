package bus

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/thelolagemann/gbbus/internal/cartridge"
	"github.com/thelolagemann/gbbus/internal/interrupts"
	"github.com/thelolagemann/gbbus/internal/joypad"
	"github.com/thelolagemann/gbbus/internal/ppu"
	"github.com/thelolagemann/gbbus/internal/timer"
	"github.com/thelolagemann/gbbus/internal/types"
	"github.com/thelolagemann/gbbus/pkg/log"
)

// memory is a flat 64kB cartridge stand-in.
type memory [0x10000]uint8

func (m *memory) Read(address uint16) uint8         { return m[address] }
func (m *memory) Write(address uint16, value uint8) { m[address] = value }

// fakeDevice records the cycles it is ticked with and latches a
// fixed set of interrupt bits on every tick.
type fakeDevice struct {
	value   uint8
	raise   uint8
	latch   uint8
	ticks   []uint16
	cleared int
}

func (d *fakeDevice) Read(uint16) uint8       { return d.value }
func (d *fakeDevice) Write(_ uint16, v uint8) { d.value = v }

func (d *fakeDevice) ClearInterrupt() {
	d.latch = 0
	d.cleared++
}

func (d *fakeDevice) Tick(cycles uint16) uint8 {
	d.ticks = append(d.ticks, cycles)
	d.latch |= d.raise
	return d.latch
}

// vblankRenderer requests V-Blank on every step.
type vblankRenderer struct{}

func (vblankRenderer) Step(p *ppu.PPU, _ uint16) {
	p.RequestInterrupt(interrupts.VBlankFlag)
}

func newTestBus(opts ...Opt) (*Bus, *memory) {
	cart := &memory{}
	return New(cart, joypad.New(), timer.NewController(), opts...), cart
}

func expectAccessError(t *testing.T, kind types.AccessKind, address uint16, fn func()) {
	t.Helper()
	err := Guard(fn)
	var accessErr *types.AccessError
	if !errors.As(err, &accessErr) {
		t.Fatalf("expected %s at 0x%04X, got %v", kind, address, err)
	}
	if accessErr.Kind != kind || accessErr.Address != address {
		t.Fatalf("got %v, want %s at 0x%04X", accessErr, kind, address)
	}
}

func TestBus_EchoRAM(t *testing.T) {
	b, _ := newTestBus()
	const mirror = types.EchoStart - types.WRAMStart
	for a := uint16(types.WRAMStart); a <= types.EchoEnd-mirror; a++ {
		v := uint8(a ^ a>>8)
		b.Write(a, v)
		if got := b.Read(a); got != v {
			t.Fatalf("Read(0x%04X) = 0x%02X, want 0x%02X", a, got, v)
		}
		if got := b.Read(a + mirror); got != v {
			t.Fatalf("Read(0x%04X) = 0x%02X, want 0x%02X", a+mirror, got, v)
		}
	}

	// and from the echo window back
	b.Write(0xFDFF, 0x99)
	if got := b.Read(0xDDFF); got != 0x99 {
		t.Errorf("Read(0xDDFF) = 0x%02X, want 0x99", got)
	}
	// the top of work RAM has no echo, 0xFE00 is OAM
	b.Write(0xDE00, 0x42)
	if got := b.Read(0xFE00); got != 0 {
		t.Errorf("Read(0xFE00) = 0x%02X, want 0", got)
	}
}

func TestBus_VRAM(t *testing.T) {
	b, _ := newTestBus()
	for addr := uint32(0x8000); addr < 0xA000; addr++ {
		b.Write(uint16(addr), uint8(addr*7))
	}
	for addr := uint32(0x8000); addr < 0xA000; addr++ {
		if got, want := b.Read(uint16(addr)), uint8(addr*7); got != want {
			t.Fatalf("Read(0x%04X) = 0x%02X, want 0x%02X", addr, got, want)
		}
	}
	if got := b.PPU().VRAM()[0x1234]; got != uint8((0x9234*7)&0xFF) {
		t.Errorf("VRAM()[0x1234] = 0x%02X", got)
	}
}

func TestBus_Cartridge(t *testing.T) {
	b, cart := newTestBus()
	cart[0x0150] = 0xAB
	cart[0xA010] = 0xCD
	if got := b.Read(0x0150); got != 0xAB {
		t.Errorf("Read(0x0150) = 0x%02X", got)
	}
	if got := b.Read(0xA010); got != 0xCD {
		t.Errorf("Read(0xA010) = 0x%02X", got)
	}
	b.Write(0x2000, 0x05)
	b.Write(0xBFFF, 0x06)
	if cart[0x2000] != 0x05 || cart[0xBFFF] != 0x06 {
		t.Error("cartridge writes were not forwarded")
	}
}

func TestBus_LYQuirk(t *testing.T) {
	b, _ := newTestBus()
	b.Init()
	for _, v := range []uint8{0, 10, 144, 153} {
		b.Write(types.LY, v)
		if got := b.Read(types.LY); got != ppu.LYReadValue {
			t.Errorf("Read(LY) = %d after writing %d, want %d", got, v, ppu.LYReadValue)
		}
	}
	b.Tick(200)
	if got := b.Read(types.LY); got != 148 {
		t.Errorf("Read(LY) = %d after ticking, want 148", got)
	}
}

func TestBus_DMA(t *testing.T) {
	b, _ := newTestBus()
	for i := uint16(0); i < 0xA0; i++ {
		b.Write(0xC100+i, uint8(i))
	}
	b.Write(types.DMA, 0xC1)
	for i := uint16(0); i < 0xA0; i++ {
		if got := b.Read(0xFE00 + i); got != uint8(i) {
			t.Fatalf("OAM[0x%02X] = 0x%02X, want 0x%02X", i, got, i)
		}
	}
}

func TestBus_DMAFromCartridge(t *testing.T) {
	b, cart := newTestBus()
	for i := 0; i < 0xA0; i++ {
		cart[0x4000+i] = uint8(0xFF - i)
	}
	b.Write(types.DMA, 0x40)
	if diff := cmp.Diff(cart[0x4000:0x40A0], b.PPU().OAM()[:]); diff != "" {
		t.Errorf("OAM mismatch (-want +got):\n%s", diff)
	}
}

func TestBus_TickAggregation(t *testing.T) {
	input := &fakeDevice{}
	tim := &fakeDevice{raise: interrupts.TimerFlag}
	b := New(&memory{}, input, tim, WithPPU(ppu.New(ppu.WithRenderer(vblankRenderer{}))))

	b.Tick(3)

	if got, want := b.Read(types.IF), uint8(interrupts.VBlankFlag|interrupts.TimerFlag); got != want {
		t.Fatalf("IF = 0x%02X, want 0x%02X", got, want)
	}
	if diff := cmp.Diff([]uint16{3}, input.ticks); diff != "" {
		t.Errorf("joypad ticks (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]uint16{12}, tim.ticks); diff != "" {
		t.Errorf("timer ticks (-want +got):\n%s", diff)
	}
	if tim.latch != 0 || tim.cleared != 1 || input.cleared != 1 {
		t.Errorf("latches not cleared: timer latch %d, cleared %d/%d", tim.latch, tim.cleared, input.cleared)
	}

	// once acknowledged, the same latch is not delivered again
	b.Write(types.IF, 0)
	tim.raise = 0
	b.Tick(1)
	if got := b.Read(types.IF); got != interrupts.VBlankFlag {
		t.Errorf("IF = 0x%02X after second tick, want VBlank only", got)
	}
}

func TestBus_ReadIdempotent(t *testing.T) {
	b, cart := newTestBus()
	b.Init()
	for i := range cart {
		cart[i] = uint8(i >> 3)
	}
	for addr := uint32(0); addr < 0x10000; addr++ {
		a := uint16(addr)
		if (a >= 0xFF01 && a <= 0xFF02) || (a >= 0xFF4C && a <= 0xFF7F) || a == types.DMA {
			continue
		}
		if first, second := b.Read(a), b.Read(a); first != second {
			t.Fatalf("Read(0x%04X) returned 0x%02X then 0x%02X", a, first, second)
		}
	}
}

func TestBus_UnsupportedFeatures(t *testing.T) {
	b, _ := newTestBus()
	for _, addr := range []uint16{types.SB, types.SC, types.KEY0, 0xFF50, 0xFF7F} {
		expectAccessError(t, types.UnsupportedFeatureAccess, addr, func() { b.Read(addr) })
		if err := Guard(func() { b.Write(addr, 0x81) }); err != nil {
			t.Errorf("Write(0x%04X) failed: %v", addr, err)
		}
	}
}

func TestBus_DMARead(t *testing.T) {
	b, _ := newTestBus()
	expectAccessError(t, types.UnknownRegisterAccess, types.DMA, func() { b.Read(types.DMA) })
}

func TestBus_Unmapped(t *testing.T) {
	var buf bytes.Buffer
	b, _ := newTestBus(WithLogger(log.NewWithOutput(&buf, logrus.DebugLevel)), LogUnmapped())

	for _, addr := range []uint16{0xFEA0, 0xFEFF, 0xFF03, 0xFF08, 0xFF10, 0xFF26, 0xFF30} {
		b.Write(addr, 0x5A)
		if got := b.Read(addr); got != 0 {
			t.Errorf("Read(0x%04X) = 0x%02X, want 0", addr, got)
		}
	}
	if !strings.Contains(buf.String(), "unmapped read at 0xFEA0") {
		t.Errorf("unmapped read not logged:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "unmapped write 0x5A at 0xFF10") {
		t.Errorf("unmapped write not logged:\n%s", buf.String())
	}
}

func TestBus_HRAMAndInterrupts(t *testing.T) {
	b, _ := newTestBus()
	for addr := uint16(0xFF80); addr < 0xFFFF; addr++ {
		b.Write(addr, uint8(addr))
	}
	b.Write(types.IE, 0x1F)
	b.Write(types.IF, 0xE1)

	for addr := uint16(0xFF80); addr < 0xFFFF; addr++ {
		if got := b.Read(addr); got != uint8(addr) {
			t.Fatalf("Read(0x%04X) = 0x%02X", addr, got)
		}
	}
	if got := b.Read(types.IE); got != 0x1F {
		t.Errorf("IE = 0x%02X, want 0x1F", got)
	}
	if got := b.Read(types.IF); got != 0xE1 {
		t.Errorf("IF = 0x%02X, want 0xE1", got)
	}
	if irq := b.Interrupts(); irq.Flag != 0xE1 || irq.Enable != 0x1F {
		t.Errorf("Interrupts() = %+v", irq)
	}
}

func TestBus_Word(t *testing.T) {
	b, cart := newTestBus()
	b.WriteWord(0xC000, 0xBEEF)
	if got := b.Read(0xC000); got != 0xEF {
		t.Errorf("low byte = 0x%02X, want 0xEF", got)
	}
	if got := b.ReadWord(0xC000); got != 0xBEEF {
		t.Errorf("ReadWord(0xC000) = 0x%04X, want 0xBEEF", got)
	}

	b.WriteWord(0xFFFF, 0x1234)
	if got := b.Read(types.IE); got != 0x34 {
		t.Errorf("IE = 0x%02X, want 0x34", got)
	}
	if cart[0x0000] != 0x12 {
		t.Errorf("high byte did not wrap to 0x0000: 0x%02X", cart[0x0000])
	}
	if got := b.ReadWord(0xFFFF); got != 0x1234 {
		t.Errorf("ReadWord(0xFFFF) = 0x%04X, want 0x1234", got)
	}
}

func TestBus_Init(t *testing.T) {
	b, _ := newTestBus()
	b.Init()

	want := map[uint16]uint8{
		types.TIMA: 0x00,
		types.TMA:  0x00,
		types.TAC:  0xF8, // upper bits read as set
		types.LCDC: 0x91,
		types.SCY:  0x00,
		types.SCX:  0x00,
		types.LYC:  0x00,
		types.BGP:  0xFC,
		types.OBP0: 0xFF,
		types.OBP1: 0xFF,
		types.WY:   0x00,
		types.WX:   0x00,
		0xFF10:     0x00, // sound is unmapped
		0xFF26:     0x00,
	}
	for addr, v := range want {
		if got := b.Read(addr); got != v {
			t.Errorf("Read(0x%04X) = 0x%02X, want 0x%02X", addr, got, v)
		}
	}
}

func TestGuard(t *testing.T) {
	if err := Guard(func() {}); err != nil {
		t.Fatalf("Guard() = %v", err)
	}

	defer func() {
		if r := recover(); r != "boom" {
			t.Fatalf("recovered %v, want boom", r)
		}
	}()
	_ = Guard(func() { panic("boom") })
	t.Fatal("Guard swallowed an unrelated panic")
}

func TestBus_Snapshot(t *testing.T) {
	b, _ := newTestBus()
	b.Init()
	b.Write(0xC010, 0x10)
	b.Write(0xFF90, 0x20)
	b.Write(0x8010, 0x30)
	b.Write(types.IE, 0x05)
	b.Write(types.TMA, 0x40)
	b.Tick(50)

	data, err := b.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	before := types.NewState()
	b.Save(before)

	b.Write(0xC010, 0xFF)
	b.Write(0x8010, 0xFF)
	b.Write(types.TMA, 0xFF)
	b.Tick(100)

	if err := b.Restore(data); err != nil {
		t.Fatal(err)
	}
	after := types.NewState()
	b.Save(after)
	if !bytes.Equal(before.Bytes(), after.Bytes()) {
		t.Fatal("state differs after restoring snapshot")
	}
	if got := b.Read(0xC010); got != 0x10 {
		t.Errorf("Read(0xC010) = 0x%02X, want 0x10", got)
	}
}

func TestBus_RestoreInvalid(t *testing.T) {
	b, _ := newTestBus()
	b.Write(0xC000, 0x77)

	data, err := b.Snapshot()
	if err != nil {
		t.Fatal(err)
	}

	// a valid snapshot of a different machine with its tail cut off
	other, _ := newTestBus()
	s := types.NewState()
	s.WriteData([]byte(snapshotMagic))
	s.Write8(snapshotVersion)
	other.Save(s)
	truncated := compress(t, s.Bytes()[:len(s.Bytes())/2])

	b.Write(0xC000, 0x88)
	for name, input := range map[string][]byte{
		"garbage":   []byte("not brotli at all"),
		"magic":     compress(t, []byte("XXXX\x01")),
		"version":   compress(t, []byte("GBBS\x09")),
		"truncated": truncated,
	} {
		if err := b.Restore(input); err == nil {
			t.Errorf("%s: Restore() succeeded", name)
		}
		if got := b.Read(0xC000); got != 0x88 {
			t.Errorf("%s: bus modified by failed restore", name)
		}
	}

	if err := b.Restore(data); err != nil {
		t.Fatal(err)
	}
	if got := b.Read(0xC000); got != 0x77 {
		t.Errorf("Read(0xC000) = 0x%02X, want 0x77", got)
	}
}

// bankedROM builds an MBC1 ROM with 32kB of RAM where the first byte
// of each 16kB bank is 0xB0 plus the bank number.
func bankedROM(t *testing.T, banks int) cartridge.Cartridge {
	t.Helper()
	rom := make([]byte, banks*0x4000)
	for i := 0; i < banks; i++ {
		rom[i*0x4000] = 0xB0 + uint8(i)
	}
	rom[0x147] = uint8(cartridge.MBC1RAMBATT)
	rom[0x148] = 0x02 // 128kB
	rom[0x149] = 0x03 // 32kB
	cart, err := cartridge.New(rom)
	if err != nil {
		t.Fatal(err)
	}
	return cart
}

func TestBus_SnapshotCartridgeBanks(t *testing.T) {
	b := New(bankedROM(t, 8), joypad.New(), timer.NewController())
	b.Write(0x0000, 0x0A) // enable RAM
	b.Write(0x2000, 0x02)
	b.Write(0xA000, 0x5A)
	if got := b.Read(0x4000); got != 0xB2 {
		t.Fatalf("Read(0x4000) = 0x%02X, want bank 2", got)
	}

	data, err := b.Snapshot()
	if err != nil {
		t.Fatal(err)
	}

	b.Write(0x2000, 0x03)
	b.Write(0x6000, 0x01)
	b.Write(0x4000, 0x01) // RAM bank 1 in advanced mode
	b.Write(0xA000, 0xA5)
	b.Write(0x0000, 0x00)

	if err := b.Restore(data); err != nil {
		t.Fatal(err)
	}
	if got := b.Read(0x4000); got != 0xB2 {
		t.Errorf("Read(0x4000) = 0x%02X after restore, want 0xB2", got)
	}
	if got := b.Read(0xA000); got != 0x5A {
		t.Errorf("Read(0xA000) = 0x%02X after restore, want 0x5A", got)
	}

	// a snapshot cut inside the cartridge state leaves the banks alone
	s := types.NewState()
	s.WriteData([]byte(snapshotMagic))
	s.Write8(snapshotVersion)
	b.Save(s)
	b.Write(0x2000, 0x05)
	if err := b.Restore(compress(t, s.Bytes()[:len(s.Bytes())-3])); err == nil {
		t.Fatal("Restore() accepted a truncated cartridge state")
	}
	if got := b.Read(0x4000); got != 0xB5 {
		t.Errorf("Read(0x4000) = 0x%02X after failed restore, want 0xB5", got)
	}
}

func compress(t *testing.T, raw []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	if _, err := w.Write(raw); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
