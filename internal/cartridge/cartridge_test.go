package cartridge

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/thelolagemann/gbbus/internal/types"
)

// makeROM builds a ROM of the given number of 16kB banks, where the
// first two bytes of each bank hold its bank number, low byte first.
func makeROM(t Type, banks int, ramCode uint8) []byte {
	rom := make([]byte, banks*0x4000)
	for b := 0; b < banks; b++ {
		rom[b*0x4000] = uint8(b)
		rom[b*0x4000+1] = uint8(b >> 8)
	}
	copy(rom[0x134:], "TESTROM")
	rom[0x147] = uint8(t)
	for size := 0; 0x8000<<size < len(rom); size++ {
		rom[0x148] = uint8(size + 1)
	}
	rom[0x149] = ramCode

	h := Header{}
	copy(h.raw[:], rom[0x100:0x150])
	rom[0x14D] = h.ComputeChecksum()
	return rom
}

func TestNew_Header(t *testing.T) {
	c, err := New(makeROM(MBC1RAM, 8, 0x03))
	if err != nil {
		t.Fatal(err)
	}
	h := c.Header()
	if h.Title != "TESTROM" {
		t.Errorf("Title = %q", h.Title)
	}
	if h.CartridgeType != MBC1RAM {
		t.Errorf("CartridgeType = %s", h.CartridgeType)
	}
	if h.ROMSize != 128*1024 {
		t.Errorf("ROMSize = %d", h.ROMSize)
	}
	if h.RAMSize != 32*1024 {
		t.Errorf("RAMSize = %d", h.RAMSize)
	}
	if !h.Valid() {
		t.Error("header checksum rejected")
	}
	if h.Hardware() != "DMG" {
		t.Errorf("Hardware() = %s", h.Hardware())
	}
	if s := h.String(); !strings.Contains(s, "MBC1+RAM") || !strings.Contains(s, "128kB") {
		t.Errorf("String() = %q", s)
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New(make([]byte, 0x100)); err == nil {
		t.Error("New accepted a truncated ROM")
	}
	if _, err := New(makeROM(HUDSONHUC1, 4, 0)); err == nil {
		t.Error("New accepted a HuC1 cartridge")
	}
}

func TestNew_Types(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{ROM, "*cartridge.ROMCartridge"},
		{ROMRAMBATT, "*cartridge.ROMCartridge"},
		{MBC1RAM, "*cartridge.MemoryBankedCartridge1"},
		{MBC2BATT, "*cartridge.MemoryBankedCartridge2"},
		{MBC3TIMERBATT, "*cartridge.MemoryBankedCartridge3"},
		{MBC3RAMBATT, "*cartridge.MemoryBankedCartridge3"},
		{MBC5, "*cartridge.MemoryBankedCartridge5"},
		{MBC5RUMBLERAMBATT, "*cartridge.MemoryBankedCartridge5"},
	}
	for _, tt := range tests {
		c, err := New(makeROM(tt.typ, 4, 0))
		if err != nil {
			t.Errorf("%s: %v", tt.typ, err)
			continue
		}
		if got := fmt.Sprintf("%T", c); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.typ, got, tt.want)
		}
		if _, ok := c.(types.Stater); !ok {
			t.Errorf("%s: cartridge state cannot be saved", tt.typ)
		}
	}
}

func TestHeader_HasBattery(t *testing.T) {
	tests := []struct {
		typ  Type
		want bool
	}{
		{ROM, false},
		{ROMRAMBATT, true},
		{MBC1RAM, false},
		{MBC1RAMBATT, true},
		{MBC2BATT, true},
		{MBC3, false},
		{MBC3TIMERBATT, true},
		{MBC5RUMBLERAM, false},
		{MBC5RUMBLERAMBATT, true},
	}
	for _, tt := range tests {
		h := Header{CartridgeType: tt.typ}
		if got := h.HasBattery(); got != tt.want {
			t.Errorf("%s: HasBattery() = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestHeader_CGBTitle(t *testing.T) {
	rom := makeROM(ROM, 2, 0)
	copy(rom[0x134:], "SIXTEEN CHARS!!X")
	rom[0x143] = 0xC0
	h, err := parseHeader(rom[0x100:0x150])
	if err != nil {
		t.Fatal(err)
	}
	if h.Title != "SIXTEEN CHARS!!" {
		t.Errorf("Title = %q", h.Title)
	}
	if h.Hardware() != "CGB" {
		t.Errorf("Hardware() = %s", h.Hardware())
	}
	if _, err := parseHeader(rom[0x100:0x140]); err == nil {
		t.Error("short header accepted")
	}
}

func TestHeader_Invalid(t *testing.T) {
	rom := makeROM(ROM, 2, 0)
	rom[0x14D]++
	c, err := New(rom)
	if err != nil {
		t.Fatal(err)
	}
	h := c.Header()
	if h.Valid() {
		t.Error("corrupt header checksum accepted")
	}
}

func TestROMCartridge(t *testing.T) {
	rom := makeROM(ROM, 2, 0)
	c, err := New(rom)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Read(0x4000); got != 1 {
		t.Errorf("Read(0x4000) = %d, want 1", got)
	}
	c.Write(0x4000, 0x99)
	if got := c.Read(0x4000); got != 1 {
		t.Error("write to ROM was stored")
	}
	if got := c.Read(0xA000); got != 0xFF {
		t.Errorf("Read(0xA000) without RAM = 0x%02X", got)
	}

	c, err = New(makeROM(ROMRAM, 2, 0x02))
	if err != nil {
		t.Fatal(err)
	}
	c.Write(0xBFFF, 0x42)
	if got := c.Read(0xBFFF); got != 0x42 {
		t.Errorf("Read(0xBFFF) = 0x%02X", got)
	}
	if b, ok := c.(Battery); !ok || b.RAM()[0x1FFF] != 0x42 {
		t.Error("RAM not exposed through Battery")
	}
}

func TestMBC1_ROMBanking(t *testing.T) {
	c, err := New(makeROM(MBC1, 64, 0))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		bank1, bank2 uint8
		want         uint8
	}{
		{0x00, 0, 1}, // bank 0 maps to 1
		{0x01, 0, 1},
		{0x05, 0, 5},
		{0x1F, 0, 31},
		{0x01, 1, 33},
		{0x00, 1, 33},
		{0x3F, 0, 31}, // only 5 bits used
	}
	for _, tt := range tests {
		c.Write(0x2000, tt.bank1)
		c.Write(0x4000, tt.bank2)
		if got := c.Read(0x4000); got != tt.want {
			t.Errorf("bank1=0x%02X bank2=%d: bank %d, want %d", tt.bank1, tt.bank2, got, tt.want)
		}
	}

	// advanced mode maps bank2 into 0x0000 - 0x3FFF
	c.Write(0x4000, 1)
	if got := c.Read(0x0000); got != 0 {
		t.Errorf("simple mode: low bank %d", got)
	}
	c.Write(0x6000, 1)
	if got := c.Read(0x0000); got != 32 {
		t.Errorf("advanced mode: low bank %d, want 32", got)
	}
}

func TestMBC1_RAM(t *testing.T) {
	c, err := New(makeROM(MBC1RAMBATT, 4, 0x03))
	if err != nil {
		t.Fatal(err)
	}

	c.Write(0xA000, 0x11)
	if got := c.Read(0xA000); got != 0xFF {
		t.Fatalf("disabled RAM read 0x%02X", got)
	}

	c.Write(0x0000, 0x0A)
	c.Write(0xA000, 0x11)
	if got := c.Read(0xA000); got != 0x11 {
		t.Fatalf("RAM read 0x%02X", got)
	}

	// RAM banking only applies in advanced mode
	c.Write(0x6000, 1)
	c.Write(0x4000, 2)
	c.Write(0xA000, 0x22)
	c.Write(0x4000, 0)
	if got := c.Read(0xA000); got != 0x11 {
		t.Fatalf("bank 0 read 0x%02X", got)
	}

	b := c.(Battery)
	if b.RAM()[2*0x2000] != 0x22 {
		t.Fatal("bank 2 write not stored")
	}

	c.Write(0x0000, 0x00)
	if got := c.Read(0xA000); got != 0xFF {
		t.Fatalf("RAM still readable after disable: 0x%02X", got)
	}
}

func TestMBC2(t *testing.T) {
	c, err := New(makeROM(MBC2BATT, 16, 0))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		address uint16
		value   uint8
		want    uint8
	}{
		{0x2100, 0x00, 1}, // bank 0 maps to 1
		{0x2100, 0x05, 5},
		{0x0100, 0x0F, 15},
		{0x2100, 0x1F, 15}, // only 4 bits used
		{0x2000, 0x03, 15}, // bit 8 clear selects RAM enable
		{0x3FFF, 0x02, 2},
	}
	for _, tt := range tests {
		c.Write(tt.address, tt.value)
		if got := c.Read(0x4000); got != tt.want {
			t.Errorf("write 0x%02X to 0x%04X: bank %d, want %d", tt.value, tt.address, got, tt.want)
		}
	}

	if got := c.Read(0xA000); got != 0xFF {
		t.Fatalf("disabled RAM read 0x%02X", got)
	}
	c.Write(0x0000, 0x0A)
	c.Write(0xA000, 0xAB)
	if got := c.Read(0xA000); got != 0xFB {
		t.Errorf("RAM read 0x%02X, want 0xFB", got)
	}
	// 512 nibbles mirrored through the whole RAM area
	if got := c.Read(0xA200); got != 0xFB {
		t.Errorf("mirror read 0x%02X, want 0xFB", got)
	}
	if got := c.(Battery).RAM(); len(got) != 512 || got[0] != 0x0B {
		t.Errorf("battery RAM = %d bytes, first 0x%02X", len(got), got[0])
	}
}

func TestMBC3_ROMBanking(t *testing.T) {
	c, err := New(makeROM(MBC3, 128, 0))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		value uint8
		want  uint8
	}{
		{0x00, 1},
		{0x20, 32}, // no MBC1 style gaps
		{0x41, 65},
		{0x7F, 127},
		{0x80, 1}, // only 7 bits used
	}
	for _, tt := range tests {
		c.Write(0x2000, tt.value)
		if got := c.Read(0x4000); got != tt.want {
			t.Errorf("bank 0x%02X: got %d, want %d", tt.value, got, tt.want)
		}
	}
	if got := c.Read(0x0000); got != 0 {
		t.Errorf("low bank %d", got)
	}
}

func TestMBC3_RAM(t *testing.T) {
	c, err := New(makeROM(MBC3RAMBATT, 4, 0x03))
	if err != nil {
		t.Fatal(err)
	}

	c.Write(0x0000, 0x0A)
	for bank := uint8(0); bank < 4; bank++ {
		c.Write(0x4000, bank)
		c.Write(0xA000, 0x10+bank)
	}
	for bank := uint8(0); bank < 4; bank++ {
		c.Write(0x4000, bank)
		if got := c.Read(0xA000); got != 0x10+bank {
			t.Errorf("bank %d read 0x%02X", bank, got)
		}
	}

	// no clock on this cartridge
	c.Write(0x4000, rtcSeconds)
	if got := c.Read(0xA000); got != 0xFF {
		t.Errorf("RTC register read 0x%02X without a clock", got)
	}
}

func TestMBC3_RTC(t *testing.T) {
	c, err := New(makeROM(MBC3TIMERRAMBATT, 4, 0x03))
	if err != nil {
		t.Fatal(err)
	}
	m := c.(*MemoryBankedCartridge3)
	now := time.Unix(1_000_000, 0)
	m.now = func() time.Time { return now }
	m.rtc.last = now.Unix()

	latch := func() {
		c.Write(0x6000, 0x00)
		c.Write(0x6000, 0x01)
	}
	read := func(register uint8) uint8 {
		c.Write(0x4000, register)
		return c.Read(0xA000)
	}

	c.Write(0x0000, 0x0A)
	now = now.Add(time.Hour + time.Minute + 5*time.Second)
	latch()
	if ss, mm, hh := read(rtcSeconds), read(rtcMinutes), read(rtcHours); ss != 5 || mm != 1 || hh != 1 {
		t.Fatalf("latched %02d:%02d:%02d, want 01:01:05", hh, mm, ss)
	}

	// latched registers hold until the next latch
	now = now.Add(2 * time.Second)
	if got := read(rtcSeconds); got != 5 {
		t.Errorf("unlatched seconds %d", got)
	}

	// halting stops the clock
	c.Write(0x4000, rtcDaysHigh)
	c.Write(0xA000, types.Bit6)
	now = now.Add(100 * time.Second)
	latch()
	if got := read(rtcSeconds); got != 7 {
		t.Errorf("halted seconds %d, want 7", got)
	}
	if got := read(rtcDaysHigh); got != types.Bit6 {
		t.Errorf("days high 0x%02X, want halt flag", got)
	}

	// the day counter carries out of 9 bits
	c.Write(0x4000, rtcDaysLow)
	c.Write(0xA000, 0xFF)
	c.Write(0x4000, rtcDaysHigh)
	c.Write(0xA000, 0x01)
	now = now.Add(24 * time.Hour)
	latch()
	if got := read(rtcDaysLow); got != 0 {
		t.Errorf("days low %d after overflow", got)
	}
	if got := read(rtcDaysHigh); got != types.Bit7 {
		t.Errorf("days high 0x%02X, want carry flag", got)
	}
}

func TestMBC5_ROMBanking(t *testing.T) {
	c, err := New(makeROM(MBC5, 512, 0))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		low, high uint8
		want      uint16
	}{
		{0x00, 0, 0}, // bank 0 is allowed
		{0x01, 0, 1},
		{0xFF, 0, 255},
		{0x00, 1, 256},
		{0x23, 1, 0x123},
		{0xFF, 3, 511}, // only bit 0 of the high register used
	}
	for _, tt := range tests {
		c.Write(0x2000, tt.low)
		c.Write(0x3000, tt.high)
		got := uint16(c.Read(0x4000)) | uint16(c.Read(0x4001))<<8
		if got != tt.want {
			t.Errorf("low=0x%02X high=%d: bank %d, want %d", tt.low, tt.high, got, tt.want)
		}
	}
}

func TestMBC5_RAM(t *testing.T) {
	c, err := New(makeROM(MBC5RUMBLERAMBATT, 4, 0x04))
	if err != nil {
		t.Fatal(err)
	}
	m := c.(*MemoryBankedCartridge5)

	c.Write(0x0000, 0x0A)
	c.Write(0x4000, 0x0A) // bank 2, motor on
	c.Write(0xA000, 0x42)
	if !m.Rumbling() {
		t.Error("motor off after setting bit 3")
	}
	if got := m.RAM()[2*0x2000]; got != 0x42 {
		t.Errorf("bank 2 holds 0x%02X", got)
	}

	c.Write(0x4000, 0x02)
	if m.Rumbling() {
		t.Error("motor on after clearing bit 3")
	}
	if got := c.Read(0xA000); got != 0x42 {
		t.Errorf("bank 2 read 0x%02X", got)
	}
}

func TestCartridge_SaveLoad(t *testing.T) {
	type write struct {
		address uint16
		value   uint8
	}
	tests := []struct {
		name           string
		rom            []byte
		setup, clobber []write
	}{
		{
			name:    "ROM+RAM",
			rom:     makeROM(ROMRAM, 2, 0x02),
			setup:   []write{{0xA000, 0x42}},
			clobber: []write{{0xA000, 0x00}},
		},
		{
			name:    "MBC1",
			rom:     makeROM(MBC1RAMBATT, 64, 0x03),
			setup:   []write{{0x0000, 0x0A}, {0x2000, 5}, {0xA000, 0x33}},
			clobber: []write{{0x2000, 7}, {0xA000, 0x00}, {0x6000, 1}, {0x0000, 0x00}},
		},
		{
			name:    "MBC2",
			rom:     makeROM(MBC2BATT, 16, 0),
			setup:   []write{{0x0000, 0x0A}, {0x2100, 3}, {0xA000, 0x05}},
			clobber: []write{{0x2100, 9}, {0xA000, 0x00}, {0x0000, 0x00}},
		},
		{
			name:    "MBC3",
			rom:     makeROM(MBC3RAMBATT, 128, 0x03),
			setup:   []write{{0x0000, 0x0A}, {0x2000, 0x45}, {0x4000, 2}, {0xA000, 0x77}},
			clobber: []write{{0x2000, 3}, {0x4000, 0}, {0xA000, 0x01}},
		},
		{
			name:    "MBC5",
			rom:     makeROM(MBC5RAMBATT, 512, 0x04),
			setup:   []write{{0x0000, 0x0A}, {0x2000, 0x23}, {0x3000, 1}, {0x4000, 5}, {0xA000, 0x66}},
			clobber: []write{{0x3000, 0}, {0x2000, 1}, {0x4000, 0}, {0xA000, 0x00}},
		},
	}
	addresses := []uint16{0x0000, 0x4000, 0x4001, 0xA000}
	readAll := func(c Cartridge) []uint8 {
		var out []uint8
		for _, a := range addresses {
			out = append(out, c.Read(a))
		}
		return out
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.rom)
			if err != nil {
				t.Fatal(err)
			}
			for _, w := range tt.setup {
				c.Write(w.address, w.value)
			}
			want := readAll(c)

			s := types.NewState()
			c.(types.Stater).Save(s)
			for _, w := range tt.clobber {
				c.Write(w.address, w.value)
			}
			if diff := cmp.Diff(want, readAll(c)); diff == "" {
				t.Fatal("clobber writes changed nothing")
			}

			c.(types.Stater).Load(types.StateFromBytes(s.Bytes()))
			if diff := cmp.Diff(want, readAll(c)); diff != "" {
				t.Errorf("restored reads mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMBC3_SaveLoadClock(t *testing.T) {
	c, err := New(makeROM(MBC3TIMERBATT, 4, 0))
	if err != nil {
		t.Fatal(err)
	}
	m := c.(*MemoryBankedCartridge3)
	now := time.Unix(5_000, 0)
	m.now = func() time.Time { return now }
	m.rtc.last = now.Unix()

	c.Write(0x0000, 0x0A)
	c.Write(0x4000, rtcMinutes)
	c.Write(0xA000, 30)
	c.Write(0x6000, 0x00)
	c.Write(0x6000, 0x01)

	s := types.NewState()
	m.Save(s)
	c.Write(0xA000, 10)
	c.Write(0x6000, 0x00)
	c.Write(0x6000, 0x01)
	if got := c.Read(0xA000); got != 10 {
		t.Fatalf("minutes %d after write", got)
	}

	m.Load(types.StateFromBytes(s.Bytes()))
	if got := c.Read(0xA000); got != 30 {
		t.Errorf("restored latched minutes %d, want 30", got)
	}
	if m.rtc.minutes != 30 || m.rtc.last != now.Unix() {
		t.Errorf("restored clock %d minutes at %d", m.rtc.minutes, m.rtc.last)
	}
}
