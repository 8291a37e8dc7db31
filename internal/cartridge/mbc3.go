package cartridge

import (
	"time"

	"github.com/thelolagemann/gbbus/internal/types"
)

// RTC registers, selected by writing to 0x4000 - 0x5FFF.
const (
	rtcSeconds  = 0x08
	rtcMinutes  = 0x09
	rtcHours    = 0x0A
	rtcDaysLow  = 0x0B
	rtcDaysHigh = 0x0C
)

// MemoryBankedCartridge3 represents an MBC3 cartridge. It supports up
// to 2MB of ROM, 32kB of RAM and, on timer variants, a real time clock.
type MemoryBankedCartridge3 struct {
	rom []byte
	ram []byte

	romBank    uint8 // 7 bits
	ramBank    uint8 // 0x00 - 0x03 selects RAM, 0x08 - 0x0C an RTC register
	ramEnabled bool

	hasRTC     bool
	rtc        clock
	latched    [5]uint8
	latchWrite uint8 // last value written to 0x6000 - 0x7FFF

	now    func() time.Time
	header Header
}

// NewMemoryBankedCartridge3 returns a new MemoryBankedCartridge3 cartridge.
func NewMemoryBankedCartridge3(rom []byte, header Header) *MemoryBankedCartridge3 {
	m := &MemoryBankedCartridge3{
		rom:        rom,
		ram:        make([]byte, header.RAMSize),
		romBank:    1,
		latchWrite: 0xFF,
		now:        time.Now,
		header:     header,
	}
	switch header.CartridgeType {
	case MBC3TIMERBATT, MBC3TIMERRAMBATT:
		m.hasRTC = true
	}
	m.rtc.last = m.now().Unix()
	return m
}

// Read returns the value from the cartridges ROM, RAM or latched RTC
// register, depending on the bank selected.
func (m *MemoryBankedCartridge3) Read(address uint16) uint8 {
	switch {
	case address < 0x4000:
		return romByte(m.rom, 0, address)
	case address < 0x8000:
		return romByte(m.rom, int(m.romBank), address)
	}

	if !m.ramEnabled {
		return 0xFF
	}
	if m.ramBank >= rtcSeconds {
		if m.hasRTC && m.ramBank <= rtcDaysHigh {
			return m.latched[m.ramBank-rtcSeconds]
		}
		return 0xFF
	}
	if len(m.ram) == 0 {
		return 0xFF
	}
	return m.ram[ramOffset(m.ram, int(m.ramBank), address)]
}

// Write attempts to switch the ROM or RAM bank, latch the clock, or
// writes to the selected RAM bank or RTC register.
func (m *MemoryBankedCartridge3) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case address < 0x4000:
		m.romBank = value & 0x7F
		if m.romBank == 0 {
			m.romBank = 1
		}
	case address < 0x6000:
		m.ramBank = value & 0x0F
	case address < 0x8000:
		// writing 0x00 then 0x01 copies the clock into the latched registers
		if m.hasRTC && m.latchWrite == 0x00 && value == 0x01 {
			m.rtc.advance(m.now().Unix())
			m.latched = m.rtc.registers()
		}
		m.latchWrite = value
	default:
		if !m.ramEnabled {
			return
		}
		if m.ramBank >= rtcSeconds {
			if m.hasRTC && m.ramBank <= rtcDaysHigh {
				m.rtc.advance(m.now().Unix())
				m.rtc.set(m.ramBank, value)
			}
			return
		}
		if len(m.ram) > 0 {
			m.ram[ramOffset(m.ram, int(m.ramBank), address)] = value
		}
	}
}

// Header returns the parsed cartridge header.
func (m *MemoryBankedCartridge3) Header() Header {
	return m.header
}

// RAM returns the RAM of the cartridge.
func (m *MemoryBankedCartridge3) RAM() []byte {
	return m.ram
}

// LoadRAM loads the RAM of the cartridge.
func (m *MemoryBankedCartridge3) LoadRAM(data []byte) {
	copy(m.ram, data)
}

var _ types.Stater = (*MemoryBankedCartridge3)(nil)

// Save implements the types.Stater interface.
//
// The values are saved in the following order:
//   - RAM (header RAM size)
//   - romBank, ramBank, latchWrite (uint8)
//   - ramEnabled (bool)
//   - latched RTC registers (5 bytes)
//   - clock (see clock.save)
func (m *MemoryBankedCartridge3) Save(s *types.State) {
	s.WriteData(m.ram)
	s.Write8(m.romBank)
	s.Write8(m.ramBank)
	s.Write8(m.latchWrite)
	s.WriteBool(m.ramEnabled)
	s.WriteData(m.latched[:])
	m.rtc.save(s)
}

// Load implements the types.Stater interface.
func (m *MemoryBankedCartridge3) Load(s *types.State) {
	s.ReadData(m.ram)
	m.romBank = s.Read8()
	m.ramBank = s.Read8()
	m.latchWrite = s.Read8()
	m.ramEnabled = s.ReadBool()
	s.ReadData(m.latched[:])
	m.rtc.load(s)
}

// clock is the MBC3 real time clock. The counters are brought up to
// date lazily, whenever they are latched or written.
type clock struct {
	seconds, minutes, hours uint8
	days                    uint16 // 9 bits

	halted bool
	carry  bool // day counter overflowed

	last int64 // unix time the counters were last advanced
}

// advance moves the counters forward to now, unless the clock is halted.
func (c *clock) advance(now int64) {
	elapsed := now - c.last
	c.last = now
	if c.halted || elapsed <= 0 {
		return
	}

	total := elapsed + int64(c.seconds) + int64(c.minutes)*60 + int64(c.hours)*3600 + int64(c.days)*86400
	c.seconds = uint8(total % 60)
	total /= 60
	c.minutes = uint8(total % 60)
	total /= 60
	c.hours = uint8(total % 24)
	total /= 24
	if total > 0x1FF {
		c.carry = true
		total &= 0x1FF
	}
	c.days = uint16(total)
}

func (c *clock) registers() [5]uint8 {
	high := uint8(c.days>>8) & 0x01
	if c.halted {
		high |= types.Bit6
	}
	if c.carry {
		high |= types.Bit7
	}
	return [5]uint8{c.seconds, c.minutes, c.hours, uint8(c.days), high}
}

func (c *clock) set(register, value uint8) {
	switch register {
	case rtcSeconds:
		c.seconds = value & 0x3F
	case rtcMinutes:
		c.minutes = value & 0x3F
	case rtcHours:
		c.hours = value & 0x1F
	case rtcDaysLow:
		c.days = c.days&0x100 | uint16(value)
	case rtcDaysHigh:
		c.days = c.days&0xFF | uint16(value&0x01)<<8
		c.halted = value&types.Bit6 != 0
		c.carry = value&types.Bit7 != 0
	}
}

func (c *clock) save(s *types.State) {
	regs := c.registers()
	s.WriteData(regs[:])
	s.Write32(uint32(uint64(c.last) >> 32))
	s.Write32(uint32(c.last))
}

func (c *clock) load(s *types.State) {
	var regs [5]uint8
	s.ReadData(regs[:])
	for i, v := range regs {
		c.set(rtcSeconds+uint8(i), v)
	}
	high := uint64(s.Read32())
	c.last = int64(high<<32 | uint64(s.Read32()))
}
