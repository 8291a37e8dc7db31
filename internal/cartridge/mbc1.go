package cartridge

import "github.com/thelolagemann/gbbus/internal/types"

// MemoryBankedCartridge1 represents an MBC1 cartridge. It supports up
// to 2MB of ROM in 16kB banks, and up to 32kB of RAM in 8kB banks.
type MemoryBankedCartridge1 struct {
	rom []byte
	ram []byte

	bank1 uint8 // lower 5 bits of the ROM bank
	bank2 uint8 // upper ROM bits or RAM bank, depending on mode

	ramEnabled bool
	// advanced banking mode: bank2 also applies to 0x0000 - 0x3FFF
	// and to RAM
	mode bool

	header Header
}

// NewMemoryBankedCartridge1 returns a new MemoryBankedCartridge1 cartridge.
func NewMemoryBankedCartridge1(rom []byte, header Header) *MemoryBankedCartridge1 {
	return &MemoryBankedCartridge1{
		rom:    rom,
		ram:    make([]byte, header.RAMSize),
		bank1:  1,
		header: header,
	}
}

// Read returns the value from the cartridges ROM or RAM, depending on the bank
// selected.
func (m *MemoryBankedCartridge1) Read(address uint16) uint8 {
	switch {
	case address < 0x4000:
		var bank int
		if m.mode {
			bank = int(m.bank2) << 5
		}
		return romByte(m.rom, bank, address)
	case address < 0x8000:
		return romByte(m.rom, int(m.bank2)<<5|int(m.bank1), address)
	}

	if !m.ramEnabled || len(m.ram) == 0 {
		return 0xFF
	}
	return m.ram[m.ramOffset(address)]
}

// Write attempts to switch the ROM or RAM bank, or writes to the
// selected RAM bank.
func (m *MemoryBankedCartridge1) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case address < 0x4000:
		m.bank1 = value & 0x1F
		if m.bank1 == 0 {
			m.bank1 = 1
		}
	case address < 0x6000:
		m.bank2 = value & 0x03
	case address < 0x8000:
		m.mode = value&0x01 == 0x01
	default:
		if m.ramEnabled && len(m.ram) > 0 {
			m.ram[m.ramOffset(address)] = value
		}
	}
}

func (m *MemoryBankedCartridge1) ramOffset(address uint16) int {
	var bank int
	if m.mode {
		bank = int(m.bank2)
	}
	return ramOffset(m.ram, bank, address)
}

// Header returns the parsed cartridge header.
func (m *MemoryBankedCartridge1) Header() Header {
	return m.header
}

// RAM returns the RAM of the cartridge.
func (m *MemoryBankedCartridge1) RAM() []byte {
	return m.ram
}

// LoadRAM loads the RAM of the cartridge.
func (m *MemoryBankedCartridge1) LoadRAM(data []byte) {
	copy(m.ram, data)
}

var _ types.Stater = (*MemoryBankedCartridge1)(nil)

// Save implements the types.Stater interface.
//
// The values are saved in the following order:
//   - RAM (header RAM size)
//   - bank1, bank2 (uint8)
//   - ramEnabled, mode (bool)
func (m *MemoryBankedCartridge1) Save(s *types.State) {
	s.WriteData(m.ram)
	s.Write8(m.bank1)
	s.Write8(m.bank2)
	s.WriteBool(m.ramEnabled)
	s.WriteBool(m.mode)
}

// Load implements the types.Stater interface.
func (m *MemoryBankedCartridge1) Load(s *types.State) {
	s.ReadData(m.ram)
	m.bank1 = s.Read8()
	m.bank2 = s.Read8()
	m.ramEnabled = s.ReadBool()
	m.mode = s.ReadBool()
}
