package cartridge

import "github.com/thelolagemann/gbbus/internal/types"

// MemoryBankedCartridge2 represents an MBC2 cartridge. It supports up
// to 256kB of ROM and has 512x4 bits of RAM built into the controller.
type MemoryBankedCartridge2 struct {
	rom []byte
	ram [512]uint8 // only the lower nibble of each byte is stored

	romBank    uint8
	ramEnabled bool

	header Header
}

// NewMemoryBankedCartridge2 returns a new MemoryBankedCartridge2 cartridge.
func NewMemoryBankedCartridge2(rom []byte, header Header) *MemoryBankedCartridge2 {
	return &MemoryBankedCartridge2{
		rom:     rom,
		romBank: 1,
		header:  header,
	}
}

// Read returns the value from the cartridges ROM or RAM. The RAM is
// mirrored through 0xA000 - 0xBFFF, and the upper nibble reads as 1s.
func (m *MemoryBankedCartridge2) Read(address uint16) uint8 {
	switch {
	case address < 0x4000:
		return romByte(m.rom, 0, address)
	case address < 0x8000:
		return romByte(m.rom, int(m.romBank), address)
	}

	if !m.ramEnabled {
		return 0xFF
	}
	return m.ram[address&0x1FF] | 0xF0
}

// Write handles writes to the controller and its RAM. In 0x0000 -
// 0x3FFF, bit 8 of the address selects between the RAM enable
// register (clear) and the ROM bank register (set).
func (m *MemoryBankedCartridge2) Write(address uint16, value uint8) {
	switch {
	case address < 0x4000:
		if address&0x100 == 0 {
			m.ramEnabled = value&0x0F == 0x0A
			return
		}
		m.romBank = value & 0x0F
		if m.romBank == 0 {
			m.romBank = 1
		}
	case address < 0x8000:
	default:
		if m.ramEnabled {
			m.ram[address&0x1FF] = value & 0x0F
		}
	}
}

// Header returns the parsed cartridge header.
func (m *MemoryBankedCartridge2) Header() Header {
	return m.header
}

// RAM returns the built in RAM of the controller.
func (m *MemoryBankedCartridge2) RAM() []byte {
	return m.ram[:]
}

// LoadRAM loads the RAM of the cartridge.
func (m *MemoryBankedCartridge2) LoadRAM(data []byte) {
	copy(m.ram[:], data)
	for i := range m.ram {
		m.ram[i] &= 0x0F
	}
}

var _ types.Stater = (*MemoryBankedCartridge2)(nil)

// Save implements the types.Stater interface.
func (m *MemoryBankedCartridge2) Save(s *types.State) {
	s.WriteData(m.ram[:])
	s.Write8(m.romBank)
	s.WriteBool(m.ramEnabled)
}

// Load implements the types.Stater interface.
func (m *MemoryBankedCartridge2) Load(s *types.State) {
	s.ReadData(m.ram[:])
	m.romBank = s.Read8()
	m.ramEnabled = s.ReadBool()
}
