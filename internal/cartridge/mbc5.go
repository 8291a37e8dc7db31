package cartridge

import "github.com/thelolagemann/gbbus/internal/types"

// MemoryBankedCartridge5 represents an MBC5 cartridge. It supports up
// to 8MB of ROM and 128kB of RAM. Unlike MBC1, bank 0 may be mapped
// into 0x4000 - 0x7FFF.
type MemoryBankedCartridge5 struct {
	rom []byte
	ram []byte

	romBank    uint16 // 9 bits
	ramBank    uint8  // 4 bits, 3 on rumble cartridges
	ramEnabled bool

	// rumble cartridges drive the motor from bit 3 of the RAM bank
	hasRumble bool
	motor     bool

	header Header
}

// NewMemoryBankedCartridge5 returns a new MemoryBankedCartridge5 cartridge.
func NewMemoryBankedCartridge5(rom []byte, header Header) *MemoryBankedCartridge5 {
	m := &MemoryBankedCartridge5{
		rom:     rom,
		ram:     make([]byte, header.RAMSize),
		romBank: 1,
		header:  header,
	}
	switch header.CartridgeType {
	case MBC5RUMBLE, MBC5RUMBLERAM, MBC5RUMBLERAMBATT:
		m.hasRumble = true
	}
	return m
}

// Read returns the value from the cartridges ROM or RAM, depending on the bank
// selected.
func (m *MemoryBankedCartridge5) Read(address uint16) uint8 {
	switch {
	case address < 0x4000:
		return romByte(m.rom, 0, address)
	case address < 0x8000:
		return romByte(m.rom, int(m.romBank), address)
	}

	if !m.ramEnabled || len(m.ram) == 0 {
		return 0xFF
	}
	return m.ram[ramOffset(m.ram, int(m.ramBank), address)]
}

// Write attempts to switch the ROM or RAM bank, or writes to the
// selected RAM bank.
func (m *MemoryBankedCartridge5) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case address < 0x3000:
		m.romBank = m.romBank&0x100 | uint16(value)
	case address < 0x4000:
		m.romBank = m.romBank&0xFF | uint16(value&0x01)<<8
	case address < 0x6000:
		m.ramBank = value & 0x0F
		if m.hasRumble {
			m.motor = value&types.Bit3 != 0
			m.ramBank &= 0x07
		}
	case address < 0x8000:
	default:
		if m.ramEnabled && len(m.ram) > 0 {
			m.ram[ramOffset(m.ram, int(m.ramBank), address)] = value
		}
	}
}

// Rumbling reports whether the rumble motor is switched on.
func (m *MemoryBankedCartridge5) Rumbling() bool {
	return m.motor
}

// Header returns the parsed cartridge header.
func (m *MemoryBankedCartridge5) Header() Header {
	return m.header
}

// RAM returns the RAM of the cartridge.
func (m *MemoryBankedCartridge5) RAM() []byte {
	return m.ram
}

// LoadRAM loads the RAM of the cartridge.
func (m *MemoryBankedCartridge5) LoadRAM(data []byte) {
	copy(m.ram, data)
}

var _ types.Stater = (*MemoryBankedCartridge5)(nil)

// Save implements the types.Stater interface.
//
// The values are saved in the following order:
//   - RAM (header RAM size)
//   - romBank (uint16)
//   - ramBank (uint8)
//   - ramEnabled, motor (bool)
func (m *MemoryBankedCartridge5) Save(s *types.State) {
	s.WriteData(m.ram)
	s.Write16(m.romBank)
	s.Write8(m.ramBank)
	s.WriteBool(m.ramEnabled)
	s.WriteBool(m.motor)
}

// Load implements the types.Stater interface.
func (m *MemoryBankedCartridge5) Load(s *types.State) {
	s.ReadData(m.ram)
	m.romBank = s.Read16()
	m.ramBank = s.Read8()
	m.ramEnabled = s.ReadBool()
	m.motor = s.ReadBool()
}
