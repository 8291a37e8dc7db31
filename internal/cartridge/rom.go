package cartridge

import "github.com/thelolagemann/gbbus/internal/types"

// ROMCartridge represents a ROM cartridge. This cartridge type is the
// simplest cartridge type and has no MBC, with up to 8kB of optional
// RAM.
type ROMCartridge struct {
	rom    []byte
	ram    []byte
	header Header
}

// NewROMCartridge returns a new ROM cartridge.
func NewROMCartridge(rom []byte, header Header) *ROMCartridge {
	return &ROMCartridge{
		rom:    rom,
		ram:    make([]byte, header.RAMSize),
		header: header,
	}
}

// Read returns the value at the given address. Reads of missing RAM
// return 0xFF (open bus).
func (r *ROMCartridge) Read(address uint16) uint8 {
	if address < 0x8000 {
		if int(address) < len(r.rom) {
			return r.rom[address]
		}
		return 0xFF
	}
	offset := int(address - 0xA000)
	if offset < len(r.ram) {
		return r.ram[offset]
	}
	return 0xFF
}

// Write writes to cartridge RAM, if present. Writes to ROM are
// ignored.
func (r *ROMCartridge) Write(address uint16, value uint8) {
	if address < 0xA000 {
		return
	}
	offset := int(address - 0xA000)
	if offset < len(r.ram) {
		r.ram[offset] = value
	}
}

// Header returns the parsed cartridge header.
func (r *ROMCartridge) Header() Header {
	return r.header
}

// RAM returns the RAM of the cartridge, which may be empty.
func (r *ROMCartridge) RAM() []byte {
	return r.ram
}

// LoadRAM copies data into the cartridge RAM.
func (r *ROMCartridge) LoadRAM(data []byte) {
	copy(r.ram, data)
}

var _ types.Stater = (*ROMCartridge)(nil)

// Save implements the types.Stater interface. Only the RAM changes.
func (r *ROMCartridge) Save(s *types.State) {
	s.WriteData(r.ram)
}

// Load implements the types.Stater interface.
func (r *ROMCartridge) Load(s *types.State) {
	s.ReadData(r.ram)
}
