// Package cartridge provides the cartridges the system bus maps at
// 0x0000 - 0x7FFF and 0xA000 - 0xBFFF. The cartridge holds the game
// ROM and any external RAM.
package cartridge

import (
	"github.com/pkg/errors"
)

// Cartridge represents a basic game cartridge.
type Cartridge interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)

	Header() Header
}

// Battery is implemented by cartridges whose RAM outlives the
// console being powered off.
type Battery interface {
	RAM() []byte
	LoadRAM([]byte)
}

// New parses the header of rom and returns a cartridge of the type
// it declares.
func New(rom []byte) (Cartridge, error) {
	if len(rom) < 0x8000 {
		return nil, errors.Errorf("rom too small: %d bytes", len(rom))
	}
	header, err := parseHeader(rom[0x100:0x150])
	if err != nil {
		return nil, errors.Wrap(err, "parsing cartridge header")
	}

	switch header.CartridgeType {
	case ROM, ROMRAM, ROMRAMBATT:
		return NewROMCartridge(rom, header), nil
	case MBC1, MBC1RAM, MBC1RAMBATT:
		return NewMemoryBankedCartridge1(rom, header), nil
	case MBC2, MBC2BATT:
		return NewMemoryBankedCartridge2(rom, header), nil
	case MBC3, MBC3RAM, MBC3RAMBATT, MBC3TIMERBATT, MBC3TIMERRAMBATT:
		return NewMemoryBankedCartridge3(rom, header), nil
	case MBC5, MBC5RAM, MBC5RAMBATT, MBC5RUMBLE, MBC5RUMBLERAM, MBC5RUMBLERAMBATT:
		return NewMemoryBankedCartridge5(rom, header), nil
	}

	return nil, errors.Errorf("unsupported cartridge type %s", header.CartridgeType)
}

// romByte reads from the given 16kB ROM bank. Bank numbers past the
// end of the ROM wrap, as the unused bank lines are not connected.
func romByte(rom []byte, bank int, address uint16) uint8 {
	banks := len(rom) / 0x4000
	if banks == 0 {
		return 0xFF
	}
	return rom[(bank%banks)*0x4000+int(address&0x3FFF)]
}

// ramOffset returns the offset of address in the given 8kB RAM bank,
// wrapped to the RAM size.
func ramOffset(ram []byte, bank int, address uint16) int {
	return (bank*0x2000 + int(address&0x1FFF)) % len(ram)
}
