package cartridge

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Flag is the CGB compatibility byte at 0x0143.
type Flag uint8

const (
	FlagOnlyDMG Flag = iota
	FlagSupportsCGB
	FlagOnlyCGB
)

// ramSizes maps the RAM size code at 0x0149 to bytes. Code 0x01 was
// never used by a licensed cartridge and is treated as no RAM.
var ramSizes = [...]uint{0, 0, 8 << 10, 32 << 10, 128 << 10, 64 << 10}

// Type is the cartridge type byte at 0x0147, naming the memory bank
// controller and any extra hardware on the board.
type Type uint8

const (
	ROM               Type = 0x00
	MBC1              Type = 0x01
	MBC1RAM           Type = 0x02
	MBC1RAMBATT       Type = 0x03
	MBC2              Type = 0x05
	MBC2BATT          Type = 0x06
	ROMRAM            Type = 0x08
	ROMRAMBATT        Type = 0x09
	MMM01             Type = 0x0B
	MMM01RAM          Type = 0x0C
	MMM01RAMBATT      Type = 0x0D
	MBC3TIMERBATT     Type = 0x0F
	MBC3TIMERRAMBATT  Type = 0x10
	MBC3              Type = 0x11
	MBC3RAM           Type = 0x12
	MBC3RAMBATT       Type = 0x13
	MBC5              Type = 0x19
	MBC5RAM           Type = 0x1A
	MBC5RAMBATT       Type = 0x1B
	MBC5RUMBLE        Type = 0x1C
	MBC5RUMBLERAM     Type = 0x1D
	MBC5RUMBLERAMBATT Type = 0x1E
	POCKETCAMERA      Type = 0x1F
	BANDAITAMA5       Type = 0xFD
	HUDSONHUC3        Type = 0xFE
	HUDSONHUC1        Type = 0xFF
)

// Header holds the decoded cartridge header found at 0x0100 - 0x014F.
// Offsets below are relative to 0x0100.
type Header struct {
	Title            string // 0x34, 16 bytes on DMG carts and 15 on CGB carts
	ManufacturerCode string // 0x3F, overlaps the end of long titles
	CartridgeGBMode  Flag   // 0x43
	NewLicenseeCode  string // 0x44
	SGBFlag          bool   // 0x46 == 0x03
	CartridgeType    Type   // 0x47
	ROMSize          uint   // 0x48, 32kB shifted left by the code
	RAMSize          uint   // 0x49, see ramSizes
	CountryCode      uint8  // 0x4A
	OldLicenseeCode  uint8  // 0x4B
	MaskROMVersion   uint8  // 0x4C
	HeaderChecksum   uint8  // 0x4D
	GlobalChecksum   uint16 // 0x4E, big endian

	raw [0x50]byte
}

// parseHeader decodes the 0x50 header bytes of a ROM.
func parseHeader(b []byte) (Header, error) {
	var h Header
	if len(b) != len(h.raw) {
		return h, errors.Errorf("header is %d bytes, want %d", len(b), len(h.raw))
	}
	copy(h.raw[:], b)

	title := b[0x34:0x44]
	switch b[0x43] {
	case 0x80:
		h.CartridgeGBMode = FlagSupportsCGB
		title = title[:15]
	case 0xC0:
		h.CartridgeGBMode = FlagOnlyCGB
		title = title[:15]
	}
	h.Title = cleanTitle(title)
	h.ManufacturerCode = string(b[0x3F:0x43])
	h.NewLicenseeCode = string(b[0x44:0x46])
	h.SGBFlag = b[0x46] == 0x03
	h.CartridgeType = Type(b[0x47])
	h.ROMSize = (32 << 10) << b[0x48]
	if code := int(b[0x49]); code < len(ramSizes) {
		h.RAMSize = ramSizes[code]
	}
	h.CountryCode = b[0x4A]
	h.OldLicenseeCode = b[0x4B]
	h.MaskROMVersion = b[0x4C]
	h.HeaderChecksum = b[0x4D]
	h.GlobalChecksum = uint16(b[0x4E])<<8 | uint16(b[0x4F])

	return h, nil
}

// ComputeChecksum computes the header checksum over 0x0134 - 0x014C,
// as the boot ROM does before handing over to the cartridge.
func (h *Header) ComputeChecksum() uint8 {
	var sum uint8
	for _, b := range h.raw[0x34:0x4D] {
		sum = sum - b - 1
	}
	return sum
}

// Valid reports whether the stored header checksum matches the
// header contents. The boot ROM locks up on a mismatch; the bus
// itself does not care.
func (h *Header) Valid() bool {
	return h.ComputeChecksum() == h.HeaderChecksum
}

func cleanTitle(b []byte) string {
	return strings.TrimRight(string(b), "\x00 ")
}

// GameboyColor reports whether the cartridge declares CGB support.
func (h *Header) GameboyColor() bool {
	return h.CartridgeGBMode == FlagOnlyCGB || h.CartridgeGBMode == FlagSupportsCGB
}

// Hardware names the model the cartridge targets.
func (h *Header) Hardware() string {
	if h.GameboyColor() {
		return "CGB"
	}
	return "DMG"
}

func (h *Header) String() string {
	return fmt.Sprintf("%q (%s) %s, %dkB ROM, %dkB RAM", h.Title, h.Hardware(), h.CartridgeType, h.ROMSize>>10, h.RAMSize>>10)
}

var typeNames = map[Type]string{
	ROM:               "ROM",
	MBC1:              "MBC1",
	MBC1RAM:           "MBC1+RAM",
	MBC1RAMBATT:       "MBC1+RAM+BATTERY",
	MBC2:              "MBC2",
	MBC2BATT:          "MBC2+BATTERY",
	ROMRAM:            "ROM+RAM",
	ROMRAMBATT:        "ROM+RAM+BATTERY",
	MBC3TIMERBATT:     "MBC3+TIMER+BATTERY",
	MBC3TIMERRAMBATT:  "MBC3+TIMER+RAM+BATTERY",
	MBC3:              "MBC3",
	MBC3RAM:           "MBC3+RAM",
	MBC3RAMBATT:       "MBC3+RAM+BATTERY",
	MBC5:              "MBC5",
	MBC5RAM:           "MBC5+RAM",
	MBC5RAMBATT:       "MBC5+RAM+BATTERY",
	MBC5RUMBLE:        "MBC5+RUMBLE",
	MBC5RUMBLERAM:     "MBC5+RUMBLE+RAM",
	MBC5RUMBLERAMBATT: "MBC5+RUMBLE+RAM+BATTERY",
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("Type(0x%02X)", uint8(t))
}

// HasBattery reports whether the cartridge keeps its RAM powered
// by a battery.
func (h *Header) HasBattery() bool {
	switch h.CartridgeType {
	case MBC1RAMBATT, MBC2BATT, ROMRAMBATT, MMM01RAMBATT, MBC3TIMERBATT,
		MBC3TIMERRAMBATT, MBC3RAMBATT, MBC5RAMBATT, MBC5RUMBLERAMBATT:
		return true
	}
	return false
}
