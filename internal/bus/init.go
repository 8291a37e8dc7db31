package bus

import "github.com/thelolagemann/gbbus/internal/types"

// RegisterValue is a single register write performed by Init.
type RegisterValue struct {
	Address types.HardwareAddress
	Value   uint8
}

// PowerOnTable holds the register values the boot ROM leaves
// behind on the original Game Boy, in the order Init writes them.
// The sound registers are unmapped, so their writes are discarded.
var PowerOnTable = []RegisterValue{
	{types.TIMA, 0x00},
	{types.TMA, 0x00},
	{types.TAC, 0x00},
	{0xFF10, 0x80}, // NR10
	{0xFF11, 0xBF}, // NR11
	{0xFF12, 0xF3}, // NR12
	{0xFF14, 0xBF}, // NR14
	{0xFF16, 0x3F}, // NR21
	{0xFF16, 0x3F}, // NR21
	{0xFF17, 0x00}, // NR22
	{0xFF19, 0xBF}, // NR24
	{0xFF1A, 0x7F}, // NR30
	{0xFF1B, 0xFF}, // NR31
	{0xFF1C, 0x9F}, // NR32
	{0xFF1E, 0xFF}, // NR34
	{0xFF20, 0xFF}, // NR41
	{0xFF21, 0x00}, // NR42
	{0xFF22, 0x00}, // NR43
	{0xFF23, 0xBF}, // NR44
	{0xFF24, 0x77}, // NR50
	{0xFF25, 0xF3}, // NR51
	{0xFF26, 0xF1}, // NR52
	{types.LCDC, 0x91},
	{types.SCY, 0x00},
	{types.SCX, 0x00},
	{types.LYC, 0x00},
	{types.BGP, 0xFC},
	{types.OBP0, 0xFF},
	{types.OBP1, 0xFF},
	{types.WY, 0x00},
	{types.WX, 0x00},
}

// Init writes PowerOnTable through the bus, leaving the machine as
// the boot ROM would.
func (b *Bus) Init() {
	for _, r := range PowerOnTable {
		b.Write(r.Address, r.Value)
	}
}
