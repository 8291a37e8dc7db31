package bus

import (
	"fmt"
	"sort"

	"github.com/thelolagemann/gbbus/internal/types"
)

// region is a half open address interval [start, end) and the
// handlers it dispatches to. A nil read yields 0, a nil write is
// discarded.
type region struct {
	start, end uint32
	name       string

	read  func(address uint16) uint8
	write func(address uint16, value uint8)
}

func (r *region) contains(address uint16) bool {
	return uint32(address) >= r.start && uint32(address) < r.end
}

// memoryMap builds the dispatch table. The regions are sorted by
// start address and never overlap, so an address resolves to at
// most one region. Anything between them, the unusable window at
// 0xFEA0-0xFEFF and the sound registers included, is unmapped.
func (b *Bus) memoryMap() []region {
	regions := []region{
		{start: types.ROMStart, end: types.ROMEnd + 1, name: "rom", read: b.cart.Read, write: b.cart.Write},
		{start: types.VRAMStart, end: types.VRAMEnd + 1, name: "vram", read: b.video.ReadVRAM, write: b.video.WriteVRAM},
		{start: types.ERAMStart, end: types.ERAMEnd + 1, name: "external ram", read: b.cart.Read, write: b.cart.Write},
		{start: types.WRAMStart, end: types.EchoEnd + 1, name: "wram", read: b.wRAM.Read, write: b.wRAM.Write},
		{start: types.OAMStart, end: types.OAMEnd + 1, name: "oam", read: b.video.ReadOAM, write: b.video.WriteOAM},
		{start: uint32(types.P1), end: uint32(types.SB), name: "joypad", read: b.input.Read, write: b.input.Write},
		{start: uint32(types.SB), end: uint32(types.SC) + 1, name: "serial", read: unsupported},
		{start: uint32(types.DIV), end: uint32(types.TAC) + 1, name: "timer", read: b.timer.Read, write: b.timer.Write},
		{start: uint32(types.IF), end: uint32(types.IF) + 1, name: "if", read: b.readIF, write: b.writeIF},
		{start: uint32(types.LCDC), end: uint32(types.DMA), name: "lcd", read: b.video.ReadRegister, write: b.video.WriteRegister},
		{start: uint32(types.DMA), end: uint32(types.DMA) + 1, name: "dma", read: b.video.ReadRegister, write: b.writeDMA},
		{start: uint32(types.BGP), end: uint32(types.WX) + 1, name: "lcd", read: b.video.ReadRegister, write: b.video.WriteRegister},
		{start: types.CGBIOStart, end: types.CGBIOEnd + 1, name: "cgb io", read: unsupported},
		{start: types.HRAMStart, end: types.HRAMEnd + 1, name: "hram", read: b.hRAM.Read, write: b.hRAM.Write},
		{start: uint32(types.IE), end: uint32(types.IE) + 1, name: "ie", read: b.readIE, write: b.writeIE},
	}
	for i := 1; i < len(regions); i++ {
		if regions[i].start < regions[i-1].end {
			panic(fmt.Sprintf("bus: region %s overlaps %s", regions[i].name, regions[i-1].name))
		}
	}
	return regions
}

// lookup returns the region containing address, or nil if the
// address is unmapped.
func (b *Bus) lookup(address uint16) *region {
	i := sort.Search(len(b.regions), func(i int) bool {
		return b.regions[i].end > uint32(address)
	})
	if i < len(b.regions) && b.regions[i].contains(address) {
		return &b.regions[i]
	}
	return nil
}

// unsupported is the read handler of hardware that exists on the
// device but is not emulated.
func unsupported(address uint16) uint8 {
	types.Fatal(types.UnsupportedFeatureAccess, address, false)
	return 0
}

func (b *Bus) readIF(uint16) uint8 {
	return b.irq.Flag
}

func (b *Bus) writeIF(_ uint16, value uint8) {
	b.irq.Flag = value
}

func (b *Bus) readIE(uint16) uint8 {
	return b.irq.Enable
}

func (b *Bus) writeIE(_ uint16, value uint8) {
	b.irq.Enable = value
}
