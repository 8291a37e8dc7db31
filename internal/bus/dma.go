package bus

import "github.com/thelolagemann/gbbus/internal/ppu"

// writeDMA starts an OAM DMA transfer. The transfer completes
// before the write returns: the 160 bytes at page<<8 are read
// through the bus, so any mapped source works, and written to OAM
// in order.
func (b *Bus) writeDMA(_ uint16, page uint8) {
	b.log.Debugf("bus: dma from 0x%02X00", page)
	source := uint16(page) << 8
	for i := uint16(0); i < ppu.OAMSize; i++ {
		b.video.WriteOAM(0xFE00+i, b.Read(source+i))
	}
}
