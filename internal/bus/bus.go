// Package bus provides the system bus of the Game Boy. The bus owns
// work RAM, high RAM, the interrupt registers and the video
// controller, and routes every 16-bit CPU address to exactly one of
// them, or to the cartridge, joypad or timer.
//
// References:
//   - [Pan Docs: Memory Map](https://gbdev.io/pandocs/Memory_Map.html)
package bus

import (
	"github.com/thelolagemann/gbbus/internal/interrupts"
	"github.com/thelolagemann/gbbus/internal/ppu"
	"github.com/thelolagemann/gbbus/internal/ram"
	"github.com/thelolagemann/gbbus/pkg/log"
)

const (
	// WRAMSize is the size of work RAM (8kB). The echo window at
	// 0xE000-0xFDFF aliases it.
	WRAMSize = 0x2000
	// HRAMSize is the size of the storage backing 0xFF80-0xFFFE.
	HRAMSize = 0x80
)

// Cartridge is the interface the bus uses to reach the ROM and
// external RAM windows.
type Cartridge interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// Ticker is a component that is advanced by the bus once per CPU
// step. Tick returns the interrupt bits latched so far, and
// ClearInterrupt clears that latch once the bus has merged it into
// IF.
type Ticker interface {
	Tick(cycles uint16) uint8
	ClearInterrupt()
}

// Device is a memory mapped peripheral that is also clocked by the
// bus, such as the joypad or the timer.
type Device interface {
	Cartridge
	Ticker
}

// Bus is the Game Boy system bus.
type Bus struct {
	regions []region

	cart  Cartridge
	video *ppu.PPU
	input Device
	timer Device

	// 0xC000 - 0xDFFF - Work RAM (8kB)
	// 0xE000 - 0xFDFF - Echo RAM
	wRAM *ram.RAM
	// 0xFF80 - 0xFFFE - High RAM (127B)
	hRAM *ram.RAM

	// 0xFF0F - IF, 0xFFFF - IE
	irq *interrupts.Service

	log         log.Logger
	logUnmapped bool
}

// Opt configures a Bus.
type Opt func(b *Bus)

// WithLogger sets the logger used by the bus.
func WithLogger(l log.Logger) Opt {
	return func(b *Bus) {
		b.log = l
	}
}

// LogUnmapped logs every access that falls outside of the memory
// map at debug level.
func LogUnmapped() Opt {
	return func(b *Bus) {
		b.logUnmapped = true
	}
}

// WithPPU replaces the video controller created by New. It is
// mostly useful to attach a frame sink or a custom renderer.
func WithPPU(p *ppu.PPU) Opt {
	return func(b *Bus) {
		b.video = p
	}
}

// New returns a new Bus connected to the given cartridge, joypad
// and timer. Work RAM, high RAM and the interrupt registers start
// zeroed; call Init to apply the post boot register values.
func New(cart Cartridge, input, timer Device, opts ...Opt) *Bus {
	b := &Bus{
		cart:  cart,
		input: input,
		timer: timer,
		wRAM:  ram.New(WRAMSize),
		hRAM:  ram.New(HRAMSize),
		irq:   interrupts.NewService(),
		log:   log.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.video == nil {
		b.video = ppu.New(ppu.WithLogger(b.log))
	}
	b.regions = b.memoryMap()

	return b
}

// Read returns the byte visible at address. Reading an address
// that nothing is mapped to returns 0.
func (b *Bus) Read(address uint16) uint8 {
	if r := b.lookup(address); r != nil && r.read != nil {
		return r.read(address)
	}
	if b.logUnmapped {
		b.log.Debugf("bus: unmapped read at 0x%04X", address)
	}
	return 0
}

// Write writes value to address. Writes to addresses that nothing
// is mapped to are discarded.
func (b *Bus) Write(address uint16, value uint8) {
	if r := b.lookup(address); r != nil && r.write != nil {
		r.write(address, value)
		return
	}
	if b.logUnmapped {
		b.log.Debugf("bus: unmapped write 0x%02X at 0x%04X", value, address)
	}
}

// ReadWord reads a little endian word from address and address+1.
// The second address wraps from 0xFFFF to 0x0000.
func (b *Bus) ReadWord(address uint16) uint16 {
	return uint16(b.Read(address)) | uint16(b.Read(address+1))<<8
}

// WriteWord writes a little endian word to address and address+1,
// low byte first.
func (b *Bus) WriteWord(address uint16, value uint16) {
	b.Write(address, uint8(value))
	b.Write(address+1, uint8(value>>8))
}

// Interrupts returns the interrupt registers, for the CPU to
// service.
func (b *Bus) Interrupts() *interrupts.Service {
	return b.irq
}

// PPU returns the video controller owned by the bus.
func (b *Bus) PPU() *ppu.PPU {
	return b.video
}
