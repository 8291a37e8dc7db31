// Package ppu holds the state of the Game Boy's (P)ixel (P)rocessing
// (U)nit that is visible on the system bus: the LCD register file,
// video RAM and the sprite attribute table (OAM).
//
// How the state evolves over time is delegated to a Renderer, which
// is advanced once per CPU step through Tick.
//
// References:
//   - [Pan Docs](https://gbdev.io/pandocs/Graphics.html)
package ppu

import (
	"github.com/thelolagemann/gbbus/internal/types"
	"github.com/thelolagemann/gbbus/pkg/log"
)

const (
	// ScreenWidth is the width of the screen in pixels.
	ScreenWidth = 160
	// ScreenHeight is the height of the screen in pixels.
	ScreenHeight = 144

	// VRAMSize is the size of video RAM (8kB).
	VRAMSize = 0x2000
	// OAMSize is the size of the sprite attribute table (40 * 4B).
	OAMSize = 0xA0
)

// LYReadValue is returned by every read of LY, whatever line is
// actually being drawn. Software that reads LY sees the PPU parked in
// V-Blank; the value written to or maintained in LY is kept
// internally and drives the renderer.
const LYReadValue = 148

// Registers is the LCD register file.
type Registers struct {
	LCDC uint8 // 0xFF40
	STAT uint8 // 0xFF41
	SCY  uint8 // 0xFF42
	SCX  uint8 // 0xFF43
	LY   uint8 // 0xFF44
	LYC  uint8 // 0xFF45
	BGP  uint8 // 0xFF47
	OBP0 uint8 // 0xFF48
	OBP1 uint8 // 0xFF49
	WY   uint8 // 0xFF4A
	WX   uint8 // 0xFF4B
}

// PPU owns the LCD registers, VRAM and OAM.
type PPU struct {
	Registers

	vRAM [VRAMSize]uint8
	oam  [OAMSize]uint8

	// interrupt bits requested by the renderer since the last
	// ClearInterrupt
	interrupt uint8

	renderer Renderer
	frames   chan<- *Frame
	frameNum uint64

	log log.Logger
}

// Opt configures a PPU.
type Opt func(p *PPU)

// WithRenderer replaces the default Scanline renderer.
func WithRenderer(r Renderer) Opt {
	return func(p *PPU) {
		p.renderer = r
	}
}

// WithFrameSink sets the channel completed frames are published
// on. Frames are dropped if the channel is full.
func WithFrameSink(frames chan<- *Frame) Opt {
	return func(p *PPU) {
		p.frames = frames
	}
}

// WithLogger sets the logger used by the PPU.
func WithLogger(l log.Logger) Opt {
	return func(p *PPU) {
		p.log = l
	}
}

// New returns a new PPU with zeroed memory and registers.
func New(opts ...Opt) *PPU {
	p := &PPU{
		log: log.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.renderer == nil {
		p.renderer = NewScanline()
	}
	return p
}

// ReadRegister returns the value of the LCD register at address.
// Reading an address that is not one of the eleven LCD registers
// is fatal.
func (p *PPU) ReadRegister(address uint16) uint8 {
	switch address {
	case types.LCDC:
		return p.LCDC
	case types.STAT:
		return p.STAT
	case types.SCY:
		return p.SCY
	case types.SCX:
		return p.SCX
	case types.LY:
		return LYReadValue
	case types.LYC:
		return p.LYC
	case types.BGP:
		return p.BGP
	case types.OBP0:
		return p.OBP0
	case types.OBP1:
		return p.OBP1
	case types.WY:
		return p.WY
	case types.WX:
		return p.WX
	}

	types.Fatal(types.UnknownRegisterAccess, address, false)
	return 0
}

// WriteRegister sets the LCD register at address. Writing an address
// that is not one of the eleven LCD registers is fatal.
func (p *PPU) WriteRegister(address uint16, value uint8) {
	switch address {
	case types.LCDC:
		p.LCDC = value
	case types.STAT:
		p.STAT = value
	case types.SCY:
		p.SCY = value
	case types.SCX:
		p.SCX = value
	case types.LY:
		p.LY = value
	case types.LYC:
		p.LYC = value
	case types.BGP:
		p.BGP = value
	case types.OBP0:
		p.OBP0 = value
	case types.OBP1:
		p.OBP1 = value
	case types.WY:
		p.WY = value
	case types.WX:
		p.WX = value
	default:
		types.Fatal(types.UnknownRegisterAccess, address, true)
	}
}

// ReadVRAM returns the byte of video RAM at address & 0x1FFF.
func (p *PPU) ReadVRAM(address uint16) uint8 {
	return p.vRAM[address&0x1FFF]
}

// WriteVRAM sets the byte of video RAM at address & 0x1FFF.
func (p *PPU) WriteVRAM(address uint16, value uint8) {
	p.vRAM[address&0x1FFF] = value
}

// ReadOAM returns the byte of OAM at the low 8 bits of address.
// Offsets past the end of the table wrap around.
func (p *PPU) ReadOAM(address uint16) uint8 {
	return p.oam[oamIndex(address)]
}

// WriteOAM sets the byte of OAM at the low 8 bits of address.
func (p *PPU) WriteOAM(address uint16, value uint8) {
	p.oam[oamIndex(address)] = value
}

func oamIndex(address uint16) uint16 {
	return (address & 0xFF) % OAMSize
}

// VRAM returns the video RAM, for renderers.
func (p *PPU) VRAM() *[VRAMSize]uint8 {
	return &p.vRAM
}

// OAM returns the sprite attribute table, for renderers.
func (p *PPU) OAM() *[OAMSize]uint8 {
	return &p.oam
}

// RequestInterrupt latches the given interrupt bits until the bus
// collects them.
func (p *PPU) RequestInterrupt(flags uint8) {
	p.interrupt |= flags
}

// Tick advances the renderer by the given number of M-cycles and
// returns the interrupt bits latched so far.
func (p *PPU) Tick(cycles uint16) uint8 {
	p.renderer.Step(p, cycles)
	return p.interrupt
}

// ClearInterrupt resets the latched interrupt bits.
func (p *PPU) ClearInterrupt() {
	p.interrupt = 0
}

// PublishFrame hands a completed frame to the frame sink, if one is
// attached. The pixels are copied, so the caller may reuse its
// buffer immediately.
func (p *PPU) PublishFrame(pixels *[ScreenWidth * ScreenHeight]uint8) {
	p.frameNum++
	if p.frames == nil {
		return
	}

	f := &Frame{Number: p.frameNum, Pixels: *pixels}
	select {
	case p.frames <- f:
	default:
		p.log.Debugf("ppu: frame sink full, dropping frame %d", f.Number)
	}
}

// Frames returns the number of frames completed so far.
func (p *PPU) Frames() uint64 {
	return p.frameNum
}

var _ types.Stater = (*PPU)(nil)

// Save implements the types.Stater interface.
//
// The values are saved in the following order:
//   - LCDC, STAT, SCY, SCX, LY, LYC, BGP, OBP0, OBP1, WY, WX (uint8)
//   - VRAM (8kB)
//   - OAM (160B)
//   - the renderer, if it implements types.Stater
func (p *PPU) Save(s *types.State) {
	for _, r := range p.registers() {
		s.Write8(*r)
	}
	s.WriteData(p.vRAM[:])
	s.WriteData(p.oam[:])
	if st, ok := p.renderer.(types.Stater); ok {
		st.Save(s)
	}
}

// Load implements the types.Stater interface.
func (p *PPU) Load(s *types.State) {
	for _, r := range p.registers() {
		*r = s.Read8()
	}
	s.ReadData(p.vRAM[:])
	s.ReadData(p.oam[:])
	if st, ok := p.renderer.(types.Stater); ok {
		st.Load(s)
	}
}

func (p *PPU) registers() []*uint8 {
	r := &p.Registers
	return []*uint8{&r.LCDC, &r.STAT, &r.SCY, &r.SCX, &r.LY, &r.LYC, &r.BGP, &r.OBP0, &r.OBP1, &r.WY, &r.WX}
}
