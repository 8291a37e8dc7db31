package ppu

import (
	"sort"

	"github.com/thelolagemann/gbbus/internal/interrupts"
	"github.com/thelolagemann/gbbus/internal/ppu/lcd"
	"github.com/thelolagemann/gbbus/internal/ppu/palette"
	"github.com/thelolagemann/gbbus/internal/types"
)

// Renderer advances the video state machine. Step is called once per
// CPU step with the elapsed M-cycles; it may update any register in
// p.Registers, request interrupts and publish frames.
type Renderer interface {
	Step(p *PPU, cycles uint16)
}

const (
	// durations in M-cycles (1 M-cycle = 4 dots)
	oamCycles      = 20
	transferCycles = 43
	lineCycles     = 114

	visibleLines = ScreenHeight
	totalLines   = 154

	maxSpritesPerLine = 10
)

// Scanline is a line based renderer. Each visible line runs through
// OAM search, pixel transfer and H-Blank, and is drawn in one go at
// the end of the transfer. Lines 144-153 are V-Blank.
type Scanline struct {
	cycles     uint16 // M-cycles into the current line
	enabled    bool
	windowLine uint8
	statLine   bool

	frame [ScreenWidth * ScreenHeight]uint8
	// colour numbers of the background on the current line, for
	// sprite priority
	bgColour [ScreenWidth]uint8
}

// NewScanline returns a new Scanline renderer.
func NewScanline() *Scanline {
	return &Scanline{}
}

// Step implements Renderer.
func (s *Scanline) Step(p *PPU, cycles uint16) {
	if !types.Test(p.LCDC, types.Bit7) {
		if s.enabled {
			// turning the LCD off resets LY and parks the PPU in H-Blank
			s.enabled = false
			s.cycles = 0
			p.LY = 0
			p.STAT = lcd.SetMode(p.STAT, lcd.HBlank)
			s.statLine = false
		}
		return
	}
	if !s.enabled {
		s.enabled = true
		s.cycles = 0
		s.windowLine = 0
		p.LY = 0
		s.setMode(p, lcd.OAM)
	}

	for ; cycles > 0; cycles-- {
		s.tick(p)
	}
}

func (s *Scanline) tick(p *PPU) {
	s.cycles++

	if p.LY < visibleLines {
		switch s.cycles {
		case oamCycles:
			s.setMode(p, lcd.VRAM)
		case oamCycles + transferCycles:
			s.renderLine(p)
			s.setMode(p, lcd.HBlank)
		case lineCycles:
			s.nextLine(p)
		}
		return
	}

	if s.cycles == lineCycles {
		s.nextLine(p)
	}
}

func (s *Scanline) nextLine(p *PPU) {
	s.cycles = 0
	p.LY++

	switch {
	case p.LY == visibleLines:
		s.setMode(p, lcd.VBlank)
		p.RequestInterrupt(interrupts.VBlankFlag)
		p.PublishFrame(&s.frame)
	case p.LY >= totalLines:
		p.LY = 0
		s.windowLine = 0
		s.setMode(p, lcd.OAM)
	case p.LY < visibleLines:
		s.setMode(p, lcd.OAM)
	default:
		s.updateStat(p)
	}
}

func (s *Scanline) setMode(p *PPU, mode lcd.Mode) {
	p.STAT = lcd.SetMode(p.STAT, mode)
	s.updateStat(p)
}

// updateStat refreshes the coincidence flag and requests the LCD STAT
// interrupt on a rising edge of the STAT interrupt line.
func (s *Scanline) updateStat(p *PPU) {
	p.STAT = lcd.SetCoincidence(p.STAT, p.LY == p.LYC)

	line := lcd.InterruptLine(p.STAT)
	if line && !s.statLine {
		p.RequestInterrupt(interrupts.LCDFlag)
	}
	s.statLine = line
}

func (s *Scanline) renderLine(p *PPU) {
	c := lcd.Decode(p.LCDC)
	vram := p.VRAM()
	ly := p.LY
	row := s.frame[int(ly)*ScreenWidth : int(ly+1)*ScreenWidth]

	for x := range s.bgColour {
		s.bgColour[x] = 0
	}

	if c.BackgroundEnabled {
		y := ly + p.SCY
		for x := uint8(0); x < ScreenWidth; x++ {
			bx := x + p.SCX
			s.bgColour[x] = s.mapPixel(vram, c, c.BackgroundTileMap, bx, y)
		}

		// the window is drawn over the background when visible
		if c.WindowEnabled && ly >= p.WY && p.WX <= 166 {
			drawn := false
			for x := 0; x < ScreenWidth; x++ {
				wx := x - (int(p.WX) - 7)
				if wx < 0 {
					continue
				}
				s.bgColour[x] = s.mapPixel(vram, c, c.WindowTileMap, uint8(wx), s.windowLine)
				drawn = true
			}
			if drawn {
				s.windowLine++
			}
		}
	}

	for x := 0; x < ScreenWidth; x++ {
		row[x] = palette.Apply(p.BGP, s.bgColour[x])
	}

	if c.SpriteEnabled {
		s.renderSprites(p, c, row)
	}
}

// mapPixel returns the colour number at x, y of the 256x256 layer
// described by the tile map at the given VRAM offset.
func (s *Scanline) mapPixel(vram *[VRAMSize]uint8, c lcd.Controller, tileMap uint16, x, y uint8) uint8 {
	index := vram[tileMap+uint16(y/8)*32+uint16(x/8)]
	row := c.TileAddress(index) + uint16(y%8)*2
	return tilePixel(vram, row, x)
}

func (s *Scanline) renderSprites(p *PPU, c lcd.Controller, row []uint8) {
	oam := p.OAM()
	ly := p.LY

	var visible []Sprite
	for i := 0; i < OAMSize/4 && len(visible) < maxSpritesPerLine; i++ {
		if sp := spriteAt(oam, i); sp.onLine(ly, c.SpriteSize) {
			visible = append(visible, sp)
		}
	}

	sort.Slice(visible, func(i, j int) bool {
		return visible[i].drawsOver(visible[j])
	})

	var taken [ScreenWidth]bool
	for _, sp := range visible {
		line := ly - (sp.Y - 16)
		if sp.flipY {
			line = c.SpriteSize - 1 - line
		}
		tile := sp.TileID
		if c.SpriteSize == 16 {
			tile &^= 0x01
		}
		tileRow := uint16(tile)*16 + uint16(line)*2

		for px := uint8(0); px < 8; px++ {
			x := int(sp.X) - 8 + int(px)
			if x < 0 || x >= ScreenWidth || taken[x] {
				continue
			}
			fx := px
			if sp.flipX {
				fx = 7 - px
			}
			colour := tilePixel(p.VRAM(), tileRow, fx)
			if colour == 0 {
				continue
			}
			taken[x] = true
			if sp.behindBG && s.bgColour[x] != 0 {
				continue
			}
			obp := p.OBP0
			if sp.useOBP1 {
				obp = p.OBP1
			}
			row[x] = palette.Apply(obp, colour)
		}
	}
}

var _ types.Stater = (*Scanline)(nil)

// Save implements the types.Stater interface.
func (s *Scanline) Save(st *types.State) {
	st.Write16(s.cycles)
	st.WriteBool(s.enabled)
	st.Write8(s.windowLine)
	st.WriteBool(s.statLine)
}

// Load implements the types.Stater interface.
func (s *Scanline) Load(st *types.State) {
	s.cycles = st.Read16()
	s.enabled = st.ReadBool()
	s.windowLine = st.Read8()
	s.statLine = st.ReadBool()
}
