package types

// HardwareAddress is the address of a memory mapped hardware
// register. Hardware registers live at 0xFF00 - 0xFF7F, with
// the interrupt enable register sitting alone at 0xFFFF.
type HardwareAddress = uint16

const (
	// P1 selects which half of the button matrix is visible in
	// the lower nibble, and reads it back (0 = pressed).
	P1 HardwareAddress = 0xFF00
	// SB holds the byte being shifted out of the serial port.
	SB HardwareAddress = 0xFF01
	// SC controls the serial transfer.
	SC HardwareAddress = 0xFF02
	// DIV is the upper byte of the 16-bit system counter, which
	// increments every T-cycle. Any write resets the counter.
	DIV HardwareAddress = 0xFF04
	// TIMA is incremented at the rate selected by TAC. When it
	// overflows it is reloaded from TMA and a timer interrupt is
	// requested.
	TIMA HardwareAddress = 0xFF05
	// TMA is the value loaded into TIMA on overflow.
	TMA HardwareAddress = 0xFF06
	// TAC enables the timer (bit 2) and selects its clock
	// (bits 0-1).
	TAC HardwareAddress = 0xFF07
	// IF holds the pending interrupt requests.
	//
	//  Bit 0: V-Blank  (INT 40h)
	//  Bit 1: LCD STAT (INT 48h)
	//  Bit 2: Timer    (INT 50h)
	//  Bit 3: Serial   (INT 58h)
	//  Bit 4: Joypad   (INT 60h)
	IF HardwareAddress = 0xFF0F
	// NR10 is the first sound register. Sound is not emulated,
	// the bus leaves 0xFF10 - 0xFF3F unmapped.
	NR10 HardwareAddress = 0xFF10
	// LCDC controls the LCD.
	//
	//  Bit 7: LCD Enable                     (0=Off, 1=On)
	//  Bit 6: Window Tile Map Select         (0=9800-9BFF, 1=9C00-9FFF)
	//  Bit 5: Window Enable                  (0=Off, 1=On)
	//  Bit 4: BG & Window Tile Data Select   (0=8800-97FF, 1=8000-8FFF)
	//  Bit 3: BG Tile Map Select             (0=9800-9BFF, 1=9C00-9FFF)
	//  Bit 2: OBJ Size                       (0=8x8, 1=8x16)
	//  Bit 1: OBJ Enable                     (0=Off, 1=On)
	//  Bit 0: BG Enable                      (0=Off, 1=On)
	LCDC HardwareAddress = 0xFF40
	// STAT reports the LCD mode and LY coincidence, and selects
	// which conditions raise the LCD STAT interrupt.
	//
	//  Bit 6: LYC=LY Interrupt      (1=Enable)
	//  Bit 5: Mode 2 OAM Interrupt  (1=Enable)
	//  Bit 4: Mode 1 V-Blank Int.   (1=Enable)
	//  Bit 3: Mode 0 H-Blank Int.   (1=Enable)
	//  Bit 2: Coincidence Flag      (0:LYC<>LY, 1:LYC=LY)
	//  Bit 1-0: Mode                (0-3)
	STAT HardwareAddress = 0xFF41
	// SCY is the vertical background scroll.
	SCY HardwareAddress = 0xFF42
	// SCX is the horizontal background scroll.
	SCX HardwareAddress = 0xFF43
	// LY is the scanline currently being drawn (0-153).
	LY HardwareAddress = 0xFF44
	// LYC is compared against LY to drive the coincidence flag.
	LYC HardwareAddress = 0xFF45
	// DMA starts a 160 byte transfer from XX00 into OAM when
	// written with XX.
	DMA HardwareAddress = 0xFF46
	// BGP is the background palette.
	//
	//  Bit 7-6 - Shade for Colour 3
	//  Bit 5-4 - Shade for Colour 2
	//  Bit 3-2 - Shade for Colour 1
	//  Bit 1-0 - Shade for Colour 0
	BGP HardwareAddress = 0xFF47
	// OBP0 is sprite palette 0. Colour 0 is transparent.
	OBP0 HardwareAddress = 0xFF48
	// OBP1 is sprite palette 1. Colour 0 is transparent.
	OBP1 HardwareAddress = 0xFF49
	// WY is the window Y position.
	WY HardwareAddress = 0xFF4A
	// WX is the window X position plus 7.
	WX HardwareAddress = 0xFF4B
	// KEY0 is the first colour-only register. Everything from
	// here up to the start of high RAM is reserved for the CGB.
	KEY0 HardwareAddress = 0xFF4C
	// IE selects which interrupts may be serviced.
	IE HardwareAddress = 0xFFFF
)

// Memory regions of the address space, as inclusive bounds.
const (
	ROMStart   = 0x0000
	ROMEnd     = 0x7FFF
	VRAMStart  = 0x8000
	VRAMEnd    = 0x9FFF
	ERAMStart  = 0xA000
	ERAMEnd    = 0xBFFF
	WRAMStart  = 0xC000
	WRAMEnd    = 0xDFFF
	EchoStart  = 0xE000
	EchoEnd    = 0xFDFF
	OAMStart   = 0xFE00
	OAMEnd     = 0xFE9F
	HRAMStart  = 0xFF80
	HRAMEnd    = 0xFFFE
	CGBIOStart = 0xFF4C
	CGBIOEnd   = 0xFF7F
)
