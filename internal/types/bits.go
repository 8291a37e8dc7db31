package types

const (
	Bit0 = 1 << iota // 0b0000_0001
	Bit1             // 0b0000_0010
	Bit2             // 0b0000_0100
	Bit3             // 0b0000_1000
	Bit4             // 0b0001_0000
	Bit5             // 0b0010_0000
	Bit6             // 0b0100_0000
	Bit7             // 0b1000_0000
)

// Test reports whether any of the bits in mask are set in v.
func Test(v, mask uint8) bool {
	return v&mask != 0
}

// Set returns v with the bits in mask set.
func Set(v, mask uint8) uint8 {
	return v | mask
}

// Reset returns v with the bits in mask cleared.
func Reset(v, mask uint8) uint8 {
	return v &^ mask
}
