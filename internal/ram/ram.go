// Package ram provides a fixed size block of RAM, addressed by
// masking the CPU address rather than bounds checking it.
package ram

import "fmt"

// RAM represents a block of RAM whose size is a power of two. Any
// address maps onto it through the low bits, so two windows that
// differ only in the high bits alias the same storage.
type RAM struct {
	data []uint8
	mask uint16
}

// New returns a zeroed RAM of the given size. The size must be a
// power of two no larger than 64kB.
func New(size uint32) *RAM {
	if size == 0 || size > 0x10000 || size&(size-1) != 0 {
		panic(fmt.Sprintf("ram: size %d is not a power of two", size))
	}
	return &RAM{
		data: make([]uint8, size),
		mask: uint16(size - 1),
	}
}

// Read returns the value at the given address.
func (r *RAM) Read(address uint16) uint8 {
	return r.data[address&r.mask]
}

// Write writes the value to the given address.
func (r *RAM) Write(address uint16, value uint8) {
	r.data[address&r.mask] = value
}

// Bytes returns the underlying storage.
func (r *RAM) Bytes() []uint8 {
	return r.data
}
