package types

import "fmt"

// AccessKind classifies a fatal memory access.
type AccessKind uint8

const (
	// UnsupportedFeatureAccess is raised when software reads a
	// hardware feature that exists on the real device but is not
	// emulated, such as the serial port or the CGB registers.
	UnsupportedFeatureAccess AccessKind = iota
	// UnknownRegisterAccess is raised when the video controller
	// is asked for a register it does not have.
	UnknownRegisterAccess
)

func (k AccessKind) String() string {
	switch k {
	case UnsupportedFeatureAccess:
		return "unsupported feature access"
	case UnknownRegisterAccess:
		return "unknown register access"
	}
	return fmt.Sprintf("AccessKind(%d)", uint8(k))
}

// AccessError describes a fatal memory access. Emulation cannot
// continue after one is raised, as doing so would produce plausible
// looking but incorrect behaviour.
type AccessError struct {
	Kind    AccessKind
	Address uint16
	Write   bool
}

func (e *AccessError) Error() string {
	op := "read"
	if e.Write {
		op = "write"
	}
	return fmt.Sprintf("%s: %s at 0x%04X", e.Kind, op, e.Address)
}

// Fatal panics with an AccessError of the given kind. It is the
// only way the memory subsystem reports an unrecoverable access.
func Fatal(kind AccessKind, address uint16, write bool) {
	panic(&AccessError{Kind: kind, Address: address, Write: write})
}
