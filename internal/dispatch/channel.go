// internal/dispatch/channel.go
package dispatch

// Channel abstracts one half-duplex link.
// Calls on a channel never overlap.
type Channel interface {
	ID() int
	SetSlave(id uint8)

	ReadBits(addr, count uint16) ([]byte, error)             // FC 1, one byte per coil
	ReadInputBits(addr, count uint16) ([]byte, error)        // FC 2
	ReadRegisters(addr, count uint16) ([]uint16, error)      // FC 3
	ReadInputRegisters(addr, count uint16) ([]uint16, error) // FC 4

	WriteBit(addr uint16, v bool) (int, error)           // FC 5
	WriteRegister(addr, v uint16) (int, error)           // FC 6
	WriteBits(addr uint16, v []bool) (int, error)        // FC 15
	WriteRegisters(addr uint16, v []uint16) (int, error) // FC 16
}

// CRCReporter is implemented by channels that observe the last response
// frame on the wire.
type CRCReporter interface {
	ResponseCRC() (expected, actual uint16, ok bool)
}
