// Package mem provides the sparse byte-addressable backing memory that sits
// behind the cache model.
package mem

import (
	"errors"
	"fmt"
)

// AddrSpaceBits is the width of the simulated physical address space.
const AddrSpaceBits = 17

// MaxAddr is the highest address the backing memory will accept.
const MaxAddr = (1 << AddrSpaceBits) - 1

// ErrAddressOutOfRange is returned when an access targets an address beyond
// the 17-bit physical address space.
var ErrAddressOutOfRange = errors.New("mem: address out of range")

// Memory is a sparse mapping from a 17-bit address to a byte. Addresses that
// have never been written read back as zero.
type Memory struct {
	bytes map[uint32]byte
}

// NewMemory creates an empty backing memory.
func NewMemory() *Memory {
	return &Memory{bytes: make(map[uint32]byte)}
}

func checkAddr(addr uint32) error {
	if addr > MaxAddr {
		return fmt.Errorf("%w: 0x%X exceeds 2^%d-1", ErrAddressOutOfRange, addr, AddrSpaceBits)
	}
	return nil
}

// ReadByte reads a single byte. Unwritten addresses read as zero.
func (m *Memory) ReadByte(addr uint32) (byte, error) {
	if err := checkAddr(addr); err != nil {
		return 0, err
	}
	return m.bytes[addr], nil
}

// WriteByte writes a single byte.
func (m *Memory) WriteByte(addr uint32, value byte) error {
	if err := checkAddr(addr); err != nil {
		return err
	}
	m.bytes[addr] = value
	return nil
}

// Read16 reads a little-endian 16-bit value starting at addr.
func (m *Memory) Read16(addr uint32) (uint16, error) {
	if err := checkAddr(addr + 1); err != nil {
		return 0, err
	}
	lo := m.bytes[addr]
	hi := m.bytes[addr+1]
	return uint16(lo) | uint16(hi)<<8, nil
}

// Write16 writes a little-endian 16-bit value starting at addr.
func (m *Memory) Write16(addr uint32, value uint16) error {
	if err := checkAddr(addr + 1); err != nil {
		return err
	}
	m.bytes[addr] = byte(value)
	m.bytes[addr+1] = byte(value >> 8)
	return nil
}

// Read32 reads a little-endian 32-bit value starting at addr.
func (m *Memory) Read32(addr uint32) (uint32, error) {
	if err := checkAddr(addr + 3); err != nil {
		return 0, err
	}
	var v uint32
	for i := uint32(0); i < 4; i++ {
		v |= uint32(m.bytes[addr+i]) << (8 * i)
	}
	return v, nil
}

// Write32 writes a little-endian 32-bit value starting at addr.
func (m *Memory) Write32(addr uint32, value uint32) error {
	if err := checkAddr(addr + 3); err != nil {
		return err
	}
	for i := uint32(0); i < 4; i++ {
		m.bytes[addr+i] = byte(value >> (8 * i))
	}
	return nil
}
