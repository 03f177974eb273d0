// Package cache provides the set-associative cache model described in the
// package doc comment in cache.go.
package cache

import (
	"github.com/sarchlab/rv32cache/mem"
)

// MemoryBacking adapts mem.Memory to the BackingStore interface the cache
// needs for its line loader and writeback engine, the same adapter shape
// as the teacher's own MemoryBacking wrapping emu.Memory. Per the data
// model, Memory exposes no bulk transfer: the cache issues byte-by-byte
// ReadByte/WriteByte sequences itself.
type MemoryBacking struct {
	memory *mem.Memory
}

// NewMemoryBacking creates a new MemoryBacking adapter.
func NewMemoryBacking(memory *mem.Memory) *MemoryBacking {
	return &MemoryBacking{memory: memory}
}

// ReadByte fetches one byte from the backing memory.
func (b *MemoryBacking) ReadByte(addr uint32) (byte, error) {
	return b.memory.ReadByte(addr)
}

// WriteByte stores one byte to the backing memory.
func (b *MemoryBacking) WriteByte(addr uint32, value byte) error {
	return b.memory.WriteByte(addr, value)
}
