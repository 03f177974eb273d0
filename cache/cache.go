// Package cache provides the set-associative cache model that sits in
// front of the backing memory and generates the instruction/data access
// traces the replacement-policy comparison is built around.
//
// The geometry is fixed by the simulator's data model (spec: 16 sets, 4
// ways, 64-byte lines, a 17-bit address space) rather than configurable,
// the way the teacher package names fixed Config values
// (DefaultL1IConfig, DefaultL1DConfig) instead of accepting arbitrary
// geometry from a caller. Tag/valid/dirty bookkeeping and victim
// selection are delegated to an Akita mem/cache Directory, the same
// component the teacher's own timing/cache.Cache wraps; only the 64-byte
// line payloads and the byte-level backing-store plumbing are this
// package's own, since Akita's Block carries no data bytes.
package cache

import (
	"errors"
	"fmt"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

const (
	numSets    = 16
	numWays    = 4
	blockSize  = 64
	offsetMask = blockSize - 1
	blockMask  = ^uint32(offsetMask)
)

// ErrInvalidAccessSize is returned when an access size is not 1, 2, or 4.
var ErrInvalidAccessSize = errors.New("cache: invalid access size")

// ErrCrossesLineBoundary is returned when an access would straddle two
// 64-byte lines. The simulator never splits an access across lines.
var ErrCrossesLineBoundary = errors.New("cache: access crosses line boundary")

// BackingStore is the next level in the memory hierarchy. mem.Memory
// satisfies it through a MemoryBacking adapter (backing.go), the same
// adapter shape as the teacher's own MemoryBacking wrapping emu.Memory.
type BackingStore interface {
	ReadByte(addr uint32) (byte, error)
	WriteByte(addr uint32, value byte) error
}

// Stats holds the per-cache-instance access/hit counters from the data
// model, plus the optional read/write split and eviction/writeback
// counters the spec allows an implementation to add for observability.
type Stats struct {
	InstrAccess uint64
	InstrHit    uint64
	DataAccess  uint64
	DataHit     uint64

	DataReadAccess  uint64
	DataReadHit     uint64
	DataWriteAccess uint64
	DataWriteHit    uint64

	Evictions  uint64
	Writebacks uint64
}

// Cache is a set-associative cache with write-back/write-allocate
// semantics and a pluggable replacement Policy, selected once at
// construction per spec ("Policy polymorphism" design note). Tag,
// validity, dirtiness, and victim selection live in an Akita
// akitacache.DirectoryImpl; dataStore holds the line payloads Akita's
// Block doesn't, indexed the same way the teacher indexes its own
// dataStore (SetID*numWays + WayID).
type Cache struct {
	directory *akitacache.DirectoryImpl
	dataStore [][]byte
	policy    Policy
	backing   BackingStore
	stats     Stats
}

// New creates a cache backed by the given store, using the given
// replacement policy. All blocks start invalid and clean, per the data
// model.
func New(backing BackingStore, policy Policy) *Cache {
	dataStore := make([][]byte, numSets*numWays)
	for i := range dataStore {
		dataStore[i] = make([]byte, blockSize)
	}
	return &Cache{
		directory: akitacache.NewDirectory(numSets, numWays, blockSize, policy),
		dataStore: dataStore,
		policy:    policy,
		backing:   backing,
	}
}

// Stats returns a snapshot of the cache's access/hit counters.
func (c *Cache) Stats() Stats {
	return c.stats
}

// SetSnapshot returns the live blocks of one set, for test inspection of
// the tag-uniqueness and dirty/valid invariants.
func (c *Cache) SetSnapshot(index int) []*akitacache.Block {
	return c.directory.GetSets()[index].Blocks
}

func (c *Cache) blockIndex(block *akitacache.Block) int {
	return block.SetID*numWays + block.WayID
}

func blockBase(addr uint32) uint32 {
	return addr & blockMask
}

// Access performs one cache access. size must be 1, 2, or 4; the access
// must not cross a 64-byte line boundary. Instruction accesses are always
// reads of size 4. Data writes deposit the low `size` bytes of writeData
// little-endian at addr; the return value is always the zero-extended
// value of the size bytes at addr, read after any write effect.
func (c *Cache) Access(addr uint32, isWrite bool, writeData uint32, size int, isInstruction bool) (uint32, error) {
	if size != 1 && size != 2 && size != 4 {
		return 0, fmt.Errorf("%w: size=%d", ErrInvalidAccessSize, size)
	}
	offset := addr & offsetMask
	if offset+uint32(size) > blockSize {
		return 0, fmt.Errorf("%w: addr=0x%X size=%d", ErrCrossesLineBoundary, addr, size)
	}

	blockAddr := blockBase(addr)

	c.countAccess(isInstruction, isWrite)

	block := c.directory.Lookup(0, uint64(blockAddr))
	if block != nil && block.IsValid {
		c.countHit(isInstruction, isWrite)
		c.directory.Visit(block)
		c.policy.onAccess(block)

		data := c.dataStore[c.blockIndex(block)]
		if isWrite {
			block.IsDirty = true
			storeLE(data, offset, size, writeData)
		}
		return loadLE(data, offset, size), nil
	}

	return c.handleMiss(blockAddr, offset, isWrite, writeData, size)
}

func (c *Cache) countAccess(isInstruction, isWrite bool) {
	if isInstruction {
		c.stats.InstrAccess++
		return
	}
	c.stats.DataAccess++
	if isWrite {
		c.stats.DataWriteAccess++
	} else {
		c.stats.DataReadAccess++
	}
}

func (c *Cache) countHit(isInstruction, isWrite bool) {
	if isInstruction {
		c.stats.InstrHit++
		return
	}
	c.stats.DataHit++
	if isWrite {
		c.stats.DataWriteHit++
	} else {
		c.stats.DataReadHit++
	}
}

// handleMiss asks the directory for a victim (its VictimFinder already
// prefers any invalid way over an eviction choice), writes it back if
// dirty, loads the new block, applies the access, and returns the
// read-after-write value.
func (c *Cache) handleMiss(blockAddr, offset uint32, isWrite bool, writeData uint32, size int) (uint32, error) {
	victim := c.directory.FindVictim(uint64(blockAddr))
	if victim == nil {
		return 0, fmt.Errorf("cache: no victim available for block 0x%X", blockAddr)
	}

	data := c.dataStore[c.blockIndex(victim)]

	if victim.IsValid {
		if victim.IsDirty {
			if err := c.writeBack(uint32(victim.Tag), data); err != nil {
				return 0, err
			}
			c.stats.Writebacks++
		}
		c.stats.Evictions++
	}

	for i := 0; i < blockSize; i++ {
		b, err := c.backing.ReadByte(blockAddr + uint32(i))
		if err != nil {
			return 0, err
		}
		data[i] = b
	}

	victim.Tag = uint64(blockAddr)
	victim.IsValid = true
	victim.IsDirty = false

	if isWrite {
		victim.IsDirty = true
		storeLE(data, offset, size, writeData)
	}

	c.directory.Visit(victim)
	c.policy.onAccess(victim)

	return loadLE(data, offset, size), nil
}

func (c *Cache) writeBack(addr uint32, data []byte) error {
	for i, b := range data {
		if err := c.backing.WriteByte(addr+uint32(i), b); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes every valid dirty block back to the backing store and
// leaves blocks valid but clean. Calling Flush twice is idempotent: the
// second call finds nothing dirty and writes nothing.
func (c *Cache) Flush() error {
	for _, set := range c.directory.GetSets() {
		for _, block := range set.Blocks {
			if block.IsValid && block.IsDirty {
				data := c.dataStore[c.blockIndex(block)]
				if err := c.writeBack(uint32(block.Tag), data); err != nil {
					return err
				}
				c.stats.Writebacks++
				block.IsDirty = false
			}
		}
	}
	return nil
}

func loadLE(data []byte, offset uint32, size int) uint32 {
	var v uint32
	for i := 0; i < size; i++ {
		v |= uint32(data[offset+uint32(i)]) << (8 * i)
	}
	return v
}

func storeLE(data []byte, offset uint32, size int, value uint32) {
	for i := 0; i < size; i++ {
		data[offset+uint32(i)] = byte(value >> (8 * i))
	}
}
