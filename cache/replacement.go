package cache

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Policy pairs an Akita mem/cache VictimFinder (FindVictim(set *Set)
// *Block) with whatever per-access bookkeeping it needs beyond what the
// Directory's own Visit already tracks. True LRU needs none: the
// Directory maintains the recency order Akita's own LRUVictimFinder reads
// from. Bit-pLRU keeps its own per-set 3-bit word, external to
// akitacache.Block since Block has no room for it, and updates that word
// here on every access, not only at eviction time.
type Policy interface {
	akitacache.VictimFinder
	onAccess(block *akitacache.Block)
}

// NewLRUPolicy returns a Policy backed directly by Akita's own
// mem/cache.LRUVictimFinder, the same type the teacher's timing/cache.Cache
// hands to akitacache.NewDirectory.
func NewLRUPolicy() Policy {
	return &lruPolicy{VictimFinder: akitacache.NewLRUVictimFinder()}
}

type lruPolicy struct {
	akitacache.VictimFinder
}

func (p *lruPolicy) onAccess(block *akitacache.Block) {
	// Directory.Visit already reordered the recency the embedded
	// LRUVictimFinder reads from; nothing further to track here.
}

// NewBitPLRUPolicy returns a Policy implementing tree-bit pseudo-LRU over
// 4-way sets, per the 3-bit encoding in the cache's data model: bit 0 is
// the root (steers left/right subtree), bit 1 picks the MRU of {0,1}, bit
// 2 picks the MRU of {2,3}. This is the one VictimFinder with no upstream
// Akita implementation, grounded on akita/v4's own VictimFinder shape
// rather than any concrete Akita policy.
func NewBitPLRUPolicy() Policy {
	return &bitPLRUPolicy{bits: make(map[int]uint8)}
}

type bitPLRUPolicy struct {
	bits map[int]uint8 // set ID -> 3-bit pLRU word
}

// FindVictim implements akitacache.VictimFinder. An invalid way, if any,
// is always preferred over the bit-pLRU choice, matching the same
// invalid-way-first behavior Akita's own LRUVictimFinder applies.
func (p *bitPLRUPolicy) FindVictim(set *akitacache.Set) *akitacache.Block {
	for _, b := range set.Blocks {
		if !b.IsValid {
			return b
		}
	}

	word := p.bits[set.Blocks[0].SetID]
	way := 0
	switch {
	case !getBit(word, 0) && getBit(word, 1):
		way = 1
	case !getBit(word, 0):
		way = 0
	case getBit(word, 2):
		way = 3
	default:
		way = 2
	}

	for _, b := range set.Blocks {
		if b.WayID == way {
			return b
		}
	}
	return set.Blocks[0]
}

func (p *bitPLRUPolicy) onAccess(block *akitacache.Block) {
	word := p.bits[block.SetID]
	switch block.WayID {
	case 0:
		word = setBit(word, 0, true)
		word = setBit(word, 1, true)
	case 1:
		word = setBit(word, 0, true)
		word = setBit(word, 1, false)
	case 2:
		word = setBit(word, 0, false)
		word = setBit(word, 2, true)
	case 3:
		word = setBit(word, 0, false)
		word = setBit(word, 2, false)
	}
	p.bits[block.SetID] = word
}

func getBit(word uint8, bit uint) bool {
	return word&(1<<bit) != 0
}

func setBit(word uint8, bit uint, v bool) uint8 {
	if v {
		return word | (1 << bit)
	}
	return word &^ (1 << bit)
}
