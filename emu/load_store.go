package emu

import "github.com/sarchlab/rv32cache/cache"

// LoadStoreUnit routes every memory-referencing instruction through the
// cache rather than touching backing memory directly, so that every load
// and store is reflected in the cache's hit/access statistics.
type LoadStoreUnit struct {
	regFile *RegFile
	cache   *cache.Cache
}

// NewLoadStoreUnit creates a LoadStoreUnit over the given register file
// and cache.
func NewLoadStoreUnit(regFile *RegFile, c *cache.Cache) *LoadStoreUnit {
	return &LoadStoreUnit{regFile: regFile, cache: c}
}

// Load executes LB/LH/LW/LBU/LHU: rd = sign-or-zero-extend(MEM[rs1+imm]).
func (u *LoadStoreUnit) Load(size int, signExtend bool, rd, rs1 uint8, imm int32) error {
	addr := u.regFile.ReadReg(rs1) + uint32(imm)
	v, err := u.cache.Access(addr, false, 0, size, false)
	if err != nil {
		return err
	}
	if signExtend {
		v = uint32(signExtendTo32(v, size))
	}
	u.regFile.WriteReg(rd, v)
	return nil
}

// Store executes SB/SH/SW: MEM[rs1+imm] = low `size` bytes of rs2.
func (u *LoadStoreUnit) Store(size int, rs1, rs2 uint8, imm int32) error {
	addr := u.regFile.ReadReg(rs1) + uint32(imm)
	value := u.regFile.ReadReg(rs2)
	_, err := u.cache.Access(addr, true, value, size, false)
	return err
}

// Fetch executes the instruction-fetch access for the word at pc. It is
// always a 4-byte read tagged as an instruction access, so it accumulates
// into the cache's instruction (not data) statistics.
func (u *LoadStoreUnit) Fetch(pc uint32) (uint32, error) {
	return u.cache.Access(pc, false, 0, 4, true)
}

func signExtendTo32(v uint32, size int) int32 {
	switch size {
	case 1:
		return int32(int8(v))
	case 2:
		return int32(int16(v))
	default:
		return int32(v)
	}
}
