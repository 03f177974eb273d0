package emu

// BranchUnit implements the RV32I control-flow instructions: conditional
// branches, and the two unconditional jumps. Every method reports the
// taken target PC; the caller (Emulator.Step) is responsible for falling
// through to PC+4 when a conditional branch is not taken.

type BranchUnit struct {
	regFile *RegFile
}

// NewBranchUnit creates a BranchUnit over the given register file.
func NewBranchUnit(regFile *RegFile) *BranchUnit {
	return &BranchUnit{regFile: regFile}
}

// Branch evaluates one of BEQ/BNE/BLT/BGE/BLTU/BGEU. It returns the
// target PC and whether the branch is taken.
func (b *BranchUnit) Branch(cond func(x, y uint32) bool, rs1, rs2 uint8, imm int32, pc uint32) (uint32, bool) {
	x := b.regFile.ReadReg(rs1)
	y := b.regFile.ReadReg(rs2)
	if cond(x, y) {
		return pc + uint32(imm), true
	}
	return 0, false
}

// JAL writes PC+4 to rd and jumps to pc+imm.
func (b *BranchUnit) JAL(rd uint8, imm int32, pc uint32) uint32 {
	b.regFile.WriteReg(rd, pc+4)
	return pc + uint32(imm)
}

// JALR writes PC+4 to rd and jumps to (rs1+imm) with the low bit cleared.
func (b *BranchUnit) JALR(rd, rs1 uint8, imm int32, pc uint32) uint32 {
	target := (b.regFile.ReadReg(rs1) + uint32(imm)) &^ 1
	b.regFile.WriteReg(rd, pc+4)
	return target
}

func condBEQ(x, y uint32) bool  { return x == y }
func condBNE(x, y uint32) bool  { return x != y }
func condBLT(x, y uint32) bool  { return int32(x) < int32(y) }
func condBGE(x, y uint32) bool  { return int32(x) >= int32(y) }
func condBLTU(x, y uint32) bool { return x < y }
func condBGEU(x, y uint32) bool { return x >= y }
