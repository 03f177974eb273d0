package emu

// ALU implements the RV32I integer and M-extension arithmetic/logical
// operations. It holds a reference to the register file the way the
// teacher's ALU does, writing results directly to rd.
type ALU struct {
	regFile *RegFile
}

// NewALU creates a new ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{regFile: regFile}
}

// Reg executes a register-register op (opcode 0x33): rd = rs1 OP rs2.
func (a *ALU) Reg(op func(x, y uint32) uint32, rd, rs1, rs2 uint8) {
	x := a.regFile.ReadReg(rs1)
	y := a.regFile.ReadReg(rs2)
	a.regFile.WriteReg(rd, op(x, y))
}

// Imm executes a register-immediate op (opcode 0x13): rd = rs1 OP imm.
func (a *ALU) Imm(op func(x, y uint32) uint32, rd, rs1 uint8, imm int32) {
	x := a.regFile.ReadReg(rs1)
	a.regFile.WriteReg(rd, op(x, uint32(imm)))
}

// The following are the OP funcs for ALU.Reg/ALU.Imm, one per spec.md
// §4.4 opcode. Shift amounts are masked to the low 5 bits per RV32.

func opADD(x, y uint32) uint32  { return x + y }
func opSUB(x, y uint32) uint32  { return x - y }
func opSLL(x, y uint32) uint32  { return x << (y & 0x1F) }
func opSLT(x, y uint32) uint32  { return boolToWord(int32(x) < int32(y)) }
func opSLTU(x, y uint32) uint32 { return boolToWord(x < y) }
func opXOR(x, y uint32) uint32  { return x ^ y }
func opSRL(x, y uint32) uint32  { return x >> (y & 0x1F) }
func opSRA(x, y uint32) uint32  { return uint32(int32(x) >> (y & 0x1F)) }
func opOR(x, y uint32) uint32   { return x | y }
func opAND(x, y uint32) uint32  { return x & y }

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// M extension. Division-by-zero and signed-overflow behavior follow
// spec.md §4.4/§9: DIV returns -1, DIVU returns 0xFFFFFFFF, REM/REMU
// return the dividend unchanged when the divisor is zero. DIV of
// INT_MIN/-1 follows the RISC-V specification (quotient = INT_MIN, rem =
// 0), treating the alternative as a bug rather than an intentional
// contract, per the spec's own recommendation.

func opMUL(x, y uint32) uint32 { return x * y }

func opMULH(x, y uint32) uint32 {
	p := int64(int32(x)) * int64(int32(y))
	return uint32(p >> 32)
}

func opMULHSU(x, y uint32) uint32 {
	p := int64(int32(x)) * int64(uint64(y))
	return uint32(p >> 32)
}

func opMULHU(x, y uint32) uint32 {
	p := uint64(x) * uint64(y)
	return uint32(p >> 32)
}

func opDIV(x, y uint32) uint32 {
	if y == 0 {
		return 0xFFFFFFFF
	}
	sx, sy := int32(x), int32(y)
	if sx == -0x80000000 && sy == -1 {
		return uint32(sx)
	}
	return uint32(sx / sy)
}

func opDIVU(x, y uint32) uint32 {
	if y == 0 {
		return 0xFFFFFFFF
	}
	return x / y
}

func opREM(x, y uint32) uint32 {
	if y == 0 {
		return x
	}
	sx, sy := int32(x), int32(y)
	if sx == -0x80000000 && sy == -1 {
		return 0
	}
	return uint32(sx % sy)
}

func opREMU(x, y uint32) uint32 {
	if y == 0 {
		return x
	}
	return x % y
}
