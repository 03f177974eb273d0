// Package insts provides RV32IM instruction definitions and decoding.
package insts

import "errors"

// ErrUnknownOpcode is returned by DecodeStrict when the word does not
// decode to any RV32IM instruction: either the 7-bit opcode field matches
// no instruction class, or its funct3/imm fields match no instruction of
// that class.
var ErrUnknownOpcode = errors.New("insts: unknown opcode")

// Instruction represents a decoded RV32IM instruction.
type Instruction struct {
	Op     Op     // Operation code
	Format Format // Encoding format

	Rd  uint8 // Destination register
	Rs1 uint8 // First source register
	Rs2 uint8 // Second source register (R, S, B formats)

	Imm int32 // Sign-extended immediate (I, S, B, U, J formats)

	Raw uint32 // The undecoded 32-bit word, kept for diagnostics
}

// Decoder decodes RV32IM machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new RV32IM instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit RV32IM instruction word. Instructions the decoder
// does not recognize come back as Op == OpUnknown, Format == FormatUnknown.
func (d *Decoder) Decode(word uint32) *Instruction {
	inst := &Instruction{Op: OpUnknown, Format: FormatUnknown, Raw: word}

	switch opcode(word) {
	case 0x33:
		d.decodeR(word, inst)
	case 0x13:
		d.decodeIAlu(word, inst)
	case 0x03:
		d.decodeILoad(word, inst)
	case 0x67:
		d.decodeIJalr(word, inst)
	case 0x73:
		d.decodeISystem(word, inst)
	case 0x23:
		d.decodeS(word, inst)
	case 0x63:
		d.decodeB(word, inst)
	case 0x6F:
		d.decodeJ(word, inst)
	case 0x37:
		inst.Format = FormatU
		inst.Op = OpLUI
		inst.Rd = rd(word)
		inst.Imm = immU(word)
	case 0x17:
		inst.Format = FormatU
		inst.Op = OpAUIPC
		inst.Rd = rd(word)
		inst.Imm = immU(word)
	}

	if inst.Op == OpUnknown {
		inst.Format = FormatUnknown
	}

	return inst
}

// DecodeStrict behaves like Decode but reports ErrUnknownOpcode instead of
// silently returning an OpUnknown instruction.
func (d *Decoder) DecodeStrict(word uint32) (*Instruction, error) {
	inst := d.Decode(word)
	if inst.Op == OpUnknown {
		return inst, ErrUnknownOpcode
	}
	return inst, nil
}

func opcode(word uint32) uint32 { return word & 0x7F }
func rd(word uint32) uint8      { return uint8((word >> 7) & 0x1F) }
func funct3(word uint32) uint32 { return (word >> 12) & 0x7 }
func rs1(word uint32) uint8     { return uint8((word >> 15) & 0x1F) }
func rs2(word uint32) uint8     { return uint8((word >> 20) & 0x1F) }
func funct7(word uint32) uint32 { return (word >> 25) & 0x7F }

// immI sign-extends the 12-bit I-type immediate in bits [31:20].
func immI(word uint32) int32 {
	return int32(word) >> 20
}

// immS sign-extends the 12-bit S-type immediate from bits [31:25] and [11:7].
func immS(word uint32) int32 {
	hi := (word >> 25) & 0x7F
	lo := (word >> 7) & 0x1F
	raw := (hi << 5) | lo
	return signExtend(raw, 12)
}

// immB sign-extends the 13-bit B-type immediate (low bit always zero).
func immB(word uint32) int32 {
	bit12 := (word >> 31) & 0x1
	bit11 := (word >> 7) & 0x1
	bits10to5 := (word >> 25) & 0x3F
	bits4to1 := (word >> 8) & 0xF
	raw := (bit12 << 12) | (bit11 << 11) | (bits10to5 << 5) | (bits4to1 << 1)
	return signExtend(raw, 13)
}

// immU extracts the 20-bit upper immediate already positioned in bits [31:12].
func immU(word uint32) int32 {
	return int32(word & 0xFFFFF000)
}

// immJ sign-extends the 21-bit J-type immediate (low bit always zero).
func immJ(word uint32) int32 {
	bit20 := (word >> 31) & 0x1
	bits10to1 := (word >> 21) & 0x3FF
	bit11 := (word >> 20) & 0x1
	bits19to12 := (word >> 12) & 0xFF
	raw := (bit20 << 20) | (bits19to12 << 12) | (bit11 << 11) | (bits10to1 << 1)
	return signExtend(raw, 21)
}

// signExtend sign-extends the low `bits` bits of raw to a full int32.
func signExtend(raw uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(raw<<shift) >> shift
}

// decodeR decodes opcode 0x33: integer and M-extension register-register ops.
// Format: funct7 | rs2 | rs1 | funct3 | rd | opcode
func (d *Decoder) decodeR(word uint32, inst *Instruction) {
	inst.Format = FormatR
	inst.Rd = rd(word)
	inst.Rs1 = rs1(word)
	inst.Rs2 = rs2(word)

	f3, f7 := funct3(word), funct7(word)

	if f7 == 0b0000001 {
		// M extension
		switch f3 {
		case 0b000:
			inst.Op = OpMUL
		case 0b001:
			inst.Op = OpMULH
		case 0b010:
			inst.Op = OpMULHSU
		case 0b011:
			inst.Op = OpMULHU
		case 0b100:
			inst.Op = OpDIV
		case 0b101:
			inst.Op = OpDIVU
		case 0b110:
			inst.Op = OpREM
		case 0b111:
			inst.Op = OpREMU
		}
		return
	}

	switch f3 {
	case 0b000:
		if f7 == 0b0100000 {
			inst.Op = OpSUB
		} else {
			inst.Op = OpADD
		}
	case 0b001:
		inst.Op = OpSLL
	case 0b010:
		inst.Op = OpSLT
	case 0b011:
		inst.Op = OpSLTU
	case 0b100:
		inst.Op = OpXOR
	case 0b101:
		if f7 == 0b0100000 {
			inst.Op = OpSRA
		} else {
			inst.Op = OpSRL
		}
	case 0b110:
		inst.Op = OpOR
	case 0b111:
		inst.Op = OpAND
	}
}

// decodeIAlu decodes opcode 0x13: integer register-immediate ops.
// Format: imm[11:0] | rs1 | funct3 | rd | opcode
func (d *Decoder) decodeIAlu(word uint32, inst *Instruction) {
	inst.Format = FormatI
	inst.Rd = rd(word)
	inst.Rs1 = rs1(word)
	inst.Imm = immI(word)

	switch funct3(word) {
	case 0b000:
		inst.Op = OpADDI
	case 0b010:
		inst.Op = OpSLTI
	case 0b011:
		inst.Op = OpSLTIU
	case 0b100:
		inst.Op = OpXORI
	case 0b110:
		inst.Op = OpORI
	case 0b111:
		inst.Op = OpANDI
	case 0b001:
		inst.Op = OpSLLI
		inst.Imm = int32(word>>20) & 0x1F // shamt, low 5 bits
	case 0b101:
		inst.Imm = int32(word>>20) & 0x1F // shamt, low 5 bits
		if funct7(word) == 0b0100000 {
			inst.Op = OpSRAI
		} else {
			inst.Op = OpSRLI
		}
	}
}

// decodeILoad decodes opcode 0x03: LB, LH, LW, LBU, LHU.
func (d *Decoder) decodeILoad(word uint32, inst *Instruction) {
	inst.Format = FormatI
	inst.Rd = rd(word)
	inst.Rs1 = rs1(word)
	inst.Imm = immI(word)

	switch funct3(word) {
	case 0b000:
		inst.Op = OpLB
	case 0b001:
		inst.Op = OpLH
	case 0b010:
		inst.Op = OpLW
	case 0b100:
		inst.Op = OpLBU
	case 0b101:
		inst.Op = OpLHU
	}
}

// decodeIJalr decodes opcode 0x67: JALR.
func (d *Decoder) decodeIJalr(word uint32, inst *Instruction) {
	if funct3(word) != 0 {
		return
	}
	inst.Format = FormatI
	inst.Op = OpJALR
	inst.Rd = rd(word)
	inst.Rs1 = rs1(word)
	inst.Imm = immI(word)
}

// decodeISystem decodes opcode 0x73: ECALL, EBREAK.
func (d *Decoder) decodeISystem(word uint32, inst *Instruction) {
	if funct3(word) != 0 {
		return
	}
	inst.Format = FormatI
	imm12 := uint32(word) >> 20
	switch imm12 {
	case 0:
		inst.Op = OpECALL
	case 1:
		inst.Op = OpEBREAK
	}
}

// decodeS decodes opcode 0x23: SB, SH, SW.
// Format: imm[11:5] | rs2 | rs1 | funct3 | imm[4:0] | opcode
func (d *Decoder) decodeS(word uint32, inst *Instruction) {
	inst.Format = FormatS
	inst.Rs1 = rs1(word)
	inst.Rs2 = rs2(word)
	inst.Imm = immS(word)

	switch funct3(word) {
	case 0b000:
		inst.Op = OpSB
	case 0b001:
		inst.Op = OpSH
	case 0b010:
		inst.Op = OpSW
	}
}

// decodeB decodes opcode 0x63: BEQ, BNE, BLT, BGE, BLTU, BGEU.
// Format: imm[12|10:5] | rs2 | rs1 | funct3 | imm[4:1|11] | opcode
func (d *Decoder) decodeB(word uint32, inst *Instruction) {
	inst.Format = FormatB
	inst.Rs1 = rs1(word)
	inst.Rs2 = rs2(word)
	inst.Imm = immB(word)

	switch funct3(word) {
	case 0b000:
		inst.Op = OpBEQ
	case 0b001:
		inst.Op = OpBNE
	case 0b100:
		inst.Op = OpBLT
	case 0b101:
		inst.Op = OpBGE
	case 0b110:
		inst.Op = OpBLTU
	case 0b111:
		inst.Op = OpBGEU
	}
}

// decodeJ decodes opcode 0x6F: JAL.
// Format: imm[20|10:1|11|19:12] | rd | opcode
func (d *Decoder) decodeJ(word uint32, inst *Instruction) {
	inst.Format = FormatJ
	inst.Op = OpJAL
	inst.Rd = rd(word)
	inst.Imm = immJ(word)
}
