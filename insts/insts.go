// Package insts provides RV32IM instruction definitions and decoding.
//
// This package implements decoding of RV32IM machine code into structured
// instruction representations. It supports:
//   - Integer register-register and the M extension (opcode 0x33)
//   - Integer register-immediate (opcode 0x13)
//   - Loads and stores (opcodes 0x03, 0x23)
//   - Branches, JAL, JALR (opcodes 0x63, 0x6F, 0x67)
//   - LUI, AUIPC (opcodes 0x37, 0x17)
//   - ECALL, EBREAK (opcode 0x73)
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x00000013) // ADDI x0, x0, 0 (NOP)
//	fmt.Printf("Op: %v, Rd: %d, Rs1: %d, Imm: %d\n", inst.Op, inst.Rd, inst.Rs1, inst.Imm)
package insts

// Op represents an RV32IM opcode.
type Op uint16

// RV32IM opcodes.
const (
	OpUnknown Op = iota

	// Integer register-register (and M-extension register-register).
	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND
	OpMUL
	OpMULH
	OpMULHSU
	OpMULHU
	OpDIV
	OpDIVU
	OpREM
	OpREMU

	// Integer register-immediate.
	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI
	OpSLLI
	OpSRLI
	OpSRAI

	// Loads.
	OpLB
	OpLH
	OpLW
	OpLBU
	OpLHU

	// Stores.
	OpSB
	OpSH
	OpSW

	// Branches.
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU

	// Jumps.
	OpJAL
	OpJALR

	// Upper-immediate.
	OpLUI
	OpAUIPC

	// System.
	OpECALL
	OpEBREAK
)

// Format represents an instruction encoding format.
type Format uint8

// RV32I/M encoding formats.
const (
	FormatUnknown Format = iota
	FormatR              // register-register
	FormatI              // register-immediate, loads, JALR, system
	FormatS              // stores
	FormatB              // branches
	FormatU              // LUI, AUIPC
	FormatJ              // JAL
)

var opNames = map[Op]string{
	OpADD: "ADD", OpSUB: "SUB", OpSLL: "SLL", OpSLT: "SLT", OpSLTU: "SLTU",
	OpXOR: "XOR", OpSRL: "SRL", OpSRA: "SRA", OpOR: "OR", OpAND: "AND",
	OpMUL: "MUL", OpMULH: "MULH", OpMULHSU: "MULHSU", OpMULHU: "MULHU",
	OpDIV: "DIV", OpDIVU: "DIVU", OpREM: "REM", OpREMU: "REMU",
	OpADDI: "ADDI", OpSLTI: "SLTI", OpSLTIU: "SLTIU", OpXORI: "XORI",
	OpORI: "ORI", OpANDI: "ANDI", OpSLLI: "SLLI", OpSRLI: "SRLI", OpSRAI: "SRAI",
	OpLB: "LB", OpLH: "LH", OpLW: "LW", OpLBU: "LBU", OpLHU: "LHU",
	OpSB: "SB", OpSH: "SH", OpSW: "SW",
	OpBEQ: "BEQ", OpBNE: "BNE", OpBLT: "BLT", OpBGE: "BGE", OpBLTU: "BLTU", OpBGEU: "BGEU",
	OpJAL: "JAL", OpJALR: "JALR", OpLUI: "LUI", OpAUIPC: "AUIPC",
	OpECALL: "ECALL", OpEBREAK: "EBREAK",
}

// String names an Op for debug output.
func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return "UNKNOWN"
}
