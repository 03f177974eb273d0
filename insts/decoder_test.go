package insts_test

import (
	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32cache/insts"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	Describe("Integer register-immediate (opcode 0x13)", func() {
		// ADDI x0, x0, 0 -> 0x00000013 (canonical NOP)
		It("should decode ADDI x0, x0, 0 as a NOP", func() {
			inst := decoder.Decode(0x00000013)

			Expect(inst.Op).To(Equal(insts.OpADDI))
			Expect(inst.Format).To(Equal(insts.FormatI))
			Expect(inst.Rd).To(Equal(uint8(0)))
			Expect(inst.Rs1).To(Equal(uint8(0)))
			Expect(inst.Imm).To(Equal(int32(0)))
		})

		// ADDI x5, x6, 10 -> 0x00A30293
		It("should decode ADDI x5, x6, 10", func() {
			inst := decoder.Decode(0x00A30293)

			Expect(inst.Op).To(Equal(insts.OpADDI))
			Expect(inst.Rd).To(Equal(uint8(5)))
			Expect(inst.Rs1).To(Equal(uint8(6)))
			Expect(inst.Imm).To(Equal(int32(10)))
		})

		// ADDI x5, x6, -1 -> immediate all-ones, sign extends to -1
		It("should sign-extend a negative immediate", func() {
			word := uint32(0xFFF30293) // imm=-1, rs1=6, funct3=0, rd=5, opcode=0x13
			inst := decoder.Decode(word)

			Expect(inst.Op).To(Equal(insts.OpADDI))
			Expect(inst.Imm).To(Equal(int32(-1)))
		})

		// SRAI x5, x6, 3 -> funct7=0100000 distinguishes from SRLI
		It("should distinguish SRAI from SRLI via bit 30", func() {
			srai := decoder.Decode(0x40335293) // funct7=0x20, shamt=3, funct3=101
			Expect(srai.Op).To(Equal(insts.OpSRAI))
			Expect(srai.Imm).To(Equal(int32(3)))

			srli := decoder.Decode(0x00635293)
			Expect(srli.Op).To(Equal(insts.OpSRLI))
		})
	})

	Describe("Integer register-register (opcode 0x33)", func() {
		// ADD x5, x6, x7 -> 0x007302B3
		It("should decode ADD x5, x6, x7", func() {
			inst := decoder.Decode(0x007302B3)

			Expect(inst.Op).To(Equal(insts.OpADD))
			Expect(inst.Format).To(Equal(insts.FormatR))
			Expect(inst.Rd).To(Equal(uint8(5)))
			Expect(inst.Rs1).To(Equal(uint8(6)))
			Expect(inst.Rs2).To(Equal(uint8(7)))
		})

		// SUB x5, x6, x7 -> funct7=0100000 -> 0x407302B3
		It("should decode SUB x5, x6, x7", func() {
			inst := decoder.Decode(0x407302B3)

			Expect(inst.Op).To(Equal(insts.OpSUB))
		})

		Describe("M extension (funct7 = 0000001)", func() {
			// DIV x5, x6, x0 -> 0x020342B3
			It("should decode DIV x5, x6, x0", func() {
				inst := decoder.Decode(0x020342B3)

				Expect(inst.Op).To(Equal(insts.OpDIV))
				Expect(inst.Rd).To(Equal(uint8(5)))
				Expect(inst.Rs1).To(Equal(uint8(6)))
				Expect(inst.Rs2).To(Equal(uint8(0)))
			})

			// REMU x5, x6, x0 -> 0x020372B3
			It("should decode REMU x5, x6, x0", func() {
				inst := decoder.Decode(0x020372B3)

				Expect(inst.Op).To(Equal(insts.OpREMU))
			})
		})
	})

	Describe("Loads and stores", func() {
		// LW x5, 4(x6) -> 0x00432283
		It("should decode LW x5, 4(x6)", func() {
			inst := decoder.Decode(0x00432283)

			Expect(inst.Op).To(Equal(insts.OpLW))
			Expect(inst.Format).To(Equal(insts.FormatI))
			Expect(inst.Rd).To(Equal(uint8(5)))
			Expect(inst.Rs1).To(Equal(uint8(6)))
			Expect(inst.Imm).To(Equal(int32(4)))
		})

		// SW x5, 4(x6) -> 0x00532223
		It("should decode SW x5, 4(x6)", func() {
			inst := decoder.Decode(0x00532223)

			Expect(inst.Op).To(Equal(insts.OpSW))
			Expect(inst.Format).To(Equal(insts.FormatS))
			Expect(inst.Rs1).To(Equal(uint8(6)))
			Expect(inst.Rs2).To(Equal(uint8(5)))
			Expect(inst.Imm).To(Equal(int32(4)))
		})
	})

	Describe("Branches (opcode 0x63)", func() {
		// BEQ x1, x2, 8 -> 0x00208463
		It("should decode BEQ x1, x2, 8", func() {
			inst := decoder.Decode(0x00208463)

			Expect(inst.Op).To(Equal(insts.OpBEQ))
			Expect(inst.Format).To(Equal(insts.FormatB))
			Expect(inst.Rs1).To(Equal(uint8(1)))
			Expect(inst.Rs2).To(Equal(uint8(2)))
			Expect(inst.Imm).To(Equal(int32(8)))
		})
	})

	Describe("Jumps", func() {
		// JAL x1, 16 -> 0x010000EF
		It("should decode JAL x1, 16", func() {
			inst := decoder.Decode(0x010000EF)

			Expect(inst.Op).To(Equal(insts.OpJAL))
			Expect(inst.Format).To(Equal(insts.FormatJ))
			Expect(inst.Rd).To(Equal(uint8(1)))
			Expect(inst.Imm).To(Equal(int32(16)))
		})

		// JALR x0, 0(x1) -> 0x00008067
		It("should decode JALR x0, 0(x1)", func() {
			inst := decoder.Decode(0x00008067)

			Expect(inst.Op).To(Equal(insts.OpJALR))
			Expect(inst.Rd).To(Equal(uint8(0)))
			Expect(inst.Rs1).To(Equal(uint8(1)))
			Expect(inst.Imm).To(Equal(int32(0)))
		})
	})

	Describe("Upper immediate", func() {
		// LUI x5, 0x12345 -> 0x123452B7
		It("should decode LUI x5, 0x12345000", func() {
			inst := decoder.Decode(0x123452B7)

			Expect(inst.Op).To(Equal(insts.OpLUI))
			Expect(inst.Format).To(Equal(insts.FormatU))
			Expect(inst.Rd).To(Equal(uint8(5)))
			Expect(inst.Imm).To(Equal(int32(0x12345000)))
		})
	})

	Describe("System", func() {
		It("should decode ECALL", func() {
			inst := decoder.Decode(0x00000073)
			Expect(inst.Op).To(Equal(insts.OpECALL))
		})

		It("should decode EBREAK", func() {
			inst := decoder.Decode(0x00100073)
			Expect(inst.Op).To(Equal(insts.OpEBREAK))
		})
	})

	Describe("Unknown opcodes", func() {
		It("should decode to OpUnknown leniently", func() {
			inst := decoder.Decode(0xFFFFFFFF)
			Expect(inst.Op).To(Equal(insts.OpUnknown))
			Expect(inst.Format).To(Equal(insts.FormatUnknown))
		})

		It("should report ErrUnknownOpcode in strict mode", func() {
			_, err := decoder.DecodeStrict(0xFFFFFFFF)
			Expect(err).To(MatchError(insts.ErrUnknownOpcode))
		})
	})

	Describe("Full instruction struct comparison", func() {
		It("should decode ADD x3, x1, x2 to the exact expected struct", func() {
			// ADD x3, x1, x2: funct7=0 rs2=2 rs1=1 funct3=0 rd=3 opcode=0x33
			word := uint32(0x002081B3)
			inst := decoder.Decode(word)

			want := &insts.Instruction{
				Op:     insts.OpADD,
				Format: insts.FormatR,
				Rd:     3,
				Rs1:    1,
				Rs2:    2,
				Imm:    0,
				Raw:    word,
			}
			Expect(cmp.Diff(want, inst)).To(BeEmpty())
		})
	})
})
