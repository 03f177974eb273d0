package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32cache/emu"
	"github.com/sarchlab/rv32cache/mem"
)

func encodeB(imm int32, rs2, rs1, funct3 uint32) uint32 {
	u := uint32(imm)
	bit12 := (u >> 12) & 0x1
	bit11 := (u >> 11) & 0x1
	bits10to5 := (u >> 5) & 0x3F
	bits4to1 := (u >> 1) & 0xF
	return (bit12 << 31) | (bits10to5 << 25) | (rs2 << 20) | (rs1 << 15) |
		(funct3 << 12) | (bits4to1 << 8) | (bit11 << 7) | 0x63
}

func encodeJ(imm int32, rd uint32) uint32 {
	u := uint32(imm)
	bit20 := (u >> 20) & 0x1
	bits10to1 := (u >> 1) & 0x3FF
	bit11 := (u >> 11) & 0x1
	bits19to12 := (u >> 12) & 0xFF
	return (bit20 << 31) | (bits10to1 << 21) | (bit11 << 20) | (bits19to12 << 12) | (rd << 7) | 0x6F
}

var _ = Describe("Branches and jumps", func() {
	var (
		e *emu.Emulator
		m *mem.Memory
	)

	BeforeEach(func() {
		e, m = newEmulator()
	})

	It("takes BEQ when operands are equal", func() {
		e.Regs.WriteReg(1, 5)
		e.Regs.WriteReg(2, 5)
		word := encodeB(8, 2, 1, 0b000) // BEQ x1, x2, +8
		Expect(m.Write32(0, word)).To(Succeed())

		_, err := e.Step()
		Expect(err).NotTo(HaveOccurred())
		Expect(e.Regs.PC).To(Equal(uint32(8)))
	})

	It("falls through BEQ when operands differ", func() {
		e.Regs.WriteReg(1, 5)
		e.Regs.WriteReg(2, 6)
		word := encodeB(8, 2, 1, 0b000)
		Expect(m.Write32(0, word)).To(Succeed())

		_, err := e.Step()
		Expect(err).NotTo(HaveOccurred())
		Expect(e.Regs.PC).To(Equal(uint32(4)))
	})

	It("JAL writes the link register and jumps", func() {
		word := encodeJ(0x100, 1) // JAL x1, +0x100
		Expect(m.Write32(0, word)).To(Succeed())

		_, err := e.Step()
		Expect(err).NotTo(HaveOccurred())
		Expect(e.Regs.ReadReg(1)).To(Equal(uint32(4)))
		Expect(e.Regs.PC).To(Equal(uint32(0x100)))
	})

	It("JALR clears the low target bit", func() {
		e.Regs.WriteReg(2, 0x101)
		word := encodeI(0, 2, 0, 3, 0x67) // JALR x3, 0(x2)
		Expect(m.Write32(0, word)).To(Succeed())

		_, err := e.Step()
		Expect(err).NotTo(HaveOccurred())
		Expect(e.Regs.ReadReg(3)).To(Equal(uint32(4)))
		Expect(e.Regs.PC).To(Equal(uint32(0x100)))
	})
})
