// Package emu provides functional RV32IM emulation: the register file,
// execution units, and the Emulator that ties them to a cache-backed
// memory system.
package emu

// RegFile represents the RV32 integer register file: 32 general-purpose
// registers (x0-x31) plus the program counter. x0 is hardwired to zero,
// per the data model: it reads as zero at every instruction boundary and
// writes to it are discarded.
type RegFile struct {
	X  [32]uint32
	PC uint32
}

// ReadReg reads a register. Register 0 always reads as zero.
func (r *RegFile) ReadReg(reg uint8) uint32 {
	if reg == 0 {
		return 0
	}
	return r.X[reg]
}

// WriteReg writes a register. Writes to register 0 are discarded.
func (r *RegFile) WriteReg(reg uint8, value uint32) {
	if reg == 0 {
		return
	}
	r.X[reg] = value
}

// PinZeroRegister forces X[0] back to zero. Called at every instruction
// boundary so that no decoded rd can ever leave a nonzero value behind,
// even if something wrote X[0] directly instead of through WriteReg.
func (r *RegFile) PinZeroRegister() {
	r.X[0] = 0
}
