package emu

import (
	"fmt"
	"os"

	"github.com/sarchlab/rv32cache/cache"
	"github.com/sarchlab/rv32cache/insts"
)

// maxInstructions is the hard retirement ceiling from spec.md §4.5: a
// guest that never returns to initial_ra and never traps is stopped here
// rather than run forever.
const maxInstructions = 1_000_000

// EmulatorOption configures an Emulator at construction, mirroring the
// teacher's functional-options pattern for its own Emulator type.
type EmulatorOption func(*Emulator)

// WithStderr overrides where diagnostics (the instruction-limit warning)
// are written. Defaults to os.Stderr.
func WithStderr(w *os.File) EmulatorOption {
	return func(e *Emulator) { e.stderr = w }
}

// WithDebug sets the emulator's debug flag. No diagnostic depends on it:
// misaligned data accesses are performed without a warning in either
// mode, and the instruction-limit warning is printed regardless.
func WithDebug(debug bool) EmulatorOption {
	return func(e *Emulator) { e.debug = debug }
}

// WithStrictDecode turns an unknown opcode from a silently-skipped PC+4
// advance into a fatal insts.ErrUnknownOpcode, per spec.md §9's strict
// mode recommendation for test suites.
func WithStrictDecode(strict bool) EmulatorOption {
	return func(e *Emulator) { e.strictDecode = strict }
}

// WithTrapHandler overrides the ECALL/EBREAK handler. Defaults to
// DefaultTrapHandler.
func WithTrapHandler(h TrapHandler) EmulatorOption {
	return func(e *Emulator) { e.trapHandler = h }
}

// Emulator ties the register file, ALU, load/store unit, branch unit, and
// decoder to a cache-backed memory system, and runs the fetch-decode-
// execute loop until one of the spec.md §4.5 termination conditions is
// reached.
type Emulator struct {
	Regs *RegFile

	alu         *ALU
	lsu         *LoadStoreUnit
	branch      *BranchUnit
	decoder     *insts.Decoder
	trapHandler TrapHandler

	stderr       *os.File
	debug        bool
	strictDecode bool

	initialRA uint32
	retired   uint64
	halted    bool
}

// NewEmulator creates an Emulator over the given cache, which supplies
// the instruction fetch and data load/store access path.
func NewEmulator(c *cache.Cache, opts ...EmulatorOption) *Emulator {
	regs := &RegFile{}
	e := &Emulator{
		Regs:        regs,
		alu:         NewALU(regs),
		lsu:         NewLoadStoreUnit(regs, c),
		branch:      NewBranchUnit(regs),
		decoder:     insts.NewDecoder(),
		trapHandler: NewDefaultTrapHandler(),
		stderr:      os.Stderr,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetInitialState loads PC and the initial register values, and captures
// initial_ra from register 1 per spec.md §4.5.
func (e *Emulator) SetInitialState(pc uint32, regs [32]uint32) {
	e.Regs.PC = pc
	e.Regs.X = regs
	e.Regs.PinZeroRegister()
	e.initialRA = e.Regs.ReadReg(1)
}

// Halted reports whether the execution loop has stopped.
func (e *Emulator) Halted() bool {
	return e.halted
}

// RetiredCount reports how many instructions have been executed.
func (e *Emulator) RetiredCount() uint64 {
	return e.retired
}

// Run executes instructions until one of spec.md §4.5's termination
// conditions is reached: PC equals initial_ra, a trap halts execution, or
// the retirement count reaches maxInstructions.
func (e *Emulator) Run() error {
	if e.Regs.PC == e.initialRA {
		e.halted = true
		return nil
	}
	for {
		halt, err := e.Step()
		if err != nil {
			return err
		}
		if halt {
			e.halted = true
			return nil
		}
		if e.Regs.PC == e.initialRA {
			e.halted = true
			return nil
		}
		if e.retired >= maxInstructions {
			fmt.Fprintf(e.stderr, "rv32cache: instruction limit of %d exceeded, stopping\n", maxInstructions)
			e.halted = true
			return nil
		}
	}
}

// Step fetches, decodes, and executes exactly one instruction. It
// reports whether a trap (ECALL/EBREAK) halted execution.
func (e *Emulator) Step() (bool, error) {
	e.Regs.PinZeroRegister()

	word, err := e.lsu.Fetch(e.Regs.PC)
	if err != nil {
		return false, fmt.Errorf("fetch at 0x%X: %w", e.Regs.PC, err)
	}

	var inst *insts.Instruction
	if e.strictDecode {
		inst, err = e.decoder.DecodeStrict(word)
		if err != nil {
			return false, fmt.Errorf("decode at 0x%X: %w", e.Regs.PC, err)
		}
	} else {
		inst = e.decoder.Decode(word)
	}

	halted, err := e.execute(inst)
	if err != nil {
		return false, err
	}

	e.retired++
	e.Regs.PinZeroRegister()
	return halted, nil
}

func (e *Emulator) execute(inst *insts.Instruction) (bool, error) {
	pc := e.Regs.PC
	nextPC := pc + 4

	switch inst.Op {
	case insts.OpADD:
		e.alu.Reg(opADD, inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpSUB:
		e.alu.Reg(opSUB, inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpSLL:
		e.alu.Reg(opSLL, inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpSLT:
		e.alu.Reg(opSLT, inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpSLTU:
		e.alu.Reg(opSLTU, inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpXOR:
		e.alu.Reg(opXOR, inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpSRL:
		e.alu.Reg(opSRL, inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpSRA:
		e.alu.Reg(opSRA, inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpOR:
		e.alu.Reg(opOR, inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpAND:
		e.alu.Reg(opAND, inst.Rd, inst.Rs1, inst.Rs2)

	case insts.OpMUL:
		e.alu.Reg(opMUL, inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpMULH:
		e.alu.Reg(opMULH, inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpMULHSU:
		e.alu.Reg(opMULHSU, inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpMULHU:
		e.alu.Reg(opMULHU, inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpDIV:
		e.alu.Reg(opDIV, inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpDIVU:
		e.alu.Reg(opDIVU, inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpREM:
		e.alu.Reg(opREM, inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpREMU:
		e.alu.Reg(opREMU, inst.Rd, inst.Rs1, inst.Rs2)

	case insts.OpADDI:
		e.alu.Imm(opADD, inst.Rd, inst.Rs1, inst.Imm)
	case insts.OpSLTI:
		e.alu.Imm(opSLT, inst.Rd, inst.Rs1, inst.Imm)
	case insts.OpSLTIU:
		e.alu.Imm(opSLTU, inst.Rd, inst.Rs1, inst.Imm)
	case insts.OpXORI:
		e.alu.Imm(opXOR, inst.Rd, inst.Rs1, inst.Imm)
	case insts.OpORI:
		e.alu.Imm(opOR, inst.Rd, inst.Rs1, inst.Imm)
	case insts.OpANDI:
		e.alu.Imm(opAND, inst.Rd, inst.Rs1, inst.Imm)
	case insts.OpSLLI:
		e.alu.Imm(opSLL, inst.Rd, inst.Rs1, inst.Imm)
	case insts.OpSRLI:
		e.alu.Imm(opSRL, inst.Rd, inst.Rs1, inst.Imm)
	case insts.OpSRAI:
		e.alu.Imm(opSRA, inst.Rd, inst.Rs1, inst.Imm)

	case insts.OpLB:
		if err := e.load(1, true, inst); err != nil {
			return false, err
		}
	case insts.OpLH:
		if err := e.load(2, true, inst); err != nil {
			return false, err
		}
	case insts.OpLW:
		if err := e.load(4, true, inst); err != nil {
			return false, err
		}
	case insts.OpLBU:
		if err := e.load(1, false, inst); err != nil {
			return false, err
		}
	case insts.OpLHU:
		if err := e.load(2, false, inst); err != nil {
			return false, err
		}

	case insts.OpSB:
		if err := e.store(1, inst); err != nil {
			return false, err
		}
	case insts.OpSH:
		if err := e.store(2, inst); err != nil {
			return false, err
		}
	case insts.OpSW:
		if err := e.store(4, inst); err != nil {
			return false, err
		}

	case insts.OpBEQ:
		nextPC = e.takeBranch(condBEQ, inst, pc, nextPC)
	case insts.OpBNE:
		nextPC = e.takeBranch(condBNE, inst, pc, nextPC)
	case insts.OpBLT:
		nextPC = e.takeBranch(condBLT, inst, pc, nextPC)
	case insts.OpBGE:
		nextPC = e.takeBranch(condBGE, inst, pc, nextPC)
	case insts.OpBLTU:
		nextPC = e.takeBranch(condBLTU, inst, pc, nextPC)
	case insts.OpBGEU:
		nextPC = e.takeBranch(condBGEU, inst, pc, nextPC)

	case insts.OpJAL:
		nextPC = e.branch.JAL(inst.Rd, inst.Imm, pc)
	case insts.OpJALR:
		nextPC = e.branch.JALR(inst.Rd, inst.Rs1, inst.Imm, pc)

	case insts.OpLUI:
		e.Regs.WriteReg(inst.Rd, uint32(inst.Imm))
	case insts.OpAUIPC:
		e.Regs.WriteReg(inst.Rd, pc+uint32(inst.Imm))

	case insts.OpECALL, insts.OpEBREAK:
		// spec.md §4.4: the executor halts without further PC advance, so
		// Regs.PC is left at the trap instruction's own address.
		result := e.trapHandler.Handle()
		return result.Halted, nil

	case insts.OpUnknown:
		// Silently skipped per spec.md §4.4; strict mode never reaches
		// here because DecodeStrict already failed in Step.

	default:
		// All known ops are handled above; nothing to do for anything
		// reachable only by an exhaustive switch.
	}

	e.Regs.PC = nextPC
	return false, nil
}

func (e *Emulator) load(size int, signExtend bool, inst *insts.Instruction) error {
	return e.lsu.Load(size, signExtend, inst.Rd, inst.Rs1, inst.Imm)
}

func (e *Emulator) store(size int, inst *insts.Instruction) error {
	return e.lsu.Store(size, inst.Rs1, inst.Rs2, inst.Imm)
}

func (e *Emulator) takeBranch(cond func(x, y uint32) bool, inst *insts.Instruction, pc, fallthroughPC uint32) uint32 {
	target, taken := e.branch.Branch(cond, inst.Rs1, inst.Rs2, inst.Imm, pc)
	if taken {
		return target
	}
	return fallthroughPC
}
