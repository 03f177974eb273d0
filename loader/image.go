// Package loader reads and writes the simulator's little-endian binary
// image format: a register prologue followed by zero or more memory
// fragments.
package loader

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Program represents a loaded image ready for execution: the initial PC,
// registers 1..31, and the memory fragments to install before the guest
// runs.
type Program struct {
	// PC is the initial program counter.
	PC uint32
	// Regs holds the initial value of registers 1..31 at index 1..31;
	// index 0 is unused (register 0 is always zero).
	Regs [32]uint32
	// InitialRA is register 1's value at load time, the sentinel PC that
	// signals graceful termination.
	InitialRA uint32
	// Fragments are the memory regions to install before execution.
	Fragments []Fragment
}

// Fragment is one (addr, size, bytes) memory region from the image file.
type Fragment struct {
	Addr  uint32
	Bytes []byte
}

// Load reads an image file: PC (4 bytes), registers 1..31 (31 x 4 bytes),
// then memory fragments until EOF. Register 1's value is captured as
// InitialRA.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer func() { _ = f.Close() }()

	prog := &Program{}

	if err := binary.Read(f, binary.LittleEndian, &prog.PC); err != nil {
		return nil, fmt.Errorf("failed to read PC: %w", err)
	}

	for reg := 1; reg <= 31; reg++ {
		if err := binary.Read(f, binary.LittleEndian, &prog.Regs[reg]); err != nil {
			return nil, fmt.Errorf("failed to read register %d: %w", reg, err)
		}
	}
	prog.InitialRA = prog.Regs[1]

	for {
		var addr, size uint32
		if err := binary.Read(f, binary.LittleEndian, &addr); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to read fragment address: %w", err)
		}
		if err := binary.Read(f, binary.LittleEndian, &size); err != nil {
			return nil, fmt.Errorf("failed to read fragment size: %w", err)
		}
		bytes := make([]byte, size)
		if _, err := io.ReadFull(f, bytes); err != nil {
			return nil, fmt.Errorf("failed to read fragment at 0x%X: %w", addr, err)
		}
		prog.Fragments = append(prog.Fragments, Fragment{Addr: addr, Bytes: bytes})
	}

	return prog, nil
}

// Save writes the output image format: the register prologue (the
// post-run PC and registers 1..31) followed by exactly one fragment
// holding `size` bytes read starting at `startAddr`.
func Save(path string, pc uint32, regs [32]uint32, startAddr uint32, bytes []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output image file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := binary.Write(f, binary.LittleEndian, pc); err != nil {
		return fmt.Errorf("failed to write PC: %w", err)
	}
	for reg := 1; reg <= 31; reg++ {
		if err := binary.Write(f, binary.LittleEndian, regs[reg]); err != nil {
			return fmt.Errorf("failed to write register %d: %w", reg, err)
		}
	}
	if err := binary.Write(f, binary.LittleEndian, startAddr); err != nil {
		return fmt.Errorf("failed to write fragment address: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(bytes))); err != nil {
		return fmt.Errorf("failed to write fragment size: %w", err)
	}
	if _, err := f.Write(bytes); err != nil {
		return fmt.Errorf("failed to write fragment bytes: %w", err)
	}

	return nil
}
