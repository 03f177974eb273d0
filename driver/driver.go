// Package driver runs the guest image under each replacement policy and
// reports the resulting hit-rate comparison, the way the teacher's
// cmd/m2sim main separates runEmulation/runTiming into one function per
// execution mode sharing the same loaded program.
package driver

import (
	"fmt"

	"github.com/sarchlab/rv32cache/cache"
	"github.com/sarchlab/rv32cache/emu"
	"github.com/sarchlab/rv32cache/loader"
	"github.com/sarchlab/rv32cache/mem"
)

// PolicyResult holds one policy run's outcome: final register/PC state,
// the flushed memory, and the accumulated cache statistics.
type PolicyResult struct {
	Name   string
	Stats  cache.Stats
	Regs   [32]uint32
	PC     uint32
	Memory *mem.Memory
}

// Run executes prog once per replacement policy (LRU, then bit-pLRU),
// fully independent per spec.md §5: each run allocates its own Cache and
// Memory. debug is passed to the emulator through emu.WithDebug; strict
// decoding is not enabled.
func Run(prog *loader.Program, debug bool) ([]PolicyResult, error) {
	policies := []struct {
		name    string
		factory func() cache.Policy
	}{
		{"LRU", func() cache.Policy { return cache.NewLRUPolicy() }},
		{"bpLRU", func() cache.Policy { return cache.NewBitPLRUPolicy() }},
	}

	results := make([]PolicyResult, 0, len(policies))
	for _, p := range policies {
		result, err := runOne(prog, p.name, p.factory(), debug)
		if err != nil {
			return results, fmt.Errorf("run under %s: %w", p.name, err)
		}
		results = append(results, result)
	}
	return results, nil
}

func runOne(prog *loader.Program, name string, policy cache.Policy, debug bool) (PolicyResult, error) {
	m := mem.NewMemory()
	for _, frag := range prog.Fragments {
		for i, b := range frag.Bytes {
			if err := m.WriteByte(frag.Addr+uint32(i), b); err != nil {
				return PolicyResult{}, fmt.Errorf("installing fragment at 0x%X: %w", frag.Addr, err)
			}
		}
	}

	backing := cache.NewMemoryBacking(m)
	c := cache.New(backing, policy)

	emulator := emu.NewEmulator(c, emu.WithDebug(debug))
	emulator.SetInitialState(prog.PC, prog.Regs)

	if err := emulator.Run(); err != nil {
		return PolicyResult{}, err
	}

	if err := c.Flush(); err != nil {
		return PolicyResult{}, fmt.Errorf("flushing cache: %w", err)
	}

	return PolicyResult{
		Name:   name,
		Stats:  c.Stats(),
		Regs:   emulator.Regs.X,
		PC:     emulator.Regs.PC,
		Memory: m,
	}, nil
}

// FormatTable renders the spec.md §6 two-row markdown comparison table.
func FormatTable(results []PolicyResult) string {
	out := "| replacement | hit_rate | instr_hit_rate | data_hit_rate | instr_access | instr_hit | data_access | data_hit |\n"
	out += "|---|---|---|---|---|---|---|---|\n"
	for _, r := range results {
		s := r.Stats
		totalAccess := s.InstrAccess + s.DataAccess
		totalHit := s.InstrHit + s.DataHit
		out += fmt.Sprintf("| %s | %s | %s | %s | %d | %d | %d | %d |\n",
			r.Name,
			percent(totalHit, totalAccess),
			percent(s.InstrHit, s.InstrAccess),
			percent(s.DataHit, s.DataAccess),
			s.InstrAccess, s.InstrHit, s.DataAccess, s.DataHit)
	}
	return out
}

// percent formats a hit rate as %3.4f%%, or the literal "nan%" when the
// access category is empty, per spec.md §6.
func percent(hit, access uint64) string {
	if access == 0 {
		return "nan%"
	}
	return fmt.Sprintf("%3.4f%%", 100*float64(hit)/float64(access))
}
