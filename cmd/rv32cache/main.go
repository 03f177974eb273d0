// Package main provides the entry point for rv32cache.
// rv32cache is a trace-driven cache simulator built on a minimal RV32IM
// instruction-set emulator: it runs a guest image under both the LRU and
// bit-pLRU replacement policies and reports their hit-rate comparison.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/sarchlab/rv32cache/driver"
	"github.com/sarchlab/rv32cache/loader"
)

var (
	inputPath = flag.String("i", "", "Path to the input image file (required)")
	outPath   = flag.String("o", "", "Path to write the post-run output image")
	debug     = flag.Bool("d", false, "Enable diagnostic tracing")
	debugLong = flag.Bool("debug", false, "Enable diagnostic tracing (long form)")
)

func main() {
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: rv32cache -i <path> [-o <path> <start_addr> <size>] [-d|--debug]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	debugMode := *debug || *debugLong

	prog, err := loader.Load(*inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rv32cache: %v\n", err)
		os.Exit(1)
	}

	results, err := driver.Run(prog, debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rv32cache: %v\n", err)
		os.Exit(1)
	}

	fmt.Print(driver.FormatTable(results))

	if *outPath != "" {
		if err := writeOutputImage(results[0], flag.Args()); err != nil {
			fmt.Fprintf(os.Stderr, "rv32cache: %v\n", err)
			os.Exit(1)
		}
	}
}

// writeOutputImage handles the -o <path> <start_addr> <size> trio: path
// itself comes from the -o flag, start_addr and size are consumed as
// positional arguments the way the teacher consumes its ELF path.
func writeOutputImage(lru driver.PolicyResult, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("-o requires <start_addr> <size> positional arguments")
	}
	startAddr, err := strconv.ParseUint(args[0], 0, 32)
	if err != nil {
		return fmt.Errorf("invalid start_addr %q: %w", args[0], err)
	}
	size, err := strconv.ParseUint(args[1], 0, 32)
	if err != nil {
		return fmt.Errorf("invalid size %q: %w", args[1], err)
	}

	bytes := make([]byte, size)
	for i := range bytes {
		b, err := lru.Memory.ReadByte(uint32(startAddr) + uint32(i))
		if err != nil {
			return fmt.Errorf("reading output window: %w", err)
		}
		bytes[i] = b
	}

	return loader.Save(*outPath, lru.PC, lru.Regs, uint32(startAddr), bytes)
}
