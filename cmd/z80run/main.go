// Command z80run loads a raw binary image into a flat 64K memory and clocks
// a z80.CPU through it one T-state at a time, printing a register-map dump
// after every T-state when --trace is given. It exists for manual exploration of the core, in
// the spirit of the pyz80 package's own __main__ demo harness.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	z80 "github.com/user-none/go-chip-z80"
)

type flatMemory struct {
	ram [65536]uint8
}

func (m *flatMemory) Read(addr uint16) uint8        { return m.ram[addr] }
func (m *flatMemory) Write(addr uint16, v uint8)    { m.ram[addr] = v }

type nullIO struct{}

func (nullIO) Read(port, highAddress uint8) uint8     { return 0xFF }
func (nullIO) Write(port, highAddress, data uint8) {}

func main() {
	var origin uint16
	var maxTicks uint64
	var trace bool

	root := &cobra.Command{
		Use:   "z80run <image>",
		Short: "Load a raw binary image and step a Z80 core through it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading image: %w", err)
			}
			mem := &flatMemory{}
			copy(mem.ram[origin:], data)

			cpu := z80.New(mem, nullIO{})
			cpu.SetPC(origin)

			for i := uint64(0); maxTicks == 0 || i < maxTicks; i++ {
				if err := cpu.Clock(); err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "halted: %v\n", err)
					break
				}
				if trace {
					fmt.Fprint(cmd.OutOrStdout(), cpu.Registers().String())
				}
			}
			return nil
		},
	}

	root.Flags().Uint16Var(&origin, "origin", 0, "load address for the image")
	root.Flags().Uint64Var(&maxTicks, "ticks", 0, "stop after this many T-states (0 = run until fault)")
	root.Flags().BoolVar(&trace, "trace", false, "print a register-map dump after every T-state")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
