// Package z80 implements a cycle-accurate Zilog Z80 CPU emulator core.
//
// The Z80 does not execute an instruction atomically: each instruction is a
// sequence of fixed-duration bus cycles (opcode fetch, operand fetch, memory
// read/write, stack read/write, internal delay), and the CPU's Clock method
// advances exactly one such T-state per call. Callers drive the CPU and any
// external devices from the same clock so that bus timing stays in lock-step.
//
// The core owns the register file (including shadow registers, IX/IY, and
// flag bit plumbing), the opcode decode table, flag computation, and
// maskable/non-maskable interrupt acknowledgement. Memory and I/O are
// supplied by the caller through the Bus and IOBus interfaces; this package
// has no notion of RAM, ROM, or peripheral mapping.
package z80
