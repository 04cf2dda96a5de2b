package z80

import "testing"

func newTestCPU() (*CPU, *testBus) {
	bus := &testBus{}
	return New(bus, newTestIO()), bus
}

func TestLDBCImmediate(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0, 0x01, 0xBC, 0x1B) // LD BC,0x1BBC
	run(t, c, 1, 64)
	if got := c.Registers().BC(); got != 0x1BBC {
		t.Fatalf("BC = 0x%04X, want 0x1BBC", got)
	}
	if c.Ticks != 10 {
		t.Fatalf("ticks = %d, want 10", c.Ticks)
	}
}

func TestLDAIndexedDisplacement(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0, 0xDD, 0x7E, 0x0C) // LD A,(IX+0x0C)
	bus.mem[0x100C] = 0x42
	c.reg.IX = 0x1000
	run(t, c, 1, 64)
	if c.Registers().A != 0x42 {
		t.Fatalf("A = 0x%02X, want 0x42", c.Registers().A)
	}
}

func TestAddAB(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0, 0x80) // ADD A,B
	c.reg.SetAF(0x0F00)
	c.reg.SetBC(0x0100)
	run(t, c, 1, 64)
	regs := c.Registers()
	if regs.A != 0x10 {
		t.Fatalf("A = 0x%02X, want 0x10", regs.A)
	}
	if regs.F&flagH == 0 {
		t.Fatalf("expected half-carry set")
	}
	if regs.F&flagC != 0 {
		t.Fatalf("expected carry clear")
	}
}

func TestLDIRCopiesTwoBytes(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0, 0xED, 0xB0) // LDIR
	bus.mem[0x2000] = 0xAA
	bus.mem[0x2001] = 0xBB
	c.reg.SetHL(0x2000)
	c.reg.SetDE(0x3000)
	c.reg.SetBC(2)

	// LDIR re-executes itself while BC != 0; run a generous tick budget and
	// let the pipeline drain naturally across both iterations.
	ticks := 0
	for i := 0; i < 200 && (i == 0 || c.curKind != prefixNone || len(c.pipeline) > 0 || c.reg.BC() != 0); i++ {
		if err := c.Clock(); err != nil {
			t.Fatalf("clock: %v", err)
		}
		ticks++
	}
	if bus.mem[0x3000] != 0xAA || bus.mem[0x3001] != 0xBB {
		t.Fatalf("LDIR did not copy both bytes: %02X %02X", bus.mem[0x3000], bus.mem[0x3001])
	}
	if c.Registers().BC() != 0 {
		t.Fatalf("BC = 0x%04X, want 0", c.Registers().BC())
	}
}

func TestCallAndReturn(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0, 0xCD, 0x10, 0x00) // CALL 0x0010
	bus.load(0x10, 0xC9)          // RET
	c.reg.SP = 0xFF00

	run(t, c, 1, 64) // CALL
	if c.Registers().PC != 0x10 {
		t.Fatalf("PC after CALL = 0x%04X, want 0x0010", c.Registers().PC)
	}
	run(t, c, 1, 64) // RET
	if c.Registers().PC != 0x03 {
		t.Fatalf("PC after RET = 0x%04X, want 0x0003", c.Registers().PC)
	}
	if c.Registers().SP != 0xFF00 {
		t.Fatalf("SP after RET/CALL round trip = 0x%04X, want 0xFF00", c.Registers().SP)
	}
}

func TestIncMemTiming(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0, 0x34) // INC (HL)
	c.reg.SetHL(0x3000)
	bus.mem[0x3000] = 0x0F
	run(t, c, 1, 64)
	if c.Ticks != 11 {
		t.Fatalf("ticks = %d, want 11 for INC (HL)", c.Ticks)
	}
	if bus.mem[0x3000] != 0x10 {
		t.Fatalf("mem[0x3000] = 0x%02X, want 0x10", bus.mem[0x3000])
	}
	if c.Registers().F&flagH == 0 {
		t.Fatalf("expected half-carry set")
	}
}

func TestIndexedBitTiming(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0, 0xDD, 0xCB, 0x02, 0x46) // BIT 0,(IX+2)
	c.reg.IX = 0x2000
	bus.mem[0x2002] = 0x01
	run(t, c, 1, 64)
	if c.Ticks != 20 {
		t.Fatalf("ticks = %d, want 20 for BIT b,(IX+d)", c.Ticks)
	}
	if c.Registers().F&flagZ != 0 {
		t.Fatalf("expected Z clear, bit 0 of 0x01 is set")
	}
}

func TestIndexedRotateTiming(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0, 0xDD, 0xCB, 0x02, 0x06) // RLC (IX+2)
	c.reg.IX = 0x2000
	bus.mem[0x2002] = 0x80
	run(t, c, 1, 64)
	if c.Ticks != 23 {
		t.Fatalf("ticks = %d, want 23 for RLC (IX+d)", c.Ticks)
	}
	if bus.mem[0x2002] != 0x01 {
		t.Fatalf("mem[0x2002] = 0x%02X, want 0x01", bus.mem[0x2002])
	}
	if c.Registers().F&flagC == 0 {
		t.Fatalf("expected carry set from rotated-out bit 7")
	}
}

func TestJPImmediateTiming(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0, 0xC3, 0x34, 0x12) // JP 0x1234
	run(t, c, 1, 64)
	if c.Registers().PC != 0x1234 {
		t.Fatalf("PC = 0x%04X, want 0x1234", c.Registers().PC)
	}
	if c.Ticks != 10 {
		t.Fatalf("ticks = %d, want 10 for JP nn", c.Ticks)
	}
}

func TestJPConditionalTiming(t *testing.T) {
	// JP NZ,nn, condition true (Z clear): jumps, still 10 T-states.
	c, bus := newTestCPU()
	bus.load(0, 0xC2, 0x34, 0x12) // JP NZ,0x1234
	c.reg.SetAF(0x0000)          // Z clear
	run(t, c, 1, 64)
	if c.Registers().PC != 0x1234 {
		t.Fatalf("PC = 0x%04X, want 0x1234", c.Registers().PC)
	}
	if c.Ticks != 10 {
		t.Fatalf("ticks = %d, want 10 for JP NZ,nn taken", c.Ticks)
	}

	// condition false (Z set): falls through, same 10 T-states.
	c2, bus2 := newTestCPU()
	bus2.load(0, 0xC2, 0x34, 0x12)
	c2.reg.SetAF(0x0040) // Z set
	run(t, c2, 1, 64)
	if c2.Registers().PC != 0x03 {
		t.Fatalf("PC = 0x%04X, want 0x0003", c2.Registers().PC)
	}
	if c2.Ticks != 10 {
		t.Fatalf("ticks = %d, want 10 for JP NZ,nn not taken", c2.Ticks)
	}
}

func TestJRConditionalTiming(t *testing.T) {
	// JR NZ,e not taken: 7 T-states.
	c, bus := newTestCPU()
	bus.load(0, 0x20, 0x05) // JR NZ,+5
	c.reg.SetAF(0x0040)     // Z set -> not taken
	run(t, c, 1, 64)
	if c.Registers().PC != 0x02 {
		t.Fatalf("PC = 0x%04X, want 0x0002", c.Registers().PC)
	}
	if c.Ticks != 7 {
		t.Fatalf("ticks = %d, want 7 for JR NZ,e not taken", c.Ticks)
	}

	// taken: 12 T-states.
	c2, bus2 := newTestCPU()
	bus2.load(0, 0x20, 0x05) // JR NZ,+5
	c2.reg.SetAF(0x0000)     // Z clear -> taken
	run(t, c2, 1, 64)
	if c2.Registers().PC != 0x07 {
		t.Fatalf("PC = 0x%04X, want 0x0007", c2.Registers().PC)
	}
	if c2.Ticks != 12 {
		t.Fatalf("ticks = %d, want 12 for JR NZ,e taken", c2.Ticks)
	}
}

func TestCallImmediateTiming(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0, 0xCD, 0x10, 0x00) // CALL 0x0010
	c.reg.SP = 0xFF00
	run(t, c, 1, 64)
	if c.Registers().PC != 0x10 {
		t.Fatalf("PC = 0x%04X, want 0x0010", c.Registers().PC)
	}
	if c.Ticks != 17 {
		t.Fatalf("ticks = %d, want 17 for CALL nn", c.Ticks)
	}
}

func TestCallConditionalTiming(t *testing.T) {
	// CALL NZ,nn not taken: 10 T-states, PC just advances past the operand.
	c, bus := newTestCPU()
	bus.load(0, 0xC4, 0x10, 0x00) // CALL NZ,0x0010
	c.reg.SetAF(0x0040)          // Z set -> not taken
	c.reg.SP = 0xFF00
	run(t, c, 1, 64)
	if c.Registers().PC != 0x03 {
		t.Fatalf("PC = 0x%04X, want 0x0003", c.Registers().PC)
	}
	if c.Ticks != 10 {
		t.Fatalf("ticks = %d, want 10 for CALL NZ,nn not taken", c.Ticks)
	}

	// taken: 17 T-states.
	c2, bus2 := newTestCPU()
	bus2.load(0, 0xC4, 0x10, 0x00)
	c2.reg.SetAF(0x0000) // Z clear -> taken
	c2.reg.SP = 0xFF00
	run(t, c2, 1, 64)
	if c2.Registers().PC != 0x10 {
		t.Fatalf("PC = 0x%04X, want 0x0010", c2.Registers().PC)
	}
	if c2.Ticks != 17 {
		t.Fatalf("ticks = %d, want 17 for CALL NZ,nn taken", c2.Ticks)
	}
}

func TestRSTTiming(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0, 0xEF) // RST 0x28
	c.reg.SP = 0xFF00
	run(t, c, 1, 64)
	if c.Registers().PC != 0x28 {
		t.Fatalf("PC = 0x%04X, want 0x0028", c.Registers().PC)
	}
	if c.Registers().SP != 0xFEFE {
		t.Fatalf("SP = 0x%04X, want 0xFEFE", c.Registers().SP)
	}
	if c.Ticks != 11 {
		t.Fatalf("ticks = %d, want 11 for RST", c.Ticks)
	}
}

func TestDJNZTiming(t *testing.T) {
	// B becomes zero after the decrement: not taken, 8 T-states.
	c, bus := newTestCPU()
	bus.load(0, 0x10, 0x05) // DJNZ +5
	c.reg.B = 1
	run(t, c, 1, 64)
	if c.Registers().B != 0 {
		t.Fatalf("B = %d, want 0", c.Registers().B)
	}
	if c.Registers().PC != 0x02 {
		t.Fatalf("PC = 0x%04X, want 0x0002", c.Registers().PC)
	}
	if c.Ticks != 8 {
		t.Fatalf("ticks = %d, want 8 for DJNZ not taken", c.Ticks)
	}

	// B still nonzero after the decrement: taken, 13 T-states.
	c2, bus2 := newTestCPU()
	bus2.load(0, 0x10, 0x05) // DJNZ +5
	c2.reg.B = 2
	run(t, c2, 1, 64)
	if c2.Registers().B != 1 {
		t.Fatalf("B = %d, want 1", c2.Registers().B)
	}
	if c2.Registers().PC != 0x07 {
		t.Fatalf("PC = 0x%04X, want 0x0007", c2.Registers().PC)
	}
	if c2.Ticks != 13 {
		t.Fatalf("ticks = %d, want 13 for DJNZ taken", c2.Ticks)
	}
}

func TestRRDTiming(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0, 0xED, 0x67) // RRD
	c.reg.SetHL(0x4000)
	c.reg.A = 0x84
	bus.mem[0x4000] = 0x20
	run(t, c, 1, 64)
	if c.Ticks != 18 {
		t.Fatalf("ticks = %d, want 18 for RRD", c.Ticks)
	}
	if c.Registers().A != 0x80 {
		t.Fatalf("A = 0x%02X, want 0x80", c.Registers().A)
	}
	if bus.mem[0x4000] != 0x42 {
		t.Fatalf("mem[0x4000] = 0x%02X, want 0x42", bus.mem[0x4000])
	}
}

func TestExSPHLTiming(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0, 0xE3) // EX (SP),HL
	c.reg.SP = 0x5000
	c.reg.SetHL(0x1234)
	bus.mem[0x5000] = 0x78
	bus.mem[0x5001] = 0x56
	run(t, c, 1, 64)
	if c.Ticks != 19 {
		t.Fatalf("ticks = %d, want 19 for EX (SP),HL", c.Ticks)
	}
	if c.Registers().HL() != 0x5678 {
		t.Fatalf("HL = 0x%04X, want 0x5678", c.Registers().HL())
	}
	if bus.mem[0x5000] != 0x34 || bus.mem[0x5001] != 0x12 {
		t.Fatalf("stack = %02X %02X, want 34 12", bus.mem[0x5000], bus.mem[0x5001])
	}
}

func TestExSPIXTiming(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0, 0xDD, 0xE3) // EX (SP),IX
	c.reg.SP = 0x5000
	c.reg.IX = 0x1234
	bus.mem[0x5000] = 0x78
	bus.mem[0x5001] = 0x56
	run(t, c, 1, 64)
	if c.Ticks != 23 {
		t.Fatalf("ticks = %d, want 23 for EX (SP),IX", c.Ticks)
	}
	if c.Registers().IX != 0x5678 {
		t.Fatalf("IX = 0x%04X, want 0x5678", c.Registers().IX)
	}
}

func TestMaskableInterruptIM1(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0, 0xFB, 0x00, 0x00) // EI, NOP, NOP
	c.reg.SP = 0xFF00
	c.im = 1 // Reset leaves IM 0

	run(t, c, 1, 64) // EI

	c.Interrupt(FixedAckSource(0), false)
	run(t, c, 1, 64) // the acknowledge sequence takes the place of the next fetch

	if c.Registers().PC != 0x0038 {
		t.Fatalf("PC after IM1 ack = 0x%04X, want 0x0038", c.Registers().PC)
	}
	if c.iff1 {
		t.Fatalf("iff1 should be cleared on interrupt acceptance")
	}
}
