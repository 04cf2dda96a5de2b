package z80

func init() {
	registerIOAcc()
	registerIOReg()
	registerBlockIO()
}

// registerIOAcc fills IN A,(n) and OUT (n),A, whose port/high-address pair
// is (n, A) per the spec's IOBus contract.
func registerIOAcc() {
	register(&mainTable, 0xDB, entry(0, nil,
		func() *machineState { return newOD(odOpts{key: "n"}) },
		func() *machineState { return ioReadAcc() },
	))
	register(&mainTable, 0xD3, entry(0, nil,
		func() *machineState { return newOD(odOpts{key: "n"}) },
		func() *machineState { return ioWriteAcc() },
	))
}

func ioReadAcc() *machineState {
	return newIO(4, true, ioOpts{action: func(c *CPU) {
		c.reg.A = c.io.Read(uint8(c.scratch["n"]), c.reg.A)
	}})
}

func ioWriteAcc() *machineState {
	return newIO(4, true, ioOpts{action: func(c *CPU) {
		c.io.Write(uint8(c.scratch["n"]), c.reg.A, c.reg.A)
	}})
}

// registerIOReg fills the ED-prefixed IN r,(C) / OUT (C),r forms, whose
// port/high-address pair is (C, B).
func registerIOReg() {
	for r := 0; r < 8; r++ {
		if r == 6 {
			// 0x70 is the undocumented IN (HL),(C): reads and sets flags,
			// discarding the byte.
			register(&edTable, 0x70, entry(0, nil, func() *machineState { return inRegC("") }))
			register(&edTable, 0x71, entry(0, nil, func() *machineState { return outRegC("") }))
			continue
		}
		reg := r8[r]
		register(&edTable, uint8(0x40+r*8), entry(0, nil, func() *machineState { return inRegC(reg) }))
		register(&edTable, uint8(0x41+r*8), entry(0, nil, func() *machineState { return outRegC(reg) }))
	}
}

func inRegC(dst string) *machineState {
	return newIO(4, true, ioOpts{action: func(c *CPU) {
		v := c.io.Read(c.reg.C, c.reg.B)
		if dst != "" {
			c.reg.Set8(dst, v)
		}
		c.setFlags("SZ5H3P0-", flagInputs{Result: v, UseParity: true})
	}})
}

func outRegC(src string) *machineState {
	return newIO(4, true, ioOpts{action: func(c *CPU) {
		v := uint8(0)
		if src != "" {
			v, _ = c.reg.Get8(src)
		}
		c.io.Write(c.reg.C, c.reg.B, v)
	}})
}

// registerBlockIO fills INI/IND/OUTI/OUTD and their repeating forms. The
// second (ED) OCF carries 1 extra T-state (5 total), matching the
// documented (4,5,...) shape shared by both families.
func registerBlockIO() {
	register(&edTable, 0xA2, entry(1, nil, blockInRead(), blockInWrite(1, false)))
	register(&edTable, 0xB2, entry(1, nil, blockInRead(), blockInWrite(1, true)))
	register(&edTable, 0xAA, entry(1, nil, blockInRead(), blockInWrite(-1, false)))
	register(&edTable, 0xBA, entry(1, nil, blockInRead(), blockInWrite(-1, true)))

	register(&edTable, 0xA3, entry(1, nil, blockOutRead(), blockOutWrite(1, false)))
	register(&edTable, 0xB3, entry(1, nil, blockOutRead(), blockOutWrite(1, true)))
	register(&edTable, 0xAB, entry(1, nil, blockOutRead(), blockOutWrite(-1, false)))
	register(&edTable, 0xBB, entry(1, nil, blockOutRead(), blockOutWrite(-1, true)))
}

// blockInRead is the 4 T-state I/O read half of INI/IND/INIR/INDR: port
// (C), high address B.
func blockInRead() func() *machineState {
	return func() *machineState {
		return newIO(4, true, ioOpts{action: func(c *CPU) {
			c.scratch["__b"] = uint16(c.io.Read(c.reg.C, c.reg.B))
		}})
	}
}

// blockInWrite is the 3 T-state memory-write half: writes the byte read by
// blockInRead to (HL), advances HL by step, decrements B, sets Z from the
// result, and (for the repeating forms) appends the extra 5 T-state cycle
// and rewinds PC when B is still non-zero. 4 (I/O) + 3 (write) matches the
// documented 16 T-states for INI/IND; a continuing repeat adds 5 for 21.
func blockInWrite(step int16, repeat bool) func() *machineState {
	return func() *machineState {
		return &machineState{
			kind:  stateMW,
			total: 3,
			step: func(c *CPU, tickIndex int, final bool) {
				if !final {
					return
				}
				c.bus.Write(c.reg.HL(), uint8(c.scratch["__b"]))
				c.reg.SetHL(uint16(int32(c.reg.HL()) + int32(step)))
				c.reg.B--
				c.reg.forceflag("Z", c.reg.B == 0)
				c.reg.forceflag("N", true)
				if repeat && c.reg.B != 0 {
					c.prependPipeline([]*machineState{newIO(5, true, ioOpts{action: func(c *CPU) {
						c.reg.PC -= 2
					}})})
				}
			},
		}
	}
}

// blockOutRead is the 3 T-state memory-read half of OUTI/OUTD/OTIR/OTDR.
func blockOutRead() func() *machineState {
	return func() *machineState {
		return &machineState{
			kind:  stateMR,
			total: 3,
			step: func(c *CPU, tickIndex int, final bool) {
				if !final {
					return
				}
				c.scratch["__b"] = uint16(c.bus.Read(c.reg.HL()))
			},
		}
	}
}

// blockOutWrite is the 4 T-state I/O write half: decrements B first (real
// hardware behavior: the port's high address byte reflects the
// already-decremented B), writes to port (C), advances HL by step, sets Z,
// and (for the repeating forms) appends the extra 5 T-state cycle. 3
// (read) + 4 (I/O) matches the documented 16 T-states for OUTI/OUTD; a
// continuing repeat adds 5 for 21.
func blockOutWrite(step int16, repeat bool) func() *machineState {
	return func() *machineState {
		return newIO(4, true, ioOpts{action: func(c *CPU) {
			v := uint8(c.scratch["__b"])
			c.reg.B--
			c.io.Write(c.reg.C, c.reg.B, v)
			c.reg.SetHL(uint16(int32(c.reg.HL()) + int32(step)))
			c.reg.forceflag("Z", c.reg.B == 0)
			c.reg.forceflag("N", true)
			if repeat && c.reg.B != 0 {
				c.prependPipeline([]*machineState{newIO(5, true, ioOpts{action: func(c *CPU) {
					c.reg.PC -= 2
				}})})
			}
		}})
	}
}
