package z80

func init() {
	registerInterruptControl()
	registerSpecialReg()
	registerRotateDigit()
}

// registerInterruptControl fills DI, EI, IM 0/1/2.
func registerInterruptControl() {
	register(&mainTable, 0xF3, entry(0, []Action{di()}))
	register(&mainTable, 0xFB, entry(0, []Action{ei()}))

	// ED 0x46/0x4E/0x66/0x6E -> IM 0, 0x56/0x76 -> IM 1, 0x5E/0x7E -> IM 2
	// (0x4E, 0x66, 0x6E, 0x76 and 0x7E are undocumented aliases).
	register(&edTable, 0x46, entry(0, []Action{imSet(0)}))
	register(&edTable, 0x4E, entry(0, []Action{imSet(0)}))
	register(&edTable, 0x56, entry(0, []Action{imSet(1)}))
	register(&edTable, 0x5E, entry(0, []Action{imSet(2)}))
	register(&edTable, 0x66, entry(0, []Action{imSet(0)}))
	register(&edTable, 0x6E, entry(0, []Action{imSet(0)}))
	register(&edTable, 0x76, entry(0, []Action{imSet(1)}))
	register(&edTable, 0x7E, entry(0, []Action{imSet(2)}))
}

// registerSpecialReg fills LD A,I / LD A,R / LD I,A / LD R,A.
func registerSpecialReg() {
	register(&edTable, 0x57, entry(1, []Action{ldAFromIR("I")}))
	register(&edTable, 0x5F, entry(1, []Action{ldAFromIR("R")}))
	register(&edTable, 0x47, entry(1, []Action{ldR8("I", "A")}))
	register(&edTable, 0x4F, entry(1, []Action{ldR8("R", "A")}))
}

// ldAFromIR loads A from I or R, setting S Z 5 3 from the value, clearing H
// and N, and taking P/V from iff2 (the interrupt-enable race the
// undocumented flag exposes).
func ldAFromIR(src string) Action {
	return func(c *CPU) {
		v, _ := c.reg.Get8(src)
		c.reg.A = v
		c.setFlags("SZ5H3*0-", flagInputs{Result: v, Iff2: c.iff2})
	}
}

// registerRotateDigit fills RRD and RLD. Both read (HL), spend 4 T-states
// shuffling nibbles between A and the internal latch, then write the
// result back: MR(3)+IO(4)+MW(3)=10 appended states, plus the two OCFs
// (ED fetch + opcode fetch, 4 each) for the documented 18 T-state total.
func registerRotateDigit() {
	register(&edTable, 0x67, entry(0, nil, rotateDigitStates(rrdCompute)...))
	register(&edTable, 0x6F, entry(0, nil, rotateDigitStates(rldCompute)...))
}

func rrdCompute(a, m uint8) (newA, newM uint8) {
	newM = (a&0x0F)<<4 | m>>4
	newA = a&0xF0 | m&0x0F
	return
}

func rldCompute(a, m uint8) (newA, newM uint8) {
	newM = m<<4 | a&0x0F
	newA = a&0xF0 | m>>4
	return
}

func rotateDigitStates(compute func(a, m uint8) (newA, newM uint8)) []func() *machineState {
	return []func() *machineState{
		func() *machineState {
			return &machineState{
				kind:  stateMR,
				total: 3,
				step: func(c *CPU, tickIndex int, final bool) {
					if !final {
						return
					}
					c.scratch["__m"] = uint16(c.bus.Read(c.reg.HL()))
				},
			}
		},
		func() *machineState {
			return newIO(4, true, ioOpts{action: func(c *CPU) {
				newA, newM := compute(c.reg.A, uint8(c.scratch["__m"]))
				c.reg.A = newA
				c.scratch["__m"] = uint16(newM)
				c.setFlags("SZ5H3P0-", flagInputs{Result: newA, UseParity: true})
			}})
		},
		func() *machineState {
			return &machineState{
				kind:  stateMW,
				total: 3,
				step: func(c *CPU, tickIndex int, final bool) {
					if !final {
						return
					}
					c.bus.Write(c.reg.HL(), uint8(c.scratch["__m"]))
				},
			}
		},
	}
}
