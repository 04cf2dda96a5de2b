package z80

func init() {
	registerIndexedTable(&ddTable, "IX")
	registerIndexedTable(&fdTable, "IY")
}

// registerIndexedTable fills one of the DD/FD pages: the 16-bit index-
// register loads/arithmetic, the (IX+d)/(IY+d)-addressed memory forms, and
// the undocumented 8-bit IXH/IXL (IYH/IYL) half-register forms. idx is
// "IX" or "IY"; the opcodes themselves are identical between the two
// pages, only the register substituted differs, so one function builds
// both tables.
func registerIndexedTable(tbl *[256]*decodeEntry, idx string) {
	hi, lo := idx+"H", idx+"L"

	register(tbl, 0x21, entry(0, nil,
		func() *machineState { return newOD(odOpts{key: "nn"}) },
		func() *machineState {
			return newOD(odOpts{key: "nn", high: true, action: func(c *CPU, v uint16) {
				c.reg.Set16(idx, v)
			}})
		},
	))
	register(tbl, 0x22, entry(0, nil,
		func() *machineState { return newOD(odOpts{key: "nn"}) },
		func() *machineState { return newOD(odOpts{key: "nn", high: true}) },
		func() *machineState { return indexWriteLow(idx) },
		func() *machineState { return writeHighAt("nn", lo) },
	))
	register(tbl, 0x2A, entry(0, nil,
		func() *machineState { return newOD(odOpts{key: "nn"}) },
		func() *machineState { return newOD(odOpts{key: "nn", high: true}) },
		func() *machineState { return newMR(mrOpts{addressKey: "nn", dest: "lo"}) },
		func() *machineState { return readNextAndLatch16(idx) },
	))
	register(tbl, 0x23, entry(2, []Action{incR16(idx)}))
	register(tbl, 0x2B, entry(2, []Action{decR16(idx)}))
	register(tbl, 0xE5, entry(1, nil, func() *machineState { return newSWReg(idx, true) }, func() *machineState { return newSWReg(idx, false) }))
	register(tbl, 0xE1, entry(0, nil, func() *machineState { return newSRReg(idx, false) }, func() *machineState { return newSRReg(idx, true) }))
	register(tbl, 0xE9, entry(0, []Action{jp(idx)}))
	register(tbl, 0xF9, entry(2, []Action{ldR16("SP", idx)}))
	register(tbl, 0xE3, entry(0, nil, exSPStates(idx)...))
	for _, pp := range []struct {
		op  uint8
		src string
	}{{0x09, "BC"}, {0x19, "DE"}, {0x29, idx}, {0x39, "SP"}} {
		src := pp.src
		register(tbl, pp.op, entry(0, nil, func() *machineState {
			return newIO(7, true, ioOpts{action: func(c *CPU) { addHL16(idx, src)(c) }})
		}))
	}

	// (idx+d)-addressed forms: displacement OD + 5 T-state address-compute
	// IO always precede the actual access, matching real DD/FD timing.
	prelude := func() []func() *machineState {
		return []func() *machineState{
			func() *machineState { return newOD(odOpts{key: "address", signed: true}) },
			func() *machineState {
				return newIO(5, true, ioOpts{transform: map[string]func(*CPU, uint16) uint16{
					"address": addRegisterTransform(idx),
				}})
			},
		}
	}

	for r := 0; r < 8; r++ {
		if r == 6 {
			continue
		}
		reg := r8[r]
		s := append(prelude(), func() *machineState { return newMR(mrOpts{destReg: reg}) })
		register(tbl, uint8(0x46+r*8), entry(0, nil, s...))
		s2 := append(prelude(), func() *machineState { return newMW(mwOpts{srcReg: reg}) })
		register(tbl, uint8(0x70+r), entry(0, nil, s2...))
	}
	register(tbl, 0x36, entry(0, nil, append(prelude(),
		func() *machineState { return newOD(odOpts{key: "n"}) },
		func() *machineState { return newMW(mwOpts{src: "n"}) },
	)...))

	for op := 0; op < 8; op++ {
		name := aluOp[op]
		s := append(prelude(), func() *machineState { return aluIndexed(name) })
		register(tbl, uint8(0x86+op*8), entry(0, nil, s...))
	}
	register(tbl, 0x34, entry(0, nil, append(prelude(), incDecIndexedStates(true)...)...))
	register(tbl, 0x35, entry(0, nil, append(prelude(), incDecIndexedStates(false)...)...))

	// Undocumented IXH/IXL (IYH/IYL) 8-bit forms: the register-to-register
	// block reusing the main table's bit layout, restricted to the rows and
	// columns that don't reference (HL).
	for dst := 0; dst < 8; dst++ {
		for src := 0; src < 8; src++ {
			if dst == 6 || src == 6 {
				continue
			}
			op := uint8(0x40 + dst*8 + src)
			d := substituteHL(r8[dst], hi, lo)
			s := substituteHL(r8[src], hi, lo)
			register(tbl, op, entry(0, []Action{ldR8(d, s)}))
		}
	}
	for r := 0; r < 8; r++ {
		if r == 6 {
			continue
		}
		reg := substituteHL(r8[r], hi, lo)
		register(tbl, uint8(0x04+r*8), entry(0, []Action{incR8(reg)}))
		register(tbl, uint8(0x05+r*8), entry(0, []Action{decR8(reg)}))
		register(tbl, uint8(0x06+r*8), entry(0, nil,
			func() *machineState {
				return newOD(odOpts{key: "n", action: func(c *CPU, v uint16) {
					c.reg.Set8(reg, uint8(v))
				}})
			},
		))
	}
	for op := 0; op < 8; op++ {
		name := aluOp[op]
		register(tbl, uint8(0x80+op*8+4), entry(0, []Action{aluAction(name, hi)}))
		register(tbl, uint8(0x80+op*8+5), entry(0, []Action{aluAction(name, lo)}))
	}
}

// substituteHL maps H->hi, L->lo, and leaves every other register name
// unchanged, implementing the DD/FD prefix's register substitution rule.
func substituteHL(reg, hi, lo string) string {
	switch reg {
	case "H":
		return hi
	case "L":
		return lo
	}
	return reg
}

func indexWriteLow(idx string) *machineState {
	return &machineState{
		kind:  stateMW,
		total: 3,
		step: func(c *CPU, tickIndex int, final bool) {
			if !final {
				return
			}
			v, _ := c.reg.Get16(idx)
			c.bus.Write(c.scratch["nn"], uint8(v))
		},
	}
}

func aluIndexed(op string) *machineState {
	return &machineState{
		kind:  stateMR,
		total: 3,
		step: func(c *CPU, tickIndex int, final bool) {
			if !final {
				return
			}
			c.scratch["__alu"] = uint16(c.bus.Read(c.scratch["address"]))
			aluAction(op, "__alu")(c)
		},
	}
}

// incDecIndexedStates builds the documented MR(3)+internal-wait(1)+MW(3)
// read-modify-write sequence for INC/DEC (IX+d)/(IY+d), each T-state its
// own bus-observable step rather than one state that reads and writes on
// the same tick.
func incDecIndexedStates(inc bool) []func() *machineState {
	return []func() *machineState{
		func() *machineState {
			return &machineState{
				kind:  stateMR,
				total: 3,
				step: func(c *CPU, tickIndex int, final bool) {
					if !final {
						return
					}
					c.scratch["__v"] = uint16(c.bus.Read(c.scratch["address"]))
				},
			}
		},
		func() *machineState {
			return newIO(1, true, ioOpts{action: func(c *CPU) {
				v := uint8(c.scratch["__v"])
				var r uint8
				if inc {
					r = v + 1
					c.setFlags("SZ5H3V0-", flagInputs{Result: r, H: addHalfCarry8(v, 1), V: r == 0x80})
				} else {
					r = v - 1
					c.setFlags("SZ5H3V1-", flagInputs{Result: r, H: subHalfCarry8(v, 1), V: v == 0x80})
				}
				c.scratch["__r"] = uint16(r)
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
					c.bus.Write(c.scratch["address"], uint8(c.scratch["__r"]))
				},
			}
		},
	}
}
