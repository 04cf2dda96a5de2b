package z80

func init() {
	registerLD8()
	registerLD8Imm()
	registerLDAIndirect()
	registerLD16Imm()
	registerLD16Indirect()
	registerED16Indirect()
	registerPushPop()
	registerExchanges()
	registerBlockTransfer()
}

// registerLD8 fills in the 0x40-0x7F block: LD r,r', LD r,(HL), LD (HL),r,
// and HALT in the one slot (dst=(HL), src=(HL)) that would otherwise be
// LD (HL),(HL).
func registerLD8() {
	for dst := 0; dst < 8; dst++ {
		for src := 0; src < 8; src++ {
			op := uint8(0x40 + dst*8 + src)
			switch {
			case dst == 6 && src == 6:
				register(&mainTable, op, entry(0, []Action{halt()}))
			case dst != 6 && src != 6:
				register(&mainTable, op, entry(0, []Action{ldR8(r8[dst], r8[src])}))
			case dst == 6:
				s := r8[src]
				register(&mainTable, op, entry(0, nil, func() *machineState {
					return newMW(mwOpts{addressReg: "HL", srcReg: s})
				}))
			default:
				d := r8[dst]
				register(&mainTable, op, entry(0, nil, func() *machineState {
					return newMR(mrOpts{addressReg: "HL", destReg: d})
				}))
			}
		}
	}
}

// registerLD8Imm fills in LD r,n (0x06 + r*8) and LD (HL),n (0x36).
func registerLD8Imm() {
	for r := 0; r < 8; r++ {
		op := uint8(0x06 + r*8)
		if r == 6 {
			register(&mainTable, op, entry(0, nil,
				func() *machineState { return newOD(odOpts{key: "n"}) },
				func() *machineState { return newMW(mwOpts{addressReg: "HL", src: "n"}) },
			))
			continue
		}
		dst := r8[r]
		register(&mainTable, op, entry(0, nil,
			func() *machineState {
				return newOD(odOpts{key: "n", action: func(c *CPU, v uint16) {
					c.reg.Set8(dst, uint8(v))
				}})
			},
		))
	}
}

// registerLDAIndirect wires LD A,(BC) / LD A,(DE) / LD (BC),A / LD (DE),A
// and the 3-byte-address forms LD A,(nn) / LD (nn),A.
func registerLDAIndirect() {
	register(&mainTable, 0x0A, entry(0, nil, func() *machineState {
		return newMR(mrOpts{addressReg: "BC", destReg: "A"})
	}))
	register(&mainTable, 0x1A, entry(0, nil, func() *machineState {
		return newMR(mrOpts{addressReg: "DE", destReg: "A"})
	}))
	register(&mainTable, 0x02, entry(0, nil, func() *machineState {
		return newMW(mwOpts{addressReg: "BC", srcReg: "A"})
	}))
	register(&mainTable, 0x12, entry(0, nil, func() *machineState {
		return newMW(mwOpts{addressReg: "DE", srcReg: "A"})
	}))
	register(&mainTable, 0x3A, entry(0, nil,
		func() *machineState { return newOD(odOpts{key: "nn"}) },
		func() *machineState { return newOD(odOpts{key: "nn", high: true}) },
		func() *machineState { return newMR(mrOpts{addressKey: "nn", destReg: "A"}) },
	))
	register(&mainTable, 0x32, entry(0, nil,
		func() *machineState { return newOD(odOpts{key: "nn"}) },
		func() *machineState { return newOD(odOpts{key: "nn", high: true}) },
		func() *machineState { return newMW(mwOpts{addressKey: "nn", srcReg: "A"}) },
	))
}

// registerLD16Imm fills in LD dd,nn (0x01 + p*16) and LD SP,HL.
func registerLD16Imm() {
	for p := 0; p < 4; p++ {
		op := uint8(0x01 + p*16)
		dst := rp[p]
		register(&mainTable, op, entry(0, nil,
			func() *machineState { return newOD(odOpts{key: "nn"}) },
			func() *machineState {
				return newOD(odOpts{key: "nn", high: true, action: func(c *CPU, v uint16) {
					c.reg.Set16(dst, v)
				}})
			},
		))
	}
	register(&mainTable, 0xF9, entry(2, []Action{ldR16("SP", "HL")}))
}

// registerLD16Indirect fills in LD HL,(nn) and LD (nn),HL.
func registerLD16Indirect() {
	register(&mainTable, 0x2A, entry(0, nil,
		func() *machineState { return newOD(odOpts{key: "nn"}) },
		func() *machineState { return newOD(odOpts{key: "nn", high: true}) },
		func() *machineState { return newMR(mrOpts{addressKey: "nn", dest: "lo"}) },
		func() *machineState { return readNextAndLatch16("HL") },
	))
	register(&mainTable, 0x22, entry(0, nil,
		func() *machineState { return newOD(odOpts{key: "nn"}) },
		func() *machineState { return newOD(odOpts{key: "nn", high: true}) },
		func() *machineState { return newMW(mwOpts{addressKey: "nn", srcReg: "L"}) },
		func() *machineState { return writeHighAt("nn", "H") },
	))
}

// registerED16Indirect fills in the ED-prefixed 16-bit indirect loads for
// BC, DE, and SP: LD dd,(nn) and LD (nn),dd. The unprefixed opcode space
// already carries the HL form (0x2A/0x22) and the DD/FD pages carry IX/IY,
// so only three register pairs are left to wire here.
func registerED16Indirect() {
	for _, dd := range []struct {
		op  uint8
		reg string
	}{{0x4B, "BC"}, {0x5B, "DE"}, {0x7B, "SP"}} {
		reg := dd.reg
		register(&edTable, dd.op, entry(0, nil,
			func() *machineState { return newOD(odOpts{key: "nn"}) },
			func() *machineState { return newOD(odOpts{key: "nn", high: true}) },
			func() *machineState { return newMR(mrOpts{addressKey: "nn", dest: "lo"}) },
			func() *machineState { return readNextAndLatch16(reg) },
		))
	}
	for _, dd := range []struct {
		op       uint8
		low, hi  string
	}{{0x43, "C", "B"}, {0x53, "E", "D"}, {0x73, "SPL", "SPH"}} {
		low, hi := dd.low, dd.hi
		register(&edTable, dd.op, entry(0, nil,
			func() *machineState { return newOD(odOpts{key: "nn"}) },
			func() *machineState { return newOD(odOpts{key: "nn", high: true}) },
			func() *machineState { return newMW(mwOpts{addressKey: "nn", srcReg: low}) },
			func() *machineState { return writeHighAt("nn", hi) },
		))
	}
}

// readNextAndLatch16 reads the byte at scratch["nn"]+1 and combines it with
// the previously read low byte (scratch["lo"]) into dst.
func readNextAndLatch16(dst string) *machineState {
	return &machineState{
		kind:  stateMR,
		total: 3,
		step: func(c *CPU, tickIndex int, final bool) {
			if !final {
				return
			}
			hi := c.bus.Read(c.scratch["nn"] + 1)
			c.reg.Set16(dst, pair(hi, uint8(c.scratch["lo"])))
		},
	}
}

// writeHighAt writes register src to the byte following scratch["nn"].
func writeHighAt(addrKey, src string) *machineState {
	return &machineState{
		kind:  stateMW,
		total: 3,
		step: func(c *CPU, tickIndex int, final bool) {
			if !final {
				return
			}
			v, _ := c.reg.Get8(src)
			c.bus.Write(c.scratch[addrKey]+1, v)
		},
	}
}

// registerPushPop fills in PUSH qq (0xC5 + p*16) and POP qq (0xC1 + p*16).
func registerPushPop() {
	for p := 0; p < 4; p++ {
		reg := rp2[p]
		register(&mainTable, uint8(0xC5+p*16), entry(1, nil,
			func() *machineState { return newSWReg(reg, true) },
			func() *machineState { return newSWReg(reg, false) },
		))
		register(&mainTable, uint8(0xC1+p*16), entry(0, nil,
			func() *machineState { return newSRReg(reg, false) },
			func() *machineState { return newSRReg(reg, true) },
		))
	}
}

// registerExchanges fills in EX DE,HL / EX AF,AF' / EXX / EX (SP),HL.
func registerExchanges() {
	register(&mainTable, 0xEB, entry(0, []Action{exDEHL()}))
	register(&mainTable, 0x08, entry(0, []Action{exAFAF()}))
	register(&mainTable, 0xD9, entry(0, []Action{exx()}))
	register(&mainTable, 0xE3, entry(0, nil, exSPStates("HL")...))
}

// exSPStates builds EX (SP),HL/IX/IY: pop the word at (SP) into reg,
// push reg's old value back, reg substitutable for the DD/FD-prefixed
// IX/IY forms. 4 states: SR(3)+SR(3)+SW(4)+SW(5), the two extra wait
// states on the writes (over the usual 3) bringing the plain HL form to
// the documented 19 T-states total (with the OCF's 4) and the IX/IY
// forms to 23 (with the prefix's extra OCF).
func exSPStates(reg string) []func() *machineState {
	return []func() *machineState{
		func() *machineState {
			return &machineState{
				kind:  stateSR,
				total: 3,
				step: func(c *CPU, tickIndex int, final bool) {
					if !final {
						return
					}
					c.scratch["__xhl"] = uint16(c.bus.Read(c.reg.SP))
				},
			}
		},
		func() *machineState {
			return &machineState{
				kind:  stateSR,
				total: 3,
				step: func(c *CPU, tickIndex int, final bool) {
					if !final {
						return
					}
					c.scratch["__xhl"] |= uint16(c.bus.Read(c.reg.SP+1)) << 8
				},
			}
		},
		func() *machineState {
			return &machineState{
				kind:  stateSW,
				total: 4,
				step: func(c *CPU, tickIndex int, final bool) {
					if !final {
						return
					}
					old, _ := c.reg.Get16(reg)
					c.bus.Write(c.reg.SP, uint8(old))
					tmp := c.scratch["__xhl"]
					c.reg.Set16(reg, tmp)
					c.scratch["__xhl"] = old
				},
			}
		},
		func() *machineState {
			return &machineState{
				kind:  stateSW,
				total: 5,
				step: func(c *CPU, tickIndex int, final bool) {
					if !final {
						return
					}
					old := c.scratch["__xhl"]
					c.bus.Write(c.reg.SP+1, uint8(old>>8))
				},
			}
		},
	}
}

// registerBlockTransfer fills in LDI, LDIR, LDD, LDDR.
func registerBlockTransfer() {
	register(&edTable, 0xA0, entry(0, nil, blockLDRead(), blockLDWrite(1, false)))
	register(&edTable, 0xB0, entry(0, nil, blockLDRead(), blockLDWrite(1, true)))
	register(&edTable, 0xA8, entry(0, nil, blockLDRead(), blockLDWrite(-1, false)))
	register(&edTable, 0xB8, entry(0, nil, blockLDRead(), blockLDWrite(-1, true)))
}

// blockLDRead is the MR (HL) half common to LDI/LDD/LDIR/LDDR.
func blockLDRead() func() *machineState {
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

// blockLDWrite is the MW (DE) half: writes the byte read by blockLDRead,
// then on its own final tick advances HL/DE by step, decrements BC, sets
// flags, and (for the repeating forms) appends the extra 5 T-state internal
// cycle and rewinds PC when BC is still non-zero. The write itself carries
// 2 internal T-states beyond the bus cycle (5 total, not 3), which is what
// brings LDI/LDD to their documented 16 T-states; a repeating instruction
// whose BC is still non-zero adds the further 5 T-state cycle for 21.
func blockLDWrite(step int16, repeat bool) func() *machineState {
	return func() *machineState {
		return &machineState{
			kind:  stateMW,
			total: 5,
			step: func(c *CPU, tickIndex int, final bool) {
				if !final {
					return
				}
				b := uint8(c.scratch["__b"])
				c.bus.Write(c.reg.DE(), b)
				c.reg.SetHL(uint16(int32(c.reg.HL()) + int32(step)))
				c.reg.SetDE(uint16(int32(c.reg.DE()) + int32(step)))
				bc := c.reg.BC() - 1
				c.reg.SetBC(bc)
				n := b + c.reg.A
				c.reg.forceflag("5", n&0x02 != 0)
				c.reg.forceflag("3", n&0x08 != 0)
				c.reg.forceflag("H", false)
				c.reg.forceflag("N", false)
				c.reg.forceflag("P", bc != 0)
				if repeat && bc != 0 {
					c.prependPipeline([]*machineState{newIO(5, true, ioOpts{action: func(c *CPU) {
						c.reg.PC -= 2
					}})})
				}
			},
		}
	}
}
