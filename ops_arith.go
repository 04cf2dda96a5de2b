package z80

func init() {
	registerALU()
	registerALUImm()
	registerIncDec8()
	registerIncDec16()
	registerAddHL()
	registerRotateAcc()
	registerMisc8080()
	registerExtendedArith()
}

// registerALU fills the 0x80-0xBF block: ADD/ADC/SUB/SBC/AND/XOR/OR/CP A,r.
func registerALU() {
	for op := 0; op < 8; op++ {
		for r := 0; r < 8; r++ {
			opcode := uint8(0x80 + op*8 + r)
			if r == 6 {
				register(&mainTable, opcode, entry(0, nil, func() *machineState {
					return aluMemState(aluOp[op])
				}))
				continue
			}
			register(&mainTable, opcode, entry(0, []Action{aluAction(aluOp[op], r8[r])}))
		}
	}
}

// aluAction dispatches one of the eight ALU operations against a register
// or scratch-key operand.
func aluAction(op, src string) Action {
	switch op {
	case "ADD":
		return addA8(src, false)
	case "ADC":
		return addA8(src, true)
	case "SUB":
		return subA8(src, false, false)
	case "SBC":
		return subA8(src, true, false)
	case "AND":
		return logicalA8(src, '&')
	case "XOR":
		return logicalA8(src, '^')
	case "OR":
		return logicalA8(src, '|')
	case "CP":
		return subA8(src, false, true)
	}
	return func(c *CPU) {}
}

// aluMemState builds the MR (HL) state for the "(HL)" operand forms,
// running the ALU action on the byte just read.
func aluMemState(op string) *machineState {
	return &machineState{
		kind:  stateMR,
		total: 3,
		step: func(c *CPU, tickIndex int, final bool) {
			if !final {
				return
			}
			c.scratch["__alu"] = uint16(c.bus.Read(c.reg.HL()))
			aluAction(op, "__alu")(c)
		},
	}
}

// registerALUImm fills 0xC6/0xCE/0xD6/0xDE/0xE6/0xEE/0xF6/0xFE: ALU A,n.
func registerALUImm() {
	for op := 0; op < 8; op++ {
		opcode := uint8(0xC6 + op*8)
		name := aluOp[op]
		register(&mainTable, opcode, entry(0, nil, func() *machineState {
			return &machineState{
				kind:  stateOD,
				total: 3,
				step: func(c *CPU, tickIndex int, final bool) {
					if !final {
						return
					}
					c.scratch["__alu"] = uint16(c.bus.Read(c.reg.PC))
					c.reg.PC++
					aluAction(name, "__alu")(c)
				},
			}
		}))
	}
}

// registerIncDec8 fills INC r/(HL) and DEC r/(HL).
func registerIncDec8() {
	for r := 0; r < 8; r++ {
		incOp := uint8(0x04 + r*8)
		decOp := uint8(0x05 + r*8)
		if r == 6 {
			register(&mainTable, incOp, entry(0, nil, incDecMem(true)...))
			register(&mainTable, decOp, entry(0, nil, incDecMem(false)...))
			continue
		}
		reg := r8[r]
		register(&mainTable, incOp, entry(0, []Action{incR8(reg)}))
		register(&mainTable, decOp, entry(0, []Action{decR8(reg)}))
	}
}

// incDecMem builds the documented MR(3)+MW(4) read-modify-write pair for
// INC/DEC (HL): 4 (OCF) + 3 + 4 = 11 T-states, matching the silicon's
// extended M3 write cycle rather than combining the read and write into a
// single bus-observable tick.
func incDecMem(inc bool) []func() *machineState {
	return []func() *machineState{
		func() *machineState {
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
		},
		func() *machineState {
			return &machineState{
				kind:  stateMW,
				total: 4,
				step: func(c *CPU, tickIndex int, final bool) {
					if !final {
						return
					}
					v := uint8(c.scratch["__b"])
					var r uint8
					if inc {
						r = v + 1
						c.setFlags("SZ5H3V0-", flagInputs{Result: r, H: addHalfCarry8(v, 1), V: r == 0x80})
					} else {
						r = v - 1
						c.setFlags("SZ5H3V1-", flagInputs{Result: r, H: subHalfCarry8(v, 1), V: v == 0x80})
					}
					c.bus.Write(c.reg.HL(), r)
				},
			}
		},
	}
}

// registerIncDec16 fills INC ss/DEC ss (0x03+p*16 / 0x0B+p*16).
func registerIncDec16() {
	for p := 0; p < 4; p++ {
		reg := rp[p]
		register(&mainTable, uint8(0x03+p*16), entry(2, []Action{incR16(reg)}))
		register(&mainTable, uint8(0x0B+p*16), entry(2, []Action{decR16(reg)}))
	}
}

// registerAddHL fills ADD HL,ss (0x09+p*16).
func registerAddHL() {
	for p := 0; p < 4; p++ {
		reg := rp[p]
		register(&mainTable, uint8(0x09+p*16), entry(0, nil, func() *machineState {
			return newIO(7, true, ioOpts{action: func(c *CPU) { addHL16("HL", reg)(c) }})
		}))
	}
}

// registerRotateAcc fills RLCA/RRCA/RLA/RRA.
func registerRotateAcc() {
	register(&mainTable, 0x07, entry(0, []Action{rlca()}))
	register(&mainTable, 0x0F, entry(0, []Action{rrca()}))
	register(&mainTable, 0x17, entry(0, []Action{rla()}))
	register(&mainTable, 0x1F, entry(0, []Action{rra()}))
}

func rlca() Action {
	return func(c *CPU) {
		a := c.reg.A
		carry := a&0x80 != 0
		r := a<<1 | boolUint8(carry)
		c.reg.A = r
		c.setFlags("--5H3-0C", flagInputs{Result: r, C: carry})
	}
}

func rrca() Action {
	return func(c *CPU) {
		a := c.reg.A
		carry := a&0x01 != 0
		r := a>>1 | boolUint8(carry)<<7
		c.reg.A = r
		c.setFlags("--5H3-0C", flagInputs{Result: r, C: carry})
	}
}

func rla() Action {
	return func(c *CPU) {
		a := c.reg.A
		oldCarry := c.reg.F&flagC != 0
		carry := a&0x80 != 0
		r := a<<1 | boolUint8(oldCarry)
		c.reg.A = r
		c.setFlags("--5H3-0C", flagInputs{Result: r, C: carry})
	}
}

func rra() Action {
	return func(c *CPU) {
		a := c.reg.A
		oldCarry := c.reg.F&flagC != 0
		carry := a&0x01 != 0
		r := a>>1 | boolUint8(oldCarry)<<7
		c.reg.A = r
		c.setFlags("--5H3-0C", flagInputs{Result: r, C: carry})
	}
}

// registerMisc8080 fills DAA, CPL, SCF, CCF, NOP.
func registerMisc8080() {
	register(&mainTable, 0x00, entry(0, nil))
	register(&mainTable, 0x27, entry(0, []Action{daa()}))
	register(&mainTable, 0x2F, entry(0, []Action{cpl()}))
	register(&mainTable, 0x37, entry(0, []Action{scf()}))
	register(&mainTable, 0x3F, entry(0, []Action{ccf()}))
}

// registerExtendedArith fills the ED-prefixed NEG, and the multi-precision
// ED-prefixed ADC HL,ss / SBC HL,ss forms.
func registerExtendedArith() {
	register(&edTable, 0x44, entry(0, []Action{neg()}))
	for p := 0; p < 4; p++ {
		reg := rp[p]
		register(&edTable, uint8(0x4A+p*16), entry(0, nil, func() *machineState {
			return newIO(7, true, ioOpts{action: adcHL16(reg)})
		}))
		register(&edTable, uint8(0x42+p*16), entry(0, nil, func() *machineState {
			return newIO(7, true, ioOpts{action: sbcHL16(reg)})
		}))
	}
}

func adcHL16(src string) func(c *CPU) {
	return func(c *CPU) {
		hl := c.reg.HL()
		v, _ := c.reg.Get16(src)
		carryIn := c.reg.F&flagC != 0
		ci := uint16(0)
		if carryIn {
			ci = 1
		}
		r := hl + v + ci
		c.reg.SetHL(r)
		c.setFlags("SZ5H3V0C", flagInputs{
			Result:   uint8(r >> 8),
			Result16: r,
			Wide:     true,
			H:        addHalfCarry16c(hl, v, carryIn),
			V:        overflowAdd16(hl, v, r),
			C:        uint32(hl)+uint32(v)+uint32(ci) > 0xFFFF,
		})
	}
}

func sbcHL16(src string) func(c *CPU) {
	return func(c *CPU) {
		hl := c.reg.HL()
		v, _ := c.reg.Get16(src)
		borrowIn := c.reg.F&flagC != 0
		bi := uint16(0)
		if borrowIn {
			bi = 1
		}
		r := hl - v - bi
		c.reg.SetHL(r)
		c.setFlags("SZ5H3V1C", flagInputs{
			Result:   uint8(r >> 8),
			Result16: r,
			Wide:     true,
			H:        subHalfCarry16c(hl, v, borrowIn),
			V:        overflowSub16(hl, v, r),
			C:        uint32(v)+uint32(bi) > uint32(hl),
		})
	}
}
