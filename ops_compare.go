package z80

func init() {
	registerBlockCompare()
}

// registerBlockCompare fills CPI, CPIR, CPD, CPDR.
func registerBlockCompare() {
	register(&edTable, 0xA1, entry(0, nil, blockCompareRead(), blockCompareFinish(1, false)))
	register(&edTable, 0xB1, entry(0, nil, blockCompareRead(), blockCompareFinish(1, true)))
	register(&edTable, 0xA9, entry(0, nil, blockCompareRead(), blockCompareFinish(-1, false)))
	register(&edTable, 0xB9, entry(0, nil, blockCompareRead(), blockCompareFinish(-1, true)))
}

// blockCompareRead is the MR (HL) half common to CPI/CPD/CPIR/CPDR.
func blockCompareRead() func() *machineState {
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

// blockCompareFinish is the 5 T-state internal-compare cycle: it compares
// the byte read by blockCompareRead against A without storing, advances HL
// by step, decrements BC, sets flags, and (for the repeating forms) appends
// the extra 5 T-state cycle and rewinds PC when BC is still non-zero and
// the compare did not match. 3 (read) + 5 (compare) matches the documented
// 16 T-states for CPI/CPD; a continuing repeat adds the further 5 for 21.
func blockCompareFinish(step int16, repeat bool) func() *machineState {
	return func() *machineState {
		return newIO(5, true, ioOpts{action: func(c *CPU) {
			v := uint8(c.scratch["__b"])
			a := c.reg.A
			r := a - v
			c.reg.SetHL(uint16(int32(c.reg.HL()) + int32(step)))
			bc := c.reg.BC() - 1
			c.reg.SetBC(bc)
			n := r
			if c.reg.F&flagH != 0 {
				n--
			}
			c.reg.forceflag("S", r&0x80 != 0)
			c.reg.forceflag("Z", r == 0)
			c.reg.forceflag("H", subHalfCarry8(a, v))
			c.reg.forceflag("5", n&0x02 != 0)
			c.reg.forceflag("3", n&0x08 != 0)
			c.reg.forceflag("P", bc != 0)
			c.reg.forceflag("N", true)
			if repeat && bc != 0 && r != 0 {
				c.prependPipeline([]*machineState{newIO(5, true, ioOpts{action: func(c *CPU) {
					c.reg.PC -= 2
				}})})
			}
		}})
	}
}
