package z80

func init() {
	registerIndexedCB()
}

// registerIndexedCB fills ddfdCBTable, consulted for both the DD-CB and
// FD-CB four-byte forms: by the time this table is reached, the OD+IO
// prelude in decode.go has already resolved scratch["address"] to
// IX+d/IY+d, so only the final opcode byte distinguishes behavior. Every
// slot operates on (index+d); the r8 column additionally copies the result
// into a register for every column except 6 ((HL)'s slot, meaning "no
// copy") -- the well-known undocumented DD/FD-CB register-copy variants.
func registerIndexedCB() {
	for op := 0; op < 8; op++ {
		name := rot[op]
		for r := 0; r < 8; r++ {
			opcode := uint8(op*8 + r)
			copyTo := ""
			if r != 6 {
				copyTo = r8[r]
			}
			register(&ddfdCBTable, opcode, entry(0, nil, func() *machineState {
				return indexedRotate(name, copyTo)
			}))
		}
	}
	for b := 0; b < 8; b++ {
		bit := uint8(b)
		for r := 0; r < 8; r++ {
			opcode := uint8(0x40 + b*8 + r)
			register(&ddfdCBTable, opcode, entry(0, []Action{indexedBitAction(bit)}))
		}
	}
	for b := 0; b < 8; b++ {
		bit := uint8(b)
		for r := 0; r < 8; r++ {
			resOp := uint8(0x80 + b*8 + r)
			setOp := uint8(0xC0 + b*8 + r)
			copyTo := ""
			if r != 6 {
				copyTo = r8[r]
			}
			register(&ddfdCBTable, resOp, entry(0, nil, func() *machineState {
				return indexedResSet(bit, false, copyTo)
			}))
			register(&ddfdCBTable, setOp, entry(0, nil, func() *machineState {
				return indexedResSet(bit, true, copyTo)
			}))
		}
	}
}

// indexedRotate applies a CB-page rotate/shift to (address), writes it
// back, and additionally copies it into copyTo when set (the undocumented
// register-copy variants).
func indexedRotate(op, copyTo string) *machineState {
	return &machineState{
		kind:  stateMR,
		total: 3,
		step: func(c *CPU, tickIndex int, final bool) {
			if !final {
				return
			}
			addr := c.scratch["address"]
			v := c.bus.Read(addr)
			oldCarry := c.reg.F&flagC != 0
			r, carry := rotateShift8(op, v, oldCarry)
			c.bus.Write(addr, r)
			if copyTo != "" {
				c.reg.Set8(copyTo, r)
			}
			c.setFlags("SZ5H3P0C", flagInputs{Result: r, UseParity: true, C: carry})
		},
	}
}

// indexedBitAction is BIT b,(IX+d)/(IY+d): unlike the rotate/RES/SET
// indexed forms, BIT performs no write-back, so its memory read happens
// within the OCF that decoded it rather than as a separate appended state
// -- the real hardware folds this read into the same extended M3 cycle,
// giving 20 T-states total rather than the rotate/RES/SET forms' 23.
func indexedBitAction(bit uint8) Action {
	return func(c *CPU) {
		addr := c.scratch["address"]
		v := c.bus.Read(addr)
		set := v&(1<<bit) != 0
		c.reg.forceflag("Z", !set)
		c.reg.forceflag("P", !set)
		c.reg.forceflag("S", bit == 7 && set)
		c.reg.forceflag("H", true)
		c.reg.forceflag("N", false)
		c.reg.forceflag("5", uint8(addr>>8)&0x20 != 0)
		c.reg.forceflag("3", uint8(addr>>8)&0x08 != 0)
	}
}

func indexedResSet(bit uint8, set bool, copyTo string) *machineState {
	return &machineState{
		kind:  stateMR,
		total: 3,
		step: func(c *CPU, tickIndex int, final bool) {
			if !final {
				return
			}
			addr := c.scratch["address"]
			v := c.bus.Read(addr)
			if set {
				v |= 1 << bit
			} else {
				v &^= 1 << bit
			}
			c.bus.Write(addr, v)
			if copyTo != "" {
				c.reg.Set8(copyTo, v)
			}
		},
	}
}
