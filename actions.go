package z80

// Action is a synchronous effect run when the OCF (or other state) that
// decoded an instruction reaches its final tick. Instructions are built as
// a small vocabulary of Action constructors closed over their operands,
// rather than a separate sum-typed instruction interpreter; this mirrors how
// the opcode table itself is a flat array of closures.
type Action func(c *CPU)

// ldR8 copies src into dst, both 8-bit register names.
func ldR8(dst, src string) Action {
	return func(c *CPU) {
		v, _ := c.reg.Get8(src)
		_ = c.reg.Set8(dst, v)
	}
}

// ldR8Imm loads an immediate byte already fetched into scratch[key] into dst.
func ldR8Imm(dst, key string) Action {
	return func(c *CPU) {
		c.reg.Set8(dst, uint8(c.scratch[key]))
	}
}

// ldR8FromScratch copies an 8-bit value out of scratch (e.g. a byte an MR
// state just read) into a register.
func ldR8FromScratch(dst, key string) Action {
	return func(c *CPU) {
		c.reg.Set8(dst, uint8(c.scratch[key]))
	}
}

// ldScratchFromR8 copies a register into scratch, for MW states that write
// a register's value to memory.
func ldScratchFromR8(key, src string) Action {
	return func(c *CPU) {
		v, _ := c.reg.Get8(src)
		c.scratch[key] = uint16(v)
	}
}

// ldR16Imm loads a 16-bit scratch value (built by two OD states) into a
// register pair.
func ldR16Imm(dst, key string) Action {
	return func(c *CPU) {
		c.reg.Set16(dst, c.scratch[key])
	}
}

// ldR16 copies one 16-bit register into another (SP<-HL/IX/IY).
func ldR16(dst, src string) Action {
	return func(c *CPU) {
		v, _ := c.reg.Get16(src)
		c.reg.Set16(dst, v)
	}
}

// incR8/decR8 increment/decrement an 8-bit register and set S Z 5 H 3 V N -.
func incR8(reg string) Action {
	return func(c *CPU) {
		v, _ := c.reg.Get8(reg)
		r := v + 1
		c.reg.Set8(reg, r)
		c.setFlags("SZ5H3V0-", flagInputs{Result: r, H: addHalfCarry8(v, 1), V: r == 0x80})
	}
}

func decR8(reg string) Action {
	return func(c *CPU) {
		v, _ := c.reg.Get8(reg)
		r := v - 1
		c.reg.Set8(reg, r)
		c.setFlags("SZ5H3V1-", flagInputs{Result: r, H: subHalfCarry8(v, 1), V: v == 0x80})
	}
}

// incR16/decR16 adjust a 16-bit register with no flag effects.
func incR16(reg string) Action {
	return func(c *CPU) {
		v, _ := c.reg.Get16(reg)
		c.reg.Set16(reg, v+1)
	}
}

func decR16(reg string) Action {
	return func(c *CPU) {
		v, _ := c.reg.Get16(reg)
		c.reg.Set16(reg, v-1)
	}
}

// addA8 adds src (register name or literal via scratch key fallback) into A.
func addA8(src string, withCarry bool) Action {
	return func(c *CPU) {
		a := c.reg.A
		v, err := c.reg.Get8(src)
		if err != nil {
			v = uint8(c.scratch[src])
		}
		carryIn := withCarry && c.reg.F&flagC != 0
		ci := uint8(0)
		if carryIn {
			ci = 1
		}
		r := a + v + ci
		c.reg.A = r
		c.setFlags("SZ5H3V0C", flagInputs{
			Result: r,
			H:      addHalfCarry8c(a, v, carryIn),
			V:      overflowAdd8(a, v, r),
			C:      uint16(a)+uint16(v)+uint16(ci) > 0xFF,
		})
	}
}

// subA8 subtracts src from A, optionally with the incoming carry (SBC), and
// optionally without storing the result (CP).
func subA8(src string, withCarry bool, compareOnly bool) Action {
	return func(c *CPU) {
		a := c.reg.A
		v, err := c.reg.Get8(src)
		if err != nil {
			v = uint8(c.scratch[src])
		}
		borrowIn := withCarry && c.reg.F&flagC != 0
		bi := uint8(0)
		if borrowIn {
			bi = 1
		}
		r := a - v - bi
		if !compareOnly {
			c.reg.A = r
		}
		c.setFlags("SZ5H3V1C", flagInputs{
			Result: r,
			H:      subHalfCarry8c(a, v, borrowIn),
			V:      overflowSub8(a, v, r),
			C:      uint16(v)+uint16(bi) > uint16(a),
		})
	}
}

// logicalA8 applies AND/OR/XOR of src into A.
func logicalA8(src string, op byte) Action {
	return func(c *CPU) {
		v, err := c.reg.Get8(src)
		if err != nil {
			v = uint8(c.scratch[src])
		}
		var r uint8
		h := false
		switch op {
		case '&':
			r = c.reg.A & v
			h = true
		case '|':
			r = c.reg.A | v
		case '^':
			r = c.reg.A ^ v
		}
		c.reg.A = r
		c.setFlags("SZ5H3P00", flagInputs{Result: r, H: h, UseParity: true})
	}
}

// addHL16 adds src into HL (or IX/IY for the DD/FD-prefixed forms).
func addHL16(dst, src string) Action {
	return func(c *CPU) {
		a, _ := c.reg.Get16(dst)
		v, _ := c.reg.Get16(src)
		r := a + v
		c.reg.Set16(dst, r)
		c.setFlags("--5H3-0C", flagInputs{
			Result: uint8(r >> 8),
			H:      addHalfCarry16(a, v),
			C:      uint32(a)+uint32(v) > 0xFFFF,
		})
	}
}

func jp(dst string) Action {
	return func(c *CPU) {
		v, err := c.reg.Get16(dst)
		if err != nil {
			v = c.scratch[dst]
		}
		c.reg.PC = v
	}
}

func jpScratch(key string) Action { return jp(key) }

// jrScratch adjusts PC by the signed displacement already stored in
// scratch[key] (see newOD(odOpts{signed: true})).
func jrScratch(key string) Action {
	return func(c *CPU) {
		c.reg.PC = uint16(int32(c.reg.PC) + int32(int16(c.scratch[key])))
	}
}

func exAFAF() Action {
	return func(c *CPU) { c.reg.ex() }
}

func exx() Action {
	return func(c *CPU) { c.reg.exx() }
}

func exDEHL() Action {
	return func(c *CPU) {
		de, hl := c.reg.DE(), c.reg.HL()
		c.reg.SetDE(hl)
		c.reg.SetHL(de)
	}
}

func ccf() Action {
	return func(c *CPU) {
		oldC := c.reg.F&flagC != 0
		c.setFlags("--5-3-0-", flagInputs{Result: c.reg.A})
		c.reg.forceflag("H", oldC)
		c.reg.forceflag("C", !oldC)
	}
}

func scf() Action {
	return func(c *CPU) {
		c.setFlags("--5-3-00", flagInputs{Result: c.reg.A})
		c.reg.forceflag("C", true)
	}
}

func cpl() Action {
	return func(c *CPU) {
		c.reg.A = ^c.reg.A
		c.setFlags("--5H3-1-", flagInputs{Result: c.reg.A, H: true})
	}
}

func neg() Action {
	return func(c *CPU) {
		a := c.reg.A
		r := uint8(0) - a
		c.reg.A = r
		c.setFlags("SZ5H3V1C", flagInputs{
			Result: r,
			H:      subHalfCarry8(0, a),
			V:      a == 0x80,
			C:      a != 0,
		})
	}
}

// daa applies the BCD correction algorithm after an 8-bit add/subtract.
func daa() Action {
	return func(c *CPU) {
		a := c.reg.A
		n := c.reg.F&flagN != 0
		h := c.reg.F&flagH != 0
		carry := c.reg.F&flagC != 0
		correction := uint8(0)
		if h || a&0xF > 9 {
			correction |= 0x06
		}
		if carry || a > 0x99 {
			correction |= 0x60
			carry = true
		}
		var r uint8
		if n {
			r = a - correction
		} else {
			r = a + correction
		}
		halfAfter := false
		if n {
			halfAfter = h && (a&0xF) < 6
		} else {
			halfAfter = (a&0xF)+boolUint8(correction&0x06 != 0)*6 > 0xF
		}
		c.reg.A = r
		c.setFlags("SZ5H3P-C", flagInputs{Result: r, H: halfAfter, UseParity: true, C: carry})
	}
}

func boolUint8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func di() Action {
	return func(c *CPU) { c.iff1, c.iff2 = false, false }
}

func ei() Action {
	return func(c *CPU) { c.iff1, c.iff2 = true, true }
}

func imSet(mode uint8) Action {
	return func(c *CPU) { c.im = mode }
}

func halt() Action {
	return func(c *CPU) { c.halted = true }
}

// condition evaluates one of the eight Z80 branch conditions.
func condition(name string) func(c *CPU) bool {
	return func(c *CPU) bool {
		switch name {
		case "NZ":
			return c.reg.F&flagZ == 0
		case "Z":
			return c.reg.F&flagZ != 0
		case "NC":
			return c.reg.F&flagC == 0
		case "C":
			return c.reg.F&flagC != 0
		case "PO":
			return c.reg.F&flagPV == 0
		case "PE":
			return c.reg.F&flagPV != 0
		case "P":
			return c.reg.F&flagS == 0
		case "M":
			return c.reg.F&flagS != 0
		case "__djnz":
			return c.reg.B != 0
		}
		return true
	}
}

// abortUnless drops the remaining states of the current pipeline entry
// unless cond holds, modelling the conditional CALL/JP/RET/JR forms whose
// extra bus cycles only occur when the condition is taken.
func abortUnless(cond func(c *CPU) bool) Action {
	return func(c *CPU) {
		if !cond(c) {
			c.dropConditionalTail = true
		}
	}
}
