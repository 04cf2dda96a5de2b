package z80

// machineState is one bus cycle (OCF, OD, MR, MW, SR, SW, IO) in the CPU's
// single active pipeline. tick advances it by exactly one T-state and
// reports whether that tick was its last. A state performs its address
// resolution and bus access only on the tick(s) where the real hardware
// would drive the bus, so that a caller observing Bus.Read/Write mid
// instruction sees the same cycle-by-cycle pattern as silicon.
type machineState struct {
	kind   stateKind
	total  int
	done   int
	step   func(c *CPU, tickIndex int, final bool)
	decode func(c *CPU) int // OCF only: runs once done reaches the base total; decodes the opcode and returns extraOCFTicks
}

type stateKind uint8

const (
	stateOCF stateKind = iota
	stateOD
	stateMR
	stateMW
	stateSR
	stateSW
	stateIO
)

func (s *machineState) tick(c *CPU) bool {
	s.done++
	if s.decode != nil && s.done == s.total {
		extra := s.decode(c)
		s.decode = nil
		if extra > 0 {
			s.total += extra
		}
	}
	final := s.done == s.total
	if s.step != nil {
		s.step(c, s.done, final)
	}
	return final
}

// newOCF builds the opcode-fetch state. decode runs once, on the base tick
// (tick 4), reading and decoding the next opcode byte and reporting how many
// extra T-states the resolved entry needs; tick() extends s.total by that
// amount before deciding whether this tick is the true final one, so the
// entry's actions and appended states -- run from step, below -- only ever
// fire on that true final tick, after any extraOCFTicks have elapsed.
func newOCF() *machineState {
	var entry *decodeEntry
	s := &machineState{kind: stateOCF, total: 4}
	s.decode = func(c *CPU) int {
		b := c.bus.Read(c.reg.PC)
		c.reg.PC++
		c.bumpR()
		res, err := decode(c.curKind, b)
		if err != nil {
			c.fault = err
			return 0
		}
		if res.entry == nil {
			c.curKind = res.next
			var chain []*machineState
			for _, f := range res.prelude {
				chain = append(chain, f())
			}
			chain = append(chain, newOCF())
			c.prependPipeline(chain)
			return 0
		}
		entry = res.entry
		c.curKind = prefixNone
		return entry.extraOCFTicks
	}
	s.step = func(c *CPU, tickIndex int, final bool) {
		if !final || entry == nil {
			return
		}
		for _, a := range entry.actions {
			a(c)
		}
		if len(entry.states) > 0 {
			news := make([]*machineState, len(entry.states))
			for i, f := range entry.states {
				news[i] = f()
			}
			c.prependPipeline(news)
		}
	}
	return s
}

type odOpts struct {
	key    string // scratch key to write
	signed bool   // sign-extend to int16 before storing (displacement bytes)
	high   bool   // OR the byte in as the high half of an existing scratch word
	action func(c *CPU, value uint16) // called with the final scratch value, same tick
}

// newOD builds an operand-data-fetch state: one byte read from (PC), PC++,
// 3 T-states. Building a 16-bit immediate is two OD states, the second with
// high set. action, when set, fires on the same final tick as the byte is
// latched into scratch -- this is how LD r,n/LD dd,nn deliver their operand
// straight into a register without a phantom extra T-state, matching the
// spec's OD contract ("action (called with the final value)").
func newOD(opts odOpts) *machineState {
	return &machineState{
		kind:  stateOD,
		total: 3,
		step: func(c *CPU, tickIndex int, final bool) {
			if !final {
				return
			}
			b := c.bus.Read(c.reg.PC)
			c.reg.PC++
			switch {
			case opts.signed:
				c.scratch[opts.key] = uint16(int16(int8(b)))
			case opts.high:
				c.scratch[opts.key] = c.scratch[opts.key] | uint16(b)<<8
			default:
				c.scratch[opts.key] = uint16(b)
			}
			if opts.action != nil {
				opts.action(c, c.scratch[opts.key])
			}
		},
	}
}

// mrOpts resolves its address in priority order: useFixed (a literal
// address computed at table-build time, rare), addressReg (a 16-bit
// register read live, e.g. "HL" or "SP"), then the scratch key named by
// addressKey (or "address", its default, left by a preceding OD/IO state
// for the indexed (IX+d)/(IY+d) forms; "nn" for the (nn)-addressed forms).
// The byte read is delivered either into a register (destReg) or into
// scratch (dest), whichever is set.
type mrOpts struct {
	extra      int
	addressReg string
	addressKey string
	fixedAddr  uint16
	useFixed   bool
	dest       string
	destReg    string
}

func (o mrOpts) resolveAddress(c *CPU) uint16 {
	switch {
	case o.useFixed:
		return o.fixedAddr
	case o.addressReg != "":
		v, _ := c.reg.Get16(o.addressReg)
		return v
	case o.addressKey != "":
		return c.scratch[o.addressKey]
	default:
		return c.scratch["address"]
	}
}

// newMR builds a memory-read state.
func newMR(opts mrOpts) *machineState {
	return &machineState{
		kind:  stateMR,
		total: 3 + opts.extra,
		step: func(c *CPU, tickIndex int, final bool) {
			if !final {
				return
			}
			b := c.bus.Read(opts.resolveAddress(c))
			if opts.destReg != "" {
				c.reg.Set8(opts.destReg, b)
			} else {
				c.scratch[opts.dest] = uint16(b)
			}
		},
	}
}

// mwOpts mirrors mrOpts for writes: address resolution is identical, and
// the byte written comes from either a register (srcReg) or scratch (src).
type mwOpts struct {
	extra      int
	addressReg string
	addressKey string
	fixedAddr  uint16
	useFixed   bool
	src        string
	srcReg     string
}

func (o mwOpts) resolveAddress(c *CPU) uint16 {
	switch {
	case o.useFixed:
		return o.fixedAddr
	case o.addressReg != "":
		v, _ := c.reg.Get16(o.addressReg)
		return v
	case o.addressKey != "":
		return c.scratch[o.addressKey]
	default:
		return c.scratch["address"]
	}
}

// newMW builds a memory-write state.
func newMW(opts mwOpts) *machineState {
	return &machineState{
		kind:  stateMW,
		total: 3 + opts.extra,
		step: func(c *CPU, tickIndex int, final bool) {
			if !final {
				return
			}
			var b uint8
			if opts.srcReg != "" {
				b, _ = c.reg.Get8(opts.srcReg)
			} else {
				b = uint8(c.scratch[opts.src])
			}
			c.bus.Write(opts.resolveAddress(c), b)
		},
	}
}

// newSR builds a stack-read state: read (SP), SP++, 3 T-states. Two of
// these read a return address or popped register pair low-then-high.
func newSR(dest string, high bool) *machineState {
	return &machineState{
		kind:  stateSR,
		total: 3,
		step: func(c *CPU, tickIndex int, final bool) {
			if !final {
				return
			}
			b := c.bus.Read(c.reg.SP)
			c.reg.SP++
			if high {
				c.scratch[dest] = c.scratch[dest] | uint16(b)<<8
			} else {
				c.scratch[dest] = uint16(b)
			}
		},
	}
}

// newSW builds a stack-write state: SP--, write (SP), 3 T-states, taking
// its 16-bit value from scratch[src]. Pushes enqueue the high byte first,
// then the low byte, matching hardware order.
func newSW(src string, high bool) *machineState {
	return &machineState{
		kind:  stateSW,
		total: 3,
		step: func(c *CPU, tickIndex int, final bool) {
			if !final {
				return
			}
			c.reg.SP--
			v := c.scratch[src]
			if high {
				c.bus.Write(c.reg.SP, uint8(v>>8))
			} else {
				c.bus.Write(c.reg.SP, uint8(v))
			}
		},
	}
}

// newSWReg is newSW reading its 16-bit value directly from a register
// (PC, or the register pair named by a PUSH instruction) rather than
// scratch, since the value being pushed is usually already live in a
// register and need not round-trip through scratch first.
func newSWReg(reg string, high bool) *machineState {
	return &machineState{
		kind:  stateSW,
		total: 3,
		step: func(c *CPU, tickIndex int, final bool) {
			if !final {
				return
			}
			c.reg.SP--
			v, _ := c.reg.Get16(reg)
			if high {
				c.bus.Write(c.reg.SP, uint8(v>>8))
			} else {
				c.bus.Write(c.reg.SP, uint8(v))
			}
		},
	}
}

// newSRReg is newSR writing the popped byte directly into a register's
// half instead of scratch.
func newSRReg(reg string, high bool) *machineState {
	return &machineState{
		kind:  stateSR,
		total: 3,
		step: func(c *CPU, tickIndex int, final bool) {
			if !final {
				return
			}
			b := c.bus.Read(c.reg.SP)
			c.reg.SP++
			cur, _ := c.reg.Get16(reg)
			if high {
				c.reg.Set16(reg, pair(b, uint8(cur)))
			} else {
				c.reg.Set16(reg, pair(uint8(cur>>8), b))
			}
		},
	}
}

type ioOpts struct {
	transform map[string]func(c *CPU, v uint16) uint16 // scratch key -> replacement
	action    func(c *CPU)
}

// newIO builds an internal-cycle state: ticks T-states of pure delay, then
// an optional scratch transform and/or action on the final tick. locked is
// informational (whether this state must not be interrupted by a pipeline
// reschedule); the driver currently never reschedules mid-state regardless.
func newIO(ticks int, locked bool, opts ioOpts) *machineState {
	return &machineState{
		kind:  stateIO,
		total: ticks,
		step: func(c *CPU, tickIndex int, final bool) {
			if !final {
				return
			}
			for key, f := range opts.transform {
				c.scratch[key] = f(c, c.scratch[key])
			}
			if opts.action != nil {
				opts.action(c)
			}
		},
	}
}
