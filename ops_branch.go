package z80

func init() {
	registerJumps()
	registerCalls()
	registerReturns()
	registerRST()
	registerDJNZ()
}

// registerJumps fills JP nn, JP cc,nn, JP (HL)/(IX)/(IY), JR e, JR cc,e. JP's
// target is latched directly by the second OD's action (no trailing state),
// matching the documented 10 T-states for both the unconditional and
// conditional forms -- JP cc,nn always reads both operand bytes and costs
// the same 10 T-states whether or not it jumps.
func registerJumps() {
	register(&mainTable, 0xC3, entry(0, nil,
		func() *machineState { return newOD(odOpts{key: "nn"}) },
		func() *machineState {
			return newOD(odOpts{key: "nn", high: true, action: func(c *CPU, v uint16) {
				c.reg.PC = v
			}})
		},
	))
	register(&mainTable, 0xE9, entry(0, []Action{jp("HL")}))

	for i, name := range cc {
		cond := name
		register(&mainTable, uint8(0xC2+i*8), entry(0, nil,
			func() *machineState { return newOD(odOpts{key: "nn"}) },
			func() *machineState {
				return newOD(odOpts{key: "nn", high: true, action: func(c *CPU, v uint16) {
					if condition(cond)(c) {
						c.reg.PC = v
					}
				}})
			},
		))
	}

	register(&mainTable, 0x18, entry(0, nil,
		func() *machineState { return newOD(odOpts{key: "e", signed: true}) },
		func() *machineState { return newIO(5, true, ioOpts{action: func(c *CPU) { jrScratch("e")(c) }}) },
	))

	// JR cc,e: the displacement is always fetched (7 T-states not taken);
	// only when the condition holds does the OD's own action, on its final
	// tick, queue the extra 5 T-state jump cycle -- no separate decision
	// state is spent deciding this, per the spec's "choose between two
	// pipeline suffixes at the end of the first post-fetch state" guidance.
	jrCC := []string{"NZ", "Z", "NC", "C"}
	for i, cond := range jrCC {
		op := uint8(0x20 + i*8)
		c := cond
		register(&mainTable, op, entry(0, nil,
			func() *machineState { return newOD(odOpts{key: "e", signed: true, action: conditionalJRAction(c)}) },
		))
	}
}

// conditionalJRAction is the action run on a conditional JR/DJNZ's
// displacement OD: if cond holds, it prepends the extra 5 T-state internal
// cycle that performs the actual PC adjustment; otherwise the instruction
// is already complete.
func conditionalJRAction(cond string) func(c *CPU, v uint16) {
	return func(c *CPU, v uint16) {
		if !condition(cond)(c) {
			return
		}
		c.prependPipeline([]*machineState{newIO(5, true, ioOpts{action: func(c *CPU) { jrScratch("e")(c) }})})
	}
}

// registerCalls fills CALL nn and CALL cc,nn.
func registerCalls() {
	register(&mainTable, 0xCD, entry(0, nil,
		func() *machineState { return newOD(odOpts{key: "nn"}) },
		func() *machineState { return newOD(odOpts{key: "nn", high: true}) },
		func() *machineState { return newIO(1, true, ioOpts{}) },
		func() *machineState { return newSWReg("PC", true) },
		func() *machineState { return pushLowPCAndJumpTo("nn") },
	))
	for i, name := range cc {
		cond := name
		register(&mainTable, uint8(0xC4+i*8), entry(0, nil,
			func() *machineState { return newOD(odOpts{key: "nn"}) },
			func() *machineState {
				return newOD(odOpts{key: "nn", high: true, action: conditionalCallAction(cond)})
			},
		))
	}
}

// conditionalCallAction is the action run on CALL cc,nn's second (high
// byte) OD: both operand bytes are always fetched (10 T-states not taken,
// matching real hardware); only when cond holds does it prepend the
// internal-hold-and-push sequence that brings the total to 17.
func conditionalCallAction(cond string) func(c *CPU, v uint16) {
	return func(c *CPU, v uint16) {
		if !condition(cond)(c) {
			return
		}
		c.prependPipeline([]*machineState{
			newIO(1, true, ioOpts{}),
			newSWReg("PC", true),
			pushLowPCAndJumpTo("nn"),
		})
	}
}

// pushLowPCAndJumpTo pushes the low byte of the current PC (the return
// address, its high byte already pushed by a preceding newSWReg) and sets
// PC from scratch[key] on the same tick, folding the jump into the write
// rather than spending a separate T-state latching it afterward.
func pushLowPCAndJumpTo(key string) *machineState {
	return &machineState{
		kind:  stateSW,
		total: 3,
		step: func(c *CPU, tickIndex int, final bool) {
			if !final {
				return
			}
			c.reg.SP--
			c.bus.Write(c.reg.SP, uint8(c.reg.PC))
			c.reg.PC = c.scratch[key]
		},
	}
}

// registerReturns fills RET, RET cc, RETN, RETI.
func registerReturns() {
	register(&mainTable, 0xC9, entry(0, nil,
		func() *machineState { return newSRReg("PC", false) },
		func() *machineState { return newSRReg("PC", true) },
	))
	for i, name := range cc {
		cond := name
		register(&mainTable, uint8(0xC0+i*8), entry(1, []Action{abortUnless(condition(cond))},
			func() *machineState { return newSRReg("PC", false) },
			func() *machineState { return newSRReg("PC", true) },
		))
	}
	register(&edTable, 0x45, entry(0, []Action{retn()},
		func() *machineState { return newSRReg("PC", false) },
		func() *machineState { return newSRReg("PC", true) },
	))
	register(&edTable, 0x4D, entry(0, nil,
		func() *machineState { return newSRReg("PC", false) },
		func() *machineState { return newSRReg("PC", true) },
	))
}

func retn() Action {
	return func(c *CPU) { c.iff1 = c.iff2 }
}

// registerRST fills the eight one-byte-call RST vectors: push PC, jump to
// the fixed vector. The low byte of PC is pushed and the jump taken on the
// same tick (pushLowAndJump, shared with the interrupt acknowledge
// sequences in cpu.go), so the total is OCF(5)+SW(3)+SW(3)=11 T-states.
func registerRST() {
	for i := 0; i < 8; i++ {
		vector := uint16(i * 8)
		register(&mainTable, uint8(0xC7+i*8), entry(1, nil,
			func() *machineState { return newSWReg("PC", true) },
			func() *machineState { return pushLowAndJump(vector) },
		))
	}
}

// registerDJNZ fills DJNZ e. The extra OCF tick (base 5 T-states) and the
// decrement happen before the displacement is fetched, matching hardware;
// the displacement byte is always fetched (8 T-states not taken), and only
// a non-zero B queues the extra 5 T-state jump cycle, decided by the OD's
// own action rather than a separate decision state.
func registerDJNZ() {
	register(&mainTable, 0x10, entry(1, []Action{func(c *CPU) { c.reg.B-- }},
		func() *machineState {
			return newOD(odOpts{key: "e", signed: true, action: conditionalJRAction("__djnz")})
		},
	))
}
