package z80

// CPU is one Z80 core. Its only external dependencies are a Bus, an IOBus,
// and whatever drives Clock; it owns no notion of wall-clock time, video,
// or peripheral mapping.
type CPU struct {
	reg Registers

	bus Bus
	io  IOBus

	pipeline []*machineState
	scratch  map[string]uint16
	curKind  prefixKind

	// pendingInsert collects states appended by an action running on a
	// machine state's own concluding tick (an OCF's decoded entry, a
	// conditional jump's extra cycle, a block instruction's repeat). The
	// state that is concluding is still pipeline[0] at that point, so
	// these cannot be spliced into c.pipeline directly; Clock moves them
	// into place immediately after popping that concluded head, giving
	// [pendingInsert…, whatever followed] with the spent state gone.
	pendingInsert []*machineState

	iff1, iff2 bool
	im         uint8
	halted     bool

	pendingNMI bool
	pendingINT bool
	pendingAck AckSource

	dropConditionalTail bool
	fault               error

	Ticks uint64
}

// New returns a CPU wired to the given memory and I/O buses, reset to its
// power-on state.
func New(bus Bus, io IOBus) *CPU {
	c := &CPU{bus: bus, io: io, scratch: make(map[string]uint16, 4)}
	c.Reset()
	return c
}

// Reset puts the CPU in its power-on state: AF, BC, DE, HL, IX, IY, SP, PC
// all zero (and their shadows), interrupts disabled, IM 0, not halted.
func (c *CPU) Reset() {
	c.reg = Registers{}
	c.pipeline = nil
	c.pendingInsert = nil
	c.scratch = make(map[string]uint16, 4)
	c.curKind = prefixNone
	c.iff1, c.iff2 = false, false
	c.im = 0
	c.halted = false
	c.pendingNMI = false
	c.pendingINT = false
	c.pendingAck = nil
	c.fault = nil
	c.Ticks = 0
}

// Registers returns a copy of the current register file.
func (c *CPU) Registers() Registers { return c.reg }

// SetPC overrides the program counter, for callers that load a program at a
// non-zero origin before the first Clock call.
func (c *CPU) SetPC(pc uint16) { c.reg.PC = pc }

// Halted reports whether the CPU is in the HALT no-op loop.
func (c *CPU) Halted() bool { return c.halted }

// bumpR increments the low 7 bits of R, leaving bit 7 (set by the caller
// via LD R,A) untouched, matching the real refresh-counter behavior.
func (c *CPU) bumpR() {
	c.reg.R = (c.reg.R & 0x80) | ((c.reg.R + 1) & 0x7F)
}

// prependPipeline queues states to run immediately after the machine state
// currently concluding. It cannot splice them into c.pipeline directly --
// the concluding state is still pipeline[0] while its own step runs -- so
// Clock is the one that actually inserts them, right after removing that
// spent head.
func (c *CPU) prependPipeline(states []*machineState) {
	c.pendingInsert = append(c.pendingInsert, states...)
}

// Interrupt latches a pending interrupt request. nmi requests a
// non-maskable interrupt; otherwise this is a maskable request whose
// acknowledge cycle will consult ack once the CPU accepts it. A second
// maskable request before the first is accepted replaces the first (the
// real Z80 samples /INT continuously and only the line level right before
// acceptance matters); NMI always takes priority over a pending maskable
// request.
func (c *CPU) Interrupt(ack AckSource, nmi bool) {
	if ack == nil {
		ack = noAckSource{}
	}
	if nmi {
		c.pendingNMI = true
		return
	}
	c.pendingINT = true
	c.pendingAck = ack
}

// Clock advances the CPU by exactly one T-state. It ticks the head of the
// pipeline; when the pipeline drains, it decides what comes next: an
// interrupt acknowledge sequence if one is pending and enabled, a HALT
// no-op cycle if halted, or a fresh opcode fetch otherwise. It returns any
// error raised by decoding (an unrecognised instruction) during the tick
// just performed.
func (c *CPU) Clock() error {
	c.Ticks++

	if len(c.pipeline) == 0 {
		c.scheduleNext()
	}

	if len(c.pipeline) == 0 {
		return &CPUStalledError{}
	}

	head := c.pipeline[0]
	done := head.tick(c)
	if c.fault != nil {
		err := c.fault
		c.fault = nil
		c.pipeline = nil
		c.pendingInsert = nil
		c.curKind = prefixNone
		return err
	}
	if done {
		rest := c.pipeline[1:]
		c.pipeline = append(c.pendingInsert, rest...)
		c.pendingInsert = nil
		if c.dropConditionalTail {
			c.pipeline = nil
			c.dropConditionalTail = false
		}
	}
	return nil
}

// scheduleNext decides what begins once the pipeline has drained.
func (c *CPU) scheduleNext() {
	if c.pendingNMI {
		c.pendingNMI = false
		c.halted = false
		c.pipeline = c.buildNMIAck()
		return
	}
	if c.pendingINT && c.iff1 {
		c.pendingINT = false
		c.iff1, c.iff2 = false, false
		halted := c.halted
		c.halted = false
		c.pipeline = c.buildMaskableAck(halted)
		return
	}
	if c.halted {
		c.pipeline = []*machineState{haltNoOp()}
		return
	}
	c.pipeline = []*machineState{newOCF()}
}

// haltNoOp is the 4 T-state cycle the CPU repeats while halted: it behaves
// like an opcode fetch of NOP but does not advance PC, since the fetched
// byte is discarded and the same NOP is re-fetched next time.
func haltNoOp() *machineState {
	return &machineState{
		kind:  stateOCF,
		total: 4,
		step: func(c *CPU, tickIndex int, final bool) {
			if !final {
				return
			}
			c.bus.Read(c.reg.PC)
			c.bumpR()
		},
	}
}

// buildMaskableAck constructs the acknowledge sequence for a maskable
// interrupt: two T-states of bus hold (IORQ active in place of MREQ),
// extended so the total before any IM-specific fetch matches the 2-T-state
// acknowledge window, then the IM 0/1/2-specific continuation, for the
// hardware's 13/19-state IM 1/IM 2 totals and an IM 0 total that depends on
// the acknowledged opcode (2 T-states of bus hold plus the durations of the
// states that opcode's decode entry appends; its extraOCFTicks are not
// charged). wasHalted does not move PC: the fetch of the HALT opcode already
// advanced PC past it, so the pushed return address is that of the
// instruction after HALT, as for NMI.
func (c *CPU) buildMaskableAck(wasHalted bool) []*machineState {
	ackByte := func() uint8 {
		if c.pendingAck == nil {
			return 0
		}
		return c.pendingAck.NextByte()
	}

	switch c.im {
	case 2:
		vector := ackByte()
		return []*machineState{
			newIO(7, true, ioOpts{}),
			newSWReg("PC", true),
			newSWReg("PC", false),
			newIO(6, false, ioOpts{action: func(c *CPU) {
				base := pair(c.reg.I, vector)
				lo := c.bus.Read(base)
				hi := c.bus.Read(base + 1)
				c.reg.PC = pair(hi, lo)
			}}),
		}
	case 1:
		return []*machineState{
			newIO(7, true, ioOpts{}),
			newSWReg("PC", true),
			pushLowAndJump(0x0038),
		}
	default: // IM 0: execute the instruction placed on the data bus, exactly
		// as decode() would have produced it from a real OCF: actions and
		// any appended states (an RST opcode, the common case, is expressed
		// entirely as states).
		opcode := ackByte()
		return []*machineState{
			newIO(2, true, ioOpts{action: func(c *CPU) {
				entry := mainTable[opcode]
				if entry == nil {
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
			}}),
		}
	}
}

// pushLowAndJump is the final push state of a push+jump acknowledge
// sequence: it writes the low byte of PC (the high byte having already been
// pushed by a preceding newSWReg) and only then sets PC to vector, folding
// the jump into the same T-state as the write rather than spending an
// extra tick on it.
func pushLowAndJump(vector uint16) *machineState {
	return &machineState{
		kind:  stateSW,
		total: 3,
		step: func(c *CPU, tickIndex int, final bool) {
			if !final {
				return
			}
			c.reg.SP--
			c.bus.Write(c.reg.SP, uint8(c.reg.PC))
			c.reg.PC = vector
		},
	}
}

// buildNMIAck constructs the 11 T-state NMI acknowledge sequence: push PC,
// jump to 0x0066. iff2 is saved by the real hardware for RETN to restore
// into iff1; this core simply clears iff1 and leaves iff2 untouched, and
// retn() restores iff1 from iff2.
func (c *CPU) buildNMIAck() []*machineState {
	c.iff1 = false
	return []*machineState{
		newIO(5, true, ioOpts{}),
		newSWReg("PC", true),
		pushLowAndJump(0x0066),
	}
}
