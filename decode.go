package z80

import "fmt"

// Key identifies a decode table entry: a single byte for unprefixed
// opcodes, (prefix<<8)|byte for CB/ED/DD/FD pages, or
// (p1<<16)|(p2<<8)|byte for the DD-CB/FD-CB four-byte forms.
type Key uint32

func (k Key) String() string {
	switch {
	case k > 0xFFFF:
		return fmt.Sprintf("%02X %02X %02X", (k>>16)&0xFF, (k>>8)&0xFF, k&0xFF)
	case k > 0xFF:
		return fmt.Sprintf("%02X %02X", (k>>8)&0xFF, k&0xFF)
	default:
		return fmt.Sprintf("%02X", uint8(k))
	}
}

// decodeEntry is the (extra_ocf_ticks, immediate_actions, appended_states)
// tuple described by spec.md 3. extraOCFTicks lengthens the opcode fetch
// beyond its 4 T-state base; actions run synchronously when the OCF that
// looked up this entry concludes; states are freshly instantiated and
// appended to the pipeline.
type decodeEntry struct {
	extraOCFTicks int
	actions       []Action
	states        []func() *machineState
}

// prefixKind identifies which decode table an OCF should consult.
type prefixKind uint8

const (
	prefixNone prefixKind = iota
	prefixCB
	prefixED
	prefixDD
	prefixFD
	prefixDDCB
	prefixFDCB
)

const (
	byteCB uint8 = 0xCB
	byteED uint8 = 0xED
	byteDD uint8 = 0xDD
	byteFD uint8 = 0xFD
)

var (
	mainTable    [256]*decodeEntry
	cbTable      [256]*decodeEntry
	edTable      [256]*decodeEntry
	ddTable      [256]*decodeEntry
	fdTable      [256]*decodeEntry
	ddfdCBTable  [256]*decodeEntry
)

func keyFor(kind prefixKind, b uint8) Key {
	switch kind {
	case prefixNone:
		return Key(b)
	case prefixCB:
		return Key(byteCB)<<8 | Key(b)
	case prefixED:
		return Key(byteED)<<8 | Key(b)
	case prefixDD:
		return Key(byteDD)<<8 | Key(b)
	case prefixFD:
		return Key(byteFD)<<8 | Key(b)
	case prefixDDCB:
		return Key(byteDD)<<16 | Key(byteCB)<<8 | Key(b)
	case prefixFDCB:
		return Key(byteFD)<<16 | Key(byteCB)<<8 | Key(b)
	}
	return Key(b)
}

// decodeResult is the outcome of looking up a byte against the current
// prefix state: either a usable decodeEntry, or a signal to continue the
// prefix chain with an extra machine state sequence prepended (used only by
// the DD-CB/FD-CB four-byte forms).
type decodeResult struct {
	entry   *decodeEntry
	next    prefixKind          // prefixNone once entry is non-nil and final
	prelude []func() *machineState // states to run before the next OCF (DD-CB/FD-CB)
}

// decode resolves one opcode byte against the current prefix state.
func decode(kind prefixKind, b uint8) (decodeResult, error) {
	switch kind {
	case prefixNone:
		switch b {
		case byteCB:
			return decodeResult{next: prefixCB}, nil
		case byteED:
			return decodeResult{next: prefixED}, nil
		case byteDD:
			return decodeResult{next: prefixDD}, nil
		case byteFD:
			return decodeResult{next: prefixFD}, nil
		}
		e := mainTable[b]
		if e == nil {
			return decodeResult{}, &UnrecognisedInstructionError{Key: keyFor(prefixNone, b)}
		}
		return decodeResult{entry: e}, nil

	case prefixCB:
		e := cbTable[b]
		if e == nil {
			return decodeResult{}, &UnrecognisedInstructionError{Key: keyFor(prefixCB, b)}
		}
		return decodeResult{entry: e}, nil

	case prefixED:
		e := edTable[b]
		if e == nil {
			return decodeResult{}, &UnrecognisedInstructionError{Key: keyFor(prefixED, b)}
		}
		return decodeResult{entry: e}, nil

	case prefixDD, prefixFD:
		if b == byteCB {
			next := prefixDDCB
			idxReg := "IX"
			if kind == prefixFD {
				next = prefixFDCB
				idxReg = "IY"
			}
			od := func() *machineState { return newOD(odOpts{key: "address", signed: true}) }
			io := func() *machineState {
				return newIO(5, true, ioOpts{transform: map[string]func(*CPU, uint16) uint16{
					"address": addRegisterTransform(idxReg),
				}})
			}
			return decodeResult{next: next, prelude: []func() *machineState{od, io}}, nil
		}
		switch b {
		case byteDD:
			return decodeResult{next: prefixDD}, nil
		case byteFD:
			return decodeResult{next: prefixFD}, nil
		case byteED:
			return decodeResult{next: prefixED}, nil
		}
		tbl := ddTable
		if kind == prefixFD {
			tbl = fdTable
		}
		if e := tbl[b]; e != nil {
			return decodeResult{entry: e}, nil
		}
		// Undocumented fallback: DD/FD ahead of an instruction that doesn't
		// reference HL/IX/IY behaves as the unprefixed instruction, with the
		// prefix byte wasted as an extra 4-T-state fetch.
		if e := mainTable[b]; e != nil {
			return decodeResult{entry: e}, nil
		}
		return decodeResult{}, &UnrecognisedInstructionError{Key: keyFor(kind, b)}

	case prefixDDCB, prefixFDCB:
		e := ddfdCBTable[b]
		if e == nil {
			return decodeResult{}, &UnrecognisedInstructionError{Key: keyFor(kind, b)}
		}
		return decodeResult{entry: e}, nil
	}
	return decodeResult{}, &UnrecognisedInstructionError{Key: Key(b)}
}

func addRegisterTransform(reg string) func(*CPU, uint16) uint16 {
	return func(c *CPU, addr uint16) uint16 {
		v, _ := c.reg.Get16(reg)
		return uint16(int32(int16(addr)) + int32(v))
	}
}
