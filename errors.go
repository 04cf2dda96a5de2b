package z80

import "fmt"

// UnrecognisedInstructionError is returned when the decoder has no entry for
// an opcode key (a single byte, or a 2/3-byte prefixed tuple). It is fatal to
// the instruction in progress: the CPU does not attempt to advance PC past
// the bytes already consumed.
type UnrecognisedInstructionError struct {
	Key Key
}

func (e *UnrecognisedInstructionError) Error() string {
	return fmt.Sprintf("z80: unrecognised instruction %s", e.Key)
}

// CPUStalledError indicates the pipeline emptied and the driver could not
// produce a next machine state. This is an internal invariant failure; it
// should never occur in practice since Clock always schedules an OCF, a HALT
// no-op, or an interrupt acknowledge when the pipeline drains.
type CPUStalledError struct{}

func (e *CPUStalledError) Error() string {
	return "z80: CPU stalled, no instruction in pipeline"
}

// InvalidRegisterAccessError is returned when a register name unknown to the
// register file is read or written.
type InvalidRegisterAccessError struct {
	Name string
}

func (e *InvalidRegisterAccessError) Error() string {
	return fmt.Sprintf("z80: invalid register access %q", e.Name)
}
