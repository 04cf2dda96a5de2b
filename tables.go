package z80

// r8 is the 3-bit register field used throughout the main page and the CB
// page: B C D E H L (HL) A. "(HL)" is handled specially by callers since it
// needs a memory cycle rather than a register access.
var r8 = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}

// rp is the 2-bit register-pair field used by 16-bit load/arithmetic forms.
var rp = [4]string{"BC", "DE", "HL", "SP"}

// rp2 is the 2-bit register-pair field used by PUSH/POP, which uses AF in
// place of SP.
var rp2 = [4]string{"BC", "DE", "HL", "AF"}

// cc is the 3-bit condition field used by conditional JP/CALL/RET.
var cc = [8]string{"NZ", "Z", "NC", "C", "PO", "PE", "P", "M"}

// aluOp is the 3-bit ALU operation field used by both the register/memory
// ALU forms and the ALU-with-immediate forms.
var aluOp = [8]string{"ADD", "ADC", "SUB", "SBC", "AND", "XOR", "OR", "CP"}

// rot is the 3-bit rotate/shift field used by the CB page.
var rot = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SLL", "SRL"}

func register(tbl *[256]*decodeEntry, op uint8, e *decodeEntry) {
	if tbl[op] != nil {
		panic("z80: duplicate opcode registration")
	}
	tbl[op] = e
}

func entry(extra int, actions []Action, states ...func() *machineState) *decodeEntry {
	return &decodeEntry{extraOCFTicks: extra, actions: actions, states: states}
}
