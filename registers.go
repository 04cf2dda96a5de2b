package z80

import "fmt"

// Flag bit positions within F (bit 7 high): S Z 5 H 3 P/V N C.
const (
	flagC  uint8 = 1 << 0
	flagN  uint8 = 1 << 1
	flagPV uint8 = 1 << 2
	flag3  uint8 = 1 << 3
	flagH  uint8 = 1 << 4
	flag5  uint8 = 1 << 5
	flagZ  uint8 = 1 << 6
	flagS  uint8 = 1 << 7
)

// Registers is the programmer-visible Z80 register file: the eight primary
// 8-bit registers, the shadow set exchanged by EX AF,AF'/EXX, the IX/IY
// index registers, SP, PC, and the I/R pair.
type Registers struct {
	A, F, B, C, D, E, H, L uint8
	A_, F_, B_, C_, D_, E_, H_, L_ uint8 // shadow set

	IX, IY uint16
	SP, PC uint16
	I, R   uint8
}

// ex exchanges A,F with the shadow A',F'.
func (r *Registers) ex() {
	r.A, r.A_ = r.A_, r.A
	r.F, r.F_ = r.F_, r.F
}

// exx exchanges B,C,D,E,H,L with the shadow set. F is deliberately not
// affected.
func (r *Registers) exx() {
	r.B, r.B_ = r.B_, r.B
	r.C, r.C_ = r.C_, r.C
	r.D, r.D_ = r.D_, r.D
	r.E, r.E_ = r.E_, r.E
	r.H, r.H_ = r.H_, r.H
	r.L, r.L_ = r.L_, r.L
}

func pair(hi, lo uint8) uint16 { return uint16(hi)<<8 | uint16(lo) }

func splitPair(v uint16) (hi, lo uint8) { return uint8(v >> 8), uint8(v) }

// AF, BC, DE, HL return the corresponding register pair, high byte first.
// Value receivers: Registers is returned by value from CPU.Registers(),
// and these are read-only, so a pointer receiver would make them
// uncallable on that non-addressable temporary.
func (r Registers) AF() uint16 { return pair(r.A, r.F) }
func (r Registers) BC() uint16 { return pair(r.B, r.C) }
func (r Registers) DE() uint16 { return pair(r.D, r.E) }
func (r Registers) HL() uint16 { return pair(r.H, r.L) }

// SetAF, SetBC, SetDE, SetHL split v big-endian into the pair's two halves.
func (r *Registers) SetAF(v uint16) { r.A, r.F = splitPair(v) }
func (r *Registers) SetBC(v uint16) { r.B, r.C = splitPair(v) }
func (r *Registers) SetDE(v uint16) { r.D, r.E = splitPair(v) }
func (r *Registers) SetHL(v uint16) { r.H, r.L = splitPair(v) }

// IXH, IXL, IYH, IYL are the undocumented 8-bit halves of the index
// registers.
func (r *Registers) IXH() uint8 { return uint8(r.IX >> 8) }
func (r *Registers) IXL() uint8 { return uint8(r.IX) }
func (r *Registers) IYH() uint8 { return uint8(r.IY >> 8) }
func (r *Registers) IYL() uint8 { return uint8(r.IY) }

func (r *Registers) SetIXH(v uint8) { r.IX = pair(v, uint8(r.IX)) }
func (r *Registers) SetIXL(v uint8) { r.IX = pair(uint8(r.IX>>8), v) }
func (r *Registers) SetIYH(v uint8) { r.IY = pair(v, uint8(r.IY)) }
func (r *Registers) SetIYL(v uint8) { r.IY = pair(uint8(r.IY>>8), v) }

// getflag returns the value (0 or 1) of the named flag: S, Z, 5, H, 3, P, V,
// N, or C. P and V alias the same bit.
func (r *Registers) getflag(name string) (uint8, error) {
	bit, err := flagBit(name)
	if err != nil {
		return 0, err
	}
	if r.F&bit != 0 {
		return 1, nil
	}
	return 0, nil
}

func (r *Registers) setflag(name string) error {
	bit, err := flagBit(name)
	if err != nil {
		return err
	}
	r.F |= bit
	return nil
}

func (r *Registers) resetflag(name string) error {
	bit, err := flagBit(name)
	if err != nil {
		return err
	}
	r.F &^= bit
	return nil
}

func (r *Registers) forceflag(name string, v bool) error {
	if v {
		return r.setflag(name)
	}
	return r.resetflag(name)
}

func flagBit(name string) (uint8, error) {
	switch name {
	case "S":
		return flagS, nil
	case "Z":
		return flagZ, nil
	case "5":
		return flag5, nil
	case "H":
		return flagH, nil
	case "3":
		return flag3, nil
	case "P", "V":
		return flagPV, nil
	case "N":
		return flagN, nil
	case "C":
		return flagC, nil
	}
	return 0, &InvalidRegisterAccessError{Name: name}
}

// Get8 reads an 8-bit register by name: A, F, B, C, D, E, H, L, I, R, IXH,
// IXL, IYH, IYL, SPH, SPL, PCH, or PCL.
func (r *Registers) Get8(name string) (uint8, error) {
	switch name {
	case "A":
		return r.A, nil
	case "F":
		return r.F, nil
	case "B":
		return r.B, nil
	case "C":
		return r.C, nil
	case "D":
		return r.D, nil
	case "E":
		return r.E, nil
	case "H":
		return r.H, nil
	case "L":
		return r.L, nil
	case "I":
		return r.I, nil
	case "R":
		return r.R, nil
	case "IXH":
		return r.IXH(), nil
	case "IXL":
		return r.IXL(), nil
	case "IYH":
		return r.IYH(), nil
	case "IYL":
		return r.IYL(), nil
	case "SPH":
		return uint8(r.SP >> 8), nil
	case "SPL":
		return uint8(r.SP), nil
	case "PCH":
		return uint8(r.PC >> 8), nil
	case "PCL":
		return uint8(r.PC), nil
	}
	return 0, &InvalidRegisterAccessError{Name: name}
}

// Set8 writes an 8-bit register by name. v must fit in 8 bits.
func (r *Registers) Set8(name string, v uint8) error {
	switch name {
	case "A":
		r.A = v
	case "F":
		r.F = v
	case "B":
		r.B = v
	case "C":
		r.C = v
	case "D":
		r.D = v
	case "E":
		r.E = v
	case "H":
		r.H = v
	case "L":
		r.L = v
	case "I":
		r.I = v
	case "R":
		r.R = v
	case "IXH":
		r.SetIXH(v)
	case "IXL":
		r.SetIXL(v)
	case "IYH":
		r.SetIYH(v)
	case "IYL":
		r.SetIYL(v)
	case "SPH":
		r.SP = pair(v, uint8(r.SP))
	case "SPL":
		r.SP = pair(uint8(r.SP>>8), v)
	case "PCH":
		r.PC = pair(v, uint8(r.PC))
	case "PCL":
		r.PC = pair(uint8(r.PC>>8), v)
	default:
		return &InvalidRegisterAccessError{Name: name}
	}
	return nil
}

// Get16 reads a 16-bit register or pair view by name: AF, BC, DE, HL, IX,
// IY, SP, or PC.
func (r *Registers) Get16(name string) (uint16, error) {
	switch name {
	case "AF":
		return r.AF(), nil
	case "BC":
		return r.BC(), nil
	case "DE":
		return r.DE(), nil
	case "HL":
		return r.HL(), nil
	case "IX":
		return r.IX, nil
	case "IY":
		return r.IY, nil
	case "SP":
		return r.SP, nil
	case "PC":
		return r.PC, nil
	}
	return 0, &InvalidRegisterAccessError{Name: name}
}

// Set16 writes a 16-bit register or pair view by name, splitting big-endian
// into the underlying halves.
func (r *Registers) Set16(name string, v uint16) error {
	switch name {
	case "AF":
		r.SetAF(v)
	case "BC":
		r.SetBC(v)
	case "DE":
		r.SetDE(v)
	case "HL":
		r.SetHL(v)
	case "IX":
		r.IX = v
	case "IY":
		r.IY = v
	case "SP":
		r.SP = v
	case "PC":
		r.PC = v
	default:
		return &InvalidRegisterAccessError{Name: name}
	}
	return nil
}

// String renders a register-map diagram, used for diagnostics and by
// cmd/z80run's trace output. Value receiver, so it is callable on the copy
// CPU.Registers() returns.
func (r Registers) String() string {
	return fmt.Sprintf(
		`  +------+------+    +------+------+
 A| 0x%02X | 0x%02X |F A'| 0x%02X | 0x%02X |F'
 B| 0x%02X | 0x%02X |C B'| 0x%02X | 0x%02X |C'
 D| 0x%02X | 0x%02X |E D'| 0x%02X | 0x%02X |E'
 H| 0x%02X | 0x%02X |L H'| 0x%02X | 0x%02X |L'
  +------+------+    +------+------+
IX|    0x%04X   |    +-+-+-+-+-+-+-+-+
IY|    0x%04X   |    |S|Z|5|H|3|V|N|C|
SP|    0x%04X   |    |%d|%d|%d|%d|%d|%d|%d|%d|
PC|    0x%04X   |    +-+-+-+-+-+-+-+-+
  +------+------+
 I| 0x%02X | 0x%02X |R
  +------+------+
`,
		r.A, r.F, r.A_, r.F_,
		r.B, r.C, r.B_, r.C_,
		r.D, r.E, r.D_, r.E_,
		r.H, r.L, r.H_, r.L_,
		r.IX,
		r.IY,
		r.SP, boolBit(r.F&flagS != 0), boolBit(r.F&flagZ != 0), boolBit(r.F&flag5 != 0), boolBit(r.F&flagH != 0), boolBit(r.F&flag3 != 0), boolBit(r.F&flagPV != 0), boolBit(r.F&flagN != 0), boolBit(r.F&flagC != 0),
		r.PC,
		r.I, r.R,
	)
}

func boolBit(b bool) int {
	if b {
		return 1
	}
	return 0
}
