package z80

import "testing"

func TestRegisterPairs(t *testing.T) {
	var r Registers
	r.SetBC(0x1234)
	if r.B != 0x12 || r.C != 0x34 {
		t.Fatalf("SetBC split wrong: B=0x%02X C=0x%02X", r.B, r.C)
	}
	if r.BC() != 0x1234 {
		t.Fatalf("BC() = 0x%04X, want 0x1234", r.BC())
	}
}

func TestExExchangesAFOnly(t *testing.T) {
	var r Registers
	r.SetAF(0x1234)
	r.B = 0xAA
	r.ex()
	if r.A != 0x00 || r.F != 0x00 {
		t.Fatalf("A/F not cleared after ex with zeroed shadow")
	}
	if r.A_ != 0x12 || r.F_ != 0x34 {
		t.Fatalf("shadow A'/F' = 0x%02X/0x%02X, want 0x12/0x34", r.A_, r.F_)
	}
	if r.B != 0xAA {
		t.Fatalf("ex must not touch B")
	}
}

func TestExxLeavesFAlone(t *testing.T) {
	var r Registers
	r.F = 0xFF
	r.SetBC(0x1111)
	r.exx()
	if r.F != 0xFF {
		t.Fatalf("exx must not affect F")
	}
	if r.BC() != 0 {
		t.Fatalf("BC should have exchanged to the zeroed shadow")
	}
}

func TestIndexHalfRegisters(t *testing.T) {
	var r Registers
	r.IX = 0xABCD
	if r.IXH() != 0xAB || r.IXL() != 0xCD {
		t.Fatalf("IXH/IXL = 0x%02X/0x%02X, want 0xAB/0xCD", r.IXH(), r.IXL())
	}
	r.SetIXL(0xFF)
	if r.IX != 0xABFF {
		t.Fatalf("SetIXL did not preserve the high byte: IX = 0x%04X", r.IX)
	}
}

func TestGet8Set8RoundTrip(t *testing.T) {
	var r Registers
	for _, name := range []string{"A", "B", "C", "D", "E", "H", "L", "I", "R", "IXH", "IXL", "IYH", "IYL", "SPH", "SPL", "PCH", "PCL"} {
		if err := r.Set8(name, 0x5A); err != nil {
			t.Fatalf("Set8(%s): %v", name, err)
		}
		v, err := r.Get8(name)
		if err != nil {
			t.Fatalf("Get8(%s): %v", name, err)
		}
		if v != 0x5A {
			t.Fatalf("Get8(%s) = 0x%02X after Set8, want 0x5A", name, v)
		}
	}
}

func TestInvalidRegisterName(t *testing.T) {
	var r Registers
	if _, err := r.Get8("Q"); err == nil {
		t.Fatalf("expected error for unknown register name")
	}
}

func TestFlagHelpers(t *testing.T) {
	var r Registers
	if err := r.setflag("C"); err != nil {
		t.Fatalf("setflag: %v", err)
	}
	v, _ := r.getflag("C")
	if v != 1 {
		t.Fatalf("getflag(C) = %d, want 1", v)
	}
	r.resetflag("C")
	v, _ = r.getflag("C")
	if v != 0 {
		t.Fatalf("getflag(C) after reset = %d, want 0", v)
	}
	// P and V alias the same bit.
	r.setflag("P")
	pv, _ := r.getflag("V")
	if pv != 1 {
		t.Fatalf("P and V should alias the same bit")
	}
}
