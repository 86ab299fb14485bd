package kind

import "testing"

func TestUnsignedCastIdentityAndTruncation(t *testing.T) {
	v := FromUint(0b0101, 4)

	same, err := v.UnsignedCast(4)
	if err != nil || same.Kind != MakeBits(4) {
		t.Fatalf("UnsignedCast(n) identity failed: %v, %v", same, err)
	}

	wider, err := v.UnsignedCast(5)
	if err != nil {
		t.Fatalf("UnsignedCast widen: %v", err)
	}
	if wider.Bits[4] != Bit0 {
		t.Errorf("UnsignedCast(n+1) should append a 0 bit, got %v", wider.Bits)
	}

	// top bit 0 -> narrowing succeeds
	narrow := FromUint(0b0101, 4)
	if _, err := narrow.UnsignedCast(3); err != nil {
		t.Errorf("UnsignedCast(n-1) with zero top bit should succeed: %v", err)
	}
	// top bit 1 -> narrowing fails
	hi := FromUint(0b1101, 4)
	if _, err := hi.UnsignedCast(3); err == nil {
		t.Errorf("UnsignedCast(n-1) with set top bit should fail with CastLoss")
	}
}

func TestSignedCastPreservesSignBit(t *testing.T) {
	// -1 in 8 bits is all ones; resizing to 4 and back should be identity.
	v := FromInt(-1, 8)
	small, err := v.SignedCast(4)
	if err != nil {
		t.Fatalf("SignedCast narrow: %v", err)
	}
	back := small.Resize(8)
	for i, b := range back.Bits {
		if b != Bit1 {
			t.Fatalf("resize(8) of signed_cast(4) of -1 not all-ones at bit %d: %v", i, back.Bits)
		}
	}
}

func TestResizeIsInfallible(t *testing.T) {
	u := FromUint(0xF, 4)
	if got := u.Resize(8).Bits[7]; got != Bit0 {
		t.Errorf("Resize of Bits should zero-extend, got top bit %v", got)
	}
	s := FromInt(-1, 4)
	if got := s.Resize(8).Bits[7]; got != Bit1 {
		t.Errorf("Resize of Signed should sign-extend, got top bit %v", got)
	}
}

func TestArithmeticRequiresMatchingKinds(t *testing.T) {
	a := FromUint(1, 8)
	b := FromUint(1, 4)
	if _, err := a.Add(b); err == nil {
		t.Fatalf("expected TypeMismatch adding mismatched widths")
	}
}

func TestArithmeticAcrossSharedSignalColor(t *testing.T) {
	sigKind := MakeSignal(MakeBits(8), Red)
	a := TypedBits{Bits: FromUint(3, 8).Bits, Kind: sigKind}
	b := TypedBits{Bits: FromUint(4, 8).Bits, Kind: sigKind}
	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add on matching Signal kinds: %v", err)
	}
	if v, _ := sum.AsI64(); v != 7 {
		t.Errorf("3+4 (signaled) = %d, want 7", v)
	}
	if sum.Kind != sigKind {
		t.Errorf("sum should retain the Signal kind")
	}
}

func TestAddOneSignalOperand(t *testing.T) {
	// spec.md §8 scenario 5: a Signal<Bits(8),Red> + a plain constant.
	sigKind := MakeSignal(MakeBits(8), Red)
	a := TypedBits{Bits: FromUint(10, 8).Bits, Kind: sigKind}
	constVal := FromUint(5, 8)
	sum, err := a.Add(constVal)
	if err != nil {
		t.Fatalf("Add(signal, plain): %v", err)
	}
	if sum.Kind != sigKind {
		t.Errorf("result should carry the signal's clock, got %s", sum.Kind)
	}
	if v, _ := sum.AsI64(); v != 15 {
		t.Errorf("10+5 = %d, want 15", v)
	}
}

func TestCompareReturnsNotOkOnDontCare(t *testing.T) {
	a := DontCareFromKind(MakeBits(4))
	b := FromUint(0, 4)
	if _, ok := a.Compare(b); ok {
		t.Fatalf("Compare with X bits should report ok=false")
	}
}

func TestShiftOutOfRangeIsError(t *testing.T) {
	v := FromUint(1, 8)
	if _, err := v.Shl(9); err == nil {
		t.Fatalf("expected ShiftAmountOutOfRange")
	}
	if _, err := v.Shr(9); err == nil {
		t.Fatalf("expected ShiftAmountOutOfRange")
	}
}
