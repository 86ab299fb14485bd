package kind

import (
	"reflect"
	"testing"
)

func optionOf(inner *Kind) *Kind {
	k, err := MakeEnum("Option::<b4>", []Variant{
		{Name: "None", Discriminant: 0, Payload: Empty},
		{Name: "Some", Discriminant: 1, Payload: MakeTuple([]*Kind{inner})},
	}, DiscriminantLayout{Width: 1, Alignment: Msb, Type: Unsigned})
	if err != nil {
		panic(err)
	}
	return k
}

func resultOf(ok, errKind *Kind) *Kind {
	k, err := MakeEnum("Result::<b3,b5>", []Variant{
		{Name: "Err", Discriminant: 0, Payload: MakeTuple([]*Kind{errKind})},
		{Name: "Ok", Discriminant: 1, Payload: MakeTuple([]*Kind{ok})},
	}, DiscriminantLayout{Width: 1, Alignment: Msb, Type: Unsigned})
	if err != nil {
		panic(err)
	}
	return k
}

// TestOptionEncodingMsb matches spec.md §8 scenario 1 exactly.
func TestOptionEncodingMsb(t *testing.T) {
	opt := optionOf(MakeBits(4))

	some, err := FromUint(0b1010, 4).WrapSomeValue(opt)
	if err != nil {
		t.Fatalf("WrapSomeValue: %v", err)
	}
	want := []BitX{Bit0, Bit1, Bit0, Bit1, Bit1}
	if !reflect.DeepEqual(some.Bits, want) {
		t.Errorf("Some(0b1010).encode() = %v, want %v", some.Bits, want)
	}
	disc, err := some.Discriminant()
	if err != nil {
		t.Fatalf("Discriminant: %v", err)
	}
	if v, _ := disc.AsI64(); v != 1 {
		t.Errorf("Some discriminant = %d, want 1", v)
	}

	none, err := DontCareFromKind(Empty).WrapNoneValue(opt)
	if err != nil {
		t.Fatalf("WrapNoneValue: %v", err)
	}
	wantNone := []BitX{Bit0, Bit0, Bit0, Bit0, Bit0}
	if !reflect.DeepEqual(none.Bits, wantNone) {
		t.Errorf("None.encode() = %v, want %v", none.Bits, wantNone)
	}
	discNone, _ := none.Discriminant()
	if v, _ := discNone.AsI64(); v != 0 {
		t.Errorf("None discriminant = %d, want 0", v)
	}
}

// TestResultOfNonUniformPayloads matches spec.md §8 scenario 2 exactly.
func TestResultOfNonUniformPayloads(t *testing.T) {
	res := resultOf(MakeBits(3), MakeBits(5))
	if got, want := res.Bits(), 6; got != want {
		t.Fatalf("Result<b3,b5>.Bits() = %d, want %d", got, want)
	}

	ok, err := FromUint(0b101, 3).WrapOkValue(res)
	if err != nil {
		t.Fatalf("WrapOkValue: %v", err)
	}
	wantOk := []BitX{Bit1, Bit0, Bit1, Bit0, Bit0, Bit1}
	if !reflect.DeepEqual(ok.Bits, wantOk) {
		t.Errorf("Ok(0b101).encode() = %v, want %v", ok.Bits, wantOk)
	}

	errVal, err := FromUint(0b11111, 5).WrapErrValue(res)
	if err != nil {
		t.Fatalf("WrapErrValue: %v", err)
	}
	wantErr := []BitX{Bit1, Bit1, Bit1, Bit1, Bit1, Bit0}
	if !reflect.DeepEqual(errVal.Bits, wantErr) {
		t.Errorf("Err(0b11111).encode() = %v, want %v", errVal.Bits, wantErr)
	}
}

// TestWrapPayloadKindMismatchIsError checks that wrapping an 8-bit value
// into Option<b4> is rejected with an error.
func TestWrapPayloadKindMismatchIsError(t *testing.T) {
	opt := optionOf(MakeBits(4))
	_, err := FromUint(1, 8).WrapSomeValue(opt)
	if err == nil {
		t.Fatalf("expected WrapKindMismatch wrapping an 8-bit value into Option<b4>")
	}
}
