package kind

import "testing"

func TestBitsWidth(t *testing.T) {
	tests := []struct {
		name string
		k    *Kind
		want int
	}{
		{"empty", Empty, 0},
		{"clock", Clock, 1},
		{"reset", Reset, 1},
		{"bits8", MakeBits(8), 8},
		{"signed16", MakeSigned(16), 16},
		{"array", MakeArray(MakeBits(8), 4), 32},
		{"tuple", MakeTuple([]*Kind{MakeBits(4), MakeBits(4)}), 8},
		{"empty tuple normalizes", MakeTuple(nil), 0},
		{"struct", MakeStruct("S", []Field{{"a", MakeBits(4)}, {"b", MakeBits(4)}}), 8},
		{"union", MakeUnion("U", []Field{{"a", MakeBits(4)}, {"b", MakeBits(8)}}), 8},
		{"signal", MakeSignal(MakeBits(8), Red), 8},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.k.Bits(); got != tc.want {
				t.Errorf("%s.Bits() = %d, want %d", tc.k, got, tc.want)
			}
		})
	}
}

func TestEmptyTupleNormalizesToEmpty(t *testing.T) {
	if MakeTuple(nil) != Empty {
		t.Fatalf("MakeTuple(nil) should be the interned Empty Kind")
	}
}

func TestInterningIsPointerEqual(t *testing.T) {
	a := MakeBits(8)
	b := MakeBits(8)
	if a != b {
		t.Fatalf("two MakeBits(8) calls produced distinct pointers")
	}
	arrA := MakeArray(MakeBits(4), 3)
	arrB := MakeArray(MakeBits(4), 3)
	if arrA != arrB {
		t.Fatalf("two structurally equal Array Kinds were not interned to the same pointer")
	}
}

func TestEnumBitsUsesDeclaredWidthAndMaxPayload(t *testing.T) {
	variants := []Variant{
		{Name: "A", Discriminant: 0, Payload: MakeBits(3)},
		{Name: "B", Discriminant: 1, Payload: MakeBits(5)},
	}
	e, err := MakeEnum("E", variants, DiscriminantLayout{Width: 1, Alignment: Msb, Type: Unsigned})
	if err != nil {
		t.Fatalf("MakeEnum: %v", err)
	}
	if got, want := e.Bits(), 1+5; got != want {
		t.Fatalf("enum bits = %d, want %d", got, want)
	}
}

func TestOptionResultCanonicalShape(t *testing.T) {
	opt, err := MakeEnum("Option::<b4>", []Variant{
		{Name: "None", Discriminant: 0, Payload: Empty},
		{Name: "Some", Discriminant: 1, Payload: MakeTuple([]*Kind{MakeBits(4)})},
	}, DiscriminantLayout{Width: 1, Alignment: Msb, Type: Unsigned})
	if err != nil {
		t.Fatalf("MakeEnum: %v", err)
	}
	if !opt.IsOption() {
		t.Fatalf("canonical Option shape not recognized")
	}
	if opt.IsResult() {
		t.Fatalf("Option shape misrecognized as Result")
	}

	res, err := MakeEnum("Result::<b3,b5>", []Variant{
		{Name: "Err", Discriminant: 0, Payload: MakeTuple([]*Kind{MakeBits(5)})},
		{Name: "Ok", Discriminant: 1, Payload: MakeTuple([]*Kind{MakeBits(3)})},
	}, DiscriminantLayout{Width: 1, Alignment: Msb, Type: Unsigned})
	if err != nil {
		t.Fatalf("MakeEnum: %v", err)
	}
	if !res.IsResult() {
		t.Fatalf("canonical Result shape not recognized")
	}

	notOpt, err := MakeEnum("Widget", []Variant{
		{Name: "None", Discriminant: 0, Payload: Empty},
		{Name: "Some", Discriminant: 1, Payload: MakeTuple([]*Kind{MakeBits(4)})},
	}, DiscriminantLayout{Width: 1, Alignment: Msb, Type: Unsigned})
	if err != nil {
		t.Fatalf("MakeEnum: %v", err)
	}
	if notOpt.IsOption() {
		t.Fatalf("non-Option:: prefixed enum should not be recognized as Option")
	}
}

// TestMakeEnumRejectsDuplicateAndOutOfRangeDiscriminants exercises
// MakeEnum's own enforcement of ValidateEnum's invariants: it must reject a
// malformed shape before interning it, not merely expose a checker callers
// may or may not invoke.
func TestMakeEnumRejectsDuplicateAndOutOfRangeDiscriminants(t *testing.T) {
	if _, err := MakeEnum("Dup", []Variant{
		{Name: "A", Discriminant: 0, Payload: Empty},
		{Name: "B", Discriminant: 0, Payload: Empty},
	}, DiscriminantLayout{Width: 1, Alignment: Msb, Type: Unsigned}); err == nil {
		t.Fatalf("expected duplicate discriminant error")
	}

	if _, err := MakeEnum("OOR", []Variant{
		{Name: "A", Discriminant: 0, Payload: Empty},
		{Name: "B", Discriminant: 4, Payload: Empty},
	}, DiscriminantLayout{Width: 1, Alignment: Msb, Type: Unsigned}); err == nil {
		t.Fatalf("expected discriminant-out-of-range error")
	}

	if _, err := MakeEnum("Single", []Variant{
		{Name: "Only", Discriminant: 0, Payload: Empty},
	}, DiscriminantLayout{Width: 0, Alignment: Msb, Type: Unsigned}); err != nil {
		t.Fatalf("single-variant zero-width discriminant should be legal: %v", err)
	}

	if _, err := MakeEnum("MultiZero", []Variant{
		{Name: "A", Discriminant: 0, Payload: Empty},
		{Name: "B", Discriminant: 1, Payload: Empty},
	}, DiscriminantLayout{Width: 0, Alignment: Msb, Type: Unsigned}); err == nil {
		t.Fatalf("expected zero-width-discriminant-multi-variant error")
	}
}

// TestValidateEnumDirectlyOnMalformedKind exercises ValidateEnum against a
// hand-built Kind bypassing MakeEnum, the way pkg/mirjson or pkg/rhifjson
// would need to if they ever constructed an Enum Kind without going through
// the constructor (they don't; this just keeps the checker itself, not
// just its caller, under direct test).
func TestValidateEnumDirectlyOnMalformedKind(t *testing.T) {
	malformed := &Kind{
		tag:      TagEnum,
		name:     "Bad",
		variants: []Variant{{Name: "A", Discriminant: 0, Payload: Empty}, {Name: "B", Discriminant: 0, Payload: Empty}},
		layout:   DiscriminantLayout{Width: 1, Alignment: Msb, Type: Unsigned},
	}
	if err := malformed.ValidateEnum(); err == nil {
		t.Fatalf("expected duplicate discriminant error")
	}
}

func TestGetFieldAndVariantLookups(t *testing.T) {
	s := MakeStruct("S", []Field{{"a", MakeBits(4)}, {"b", MakeBits(8)}})
	if k, err := s.GetFieldKind("b"); err != nil || k != MakeBits(8) {
		t.Fatalf("GetFieldKind(b) = %v, %v", k, err)
	}
	if _, err := s.GetFieldKind("z"); err == nil {
		t.Fatalf("expected NoFieldInStruct")
	}

	e, err := MakeEnum("E", []Variant{{Name: "A", Discriminant: 0, Payload: Empty}}, DiscriminantLayout{Width: 0, Alignment: Msb, Type: Unsigned})
	if err != nil {
		t.Fatalf("MakeEnum: %v", err)
	}
	if v, err := e.LookupVariant("A"); err != nil || v.Name != "A" {
		t.Fatalf("LookupVariant(A) = %v, %v", v, err)
	}
	if _, err := e.LookupVariant("B"); err == nil {
		t.Fatalf("expected NoVariantInEnum")
	}
	if v, err := e.LookupVariantByValue(0); err != nil || v.Name != "A" {
		t.Fatalf("LookupVariantByValue(0) = %v, %v", v, err)
	}
}

func TestClog2(t *testing.T) {
	tests := []struct {
		n    int64
		want int
	}{
		{0, 0}, {1, 0}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {32, 5}, {33, 6},
	}
	for _, tc := range tests {
		if got := Clog2(tc.n); got != tc.want {
			t.Errorf("Clog2(%d) = %d, want %d", tc.n, got, tc.want)
		}
	}
}
