package path

import (
	"testing"

	"github.com/rhdl/rhdlcore/pkg/kind"
)

func TestBitRangeStructFieldSplice(t *testing.T) {
	// spec.md §8 scenario 3: struct S{a: Bits(4), b: Bits(4)}, splice .a.
	s := kind.MakeStruct("S", []kind.Field{
		{Name: "a", Kind: kind.MakeBits(4)},
		{Name: "b", Kind: kind.MakeBits(4)},
	})
	zero := kind.TypedBits{Bits: make([]kind.BitX, 8), Kind: s}
	for i := range zero.Bits {
		zero.Bits[i] = kind.Bit0
	}

	pA := Path{}.FieldBy("a")
	spliced, err := Splice(zero, pA, kind.FromUint(0xA, 4))
	if err != nil {
		t.Fatalf("Splice: %v", err)
	}
	lo, _ := spliced.AsUint128()
	if lo != 0x0A {
		t.Errorf("splice .a = 0x%X, want 0x0A", lo)
	}
}

func TestBitRangeCoversKindExactly(t *testing.T) {
	enumKind, err := kind.MakeEnum("E", []kind.Variant{
		{Name: "A", Discriminant: 0, Payload: kind.MakeBits(2)},
		{Name: "B", Discriminant: 1, Payload: kind.MakeBits(5)},
	}, kind.DiscriminantLayout{Width: 1, Alignment: kind.Msb, Type: kind.Unsigned})
	if err != nil {
		t.Fatalf("MakeEnum: %v", err)
	}

	// Universal invariant 2: leaf paths partition [0, k.Bits()) exactly.
	kinds := []*kind.Kind{
		kind.MakeBits(8),
		kind.MakeArray(kind.MakeBits(4), 3),
		kind.MakeTuple([]*kind.Kind{kind.MakeBits(2), kind.MakeBits(6)}),
		kind.MakeStruct("S", []kind.Field{{Name: "a", Kind: kind.MakeBits(3)}, {Name: "b", Kind: kind.MakeBits(5)}}),
		enumKind,
	}
	for _, k := range kinds {
		leaves := LeafPaths(k, Path{})
		covered := make([]bool, k.Bits())
		for _, p := range leaves {
			rng, _, err := BitRange(k, p)
			if err != nil {
				t.Fatalf("BitRange(%s, %v): %v", k, p, err)
			}
			for i := rng.Start; i < rng.End; i++ {
				if covered[i] {
					t.Fatalf("%s: bit %d covered by more than one leaf path", k, i)
				}
				covered[i] = true
			}
		}
		for i, c := range covered {
			if !c {
				t.Fatalf("%s: bit %d not covered by any leaf path", k, i)
			}
		}
	}
}

func TestDynamicIndexNotResolvable(t *testing.T) {
	arr := kind.MakeArray(kind.MakeBits(8), 4)
	p := Path{}.Dynamic(Register(0))
	if _, _, err := BitRange(arr, p); err == nil {
		t.Fatalf("expected DynamicIndicesNotResolved for a dynamic path element")
	}
}

func TestZeroOutAndStridePath(t *testing.T) {
	slot := Register(0)
	p := Path{}.Dynamic(slot)
	base := p.ZeroOutDynamicIndices()
	if base.Elements[0].Tag != Index || base.Elements[0].Int != 0 {
		t.Fatalf("ZeroOutDynamicIndices should replace with Index(0), got %v", base.Elements[0])
	}
	stride := p.StridePath(slot)
	if stride.Elements[0].Tag != Index || stride.Elements[0].Int != 1 {
		t.Fatalf("StridePath(matching slot) should yield Index(1), got %v", stride.Elements[0])
	}
}

func TestStarEnumeratesDynamicIndexSubstitutions(t *testing.T) {
	arr := kind.MakeArray(kind.MakeBits(8), 3)
	p := Path{}.Dynamic(Register(0))
	all, err := Star(arr, p)
	if err != nil {
		t.Fatalf("Star: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Star over a 3-element array should yield 3 paths, got %d", len(all))
	}
	for i, got := range all {
		want := Path{}.IndexBy(i)
		if got.String() != want.String() {
			t.Errorf("Star()[%d] = %v, want %v", i, got, want)
		}
	}
}
