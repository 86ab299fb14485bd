package lower

import (
	"testing"

	"github.com/rhdl/rhdlcore/pkg/kind"
	"github.com/rhdl/rhdlcore/pkg/path"
	"github.com/rhdl/rhdlcore/pkg/rhif"
	"github.com/rhdl/rhdlcore/pkg/rtl"
	"github.com/rhdl/rhdlcore/pkg/symtab"
)

func newObj() *rhif.Object { return rhif.NewObject("fn", "f") }

// TestDynamicIndexOffsetSynthesis matches spec.md §8 scenario 4: an
// array [Bits(8); 4] indexed by Index([i]) where i: Bits(2) produces
// L = ceil_log2(32) = 5, stride = 8, and emits DynamicIndex{ offset, len=8 }.
func TestDynamicIndexOffsetSynthesis(t *testing.T) {
	arr := kind.MakeArray(kind.MakeBits(8), 4)

	obj := newObj()
	obj.Kinds[0] = arr              // the array register
	obj.Kinds[1] = kind.MakeBits(2) // the dynamic index register
	obj.Kinds[2] = kind.MakeBits(8) // lhs

	p := path.Path{}.Dynamic(path.Register(1))
	obj.Ops = append(obj.Ops, rhif.LocatedOp{Op: rhif.Op{
		Tag:  rhif.OpIndex,
		Lhs:  path.Register(2),
		Orig: path.Register(0),
		Path: p,
	}})
	obj.Return = path.Register(2)
	obj.Arguments = []symtab.RegisterId{"r0", "r1"}

	out, err := Compile(obj)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	found := false
	for _, lop := range out.Ops {
		if lop.Op.Tag == rtl.OpDynamicIndex {
			found = true
			if lop.Op.Len != 8 {
				t.Errorf("DynamicIndex.Len = %d, want 8", lop.Op.Len)
			}
		}
	}
	if !found {
		t.Fatalf("expected a DynamicIndex op in lowered output, got %d ops", len(out.Ops))
	}

	// L = ceil_log2(32) = 5: the offset and every intermediate register
	// involved in stride arithmetic must be 5 bits wide (2L=10 for the
	// widened multiply).
	widths := map[int]bool{}
	for _, rk := range out.RegisterKind {
		widths[rk.Width] = true
	}
	if !widths[5] {
		t.Errorf("expected a 5-bit (L=ceil_log2(32)) register in lowered output, widths seen: %v", widths)
	}
	if !widths[10] {
		t.Errorf("expected a 10-bit (2L) widened multiply register, widths seen: %v", widths)
	}
}

func TestStaticIndex(t *testing.T) {
	s := kind.MakeStruct("S", []kind.Field{
		{Name: "a", Kind: kind.MakeBits(4)},
		{Name: "b", Kind: kind.MakeBits(4)},
	})

	obj := newObj()
	obj.Kinds[0] = s
	obj.Kinds[1] = kind.MakeBits(4)
	obj.Ops = append(obj.Ops, rhif.LocatedOp{Op: rhif.Op{
		Tag:  rhif.OpIndex,
		Lhs:  path.Register(1),
		Orig: path.Register(0),
		Path: path.Path{}.FieldBy("b"),
	}})
	obj.Return = path.Register(1)
	obj.Arguments = []symtab.RegisterId{"r0"}

	out, err := Compile(obj)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(out.Ops) != 1 || out.Ops[0].Op.Tag != rtl.OpIndex {
		t.Fatalf("expected a single static Index op, got %#v", out.Ops)
	}
	rng := out.Ops[0].Op.Range
	if rng.Start != 4 || rng.End != 8 {
		t.Errorf("field b range = [%d,%d), want [4,8)", rng.Start, rng.End)
	}
}

func TestWrapLoweringConcatenatesDiscriminant(t *testing.T) {
	opt, err := kind.MakeEnum("Option::<b4>", []kind.Variant{
		{Name: "None", Discriminant: 0, Payload: kind.Empty},
		{Name: "Some", Discriminant: 1, Payload: kind.MakeTuple([]*kind.Kind{kind.MakeBits(4)})},
	}, kind.DiscriminantLayout{Width: 1, Alignment: kind.Msb, Type: kind.Unsigned})
	if err != nil {
		t.Fatalf("MakeEnum: %v", err)
	}

	obj := newObj()
	obj.Literals[0] = kind.FromUint(0xA, 4)
	obj.Kinds[1] = opt
	obj.Ops = append(obj.Ops, rhif.LocatedOp{Op: rhif.Op{
		Tag:     rhif.OpWrap,
		Lhs:     path.Register(1),
		Src:     path.Literal(0),
		ArgKind: opt,
		WrapOp:  rhif.WrapSome,
	}})
	obj.Return = path.Register(1)

	out, err := Compile(obj)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	var sawConcat, sawCast bool
	for _, lop := range out.Ops {
		switch lop.Op.Tag {
		case rtl.OpConcat:
			sawConcat = true
			if len(lop.Op.Elems) != 2 {
				t.Errorf("wrap concat should have 2 elements (payload, discriminant), got %d", len(lop.Op.Elems))
			}
		case rtl.OpCast:
			sawCast = true
		}
	}
	if !sawConcat || !sawCast {
		t.Fatalf("expected a resize cast followed by a 2-element concat, ops: %#v", out.Ops)
	}
}

// TestZeroWidthPayloadWrapSkipsConcat covers spec.md §4.6's "a zero-width
// payload assigns the discriminant directly" rule.
func TestZeroWidthPayloadWrapSkipsConcat(t *testing.T) {
	opt, err := kind.MakeEnum("Option::<()>", []kind.Variant{
		{Name: "None", Discriminant: 0, Payload: kind.Empty},
		{Name: "Some", Discriminant: 1, Payload: kind.MakeTuple([]*kind.Kind{kind.Empty})},
	}, kind.DiscriminantLayout{Width: 1, Alignment: kind.Msb, Type: kind.Unsigned})
	if err != nil {
		t.Fatalf("MakeEnum: %v", err)
	}

	obj := newObj()
	obj.Kinds[0] = opt
	obj.Ops = append(obj.Ops, rhif.LocatedOp{Op: rhif.Op{
		Tag:     rhif.OpWrap,
		Lhs:     path.Register(0),
		Src:     path.EmptySlot(),
		ArgKind: opt,
		WrapOp:  rhif.WrapNone,
	}})
	obj.Return = path.Register(0)

	out, err := Compile(obj)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for _, lop := range out.Ops {
		if lop.Op.Tag == rtl.OpConcat {
			t.Fatalf("zero-width payload wrap should not emit a Concat, got %#v", out.Ops)
		}
	}
}

func TestLiteralLhsOpIsNoop(t *testing.T) {
	obj := newObj()
	obj.Literals[0] = kind.FromUint(1, 1)
	obj.Ops = append(obj.Ops, rhif.LocatedOp{Op: rhif.Op{
		Tag: rhif.OpAssign,
		Lhs: path.EmptySlot(),
		Src: path.Literal(0),
	}})
	obj.Return = path.Literal(0)

	out, err := Compile(obj)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(out.Ops) != 0 {
		t.Fatalf("an op targeting the Empty slot must lower to a no-op, got %d ops", len(out.Ops))
	}
}

// TestCaseLoweringEmitsLiteralAndWildArms lowers a 3-way match (two
// literal arms and a default) and checks every rtl.CaseArm comes out with
// the right CaseTestTag, matching spec.md's RTL grammar
// Case(disc,[(Lit|Wild)->Operand]).
func TestCaseLoweringEmitsLiteralAndWildArms(t *testing.T) {
	obj := newObj()
	obj.Kinds[0] = kind.MakeBits(2) // discriminant register
	obj.Kinds[1] = kind.MakeBits(4) // result register
	obj.Literals[0] = kind.FromUint(0, 2)
	obj.Literals[1] = kind.FromUint(1, 2)
	obj.Literals[2] = kind.FromUint(0xA, 4) // arm 0 body
	obj.Literals[3] = kind.FromUint(0xB, 4) // arm 1 body
	obj.Literals[4] = kind.FromUint(0xF, 4) // wild arm body

	obj.Ops = append(obj.Ops, rhif.LocatedOp{Op: rhif.Op{
		Tag:  rhif.OpCase,
		Lhs:  path.Register(1),
		Disc: path.Register(0),
		Arms: []rhif.CaseArm{
			{Test: path.Literal(0), Body: path.Literal(2)},
			{Test: path.Literal(1), Body: path.Literal(3)},
			{Wild: true, Body: path.Literal(4)},
		},
	}})
	obj.Return = path.Register(1)
	obj.Arguments = []symtab.RegisterId{"r0"}

	out, err := Compile(obj)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	var caseOp *rtl.Op
	for i := range out.Ops {
		if out.Ops[i].Op.Tag == rtl.OpCase {
			caseOp = &out.Ops[i].Op
		}
	}
	if caseOp == nil {
		t.Fatalf("expected an OpCase in lowered output, got %#v", out.Ops)
	}
	if len(caseOp.Arms) != 3 {
		t.Fatalf("expected 3 lowered arms, got %d", len(caseOp.Arms))
	}
	for i, want := range []rtl.CaseTestTag{rtl.CaseLiteral, rtl.CaseLiteral, rtl.CaseWild} {
		if caseOp.Arms[i].Test != want {
			t.Errorf("arm %d: Test = %v, want %v", i, caseOp.Arms[i].Test, want)
		}
	}
}
