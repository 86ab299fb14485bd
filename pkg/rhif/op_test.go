package rhif_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/rhdl/rhdlcore/pkg/kind"
	"github.com/rhdl/rhdlcore/pkg/path"
	"github.com/rhdl/rhdlcore/pkg/rhif"
	"github.com/rhdl/rhdlcore/pkg/symtab"
)

// kindComparer treats two *kind.Kind as equal iff they are the same
// interned pointer, matching pkg/kind's own equality contract; go-cmp would
// otherwise try (and fail, since Kind has unexported fields) to compare
// structurally.
var kindComparer = cmp.Comparer(func(a, b *kind.Kind) bool { return a == b })

// objectCmpOpts additionally ignores SymbolMap's unexported entries map,
// which these tests leave empty on both sides anyway.
var objectCmpOpts = []cmp.Option{kindComparer, cmpopts.IgnoreUnexported(symtab.SymbolMap{})}

func buildAddObject(name string) *rhif.Object {
	obj := rhif.NewObject(symtab.FunctionId("fn-"+name), name)
	obj.Kinds[0] = kind.MakeBits(8)
	obj.Kinds[1] = kind.MakeBits(8)
	obj.Kinds[2] = kind.MakeBits(8)
	obj.Arguments = []symtab.RegisterId{"r0", "r1"}
	obj.Return = path.Register(2)
	obj.Ops = []rhif.LocatedOp{
		{
			Op:  rhif.Op{Tag: rhif.OpBinary, Lhs: path.Register(2), BinOp: rhif.Add, A: path.Register(0), B: path.Register(1)},
			Loc: symtab.SourceLocation{FuncId: obj.FnId, NodeId: 1},
		},
	}
	return obj
}

// TestObjectStructuralEquality exercises go-cmp over a whole rhif.Object
// tree: two independently-built objects describing the same add8 function
// must compare equal field-by-field once Kind pointers are compared by
// identity rather than by go-cmp's default unexported-field panic.
func TestObjectStructuralEquality(t *testing.T) {
	a := buildAddObject("add8")
	b := buildAddObject("add8")

	if diff := cmp.Diff(a, b, objectCmpOpts...); diff != "" {
		t.Fatalf("objects describing the same function differ (-a +b):\n%s", diff)
	}
}

func TestObjectStructuralInequality(t *testing.T) {
	a := buildAddObject("add8")
	b := buildAddObject("add8")
	b.Ops[0].Op.BinOp = rhif.Sub

	if diff := cmp.Diff(a, b, objectCmpOpts...); diff == "" {
		t.Fatal("expected a diff once the op's BinOp was mutated, got none")
	}
}
