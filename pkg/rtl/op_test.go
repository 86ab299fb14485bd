package rtl_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/rhdl/rhdlcore/pkg/rtl"
	"github.com/rhdl/rhdlcore/pkg/symtab"
)

var objectCmpOpts = []cmp.Option{cmpopts.IgnoreUnexported(symtab.SymbolMap{})}

func buildAddObject(name string) *rtl.Object {
	obj := rtl.NewObject(symtab.FunctionId("fn-"+name), name)
	var r0, r1, r2 rtl.RegisterId = 0, 1, 2
	obj.RegisterKind[int(r0)] = rtl.RegisterKind{Width: 8}
	obj.RegisterKind[int(r1)] = rtl.RegisterKind{Width: 8}
	obj.RegisterKind[int(r2)] = rtl.RegisterKind{Width: 8}
	obj.Arguments = []*rtl.RegisterId{&r0, &r1}
	obj.Return = rtl.Reg(int(r2))
	obj.Ops = []rtl.LocatedOp{
		{Op: rtl.Op{Tag: rtl.OpBinary, Lhs: rtl.Reg(int(r2)), A: rtl.Reg(int(r0)), B: rtl.Reg(int(r1))}},
	}
	return obj
}

// TestObjectStructuralEquality exercises go-cmp over whole rtl.Object
// trees, the golden-comparison idiom named in DESIGN.md for this package:
// two independently-built RTL objects for the same function must report no
// diff, and a single mutated field must surface exactly that diff.
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
	b.Ops[0].Op.Tag = rtl.OpUnary

	if diff := cmp.Diff(a, b, objectCmpOpts...); diff == "" {
		t.Fatal("expected a diff once the op's Tag was mutated, got none")
	}
}
