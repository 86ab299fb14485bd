package infer_test

import (
	"errors"
	"testing"

	"github.com/rhdl/rhdlcore/pkg/diag"
	"github.com/rhdl/rhdlcore/pkg/infer"
	"github.com/rhdl/rhdlcore/pkg/kind"
	"github.com/rhdl/rhdlcore/pkg/mir"
	"github.com/rhdl/rhdlcore/pkg/path"
	"github.com/rhdl/rhdlcore/pkg/symtab"
)

// buildAdd8 returns a MIR object for fn add8(a: b8, b: b8) -> b8 { a + b }
// with both arguments left as fresh type variables, matching the style
// pkg/rhdlcore.WorkerPool callers use when Kind/Literals are not
// pre-populated by an external elaborator.
func buildAdd8() *mir.Object {
	obj := mir.NewObject(symtab.FunctionId("fn-add8"), "add8")
	obj.Arguments = []path.Slot{path.Register(0), path.Register(1)}
	obj.Return = path.Register(2)
	obj.Ops = []mir.LocatedOp{
		{Op: mir.Op{Tag: mir.OpAsBits, Lhs: path.Register(0), Len: 8}},
		{Op: mir.Op{Tag: mir.OpAsBits, Lhs: path.Register(1), Len: 8}},
		{Op: mir.Op{Tag: mir.OpBinary, Lhs: path.Register(2), BinOp: mir.Add, A: path.Register(0), B: path.Register(1)}},
	}
	return obj
}

func TestInferBinaryAddResolvesOperandWidth(t *testing.T) {
	rhifObj, err := infer.Infer(buildAdd8())
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	k, ok := rhifObj.Kinds[2]
	if !ok {
		t.Fatal("result register has no inferred kind")
	}
	if !k.IsUnsigned() || k.Width() != 8 {
		t.Fatalf("expected b8, got %s", k)
	}
}

func TestInferBinaryAddUnifiesOperandShapes(t *testing.T) {
	obj := mir.NewObject(symtab.FunctionId("fn-mismatch"), "mismatch")
	obj.Return = path.Register(2)
	obj.Ops = []mir.LocatedOp{
		{Op: mir.Op{Tag: mir.OpAsBits, Lhs: path.Register(0), Len: 8}},
		{Op: mir.Op{Tag: mir.OpAsSigned, Lhs: path.Register(1), Len: 8}},
		{Op: mir.Op{Tag: mir.OpBinary, Lhs: path.Register(2), BinOp: mir.Add, A: path.Register(0), B: path.Register(1)}},
	}

	_, err := infer.Infer(obj)
	if err == nil {
		t.Fatal("expected unification failure mixing signed and unsigned operands, got nil")
	}
	var uf *diag.UnificationFailure
	if !errors.As(err, &uf) {
		t.Fatalf("expected *diag.UnificationFailure, got %T: %v", err, err)
	}
}

// TestInferWithContextSharesCallerArena exercises the path pkg/mirjson
// relies on: an object whose argument Kind is pre-declared via a
// caller-owned UnifyContext must be inferred with InferWithContext against
// that same context, or the TypeId handles address the wrong arena.
func TestInferWithContextSharesCallerArena(t *testing.T) {
	ctx := mir.NewUnifyContext()
	obj := mir.NewObject(symtab.FunctionId("fn-ident8"), "ident8")
	obj.Arguments = []path.Slot{path.Register(0)}
	obj.Return = path.Register(1)
	obj.Kind[0] = ctx.FromKind(0, kind.MakeBits(8))
	obj.Ops = []mir.LocatedOp{
		{Op: mir.Op{Tag: mir.OpAssign, Lhs: path.Register(1), Src: path.Register(0)}},
	}

	rhifObj, err := infer.InferWithContext(ctx, obj)
	if err != nil {
		t.Fatalf("InferWithContext: %v", err)
	}
	k, ok := rhifObj.Kinds[1]
	if !ok {
		t.Fatal("result register has no inferred kind")
	}
	if !k.IsUnsigned() || k.Width() != 8 {
		t.Fatalf("expected b8 propagated from the pre-declared argument, got %s", k)
	}
}
