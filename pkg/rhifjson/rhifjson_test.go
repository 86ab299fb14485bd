package rhifjson_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/rhdl/rhdlcore/pkg/kind"
	"github.com/rhdl/rhdlcore/pkg/path"
	"github.com/rhdl/rhdlcore/pkg/rhif"
	"github.com/rhdl/rhdlcore/pkg/rhifjson"
	"github.com/rhdl/rhdlcore/pkg/symtab"
)

// kindComparer treats two *kind.Kind as equal iff they are the same
// pointer: a round trip through JSON rebuilds Kinds via kind.DecodeJSON,
// which returns the canonical interned pointer for that shape, so pointer
// identity with the original in-process Kind holds as long as both came
// from the same intern pool — which they do here, since MakeBits(8) and
// the decoded b8 both resolve to it.
var kindComparer = cmp.Comparer(func(a, b *kind.Kind) bool { return a == b })
var objectCmpOpts = []cmp.Option{kindComparer, cmpopts.IgnoreUnexported(symtab.SymbolMap{})}

func buildAdd8() *rhif.Object {
	obj := rhif.NewObject(symtab.FunctionId("fn-add8"), "add8")
	obj.Kinds[0] = kind.MakeBits(8)
	obj.Kinds[1] = kind.MakeBits(8)
	obj.Kinds[2] = kind.MakeBits(8)
	obj.Arguments = []symtab.RegisterId{"r0", "r1"}
	obj.Return = path.Register(2)
	obj.Ops = []rhif.LocatedOp{
		{Op: rhif.Op{Tag: rhif.OpBinary, Lhs: path.Register(2), BinOp: rhif.Add, A: path.Register(0), B: path.Register(1)},
			Loc: symtab.SourceLocation{FuncId: obj.FnId}},
	}
	return obj
}

// TestEncodeDecodeRoundTrip exercises the exact path cmd/rhdlc's infer
// subcommand produces and check-clocks/lower subsequently consume: encoding
// an Object and decoding the result must reproduce the same tree, with
// every *kind.Kind resolving back to its canonical interned pointer rather
// than a structurally-equal-but-distinct decode.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	want := buildAdd8()

	data, err := rhifjson.Encode(want)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := rhifjson.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if diff := cmp.Diff(want, got, objectCmpOpts...); diff != "" {
		t.Fatalf("round trip changed the object (-want +got):\n%s", diff)
	}
}

func TestDecodeRejectsUnknownOpTag(t *testing.T) {
	_, err := rhifjson.Decode([]byte(`{"fn_id":"f","name":"f","return":{"kind":"empty"},"ops":[{"tag":"frobnicate"}]}`))
	if err == nil {
		t.Fatal("expected an error for an unrecognized op tag, got nil")
	}
}

func TestDecodeRejectsUnknownColor(t *testing.T) {
	_, err := rhifjson.Decode([]byte(`{"fn_id":"f","name":"f","return":{"kind":"empty"},"ops":[{"tag":"retime","lhs":{"kind":"register","id":0},"src":{"kind":"register","id":0},"color":"mauve"}]}`))
	if err == nil {
		t.Fatal("expected an error for an unrecognized clock color, got nil")
	}
}
