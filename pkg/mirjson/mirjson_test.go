package mirjson_test

import (
	"testing"

	"github.com/rhdl/rhdlcore/pkg/infer"
	"github.com/rhdl/rhdlcore/pkg/mirjson"
)

const add8JSON = `{
  "fn_id": "fn-add8",
  "name": "add8",
  "arguments": [{"kind": "register", "id": 0}, {"kind": "register", "id": 1}],
  "return": {"kind": "register", "id": 2},
  "kinds": {
    "0": {"tag": "bits", "width": 8},
    "1": {"tag": "bits", "width": 8}
  },
  "ops": [
    {"tag": "binary", "lhs": {"kind": "register", "id": 2}, "bin_op": "add",
     "a": {"kind": "register", "id": 0}, "b": {"kind": "register", "id": 1}}
  ]
}`

// TestDecodeThenInferWithContext exercises the exact path cmd/rhdlc's infer
// subcommand takes: a JSON MIR object with pre-declared argument kinds must
// be inferred against the same UnifyContext mirjson.Decode built those
// TypeIds from, not a fresh one.
func TestDecodeThenInferWithContext(t *testing.T) {
	obj, ctx, err := mirjson.Decode([]byte(add8JSON))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if obj.Name != "add8" {
		t.Fatalf("expected name add8, got %q", obj.Name)
	}

	rhifObj, err := infer.InferWithContext(ctx, obj)
	if err != nil {
		t.Fatalf("InferWithContext: %v", err)
	}
	k, ok := rhifObj.Kinds[2]
	if !ok {
		t.Fatal("result register has no inferred kind")
	}
	if !k.IsUnsigned() || k.Width() != 8 {
		t.Fatalf("expected b8, got %s", k)
	}
}
