package mir

import (
	"testing"

	"github.com/rhdl/rhdlcore/pkg/kind"
	"github.com/rhdl/rhdlcore/pkg/symtab"
)

func TestKindRoundTripThroughTypeId(t *testing.T) {
	kinds := []*kind.Kind{
		kind.MakeBits(8),
		kind.MakeSigned(16),
		kind.Empty,
		kind.MakeArray(kind.MakeBits(4), 3),
		kind.MakeTuple([]*kind.Kind{kind.MakeBits(2), kind.MakeSigned(6)}),
		kind.MakeStruct("S", []kind.Field{{Name: "a", Kind: kind.MakeBits(4)}}),
		kind.MakeSignal(kind.MakeBits(8), kind.Red),
	}
	for _, k := range kinds {
		c := NewUnifyContext()
		ty := c.FromKind(symtab.NodeId(0), k)
		got, err := c.IntoKind(ty)
		if err != nil {
			t.Fatalf("IntoKind(FromKind(%s)): %v", k, err)
		}
		if got != k {
			t.Errorf("round trip mismatch: got %s, want %s", got, k)
		}
	}
}

func TestUnifyVariableWithConstant(t *testing.T) {
	c := NewUnifyContext()
	v := c.TyVar(0)
	eight := c.TyConstLen(0, 8)
	if err := c.Unify(v, eight); err != nil {
		t.Fatalf("Unify(var, const): %v", err)
	}
	if !c.Equal(v, eight) {
		t.Fatalf("variable did not resolve to its unified constant")
	}
}

func TestUnifyBitsPropagatesLength(t *testing.T) {
	c := NewUnifyContext()
	lenVar := c.TyVar(0)
	a := c.TyBits(0, lenVar)
	b := c.TyBits(0, c.TyConstLen(0, 12))
	if err := c.Unify(a, b); err != nil {
		t.Fatalf("Unify(Bits(var), Bits(12)): %v", err)
	}
	resolved := c.Apply(lenVar)
	if !c.Equal(resolved, c.TyConstLen(0, 12)) {
		t.Fatalf("length variable should resolve to 12")
	}
}

func TestUnifyMismatchedConstantsFails(t *testing.T) {
	c := NewUnifyContext()
	a := c.TyConstLen(0, 8)
	b := c.TyConstLen(0, 9)
	if err := c.Unify(a, b); err == nil {
		t.Fatalf("expected UnificationError for mismatched lengths")
	}
}

func TestUnifyOccursCheck(t *testing.T) {
	c := NewUnifyContext()
	v := c.TyVar(0)
	arr := c.TyArray(0, v, c.TyConstLen(0, 4))
	if err := c.Unify(v, arr); err == nil {
		t.Fatalf("expected an occurs-check failure unifying a variable with a structure containing it")
	}
}

func TestUnifyClockConstants(t *testing.T) {
	c := NewUnifyContext()
	red := c.TyClock(0, kind.Red)
	green := c.TyClock(0, kind.Green)
	if err := c.Unify(red, green); err == nil {
		t.Fatalf("expected mismatch unifying distinct concrete colors")
	}
	if err := c.Unify(red, c.TyClock(0, kind.Red)); err != nil {
		t.Fatalf("same color should unify: %v", err)
	}
}
