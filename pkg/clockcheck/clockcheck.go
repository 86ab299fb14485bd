// Package clockcheck runs the clock-domain consistency pass over an
// already-typed RHIF Object: a second, independent unification kept apart
// from pkg/infer's data-shape inference so that a clock-domain bug never
// masquerades as (or hides behind) a bit-width bug, per spec.md §4.4.
package clockcheck

import (
	"github.com/rhdl/rhdlcore/pkg/diag"
	"github.com/rhdl/rhdlcore/pkg/kind"
	"github.com/rhdl/rhdlcore/pkg/rhif"
	"github.com/rhdl/rhdlcore/pkg/symtab"
)

// Check walks every op in obj and reports the first clock-domain violation,
// or nil if every signal-carrying operand pair agrees on color. Externals
// are checked recursively.
func Check(obj *rhif.Object) error {
	c := &checker{obj: obj}
	return c.run()
}

type checker struct{ obj *rhif.Object }

func (c *checker) run() error {
	for _, lop := range c.obj.Ops {
		if err := c.checkOp(lop); err != nil {
			return err
		}
	}
	for _, callee := range c.obj.Externals {
		if err := Check(callee); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) colorOf(s rhif.Slot) (kind.Color, bool) {
	k, ok := c.obj.KindOf(s)
	if !ok || !k.IsSignal() {
		return 0, false
	}
	return k.SignalColor(), true
}

// same reports a ClockError of the given kind when both a and b are
// Signal-kinded and disagree on color. Slots that aren't Signal-kinded
// carry no clock constraint and are silently ignored, matching RHIF's rule
// that only Signal-to-Signal interaction is clock-checked (a bare
// combinational value may combine with any clock domain).
func (c *checker) same(kindOf diag.ClockErrorKind, loc symtab.SourceLocation, pairs ...struct {
	name string
	slot rhif.Slot
}) error {
	var elems []diag.ClockElement
	seen := make(map[kind.Color]bool)
	for _, p := range pairs {
		col, ok := c.colorOf(p.slot)
		if !ok {
			continue
		}
		elems = append(elems, diag.ClockElement{Name: p.name, Color: col})
		seen[col] = true
	}
	if len(seen) > 1 {
		return &diag.ClockError{Kind: kindOf, Elements: elems, Loc: loc}
	}
	return nil
}

func pair(name string, s rhif.Slot) struct {
	name string
	slot rhif.Slot
} {
	return struct {
		name string
		slot rhif.Slot
	}{name, s}
}

func (c *checker) checkOp(lop rhif.LocatedOp) error {
	op := lop.Op
	loc := lop.Loc
	switch op.Tag {
	case rhif.OpAssign:
		return c.same(diag.AssignmentClockMismatch, loc, pair("lhs", op.Lhs), pair("src", op.Src))

	case rhif.OpBinary:
		return c.same(diag.BinaryOperationClockMismatch, loc, pair("a", op.A), pair("b", op.B), pair("lhs", op.Lhs))

	case rhif.OpUnary:
		return c.same(diag.BinaryOperationClockMismatch, loc, pair("x", op.X), pair("lhs", op.Lhs))

	case rhif.OpSelect:
		if err := c.same(diag.SelectClockMismatch, loc, pair("t", op.T), pair("f", op.F), pair("lhs", op.Lhs)); err != nil {
			return err
		}
		return nil

	case rhif.OpIndex:
		return c.same(diag.IndexClockMismatch, loc, pair("orig", op.Orig), pair("lhs", op.Lhs))

	case rhif.OpSplice:
		return c.same(diag.SpliceClockMismatch, loc, pair("orig", op.Orig), pair("subst", op.Subst), pair("lhs", op.Lhs))

	case rhif.OpAsBits, rhif.OpAsSigned, rhif.OpResize:
		return c.same(diag.CastClockMismatch, loc, pair("src", op.Src), pair("lhs", op.Lhs))

	case rhif.OpRetime:
		// Retime deliberately crosses domains: op.Color names the target,
		// not a constraint with op.Src, so no same() check here.
		return nil

	case rhif.OpArray:
		pairs := make([]struct {
			name string
			slot rhif.Slot
		}, 0, len(op.Elems)+1)
		for i, e := range op.Elems {
			pairs = append(pairs, pair(indexName(i), e))
		}
		pairs = append(pairs, pair("lhs", op.Lhs))
		return c.same(diag.ArrayClockMismatch, loc, pairs...)

	case rhif.OpTuple:
		pairs := make([]struct {
			name string
			slot rhif.Slot
		}, 0, len(op.Elems)+1)
		for i, e := range op.Elems {
			pairs = append(pairs, pair(indexName(i), e))
		}
		pairs = append(pairs, pair("lhs", op.Lhs))
		return c.same(diag.TupleClockMismatch, loc, pairs...)

	case rhif.OpStruct:
		pairs := make([]struct {
			name string
			slot rhif.Slot
		}, 0, len(op.Fields)+1)
		for _, f := range op.Fields {
			pairs = append(pairs, pair(f.Name, f.Slot))
		}
		pairs = append(pairs, pair("lhs", op.Lhs))
		return c.same(diag.StructClockMismatch, loc, pairs...)

	case rhif.OpEnum:
		pairs := make([]struct {
			name string
			slot rhif.Slot
		}, 0, len(op.Fields)+1)
		for _, f := range op.Fields {
			pairs = append(pairs, pair(f.Name, f.Slot))
		}
		pairs = append(pairs, pair("lhs", op.Lhs))
		return c.same(diag.EnumClockMismatch, loc, pairs...)

	case rhif.OpCase:
		pairs := make([]struct {
			name string
			slot rhif.Slot
		}, 0, 2*len(op.Arms)+1)
		for i, arm := range op.Arms {
			if !arm.Wild {
				pairs = append(pairs, pair("test"+indexName(i), arm.Test))
			}
			pairs = append(pairs, pair("body"+indexName(i), arm.Body))
		}
		pairs = append(pairs, pair("lhs", op.Lhs))
		return c.same(diag.CaseClockMismatch, loc, pairs...)

	case rhif.OpExec:
		callee, ok := c.obj.Externals[op.Callee]
		if !ok {
			return nil
		}
		pairs := make([]struct {
			name string
			slot rhif.Slot
		}, 0, len(op.Args)+1)
		for i, a := range op.Args {
			if i >= len(callee.Arguments) {
				break
			}
			pairs = append(pairs, pair(string(callee.Arguments[i]), a))
		}
		pairs = append(pairs, pair("lhs", op.Lhs))
		return c.same(diag.ExternalClockMismatch, loc, pairs...)

	case rhif.OpWrap:
		return c.same(diag.WrapClockMismatch, loc, pair("src", op.Src), pair("lhs", op.Lhs))

	case rhif.OpComment, rhif.OpNoop:
		return nil

	default:
		return nil
	}
}

func indexName(i int) string {
	const digits = "0123456789"
	if i < 10 {
		return string(digits[i])
	}
	out := make([]byte, 0, 4)
	for i > 0 {
		out = append([]byte{digits[i%10]}, out...)
		i /= 10
	}
	return string(out)
}
