package lower

import (
	"fmt"

	"github.com/rhdl/rhdlcore/pkg/rhif"
	"github.com/rhdl/rhdlcore/pkg/rtl"
)

// lowerExec inlines a callee: compile it standalone (its own fresh register
// and literal numbering), then copy it into the caller's scope. Every
// operand in the callee's body is remapped through an allocation-memoizing
// function so a given callee register or literal is assigned exactly one
// fresh id in the caller, no matter how many times it is referenced.
// Argument values are copied in with plain Assigns before the inlined body,
// and the callee's return register is assigned to the op's lhs afterward.
func (l *lowerer) lowerExec(lop rhif.LocatedOp) error {
	op := lop.Op
	loc := lop.Loc

	callee, ok := l.src.Externals[op.Callee]
	if !ok {
		return fmt.Errorf("lower: unknown external %q", op.Callee)
	}
	calleeRTL, err := Compile(callee)
	if err != nil {
		return fmt.Errorf("lower: compiling external %q: %w", op.Callee, err)
	}

	remapReg := make(map[int]rtl.Operand)
	remapLit := make(map[int]rtl.Operand)
	remap := func(o rtl.Operand) rtl.Operand {
		switch o.Tag {
		case rtl.OperandRegister:
			if mapped, ok := remapReg[o.ID]; ok {
				return mapped
			}
			fresh := l.freshReg(calleeRTL.RegisterKind[o.ID])
			remapReg[o.ID] = fresh
			return fresh
		default:
			if mapped, ok := remapLit[o.ID]; ok {
				return mapped
			}
			fresh := l.newLiteral(calleeRTL.Literals[o.ID])
			remapLit[o.ID] = fresh
			return fresh
		}
	}

	for i, argSlot := range op.Args {
		if i >= len(calleeRTL.Arguments) || calleeRTL.Arguments[i] == nil {
			continue
		}
		calleeArgReg := remap(rtl.Reg(int(*calleeRTL.Arguments[i])))
		callerArg, err := l.operand(argSlot)
		if err != nil {
			return err
		}
		l.emit(rtl.Op{Tag: rtl.OpAssign, Lhs: calleeArgReg, Src: callerArg}, loc)
	}

	for _, clop := range calleeRTL.Ops {
		l.out.Ops = append(l.out.Ops, rtl.LocatedOp{Op: remapOperandsInOp(clop.Op, remap), Loc: clop.Loc})
	}

	retOperand := remap(calleeRTL.Return)
	if err := l.assign(op.Lhs, retOperand, loc); err != nil {
		return err
	}

	l.out.Symbols.Merge(string(op.Callee)+".", calleeRTL.Symbols)
	return nil
}

// remapOperandsInOp rewrites every Operand field of op (including Lhs)
// through f, dispatching on Tag so each opcode's specific operand fields
// are visited.
func remapOperandsInOp(op rtl.Op, f func(rtl.Operand) rtl.Operand) rtl.Op {
	out := op
	out.Lhs = f(op.Lhs)
	switch op.Tag {
	case rtl.OpAssign:
		out.Src = f(op.Src)
	case rtl.OpBinary:
		out.A = f(op.A)
		out.B = f(op.B)
	case rtl.OpUnary:
		out.X = f(op.X)
	case rtl.OpSelect:
		out.Cond = f(op.Cond)
		out.T = f(op.T)
		out.F = f(op.F)
	case rtl.OpCase:
		out.Disc = f(op.Disc)
		arms := make([]rtl.CaseArm, len(op.Arms))
		for i, a := range op.Arms {
			arms[i] = a
			arms[i].Value = f(a.Value)
			if a.Test == rtl.CaseLiteral {
				arms[i].Literal = f(rtl.Lit(a.Literal)).ID
			}
		}
		out.Arms = arms
	case rtl.OpCast:
		out.CastArg = f(op.CastArg)
	case rtl.OpConcat:
		elems := make([]rtl.Operand, len(op.Elems))
		for i, e := range op.Elems {
			elems[i] = f(e)
		}
		out.Elems = elems
	case rtl.OpIndex:
		out.Arg = f(op.Arg)
	case rtl.OpSplice:
		out.Orig = f(op.Orig)
		out.Value = f(op.Value)
	case rtl.OpDynamicIndex:
		out.Arg = f(op.Arg)
		out.Offset = f(op.Offset)
	case rtl.OpDynamicSplice:
		out.Arg = f(op.Arg)
		out.Offset = f(op.Offset)
		out.Value = f(op.Value)
	case rtl.OpComment:
		// no operands
	}
	return out
}
