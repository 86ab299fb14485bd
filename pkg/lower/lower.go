// Package lower translates a clock-checked RHIF Object into a flat RTL
// Object: composite Kinds (Struct, Enum, Array, Tuple, Signal) are erased
// into Concat/Splice/Index chains over plain Bits/Signed registers, per
// spec.md §4.6.
package lower

import (
	"fmt"

	"github.com/rhdl/rhdlcore/pkg/diag"
	"github.com/rhdl/rhdlcore/pkg/kind"
	"github.com/rhdl/rhdlcore/pkg/path"
	"github.com/rhdl/rhdlcore/pkg/rhif"
	"github.com/rhdl/rhdlcore/pkg/rtl"
	"github.com/rhdl/rhdlcore/pkg/symtab"
)

// lowerer holds the mutable state of one Object's lowering: the fresh
// register/literal allocators and the memo tables that let repeated
// references to the same RHIF slot resolve to the same RTL operand.
type lowerer struct {
	src *rhif.Object
	out *rtl.Object

	nextReg *int
	nextLit *int

	regMemo map[int]rtl.Operand
	litMemo map[int]rtl.Operand
}

// Compile lowers a single, already clock-checked RHIF Object to RTL. Exec
// ops are inlined recursively: the callee is compiled standalone (its own
// fresh register/literal numbering) and then remapped into the caller's
// allocation space, per §4.6's "caller allocates copies" rule.
func Compile(obj *rhif.Object) (*rtl.Object, error) {
	out := rtl.NewObject(obj.FnId, obj.Name)
	nextReg, nextLit := 0, 0
	l := &lowerer{
		src:     obj,
		out:     out,
		nextReg: &nextReg,
		nextLit: &nextLit,
		regMemo: make(map[int]rtl.Operand),
		litMemo: make(map[int]rtl.Operand),
	}
	for _, lop := range obj.Ops {
		if err := l.lowerOp(lop); err != nil {
			return nil, err
		}
	}
	ret, err := l.operand(obj.Return)
	if err != nil {
		return nil, err
	}
	out.Return = ret
	for _, argID := range obj.Arguments {
		slot, err := parseArgSlot(argID)
		if err != nil {
			return nil, err
		}
		k, ok := obj.KindOf(slot)
		if !ok || k.Bits() == 0 {
			out.Arguments = append(out.Arguments, nil)
			continue
		}
		operand, err := l.operand(slot)
		if err != nil {
			return nil, err
		}
		id := rtl.RegisterId(operand.ID)
		out.Arguments = append(out.Arguments, &id)
	}
	out.Symbols.Merge("", obj.Symbols)
	return out, nil
}

func errUnknownKind(where string) error {
	return fmt.Errorf("lower: unknown kind for %s operand", where)
}

func parseArgSlot(id symtab.RegisterId) (rhif.Slot, error) {
	var n int
	if _, err := fmt.Sscanf(string(id), "r%d", &n); err != nil {
		return rhif.Slot{}, fmt.Errorf("malformed argument register id %q: %w", id, err)
	}
	return path.Register(n), nil
}

// flatRegisterKind reduces any resolved Kind to the flat width/sign pair an
// RTL register carries; Signal's clock has already done its job by the time
// lowering runs (pkg/clockcheck), so only the inner shape matters here.
func flatRegisterKind(k *kind.Kind) rtl.RegisterKind {
	if k.IsSignal() {
		k = k.SignalInner()
	}
	return rtl.RegisterKind{Signed: k.IsSigned(), Width: k.Bits()}
}

// operand resolves a Slot to its (memoized) RTL Operand, allocating a fresh
// register or literal the first time a given id is referenced.
func (l *lowerer) operand(s rhif.Slot) (rtl.Operand, error) {
	switch s.Kind {
	case path.SlotRegister:
		if o, ok := l.regMemo[s.ID]; ok {
			return o, nil
		}
		k, ok := l.src.KindOf(s)
		if !ok {
			return rtl.Operand{}, fmt.Errorf("unknown kind for register r%d", s.ID)
		}
		o := l.freshReg(flatRegisterKind(k))
		l.regMemo[s.ID] = o
		return o, nil
	case path.SlotLiteral:
		if o, ok := l.litMemo[s.ID]; ok {
			return o, nil
		}
		tb, ok := l.src.Literals[s.ID]
		if !ok {
			return rtl.Operand{}, fmt.Errorf("unknown literal l%d", s.ID)
		}
		o := l.newLiteral(rtl.BitString{Bits: append([]kind.BitX(nil), tb.Bits...), Signed: tb.Kind.IsSigned()})
		l.litMemo[s.ID] = o
		return o, nil
	default:
		return rtl.Operand{}, &diag.EmptySlotInRTL{}
	}
}

func (l *lowerer) freshReg(rk rtl.RegisterKind) rtl.Operand {
	id := *l.nextReg
	*l.nextReg++
	l.out.RegisterKind[id] = rk
	return rtl.Reg(id)
}

func (l *lowerer) newLiteral(bs rtl.BitString) rtl.Operand {
	id := *l.nextLit
	*l.nextLit++
	l.out.Literals[id] = bs
	return rtl.Lit(id)
}

func (l *lowerer) emit(op rtl.Op, loc symtab.SourceLocation) {
	l.out.Ops = append(l.out.Ops, rtl.LocatedOp{Op: op, Loc: loc})
}

// assign emits lhs <- src, allocating lhs's register if this is its first
// mention.
func (l *lowerer) assign(lhs rhif.Slot, src rtl.Operand, loc symtab.SourceLocation) error {
	lo, err := l.operand(lhs)
	if err != nil {
		return err
	}
	l.emit(rtl.Op{Tag: rtl.OpAssign, Lhs: lo, Src: src}, loc)
	return nil
}

// lowerOp dispatches one RHIF op. An Empty lhs (other than on Comment/Noop,
// which carry no lhs at all) means the result is never read; lowering must
// never write such a slot, so it is skipped entirely.
func (l *lowerer) lowerOp(lop rhif.LocatedOp) error {
	op := lop.Op
	loc := lop.Loc
	if op.Tag != rhif.OpComment && op.Tag != rhif.OpNoop && op.Lhs.IsEmpty() {
		return nil
	}
	switch op.Tag {
	case rhif.OpAssign:
		src, err := l.operand(op.Src)
		if err != nil {
			return err
		}
		return l.assign(op.Lhs, src, loc)

	case rhif.OpRetime:
		// Clock crossing is validated in pkg/clockcheck; at this point a
		// Retime is just a value copy.
		src, err := l.operand(op.Src)
		if err != nil {
			return err
		}
		return l.assign(op.Lhs, src, loc)

	case rhif.OpBinary:
		a, err := l.operand(op.A)
		if err != nil {
			return err
		}
		b, err := l.operand(op.B)
		if err != nil {
			return err
		}
		lhs, err := l.operand(op.Lhs)
		if err != nil {
			return err
		}
		l.emit(rtl.Op{Tag: rtl.OpBinary, Lhs: lhs, BinOp: op.BinOp, A: a, B: b}, loc)
		return nil

	case rhif.OpUnary:
		x, err := l.operand(op.X)
		if err != nil {
			return err
		}
		lhs, err := l.operand(op.Lhs)
		if err != nil {
			return err
		}
		l.emit(rtl.Op{Tag: rtl.OpUnary, Lhs: lhs, UnOp: op.UnOp, X: x}, loc)
		return nil

	case rhif.OpSelect:
		cond, err := l.operand(op.Cond)
		if err != nil {
			return err
		}
		t, err := l.operand(op.T)
		if err != nil {
			return err
		}
		f, err := l.operand(op.F)
		if err != nil {
			return err
		}
		lhs, err := l.operand(op.Lhs)
		if err != nil {
			return err
		}
		l.emit(rtl.Op{Tag: rtl.OpSelect, Lhs: lhs, Cond: cond, T: t, F: f}, loc)
		return nil

	case rhif.OpAsBits, rhif.OpAsSigned, rhif.OpResize:
		if op.ArgKind == nil {
			return &diag.BitCastMissingRequiredLength{}
		}
		src, err := l.operand(op.Src)
		if err != nil {
			return err
		}
		lhs, err := l.operand(op.Lhs)
		if err != nil {
			return err
		}
		ck := rtl.CastUnsigned
		switch op.Tag {
		case rhif.OpAsSigned:
			ck = rtl.CastSigned
		case rhif.OpResize:
			ck = rtl.CastResize
		}
		l.emit(rtl.Op{Tag: rtl.OpCast, Lhs: lhs, CastArg: src, CastKind: ck, CastLen: op.Len}, loc)
		return nil

	case rhif.OpArray, rhif.OpTuple:
		elems := make([]rtl.Operand, len(op.Elems))
		for i, e := range op.Elems {
			o, err := l.operand(e)
			if err != nil {
				return err
			}
			elems[i] = o
		}
		lhs, err := l.operand(op.Lhs)
		if err != nil {
			return err
		}
		l.emit(rtl.Op{Tag: rtl.OpConcat, Lhs: lhs, Elems: elems}, loc)
		return nil

	case rhif.OpRepeat:
		if len(op.Elems) != 1 {
			return fmt.Errorf("repeat op expects exactly one base element, got %d", len(op.Elems))
		}
		base, err := l.operand(op.Elems[0])
		if err != nil {
			return err
		}
		elems := make([]rtl.Operand, op.N)
		for i := range elems {
			elems[i] = base
		}
		lhs, err := l.operand(op.Lhs)
		if err != nil {
			return err
		}
		l.emit(rtl.Op{Tag: rtl.OpConcat, Lhs: lhs, Elems: elems}, loc)
		return nil

	case rhif.OpStruct, rhif.OpEnum:
		return l.lowerConstruct(lop)

	case rhif.OpWrap:
		return l.lowerWrap(lop)

	case rhif.OpCase:
		return l.lowerCase(lop)

	case rhif.OpIndex:
		if op.Path.AnyDynamic() {
			return l.lowerDynamicIndex(lop)
		}
		return l.lowerStaticIndex(lop)

	case rhif.OpSplice:
		if op.Path.AnyDynamic() {
			return l.lowerDynamicSplice(lop)
		}
		return l.lowerStaticSplice(lop)

	case rhif.OpExec:
		return l.lowerExec(lop)

	case rhif.OpComment:
		l.emit(rtl.Op{Tag: rtl.OpComment, Text: op.Text}, loc)
		return nil

	case rhif.OpNoop:
		return nil

	default:
		return fmt.Errorf("lower: unhandled op tag %v", op.Tag)
	}
}

func (l *lowerer) lowerStaticIndex(lop rhif.LocatedOp) error {
	op := lop.Op
	origKind, ok := l.src.KindOf(op.Orig)
	if !ok {
		return fmt.Errorf("unknown kind for index operand")
	}
	arg, err := l.operand(op.Orig)
	if err != nil {
		return err
	}
	rng, _, err := path.BitRange(origKind, op.Path)
	if err != nil {
		return err
	}
	lhs, err := l.operand(op.Lhs)
	if err != nil {
		return err
	}
	l.emit(rtl.Op{Tag: rtl.OpIndex, Lhs: lhs, Arg: arg, Range: rng}, lop.Loc)
	return nil
}

func (l *lowerer) lowerStaticSplice(lop rhif.LocatedOp) error {
	op := lop.Op
	origKind, ok := l.src.KindOf(op.Orig)
	if !ok {
		return fmt.Errorf("unknown kind for splice operand")
	}
	orig, err := l.operand(op.Orig)
	if err != nil {
		return err
	}
	rng, _, err := path.BitRange(origKind, op.Path)
	if err != nil {
		return err
	}
	val, err := l.operand(op.Subst)
	if err != nil {
		return err
	}
	lhs, err := l.operand(op.Lhs)
	if err != nil {
		return err
	}
	l.emit(rtl.Op{Tag: rtl.OpSplice, Lhs: lhs, Orig: orig, Range: rng, Value: val}, lop.Loc)
	return nil
}
