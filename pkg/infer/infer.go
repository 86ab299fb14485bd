// Package infer runs Hindley-Milner-style type inference (pkg/mir.TypeId
// unification) over a MIR Object and promotes the result to an RHIF Object.
package infer

import (
	"fmt"

	"github.com/rhdl/rhdlcore/pkg/diag"
	"github.com/rhdl/rhdlcore/pkg/kind"
	"github.com/rhdl/rhdlcore/pkg/mir"
	"github.com/rhdl/rhdlcore/pkg/path"
	"github.com/rhdl/rhdlcore/pkg/rhif"
	"github.com/rhdl/rhdlcore/pkg/symtab"
)

// maxFixedPointIterations bounds the deferred-constraint re-run loop.
// spec.md §4.3/§9: a small constant (3 suffices in practice) kept
// deterministic by always re-processing constraints in insertion order.
const maxFixedPointIterations = 3

// deferredConstraint is one Binary/Unary-reduction/Index constraint queued
// for processing after the first immediate-constraint pass.
type deferredConstraint struct {
	apply func(*state) error
	loc   symtab.SourceLocation
}

type state struct {
	ctx      *mir.UnifyContext
	obj      *mir.Object
	slotType map[path.Slot]mir.TypeId
	deferred []deferredConstraint
}

func newState(obj *mir.Object, ctx *mir.UnifyContext) *state {
	return &state{ctx: ctx, obj: obj, slotType: make(map[path.Slot]mir.TypeId)}
}

func (s *state) typeOf(sl path.Slot, loc symtab.NodeId) mir.TypeId {
	if t, ok := s.slotType[sl]; ok {
		return t
	}
	switch sl.Kind {
	case path.SlotRegister:
		if t, ok := s.obj.Kind[sl.ID]; ok {
			s.slotType[sl] = t
			return t
		}
		t := s.ctx.TyVar(loc)
		s.slotType[sl] = t
		return t
	case path.SlotLiteral:
		if lit, ok := s.obj.Literals[sl.ID]; ok {
			s.slotType[sl] = lit.Ty
			return lit.Ty
		}
		t := s.ctx.TyVar(loc)
		s.slotType[sl] = t
		return t
	default:
		t := s.ctx.TyEmpty(loc)
		s.slotType[sl] = t
		return t
	}
}

func (s *state) setType(sl path.Slot, t mir.TypeId) { s.slotType[sl] = t }

// Infer runs type inference over mirObj and promotes it to an RHIF Object,
// or returns the first diagnostic encountered. It allocates a fresh
// UnifyContext; callers that pre-populate mirObj.Kind/Literals with TypeIds
// of their own (e.g. pkg/mirjson, decoding declared argument types from a
// wire format) must use InferWithContext with that same context instead, or
// the TypeId handles in mirObj will address the wrong arena.
func Infer(mirObj *mir.Object) (*rhif.Object, error) {
	return InferWithContext(mir.NewUnifyContext(), mirObj)
}

// InferWithContext runs inference exactly as Infer does, but against a
// caller-supplied UnifyContext. Every TypeId already recorded in mirObj's
// Kind and Literals maps must have been allocated from ctx.
func InferWithContext(ctx *mir.UnifyContext, mirObj *mir.Object) (*rhif.Object, error) {
	s := newState(mirObj, ctx)

	for _, lop := range mirObj.Ops {
		if err := s.emitImmediate(lop); err != nil {
			return nil, err
		}
	}

	for i := 0; i < maxFixedPointIterations; i++ {
		progressed := false
		for _, d := range s.deferred {
			before := ctx.Desc(s.typeOf(mirObj.Return, 0))
			if err := d.apply(s); err != nil {
				return nil, err
			}
			if ctx.Desc(s.typeOf(mirObj.Return, 0)) != before {
				progressed = true
			}
		}
		if i == 0 {
			s.defaultIntegerLiterals()
		}
		if !progressed && i > 0 {
			break
		}
	}

	return s.promote()
}

// emitImmediate handles the constraints solved on emit: Assign, AsBits,
// AsSigned, Resize, Array, Tuple, Struct, Enum, Exec, Splice, Repeat, Wrap,
// Retime, Select, Unary(Not|Neg|Signed|Unsigned), Case arms. Binary,
// reduction Unary, and Index are queued as deferred constraints.
func (s *state) emitImmediate(lop mir.LocatedOp) error {
	op := lop.Op
	loc := lop.Loc.NodeId
	switch op.Tag {
	case mir.OpAssign:
		argTy := s.typeOf(op.Src, loc)
		s.setType(op.Lhs, argTy)
		return s.unify(argTy, s.typeOf(op.Lhs, loc), lop.Loc)

	case mir.OpAsBits:
		s.setType(op.Lhs, s.ctx.TyBits(loc, s.ctx.TyConstLen(loc, op.Len)))
		return nil

	case mir.OpAsSigned:
		s.setType(op.Lhs, s.ctx.TySigned(loc, s.ctx.TyConstLen(loc, op.Len)))
		return nil

	case mir.OpResize:
		argTy := s.typeOf(op.Src, loc)
		lhsTy := s.applyResizeShape(argTy, op.Len, loc)
		s.setType(op.Lhs, lhsTy)
		return nil

	case mir.OpArray:
		if len(op.Elems) == 0 {
			s.setType(op.Lhs, s.ctx.TyEmpty(loc))
			return nil
		}
		base := s.typeOf(op.Elems[0], loc)
		for _, e := range op.Elems[1:] {
			if err := s.unify(base, s.typeOf(e, loc), lop.Loc); err != nil {
				return err
			}
		}
		s.setType(op.Lhs, s.ctx.TyArray(loc, base, s.ctx.TyConstLen(loc, len(op.Elems))))
		return nil

	case mir.OpRepeat:
		if len(op.Elems) != 1 {
			return fmt.Errorf("repeat expects exactly one value slot")
		}
		base := s.typeOf(op.Elems[0], loc)
		s.setType(op.Lhs, s.ctx.TyArray(loc, base, s.ctx.TyConstLen(loc, op.N)))
		return nil

	case mir.OpTuple:
		elemTys := make([]mir.TypeId, len(op.Elems))
		for i, e := range op.Elems {
			elemTys[i] = s.typeOf(e, loc)
		}
		s.setType(op.Lhs, s.ctx.TyTuple(loc, elemTys))
		return nil

	case mir.OpStruct:
		s.setType(op.Lhs, op.Template)
		for _, f := range op.Fields {
			fieldTy, err := s.ctx.TyField(op.Template, f.Name)
			if err != nil {
				return &diag.UnificationFailure{A: s.ctx.Desc(op.Template), B: f.Name, Loc: lop.Loc}
			}
			if err := s.unify(fieldTy, s.typeOf(f.Slot, loc), lop.Loc); err != nil {
				return err
			}
		}
		return nil

	case mir.OpEnum:
		s.setType(op.Lhs, op.Template)
		payloadTy, err := s.ctx.TyVariant(op.Template, op.Variant)
		if err != nil {
			return &diag.UnificationFailure{A: s.ctx.Desc(op.Template), B: op.Variant, Loc: lop.Loc}
		}
		for _, f := range op.Fields {
			if err := s.unify(payloadTy, s.typeOf(f.Slot, loc), lop.Loc); err != nil {
				return err
			}
		}
		return nil

	case mir.OpExec:
		callee, ok := s.obj.Externals[op.Callee]
		if !ok {
			return fmt.Errorf("unknown external %s", op.Callee)
		}
		if len(op.Args) != len(callee.Arguments) {
			return fmt.Errorf("exec %s: argument count mismatch", op.Callee)
		}
		for i, a := range op.Args {
			calleeArgTy, ok := callee.Kind[calleeSlotID(callee.Arguments[i])]
			if !ok {
				continue
			}
			if err := s.unify(calleeArgTy, s.typeOf(a, loc), lop.Loc); err != nil {
				return err
			}
		}
		if retTy, ok := callee.Kind[calleeSlotID(callee.Return)]; ok {
			s.setType(op.Lhs, retTy)
		} else {
			s.setType(op.Lhs, s.ctx.TyVar(loc))
		}
		return nil

	case mir.OpSplice:
		origTy := s.typeOf(op.Orig, loc)
		s.setType(op.Lhs, origTy)
		return nil

	case mir.OpWrap:
		s.setType(op.Lhs, op.Arg)
		return nil

	case mir.OpRetime:
		argTy := s.typeOf(op.Src, loc)
		s.setType(op.Lhs, argTy)
		return nil

	case mir.OpSelect:
		tTy := s.typeOf(op.T, loc)
		if err := s.unify(tTy, s.typeOf(op.F, loc), lop.Loc); err != nil {
			return err
		}
		s.setType(op.Lhs, tTy)
		return nil

	case mir.OpUnary:
		switch op.UnOp {
		case mir.Not, mir.Neg:
			argTy := s.typeOf(op.X, loc)
			s.setType(op.Lhs, argTy)
			return nil
		case mir.ToSigned:
			s.setType(op.Lhs, s.ctx.TySigned(loc, s.ctx.TyConstLen(loc, op.Len)))
			return nil
		case mir.ToUnsigned:
			s.setType(op.Lhs, s.ctx.TyBits(loc, s.ctx.TyConstLen(loc, op.Len)))
			return nil
		default:
			// Reduction ops (All/Any/XorReduce): deferred, lhs is bool.
			s.deferred = append(s.deferred, deferredConstraint{loc: lop.Loc, apply: func(st *state) error {
				st.setType(op.Lhs, st.ctx.TyBool(loc))
				return nil
			}})
			return nil
		}

	case mir.OpCase:
		for _, arm := range op.Arms {
			if arm.Wild {
				continue
			}
			if err := s.unify(s.typeOf(op.Disc, loc), s.typeOf(arm.Test, loc), lop.Loc); err != nil {
				return err
			}
		}
		if len(op.Arms) > 0 {
			bodyTy := s.typeOf(op.Arms[0].Body, loc)
			for _, arm := range op.Arms[1:] {
				if err := s.unify(bodyTy, s.typeOf(arm.Body, loc), lop.Loc); err != nil {
					return err
				}
			}
			s.setType(op.Lhs, bodyTy)
		}
		return nil

	case mir.OpBinary:
		s.deferred = append(s.deferred, deferredConstraint{loc: lop.Loc, apply: func(st *state) error {
			return st.binaryConstraint(op, lop.Loc)
		}})
		return nil

	case mir.OpIndex:
		s.deferred = append(s.deferred, deferredConstraint{loc: lop.Loc, apply: func(st *state) error {
			return st.indexConstraint(op, lop.Loc)
		}})
		return nil

	case mir.OpComment, mir.OpNoop:
		return nil

	default:
		return fmt.Errorf("unhandled op tag %d", op.Tag)
	}
}

func calleeSlotID(s path.Slot) int { return s.ID }

func (s *state) applyResizeShape(argTy mir.TypeId, length int, loc symtab.NodeId) mir.TypeId {
	if sf, ok := s.ctx.ProjectSignFlag(argTy); ok {
		if s.ctx.IsUnresolved(sf) {
			return s.ctx.TyMaybeSigned(loc, s.ctx.TyConstLen(loc, length))
		}
		if s.ctx.Equal(sf, s.ctx.TySignFlag(loc, mir.Signed)) {
			return s.ctx.TySigned(loc, s.ctx.TyConstLen(loc, length))
		}
		return s.ctx.TyBits(loc, s.ctx.TyConstLen(loc, length))
	}
	return s.ctx.TyBits(loc, s.ctx.TyConstLen(loc, length))
}

func (s *state) unify(x, y mir.TypeId, loc symtab.SourceLocation) error {
	if err := s.ctx.Unify(x, y); err != nil {
		return &diag.UnificationFailure{A: s.ctx.Desc(x), B: s.ctx.Desc(y), Loc: loc}
	}
	return nil
}

// binaryConstraint implements the §4.3 deferred-constraint table for
// Binary ops.
func (s *state) binaryConstraint(op mir.Op, loc symtab.SourceLocation) error {
	nodeLoc := loc.NodeId
	aTy, bTy := s.typeOf(op.A, nodeLoc), s.typeOf(op.B, nodeLoc)
	switch op.BinOp {
	case mir.Add, mir.SubOp, mir.Mul, mir.BitAnd, mir.BitOr, mir.BitXor:
		lhsTy := aTy
		if s.ctx.IsSignal(bTy) && !s.ctx.IsSignal(aTy) {
			lhsTy = bTy
		}
		aData, aIsSig := s.ctx.ProjectSignalValue(aTy)
		bData, bIsSig := s.ctx.ProjectSignalValue(bTy)
		if !aIsSig {
			aData = aTy
		}
		if !bIsSig {
			bData = bTy
		}
		if err := s.unify(aData, bData, loc); err != nil {
			return err
		}
		s.setType(op.Lhs, lhsTy)
		return nil

	case mir.Eq, mir.Neq, mir.Lt, mir.Le, mir.Gt, mir.Ge:
		aData, aIsSig := s.ctx.ProjectSignalValue(aTy)
		bData, bIsSig := s.ctx.ProjectSignalValue(bTy)
		if !aIsSig {
			aData = aTy
		}
		if !bIsSig {
			bData = bTy
		}
		if err := s.unify(aData, bData, loc); err != nil {
			return err
		}
		boolTy := s.ctx.TyBool(nodeLoc)
		if aIsSig {
			boolTy = s.ctx.TySignal(nodeLoc, boolTy, s.ctx.ProjectSignalClockOrFresh(aTy, nodeLoc))
		} else if bIsSig {
			boolTy = s.ctx.TySignal(nodeLoc, boolTy, s.ctx.ProjectSignalClockOrFresh(bTy, nodeLoc))
		}
		s.setType(op.Lhs, boolTy)
		return nil

	case mir.Shl, mir.Shr:
		s.setType(op.Lhs, aTy)
		if s.ctx.IsGenericInteger(bTy) {
			return s.unify(bTy, s.ctx.TyUsize(nodeLoc), loc)
		}
		return nil

	default:
		return fmt.Errorf("unhandled binary op %d", op.BinOp)
	}
}

// indexConstraint implements §4.3's Index rule: traverse the recorded Path
// over the operand's type, defaulting a DynamicIndex slot's type to usize
// if it is still generic.
func (s *state) indexConstraint(op mir.Op, loc symtab.SourceLocation) error {
	nodeLoc := loc.NodeId
	cur := s.typeOf(op.Orig, nodeLoc)
	for _, el := range op.Path.Elements {
		switch el.Tag {
		case path.Index, path.TupleIndex:
			next, err := s.ctx.TyIndex(s.ctx.Apply(cur), el.Int)
			if err != nil {
				return nil // leave unresolved; reported at end of pass if still stuck
			}
			cur = next
		case path.Field:
			next, err := s.ctx.TyField(s.ctx.Apply(cur), el.Name)
			if err != nil {
				return nil
			}
			cur = next
		case path.EnumPayload:
			next, err := s.ctx.TyVariant(s.ctx.Apply(cur), el.Name)
			if err != nil {
				return nil
			}
			cur = next
		case path.EnumPayloadByValue:
			next, err := s.ctx.TyVariantByValue(s.ctx.Apply(cur), el.Value)
			if err != nil {
				return nil
			}
			cur = next
		case path.EnumDiscriminant:
			cur = s.ctx.TyEnumDiscriminant(s.ctx.Apply(cur))
		case path.SignalValue:
			if data, ok := s.ctx.ProjectSignalValue(s.ctx.Apply(cur)); ok {
				cur = data
			}
		case path.DynamicIndex:
			slotTy := s.typeOf(el.Slot, nodeLoc)
			if s.ctx.IsGenericInteger(slotTy) || s.ctx.IsUnresolved(slotTy) {
				if err := s.unify(slotTy, s.ctx.TyUsize(nodeLoc), loc); err != nil {
					return err
				}
			}
			if base, err := s.ctx.TyIndex(s.ctx.Apply(cur), 0); err == nil {
				cur = base
			}
		}
	}
	s.setType(op.Lhs, cur)
	return nil
}

// defaultIntegerLiterals applies the Rust-like default (32-bit signed) to
// every literal whose type is still a fully-unbound Bits application,
// after the first convergence, per spec.md §4.3.
func (s *state) defaultIntegerLiterals() {
	for id, lit := range s.obj.Literals {
		if s.ctx.IsGenericInteger(lit.Ty) {
			loc := symtab.NodeId(0)
			resolved := s.ctx.TySigned(loc, s.ctx.TyConstLen(loc, 32))
			_ = s.ctx.Unify(lit.Ty, resolved)
			s.obj.Literals[id] = mir.Literal{Value: lit.Value, Ty: lit.Ty}
		}
	}
}

// promote reifies every TypeId into a Kind and copies ops across into an
// RHIF Object unchanged, per spec.md §4.5.
func (s *state) promote() (*rhif.Object, error) {
	out := rhif.NewObject(s.obj.FnId, s.obj.Name)
	var unresolved []*diag.UnresolvedSlot

	for id, ty := range s.obj.Kind {
		k, err := s.ctx.IntoKind(s.ctx.Apply(ty))
		if err != nil {
			unresolved = append(unresolved, &diag.UnresolvedSlot{
				Slot: fmt.Sprintf("r%d", id), Type: s.ctx.Desc(ty),
			})
			continue
		}
		out.Kinds[id] = k
	}
	for sl, ty := range s.slotType {
		if sl.Kind != path.SlotRegister {
			continue
		}
		if _, done := out.Kinds[sl.ID]; done {
			continue
		}
		k, err := s.ctx.IntoKind(s.ctx.Apply(ty))
		if err != nil {
			unresolved = append(unresolved, &diag.UnresolvedSlot{
				Slot: fmt.Sprintf("r%d", sl.ID), Type: s.ctx.Desc(ty),
			})
			continue
		}
		out.Kinds[sl.ID] = k
	}
	if len(unresolved) > 0 {
		return nil, &diag.UnresolvedSlots{Slots: unresolved}
	}

	for id, lit := range s.obj.Literals {
		k, err := s.ctx.IntoKind(s.ctx.Apply(lit.Ty))
		if err != nil {
			return nil, &diag.UnresolvedSlot{Slot: fmt.Sprintf("l%d", id), Type: s.ctx.Desc(lit.Ty)}
		}
		var tb kind.TypedBits
		if k.IsSigned() {
			tb = kind.FromInt(lit.Value, k.Width())
		} else {
			tb = kind.FromUint(uint64(lit.Value), k.Bits())
		}
		out.Literals[id] = tb
	}

	for _, a := range s.obj.Arguments {
		out.Arguments = append(out.Arguments, symtab.RegisterId(fmt.Sprintf("r%d", a.ID)))
	}
	out.Return = s.obj.Return

	for _, lop := range s.obj.Ops {
		promoted, err := s.promoteOp(lop.Op)
		if err != nil {
			return nil, err
		}
		out.Ops = append(out.Ops, rhif.LocatedOp{Op: promoted, Loc: lop.Loc})
	}
	for eid, callee := range s.obj.Externals {
		calleeRhif, err := InferWithContext(s.ctx, callee)
		if err != nil {
			return nil, err
		}
		out.Externals[rhif.ExternalId(eid)] = calleeRhif
	}
	return out, nil
}

// promoteOp reifies a mir.Op into a rhif.Op, resolving the TypeId payloads
// that RHIF holds concretely: a Retime's Color becomes a kind.Color, a
// Struct/Enum Template becomes a Kind, and for AsBits, AsSigned, Resize and
// Wrap ArgKind is the resolved Kind of the Lhs slot.
func (s *state) promoteOp(op mir.Op) (rhif.Op, error) {
	out := rhif.Op{
		Tag:     rhif.OpTag(op.Tag),
		Lhs:     op.Lhs,
		Elems:   op.Elems,
		N:       op.N,
		Len:     op.Len,
		Src:     op.Src,
		BinOp:   rhif.BinOp(op.BinOp),
		A:       op.A,
		B:       op.B,
		UnOp:    rhif.UnOp(op.UnOp),
		X:       op.X,
		Cond:    op.Cond,
		T:       op.T,
		F:       op.F,
		Disc:    op.Disc,
		Arms:    promoteArms(op.Arms),
		Path:    op.Path,
		Orig:    op.Orig,
		Subst:   op.Subst,
		Fields:  promoteFields(op.Fields),
		Rest:    op.Rest,
		HasRest: op.HasRest,
		Variant: op.Variant,
		Callee:  rhif.ExternalId(op.Callee),
		Args:    op.Args,
		WrapOp:  rhif.WrapOp(op.WrapOp),
		Text:    op.Text,
	}
	switch op.Tag {
	case mir.OpRetime:
		col, err := s.ctx.ResolveClock(op.Color)
		if err != nil {
			return rhif.Op{}, fmt.Errorf("retime: %w", err)
		}
		out.Color = col
	case mir.OpStruct, mir.OpEnum:
		k, err := s.ctx.IntoKind(s.ctx.Apply(op.Template))
		if err != nil {
			return rhif.Op{}, fmt.Errorf("construct %s: %w", op.Variant, err)
		}
		out.Template = k
	case mir.OpAsBits, mir.OpAsSigned, mir.OpResize, mir.OpWrap:
		argTy := s.typeOf(op.Lhs, 0)
		k, err := s.ctx.IntoKind(s.ctx.Apply(argTy))
		if err != nil {
			return rhif.Op{}, fmt.Errorf("op %v: %w", op.Tag, err)
		}
		out.ArgKind = k
	}
	return out, nil
}

func promoteArms(arms []mir.CaseArm) []rhif.CaseArm {
	out := make([]rhif.CaseArm, len(arms))
	for i, a := range arms {
		out[i] = rhif.CaseArm{Test: a.Test, Wild: a.Wild, Body: a.Body}
	}
	return out
}

func promoteFields(fields []mir.FieldValue) []rhif.FieldValue {
	out := make([]rhif.FieldValue, len(fields))
	for i, f := range fields {
		out[i] = rhif.FieldValue{Name: f.Name, Slot: f.Slot}
	}
	return out
}
