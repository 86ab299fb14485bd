package lower

import (
	"github.com/rhdl/rhdlcore/pkg/diag"
	"github.com/rhdl/rhdlcore/pkg/kind"
	"github.com/rhdl/rhdlcore/pkg/path"
	"github.com/rhdl/rhdlcore/pkg/rhif"
	"github.com/rhdl/rhdlcore/pkg/rtl"
)

// lowerConstruct handles Struct and Enum construction: start from a literal
// template (the rest operand if supplied, otherwise an all-zero value of
// the template's Kind), then splice in each field's bit range, chaining
// through a fresh register per splice, per spec.md §4.6.
func (l *lowerer) lowerConstruct(lop rhif.LocatedOp) error {
	op := lop.Op
	loc := lop.Loc
	template := op.Template
	if template == nil {
		return &diag.WrapMissingKind{}
	}

	var cur rtl.Operand
	if op.HasRest {
		r, err := l.operand(op.Rest)
		if err != nil {
			return err
		}
		cur = r
	} else {
		cur = l.zeroLiteral(template)
	}

	base := path.Path{}
	if op.Tag == rhif.OpEnum {
		variant, err := template.LookupVariant(op.Variant)
		if err != nil {
			return err
		}
		discPath := path.Path{}.Discriminant()
		discRange, discKind, err := path.BitRange(template, discPath)
		if err != nil {
			return err
		}
		discLit := l.discriminantLiteral(variant.Discriminant, discKind)
		next := l.freshReg(flatRegisterKind(template))
		l.emit(rtl.Op{Tag: rtl.OpSplice, Lhs: next, Orig: cur, Range: discRange, Value: discLit}, loc)
		cur = next
		base = path.Path{}.PayloadByValue(variant.Discriminant)
	}

	payloadKind, err := path.SubKind(template, base)
	if err != nil && op.Tag == rhif.OpEnum {
		return err
	}

	for i, f := range op.Fields {
		var fieldPath path.Path
		switch {
		case op.Tag == rhif.OpStruct:
			fieldPath = base.FieldBy(f.Name)
		case payloadKind != nil && payloadKind.IsTuple():
			fieldPath = base.TupleIndexBy(i)
		default:
			fieldPath = base
		}
		rng, _, err := path.BitRange(template, fieldPath)
		if err != nil {
			return err
		}
		val, err := l.operand(f.Slot)
		if err != nil {
			return err
		}
		next := l.freshReg(flatRegisterKind(template))
		l.emit(rtl.Op{Tag: rtl.OpSplice, Lhs: next, Orig: cur, Range: rng, Value: val}, loc)
		cur = next
	}

	return l.assign(op.Lhs, cur, loc)
}

// lowerWrap lowers an Option/Result construction: a 1-bit discriminant
// literal (1 for Some/Ok, 0 for None/Err) concatenated with the payload
// resized to kind.Bits()-1 bits. When that payload width is zero (an
// Option/Result whose payload kind has no bits), the discriminant is
// assigned directly, skipping the Concat/Resize entirely.
func (l *lowerer) lowerWrap(lop rhif.LocatedOp) error {
	op := lop.Op
	loc := lop.Loc
	target := op.ArgKind
	if target == nil {
		return &diag.WrapMissingKind{}
	}

	discBit := kind.Bit0
	if op.WrapOp == rhif.WrapSome || op.WrapOp == rhif.WrapOk {
		discBit = kind.Bit1
	}
	discLit := l.newLiteral(rtl.BitString{Bits: []kind.BitX{discBit}, Signed: false})

	payloadWidth := target.Bits() - 1
	if payloadWidth <= 0 {
		return l.assign(op.Lhs, discLit, loc)
	}

	payload, err := l.operand(op.Src)
	if err != nil {
		return err
	}
	resized := l.freshReg(rtl.RegisterKind{Signed: false, Width: payloadWidth})
	l.emit(rtl.Op{Tag: rtl.OpCast, Lhs: resized, CastArg: payload, CastKind: rtl.CastResize, CastLen: payloadWidth}, loc)

	concat := l.freshReg(flatRegisterKind(target))
	l.emit(rtl.Op{Tag: rtl.OpConcat, Lhs: concat, Elems: []rtl.Operand{resized, discLit}}, loc)
	return l.assign(op.Lhs, concat, loc)
}

// lowerCase requires every non-Wild arm's test to already be a literal
// slot; anything else is an ICE (the source-level match compiler is
// responsible for reducing patterns to literal equality tests before
// RHIF). A Wild arm carries no test and lowers to rtl.CaseWild.
func (l *lowerer) lowerCase(lop rhif.LocatedOp) error {
	op := lop.Op
	loc := lop.Loc
	disc, err := l.operand(op.Disc)
	if err != nil {
		return err
	}
	arms := make([]rtl.CaseArm, len(op.Arms))
	for i, arm := range op.Arms {
		value, err := l.operand(arm.Body)
		if err != nil {
			return err
		}
		if arm.Wild {
			arms[i] = rtl.CaseArm{Test: rtl.CaseWild, Value: value}
			continue
		}
		if arm.Test.Kind != path.SlotLiteral {
			return &diag.MatchPatternValueMustBeLiteral{}
		}
		litOperand, err := l.operand(arm.Test)
		if err != nil {
			return err
		}
		arms[i] = rtl.CaseArm{Test: rtl.CaseLiteral, Literal: litOperand.ID, Value: value}
	}
	lhs, err := l.operand(op.Lhs)
	if err != nil {
		return err
	}
	l.emit(rtl.Op{Tag: rtl.OpCase, Lhs: lhs, Disc: disc, Arms: arms}, loc)
	return nil
}

func (l *lowerer) zeroLiteral(k *kind.Kind) rtl.Operand {
	bits := make([]kind.BitX, k.Bits())
	for i := range bits {
		bits[i] = kind.Bit0
	}
	return l.newLiteral(rtl.BitString{Bits: bits, Signed: k.IsSigned()})
}

func (l *lowerer) discriminantLiteral(disc int64, discKind *kind.Kind) rtl.Operand {
	var tb kind.TypedBits
	if discKind.IsSigned() {
		tb = kind.FromInt(disc, discKind.Bits())
	} else {
		tb = kind.FromUint(uint64(disc), discKind.Bits())
	}
	return l.newLiteral(rtl.BitString{Bits: tb.Bits, Signed: discKind.IsSigned()})
}
