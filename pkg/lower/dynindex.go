package lower

import (
	"github.com/rhdl/rhdlcore/pkg/kind"
	"github.com/rhdl/rhdlcore/pkg/path"
	"github.com/rhdl/rhdlcore/pkg/rhif"
	"github.com/rhdl/rhdlcore/pkg/rtl"
)

// offsetAndLen synthesizes the RTL arithmetic computing a dynamic path's
// bit offset into origKind, per spec.md §4.6: the base offset is the range
// of the path with every DynamicIndex zeroed out; each dynamic slot
// contributes stride * index, where stride is derived by differencing the
// "unit step" path (StridePath) against the base. L, the width every
// offset/stride register is cast to, is ceil(log2(origKind.Bits())) — the
// containing kind's total width, not the indexed element's. Multiplication
// happens at 2L bits to avoid overflow, then the product is resized back
// to L before accumulation. It returns the offset Operand and the fixed
// length of the indexed range.
func (l *lowerer) offsetAndLen(origKind *kind.Kind, p path.Path, lop rhif.LocatedOp) (rtl.Operand, int, error) {
	loc := lop.Loc
	basePath := p.ZeroOutDynamicIndices()
	baseRange, _, err := path.BitRange(origKind, basePath)
	if err != nil {
		return rtl.Operand{}, 0, err
	}

	width := origKind.Bits()
	l2 := kind.Clog2(int64(width))
	if l2 == 0 {
		l2 = 1
	}

	acc := l.newLiteral(rtl.BitString{Bits: kind.FromUint(uint64(baseRange.Start), l2).Bits, Signed: false})

	for _, slot := range p.DynamicSlots() {
		stridePath := p.StridePath(slot)
		strideRange, _, err := path.BitRange(origKind, stridePath)
		if err != nil {
			return rtl.Operand{}, 0, err
		}
		stride := strideRange.Start - baseRange.Start

		slotOperand, err := l.operand(slot)
		if err != nil {
			return rtl.Operand{}, 0, err
		}

		castReg := l.freshReg(rtl.RegisterKind{Signed: false, Width: l2})
		l.emit(rtl.Op{Tag: rtl.OpCast, Lhs: castReg, CastArg: slotOperand, CastKind: rtl.CastUnsigned, CastLen: l2}, loc)

		wideCastReg := l.freshReg(rtl.RegisterKind{Signed: false, Width: 2 * l2})
		l.emit(rtl.Op{Tag: rtl.OpCast, Lhs: wideCastReg, CastArg: castReg, CastKind: rtl.CastResize, CastLen: 2 * l2}, loc)

		wideStrideLit := l.newLiteral(rtl.BitString{Bits: kind.FromUint(uint64(stride), 2*l2).Bits, Signed: false})

		productReg := l.freshReg(rtl.RegisterKind{Signed: false, Width: 2 * l2})
		l.emit(rtl.Op{Tag: rtl.OpBinary, Lhs: productReg, BinOp: rhif.Mul, A: wideCastReg, B: wideStrideLit}, loc)

		truncReg := l.freshReg(rtl.RegisterKind{Signed: false, Width: l2})
		l.emit(rtl.Op{Tag: rtl.OpCast, Lhs: truncReg, CastArg: productReg, CastKind: rtl.CastResize, CastLen: l2}, loc)

		sumReg := l.freshReg(rtl.RegisterKind{Signed: false, Width: l2})
		l.emit(rtl.Op{Tag: rtl.OpBinary, Lhs: sumReg, BinOp: rhif.Add, A: acc, B: truncReg}, loc)
		acc = sumReg
	}

	return acc, baseRange.Len(), nil
}

func (l *lowerer) lowerDynamicIndex(lop rhif.LocatedOp) error {
	op := lop.Op
	origKind, ok := l.src.KindOf(op.Orig)
	if !ok {
		return errUnknownKind("dynamic index")
	}
	arg, err := l.operand(op.Orig)
	if err != nil {
		return err
	}
	offset, ln, err := l.offsetAndLen(origKind, op.Path, lop)
	if err != nil {
		return err
	}
	lhs, err := l.operand(op.Lhs)
	if err != nil {
		return err
	}
	l.emit(rtl.Op{Tag: rtl.OpDynamicIndex, Lhs: lhs, Arg: arg, Offset: offset, Len: ln}, lop.Loc)
	return nil
}

func (l *lowerer) lowerDynamicSplice(lop rhif.LocatedOp) error {
	op := lop.Op
	origKind, ok := l.src.KindOf(op.Orig)
	if !ok {
		return errUnknownKind("dynamic splice")
	}
	arg, err := l.operand(op.Orig)
	if err != nil {
		return err
	}
	offset, ln, err := l.offsetAndLen(origKind, op.Path, lop)
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
	l.emit(rtl.Op{Tag: rtl.OpDynamicSplice, Lhs: lhs, Arg: arg, Offset: offset, Len: ln, Value: val}, lop.Loc)
	return nil
}
