package clockcheck_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rhdl/rhdlcore/pkg/clockcheck"
	"github.com/rhdl/rhdlcore/pkg/diag"
	"github.com/rhdl/rhdlcore/pkg/kind"
	"github.com/rhdl/rhdlcore/pkg/path"
	"github.com/rhdl/rhdlcore/pkg/rhif"
	"github.com/rhdl/rhdlcore/pkg/symtab"
)

func binaryObject(aKind, bKind, lhsKind *kind.Kind) *rhif.Object {
	obj := rhif.NewObject("fn1", "adder")
	obj.Kinds[0] = aKind
	obj.Kinds[1] = bKind
	obj.Kinds[2] = lhsKind
	obj.Ops = append(obj.Ops, rhif.LocatedOp{
		Op: rhif.Op{
			Tag:   rhif.OpBinary,
			Lhs:   path.Register(2),
			BinOp: rhif.Add,
			A:     path.Register(0),
			B:     path.Register(1),
		},
		Loc: symtab.SourceLocation{FuncId: "fn1", NodeId: 7},
	})
	return obj
}

var _ = Describe("clock-domain checking", func() {
	Context("given two operands in the same clock domain", func() {
		It("passes", func() {
			red := kind.MakeSignal(kind.MakeBits(4), kind.Red)
			obj := binaryObject(red, red, red)
			Expect(clockcheck.Check(obj)).To(Succeed())
		})
	})

	Context("given operands tagged with different clock colors", func() {
		It("reports a BinaryOperationClockMismatch naming both colors", func() {
			red := kind.MakeSignal(kind.MakeBits(4), kind.Red)
			green := kind.MakeSignal(kind.MakeBits(4), kind.Green)
			obj := binaryObject(red, green, red)

			err := clockcheck.Check(obj)
			Expect(err).To(HaveOccurred())

			var clockErr *diag.ClockError
			Expect(errorsAs(err, &clockErr)).To(BeTrue())
			Expect(clockErr.Kind).To(Equal(diag.BinaryOperationClockMismatch))

			var names []string
			for _, el := range clockErr.Elements {
				names = append(names, el.Name+"="+el.Color.String())
			}
			Expect(names).To(ContainElement("a=Red"))
			Expect(names).To(ContainElement("b=Green"))
		})
	})

	Context("given a plain (non-Signal) operand alongside a Signal operand", func() {
		It("does not constrain the plain operand's absent clock", func() {
			red := kind.MakeSignal(kind.MakeBits(4), kind.Red)
			plain := kind.MakeBits(4)
			obj := binaryObject(red, plain, red)
			Expect(clockcheck.Check(obj)).To(Succeed())
		})
	})

	Context("given a call whose argument and return slots disagree on clock color", func() {
		It("reports an ExternalClockMismatch", func() {
			red := kind.MakeSignal(kind.MakeBits(4), kind.Red)
			green := kind.MakeSignal(kind.MakeBits(4), kind.Green)

			callee := rhif.NewObject("callee", "inner")
			callee.Arguments = []symtab.RegisterId{"p0"}
			callee.Kinds[0] = green

			caller := rhif.NewObject("fn1", "outer")
			caller.Kinds[0] = red
			caller.Kinds[1] = green
			caller.Externals = map[rhif.ExternalId]*rhif.Object{"callee": callee}
			caller.Ops = append(caller.Ops, rhif.LocatedOp{
				Op: rhif.Op{
					Tag:    rhif.OpExec,
					Lhs:    path.Register(1),
					Callee: "callee",
					Args:   []path.Slot{path.Register(0)},
				},
				Loc: symtab.SourceLocation{FuncId: "fn1", NodeId: 1},
			})

			err := clockcheck.Check(caller)
			Expect(err).To(HaveOccurred())
			var clockErr *diag.ClockError
			Expect(errorsAs(err, &clockErr)).To(BeTrue())
			Expect(clockErr.Kind).To(Equal(diag.ExternalClockMismatch))
		})
	})
})

func caseObject(testKind, bodyKind, lhsKind *kind.Kind, wild bool) *rhif.Object {
	obj := rhif.NewObject("fn1", "matcher")
	obj.Kinds[0] = kind.MakeBits(2)
	obj.Kinds[1] = testKind
	obj.Kinds[2] = bodyKind
	obj.Kinds[3] = lhsKind
	arm := rhif.CaseArm{Test: path.Register(1), Body: path.Register(2)}
	if wild {
		arm = rhif.CaseArm{Wild: true, Body: path.Register(2)}
	}
	obj.Ops = append(obj.Ops, rhif.LocatedOp{
		Op: rhif.Op{
			Tag:  rhif.OpCase,
			Lhs:  path.Register(3),
			Disc: path.Register(0),
			Arms: []rhif.CaseArm{arm},
		},
		Loc: symtab.SourceLocation{FuncId: "fn1", NodeId: 9},
	})
	return obj
}

var _ = Describe("Case clock-domain checking", func() {
	Context("given a test slot and body slot in the same clock domain", func() {
		It("passes", func() {
			red := kind.MakeSignal(kind.MakeBits(2), kind.Red)
			obj := caseObject(red, red, red, false)
			Expect(clockcheck.Check(obj)).To(Succeed())
		})
	})

	Context("given a test slot and body slot tagged with different clock colors", func() {
		It("reports a CaseClockMismatch naming both colors", func() {
			red := kind.MakeSignal(kind.MakeBits(2), kind.Red)
			green := kind.MakeSignal(kind.MakeBits(4), kind.Green)
			obj := caseObject(red, green, green, false)

			err := clockcheck.Check(obj)
			Expect(err).To(HaveOccurred())

			var clockErr *diag.ClockError
			Expect(errorsAs(err, &clockErr)).To(BeTrue())
			Expect(clockErr.Kind).To(Equal(diag.CaseClockMismatch))

			var names []string
			for _, el := range clockErr.Elements {
				names = append(names, el.Name+"="+el.Color.String())
			}
			Expect(names).To(ContainElement("test0=Red"))
			Expect(names).To(ContainElement("body0=Green"))
		})
	})

	Context("given a Wild arm whose absent test slot carries no clock constraint", func() {
		It("only checks the body and lhs colors", func() {
			green := kind.MakeSignal(kind.MakeBits(4), kind.Green)
			obj := caseObject(nil, green, green, true)
			Expect(clockcheck.Check(obj)).To(Succeed())
		})
	})
})

func errorsAs(err error, target **diag.ClockError) bool {
	if ce, ok := err.(*diag.ClockError); ok {
		*target = ce
		return true
	}
	return false
}
