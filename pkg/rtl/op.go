// Package rtl is the flat, bit-vector-only IR that pkg/lower produces from a
// fully clock-checked RHIF Object: every composite shape (Struct, Enum,
// Array, Tuple, Signal) has been erased down to Concat/Splice/Index chains
// over plain registers and literals, ready for a Verilog backend to walk
// without ever consulting pkg/kind again.
package rtl

import (
	"fmt"

	"github.com/rhdl/rhdlcore/pkg/kind"
	"github.com/rhdl/rhdlcore/pkg/path"
	"github.com/rhdl/rhdlcore/pkg/rhif"
	"github.com/rhdl/rhdlcore/pkg/symtab"
)

// RegisterId identifies a register local to one Object's own numbering.
// Distinct from rhif's RHIF register ids: lowering allocates a fresh,
// disjoint id space per Object, remapping as it inlines Exec callees.
type RegisterId int

// OperandTag discriminates an Operand's variant.
type OperandTag uint8

const (
	OperandRegister OperandTag = iota
	OperandLiteral
)

// Operand is either a Register or a Literal reference, both by id into the
// owning Object's RegisterKind/Literals maps.
type Operand struct {
	Tag OperandTag
	ID  int
}

func Reg(id int) Operand { return Operand{Tag: OperandRegister, ID: id} }
func Lit(id int) Operand { return Operand{Tag: OperandLiteral, ID: id} }

func (o Operand) String() string {
	switch o.Tag {
	case OperandRegister:
		return fmt.Sprintf("r%d", o.ID)
	default:
		return fmt.Sprintf("l%d", o.ID)
	}
}

// RegisterKind gives a flat register's width and sign; RTL never carries a
// full kind.Kind past lowering.
type RegisterKind struct {
	Signed bool
	Width  int
}

// BitString is a literal's concrete bit pattern.
type BitString struct {
	Bits   []kind.BitX
	Signed bool
}

// CastKind selects which Cast form an RTL Cast op performs.
type CastKind uint8

const (
	CastResize CastKind = iota
	CastSigned
	CastUnsigned
)

// CaseTestTag discriminates a Case arm's test.
type CaseTestTag uint8

const (
	CaseLiteral CaseTestTag = iota
	CaseWild
)

// CaseArm maps a literal (or wildcard) test to a result Operand.
type CaseArm struct {
	Test    CaseTestTag
	Literal int // valid when Test == CaseLiteral
	Value   Operand
}

// OpTag discriminates an Op's variant.
type OpTag uint8

const (
	OpAssign OpTag = iota
	OpBinary
	OpUnary
	OpSelect
	OpCase
	OpCast
	OpConcat
	OpIndex
	OpSplice
	OpDynamicIndex
	OpDynamicSplice
	OpComment
)

// Op is one flat RTL instruction. Exactly one payload group is meaningful,
// selected by Tag, mirroring rhif.Op's single-struct-many-fields layout.
type Op struct {
	Tag OpTag
	Lhs Operand

	// Assign, Retime (already folded into Assign by lowering)
	Src Operand

	// Binary
	BinOp rhif.BinOp
	A, B  Operand

	// Unary
	UnOp rhif.UnOp
	X    Operand

	// Select
	Cond, T, F Operand

	// Case
	Disc Operand
	Arms []CaseArm

	// Cast
	CastKind CastKind
	CastLen  int
	CastArg  Operand

	// Concat
	Elems []Operand

	// Index, Splice (static)
	Arg   Operand
	Range path.Range
	Orig  Operand
	Value Operand

	// DynamicIndex, DynamicSplice
	Offset Operand
	Len    int

	// Comment
	Text string
}

// LocatedOp pairs an Op with the source location that produced it.
type LocatedOp struct {
	Op  Op
	Loc symtab.SourceLocation
}
