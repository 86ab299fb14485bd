// Package rhif implements the Reduced Hardware Intermediate Form: the
// pattern-free, SSA-style IR that MIR is promoted to once type inference
// (pkg/infer) has resolved every slot to a concrete Kind. RHIF is the input
// to clock-domain checking (pkg/clockcheck) and RTL lowering (pkg/lower).
package rhif

import (
	"github.com/rhdl/rhdlcore/pkg/kind"
	"github.com/rhdl/rhdlcore/pkg/path"
	"github.com/rhdl/rhdlcore/pkg/symtab"
)

// Slot is re-exported from pkg/path, which owns the definition to avoid a
// pkg/path <-> pkg/rhif import cycle (Path.DynamicIndex references a Slot,
// and pkg/rhif depends on pkg/path for bit-range resolution).
type Slot = path.Slot

type BinOp uint8

const (
	Add BinOp = iota
	Sub
	Mul
	BitAnd
	BitOr
	BitXor
	Shl
	Shr
	Eq
	Neq
	Lt
	Le
	Gt
	Ge
)

type UnOp uint8

const (
	Neg UnOp = iota
	Not
	All
	Any
	XorReduce
	ToSigned
	ToUnsigned
)

type WrapOp uint8

const (
	WrapSome WrapOp = iota
	WrapNone
	WrapOk
	WrapErr
)

// FieldValue pairs a struct/enum field name with the slot supplying its
// value.
type FieldValue struct {
	Name string
	Slot Slot
}

// CaseArm maps a literal test slot to a result slot. Lowering (pkg/lower)
// requires a non-Wild arm's Test to resolve to a literal; a non-literal
// test slot on a non-Wild arm is an ICE (diag.MatchPatternValueMustBeLiteral).
// Wild marks a default/catch-all arm, lowered to rtl.CaseWild; Test is
// unused on a Wild arm.
type CaseArm struct {
	Test Slot
	Wild bool
	Body Slot
}

type OpTag uint8

const (
	OpArray OpTag = iota
	OpAsBits
	OpAsSigned
	OpAssign
	OpBinary
	OpCase
	OpComment
	OpEnum
	OpExec
	OpIndex
	OpNoop
	OpResize
	OpRepeat
	OpRetime
	OpSelect
	OpSplice
	OpStruct
	OpTuple
	OpUnary
	OpWrap
)

// ExternalId identifies a callee Object referenced by an Exec op.
type ExternalId string

// Op is one concrete, fully-typed IR instruction. As in the MIR encoding,
// exactly one payload group is meaningful, selected by Tag.
type Op struct {
	Tag OpTag
	Lhs Slot

	Elems []Slot
	N     int

	// AsBits, AsSigned, Resize, and Wrap (the Option/Result payload's
	// target kind) share ArgKind/Len.
	ArgKind *kind.Kind
	Len     int

	Src   Slot
	Color kind.Color

	BinOp BinOp
	A, B  Slot

	UnOp UnOp
	X    Slot

	Cond, T, F Slot

	Disc Slot
	Arms []CaseArm

	Path  path.Path
	Orig  Slot
	Subst Slot

	Template *kind.Kind
	Fields   []FieldValue
	Rest     Slot
	HasRest  bool
	Variant  string

	Callee ExternalId
	Args   []Slot

	WrapOp WrapOp

	Text string
}

// LocatedOp pairs an Op with the source location that produced it.
type LocatedOp struct {
	Op  Op
	Loc symtab.SourceLocation
}

// Object is a fully-inferred function body: every register has a concrete
// Kind, every literal a concrete TypedBits.
type Object struct {
	FnId      symtab.FunctionId
	Name      string
	Arguments []symtab.RegisterId
	Return    Slot
	Literals  map[int]kind.TypedBits
	Kinds     map[int]*kind.Kind // register id -> Kind
	Ops       []LocatedOp
	Externals map[ExternalId]*Object
	Symbols   *symtab.SymbolMap
}

// NewObject returns an empty Object.
func NewObject(fnId symtab.FunctionId, name string) *Object {
	return &Object{
		FnId:      fnId,
		Name:      name,
		Literals:  make(map[int]kind.TypedBits),
		Kinds:     make(map[int]*kind.Kind),
		Externals: make(map[ExternalId]*Object),
		Symbols:   symtab.NewSymbolMap(),
	}
}

// KindOf resolves the Kind of any Slot against this Object: Register kinds
// come from Kinds, Literal kinds from the literal's own TypedBits, and
// Empty has no Kind.
func (o *Object) KindOf(s Slot) (*kind.Kind, bool) {
	switch s.Kind {
	case path.SlotRegister:
		k, ok := o.Kinds[s.ID]
		return k, ok
	case path.SlotLiteral:
		lit, ok := o.Literals[s.ID]
		if !ok {
			return nil, false
		}
		return lit.Kind, true
	default:
		return nil, false
	}
}
