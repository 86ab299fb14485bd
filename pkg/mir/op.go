package mir

import (
	"github.com/rhdl/rhdlcore/pkg/path"
	"github.com/rhdl/rhdlcore/pkg/symtab"
)

// Slot is re-exported from pkg/path: a Register, a Literal, or Empty.
type Slot = path.Slot

// BinOp enumerates the binary operators MIR/RHIF ops carry.
type BinOp uint8

const (
	Add BinOp = iota
	SubOp
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

// UnOp enumerates the unary operators MIR/RHIF ops carry.
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

// WrapOp selects which Option/Result constructor a Wrap op applies.
type WrapOp uint8

const (
	WrapSome WrapOp = iota
	WrapNone
	WrapOk
	WrapErr
)

// FieldValue pairs a struct/enum field name with the slot supplying its
// value, for Struct/Enum construction ops.
type FieldValue struct {
	Name string
	Ty   TypeId // field's own type within the template, for diagnostics
	Slot Slot
}

// CaseArm maps a literal test slot (the ICE MatchPatternValueMustBeLiteral
// guards against anything else reaching lowering) to a result slot. Wild
// marks a default/catch-all arm: Test is unused (left as the empty slot)
// and is not unified against the discriminant's type.
type CaseArm struct {
	Test Slot
	Wild bool
	Body Slot
}

// OpTag discriminates an Op's variant.
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

// ExternalId identifies a callee Object in an Exec op.
type ExternalId string

// Op is a single pattern-free, SSA-style assignment `lhs <- ...`. Exactly
// one of the typed payload fields is meaningful, selected by Tag; this
// mirrors the teacher's single-struct-many-fields op representation rather
// than an interface per opcode, since every pass needs to switch on Tag
// anyway.
type Op struct {
	Tag OpTag
	Lhs Slot

	// Array, Tuple, Repeat(Elems[0], n)
	Elems []Slot
	N     int // Repeat count

	// AsBits, AsSigned, Resize share Arg/Len for the target shape; Wrap
	// reuses Arg for the Option/Result payload's target type and Src for
	// the value being wrapped.
	Arg TypeId
	Len int

	// Assign, Retime, Wrap
	Src   Slot
	Color TypeId // Retime target clock, as a Const(Clock) TypeId

	// Binary
	BinOp BinOp
	A, B  Slot

	// Unary
	UnOp UnOp
	X    Slot

	// Select
	Cond, T, F Slot

	// Case
	Disc Slot
	Arms []CaseArm

	// Index, Splice
	Path  path.Path
	Orig  Slot
	Subst Slot

	// Struct, Enum construction
	Template TypeId
	Fields   []FieldValue
	Rest     Slot
	HasRest  bool
	Variant  string // Enum only

	// Exec
	Callee ExternalId
	Args   []Slot

	// Wrap
	WrapOp WrapOp

	// Comment
	Text string
}

// LocatedOp pairs an Op with the source location that produced it.
type LocatedOp struct {
	Op  Op
	Loc symtab.SourceLocation
}

// Literal is a MIR literal value: its numeric payload plus the TypeId
// inference will resolve (possibly still generic for a bare integer
// literal awaiting defaulting).
type Literal struct {
	Value int64
	Ty    TypeId
}

// Object is a MIR function body: structurally identical to an RHIF Object
// (pkg/rhif.Object) but with every slot's shape still a TypeId rather than
// a resolved Kind.
type Object struct {
	FnId      symtab.FunctionId
	Name      string
	Arguments []Slot
	Return    Slot
	Literals  map[int]Literal
	Kind      map[int]TypeId // register id -> TypeId
	Ops       []LocatedOp
	Externals map[ExternalId]*Object
	Symbols   *symtab.SymbolMap
}

// NewObject returns an empty Object ready for an elaborator to populate.
func NewObject(fnId symtab.FunctionId, name string) *Object {
	return &Object{
		FnId:      fnId,
		Name:      name,
		Literals:  make(map[int]Literal),
		Kind:      make(map[int]TypeId),
		Externals: make(map[ExternalId]*Object),
		Symbols:   symtab.NewSymbolMap(),
	}
}
