package rtl

import "github.com/rhdl/rhdlcore/pkg/symtab"

// Object is one fully-lowered function body: every register has a plain
// RegisterKind (no Kind.Struct/Enum/Array survives), every op is one of the
// flat opcodes in op.go.
type Object struct {
	FnId         symtab.FunctionId
	Name         string
	Arguments    []*RegisterId // nil entry: the source argument was zero-width and carries no register
	Return       Operand
	RegisterKind map[int]RegisterKind
	Literals     map[int]BitString
	Ops          []LocatedOp
	Symbols      *symtab.SymbolMap
}

// NewObject returns an empty Object ready for a lowering pass to populate.
func NewObject(fnId symtab.FunctionId, name string) *Object {
	return &Object{
		FnId:         fnId,
		Name:         name,
		RegisterKind: make(map[int]RegisterKind),
		Literals:     make(map[int]BitString),
		Symbols:      symtab.NewSymbolMap(),
	}
}
