// Package mirjson is the CLI's wire format for feeding a MIR Object into
// pkg/infer: the real elaborator (out of scope per spec.md §1, "front-end
// parsing... not specified") hands pkg/infer a MIR whose slots already
// carry a mix of concrete and free-variable TypeIds. This package instead
// lets a CLI caller (or a test fixture) describe every slot with a
// concrete kind.Kind up front — a "generic integer" literal is spelled
// with a null kind — and builds the mir.Object by feeding each one through
// mir.UnifyContext.FromKind, so the same unifier that the real elaborator
// would drive still does the work; only the starting point is simplified.
package mirjson

import (
	"encoding/json"
	"fmt"

	"github.com/rhdl/rhdlcore/pkg/kind"
	"github.com/rhdl/rhdlcore/pkg/mir"
	"github.com/rhdl/rhdlcore/pkg/path"
	"github.com/rhdl/rhdlcore/pkg/symtab"
)

// Slot mirrors path.Slot with a human-readable Kind discriminator.
type Slot struct {
	Kind string `json:"kind"` // "register" | "literal" | "empty"
	ID   int    `json:"id,omitempty"`
}

func (s Slot) toSlot() (path.Slot, error) {
	switch s.Kind {
	case "register":
		return path.Register(s.ID), nil
	case "literal":
		return path.Literal(s.ID), nil
	case "empty", "":
		return path.EmptySlot(), nil
	default:
		return path.Slot{}, fmt.Errorf("mirjson: unknown slot kind %q", s.Kind)
	}
}

func fromSlot(s path.Slot) Slot {
	switch s.Kind {
	case path.SlotRegister:
		return Slot{Kind: "register", ID: s.ID}
	case path.SlotLiteral:
		return Slot{Kind: "literal", ID: s.ID}
	default:
		return Slot{Kind: "empty"}
	}
}

// Literal mirrors mir.Literal; a nil Kind means "generic integer", the
// still-unbound shape spec.md §4.3's defaulting pass resolves to s32.
type Literal struct {
	Value int64           `json:"value"`
	Kind  json.RawMessage `json:"kind,omitempty"`
}

// PathElement mirrors path.PathElement.
type PathElement struct {
	Tag   string `json:"tag"`
	Int   int    `json:"int,omitempty"`
	Name  string `json:"name,omitempty"`
	Value int64  `json:"value,omitempty"`
	Slot  *Slot  `json:"slot,omitempty"`
}

var pathTagNames = map[path.ElementTag]string{
	path.Index: "index", path.TupleIndex: "tuple_index", path.Field: "field",
	path.EnumDiscriminant: "enum_discriminant", path.EnumPayload: "enum_payload",
	path.EnumPayloadByValue: "enum_payload_by_value", path.DynamicIndex: "dynamic_index",
	path.SignalValue: "signal_value",
}

var pathNamesToTag = func() map[string]path.ElementTag {
	m := make(map[string]path.ElementTag, len(pathTagNames))
	for t, n := range pathTagNames {
		m[n] = t
	}
	return m
}()

func (e PathElement) toElement() (path.PathElement, error) {
	tag, ok := pathNamesToTag[e.Tag]
	if !ok {
		return path.PathElement{}, fmt.Errorf("mirjson: unknown path element tag %q", e.Tag)
	}
	out := path.PathElement{Tag: tag, Int: e.Int, Name: e.Name, Value: e.Value}
	if e.Slot != nil {
		sl, err := e.Slot.toSlot()
		if err != nil {
			return path.PathElement{}, err
		}
		out.Slot = sl
	}
	return out, nil
}

func fromElement(e path.PathElement) PathElement {
	out := PathElement{Tag: pathTagNames[e.Tag], Int: e.Int, Name: e.Name, Value: e.Value}
	if e.Tag == path.DynamicIndex {
		s := fromSlot(e.Slot)
		out.Slot = &s
	}
	return out
}

// Path mirrors path.Path.
type Path struct {
	Elements []PathElement `json:"elements,omitempty"`
}

func (p Path) toPath() (path.Path, error) {
	out := path.Path{Elements: make([]path.PathElement, len(p.Elements))}
	for i, e := range p.Elements {
		el, err := e.toElement()
		if err != nil {
			return path.Path{}, err
		}
		out.Elements[i] = el
	}
	return out, nil
}

func fromPath(p path.Path) Path {
	out := Path{Elements: make([]PathElement, len(p.Elements))}
	for i, e := range p.Elements {
		out.Elements[i] = fromElement(e)
	}
	return out
}

// CaseArm mirrors mir.CaseArm. Wild marks a default/catch-all arm; Test is
// omitted (left as the empty slot) when Wild is true.
type CaseArm struct {
	Test Slot `json:"test"`
	Wild bool `json:"wild,omitempty"`
	Body Slot `json:"body"`
}

// FieldValue mirrors mir.FieldValue (its Ty field is diagnostics-only in
// the core and is not round-tripped here).
type FieldValue struct {
	Name string `json:"name"`
	Slot Slot   `json:"slot"`
}

// Op mirrors mir.Op. Exactly one payload group is meaningful, selected by
// Tag, exactly as in the core IR.
type Op struct {
	Tag string `json:"tag"`
	Lhs Slot   `json:"lhs"`

	Elems []Slot `json:"elems,omitempty"`
	N     int    `json:"n,omitempty"`

	Len int `json:"len,omitempty"`

	Src Slot `json:"src,omitempty"`
	// Color names the Retime target clock.
	Color string `json:"color,omitempty"`

	BinOp string `json:"bin_op,omitempty"`
	A     Slot   `json:"a,omitempty"`
	B     Slot   `json:"b,omitempty"`

	UnOp string `json:"un_op,omitempty"`
	X    Slot   `json:"x,omitempty"`

	Cond Slot `json:"cond,omitempty"`
	T    Slot `json:"t,omitempty"`
	F    Slot `json:"f,omitempty"`

	Disc Slot      `json:"disc,omitempty"`
	Arms []CaseArm `json:"arms,omitempty"`

	Path  *Path `json:"path,omitempty"`
	Orig  Slot  `json:"orig,omitempty"`
	Subst Slot  `json:"subst,omitempty"`

	// Template names the target Struct/Enum kind for Struct/Enum
	// construction. TargetKind names the Option/Result kind a Wrap op
	// wraps its payload into.
	Template   json.RawMessage `json:"template,omitempty"`
	TargetKind json.RawMessage `json:"target_kind,omitempty"`
	Fields     []FieldValue    `json:"fields,omitempty"`
	Rest       Slot            `json:"rest,omitempty"`
	HasRest    bool            `json:"has_rest,omitempty"`
	Variant    string          `json:"variant,omitempty"`

	Callee string `json:"callee,omitempty"`
	Args   []Slot `json:"args,omitempty"`

	WrapOp string `json:"wrap_op,omitempty"`

	Text string `json:"text,omitempty"`
}

var opTagNames = map[mir.OpTag]string{
	mir.OpArray: "array", mir.OpAsBits: "as_bits", mir.OpAsSigned: "as_signed",
	mir.OpAssign: "assign", mir.OpBinary: "binary", mir.OpCase: "case",
	mir.OpComment: "comment", mir.OpEnum: "enum", mir.OpExec: "exec",
	mir.OpIndex: "index", mir.OpNoop: "noop", mir.OpResize: "resize",
	mir.OpRepeat: "repeat", mir.OpRetime: "retime", mir.OpSelect: "select",
	mir.OpSplice: "splice", mir.OpStruct: "struct", mir.OpTuple: "tuple",
	mir.OpUnary: "unary", mir.OpWrap: "wrap",
}
var opNamesToTag = invert(opTagNames)

var binOpNames = map[mir.BinOp]string{
	mir.Add: "add", mir.SubOp: "sub", mir.Mul: "mul", mir.BitAnd: "bit_and",
	mir.BitOr: "bit_or", mir.BitXor: "bit_xor", mir.Shl: "shl", mir.Shr: "shr",
	mir.Eq: "eq", mir.Neq: "neq", mir.Lt: "lt", mir.Le: "le", mir.Gt: "gt", mir.Ge: "ge",
}
var binOpNamesToTag = invert(binOpNames)

var unOpNames = map[mir.UnOp]string{
	mir.Neg: "neg", mir.Not: "not", mir.All: "all", mir.Any: "any",
	mir.XorReduce: "xor_reduce", mir.ToSigned: "to_signed", mir.ToUnsigned: "to_unsigned",
}
var unOpNamesToTag = invert(unOpNames)

var wrapOpNames = map[mir.WrapOp]string{
	mir.WrapSome: "some", mir.WrapNone: "none", mir.WrapOk: "ok", mir.WrapErr: "err",
}
var wrapOpNamesToTag = invert(wrapOpNames)

func invert[K, V comparable](m map[K]V) map[V]K {
	out := make(map[V]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// Object mirrors mir.Object.
type Object struct {
	FnId      string             `json:"fn_id"`
	Name      string             `json:"name"`
	Arguments []Slot             `json:"arguments,omitempty"`
	Return    Slot               `json:"return"`
	Literals  map[string]Literal         `json:"literals,omitempty"`
	Kinds     map[string]json.RawMessage `json:"kinds,omitempty"`
	Ops       []Op                       `json:"ops,omitempty"`
	Externals map[string]Object  `json:"externals,omitempty"`
}

// Decode parses a JSON-encoded Object into a live mir.Object, building a
// fresh mir.UnifyContext and seeding every declared slot's TypeId with
// mir.UnifyContext.FromKind.
// Decode also returns the UnifyContext every TypeId in the returned
// Object's Kind/Literals maps was allocated from. Callers must run
// inference with that same context (pkg/infer.InferWithContext), not
// pkg/infer.Infer, or the returned TypeId handles address the wrong arena.
func Decode(data []byte) (*mir.Object, *mir.UnifyContext, error) {
	var doc Object
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, err
	}
	ctx := mir.NewUnifyContext()
	obj, err := decodeObject(doc, ctx)
	if err != nil {
		return nil, nil, err
	}
	return obj, ctx, nil
}

func decodeObject(doc Object, ctx *mir.UnifyContext) (*mir.Object, error) {
	obj := mir.NewObject(symtab.FunctionId(doc.FnId), doc.Name)

	for id, raw := range doc.Kinds {
		n, err := atoi(id)
		if err != nil {
			return nil, err
		}
		k, err := kind.DecodeJSON(raw)
		if err != nil {
			return nil, err
		}
		obj.Kind[n] = ctx.FromKind(0, k)
	}
	for id, lit := range doc.Literals {
		n, err := atoi(id)
		if err != nil {
			return nil, err
		}
		if len(lit.Kind) == 0 || string(lit.Kind) == "null" {
			obj.Literals[n] = mir.Literal{Value: lit.Value, Ty: ctx.TyInteger(0)}
			continue
		}
		k, err := kind.DecodeJSON(lit.Kind)
		if err != nil {
			return nil, err
		}
		obj.Literals[n] = mir.Literal{Value: lit.Value, Ty: ctx.FromKind(0, k)}
	}
	for _, s := range doc.Arguments {
		sl, err := s.toSlot()
		if err != nil {
			return nil, err
		}
		obj.Arguments = append(obj.Arguments, sl)
	}
	ret, err := doc.Return.toSlot()
	if err != nil {
		return nil, err
	}
	obj.Return = ret

	for _, jop := range doc.Ops {
		op, err := decodeOp(jop, ctx)
		if err != nil {
			return nil, err
		}
		obj.Ops = append(obj.Ops, mir.LocatedOp{Op: op, Loc: symtab.SourceLocation{FuncId: obj.FnId}})
	}
	for eid, child := range doc.Externals {
		childObj, err := decodeObject(child, ctx)
		if err != nil {
			return nil, err
		}
		obj.Externals[mir.ExternalId(eid)] = childObj
	}
	return obj, nil
}

func decodeOp(j Op, ctx *mir.UnifyContext) (mir.Op, error) {
	tag, ok := opNamesToTag[j.Tag]
	if !ok {
		return mir.Op{}, fmt.Errorf("mirjson: unknown op tag %q", j.Tag)
	}
	out := mir.Op{Tag: tag, N: j.N, Len: j.Len, HasRest: j.HasRest, Variant: j.Variant,
		Callee: mir.ExternalId(j.Callee), Text: j.Text}
	var err error
	if out.Lhs, err = j.Lhs.toSlot(); err != nil {
		return mir.Op{}, err
	}
	if out.Elems, err = toSlots(j.Elems); err != nil {
		return mir.Op{}, err
	}
	if out.Src, err = j.Src.toSlot(); err != nil {
		return mir.Op{}, err
	}
	if j.Color != "" {
		col, ok := kind.ParseColor(j.Color)
		if !ok {
			return mir.Op{}, fmt.Errorf("mirjson: unknown color %q", j.Color)
		}
		out.Color = ctx.TyClock(0, col)
	}
	if j.BinOp != "" {
		b, ok := binOpNamesToTag[j.BinOp]
		if !ok {
			return mir.Op{}, fmt.Errorf("mirjson: unknown bin_op %q", j.BinOp)
		}
		out.BinOp = b
	}
	if out.A, err = j.A.toSlot(); err != nil {
		return mir.Op{}, err
	}
	if out.B, err = j.B.toSlot(); err != nil {
		return mir.Op{}, err
	}
	if j.UnOp != "" {
		u, ok := unOpNamesToTag[j.UnOp]
		if !ok {
			return mir.Op{}, fmt.Errorf("mirjson: unknown un_op %q", j.UnOp)
		}
		out.UnOp = u
	}
	if out.X, err = j.X.toSlot(); err != nil {
		return mir.Op{}, err
	}
	if out.Cond, err = j.Cond.toSlot(); err != nil {
		return mir.Op{}, err
	}
	if out.T, err = j.T.toSlot(); err != nil {
		return mir.Op{}, err
	}
	if out.F, err = j.F.toSlot(); err != nil {
		return mir.Op{}, err
	}
	if out.Disc, err = j.Disc.toSlot(); err != nil {
		return mir.Op{}, err
	}
	for _, a := range j.Arms {
		body, err := a.Body.toSlot()
		if err != nil {
			return mir.Op{}, err
		}
		if a.Wild {
			out.Arms = append(out.Arms, mir.CaseArm{Wild: true, Body: body})
			continue
		}
		test, err := a.Test.toSlot()
		if err != nil {
			return mir.Op{}, err
		}
		out.Arms = append(out.Arms, mir.CaseArm{Test: test, Body: body})
	}
	if j.Path != nil {
		if out.Path, err = j.Path.toPath(); err != nil {
			return mir.Op{}, err
		}
	}
	if out.Orig, err = j.Orig.toSlot(); err != nil {
		return mir.Op{}, err
	}
	if out.Subst, err = j.Subst.toSlot(); err != nil {
		return mir.Op{}, err
	}
	if len(j.Template) > 0 && string(j.Template) != "null" {
		k, err := kind.DecodeJSON(j.Template)
		if err != nil {
			return mir.Op{}, err
		}
		out.Template = ctx.FromKind(0, k)
	}
	if len(j.TargetKind) > 0 && string(j.TargetKind) != "null" {
		k, err := kind.DecodeJSON(j.TargetKind)
		if err != nil {
			return mir.Op{}, err
		}
		out.Arg = ctx.FromKind(0, k)
	}
	for _, f := range j.Fields {
		sl, err := f.Slot.toSlot()
		if err != nil {
			return mir.Op{}, err
		}
		out.Fields = append(out.Fields, mir.FieldValue{Name: f.Name, Slot: sl})
	}
	if out.Rest, err = j.Rest.toSlot(); err != nil {
		return mir.Op{}, err
	}
	if out.Args, err = toSlots(j.Args); err != nil {
		return mir.Op{}, err
	}
	if j.WrapOp != "" {
		w, ok := wrapOpNamesToTag[j.WrapOp]
		if !ok {
			return mir.Op{}, fmt.Errorf("mirjson: unknown wrap_op %q", j.WrapOp)
		}
		out.WrapOp = w
	}
	return out, nil
}

func toSlots(ss []Slot) ([]path.Slot, error) {
	out := make([]path.Slot, len(ss))
	for i, s := range ss {
		sl, err := s.toSlot()
		if err != nil {
			return nil, err
		}
		out[i] = sl
	}
	return out, nil
}

func atoi(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	if err != nil {
		return 0, fmt.Errorf("mirjson: bad register/literal id %q: %w", s, err)
	}
	return n, nil
}
