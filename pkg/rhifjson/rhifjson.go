// Package rhifjson is the CLI's wire format for a fully-inferred RHIF
// Object: unlike pkg/mirjson, no UnifyContext is involved since every slot
// already carries a concrete kind.Kind, so the only custom plumbing needed
// is routing each *kind.Kind through kind.DecodeJSON rather than
// encoding/json's default struct unmarshal, to preserve the intern pool's
// pointer-identity invariant.
package rhifjson

import (
	"encoding/json"
	"fmt"

	"github.com/rhdl/rhdlcore/pkg/kind"
	"github.com/rhdl/rhdlcore/pkg/path"
	"github.com/rhdl/rhdlcore/pkg/rhif"
	"github.com/rhdl/rhdlcore/pkg/symtab"
)

type slot struct {
	Kind string `json:"kind"`
	ID   int    `json:"id,omitempty"`
}

func (s slot) toSlot() (path.Slot, error) {
	switch s.Kind {
	case "register":
		return path.Register(s.ID), nil
	case "literal":
		return path.Literal(s.ID), nil
	case "empty", "":
		return path.EmptySlot(), nil
	default:
		return path.Slot{}, fmt.Errorf("rhifjson: unknown slot kind %q", s.Kind)
	}
}

func fromSlot(s path.Slot) slot {
	switch s.Kind {
	case path.SlotRegister:
		return slot{Kind: "register", ID: s.ID}
	case path.SlotLiteral:
		return slot{Kind: "literal", ID: s.ID}
	default:
		return slot{Kind: "empty"}
	}
}

type typedBits struct {
	Bits []kind.BitX     `json:"bits"`
	Kind json.RawMessage `json:"kind"`
}

type caseArm struct {
	Test slot `json:"test"`
	Wild bool `json:"wild,omitempty"`
	Body slot `json:"body"`
}

type fieldValue struct {
	Name string `json:"name"`
	Slot slot   `json:"slot"`
}

type op struct {
	Tag string `json:"tag"`
	Lhs slot   `json:"lhs"`

	Elems []slot `json:"elems,omitempty"`
	N     int    `json:"n,omitempty"`

	ArgKind json.RawMessage `json:"arg_kind,omitempty"`
	Len     int             `json:"len,omitempty"`

	Src   slot   `json:"src,omitempty"`
	Color string `json:"color,omitempty"`

	BinOp string `json:"bin_op,omitempty"`
	A, B  slot   `json:"a,omitempty"`

	UnOp string `json:"un_op,omitempty"`
	X    slot   `json:"x,omitempty"`

	Cond, T, F slot `json:"cond,omitempty"`

	Disc slot      `json:"disc,omitempty"`
	Arms []caseArm `json:"arms,omitempty"`

	Path  *pathDTO `json:"path,omitempty"`
	Orig  slot     `json:"orig,omitempty"`
	Subst slot     `json:"subst,omitempty"`

	Template json.RawMessage `json:"template,omitempty"`
	Fields   []fieldValue    `json:"fields,omitempty"`
	Rest     slot            `json:"rest,omitempty"`
	HasRest  bool            `json:"has_rest,omitempty"`
	Variant  string          `json:"variant,omitempty"`

	Callee string `json:"callee,omitempty"`
	Args   []slot `json:"args,omitempty"`

	WrapOp string `json:"wrap_op,omitempty"`

	Text string `json:"text,omitempty"`
}

type pathElement struct {
	Tag   string `json:"tag"`
	Int   int    `json:"int,omitempty"`
	Name  string `json:"name,omitempty"`
	Value int64  `json:"value,omitempty"`
	Slot  *slot  `json:"slot,omitempty"`
}

type pathDTO struct {
	Elements []pathElement `json:"elements,omitempty"`
}

var pathTagNames = map[path.ElementTag]string{
	path.Index: "index", path.TupleIndex: "tuple_index", path.Field: "field",
	path.EnumDiscriminant: "enum_discriminant", path.EnumPayload: "enum_payload",
	path.EnumPayloadByValue: "enum_payload_by_value", path.DynamicIndex: "dynamic_index",
	path.SignalValue: "signal_value",
}
var pathNamesToTag = invert(pathTagNames)

func (p pathDTO) toPath() (path.Path, error) {
	out := path.Path{Elements: make([]path.PathElement, len(p.Elements))}
	for i, e := range p.Elements {
		tag, ok := pathNamesToTag[e.Tag]
		if !ok {
			return path.Path{}, fmt.Errorf("rhifjson: unknown path element tag %q", e.Tag)
		}
		el := path.PathElement{Tag: tag, Int: e.Int, Name: e.Name, Value: e.Value}
		if e.Slot != nil {
			sl, err := e.Slot.toSlot()
			if err != nil {
				return path.Path{}, err
			}
			el.Slot = sl
		}
		out.Elements[i] = el
	}
	return out, nil
}

func fromPath(p path.Path) *pathDTO {
	out := &pathDTO{Elements: make([]pathElement, len(p.Elements))}
	for i, e := range p.Elements {
		pe := pathElement{Tag: pathTagNames[e.Tag], Int: e.Int, Name: e.Name, Value: e.Value}
		if e.Tag == path.DynamicIndex {
			s := fromSlot(e.Slot)
			pe.Slot = &s
		}
		out.Elements[i] = pe
	}
	return out
}

var opTagNames = map[rhif.OpTag]string{
	rhif.OpArray: "array", rhif.OpAsBits: "as_bits", rhif.OpAsSigned: "as_signed",
	rhif.OpAssign: "assign", rhif.OpBinary: "binary", rhif.OpCase: "case",
	rhif.OpComment: "comment", rhif.OpEnum: "enum", rhif.OpExec: "exec",
	rhif.OpIndex: "index", rhif.OpNoop: "noop", rhif.OpResize: "resize",
	rhif.OpRepeat: "repeat", rhif.OpRetime: "retime", rhif.OpSelect: "select",
	rhif.OpSplice: "splice", rhif.OpStruct: "struct", rhif.OpTuple: "tuple",
	rhif.OpUnary: "unary", rhif.OpWrap: "wrap",
}
var opNamesToTag = invert(opTagNames)

var binOpNames = map[rhif.BinOp]string{
	rhif.Add: "add", rhif.Sub: "sub", rhif.Mul: "mul", rhif.BitAnd: "bit_and",
	rhif.BitOr: "bit_or", rhif.BitXor: "bit_xor", rhif.Shl: "shl", rhif.Shr: "shr",
	rhif.Eq: "eq", rhif.Neq: "neq", rhif.Lt: "lt", rhif.Le: "le", rhif.Gt: "gt", rhif.Ge: "ge",
}
var binOpNamesToTag = invert(binOpNames)

var unOpNames = map[rhif.UnOp]string{
	rhif.Neg: "neg", rhif.Not: "not", rhif.All: "all", rhif.Any: "any",
	rhif.XorReduce: "xor_reduce", rhif.ToSigned: "to_signed", rhif.ToUnsigned: "to_unsigned",
}
var unOpNamesToTag = invert(unOpNames)

var wrapOpNames = map[rhif.WrapOp]string{
	rhif.WrapSome: "some", rhif.WrapNone: "none", rhif.WrapOk: "ok", rhif.WrapErr: "err",
}
var wrapOpNamesToTag = invert(wrapOpNames)

func invert[K, V comparable](m map[K]V) map[V]K {
	out := make(map[V]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

type object struct {
	FnId      string                 `json:"fn_id"`
	Name      string                 `json:"name"`
	Arguments []string               `json:"arguments,omitempty"`
	Return    slot                   `json:"return"`
	Literals  map[string]typedBits   `json:"literals,omitempty"`
	Kinds     map[string]json.RawMessage `json:"kinds,omitempty"`
	Ops       []op                   `json:"ops,omitempty"`
	Externals map[string]object      `json:"externals,omitempty"`
}

// Decode parses a JSON-encoded RHIF object into a live *rhif.Object.
func Decode(data []byte) (*rhif.Object, error) {
	var doc object
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return decodeObject(doc)
}

func decodeObject(doc object) (*rhif.Object, error) {
	obj := rhif.NewObject(symtab.FunctionId(doc.FnId), doc.Name)
	for id, raw := range doc.Kinds {
		n, err := atoi(id)
		if err != nil {
			return nil, err
		}
		k, err := kind.DecodeJSON(raw)
		if err != nil {
			return nil, err
		}
		obj.Kinds[n] = k
	}
	for id, lit := range doc.Literals {
		n, err := atoi(id)
		if err != nil {
			return nil, err
		}
		k, err := kind.DecodeJSON(lit.Kind)
		if err != nil {
			return nil, err
		}
		obj.Literals[n] = kind.TypedBits{Bits: lit.Bits, Kind: k}
	}
	for _, a := range doc.Arguments {
		obj.Arguments = append(obj.Arguments, symtab.RegisterId(a))
	}
	ret, err := doc.Return.toSlot()
	if err != nil {
		return nil, err
	}
	obj.Return = ret
	for _, jop := range doc.Ops {
		o, err := decodeOp(jop)
		if err != nil {
			return nil, err
		}
		obj.Ops = append(obj.Ops, rhif.LocatedOp{Op: o, Loc: symtab.SourceLocation{FuncId: obj.FnId}})
	}
	for eid, child := range doc.Externals {
		childObj, err := decodeObject(child)
		if err != nil {
			return nil, err
		}
		obj.Externals[rhif.ExternalId(eid)] = childObj
	}
	return obj, nil
}

func decodeOp(j op) (rhif.Op, error) {
	tag, ok := opNamesToTag[j.Tag]
	if !ok {
		return rhif.Op{}, fmt.Errorf("rhifjson: unknown op tag %q", j.Tag)
	}
	out := rhif.Op{Tag: tag, N: j.N, Len: j.Len, HasRest: j.HasRest, Variant: j.Variant,
		Callee: rhif.ExternalId(j.Callee), Text: j.Text}
	var err error
	if out.Lhs, err = j.Lhs.toSlot(); err != nil {
		return rhif.Op{}, err
	}
	if out.Elems, err = toSlots(j.Elems); err != nil {
		return rhif.Op{}, err
	}
	if len(j.ArgKind) > 0 && string(j.ArgKind) != "null" {
		if out.ArgKind, err = kind.DecodeJSON(j.ArgKind); err != nil {
			return rhif.Op{}, err
		}
	}
	if out.Src, err = j.Src.toSlot(); err != nil {
		return rhif.Op{}, err
	}
	if j.Color != "" {
		col, ok := kind.ParseColor(j.Color)
		if !ok {
			return rhif.Op{}, fmt.Errorf("rhifjson: unknown color %q", j.Color)
		}
		out.Color = col
	}
	if j.BinOp != "" {
		b, ok := binOpNamesToTag[j.BinOp]
		if !ok {
			return rhif.Op{}, fmt.Errorf("rhifjson: unknown bin_op %q", j.BinOp)
		}
		out.BinOp = b
	}
	if out.A, err = j.A.toSlot(); err != nil {
		return rhif.Op{}, err
	}
	if out.B, err = j.B.toSlot(); err != nil {
		return rhif.Op{}, err
	}
	if j.UnOp != "" {
		u, ok := unOpNamesToTag[j.UnOp]
		if !ok {
			return rhif.Op{}, fmt.Errorf("rhifjson: unknown un_op %q", j.UnOp)
		}
		out.UnOp = u
	}
	if out.X, err = j.X.toSlot(); err != nil {
		return rhif.Op{}, err
	}
	if out.Cond, err = j.Cond.toSlot(); err != nil {
		return rhif.Op{}, err
	}
	if out.T, err = j.T.toSlot(); err != nil {
		return rhif.Op{}, err
	}
	if out.F, err = j.F.toSlot(); err != nil {
		return rhif.Op{}, err
	}
	if out.Disc, err = j.Disc.toSlot(); err != nil {
		return rhif.Op{}, err
	}
	for _, a := range j.Arms {
		body, err := a.Body.toSlot()
		if err != nil {
			return rhif.Op{}, err
		}
		if a.Wild {
			out.Arms = append(out.Arms, rhif.CaseArm{Wild: true, Body: body})
			continue
		}
		test, err := a.Test.toSlot()
		if err != nil {
			return rhif.Op{}, err
		}
		out.Arms = append(out.Arms, rhif.CaseArm{Test: test, Body: body})
	}
	if j.Path != nil {
		if out.Path, err = j.Path.toPath(); err != nil {
			return rhif.Op{}, err
		}
	}
	if out.Orig, err = j.Orig.toSlot(); err != nil {
		return rhif.Op{}, err
	}
	if out.Subst, err = j.Subst.toSlot(); err != nil {
		return rhif.Op{}, err
	}
	if len(j.Template) > 0 && string(j.Template) != "null" {
		if out.Template, err = kind.DecodeJSON(j.Template); err != nil {
			return rhif.Op{}, err
		}
	}
	for _, f := range j.Fields {
		sl, err := f.Slot.toSlot()
		if err != nil {
			return rhif.Op{}, err
		}
		out.Fields = append(out.Fields, rhif.FieldValue{Name: f.Name, Slot: sl})
	}
	if out.Rest, err = j.Rest.toSlot(); err != nil {
		return rhif.Op{}, err
	}
	if out.Args, err = toSlots(j.Args); err != nil {
		return rhif.Op{}, err
	}
	if j.WrapOp != "" {
		w, ok := wrapOpNamesToTag[j.WrapOp]
		if !ok {
			return rhif.Op{}, fmt.Errorf("rhifjson: unknown wrap_op %q", j.WrapOp)
		}
		out.WrapOp = w
	}
	return out, nil
}

func toSlots(ss []slot) ([]path.Slot, error) {
	if len(ss) == 0 {
		return nil, nil
	}
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
		return 0, fmt.Errorf("rhifjson: bad register/literal id %q: %w", s, err)
	}
	return n, nil
}

// Encode renders obj as the same wire format Decode accepts, so a
// pkg/rhdlcore.Infer result can be piped straight to the check-clocks or
// lower subcommands.
func Encode(obj *rhif.Object) ([]byte, error) {
	doc := encodeObject(obj)
	return json.MarshalIndent(doc, "", "  ")
}

func encodeObject(obj *rhif.Object) object {
	doc := object{FnId: string(obj.FnId), Name: obj.Name, Return: fromSlot(obj.Return)}
	for _, a := range obj.Arguments {
		doc.Arguments = append(doc.Arguments, string(a))
	}
	if len(obj.Kinds) > 0 {
		doc.Kinds = make(map[string]json.RawMessage, len(obj.Kinds))
		for id, k := range obj.Kinds {
			raw, _ := json.Marshal(k)
			doc.Kinds[fmt.Sprintf("%d", id)] = raw
		}
	}
	if len(obj.Literals) > 0 {
		doc.Literals = make(map[string]typedBits, len(obj.Literals))
		for id, lit := range obj.Literals {
			raw, _ := json.Marshal(lit.Kind)
			doc.Literals[fmt.Sprintf("%d", id)] = typedBits{Bits: lit.Bits, Kind: raw}
		}
	}
	for _, located := range obj.Ops {
		doc.Ops = append(doc.Ops, encodeOp(located.Op))
	}
	if len(obj.Externals) > 0 {
		doc.Externals = make(map[string]object, len(obj.Externals))
		for eid, child := range obj.Externals {
			doc.Externals[string(eid)] = encodeObject(child)
		}
	}
	return doc
}

func encodeOp(o rhif.Op) op {
	out := op{Tag: opTagNames[o.Tag], Lhs: fromSlot(o.Lhs), N: o.N, Len: o.Len,
		Src: fromSlot(o.Src), A: fromSlot(o.A), B: fromSlot(o.B), X: fromSlot(o.X),
		Cond: fromSlot(o.Cond), T: fromSlot(o.T), F: fromSlot(o.F), Disc: fromSlot(o.Disc),
		Orig: fromSlot(o.Orig), Subst: fromSlot(o.Subst), Rest: fromSlot(o.Rest),
		HasRest: o.HasRest, Variant: o.Variant, Callee: string(o.Callee), Text: o.Text}
	for _, e := range o.Elems {
		out.Elems = append(out.Elems, fromSlot(e))
	}
	if o.ArgKind != nil {
		out.ArgKind, _ = json.Marshal(o.ArgKind)
	}
	if kind.ValidColor(o.Color) {
		out.Color = o.Color.String()
	}
	if o.Tag == rhif.OpBinary {
		out.BinOp = binOpNames[o.BinOp]
	}
	if o.Tag == rhif.OpUnary {
		out.UnOp = unOpNames[o.UnOp]
	}
	for _, a := range o.Arms {
		out.Arms = append(out.Arms, caseArm{Test: fromSlot(a.Test), Wild: a.Wild, Body: fromSlot(a.Body)})
	}
	if len(o.Path.Elements) > 0 {
		out.Path = fromPath(o.Path)
	}
	if o.Template != nil {
		out.Template, _ = json.Marshal(o.Template)
	}
	for _, f := range o.Fields {
		out.Fields = append(out.Fields, fieldValue{Name: f.Name, Slot: fromSlot(f.Slot)})
	}
	for _, a := range o.Args {
		out.Args = append(out.Args, fromSlot(a))
	}
	if o.Tag == rhif.OpWrap {
		out.WrapOp = wrapOpNames[o.WrapOp]
	}
	return out
}
