// Package mir holds the medium intermediate representation: an Op/Object
// model structurally identical to RHIF but with every slot's shape still a
// TypeId rather than a resolved Kind, plus the TypeId type language itself
// and its Hindley-Milner-style UnifyContext (pkg/infer drives inference by
// walking an Object and unifying over these TypeIds).
package mir

import (
	"fmt"

	"github.com/rhdl/rhdlcore/pkg/kind"
	"github.com/rhdl/rhdlcore/pkg/symtab"
)

// Var identifies an as-yet-unbound type variable.
type Var int

// SignFlag records whether a Bits application is signed or unsigned,
// itself represented as a TypeId so it can remain generic during inference.
type SignFlag uint8

const (
	Unsigned SignFlag = iota
	Signed
)

// constTag discriminates the fundamental (non-parameterized) TypeKinds.
type constTag uint8

const (
	constClock constTag = iota
	constLength
	constEmpty
	constSignFlag
)

// appTag discriminates the parameterized TypeKinds.
type appTag uint8

const (
	appBits appTag = iota
	appSignal
	appArray
	appStruct
	appEnum
	appTuple
)

type nodeTag uint8

const (
	nodeVar nodeTag = iota
	nodeConst
	nodeApp
)

// variantTag mirrors a Kind.Variant during inference, before discriminants
// and payload kinds have been fully resolved.
type variantTag struct {
	Name         string
	Discriminant int64
}

type structField struct {
	Name string
	Ty   TypeId
}

// node is the underlying representation of a TypeId: a Var, a Const, or an
// App, stored in the UnifyContext's arena and addressed by handle. Unlike
// pkg/kind's Kind, nodes are not hash-consed/interned — equality is
// structural (see UnifyContext.equalNodes), since the unifier's
// substitution map, not node identity, is what must be correct.
type node struct {
	tag nodeTag

	varNum Var

	cTag     constTag
	color    kind.Color
	length   int
	signFlag SignFlag

	aTag appTag

	bitsSignFlag, bitsLen TypeId

	sigData, sigClock TypeId

	arrBase, arrLen TypeId

	structName   string
	structFields []structField

	enumName         string
	enumVariants     []variantTag
	enumVariantTys   []TypeId
	enumDiscriminant TypeId
	enumAlignment    kind.DiscriminantAlignment

	tupleElems []TypeId
}

// TypeId references a node in a UnifyContext's arena, paired with the
// source node that introduced it (for diagnostics).
type TypeId struct {
	handle int
	Loc    symtab.NodeId
}

// UnifyContext owns the arena of type nodes and the variable substitution
// map built up by Unify.
type UnifyContext struct {
	nodes []node
	subst map[Var]TypeId
	next  Var
}

// NewUnifyContext returns an empty context.
func NewUnifyContext() *UnifyContext {
	return &UnifyContext{subst: make(map[Var]TypeId)}
}

func (c *UnifyContext) push(n node) int {
	c.nodes = append(c.nodes, n)
	return len(c.nodes) - 1
}

func (c *UnifyContext) at(t TypeId) *node { return &c.nodes[t.handle] }

// TyVar allocates a fresh, unbound type variable.
func (c *UnifyContext) TyVar(loc symtab.NodeId) TypeId {
	v := c.next
	c.next++
	return TypeId{handle: c.push(node{tag: nodeVar, varNum: v}), Loc: loc}
}

func (c *UnifyContext) tyConst(loc symtab.NodeId, n node) TypeId {
	n.tag = nodeConst
	return TypeId{handle: c.push(n), Loc: loc}
}

func (c *UnifyContext) TyClock(loc symtab.NodeId, col kind.Color) TypeId {
	return c.tyConst(loc, node{cTag: constClock, color: col})
}
func (c *UnifyContext) TyConstLen(loc symtab.NodeId, n int) TypeId {
	return c.tyConst(loc, node{cTag: constLength, length: n})
}
func (c *UnifyContext) TyEmpty(loc symtab.NodeId) TypeId {
	return c.tyConst(loc, node{cTag: constEmpty})
}
func (c *UnifyContext) TySignFlag(loc symtab.NodeId, f SignFlag) TypeId {
	return c.tyConst(loc, node{cTag: constSignFlag, signFlag: f})
}

func (c *UnifyContext) tyApp(loc symtab.NodeId, n node) TypeId {
	n.tag = nodeApp
	return TypeId{handle: c.push(n), Loc: loc}
}

func (c *UnifyContext) TyBits(loc symtab.NodeId, length TypeId) TypeId {
	sf := c.TySignFlag(loc, Unsigned)
	return c.tyApp(loc, node{aTag: appBits, bitsSignFlag: sf, bitsLen: length})
}
func (c *UnifyContext) TySigned(loc symtab.NodeId, length TypeId) TypeId {
	sf := c.TySignFlag(loc, Signed)
	return c.tyApp(loc, node{aTag: appBits, bitsSignFlag: sf, bitsLen: length})
}
func (c *UnifyContext) TyMaybeSigned(loc symtab.NodeId, length TypeId) TypeId {
	sf := c.TyVar(loc)
	return c.tyApp(loc, node{aTag: appBits, bitsSignFlag: sf, bitsLen: length})
}
func (c *UnifyContext) TyBool(loc symtab.NodeId) TypeId {
	return c.TyBits(loc, c.TyConstLen(loc, 1))
}
func (c *UnifyContext) TyUsize(loc symtab.NodeId) TypeId {
	return c.TyBits(loc, c.TyConstLen(loc, 64))
}
func (c *UnifyContext) TyInteger(loc symtab.NodeId) TypeId {
	length := c.TyVar(loc)
	sf := c.TyVar(loc)
	return c.tyApp(loc, node{aTag: appBits, bitsSignFlag: sf, bitsLen: length})
}
func (c *UnifyContext) TySignal(loc symtab.NodeId, data, clock TypeId) TypeId {
	return c.tyApp(loc, node{aTag: appSignal, sigData: data, sigClock: clock})
}
func (c *UnifyContext) TyArray(loc symtab.NodeId, base, length TypeId) TypeId {
	return c.tyApp(loc, node{aTag: appArray, arrBase: base, arrLen: length})
}
func (c *UnifyContext) TyDynStruct(loc symtab.NodeId, name string, fields []structField) TypeId {
	return c.tyApp(loc, node{aTag: appStruct, structName: name, structFields: fields})
}
func (c *UnifyContext) TyTuple(loc symtab.NodeId, elems []TypeId) TypeId {
	return c.tyApp(loc, node{aTag: appTuple, tupleElems: elems})
}
func (c *UnifyContext) tyDiscriminant(loc symtab.NodeId, layout kind.DiscriminantLayout) TypeId {
	length := c.TyConstLen(loc, layout.Width)
	if layout.Type == kind.Signed {
		return c.TySigned(loc, length)
	}
	return c.TyBits(loc, length)
}
func (c *UnifyContext) TyDynEnum(loc symtab.NodeId, name string, discriminant TypeId, alignment kind.DiscriminantAlignment, variants []variantTag, variantTys []TypeId) TypeId {
	return c.tyApp(loc, node{
		aTag: appEnum, enumName: name, enumVariants: variants, enumVariantTys: variantTys,
		enumDiscriminant: discriminant, enumAlignment: alignment,
	})
}

// FromKind converts a fully concrete Kind into a TypeId. Total.
func (c *UnifyContext) FromKind(loc symtab.NodeId, k *kind.Kind) TypeId {
	switch {
	case k.IsUnsigned():
		return c.TyBits(loc, c.TyConstLen(loc, k.Width()))
	case k.IsSigned():
		return c.TySigned(loc, c.TyConstLen(loc, k.Width()))
	case k.IsEmpty():
		return c.TyEmpty(loc)
	case k.IsStruct() || k.IsUnion():
		fields := make([]structField, len(k.Fields()))
		for i, f := range k.Fields() {
			fields[i] = structField{Name: f.Name, Ty: c.FromKind(loc, f.Kind)}
		}
		return c.TyDynStruct(loc, k.Name(), fields)
	case k.IsTuple():
		elems := make([]TypeId, len(k.TupleElements()))
		for i, e := range k.TupleElements() {
			elems[i] = c.FromKind(loc, e)
		}
		return c.TyTuple(loc, elems)
	case k.IsEnum():
		vs := k.Variants()
		tags := make([]variantTag, len(vs))
		tys := make([]TypeId, len(vs))
		for i, v := range vs {
			tags[i] = variantTag{Name: v.Name, Discriminant: v.Discriminant}
			tys[i] = c.FromKind(loc, v.Payload)
		}
		disc := c.tyDiscriminant(loc, k.DiscriminantLayout())
		return c.TyDynEnum(loc, k.Name(), disc, k.DiscriminantLayout().Alignment, tags, tys)
	case k.IsArray():
		base := c.FromKind(loc, k.ArrayBase())
		length := c.TyConstLen(loc, k.ArraySize())
		return c.TyArray(loc, base, length)
	case k.IsSignal():
		data := c.FromKind(loc, k.SignalInner())
		clock := c.TyClock(loc, k.SignalColor())
		return c.TySignal(loc, data, clock)
	default:
		return c.TyEmpty(loc)
	}
}

// IntoKind resolves ty to a Kind, failing if any leaf is still an unbound
// variable.
func (c *UnifyContext) IntoKind(ty TypeId) (*kind.Kind, error) {
	x := c.Apply(ty)
	n := c.at(x)
	switch n.tag {
	case nodeVar:
		return nil, fmt.Errorf("unbound variable V%d", n.varNum)
	case nodeConst:
		if n.cTag == constEmpty {
			return kind.Empty, nil
		}
		return nil, fmt.Errorf("expected a constant convertible to Kind")
	default:
		return c.appIntoKind(x)
	}
}

func (c *UnifyContext) appIntoKind(ty TypeId) (*kind.Kind, error) {
	n := c.at(ty)
	switch n.aTag {
	case appBits:
		sf, err := c.castSignFlag(n.bitsSignFlag)
		if err != nil {
			return nil, err
		}
		length, err := c.castLength(n.bitsLen)
		if err != nil {
			return nil, err
		}
		if sf == Signed {
			return kind.MakeSigned(length), nil
		}
		return kind.MakeBits(length), nil
	case appSignal:
		data, err := c.IntoKind(n.sigData)
		if err != nil {
			return nil, err
		}
		clock, err := c.castClock(n.sigClock)
		if err != nil {
			return nil, err
		}
		return kind.MakeSignal(data, clock), nil
	case appArray:
		base, err := c.IntoKind(n.arrBase)
		if err != nil {
			return nil, err
		}
		size, err := c.castLength(n.arrLen)
		if err != nil {
			return nil, err
		}
		return kind.MakeArray(base, size), nil
	case appStruct:
		fields := make([]kind.Field, len(n.structFields))
		for i, f := range n.structFields {
			fk, err := c.IntoKind(f.Ty)
			if err != nil {
				return nil, err
			}
			fields[i] = kind.Field{Name: f.Name, Kind: fk}
		}
		return kind.MakeStruct(n.structName, fields), nil
	case appTuple:
		elems := make([]*kind.Kind, len(n.tupleElems))
		for i, e := range n.tupleElems {
			ek, err := c.IntoKind(e)
			if err != nil {
				return nil, err
			}
			elems[i] = ek
		}
		return kind.MakeTuple(elems), nil
	case appEnum:
		variants := make([]kind.Variant, len(n.enumVariants))
		for i, v := range n.enumVariants {
			payload, err := c.IntoKind(n.enumVariantTys[i])
			if err != nil {
				return nil, err
			}
			variants[i] = kind.Variant{Name: v.Name, Discriminant: v.Discriminant, Payload: payload}
		}
		discKind, err := c.IntoKind(n.enumDiscriminant)
		if err != nil {
			return nil, err
		}
		ty := kind.Unsigned
		if discKind.IsSigned() {
			ty = kind.Signed
		}
		layout := kind.DiscriminantLayout{Width: discKind.Bits(), Alignment: n.enumAlignment, Type: ty}
		return kind.MakeEnum(n.enumName, variants, layout)
	default:
		return nil, fmt.Errorf("unsupported app type")
	}
}

func (c *UnifyContext) castSignFlag(ty TypeId) (SignFlag, error) {
	x := c.Apply(ty)
	n := c.at(x)
	if n.tag == nodeConst && n.cTag == constSignFlag {
		return n.signFlag, nil
	}
	return 0, fmt.Errorf("expected a sign flag")
}

func (c *UnifyContext) castLength(ty TypeId) (int, error) {
	x := c.Apply(ty)
	n := c.at(x)
	if n.tag == nodeConst && n.cTag == constLength {
		return n.length, nil
	}
	return 0, fmt.Errorf("expected a length")
}

func (c *UnifyContext) castClock(ty TypeId) (kind.Color, error) {
	x := c.Apply(ty)
	n := c.at(x)
	if n.tag == nodeConst && n.cTag == constClock {
		return n.color, nil
	}
	return 0, fmt.Errorf("expected a clock")
}

// ResolveClock exports castClock for callers outside this package (e.g.
// pkg/infer promoting a Retime op's target color to a kind.Color).
func (c *UnifyContext) ResolveClock(ty TypeId) (kind.Color, error) {
	return c.castClock(ty)
}

// TyIndex resolves the element type at a static index into base (Array,
// Tuple, Struct, or through a Signal wrapper).
func (c *UnifyContext) TyIndex(base TypeId, index int) (TypeId, error) {
	n := c.at(base)
	if n.tag != nodeApp {
		return TypeId{}, fmt.Errorf("expected an application type")
	}
	switch n.aTag {
	case appArray:
		return n.arrBase, nil
	case appTuple:
		if index < 0 || index >= len(n.tupleElems) {
			return TypeId{}, fmt.Errorf("index out of bounds")
		}
		return n.tupleElems[index], nil
	case appStruct:
		if index < 0 || index >= len(n.structFields) {
			return TypeId{}, fmt.Errorf("index out of bounds")
		}
		return n.structFields[index].Ty, nil
	case appSignal:
		return c.TyIndex(n.sigData, index)
	default:
		return TypeId{}, fmt.Errorf("expected an array, tuple, or struct")
	}
}

// TyVariant resolves the payload type of the named enum variant.
func (c *UnifyContext) TyVariant(base TypeId, variant string) (TypeId, error) {
	n := c.at(base)
	if n.tag != nodeApp || n.aTag != appEnum {
		return TypeId{}, fmt.Errorf("expected an enum type")
	}
	for i, v := range n.enumVariants {
		if v.Name == variant {
			return n.enumVariantTys[i], nil
		}
	}
	return TypeId{}, fmt.Errorf("variant not found")
}

// TyVariantByValue resolves the payload type of the variant with the given
// discriminant value.
func (c *UnifyContext) TyVariantByValue(base TypeId, value int64) (TypeId, error) {
	n := c.at(base)
	if n.tag != nodeApp || n.aTag != appEnum {
		return TypeId{}, fmt.Errorf("expected an enum type")
	}
	for i, v := range n.enumVariants {
		if v.Discriminant == value {
			return n.enumVariantTys[i], nil
		}
	}
	return TypeId{}, fmt.Errorf("variant not found")
}

// TyField resolves the type of a named struct field.
func (c *UnifyContext) TyField(base TypeId, member string) (TypeId, error) {
	n := c.at(base)
	if n.tag != nodeApp || n.aTag != appStruct {
		return TypeId{}, fmt.Errorf("expected a struct type")
	}
	for _, f := range n.structFields {
		if f.Name == member {
			return f.Ty, nil
		}
	}
	return TypeId{}, fmt.Errorf("field not found")
}

// TyEnumDiscriminant returns base's discriminant type, or base unchanged if
// base is not an enum (matching the convenience behavior callers rely on
// for plain comparisons).
func (c *UnifyContext) TyEnumDiscriminant(base TypeId) TypeId {
	n := c.at(base)
	if n.tag != nodeApp || n.aTag != appEnum {
		return base
	}
	return n.enumDiscriminant
}

func (c *UnifyContext) isVar(ty TypeId) bool { return c.at(ty).tag == nodeVar }

// IsUnresolved reports whether ty resolves (after substitution) to a free
// variable.
func (c *UnifyContext) IsUnresolved(ty TypeId) bool {
	return c.isVar(c.Apply(ty))
}

// IsUnsizedInteger reports whether ty is a Bits application with an
// unbound length.
func (c *UnifyContext) IsUnsizedInteger(ty TypeId) bool {
	x := c.Apply(ty)
	n := c.at(x)
	if n.tag == nodeApp && n.aTag == appBits {
		return c.isVar(n.bitsLen)
	}
	return false
}

// IsGenericInteger reports whether ty is a Bits application with both its
// sign and length still unbound (i.e. a bare integer literal's type).
func (c *UnifyContext) IsGenericInteger(ty TypeId) bool {
	x := c.Apply(ty)
	n := c.at(x)
	if n.tag == nodeApp && n.aTag == appBits {
		return c.isVar(n.bitsSignFlag) && c.isVar(n.bitsLen)
	}
	return false
}

// IsSignal reports whether ty is a Signal application.
func (c *UnifyContext) IsSignal(ty TypeId) bool {
	x := c.Apply(ty)
	n := c.at(x)
	return n.tag == nodeApp && n.aTag == appSignal
}

// ProjectSignalClock returns the clock sub-type of a Signal application.
func (c *UnifyContext) ProjectSignalClock(ty TypeId) (TypeId, bool) {
	x := c.Apply(ty)
	n := c.at(x)
	if n.tag == nodeApp && n.aTag == appSignal {
		return n.sigClock, true
	}
	return TypeId{}, false
}

// ProjectSignalValue returns the data sub-type of a Signal application.
func (c *UnifyContext) ProjectSignalValue(ty TypeId) (TypeId, bool) {
	x := c.Apply(ty)
	n := c.at(x)
	if n.tag == nodeApp && n.aTag == appSignal {
		return n.sigData, true
	}
	return TypeId{}, false
}

// ProjectSignalClockOrFresh returns ty's clock sub-type if ty is a Signal,
// else a fresh unbound Var. Used when a binary op's result must carry a
// clock color projected from whichever operand is a Signal.
func (c *UnifyContext) ProjectSignalClockOrFresh(ty TypeId, loc symtab.NodeId) TypeId {
	if clock, ok := c.ProjectSignalClock(ty); ok {
		return clock
	}
	return c.TyVar(loc)
}

// ProjectSignFlag returns the sign-flag sub-type of a Bits application.
func (c *UnifyContext) ProjectSignFlag(ty TypeId) (TypeId, bool) {
	x := c.Apply(ty)
	n := c.at(x)
	if n.tag == nodeApp && n.aTag == appBits {
		return n.bitsSignFlag, true
	}
	return TypeId{}, false
}

// Desc renders a best-effort, human-readable description of ty, used in
// diagnostics.
func (c *UnifyContext) Desc(ty TypeId) string {
	n := c.at(ty)
	switch n.tag {
	case nodeVar:
		return fmt.Sprintf("V%d", n.varNum)
	case nodeConst:
		switch n.cTag {
		case constClock:
			return n.color.String()
		case constLength:
			return fmt.Sprintf("%d", n.length)
		case constSignFlag:
			if n.signFlag == Signed {
				return "s"
			}
			return "b"
		default:
			return "()"
		}
	default:
		switch n.aTag {
		case appStruct:
			s := n.structName + "<"
			for i, f := range n.structFields {
				if i > 0 {
					s += ", "
				}
				s += f.Name + ":" + c.Desc(f.Ty)
			}
			return s + ">"
		case appTuple:
			s := ""
			for i, e := range n.tupleElems {
				if i > 0 {
					s += ", "
				}
				s += c.Desc(e)
			}
			return s
		case appEnum:
			s := "enum " + n.enumName + "<"
			for i, v := range n.enumVariants {
				if i > 0 {
					s += ", "
				}
				s += v.Name + ":" + c.Desc(n.enumVariantTys[i])
			}
			return s + ">"
		case appBits:
			return fmt.Sprintf("%s_%s", c.Desc(n.bitsSignFlag), c.Desc(n.bitsLen))
		case appSignal:
			return fmt.Sprintf("signal<%s, %s>", c.Desc(n.sigData), c.Desc(n.sigClock))
		default:
			return fmt.Sprintf("[%s; %s]", c.Desc(n.arrBase), c.Desc(n.arrLen))
		}
	}
}
