package kind

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Tag discriminates the variant of a Kind.
type Tag uint8

const (
	TagEmpty Tag = iota
	TagBits
	TagSigned
	TagArray
	TagTuple
	TagStruct
	TagUnion
	TagEnum
	TagSignal
	TagClock
	TagReset
)

// Field is a named product member (Struct, Union).
type Field struct {
	Name string
	Kind *Kind
}

// DiscriminantType selects the sign interpretation of an enum's tag bits.
type DiscriminantType uint8

const (
	Unsigned DiscriminantType = iota
	Signed
)

// DiscriminantAlignment selects whether the discriminant sits at the low or
// high end of an Enum's bit range.
type DiscriminantAlignment uint8

const (
	Lsb DiscriminantAlignment = iota
	Msb
)

// DiscriminantLayout describes how an Enum's tag is placed and typed.
type DiscriminantLayout struct {
	Width     int
	Alignment DiscriminantAlignment
	Type      DiscriminantType
}

// Variant is one tagged alternative of an Enum.
type Variant struct {
	Name         string
	Discriminant int64
	Payload      *Kind
}

// Kind is an interned, structurally-compared hardware type descriptor.
// Construct instances with the package-level factory functions (MakeBits,
// MakeSigned, MakeArray, ...) rather than struct literals; they guarantee that
// two structurally equal Kinds are the same *Kind, so equality is pointer
// equality.
type Kind struct {
	tag    Tag
	width  int    // Bits(n), Signed(n): width. Enum: unused (see layout).
	base   *Kind  // Array.base, Signal.inner
	size   int    // Array.size
	elems  []*Kind // Tuple.elements
	name   string // Struct/Enum name
	fields []Field // Struct/Union fields (sorted by declaration order, not name)
	// Enum
	variants []Variant
	layout   DiscriminantLayout
	// Signal
	clock Color
}

var (
	internMu sync.RWMutex
	interned = map[string]*Kind{}
)

func intern(key string, build func() *Kind) *Kind {
	internMu.RLock()
	if k, ok := interned[key]; ok {
		internMu.RUnlock()
		return k
	}
	internMu.RUnlock()
	internMu.Lock()
	defer internMu.Unlock()
	if k, ok := interned[key]; ok {
		return k
	}
	k := build()
	interned[key] = k
	return k
}

// Empty is the zero-bit Kind.
var Empty = intern("E", func() *Kind { return &Kind{tag: TagEmpty} })

// Clock and Reset are single-bit domain primitives.
var Clock = intern("C", func() *Kind { return &Kind{tag: TagClock} })
var Reset = intern("R", func() *Kind { return &Kind{tag: TagReset} })

// MakeBits returns the unsigned n-bit Kind.
func MakeBits(n int) *Kind {
	key := fmt.Sprintf("B%d", n)
	return intern(key, func() *Kind { return &Kind{tag: TagBits, width: n} })
}

// MakeSigned returns the two's-complement signed n-bit Kind.
func MakeSigned(n int) *Kind {
	key := fmt.Sprintf("S%d", n)
	return intern(key, func() *Kind { return &Kind{tag: TagSigned, width: n} })
}

// MakeArray returns a fixed-length array of base.
func MakeArray(base *Kind, size int) *Kind {
	key := fmt.Sprintf("A(%s,%d)", base.key(), size)
	return intern(key, func() *Kind { return &Kind{tag: TagArray, base: base, size: size} })
}

// MakeTuple returns a positional product of elements. An empty tuple
// normalizes to Empty.
func MakeTuple(elements []*Kind) *Kind {
	if len(elements) == 0 {
		return Empty
	}
	var sb strings.Builder
	sb.WriteString("T(")
	for _, e := range elements {
		sb.WriteString(e.key())
		sb.WriteByte(',')
	}
	sb.WriteByte(')')
	key := sb.String()
	return intern(key, func() *Kind {
		cp := append([]*Kind(nil), elements...)
		return &Kind{tag: TagTuple, elems: cp}
	})
}

// MakeStruct returns a named product with declared field order.
func MakeStruct(name string, fields []Field) *Kind {
	key := "S{" + name + structFieldsKey(fields) + "}"
	return intern(key, func() *Kind {
		cp := append([]Field(nil), fields...)
		return &Kind{tag: TagStruct, name: name, fields: cp}
	})
}

// MakeUnion returns a named, untagged product whose fields overlap at
// offset 0 (total width is the max field width).
func MakeUnion(name string, fields []Field) *Kind {
	key := "U{" + name + structFieldsKey(fields) + "}"
	return intern(key, func() *Kind {
		cp := append([]Field(nil), fields...)
		return &Kind{tag: TagUnion, name: name, fields: cp}
	})
}

func structFieldsKey(fields []Field) string {
	var sb strings.Builder
	for _, f := range fields {
		sb.WriteByte('.')
		sb.WriteString(f.Name)
		sb.WriteByte('=')
		sb.WriteString(f.Kind.key())
	}
	return sb.String()
}

// MakeEnum returns a tagged sum with the given variants and discriminant
// layout, or an error if the shape violates ValidateEnum's invariants
// (discriminants pairwise distinct and in range, zero-width discriminant
// only for a single-variant enum). Invalid shapes are rejected here rather
// than interned, since every Enum Kind that exists must already satisfy
// those invariants for inference, clock-checking, and lowering to rely on.
func MakeEnum(name string, variants []Variant, layout DiscriminantLayout) (*Kind, error) {
	cp := append([]Variant(nil), variants...)
	candidate := &Kind{tag: TagEnum, name: name, variants: cp, layout: layout}
	if err := candidate.ValidateEnum(); err != nil {
		return nil, err
	}
	return intern(candidate.key(), func() *Kind { return candidate }), nil
}

// MakeSignal wraps a data Kind with a clock-domain color.
func MakeSignal(inner *Kind, c Color) *Kind {
	key := fmt.Sprintf("G(%s,%d)", inner.key(), c)
	return intern(key, func() *Kind { return &Kind{tag: TagSignal, base: inner, clock: c} })
}

func (k *Kind) key() string {
	switch k.tag {
	case TagEmpty:
		return "E"
	case TagBits:
		return fmt.Sprintf("B%d", k.width)
	case TagSigned:
		return fmt.Sprintf("S%d", k.width)
	case TagClock:
		return "C"
	case TagReset:
		return "R"
	case TagArray:
		return fmt.Sprintf("A(%s,%d)", k.base.key(), k.size)
	case TagTuple:
		var sb strings.Builder
		sb.WriteString("T(")
		for _, e := range k.elems {
			sb.WriteString(e.key())
			sb.WriteByte(',')
		}
		sb.WriteByte(')')
		return sb.String()
	case TagStruct:
		return "S{" + k.name + structFieldsKey(k.fields) + "}"
	case TagUnion:
		return "U{" + k.name + structFieldsKey(k.fields) + "}"
	case TagEnum:
		var sb strings.Builder
		sb.WriteString("N{")
		sb.WriteString(k.name)
		for _, v := range k.variants {
			fmt.Fprintf(&sb, ".%s=%d:%s", v.Name, v.Discriminant, v.Payload.key())
		}
		fmt.Fprintf(&sb, "|%d,%d,%d}", k.layout.Width, k.layout.Alignment, k.layout.Type)
		return sb.String()
	case TagSignal:
		return fmt.Sprintf("G(%s,%d)", k.base.key(), k.clock)
	default:
		return "?"
	}
}

// Tag returns the variant discriminator.
func (k *Kind) Tag() Tag { return k.tag }

// Width returns the declared width for Bits/Signed Kinds (0 otherwise).
func (k *Kind) Width() int { return k.width }

// ArrayBase, ArraySize expose Array fields.
func (k *Kind) ArrayBase() *Kind { return k.base }
func (k *Kind) ArraySize() int   { return k.size }

// TupleElements returns the Tuple element Kinds.
func (k *Kind) TupleElements() []*Kind { return k.elems }

// Name returns the Struct/Union/Enum name.
func (k *Kind) Name() string { return k.name }

// Fields returns the Struct/Union fields.
func (k *Kind) Fields() []Field { return k.fields }

// Variants returns the Enum variants.
func (k *Kind) Variants() []Variant { return k.variants }

// DiscriminantLayout returns the Enum's tag layout.
func (k *Kind) DiscriminantLayout() DiscriminantLayout { return k.layout }

// SignalInner, SignalColor expose Signal fields.
func (k *Kind) SignalInner() *Kind { return k.base }
func (k *Kind) SignalColor() Color { return k.clock }

// Bits returns the total bit width of the Kind.
func (k *Kind) Bits() int {
	switch k.tag {
	case TagEmpty:
		return 0
	case TagBits, TagSigned:
		return k.width
	case TagClock, TagReset:
		return 1
	case TagArray:
		return k.base.Bits() * k.size
	case TagTuple:
		sum := 0
		for _, e := range k.elems {
			sum += e.Bits()
		}
		return sum
	case TagStruct:
		sum := 0
		for _, f := range k.fields {
			sum += f.Kind.Bits()
		}
		return sum
	case TagUnion:
		max := 0
		for _, f := range k.fields {
			if b := f.Kind.Bits(); b > max {
				max = b
			}
		}
		return max
	case TagEnum:
		max := 0
		for _, v := range k.variants {
			if b := v.Payload.Bits(); b > max {
				max = b
			}
		}
		return k.discriminantWidth() + max
	case TagSignal:
		return k.base.Bits()
	default:
		return 0
	}
}

// discriminantWidth returns the configured width, falling back to the
// smallest width that can represent every variant's discriminant when
// layout.Width is unset (0) and there is more than one variant.
func (k *Kind) discriminantWidth() int {
	if k.layout.Width != 0 || len(k.variants) <= 1 {
		return k.layout.Width
	}
	maxDisc := int64(0)
	for _, v := range k.variants {
		if v.Discriminant > maxDisc {
			maxDisc = v.Discriminant
		}
	}
	return Clog2(maxDisc + 1)
}

// Clog2 returns ceil(log2(n)) for n >= 1; Clog2(0) == 0.
func Clog2(n int64) int {
	p := 0
	b := int64(1)
	for b < n {
		p++
		b *= 2
	}
	return p
}

func (k *Kind) String() string {
	switch k.tag {
	case TagEmpty:
		return "()"
	case TagBits:
		return fmt.Sprintf("b%d", k.width)
	case TagSigned:
		return fmt.Sprintf("s%d", k.width)
	case TagClock:
		return "clock"
	case TagReset:
		return "reset"
	case TagArray:
		return fmt.Sprintf("[%s; %d]", k.base, k.size)
	case TagTuple:
		parts := make([]string, len(k.elems))
		for i, e := range k.elems {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case TagStruct:
		return fmt.Sprintf("struct %s", k.name)
	case TagUnion:
		return fmt.Sprintf("union %s", k.name)
	case TagEnum:
		return fmt.Sprintf("enum %s", k.name)
	case TagSignal:
		return fmt.Sprintf("Signal<%s, %s>", k.base, k.clock)
	default:
		return "?"
	}
}

// sortedFieldNames is a small helper used by diagnostics that want a
// deterministic listing of a Struct/Union's field names. Uses x/exp/slices
// (predating its stdlib promotion) rather than sort.Strings, matching the
// rest of the intern pool's deterministic-iteration requirement (spec.md
// §9: "Implementations SHOULD process constraints in insertion order").
func sortedFieldNames(fields []Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	slices.Sort(names)
	return names
}

// InternedKinds returns every Kind currently in the intern pool, ordered
// deterministically by interning key, for diagnostics and testing that
// need to enumerate the pool's contents reproducibly across runs.
func InternedKinds() []*Kind {
	internMu.RLock()
	defer internMu.RUnlock()
	keys := maps.Keys(interned)
	slices.Sort(keys)
	out := make([]*Kind, len(keys))
	for i, k := range keys {
		out[i] = interned[k]
	}
	return out
}
