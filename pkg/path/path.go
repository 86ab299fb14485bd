// Package path implements symbolic indexing into a Kind or TypedBits: a
// Path is resolved against a Kind to a concrete bit range and sub-Kind, or
// against a TypedBits to extract/replace a sub-value.
package path

import (
	"fmt"
	"strings"

	"github.com/rhdl/rhdlcore/pkg/kind"
)

// ElementTag discriminates a PathElement's variant.
type ElementTag uint8

const (
	Index ElementTag = iota
	TupleIndex
	Field
	EnumDiscriminant
	EnumPayload
	EnumPayloadByValue
	DynamicIndex
	SignalValue
)

// PathElement is one step of a Path.
type PathElement struct {
	Tag     ElementTag
	Int     int   // Index, TupleIndex
	Name    string // Field, EnumPayload
	Value   int64  // EnumPayloadByValue
	Slot    Slot   // DynamicIndex
}

func (e PathElement) String() string {
	switch e.Tag {
	case Index:
		return fmt.Sprintf("[%d]", e.Int)
	case TupleIndex:
		return fmt.Sprintf(".%d", e.Int)
	case Field:
		return "." + e.Name
	case EnumDiscriminant:
		return "#"
	case EnumPayload:
		return "#" + e.Name
	case EnumPayloadByValue:
		return fmt.Sprintf("#%d", e.Value)
	case DynamicIndex:
		return fmt.Sprintf("[[%s]]", e.Slot)
	case SignalValue:
		return "@"
	default:
		return "?"
	}
}

// Path is an ordered list of PathElements describing a symbolic index into
// a composite Kind or value.
type Path struct {
	Elements []PathElement
}

func (p Path) String() string {
	var sb strings.Builder
	for _, e := range p.Elements {
		sb.WriteString(e.String())
	}
	return sb.String()
}

func (p Path) Len() int      { return len(p.Elements) }
func (p Path) IsEmpty() bool { return len(p.Elements) == 0 }

func (p Path) AnyDynamic() bool {
	for _, e := range p.Elements {
		if e.Tag == DynamicIndex {
			return true
		}
	}
	return false
}

// DynamicSlots returns every Slot referenced by a DynamicIndex element, in
// order.
func (p Path) DynamicSlots() []Slot {
	var out []Slot
	for _, e := range p.Elements {
		if e.Tag == DynamicIndex {
			out = append(out, e.Slot)
		}
	}
	return out
}

func (p Path) push(e PathElement) Path {
	return Path{Elements: append(append([]PathElement(nil), p.Elements...), e)}
}

func (p Path) IndexBy(i int) Path        { return p.push(PathElement{Tag: Index, Int: i}) }
func (p Path) TupleIndexBy(i int) Path   { return p.push(PathElement{Tag: TupleIndex, Int: i}) }
func (p Path) FieldBy(name string) Path  { return p.push(PathElement{Tag: Field, Name: name}) }
func (p Path) Discriminant() Path        { return p.push(PathElement{Tag: EnumDiscriminant}) }
func (p Path) Payload(name string) Path  { return p.push(PathElement{Tag: EnumPayload, Name: name}) }
func (p Path) PayloadByValue(v int64) Path {
	return p.push(PathElement{Tag: EnumPayloadByValue, Value: v})
}
func (p Path) Dynamic(s Slot) Path { return p.push(PathElement{Tag: DynamicIndex, Slot: s}) }
func (p Path) SignalValueStep() Path { return p.push(PathElement{Tag: SignalValue}) }

func (p Path) Join(other Path) Path {
	return Path{Elements: append(append([]PathElement(nil), p.Elements...), other.Elements...)}
}

func (p Path) IsPrefixOf(other Path) bool {
	if len(p.Elements) > len(other.Elements) {
		return false
	}
	for i, e := range p.Elements {
		if e != other.Elements[i] {
			return false
		}
	}
	return true
}

// NotAPrefix is returned by StripPrefix when prefix does not actually
// prefix the receiver.
type NotAPrefix struct{ Prefix, Path Path }

func (e *NotAPrefix) Error() string {
	return fmt.Sprintf("path %v is not a prefix of %v", e.Prefix, e.Path)
}

func (p Path) StripPrefix(prefix Path) (Path, error) {
	if !prefix.IsPrefixOf(p) {
		return Path{}, &NotAPrefix{Prefix: prefix, Path: p}
	}
	return Path{Elements: append([]PathElement(nil), p.Elements[len(prefix.Elements):]...)}, nil
}

// RemapSlots applies f to every DynamicIndex slot in the path.
func (p Path) RemapSlots(f func(Slot) Slot) Path {
	out := make([]PathElement, len(p.Elements))
	for i, e := range p.Elements {
		if e.Tag == DynamicIndex {
			e.Slot = f(e.Slot)
		}
		out[i] = e
	}
	return Path{Elements: out}
}

// ZeroOutDynamicIndices replaces every DynamicIndex element with Index(0),
// yielding the base-address path used to compute a dynamic index's fixed
// offset component.
func (p Path) ZeroOutDynamicIndices() Path {
	out := make([]PathElement, len(p.Elements))
	for i, e := range p.Elements {
		if e.Tag == DynamicIndex {
			e = PathElement{Tag: Index, Int: 0}
		}
		out[i] = e
	}
	return Path{Elements: out}
}

// StridePath zeroes every DynamicIndex except the one matching slot, which
// becomes Index(1) — the "unit step" path used to derive a dynamic slot's
// per-element stride by differencing bit_range against the zeroed path.
func (p Path) StridePath(slot Slot) Path {
	out := make([]PathElement, len(p.Elements))
	for i, e := range p.Elements {
		switch {
		case e.Tag == DynamicIndex && e.Slot == slot:
			e = PathElement{Tag: Index, Int: 1}
		case e.Tag == DynamicIndex:
			e = PathElement{Tag: Index, Int: 0}
		}
		out[i] = e
	}
	return Path{Elements: out}
}
