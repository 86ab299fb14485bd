package path

import "github.com/rhdl/rhdlcore/pkg/kind"

// Range is a half-open bit range [Start, End).
type Range struct{ Start, End int }

func (r Range) Len() int { return r.End - r.Start }

// BitRange walks each element of path over k, accumulating the bit range
// and sub-Kind the path resolves to. A DynamicIndex element cannot be
// resolved to a fixed range; callers must lower it first (see pkg/lower).
func BitRange(k *kind.Kind, p Path) (Range, *kind.Kind, error) {
	rng := Range{Start: 0, End: k.Bits()}
	cur := k
	for _, e := range p.Elements {
		var err error
		rng, cur, err = stepBitRange(rng, cur, e, p)
		if err != nil {
			return Range{}, nil, err
		}
	}
	return rng, cur, nil
}

func stepBitRange(rng Range, cur *kind.Kind, e PathElement, full Path) (Range, *kind.Kind, error) {
	switch e.Tag {
	case SignalValue:
		if !cur.IsSignal() {
			return Range{}, nil, &SignalValueOnNonSignal{Kind: cur}
		}
		return rng, cur.SignalInner(), nil

	case TupleIndex:
		switch {
		case cur.IsTuple():
			elems := cur.TupleElements()
			if e.Int >= len(elems) {
				return Range{}, nil, &TupleIndexOutOfBounds{Ndx: e.Int, Kind: cur}
			}
			offset := 0
			for _, el := range elems[:e.Int] {
				offset += el.Bits()
			}
			sub := elems[e.Int]
			return Range{Start: rng.Start + offset, End: rng.Start + offset + sub.Bits()}, sub, nil
		case cur.IsStruct() || cur.IsUnion():
			fields := cur.Fields()
			if e.Int >= len(fields) {
				return Range{}, nil, &StructIndexOutOfBounds{Ndx: e.Int, Kind: cur}
			}
			offset := fieldOffset(cur, e.Int)
			sub := fields[e.Int].Kind
			return Range{Start: rng.Start + offset, End: rng.Start + offset + sub.Bits()}, sub, nil
		default:
			return Range{}, nil, &TupleIndexingNotAllowed{Kind: cur}
		}

	case Index:
		switch {
		case cur.IsArray():
			base := cur.ArrayBase()
			if e.Int >= cur.ArraySize() {
				return Range{}, nil, &ArrayIndexOutOfBounds{Ndx: e.Int, Kind: cur}
			}
			sz := base.Bits()
			return Range{Start: rng.Start + e.Int*sz, End: rng.Start + (e.Int+1)*sz}, base, nil
		case cur.IsStruct() || cur.IsUnion():
			fields := cur.Fields()
			if e.Int >= len(fields) {
				return Range{}, nil, &StructIndexOutOfBounds{Ndx: e.Int, Kind: cur}
			}
			offset := fieldOffset(cur, e.Int)
			sub := fields[e.Int].Kind
			return Range{Start: rng.Start + offset, End: rng.Start + offset + sub.Bits()}, sub, nil
		case cur.IsSignal() && cur.SignalInner().IsArray():
			inner := cur.SignalInner()
			base := inner.ArrayBase()
			if e.Int >= inner.ArraySize() {
				return Range{}, nil, &ArrayIndexOutOfBounds{Ndx: e.Int, Kind: cur}
			}
			sz := base.Bits()
			return Range{Start: rng.Start + e.Int*sz, End: rng.Start + (e.Int+1)*sz}, base, nil
		default:
			return Range{}, nil, &IndexingNotAllowed{Kind: cur}
		}

	case Field:
		if !cur.IsStruct() && !cur.IsUnion() {
			return Range{}, nil, &FieldIndexingNotAllowed{Kind: cur}
		}
		offset, sub, ok := fieldByName(cur, e.Name)
		if !ok {
			return Range{}, nil, &FieldNotFound{Field: e.Name, Kind: cur}
		}
		return Range{Start: rng.Start + offset, End: rng.Start + offset + sub.Bits()}, sub, nil

	case EnumDiscriminant:
		if !cur.IsEnum() {
			// Non-enum types: the discriminant is the value itself.
			return rng, cur, nil
		}
		layout := cur.DiscriminantLayout()
		discKind := kind.MakeBits(layout.Width)
		if layout.Type == kind.Signed {
			discKind = kind.MakeSigned(layout.Width)
		}
		if layout.Alignment == kind.Lsb {
			return Range{Start: rng.Start, End: rng.Start + layout.Width}, discKind, nil
		}
		return Range{Start: rng.End - layout.Width, End: rng.End}, discKind, nil

	case EnumPayload:
		if !cur.IsEnum() {
			return Range{}, nil, &EnumPayloadNotValid{Kind: cur}
		}
		v, err := cur.LookupVariant(e.Name)
		if err != nil {
			return Range{}, nil, &EnumPayloadNotFound{Name: e.Name, Kind: cur}
		}
		return enumPayloadRange(rng, cur, v.Payload), v.Payload, nil

	case EnumPayloadByValue:
		if !cur.IsEnum() {
			return Range{}, nil, &EnumPayloadNotValid{Kind: cur}
		}
		v, err := cur.LookupVariantByValue(e.Value)
		if err != nil {
			return Range{}, nil, &EnumPayloadByValueNotFound{Disc: e.Value, Kind: cur}
		}
		return enumPayloadRange(rng, cur, v.Payload), v.Payload, nil

	case DynamicIndex:
		return Range{}, nil, &DynamicIndicesNotResolved{Path: full}

	default:
		return Range{}, nil, &IndexingNotAllowed{Kind: cur}
	}
}

func enumPayloadRange(rng Range, enumKind, payload *kind.Kind) Range {
	layout := enumKind.DiscriminantLayout()
	if layout.Alignment == kind.Lsb {
		start := rng.Start + layout.Width
		return Range{Start: start, End: start + payload.Bits()}
	}
	return Range{Start: rng.Start, End: rng.Start + payload.Bits()}
}

func fieldOffset(k *kind.Kind, i int) int {
	offset := 0
	for _, f := range k.Fields()[:i] {
		offset += f.Kind.Bits()
	}
	return offset
}

func fieldByName(k *kind.Kind, name string) (int, *kind.Kind, bool) {
	offset := 0
	for _, f := range k.Fields() {
		if f.Name == name {
			return offset, f.Kind, true
		}
		offset += f.Kind.Bits()
	}
	return 0, nil, false
}

// SubKind resolves path against k and returns only the sub-Kind.
func SubKind(k *kind.Kind, p Path) (*kind.Kind, error) {
	_, sub, err := BitRange(k, p)
	return sub, err
}

// LeafPaths enumerates every maximal path rooted at base that terminates at
// a non-composite leaf of k, including one discriminant path per enum. The
// union of the bit ranges of all leaf paths exactly covers [0, k.Bits())
// with no overlap.
func LeafPaths(k *kind.Kind, base Path) []Path {
	switch {
	case k.IsArray():
		var out []Path
		for i := 0; i < k.ArraySize(); i++ {
			out = append(out, LeafPaths(k.ArrayBase(), base.IndexBy(i))...)
		}
		return out
	case k.IsTuple():
		var out []Path
		for i, el := range k.TupleElements() {
			out = append(out, LeafPaths(el, base.IndexBy(i))...)
		}
		return out
	case k.IsStruct():
		var out []Path
		for _, f := range k.Fields() {
			out = append(out, LeafPaths(f.Kind, base.FieldBy(f.Name))...)
		}
		return out
	case k.IsUnion():
		var out []Path
		for _, f := range k.Fields() {
			out = append(out, LeafPaths(f.Kind, base.FieldBy(f.Name))...)
		}
		return out
	case k.IsSignal():
		inner := LeafPaths(k.SignalInner(), base)
		out := make([]Path, len(inner))
		for i, p := range inner {
			out[i] = p.SignalValueStep()
		}
		return out
	case k.IsEnum():
		var out []Path
		for _, v := range k.Variants() {
			out = append(out, LeafPaths(v.Payload, base.PayloadByValue(v.Discriminant))...)
		}
		out = append(out, base.Discriminant())
		return out
	default: // Bits, Signed, Empty, Clock, Reset
		return []Path{base}
	}
}

// Star computes every concrete path obtainable from path by substituting
// each legal value for its DynamicIndex elements in turn (spec.md's §9
// "path_star" helper, supplementing leaf_paths for exhaustive enumeration
// of dynamically-indexed paths, e.g. for test generation).
func Star(k *kind.Kind, p Path) ([]Path, error) {
	if !p.AnyDynamic() {
		return []Path{p}, nil
	}
	first := p.Elements[0]
	if first.Tag == DynamicIndex {
		if !k.IsArray() {
			return nil, &DynamicIndexOnNonArray{Element: first, Kind: k}
		}
		var out []Path
		for i := 0; i < k.ArraySize(); i++ {
			next := Path{Elements: append([]PathElement(nil), p.Elements...)}
			next.Elements[0] = PathElement{Tag: Index, Int: i}
			rest, err := Star(k, next)
			if err != nil {
				return nil, err
			}
			out = append(out, rest...)
		}
		return out, nil
	}
	prefix := Path{Elements: []PathElement{first}}
	prefixKind, err := SubKind(k, prefix)
	if err != nil {
		return nil, err
	}
	suffix, err := p.StripPrefix(prefix)
	if err != nil {
		return nil, err
	}
	suffixStars, err := Star(prefixKind, suffix)
	if err != nil {
		return nil, err
	}
	out := make([]Path, len(suffixStars))
	for i, s := range suffixStars {
		out[i] = prefix.Join(s)
	}
	return out, nil
}
