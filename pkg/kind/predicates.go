package kind

import "strings"

// IsEnum, IsSignal, IsSigned, IsUnsigned, IsBool report the variant of k.
func (k *Kind) IsEnum() bool   { return k.tag == TagEnum }
func (k *Kind) IsSignal() bool { return k.tag == TagSignal }
func (k *Kind) IsSigned() bool { return k.tag == TagSigned }
func (k *Kind) IsUnsigned() bool {
	return k.tag == TagBits || k.tag == TagClock || k.tag == TagReset
}
func (k *Kind) IsBool() bool { return k.tag == TagBits && k.width == 1 }
func (k *Kind) IsArray() bool  { return k.tag == TagArray }
func (k *Kind) IsTuple() bool  { return k.tag == TagTuple }
func (k *Kind) IsStruct() bool { return k.tag == TagStruct }
func (k *Kind) IsUnion() bool  { return k.tag == TagUnion }
func (k *Kind) IsEmpty() bool  { return k.tag == TagEmpty }

// IsOption recognizes the canonical Option<T> shape: name prefix "Option::<",
// variants [None(disc=0, Empty), Some(disc=1, (T,))], 1-bit Msb unsigned
// discriminant.
func (k *Kind) IsOption() bool {
	if k.tag != TagEnum || !strings.HasPrefix(k.name, "Option::<") {
		return false
	}
	if len(k.variants) != 2 {
		return false
	}
	none, some := k.variants[0], k.variants[1]
	if none.Name != "None" || none.Discriminant != 0 || !none.Payload.IsEmpty() {
		return false
	}
	if some.Name != "Some" || some.Discriminant != 1 {
		return false
	}
	if !some.Payload.IsTuple() || len(some.Payload.elems) != 1 {
		return false
	}
	return k.layout.Width == 1 && k.layout.Alignment == Msb && k.layout.Type == Unsigned
}

// IsResult recognizes the canonical Result<T, E> shape: name prefix
// "Result::<", variants [Err(disc=0, (E,)), Ok(disc=1, (O,))], 1-bit Msb
// unsigned discriminant.
func (k *Kind) IsResult() bool {
	if k.tag != TagEnum || !strings.HasPrefix(k.name, "Result::<") {
		return false
	}
	if len(k.variants) != 2 {
		return false
	}
	errV, okV := k.variants[0], k.variants[1]
	if errV.Name != "Err" || errV.Discriminant != 0 {
		return false
	}
	if okV.Name != "Ok" || okV.Discriminant != 1 {
		return false
	}
	if !errV.Payload.IsTuple() || len(errV.Payload.elems) != 1 {
		return false
	}
	if !okV.Payload.IsTuple() || len(okV.Payload.elems) != 1 {
		return false
	}
	return k.layout.Width == 1 && k.layout.Alignment == Msb && k.layout.Type == Unsigned
}

// GetFieldKind looks up a named field on a Struct or Union.
func (k *Kind) GetFieldKind(name string) (*Kind, error) {
	if k.tag != TagStruct && k.tag != TagUnion {
		return nil, &NotAStruct{Got: k}
	}
	for _, f := range k.fields {
		if f.Name == name {
			return f.Kind, nil
		}
	}
	return nil, &NoFieldInStruct{Field: name, In: k}
}

// GetTupleKind looks up the i'th element of a Tuple.
func (k *Kind) GetTupleKind(i int) (*Kind, error) {
	if k.tag != TagTuple {
		return nil, &NotATuple{Got: k}
	}
	if i < 0 || i >= len(k.elems) {
		return nil, &NotATuple{Got: k}
	}
	return k.elems[i], nil
}

// GetBaseKind returns an Array's element Kind.
func (k *Kind) GetBaseKind() (*Kind, error) {
	if k.tag != TagArray {
		return nil, &NotAnArray{Got: k}
	}
	return k.base, nil
}

// LookupVariant finds an Enum variant by name.
func (k *Kind) LookupVariant(name string) (*Variant, error) {
	if k.tag != TagEnum {
		return nil, &NotAnEnum{Got: k}
	}
	for i := range k.variants {
		if k.variants[i].Name == name {
			return &k.variants[i], nil
		}
	}
	return nil, &NoVariantInEnum{Name: name, In: k}
}

// LookupVariantByValue finds an Enum variant by discriminant value.
func (k *Kind) LookupVariantByValue(disc int64) (*Variant, error) {
	if k.tag != TagEnum {
		return nil, &NotAnEnum{Got: k}
	}
	for i := range k.variants {
		if k.variants[i].Discriminant == disc {
			return &k.variants[i], nil
		}
	}
	return nil, &NoVariantInEnum{Disc: disc, In: k}
}

// Pad zero-extends vec to k.Bits(), placing the discriminant of an Enum
// kind according to its alignment. For an Enum, vec holds the discriminant
// bits followed by the payload bits: Lsb alignment keeps that order and is
// a plain trailing zero-extend; Msb alignment moves the payload to the low
// bits and the discriminant to the top layout.Width bits, with zero
// padding between them.
func (k *Kind) Pad(vec []BitX) []BitX {
	want := k.Bits()
	if len(vec) >= want {
		return vec[:want]
	}
	if k.tag == TagEnum && k.layout.Alignment == Msb && k.layout.Width <= len(vec) {
		w := k.layout.Width
		out := make([]BitX, want)
		for i := range out {
			out[i] = Bit0
		}
		copy(out, vec[w:])
		copy(out[want-w:], vec[:w])
		return out
	}
	out := make([]BitX, want)
	copy(out, vec)
	for i := len(vec); i < want; i++ {
		out[i] = Bit0
	}
	return out
}

// ValidateEnum checks the invariants spec.md §3.1 requires of an Enum Kind:
// discriminants pairwise distinct, representable in layout.Width bits under
// layout.Type, and a zero-width discriminant only for a single-variant enum.
func (k *Kind) ValidateEnum() error {
	if k.tag != TagEnum {
		return &NotAnEnum{Got: k}
	}
	if k.layout.Width == 0 && len(k.variants) > 1 {
		return &ZeroWidthDiscriminantMultiVariant{In: k}
	}
	seen := map[int64]bool{}
	for _, v := range k.variants {
		if seen[v.Discriminant] {
			return &DuplicateDiscriminant{Disc: v.Discriminant, In: k}
		}
		seen[v.Discriminant] = true
		if !fitsInWidth(v.Discriminant, k.layout.Width, k.layout.Type) {
			return &DiscriminantOutOfRange{Disc: v.Discriminant, Width: k.layout.Width, In: k}
		}
	}
	return nil
}

func fitsInWidth(v int64, width int, ty DiscriminantType) bool {
	if width == 0 {
		return v == 0
	}
	if ty == Unsigned {
		if v < 0 {
			return false
		}
		return width >= 64 || v < int64(1)<<uint(width)
	}
	if width >= 64 {
		return true
	}
	lo := -(int64(1) << uint(width-1))
	hi := int64(1)<<uint(width-1) - 1
	return v >= lo && v <= hi
}
