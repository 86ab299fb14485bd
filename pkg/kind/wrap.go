package kind

// WrapOp selects which Option/Result constructor Wrap applies.
type WrapOp uint8

const (
	WrapSome WrapOp = iota
	WrapNone
	WrapOk
	WrapErr
)

func (op WrapOp) variantName() string {
	switch op {
	case WrapSome:
		return "Some"
	case WrapNone:
		return "None"
	case WrapOk:
		return "Ok"
	default:
		return "Err"
	}
}

// wrapPayloadKind returns the Kind a payload must have to be wrapped by op
// into target: None's payload is Empty; Some/Ok/Err's payload is the first
// (only) tuple element of their variant's declared payload Kind.
func wrapPayloadKind(target *Kind, op WrapOp) (*Kind, error) {
	v, err := target.LookupVariant(op.variantName())
	if err != nil {
		return nil, err
	}
	if op == WrapNone {
		return v.Payload, nil
	}
	if !v.Payload.IsTuple() || len(v.Payload.elems) != 1 {
		return nil, &WrapKindMismatch{Wrapping: v.Payload, Target: target}
	}
	return v.Payload.elems[0], nil
}

// Wrap pads t to target's total width and appends the discriminant bit for
// op's variant, at the physically highest bit position (LSB-first vector),
// matching the canonical Option/Result 1-bit Msb discriminant layout.
func (t TypedBits) Wrap(op WrapOp, target *Kind) (TypedBits, error) {
	isOption := op == WrapSome || op == WrapNone
	if isOption && !target.IsOption() {
		return TypedBits{}, &WrapKindMismatch{Wrapping: t.Kind, Target: target}
	}
	if !isOption && !target.IsResult() {
		return TypedBits{}, &WrapKindMismatch{Wrapping: t.Kind, Target: target}
	}
	want, err := wrapPayloadKind(target, op)
	if err != nil {
		return TypedBits{}, err
	}
	if want != t.Kind {
		return TypedBits{}, &WrapKindMismatch{Wrapping: t.Kind, Target: target}
	}
	pad := target.Bits() - t.Kind.Bits() - 1
	if pad < 0 {
		return TypedBits{}, &WrapKindMismatch{Wrapping: t.Kind, Target: target}
	}
	out := make([]BitX, 0, target.Bits())
	out = append(out, t.Bits...)
	for i := 0; i < pad; i++ {
		out = append(out, Bit0)
	}
	disc := Bit0
	if op == WrapSome || op == WrapOk {
		disc = Bit1
	}
	out = append(out, disc)
	return TypedBits{Bits: out, Kind: target}, nil
}

// WrapSomeValue, WrapNoneValue, WrapOkValue, WrapErrValue are convenience
// wrappers around Wrap for the four constructors.
func (t TypedBits) WrapSomeValue(target *Kind) (TypedBits, error) { return t.Wrap(WrapSome, target) }
func (t TypedBits) WrapNoneValue(target *Kind) (TypedBits, error) { return t.Wrap(WrapNone, target) }
func (t TypedBits) WrapOkValue(target *Kind) (TypedBits, error)   { return t.Wrap(WrapOk, target) }
func (t TypedBits) WrapErrValue(target *Kind) (TypedBits, error)  { return t.Wrap(WrapErr, target) }

// Discriminant extracts the tag bits of an Enum-kinded TypedBits (or returns
// t unchanged if t is not an enum, matching the original's convenience
// behavior for plain comparisons).
func (t TypedBits) Discriminant() (TypedBits, error) {
	if !t.Kind.IsEnum() {
		return t, nil
	}
	layout := t.Kind.DiscriminantLayout()
	var bits []BitX
	switch layout.Alignment {
	case Lsb:
		bits = append([]BitX(nil), t.Bits[:layout.Width]...)
	default:
		bits = append([]BitX(nil), t.Bits[len(t.Bits)-layout.Width:]...)
	}
	discKind := MakeBits(layout.Width)
	if layout.Type == Signed {
		discKind = MakeSigned(layout.Width)
	}
	return TypedBits{Bits: bits, Kind: discKind}, nil
}
