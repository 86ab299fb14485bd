package kind

import "fmt"

// TypedBits is a value together with its Kind. The length invariant
// len(Bits) == Kind.Bits() must hold for every TypedBits in circulation;
// constructors here preserve it.
type TypedBits struct {
	Bits []BitX
	Kind *Kind
}

// DontCareFromKind returns an all-X value of the given Kind.
func DontCareFromKind(k *Kind) TypedBits {
	bits := make([]BitX, k.Bits())
	for i := range bits {
		bits[i] = BitDontCare
	}
	return TypedBits{Bits: bits, Kind: k}
}

// FromUint constructs an unsigned TypedBits of width bits from v.
func FromUint(v uint64, width int) TypedBits {
	return TypedBits{Bits: FromUint128(v, 0, width), Kind: MakeBits(width)}
}

// FromInt constructs a signed TypedBits of width bits from v.
func FromInt(v int64, width int) TypedBits {
	var hi uint64
	if v < 0 {
		hi = ^uint64(0)
	}
	bits := FromUint128(uint64(v), hi, width)
	return TypedBits{Bits: bits, Kind: MakeSigned(width)}
}

func (t TypedBits) String() string {
	return fmt.Sprintf("%s:%s", BitsString(t.Bits), t.Kind)
}

// AsUint128 interprets t as an unsigned 128-bit integer; it is the caller's
// responsibility to ensure t's bits are all concrete (no X).
func (t TypedBits) AsUint128() (lo, hi uint64) { return ToUint128(t.Bits) }

// AsI64 collapses t to an int64, sign- or zero-extending/truncating
// according to t.Kind.
func (t TypedBits) AsI64() (int64, error) {
	switch t.Kind.tag {
	case TagBits, TagClock, TagReset:
		v, err := t.UnsignedCast(64)
		if err != nil {
			return 0, err
		}
		lo, _ := v.AsUint128()
		return int64(lo), nil
	case TagSigned:
		v, err := t.SignedCast(64)
		if err != nil {
			return 0, err
		}
		lo, _ := v.AsUint128()
		return int64(lo), nil
	case TagSignal:
		inner := TypedBits{Bits: t.Bits, Kind: t.Kind.base}
		return inner.AsI64()
	default:
		return 0, &CannotCastToBool{Got: t.Kind}
	}
}

// UnsignedCast truncates iff the discarded high bits are all zero.
func (t TypedBits) UnsignedCast(n int) (TypedBits, error) {
	if n >= len(t.Bits) {
		out := make([]BitX, n)
		copy(out, t.Bits)
		for i := len(t.Bits); i < n; i++ {
			out[i] = Bit0
		}
		return TypedBits{Bits: out, Kind: MakeBits(n)}, nil
	}
	kept, rest := t.Bits[:n], t.Bits[n:]
	for _, b := range rest {
		if b != Bit0 {
			return TypedBits{}, &CastLoss{From: len(t.Bits), To: n, Signed: false}
		}
	}
	out := append([]BitX(nil), kept...)
	return TypedBits{Bits: out, Kind: MakeBits(n)}, nil
}

// SignedCast truncates iff the discarded bits all equal the new sign bit.
func (t TypedBits) SignedCast(n int) (TypedBits, error) {
	if n >= len(t.Bits) {
		signBit := Bit0
		if len(t.Bits) > 0 {
			signBit = t.Bits[len(t.Bits)-1]
		}
		out := make([]BitX, n)
		copy(out, t.Bits)
		for i := len(t.Bits); i < n; i++ {
			out[i] = signBit
		}
		return TypedBits{Bits: out, Kind: MakeSigned(n)}, nil
	}
	kept, rest := t.Bits[:n], t.Bits[n:]
	newSign := Bit0
	if n > 0 {
		newSign = kept[n-1]
	}
	for _, b := range rest {
		if b != newSign {
			return TypedBits{}, &CastLoss{From: len(t.Bits), To: n, Signed: true}
		}
	}
	out := append([]BitX(nil), kept...)
	return TypedBits{Bits: out, Kind: MakeSigned(n)}, nil
}

// Resize is infallible: sign-extends for Signed, zero-extends for Bits,
// truncates otherwise (bit vector is just cut to length).
func (t TypedBits) Resize(n int) TypedBits {
	switch t.Kind.tag {
	case TagSigned:
		out, _ := t.SignedCast(n)
		if n < len(t.Bits) {
			out = TypedBits{Bits: append([]BitX(nil), t.Bits[:n]...), Kind: MakeSigned(n)}
		}
		return out
	default:
		out, _ := t.UnsignedCast(n)
		if n < len(t.Bits) {
			out = TypedBits{Bits: append([]BitX(nil), t.Bits[:n]...), Kind: MakeBits(n)}
		}
		return out
	}
}

// SignBit returns the most-significant bit.
func (t TypedBits) SignBit() BitX {
	if len(t.Bits) == 0 {
		return Bit0
	}
	return t.Bits[len(t.Bits)-1]
}

// GetBit, SetBit access an individual bit position.
func (t TypedBits) GetBit(i int) BitX { return t.Bits[i] }
func (t TypedBits) SetBit(i int, v BitX) TypedBits {
	out := append([]BitX(nil), t.Bits...)
	out[i] = v
	return TypedBits{Bits: out, Kind: t.Kind}
}

// Slice extracts bits [lo, hi) as an unsigned value; composite Kinds cannot
// be sliced.
func (t TypedBits) Slice(lo, hi int) (TypedBits, error) {
	if !t.Kind.IsSigned() && !t.Kind.IsUnsigned() {
		return TypedBits{}, &CannotSliceComposite{Got: t.Kind}
	}
	return TypedBits{Bits: append([]BitX(nil), t.Bits[lo:hi]...), Kind: MakeBits(hi - lo)}, nil
}

// Any, All, Xor reduce all bits with OR, AND, XOR respectively, returning a
// 1-bit unsigned TypedBits.
func (t TypedBits) Any() TypedBits { return TypedBits{Bits: []BitX{AnyBit(t.Bits)}, Kind: MakeBits(1)} }
func (t TypedBits) All() TypedBits { return TypedBits{Bits: []BitX{AllBit(t.Bits)}, Kind: MakeBits(1)} }
func (t TypedBits) XorReduce() TypedBits {
	return TypedBits{Bits: []BitX{XorReduce(t.Bits)}, Kind: MakeBits(1)}
}

func matchingArith(a, b TypedBits) (*Kind, error) {
	if a.Kind == b.Kind {
		return a.Kind, nil
	}
	if a.Kind.tag == TagSignal && b.Kind.tag == TagSignal && a.Kind.clock == b.Kind.clock && a.Kind.base == b.Kind.base {
		return a.Kind, nil
	}
	if a.Kind.tag == TagSignal && a.Kind.base == b.Kind {
		return a.Kind, nil
	}
	if b.Kind.tag == TagSignal && b.Kind.base == a.Kind {
		return b.Kind, nil
	}
	return nil, &TypeMismatch{A: a.Kind, B: b.Kind}
}

func unwrapSignal(t TypedBits) TypedBits {
	if t.Kind.tag == TagSignal {
		return TypedBits{Bits: t.Bits, Kind: t.Kind.base}
	}
	return t
}

// Add, Sub, Mul, And, Or, Xor require identical Kinds, or compatible Signal
// Kinds sharing a color; otherwise TypeMismatch.
func (t TypedBits) Add(o TypedBits) (TypedBits, error) {
	resKind, err := matchingArith(t, o)
	if err != nil {
		return TypedBits{}, err
	}
	a, b := unwrapSignal(t), unwrapSignal(o)
	sum, _ := FullAdd(a.Bits, b.Bits, Bit0)
	return TypedBits{Bits: sum, Kind: resKind}, nil
}

func (t TypedBits) Sub(o TypedBits) (TypedBits, error) {
	resKind, err := matchingArith(t, o)
	if err != nil {
		return TypedBits{}, err
	}
	a, b := unwrapSignal(t), unwrapSignal(o)
	return TypedBits{Bits: FullSub(a.Bits, b.Bits), Kind: resKind}, nil
}

func (t TypedBits) Mul(o TypedBits) (TypedBits, error) {
	resKind, err := matchingArith(t, o)
	if err != nil {
		return TypedBits{}, err
	}
	a, b := unwrapSignal(t), unwrapSignal(o)
	if AnyX(a.Bits) || AnyX(b.Bits) {
		out := make([]BitX, len(a.Bits))
		for i := range out {
			out[i] = BitDontCare
		}
		return TypedBits{Bits: out, Kind: resKind}, nil
	}
	lo, hi := ToUint128(a.Bits)
	blo, bhi := ToUint128(b.Bits)
	_ = hi
	_ = bhi
	product := lo * blo
	return TypedBits{Bits: FromUint128(product, 0, len(a.Bits)), Kind: resKind}, nil
}

func (t TypedBits) And(o TypedBits) (TypedBits, error) {
	resKind, err := matchingArith(t, o)
	if err != nil {
		return TypedBits{}, err
	}
	a, b := unwrapSignal(t), unwrapSignal(o)
	return TypedBits{Bits: AndBits(a.Bits, b.Bits), Kind: resKind}, nil
}

func (t TypedBits) Or(o TypedBits) (TypedBits, error) {
	resKind, err := matchingArith(t, o)
	if err != nil {
		return TypedBits{}, err
	}
	a, b := unwrapSignal(t), unwrapSignal(o)
	return TypedBits{Bits: OrBits(a.Bits, b.Bits), Kind: resKind}, nil
}

func (t TypedBits) Xor(o TypedBits) (TypedBits, error) {
	resKind, err := matchingArith(t, o)
	if err != nil {
		return TypedBits{}, err
	}
	a, b := unwrapSignal(t), unwrapSignal(o)
	return TypedBits{Bits: XorBits(a.Bits, b.Bits), Kind: resKind}, nil
}

// Not is the bitwise complement.
func (t TypedBits) Not() TypedBits {
	return TypedBits{Bits: NotBits(t.Bits), Kind: t.Kind}
}

// NegSigned is unary negation, valid only on Signed Kinds.
func (t TypedBits) NegSigned() (TypedBits, error) {
	if !t.Kind.IsSigned() {
		return TypedBits{}, &TypeMismatch{A: t.Kind, B: MakeSigned(t.Kind.Bits())}
	}
	return TypedBits{Bits: Neg(t.Bits), Kind: t.Kind}, nil
}

// Shl, Shr shift by a fixed amount; ShiftAmountOutOfRange if amount exceeds
// the value's width.
func (t TypedBits) Shl(amount int) (TypedBits, error) {
	if amount < 0 || amount > len(t.Bits) {
		return TypedBits{}, &ShiftAmountOutOfRange{Amount: amount, Width: len(t.Bits)}
	}
	out := make([]BitX, len(t.Bits))
	for i := 0; i < amount; i++ {
		out[i] = Bit0
	}
	copy(out[amount:], t.Bits[:len(t.Bits)-amount])
	return TypedBits{Bits: out, Kind: t.Kind}, nil
}

func (t TypedBits) Shr(amount int) (TypedBits, error) {
	if amount < 0 || amount > len(t.Bits) {
		return TypedBits{}, &ShiftAmountOutOfRange{Amount: amount, Width: len(t.Bits)}
	}
	fill := Bit0
	if t.Kind.IsSigned() {
		fill = t.SignBit()
	}
	out := make([]BitX, len(t.Bits))
	copy(out, t.Bits[amount:])
	for i := len(t.Bits) - amount; i < len(t.Bits); i++ {
		out[i] = fill
	}
	return TypedBits{Bits: out, Kind: t.Kind}, nil
}

// Compare interprets both operands as u128/i128 (per Kind sign) and reports
// -1, 0, 1; an X bit anywhere makes the comparison result BitDontCare,
// signalled by ok == false.
func (t TypedBits) Compare(o TypedBits) (cmp int, ok bool) {
	if AnyX(t.Bits) || AnyX(o.Bits) {
		return 0, false
	}
	// ext sign-extends a signed operand to 128 bits and flips the i128 sign
	// bit, so that the unsigned comparison below orders values as i128.
	ext := func(v TypedBits, lo, hi uint64) (uint64, uint64) {
		n := len(v.Bits)
		if !v.Kind.IsSigned() || n == 0 || n >= 128 || v.Bits[n-1] != Bit1 {
			return lo, hi ^ 1<<63
		}
		if n < 64 {
			return lo | ^uint64(0)<<uint(n), ^uint64(0) ^ 1<<63
		}
		return lo, (hi | ^uint64(0)<<uint(n-64)) ^ 1<<63
	}
	alo, ahi := t.AsUint128()
	blo, bhi := o.AsUint128()
	if t.Kind.IsSigned() || o.Kind.IsSigned() {
		alo, ahi = ext(t, alo, ahi)
		blo, bhi = ext(o, blo, bhi)
	}
	if ahi != bhi {
		if ahi < bhi {
			return -1, true
		}
		return 1, true
	}
	switch {
	case alo < blo:
		return -1, true
	case alo > blo:
		return 1, true
	default:
		return 0, true
	}
}
