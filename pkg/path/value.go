package path

import "github.com/rhdl/rhdlcore/pkg/kind"

// Get extracts the sub-value of tb addressed by p.
func Get(tb kind.TypedBits, p Path) (kind.TypedBits, error) {
	rng, sub, err := BitRange(tb.Kind, p)
	if err != nil {
		return kind.TypedBits{}, err
	}
	bits := make([]kind.BitX, rng.Len())
	for i := range bits {
		bits[i] = tb.GetBit(rng.Start + i)
	}
	return kind.TypedBits{Bits: bits, Kind: sub}, nil
}

// Splice returns a copy of tb with the sub-value addressed by p replaced by
// value. value's Kind must match the sub-Kind resolved by p.
func Splice(tb kind.TypedBits, p Path, value kind.TypedBits) (kind.TypedBits, error) {
	rng, sub, err := BitRange(tb.Kind, p)
	if err != nil {
		return kind.TypedBits{}, err
	}
	if sub != value.Kind {
		return kind.TypedBits{}, &kind.WrapKindMismatch{Wrapping: value.Kind, Target: sub}
	}
	out := tb
	for i := 0; i < rng.Len(); i++ {
		out = out.SetBit(rng.Start+i, value.Bits[i])
	}
	return out, nil
}
