package kind

import "fmt"

// Error is the common interface for Kind/TypedBits-layer errors: each one is
// a tagged record carrying the offending types, never a formatted string
// built ad hoc inside an algorithm.
type Error interface {
	error
	kindError()
}

type NoFieldInStruct struct {
	Field string
	In    *Kind
}

func (e *NoFieldInStruct) Error() string {
	return fmt.Sprintf("no field %q in %s (have %v)", e.Field, e.In, sortedFieldNames(e.In.fields))
}
func (*NoFieldInStruct) kindError() {}

type NotAStruct struct{ Got *Kind }

func (e *NotAStruct) Error() string { return fmt.Sprintf("%s is not a struct", e.Got) }
func (*NotAStruct) kindError()      {}

type NotATuple struct{ Got *Kind }

func (e *NotATuple) Error() string { return fmt.Sprintf("%s is not a tuple", e.Got) }
func (*NotATuple) kindError()      {}

type NotAnArray struct{ Got *Kind }

func (e *NotAnArray) Error() string { return fmt.Sprintf("%s is not an array", e.Got) }
func (*NotAnArray) kindError()      {}

type NotAnEnum struct{ Got *Kind }

func (e *NotAnEnum) Error() string { return fmt.Sprintf("%s is not an enum", e.Got) }
func (*NotAnEnum) kindError()      {}

type NoVariantInEnum struct {
	Name string
	Disc int64
	In   *Kind
}

func (e *NoVariantInEnum) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("no variant %q in %s", e.Name, e.In)
	}
	return fmt.Sprintf("no variant with discriminant %d in %s", e.Disc, e.In)
}
func (*NoVariantInEnum) kindError() {}

type CastLoss struct {
	From, To int
	Signed   bool
}

func (e *CastLoss) Error() string {
	kind := "unsigned"
	if e.Signed {
		kind = "signed"
	}
	return fmt.Sprintf("%s cast from %d to %d bits would discard significant bits", kind, e.From, e.To)
}
func (*CastLoss) kindError() {}

type CannotCastToBool struct{ Got *Kind }

func (e *CannotCastToBool) Error() string { return fmt.Sprintf("cannot cast %s to bool", e.Got) }
func (*CannotCastToBool) kindError()      {}

type CannotSliceComposite struct{ Got *Kind }

func (e *CannotSliceComposite) Error() string {
	return fmt.Sprintf("cannot slice composite kind %s", e.Got)
}
func (*CannotSliceComposite) kindError() {}

type ShiftAmountMustBeUnsigned struct{ Got *Kind }

func (e *ShiftAmountMustBeUnsigned) Error() string {
	return fmt.Sprintf("shift amount must be unsigned, got %s", e.Got)
}
func (*ShiftAmountMustBeUnsigned) kindError() {}

type ShiftAmountOutOfRange struct {
	Amount, Width int
}

func (e *ShiftAmountOutOfRange) Error() string {
	return fmt.Sprintf("shift amount %d out of range for %d-bit value", e.Amount, e.Width)
}
func (*ShiftAmountOutOfRange) kindError() {}

type WrapKindMismatch struct {
	Wrapping *Kind
	Target   *Kind
}

func (e *WrapKindMismatch) Error() string {
	return fmt.Sprintf("cannot wrap %s into %s", e.Wrapping, e.Target)
}
func (*WrapKindMismatch) kindError() {}

type TypeMismatch struct{ A, B *Kind }

func (e *TypeMismatch) Error() string {
	return fmt.Sprintf("type mismatch: %s vs %s", e.A, e.B)
}
func (*TypeMismatch) kindError() {}

// ZeroWidthDiscriminantMultiVariant reports an enum declared with a
// zero-width discriminant but more than one variant (spec.md open question:
// width 0 is only legal for a single-variant enum).
type ZeroWidthDiscriminantMultiVariant struct{ In *Kind }

func (e *ZeroWidthDiscriminantMultiVariant) Error() string {
	return fmt.Sprintf("enum %s has a zero-width discriminant but %d variants", e.In, len(e.In.variants))
}
func (*ZeroWidthDiscriminantMultiVariant) kindError() {}

// DuplicateDiscriminant reports two variants sharing the same tag value.
type DuplicateDiscriminant struct {
	Disc int64
	In   *Kind
}

func (e *DuplicateDiscriminant) Error() string {
	return fmt.Sprintf("duplicate discriminant %d in enum %s", e.Disc, e.In)
}
func (*DuplicateDiscriminant) kindError() {}

// DiscriminantOutOfRange reports a discriminant that does not fit in
// layout.Width bits under layout.Type.
type DiscriminantOutOfRange struct {
	Disc  int64
	Width int
	In    *Kind
}

func (e *DiscriminantOutOfRange) Error() string {
	return fmt.Sprintf("discriminant %d does not fit in %d bits of enum %s", e.Disc, e.Width, e.In)
}
func (*DiscriminantOutOfRange) kindError() {}

// UnknownKindTag reports a JSON-encoded Kind whose "tag" field did not
// match any known Kind variant.
type UnknownKindTag struct{ Tag string }

func (e *UnknownKindTag) Error() string { return fmt.Sprintf("unknown kind tag %q", e.Tag) }
func (*UnknownKindTag) kindError()      {}
