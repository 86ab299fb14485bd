package diag

import (
	"fmt"

	"github.com/rhdl/rhdlcore/pkg/symtab"
)

// ICE marks an internal compiler error: a condition the passes assume can
// never arise given a well-formed input. Unlike the other diagnostics in
// this package, an ICE signals a bug in the compiler itself, not in the
// source program.
type ICE interface {
	Diagnostic
	ice()
}

type iceBase struct{ Loc symtab.SourceLocation }

func (iceBase) ice() {}
func (e iceBase) Locations() []symtab.SourceLocation {
	return []symtab.SourceLocation{e.Loc}
}

// EmptySlotInRTL: an Empty slot reached RTL lowering somewhere other than
// as a discarded lhs.
type EmptySlotInRTL struct{ iceBase }

func (e *EmptySlotInRTL) Error() string { return "ICE: empty slot reached RTL lowering" }

// BitCastMissingRequiredLength: AsBits/AsSigned reached lowering without a
// concrete length filled in by inference.
type BitCastMissingRequiredLength struct{ iceBase }

func (e *BitCastMissingRequiredLength) Error() string {
	return "ICE: bit cast missing required length"
}

// WrapMissingKind: a Wrap op reached lowering without a resolved target Kind.
type WrapMissingKind struct{ iceBase }

func (e *WrapMissingKind) Error() string { return "ICE: wrap op missing target kind" }

// MatchPatternValueMustBeLiteral: a Case arm's test was not a literal slot.
type MatchPatternValueMustBeLiteral struct{ iceBase }

func (e *MatchPatternValueMustBeLiteral) Error() string {
	return "ICE: case arm test must be a literal slot"
}

// MismatchedBitWidthsFromDynamicIndexing: the synthesized offset/stride
// arithmetic for a dynamic index produced operands of differing width.
type MismatchedBitWidthsFromDynamicIndexing struct {
	iceBase
	Want, Got int
}

func (e *MismatchedBitWidthsFromDynamicIndexing) Error() string {
	return fmt.Sprintf("ICE: dynamic indexing produced width %d, want %d", e.Got, e.Want)
}

// MismatchedTypesFromDynamicIndexing: the synthesized offset register did
// not end up Bits-kinded (unsigned) as required.
type MismatchedTypesFromDynamicIndexing struct {
	iceBase
	Got string
}

func (e *MismatchedTypesFromDynamicIndexing) Error() string {
	return fmt.Sprintf("ICE: dynamic indexing produced non-unsigned type %s", e.Got)
}
