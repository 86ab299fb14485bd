// Package diag carries the structured diagnostics produced by the
// inference, clock-check, and lowering passes. Every diagnostic is a typed
// record naming the offending slots/types/paths plus at least one source
// span; none are built by string formatting (spec.md §7).
package diag

import (
	"fmt"

	"github.com/rhdl/rhdlcore/pkg/symtab"
)

// Diagnostic is the common interface satisfied by every error kind in this
// package; it is also a plain Go error.
type Diagnostic interface {
	error
	Locations() []symtab.SourceLocation
}

// UnificationFailure reports that two type descriptions could not be
// unified, at the op that produced the failing constraint.
type UnificationFailure struct {
	A, B string // best-effort TypeId descriptions
	Loc  symtab.SourceLocation
}

func (e *UnificationFailure) Error() string {
	return fmt.Sprintf("cannot unify %s with %s", e.A, e.B)
}
func (e *UnificationFailure) Locations() []symtab.SourceLocation {
	return []symtab.SourceLocation{e.Loc}
}

// UnresolvedSlot reports a slot whose TypeId was still not convertible to a
// Kind when inference finished.
type UnresolvedSlot struct {
	Slot string
	Type string // best-effort description of the stuck TypeId
	Loc  symtab.SourceLocation
}

func (e *UnresolvedSlot) Error() string {
	return fmt.Sprintf("slot %s has unresolved type %s", e.Slot, e.Type)
}
func (e *UnresolvedSlot) Locations() []symtab.SourceLocation {
	return []symtab.SourceLocation{e.Loc}
}

// UnresolvedSlots is the pass-level diagnostic emitted when inference fails
// with one or more stuck slots collected during the same pass.
type UnresolvedSlots struct {
	Slots []*UnresolvedSlot
}

func (e *UnresolvedSlots) Error() string {
	return fmt.Sprintf("%d unresolved slots after inference", len(e.Slots))
}
func (e *UnresolvedSlots) Locations() []symtab.SourceLocation {
	var out []symtab.SourceLocation
	for _, s := range e.Slots {
		out = append(out, s.Loc)
	}
	return out
}

// LiteralKindMismatch reports a literal whose declared TypedBits kind
// disagrees with the kind inference chose for its slot.
type LiteralKindMismatch struct {
	Declared, Inferred string
	Loc                symtab.SourceLocation
}

func (e *LiteralKindMismatch) Error() string {
	return fmt.Sprintf("literal declared as %s but inferred as %s", e.Declared, e.Inferred)
}
func (e *LiteralKindMismatch) Locations() []symtab.SourceLocation {
	return []symtab.SourceLocation{e.Loc}
}
