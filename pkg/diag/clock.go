package diag

import (
	"fmt"
	"strings"

	"github.com/rhdl/rhdlcore/pkg/kind"
	"github.com/rhdl/rhdlcore/pkg/symtab"
)

// ClockErrorKind names which clock-domain rule (§4.4's table) was violated.
type ClockErrorKind uint8

const (
	BinaryOperationClockMismatch ClockErrorKind = iota
	SelectClockMismatch
	IndexClockMismatch
	SpliceClockMismatch
	AssignmentClockMismatch
	CastClockMismatch
	RetimeClockMismatch
	UnresolvedClock
	EnumClockMismatch
	TupleClockMismatch
	StructClockMismatch
	CaseClockMismatch
	ExternalClockMismatch
	WrapClockMismatch
	ArrayClockMismatch
)

func (k ClockErrorKind) String() string {
	names := [...]string{
		"BinaryOperationClockMismatch", "SelectClockMismatch", "IndexClockMismatch",
		"SpliceClockMismatch", "AssignmentClockMismatch", "CastClockMismatch",
		"RetimeClockMismatch", "UnresolvedClock", "EnumClockMismatch",
		"TupleClockMismatch", "StructClockMismatch", "CaseClockMismatch",
		"ExternalClockMismatch", "WrapClockMismatch", "ArrayClockMismatch",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "UnknownClockError"
}

// ClockError reports that the leaves named by Elements disagreed on clock
// color; when more than one distinct color participates, the message says
// "Multiple" per spec.md §4.4.
type ClockError struct {
	Kind     ClockErrorKind
	Elements []ClockElement
	Loc      symtab.SourceLocation
}

// ClockElement names one expression involved in a clock mismatch and the
// color it resolved to.
type ClockElement struct {
	Name  string
	Color kind.Color
}

func (e *ClockError) Error() string {
	colors := make(map[string]struct{})
	var names []string
	for _, el := range e.Elements {
		colors[el.Color.String()] = struct{}{}
		names = append(names, fmt.Sprintf("%s=%s", el.Name, el.Color))
	}
	summary := "Multiple"
	if len(colors) == 1 {
		for c := range colors {
			summary = c
		}
	}
	return fmt.Sprintf("%s: %s (%s)", e.Kind, strings.Join(names, ", "), summary)
}

func (e *ClockError) Locations() []symtab.SourceLocation {
	return []symtab.SourceLocation{e.Loc}
}

// UnresolvedClockError reports a slot whose clock color remained a free
// variable after the clock-check pass.
type UnresolvedClockError struct {
	Slot string
	Loc  symtab.SourceLocation
}

func (e *UnresolvedClockError) Error() string {
	return fmt.Sprintf("slot %s has unresolved clock domain", e.Slot)
}
func (e *UnresolvedClockError) Locations() []symtab.SourceLocation {
	return []symtab.SourceLocation{e.Loc}
}
