package path

import (
	"fmt"

	"github.com/rhdl/rhdlcore/pkg/kind"
)

type DynamicIndexOnNonArray struct {
	Element PathElement
	Kind    *kind.Kind
}

func (e *DynamicIndexOnNonArray) Error() string {
	return fmt.Sprintf("dynamic index %v on non-array type %s", e.Element, e.Kind)
}

type SignalValueOnNonSignal struct{ Kind *kind.Kind }

func (e *SignalValueOnNonSignal) Error() string {
	return fmt.Sprintf("signal value step not valid for non-signal type %s", e.Kind)
}

type TupleIndexOutOfBounds struct {
	Ndx  int
	Kind *kind.Kind
}

func (e *TupleIndexOutOfBounds) Error() string {
	return fmt.Sprintf("tuple index %d out of bounds for %s", e.Ndx, e.Kind)
}

type StructIndexOutOfBounds struct {
	Ndx  int
	Kind *kind.Kind
}

func (e *StructIndexOutOfBounds) Error() string {
	return fmt.Sprintf("struct index %d out of bounds for %s", e.Ndx, e.Kind)
}

type TupleIndexingNotAllowed struct{ Kind *kind.Kind }

func (e *TupleIndexingNotAllowed) Error() string {
	return fmt.Sprintf("tuple indexing not allowed on %s", e.Kind)
}

type ArrayIndexOutOfBounds struct {
	Ndx  int
	Kind *kind.Kind
}

func (e *ArrayIndexOutOfBounds) Error() string {
	return fmt.Sprintf("array index %d out of bounds for %s", e.Ndx, e.Kind)
}

type IndexingNotAllowed struct{ Kind *kind.Kind }

func (e *IndexingNotAllowed) Error() string {
	return fmt.Sprintf("indexing not allowed on %s", e.Kind)
}

type FieldNotFound struct {
	Field string
	Kind  *kind.Kind
}

func (e *FieldNotFound) Error() string {
	return fmt.Sprintf("field %q not found in %s", e.Field, e.Kind)
}

type FieldIndexingNotAllowed struct{ Kind *kind.Kind }

func (e *FieldIndexingNotAllowed) Error() string {
	return fmt.Sprintf("field indexing not allowed on %s", e.Kind)
}

type EnumPayloadNotFound struct {
	Name string
	Kind *kind.Kind
}

func (e *EnumPayloadNotFound) Error() string {
	return fmt.Sprintf("enum variant %q payload not found in %s", e.Name, e.Kind)
}

type EnumPayloadNotValid struct{ Kind *kind.Kind }

func (e *EnumPayloadNotValid) Error() string {
	return fmt.Sprintf("enum payload not valid for non-enum type %s", e.Kind)
}

type EnumPayloadByValueNotFound struct {
	Disc int64
	Kind *kind.Kind
}

func (e *EnumPayloadByValueNotFound) Error() string {
	return fmt.Sprintf("enum payload not found for discriminant %d in %s", e.Disc, e.Kind)
}

type DynamicIndicesNotResolved struct{ Path Path }

func (e *DynamicIndicesNotResolved) Error() string {
	return fmt.Sprintf("dynamic indices must be resolved before calling BitRange: %v", e.Path)
}
