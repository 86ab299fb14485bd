// Package rhdlcore wires the three compiler passes — pkg/infer,
// pkg/clockcheck, pkg/lower — into the single Compile entry point the CLI
// and any embedding Go program call, mirroring how the teacher's
// cmd/z80opt wraps pkg/search/pkg/stoke behind one Run function.
package rhdlcore

import (
	"fmt"

	"github.com/rhdl/rhdlcore/pkg/clockcheck"
	"github.com/rhdl/rhdlcore/pkg/infer"
	"github.com/rhdl/rhdlcore/pkg/lower"
	"github.com/rhdl/rhdlcore/pkg/mir"
	"github.com/rhdl/rhdlcore/pkg/rhif"
	"github.com/rhdl/rhdlcore/pkg/rtl"
)

// Infer runs type inference over a MIR object and returns the typed RHIF
// object, without validating clock domains or lowering.
func Infer(obj *mir.Object) (*rhif.Object, error) {
	rhifObj, err := infer.Infer(obj)
	if err != nil {
		return nil, fmt.Errorf("rhdlcore: infer %s: %w", obj.FnId, err)
	}
	return rhifObj, nil
}

// InferWithContext is Infer for a MIR object whose Kind/Literals TypeIds
// were allocated from a caller-owned UnifyContext (pkg/mirjson decodes MIR
// objects this way, so its declared argument/literal types share an arena
// with the inference pass that consumes them).
func InferWithContext(ctx *mir.UnifyContext, obj *mir.Object) (*rhif.Object, error) {
	rhifObj, err := infer.InferWithContext(ctx, obj)
	if err != nil {
		return nil, fmt.Errorf("rhdlcore: infer %s: %w", obj.FnId, err)
	}
	return rhifObj, nil
}

// CheckClocks validates clock-domain consistency on an already-inferred
// RHIF object.
func CheckClocks(obj *rhif.Object) error {
	if err := clockcheck.Check(obj); err != nil {
		return fmt.Errorf("rhdlcore: check-clocks %s: %w", obj.FnId, err)
	}
	return nil
}

// Lower flattens a clock-checked RHIF object into RTL.
func Lower(obj *rhif.Object) (*rtl.Object, error) {
	rtlObj, err := lower.Compile(obj)
	if err != nil {
		return nil, fmt.Errorf("rhdlcore: lower %s: %w", obj.FnId, err)
	}
	return rtlObj, nil
}

// Compile runs infer, check-clocks, and lower in sequence, the "pipeline"
// subcommand's behavior as a library call.
func Compile(obj *mir.Object) (*rtl.Object, error) {
	rhifObj, err := Infer(obj)
	if err != nil {
		return nil, err
	}
	if err := CheckClocks(rhifObj); err != nil {
		return nil, err
	}
	return Lower(rhifObj)
}

// CompileWithContext is Compile for a MIR object decoded via pkg/mirjson,
// whose TypeIds require InferWithContext (see its doc comment).
func CompileWithContext(ctx *mir.UnifyContext, obj *mir.Object) (*rtl.Object, error) {
	rhifObj, err := InferWithContext(ctx, obj)
	if err != nil {
		return nil, err
	}
	if err := CheckClocks(rhifObj); err != nil {
		return nil, err
	}
	return Lower(rhifObj)
}
