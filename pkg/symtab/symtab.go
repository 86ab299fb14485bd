// Package symtab tracks source provenance across the compiler passes: every
// op in every IR carries a SourceLocation, and each pass's symbol table maps
// its own registers/operands back to the location that produced them.
package symtab

import (
	"bytes"
	"encoding/gob"

	"github.com/rs/xid"
)

// FunctionId opaquely identifies a compiled function across the module
// table. Generated with xid rather than a central counter so concurrent
// compilations (pkg/rhdlcore's worker pool) never collide without locking.
type FunctionId string

// RegisterId opaquely identifies a register within a single Object.
type RegisterId string

// NewFunctionId mints a fresh, globally unique FunctionId.
func NewFunctionId() FunctionId { return FunctionId(xid.New().String()) }

// NewRegisterId mints a fresh, globally unique RegisterId.
func NewRegisterId() RegisterId { return RegisterId(xid.New().String()) }

// NodeId identifies a node within a function's source tree (AST/MIR), as
// assigned by the external elaborator.
type NodeId int

// SourceLocation names the function and node an op or diagnostic traces
// back to.
type SourceLocation struct {
	FuncId FunctionId
	NodeId NodeId
}

// SourceSet is a shared, append-only store of SourceLocations for a module,
// keyed by FunctionId so that Exec inlining can merge a callee's source set
// into the caller's without losing either's provenance.
type SourceSet struct {
	locations map[FunctionId][]SourceLocation
}

// NewSourceSet returns an empty SourceSet.
func NewSourceSet() *SourceSet {
	return &SourceSet{locations: make(map[FunctionId][]SourceLocation)}
}

// Record appends loc under its FuncId and returns its index within that
// function's slice.
func (s *SourceSet) Record(loc SourceLocation) int {
	s.locations[loc.FuncId] = append(s.locations[loc.FuncId], loc)
	return len(s.locations[loc.FuncId]) - 1
}

// Locations returns the recorded locations for fn, in recording order.
func (s *SourceSet) Locations(fn FunctionId) []SourceLocation {
	return s.locations[fn]
}

// Merge copies every location from other into s, leaving other unchanged.
// Used when Exec lowering inlines a callee: the callee's source set is
// merged into the caller's so lowered ops retain their original provenance.
func (s *SourceSet) Merge(other *SourceSet) {
	for fn, locs := range other.locations {
		s.locations[fn] = append(s.locations[fn], locs...)
	}
}

// SymbolMap maps a pass-local key (register id, slot, or arbitrary name) to
// the SourceLocation that produced it. Distinct from SourceSet: SourceSet
// holds the raw location records, SymbolMap is the per-pass lookup index
// into them.
type SymbolMap struct {
	entries map[string]SourceLocation
}

// NewSymbolMap returns an empty SymbolMap.
func NewSymbolMap() *SymbolMap {
	return &SymbolMap{entries: make(map[string]SourceLocation)}
}

// Set records the location that produced key.
func (m *SymbolMap) Set(key string, loc SourceLocation) {
	m.entries[key] = loc
}

// Get looks up the location recorded for key.
func (m *SymbolMap) Get(key string) (SourceLocation, bool) {
	loc, ok := m.entries[key]
	return loc, ok
}

// Merge copies every entry from other into m under the given keyPrefix,
// avoiding collisions when a callee's symbol map is merged into a caller's
// during Exec inlining.
func (m *SymbolMap) Merge(keyPrefix string, other *SymbolMap) {
	for k, v := range other.entries {
		m.entries[keyPrefix+k] = v
	}
}

// Len reports the number of recorded symbols.
func (m *SymbolMap) Len() int { return len(m.entries) }
