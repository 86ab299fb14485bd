package ckpt

import (
	"testing"

	"github.com/rhdl/rhdlcore/pkg/rtl"
	"github.com/rhdl/rhdlcore/pkg/symtab"
)

func TestStoreAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	fnId := symtab.FunctionId("fn-abc")
	obj := rtl.NewObject(fnId, "adder")
	obj.RegisterKind[0] = rtl.RegisterKind{Width: 8}

	if err := c.Store(fnId, obj); err != nil {
		t.Fatalf("Store: %v", err)
	}

	got, ok, err := c.Load(fnId)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatalf("expected cache hit after Store")
	}
	if got.Name != "adder" || got.RegisterKind[0].Width != 8 {
		t.Errorf("round-tripped object mismatch: %#v", got)
	}
}

func TestLoadMissingIsNotError(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_, ok, err := c.Load(symtab.FunctionId("nonexistent"))
	if err != nil {
		t.Fatalf("Load of a missing entry should not error: %v", err)
	}
	if ok {
		t.Fatalf("expected a cache miss")
	}
}
