// Package ckpt persists lowered RTL objects across CLI invocations so a
// pipeline run over a growing call tree does not relower callees already
// compiled on a previous run.
package ckpt

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rhdl/rhdlcore/pkg/rtl"
	"github.com/rhdl/rhdlcore/pkg/symtab"
)

// Cache is a directory of gob-encoded RTL objects keyed by FunctionId.
type Cache struct {
	Dir string
}

// Open returns a Cache rooted at dir, creating it if necessary.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ckpt: open %s: %w", dir, err)
	}
	return &Cache{Dir: dir}, nil
}

func (c *Cache) path(id symtab.FunctionId) string {
	return filepath.Join(c.Dir, string(id)+".gob")
}

// Load returns the cached RTL object for id, or ok=false if absent.
func (c *Cache) Load(id symtab.FunctionId) (obj *rtl.Object, ok bool, err error) {
	f, err := os.Open(c.path(id))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ckpt: load %s: %w", id, err)
	}
	defer f.Close()
	var got rtl.Object
	if err := gob.NewDecoder(f).Decode(&got); err != nil {
		return nil, false, fmt.Errorf("ckpt: decode %s: %w", id, err)
	}
	return &got, true, nil
}

// Store writes obj under id, overwriting any prior entry.
func (c *Cache) Store(id symtab.FunctionId, obj *rtl.Object) error {
	f, err := os.Create(c.path(id))
	if err != nil {
		return fmt.Errorf("ckpt: store %s: %w", id, err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(obj); err != nil {
		return fmt.Errorf("ckpt: encode %s: %w", id, err)
	}
	return nil
}
