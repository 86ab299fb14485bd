package rhdlcore

import (
	"runtime"
	"sync"

	"github.com/rhdl/rhdlcore/pkg/ckpt"
	"github.com/rhdl/rhdlcore/pkg/mir"
	"github.com/rhdl/rhdlcore/pkg/rtl"
)

// WorkerPool compiles a batch of independent MIR objects concurrently,
// modeled on the teacher's pkg/search.WorkerPool: a fixed goroutine count
// pulling work off a channel, writing results under a mutex. Unlike the
// teacher's pool (which only accumulates a Table of discovered rules),
// this one returns one *rtl.Object or error per input, in input order.
type WorkerPool struct {
	NumWorkers int
	Cache      *ckpt.Cache // optional; nil disables checkpointing
}

// NewWorkerPool creates a pool with the given worker count. A count <= 0
// uses runtime.NumCPU, matching pkg/search.NewWorkerPool's fallback.
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{NumWorkers: numWorkers}
}

// Result pairs one compiled object with the error (if any) producing it.
type Result struct {
	Obj *rtl.Object
	Err error
}

// CompileAll lowers every object in objs to RTL, distributing the work
// across the pool's workers. If a Cache is set, an object already present
// under its FnId is served from the cache and never recompiled; newly
// compiled objects are stored back.
func (wp *WorkerPool) CompileAll(objs []*mir.Object) []Result {
	results := make([]Result, len(objs))

	type task struct {
		idx int
		obj *mir.Object
	}
	ch := make(chan task, len(objs))
	for i, obj := range objs {
		ch <- task{idx: i, obj: obj}
	}
	close(ch)

	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < wp.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range ch {
				r := wp.compileOne(t.obj)
				mu.Lock()
				results[t.idx] = r
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return results
}

func (wp *WorkerPool) compileOne(obj *mir.Object) Result {
	if wp.Cache != nil {
		if cached, ok, err := wp.Cache.Load(obj.FnId); err == nil && ok {
			return Result{Obj: cached}
		}
	}
	rtlObj, err := Compile(obj)
	if err != nil {
		return Result{Err: err}
	}
	if wp.Cache != nil {
		_ = wp.Cache.Store(obj.FnId, rtlObj)
	}
	return Result{Obj: rtlObj}
}
