// Package abi is the embedding surface generated code calls into: one
// function or method per entry in runtime.h's C ABI symbol list
// (ag_retain_own, ag_splice, ag_copy, ag_mk_weak, ag_fn_sys_setMainObject,
// ...), renamed to Go convention and delegating to internal/rc,
// internal/copyengine and internal/threadrt. LLVM
// lowering owns the actual calling convention (how a compiled frame reads
// these out of a dispatch table); this package only has to give every
// runtime.h symbol a home with the right signature and semantics so that
// lowering has something real to call.
package abi

import (
	"context"
	"log"
	"os"
	"runtime"
	"time"

	"argentum/internal/copyengine"
	"argentum/internal/rc"
	"argentum/internal/rtobject"
	"argentum/internal/threadrt"
)

// Runtime bundles one heap, its retain/release context, the copy-engine
// class registry, and the thread registry a running program needs — the
// process-wide globals (ag_main_thread, ag_retain_buffer, ag_threads_mutex)
// the reference runtime keeps as C statics.
type Runtime struct {
	Heap    *rtobject.Heap
	Ctx     *rc.Context
	CopyReg *copyengine.Registry
	Threads *threadrt.Registry
	Logger  *log.Logger
}

// New builds a fresh Runtime with its own heap and main thread — ag_init().
func New(logger *log.Logger) *Runtime {
	heap := rtobject.NewHeap()
	threads := threadrt.NewRegistry(heap)
	main := threads.MainThread()
	return &Runtime{
		Heap:    heap,
		Ctx:     main.Ctx,
		CopyReg: copyengine.NewRegistry(),
		Threads: threads,
		Logger:  logger,
	}
}

// RegisterClass installs a class's dispose hook (internal/rc) and
// structural-copy hooks (internal/copyengine) together, since every class
// needs both and they must agree on the same ClassID.
func (r *Runtime) RegisterClass(id rtobject.ClassID, dispose func(ctx *rc.Context, obj rtobject.ObjectID), copyOps copyengine.ClassOps) {
	r.Ctx.RegisterClass(id, rc.ClassOps{Dispose: dispose})
	r.CopyReg.RegisterClass(id, copyOps)
}

// LeakDetectorOK reports whether every object and weak block this runtime
// ever allocated has since been released — ag_leak_detector_ok.
func (r *Runtime) LeakDetectorOK() bool { return r.Heap.LeakDetectorOK() }

// MaxMem reports the process's peak memory usage in bytes — ag_max_mem(),
// which reads the platform allocator's high-water mark; Go exposes no
// equivalent allocator hook, so this reads runtime.MemStats' nearest
// analogue instead of reimplementing an allocator.
func (r *Runtime) MaxMem() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Sys
}

//
// AgObject support
//

func (r *Runtime) ReleaseOwn(obj rtobject.ObjectID)        { r.Ctx.ReleaseOwn(obj) }
func (r *Runtime) RetainOwn(obj, parent rtobject.ObjectID) { r.Ctx.RetainOwn(obj, parent) }
func (r *Runtime) SetParent(obj, parent rtobject.ObjectID) { r.Ctx.SetParent(obj, parent) }
func (r *Runtime) Splice(obj, parent rtobject.ObjectID) bool {
	return r.Ctx.Splice(obj, parent)
}
func (r *Runtime) Copy(src rtobject.ObjectID) rtobject.ObjectID {
	return copyengine.Copy(r.Ctx, r.CopyReg, src)
}
func (r *Runtime) Freeze(src rtobject.ObjectID) rtobject.ObjectID {
	return copyengine.Freeze(r.Ctx, r.CopyReg, src)
}
func (r *Runtime) ReleasePin(obj rtobject.ObjectID)    { r.Ctx.ReleasePin(obj) }
func (r *Runtime) RetainPin(obj rtobject.ObjectID)     { r.Ctx.RetainPin(obj) }
func (r *Runtime) ReleaseShared(obj rtobject.ObjectID) { r.Ctx.ReleaseShared(obj) }
func (r *Runtime) RetainShared(obj rtobject.ObjectID)  { r.Ctx.RetainShared(obj) }
func (r *Runtime) DisposeObj(obj rtobject.ObjectID)    { r.Ctx.DisposeObj(obj) }

func (r *Runtime) AllocateObj(class rtobject.ClassID, payload any) rtobject.ObjectID {
	return r.Heap.AllocateObject(class, payload)
}

// CopyObjectField performs a standalone topology-preserving copy of one
// field, parenting the new top-level copy under parent —
// ag_copy_object_field, used wherever generated code copies a single
// nested reference rather than a whole class's worth of fields (Copy and
// Freeze instead always reparent their root to None, since a root has no
// containing copy to parent it under).
func (r *Runtime) CopyObjectField(src, parent rtobject.ObjectID) rtobject.ObjectID {
	return copyengine.CopyField(r.Ctx, r.CopyReg, src, parent)
}

// MakeShared flags obj itself as Shared in place, without copying it —
// ag_fn_sys_make_shared, for an object already known to have exactly one
// reference (fresh off a literal or a just-allocated instance).
func (r *Runtime) MakeShared(obj rtobject.ObjectID) {
	o, ok := r.Heap.Object(obj)
	if !ok {
		return
	}
	o.Counter |= rtobject.FlagShared
	r.Heap.SetObject(obj, o)
}

// GetParent returns obj's current parent, or None — ag_fn_sys_getParent.
func (r *Runtime) GetParent(obj rtobject.ObjectID) rtobject.ObjectID {
	return r.Ctx.GetParent(obj)
}

//
// AgWeak support
//

func (r *Runtime) ReleaseWeak(w rtobject.WeakID) { r.Ctx.ReleaseWeak(w) }
func (r *Runtime) RetainWeak(w rtobject.WeakID)  { r.Ctx.RetainWeak(w) }
func (r *Runtime) MkWeak(obj rtobject.ObjectID) rtobject.WeakID {
	return r.Ctx.MkWeak(obj)
}
func (r *Runtime) DerefWeak(w rtobject.WeakID) rtobject.ObjectID {
	return r.Ctx.DerefWeak(w)
}

//
// System
//

// Terminate shuts the process down with the given exit code —
// ag_fn_sys_terminate.
func (r *Runtime) Terminate(code int) { os.Exit(code) }

// SetMainObject installs root as the main thread's root object —
// ag_fn_sys_setMainObject.
func (r *Runtime) SetMainObject(root rtobject.ObjectID) bool {
	return r.Threads.MainThread().SetRoot(root)
}

// Log writes s to the runtime's logger — ag_fn_sys_log.
func (r *Runtime) Log(s string) {
	if r.Logger != nil {
		r.Logger.Println(s)
	}
}

//
// Thread
//

// ThreadStart spawns a new thread rooted at root and starts its event
// loop running in its own goroutine — ag_m_sys_Thread_start.
func (r *Runtime) ThreadStart(root rtobject.ObjectID) *threadrt.Thread {
	th := r.Threads.Spawn()
	th.SetRoot(root)
	go th.Run(context.Background())
	return th
}

// ThreadRoot returns a weak reference to th's root object —
// ag_m_sys_Thread_root.
func (r *Runtime) ThreadRoot(th *threadrt.Thread) rtobject.WeakID {
	return th.Ctx.MkWeak(th.Root())
}

//
// Cross-thread FFI interop
//

// PostTimer arms a one-shot timer on th, firing proc on target no sooner
// than delay from now — ag_fn_sys_postTimer.
func (r *Runtime) PostTimer(th *threadrt.Thread, delay time.Duration, target rtobject.WeakID, proc func(rtobject.ObjectID)) bool {
	return th.PostTimer(time.Now().Add(delay), target, proc)
}

// PostMessage posts a call to receiver's owning thread — the single-call
// equivalent of ag_prepare_post_message/ag_put_thread_param*/
// ag_finalize_post_message, collapsed into one call because Go passes
// params as a real slice rather than writing them one word at a time into
// a queue buffer a trampoline later reads back out.
func (r *Runtime) PostMessage(owner rtobject.ThreadID, receiver rtobject.WeakID, fn threadrt.FuncRef, params []uint64, tramp threadrt.Trampoline) bool {
	return r.Threads.PostCross(owner, receiver, fn, params, tramp)
}
