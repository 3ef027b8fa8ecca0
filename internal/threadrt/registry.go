package threadrt

import (
	"sync"

	"argentum/internal/rc"
	"argentum/internal/rtobject"
)

// Registry tracks every live Thread in a program, the way ag_threads_mutex
// plus the ag_alloc_thread bump allocator and ag_thread_free list track
// worker threads in the reference runtime. Unlike that free-list allocator,
// Go threads are plain goroutines with no slot to recycle; Registry exists
// to hand out ThreadIDs and let PostCross look a target thread up by id.
type Registry struct {
	heap *rtobject.Heap
	mt   *rc.Context // never dispatched on; lends its shared mt buffer + class table to every thread's own Context

	mu      sync.Mutex
	threads map[rtobject.ThreadID]*Thread
	next    rtobject.ThreadID
}

// NewRegistry returns an empty registry backed by one shared heap; every
// Thread it spawns shares one MT retain/release buffer and one class
// dispose table, matching one process-wide ag_retain_buffer and one
// dispatcher-keyed Dispose vtable.
func NewRegistry(heap *rtobject.Heap) *Registry {
	mt, classes := rc.NewMTBuffer()
	return &Registry{
		heap:    heap,
		mt:      rc.NewSharedContext(heap, 0, classes, mt),
		threads: map[rtobject.ThreadID]*Thread{},
		next:    1,
	}
}

// RegisterClass installs a class's dispose hook for every thread this
// registry ever spawns, present and future.
func (r *Registry) RegisterClass(id rtobject.ClassID, ops rc.ClassOps) {
	r.mt.RegisterClass(id, ops)
}

// Spawn allocates a new thread id and Thread, registers it, and returns it
// unstarted — the caller runs it with go thread.Run(ctx), mirroring
// ag_m_sys_Thread_start's pthread_create after building the ag_thread.
func (r *Registry) Spawn() *Thread {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.next
	r.next++
	ctx := rc.NewSharedContext(r.heap, id, r.mt.ClassTable(), r.mt.MTBuffer())
	th := New(id, ctx)
	r.threads[id] = th
	return th
}

// MainThread returns the registry's distinguished thread 0, creating it on
// first call — ag_main_thread, the thread ag_fn_sys_setMainObject and
// ag_init's initial AgObject root run on before any ag_m_sys_Thread_start.
func (r *Registry) MainThread() *Thread {
	r.mu.Lock()
	defer r.mu.Unlock()
	if th, ok := r.threads[0]; ok {
		return th
	}
	ctx := rc.NewSharedContext(r.heap, 0, r.mt.ClassTable(), r.mt.MTBuffer())
	th := New(0, ctx)
	r.threads[0] = th
	return th
}

// Lookup returns the thread registered under id, or nil.
func (r *Registry) Lookup(id rtobject.ThreadID) *Thread {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.threads[id]
}

// Retire drops a stopped thread's bookkeeping entry — ag_dtor_sys_Thread's
// handoff of the ag_thread struct onto the free list, minus the reuse since
// Go has no fixed-size thread pool to recycle.
func (r *Registry) Retire(id rtobject.ThreadID) {
	r.mu.Lock()
	delete(r.threads, id)
	r.mu.Unlock()
}

// PostCross posts a call to receiver's owning thread, first marking the
// weak reference MT — the Go equivalent of ag_make_weak_mt's "previously
// this belonged only to one thread" bookkeeping. It does not change the
// weak block's OwningThread. owner is the thread id the receiver's weak
// block currently records as OwningThread.
func (r *Registry) PostCross(owner rtobject.ThreadID, receiver rtobject.WeakID, fn FuncRef, params []uint64, tramp Trampoline) bool {
	th := r.Lookup(owner)
	if th == nil {
		return false
	}
	th.Ctx.MarkWeakMT(receiver)
	th.Post(receiver, fn, params, tramp)
	return true
}
