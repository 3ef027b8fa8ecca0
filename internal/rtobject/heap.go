package rtobject

// Heap owns the object arena and the weak-block arena. A real program has
// one Heap shared across all threads; internal/rc and internal/threadrt
// serialize access to it exactly where the reference runtime serializes
// access to the global allocator and MT buffer.
type Heap struct {
	objects *arena[Object]
	weaks   *arena[WeakBlock]
}

// NewHeap returns an empty heap.
func NewHeap() *Heap {
	return &Heap{objects: newArena[Object](), weaks: newArena[WeakBlock]()}
}

// AllocateObject reserves a new object with the given class and a refcount
// of one (the allocation's own implicit owning reference), no parent, no
// weak block yet.
func (h *Heap) AllocateObject(class ClassID, payload any) ObjectID {
	obj := Object{Header: Header{Class: class, Counter: Step}, Payload: payload}
	return ObjectID(h.objects.alloc(obj))
}

// Object returns the object at id, or false if id is None or has been
// disposed.
func (h *Heap) Object(id ObjectID) (Object, bool) {
	return h.objects.get(uint32(id))
}

// SetObject overwrites the stored object at id; id must be live.
func (h *Heap) SetObject(id ObjectID, obj Object) {
	h.objects.set(uint32(id), obj)
}

// DisposeObject releases id's slot back to the arena. Callers (internal/rc)
// must have already run the class's visitor over every owned/weak field
// and released or nulled them before calling this.
func (h *Heap) DisposeObject(id ObjectID) {
	h.objects.release(uint32(id))
}

// AllocateWeak reserves a new weak block targeting target, with refcount
// one, remembering the target's current parent link as OrgParent, and
// owned by thread.
func (h *Heap) AllocateWeak(target ObjectID, orgParent ObjectID, thread ThreadID) WeakID {
	wb := WeakBlock{Target: target, Counter: Step, OrgParent: orgParent, OwningThread: thread}
	return WeakID(h.weaks.alloc(wb))
}

// Weak returns the weak block at id, or false if id is None or disposed.
func (h *Heap) Weak(id WeakID) (WeakBlock, bool) {
	return h.weaks.get(uint32(id))
}

// SetWeak overwrites the stored weak block at id; id must be live.
func (h *Heap) SetWeak(id WeakID, wb WeakBlock) {
	h.weaks.set(uint32(id), wb)
}

// DisposeWeak releases a weak block's slot once its own refcount and its
// target have both gone to nothing.
func (h *Heap) DisposeWeak(id WeakID) {
	h.weaks.release(uint32(id))
}

// LeakDetectorOK reports whether every allocated object and weak block has
// been released, mirroring ag_leak_detector_ok(): a single-threaded test
// run with balanced retain/release should always see this return true at
// exit.
func (h *Heap) LeakDetectorOK() bool {
	return h.objects.liveCount() == 0 && h.weaks.liveCount() == 0
}

// LiveObjectCount and LiveWeakCount expose the raw counts for diagnostics
// and tests that want a specific number rather than the boolean summary.
func (h *Heap) LiveObjectCount() int { return h.objects.liveCount() }
func (h *Heap) LiveWeakCount() int   { return h.weaks.liveCount() }
