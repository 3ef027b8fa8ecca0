// Package rc implements the retain/release family: strong (own), shared,
// pinned, and weak reference counting over a rtobject.Heap, parent-pointer
// maintenance, splice-cycle prevention, and deferred MT-flagged batching.
package rc

import "argentum/internal/rtobject"

// ClassOps is the per-class hook a generated instance layout registers so
// DisposeObj can release everything the object owns before the slot is
// freed. Dispose must release every Own/Ref field with ReleaseOwn and every
// Weak field with ReleaseWeak; it must not touch the object's own header.
type ClassOps struct {
	Dispose func(ctx *Context, obj rtobject.ObjectID)
}

// Context is the per-heap runtime state: the heap itself, the class
// dispose registry, and the thread-local-in-spirit MT retain/release
// buffer. A real multi-threaded program runs one Context per thread, all
// sharing the same *rtobject.Heap and MT buffer mutex.
type Context struct {
	Heap    *rtobject.Heap
	Thread  rtobject.ThreadID
	classes map[rtobject.ClassID]ClassOps
	mt      *mtBuffer
}

// NewContext returns a Context bound to heap with its own MT buffer,
// appropriate for a single-threaded program or a test. A program with more
// than one thread should build one Context per thread via NewSharedContext
// instead, so MT-flagged retain/release traffic funnels through one buffer
// no matter which thread issued it.
func NewContext(heap *rtobject.Heap, thread rtobject.ThreadID) *Context {
	return &Context{Heap: heap, Thread: thread, classes: map[rtobject.ClassID]ClassOps{}, mt: newMTBuffer()}
}

// NewSharedContext returns a Context bound to heap, sharing mt and the
// class dispose registry with every other Context built from the same
// call to NewMTBuffer/classes — use this to construct one Context per
// thread in a multi-threaded program.
func NewSharedContext(heap *rtobject.Heap, thread rtobject.ThreadID, classes map[rtobject.ClassID]ClassOps, mt *mtBuffer) *Context {
	return &Context{Heap: heap, Thread: thread, classes: classes, mt: mt}
}

// NewMTBuffer allocates the shared MT buffer NewSharedContext expects,
// along with the shared class registry every per-thread Context built on
// top of it should register against together (RegisterClass on one
// Context populates the same map every sibling Context reads).
func NewMTBuffer() (*mtBuffer, map[rtobject.ClassID]ClassOps) {
	return newMTBuffer(), map[rtobject.ClassID]ClassOps{}
}

// RegisterClass installs the dispose hook for class id.
func (c *Context) RegisterClass(id rtobject.ClassID, ops ClassOps) {
	c.classes[id] = ops
}

// ClassTable returns the class dispose table this Context shares with
// every sibling Context built from the same NewSharedContext inputs, so
// callers (internal/threadrt's Registry) can hand that same table to a
// freshly constructed per-thread Context.
func (c *Context) ClassTable() map[rtobject.ClassID]ClassOps { return c.classes }

// MTBuffer returns the MT buffer this Context posts journaled retain/
// release traffic through, so a caller can build another Context sharing
// it (see NewSharedContext).
func (c *Context) MTBuffer() *mtBuffer { return c.mt }

// GetParent returns obj's current parent, or None if obj has no parent
// (it's shared, a root, or currently detached to the stack sentinel).
func (c *Context) GetParent(obj rtobject.ObjectID) rtobject.ObjectID {
	if obj == rtobject.None {
		return rtobject.None
	}
	o, ok := c.Heap.Object(obj)
	if !ok {
		return rtobject.None
	}
	switch o.Link.Kind {
	case rtobject.LinkParent:
		return o.Link.Parent
	case rtobject.LinkWeak:
		wb, ok := c.Heap.Weak(o.Link.Weak)
		if !ok {
			return rtobject.None
		}
		return wb.OrgParent
	default:
		return rtobject.None
	}
}

// SetParentNN writes parent into obj's parent slot, whether that slot is
// the inline parent link or the weak block's OrgParent shadow. Callers
// must already know obj != None.
func (c *Context) SetParentNN(obj rtobject.ObjectID, parent rtobject.ObjectID) {
	o, ok := c.Heap.Object(obj)
	if !ok {
		return
	}
	switch o.Link.Kind {
	case rtobject.LinkWeak:
		wb, ok := c.Heap.Weak(o.Link.Weak)
		if !ok {
			return
		}
		wb.OrgParent = parent
		c.Heap.SetWeak(o.Link.Weak, wb)
	default:
		o.Link = rtobject.ParentLink{Kind: rtobject.LinkParent, Parent: parent}
		c.Heap.SetObject(obj, o)
	}
}

// SetParent is SetParentNN with a null check.
func (c *Context) SetParent(obj, parent rtobject.ObjectID) {
	if obj != rtobject.None {
		c.SetParentNN(obj, parent)
	}
}

// DisposeObj runs obj's class dispose hook (releasing every field it
// owns), detaches its weak block if it has one, and frees its heap slot.
func (c *Context) DisposeObj(obj rtobject.ObjectID) {
	o, ok := c.Heap.Object(obj)
	if !ok {
		return
	}
	if ops, ok := c.classes[o.Class]; ok && ops.Dispose != nil {
		ops.Dispose(c, obj)
	}
	if o.Link.Kind == rtobject.LinkWeak {
		wb, ok := c.Heap.Weak(o.Link.Weak)
		if ok {
			wb.Target = rtobject.None
			c.Heap.SetWeak(o.Link.Weak, wb)
		}
		c.ReleaseWeakNN(o.Link.Weak)
	}
	c.Heap.DisposeObject(obj)
}
