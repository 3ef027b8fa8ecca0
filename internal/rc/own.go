package rc

import "argentum/internal/rtobject"

// RetainOwnNN retains obj (known non-null) on behalf of parent, recording
// parent in obj's parent link. MT-flagged objects (reachable from a field
// of a frozen/shared ancestor) go through the deferred buffer instead of
// an inline increment.
func (c *Context) RetainOwnNN(obj, parent rtobject.ObjectID) {
	o, ok := c.Heap.Object(obj)
	if !ok {
		return
	}
	if o.IsMT() {
		c.mt.registerRetain(c, mtEntry{kind: mtObject, obj: obj})
		c.SetParentNN(obj, parent)
		return
	}
	o.SetRefCount(o.RefCount() + 1)
	c.Heap.SetObject(obj, o)
	c.SetParentNN(obj, parent)
}

// RetainOwn is RetainOwnNN with a null check.
func (c *Context) RetainOwn(obj, parent rtobject.ObjectID) {
	if obj != rtobject.None {
		c.RetainOwnNN(obj, parent)
	}
}

// ReleaseOwnNN releases obj (known non-null): disposes at zero, otherwise
// detaches it back to the stack sentinel (None) since the caller has
// already moved or is about to overwrite whatever held it.
func (c *Context) ReleaseOwnNN(obj rtobject.ObjectID) {
	o, ok := c.Heap.Object(obj)
	if !ok {
		return
	}
	if o.IsMT() {
		c.mt.registerRelease(c, mtEntry{kind: mtObject, obj: obj})
		return
	}
	n := o.RefCount() - 1
	o.SetRefCount(n)
	c.Heap.SetObject(obj, o)
	if n == 0 {
		c.DisposeObj(obj)
	} else {
		c.SetParentNN(obj, rtobject.None)
	}
}

// ReleaseOwn is ReleaseOwnNN with a null check.
func (c *Context) ReleaseOwn(obj rtobject.ObjectID) {
	if obj != rtobject.None {
		c.ReleaseOwnNN(obj)
	}
}
