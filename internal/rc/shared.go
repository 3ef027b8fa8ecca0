package rc

import "argentum/internal/rtobject"

// RetainSharedNN retains a shared object (known non-null). A refcount of
// zero marks a static-lifetime value (a string literal or named constant)
// that was never allocated with a real count; those are left alone.
func (c *Context) RetainSharedNN(obj rtobject.ObjectID) {
	o, ok := c.Heap.Object(obj)
	if !ok || o.RefCount() == 0 {
		return
	}
	if o.IsMT() {
		c.mt.registerRetain(c, mtEntry{kind: mtObject, obj: obj})
		return
	}
	o.SetRefCount(o.RefCount() + 1)
	c.Heap.SetObject(obj, o)
}

// RetainShared is RetainSharedNN with a null check.
func (c *Context) RetainShared(obj rtobject.ObjectID) {
	if obj != rtobject.None {
		c.RetainSharedNN(obj)
	}
}

// ReleaseSharedNN releases a shared object (known non-null), disposing it
// at zero. Static-lifetime values (refcount already zero) are no-ops.
func (c *Context) ReleaseSharedNN(obj rtobject.ObjectID) {
	o, ok := c.Heap.Object(obj)
	if !ok || o.RefCount() == 0 {
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
	}
}

// ReleaseShared is ReleaseSharedNN with a null check.
func (c *Context) ReleaseShared(obj rtobject.ObjectID) {
	if obj != rtobject.None {
		c.ReleaseSharedNN(obj)
	}
}
