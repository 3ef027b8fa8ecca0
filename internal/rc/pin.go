package rc

import "argentum/internal/rtobject"

// RetainPinNN retains a pinned object (known non-null): a non-shared,
// single-owner object whose parent the caller manages separately (e.g. a
// thread's root). Pinned objects are never MT-flagged.
func (c *Context) RetainPinNN(obj rtobject.ObjectID) {
	o, ok := c.Heap.Object(obj)
	if !ok {
		return
	}
	o.SetRefCount(o.RefCount() + 1)
	c.Heap.SetObject(obj, o)
}

// RetainPin is RetainPinNN with a null check.
func (c *Context) RetainPin(obj rtobject.ObjectID) {
	if obj != rtobject.None {
		c.RetainPinNN(obj)
	}
}

// ReleasePinNN releases a pinned object (known non-null): disposes at
// zero, but unlike ReleaseOwnNN never touches the parent link, since the
// caller already moved or cleared it before calling this.
func (c *Context) ReleasePinNN(obj rtobject.ObjectID) {
	o, ok := c.Heap.Object(obj)
	if !ok {
		return
	}
	n := o.RefCount() - 1
	o.SetRefCount(n)
	c.Heap.SetObject(obj, o)
	if n == 0 {
		c.DisposeObj(obj)
	}
}

// ReleasePin is ReleasePinNN with a null check.
func (c *Context) ReleasePin(obj rtobject.ObjectID) {
	if obj != rtobject.None {
		c.ReleasePinNN(obj)
	}
}
