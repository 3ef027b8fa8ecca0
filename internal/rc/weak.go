package rc

import "argentum/internal/rtobject"

// weakIsMT reports whether a weak block's own count must be journaled
// through the MT buffer rather than adjusted inline.
func weakIsMT(w rtobject.WeakBlock) bool {
	return w.Counter&rtobject.FlagMT != 0
}

// RetainWeakNN retains a weak block (known non-null/live).
func (c *Context) RetainWeakNN(w rtobject.WeakID) {
	wb, ok := c.Heap.Weak(w)
	if !ok {
		return
	}
	if weakIsMT(wb) {
		c.mt.registerRetain(c, mtEntry{kind: mtWeakBlock, weak: w})
		return
	}
	wb.SetRefCount(wb.RefCount() + 1)
	c.Heap.SetWeak(w, wb)
}

// RetainWeak is RetainWeakNN with a None check.
func (c *Context) RetainWeak(w rtobject.WeakID) {
	if w != rtobject.None {
		c.RetainWeakNN(w)
	}
}

// ReleaseWeakNN releases a weak block (known non-null/live); the last
// release frees the block itself, independent of whatever its target's
// own lifetime is doing.
func (c *Context) ReleaseWeakNN(w rtobject.WeakID) {
	wb, ok := c.Heap.Weak(w)
	if !ok {
		return
	}
	if weakIsMT(wb) {
		c.mt.registerRelease(c, mtEntry{kind: mtWeakBlock, weak: w})
		return
	}
	n := wb.RefCount() - 1
	wb.SetRefCount(n)
	c.Heap.SetWeak(w, wb)
	if n == 0 {
		c.Heap.DisposeWeak(w)
	}
}

// ReleaseWeak is ReleaseWeakNN with a None check.
func (c *Context) ReleaseWeak(w rtobject.WeakID) {
	if w != rtobject.None {
		c.ReleaseWeakNN(w)
	}
}

// MkWeak returns the (possibly newly allocated) weak block for obj. If obj
// already has a weak block, this just retains and returns it; otherwise it
// allocates one, recording obj's current parent as the block's OrgParent
// shadow and swapping obj's parent link over to point at the new block.
func (c *Context) MkWeak(obj rtobject.ObjectID) rtobject.WeakID {
	if obj == rtobject.None {
		return rtobject.None
	}
	o, ok := c.Heap.Object(obj)
	if !ok {
		return rtobject.None
	}
	if o.Link.Kind == rtobject.LinkWeak {
		c.RetainWeakNN(o.Link.Weak)
		return o.Link.Weak
	}
	var orgParent rtobject.ObjectID = rtobject.None
	if o.Link.Kind == rtobject.LinkParent {
		orgParent = o.Link.Parent
	}
	wid := c.Heap.AllocateWeak(obj, orgParent, c.Thread)
	o.Link = rtobject.ParentLink{Kind: rtobject.LinkWeak, Weak: wid}
	c.Heap.SetObject(obj, o)
	return wid
}

// DerefWeak returns the weak block's current target, or None if the
// target has been disposed or w itself is None.
func (c *Context) DerefWeak(w rtobject.WeakID) rtobject.ObjectID {
	wb, ok := c.Heap.Weak(w)
	if !ok {
		return rtobject.None
	}
	return wb.Target
}
