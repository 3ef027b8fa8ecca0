package rc

import "argentum/internal/rtobject"

// Splice sets obj's parent to parent and retains obj, unless parent is
// already reachable from obj by walking parent pointers — an ownership
// cycle — in which case it changes nothing and returns false.
func (c *Context) Splice(obj, parent rtobject.ObjectID) bool {
	if obj == rtobject.None {
		return true
	}
	for p := parent; p != rtobject.None; p = c.GetParent(p) {
		if p == obj {
			return false
		}
	}
	c.SetParentNN(obj, parent)
	o, ok := c.Heap.Object(obj)
	if ok {
		o.SetRefCount(o.RefCount() + 1)
		c.Heap.SetObject(obj, o)
	}
	return true
}
