package rc

import "argentum/internal/rtobject"

// MarkWeakMT flags a weak block as crossing a thread boundary the first
// time a weak reference to it is posted to another thread — ag_make_weak_mt.
// Once marked, the block's own retain/release go through the shared MT
// buffer instead of being adjusted inline, since more than one thread may
// now touch its count.
func (c *Context) MarkWeakMT(w rtobject.WeakID) {
	if w == rtobject.None {
		return
	}
	wb, ok := c.Heap.Weak(w)
	if !ok || wb.Counter&rtobject.FlagMT != 0 {
		return
	}
	wb.Counter |= rtobject.FlagMT
	c.Heap.SetWeak(w, wb)
}

// RebindWeakThread moves a weak block's owning thread to thread and marks
// it MT, the simplified form of ag_bound_own_to_thread this runtime needs:
// the reference implementation also walks a shared object's own fields
// re-marking every weak it finds, a per-class field visitor that has no
// counterpart here because everything this runtime posts across threads is
// addressed by a single weak reference rather than by an owning subtree.
func (c *Context) RebindWeakThread(w rtobject.WeakID, thread rtobject.ThreadID) {
	if w == rtobject.None {
		return
	}
	wb, ok := c.Heap.Weak(w)
	if !ok {
		return
	}
	wb.OwningThread = thread
	wb.Counter |= rtobject.FlagMT
	c.Heap.SetWeak(w, wb)
}
