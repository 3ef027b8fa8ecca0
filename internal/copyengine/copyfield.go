package copyengine

import "argentum/internal/rtobject"

// CopyField copies one Own/Ref pointer field: if src is already visited
// (this copy has seen it before, e.g. two fields alias the same object),
// it returns the existing copy; otherwise it allocates a fresh object of
// the same class, parents it under parent, records it on the structural
// worklist, and recurses into the class's own CopyFields hook before
// returning.
func (e *Engine) CopyField(src, parent rtobject.ObjectID) rtobject.ObjectID {
	if src == rtobject.None {
		return rtobject.None
	}
	if dst, ok := e.copied[src]; ok {
		return dst
	}

	srcObj, ok := e.ctx.Heap.Object(src)
	if !ok {
		return rtobject.None
	}

	dst := e.ctx.Heap.AllocateObject(srcObj.Class, nil)
	if e.freeze {
		dstObj, _ := e.ctx.Heap.Object(dst)
		dstObj.Counter |= rtobject.FlagShared
		e.ctx.Heap.SetObject(dst, dstObj)
	}
	e.ctx.SetParentNN(dst, parent)

	e.copied[src] = dst
	e.order = append(e.order, src)

	if ops, ok := e.classes[srcObj.Class]; ok {
		if ops.CopyFields != nil {
			ops.CopyFields(e, src, dst)
		}
		if ops.AfterCopy != nil {
			dstID := dst
			e.fixers = append(e.fixers, func() { ops.AfterCopy(e, dstID) })
		}
	}
	return dst
}

// CopyWeakField copies one Weak field. Because the eventual destination
// weak block depends on whether (and when) its target gets structurally
// copied, the real pointer isn't known yet — set is called once
// fixupWeaks resolves it, after the whole structural copy finishes.
func (e *Engine) CopyWeakField(src rtobject.WeakID, set func(rtobject.WeakID)) {
	if src == rtobject.None {
		set(rtobject.None)
		return
	}
	e.touched[src] = true
	e.pending[src] = append(e.pending[src], set)
}

// fixupWeaks runs once the structural copy is complete: for every source
// weak block a field copy referenced, it decides whether the new graph
// can retarget that weak to a copy within it, or must simply share the
// original block by reference.
func (e *Engine) fixupWeaks() {
	for src := range e.touched {
		wb, ok := e.ctx.Heap.Weak(src)
		setters := e.pending[src]

		retarget := ok && wb.Target != rtobject.None && wb.OwningThread == e.ctx.Thread
		var dstTarget rtobject.ObjectID
		if retarget {
			dstTarget, retarget = e.copied[wb.Target]
		}

		if !retarget {
			// Target already dead, owned by another thread, or simply
			// never reached by this copy: share the original block
			// rather than fabricate a new one pointing nowhere useful.
			for _, set := range setters {
				e.ctx.RetainWeakNN(src)
				set(src)
			}
			continue
		}

		dstParent := e.ctx.GetParent(dstTarget)
		dstWeak := e.ctx.Heap.AllocateWeak(dstTarget, dstParent, wb.OwningThread)
		for range setters[1:] {
			e.ctx.RetainWeakNN(dstWeak)
		}
		for _, set := range setters {
			set(dstWeak)
		}
	}
}
