package containers

import (
	"argentum/internal/copyengine"
	"argentum/internal/rc"
	"argentum/internal/rtobject"
)

// OwnArray is a contiguous sequence of Own pointers parented to the array
// object itself — array-base-inc.h instantiated by own-array.c.
type OwnArray struct {
	Items []rtobject.ObjectID
}

func (a *OwnArray) Capacity() int { return len(a.Items) }

// Insert opens count empty (None) slots at index at.
func (a *OwnArray) Insert(at, count int) { a.Items = insertSpan(a.Items, at, count) }

// Delete releases and removes count elements starting at index at.
func (a *OwnArray) Delete(ctx *rc.Context, at, count int) {
	if count == 0 || at > len(a.Items) || at+count > len(a.Items) {
		return
	}
	for _, it := range a.Items[at : at+count] {
		ctx.ReleaseOwn(it)
	}
	a.Items = deleteSpan(a.Items, at, count)
}

// Move swaps the [x,y) and [y,z) spans in place.
func (a *OwnArray) Move(x, y, z int) bool { return moveSpan(a.Items, x, y, z) }

// GetAt returns a pinned (not re-owned) reference to the element at index,
// or None if out of range — ag_m_sys_Array_getAt's ag_retain_pin.
func (a *OwnArray) GetAt(ctx *rc.Context, index int) rtobject.ObjectID {
	if index < 0 || index >= len(a.Items) {
		return rtobject.None
	}
	ctx.RetainPin(a.Items[index])
	return a.Items[index]
}

// SetAt replaces the element at index with val (retained as a new Own
// child of owner), releasing the previous element.
func (a *OwnArray) SetAt(ctx *rc.Context, owner rtobject.ObjectID, index int, val rtobject.ObjectID) {
	if index < 0 || index >= len(a.Items) {
		return
	}
	ctx.RetainOwn(val, owner)
	ctx.ReleaseOwn(a.Items[index])
	a.Items[index] = val
}

// SetOptAt is SetAt's ?T-returning sibling: it hands the replaced element
// back to the caller instead of releasing it, detaching its parent first
// so the caller now solely owns it — ag_m_sys_Array_setOptAt.
func (a *OwnArray) SetOptAt(ctx *rc.Context, owner rtobject.ObjectID, index int, val rtobject.ObjectID) rtobject.ObjectID {
	if index < 0 || index >= len(a.Items) {
		return rtobject.None
	}
	ctx.RetainOwn(val, owner)
	prev := a.Items[index]
	ctx.SetParent(prev, rtobject.None)
	a.Items[index] = val
	return prev
}

// SpliceAt moves val (already rooted elsewhere) into slot index, refusing
// if that would create an ownership cycle — ag_m_sys_Array_spliceAt.
func (a *OwnArray) SpliceAt(ctx *rc.Context, owner rtobject.ObjectID, index int, val rtobject.ObjectID) bool {
	if index < 0 || index >= len(a.Items) {
		return false
	}
	if !ctx.Splice(val, owner) {
		return false
	}
	ctx.ReleaseOwn(a.Items[index])
	a.Items[index] = val
	return true
}

// Dispose releases every element — ag_dtor_sys_Array.
func (a *OwnArray) Dispose(ctx *rc.Context) {
	for _, it := range a.Items {
		ctx.ReleaseOwn(it)
	}
}

// CopyFields deep-copies every element under dst via the engine's
// structural worklist — ag_copy_sys_Array's AG_COPY(ag_copy_object_field).
func (a *OwnArray) CopyFields(e *copyengine.Engine, dst rtobject.ObjectID) *OwnArray {
	out := &OwnArray{Items: make([]rtobject.ObjectID, len(a.Items))}
	for i, it := range a.Items {
		out.Items[i] = e.CopyField(it, dst)
	}
	return out
}

// SharedArray is a contiguous sequence of Shared pointers — array-base-inc.h
// instantiated by shared-array.c. Unlike OwnArray its elements have no
// single parent; every retain/release goes through the shared family.
type SharedArray struct {
	Items []rtobject.ObjectID
}

func (a *SharedArray) Capacity() int { return len(a.Items) }

func (a *SharedArray) Insert(at, count int) { a.Items = insertSpan(a.Items, at, count) }

func (a *SharedArray) Delete(ctx *rc.Context, at, count int) {
	if count == 0 || at > len(a.Items) || at+count > len(a.Items) {
		return
	}
	for _, it := range a.Items[at : at+count] {
		ctx.ReleaseShared(it)
	}
	a.Items = deleteSpan(a.Items, at, count)
}

func (a *SharedArray) Move(x, y, z int) bool { return moveSpan(a.Items, x, y, z) }

func (a *SharedArray) GetAt(ctx *rc.Context, index int) rtobject.ObjectID {
	if index < 0 || index >= len(a.Items) {
		return rtobject.None
	}
	ctx.RetainShared(a.Items[index])
	return a.Items[index]
}

func (a *SharedArray) SetAt(ctx *rc.Context, index int, val rtobject.ObjectID) {
	if index < 0 || index >= len(a.Items) {
		return
	}
	ctx.RetainShared(val)
	ctx.ReleaseShared(a.Items[index])
	a.Items[index] = val
}

func (a *SharedArray) Dispose(ctx *rc.Context) {
	for _, it := range a.Items {
		ctx.ReleaseShared(it)
	}
}

// CopyFields shares every element by reference with an extra retain,
// rather than deep-copying it — a shared array's elements are never
// exclusively owned by this array in the first place, so the copy just
// takes out a new reference on each, same as ag_copy_sys_SharedArray's
// AG_COPY(*TO = *FROM; ag_retain_shared(*FROM)).
func (a *SharedArray) CopyFields(ctx *rc.Context) *SharedArray {
	out := &SharedArray{Items: append([]rtobject.ObjectID(nil), a.Items...)}
	for _, it := range out.Items {
		ctx.RetainShared(it)
	}
	return out
}

// WeakArray is a contiguous sequence of Weak pointers — array-base-inc.h
// instantiated by weak-array.c.
type WeakArray struct {
	Items []rtobject.WeakID
}

func (a *WeakArray) Capacity() int { return len(a.Items) }

func (a *WeakArray) Insert(at, count int) { a.Items = insertSpan(a.Items, at, count) }

func (a *WeakArray) Delete(ctx *rc.Context, at, count int) {
	if count == 0 || at > len(a.Items) || at+count > len(a.Items) {
		return
	}
	for _, it := range a.Items[at : at+count] {
		ctx.ReleaseWeak(it)
	}
	a.Items = deleteSpan(a.Items, at, count)
}

func (a *WeakArray) Move(x, y, z int) bool { return moveSpan(a.Items, x, y, z) }

func (a *WeakArray) GetAt(ctx *rc.Context, index int) rtobject.WeakID {
	if index < 0 || index >= len(a.Items) {
		return rtobject.None
	}
	ctx.RetainWeak(a.Items[index])
	return a.Items[index]
}

func (a *WeakArray) SetAt(ctx *rc.Context, index int, val rtobject.WeakID) {
	if index < 0 || index >= len(a.Items) {
		return
	}
	ctx.RetainWeak(val)
	ctx.ReleaseWeak(a.Items[index])
	a.Items[index] = val
}

func (a *WeakArray) Dispose(ctx *rc.Context) {
	for _, it := range a.Items {
		ctx.ReleaseWeak(it)
	}
}

// CopyFields retargets every element through the engine's weak fixup pass
// instead of copying eagerly — ag_copy_sys_WeakArray's AG_COPY(ag_copy_weak_field).
func (a *WeakArray) CopyFields(e *copyengine.Engine, dst rtobject.ObjectID) *WeakArray {
	out := &WeakArray{Items: make([]rtobject.WeakID, len(a.Items))}
	for i, it := range a.Items {
		idx := i
		e.CopyWeakField(it, func(w rtobject.WeakID) { out.Items[idx] = w })
	}
	return out
}
