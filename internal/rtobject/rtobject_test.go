package rtobject

import "testing"

func TestAllocateObjectStartsWithRefcountOne(t *testing.T) {
	h := NewHeap()
	id := h.AllocateObject(ClassID(1), nil)
	obj, ok := h.Object(id)
	if !ok {
		t.Fatalf("expected live object")
	}
	if obj.RefCount() != 1 {
		t.Fatalf("refcount = %d, want 1", obj.RefCount())
	}
	if obj.Link.Kind != LinkNone {
		t.Fatalf("fresh object should have no parent/weak link, got %v", obj.Link.Kind)
	}
}

func TestSetRefCountPreservesFlags(t *testing.T) {
	var h Header
	h.Counter = FlagShared
	h.SetRefCount(3)
	if h.RefCount() != 3 {
		t.Fatalf("refcount = %d, want 3", h.RefCount())
	}
	if !h.IsShared() {
		t.Fatalf("SetRefCount must not clear existing flags")
	}
}

func TestDisposeObjectFreesSlotForReuse(t *testing.T) {
	h := NewHeap()
	id := h.AllocateObject(ClassID(1), nil)
	h.DisposeObject(id)
	if _, ok := h.Object(id); ok {
		t.Fatalf("disposed object should no longer be live")
	}
	next := h.AllocateObject(ClassID(2), nil)
	if next != id {
		t.Fatalf("expected slot %d to be reused, got %d", id, next)
	}
}

func TestLeakDetectorOKOnlyWhenEverythingReleased(t *testing.T) {
	h := NewHeap()
	id := h.AllocateObject(ClassID(1), nil)
	wk := h.AllocateWeak(id, None, ThreadID(0))
	if h.LeakDetectorOK() {
		t.Fatalf("leak detector should report outstanding allocations")
	}
	h.DisposeObject(id)
	if h.LeakDetectorOK() {
		t.Fatalf("weak block still outstanding, leak detector should not pass yet")
	}
	h.DisposeWeak(wk)
	if !h.LeakDetectorOK() {
		t.Fatalf("everything released, leak detector should pass")
	}
}

func TestAllocateWeakRemembersOriginalParent(t *testing.T) {
	h := NewHeap()
	parent := h.AllocateObject(ClassID(1), nil)
	child := h.AllocateObject(ClassID(2), nil)

	wk := h.AllocateWeak(child, parent, ThreadID(7))
	wb, ok := h.Weak(wk)
	if !ok {
		t.Fatalf("expected live weak block")
	}
	if wb.OrgParent != parent {
		t.Fatalf("OrgParent = %d, want %d", wb.OrgParent, parent)
	}
	if wb.OwningThread != ThreadID(7) {
		t.Fatalf("OwningThread = %d, want 7", wb.OwningThread)
	}
}
