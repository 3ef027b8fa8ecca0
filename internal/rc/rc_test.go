package rc

import (
	"testing"

	"argentum/internal/rtobject"
)

func newCtx() (*Context, *rtobject.Heap) {
	h := rtobject.NewHeap()
	return NewContext(h, rtobject.ThreadID(0)), h
}

func TestRetainReleaseOwnBalancesToLeakFree(t *testing.T) {
	ctx, h := newCtx()
	obj := h.AllocateObject(rtobject.ClassID(1), nil)

	ctx.RetainOwn(obj, rtobject.None)
	o, _ := h.Object(obj)
	if o.RefCount() != 2 {
		t.Fatalf("refcount after retain = %d, want 2", o.RefCount())
	}

	ctx.ReleaseOwn(obj)
	o, _ = h.Object(obj)
	if o.RefCount() != 1 {
		t.Fatalf("refcount after one release = %d, want 1", o.RefCount())
	}

	ctx.ReleaseOwn(obj)
	if !h.LeakDetectorOK() {
		t.Fatalf("expected heap to be empty after balanced retain/release")
	}
}

func TestReleaseOwnDetachesParentWithoutDisposingWhileRefsRemain(t *testing.T) {
	ctx, h := newCtx()
	parent := h.AllocateObject(rtobject.ClassID(1), nil)
	child := h.AllocateObject(rtobject.ClassID(2), nil)

	ctx.RetainOwn(child, parent)
	ctx.ReleaseOwn(child)

	got := ctx.GetParent(child)
	if got != rtobject.None {
		t.Fatalf("parent after release = %v, want None", got)
	}
	if _, ok := h.Object(child); !ok {
		t.Fatalf("child should still be alive, one reference remains")
	}
}

func TestSpliceRefusesCycle(t *testing.T) {
	ctx, h := newCtx()
	a := h.AllocateObject(rtobject.ClassID(1), nil)
	b := h.AllocateObject(rtobject.ClassID(1), nil)

	ctx.SetParentNN(b, a) // b's parent is a
	if ctx.Splice(a, b) {
		t.Fatalf("splicing a under its own descendant b should be refused")
	}
}

func TestSpliceAcceptsNonCyclicAndRetains(t *testing.T) {
	ctx, h := newCtx()
	a := h.AllocateObject(rtobject.ClassID(1), nil)
	b := h.AllocateObject(rtobject.ClassID(1), nil)

	if !ctx.Splice(a, b) {
		t.Fatalf("splicing a under unrelated b should succeed")
	}
	obj, _ := h.Object(a)
	if obj.RefCount() != 2 {
		t.Fatalf("refcount after splice = %d, want 2", obj.RefCount())
	}
	if ctx.GetParent(a) != b {
		t.Fatalf("parent after splice = %v, want %v", ctx.GetParent(a), b)
	}
}

func TestMkWeakThenDisposeNullsTarget(t *testing.T) {
	ctx, h := newCtx()
	obj := h.AllocateObject(rtobject.ClassID(1), nil)

	w := ctx.MkWeak(obj)
	if ctx.DerefWeak(w) != obj {
		t.Fatalf("deref should return the live target")
	}

	ctx.ReleaseOwn(obj) // drops the allocation's own implicit reference to zero
	if ctx.DerefWeak(w) != rtobject.None {
		t.Fatalf("deref after dispose should return None")
	}
	if h.LiveObjectCount() != 0 {
		t.Fatalf("object should be gone, weak block may still be outstanding")
	}
}

func TestMkWeakTwiceReusesAndRetainsSameBlock(t *testing.T) {
	ctx, h := newCtx()
	obj := h.AllocateObject(rtobject.ClassID(1), nil)

	w1 := ctx.MkWeak(obj)
	w2 := ctx.MkWeak(obj)
	if w1 != w2 {
		t.Fatalf("second MkWeak on the same object should reuse its block")
	}
	wb, _ := h.Weak(w1)
	if wb.RefCount() != 2 {
		t.Fatalf("weak refcount = %d, want 2 after two MkWeak calls", wb.RefCount())
	}
}

func TestRetainReleaseSharedSkipsStaticLifetimeZeroCounter(t *testing.T) {
	ctx, h := newCtx()
	obj := h.AllocateObject(rtobject.ClassID(1), nil)
	o, _ := h.Object(obj)
	o.SetRefCount(0) // simulate a string-literal/const with static lifetime
	h.SetObject(obj, o)

	ctx.RetainShared(obj)
	ctx.ReleaseShared(obj)

	if _, ok := h.Object(obj); !ok {
		t.Fatalf("a static-lifetime object must never be disposed by retain/release shared")
	}
}

func TestDisposeObjRunsClassHookAndFreesWeakBlock(t *testing.T) {
	ctx, h := newCtx()
	field := h.AllocateObject(rtobject.ClassID(2), nil)
	owner := h.AllocateObject(rtobject.ClassID(1), nil)
	ctx.SetParentNN(field, owner) // field's existing allocation ref now belongs to owner

	disposed := false
	ctx.RegisterClass(rtobject.ClassID(1), ClassOps{
		Dispose: func(ctx *Context, obj rtobject.ObjectID) {
			disposed = true
			ctx.ReleaseOwn(field)
		},
	})

	w := ctx.MkWeak(owner)
	ctx.ReleaseOwnNN(owner)

	if !disposed {
		t.Fatalf("expected class dispose hook to run")
	}
	if ctx.DerefWeak(w) != rtobject.None {
		t.Fatalf("weak should observe the owner's death")
	}
	if !h.LeakDetectorOK() {
		t.Fatalf("expected heap to be fully drained, got %d objects / %d weaks",
			h.LiveObjectCount(), h.LiveWeakCount())
	}
}
