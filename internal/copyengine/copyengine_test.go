package copyengine

import (
	"testing"

	"argentum/internal/rc"
	"argentum/internal/rtobject"
)

const (
	classNode rtobject.ClassID = 1
)

// nodePayload models a simple class with one Own child field and one Weak
// back-pointer field, the shape the topo-copy test in the scenario table
// exercises (a small tree with parent back-weaks).
type nodePayload struct {
	child rtobject.ObjectID
	back  rtobject.WeakID
}

func registerNode(reg *Registry) {
	reg.RegisterClass(classNode, ClassOps{
		CopyFields: func(e *Engine, src, dst rtobject.ObjectID) {
			srcObj, _ := e.ctx.Heap.Object(src)
			p := srcObj.Payload.(*nodePayload)
			dstP := &nodePayload{}

			dstP.child = e.CopyField(p.child, dst)
			e.CopyWeakField(p.back, func(w rtobject.WeakID) { dstP.back = w })

			dstObj, _ := e.ctx.Heap.Object(dst)
			dstObj.Payload = dstP
			e.ctx.Heap.SetObject(dst, dstObj)
		},
	})
}

func TestCopyPreservesWeakTopology(t *testing.T) {
	heap := rtobject.NewHeap()
	ctx := rc.NewContext(heap, rtobject.ThreadID(0))
	reg := NewRegistry()
	registerNode(reg)

	parent := heap.AllocateObject(classNode, &nodePayload{})
	child := heap.AllocateObject(classNode, &nodePayload{})
	ctx.SetParentNN(child, parent)

	parentObj, _ := heap.Object(parent)
	parentObj.Payload.(*nodePayload).child = child
	heap.SetObject(parent, parentObj)

	backWeak := ctx.MkWeak(parent)
	childObj, _ := heap.Object(child)
	childObj.Payload.(*nodePayload).back = backWeak
	heap.SetObject(child, childObj)

	newParent := Copy(ctx, reg, parent)

	newParentObj, _ := heap.Object(newParent)
	newParentPayload := newParentObj.Payload.(*nodePayload)
	newChild := newParentPayload.child
	if newChild == child {
		t.Fatalf("copy should allocate a fresh child, got the original")
	}

	newChildObj, _ := heap.Object(newChild)
	newChildPayload := newChildObj.Payload.(*nodePayload)
	target := ctx.DerefWeak(newChildPayload.back)
	if target != newParent {
		t.Fatalf("copied child's back-weak should retarget to the new parent, got %v want %v", target, newParent)
	}
}

func TestFreezeOfAlreadySharedJustRetains(t *testing.T) {
	heap := rtobject.NewHeap()
	ctx := rc.NewContext(heap, rtobject.ThreadID(0))
	reg := NewRegistry()
	registerNode(reg)

	obj := heap.AllocateObject(classNode, &nodePayload{})
	o, _ := heap.Object(obj)
	o.Counter |= rtobject.FlagShared
	heap.SetObject(obj, o)

	got := Freeze(ctx, reg, obj)
	if got != obj {
		t.Fatalf("freezing an already-shared object should return it unchanged, got %v want %v", got, obj)
	}
	o, _ = heap.Object(obj)
	if o.RefCount() != 2 {
		t.Fatalf("refcount = %d, want 2 after the extra retain", o.RefCount())
	}
}

func TestFreezeOfOwnedAllocatesASharedCopy(t *testing.T) {
	heap := rtobject.NewHeap()
	ctx := rc.NewContext(heap, rtobject.ThreadID(0))
	reg := NewRegistry()
	registerNode(reg)

	obj := heap.AllocateObject(classNode, &nodePayload{})

	got := Freeze(ctx, reg, obj)
	if got == obj {
		t.Fatalf("freezing a non-shared object must allocate a new copy")
	}
	o, _ := heap.Object(got)
	if !o.IsShared() {
		t.Fatalf("frozen copy should carry the Shared flag")
	}
}
