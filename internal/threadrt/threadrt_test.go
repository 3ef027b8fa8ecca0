package threadrt

import (
	"context"
	"sync"
	"testing"
	"time"

	"argentum/internal/rc"
	"argentum/internal/rtobject"
)

func newTestThread() (*Thread, *rtobject.Heap, *rc.Context) {
	heap := rtobject.NewHeap()
	ctx := rc.NewContext(heap, rtobject.ThreadID(1))
	return New(rtobject.ThreadID(1), ctx), heap, ctx
}

func TestSetRootRefusesAnObjectThatAlreadyHasAParent(t *testing.T) {
	th, heap, ctx := newTestThread()
	parent := heap.AllocateObject(rtobject.ClassID(1), nil)
	child := heap.AllocateObject(rtobject.ClassID(1), nil)
	ctx.SetParentNN(child, parent)

	if th.SetRoot(child) {
		t.Fatalf("setting a parented object as root should be refused")
	}
	if th.Root() != rtobject.None {
		t.Fatalf("thread should stay rootless after a refused SetRoot")
	}
}

func TestSetRootPinsAndReleasesThePreviousRoot(t *testing.T) {
	th, heap, ctx := newTestThread()
	first := heap.AllocateObject(rtobject.ClassID(1), nil)
	second := heap.AllocateObject(rtobject.ClassID(1), nil)

	if !th.SetRoot(first) {
		t.Fatalf("setting an unparented object as root should succeed")
	}
	if !th.SetRoot(second) {
		t.Fatalf("replacing the root should succeed")
	}

	o, ok := heap.Object(first)
	if !ok {
		t.Fatalf("first root should still be alive, its allocation reference remains")
	}
	if o.RefCount() != 1 {
		t.Fatalf("first root refcount = %d, want 1 after the thread's pin is released", o.RefCount())
	}
	ctx.ReleaseOwn(first)
	if _, ok := heap.Object(first); ok {
		t.Fatalf("first root should be gone once its last reference drops")
	}
}

func TestRunDispatchesAPostedCallAndExitsWhenRootless(t *testing.T) {
	th, heap, ctx := newTestThread()
	receiverObj := heap.AllocateObject(rtobject.ClassID(1), nil)
	th.SetRoot(receiverObj)
	w := ctx.MkWeak(receiverObj)
	ctx.RetainWeak(w) // the call's own reference, released by dispatch

	var mu sync.Mutex
	var got rtobject.ObjectID
	tramp := func(receiver rtobject.ObjectID, fn FuncRef, params []uint64) {
		mu.Lock()
		got = receiver
		mu.Unlock()
	}
	th.Post(w, FuncRef(42), nil, tramp)

	done := make(chan struct{})
	go func() {
		th.Run(context.Background())
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	th.SetRoot(rtobject.None)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("thread did not exit after its root was cleared")
	}

	mu.Lock()
	defer mu.Unlock()
	if got != receiverObj {
		t.Fatalf("dispatched call received %v, want %v", got, receiverObj)
	}
}

func TestPostTimerFiresAfterItsDeadline(t *testing.T) {
	th, heap, ctx := newTestThread()
	target := heap.AllocateObject(rtobject.ClassID(1), nil)
	th.SetRoot(target)
	w := ctx.MkWeak(target)

	fired := make(chan rtobject.ObjectID, 1)
	th.PostTimer(time.Now().Add(10*time.Millisecond), w, func(obj rtobject.ObjectID) {
		fired <- obj
	})

	go th.Run(context.Background())
	defer th.SetRoot(rtobject.None)

	select {
	case obj := <-fired:
		if obj != target {
			t.Fatalf("timer fired with %v, want %v", obj, target)
		}
	case <-time.After(time.Second):
		t.Fatalf("timer never fired")
	}
}
