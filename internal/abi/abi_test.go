package abi

import (
	"log"
	"testing"
	"time"

	"argentum/internal/copyengine"
	"argentum/internal/rc"
	"argentum/internal/rtobject"
)

const classPoint rtobject.ClassID = 1

func TestRegisterClassInstallsTheDisposeHook(t *testing.T) {
	rt := New(log.New(nil, "", 0))
	disposed := make(chan rtobject.ObjectID, 1)
	rt.RegisterClass(classPoint,
		func(ctx *rc.Context, obj rtobject.ObjectID) { disposed <- obj },
		copyengine.ClassOps{},
	)

	obj := rt.AllocateObj(classPoint, nil)
	rt.ReleaseOwn(obj)

	select {
	case got := <-disposed:
		if got != obj {
			t.Fatalf("disposed %v, want %v", got, obj)
		}
	default:
		t.Fatalf("releasing the last reference should have disposed the object")
	}
}

func TestSetMainObjectInstallsTheRootOnTheMainThread(t *testing.T) {
	rt := New(nil)
	root := rt.AllocateObj(classPoint, nil)
	if !rt.SetMainObject(root) {
		t.Fatalf("setting an unparented object as the main root should succeed")
	}
	if rt.Threads.MainThread().Root() != root {
		t.Fatalf("main thread root should be the object just installed")
	}
}

func TestCopyObjectFieldParentsTheCopyUnderTheGivenParent(t *testing.T) {
	rt := New(nil)
	rt.RegisterClass(classPoint, nil, copyengine.ClassOps{})

	parent := rt.AllocateObj(classPoint, nil)
	src := rt.AllocateObj(classPoint, nil)

	dst := rt.CopyObjectField(src, parent)
	if dst == src {
		t.Fatalf("CopyObjectField should allocate a fresh copy, not reuse src")
	}
	if rt.GetParent(dst) != parent {
		t.Fatalf("copy's parent = %v, want %v", rt.GetParent(dst), parent)
	}
}

func TestMakeSharedFlagsTheObjectInPlace(t *testing.T) {
	rt := New(nil)
	obj := rt.AllocateObj(classPoint, nil)
	rt.MakeShared(obj)
	o, ok := rt.Heap.Object(obj)
	if !ok || !o.IsShared() {
		t.Fatalf("object should be flagged Shared after MakeShared")
	}
}

func TestPostTimerFiresOnASpawnedThread(t *testing.T) {
	rt := New(nil)
	th := rt.ThreadStart(rtobject.None)
	target := th.Ctx.Heap.AllocateObject(classPoint, nil)
	th.SetRoot(target)
	w := rt.ThreadRoot(th)

	fired := make(chan rtobject.ObjectID, 1)
	if !rt.PostTimer(th, 10*time.Millisecond, w, func(obj rtobject.ObjectID) { fired <- obj }) {
		t.Fatalf("PostTimer should succeed on a freshly spawned thread")
	}

	select {
	case obj := <-fired:
		if obj != target {
			t.Fatalf("timer fired with %v, want %v", obj, target)
		}
	case <-time.After(time.Second):
		t.Fatalf("timer never fired")
	}
	th.SetRoot(rtobject.None)
}
