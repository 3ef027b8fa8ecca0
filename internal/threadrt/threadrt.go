// Package threadrt implements the language's thread runtime: one message
// queue and event loop per thread (ag_thread/ag_thread_proc), cross-thread
// posting of calls and timers (ag_prepare_post_from_ag/ag_post_param_from_ag,
// ag_fn_sys_postTimer), and a thread's root-object lifetime
// (ag_fn_sys_setMainObject, ag_dtor_sys_Thread). The reference runtime
// threads every cross-thread call through a thread-local out-queue that
// gets drained into the target's in-queue so a poster never blocks while
// holding its own thread's lock; a Go *Thread can be posted to directly
// because its queue is guarded by its own mutex, so that two-hop buffering
// collapses into one Post call without changing delivery order or the
// receiver-owns-its-queue invariant.
package threadrt

import (
	"context"
	"sync"
	"time"

	"argentum/internal/rc"
	"argentum/internal/rtobject"
)

// FuncRef is an opaque reference to a compiled method entry point. The
// actual calling convention a Trampoline uses to turn it into a call
// belongs to generated code, which this package never depends on.
type FuncRef uint64

// Trampoline unpacks the params captured for one posted call and invokes
// fn on receiver. Dispatch calls it with the thread's own lock already
// released, matching "it unlocks mutex internally" in the reference
// runtime's ag_trampoline contract.
type Trampoline func(receiver rtobject.ObjectID, fn FuncRef, params []uint64)

type call struct {
	tramp    Trampoline
	receiver rtobject.WeakID
	fn       FuncRef
	params   []uint64
}

type armedTimer struct {
	at     time.Time
	target rtobject.WeakID
	proc   func(rtobject.ObjectID)
}

// Thread is one language-level execution context: an ordered call queue,
// at most one armed timer, and a root object whose lifetime keeps the
// thread's event loop running. Build one per goroutine with New (or
// Registry.Spawn) and run it with Run.
type Thread struct {
	ID  rtobject.ThreadID
	Ctx *rc.Context

	mu      sync.Mutex
	queue   []call
	root    rtobject.ObjectID
	timer   *armedTimer
	stopped bool
	wake    chan struct{}
}

// New returns a Thread that runs on ctx. A single-threaded program or a
// test can pass a plain rc.NewContext; a multi-threaded program builds every
// Thread's Context with rc.NewSharedContext over one rc.NewMTBuffer() pair,
// as Registry.Spawn does.
func New(id rtobject.ThreadID, ctx *rc.Context) *Thread {
	return &Thread{ID: id, Ctx: ctx, wake: make(chan struct{}, 1)}
}

func (t *Thread) notify() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// SetRoot installs obj as the thread's root object, retaining it as a pin
// (the thread, not any other object, owns this reference) and releasing
// whatever root it held before. It refuses — leaving the thread rootless —
// if obj already has an owning parent elsewhere, exactly like
// ag_fn_sys_setMainObject.
func (t *Thread) SetRoot(obj rtobject.ObjectID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Ctx.ReleaseOwn(t.root)
	t.root = rtobject.None
	if obj != rtobject.None && t.Ctx.GetParent(obj) != rtobject.None {
		return false
	}
	t.Ctx.RetainPin(obj)
	t.root = obj
	t.notify()
	return true
}

// Root returns the thread's current root object, or rtobject.None.
func (t *Thread) Root() rtobject.ObjectID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.root
}

// Post enqueues a call against receiver to run on this thread. receiver is
// resolved from its weak reference only once Dispatch actually runs it, not
// at post time — deferring the deref the way thread_proc does rather than
// the poster, so a receiver that dies before its turn reaches the
// trampoline as rtobject.None.
func (t *Thread) Post(receiver rtobject.WeakID, fn FuncRef, params []uint64, tramp Trampoline) {
	t.mu.Lock()
	t.queue = append(t.queue, call{tramp: tramp, receiver: receiver, fn: fn, params: params})
	t.mu.Unlock()
	t.notify()
}

// PostTimer arms a one-shot timer that fires proc on target no sooner than
// at, replacing whatever timer was previously armed — ag_fn_sys_postTimer.
// Returns false if the thread has already stopped. PostTimer retains
// target's weak reference for the life of the armed timer and releases it
// once the timer fires, is replaced, or the thread exits with it still
// unfired; the reference implementation leaves this ownership implicit
// (its timer slot is only ever drained on thread teardown), which this
// runtime makes an explicit retain/release pair instead of a special case.
func (t *Thread) PostTimer(at time.Time, target rtobject.WeakID, proc func(rtobject.ObjectID)) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return false
	}
	t.Ctx.RetainWeak(target)
	if t.timer != nil {
		t.Ctx.ReleaseWeak(t.timer.target)
	}
	t.timer = &armedTimer{at: at, target: target, proc: proc}
	t.notify()
	return true
}

// Stop asks the thread to drop its root and exit once its queue drains —
// the signal ag_dtor_sys_Thread sends a worker thread before joining it.
func (t *Thread) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
	t.notify()
}

// Run is the thread's event loop: it drains queued calls in arrival order,
// then an expired timer, then sleeps until the next wake-up or the timer's
// deadline, and exits once stopped (or rootless with an empty queue and no
// timer) — ag_thread_proc's four-way priority (incoming, timer, outgoing,
// sleep-or-quit) collapsed to three since this runtime posts directly into
// the receiver's queue instead of staging through a separate out-queue.
func (t *Thread) Run(ctx context.Context) {
	for {
		t.mu.Lock()
		if len(t.queue) > 0 {
			c := t.queue[0]
			t.queue = t.queue[1:]
			t.mu.Unlock()
			t.dispatch(c)
			continue
		}
		if t.timer != nil && !time.Now().Before(t.timer.at) {
			tm := t.timer
			t.timer = nil
			t.mu.Unlock()
			t.fireTimer(tm)
			continue
		}
		if t.stopped || (t.root == rtobject.None && t.timer == nil) {
			leftover := t.timer
			t.timer = nil
			root := t.root
			t.root = rtobject.None
			t.mu.Unlock()
			t.Ctx.ReleaseOwn(root)
			if leftover != nil {
				t.Ctx.ReleaseWeak(leftover.target)
			}
			return
		}
		wait := t.sleepDuration()
		t.mu.Unlock()
		select {
		case <-t.wake:
		case <-time.After(wait):
		case <-ctx.Done():
			return
		}
	}
}

// sleepDuration must be called with t.mu held; it never blocks.
func (t *Thread) sleepDuration() time.Duration {
	if t.timer == nil {
		return time.Hour
	}
	d := time.Until(t.timer.at)
	if d < 0 {
		return 0
	}
	return d
}

func (t *Thread) dispatch(c call) {
	receiver := t.Ctx.DerefWeak(c.receiver)
	if receiver != rtobject.None {
		t.Ctx.RetainPinNN(receiver)
	}
	c.tramp(receiver, c.fn, c.params)
	t.Ctx.ReleasePin(receiver)
	t.Ctx.ReleaseWeak(c.receiver)
}

func (t *Thread) fireTimer(tm *armedTimer) {
	defer t.Ctx.ReleaseWeak(tm.target)
	target := t.Ctx.DerefWeak(tm.target)
	if target == rtobject.None {
		return
	}
	t.Ctx.RetainPinNN(target)
	tm.proc(target)
	t.Ctx.ReleasePin(target)
}
