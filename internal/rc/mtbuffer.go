package rc

import (
	"sync"

	"argentum/internal/rtobject"
)

// retainBufferSize mirrors AG_RETAIN_BUFFER_SIZE: the ring buffer drains
// itself (flushes) once this many journaled ops have accumulated.
const retainBufferSize = 8192

type mtTargetKind int

const (
	mtObject mtTargetKind = iota
	mtWeakBlock
)

type mtEntry struct {
	kind mtTargetKind
	obj  rtobject.ObjectID
	weak rtobject.WeakID
}

// mtBuffer journals retain/release ops against MT-flagged objects and
// weak blocks so cross-thread traffic doesn't take a lock on every single
// increment/decrement; it only locks when it flushes.
type mtBuffer struct {
	mu      sync.Mutex
	retain  []mtEntry
	release []mtEntry
}

func newMTBuffer() *mtBuffer {
	return &mtBuffer{}
}

func (b *mtBuffer) registerRetain(ctx *Context, e mtEntry) {
	b.mu.Lock()
	b.retain = append(b.retain, e)
	full := len(b.retain)+len(b.release) >= retainBufferSize
	b.mu.Unlock()
	if full {
		b.flush(ctx)
	}
}

func (b *mtBuffer) registerRelease(ctx *Context, e mtEntry) {
	b.mu.Lock()
	b.release = append(b.release, e)
	full := len(b.retain)+len(b.release) >= retainBufferSize
	b.mu.Unlock()
	if full {
		b.flush(ctx)
	}
}

// flush applies every journaled retain/release under the buffer's mutex,
// then disposes anything that reached a zero count after releasing the
// lock, matching the original's "apply under lock, destroy after unlock"
// split so dispose (which can run arbitrary user afterCopy/dtor code)
// never runs while holding the shared buffer's mutex.
func (b *mtBuffer) flush(ctx *Context) {
	b.mu.Lock()
	retain := b.retain
	release := b.release
	b.retain = nil
	b.release = nil

	var disposeObjs []rtobject.ObjectID
	var disposeWeaks []rtobject.WeakID

	for _, e := range retain {
		switch e.kind {
		case mtObject:
			if o, ok := ctx.Heap.Object(e.obj); ok {
				o.SetRefCount(o.RefCount() + 1)
				ctx.Heap.SetObject(e.obj, o)
			}
		case mtWeakBlock:
			if w, ok := ctx.Heap.Weak(e.weak); ok {
				w.SetRefCount(w.RefCount() + 1)
				ctx.Heap.SetWeak(e.weak, w)
			}
		}
	}
	for _, e := range release {
		switch e.kind {
		case mtObject:
			o, ok := ctx.Heap.Object(e.obj)
			if !ok {
				continue
			}
			n := o.RefCount() - 1
			o.SetRefCount(n)
			ctx.Heap.SetObject(e.obj, o)
			if n == 0 {
				disposeObjs = append(disposeObjs, e.obj)
			}
		case mtWeakBlock:
			w, ok := ctx.Heap.Weak(e.weak)
			if !ok {
				continue
			}
			n := w.RefCount() - 1
			w.SetRefCount(n)
			ctx.Heap.SetWeak(e.weak, w)
			if n == 0 {
				disposeWeaks = append(disposeWeaks, e.weak)
			}
		}
	}
	b.mu.Unlock()

	for _, id := range disposeObjs {
		ctx.DisposeObj(id)
	}
	for _, id := range disposeWeaks {
		ctx.Heap.DisposeWeak(id)
	}
}
