// Package copyengine implements the topology-preserving deep copy that
// backs CopyOp and FreezeOp: copy() and copy_freeze() in the reference
// runtime. Unlike the reference implementation, which threads a worklist
// through two stolen low bits of each pointer field, this version tracks
// the same two phases (structural copy, then weak-block fixup) with plain
// maps over the stable object/weak indices rtobject.Heap already hands
// out — the behavior is the same, the bit-tagging is not needed.
package copyengine

import (
	"argentum/internal/rc"
	"argentum/internal/rtobject"
)

// ClassOps is the per-class hook a generated instance layout registers so
// the engine can copy a class's own fields without knowing its layout.
// CopyFields must, for every Own/Ref pointer field, call Engine.CopyField
// and store the result into dst's corresponding field; for every Weak
// field, call Engine.CopyWeakField with a setter that stores the result.
// AfterCopy, if set, is queued and run once the whole copy finishes. The
// queue runs last-registered first, and an object's fixer is registered
// after its CopyFields has copied the objects beneath it, so an object's
// fixer runs before the fixers of the objects copied under it.
type ClassOps struct {
	CopyFields func(e *Engine, src, dst rtobject.ObjectID)
	AfterCopy  func(e *Engine, dst rtobject.ObjectID)
}

// Engine runs one Copy or Freeze call. It is not reentrant and not safe
// for concurrent use — exactly like the reference runtime's thread-local
// copy_head/copy_fixers state, one Engine should be freshly built per call
// (NewEngine does this).
type Engine struct {
	ctx     *rc.Context
	classes map[rtobject.ClassID]ClassOps
	freeze  bool

	copied  map[rtobject.ObjectID]rtobject.ObjectID // src -> dst, also the "visited" set
	order   []rtobject.ObjectID                     // src ids in first-visited order (the structural worklist)
	touched map[rtobject.WeakID]bool                // every distinct source weak id a field copy referenced
	pending map[rtobject.WeakID][]func(rtobject.WeakID)
	fixers  []func()
}

// Registry holds the class copy hooks shared across every Engine a
// program creates; callers build one Registry at startup and pass it to
// every NewEngine call.
type Registry struct {
	classes map[rtobject.ClassID]ClassOps
}

func NewRegistry() *Registry { return &Registry{classes: map[rtobject.ClassID]ClassOps{}} }

func (r *Registry) RegisterClass(id rtobject.ClassID, ops ClassOps) {
	r.classes[id] = ops
}

// Copy performs a deep, topology-preserving copy of the object graph
// rooted at root, returning the new root's id.
func Copy(ctx *rc.Context, reg *Registry, root rtobject.ObjectID) rtobject.ObjectID {
	e := newEngine(ctx, reg, false)
	return e.run(root)
}

// Freeze returns a Shared copy of the graph rooted at root, or just
// retains and returns root if it is already Shared — ag_freeze's
// short-circuit.
func Freeze(ctx *rc.Context, reg *Registry, root rtobject.ObjectID) rtobject.ObjectID {
	if root == rtobject.None {
		return rtobject.None
	}
	if o, ok := ctx.Heap.Object(root); ok && o.IsShared() {
		ctx.RetainSharedNN(root)
		return root
	}
	e := newEngine(ctx, reg, true)
	return e.run(root)
}

// CopyField performs a standalone topology-preserving copy of a single
// Own/Ref field, parenting the new copy under parent —
// ag_copy_object_field called directly from generated code rather than
// from inside another class's CopyFields hook. Unlike Copy/Freeze, whose
// root always reparents to None, the copy this produces is parented under
// its caller's own object from the start.
func CopyField(ctx *rc.Context, reg *Registry, src, parent rtobject.ObjectID) rtobject.ObjectID {
	e := newEngine(ctx, reg, false)
	dst := e.CopyField(src, parent)
	e.fixupWeaks()
	for i := len(e.fixers) - 1; i >= 0; i-- {
		e.fixers[i]()
	}
	return dst
}

func newEngine(ctx *rc.Context, reg *Registry, freeze bool) *Engine {
	return &Engine{
		ctx:     ctx,
		classes: reg.classes,
		freeze:  freeze,
		copied:  map[rtobject.ObjectID]rtobject.ObjectID{},
		touched: map[rtobject.WeakID]bool{},
		pending: map[rtobject.WeakID][]func(rtobject.WeakID){},
	}
}

func (e *Engine) run(root rtobject.ObjectID) rtobject.ObjectID {
	dst := e.CopyField(root, rtobject.None)
	e.fixupWeaks()
	for i := len(e.fixers) - 1; i >= 0; i-- {
		e.fixers[i]()
	}
	return dst
}
