// Package rtobject models the runtime's heap: object headers, weak blocks,
// and the arenas that back them. The reference implementation packs class
// id, refcount, and parent/weak links into raw pointer-tagged machine
// words; here every object and weak block lives at a stable integer index
// into an arena, and the pointer-tag tricks become ordinary enum
// discriminants over an explicit link type.
package rtobject

// ClassID identifies an object's class for dynamic cast and dispatch; it
// stands in for the "dispatcher function pointer doubles as class id"
// pattern the reference runtime uses.
type ClassID uint32

// Flags are the low bits of an object's counter word.
type Flags uint64

const (
	FlagMT     Flags = 1 << iota // retain/release for this object must go through the shared MT buffer
	FlagWeak                     // a weak block exists for this object
	FlagShared                   // object is frozen/shared: multi-rooted; its counter goes through the MT buffer only if FlagMT is also set
	FlagHash                     // a shared object's cached hash has been computed and stored
)

// Step is the refcount increment that keeps the four flag bits clear; the
// actual reference count is Counter / Step.
const Step = 16

// LinkKind discriminates what ParentLink currently holds, replacing the two
// tag bits the reference runtime steals from a raw pointer.
type LinkKind int

const (
	// LinkNone is an object with neither a parent nor a weak block yet.
	LinkNone LinkKind = iota
	// LinkParent holds a direct owning parent; only an Own/Ref object not
	// yet observed through a weak reference stays in this state.
	LinkParent
	// LinkWeak holds a weak block index; set the first time MkWeak
	// observes this object, and from then on the weak block's OrgParent
	// field remembers what the parent used to be.
	LinkWeak
)

// ParentLink is an object's wb_p word: either nothing, a parent object, or
// a weak block, never more than one at a time.
type ParentLink struct {
	Kind   LinkKind
	Parent ObjectID
	Weak   WeakID
}

// Header is the three-word object header every heap object carries:
// dispatcher (class identity), counter (flags + refcount), and parent/weak
// link.
type Header struct {
	Class   ClassID
	Counter Flags // flag bits in the low nibble, refcount in (Counter / Step)
	Link    ParentLink
}

// RefCount extracts the reference count packed above the flag bits.
func (h Header) RefCount() uint64 { return uint64(h.Counter) / Step }

// SetRefCount rewrites the refcount while preserving flag bits.
func (h *Header) SetRefCount(n uint64) {
	h.Counter = Flags(n*Step) | (h.Counter & (Step - 1))
}

func (h Header) hasFlag(f Flags) bool { return h.Counter&f != 0 }

// IsShared reports whether this object was frozen: it may be reached from
// more than one owning root. Whether its counter goes through the MT buffer
// is decided by IsMT, not by this flag.
func (h Header) IsShared() bool { return h.hasFlag(FlagShared) }

// IsMT reports whether retain/release on this object must be funneled
// through the shared buffer rather than done inline.
func (h Header) IsMT() bool { return h.hasFlag(FlagMT) }

// Object is a heap object: its header plus an opaque payload pointer the
// owning package (internal/containers, generated instance layouts, ...)
// interprets. rtobject itself never looks inside Payload.
type Object struct {
	Header
	Payload any
}

// WeakBlock is the four-word weak-block record: target, refcount/flags,
// the parent link the target had before a weak block existed for it, and
// the thread that owns the target.
type WeakBlock struct {
	Target       ObjectID // None once the target has been disposed
	Counter      Flags    // flag bits + refcount, same packing as Header.Counter
	OrgParent    ObjectID // target's parent link before MkWeak replaced it, None if it had none
	OwningThread ThreadID
}

// ThreadID identifies the language thread an object or weak block is bound
// to; see internal/threadrt.
type ThreadID uint32

// RefCount extracts the weak block's own reference count (how many live
// Weak pointers reference this block, independent of the target's count).
func (w WeakBlock) RefCount() uint64 { return uint64(w.Counter) / Step }

func (w *WeakBlock) SetRefCount(n uint64) {
	w.Counter = Flags(n*Step) | (w.Counter & (Step - 1))
}
