package containers

import (
	"testing"

	"argentum/internal/rc"
	"argentum/internal/rtobject"
)

// identityHasher treats each object's own id as its hash and compares keys
// by identity — enough to exercise the Robin Hood probe/insert/delete
// logic without a real per-class hash/equals dispatch.
type identityHasher struct{}

func (identityHasher) Hash(ctx *rc.Context, key rtobject.ObjectID) uint64 {
	return uint64(key) * 2654435761
}
func (identityHasher) Equal(ctx *rc.Context, a, b rtobject.ObjectID) bool { return a == b }

func newCtx() (*rc.Context, *rtobject.Heap) {
	h := rtobject.NewHeap()
	return rc.NewContext(h, rtobject.ThreadID(0)), h
}

func TestOwnArraySetAtReplacesAndReleasesPrevious(t *testing.T) {
	ctx, h := newCtx()
	owner := h.AllocateObject(rtobject.ClassID(1), nil)
	a := &OwnArray{}
	a.Insert(0, 2)

	first := h.AllocateObject(rtobject.ClassID(2), nil)
	a.SetAt(ctx, owner, 0, first)
	o, _ := h.Object(first)
	if o.RefCount() != 2 {
		t.Fatalf("refcount after SetAt = %d, want 2 (allocation + array)", o.RefCount())
	}
	ctx.ReleasePin(first) // drop the allocation's reference; the array now holds the only one

	second := h.AllocateObject(rtobject.ClassID(2), nil)
	a.SetAt(ctx, owner, 0, second)
	if _, ok := h.Object(first); ok {
		t.Fatalf("previous element should be released once replaced")
	}
	if a.Items[0] != second {
		t.Fatalf("slot should now hold the new element")
	}
}

func TestOwnArrayDisposeReleasesEveryElement(t *testing.T) {
	ctx, h := newCtx()
	owner := h.AllocateObject(rtobject.ClassID(1), nil)
	a := &OwnArray{}
	a.Insert(0, 2)
	x := h.AllocateObject(rtobject.ClassID(2), nil)
	y := h.AllocateObject(rtobject.ClassID(2), nil)
	a.SetAt(ctx, owner, 0, x)
	a.SetAt(ctx, owner, 1, y)
	ctx.ReleasePin(x) // drop the allocation references; the array now holds the only ones
	ctx.ReleasePin(y)

	a.Dispose(ctx)
	if h.LiveObjectCount() != 1 { // owner itself remains
		t.Fatalf("expected only the owner left alive, got %d live objects", h.LiveObjectCount())
	}
}

func TestOwnMapSetGetDeleteRoundTrips(t *testing.T) {
	ctx, h := newCtx()
	owner := h.AllocateObject(rtobject.ClassID(1), nil)
	m := &OwnMap{}
	hasher := identityHasher{}

	key := h.AllocateObject(rtobject.ClassID(2), nil)
	val := h.AllocateObject(rtobject.ClassID(3), nil)
	prev := m.SetAt(ctx, hasher, owner, key, val)
	if prev != rtobject.None {
		t.Fatalf("first SetAt on a fresh key should return None, got %v", prev)
	}
	if m.Size() != 1 {
		t.Fatalf("size after one SetAt = %d, want 1", m.Size())
	}

	got := m.GetAt(ctx, hasher, key)
	if got != val {
		t.Fatalf("GetAt = %v, want %v", got, val)
	}
	ctx.ReleasePin(got)

	deleted := m.Delete(ctx, hasher, key)
	if deleted != val {
		t.Fatalf("Delete = %v, want %v", deleted, val)
	}
	if m.Size() != 0 {
		t.Fatalf("size after Delete = %d, want 0", m.Size())
	}
	if m.GetAt(ctx, hasher, key) != rtobject.None {
		t.Fatalf("GetAt after Delete should find nothing")
	}
}

func TestOwnMapRehashPreservesAllEntries(t *testing.T) {
	ctx, h := newCtx()
	owner := h.AllocateObject(rtobject.ClassID(1), nil)
	m := &OwnMap{}
	hasher := identityHasher{}

	keys := make([]rtobject.ObjectID, 0, 20)
	for i := 0; i < 20; i++ {
		key := h.AllocateObject(rtobject.ClassID(2), nil)
		val := h.AllocateObject(rtobject.ClassID(3), nil)
		m.SetAt(ctx, hasher, owner, key, val)
		keys = append(keys, key)
	}
	if m.Size() != 20 {
		t.Fatalf("size = %d, want 20", m.Size())
	}
	for _, k := range keys {
		if m.GetAt(ctx, hasher, k) == rtobject.None {
			t.Fatalf("key %v missing after growth", k)
		}
	}
}

func TestSharedMapCopyFieldsSharesReferences(t *testing.T) {
	ctx, h := newCtx()
	m := &SharedMap{}
	hasher := identityHasher{}
	key := h.AllocateObject(rtobject.ClassID(2), nil)
	val := h.AllocateObject(rtobject.ClassID(3), nil)
	m.SetAt(ctx, hasher, key, val)

	copyM := m.CopyFields(ctx)
	if copyM.GetAt(ctx, hasher, key) != val {
		t.Fatalf("copied map should still resolve the same key to the same value")
	}
	o, _ := h.Object(val)
	if o.RefCount() < 2 {
		t.Fatalf("value refcount = %d, want at least 2 after sharing it into the copy", o.RefCount())
	}
}

func TestBlobInsertSetGetRoundTrips(t *testing.T) {
	b := &Blob{}
	b.Insert(0, 8)
	b.Set32At(0, 0x11223344)
	if got := b.Get32At(0); got != 0x11223344 {
		t.Fatalf("Get32At = %#x, want %#x", got, 0x11223344)
	}
	b.Set8At(4, 42)
	if got := b.Get8At(4); got != 42 {
		t.Fatalf("Get8At = %d, want 42", got)
	}
}

func TestBlobMkStrAndPutChAt(t *testing.T) {
	b := &Blob{}
	n := b.PutChAt(0, '€')
	if n != 3 {
		t.Fatalf("PutChAt wrote %d bytes, want 3 for a euro sign", n)
	}
	if got := b.MkStr(0, n); got != "€" {
		t.Fatalf("MkStr = %q, want euro sign", got)
	}
}

func TestBlobMoveSwapsSpans(t *testing.T) {
	b := &Blob{Bytes: []byte{1, 2, 3, 4, 5, 6}}
	if !b.Move(1, 3, 5) {
		t.Fatalf("Move should accept well-ordered bounds")
	}
	want := []byte{1, 4, 5, 2, 3, 6}
	for i := range want {
		if b.Bytes[i] != want[i] {
			t.Fatalf("Bytes = %v, want %v", b.Bytes, want)
		}
	}
}
