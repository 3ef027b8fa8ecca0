// Package containers implements the language's builtin collection types —
// the own/shared/weak Array and Map families and the raw byte Blob — over
// internal/rc and internal/copyengine. The reference runtime generates
// each family from one macro-templated body (array-base-inc.h,
// map-base.c's AG_MAP_COPY/AG_MAP_VISIT) instantiated three times with
// different retain/release/copy macros per ownership kind; this package
// keeps that same three-times duplication (one small concrete type per
// kind) rather than collapsing it into a type-parameterized Array[T],
// since the three kinds' retain policies are genuinely different
// operations, not just different element types.
package containers

import (
	"argentum/internal/rc"
	"argentum/internal/rtobject"
)

// KeyHasher supplies the per-class hash/equality operations Map needs for
// its keys (ag_fn_sys_hash / ag_eq_shared in the reference runtime);
// both genuinely depend on a key's dynamic class and so belong to whatever
// dispatches method calls, not to this package.
type KeyHasher interface {
	Hash(ctx *rc.Context, key rtobject.ObjectID) uint64
	Equal(ctx *rc.Context, a, b rtobject.ObjectID) bool
}

// insertSpan grows a []uint64-shaped backing slice by count zero elements
// starting at index at — ag_insert_into_container, written once and
// reused by every array/blob variant's Insert.
func insertSpan[T any](items []T, at int, count int) []T {
	out := make([]T, len(items)+count)
	copy(out, items[:at])
	copy(out[at+count:], items[at:])
	return out
}

// deleteSpan removes count elements starting at index at without touching
// their contents (no dispose) — ag_delete_container_items.
func deleteSpan[T any](items []T, at int, count int) []T {
	out := make([]T, len(items)-count)
	copy(out, items[:at])
	copy(out[at:], items[at+count:])
	return out
}

// moveSpan splits [0,len) into four spans at x, y, z and swaps the x-y and
// y-z spans in place — ag_move_container_items. Returns false (no change)
// if the bounds are out of order.
func moveSpan[T any](items []T, x, y, z int) bool {
	if !(x <= y && y <= z && z <= len(items)) {
		return false
	}
	mid := append([]T{}, items[x:y]...)
	tail := append([]T{}, items[y:z]...)
	copy(items[x:], tail)
	copy(items[x+len(tail):], mid)
	return true
}
