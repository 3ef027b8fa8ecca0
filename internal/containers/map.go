package containers

import (
	"argentum/internal/copyengine"
	"argentum/internal/rc"
	"argentum/internal/rtobject"
)

// Open-addressed, power-of-two-capacity, linear-probe, Robin Hood hashed —
// map-base.c's algorithm, shared by all three Map variants below. Keys are
// always held by a Shared reference regardless of the map's own ownership
// kind (ag_retain_shared(key) in ag_map_set_at); only the stored value's
// ownership differs per variant.

type ownBucket struct {
	key  rtobject.ObjectID // None means empty
	val  rtobject.ObjectID
	dist uint64
}

// OwnMap stores Own values under Shared keys — own-map.c.
type OwnMap struct {
	buckets []ownBucket
	size    int
}

func (m *OwnMap) Size() int     { return m.size }
func (m *OwnMap) Capacity() int { return len(m.buckets) }

func (m *OwnMap) findIndex(ctx *rc.Context, h KeyHasher, key rtobject.ObjectID, hash uint64) (int, bool) {
	if len(m.buckets) == 0 {
		return 0, false
	}
	mask := uint64(len(m.buckets) - 1)
	var dist uint64
	for i := hash & mask; ; i = (i + 1) & mask {
		b := &m.buckets[i]
		if b.key == rtobject.None || b.dist < dist {
			return 0, false
		}
		if h.Equal(ctx, b.key, key) {
			return int(i), true
		}
		dist = b.dist
	}
}

// insert places the prelocked (key, val) pair starting the probe at i with
// distance dist; key must not already be present.
func (m *OwnMap) insert(i int, dist uint64, key, val rtobject.ObjectID) {
	mask := len(m.buckets) - 1
	for {
		b := &m.buckets[i]
		if b.key == rtobject.None {
			b.key, b.val, b.dist = key, val, dist
			return
		}
		if b.dist < dist {
			key, b.key = b.key, key
			val, b.val = b.val, val
			dist, b.dist = b.dist, dist
		}
		i = (i + 1) & mask
		dist++
	}
}

func (m *OwnMap) rehash(ctx *rc.Context, h KeyHasher) {
	old := m.buckets
	newCap := 16
	if len(old) > 0 {
		newCap = len(old) << 1
	}
	m.buckets = make([]ownBucket, newCap)
	for _, b := range old {
		if b.key != rtobject.None {
			hash := h.Hash(ctx, b.key)
			m.insert(int(hash&uint64(newCap-1)), 0, b.key, b.val)
		}
	}
}

// SetAt inserts or overwrites key's value, retaining val as a new Own
// child of owner (the map object), returning the replaced value (detached,
// caller now owns it) or None if key was new — ag_m_sys_Map_setAt.
func (m *OwnMap) SetAt(ctx *rc.Context, h KeyHasher, owner, key, val rtobject.ObjectID) rtobject.ObjectID {
	ctx.RetainOwn(val, owner)
	if m.size >= len(m.buckets)*3/4 {
		m.rehash(ctx, h)
	}
	hash := h.Hash(ctx, key)
	mask := uint64(len(m.buckets) - 1)
	dist := uint64(0)
	for i := hash & mask; ; i, dist = (i+1)&mask, dist+1 {
		b := &m.buckets[i]
		if b.key == rtobject.None {
			b.key, b.val, b.dist = key, val, dist
			m.size++
			ctx.RetainShared(key)
			return rtobject.None
		}
		if h.Equal(ctx, b.key, key) {
			prev := b.val
			b.val = val
			ctx.SetParent(prev, rtobject.None)
			return prev
		}
		if b.dist < dist {
			tKey, tVal, tDist := b.key, b.val, b.dist
			b.key, b.val, b.dist = key, val, dist
			ctx.RetainShared(key)
			m.insert(int((i+1)&mask), tDist+1, tKey, tVal)
			return rtobject.None
		}
	}
}

// GetAt returns a pinned reference to key's value, or None if absent.
func (m *OwnMap) GetAt(ctx *rc.Context, h KeyHasher, key rtobject.ObjectID) rtobject.ObjectID {
	i, ok := m.findIndex(ctx, h, key, h.Hash(ctx, key))
	if !ok {
		return rtobject.None
	}
	ctx.RetainPin(m.buckets[i].val)
	return m.buckets[i].val
}

// Delete removes key, releasing its Shared key reference and returning the
// value detached (caller now owns it), or None if key was absent.
func (m *OwnMap) Delete(ctx *rc.Context, h KeyHasher, key rtobject.ObjectID) rtobject.ObjectID {
	ri, ok := m.findIndex(ctx, h, key, h.Hash(ctx, key))
	if !ok {
		return rtobject.None
	}
	ctx.ReleaseShared(m.buckets[ri].key)
	val := m.buckets[ri].val
	ctx.SetParent(val, rtobject.None)
	m.backShift(ri)
	m.size--
	return val
}

// backShift closes the hole left at ri by shifting the following run of
// displaced entries back one slot — ag_map_delete's tail loop.
func (m *OwnMap) backShift(ri int) {
	mask := len(m.buckets) - 1
	m.buckets[ri] = ownBucket{}
	cur := ri
	for {
		next := (cur + 1) & mask
		if next == ri || m.buckets[next].key == rtobject.None || m.buckets[next].dist == 0 {
			break
		}
		m.buckets[cur] = m.buckets[next]
		m.buckets[cur].dist--
		m.buckets[next] = ownBucket{}
		cur = next
	}
}

// Clear releases every key and value and drops the backing storage.
func (m *OwnMap) Clear(ctx *rc.Context) {
	for _, b := range m.buckets {
		if b.key != rtobject.None {
			ctx.ReleaseShared(b.key)
			ctx.ReleaseOwn(b.val)
		}
	}
	m.buckets = nil
	m.size = 0
}

// CopyFields deep-copies every value and shares every key by reference —
// AG_MAP_COPY with ag_copy_object_field on the value.
func (m *OwnMap) CopyFields(e *copyengine.Engine, ctx *rc.Context, dst rtobject.ObjectID) *OwnMap {
	out := &OwnMap{buckets: make([]ownBucket, len(m.buckets)), size: m.size}
	for i, b := range m.buckets {
		if b.key == rtobject.None {
			continue
		}
		ctx.RetainShared(b.key)
		out.buckets[i] = ownBucket{key: b.key, dist: b.dist, val: e.CopyField(b.val, dst)}
	}
	return out
}

// sharedBucket and weakBucket mirror ownBucket for the other two variants;
// kept distinct (rather than a generic bucket[V any]) because Go generics
// can't abstract over "retain via ReleaseOwn" vs "retain via ReleaseWeak"
// without the same interface-dispatch machinery this package is trying to
// avoid for a handful of small, genuinely different value types.
type sharedBucket struct {
	key  rtobject.ObjectID
	val  rtobject.ObjectID
	dist uint64
}

// SharedMap stores Shared values under Shared keys — shared-map.c.
type SharedMap struct {
	buckets []sharedBucket
	size    int
}

func (m *SharedMap) Size() int     { return m.size }
func (m *SharedMap) Capacity() int { return len(m.buckets) }

func (m *SharedMap) findIndex(ctx *rc.Context, h KeyHasher, key rtobject.ObjectID, hash uint64) (int, bool) {
	if len(m.buckets) == 0 {
		return 0, false
	}
	mask := uint64(len(m.buckets) - 1)
	var dist uint64
	for i := hash & mask; ; i = (i + 1) & mask {
		b := &m.buckets[i]
		if b.key == rtobject.None || b.dist < dist {
			return 0, false
		}
		if h.Equal(ctx, b.key, key) {
			return int(i), true
		}
		dist = b.dist
	}
}

func (m *SharedMap) insert(i int, dist uint64, key, val rtobject.ObjectID) {
	mask := len(m.buckets) - 1
	for {
		b := &m.buckets[i]
		if b.key == rtobject.None {
			b.key, b.val, b.dist = key, val, dist
			return
		}
		if b.dist < dist {
			key, b.key = b.key, key
			val, b.val = b.val, val
			dist, b.dist = b.dist, dist
		}
		i = (i + 1) & mask
		dist++
	}
}

func (m *SharedMap) rehash(ctx *rc.Context, h KeyHasher) {
	old := m.buckets
	newCap := 16
	if len(old) > 0 {
		newCap = len(old) << 1
	}
	m.buckets = make([]sharedBucket, newCap)
	for _, b := range old {
		if b.key != rtobject.None {
			hash := h.Hash(ctx, b.key)
			m.insert(int(hash&uint64(newCap-1)), 0, b.key, b.val)
		}
	}
}

func (m *SharedMap) SetAt(ctx *rc.Context, h KeyHasher, key, val rtobject.ObjectID) rtobject.ObjectID {
	ctx.RetainShared(val)
	if m.size >= len(m.buckets)*3/4 {
		m.rehash(ctx, h)
	}
	hash := h.Hash(ctx, key)
	mask := uint64(len(m.buckets) - 1)
	dist := uint64(0)
	for i := hash & mask; ; i, dist = (i+1)&mask, dist+1 {
		b := &m.buckets[i]
		if b.key == rtobject.None {
			b.key, b.val, b.dist = key, val, dist
			m.size++
			ctx.RetainShared(key)
			return rtobject.None
		}
		if h.Equal(ctx, b.key, key) {
			prev := b.val
			b.val = val
			return prev
		}
		if b.dist < dist {
			tKey, tVal, tDist := b.key, b.val, b.dist
			b.key, b.val, b.dist = key, val, dist
			ctx.RetainShared(key)
			m.insert(int((i+1)&mask), tDist+1, tKey, tVal)
			return rtobject.None
		}
	}
}

func (m *SharedMap) GetAt(ctx *rc.Context, h KeyHasher, key rtobject.ObjectID) rtobject.ObjectID {
	i, ok := m.findIndex(ctx, h, key, h.Hash(ctx, key))
	if !ok {
		return rtobject.None
	}
	ctx.RetainShared(m.buckets[i].val)
	return m.buckets[i].val
}

func (m *SharedMap) Delete(ctx *rc.Context, h KeyHasher, key rtobject.ObjectID) rtobject.ObjectID {
	ri, ok := m.findIndex(ctx, h, key, h.Hash(ctx, key))
	if !ok {
		return rtobject.None
	}
	ctx.ReleaseShared(m.buckets[ri].key)
	val := m.buckets[ri].val
	m.backShift(ri)
	m.size--
	return val
}

func (m *SharedMap) backShift(ri int) {
	mask := len(m.buckets) - 1
	m.buckets[ri] = sharedBucket{}
	cur := ri
	for {
		next := (cur + 1) & mask
		if next == ri || m.buckets[next].key == rtobject.None || m.buckets[next].dist == 0 {
			break
		}
		m.buckets[cur] = m.buckets[next]
		m.buckets[cur].dist--
		m.buckets[next] = sharedBucket{}
		cur = next
	}
}

func (m *SharedMap) Clear(ctx *rc.Context) {
	for _, b := range m.buckets {
		if b.key != rtobject.None {
			ctx.ReleaseShared(b.key)
			ctx.ReleaseShared(b.val)
		}
	}
	m.buckets = nil
	m.size = 0
}

// CopyFields shares every key and value by reference with an extra
// retain — AG_MAP_COPY with a plain ag_retain_shared on the value.
func (m *SharedMap) CopyFields(ctx *rc.Context) *SharedMap {
	out := &SharedMap{buckets: append([]sharedBucket(nil), m.buckets...), size: m.size}
	for _, b := range out.buckets {
		if b.key != rtobject.None {
			ctx.RetainShared(b.key)
			ctx.RetainShared(b.val)
		}
	}
	return out
}

type weakBucket struct {
	key  rtobject.ObjectID
	val  rtobject.WeakID
	dist uint64
}

// WeakMap stores Weak values under Shared keys — weak-map.c.
type WeakMap struct {
	buckets []weakBucket
	size    int
}

func (m *WeakMap) Size() int     { return m.size }
func (m *WeakMap) Capacity() int { return len(m.buckets) }

func (m *WeakMap) findIndex(ctx *rc.Context, h KeyHasher, key rtobject.ObjectID, hash uint64) (int, bool) {
	if len(m.buckets) == 0 {
		return 0, false
	}
	mask := uint64(len(m.buckets) - 1)
	var dist uint64
	for i := hash & mask; ; i = (i + 1) & mask {
		b := &m.buckets[i]
		if b.key == rtobject.None || b.dist < dist {
			return 0, false
		}
		if h.Equal(ctx, b.key, key) {
			return int(i), true
		}
		dist = b.dist
	}
}

func (m *WeakMap) insert(i int, dist uint64, key rtobject.ObjectID, val rtobject.WeakID) {
	mask := len(m.buckets) - 1
	for {
		b := &m.buckets[i]
		if b.key == rtobject.None {
			b.key, b.val, b.dist = key, val, dist
			return
		}
		if b.dist < dist {
			key, b.key = b.key, key
			val, b.val = b.val, val
			dist, b.dist = b.dist, dist
		}
		i = (i + 1) & mask
		dist++
	}
}

func (m *WeakMap) rehash(ctx *rc.Context, h KeyHasher) {
	old := m.buckets
	newCap := 16
	if len(old) > 0 {
		newCap = len(old) << 1
	}
	m.buckets = make([]weakBucket, newCap)
	for _, b := range old {
		if b.key != rtobject.None {
			hash := h.Hash(ctx, b.key)
			m.insert(int(hash&uint64(newCap-1)), 0, b.key, b.val)
		}
	}
}

func (m *WeakMap) SetAt(ctx *rc.Context, h KeyHasher, key rtobject.ObjectID, val rtobject.WeakID) rtobject.WeakID {
	ctx.RetainWeak(val)
	if m.size >= len(m.buckets)*3/4 {
		m.rehash(ctx, h)
	}
	hash := h.Hash(ctx, key)
	mask := uint64(len(m.buckets) - 1)
	dist := uint64(0)
	for i := hash & mask; ; i, dist = (i+1)&mask, dist+1 {
		b := &m.buckets[i]
		if b.key == rtobject.None {
			b.key, b.val, b.dist = key, val, dist
			m.size++
			ctx.RetainShared(key)
			return rtobject.None
		}
		if h.Equal(ctx, b.key, key) {
			prev := b.val
			b.val = val
			return prev
		}
		if b.dist < dist {
			tKey, tVal, tDist := b.key, b.val, b.dist
			b.key, b.val, b.dist = key, val, dist
			ctx.RetainShared(key)
			m.insert(int((i+1)&mask), tDist+1, tKey, tVal)
			return rtobject.None
		}
	}
}

func (m *WeakMap) GetAt(ctx *rc.Context, h KeyHasher, key rtobject.ObjectID) rtobject.WeakID {
	i, ok := m.findIndex(ctx, h, key, h.Hash(ctx, key))
	if !ok {
		return rtobject.None
	}
	ctx.RetainWeak(m.buckets[i].val)
	return m.buckets[i].val
}

func (m *WeakMap) Delete(ctx *rc.Context, h KeyHasher, key rtobject.ObjectID) rtobject.WeakID {
	ri, ok := m.findIndex(ctx, h, key, h.Hash(ctx, key))
	if !ok {
		return rtobject.None
	}
	ctx.ReleaseShared(m.buckets[ri].key)
	val := m.buckets[ri].val
	m.backShift(ri)
	m.size--
	return val
}

func (m *WeakMap) backShift(ri int) {
	mask := len(m.buckets) - 1
	m.buckets[ri] = weakBucket{}
	cur := ri
	for {
		next := (cur + 1) & mask
		if next == ri || m.buckets[next].key == rtobject.None || m.buckets[next].dist == 0 {
			break
		}
		m.buckets[cur] = m.buckets[next]
		m.buckets[cur].dist--
		m.buckets[next] = weakBucket{}
		cur = next
	}
}

func (m *WeakMap) Clear(ctx *rc.Context) {
	for _, b := range m.buckets {
		if b.key != rtobject.None {
			ctx.ReleaseShared(b.key)
			ctx.ReleaseWeak(b.val)
		}
	}
	m.buckets = nil
	m.size = 0
}

// CopyFields shares every key by reference and retargets every value
// through the engine's weak fixup pass — weak-map.c's
// ag_copy_weak_field(&i->val.weak_val, i->val.weak_val).
func (m *WeakMap) CopyFields(e *copyengine.Engine, ctx *rc.Context, dst rtobject.ObjectID) *WeakMap {
	out := &WeakMap{buckets: make([]weakBucket, len(m.buckets)), size: m.size}
	for i, b := range m.buckets {
		if b.key == rtobject.None {
			continue
		}
		ctx.RetainShared(b.key)
		idx := i
		out.buckets[idx].key = b.key
		out.buckets[idx].dist = b.dist
		e.CopyWeakField(b.val, func(w rtobject.WeakID) { out.buckets[idx].val = w })
	}
	return out
}
