package layout

import "argentum/internal/ast"

// ITable is a concrete class's interface dispatch table: given a combined
// (interface id | method ordinal) key, it resolves the *ast.Method this
// class supplies for that interface slot. Exact tables are a single dense
// array indexed by the bit-selected key; a class implementing enough
// distinct interfaces that no single bit window stays collision-free
// falls back to a secondary exact-match lookup per bucket.
type ITable struct {
	Class    *ast.Class
	Fit      fitResult
	Exact    bool
	Direct   []*ast.Method            // valid when Exact; len == 1<<Fit.width (or 1 for a single-entry table)
	Indirect []map[uint64]*ast.Method // valid when !Exact; len == 1<<Fit.width, keyed by the full combined ord
}

// Lookup resolves ord (an interface key OR'd with a method ordinal) to
// the method this table's class supplies, or nil if ord isn't covered.
func (t *ITable) Lookup(ord uint64) *ast.Method {
	if t.Exact {
		if len(t.Direct) == 1 {
			return t.Direct[0]
		}
		idx := extractKeyBits(ord, t.Fit.pos, t.Fit.width, t.Fit.splinter)
		if int(idx) >= len(t.Direct) {
			return nil
		}
		return t.Direct[idx]
	}
	idx := extractKeyBits(ord, t.Fit.pos, t.Fit.width, t.Fit.splinter)
	if int(idx) >= len(t.Indirect) || t.Indirect[idx] == nil {
		return nil
	}
	return t.Indirect[idx][ord]
}

// buildITable collects every (interface key | method ordinal) -> method
// pair c supplies across all interfaces it implements, then picks the bit
// window that spreads them as close to a bijection as possible.
func (p *Planner) buildITable(c *ast.Class) *ITable {
	vmts := map[uint64]*ast.Method{}
	for iface, vec := range c.InterfaceVMT {
		for i, m := range vec {
			if m == nil || i >= len(iface.NewMethods) {
				continue
			}
			key := iface.InterfaceKey | uint64(iface.NewMethods[i].Ordinal)
			vmts[key] = m
		}
	}

	it := &ITable{Class: c}
	if len(vmts) == 0 {
		return it
	}
	if len(vmts) == 1 {
		for _, m := range vmts {
			it.Direct = []*ast.Method{m}
		}
		it.Exact = true
		return it
	}

	best := findBestFit(vmts)
	it.Fit = best
	size := uint64(1) << best.width
	if best.spread == len(vmts) {
		it.Exact = true
		it.Direct = make([]*ast.Method, size)
		for ord, m := range vmts {
			it.Direct[extractKeyBits(ord, best.pos, best.width, best.splinter)] = m
		}
		return it
	}

	it.Indirect = make([]map[uint64]*ast.Method, size)
	for ord, m := range vmts {
		idx := extractKeyBits(ord, best.pos, best.width, best.splinter)
		if it.Indirect[idx] == nil {
			it.Indirect[idx] = map[uint64]*ast.Method{}
		}
		it.Indirect[idx][ord] = m
	}
	return it
}
