// Package layout assigns every class its VMT ordinals, instance field
// offsets, and (for interfaces) a collision-checked random dispatch key,
// then builds each implementing class's interface dispatch table using
// the same bit-selection search the original compiler used to keep that
// table small.
package layout

import "argentum/internal/ast"

const headerWords = 3 // dispatcher, refcount, weak/parent — see internal/rtobject

// Planner carries the state a single layout pass over a Program needs.
type Planner struct {
	prog    *ast.Program
	ITables map[*ast.Class]*ITable // one per concrete class implementing >=1 interface
}

// Plan assigns VMT ordinals and field offsets to every class in
// prog.ClassOrder (which must already be base-before-derived), assigns
// each interface a random dispatch key, and builds the interface dispatch
// table for every concrete class that implements one or more interfaces.
func Plan(prog *ast.Program) *Planner {
	p := &Planner{prog: prog, ITables: map[*ast.Class]*ITable{}}
	p.assignInterfaceKeys()
	for _, c := range prog.ClassOrder {
		p.planVMT(c)
		p.planFields(c)
	}
	for _, c := range prog.ClassOrder {
		if c.IsInterface || len(c.InterfaceVMT) == 0 {
			continue
		}
		p.ITables[c] = p.buildITable(c)
	}
	return p
}

// planVMT assigns each method in c.NewMethods its ordinal and builds c's
// full dispatch vector: a reserved dispatcher slot, followed by c's own
// newly introduced methods, followed by c.Base's entire vector embedded
// verbatim so a base-typed access into a derived VMT lands on the same
// offsets the base itself would use. Overriding methods keep the ordinal
// their overridden base method already holds, shifted by where the base
// vector now starts.
func (p *Planner) planVMT(c *ast.Class) {
	c.VMT = []*ast.Method{nil}
	for _, m := range c.NewMethods {
		if m.Ovr == m {
			m.Ordinal = len(c.VMT)
			c.VMT = append(c.VMT, m)
		}
	}
	if !c.IsInterface && c.Base != nil {
		baseIndex := len(c.VMT)
		c.VMT = append(c.VMT, c.Base.VMT...)
		for _, m := range c.NewMethods {
			if m.Ovr != m {
				m.Ordinal = baseIndex + m.Ovr.Ordinal
			}
		}
	}
	c.VMTSize = len(c.VMT)
}

// planFields lays c's own fields out after every inherited field, so an
// instance's memory is [header][base fields][c's own fields] and a
// base-typed pointer can read base fields at the offsets the base itself
// assigned.
func (p *Planner) planFields(c *ast.Class) {
	if c.IsInterface {
		return
	}
	start := headerWords
	if c.Base != nil {
		start = c.Base.InstanceSize
	}
	for i, f := range c.Fields {
		f.Offset = start + i
	}
	c.InstanceSize = start + len(c.Fields)
}
