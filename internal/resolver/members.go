package resolver

import (
	"argentum/internal/ast"
	agerrors "argentum/internal/errors"
)

// fixGlobals assigns VMT ordinals to every newly declared method, stitches
// inherited/overloaded methods into each class's per-base Overloads table,
// and builds the combined ThisNames/ThisFields lookup a method body uses to
// resolve an unqualified member reference against "this". Classes must
// already be in prog.ClassOrder (base-before-derived).
func (r *Resolver) fixGlobals(prog *ast.Program) {
	for _, c := range prog.ClassOrder {
		r.assignOrdinals(c)
		r.buildOverloads(prog, c)
		r.buildThisNames(c)
	}
}

func (r *Resolver) assignOrdinals(c *ast.Class) {
	for i, m := range c.NewMethods {
		m.Ordinal = i
		if m.Ovr == nil {
			m.Ovr = m
		}
		if m.Base == nil {
			m.Base = m
		}
		m.Class = c
	}
}

// buildOverloads fills c.Overloads[base] for every base/interface c
// (transitively) derives from: a same-named, same-arity method declared in
// c.NewMethods overrides the base method at that base's ordinal; bases left
// unfilled inherit straight through to the base's own method.
func (r *Resolver) buildOverloads(prog *ast.Program, c *ast.Class) {
	for _, base := range indirectBases(c) {
		baseMethods := base.NewMethods
		vec := make([]*ast.Method, len(baseMethods))
		copy(vec, baseMethods)

		// A base's own inherited overloads ride along so a three-level
		// diamond still resolves through the middle class. c.Base is nil
		// for an interface extending another interface, which never gets
		// a Base in orderClasses.
		if c.Base != nil {
			if existing, ok := c.Base.Overloads[base]; ok {
				for i, m := range existing {
					if i < len(vec) {
						vec[i] = m
					}
				}
			}
		}

		c.handleOverloads(base, vec, r)
		c.Overloads[base] = vec
		if base.IsInterface {
			c.InterfaceVMT[base] = vec
		}
	}
}

// handleOverloads matches every method newly declared on c against base's
// method table by (name, arity), replacing the inherited slot. A method
// that matches no base slot is left for NewMethods' own ordinal space; no
// diagnostic is raised here.
func (c *ast.Class) handleOverloads(base *ast.Class, vec []*ast.Method, r *Resolver) {
	for _, m := range c.NewMethods {
		for i, baseM := range vec {
			if baseM == nil || baseM.Name.Short != m.Name.Short {
				continue
			}
			if len(baseM.Params) != len(m.Params) {
				continue
			}
			vec[i] = m
			m.Ovr = baseM.Ovr
			m.Base = baseM.Base
		}
	}
}

// buildThisNames merges every method/field reachable unqualified from
// inside c's own method bodies: every declaration keys under both its
// qualified Name and an unqualified (Module: "") alias; a second distinct
// declaration landing on the same unqualified alias marks it ambiguous by
// storing a nil value, which the expression resolver must reject outright.
func (r *Resolver) buildThisNames(c *ast.Class) {
	addMethod := func(m *ast.Method) {
		c.ThisNames[m.Name] = m
		short := ast.Name{Short: m.Name.Short}
		if existing, ok := c.ThisNames[short]; ok && existing != m && existing != nil {
			c.ThisNames[short] = nil // ambiguous
		} else if !ok {
			c.ThisNames[short] = m
		}
	}
	addField := func(f *ast.Field) {
		c.ThisFields[f.Name] = f
		short := ast.Name{Short: f.Name.Short}
		if existing, ok := c.ThisFields[short]; ok && existing != f {
			c.ThisFields[short] = nil
		} else if !ok {
			c.ThisFields[short] = f
		}
	}

	cur := c
	seen := map[*ast.Class]bool{}
	for cur != nil && !seen[cur] {
		seen[cur] = true
		for _, m := range cur.NewMethods {
			addMethod(m)
		}
		for _, f := range cur.Fields {
			addField(f)
		}
		cur = cur.Base
	}
	for _, iface := range indirectBases(c) {
		if !iface.IsInterface {
			continue
		}
		for _, m := range iface.NewMethods {
			if _, ok := c.ThisNames[m.Name]; !ok {
				addMethod(m)
			}
		}
	}
}

// lookupThis resolves an unqualified-or-qualified member name against a
// class's combined table, reporting the ambiguity case spec callers must
// never silently pick a winner for.
func lookupThis(c *ast.Class, name ast.Name, errs *agerrors.Bag, at agerrors.Location) *ast.Method {
	if m, ok := c.ThisNames[name]; ok {
		if m == nil {
			errs.Addf(agerrors.NameErr, at, "ambiguous reference to %q on %s", name.Short, c.Name)
			return nil
		}
		return m
	}
	short := ast.Name{Short: name.Short}
	if m, ok := c.ThisNames[short]; ok {
		if m == nil {
			errs.Addf(agerrors.NameErr, at, "ambiguous reference to %q on %s", name.Short, c.Name)
			return nil
		}
		return m
	}
	errs.Addf(agerrors.NameErr, at, "%s has no member %q", c.Name, name.Short)
	return nil
}
