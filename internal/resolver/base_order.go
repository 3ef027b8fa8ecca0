package resolver

import (
	"argentum/internal/ast"
	agerrors "argentum/internal/errors"
)

// orderClasses fills prog.ClassOrder with every class in the program,
// base-before-derived. A class with no declared Base implicitly extends
// prog.Object (unless it is Object itself or an interface). Cycles in the
// base chain are reported and broken by refusing to descend further.
func (r *Resolver) orderClasses(prog *ast.Program) {
	const (
		white = 0 // unvisited
		gray  = 1 // on the current recursion stack
		black = 2 // fully ordered
	)
	color := map[*ast.Class]int{}

	var visit func(c *ast.Class, chain []*ast.Class)
	visit = func(c *ast.Class, chain []*ast.Class) {
		switch color[c] {
		case black:
			return
		case gray:
			r.errs.Addf(agerrors.NameErr, locOf(c), "cyclic base chain: %s", describeCycle(chain, c))
			return
		}
		color[c] = gray
		chain = append(chain, c)

		if c.Base == nil && !c.IsInterface && c != prog.Object && prog.Object != nil {
			c.Base = prog.Object
		}
		if c.Base != nil {
			visit(c.Base, chain)
		}
		for _, iface := range c.Interfaces {
			visit(iface, chain)
		}

		color[c] = black
		prog.ClassOrder = append(prog.ClassOrder, c)
	}

	prog.ClassOrder = prog.ClassOrder[:0]
	for _, c := range prog.Classes {
		visit(c, nil)
	}
}

func describeCycle(chain []*ast.Class, closing *ast.Class) string {
	s := ""
	started := false
	for _, c := range chain {
		if c == closing {
			started = true
		}
		if started {
			if s != "" {
				s += " -> "
			}
			s += c.Name.String()
		}
	}
	return s + " -> " + closing.Name.String()
}

func locOf(c *ast.Class) agerrors.Location {
	return agerrors.Location{File: c.Pos.Module, Line: c.Pos.Line, Column: c.Pos.Col}
}

// indirectBases returns the transitive, non-repeating set of base classes
// and interfaces c inherits through its Base chain and its own declared
// Interfaces (c itself excluded), in the
// order a derived class's overload table must present them.
func indirectBases(c *ast.Class) []*ast.Class {
	seen := map[*ast.Class]bool{}
	var out []*ast.Class
	var walk func(cur *ast.Class)
	walk = func(cur *ast.Class) {
		if cur == nil || seen[cur] {
			return
		}
		seen[cur] = true
		if cur != c {
			out = append(out, cur)
		}
		if cur.Base != nil {
			walk(cur.Base)
		}
		for _, i := range cur.Interfaces {
			walk(i)
		}
	}
	walk(c)
	return out
}
