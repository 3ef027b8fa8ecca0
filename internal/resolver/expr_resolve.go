package resolver

import (
	"argentum/internal/ast"
	agerrors "argentum/internal/errors"
)

// resolveExpressions walks every function and method body, binding each
// Get/Set that names a local or parameter to its *Var, marking a Var
// Captured when a nested lambda reaches it and recording a mutated outer
// local in that lambda's Mutables. A Get of a name that is not a local is
// left unbound and is not rewritten. GetField/SetField/SpliceField with no
// base expression resolve their Field through the enclosing class's
// ThisFields.
func (r *Resolver) resolveExpressions(prog *ast.Program) {
	for _, mod := range prog.Modules {
		for _, fn := range mod.Functions {
			r.thisClass = nil
			r.thisVar = nil
			r.walkLambdaBody(&fn.MkLambda, 0)
		}
		for _, c := range mod.Classes {
			for _, m := range c.NewMethods {
				r.thisClass = m.Class
				r.thisVar = nil
				r.walkLambdaBody(&m.MkLambda, 0)
			}
		}
	}
}

func (r *Resolver) walkLambdaBody(l *ast.MkLambda, depth int) {
	r.pushScope()
	for _, p := range l.Vars {
		r.declare(p)
	}
	l.LexicalDepth = depth
	for _, a := range l.Body {
		r.walkAction(a, l, depth)
	}
	r.popScope()
}

func (r *Resolver) walkAction(a ast.Action, enclosing *ast.MkLambda, depth int) {
	if a == nil {
		return
	}
	switch n := a.(type) {
	case *ast.Block:
		r.pushScope()
		for _, v := range n.Vars {
			r.declare(v)
			r.walkAction(v.Initializer, enclosing, depth)
		}
		for _, body := range n.Body {
			r.walkAction(body, enclosing, depth)
		}
		r.popScope()

	case *ast.MkLambda:
		r.walkLambdaBody(n, depth+1)

	case *ast.Get:
		r.resolveGet(n, enclosing, depth)

	case *ast.Set:
		r.resolveSet(n, enclosing, depth)
		r.walkAction(n.Val, enclosing, depth)

	case *ast.Call:
		r.walkAction(n.Callee, enclosing, depth)
		for _, p := range n.Params {
			r.walkAction(p, enclosing, depth)
		}

	case *ast.AsyncCall:
		r.walkAction(&n.Call, enclosing, depth)

	case *ast.GetField:
		r.walkAction(n.Base, enclosing, depth)
		r.resolveField(n.Base, n.FieldName, &n.Field, n.Position())

	case *ast.SetField:
		r.walkAction(n.Base, enclosing, depth)
		r.walkAction(n.Val, enclosing, depth)
		r.resolveField(n.Base, n.FieldName, &n.Field, n.Position())

	case *ast.SpliceField:
		r.walkAction(n.Base, enclosing, depth)
		r.walkAction(n.Val, enclosing, depth)
		r.resolveField(n.Base, n.FieldName, &n.Field, n.Position())

	case *ast.GetAtIndex:
		r.walkAction(n.Indexed, enclosing, depth)
		for _, idx := range n.Indexes {
			r.walkAction(idx, enclosing, depth)
		}

	case *ast.SetAtIndex:
		r.walkAction(n.Indexed, enclosing, depth)
		for _, idx := range n.Indexes {
			r.walkAction(idx, enclosing, depth)
		}
		r.walkAction(n.Value, enclosing, depth)

	case *ast.Break:
		r.walkAction(n.Value, enclosing, depth)

	case *ast.MkInstance:
		// no sub-expressions beyond the type arguments already resolved

	case *ast.ToStr:
		r.walkAction(n.Stream, enclosing, depth)
		r.walkAction(n.Value, enclosing, depth)

	case *ast.MakeDelegate:
		r.walkAction(n.Base, enclosing, depth)

	case *ast.MakeFnPtr:
		// references a Function by pointer identity; nothing to descend into

	default:
		r.walkBinUn(a, enclosing, depth)
	}
}

// walkBinUn descends into the Lhs/Rhs/P operand of every binOp/unOp shaped
// node without needing one case per concrete type.
func (r *Resolver) walkBinUn(a ast.Action, enclosing *ast.MkLambda, depth int) {
	type binHolder interface {
		Operands() (ast.Action, ast.Action)
	}
	type unHolder interface{ Operand() ast.Action }
	if bh, ok := a.(binHolder); ok {
		l, rr := bh.Operands()
		r.walkAction(l, enclosing, depth)
		r.walkAction(rr, enclosing, depth)
		return
	}
	if uh, ok := a.(unHolder); ok {
		r.walkAction(uh.Operand(), enclosing, depth)
	}
}

// resolveGet binds a Get to the nearest enclosing local/parameter. Any other
// name is left with a nil Var: the type checker types a name that matches
// a field of the enclosing class from ThisFields, and reports every other
// name as unknown. Methods and module-level names are not bound here.
func (r *Resolver) resolveGet(g *ast.Get, enclosing *ast.MkLambda, depth int) {
	if v := r.lookupLocal(g.Name.Short); v != nil {
		g.Var = v
		if v.LexicalDepth < depth {
			v.Captured = true
		}
		return
	}
	if r.thisClass != nil {
		if f, ok := r.thisClass.ThisFields[ast.Name{Short: g.Name.Short}]; ok && f != nil {
			g.Var = nil // field access, not a local; left for the type checker to rewrite to GetField
			return
		}
	}
	// Otherwise g.Name is a qualified module-level reference resolved by
	// the loader's import table; left as-is for the type checker.
}

func (r *Resolver) resolveSet(s *ast.Set, enclosing *ast.MkLambda, depth int) {
	if v := r.lookupLocal(s.Name.Short); v != nil {
		s.Var = v
		if !v.IsMutable {
			r.errs.Addf(agerrors.TypeErr, locFromPos(s.Position()), "%s is not mutable", s.Name.Short)
		}
		if v.LexicalDepth < depth {
			v.Captured = true
			markMutable(enclosing, v)
		}
	}
}

func markMutable(l *ast.MkLambda, v *ast.Var) {
	for _, m := range l.Mutables {
		if m == v {
			return
		}
	}
	l.Mutables = append(l.Mutables, v)
}

// resolveField looks up fieldName on base's static type once the type
// checker has run; during this pass it only resolves the implicit "this"
// case (base == nil, meaning an unqualified field reference inside a
// method), deferring explicit-base resolution to the type checker which
// alone knows base's Class.
func (r *Resolver) resolveField(base ast.Action, fieldName ast.Name, out **ast.Field, at ast.Pos) {
	if base != nil || r.thisClass == nil {
		return
	}
	f := lookupThisField(r.thisClass, fieldName, r.errs, locFromPos(at))
	*out = f
}

func lookupThisField(c *ast.Class, name ast.Name, errs *agerrors.Bag, at agerrors.Location) *ast.Field {
	if f, ok := c.ThisFields[name]; ok {
		if f == nil {
			errs.Addf(agerrors.NameErr, at, "ambiguous reference to field %q on %s", name.Short, c.Name)
		}
		return f
	}
	short := ast.Name{Short: name.Short}
	if f, ok := c.ThisFields[short]; ok {
		if f == nil {
			errs.Addf(agerrors.NameErr, at, "ambiguous reference to field %q on %s", name.Short, c.Name)
		}
		return f
	}
	return nil
}
