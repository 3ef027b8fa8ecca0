package resolver

import "argentum/internal/ast"

// propagateGenericContexts fills c.BaseContext for every class with
// TypeParams and every class deriving from one: a generic class's own
// bindings are known only at the *instantiating* MkInstance/PtrType site,
// so BaseContext threads the binding seen at one level down through every
// base and interface a derived class (generic or not) reaches, the way a
// generic List<Int64> extending Collection<Int64> must resolve
// Collection's own T to Int64 without re-declaring it.
func (r *Resolver) propagateGenericContexts(prog *ast.Program) {
	for _, c := range prog.ClassOrder {
		if len(c.TypeParams) == 0 && c.Base == nil {
			continue
		}
		r.propagateOne(c)
	}
}

func (r *Resolver) propagateOne(c *ast.Class) {
	// A class's own type parameters bind to themselves: instantiation
	// substitutes concrete Args at the MkInstance/PtrType site, not here.
	// propagateOne only carries bindings *inherited* from a generic base
	// down to c's own BaseContext entries for that base's further bases.
	if c.Base == nil {
		return
	}
	baseBinding, ok := c.BaseContext[c.Base]
	if !ok {
		return
	}
	for _, grandBase := range indirectBases(c.Base) {
		if inner, ok := c.Base.BaseContext[grandBase]; ok {
			c.BaseContext[grandBase] = substitute(inner, c.Base.TypeParams, baseBinding.Args)
		}
	}
}

// substitute replaces any occurrence of a class type parameter (by its
// position in params) inside binding's Args with the corresponding concrete
// argument from outerArgs. Non-generic bindings pass through unchanged.
func substitute(binding *ast.PtrType, params []ast.Name, outerArgs []ast.Type) *ast.PtrType {
	if binding == nil || len(binding.Args) == 0 {
		return binding
	}
	out := &ast.PtrType{Flavor: binding.Flavor, Target: binding.Target, Args: make([]ast.Type, len(binding.Args))}
	for i, a := range binding.Args {
		out.Args[i] = substituteType(a, params, outerArgs)
	}
	return out
}

func substituteType(t ast.Type, params []ast.Name, outerArgs []ast.Type) ast.Type {
	pt, ok := t.(ast.PtrType)
	if !ok {
		return t
	}
	for i, p := range params {
		if pt.Target != nil && pt.Target.Name == p && i < len(outerArgs) {
			return outerArgs[i]
		}
	}
	return t
}
